package mapfile

import (
	"fmt"
	"math"
)

// EarthRadius is the WGS-84 equatorial radius in meters.
const EarthRadius = 6378137.0

// Corner positions, in the order Calibrate writes them.
const (
	NW = iota
	NE
	SE
	SW
)

// Calibrate derives the four image-corner correspondences from the record's
// points and recomputes the scale factor. The record is left untouched when
// an error is returned. With no points the calibration is cleared.
func (r *Record) Calibrate() error {
	if len(r.Points) == 0 {
		r.PixelCorners = nil
		r.GeoCorners = nil
		zero := 0
		r.CornerCount = &zero
		r.ScaleFactor = nil
		return nil
	}
	if r.ImageWidth <= 0 || r.ImageHeight <= 0 {
		return ErrNoImageSize
	}

	corners := assignCorners(r.Points, r.ImageWidth, r.ImageHeight)
	geo, err := extrapolateCorners(corners, float64(r.ImageWidth), float64(r.ImageHeight))
	if err != nil {
		return err
	}

	r.PixelCorners = []PixelCorner{
		{X: 0, Y: 0},
		{X: r.ImageWidth, Y: 0},
		{X: r.ImageWidth, Y: r.ImageHeight},
		{X: 0, Y: r.ImageHeight},
	}
	r.GeoCorners = geo
	count := len(geo)
	r.CornerCount = &count
	scale := scaleFactor(geo, r.ImageWidth)
	r.ScaleFactor = &scale
	return nil
}

// assignCorners picks, for each image corner, the point closest to it.
// On equal distance the earliest point wins. The same point may be picked
// for several corners.
func assignCorners(points []Point, width, height int) [4]Point {
	targets := [4][2]float64{
		NW: {0, 0},
		NE: {float64(width), 0},
		SE: {float64(width), float64(height)},
		SW: {0, float64(height)},
	}

	var out [4]Point
	for c, t := range targets {
		best := math.Inf(1)
		for _, p := range points {
			d := math.Hypot(float64(p.X)-t[0], float64(p.Y)-t[1])
			if d < best {
				best = d
				out[c] = p
			}
		}
	}
	return out
}

// extrapolateCorners fits a line along each image edge through the two
// points assigned to that edge and evaluates it at the edge endpoints.
// Latitude is fitted against x on the north and south edges, longitude
// against y on the west and east edges.
func extrapolateCorners(c [4]Point, width, height float64) ([]GeoCorner, error) {
	nw, ne, se, sw := c[NW], c[NE], c[SE], c[SW]

	northSlope, err := slope(nw.Lat-ne.Lat, nw.X-ne.X, "north")
	if err != nil {
		return nil, err
	}
	southSlope, err := slope(se.Lat-sw.Lat, se.X-sw.X, "south")
	if err != nil {
		return nil, err
	}
	westSlope, err := slope(nw.Lon-sw.Lon, nw.Y-sw.Y, "west")
	if err != nil {
		return nil, err
	}
	eastSlope, err := slope(ne.Lon-se.Lon, ne.Y-se.Y, "east")
	if err != nil {
		return nil, err
	}

	nwLat := nw.Lat - northSlope*float64(nw.X)
	neLat := nwLat + northSlope*width

	swLat := sw.Lat - southSlope*float64(sw.X)
	seLat := swLat + southSlope*width

	nwLon := nw.Lon - westSlope*float64(nw.Y)
	swLon := nwLon + westSlope*height

	neLon := ne.Lon - eastSlope*float64(ne.Y)
	seLon := neLon + eastSlope*height

	return []GeoCorner{
		NW: {Lat: nwLat, Lon: nwLon},
		NE: {Lat: neLat, Lon: neLon},
		SE: {Lat: seLat, Lon: seLon},
		SW: {Lat: swLat, Lon: swLon},
	}, nil
}

func slope(dv float64, dp int, edge string) (float64, error) {
	if dp == 0 {
		return 0, fmt.Errorf("%w: %s edge points share a pixel coordinate", ErrDegenerate, edge)
	}
	return dv / float64(dp), nil
}

// scaleFactor approximates meters per pixel along the image width.
func scaleFactor(geo []GeoCorner, width int) float64 {
	latWest := (geo[NW].Lat + geo[SW].Lat) / 2
	latEast := (geo[NE].Lat + geo[SE].Lat) / 2
	lonAvg := (geo[NW].Lon + geo[SW].Lon + geo[NE].Lon + geo[SE].Lon) / 4

	dist := math.Abs((latEast - latWest) * math.Pi / 180 * EarthRadius * math.Cos(lonAvg*math.Pi/180))
	return dist / float64(width)
}
