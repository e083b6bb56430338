package mapfile

import "math"

// degenerateEpsilon bounds the line-intersection determinant below which the
// interpolation lines are treated as parallel.
const degenerateEpsilon = 1e-12

// XYToLatLon maps a pixel position to latitude/longitude using the four
// calibration corners (NW, NE, SE, SW). Positions outside the image are
// extrapolated and should be treated as best effort.
func (r *Record) XYToLatLon(x, y float64) (lat, lon float64, err error) {
	if len(r.GeoCorners) != CornerCount {
		return 0, 0, ErrNoCalibration
	}
	if r.ImageWidth <= 0 || r.ImageHeight <= 0 {
		return 0, 0, ErrNoImageSize
	}
	g := r.GeoCorners
	return interpolate(g[NW], g[NE], g[SE], g[SW], float64(r.ImageWidth), float64(r.ImageHeight), x, y)
}

// interpolate blends a line across the image at the query row and a line
// down the image at the query column, then intersects them.
func interpolate(nw, ne, se, sw GeoCorner, sx, sy, x, y float64) (float64, float64, error) {
	syy := sy - y
	sxx := sx - x

	return intersect(
		blend(nw, sw, syy, y, sy), blend(ne, se, syy, y, sy),
		blend(nw, ne, sxx, x, sx), blend(sw, se, sxx, x, sx),
	)
}

func blend(a, b GeoCorner, wa, wb, total float64) GeoCorner {
	return GeoCorner{
		Lat: (wa*a.Lat + wb*b.Lat) / total,
		Lon: (wa*a.Lon + wb*b.Lon) / total,
	}
}

func det(a, b, c, d float64) float64 {
	return a*d - b*c
}

// intersect returns the intersection of line p1-p2 with line p3-p4.
func intersect(p1, p2, p3, p4 GeoCorner) (float64, float64, error) {
	d := det(p1.Lat-p2.Lat, p1.Lon-p2.Lon, p3.Lat-p4.Lat, p3.Lon-p4.Lon)
	if math.Abs(d) < degenerateEpsilon {
		return 0, 0, ErrDegenerate
	}
	d1 := det(p1.Lat, p1.Lon, p2.Lat, p2.Lon)
	d2 := det(p3.Lat, p3.Lon, p4.Lat, p4.Lon)
	lat := det(d1, p1.Lat-p2.Lat, d2, p3.Lat-p4.Lat) / d
	lon := det(d1, p1.Lon-p2.Lon, d2, p3.Lon-p4.Lon) / d
	return lat, lon, nil
}
