package mapfile

import (
	"fmt"
	"math"
	"strings"
)

// CornerCount is the only number of calibration corners a record may carry to be valid.
const CornerCount = 4

// Point is a hand-placed marker linking an image pixel to a geographic position.
// Lat is positive north, Lon is positive west.
type Point struct {
	Index *int
	X     int
	Y     int
	Lat   float64
	Lon   float64
}

// PointInput is a pixel/geo pair supplied by a caller when (re)picking points.
type PointInput struct {
	X   int
	Y   int
	Lat float64
	Lon float64
}

// PixelCorner is the pixel half of a calibration correspondence.
type PixelCorner struct {
	X int
	Y int
}

// GeoCorner is the geographic half of a calibration correspondence.
type GeoCorner struct {
	Lat float64
	Lon float64
}

// Bounds is the lat/lon envelope of the calibration corners.
type Bounds struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Record holds the metadata of a single .map calibration file.
//
// PixelCorners and GeoCorners are parallel: PixelCorners[i] corresponds to GeoCorners[i].
// After Calibrate they are ordered NW, NE, SE, SW; a parsed record keeps file order.
type Record struct {
	ImageFilename string
	ImageFilepath string
	Projection    string
	MapProjection string

	Points       []Point
	PixelCorners []PixelCorner
	GeoCorners   []GeoCorner

	// CornerCount is the declared MMPNUM value, nil when the file has none.
	CornerCount *int
	// ScaleFactor is meters per pixel (MM1B), nil when uncalibrated.
	ScaleFactor *float64

	ImageWidth  int
	ImageHeight int
}

// Clear resets every field to its zero value.
func (r *Record) Clear() {
	*r = Record{}
}

// IsValid reports whether the declared corner count matches both corner
// sequences and equals CornerCount.
func (r *Record) IsValid() bool {
	if r.CornerCount == nil {
		return false
	}
	n := *r.CornerCount
	return n == CornerCount && len(r.PixelCorners) == n && len(r.GeoCorners) == n
}

// SetPoints replaces the hand-placed points. Indices are dropped; they are
// positional again on the next Serialize.
func (r *Record) SetPoints(points []PointInput) {
	r.Points = make([]Point, 0, len(points))
	for _, p := range points {
		r.Points = append(r.Points, Point{X: p.X, Y: p.Y, Lat: p.Lat, Lon: p.Lon})
	}
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	if r.Points != nil {
		c.Points = make([]Point, len(r.Points))
		for i, p := range r.Points {
			if p.Index != nil {
				idx := *p.Index
				p.Index = &idx
			}
			c.Points[i] = p
		}
	}
	if r.PixelCorners != nil {
		c.PixelCorners = append([]PixelCorner(nil), r.PixelCorners...)
	}
	if r.GeoCorners != nil {
		c.GeoCorners = append([]GeoCorner(nil), r.GeoCorners...)
	}
	if r.CornerCount != nil {
		n := *r.CornerCount
		c.CornerCount = &n
	}
	if r.ScaleFactor != nil {
		s := *r.ScaleFactor
		c.ScaleFactor = &s
	}
	return &c
}

// Bounds returns the envelope of GeoCorners, false when there are none.
func (r *Record) Bounds() (Bounds, bool) {
	if len(r.GeoCorners) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		MinLat: math.Inf(1), MinLon: math.Inf(1),
		MaxLat: math.Inf(-1), MaxLon: math.Inf(-1),
	}
	for _, g := range r.GeoCorners {
		b.MinLat = math.Min(b.MinLat, g.Lat)
		b.MaxLat = math.Max(b.MaxLat, g.Lat)
		b.MinLon = math.Min(b.MinLon, g.Lon)
		b.MaxLon = math.Max(b.MaxLon, g.Lon)
	}
	return b, true
}

func (r *Record) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<MapRecord image=%q path=%q size=%dx%d points=%d",
		r.ImageFilename, r.ImageFilepath, r.ImageWidth, r.ImageHeight, len(r.Points))
	if r.CornerCount != nil {
		fmt.Fprintf(&sb, " mmpnum=%d", *r.CornerCount)
	}
	fmt.Fprintf(&sb, " mmpxy=%v mmpll=%v", r.PixelCorners, r.GeoCorners)
	if r.ScaleFactor != nil {
		fmt.Fprintf(&sb, " mm1b=%g", *r.ScaleFactor)
	}
	sb.WriteString(">")
	return sb.String()
}
