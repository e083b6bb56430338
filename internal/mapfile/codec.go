package mapfile

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Header is the required first line of a supported .map file.
const Header = "OziExplorer Map Data File Version 2.2"

const (
	placeholderImage = "dummy.jpg"

	prefixPoint  = "Point"
	prefixIWH    = "IWH,Map Image Width/Height,"
	prefixMMPNUM = "MMPNUM,"
	prefixMMPLL  = "MMPLL"
	prefixMMPXY  = "MMPXY"
	prefixMM1B   = "MM1B,"

	// "Point" plus one more character precede the index digits.
	pointIndexOffset = 6
	pointFieldCount  = 12
	cornerFieldCount = 4
	headerLines      = 9
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts raw file bytes to text. Valid UTF-8 passes through with any
// BOM dropped; anything else is read as Windows-1252, which is what
// OziExplorer writes.
func Decode(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// Parse builds a Record from the text of a .map file.
// Any structural problem fails the whole parse with a *FormatError.
func Parse(text string) (*Record, error) {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	if lines[0] != Header {
		return nil, &FormatError{Kind: BadHeader, Line: 0, Text: lines[0]}
	}
	if len(lines) < headerLines {
		return nil, &FormatError{Kind: Truncated, Line: len(lines) - 1, Text: lines[len(lines)-1]}
	}

	rec := &Record{
		ImageFilename: lines[1],
		ImageFilepath: lines[2],
		Projection:    lines[4],
		MapProjection: lines[8],
	}

	for n := headerLines; n < len(lines); n++ {
		if err := parseLine(rec, n, lines[n]); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func parseLine(rec *Record, n int, line string) error {
	switch {
	case strings.HasPrefix(line, prefixPoint):
		p, ok, err := parsePoint(n, line)
		if err != nil {
			return err
		}
		if ok {
			rec.Points = append(rec.Points, p)
		}

	case strings.HasPrefix(line, prefixIWH):
		rest := strings.TrimSpace(line[len(prefixIWH):])
		if rest == "" || rest == "," {
			return nil
		}
		parts := strings.Split(rest, ",")
		if len(parts) != 2 {
			return &FormatError{Kind: BadFieldCount, Line: n, Text: line}
		}
		w, err := atoi(n, line, parts[0])
		if err != nil {
			return err
		}
		h, err := atoi(n, line, parts[1])
		if err != nil {
			return err
		}
		rec.ImageWidth, rec.ImageHeight = w, h

	case strings.HasPrefix(line, prefixMMPNUM):
		raw := strings.TrimSpace(line[len(prefixMMPNUM):])
		if raw == "" {
			return nil
		}
		count, err := atoi(n, line, raw)
		if err != nil {
			return err
		}
		rec.CornerCount = &count

	case strings.HasPrefix(line, prefixMMPLL):
		fields, err := cornerFields(n, line)
		if err != nil {
			return err
		}
		if err := checkCornerID(n, line, fields[1], len(rec.GeoCorners)); err != nil {
			return err
		}
		lon, err := atof(n, line, fields[2])
		if err != nil {
			return err
		}
		lat, err := atof(n, line, fields[3])
		if err != nil {
			return err
		}
		rec.GeoCorners = append(rec.GeoCorners, GeoCorner{Lat: lat, Lon: lon})

	case strings.HasPrefix(line, prefixMMPXY):
		fields, err := cornerFields(n, line)
		if err != nil {
			return err
		}
		if err := checkCornerID(n, line, fields[1], len(rec.PixelCorners)); err != nil {
			return err
		}
		x, err := atoi(n, line, fields[2])
		if err != nil {
			return err
		}
		y, err := atoi(n, line, fields[3])
		if err != nil {
			return err
		}
		rec.PixelCorners = append(rec.PixelCorners, PixelCorner{X: x, Y: y})

	case strings.HasPrefix(line, prefixMM1B):
		raw := strings.TrimSpace(line[len(prefixMM1B):])
		if raw == "" {
			return nil
		}
		scale, err := atof(n, line, raw)
		if err != nil {
			return err
		}
		rec.ScaleFactor = &scale
	}
	return nil
}

// parsePoint decodes a PointNN line. ok is false when the point has no pixel position.
func parsePoint(n int, line string) (Point, bool, error) {
	fields := strings.Split(line, ",")
	if len(fields) > 2 && strings.TrimSpace(fields[2]) == "" {
		return Point{}, false, nil
	}
	if len(fields) < pointFieldCount {
		return Point{}, false, &FormatError{Kind: BadFieldCount, Line: n, Text: line}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	var p Point
	var err error
	if p.X, err = atoi(n, line, fields[2]); err != nil {
		return Point{}, false, err
	}
	if p.Y, err = atoi(n, line, fields[3]); err != nil {
		return Point{}, false, err
	}
	if p.Lon, err = parseDegrees(n, line, fields[6], fields[7], fields[8], East); err != nil {
		return Point{}, false, err
	}
	if p.Lat, err = parseDegrees(n, line, fields[9], fields[10], fields[11], South); err != nil {
		return Point{}, false, err
	}

	if len(fields[0]) > pointIndexOffset {
		idx, err := atoi(n, line, fields[0][pointIndexOffset:])
		if err != nil {
			return Point{}, false, err
		}
		p.Index = &idx
	}
	return p, true, nil
}

func parseDegrees(n int, line, deg, minutes, hemi, negLetter string) (float64, error) {
	d, err := atoi(n, line, deg)
	if err != nil {
		return 0, err
	}
	m, err := atof(n, line, minutes)
	if err != nil {
		return 0, err
	}
	return DecodeDegrees(d, m, hemi, negLetter), nil
}

func cornerFields(n int, line string) ([]string, error) {
	fields := strings.Split(line, ",")
	if len(fields) != cornerFieldCount {
		return nil, &FormatError{Kind: BadFieldCount, Line: n, Text: line}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields, nil
}

// checkCornerID requires corner ids to be 1-based and strictly sequential.
func checkCornerID(n int, line, raw string, have int) error {
	id, err := atoi(n, line, raw)
	if err != nil {
		return err
	}
	if id != have+1 {
		return &FormatError{
			Kind: OutOfOrderCorner,
			Line: n,
			Text: line,
			Err:  fmt.Errorf("expected id %d, got %d", have+1, id),
		}
	}
	return nil
}

func atoi(n int, line, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &FormatError{Kind: BadField, Line: n, Text: line, Err: err}
	}
	return v, nil
}

func atof(n int, line, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &FormatError{Kind: BadField, Line: n, Text: line, Err: err}
	}
	return v, nil
}

// Serialize renders the record as .map text. The output layout is fixed;
// only the record's own fields vary.
func Serialize(r *Record) string {
	var sb strings.Builder

	writeLine := func(format string, args ...any) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}

	writeLine("%s", Header)
	writeLine("%s", orPlaceholder(r.ImageFilename))
	writeLine("%s", orPlaceholder(r.ImageFilepath))
	writeLine("1 ,Map Code,")
	writeLine("WGS 84,WGS 84,   0.0000,   0.0000,WGS 84")
	writeLine("Reserved 1")
	writeLine("Reserved 2")
	writeLine("Magnetic Variation,,,E")
	writeLine("Map Projection,Latitude/Longitude,PolyCal,No,AutoCalOnly,No,BSBUseWPX,No")

	points := make([]string, 0, len(r.Points))
	for i, p := range r.Points {
		points = append(points, formatPoint(i, p))
	}
	writeLine("%s", strings.Join(points, "\n"))

	writeLine("Projection Setup,,,,,,,,,,")
	writeLine("Map Feature = MF ; Map Comment = MC     These follow if they exist")
	writeLine("Track File = TF      These follow if they exist")
	writeLine("Moving Map Parameters = MM?    These follow if they exist")
	writeLine("MM0,Yes")
	if r.CornerCount != nil {
		writeLine("MMPNUM,%d", *r.CornerCount)
	} else {
		writeLine("MMPNUM,")
	}

	mmpxy := make([]string, 0, len(r.PixelCorners))
	for i, c := range r.PixelCorners {
		mmpxy = append(mmpxy, fmt.Sprintf("MMPXY,%d,%d,%d", i+1, c.X, c.Y))
	}
	writeLine("%s", strings.Join(mmpxy, "\n"))

	// MMPLL stores longitude first, matching the field order read by Parse.
	mmpll := make([]string, 0, len(r.GeoCorners))
	for i, g := range r.GeoCorners {
		mmpll = append(mmpll, fmt.Sprintf("MMPLL,%d,%3.7f,%3.7f", i+1, g.Lon, g.Lat))
	}
	writeLine("%s", strings.Join(mmpll, "\n"))

	scale := ""
	if r.ScaleFactor != nil {
		scale = strconv.FormatFloat(*r.ScaleFactor, 'f', -1, 64)
	}
	writeLine("MM1B,%s", scale)
	writeLine("MOP,Map Open Position,0,0")

	if r.ImageWidth > 0 || r.ImageHeight > 0 {
		writeLine("IWH,Map Image Width/Height,%d,%d", r.ImageWidth, r.ImageHeight)
	} else {
		writeLine("IWH,Map Image Width/Height,,")
	}
	return sb.String()
}

func formatPoint(i int, p Point) string {
	lonDeg, lonMin, lonHemi := EncodeDegrees(p.Lon, East, West)
	latDeg, latMin, latHemi := EncodeDegrees(p.Lat, South, North)
	return fmt.Sprintf("Point%02d,xy,%5d,%5d,in, deg,%4d,%3.7f,%s,%4d,%3.7f,%s, grid,   ,           ,           ,N",
		i, p.X, p.Y, lonDeg, lonMin, lonHemi, latDeg, latMin, latHemi)
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholderImage
	}
	return s
}
