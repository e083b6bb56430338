package mapfile

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a FormatError.
type ErrorKind int

const (
	// BadHeader means the first line is not the OziExplorer v2.2 header.
	BadHeader ErrorKind = iota + 1
	// BadFieldCount means a line has the wrong number of comma separated fields.
	BadFieldCount
	// BadField means a field failed numeric conversion.
	BadField
	// OutOfOrderCorner means an MMPXY/MMPLL id is not the next sequential id.
	OutOfOrderCorner
	// Truncated means the file ends inside the fixed header block.
	Truncated
)

func (k ErrorKind) String() string {
	switch k {
	case BadHeader:
		return "bad_header"
	case BadFieldCount:
		return "bad_field_count"
	case BadField:
		return "bad_field"
	case OutOfOrderCorner:
		return "out_of_order_corner"
	case Truncated:
		return "truncated"
	default:
		return "unknown"
	}
}

// FormatError reports why a .map text could not be parsed.
// Line is the 0-based line number of the offending line.
type FormatError struct {
	Kind ErrorKind
	Line int
	Text string
	Err  error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("invalid .map file: %s at line %d: %q", e.Kind, e.Line, e.Text)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is matches another *FormatError by kind, so errors.Is(err, &FormatError{Kind: BadHeader}) works.
func (e *FormatError) Is(target error) bool {
	t, ok := target.(*FormatError)
	return ok && t.Kind == e.Kind
}

var (
	// ErrNoCalibration is returned when a record has no usable corner calibration.
	ErrNoCalibration = errors.New("mapfile: no calibration available")
	// ErrNoImageSize is returned when the image width or height is unknown.
	ErrNoImageSize = errors.New("mapfile: image size unknown")
	// ErrDegenerate is returned when the corner geometry cannot define a mapping,
	// e.g. two corners resolved to the same point or interpolation lines are parallel.
	ErrDegenerate = errors.New("mapfile: degenerate calibration geometry")
)
