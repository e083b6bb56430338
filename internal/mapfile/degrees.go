package mapfile

// Hemisphere letters used by the Point lines.
const (
	North = "N"
	South = "S"
	East  = "E"
	West  = "W"
)

// EncodeDegrees splits a signed degree value into whole degrees, fractional
// minutes and a hemisphere letter: negLetter for negative values, posLetter otherwise.
func EncodeDegrees(d float64, negLetter, posLetter string) (deg int, minutes float64, hemi string) {
	hemi = posLetter
	if d < 0 {
		d = -d
		hemi = negLetter
	}
	deg = int(d)
	return deg, (d - float64(deg)) * 60, hemi
}

// DecodeDegrees is the inverse of EncodeDegrees.
func DecodeDegrees(deg int, minutes float64, hemi, negLetter string) float64 {
	d := float64(deg) + minutes/60
	if hemi == negLetter {
		d = -d
	}
	return d
}
