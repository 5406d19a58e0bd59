package attest

import (
	"fmt"
	"math"
)

// DecimalToExifDMS converts decimal degrees to the EXIF degrees and
// decimal-minutes form, e.g. 39.3517 -> "39,21.102N". Non-negative values
// map to the N/E hemispheres.
func DecimalToExifDMS(degrees float64, isLatitude bool) string {
	abs := math.Abs(degrees)
	whole := math.Floor(abs)
	minutes := (abs - whole) * 60

	var hemisphere byte
	if isLatitude {
		hemisphere = 'N'
		if degrees < 0 {
			hemisphere = 'S'
		}
	} else {
		hemisphere = 'E'
		if degrees < 0 {
			hemisphere = 'W'
		}
	}
	return fmt.Sprintf("%d,%.3f%c", int(whole), minutes, hemisphere)
}
