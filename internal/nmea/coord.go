package nmea

import (
	"strconv"
	"strings"
)

// ParseCoordinate converts an NMEA [D]DDMM.mmmm field to decimal degrees.
// The result is always a non-negative magnitude; the hemisphere is applied by
// the caller.
//
// Example: "4807.038" -> 48 + 7.038/60 = 48.1173.
func ParseCoordinate(field string) (float64, error) {
	dot := strings.IndexByte(field, '.')
	if dot < 0 {
		return 0, &NumericError{Field: "coordinate", Value: field}
	}

	whole, err := strconv.ParseUint(field[:dot], 10, 32)
	if err != nil {
		return 0, &NumericError{Field: "coordinate", Value: field, Err: err}
	}
	frac := 0.0
	if rest := field[dot:]; rest != "." {
		if !allDigits(rest[1:]) {
			return 0, &NumericError{Field: "coordinate", Value: field}
		}
		frac, err = strconv.ParseFloat(rest, 64)
		if err != nil {
			return 0, &NumericError{Field: "coordinate", Value: field, Err: err}
		}
	}

	degrees := float64(whole / 100)
	minutes := float64(whole%100) + frac
	return degrees + minutes/60.0, nil
}

// applyHemisphere negates a magnitude for the southern and western hemispheres.
func applyHemisphere(v float64, hemi string) float64 {
	if hemi == "S" || hemi == "W" {
		return -v
	}
	return v
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
