package nmea

import (
	"strconv"
	"time"
)

// Two-digit years at or above this value are read as 19YY. GPS time starts in
// 1980, so no receiver reports an earlier date.
const centuryPivot = 80

// ComposeTimestamp combines an RMC date (DDMMYY) and time (HHMMSS or
// HHMMSS.ss) into milliseconds since the Unix epoch, UTC. The fraction must be
// all digits; only the first two are honoured.
//
// Calendar fields are not range checked: month 13 or day 32 roll over the same
// way time.Date normalises them.
func ComposeTimestamp(date, clock string) (uint64, error) {
	t, err := Timestamp(date, clock)
	if err != nil {
		return 0, err
	}
	return uint64(t.UnixMilli()), nil
}

// Timestamp is ComposeTimestamp returning a time.Time in UTC.
func Timestamp(date, clock string) (time.Time, error) {
	if len(date) != 6 {
		return time.Time{}, &NumericError{Field: "date", Value: date}
	}
	if len(clock) < 6 || (len(clock) > 6 && clock[6] != '.') {
		return time.Time{}, &NumericError{Field: "time", Value: clock}
	}

	var dmy, hms [3]int
	for i := 0; i < 3; i++ {
		v, err := twoDigits(date[2*i : 2*i+2])
		if err != nil {
			return time.Time{}, &NumericError{Field: "date", Value: date, Err: err}
		}
		dmy[i] = v
		v, err = twoDigits(clock[2*i : 2*i+2])
		if err != nil {
			return time.Time{}, &NumericError{Field: "time", Value: clock, Err: err}
		}
		hms[i] = v
	}

	ms := 0
	if len(clock) > 7 {
		frac := clock[7:]
		if !allDigits(frac) {
			return time.Time{}, &NumericError{Field: "time", Value: clock}
		}
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for i, scale := 0, 100; i < len(frac); i, scale = i+1, scale/10 {
			ms += int(frac[i]-'0') * scale
		}
	}

	year := 2000 + dmy[2]
	if dmy[2] >= centuryPivot {
		year = 1900 + dmy[2]
	}
	t := time.Date(year, time.Month(dmy[1]), dmy[0], hms[0], hms[1], hms[2], ms*int(time.Millisecond), time.UTC)
	return t, nil
}

func twoDigits(s string) (int, error) {
	if !allDigits(s) {
		return 0, strconv.ErrSyntax
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), nil
}
