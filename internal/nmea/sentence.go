package nmea

import (
	"math"
	"strconv"
	"strings"
)

// SentenceType identifies one of the supported sentences regardless of talker
// (GP, GN, GL, ...).
type SentenceType int

const (
	TypeRMC SentenceType = iota
	TypeGGA
	TypeGBS
	TypeGST
)

func (t SentenceType) String() string {
	if t < 0 || int(t) >= len(layouts) {
		return "unknown"
	}
	return layouts[t].tag
}

// layout describes where a sentence keeps the fields we consume. Indexes count
// the talker+type field as 0.
type layout struct {
	tag       string
	minFields int
	fields    map[string]int
}

// Sample u-blox output:
//
//	$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A
//	$GNGGA,075956.00,3734.25906,N,12201.18133,W,2,12,0.83,16.6,M,-29.7,M,,0000*40
//	$GNGBS,172814.00,0.9,0.8,1.2,,,,,,*54
//	$GNGST,172814.00,0.006,0.023,0.020,273.6,0.023,0.020,0.031*44
var layouts = [...]layout{
	// 0 type, 1 time, 2 status, 3 lat, 4 N/S, 5 lon, 6 E/W, 7 knots, 8 course,
	// 9 date, 10 magvar, 11 magvar E/W
	TypeRMC: {tag: "RMC", minFields: 12, fields: map[string]int{
		"time": 1, "status": 2, "lat": 3, "ns": 4, "lon": 5, "ew": 6, "date": 9,
	}},
	// 0 type, 1 time, 2 lat, 3 N/S, 4 lon, 5 E/W, 6 quality, 7 sats, 8 hdop,
	// 9 alt, 10 M, 11 geoid, 12 M, 13 dgps age, 14 dgps station
	TypeGGA: {tag: "GGA", minFields: 15},
	// 0 type, 1 time, 2 err lat, 3 err lon, 4 err alt, 5 svid, 6 prob, 7 bias,
	// 8 bias std dev, 9 system id, 10 signal id
	TypeGBS: {tag: "GBS", minFields: 11, fields: map[string]int{
		"lat_err": 2, "lon_err": 3,
	}},
	// 0 type, 1 time, 2 rms, 3 std major, 4 std minor, 5 orient, 6 std lat,
	// 7 std lon, 8 std alt
	TypeGST: {tag: "GST", minFields: 9, fields: map[string]int{
		"lat_std_dev": 6, "lon_std_dev": 7,
	}},
}

// Message is a decoded sentence.
type Message interface {
	Type() SentenceType
}

// RMC is the recommended minimum data: fix time and position.
type RMC struct {
	TimestampMS uint64  `json:"timestamp_ms"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	// Active is false for a void (V) status fix.
	Active bool `json:"active"`
}

// GGA carries nothing yet; a GGA sentence is only validated.
type GGA struct{}

// GBS holds the expected error in latitude and longitude, meters.
type GBS struct {
	LatErr float64 `json:"lat_err"`
	LonErr float64 `json:"lon_err"`
}

// GST holds the standard deviation of latitude and longitude error, meters.
type GST struct {
	LatStdDev float64 `json:"lat_std_dev"`
	LonStdDev float64 `json:"lon_std_dev"`
}

func (RMC) Type() SentenceType { return TypeRMC }
func (GGA) Type() SentenceType { return TypeGGA }
func (GBS) Type() SentenceType { return TypeGBS }
func (GST) Type() SentenceType { return TypeGST }

// fieldSet is the validated field sequence of one sentence.
type fieldSet struct {
	typ    SentenceType
	fields []string
}

func (f fieldSet) get(name string) string {
	return f.fields[layouts[f.typ].fields[name]]
}

func (f fieldSet) float(name string) (float64, error) {
	s := f.get(name)
	if !isDecimal(s) {
		return 0, &NumericError{Field: name, Value: s, Err: strconv.ErrSyntax}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &NumericError{Field: name, Value: s, Err: err}
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &NumericError{Field: name, Value: s, Err: strconv.ErrRange}
	}
	return v, nil
}

// isDecimal reports whether s is plain [+-]digits[.digits] text. ParseFloat
// alone would also take "NaN", "inf", exponents and hex floats.
func isDecimal(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	intPart, frac := s, ""
	if i := len(s) - len(strings.TrimLeft(s, "0123456789")); i < len(s) && s[i] == '.' {
		intPart, frac = s[:i], s[i+1:]
	}
	if intPart == "" && frac == "" {
		return false
	}
	return allDigits(intPart) && allDigits(frac)
}

func (f fieldSet) coordinate(name, hemiName string) (float64, error) {
	v, err := ParseCoordinate(f.get(name))
	if err != nil {
		if ne, ok := err.(*NumericError); ok {
			ne.Field = name
		}
		return 0, err
	}
	return applyHemisphere(v, f.get(hemiName)), nil
}

func decodeRMC(f fieldSet) (RMC, error) {
	ts, err := ComposeTimestamp(f.get("date"), f.get("time"))
	if err != nil {
		return RMC{}, err
	}
	lat, err := f.coordinate("lat", "ns")
	if err != nil {
		return RMC{}, err
	}
	lon, err := f.coordinate("lon", "ew")
	if err != nil {
		return RMC{}, err
	}
	return RMC{TimestampMS: ts, Latitude: lat, Longitude: lon, Active: f.get("status") == "A"}, nil
}

func decodeGBS(f fieldSet) (GBS, error) {
	latErr, err := f.float("lat_err")
	if err != nil {
		return GBS{}, err
	}
	lonErr, err := f.float("lon_err")
	if err != nil {
		return GBS{}, err
	}
	return GBS{LatErr: latErr, LonErr: lonErr}, nil
}

func decodeGST(f fieldSet) (GST, error) {
	latSD, err := f.float("lat_std_dev")
	if err != nil {
		return GST{}, err
	}
	lonSD, err := f.float("lon_std_dev")
	if err != nil {
		return GST{}, err
	}
	return GST{LatStdDev: latSD, LonStdDev: lonSD}, nil
}
