package nmea

import (
	"errors"
	"testing"
	"time"
)

func TestComposeTimestamp(t *testing.T) {
	cases := []struct {
		name  string
		date  string
		clock string
		want  time.Time
	}{
		{
			name: "Reference", date: "230394", clock: "172312.00",
			want: time.Date(1994, time.March, 23, 17, 23, 12, 0, time.UTC),
		},
		{
			name: "TwentyFirstCentury", date: "110706", clock: "162254.00",
			want: time.Date(2006, time.July, 11, 16, 22, 54, 0, time.UTC),
		},
		{
			name: "CentiSeconds", date: "010125", clock: "000000.57",
			want: time.Date(2025, time.January, 1, 0, 0, 0, 570*int(time.Millisecond), time.UTC),
		},
		{
			name: "ExtraDigitsTruncated", date: "010125", clock: "000000.579",
			want: time.Date(2025, time.January, 1, 0, 0, 0, 570*int(time.Millisecond), time.UTC),
		},
		{
			name: "SingleFractionDigit", date: "010125", clock: "000000.5",
			want: time.Date(2025, time.January, 1, 0, 0, 0, 500*int(time.Millisecond), time.UTC),
		},
		{
			name: "NoFraction", date: "230394", clock: "123519",
			want: time.Date(1994, time.March, 23, 12, 35, 19, 0, time.UTC),
		},
		{
			name: "Month13RollsOver", date: "011324", clock: "000000.00",
			want: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Day32RollsOver", date: "320125", clock: "000000.00",
			want: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Year79", date: "010179", clock: "000000.00",
			want: time.Date(2079, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComposeTimestamp(tc.date, tc.clock)
			if err != nil {
				t.Fatalf("ComposeTimestamp err: %v", err)
			}
			if want := uint64(tc.want.UnixMilli()); got != want {
				t.Fatalf("ms=%d want %d (%s)", got, want, tc.want)
			}
		})
	}
}

func TestComposeTimestamp_ReferenceMillis(t *testing.T) {
	got, err := ComposeTimestamp("230394", "172312.00")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got != 764443392000 {
		t.Fatalf("ms=%d want 764443392000", got)
	}
}

func TestTimestamp_IsUTC(t *testing.T) {
	orig := time.Local
	time.Local = time.FixedZone("UTC+9", 9*3600)
	defer func() { time.Local = orig }()

	ts, err := Timestamp("230394", "172312.00")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if ts.Location() != time.UTC {
		t.Fatalf("location=%v want UTC", ts.Location())
	}
	if ts.Hour() != 17 {
		t.Fatalf("hour=%d want 17", ts.Hour())
	}
}

func TestComposeTimestamp_Malformed(t *testing.T) {
	cases := []struct {
		date, clock string
	}{
		{"", "172312.00"},
		{"2303", "172312.00"},
		{"230394", ""},
		{"230394", "1723"},
		{"23O394", "172312.00"},
		{"230394", "17:23:12"},
		{"230394", "172312,00"},
		{"230394", "172312.x0"},
		{"2303949999", "172312.00"},
		{"230394", "172312.00junk"},
		{"230394", "172312.001x"},
		{"230394 ", "172312.00"},
	}
	for _, tc := range cases {
		_, err := ComposeTimestamp(tc.date, tc.clock)
		if !errors.Is(err, ErrNumeric) {
			t.Fatalf("ComposeTimestamp(%q,%q) err=%v want ErrNumeric", tc.date, tc.clock, err)
		}
	}
}
