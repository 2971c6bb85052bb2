package nmea

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitFields_AnyOf(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		delim string
		want  []string
	}{
		{name: "Plain", in: "a,b,c", delim: ",", want: []string{"a", "b", "c"}},
		{name: "LeadingDelimiter", in: ",a", delim: ",", want: []string{"", "a"}},
		{name: "TrailingDelimiter", in: "a,", delim: ",", want: []string{"a", ""}},
		{name: "Adjacent", in: "a,,b", delim: ",", want: []string{"a", "", "b"}},
		{name: "OnlyDelimiters", in: ",,", delim: ",", want: []string{"", "", ""}},
		{name: "Empty", in: "", delim: ",", want: []string{""}},
		{name: "CharacterSet", in: "a,b*c", delim: ",*", want: []string{"a", "b", "c"}},
		{name: "NoTrim", in: " a , b ", delim: ",", want: []string{" a ", " b "}},
		{name: "EmptyDelimiter", in: "a,b", delim: "", want: []string{"a,b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitFields(tc.in, tc.delim, SplitAnyOf)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("SplitFields(%q)=%q want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSplitFields_Literal(t *testing.T) {
	got := SplitFields("a<>b<><>c<>", "<>", SplitLiteral)
	want := []string{"a", "b", "", "c", ""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}

	// In literal mode the characters of the delimiter are not split on individually.
	got = SplitFields("a<b>c", "<>", SplitLiteral)
	if len(got) != 1 || got[0] != "a<b>c" {
		t.Fatalf("got %q want single field", got)
	}
}

func TestSplitFields_CountAndRoundTrip(t *testing.T) {
	inputs := []string{
		"$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A",
		",,,",
		"no delimiters",
		",leading",
		"trailing,",
	}
	for _, in := range inputs {
		fields := SplitFields(in, ",", SplitAnyOf)
		if len(fields) != strings.Count(in, ",")+1 {
			t.Fatalf("%q: fields=%d want %d", in, len(fields), strings.Count(in, ",")+1)
		}
		if joined := strings.Join(fields, ","); joined != in {
			t.Fatalf("round trip=%q want %q", joined, in)
		}
	}
}
