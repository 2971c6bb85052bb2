package nmea

import (
	"fmt"
	"strconv"
	"strings"
)

// VerifyChecksum recomputes the XOR of every byte between the leading '$' or
// '#' and the first '*', and compares it with the hex digits after '*'.
func VerifyChecksum(sentence string) error {
	star := strings.IndexByte(sentence, '*')
	if star < 0 {
		return fmt.Errorf("%w: '*' not found", ErrChecksum)
	}

	got := byte(0)
	for i := 1; i < star; i++ {
		got ^= sentence[i]
	}

	// Like sscanf("%x"): take the leading run of hex digits, ignore the rest.
	digits := sentence[star+1:]
	n := 0
	for n < len(digits) && isHexDigit(digits[n]) {
		n++
	}
	if n == 0 {
		return fmt.Errorf("%w: no hex digits after '*'", ErrChecksum)
	}
	want, err := strconv.ParseUint(digits[:n], 16, 64)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChecksum, err)
	}

	if want != uint64(got) {
		return &ChecksumError{Want: want, Got: uint64(got), Sentence: sentence}
	}
	return nil
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
