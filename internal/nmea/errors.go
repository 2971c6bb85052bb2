package nmea

import (
	"errors"
	"fmt"
)

var (
	// ErrChecksum is matched by every checksum failure, including a missing '*'.
	ErrChecksum = errors.New("nmea: checksum failure")
	// ErrWrongSentence means the decoder does not handle this sentence type.
	// It is a routing signal rather than a failure.
	ErrWrongSentence = errors.New("nmea: wrong sentence type")
	ErrFormat        = errors.New("nmea: format error")
	ErrNumeric       = errors.New("nmea: numeric conversion error")
)

type ChecksumError struct {
	Want     uint64
	Got      uint64
	Sentence string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("nmea: checksum mismatch want=%02x got=%02x", e.Want, e.Got)
}

func (e *ChecksumError) Is(target error) bool { return target == ErrChecksum }

// FormatError reports a sentence with fewer fields than its layout requires.
type FormatError struct {
	Type     SentenceType
	Found    int
	Expected int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("nmea: %s has %d fields, expected %d(min)", e.Type, e.Found, e.Expected)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// NumericError reports a field whose text could not be converted.
type NumericError struct {
	Field string
	Value string
	Err   error
}

func (e *NumericError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("nmea: invalid %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("nmea: invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *NumericError) Is(target error) bool { return target == ErrNumeric }

func (e *NumericError) Unwrap() error { return e.Err }
