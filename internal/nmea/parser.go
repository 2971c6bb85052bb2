package nmea

import (
	"errors"
	"log"
	"strings"
)

// Logger receives human-readable diagnostics. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}

// Parser decodes sentences and reports rejected ones to its Logger. The
// zero value is silent. A Parser holds no per-call state and is safe for
// concurrent use when its Logger is.
type Parser struct {
	log Logger
}

type Option func(*Parser)

// WithLogger sets the diagnostic sink. A nil Logger disables diagnostics.
func WithLogger(l Logger) Option {
	return func(p *Parser) { p.log = l }
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser(WithLogger(log.Default()))

// ParseRMC decodes a GPRMC/GNRMC sentence using the standard logger for diagnostics.
func ParseRMC(sentence string) (RMC, error) { return defaultParser.ParseRMC(sentence) }

// ParseGGA validates a GNGGA sentence using the standard logger for diagnostics.
func ParseGGA(sentence string) error { return defaultParser.ParseGGA(sentence) }

// ParseGBS decodes a GNGBS sentence using the standard logger for diagnostics.
func ParseGBS(sentence string) (GBS, error) { return defaultParser.ParseGBS(sentence) }

// ParseGST decodes a GNGST sentence using the standard logger for diagnostics.
func ParseGST(sentence string) (GST, error) { return defaultParser.ParseGST(sentence) }

// Decode tries each decoder in turn and returns the first that claims the sentence.
func Decode(sentence string) (Message, error) { return defaultParser.Decode(sentence) }

func (p *Parser) ParseRMC(sentence string) (RMC, error) {
	f, err := p.fields(sentence, TypeRMC)
	if err != nil {
		return RMC{}, err
	}
	m, err := decodeRMC(f)
	if err != nil {
		p.numeric(TypeRMC, err)
		return RMC{}, err
	}
	return m, nil
}

func (p *Parser) ParseGGA(sentence string) error {
	_, err := p.fields(sentence, TypeGGA)
	return err
}

func (p *Parser) ParseGBS(sentence string) (GBS, error) {
	f, err := p.fields(sentence, TypeGBS)
	if err != nil {
		return GBS{}, err
	}
	m, err := decodeGBS(f)
	if err != nil {
		p.numeric(TypeGBS, err)
		return GBS{}, err
	}
	return m, nil
}

func (p *Parser) ParseGST(sentence string) (GST, error) {
	f, err := p.fields(sentence, TypeGST)
	if err != nil {
		return GST{}, err
	}
	m, err := decodeGST(f)
	if err != nil {
		p.numeric(TypeGST, err)
		return GST{}, err
	}
	return m, nil
}

// Decode offers the sentence to the RMC, GGA, GBS and GST decoders in that
// order. A checksum or format failure from any decoder ends the search;
// ErrWrongSentence is returned when no decoder claims the sentence.
func (p *Parser) Decode(sentence string) (Message, error) {
	for _, typ := range []SentenceType{TypeRMC, TypeGGA, TypeGBS, TypeGST} {
		var (
			m   Message
			err error
		)
		switch typ {
		case TypeRMC:
			m, err = p.ParseRMC(sentence)
		case TypeGGA:
			err = p.ParseGGA(sentence)
			m = GGA{}
		case TypeGBS:
			m, err = p.ParseGBS(sentence)
		case TypeGST:
			m, err = p.ParseGST(sentence)
		}
		if errors.Is(err, ErrWrongSentence) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, ErrWrongSentence
}

// fields runs the checksum, tag and arity stages shared by every decoder.
// On success the returned set is long enough for every index in the layout.
func (p *Parser) fields(sentence string, typ SentenceType) (fieldSet, error) {
	l := layouts[typ]

	if err := VerifyChecksum(sentence); err != nil {
		var ce *ChecksumError
		if errors.As(err, &ce) {
			p.printf("nmea checksum error: want=%02x got=%02x src=[%s]", ce.Want, ce.Got, sentence)
		} else {
			p.printf("nmea format error: %v src=[%s]", err, sentence)
		}
		return fieldSet{}, err
	}

	fields := SplitFields(sentence, ",", SplitAnyOf)
	if len(fields) > 0 && !strings.Contains(fields[0], l.tag) {
		return fieldSet{}, ErrWrongSentence
	}
	if len(fields) < l.minFields {
		p.printf("nmea format error: type=%s fields=%d expected=%d(min)", typ, len(fields), l.minFields)
		return fieldSet{}, &FormatError{Type: typ, Found: len(fields), Expected: l.minFields}
	}
	return fieldSet{typ: typ, fields: fields}, nil
}

func (p *Parser) numeric(typ SentenceType, err error) {
	var ne *NumericError
	if errors.As(err, &ne) {
		p.printf("nmea numeric error: type=%s field=%s value=%q", typ, ne.Field, ne.Value)
		return
	}
	p.printf("nmea decode error: type=%s: %v", typ, err)
}

func (p *Parser) printf(format string, args ...any) {
	if p == nil || p.log == nil {
		return
	}
	p.log.Printf(format, args...)
}
