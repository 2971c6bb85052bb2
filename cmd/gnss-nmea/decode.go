package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gnss-nmea/internal/gps"
	"gnss-nmea/internal/metrics"
	"gnss-nmea/internal/nmea"
)

type decodeResult struct {
	Type    string       `json:"type,omitempty"`
	Message nmea.Message `json:"message,omitempty"`
	Outcome string       `json:"outcome"`
	Error   string       `json:"error,omitempty"`
	Line    string       `json:"line,omitempty"`
}

// decodeStream decodes one sentence per input line and writes one JSON object
// per sentence. Blank lines are skipped; rejected sentences are reported with
// their outcome rather than aborting the stream.
func decodeStream(r io.Reader, w io.Writer, p *nmea.Parser) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256), 64*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		msg, err := p.Decode(line)
		res := decodeResult{Outcome: metrics.Outcome(err)}
		if err != nil {
			res.Error = err.Error()
			res.Line = line
		} else {
			res.Type = msg.Type().String()
			res.Message = msg
		}
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return scanner.Err()
}

func summary(s gps.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "gps source=%s valid=%t", s.Source, s.Valid)
	if s.FixTimeUTC != "" {
		fmt.Fprintf(&b, " fix_time=%s lat=%.7f lon=%.7f", s.FixTimeUTC, s.LatDeg, s.LonDeg)
	}
	if s.LatStdDevM != nil && s.LonStdDevM != nil {
		fmt.Fprintf(&b, " std_dev_m=%.3f/%.3f", *s.LatStdDevM, *s.LonStdDevM)
	}
	if s.LatErrM != nil && s.LonErrM != nil {
		fmt.Fprintf(&b, " err_m=%.3f/%.3f", *s.LatErrM, *s.LonErrM)
	}
	if s.PPSCount > 0 {
		fmt.Fprintf(&b, " pps=%d", s.PPSCount)
	}
	fmt.Fprintf(&b, " ok=%d rejected=%d", s.Outcomes[metrics.OutcomeOK],
		s.Outcomes[metrics.OutcomeChecksum]+s.Outcomes[metrics.OutcomeFormat]+s.Outcomes[metrics.OutcomeNumeric]+s.Outcomes[metrics.OutcomeOther])
	if s.LastError != "" {
		fmt.Fprintf(&b, " last_error=%q", s.LastError)
	}
	return b.String()
}
