package gps

import (
	"errors"
	"strings"
	"time"

	"gnss-nmea/internal/metrics"
	"gnss-nmea/internal/nmea"
)

// receiverState is owned by the reader goroutine; only snapshots leave it.
type receiverState struct {
	source string
	device string
	baud   int
	addr   string
	path   string

	lastFix  time.Time
	rmc      nmea.RMC
	rmcOK    bool
	ggaCount uint64
	gbs      nmea.GBS
	gbsOK    bool
	gst      nmea.GST
	gstOK    bool
	outcomes map[string]uint64
	lastErr  string
}

func newReceiverState() *receiverState {
	return &receiverState{outcomes: make(map[string]uint64)}
}

// sentenceTag returns the sentence type of a raw line, ignoring the talker:
// "$GNRMC,..." -> "RMC". It returns "" when there is no usable type field.
func sentenceTag(line string) string {
	if len(line) < 1 {
		return ""
	}
	head := line[1:]
	if i := strings.IndexAny(head, ",*"); i >= 0 {
		head = head[:i]
	}
	if len(head) < 3 {
		return ""
	}
	return strings.ToUpper(head[len(head)-3:])
}

// apply records the result of decoding one sentence. It reports whether the
// snapshot changed in a way worth publishing.
func (s *receiverState) apply(nowUTC time.Time, tag string, msg nmea.Message, err error) bool {
	s.outcomes[metrics.Outcome(err)]++
	if err != nil {
		if errors.Is(err, nmea.ErrWrongSentence) {
			// Other sentence types are expected chatter.
			return false
		}
		s.lastErr = tag + ": " + err.Error()
		return true
	}

	switch m := msg.(type) {
	case nmea.RMC:
		s.rmc = m
		s.rmcOK = true
		if m.Active {
			s.lastFix = nowUTC
		}
	case nmea.GGA:
		s.ggaCount++
	case nmea.GBS:
		s.gbs = m
		s.gbsOK = true
	case nmea.GST:
		s.gst = m
		s.gstOK = true
	}
	return true
}

func (s *receiverState) snapshot() Snapshot {
	out := Snapshot{
		Enabled:  true,
		Source:   s.source,
		Device:   s.device,
		Baud:     s.baud,
		Addr:     s.addr,
		Path:     s.path,
		GGACount: s.ggaCount,
		Outcomes: make(map[string]uint64, len(s.outcomes)),
	}
	for k, v := range s.outcomes {
		out.Outcomes[k] = v
	}
	if s.rmcOK {
		out.Valid = s.rmc.Active
		out.TimestampMS = s.rmc.TimestampMS
		out.FixTimeUTC = time.UnixMilli(int64(s.rmc.TimestampMS)).UTC().Format(time.RFC3339Nano)
		out.LatDeg = s.rmc.Latitude
		out.LonDeg = s.rmc.Longitude
	}
	if s.gbsOK {
		latErr, lonErr := s.gbs.LatErr, s.gbs.LonErr
		out.LatErrM = &latErr
		out.LonErrM = &lonErr
	}
	if s.gstOK {
		latSD, lonSD := s.gst.LatStdDev, s.gst.LonStdDev
		out.LatStdDevM = &latSD
		out.LonStdDevM = &lonSD
	}
	if !s.lastFix.IsZero() {
		out.LastFixUTC = s.lastFix.UTC().Format(time.RFC3339Nano)
	}
	out.LastError = s.lastErr
	return out
}
