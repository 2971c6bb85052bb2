// Package metrics counts decode outcomes and serves them for Prometheus.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gnss-nmea/internal/nmea"
)

const (
	OutcomeOK        = "ok"
	OutcomeChecksum  = "checksum"
	OutcomeWrongType = "wrong_type"
	OutcomeFormat    = "format"
	OutcomeNumeric   = "numeric"
	OutcomeOther     = "other"
)

// typeLabels bounds the type label. Decoded types plus the sentences a
// receiver commonly interleaves; anything else, including line noise that
// fails its checksum, is counted as "unknown".
var typeLabels = map[string]bool{
	"RMC": true, "GGA": true, "GBS": true, "GST": true,
	"GSA": true, "GSV": true, "GLL": true, "VTG": true,
	"ZDA": true, "GNS": true, "TXT": true,
}

type Recorder struct {
	reg *prometheus.Registry

	Lines     prometheus.Counter
	Sentences *prometheus.CounterVec
	PPS       prometheus.Counter
}

func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		Lines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gnss_nmea_lines_total",
			Help: "Sentence lines read from the receiver",
		}),
		Sentences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gnss_nmea_sentences_total",
			Help: "Sentences decoded, by sentence type and outcome",
		}, []string{"type", "outcome"}),
		PPS: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gnss_nmea_pps_pulses_total",
			Help: "Timepulse edges seen on the PPS line",
		}),
	}
	r.reg.MustRegister(r.Lines, r.Sentences, r.PPS)
	return r
}

// Outcome maps a decode error onto its metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, nmea.ErrChecksum):
		return OutcomeChecksum
	case errors.Is(err, nmea.ErrWrongSentence):
		return OutcomeWrongType
	case errors.Is(err, nmea.ErrFormat):
		return OutcomeFormat
	case errors.Is(err, nmea.ErrNumeric):
		return OutcomeNumeric
	default:
		return OutcomeOther
	}
}

// Observe counts one decoded sentence. typ is empty when the sentence type
// could not be determined; unlisted types share the "unknown" label.
func (r *Recorder) Observe(typ string, err error) {
	if r == nil {
		return
	}
	if !typeLabels[typ] {
		typ = "unknown"
	}
	r.Sentences.WithLabelValues(typ, Outcome(err)).Inc()
}

// Handler serves /metrics and /healthz.
func (r *Recorder) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
