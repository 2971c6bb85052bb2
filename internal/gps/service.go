package gps

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gnss-nmea/internal/metrics"
	"gnss-nmea/internal/nmea"
)

// Config controls the receiver reader.
//
// u-blox receivers typically appear as /dev/ttyACM* and talk NMEA at 9600
// baud. Device may be empty to auto-detect.
type Config struct {
	// Source selects how sentences are read: "serial", "tcp" or "file".
	// When empty, defaults to "serial".
	Source string

	Device string
	Baud   int

	// Addr is host:port of a raw NMEA TCP feed when Source=="tcp".
	Addr           string
	ReconnectDelay time.Duration

	// Path is a capture file when Source=="file".
	Path string

	PPSEnable bool
	PPSChip   string
	PPSLine   string
}

type Snapshot struct {
	Enabled bool `json:"enabled"`
	Valid   bool `json:"valid"`

	Source string `json:"source,omitempty"`
	Device string `json:"device,omitempty"`
	Baud   int    `json:"baud,omitempty"`
	Addr   string `json:"addr,omitempty"`
	Path   string `json:"path,omitempty"`

	TimestampMS uint64   `json:"timestamp_ms,omitempty"`
	FixTimeUTC  string   `json:"fix_time_utc,omitempty"`
	LatDeg      float64  `json:"lat_deg,omitempty"`
	LonDeg      float64  `json:"lon_deg,omitempty"`
	LatErrM     *float64 `json:"lat_err_m,omitempty"`
	LonErrM     *float64 `json:"lon_err_m,omitempty"`
	LatStdDevM  *float64 `json:"lat_std_dev_m,omitempty"`
	LonStdDevM  *float64 `json:"lon_std_dev_m,omitempty"`
	GGACount    uint64   `json:"gga_count,omitempty"`

	// Outcomes counts decoded lines by metrics outcome label.
	Outcomes map[string]uint64 `json:"outcomes,omitempty"`

	PPSCount   uint64 `json:"pps_count,omitempty"`
	LastPPSUTC string `json:"last_pps_utc,omitempty"`

	LastFixUTC string `json:"last_fix_utc,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

type Service struct {
	cfg    Config
	parser *nmea.Parser
	rec    *metrics.Recorder

	cancel context.CancelFunc
	wg     sync.WaitGroup

	last atomic.Value // Snapshot

	ppsCount  atomic.Uint64
	ppsLastNs atomic.Int64

	mu     sync.Mutex
	closer io.Closer
	pps    io.Closer
}

// New returns a stopped Service. A nil parser decodes silently and a nil
// recorder skips metrics.
func New(cfg Config, parser *nmea.Parser, rec *metrics.Recorder) *Service {
	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))
	if cfg.Source == "" {
		cfg.Source = "serial"
	}
	if parser == nil {
		parser = nmea.NewParser()
	}
	s := &Service{cfg: cfg, parser: parser, rec: rec}
	s.last.Store(Snapshot{Enabled: true, Source: cfg.Source, Device: cfg.Device, Baud: cfg.Baud, Addr: cfg.Addr, Path: cfg.Path})
	return s
}

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("gps service is nil")
	}
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	var err error
	switch s.cfg.Source {
	case "serial":
		err = s.startSerialLocked(ctx)
	case "tcp":
		err = s.startTCPLocked(ctx)
	case "file":
		err = s.startFileLocked(ctx)
	default:
		err = fmt.Errorf("gps source %q not supported", s.cfg.Source)
	}
	if err != nil {
		return err
	}

	if s.cfg.PPSEnable {
		p, perr := openPPS(s.cfg.PPSChip, s.cfg.PPSLine, s.onPPS)
		if perr != nil {
			// The fix stream is still useful without a timepulse.
			s.setErrorLocked(fmt.Sprintf("pps open failed chip=%s line=%s: %v", s.cfg.PPSChip, s.cfg.PPSLine, perr))
			log.Printf("pps disabled: %v", perr)
		} else {
			s.pps = p
			log.Printf("pps enabled chip=%s line=%s", s.cfg.PPSChip, s.cfg.PPSLine)
		}
	}
	return nil
}

func (s *Service) startSerialLocked(ctx context.Context) error {
	device := strings.TrimSpace(s.cfg.Device)
	if device == "" {
		device = autoDetectDevice()
		if device == "" {
			s.setErrorLocked("gps auto-detect failed: no /dev/ttyACM* or /dev/ttyUSB* found")
			return fmt.Errorf("gps auto-detect failed")
		}
	}
	baud := s.cfg.Baud
	if baud == 0 {
		baud = 9600
	}

	f, err := openSerial(device, baud)
	if err != nil {
		s.setErrorLocked(fmt.Sprintf("gps open failed device=%s baud=%d: %v", device, baud, err))
		return err
	}
	s.closer = f

	st := s.newState()
	st.device = device
	st.baud = baud
	s.last.Store(st.snapshot())

	s.goRead(ctx, func(runCtx context.Context) {
		defer func() { _ = f.Close() }()
		log.Printf("gps enabled source=serial device=%s baud=%d", device, baud)
		s.consume(runCtx, f, st, "gps read stopped")
	})
	return nil
}

func (s *Service) startFileLocked(ctx context.Context) error {
	f, err := os.Open(s.cfg.Path)
	if err != nil {
		s.setErrorLocked(fmt.Sprintf("gps open failed path=%s: %v", s.cfg.Path, err))
		return err
	}
	s.closer = f

	st := s.newState()
	s.last.Store(st.snapshot())

	s.goRead(ctx, func(runCtx context.Context) {
		defer func() { _ = f.Close() }()
		log.Printf("gps enabled source=file path=%s", s.cfg.Path)
		s.consume(runCtx, f, st, "")
	})
	return nil
}

func (s *Service) startTCPLocked(ctx context.Context) error {
	addr := strings.TrimSpace(s.cfg.Addr)
	if addr == "" {
		return fmt.Errorf("gps tcp addr is required")
	}
	delay := s.cfg.ReconnectDelay
	if delay <= 0 {
		delay = time.Second
	}

	st := s.newState()
	s.last.Store(st.snapshot())

	s.goRead(ctx, func(runCtx context.Context) {
		log.Printf("gps enabled source=tcp addr=%s", addr)
		dialer := &net.Dialer{Timeout: 2 * time.Second}
		for {
			conn, err := dialer.DialContext(runCtx, "tcp", addr)
			if err != nil {
				s.setError(fmt.Sprintf("gps dial failed addr=%s: %v", addr, err))
			} else {
				// A blocked Scan only returns once the conn is closed, so tie the
				// conn to runCtx. Close() may already have swapped out s.closer.
				stop := context.AfterFunc(runCtx, func() { _ = conn.Close() })
				s.mu.Lock()
				s.closer = conn
				s.mu.Unlock()
				s.consume(runCtx, conn, st, "gps tcp read stopped")
				stop()
				_ = conn.Close()
			}
			if !sleepCtx(runCtx, delay) {
				return
			}
		}
	})
	return nil
}

func (s *Service) newState() *receiverState {
	st := newReceiverState()
	st.source = s.cfg.Source
	st.addr = s.cfg.Addr
	st.path = s.cfg.Path
	return st
}

func (s *Service) goRead(ctx context.Context, fn func(context.Context)) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(runCtx)
	}()
}

// consume reads newline-terminated sentences until EOF, a read error or ctx
// is done. stopMsg is recorded as the last error when the stream ends; an
// empty stopMsg treats EOF as a normal end (file replay).
func (s *Service) consume(ctx context.Context, r io.Reader, st *receiverState, stopMsg string) {
	scanner := bufio.NewScanner(r)
	// NMEA sentences are at most 82 chars, but allow some headroom.
	scanner.Buffer(make([]byte, 0, 256), 4096)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !scanner.Scan() {
			err := scanner.Err()
			if err == nil && stopMsg == "" {
				return
			}
			if err == nil {
				err = io.EOF
			}
			if stopMsg == "" {
				stopMsg = "gps replay stopped"
			}
			if ctx.Err() == nil {
				s.setError(fmt.Sprintf("%s: %v", stopMsg, err))
			}
			return
		}

		if s.handleLine(time.Now().UTC(), scanner.Text(), st) {
			s.publish(st.snapshot())
		}
	}
}

// handleLine decodes one raw line. Non-sentence chatter is skipped.
func (s *Service) handleLine(nowUTC time.Time, line string, st *receiverState) bool {
	line = strings.TrimRight(line, "\r\n")
	if line == "" || (line[0] != '$' && line[0] != '#') {
		return false
	}
	if s.rec != nil {
		s.rec.Lines.Inc()
	}

	msg, err := s.parser.Decode(line)
	tag := sentenceTag(line)
	if msg != nil {
		tag = msg.Type().String()
	}
	s.rec.Observe(tag, err)
	return st.apply(nowUTC, tag, msg, err)
}

func (s *Service) onPPS(at time.Time) {
	s.ppsCount.Add(1)
	s.ppsLastNs.Store(at.UnixNano())
	if s.rec != nil {
		s.rec.PPS.Inc()
	}
}

// Wait blocks until the reader goroutine exits, e.g. at the end of a file replay.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancel := s.cancel
	closer := s.closer
	pps := s.pps
	s.cancel = nil
	s.closer = nil
	s.pps = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if closer != nil {
		_ = closer.Close()
	}
	if pps != nil {
		_ = pps.Close()
	}
	s.wg.Wait()
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	v := s.last.Load()
	if v == nil {
		return Snapshot{}
	}
	out := v.(Snapshot)
	out.PPSCount = s.ppsCount.Load()
	if ns := s.ppsLastNs.Load(); ns != 0 {
		out.LastPPSUTC = time.Unix(0, ns).UTC().Format(time.RFC3339Nano)
	}
	return out
}

func (s *Service) publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.LastError == "" {
		// Keep transport errors recorded by setError.
		snap.LastError = s.Snapshot().LastError
	}
	s.last.Store(snap)
}

func (s *Service) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErrorLocked(msg)
}

func (s *Service) setErrorLocked(msg string) {
	cur := s.Snapshot()
	cur.LastError = msg
	// Do not force Valid=false here; transient read issues shouldn't flip validity.
	s.last.Store(cur)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func autoDetectDevice() string {
	candidates := []string{}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyACM%d", i))
	}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyUSB%d", i))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
