package gps

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"gnss-nmea/internal/metrics"
	"gnss-nmea/internal/nmea"
)

func TestService_FileReplay(t *testing.T) {
	lines := []string{
		"u-blox capture start",
		"",
		nmeaLine("GNGGA,075956.00,3734.25906,N,12201.18133,W,2,12,0.83,16.6,M,-29.7,M,,0000"),
		nmeaLine("GNRMC,075956.00,A,3734.25906,N,12201.18133,W,0.011,,221225,,,D"),
		nmeaLine("GNGST,075956.00,11,0.65,0.48,77.4,0.49,0.63,1.2"),
		"$GNGBS,075956.00,0.9,0.8,1.2,,,,,,*00",
	}
	path := filepath.Join(t.TempDir(), "capture.nmea")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\r\n")+"\r\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rec := metrics.NewRecorder()
	s := New(Config{Source: "file", Path: path}, nmea.NewParser(), rec)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Wait()
	s.Close()

	snap := s.Snapshot()
	if !snap.Valid {
		t.Fatalf("expected valid fix, snapshot=%+v", snap)
	}
	if snap.FixTimeUTC != "2025-12-22T07:59:56Z" {
		t.Fatalf("fix_time_utc=%q", snap.FixTimeUTC)
	}
	if snap.LonDeg >= 0 {
		t.Fatalf("lon=%v want western hemisphere", snap.LonDeg)
	}
	if snap.GGACount != 1 {
		t.Fatalf("gga_count=%d", snap.GGACount)
	}
	if snap.LatStdDevM == nil || *snap.LatStdDevM != 0.49 {
		t.Fatalf("lat_std_dev=%v", snap.LatStdDevM)
	}
	if snap.LastError == "" {
		t.Fatalf("expected GBS checksum error to be recorded")
	}

	if got := testutil.ToFloat64(rec.Lines); got != 4 {
		t.Fatalf("lines=%v want 4", got)
	}
	if got := testutil.ToFloat64(rec.Sentences.WithLabelValues("GBS", metrics.OutcomeChecksum)); got != 1 {
		t.Fatalf("GBS checksum=%v want 1", got)
	}
}

func TestService_FileMissing(t *testing.T) {
	s := New(Config{Source: "file", Path: filepath.Join(t.TempDir(), "nope")}, nil, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if s.Snapshot().LastError == "" {
		t.Fatalf("expected last_error")
	}
}

func TestService_TCPFeed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = conn.Write([]byte(nmeaLine("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W") + "\r\n"))
		// Hold the connection open until the test closes the listener.
		buf := make([]byte, 1)
		_, _ = conn.Read(buf)
	}()

	s := New(Config{Source: "tcp", Addr: ln.Addr().String(), ReconnectDelay: 50 * time.Millisecond}, nil, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if snap := s.Snapshot(); snap.Valid {
			if snap.Source != "tcp" || snap.Addr != ln.Addr().String() {
				t.Fatalf("snapshot=%+v", snap)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no fix received, snapshot=%+v", s.Snapshot())
}

func TestService_TCPSilentPeerStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := New(Config{Source: "tcp", Addr: ln.Addr().String(), ReconnectDelay: 50 * time.Millisecond}, nil, nil)
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var peer net.Conn
	select {
	case peer = <-accepted:
		defer peer.Close()
	case <-time.After(5 * time.Second):
		t.Fatalf("service never connected")
	}

	// The peer never writes, so the reader is parked in Scan.
	cancel()
	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("reader did not stop after cancel")
	}
	s.Close()
}

func TestService_UnknownSource(t *testing.T) {
	s := New(Config{Source: "usb"}, nil, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestService_PPSCountInSnapshot(t *testing.T) {
	rec := metrics.NewRecorder()
	s := New(Config{Source: "file"}, nil, rec)
	at := time.Date(2025, 12, 22, 8, 0, 0, 0, time.UTC)
	s.onPPS(at)
	s.onPPS(at.Add(time.Second))

	snap := s.Snapshot()
	if snap.PPSCount != 2 {
		t.Fatalf("pps_count=%d want 2", snap.PPSCount)
	}
	if snap.LastPPSUTC != "2025-12-22T08:00:01Z" {
		t.Fatalf("last_pps_utc=%q", snap.LastPPSUTC)
	}
	if got := testutil.ToFloat64(rec.PPS); got != 2 {
		t.Fatalf("pps metric=%v want 2", got)
	}
}
