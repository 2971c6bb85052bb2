package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gnss-nmea/internal/config"
	"gnss-nmea/internal/gps"
	"gnss-nmea/internal/metrics"
	"gnss-nmea/internal/nmea"
)

func main() {
	var configPath string
	var decodeOnly bool
	flag.StringVar(&configPath, "config", "./gnss-nmea.yaml", "Path to YAML config")
	flag.BoolVar(&decodeOnly, "decode", false, "Decode sentences from stdin as JSON lines and exit")
	flag.Parse()

	if decodeOnly {
		if err := decodeStream(os.Stdin, os.Stdout, nmea.NewParser()); err != nil {
			log.Fatalf("decode failed: %v", err)
		}
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	parser := nmea.NewParser()
	if *cfg.Log.Diagnostics {
		parser = nmea.NewParser(nmea.WithLogger(log.Default()))
	}
	rec := metrics.NewRecorder()

	if *cfg.Metrics.Enable {
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: rec.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Printf("metrics listen=%s", cfg.Metrics.Listen)
	}

	svc := gps.New(gpsConfig(cfg.GPS), parser, rec)
	log.Printf("gnss-nmea starting source=%s", cfg.GPS.Source)
	if err := svc.Start(ctx); err != nil {
		log.Fatalf("gps start failed: %v", err)
	}
	defer svc.Close()

	if cfg.GPS.Source == "file" {
		go func() {
			svc.Wait()
			cancel()
		}()
	}

	ticker := time.NewTicker(cfg.Log.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("%s", summary(svc.Snapshot()))
			log.Printf("gnss-nmea stopping")
			return
		case <-ticker.C:
			log.Printf("%s", summary(svc.Snapshot()))
		}
	}
}

func gpsConfig(c config.GPSConfig) gps.Config {
	return gps.Config{
		Source:         c.Source,
		Device:         c.Device,
		Baud:           c.Baud,
		Addr:           c.Addr,
		ReconnectDelay: c.ReconnectDelay,
		Path:           c.Path,
		PPSEnable:      c.PPS.Enable,
		PPSChip:        c.PPS.Chip,
		PPSLine:        c.PPS.Line,
	}
}
