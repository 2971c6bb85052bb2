package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GPS     GPSConfig     `yaml:"gps"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

type GPSConfig struct {
	// Source is one of "serial", "tcp" or "file".
	Source string `yaml:"source"`

	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`

	// Addr is host:port of a raw NMEA TCP feed (ser2net, gpsd raw port).
	Addr           string        `yaml:"addr"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`

	// Path is a capture file replayed line by line.
	Path string `yaml:"path"`

	PPS PPSConfig `yaml:"pps"`
}

// PPSConfig selects a GPIO line wired to the receiver's timepulse output.
type PPSConfig struct {
	Enable bool   `yaml:"enable"`
	Chip   string `yaml:"chip"`
	Line   string `yaml:"line"`
}

type MetricsConfig struct {
	Enable *bool  `yaml:"enable"`
	Listen string `yaml:"listen"`
}

type LogConfig struct {
	// Diagnostics forwards per-sentence parser diagnostics to the log.
	Diagnostics *bool         `yaml:"diagnostics"`
	Interval    time.Duration `yaml:"interval"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		if strings.Contains(err.Error(), "not found in type") {
			return Config{}, fmt.Errorf("config contains unknown fields: %s", unknownFieldDetail(err))
		}
		return Config{}, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() error {
	g := &cfg.GPS
	g.Source = strings.ToLower(strings.TrimSpace(g.Source))
	if g.Source == "" {
		g.Source = "serial"
	}
	switch g.Source {
	case "serial":
		if g.Baud == 0 {
			g.Baud = 9600
		}
		if g.Baud < 0 {
			return fmt.Errorf("gps.baud must be > 0")
		}
	case "tcp":
		if strings.TrimSpace(g.Addr) == "" {
			return fmt.Errorf("gps.addr is required when gps.source is 'tcp'")
		}
		if g.ReconnectDelay <= 0 {
			g.ReconnectDelay = 1 * time.Second
		}
	case "file":
		if strings.TrimSpace(g.Path) == "" {
			return fmt.Errorf("gps.path is required when gps.source is 'file'")
		}
	default:
		return fmt.Errorf("gps.source must be one of serial, tcp, file")
	}

	if g.PPS.Enable {
		if strings.TrimSpace(g.PPS.Line) == "" {
			return fmt.Errorf("gps.pps.line is required when gps.pps.enable is true")
		}
		if g.PPS.Chip == "" {
			g.PPS.Chip = "gpiochip0"
		}
	}

	if cfg.Metrics.Enable == nil {
		v := true
		cfg.Metrics.Enable = &v
	}
	if *cfg.Metrics.Enable && cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = ":9100"
	}

	if cfg.Log.Diagnostics == nil {
		v := true
		cfg.Log.Diagnostics = &v
	}
	if cfg.Log.Interval <= 0 {
		cfg.Log.Interval = 5 * time.Second
	}
	return nil
}

// unknownFieldDetail strips yaml's "yaml: unmarshal errors:\n  line N: " prefix.
func unknownFieldDetail(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": field "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
