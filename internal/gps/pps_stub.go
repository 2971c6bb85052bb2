//go:build !linux

package gps

import (
	"fmt"
	"io"
	"time"
)

func openPPS(chip, line string, onPulse func(time.Time)) (io.Closer, error) {
	return nil, fmt.Errorf("pps unsupported on this platform")
}
