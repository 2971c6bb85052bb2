//go:build linux

package gps

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// openPPS watches a GPIO line wired to the receiver's timepulse output and
// calls onPulse for every rising edge. line may be a line name ("GPIO18") or
// an offset on chip.
func openPPS(chip, line string, onPulse func(time.Time)) (io.Closer, error) {
	c, err := gpiocdev.NewChip(chip, gpiocdev.WithConsumer("gnss-nmea-pps"))
	if err != nil {
		return nil, fmt.Errorf("open chip %s: %w", chip, err)
	}
	defer func() { _ = c.Close() }()

	offset, err := strconv.Atoi(line)
	if err != nil {
		offset, err = c.FindLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %q not found on %s: %w", line, chip, err)
		}
	}

	l, err := c.RequestLine(offset,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			onPulse(time.Now().UTC())
		}))
	if err != nil {
		return nil, fmt.Errorf("request line %d on %s: %w", offset, chip, err)
	}
	return l, nil
}
