package input

import (
	"context"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// pollEdge bounds each WaitForEdge so a watcher notices cancellation.
const pollEdge = 50 * time.Millisecond

var ErrNoPin = errors.New("input: no such pin")

// OpenPin looks a pin up by name, e.g. "GPIO5".
func OpenPin(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoPin, name)
	}
	return p, nil
}

// WatchPin configures pin as a pulled-up input sensitive to falling edges and
// sends b on out for every edge seen, until ctx is done.
func WatchPin(ctx context.Context, pin gpio.PinIn, b Button, out chan<- Button) error {
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return fmt.Errorf("%s button on %s: %w", b, pin, err)
	}

	for {
		if !pin.WaitForEdge(pollEdge) {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		select {
		case out <- b:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
