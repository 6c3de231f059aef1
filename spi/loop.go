package spi

import (
	"context"
	"fmt"
	"time"

	"github.com/coreman2200/funtimes-digitmatrix/model"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
)

// DefaultHalfPeriod gives a 5 Hz blink at 50% duty.
const DefaultHalfPeriod = 100 * time.Millisecond

type LoopOpts struct {
	Color      model.Color
	HalfPeriod time.Duration
	Clock      clockwork.Clock
	Logger     zerolog.Logger
}

// Looper blinks the status pin and refreshes the strip once per blink.
type Looper struct {
	state  *model.State
	strip  *Strip
	status gpio.PinOut
	color  model.Color
	half   time.Duration
	clock  clockwork.Clock
	logger zerolog.Logger
	cycles uint64
}

func NewLooper(state *model.State, strip *Strip, status gpio.PinOut, o LoopOpts) *Looper {
	if o.HalfPeriod <= 0 {
		o.HalfPeriod = DefaultHalfPeriod
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return &Looper{
		state:  state,
		strip:  strip,
		status: status,
		color:  o.Color,
		half:   o.HalfPeriod,
		clock:  o.Clock,
		logger: o.Logger.With().Str("module", "loop").Logger(),
	}
}

// Run cycles until ctx is done or a cycle fails. The status pin is left low.
func (l *Looper) Run(ctx context.Context) error {
	l.logger.Info().Dur("half_period", l.half).Str("color", l.color.String()).Msg("main loop starting")
	defer func() {
		if err := l.status.Out(gpio.Low); err != nil {
			l.logger.Warn().Err(err).Msg("status pin left high")
		}
		l.logger.Info().Uint64("cycles", l.cycles).Msg("main loop done")
	}()

	for {
		if err := l.Cycle(ctx); err != nil {
			return err
		}
	}
}

// Cycle is one blink, high then low, followed by a strip refresh.
func (l *Looper) Cycle(ctx context.Context) error {
	if err := l.status.Out(gpio.High); err != nil {
		return fmt.Errorf("status pin: %w", err)
	}
	if err := l.sleep(ctx); err != nil {
		return err
	}
	if err := l.status.Out(gpio.Low); err != nil {
		return fmt.Errorf("status pin: %w", err)
	}
	if err := l.sleep(ctx); err != nil {
		return err
	}

	if err := l.strip.Refresh(l.state.Snapshot(), l.color); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	l.cycles++
	if l.cycles%50 == 0 {
		l.logger.Debug().Uint64("cycles", l.cycles).Uint8("digit", uint8(l.state.Digit())).Msg("refreshed")
	}
	return nil
}

func (l *Looper) sleep(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.clock.After(l.half):
		return nil
	}
}
