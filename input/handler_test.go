package input

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/coreman2200/funtimes-digitmatrix/model"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
}

type rig struct {
	t     *testing.T
	clk   fakeClock
	state *model.State
	h     *Handler
}

func newRig(t *testing.T) *rig {
	clk := clockwork.NewFakeClock()
	state := model.NewState()
	h := NewHandler(state, Opts{Window: DefaultWindow, Clock: clk, Logger: zerolog.Nop()})
	t.Cleanup(h.Close)
	return &rig{t: t, clk: clk, state: state, h: h}
}

// advance moves the clock on and waits for any debounce timer it expired.
func (r *rig) advance(d time.Duration, expired ...Button) {
	r.clk.Advance(d)
	for _, b := range expired {
		b := b
		require.Eventually(r.t, func() bool { return !r.h.Suppressed(b) }, time.Second, time.Millisecond, "%s still suppressed", b)
	}
}

func TestEdgeSuppressedInsideWindow(t *testing.T) {
	r := newRig(t)

	require.True(t, r.h.Edge(Increment))
	assert.Equal(t, Suppressed, r.h.State(Increment))
	assert.Equal(t, model.Digit(1), r.state.Digit())

	r.advance(199 * time.Millisecond)
	assert.False(t, r.h.Edge(Increment), "edge at 199ms must be dropped")
	assert.Equal(t, model.Digit(1), r.state.Digit())

	r.advance(2*time.Millisecond, Increment)
	assert.Equal(t, Idle, r.h.State(Increment))
	assert.True(t, r.h.Edge(Increment), "edge at 201ms must be accepted")
	assert.Equal(t, model.Digit(2), r.state.Digit())
}

func TestThreeSpacedIncrements(t *testing.T) {
	r := newRig(t)

	for i := 0; i < 3; i++ {
		require.True(t, r.h.Edge(Increment))
		r.advance(250*time.Millisecond, Increment)
	}

	assert.Equal(t, model.Digit(3), r.state.Digit())
	assert.Equal(t, model.Render(3), r.state.Snapshot())
}

func TestIncrementAtNineIsClamped(t *testing.T) {
	r := newRig(t)
	for i := 0; i < 9; i++ {
		r.state.Step(1)
	}
	before := r.state.Snapshot()

	assert.True(t, r.h.Edge(Increment), "edge is still accepted and starts the window")
	assert.Equal(t, model.MaxDigit, r.state.Digit())
	assert.Equal(t, before, r.state.Snapshot())
}

func TestDecrementAtZeroIsClamped(t *testing.T) {
	r := newRig(t)
	assert.True(t, r.h.Edge(Decrement))
	assert.Equal(t, model.MinDigit, r.state.Digit())
	assert.Equal(t, model.Render(0), r.state.Snapshot())
}

func TestBounceWithinWindowCountsOnce(t *testing.T) {
	r := newRig(t)

	r.h.Edge(Increment)
	r.advance(50 * time.Millisecond)
	r.h.Edge(Increment)

	assert.Equal(t, model.Digit(1), r.state.Digit())
}

func TestButtonsAreIndependent(t *testing.T) {
	r := newRig(t)
	r.state.Step(1)
	r.state.Step(1)

	assert.True(t, r.h.Edge(Increment))
	assert.True(t, r.h.Edge(Decrement))
	assert.Equal(t, model.Digit(2), r.state.Digit())
	assert.Equal(t, Suppressed, r.h.State(Increment))
	assert.Equal(t, Suppressed, r.h.State(Decrement))

	r.advance(DefaultWindow, Increment, Decrement)
	assert.True(t, r.h.Edge(Decrement))
	assert.Equal(t, model.Digit(1), r.state.Digit())
}

func TestCounterStaysInRange(t *testing.T) {
	r := newRig(t)
	rnd := rand.New(rand.NewSource(7))

	for i := 0; i < 300; i++ {
		b := Button(rnd.Intn(int(numButtons)))
		r.h.Edge(b)
		for j := rnd.Intn(3); j > 0; j-- {
			r.h.Edge(b)
		}

		d := r.state.Digit()
		require.True(t, d <= model.MaxDigit, "digit %d out of range", d)
		require.Equal(t, model.Render(d), r.state.Snapshot())

		r.advance(250*time.Millisecond, Increment, Decrement)
	}
}

func TestUnknownButtonIgnored(t *testing.T) {
	r := newRig(t)
	assert.False(t, r.h.Edge(Button(7)))
	assert.Equal(t, Idle, r.h.State(Button(7)))
	assert.Equal(t, "unknown", Button(7).String())
	assert.Equal(t, model.MinDigit, r.state.Digit())
}

func TestRunConsumesEdges(t *testing.T) {
	r := newRig(t)
	edges := make(chan Button, 4)
	edges <- Increment
	edges <- Increment
	edges <- Decrement
	close(edges)

	require.NoError(t, r.h.Run(context.Background(), edges))
	assert.Equal(t, model.Digit(0), r.state.Digit())
	assert.Equal(t, Suppressed, r.h.State(Increment))
	assert.Equal(t, Suppressed, r.h.State(Decrement))
}

func TestRunStopsOnCancel(t *testing.T) {
	r := newRig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.h.Run(ctx, make(chan Button))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloseStopsTimers(t *testing.T) {
	r := newRig(t)
	r.h.Edge(Increment)
	r.h.Close()

	r.clk.Advance(time.Second)
	assert.Never(t, func() bool { return !r.h.Suppressed(Increment) }, 50*time.Millisecond, time.Millisecond)
}
