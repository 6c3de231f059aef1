// Package input turns falling edges on the two buttons into counter steps,
// ignoring further edges on a button until its debounce window has passed.
package input

import (
	"context"
	"sync"
	"time"

	"github.com/coreman2200/funtimes-digitmatrix/model"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// DefaultWindow is how long a button stays suppressed after an accepted edge.
const DefaultWindow = 200 * time.Millisecond

type Button uint8

const (
	Increment Button = iota
	Decrement
	numButtons
)

func (b Button) String() string {
	switch b {
	case Increment:
		return "increment"
	case Decrement:
		return "decrement"
	default:
		return "unknown"
	}
}

func (b Button) delta() int {
	if b == Decrement {
		return -1
	}
	return 1
}

type ButtonState uint8

const (
	Idle ButtonState = iota
	Suppressed
)

func (s ButtonState) String() string {
	if s == Suppressed {
		return "suppressed"
	}
	return "idle"
}

type Opts struct {
	Window time.Duration
	Clock  clockwork.Clock
	Logger zerolog.Logger
}

// Handler owns the debounce flag of each button and steps the shared state.
type Handler struct {
	mu     sync.Mutex
	state  *model.State
	window time.Duration
	clock  clockwork.Clock
	logger zerolog.Logger
	flags  [numButtons]bool
	timers [numButtons]clockwork.Timer
}

func NewHandler(state *model.State, o Opts) *Handler {
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return &Handler{
		state:  state,
		window: o.Window,
		clock:  o.Clock,
		logger: o.Logger.With().Str("module", "input").Logger(),
	}
}

// Edge handles one falling edge on b and reports whether it was accepted.
// An accepted edge suppresses b for the window and steps the counter; the
// counter saturates at its bounds without complaint.
func (h *Handler) Edge(b Button) bool {
	if b >= numButtons {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.flags[b] {
		return false
	}
	h.flags[b] = true
	h.timers[b] = h.clock.AfterFunc(h.window, func() { h.release(b) })

	d, changed := h.state.Step(b.delta())
	h.logger.Debug().Stringer("button", b).Uint8("digit", uint8(d)).Bool("changed", changed).Msg("edge accepted")
	return true
}

func (h *Handler) release(b Button) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flags[b] = false
	h.timers[b] = nil
}

func (h *Handler) State(b Button) ButtonState {
	if h.Suppressed(b) {
		return Suppressed
	}
	return Idle
}

func (h *Handler) Suppressed(b Button) bool {
	if b >= numButtons {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.flags[b]
}

// Run feeds edges to the handler until ctx is done or edges is closed.
func (h *Handler) Run(ctx context.Context, edges <-chan Button) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b, ok := <-edges:
			if !ok {
				return nil
			}
			h.Edge(b)
		}
	}
}

// Close cancels pending debounce timers. Suppressed buttons stay suppressed.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, t := range h.timers {
		if t != nil {
			t.Stop()
			h.timers[i] = nil
		}
	}
}
