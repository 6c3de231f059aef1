package spi

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/coreman2200/funtimes-digitmatrix/model"
	"github.com/rs/zerolog"
)

// DefaultFIFODepth matches the joined TX FIFO of an RP2040 PIO state machine.
const DefaultFIFODepth = 8

var ErrClosed = errors.New("spi: fifo closed")

// FIFO is a bounded transmit queue of pixel words. A single drain goroutine
// collects words into frames and writes each complete frame to the sink.
type FIFO struct {
	words  chan uint32
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	sink   io.Writer
	pixels int
	frames atomic.Uint64
	logger zerolog.Logger
}

func NewFIFO(depth, pixels int, sink io.Writer, logger zerolog.Logger) *FIFO {
	if depth <= 0 {
		depth = DefaultFIFODepth
	}
	f := &FIFO{
		words:  make(chan uint32, depth),
		done:   make(chan struct{}),
		sink:   sink,
		pixels: pixels,
		logger: logger.With().Str("module", "fifo").Logger(),
	}
	f.wg.Add(1)
	go f.drain()
	return f
}

// Put queues w, blocking for as long as the FIFO is full.
func (f *FIFO) Put(w uint32) error {
	select {
	case <-f.done:
		return ErrClosed
	default:
	}

	select {
	case f.words <- w:
		return nil
	case <-f.done:
		return ErrClosed
	}
}

// Frames is the number of complete frames handed to the sink.
func (f *FIFO) Frames() uint64 {
	return f.frames.Load()
}

// Close stops the drain. Words still queued are discarded.
func (f *FIFO) Close() error {
	f.once.Do(func() { close(f.done) })
	f.wg.Wait()
	return nil
}

func (f *FIFO) drain() {
	defer f.wg.Done()

	frame := make([]byte, 0, f.pixels*3)
	for {
		select {
		case <-f.done:
			return

		case w := <-f.words:
			frame = model.FromWord(w).RGB(frame)
			if len(frame) < f.pixels*3 {
				continue
			}
			if _, err := f.sink.Write(frame); err != nil {
				f.logger.Error().Err(err).Msg("frame write failed")
			}
			f.frames.Add(1)
			frame = frame[:0]
		}
	}
}
