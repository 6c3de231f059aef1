package spi

import (
	"fmt"
	"io"

	"github.com/coreman2200/funtimes-digitmatrix/model"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
)

const (
	// DataRate is the NRZ bit rate of the LED chain.
	DataRate physic.Frequency = 800 * physic.KiloHertz
	// SPIFreq clocks three SPI bits per NRZ bit.
	SPIFreq = (DataRate * 3) + 100*physic.KiloHertz
)

// Sink takes whole frames of raw RGB pixels.
type Sink interface {
	io.Writer
	conn.Resource
}

// Queue accepts packed pixel words, blocking while it is full.
type Queue interface {
	Put(word uint32) error
}

// PackPixel returns the word shifted out for c: GRB, MSB first, 8 bits of pad.
func PackPixel(c model.Color) uint32 {
	return c.Word()
}

// Strip pushes display buffers to the LED chain one pixel word at a time.
type Strip struct {
	q Queue
}

func NewStrip(q Queue) *Strip {
	return &Strip{q: q}
}

// Refresh pushes every position of buf in chain order, c where lit and off
// elsewhere. It blocks until the last word is queued.
func (s *Strip) Refresh(buf model.Buffer, c model.Color) error {
	on := PackPixel(c)
	off := PackPixel(model.Off)
	for i, lit := range buf {
		w := off
		if lit {
			w = on
		}
		if err := s.q.Put(w); err != nil {
			return fmt.Errorf("pixel %d: %w", i, err)
		}
	}
	return nil
}

// Output is the opened pixel sink and whatever port backs it.
type Output struct {
	Sink     Sink
	Hardware bool
	port     spi.PortCloser
}

// ChainOpts describes the LED chain for nrzled, clocked at freq. A zero freq
// means SPIFreq.
func ChainOpts(freq physic.Frequency) *nrzled.Opts {
	if freq <= 0 {
		freq = SPIFreq
	}
	return &nrzled.Opts{
		NumPixels: model.NumPixels,
		Channels:  3,
		Freq:      freq,
	}
}

// OpenOutput drives the chain through nrzled on the named SPI port. When no port
// is found, or sim is set, frames are printed at the console instead.
func OpenOutput(dev string, freq physic.Frequency, sim bool, logger zerolog.Logger) (*Output, error) {
	if sim {
		logger.Info().Msg("simulation requested; printing at the console")
		return &Output{Sink: screen.New(model.NumPixels)}, nil
	}

	p, err := spireg.Open(dev)
	if err != nil {
		logger.Warn().Err(err).Str("dev", dev).Msg("failed to find a SPI port; printing at the console")
		return &Output{Sink: screen.New(model.NumPixels)}, nil
	}

	opts := ChainOpts(freq)
	d, err := nrzled.NewSPI(p, opts)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("nrzled on %s: %w", p, err)
	}
	logger.Info().Str("dev", p.String()).Str("freq", opts.Freq.String()).Msg("LED chain ready")
	return &Output{Sink: d, Hardware: true, port: p}, nil
}

// Close blanks the chain and releases the port.
func (o *Output) Close() error {
	err := o.Sink.Halt()
	if o.port != nil {
		if cerr := o.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
