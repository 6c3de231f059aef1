package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/coreman2200/funtimes-digitmatrix/model"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

var ErrInvalid = errors.New("invalid config")

type Pins struct {
	Increment string `yaml:"increment"`
	Decrement string `yaml:"decrement"`
	Status    string `yaml:"status"`
}

type SPI struct {
	Dev     string `yaml:"dev"` // e.g. /dev/spidev0.0, empty for the first port
	FreqKHz int    `yaml:"freq_khz"`
}

type RGB struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

type Config struct {
	Driver     string `yaml:"driver"` // "spi" | "sim"
	Pins       Pins   `yaml:"pins"`
	SPI        SPI    `yaml:"spi,omitempty"`
	Color      RGB    `yaml:"color"`
	DebounceMs int    `yaml:"debounce_ms"`
	BlinkMs    int    `yaml:"blink_ms"`
	FIFODepth  int    `yaml:"fifo_depth"`
}

// Default matches the demo board wiring.
func Default() *Config {
	return &Config{
		Driver: "spi",
		Pins: Pins{
			Increment: "GPIO5",
			Decrement: "GPIO6",
			Status:    "GPIO13",
		},
		SPI:        SPI{FreqKHz: 2500},
		Color:      RGB{R: 0, G: 5, B: 5},
		DebounceMs: 200,
		BlinkMs:    100,
		FIFODepth:  8,
	}
}

// Load reads path over the defaults; keys missing from the file keep their
// default value.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	switch c.Driver {
	case "spi", "sim":
	default:
		return fmt.Errorf("%w: driver %q", ErrInvalid, c.Driver)
	}
	if c.Pins.Increment == "" || c.Pins.Decrement == "" || c.Pins.Status == "" {
		return fmt.Errorf("%w: every pin must be named", ErrInvalid)
	}
	if c.Pins.Increment == c.Pins.Decrement {
		return fmt.Errorf("%w: both buttons on %s", ErrInvalid, c.Pins.Increment)
	}
	if c.SPI.FreqKHz <= 0 {
		return fmt.Errorf("%w: spi freq_khz %d", ErrInvalid, c.SPI.FreqKHz)
	}
	if c.DebounceMs <= 0 || c.BlinkMs <= 0 {
		return fmt.Errorf("%w: debounce_ms and blink_ms must be positive", ErrInvalid)
	}
	if c.FIFODepth <= 0 {
		return fmt.Errorf("%w: fifo_depth %d", ErrInvalid, c.FIFODepth)
	}
	return nil
}

// SPIFreq is the clock of the SPI port feeding the LED chain.
func (c *Config) SPIFreq() physic.Frequency {
	return physic.Frequency(c.SPI.FreqKHz) * physic.KiloHertz
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// HalfPeriod is how long the status LED stays in each state.
func (c *Config) HalfPeriod() time.Duration {
	return time.Duration(c.BlinkMs) * time.Millisecond
}

func (c *Config) LEDColor() model.Color {
	return model.NewColor(c.Color.R, c.Color.G, c.Color.B)
}
