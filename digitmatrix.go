package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-digitmatrix/input"
	"github.com/coreman2200/funtimes-digitmatrix/internal/config"
	"github.com/coreman2200/funtimes-digitmatrix/model"
	"github.com/coreman2200/funtimes-digitmatrix/spi"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		spiDev     = flag.String("spi", "", "SPI port for the LED chain (empty: first available)")
		simOnly    = flag.Bool("sim-only", false, "print frames at the console instead of driving LEDs")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Config: file over defaults, then flags ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatal().Err(err).Str("path", *configPath).Msg("config load failed")
		}
		log.Info().Str("path", *configPath).Msg("no config file; using defaults")
		cfg = config.Default()
	}
	if *spiDev != "" {
		cfg.SPI.Dev = *spiDev
	}
	if *simOnly {
		cfg.Driver = "sim"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log.Logger); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("digit matrix stopped")
	}
	log.Info().Msg("shutting down")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("host init: %w", err)
	}

	inc, err := input.OpenPin(cfg.Pins.Increment)
	if err != nil {
		return err
	}
	dec, err := input.OpenPin(cfg.Pins.Decrement)
	if err != nil {
		return err
	}
	status, err := input.OpenPin(cfg.Pins.Status)
	if err != nil {
		return err
	}
	if err := status.Out(gpio.Low); err != nil {
		return fmt.Errorf("status pin %s: %w", status, err)
	}

	out, err := spi.OpenOutput(cfg.SPI.Dev, cfg.SPIFreq(), cfg.Driver == "sim", logger)
	if err != nil {
		return err
	}
	defer out.Close()

	fifo := spi.NewFIFO(cfg.FIFODepth, model.NumPixels, out.Sink, logger)
	defer fifo.Close()

	clock := clockwork.NewRealClock()
	state := model.NewState()

	handler := input.NewHandler(state, input.Opts{
		Window: cfg.Debounce(),
		Clock:  clock,
		Logger: logger,
	})
	defer handler.Close()

	looper := spi.NewLooper(state, spi.NewStrip(fifo), status, spi.LoopOpts{
		Color:      cfg.LEDColor(),
		HalfPeriod: cfg.HalfPeriod(),
		Clock:      clock,
		Logger:     logger,
	})

	logger.Info().
		Str("increment", inc.Name()).
		Str("decrement", dec.Name()).
		Str("status", status.Name()).
		Str("sink", out.Sink.String()).
		Bool("hardware", out.Hardware).
		Msg("digit matrix starting")

	edges := make(chan input.Button, 4)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return input.WatchPin(ctx, inc, input.Increment, edges) })
	g.Go(func() error { return input.WatchPin(ctx, dec, input.Decrement, edges) })
	g.Go(func() error { return handler.Run(ctx, edges) })
	g.Go(func() error { return looper.Run(ctx) })
	return g.Wait()
}
