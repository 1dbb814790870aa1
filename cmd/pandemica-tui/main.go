package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"pandemica/internal/logger"
	"pandemica/internal/params"
	"pandemica/internal/sim"
	"pandemica/internal/termview"
)

func main() {
	paramsPath := flag.String("params", "", "JSON parameter file (defaults when empty)")
	seed := flag.Uint64("seed", 0, "random seed, 0 picks one from the clock")
	interval := flag.Duration("interval", 50*time.Millisecond, "time between steps")
	logFile := flag.String("log", "", "write logs to this file instead of discarding them")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	// The terminal belongs to the viewer, so logs only go to a file.
	log := logger.Discard()
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			logger.Default().Fatal("failed to open log file", "err", err)
		}
		defer f.Close()
		if log, err = logger.New(f, *logLevel); err != nil {
			logger.Default().Fatal("invalid log level", "err", err)
		}
	}

	cfg := sim.DefaultConfig()
	if *paramsPath != "" {
		var err error
		if cfg, err = params.Load(*paramsPath); err != nil {
			logger.Default().Fatal("failed to load parameters", "path", *paramsPath, "err", err)
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	s, err := sim.New(cfg, sim.WithLogger(log.WithPrefix("sim")))
	if err != nil {
		logger.Default().Fatal("invalid configuration", "err", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		logger.Default().Fatal("failed to create screen", "err", err)
	}
	if err := screen.Init(); err != nil {
		logger.Default().Fatal("failed to initialize screen", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	termview.New(screen, s).Run(ctx, *interval)
	stop()
	screen.Fini()

	c := s.Counts()
	logger.Default().Info("viewer closed", "steps", s.Steps(), "seed", s.Seed(),
		"S", c.Get(sim.Susceptible), "E", c.Get(sim.Exposed), "I", c.Get(sim.Infectious),
		"R", c.Get(sim.Recovered), "D", c.Get(sim.Deceased))
}
