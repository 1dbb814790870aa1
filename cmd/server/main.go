package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pandemica/internal/logger"
	"pandemica/internal/params"
	"pandemica/internal/sim"
)

func main() {
	addr := flag.String("addr", ":8080", "server listen address")
	paramsPath := flag.String("params", "", "JSON parameter file (defaults when empty)")
	seed := flag.Uint64("seed", 0, "random seed, 0 picks one from the clock")
	interval := flag.Duration("interval", 100*time.Millisecond, "time between steps")
	protoDir := flag.String("proto", "proto", "directory served under /proto/")
	webDir := flag.String("web", "web", "directory served under /")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	log, err := logger.New(os.Stderr, *logLevel)
	if err != nil {
		logger.Default().Fatal("invalid log level", "err", err)
	}

	cfg := sim.DefaultConfig()
	if *paramsPath != "" {
		if cfg, err = params.Load(*paramsPath); err != nil {
			log.Fatal("failed to load parameters", "path", *paramsPath, "err", err)
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	simulation, err := sim.New(cfg, sim.WithLogger(log.WithPrefix("sim")))
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	hub := newStreamHub(log.WithPrefix("hub"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go simulation.Run(ctx, *interval, hub.broadcastFrame)

	srv := &http.Server{
		Addr:    *addr,
		Handler: newMux(simulation, hub, *protoDir, *webDir, log),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "err", err)
		}
	}()

	log.Info("serving", "url", "http://localhost"+*addr, "seed", simulation.Seed())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", "err", err)
	}
	log.Info("stopped", "steps", simulation.Steps())
}
