package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"

	"pandemica/internal/logger"
	"pandemica/internal/params"
	"pandemica/internal/render"
	"pandemica/internal/report"
	"pandemica/internal/sim"
	"pandemica/internal/store"
	"pandemica/internal/trace"
)

type options struct {
	paramsPath string
	steps      int
	seed       uint64
	outDir     string
	video      bool
	videoScale float64
	fps        int
	dbPath     string
}

func main() {
	var opts options
	flag.StringVar(&opts.paramsPath, "params", "", "JSON parameter file (defaults when empty)")
	flag.IntVar(&opts.steps, "steps", 500, "number of steps to run")
	flag.Uint64Var(&opts.seed, "seed", 0, "random seed, 0 picks one from the clock")
	flag.StringVar(&opts.outDir, "out", "figures", "output directory")
	flag.BoolVar(&opts.video, "video", false, "record trace.avi")
	flag.Float64Var(&opts.videoScale, "video-scale", 0.75, "pixels per board unit in the video")
	flag.IntVar(&opts.fps, "fps", 30, "video frame rate")
	flag.StringVar(&opts.dbPath, "db", "", "SQLite database to record the run in")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	log, err := logger.New(os.Stderr, *logLevel)
	if err != nil {
		logger.Default().Fatal("invalid log level", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, log); err != nil {
		log.Fatal("run failed", "err", err)
	}
}

func run(ctx context.Context, opts options, log *log.Logger) error {
	cfg := sim.DefaultConfig()
	if opts.paramsPath != "" {
		var err error
		if cfg, err = params.Load(opts.paramsPath); err != nil {
			return err
		}
	}
	if opts.seed != 0 {
		cfg.Seed = opts.seed
	}
	if opts.steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", opts.steps)
	}

	s, err := sim.New(cfg, sim.WithLogger(log.WithPrefix("sim")))
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Seed = s.Seed()
	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	history, err := simulate(ctx, s, opts)
	if errors.Is(err, context.Canceled) {
		log.Warn("interrupted, writing partial results", "steps", len(history))
	} else if err != nil {
		return err
	}

	if err := writeOutputs(opts.outDir, s, history, log); err != nil {
		return err
	}
	if err := params.Save(filepath.Join(opts.outDir, "parameters.json"), cfg); err != nil {
		return err
	}

	if opts.dbPath != "" {
		db, err := store.InitSQLite(opts.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		// The run is recorded even after an interrupt.
		id, err := store.NewRunRepository(db).SaveRun(context.WithoutCancel(ctx), cfg, s.Seed(), history)
		if err != nil {
			return err
		}
		log.Info("run recorded", "id", id, "db", opts.dbPath)
	}

	final := s.Counts()
	log.Info("done",
		"steps", len(history), "seed", s.Seed(), "out", opts.outDir,
		"S", final.Get(sim.Susceptible), "E", final.Get(sim.Exposed), "I", final.Get(sim.Infectious),
		"R", final.Get(sim.Recovered), "D", final.Get(sim.Deceased))
	return nil
}

func simulate(ctx context.Context, s *sim.Simulation, opts options) ([]sim.Counts, error) {
	if !opts.video {
		return s.RunFor(ctx, opts.steps)
	}

	r := render.New(s.Config(), opts.videoScale)
	w, h := r.Size(s.Frame())
	rec, err := trace.NewRecorder(filepath.Join(opts.outDir, "trace.avi"), w, h, opts.fps)
	if err != nil {
		return nil, err
	}
	if err := rec.AddFrame(r.Render(s.Frame())); err != nil {
		rec.Close()
		return nil, err
	}
	for i := 0; i < opts.steps; i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		s.Step()
		if err := rec.AddFrame(r.Render(s.Frame())); err != nil {
			rec.Close()
			return s.History(), err
		}
	}
	if err := rec.Close(); err != nil {
		return s.History(), err
	}
	return s.History(), ctx.Err()
}

func writeOutputs(dir string, s *sim.Simulation, history []sim.Counts, log *log.Logger) error {
	profiles := s.Profiles()
	outputs := []struct {
		name  string
		write func(f *os.File) error
	}{
		{"history.csv", func(f *os.File) error { return report.WriteHistoryCSV(f, history) }},
		{"state_history.png", func(f *os.File) error { return report.StateHistoryChart(f, history) }},
		{"rates.png", func(f *os.File) error { return report.RatesChart(f, report.RateHistograms(profiles)) }},
		{"distributions.png", func(f *os.File) error {
			return report.DistributionChart(f, report.AttributeDistributions(profiles))
		}},
	}
	for _, out := range outputs {
		path := filepath.Join(dir, out.name)
		if err := writeFile(path, out.write); err != nil {
			if errors.Is(err, report.ErrNotEnoughData) {
				log.Warn("skipping output", "file", out.name, "reason", err)
				os.Remove(path)
				continue
			}
			return fmt.Errorf("failed to write %s: %w", out.name, err)
		}
		log.Debug("wrote output", "file", path)
	}
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
