package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/worldclimate/internal/config"
	"github.com/OCharnyshevich/worldclimate/internal/fetch"
	"github.com/OCharnyshevich/worldclimate/internal/storage"
	"github.com/OCharnyshevich/worldclimate/pkg/world/foundation"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
	"github.com/OCharnyshevich/worldclimate/pkg/world/noise"
	"github.com/OCharnyshevich/worldclimate/pkg/world/pipeline"
)

func main() {
	cfg := config.DefaultConfig()

	var (
		dir            = flag.String("dir", "./data", "data directory for config, foundations and reports")
		verbose        = flag.Bool("v", false, "log every stage")
		saveConfig     = flag.Bool("save-config", false, "write the effective config to the data directory")
		saveFoundation = flag.Bool("save-foundation", false, "write synthesized foundations to the data directory")
	)
	flag.IntVar(&cfg.Width, "width", cfg.Width, "map width in cells")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "map height in cells")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "first seed")
	flag.IntVar(&cfg.Runs, "runs", cfg.Runs, "number of consecutive seeds to generate")
	flag.IntVar(&cfg.Parallel, "parallel", cfg.Parallel, "seeds generated at once")
	flag.StringVar(&cfg.Foundation, "foundation", cfg.Foundation, "foundation file path or go-getter URL (default: synthesize)")
	flag.StringVar(&cfg.TimeBudget, "time-budget", cfg.TimeBudget, "abort a run after this duration, e.g. 2s")
	flag.IntVar(&cfg.Pipeline.Workers, "workers", cfg.Pipeline.Workers, "row workers per run (0 = GOMAXPROCS)")
	flag.Func("noise", "climate noise: opensimplex, perlin or simplex", func(s string) error {
		cfg.Pipeline.Climate.Noise = noise.Kind(s)
		return nil
	})
	flag.StringVar(&cfg.Pipeline.Climate.FixedWind, "wind", cfg.Pipeline.Climate.FixedWind, "fixed wind direction: east, west, north, south (default: latitude bands)")
	flag.Float64Var(&cfg.Pipeline.Erosion.Semantic.RiverDensity, "river-density", cfg.Pipeline.Erosion.Semantic.RiverDensity, "river density in [0,1]")
	flag.Float64Var(&cfg.Pipeline.Erosion.Semantic.RiverMeandering, "river-meandering", cfg.Pipeline.Erosion.Semantic.RiverMeandering, "river meandering in [0,1]")
	flag.Float64Var(&cfg.Pipeline.Erosion.Semantic.ValleyDepth, "valley-depth", cfg.Pipeline.Erosion.Semantic.ValleyDepth, "valley depth in [0,1]")
	flag.Float64Var(&cfg.Pipeline.Erosion.Semantic.ErosionSpeed, "erosion-speed", cfg.Pipeline.Erosion.Semantic.ErosionSpeed, "erosion speed in [0,1]")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	store, err := storage.New(*dir, log)
	if err != nil {
		log.Error("open storage", "error", err)
		os.Exit(1)
	}

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	fromFile := config.DefaultConfig()
	if err := store.LoadConfig(fromFile); err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}
	config.Merge(cfg, fromFile, explicit)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}
	if *saveConfig {
		if err := store.SaveConfig(cfg); err != nil {
			log.Error("save config", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, store, log, *saveFoundation); err != nil {
		log.Error("worldgen failed", "error", err)
		os.Exit(1)
	}
}

// run generates cfg.Runs consecutive seeds, at most cfg.Parallel at a time,
// and stores a report for each.
func run(ctx context.Context, cfg *config.Config, store *storage.Storage, log *slog.Logger, saveFoundation bool) error {
	pcfg, err := cfg.PipelineConfig()
	if err != nil {
		return err
	}
	gen := pipeline.New(pcfg, log)

	var shared *foundation.Foundation
	if cfg.Foundation != "" {
		path, err := fetch.New(store.FoundationDir(), log).Fetch(ctx, cfg.Foundation)
		if err != nil {
			return err
		}
		f, err := store.LoadFoundation(path)
		if err != nil {
			return err
		}
		shared = &f
	}

	log.Info("generating worlds",
		"seed", cfg.Seed,
		"runs", cfg.Runs,
		"parallel", cfg.Parallel,
		"workers", gen.Config().Workers,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallel)
	for i := range cfg.Runs {
		seed := cfg.Seed + int64(i)
		g.Go(func() error {
			f, err := foundationFor(cfg, shared, seed)
			if err != nil {
				return err
			}
			if shared == nil && saveFoundation {
				if err := store.SaveFoundation(fmt.Sprintf("seed-%d", seed), f); err != nil {
					return err
				}
			}

			res, err := gen.Generate(gctx, f, seed)
			if err != nil {
				return err
			}
			return store.SaveReport(res)
		})
	}
	return g.Wait()
}

// foundationFor returns the shared foundation, or synthesizes one from seed.
func foundationFor(cfg *config.Config, shared *foundation.Foundation, seed int64) (foundation.Foundation, error) {
	if shared != nil {
		return *shared, nil
	}
	f, err := foundation.Synthesize(grid.Dims{W: cfg.Width, H: cfg.Height}, seed, cfg.Synth)
	if err != nil {
		return foundation.Foundation{}, fmt.Errorf("synthesize foundation for seed %d: %w", seed, err)
	}
	return f, nil
}
