// Package pipeline runs the climate, erosion, moisture and biome stages over
// a terrain foundation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/OCharnyshevich/worldclimate/pkg/world/biome"
	"github.com/OCharnyshevich/worldclimate/pkg/world/climate"
	"github.com/OCharnyshevich/worldclimate/pkg/world/erosion"
	"github.com/OCharnyshevich/worldclimate/pkg/world/failure"
	"github.com/OCharnyshevich/worldclimate/pkg/world/foundation"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
	"github.com/OCharnyshevich/worldclimate/pkg/world/moisture"
)

// Stage names reported in StageError and logs.
const (
	StageConfig        = "config"
	StageFoundation    = "foundation"
	StageTemperature   = "temperature"
	StagePrecipitation = "precipitation"
	StageRainShadow    = "rain_shadow"
	StageCoastal       = "coastal_moisture"
	StageErosion       = "erosion"
	StageIrrigation    = "irrigation"
	StageHumidity      = "humidity"
	StageBiome         = "biome"
)

// Config holds the parameters of every stage.
type Config struct {
	Climate  climate.Params  `json:"climate"`
	Erosion  erosion.Params  `json:"erosion"`
	Moisture moisture.Params `json:"moisture"`
	Biome    biome.Params    `json:"biome"`
	// Workers bounds row-band parallelism; 0 uses GOMAXPROCS. Output does
	// not depend on it.
	Workers int `json:"workers"`
	// TimeBudget aborts a run that takes longer; 0 disables it.
	TimeBudget time.Duration `json:"-"`
}

// DefaultConfig returns the default parameters of every stage.
func DefaultConfig() Config {
	return Config{
		Climate:  climate.DefaultParams(),
		Erosion:  erosion.DefaultParams(),
		Moisture: moisture.DefaultParams(),
		Biome:    biome.DefaultParams(),
	}
}

// Validate checks every stage's parameters.
func (c Config) Validate() error {
	if err := c.Climate.Validate(); err != nil {
		return fmt.Errorf("climate: %w", err)
	}
	if err := c.Erosion.Validate(); err != nil {
		return fmt.Errorf("erosion: %w", err)
	}
	if err := c.Moisture.Validate(); err != nil {
		return fmt.Errorf("moisture: %w", err)
	}
	if err := c.Biome.Validate(); err != nil {
		return fmt.Errorf("biome: %w", err)
	}
	if c.Workers < 0 {
		return failure.Configf("workers %d is negative", c.Workers)
	}
	if c.TimeBudget < 0 {
		return failure.Configf("time budget %s is negative", c.TimeBudget)
	}
	return nil
}

// Result bundles every field produced by one run. All fields share Dims.
type Result struct {
	Seed int64
	Dims grid.Dims

	Temperature *grid.Field
	// Precipitation snapshots: noise base, after the rain shadow, and final
	// with coastal moisture.
	BasePrecipitation  *grid.Field
	RainShadow         *grid.Field
	FinalPrecipitation *grid.Field

	Heightmap     *grid.Field
	Ocean         *grid.Mask
	Thresholds    foundation.Thresholds
	Discharge     *grid.Field
	MomentumX     *grid.Field
	MomentumY     *grid.Field
	Water         *erosion.Classification
	Rivers        []erosion.River
	Lakes         []erosion.Lake
	Physics       erosion.Physics
	ParticleStats erosion.Stats

	Irrigation *grid.Field
	Humidity   *grid.Field
	Quantiles  moisture.Quantiles

	Biomes *biome.Map
}

// Pipeline generates worlds with one configuration. It holds no per-run
// state and may run several seeds concurrently.
type Pipeline struct {
	cfg Config
	log *slog.Logger
}

// New creates a Pipeline. A nil logger discards output.
func New(cfg Config, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{cfg: cfg, log: log}
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Generate runs every stage in order. Any failure is a *failure.StageError
// naming the stage; no partial result is returned.
func (p *Pipeline) Generate(ctx context.Context, f foundation.Foundation, seed int64) (*Result, error) {
	start := time.Now()
	parent := ctx
	if p.cfg.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.TimeBudget)
		defer cancel()
	}

	r := &run{ctx: ctx, parent: parent, seed: seed, budget: p.cfg.TimeBudget, log: p.log}
	cfg := p.cfg
	res := &Result{Seed: seed}

	r.stage(StageConfig, cfg, cfg.Validate)
	r.stage(StageFoundation, f.Thresholds, func() error {
		if err := f.Validate(); err != nil {
			return err
		}
		res.Dims = f.Dims()
		res.Ocean = f.Ocean
		res.Thresholds = f.Thresholds
		return nil
	})
	r.stage(StageTemperature, cfg.Climate, func() (err error) {
		res.Temperature, err = climate.Temperature(f, cfg.Climate, seed)
		return err
	})
	r.stage(StagePrecipitation, cfg.Climate, func() (err error) {
		res.BasePrecipitation, err = climate.BasePrecipitation(res.Temperature, cfg.Climate, seed)
		return err
	})
	r.stage(StageRainShadow, cfg.Climate, func() (err error) {
		res.RainShadow, err = climate.RainShadow(ctx, res.BasePrecipitation, f, cfg.Climate, cfg.Workers)
		return err
	})
	r.stage(StageCoastal, cfg.Climate, func() (err error) {
		res.FinalPrecipitation, err = climate.CoastalMoisture(res.RainShadow, f, cfg.Climate)
		return err
	})
	r.stage(StageErosion, cfg.Erosion, func() error {
		er, err := erosion.Simulate(ctx, f, res.FinalPrecipitation, cfg.Erosion, seed)
		if err != nil {
			return err
		}
		res.Heightmap = er.Heightmap
		res.Discharge = er.Discharge
		res.MomentumX = er.MomentumX
		res.MomentumY = er.MomentumY
		res.Water = er.Classification
		res.Rivers = er.Rivers
		res.Lakes = er.Lakes
		res.Physics = er.Physics
		res.ParticleStats = er.Stats
		return nil
	})
	r.stage(StageIrrigation, cfg.Moisture, func() (err error) {
		res.Irrigation, err = moisture.Irrigation(ctx, res.Discharge, res.Ocean, cfg.Moisture, cfg.Workers)
		return err
	})
	r.stage(StageHumidity, cfg.Moisture, func() (err error) {
		res.Humidity, err = moisture.Humidity(res.FinalPrecipitation, res.Irrigation, cfg.Moisture)
		if err == nil {
			res.Quantiles = moisture.ComputeQuantiles(res.Humidity, res.Ocean)
		}
		return err
	})
	r.stage(StageBiome, cfg.Biome, func() (err error) {
		res.Biomes, err = biome.Classify(biome.Input{
			Temperature: res.Temperature,
			Humidity:    res.Humidity,
			Quantiles:   res.Quantiles,
			Heightmap:   res.Heightmap,
			Ocean:       res.Ocean,
			Thresholds:  res.Thresholds,
			Water:       res.Water,
		}, cfg.Biome)
		return err
	})
	if r.err != nil {
		return nil, r.err
	}

	p.log.Info("world generated",
		"seed", seed,
		"size", res.Dims.String(),
		"rivers", len(res.Rivers),
		"lakes", len(res.Lakes),
		"particles", res.ParticleStats.Spawned,
		"elapsed", time.Since(start),
	)
	return res, nil
}

// run threads the first error through a sequence of stages.
type run struct {
	ctx    context.Context
	parent context.Context
	seed   int64
	budget time.Duration
	log    *slog.Logger
	err    error
}

func (r *run) stage(name string, params any, fn func() error) {
	if r.err != nil {
		return
	}
	start := time.Now()
	err := r.expired()
	if err == nil {
		err = fn()
	}
	if err == nil {
		err = r.expired()
	}
	if err != nil {
		r.err = &failure.StageError{Stage: name, Seed: r.seed, Params: params, Err: r.classify(err)}
		return
	}
	r.log.Debug("stage complete", "stage", name, "seed", r.seed, "elapsed", time.Since(start))
}

// expired reports cancellation, or a deadline that has passed even if its
// timer has not fired yet.
func (r *run) expired() error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	if dl, ok := r.ctx.Deadline(); ok && !time.Now().Before(dl) {
		return context.DeadlineExceeded
	}
	return nil
}

// classify marks deadline errors caused by the run's own time budget as
// resource exhaustion.
func (r *run) classify(err error) error {
	if r.budget > 0 && errors.Is(err, context.DeadlineExceeded) && r.parent.Err() == nil {
		if dl, ok := r.parent.Deadline(); !ok || time.Now().Before(dl) {
			return fmt.Errorf("%w: time budget %s: %w", failure.ErrResourceExhaustion, r.budget, err)
		}
	}
	return err
}
