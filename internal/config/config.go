package config

import (
	"fmt"
	"time"

	"github.com/OCharnyshevich/worldclimate/pkg/world/foundation"
	"github.com/OCharnyshevich/worldclimate/pkg/world/pipeline"
)

// Config holds the worldgen command configuration.
type Config struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Seed   int64 `json:"seed"`
	Runs   int   `json:"runs"` // consecutive seeds starting at Seed
	// Parallel is the number of seeds generated at once.
	Parallel int `json:"parallel"`
	// Foundation is a local path or go-getter URL of a foundation file.
	// Empty means synthesize one from Seed.
	Foundation string `json:"foundation"`
	TimeBudget string `json:"time_budget"` // e.g. "2s"; empty disables

	Synth    foundation.SynthParams `json:"synth"`
	Pipeline pipeline.Config        `json:"pipeline"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Width:    256,
		Height:   256,
		Seed:     1,
		Runs:     1,
		Parallel: 1,
		Synth:    foundation.DefaultSynthParams(),
		Pipeline: pipeline.DefaultConfig(),
	}
}

// PipelineConfig returns the pipeline configuration with the time budget
// applied.
func (c *Config) PipelineConfig() (pipeline.Config, error) {
	pc := c.Pipeline
	if c.TimeBudget != "" {
		d, err := time.ParseDuration(c.TimeBudget)
		if err != nil {
			return pc, fmt.Errorf("parse time budget: %w", err)
		}
		pc.TimeBudget = d
	}
	return pc, nil
}

// Validate checks the run settings that the pipeline does not.
func (c *Config) Validate() error {
	switch {
	case c.Foundation == "" && (c.Width <= 0 || c.Height <= 0):
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	case c.Runs < 1:
		return fmt.Errorf("runs must be at least 1, got %d", c.Runs)
	case c.Parallel < 1:
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	if _, err := c.PipelineConfig(); err != nil {
		return err
	}
	return nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["width"] {
		cfg.Width = fromFile.Width
	}
	if !explicitFlags["height"] {
		cfg.Height = fromFile.Height
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["runs"] {
		cfg.Runs = fromFile.Runs
	}
	if !explicitFlags["parallel"] {
		cfg.Parallel = fromFile.Parallel
	}
	if !explicitFlags["foundation"] {
		cfg.Foundation = fromFile.Foundation
	}
	if !explicitFlags["time-budget"] {
		cfg.TimeBudget = fromFile.TimeBudget
	}
	cfg.Synth = fromFile.Synth

	// Stage parameters come from the file except for the few exposed as flags.
	p := fromFile.Pipeline
	if explicitFlags["workers"] {
		p.Workers = cfg.Pipeline.Workers
	}
	if explicitFlags["noise"] {
		p.Climate.Noise = cfg.Pipeline.Climate.Noise
	}
	if explicitFlags["wind"] {
		p.Climate.FixedWind = cfg.Pipeline.Climate.FixedWind
	}
	if explicitFlags["river-density"] {
		p.Erosion.Semantic.RiverDensity = cfg.Pipeline.Erosion.Semantic.RiverDensity
	}
	if explicitFlags["river-meandering"] {
		p.Erosion.Semantic.RiverMeandering = cfg.Pipeline.Erosion.Semantic.RiverMeandering
	}
	if explicitFlags["valley-depth"] {
		p.Erosion.Semantic.ValleyDepth = cfg.Pipeline.Erosion.Semantic.ValleyDepth
	}
	if explicitFlags["erosion-speed"] {
		p.Erosion.Semantic.ErosionSpeed = cfg.Pipeline.Erosion.Semantic.ErosionSpeed
	}
	cfg.Pipeline = p
}
