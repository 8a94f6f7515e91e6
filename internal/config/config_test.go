package config

import (
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig invalid: %v", err)
	}
	if err := cfg.Pipeline.Validate(); err != nil {
		t.Fatalf("default pipeline config invalid: %v", err)
	}
}

func TestMergeKeepsExplicitFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 99
	cfg.Pipeline.Erosion.Semantic.RiverDensity = 0.9
	cfg.Pipeline.Climate.FixedWind = "west"

	fromFile := DefaultConfig()
	fromFile.Seed = 5
	fromFile.Width = 64
	fromFile.Pipeline.Erosion.Semantic.RiverDensity = 0.1
	fromFile.Pipeline.Erosion.Semantic.ValleyDepth = 0.3
	fromFile.Pipeline.Climate.FixedWind = "north"

	Merge(cfg, fromFile, map[string]bool{"seed": true, "river-density": true})

	if cfg.Seed != 99 {
		t.Errorf("seed = %d, want explicit 99", cfg.Seed)
	}
	if cfg.Width != 64 {
		t.Errorf("width = %d, want file value 64", cfg.Width)
	}
	if got := cfg.Pipeline.Erosion.Semantic.RiverDensity; got != 0.9 {
		t.Errorf("river density = %f, want explicit 0.9", got)
	}
	if got := cfg.Pipeline.Erosion.Semantic.ValleyDepth; got != 0.3 {
		t.Errorf("valley depth = %f, want file value 0.3", got)
	}
	if got := cfg.Pipeline.Climate.FixedWind; got != "north" {
		t.Errorf("wind = %q, want file value north", got)
	}
}

func TestPipelineConfigTimeBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeBudget = "1500ms"
	pc, err := cfg.PipelineConfig()
	if err != nil {
		t.Fatalf("PipelineConfig: %v", err)
	}
	if pc.TimeBudget != 1500*time.Millisecond {
		t.Fatalf("budget = %s", pc.TimeBudget)
	}

	cfg.TimeBudget = "soon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed time budget")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"no runs", func(c *Config) { c.Runs = 0 }},
		{"no parallel", func(c *Config) { c.Parallel = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Width = 0
	cfg.Foundation = "world.json"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("size is ignored with a foundation file: %v", err)
	}
}
