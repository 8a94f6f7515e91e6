package foundation

import (
	"errors"
	"math"
	"testing"

	"github.com/OCharnyshevich/worldclimate/pkg/world/failure"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
)

var testThresholds = Thresholds{Sea: 0, Hill: 10, Mountain: 20, Peak: 30}

func coastFoundation() Foundation {
	h := grid.FromRows([][]float64{
		{-5, 1, 2},
		{-5, 3, 4},
		{-5, 5, 6},
	})
	return Foundation{
		Heightmap:  h,
		Ocean:      DeriveOcean(h, testThresholds.Sea),
		Thresholds: testThresholds,
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := coastFoundation().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Foundation)
	}{
		{"missing mask", func(f *Foundation) { f.Ocean = nil }},
		{"dims mismatch", func(f *Foundation) {
			f.Ocean = grid.FreezeMask(grid.Dims{W: 2, H: 2}, make([]bool, 4))
		}},
		{"non-finite height", func(f *Foundation) {
			vals := f.Heightmap.Values()
			vals[4] = math.NaN()
			f.Heightmap = grid.Freeze(f.Heightmap.Dims, vals)
		}},
		{"unordered thresholds", func(f *Foundation) { f.Thresholds.Hill = 25 }},
		{"open sea not marked", func(f *Foundation) {
			flags := f.Ocean.Values()
			flags[3] = false
			f.Ocean = grid.FreezeMask(f.Ocean.Dims, flags)
		}},
		{"ocean above sea", func(f *Foundation) {
			flags := f.Ocean.Values()
			flags[1] = true
			f.Ocean = grid.FreezeMask(f.Ocean.Dims, flags)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := coastFoundation()
			tt.mutate(&f)
			err := f.Validate()
			if !errors.Is(err, failure.ErrUpstreamContract) {
				t.Fatalf("want ErrUpstreamContract, got %v", err)
			}
		})
	}
}

func TestValidateRejectsInlandOcean(t *testing.T) {
	h := grid.FromRows([][]float64{
		{5, 5, 5},
		{5, -1, 5},
		{5, 5, 5},
	})
	flags := make([]bool, 9)
	flags[4] = true
	f := Foundation{Heightmap: h, Ocean: grid.FreezeMask(h.Dims, flags), Thresholds: testThresholds}
	if err := f.Validate(); !errors.Is(err, failure.ErrUpstreamContract) {
		t.Fatalf("enclosed ocean: want ErrUpstreamContract, got %v", err)
	}
	if DeriveOcean(h, 0).Count() != 0 {
		t.Fatal("DeriveOcean must skip enclosed basins")
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	d := grid.Dims{W: 48, H: 32}
	f1, err := Synthesize(d, 42, DefaultSynthParams())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	f2, _ := Synthesize(d, 42, DefaultSynthParams())
	if !f1.Heightmap.Equal(f2.Heightmap) {
		t.Fatal("same seed produced different heightmaps")
	}
	if f1.Thresholds != f2.Thresholds {
		t.Fatal("same seed produced different thresholds")
	}
	if err := f1.Validate(); err != nil {
		t.Fatalf("synthetic foundation invalid: %v", err)
	}
	if f1.Ocean.Count() == 0 {
		t.Error("synthetic continent should have ocean at the border")
	}

	f3, _ := Synthesize(d, 43, DefaultSynthParams())
	if f1.Heightmap.Equal(f3.Heightmap) {
		t.Error("different seeds should produce different terrain")
	}
}

func TestSynthesizeRejectsBadParams(t *testing.T) {
	p := DefaultSynthParams()
	p.HillQuantile = p.SeaQuantile
	if _, err := Synthesize(grid.Dims{W: 8, H: 8}, 1, p); !errors.Is(err, failure.ErrConfiguration) {
		t.Fatalf("want ErrConfiguration, got %v", err)
	}
	if _, err := Synthesize(grid.Dims{W: 0, H: 8}, 1, DefaultSynthParams()); !errors.Is(err, failure.ErrConfiguration) {
		t.Fatalf("empty grid: want ErrConfiguration, got %v", err)
	}
}

func TestFileRoundTripDerivesOcean(t *testing.T) {
	f := coastFoundation()
	file := ToFile(f)
	file.Ocean = nil

	got, err := file.Foundation()
	if err != nil {
		t.Fatalf("Foundation: %v", err)
	}
	if got.Ocean.Count() != 3 || !got.Ocean.At(0, 1) {
		t.Fatalf("derived ocean count = %d, want the 3 cells of column 0", got.Ocean.Count())
	}

	file.Heights = file.Heights[:5]
	if _, err := file.Foundation(); !errors.Is(err, failure.ErrUpstreamContract) {
		t.Fatalf("short heights: want ErrUpstreamContract, got %v", err)
	}
}
