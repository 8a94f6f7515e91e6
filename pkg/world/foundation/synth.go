package foundation

import (
	"fmt"
	"math"

	"github.com/OCharnyshevich/worldclimate/pkg/world/failure"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
	"github.com/OCharnyshevich/worldclimate/pkg/world/noise"
)

// SynthParams controls the synthetic noise terrain.
type SynthParams struct {
	Noise       noise.Kind `json:"noise"`
	Octaves     int        `json:"octaves"`
	Persistence float64    `json:"persistence"`
	// Scale is the feature size of the base octave, in cells.
	Scale float64 `json:"scale"`
	// Relief is the height of the tallest terrain in heightmap units.
	Relief float64 `json:"relief"`
	// EdgeFalloff pushes the border down so the map reads as a continent.
	EdgeFalloff float64 `json:"edge_falloff"`

	SeaQuantile      float64 `json:"sea_quantile"`
	HillQuantile     float64 `json:"hill_quantile"`
	MountainQuantile float64 `json:"mountain_quantile"`
	PeakQuantile     float64 `json:"peak_quantile"`
}

// DefaultSynthParams returns parameters for an island continent.
func DefaultSynthParams() SynthParams {
	return SynthParams{
		Noise:            noise.KindSimplex,
		Octaves:          6,
		Persistence:      0.5,
		Scale:            128,
		Relief:           4000,
		EdgeFalloff:      1.2,
		SeaQuantile:      0.35,
		HillQuantile:     0.7,
		MountainQuantile: 0.88,
		PeakQuantile:     0.97,
	}
}

// Validate checks the synthesis parameters.
func (p SynthParams) Validate() error {
	if err := failure.Finite([]string{"persistence", "scale", "relief", "edge_falloff"},
		p.Persistence, p.Scale, p.Relief, p.EdgeFalloff); err != nil {
		return err
	}
	if p.Octaves < 1 || p.Scale <= 0 || p.Relief <= 0 {
		return failure.Configf("synth: octaves=%d scale=%g relief=%g", p.Octaves, p.Scale, p.Relief)
	}
	qs := []float64{p.SeaQuantile, p.HillQuantile, p.MountainQuantile, p.PeakQuantile}
	for i, q := range qs {
		if q <= 0 || q >= 1 || (i > 0 && q <= qs[i-1]) {
			return failure.Configf("synth: threshold quantiles must increase within (0,1): %v", qs)
		}
	}
	return nil
}

// Synthesize builds a noise terrain of the given size. Thresholds come from
// height quantiles and the ocean is every border-connected cell below sea.
func Synthesize(d grid.Dims, seed int64, p SynthParams) (Foundation, error) {
	if err := d.Validate(); err != nil {
		return Foundation{}, failure.Configf("synth: %v", err)
	}
	if err := p.Validate(); err != nil {
		return Foundation{}, err
	}

	base, err := noise.New(p.Noise, seed)
	if err != nil {
		return Foundation{}, failure.Configf("synth: %v", err)
	}
	detail, err := noise.New(p.Noise, seed+1)
	if err != nil {
		return Foundation{}, fmt.Errorf("synth detail noise: %w", err)
	}
	terrain := noise.Fractal{Sampler: base, Octaves: p.Octaves, Persistence: p.Persistence, Frequency: 1 / p.Scale}
	rough := noise.Fractal{Sampler: detail, Octaves: 3, Persistence: 0.5, Frequency: 4 / p.Scale}

	heights := make([]float64, d.Len())
	for y := range d.H {
		ny := 2*(float64(y)+0.5)/float64(d.H) - 1
		for x := range d.W {
			nx := 2*(float64(x)+0.5)/float64(d.W) - 1
			edge := math.Max(math.Abs(nx), math.Abs(ny))
			v := terrain.At01(float64(x), float64(y)) + 0.1*rough.At(float64(x), float64(y))
			v -= p.EdgeFalloff * edge * edge * edge
			heights[d.Index(x, y)] = v * p.Relief
		}
	}

	cuts := grid.Quantiles(heights, p.SeaQuantile, p.HillQuantile, p.MountainQuantile, p.PeakQuantile)
	th := Thresholds{Sea: cuts[0], Hill: cuts[1], Mountain: cuts[2], Peak: cuts[3]}
	if err := th.Validate(); err != nil {
		return Foundation{}, fmt.Errorf("synth: degenerate terrain: %w", err)
	}

	h := grid.Freeze(d, heights)
	return Foundation{
		Heightmap:  h,
		Ocean:      DeriveOcean(h, th.Sea),
		Thresholds: th,
	}, nil
}
