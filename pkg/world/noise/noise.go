// Package noise provides seeded coherent noise for climate fields.
package noise

import (
	"fmt"

	perlin "github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Sampler evaluates 2D coherent noise in [-1, 1].
type Sampler interface {
	Eval2(x, y float64) float64
}

// Kind selects a noise implementation.
type Kind string

const (
	KindOpenSimplex Kind = "opensimplex"
	KindPerlin      Kind = "perlin"
	KindSimplex     Kind = "simplex"
)

// New returns a sampler of the given kind seeded with seed.
func New(kind Kind, seed int64) (Sampler, error) {
	switch kind {
	case KindOpenSimplex, "":
		return opensimplex.New(seed), nil
	case KindPerlin:
		return &perlinSampler{p: perlin.NewPerlin(2, 2, 3, seed)}, nil
	case KindSimplex:
		return NewSimplex(seed), nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", kind)
	}
}

type perlinSampler struct {
	p *perlin.Perlin
}

func (s *perlinSampler) Eval2(x, y float64) float64 {
	return clampUnit(s.p.Noise2D(x, y))
}

// Fractal layers octaves of a Sampler.
type Fractal struct {
	Sampler     Sampler
	Octaves     int
	Persistence float64
	// Frequency is the base frequency in cycles per cell.
	Frequency float64
}

// At returns octave noise at (x, y), roughly in [-1, 1].
func (f Fractal) At(x, y float64) float64 {
	octaves := max(f.Octaves, 1)
	var total, maxVal float64
	amplitude := 1.0
	frequency := f.Frequency
	for range octaves {
		total += f.Sampler.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= f.Persistence
		frequency *= 2
	}
	return clampUnit(total / maxVal)
}

// At01 returns octave noise remapped into [0, 1].
func (f Fractal) At01(x, y float64) float64 {
	return (f.At(x, y) + 1) * 0.5
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
