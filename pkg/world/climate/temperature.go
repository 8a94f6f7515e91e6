package climate

import (
	"fmt"
	"math"

	"github.com/OCharnyshevich/worldclimate/pkg/world/foundation"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
	"github.com/OCharnyshevich/worldclimate/pkg/world/noise"
)

// Sub-seeds keep the noise of each stage independent.
const (
	temperatureSeed   = 100
	precipitationSeed = 200
)

// Latitude returns the latitude in degrees of row y: +90 at the top edge,
// -90 at the bottom edge, sampled at cell centres.
func Latitude(y, h int) float64 {
	return 90 - 180*(float64(y)+0.5)/float64(h)
}

// Temperature computes the temperature field in [0,1]. A latitude band
// peaking at the tilt-shifted equator is blended with coherent noise,
// divided by the distance to the sun and cooled above the mountain line.
func Temperature(f foundation.Foundation, p Params, seed int64) (*grid.Field, error) {
	sampler, err := noise.New(p.Noise, seed+temperatureSeed)
	if err != nil {
		return nil, fmt.Errorf("temperature noise: %w", err)
	}
	fractal := noise.Fractal{Sampler: sampler, Octaves: p.NoiseOctaves, Persistence: 0.5, Frequency: 1 / p.NoiseScale}

	d := f.Dims()
	th := f.Thresholds
	_, maxElev := f.Heightmap.MinMax()
	top := math.Max(th.Peak, maxElev)

	equator := p.AxialTilt * p.EquatorTiltShare
	span := 90 + math.Abs(equator)
	w := p.TemperatureNoiseWeight

	out := make([]float64, d.Len())
	for y := range d.H {
		band := 1 - math.Abs(Latitude(y, d.H)-equator)/span
		band = smoothstep(grid.Clamp01(band))
		for x := range d.W {
			i := d.Index(x, y)
			t := ((1-w)*band + w*fractal.At01(float64(x), float64(y))) / p.DistanceToSun
			t = grid.Clamp01(t)

			if h := f.Heightmap.AtIndex(i); h > th.Mountain {
				r := grid.Clamp01((h - th.Mountain) / (top - th.Mountain))
				t *= 1 - (1-p.MinCoolingFactor)*r
			}
			out[i] = t
		}
	}
	return grid.Freeze(d, out), nil
}

func smoothstep(v float64) float64 {
	return v * v * (3 - 2*v)
}
