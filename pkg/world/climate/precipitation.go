package climate

import (
	"context"
	"fmt"
	"math"

	"github.com/OCharnyshevich/worldclimate/pkg/world/failure"
	"github.com/OCharnyshevich/worldclimate/pkg/world/foundation"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
	"github.com/OCharnyshevich/worldclimate/pkg/world/noise"
)

// BasePrecipitation shapes coherent noise by a temperature curve, so cold
// regions are drier but never fully dry, and stretches the result back over
// [0,1].
func BasePrecipitation(temp *grid.Field, p Params, seed int64) (*grid.Field, error) {
	if temp == nil {
		return nil, failure.Contractf("temperature field is required")
	}
	sampler, err := noise.New(p.Noise, seed+precipitationSeed)
	if err != nil {
		return nil, fmt.Errorf("precipitation noise: %w", err)
	}
	fractal := noise.Fractal{Sampler: sampler, Octaves: p.NoiseOctaves, Persistence: 0.5, Frequency: 1 / p.NoiseScale}

	d := temp.Dims
	out := make([]float64, d.Len())
	for y := range d.H {
		for x := range d.W {
			i := d.Index(x, y)
			curve := math.Pow(temp.AtIndex(i), p.PrecipitationGamma)*(1-p.PrecipitationBonus) + p.PrecipitationBonus
			out[i] = fractal.At01(float64(x), float64(y)) * curve
		}
	}
	grid.Rescale(out)
	return grid.Freeze(d, out), nil
}

// WindAt returns the unit direction the prevailing wind blows toward at
// latitude lat: trade winds and polar easterlies blow west, the mid-latitude
// westerlies blow east.
func WindAt(lat float64, fixed string) (dx, dy int) {
	switch fixed {
	case WindEast:
		return 1, 0
	case WindWest:
		return -1, 0
	case WindNorth:
		return 0, -1
	case WindSouth:
		return 0, 1
	}
	a := math.Abs(lat)
	if a >= 30 && a < 60 {
		return 1, 0
	}
	return -1, 0
}

// RainShadow reduces base precipitation behind mountain barriers. Each cell
// walks upwind and every traced cell that rises above it by the ridge delta
// blocks a further share of moisture.
func RainShadow(ctx context.Context, base *grid.Field, f foundation.Foundation, p Params, workers int) (*grid.Field, error) {
	if err := sameDims(base, f); err != nil {
		return nil, err
	}
	d := base.Dims
	h := f.Heightmap
	delta := p.RidgeDelta * (f.Thresholds.Peak - f.Thresholds.Sea)

	stride := 0.0
	if p.TraceSteps > 0 {
		stride = p.TraceDistance / float64(p.TraceSteps) / p.CellSize
	}

	out := make([]float64, d.Len())
	err := grid.ParallelRows(ctx, d.H, workers, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			dx, dy := WindAt(Latitude(y, d.H), p.FixedWind)
			for x := range d.W {
				i := d.Index(x, y)
				here := h.AtIndex(i)
				blocking := 0.0
				for k := 1; k <= p.TraceSteps; k++ {
					dist := math.Round(float64(k) * stride)
					tx := x - dx*int(dist)
					ty := y - dy*int(dist)
					if !d.In(tx, ty) {
						break
					}
					if dist == 0 {
						continue
					}
					if h.At(tx, ty)-here > delta {
						blocking += p.BlockingPerStep
					}
				}
				out[i] = base.AtIndex(i) * (1 - math.Min(blocking, p.MaxBlocking))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grid.Freeze(d, out), nil
}

// CoastalMoisture adds an exponentially decaying bonus with distance to the
// ocean, damped on high ground. The result lies in [0, 1+MaxCoastalBonus].
func CoastalMoisture(shadow *grid.Field, f foundation.Foundation, p Params) (*grid.Field, error) {
	if err := sameDims(shadow, f); err != nil {
		return nil, err
	}
	d := shadow.Dims
	th := f.Thresholds
	dist := grid.DistanceTransform(f.Ocean)

	out := make([]float64, d.Len())
	for i := range out {
		bonus := 0.0
		if dist[i] != grid.Unreachable {
			bonus = p.MaxCoastalBonus * math.Exp(-float64(dist[i])/p.CoastalDecayRange)
		}
		lift := grid.Clamp01((f.Heightmap.AtIndex(i) - th.Sea) / (th.Mountain - th.Sea))
		factor := 1 - p.ElevationResistance*lift
		out[i] = shadow.AtIndex(i) * (1 + bonus*factor)
	}
	return grid.Freeze(d, out), nil
}

func sameDims(field *grid.Field, f foundation.Foundation) error {
	if field == nil || f.Heightmap == nil {
		return failure.Contractf("field and heightmap are required")
	}
	if field.Dims != f.Dims() || f.Ocean == nil || f.Ocean.Dims != field.Dims {
		return failure.Contractf("field is %s, foundation is %s", field.Dims, f.Dims())
	}
	return nil
}
