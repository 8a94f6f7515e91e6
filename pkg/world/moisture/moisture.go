// Package moisture turns precipitation and river discharge into humidity.
package moisture

import (
	"context"
	"math"

	"github.com/OCharnyshevich/worldclimate/pkg/world/failure"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
)

// Params weights irrigation against precipitation.
type Params struct {
	// Radius bounds the reach of a water source, in cells.
	Radius int `json:"radius"`
	// MinSourceDischarge is the normalised discharge a cell needs to
	// irrigate its surroundings.
	MinSourceDischarge  float64 `json:"min_source_discharge"`
	PrecipitationWeight float64 `json:"precipitation_weight"`
	IrrigationWeight    float64 `json:"irrigation_weight"`
}

// DefaultParams returns irrigation-dominant weights.
func DefaultParams() Params {
	return Params{
		Radius:              10,
		MinSourceDischarge:  0.25,
		PrecipitationWeight: 1,
		IrrigationWeight:    3,
	}
}

// Validate checks the parameters.
func (p Params) Validate() error {
	if err := failure.Finite([]string{"min_source_discharge", "precipitation_weight", "irrigation_weight"},
		p.MinSourceDischarge, p.PrecipitationWeight, p.IrrigationWeight); err != nil {
		return err
	}
	switch {
	case p.Radius < 1:
		return failure.Configf("irrigation radius %d must be at least 1", p.Radius)
	case p.MinSourceDischarge <= 0 || p.MinSourceDischarge > 1:
		return failure.Configf("min_source_discharge %g outside (0,1]", p.MinSourceDischarge)
	case p.PrecipitationWeight < 0 || p.IrrigationWeight < 0:
		return failure.Configf("humidity weights must not be negative")
	}
	return nil
}

type tap struct {
	dx, dy int
	weight float64
}

// kernel lists the offsets within radius, nearest first, weighted by
// 1/ln(distance+1). The centre is excluded.
func kernel(radius int) []tap {
	var taps []tap
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := dx*dx + dy*dy
			if d2 == 0 || d2 > r2 {
				continue
			}
			taps = append(taps, tap{dx: dx, dy: dy, weight: 1 / math.Log(math.Sqrt(float64(d2))+1)})
		}
	}
	return taps
}

// Irrigation sums, for every land cell, the discharge of nearby water
// sources weighted by 1/ln(distance+1) and scales the map maximum to 1.
// Ocean cells get no irrigation and are never sources.
func Irrigation(ctx context.Context, discharge *grid.Field, ocean *grid.Mask, p Params, workers int) (*grid.Field, error) {
	if discharge == nil || ocean == nil {
		return nil, failure.Contractf("discharge and ocean mask are required")
	}
	if discharge.Dims != ocean.Dims {
		return nil, failure.Contractf("discharge is %s, ocean mask is %s", discharge.Dims, ocean.Dims)
	}
	d := discharge.Dims
	taps := kernel(p.Radius)

	source := make([]float64, d.Len())
	for i := range source {
		if v := discharge.AtIndex(i); v >= p.MinSourceDischarge && !ocean.AtIndex(i) {
			source[i] = v
		}
	}

	out := make([]float64, d.Len())
	err := grid.ParallelRows(ctx, d.H, workers, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			for x := range d.W {
				i := d.Index(x, y)
				if ocean.AtIndex(i) {
					continue
				}
				var sum float64
				for _, t := range taps {
					sx, sy := x+t.dx, y+t.dy
					if !d.In(sx, sy) {
						continue
					}
					if s := source[d.Index(sx, sy)]; s > 0 {
						sum += s * t.weight
					}
				}
				out[i] = sum
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, hi := grid.MinMax(out); hi > 0 {
		for i := range out {
			out[i] /= hi
		}
	}
	return grid.Freeze(d, out), nil
}

// Humidity combines final precipitation with irrigation.
func Humidity(precipitation, irrigation *grid.Field, p Params) (*grid.Field, error) {
	if precipitation == nil || irrigation == nil {
		return nil, failure.Contractf("precipitation and irrigation are required")
	}
	if precipitation.Dims != irrigation.Dims {
		return nil, failure.Contractf("precipitation is %s, irrigation is %s", precipitation.Dims, irrigation.Dims)
	}
	out := make([]float64, precipitation.Len())
	for i := range out {
		out[i] = p.PrecipitationWeight*precipitation.AtIndex(i) + p.IrrigationWeight*irrigation.AtIndex(i)
	}
	return grid.Freeze(precipitation.Dims, out), nil
}
