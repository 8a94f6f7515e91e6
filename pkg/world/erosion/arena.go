package erosion

import (
	"math"

	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
)

// arena owns every mutable field of one simulation. Nothing outside the
// simulation sees it; results leave through freeze.
type arena struct {
	d      grid.Dims
	height []float64
	floor  float64

	// Smoothed fields, read by particles for feedback.
	discharge []float64
	momentumX []float64
	momentumY []float64
	speed     []float64
	// norm is discharge mapped into [0,1), refreshed on every merge.
	norm []float64

	// Per-batch tracks, written by particles.
	trackD  []float64
	trackMX []float64
	trackMY []float64
	trackS  []float64

	merged int
	// unit converts raw discharge into catchment cells; scale is the
	// catchment at which normalised discharge reaches erf(1).
	unit, scale float64
}

func newArena(h *grid.Field) *arena {
	n := h.Len()
	floor, _ := h.MinMax()
	return &arena{
		d:         h.Dims,
		height:    h.Values(),
		floor:     floor,
		discharge: make([]float64, n),
		momentumX: make([]float64, n),
		momentumY: make([]float64, n),
		speed:     make([]float64, n),
		norm:      make([]float64, n),
		trackD:    make([]float64, n),
		trackMX:   make([]float64, n),
		trackMY:   make([]float64, n),
		trackS:    make([]float64, n),
	}
}

func (a *arena) heightAt(x, y int) float64 {
	x = min(max(x, 0), a.d.W-1)
	y = min(max(y, 0), a.d.H-1)
	return a.height[y*a.d.W+x]
}

// accumulate records a particle passing through cell i.
func (a *arena) accumulate(i int, volume, vx, vy float64) {
	a.trackD[i] += volume
	a.trackMX[i] += volume * vx
	a.trackMY[i] += volume * vy
	a.trackS[i] += volume * math.Sqrt(vx*vx+vy*vy)
}

// merge folds the batch tracks into the smoothed fields and clears them.
// The first batch seeds the fields.
func (a *arena) merge(retention float64) {
	keep, take := retention, 1-retention
	if a.merged == 0 {
		keep, take = 0, 1
	}
	blend := func(field, track []float64) {
		for i, v := range track {
			field[i] = keep*field[i] + take*v
			track[i] = 0
		}
	}
	blend(a.discharge, a.trackD)
	blend(a.momentumX, a.trackMX)
	blend(a.momentumY, a.trackMY)
	blend(a.speed, a.trackS)
	a.merged++

	if a.unit <= 0 {
		return
	}
	inv := 1 / (a.unit * a.scale)
	for i, v := range a.discharge {
		a.norm[i] = math.Min(math.Erf(v*inv), belowOne)
	}
}

// normalized returns the discharge at cell i in [0,1) as of the last merge.
func (a *arena) normalized(i int) float64 {
	return a.norm[i]
}

// belowOne keeps saturated discharge inside [0,1).
var belowOne = math.Nextafter(1, 0)

// coherence returns how aligned the flow through cell i is: 1 for a single
// direction, near 0 for water sloshing in place.
func (a *arena) coherence(i int) float64 {
	if a.speed[i] <= 0 {
		return 0
	}
	mx, my := a.momentumX[i], a.momentumY[i]
	return math.Sqrt(mx*mx+my*my) / a.speed[i]
}

// frozen is the immutable result of a simulation.
type frozen struct {
	height    *grid.Field
	discharge *grid.Field
	momentumX *grid.Field
	momentumY *grid.Field
}

func (a *arena) freeze() frozen {
	cp := func(src []float64) []float64 {
		out := make([]float64, len(src))
		copy(out, src)
		return out
	}
	return frozen{
		height:    grid.Freeze(a.d, cp(a.height)),
		discharge: grid.Freeze(a.d, cp(a.norm)),
		momentumX: grid.Freeze(a.d, cp(a.momentumX)),
		momentumY: grid.Freeze(a.d, cp(a.momentumY)),
	}
}
