package erosion

import (
	"math"

	"github.com/OCharnyshevich/worldclimate/pkg/world/failure"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
)

// State is the lifecycle stage of a particle.
type State uint8

const (
	Spawned State = iota
	Flowing
	Terminated
)

func (s State) String() string {
	switch s {
	case Spawned:
		return "spawned"
	case Flowing:
		return "flowing"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Reason explains why a particle terminated.
type Reason uint8

const (
	NotTerminated Reason = iota
	AgeLimit
	Evaporated
	LeftGrid
	ReachedOcean
)

func (r Reason) String() string {
	switch r {
	case NotTerminated:
		return "not_terminated"
	case AgeLimit:
		return "age_limit"
	case Evaporated:
		return "evaporated"
	case LeftGrid:
		return "left_grid"
	case ReachedOcean:
		return "reached_ocean"
	default:
		return "unknown"
	}
}

// stallSpeed is the speed below which a particle pools in place.
const stallSpeed = 1e-9

type particle struct {
	x, y     float64
	vx, vy   float64
	volume   float64
	sediment float64
	age      int
	state    State
	reason   Reason
}

func spawn(x, y, volume float64) particle {
	return particle{x: x, y: y, volume: volume, state: Spawned}
}

func (p *particle) cell() (int, int) {
	return int(math.Floor(p.x)), int(math.Floor(p.y))
}

// terminate drops all carried sediment on cell i and ends the particle.
func (p *particle) terminate(a *arena, i int, r Reason) {
	a.height[i] += p.sediment
	p.sediment = 0
	p.state = Terminated
	p.reason = r
}

// advance runs one transition of the particle state machine.
func (p *particle) advance(a *arena, ph *Physics, ocean *grid.Mask) error {
	switch p.state {
	case Terminated:
		return nil
	case Spawned:
		p.state = Flowing
	}

	d := a.d
	cx, cy := p.cell()
	i := d.Index(cx, cy)
	if p.age >= ph.MaxAge {
		p.terminate(a, i, AgeLimit)
		return nil
	}
	if p.volume < ph.MinVolume {
		p.terminate(a, i, Evaporated)
		return nil
	}

	gx, gy := gradient(a.heightAt, cx, cy)
	p.vx -= ph.Gravity * gx / p.volume
	p.vy -= ph.Gravity * gy / p.volume
	if !finite(p.vx) || !finite(p.vy) {
		return failure.Divergencef("velocity (%g,%g) at (%d,%d) after gravity", p.vx, p.vy, cx, cy)
	}

	// Pull toward the prevailing flow when already heading its way.
	if ph.MomentumTransfer > 0 {
		mx, my := a.momentumX[i], a.momentumY[i]
		if dot := mx*p.vx + my*p.vy; dot > 0 {
			align := dot / math.Sqrt((mx*mx+my*my)*(p.vx*p.vx+p.vy*p.vy))
			k := ph.MomentumTransfer * align / (p.volume + a.discharge[i])
			p.vx += k * mx
			p.vy += k * my
		}
	}

	p.vx *= 1 - ph.Friction
	p.vy *= 1 - ph.Friction
	speed := math.Sqrt(p.vx*p.vx + p.vy*p.vy)
	if !finite(speed) {
		return failure.Divergencef("velocity (%g,%g) at (%d,%d)", p.vx, p.vy, cx, cy)
	}
	if speed > ph.MaxSpeed {
		p.vx *= ph.MaxSpeed / speed
		p.vy *= ph.MaxSpeed / speed
		speed = ph.MaxSpeed
	}

	nx, ny := p.x, p.y
	if speed > stallSpeed {
		nx += p.vx / speed
		ny += p.vy / speed
	}
	ncx, ncy := int(math.Floor(nx)), int(math.Floor(ny))
	if !d.In(ncx, ncy) {
		p.terminate(a, i, LeftGrid)
		return nil
	}
	j := d.Index(ncx, ncy)
	p.x, p.y = nx, ny
	if ocean.AtIndex(j) {
		p.terminate(a, j, ReachedOcean)
		return nil
	}

	a.accumulate(j, p.volume, p.vx, p.vy)

	drop := a.height[i] - a.height[j]
	capacity := math.Max(0, p.volume*(1+ph.Entrainment*a.normalized(j))*drop)
	amount := ph.DepositionRate * (capacity - p.sediment)
	if amount > 0 {
		amount = math.Max(0, math.Min(amount, math.Min(drop, a.height[i]-a.floor)))
	}
	p.sediment += amount
	a.height[i] -= amount

	p.volume *= 1 - ph.Evaporation
	p.sediment *= 1 - ph.Evaporation
	if p.volume < 0 || !finite(p.volume) {
		return failure.Divergencef("volume %g at (%d,%d)", p.volume, ncx, ncy)
	}
	p.age++
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
