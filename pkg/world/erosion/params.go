// Package erosion carves a heightmap with precipitation-driven water
// particles and extracts the resulting rivers and lakes.
package erosion

import (
	"math"

	"github.com/OCharnyshevich/worldclimate/pkg/world/failure"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
)

// Semantic holds the designer-facing knobs, each in [0,1].
type Semantic struct {
	RiverDensity    float64 `json:"river_density"`
	RiverMeandering float64 `json:"river_meandering"`
	ValleyDepth     float64 `json:"valley_depth"`
	ErosionSpeed    float64 `json:"erosion_speed"`
}

// Validate checks every knob is finite and in [0,1].
func (s Semantic) Validate() error {
	names := []string{"river_density", "river_meandering", "valley_depth", "erosion_speed"}
	vals := []float64{s.RiverDensity, s.RiverMeandering, s.ValleyDepth, s.ErosionSpeed}
	if err := failure.Finite(names, vals...); err != nil {
		return err
	}
	for i, v := range vals {
		if v < 0 || v > 1 {
			return failure.Configf("%s %g outside [0,1]", names[i], v)
		}
	}
	return nil
}

// MapContext describes the map the semantic knobs are applied to.
type MapContext struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	// Roughness is the mean land gradient magnitude in heightmap units per
	// cell. Zero means measure it from the heightmap.
	Roughness float64 `json:"roughness"`
}

// Constants are the empirically tuned anchors of the scaling formula.
type Constants struct {
	// ParticlesPerCell is the particle count per grid cell at full density.
	ParticlesPerCell float64 `json:"particles_per_cell"`
	MinAge           int     `json:"min_age"`
	// AgeSpan scales the age limit with the linear map size. It bounds the
	// step count, and so the run time, on large maps.
	AgeSpan     float64 `json:"age_span"`
	BaseGravity float64 `json:"base_gravity"`
	// MaxMomentumTransfer is the feedback coefficient at full meandering.
	MaxMomentumTransfer float64 `json:"max_momentum_transfer"`
	// MaxEntrainment is the discharge gain on capacity at full valley depth.
	MaxEntrainment float64 `json:"max_entrainment"`
	MinDeposition  float64 `json:"min_deposition"`
	MaxDeposition  float64 `json:"max_deposition"`
	Friction       float64 `json:"friction"`
	InitialVolume  float64 `json:"initial_volume"`
	MinVolume      float64 `json:"min_volume"`
	// EvaporationSpan is the share of the age limit after which a particle
	// has evaporated down to MinVolume. Below 1, particles still on land end
	// by evaporation; at 1 or above they run until the age limit.
	EvaporationSpan float64 `json:"evaporation_span"`
	// MaxSpeed caps particle speed in cells per step.
	MaxSpeed   float64 `json:"max_speed"`
	BatchCount int     `json:"batch_count"`
	// Retention is the weight kept by the smoothed fields per batch.
	Retention float64 `json:"retention"`
}

// DefaultConstants returns constants calibrated on 64..512 cell maps.
func DefaultConstants() Constants {
	return Constants{
		ParticlesPerCell:    0.25,
		MinAge:              128,
		AgeSpan:             0.6,
		BaseGravity:         1,
		MaxMomentumTransfer: 1,
		MaxEntrainment:      5,
		MinDeposition:       0.005,
		MaxDeposition:       0.05,
		Friction:            0.1,
		InitialVolume:       1,
		MinVolume:           0.01,
		EvaporationSpan:     0.9,
		MaxSpeed:            4,
		BatchCount:          16,
		Retention:           0.9,
	}
}

// Validate checks the constants.
func (c Constants) Validate() error {
	err := failure.Finite(
		[]string{"particles_per_cell", "age_span", "base_gravity", "max_momentum_transfer",
			"max_entrainment", "min_deposition", "max_deposition", "friction",
			"initial_volume", "min_volume", "evaporation_span", "max_speed", "retention"},
		c.ParticlesPerCell, c.AgeSpan, c.BaseGravity, c.MaxMomentumTransfer,
		c.MaxEntrainment, c.MinDeposition, c.MaxDeposition, c.Friction,
		c.InitialVolume, c.MinVolume, c.EvaporationSpan, c.MaxSpeed, c.Retention,
	)
	if err != nil {
		return err
	}
	switch {
	case c.ParticlesPerCell < 0 || c.MinAge < 1 || c.AgeSpan < 0:
		return failure.Configf("particle budget: per_cell=%g min_age=%d age_span=%g", c.ParticlesPerCell, c.MinAge, c.AgeSpan)
	case c.BaseGravity <= 0 || c.MaxMomentumTransfer < 0 || c.MaxEntrainment < 0:
		return failure.Configf("forces: gravity=%g momentum=%g entrainment=%g", c.BaseGravity, c.MaxMomentumTransfer, c.MaxEntrainment)
	case c.MinDeposition < 0 || c.MaxDeposition > 1 || c.MinDeposition > c.MaxDeposition:
		return failure.Configf("deposition range [%g,%g] invalid", c.MinDeposition, c.MaxDeposition)
	case c.Friction < 0 || c.Friction >= 1:
		return failure.Configf("friction %g outside [0,1)", c.Friction)
	case c.MinVolume <= 0 || c.InitialVolume <= c.MinVolume:
		return failure.Configf("volume: initial=%g min=%g", c.InitialVolume, c.MinVolume)
	case c.EvaporationSpan <= 0 || c.MaxSpeed <= 0:
		return failure.Configf("evaporation_span=%g max_speed=%g", c.EvaporationSpan, c.MaxSpeed)
	case c.BatchCount < 1 || c.Retention < 0 || c.Retention >= 1:
		return failure.Configf("batches=%d retention=%g", c.BatchCount, c.Retention)
	}
	return nil
}

// Physics are the low-level constants one simulation runs with.
type Physics struct {
	Particles        int     `json:"particles"`
	MaxAge           int     `json:"max_age"`
	Batches          int     `json:"batches"`
	Gravity          float64 `json:"gravity"`
	MomentumTransfer float64 `json:"momentum_transfer"`
	Entrainment      float64 `json:"entrainment"`
	DepositionRate   float64 `json:"deposition_rate"`
	Evaporation      float64 `json:"evaporation"`
	Friction         float64 `json:"friction"`
	InitialVolume    float64 `json:"initial_volume"`
	MinVolume        float64 `json:"min_volume"`
	MaxSpeed         float64 `json:"max_speed"`
	Retention        float64 `json:"retention"`
	Roughness        float64 `json:"roughness"`
}

// Derive maps semantic knobs onto physical constants:
//
//	Particles        = round(RiverDensity * ParticlesPerCell * W*H)
//	MaxAge           = max(MinAge, ceil(AgeSpan * sqrt(W*H)))
//	Gravity          = BaseGravity / Roughness
//	MomentumTransfer = RiverMeandering * MaxMomentumTransfer
//	Entrainment      = ValleyDepth * MaxEntrainment
//	DepositionRate   = lerp(MinDeposition, MaxDeposition, ErosionSpeed)
//	Evaporation      = 1 - (MinVolume/InitialVolume)^(1/(EvaporationSpan*MaxAge))
//	Batches          = min(BatchCount, Particles)
//
// Particle count follows area and age follows linear size, so a particle
// covers a similar share of any map; gravity follows relief so the same
// knobs give proportionally similar channels across grid sizes.
func Derive(s Semantic, m MapContext, c Constants) (Physics, error) {
	if err := s.Validate(); err != nil {
		return Physics{}, err
	}
	if err := c.Validate(); err != nil {
		return Physics{}, err
	}
	if m.Width <= 0 || m.Height <= 0 {
		return Physics{}, failure.Configf("map context %dx%d", m.Width, m.Height)
	}
	if err := failure.Finite([]string{"roughness"}, m.Roughness); err != nil {
		return Physics{}, err
	}
	if m.Roughness <= 0 {
		return Physics{}, failure.Configf("roughness must be positive, got %g", m.Roughness)
	}

	area := float64(m.Width * m.Height)
	p := Physics{
		Particles:        int(math.Round(s.RiverDensity * c.ParticlesPerCell * area)),
		MaxAge:           max(c.MinAge, int(math.Ceil(c.AgeSpan*math.Sqrt(area)))),
		Gravity:          c.BaseGravity / m.Roughness,
		MomentumTransfer: s.RiverMeandering * c.MaxMomentumTransfer,
		Entrainment:      s.ValleyDepth * c.MaxEntrainment,
		DepositionRate:   c.MinDeposition + (c.MaxDeposition-c.MinDeposition)*s.ErosionSpeed,
		Friction:         c.Friction,
		InitialVolume:    c.InitialVolume,
		MinVolume:        c.MinVolume,
		MaxSpeed:         c.MaxSpeed,
		Retention:        c.Retention,
		Roughness:        m.Roughness,
	}
	p.Evaporation = 1 - math.Pow(c.MinVolume/c.InitialVolume, 1/(c.EvaporationSpan*float64(p.MaxAge)))
	p.Batches = min(c.BatchCount, p.Particles)
	if err := failure.Finite([]string{"gravity"}, p.Gravity); err != nil {
		return Physics{}, err
	}
	return p, nil
}

// MeasureRoughness returns the mean central-difference gradient magnitude
// over land cells, or 0 for a flat or landless map.
func MeasureRoughness(h *grid.Field, ocean *grid.Mask) float64 {
	var sum float64
	var n int
	for y := range h.H {
		for x := range h.W {
			if ocean.At(x, y) {
				continue
			}
			gx, gy := gradient(h.Clamped, x, y)
			sum += math.Hypot(gx, gy)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// gradient returns the central-difference slope at (x, y).
func gradient(at func(x, y int) float64, x, y int) (gx, gy float64) {
	gx = (at(x+1, y) - at(x-1, y)) / 2
	gy = (at(x, y+1) - at(x, y-1)) / 2
	return gx, gy
}
