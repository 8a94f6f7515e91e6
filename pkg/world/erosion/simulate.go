package erosion

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/OCharnyshevich/worldclimate/pkg/world/failure"
	"github.com/OCharnyshevich/worldclimate/pkg/world/foundation"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
)

// spawnStream separates the particle source from other users of the seed.
const spawnStream = 0x65726f73696f6e

// Params configures one erosion run.
type Params struct {
	Semantic  Semantic  `json:"semantic"`
	Constants Constants `json:"constants"`
	// Roughness overrides the measured terrain roughness when positive.
	Roughness  float64         `json:"roughness"`
	Thresholds WaterThresholds `json:"thresholds"`
	// DischargeScale sets, in multiples of the linear map size, the catchment
	// at which normalised discharge reaches erf(1).
	DischargeScale float64 `json:"discharge_scale"`
	// LakeCoherence is the flow coherence below which deep water pools.
	LakeCoherence float64 `json:"lake_coherence"`
	MinRiverCells int     `json:"min_river_cells"`
	MinLakeArea   int     `json:"min_lake_area"`
	// MaxParticleSteps bounds Particles*MaxAge; zero disables the check.
	MaxParticleSteps int64 `json:"max_particle_steps"`
}

// DefaultParams returns balanced knobs with default constants.
func DefaultParams() Params {
	return Params{
		Semantic: Semantic{
			RiverDensity:    0.5,
			RiverMeandering: 0.5,
			ValleyDepth:     0.5,
			ErosionSpeed:    0.5,
		},
		Constants:        DefaultConstants(),
		Thresholds:       DefaultWaterThresholds(),
		DischargeScale:   4,
		LakeCoherence:    0.2,
		MinRiverCells:    4,
		MinLakeArea:      1,
		MaxParticleSteps: 200_000_000,
	}
}

// Validate checks everything except the map-dependent derivation.
func (p Params) Validate() error {
	if err := p.Semantic.Validate(); err != nil {
		return err
	}
	if err := p.Constants.Validate(); err != nil {
		return err
	}
	if err := p.Thresholds.Validate(); err != nil {
		return err
	}
	if err := failure.Finite([]string{"roughness", "discharge_scale", "lake_coherence"},
		p.Roughness, p.DischargeScale, p.LakeCoherence); err != nil {
		return err
	}
	switch {
	case p.Roughness < 0:
		return failure.Configf("roughness %g is negative", p.Roughness)
	case p.DischargeScale <= 0:
		return failure.Configf("discharge_scale %g must be positive", p.DischargeScale)
	case p.LakeCoherence < 0 || p.LakeCoherence > 1:
		return failure.Configf("lake_coherence %g outside [0,1]", p.LakeCoherence)
	case p.MinRiverCells < 2 || p.MinLakeArea < 1:
		return failure.Configf("min_river_cells=%d min_lake_area=%d", p.MinRiverCells, p.MinLakeArea)
	case p.MaxParticleSteps < 0:
		return failure.Configf("max_particle_steps %d is negative", p.MaxParticleSteps)
	}
	return nil
}

// Stats summarises particle outcomes.
type Stats struct {
	Spawned      int `json:"spawned"`
	Steps        int `json:"steps"`
	AgeLimit     int `json:"age_limit"`
	Evaporated   int `json:"evaporated"`
	LeftGrid     int `json:"left_grid"`
	ReachedOcean int `json:"reached_ocean"`
}

func (s *Stats) record(r Reason) {
	switch r {
	case AgeLimit:
		s.AgeLimit++
	case Evaporated:
		s.Evaporated++
	case LeftGrid:
		s.LeftGrid++
	case ReachedOcean:
		s.ReachedOcean++
	}
}

// Result holds the frozen outputs of an erosion run.
type Result struct {
	Heightmap *grid.Field
	// Discharge is normalised into [0,1).
	Discharge      *grid.Field
	MomentumX      *grid.Field
	MomentumY      *grid.Field
	Classification *Classification
	Rivers         []River
	Lakes          []Lake
	Physics        Physics
	Stats          Stats
}

// Simulate erodes f.Heightmap with particles spawned on land in proportion
// to precipitation. Particles run one at a time in batches; the context is
// checked between batches. No partial result is returned on error.
func Simulate(ctx context.Context, f foundation.Foundation, precipitation *grid.Field, p Params, seed int64) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	d := f.Dims()
	if f.Heightmap == nil || f.Ocean == nil || precipitation == nil {
		return nil, failure.Contractf("heightmap, ocean mask and precipitation are required")
	}
	if precipitation.Dims != d || f.Ocean.Dims != d {
		return nil, failure.Contractf("precipitation is %s, heightmap is %s", precipitation.Dims, d)
	}

	roughness := p.Roughness
	if roughness == 0 {
		roughness = MeasureRoughness(f.Heightmap, f.Ocean)
	}
	if roughness <= 0 {
		roughness = 1
	}
	ph, err := Derive(p.Semantic, MapContext{Width: d.W, Height: d.H, Roughness: roughness}, p.Constants)
	if err != nil {
		return nil, err
	}
	if p.MaxParticleSteps > 0 && int64(ph.Particles)*int64(ph.MaxAge) > p.MaxParticleSteps {
		return nil, failure.Exhaustedf("%d particles x %d steps exceeds budget of %d",
			ph.Particles, ph.MaxAge, p.MaxParticleSteps)
	}

	a := newArena(f.Heightmap)
	cells, cum := spawnTable(f.Ocean, precipitation)
	if len(cells) == 0 {
		ph.Particles, ph.Batches = 0, 0
	}
	if ph.Particles > 0 {
		perBatch := float64(ph.Particles) / float64(ph.Batches)
		a.unit = perBatch / float64(len(cells)) * ph.InitialVolume
		a.scale = p.DischargeScale * math.Sqrt(float64(d.Len()))
	}

	rng := rand.New(rand.NewPCG(uint64(seed), spawnStream))
	var stats Stats
	for b := range ph.Batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lo := b * ph.Particles / ph.Batches
		hi := (b + 1) * ph.Particles / ph.Batches
		for range hi - lo {
			c := cells[pick(cum, rng)]
			x, y := d.XY(c)
			pt := spawn(float64(x)+rng.Float64(), float64(y)+rng.Float64(), ph.InitialVolume)
			stats.Spawned++
			for pt.state != Terminated {
				if err := pt.advance(a, &ph, f.Ocean); err != nil {
					return nil, err
				}
				stats.Steps++
			}
			stats.record(pt.reason)
		}
		a.merge(ph.Retention)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fz := a.freeze()
	classes, err := Classify(fz.discharge, coherenceField(a), f.Ocean, p.Thresholds, p.LakeCoherence)
	if err != nil {
		return nil, err
	}
	lakes, lakeOf := ExtractLakes(classes, fz.height, f.Ocean, p.MinLakeArea)
	rivers := ExtractRivers(classes, fz.height, fz.discharge, f.Ocean, lakeOf, p.MinRiverCells)

	return &Result{
		Heightmap:      fz.height,
		Discharge:      fz.discharge,
		MomentumX:      fz.momentumX,
		MomentumY:      fz.momentumY,
		Classification: classes,
		Rivers:         rivers,
		Lakes:          lakes,
		Physics:        ph,
		Stats:          stats,
	}, nil
}

// spawnTable lists land cells with positive precipitation and the running
// sum of their weights.
func spawnTable(ocean *grid.Mask, precipitation *grid.Field) (cells []int, cum []float64) {
	var total float64
	for i := range ocean.Len() {
		if ocean.AtIndex(i) {
			continue
		}
		w := precipitation.AtIndex(i)
		if !(w > 0) {
			continue
		}
		total += w
		cells = append(cells, i)
		cum = append(cum, total)
	}
	return cells, cum
}

// pick draws an index into cum with probability proportional to its weight.
func pick(cum []float64, rng *rand.Rand) int {
	total := cum[len(cum)-1]
	u := total * (1 - rng.Float64())
	return min(sort.SearchFloat64s(cum, u), len(cum)-1)
}

func coherenceField(a *arena) *grid.Field {
	out := make([]float64, a.d.Len())
	for i := range out {
		out[i] = a.coherence(i)
	}
	return grid.Freeze(a.d, out)
}
