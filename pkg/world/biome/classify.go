package biome

import (
	"github.com/Flokey82/genbiome"

	"github.com/OCharnyshevich/worldclimate/pkg/world/erosion"
	"github.com/OCharnyshevich/worldclimate/pkg/world/failure"
	"github.com/OCharnyshevich/worldclimate/pkg/world/foundation"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
	"github.com/OCharnyshevich/worldclimate/pkg/world/moisture"
)

// Params tunes the biome classifier.
type Params struct {
	// TemperatureCuts split temperature into the six table rows.
	TemperatureCuts [TemperatureBands - 1]float64 `json:"temperature_cuts"`
	// PolarIce freezes any land colder than it.
	PolarIce float64 `json:"polar_ice"`
	// AlpineIce freezes land at or above the peak threshold colder than it.
	AlpineIce       float64 `json:"alpine_ice"`
	SmoothingPasses int     `json:"smoothing_passes"`
	// MajorityMin is the number of the 9 cells of a 3×3 window that must
	// agree before a cell adopts their biome.
	MajorityMin int `json:"majority_min"`
}

// DefaultParams returns the standard classifier.
func DefaultParams() Params {
	return Params{
		TemperatureCuts: [TemperatureBands - 1]float64{0.15, 0.3, 0.45, 0.6, 0.75},
		PolarIce:        0.05,
		AlpineIce:       0.35,
		SmoothingPasses: 1,
		MajorityMin:     5,
	}
}

// Validate checks cut ordering and smoothing settings.
func (p Params) Validate() error {
	if err := failure.Finite([]string{"polar_ice", "alpine_ice"}, p.PolarIce, p.AlpineIce); err != nil {
		return err
	}
	if err := failure.Finite(nil, p.TemperatureCuts[:]...); err != nil {
		return err
	}
	for i := 1; i < len(p.TemperatureCuts); i++ {
		if p.TemperatureCuts[i] <= p.TemperatureCuts[i-1] {
			return failure.Configf("temperature_cuts not increasing: %v", p.TemperatureCuts)
		}
	}
	switch {
	case p.PolarIce < 0 || p.PolarIce > 1 || p.AlpineIce < 0 || p.AlpineIce > 1:
		return failure.Configf("ice thresholds polar=%g alpine=%g outside [0,1]", p.PolarIce, p.AlpineIce)
	case p.SmoothingPasses < 0:
		return failure.Configf("smoothing_passes %d is negative", p.SmoothingPasses)
	case p.MajorityMin < 1 || p.MajorityMin > 9:
		return failure.Configf("majority_min %d outside [1,9]", p.MajorityMin)
	}
	return nil
}

// Input gathers the fields the classifier reads.
type Input struct {
	Temperature *grid.Field
	Humidity    *grid.Field
	Quantiles   moisture.Quantiles
	Heightmap   *grid.Field
	Ocean       *grid.Mask
	Thresholds  foundation.Thresholds
	// Water is optional; when set, lake cells become Lake.
	Water *erosion.Classification
}

func (in Input) validate() error {
	if in.Temperature == nil || in.Humidity == nil || in.Heightmap == nil || in.Ocean == nil {
		return failure.Contractf("biome input is incomplete")
	}
	d := in.Temperature.Dims
	if in.Humidity.Dims != d || in.Heightmap.Dims != d || in.Ocean.Dims != d ||
		(in.Water != nil && in.Water.Dims != d) {
		return failure.Contractf("biome inputs have mismatched dimensions")
	}
	return nil
}

// Map is the immutable per-cell biome grid, with the Whittaker biome id of
// every land cell alongside.
type Map struct {
	grid.Dims
	biomes    []Biome
	whittaker []int
}

// At returns the biome at (x, y).
func (m *Map) At(x, y int) Biome { return m.biomes[m.Index(x, y)] }

// AtIndex returns the biome at row-major index i.
func (m *Map) AtIndex(i int) Biome { return m.biomes[i] }

// Whittaker returns the genbiome Whittaker id at (x, y), or -1 for water.
func (m *Map) Whittaker(x, y int) int { return m.whittaker[m.Index(x, y)] }

// Bytes returns one byte per cell in row-major order.
func (m *Map) Bytes() []byte {
	out := make([]byte, len(m.biomes))
	for i, b := range m.biomes {
		out[i] = byte(b)
	}
	return out
}

// Histogram counts the cells of every biome.
func (m *Map) Histogram() map[Biome]int {
	h := make(map[Biome]int)
	for _, b := range m.biomes {
		h[b]++
	}
	return h
}

// Classify assigns every cell exactly one catalog biome. Ocean cells are
// Ocean, lake cells Lake and frozen land Ice; every other cell comes from
// the temperature × humidity table, then majority smoothing softens table
// borders without touching overrides.
func Classify(in Input, p Params) (*Map, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	d := in.Temperature.Dims
	out := make([]Biome, d.Len())
	for i := range out {
		out[i] = classifyCell(in, p, i)
	}
	for range p.SmoothingPasses {
		out = smooth(d, out, p.MajorityMin)
	}

	wh := make([]int, d.Len())
	minC := float64(genbiome.MinTemperatureC)
	spanC := float64(genbiome.MaxTemperatureC) - minC
	for i := range wh {
		if out[i] == Ocean || out[i] == Lake {
			wh[i] = -1
			continue
		}
		tempC := int(minC + in.Temperature.AtIndex(i)*spanC)
		precipDM := int(in.Quantiles.Rank(in.Humidity.AtIndex(i)) * float64(genbiome.MaxPrecipitationDM))
		wh[i] = genbiome.GetWhittakerModBiome(tempC, precipDM)
	}
	return &Map{Dims: d, biomes: out, whittaker: wh}, nil
}

func classifyCell(in Input, p Params, i int) Biome {
	if in.Ocean.AtIndex(i) {
		return Ocean
	}
	if in.Water != nil && in.Water.AtIndex(i) == erosion.LakeWater {
		return Lake
	}
	t := in.Temperature.AtIndex(i)
	if t < p.PolarIce || (in.Heightmap.AtIndex(i) >= in.Thresholds.Peak && t < p.AlpineIce) {
		return Ice
	}
	tb := grid.Band(p.TemperatureCuts[:], t)
	hb := int(in.Quantiles.Band(in.Humidity.AtIndex(i)))
	return Table(tb, hb)
}

// smooth runs one 3×3 majority pass. Only table biomes change, and only
// into another table biome held by at least majority cells of the window.
func smooth(d grid.Dims, src []Biome, majority int) []Biome {
	out := make([]Biome, len(src))
	copy(out, src)
	var counts [biomeCount]int
	for y := range d.H {
		for x := range d.W {
			i := d.Index(x, y)
			if src[i].Override() {
				continue
			}
			counts = [biomeCount]int{}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if d.In(nx, ny) {
						counts[src[d.Index(nx, ny)]]++
					}
				}
			}
			// Ties keep the current biome, then the lowest id.
			best := src[i]
			for b := PolarDesert; b < biomeCount; b++ {
				if counts[b] >= majority && counts[b] > counts[best] {
					best = b
				}
			}
			out[i] = best
		}
	}
	return out
}
