package erosion

import (
	"github.com/OCharnyshevich/worldclimate/pkg/world/failure"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
)

// WaterClass is the discrete water feature of a cell.
type WaterClass uint8

const (
	Dry WaterClass = iota
	Creek
	Stream
	RiverWater
	LakeWater
)

func (c WaterClass) String() string {
	switch c {
	case Dry:
		return "dry"
	case Creek:
		return "creek"
	case Stream:
		return "stream"
	case RiverWater:
		return "river"
	case LakeWater:
		return "lake"
	default:
		return "unknown"
	}
}

// Flowing reports whether the class carries moving water.
func (c WaterClass) Flowing() bool { return c >= Creek && c <= RiverWater }

// WaterThresholds are the normalised discharge levels of each class.
type WaterThresholds struct {
	Creek  float64 `json:"creek"`
	Stream float64 `json:"stream"`
	River  float64 `json:"river"`
	Lake   float64 `json:"lake"`
}

// DefaultWaterThresholds returns the standard class boundaries.
func DefaultWaterThresholds() WaterThresholds {
	return WaterThresholds{Creek: 0.25, Stream: 0.45, River: 0.65, Lake: 0.8}
}

// Validate requires 0 < Creek < Stream < River < Lake <= 1.
func (t WaterThresholds) Validate() error {
	if err := failure.Finite([]string{"creek", "stream", "river", "lake"}, t.Creek, t.Stream, t.River, t.Lake); err != nil {
		return err
	}
	if !(0 < t.Creek && t.Creek < t.Stream && t.Stream < t.River && t.River < t.Lake && t.Lake <= 1) {
		return failure.Configf("water thresholds not ordered: creek=%g stream=%g river=%g lake=%g",
			t.Creek, t.Stream, t.River, t.Lake)
	}
	return nil
}

// Classification is an immutable per-cell water class grid.
type Classification struct {
	grid.Dims
	classes []WaterClass
}

// At returns the class at (x, y).
func (c *Classification) At(x, y int) WaterClass { return c.classes[c.Index(x, y)] }

// AtIndex returns the class at row-major index i.
func (c *Classification) AtIndex(i int) WaterClass { return c.classes[i] }

// Count returns the number of cells of class w.
func (c *Classification) Count(w WaterClass) int {
	n := 0
	for _, v := range c.classes {
		if v == w {
			n++
		}
	}
	return n
}

// Classify assigns a water class to every cell from normalised discharge.
// Deep water whose flow coherence is below lakeCoherence pools as a lake;
// ocean cells are always Dry.
func Classify(discharge, coherence *grid.Field, ocean *grid.Mask, t WaterThresholds, lakeCoherence float64) (*Classification, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if discharge == nil || coherence == nil || ocean == nil {
		return nil, failure.Contractf("discharge, coherence and ocean mask are required")
	}
	if coherence.Dims != discharge.Dims || ocean.Dims != discharge.Dims {
		return nil, failure.Contractf("classification inputs differ: discharge %s, coherence %s, ocean %s",
			discharge.Dims, coherence.Dims, ocean.Dims)
	}
	out := make([]WaterClass, discharge.Len())
	for i := range out {
		if ocean.AtIndex(i) {
			continue
		}
		d := discharge.AtIndex(i)
		switch {
		case d >= t.Lake && coherence.AtIndex(i) < lakeCoherence:
			out[i] = LakeWater
		case d >= t.River:
			out[i] = RiverWater
		case d >= t.Stream:
			out[i] = Stream
		case d >= t.Creek:
			out[i] = Creek
		}
	}
	return &Classification{Dims: discharge.Dims, classes: out}, nil
}
