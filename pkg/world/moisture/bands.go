package moisture

import "github.com/OCharnyshevich/worldclimate/pkg/world/grid"

// Band is a humidity class, driest first.
type Band uint8

const (
	SuperArid Band = iota
	PerArid
	Arid
	SemiArid
	SubHumid
	Humid
	PerHumid
	SuperHumid
)

// BandCount is the number of humidity bands.
const BandCount = 8

var bandNames = [BandCount]string{
	"super_arid", "per_arid", "arid", "semi_arid",
	"sub_humid", "humid", "per_humid", "super_humid",
}

func (b Band) String() string {
	if int(b) < len(bandNames) {
		return bandNames[b]
	}
	return "unknown"
}

// Quantiles holds the cut points between the eight humidity bands, taken
// from the land humidity distribution.
type Quantiles struct {
	Cuts [BandCount - 1]float64 `json:"cuts"`
}

// ComputeQuantiles cuts land humidity at k/8 for k = 1..7.
func ComputeQuantiles(humidity *grid.Field, ocean *grid.Mask) Quantiles {
	land := make([]float64, 0, humidity.Len())
	for i := range humidity.Len() {
		if !ocean.AtIndex(i) {
			land = append(land, humidity.AtIndex(i))
		}
	}
	qs := make([]float64, BandCount-1)
	for k := range qs {
		qs[k] = float64(k+1) / BandCount
	}
	var q Quantiles
	copy(q.Cuts[:], grid.Quantiles(land, qs...))
	return q
}

// Band classifies a humidity value.
func (q Quantiles) Band(v float64) Band {
	return Band(grid.Band(q.Cuts[:], v))
}

// Rank returns the position of v within the bands as a value in [0,1],
// interpolated linearly inside its band.
func (q Quantiles) Rank(v float64) float64 {
	b := int(q.Band(v))
	if b == 0 || b == BandCount-1 {
		return (float64(b) + 0.5) / BandCount
	}
	lo, hi := q.Cuts[b-1], q.Cuts[b]
	frac := 0.5
	if hi > lo {
		frac = grid.Clamp01((v - lo) / (hi - lo))
	}
	return (float64(b) + frac) / BandCount
}
