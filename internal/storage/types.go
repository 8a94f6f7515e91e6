package storage

import (
	"github.com/OCharnyshevich/worldclimate/pkg/world/biome"
	"github.com/OCharnyshevich/worldclimate/pkg/world/erosion"
	"github.com/OCharnyshevich/worldclimate/pkg/world/foundation"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
	"github.com/OCharnyshevich/worldclimate/pkg/world/moisture"
	"github.com/OCharnyshevich/worldclimate/pkg/world/pipeline"
)

// Report is the serializable summary of one generated world.
type Report struct {
	Seed       int64                 `json:"seed"`
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Thresholds foundation.Thresholds `json:"thresholds"`
	Physics    erosion.Physics       `json:"physics"`
	Particles  erosion.Stats         `json:"particles"`
	Water      WaterData             `json:"water"`
	Rivers     []RiverData           `json:"rivers"`
	Lakes      []LakeData            `json:"lakes"`
	Humidity   moisture.Quantiles    `json:"humidity_quantiles"`
	Biomes     map[string]int        `json:"biomes"`
	// BiomeMap holds one catalog id per cell in row-major order.
	BiomeMap []byte `json:"biome_map"`
}

// WaterData counts cells per water class.
type WaterData struct {
	Creek  int `json:"creek"`
	Stream int `json:"stream"`
	River  int `json:"river"`
	Lake   int `json:"lake"`
}

// RiverData is the serializable summary of a river.
type RiverData struct {
	ID            int                `json:"id"`
	Head          grid.Point         `json:"head"`
	Mouth         grid.Point         `json:"mouth"`
	Cells         int                `json:"cells"`
	Length        float64            `json:"length"`
	MeanDischarge float64            `json:"mean_discharge"`
	Outlet        erosion.OutletKind `json:"outlet"`
	LakeID        int                `json:"lake_id"`
	JoinsRiver    int                `json:"joins_river"`
}

// LakeData is the serializable summary of a lake.
type LakeData struct {
	ID     int         `json:"id"`
	Area   int         `json:"area"`
	Level  float64     `json:"level"`
	Outlet *grid.Point `json:"outlet,omitempty"`
}

// ReportFromResult extracts serializable data from a generated world.
func ReportFromResult(res *pipeline.Result) *Report {
	r := &Report{
		Seed:       res.Seed,
		Width:      res.Dims.W,
		Height:     res.Dims.H,
		Thresholds: res.Thresholds,
		Physics:    res.Physics,
		Particles:  res.ParticleStats,
		Water: WaterData{
			Creek:  res.Water.Count(erosion.Creek),
			Stream: res.Water.Count(erosion.Stream),
			River:  res.Water.Count(erosion.RiverWater),
			Lake:   res.Water.Count(erosion.LakeWater),
		},
		Rivers:   make([]RiverData, 0, len(res.Rivers)),
		Lakes:    make([]LakeData, 0, len(res.Lakes)),
		Humidity: res.Quantiles,
		Biomes:   make(map[string]int),
		BiomeMap: res.Biomes.Bytes(),
	}

	for _, rv := range res.Rivers {
		r.Rivers = append(r.Rivers, RiverData{
			ID:            rv.ID,
			Head:          rv.Cells[0],
			Mouth:         rv.Cells[len(rv.Cells)-1],
			Cells:         len(rv.Cells),
			Length:        rv.Length,
			MeanDischarge: rv.MeanDischarge,
			Outlet:        rv.Outlet,
			LakeID:        rv.LakeID,
			JoinsRiver:    rv.JoinsRiver,
		})
	}
	for _, l := range res.Lakes {
		r.Lakes = append(r.Lakes, LakeData{ID: l.ID, Area: l.Area, Level: l.Level, Outlet: l.Outlet})
	}
	for b, n := range res.Biomes.Histogram() {
		r.Biomes[b.String()] = n
	}
	return r
}

// Biome returns the biome of cell (x, y) from the stored map.
func (r *Report) Biome(x, y int) biome.Biome {
	return biome.Biome(r.BiomeMap[y*r.Width+x])
}
