// Package foundation describes the terrain handed to the climate pipeline:
// a heightmap, its ocean mask and the elevation thresholds that interpret it.
package foundation

import (
	"github.com/OCharnyshevich/worldclimate/pkg/world/failure"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
)

// Thresholds are elevations in heightmap units, ordered Sea < Hill < Mountain < Peak.
type Thresholds struct {
	Sea      float64 `json:"sea"`
	Hill     float64 `json:"hill"`
	Mountain float64 `json:"mountain"`
	Peak     float64 `json:"peak"`
}

// Validate checks the thresholds are finite and strictly increasing.
func (t Thresholds) Validate() error {
	if err := failure.Finite([]string{"sea", "hill", "mountain", "peak"}, t.Sea, t.Hill, t.Mountain, t.Peak); err != nil {
		return failure.Contractf("thresholds: %v", err)
	}
	if !(t.Sea < t.Hill && t.Hill < t.Mountain && t.Mountain < t.Peak) {
		return failure.Contractf("thresholds not ordered: sea=%g hill=%g mountain=%g peak=%g",
			t.Sea, t.Hill, t.Mountain, t.Peak)
	}
	return nil
}

// Foundation is the immutable terrain input of one generation run.
type Foundation struct {
	Heightmap  *grid.Field
	Ocean      *grid.Mask
	Thresholds Thresholds
}

// Dims returns the grid dimensions of the heightmap.
func (f Foundation) Dims() grid.Dims {
	if f.Heightmap == nil {
		return grid.Dims{}
	}
	return f.Heightmap.Dims
}

// Validate enforces the input contract: matching dimensions, finite heights,
// ordered thresholds, and an ocean mask holding exactly the cells below sea
// level that connect to the grid border.
func (f Foundation) Validate() error {
	if f.Heightmap == nil || f.Ocean == nil {
		return failure.Contractf("heightmap and ocean mask are required")
	}
	if err := f.Heightmap.Dims.Validate(); err != nil {
		return failure.Contractf("heightmap: %v", err)
	}
	if f.Heightmap.Dims != f.Ocean.Dims {
		return failure.Contractf("ocean mask is %s, heightmap is %s", f.Ocean.Dims, f.Heightmap.Dims)
	}
	if i, ok := f.Heightmap.Finite(); !ok {
		x, y := f.Heightmap.XY(i)
		return failure.Contractf("heightmap value at (%d,%d) is not finite", x, y)
	}
	if err := f.Thresholds.Validate(); err != nil {
		return err
	}

	d := f.Heightmap.Dims
	for i := range d.Len() {
		if f.Ocean.AtIndex(i) && f.Heightmap.AtIndex(i) >= f.Thresholds.Sea {
			x, y := d.XY(i)
			return failure.Contractf("ocean cell (%d,%d) at %g is not below sea level %g",
				x, y, f.Heightmap.AtIndex(i), f.Thresholds.Sea)
		}
	}
	if grid.BorderConnected(f.Ocean).Count() != f.Ocean.Count() {
		return failure.Contractf("ocean mask has cells not connected to the map border")
	}
	sea := DeriveOcean(f.Heightmap, f.Thresholds.Sea)
	for i := range d.Len() {
		if sea.AtIndex(i) && !f.Ocean.AtIndex(i) {
			x, y := d.XY(i)
			return failure.Contractf("cell (%d,%d) at %g is open sea but not marked ocean",
				x, y, f.Heightmap.AtIndex(i))
		}
	}
	return nil
}

// DeriveOcean returns the cells below sea level that connect to the border.
func DeriveOcean(h *grid.Field, sea float64) *grid.Mask {
	below := make([]bool, h.Len())
	for i := range below {
		below[i] = h.AtIndex(i) < sea
	}
	return grid.BorderConnected(grid.FreezeMask(h.Dims, below))
}
