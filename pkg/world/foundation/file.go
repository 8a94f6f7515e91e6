package foundation

import (
	"github.com/OCharnyshevich/worldclimate/pkg/world/failure"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
)

// File is the serializable form of a Foundation. Heights and Ocean are in
// row-major order; a missing Ocean is derived from the sea threshold.
type File struct {
	grid.Dims
	Heights    []float64  `json:"heights"`
	Ocean      []bool     `json:"ocean,omitempty"`
	Thresholds Thresholds `json:"thresholds"`
}

// ToFile converts f into its serializable form.
func ToFile(f Foundation) File {
	return File{
		Dims:       f.Dims(),
		Heights:    f.Heightmap.Values(),
		Ocean:      f.Ocean.Values(),
		Thresholds: f.Thresholds,
	}
}

// Foundation checks the file and builds a validated Foundation from it.
func (f File) Foundation() (Foundation, error) {
	if err := f.Dims.Validate(); err != nil {
		return Foundation{}, failure.Contractf("foundation file: %v", err)
	}
	if len(f.Heights) != f.Len() {
		return Foundation{}, failure.Contractf("foundation file: %d heights for %s grid", len(f.Heights), f.Dims)
	}
	if f.Ocean != nil && len(f.Ocean) != f.Len() {
		return Foundation{}, failure.Contractf("foundation file: %d ocean flags for %s grid", len(f.Ocean), f.Dims)
	}

	heights := make([]float64, len(f.Heights))
	copy(heights, f.Heights)
	h := grid.Freeze(f.Dims, heights)

	var ocean *grid.Mask
	if f.Ocean == nil {
		ocean = DeriveOcean(h, f.Thresholds.Sea)
	} else {
		flags := make([]bool, len(f.Ocean))
		copy(flags, f.Ocean)
		ocean = grid.FreezeMask(f.Dims, flags)
	}

	out := Foundation{Heightmap: h, Ocean: ocean, Thresholds: f.Thresholds}
	if err := out.Validate(); err != nil {
		return Foundation{}, err
	}
	return out, nil
}
