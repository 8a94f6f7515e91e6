package grid

import (
	"fmt"
	"math"
)

// Dims describes the width and height shared by every field of one run.
type Dims struct {
	W int `json:"width"`
	H int `json:"height"`
}

// Len returns the number of cells.
func (d Dims) Len() int { return d.W * d.H }

// Index returns the row-major index of (x, y).
func (d Dims) Index(x, y int) int { return y*d.W + x }

// XY converts a row-major index back into coordinates.
func (d Dims) XY(i int) (int, int) { return i % d.W, i / d.W }

// In reports whether (x, y) lies inside the grid.
func (d Dims) In(x, y int) bool { return x >= 0 && y >= 0 && x < d.W && y < d.H }

// Validate rejects empty or negative dimensions.
func (d Dims) Validate() error {
	if d.W <= 0 || d.H <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", d.W, d.H)
	}
	return nil
}

func (d Dims) String() string { return fmt.Sprintf("%dx%d", d.W, d.H) }

// Field is a dense, read-only grid of float64 values in row-major order.
type Field struct {
	Dims
	data []float64
}

// Freeze wraps data as a Field. The caller hands over ownership of data and
// must not modify it afterwards.
func Freeze(d Dims, data []float64) *Field {
	if len(data) != d.Len() {
		panic(fmt.Sprintf("grid: %d values for %s field", len(data), d))
	}
	return &Field{Dims: d, data: data}
}

// FromRows builds a Field from a slice of equally sized rows.
func FromRows(rows [][]float64) *Field {
	d := Dims{H: len(rows)}
	if d.H > 0 {
		d.W = len(rows[0])
	}
	data := make([]float64, 0, d.Len())
	for y, row := range rows {
		if len(row) != d.W {
			panic(fmt.Sprintf("grid: row %d has %d values, want %d", y, len(row), d.W))
		}
		data = append(data, row...)
	}
	return Freeze(d, data)
}

// Constant returns a field filled with v.
func Constant(d Dims, v float64) *Field {
	data := make([]float64, d.Len())
	for i := range data {
		data[i] = v
	}
	return Freeze(d, data)
}

// At returns the value at (x, y).
func (f *Field) At(x, y int) float64 { return f.data[y*f.W+x] }

// AtIndex returns the value at row-major index i.
func (f *Field) AtIndex(i int) float64 { return f.data[i] }

// Clamped returns the value at (x, y) with coordinates clamped to the grid.
func (f *Field) Clamped(x, y int) float64 {
	x = min(max(x, 0), f.W-1)
	y = min(max(y, 0), f.H-1)
	return f.data[y*f.W+x]
}

// Values returns a copy of the backing data.
func (f *Field) Values() []float64 {
	out := make([]float64, len(f.data))
	copy(out, f.data)
	return out
}

// MinMax returns the smallest and largest value.
func (f *Field) MinMax() (lo, hi float64) {
	return MinMax(f.data)
}

// Finite reports the first non-finite cell, if any.
func (f *Field) Finite() (int, bool) {
	for i, v := range f.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i, false
		}
	}
	return -1, true
}

// Equal reports whether two fields have the same dimensions and values.
func (f *Field) Equal(o *Field) bool {
	if f.Dims != o.Dims {
		return false
	}
	for i, v := range f.data {
		if o.data[i] != v {
			return false
		}
	}
	return true
}

// MinMax returns the smallest and largest value of vals. An empty slice
// yields (0, 0).
func MinMax(vals []float64) (lo, hi float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	lo, hi = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Rescale min-max normalises vals into [0, 1] in place. A constant slice is
// clamped into [0, 1] instead.
func Rescale(vals []float64) {
	lo, hi := MinMax(vals)
	span := hi - lo
	if span <= 0 {
		for i, v := range vals {
			vals[i] = Clamp01(v)
		}
		return
	}
	for i, v := range vals {
		vals[i] = (v - lo) / span
	}
}

// Clamp01 clamps v into [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Mask is a dense, read-only boolean grid.
type Mask struct {
	Dims
	data []bool
}

// FreezeMask wraps data as a Mask, taking ownership of it.
func FreezeMask(d Dims, data []bool) *Mask {
	if len(data) != d.Len() {
		panic(fmt.Sprintf("grid: %d flags for %s mask", len(data), d))
	}
	return &Mask{Dims: d, data: data}
}

// At reports the flag at (x, y).
func (m *Mask) At(x, y int) bool { return m.data[y*m.W+x] }

// AtIndex reports the flag at row-major index i.
func (m *Mask) AtIndex(i int) bool { return m.data[i] }

// Count returns the number of set cells.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.data {
		if v {
			n++
		}
	}
	return n
}

// Values returns a copy of the backing flags.
func (m *Mask) Values() []bool {
	out := make([]bool, len(m.data))
	copy(out, m.data)
	return out
}
