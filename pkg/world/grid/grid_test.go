package grid

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
)

func TestDistanceTransform(t *testing.T) {
	d := Dims{W: 5, H: 3}
	seeds := make([]bool, d.Len())
	seeds[d.Index(0, 1)] = true

	dist := DistanceTransform(FreezeMask(d, seeds))

	tests := []struct {
		x, y int
		want int
	}{
		{0, 1, 0},
		{1, 1, 1},
		{0, 0, 1},
		{4, 1, 4},
		{4, 0, 5},
		{4, 2, 5},
	}
	for _, tt := range tests {
		if got := dist[d.Index(tt.x, tt.y)]; got != tt.want {
			t.Errorf("dist(%d,%d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDistanceTransformNoSeeds(t *testing.T) {
	d := Dims{W: 3, H: 3}
	dist := DistanceTransform(FreezeMask(d, make([]bool, d.Len())))
	for i, v := range dist {
		if v != Unreachable {
			t.Fatalf("cell %d = %d, want Unreachable", i, v)
		}
	}
}

func TestComponents(t *testing.T) {
	d := Dims{W: 4, H: 3}
	set := []bool{
		true, true, false, true,
		false, false, false, true,
		true, false, false, false,
	}
	labels, count := Components(FreezeMask(d, set))
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
	if labels[0] != 0 || labels[1] != 0 {
		t.Errorf("top-left pair labels = %d,%d, want 0,0", labels[0], labels[1])
	}
	if labels[3] != 1 || labels[7] != 1 {
		t.Errorf("right column labels = %d,%d, want 1,1", labels[3], labels[7])
	}
	if labels[8] != 2 {
		t.Errorf("bottom-left label = %d, want 2", labels[8])
	}
	if labels[2] != -1 {
		t.Errorf("unset label = %d, want -1", labels[2])
	}
}

func TestBorderConnected(t *testing.T) {
	d := Dims{W: 5, H: 5}
	set := make([]bool, d.Len())
	set[d.Index(0, 2)] = true
	set[d.Index(1, 2)] = true
	set[d.Index(3, 3)] = true // enclosed

	got := BorderConnected(FreezeMask(d, set))
	if !got.At(1, 2) {
		t.Error("cell (1,2) touches the border through (0,2)")
	}
	if got.At(3, 3) {
		t.Error("enclosed cell (3,3) must not be border connected")
	}
	if got.Count() != 2 {
		t.Errorf("Count = %d, want 2", got.Count())
	}
}

func TestQuantiles(t *testing.T) {
	vals := []float64{5, 1, 4, 2, 3}
	got := Quantiles(vals, 0, 0.5, 1, 0.25)
	want := []float64{1, 3, 5, 2}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("quantile %d = %f, want %f", i, got[i], want[i])
		}
	}
	if vals[0] != 5 {
		t.Error("Quantiles must not reorder its input")
	}
	if q := Quantile(nil, 0.5); q != 0 {
		t.Errorf("empty quantile = %f, want 0", q)
	}
}

func TestBand(t *testing.T) {
	cuts := []float64{0.2, 0.4, 0.6}
	tests := []struct {
		v    float64
		want int
	}{
		{0.1, 0},
		{0.2, 1},
		{0.5, 2},
		{0.9, 3},
	}
	for _, tt := range tests {
		if got := Band(cuts, tt.v); got != tt.want {
			t.Errorf("Band(%f) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestRescale(t *testing.T) {
	vals := []float64{2, 4, 6}
	Rescale(vals)
	if vals[0] != 0 || vals[1] != 0.5 || vals[2] != 1 {
		t.Fatalf("Rescale = %v, want [0 0.5 1]", vals)
	}

	flat := []float64{1.5, 1.5}
	Rescale(flat)
	if flat[0] != 1 || flat[1] != 1 {
		t.Fatalf("constant Rescale = %v, want clamped [1 1]", flat)
	}
}

func TestFieldValuesIsCopy(t *testing.T) {
	f := FromRows([][]float64{{1, 2}, {3, 4}})
	vals := f.Values()
	vals[0] = 99
	if f.At(0, 0) != 1 {
		t.Fatal("mutating Values() leaked into the field")
	}
	if f.At(1, 1) != 4 || f.Clamped(5, -3) != 2 {
		t.Fatalf("At/Clamped returned wrong values")
	}
}

func TestParallelRowsCoversEveryRowOnce(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		const h = 37
		var hits [h]int32
		err := ParallelRows(context.Background(), h, workers, func(y0, y1 int) error {
			for y := y0; y < y1; y++ {
				atomic.AddInt32(&hits[y], 1)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		for y, n := range hits {
			if n != 1 {
				t.Fatalf("workers=%d: row %d visited %d times", workers, y, n)
			}
		}
	}
}

func TestParallelRowsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ParallelRows(ctx, 10, 1, func(int, int) error { return nil })
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}
