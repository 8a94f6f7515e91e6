package noise

import (
	"math"
	"testing"
)

var kinds = []Kind{KindOpenSimplex, KindPerlin, KindSimplex}

func TestNoiseDeterministic(t *testing.T) {
	for _, kind := range kinds {
		s1, err := New(kind, 12345)
		if err != nil {
			t.Fatalf("New(%s): %v", kind, err)
		}
		s2, _ := New(kind, 12345)
		for i := 0; i < 100; i++ {
			x := float64(i) * 0.1
			y := float64(i) * 0.2
			if s1.Eval2(x, y) != s2.Eval2(x, y) {
				t.Fatalf("%s not deterministic at (%f, %f)", kind, x, y)
			}
		}
	}
}

func TestNoiseRange(t *testing.T) {
	for _, kind := range kinds {
		s, _ := New(kind, 42)
		for i := 0; i < 5000; i++ {
			x := float64(i)*0.37 - 500
			y := float64(i)*0.53 - 500
			v := s.Eval2(x, y)
			if v < -1 || v > 1 {
				t.Fatalf("%s Eval2(%f, %f) = %f, out of [-1,1]", kind, x, y, v)
			}
		}
	}
}

func TestSimplexDifferentSeeds(t *testing.T) {
	s1 := NewSimplex(1)
	s2 := NewSimplex(2)

	different := false
	for i := 0; i < 100; i++ {
		x := float64(i) * 0.1
		y := float64(i) * 0.2
		if s1.Eval2(x, y) != s2.Eval2(x, y) {
			different = true
			break
		}
	}
	if !different {
		t.Error("different seeds should produce different noise")
	}
}

func TestUnknownKind(t *testing.T) {
	if _, err := New("voronoi", 1); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestFractalRangeAndSmoothness(t *testing.T) {
	s, _ := New(KindSimplex, 456)
	f := Fractal{Sampler: s, Octaves: 4, Persistence: 0.5, Frequency: 1}

	prev := f.At01(0, 0)
	for i := 1; i < 1000; i++ {
		x := float64(i) * 0.01
		curr := f.At01(x, 0)
		if curr < 0 || curr > 1 {
			t.Fatalf("At01(%f, 0) = %f, out of [0,1]", x, curr)
		}
		if diff := math.Abs(curr - prev); diff > 0.1 {
			t.Fatalf("noise changed too rapidly at x=%f: diff=%f", x, diff)
		}
		prev = curr
	}
}
