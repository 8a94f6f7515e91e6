package biome

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/OCharnyshevich/worldclimate/pkg/world/erosion"
	"github.com/OCharnyshevich/worldclimate/pkg/world/failure"
	"github.com/OCharnyshevich/worldclimate/pkg/world/foundation"
	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
	"github.com/OCharnyshevich/worldclimate/pkg/world/moisture"
)

var testThresholds = foundation.Thresholds{Sea: 0, Hill: 100, Mountain: 200, Peak: 300}

// gradientInput builds a w×h world whose first column is ocean, with
// temperature rising along x and humidity rising along y.
func gradientInput(w, h int) Input {
	d := grid.Dims{W: w, H: h}
	temp := make([]float64, d.Len())
	hum := make([]float64, d.Len())
	height := make([]float64, d.Len())
	ocean := make([]bool, d.Len())
	for y := range h {
		for x := range w {
			i := d.Index(x, y)
			temp[i] = float64(x) / float64(w-1)
			hum[i] = float64(y) + 0.01*math.Sin(float64(i))
			height[i] = 50
			if x == 0 {
				ocean[i] = true
				height[i] = -10
			}
		}
	}
	humidity := grid.Freeze(d, hum)
	mask := grid.FreezeMask(d, ocean)
	return Input{
		Temperature: grid.Freeze(d, temp),
		Humidity:    humidity,
		Quantiles:   moisture.ComputeQuantiles(humidity, mask),
		Heightmap:   grid.Freeze(d, height),
		Ocean:       mask,
		Thresholds:  testThresholds,
	}
}

// uniformInput builds a w×h all-land world with constant fields.
func uniformInput(w, h int, temp float64) Input {
	d := grid.Dims{W: w, H: h}
	humidity := grid.Constant(d, 0.5)
	mask := grid.FreezeMask(d, make([]bool, d.Len()))
	return Input{
		Temperature: grid.Constant(d, temp),
		Humidity:    humidity,
		Quantiles:   moisture.ComputeQuantiles(humidity, mask),
		Heightmap:   grid.Constant(d, 50),
		Ocean:       mask,
		Thresholds:  testThresholds,
	}
}

func TestTableDistinct(t *testing.T) {
	seen := make(map[Biome]bool)
	names := make(map[string]bool)
	for tb := range TemperatureBands {
		for hb := range HumidityBands {
			b := Table(tb, hb)
			if !b.Valid() || b.Override() {
				t.Fatalf("Table(%d,%d) = %d is not a table biome", tb, hb, b)
			}
			if seen[b] {
				t.Fatalf("Table(%d,%d) = %s repeats", tb, hb, b)
			}
			seen[b] = true
			names[b.String()] = true
		}
	}
	if len(seen) != 48 || len(names) != 48 {
		t.Fatalf("table holds %d biomes with %d names, want 48", len(seen), len(names))
	}
	if Count != 51 {
		t.Fatalf("catalog size = %d, want 51", Count)
	}
}

func TestClassifyTotality(t *testing.T) {
	in := gradientInput(24, 16)
	m, err := Classify(in, DefaultParams())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	for i := range m.Len() {
		b := m.AtIndex(i)
		if !b.Valid() {
			t.Fatalf("cell %d has no catalog biome: %d", i, b)
		}
		if in.Ocean.AtIndex(i) != (b == Ocean) {
			t.Fatalf("cell %d: ocean=%v but biome %s", i, in.Ocean.AtIndex(i), b)
		}
	}

	// The gradient spans every temperature band and every humidity band.
	hist := m.Histogram()
	if hist[Ocean] != 16 {
		t.Errorf("ocean cells = %d, want 16", hist[Ocean])
	}
	if len(hist) < 20 {
		t.Errorf("only %d distinct biomes across a full gradient", len(hist))
	}
	if len(m.Bytes()) != 24*16 {
		t.Errorf("Bytes length = %d", len(m.Bytes()))
	}
}

func TestOverrides(t *testing.T) {
	tests := []struct {
		name   string
		temp   float64
		height float64
		lake   bool
		want   Biome
	}{
		{"polar ice", 0.01, 50, false, Ice},
		{"alpine ice", 0.3, 300, false, Ice},
		{"warm peak stays land", 0.5, 300, false, Table(3, 7)},
		{"cold lowland", 0.3, 50, false, Table(2, 7)},
		{"lake", 0.5, 50, true, Lake},
		{"frozen lake stays lake", 0.01, 50, true, Lake},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := grid.Dims{W: 1, H: 1}
			in := uniformInput(1, 1, tt.temp)
			in.Heightmap = grid.Constant(d, tt.height)
			if tt.lake {
				water, err := erosion.Classify(grid.Constant(d, 0.9), grid.Constant(d, 0), in.Ocean,
					erosion.DefaultWaterThresholds(), 0.2)
				if err != nil {
					t.Fatalf("erosion.Classify: %v", err)
				}
				in.Water = water
			}
			m, err := Classify(in, DefaultParams())
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if got := m.At(0, 0); got != tt.want {
				t.Fatalf("biome = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSmoothing(t *testing.T) {
	// A lone cooler cell inside a uniform area adopts its neighbours' biome.
	in := uniformInput(5, 5, 0.5)
	vals := in.Temperature.Values()
	vals[in.Temperature.Index(2, 2)] = 0.2
	in.Temperature = grid.Freeze(in.Temperature.Dims, vals)

	raw := DefaultParams()
	raw.SmoothingPasses = 0
	unsmoothed, _ := Classify(in, raw)
	smoothed, err := Classify(in, DefaultParams())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if unsmoothed.At(2, 2) == unsmoothed.At(0, 0) {
		t.Fatal("setup: centre should differ before smoothing")
	}
	if smoothed.At(2, 2) != smoothed.At(0, 0) {
		t.Fatalf("centre %s was not smoothed into %s", smoothed.At(2, 2), smoothed.At(0, 0))
	}

	// A lone Ice cell is an override and survives.
	vals[in.Temperature.Index(2, 2)] = 0.01
	in.Temperature = grid.Freeze(in.Temperature.Dims, vals)
	iced, _ := Classify(in, DefaultParams())
	if iced.At(2, 2) != Ice {
		t.Fatalf("smoothing replaced an override: %s", iced.At(2, 2))
	}
	for i := range iced.Len() {
		if i != iced.Index(2, 2) && iced.AtIndex(i).Override() {
			t.Fatalf("smoothing produced override %s at %d", iced.AtIndex(i), i)
		}
	}
}

func TestSmoothMajority(t *testing.T) {
	d := grid.Dims{W: 3, H: 3}
	a, b, c := Table(0, 0), Table(5, 7), Table(2, 2)
	src := []Biome{
		a, b, a,
		b, c, b,
		a, b, a,
	}
	if got := smooth(d, src, 5)[4]; got != c {
		t.Fatalf("majority 5: centre = %s, want %s kept", got, c)
	}
	if got := smooth(d, src, 4)[4]; got != a {
		t.Fatalf("majority 4: centre = %s, want lowest tied biome %s", got, a)
	}
}

func TestWhittakerWater(t *testing.T) {
	m, err := Classify(gradientInput(8, 8), DefaultParams())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if m.Whittaker(0, 3) != -1 {
		t.Fatalf("ocean Whittaker id = %d, want -1", m.Whittaker(0, 3))
	}
}

func TestClassifyDeterministic(t *testing.T) {
	a, _ := Classify(gradientInput(20, 20), DefaultParams())
	b, _ := Classify(gradientInput(20, 20), DefaultParams())
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("identical inputs produced different biome maps")
	}
}

func TestClassifyErrors(t *testing.T) {
	in := gradientInput(4, 4)
	in.Humidity = grid.Constant(grid.Dims{W: 5, H: 4}, 1)
	if _, err := Classify(in, DefaultParams()); !errors.Is(err, failure.ErrUpstreamContract) {
		t.Fatalf("mismatched dims: want ErrUpstreamContract, got %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"cuts out of order", func(p *Params) { p.TemperatureCuts[2] = 0.1 }},
		{"nan ice", func(p *Params) { p.PolarIce = math.NaN() }},
		{"majority too high", func(p *Params) { p.MajorityMin = 10 }},
		{"negative passes", func(p *Params) { p.SmoothingPasses = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			if _, err := Classify(gradientInput(4, 4), p); !errors.Is(err, failure.ErrConfiguration) {
				t.Fatalf("want ErrConfiguration, got %v", err)
			}
		})
	}
}
