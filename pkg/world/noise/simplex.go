package noise

// Simplex is a seeded 2D simplex noise source after Ken Perlin's algorithm.
// Output is in [-1, 1].
type Simplex struct {
	perm [512]int
}

// grad2 are the 2D projections of the 12 simplex edge gradients.
var grad2 = [12][2]float64{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {1, 0}, {-1, 0},
	{0, 1}, {0, -1}, {0, 1}, {0, -1},
}

// NewSimplex creates a simplex source with a seed-shuffled permutation table.
func NewSimplex(seed int64) *Simplex {
	s := &Simplex{}

	var p [256]int
	for i := range p {
		p[i] = i
	}

	// Fisher-Yates driven by a 64-bit LCG.
	state := seed
	for i := 255; i > 0; i-- {
		state = state*6364136223846793005 + 1442695040888963407
		j := int((state>>33)&0x7FFFFFFF) % (i + 1)
		p[i], p[j] = p[j], p[i]
	}

	for i := range s.perm {
		s.perm[i] = p[i&255]
	}
	return s
}

// Eval2 returns simplex noise at (x, y).
func (s *Simplex) Eval2(x, y float64) float64 {
	const (
		f2 = 0.36602540378443864676 // (sqrt(3) - 1) / 2
		g2 = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	)

	skew := (x + y) * f2
	i := fastFloor(x + skew)
	j := fastFloor(y + skew)

	t := float64(i+j) * g2
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)

	var i1, j1 int
	if x0 > y0 {
		i1 = 1
	} else {
		j1 = 1
	}

	x1 := x0 - float64(i1) + g2
	y1 := y0 - float64(j1) + g2
	x2 := x0 - 1.0 + 2.0*g2
	y2 := y0 - 1.0 + 2.0*g2

	ii := i & 255
	jj := j & 255
	corners := [3]struct {
		x, y float64
		g    int
	}{
		{x0, y0, s.perm[ii+s.perm[jj]] % 12},
		{x1, y1, s.perm[ii+i1+s.perm[jj+j1]] % 12},
		{x2, y2, s.perm[ii+1+s.perm[jj+1]] % 12},
	}

	var total float64
	for _, c := range corners {
		falloff := 0.5 - c.x*c.x - c.y*c.y
		if falloff < 0 {
			continue
		}
		falloff *= falloff
		g := grad2[c.g]
		total += falloff * falloff * (g[0]*c.x + g[1]*c.y)
	}
	return clampUnit(70.0 * total)
}

func fastFloor(x float64) int {
	xi := int(x)
	if x < float64(xi) {
		return xi - 1
	}
	return xi
}
