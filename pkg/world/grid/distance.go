package grid

import "math"

// Unreachable marks cells that no seed cell can reach.
const Unreachable = math.MaxInt32

// Point is an integer grid coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Offsets4 are the von Neumann neighbour offsets.
var Offsets4 = [4]Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Offsets8 are the Moore neighbour offsets, orthogonal first.
var Offsets8 = [8]Point{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
}

// DistanceTransform returns the 4-neighbour breadth-first step distance from
// every cell to the nearest set cell of seeds. Seed cells get 0; cells that
// cannot be reached get Unreachable.
func DistanceTransform(seeds *Mask) []int {
	d := seeds.Dims
	dist := make([]int, d.Len())
	queue := make([]int, 0, d.Len())
	for i := range dist {
		if seeds.data[i] {
			queue = append(queue, i)
			continue
		}
		dist[i] = Unreachable
	}

	for head := 0; head < len(queue); head++ {
		i := queue[head]
		x, y := d.XY(i)
		for _, o := range Offsets4 {
			nx, ny := x+o.X, y+o.Y
			if !d.In(nx, ny) {
				continue
			}
			n := d.Index(nx, ny)
			if dist[n] != Unreachable {
				continue
			}
			dist[n] = dist[i] + 1
			queue = append(queue, n)
		}
	}
	return dist
}

// Components labels the 4-connected components of the set cells of m.
// Labels start at 0 in scan order; unset cells get -1.
func Components(m *Mask) (labels []int, count int) {
	d := m.Dims
	labels = make([]int, d.Len())
	for i := range labels {
		labels[i] = -1
	}
	queue := make([]int, 0, 64)
	for start := range labels {
		if !m.data[start] || labels[start] >= 0 {
			continue
		}
		labels[start] = count
		queue = append(queue[:0], start)
		for head := 0; head < len(queue); head++ {
			x, y := d.XY(queue[head])
			for _, o := range Offsets4 {
				nx, ny := x+o.X, y+o.Y
				if !d.In(nx, ny) {
					continue
				}
				n := d.Index(nx, ny)
				if m.data[n] && labels[n] < 0 {
					labels[n] = count
					queue = append(queue, n)
				}
			}
		}
		count++
	}
	return labels, count
}

// BorderConnected returns the cells of m reachable from the grid border
// through set cells (4-connectivity).
func BorderConnected(m *Mask) *Mask {
	d := m.Dims
	out := make([]bool, d.Len())
	queue := make([]int, 0, 2*(d.W+d.H))
	push := func(i int) {
		if m.data[i] && !out[i] {
			out[i] = true
			queue = append(queue, i)
		}
	}
	for x := 0; x < d.W; x++ {
		push(d.Index(x, 0))
		push(d.Index(x, d.H-1))
	}
	for y := 0; y < d.H; y++ {
		push(d.Index(0, y))
		push(d.Index(d.W-1, y))
	}
	for head := 0; head < len(queue); head++ {
		x, y := d.XY(queue[head])
		for _, o := range Offsets4 {
			nx, ny := x+o.X, y+o.Y
			if d.In(nx, ny) {
				push(d.Index(nx, ny))
			}
		}
	}
	return FreezeMask(d, out)
}
