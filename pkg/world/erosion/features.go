package erosion

import (
	"fmt"
	"math"
	"sort"

	"github.com/OCharnyshevich/worldclimate/pkg/world/grid"
)

// OutletKind names where a river ends.
type OutletKind uint8

const (
	OutletOcean OutletKind = iota
	OutletLake
)

func (k OutletKind) String() string {
	if k == OutletLake {
		return "lake"
	}
	return "ocean"
}

// MarshalText encodes the kind by name.
func (k OutletKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind written by MarshalText.
func (k *OutletKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "ocean":
		*k = OutletOcean
	case "lake":
		*k = OutletLake
	default:
		return fmt.Errorf("unknown outlet kind %q", b)
	}
	return nil
}

// River is a path of river cells from its head to an ocean or lake cell.
// Tributaries share their downstream cells with the river they join.
type River struct {
	ID int `json:"id"`
	// Cells runs from the head to the outlet; the last cell is the ocean or
	// lake cell the river drains into.
	Cells         []grid.Point `json:"cells"`
	Length        float64      `json:"length"`
	MeanDischarge float64      `json:"mean_discharge"`
	Outlet        OutletKind   `json:"outlet"`
	// LakeID is the lake drained into, or -1.
	LakeID int `json:"lake_id"`
	// JoinsRiver is the river this one flows into before its outlet, or -1.
	JoinsRiver int `json:"joins_river"`
	// ConfluenceIndex is the index in Cells where JoinsRiver is met, or -1.
	ConfluenceIndex int `json:"confluence_index"`
}

// Lake is a 4-connected region of pooled water.
type Lake struct {
	ID    int          `json:"id"`
	Cells []grid.Point `json:"cells"`
	Area  int          `json:"area"`
	// Level is the mean carved elevation of the lake cells.
	Level float64 `json:"level"`
	// Outlet is the lowest flowing-water or ocean cell bordering the lake.
	Outlet *grid.Point `json:"outlet,omitempty"`
}

// ExtractLakes groups lake cells into lakes of at least minArea cells.
// lakeOf maps every cell to its lake ID, or -1.
func ExtractLakes(c *Classification, height *grid.Field, ocean *grid.Mask, minArea int) (lakes []Lake, lakeOf []int) {
	d := c.Dims
	flags := make([]bool, d.Len())
	for i := range flags {
		flags[i] = c.AtIndex(i) == LakeWater
	}
	labels, count := grid.Components(grid.FreezeMask(d, flags))

	members := make([][]int, count)
	for i, l := range labels {
		if l >= 0 {
			members[l] = append(members[l], i)
		}
	}

	lakeOf = make([]int, d.Len())
	for i := range lakeOf {
		lakeOf[i] = -1
	}
	for _, cells := range members {
		if len(cells) < minArea {
			continue
		}
		id := len(lakes)
		lake := Lake{ID: id, Area: len(cells)}
		for _, i := range cells {
			lakeOf[i] = id
		}

		outlet, outletH := -1, math.Inf(1)
		for _, i := range cells {
			x, y := d.XY(i)
			lake.Cells = append(lake.Cells, grid.Point{X: x, Y: y})
			lake.Level += height.AtIndex(i)
			for _, o := range grid.Offsets4 {
				nx, ny := x+o.X, y+o.Y
				if !d.In(nx, ny) {
					continue
				}
				n := d.Index(nx, ny)
				if lakeOf[n] == id || !(ocean.AtIndex(n) || c.AtIndex(n).Flowing()) {
					continue
				}
				if h := height.AtIndex(n); h < outletH || (h == outletH && n < outlet) {
					outlet, outletH = n, h
				}
			}
		}
		lake.Level /= float64(len(cells))
		if outlet >= 0 {
			x, y := d.XY(outlet)
			lake.Outlet = &grid.Point{X: x, Y: y}
		}
		lakes = append(lakes, lake)
	}
	return lakes, lakeOf
}

// ExtractRivers links river cells downstream toward the nearest ocean or
// lake cell (8-connected) and traces every head to its outlet. Only cells
// of a lake listed in lakeOf are outlets; pools below the minimum lake area
// are not. River cells with no route to an outlet are not part of any river.
func ExtractRivers(c *Classification, height, discharge *grid.Field, ocean *grid.Mask, lakeOf []int, minCells int) []River {
	d := c.Dims
	n := d.Len()

	dist := make([]int, n)
	queue := make([]int, 0, n)
	for i := range dist {
		if ocean.AtIndex(i) || lakeOf[i] >= 0 {
			queue = append(queue, i)
			continue
		}
		dist[i] = grid.Unreachable
	}
	for head := 0; head < len(queue); head++ {
		i := queue[head]
		x, y := d.XY(i)
		for _, o := range grid.Offsets8 {
			nx, ny := x+o.X, y+o.Y
			if !d.In(nx, ny) {
				continue
			}
			j := d.Index(nx, ny)
			if dist[j] != grid.Unreachable || c.AtIndex(j) != RiverWater {
				continue
			}
			dist[j] = dist[i] + 1
			queue = append(queue, j)
		}
	}

	next := make([]int, n)
	hasIn := make([]bool, n)
	var heads []int
	for i := range next {
		next[i] = -1
		if c.AtIndex(i) != RiverWater || dist[i] == grid.Unreachable {
			continue
		}
		x, y := d.XY(i)
		best := -1
		for _, o := range grid.Offsets8 {
			nx, ny := x+o.X, y+o.Y
			if !d.In(nx, ny) {
				continue
			}
			j := d.Index(nx, ny)
			if dist[j] != dist[i]-1 {
				continue
			}
			if best < 0 || height.AtIndex(j) < height.AtIndex(best) ||
				(height.AtIndex(j) == height.AtIndex(best) && j < best) {
				best = j
			}
		}
		next[i] = best
		hasIn[best] = true
	}
	for i := range next {
		if next[i] >= 0 && !hasIn[i] {
			heads = append(heads, i)
		}
	}
	sort.Slice(heads, func(a, b int) bool {
		if dist[heads[a]] != dist[heads[b]] {
			return dist[heads[a]] > dist[heads[b]]
		}
		return heads[a] < heads[b]
	})

	owner := make([]int, n)
	for i := range owner {
		owner[i] = -1
	}
	var rivers []River
	for _, h := range heads {
		path := []int{h}
		for cur := h; dist[cur] > 0; {
			cur = next[cur]
			path = append(path, cur)
		}
		if len(path) < minCells {
			continue
		}

		r := River{ID: len(rivers), LakeID: -1, JoinsRiver: -1, ConfluenceIndex: -1}
		var sum float64
		for k, i := range path {
			x, y := d.XY(i)
			r.Cells = append(r.Cells, grid.Point{X: x, Y: y})
			if k > 0 {
				px, py := d.XY(path[k-1])
				if px != x && py != y {
					r.Length += math.Sqrt2
				} else {
					r.Length++
				}
			}
			if c.AtIndex(i) != RiverWater {
				continue
			}
			sum += discharge.AtIndex(i)
			if owner[i] >= 0 && r.JoinsRiver < 0 {
				r.JoinsRiver, r.ConfluenceIndex = owner[i], k
			}
			if owner[i] < 0 {
				owner[i] = r.ID
			}
		}
		r.MeanDischarge = sum / float64(len(path)-1)

		last := path[len(path)-1]
		if !ocean.AtIndex(last) {
			r.Outlet = OutletLake
			r.LakeID = lakeOf[last]
		}
		rivers = append(rivers, r)
	}
	return rivers
}
