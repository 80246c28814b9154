// Package spatial provides the neighbor query used by the force solver.
package spatial

import (
	"math"

	"github.com/nvandessel/neurite/internal/neurite"
)

type cellKey [3]int64

type entry struct {
	node   neurite.Node
	center neurite.Vec3
}

// Grid is a sparse uniform hash grid over node centers. It is rebuilt once
// per step from committed nodes and is read-only afterwards, so concurrent
// queries are safe.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]entry
	all      []entry
}

// NewGrid creates an empty grid. Non-positive cell sizes fall back to 1.
func NewGrid(cellSize float64) *Grid {
	if !(cellSize > 0) {
		cellSize = 1
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]entry),
	}
}

// CellSize returns the edge length of one cell.
func (g *Grid) CellSize() float64 { return g.cellSize }

// Len returns the number of indexed nodes.
func (g *Grid) Len() int { return len(g.all) }

// Rebuild replaces the grid contents. Centers are captured at call time.
func (g *Grid) Rebuild(nodes []neurite.Node) {
	clear(g.cells)
	g.all = g.all[:0]
	for _, n := range nodes {
		e := entry{node: n, center: n.Center()}
		k := g.key(e.center)
		g.cells[k] = append(g.cells[k], e)
		g.all = append(g.all, e)
	}
}

// ForEachWithinRadius implements neurite.NeighborQuery.
func (g *Grid) ForEachWithinRadius(visit func(neurite.Node), self neurite.Node, squaredRadius float64) {
	if len(g.all) == 0 || squaredRadius < 0 {
		return
	}
	c := self.Center()
	id := self.NodeID()

	check := func(e entry) {
		if e.node.NodeID() == id {
			return
		}
		if e.center.Sub(c).LenSqr() <= squaredRadius {
			visit(e.node)
		}
	}

	r := math.Sqrt(squaredRadius)
	lo := g.key(c.Sub(neurite.Vec3{r, r, r}))
	hi := g.key(c.Add(neurite.Vec3{r, r, r}))

	span := float64(hi[0]-lo[0]+1) * float64(hi[1]-lo[1]+1) * float64(hi[2]-lo[2]+1)
	if span > float64(len(g.cells)) {
		for _, e := range g.all {
			check(e)
		}
		return
	}

	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				for _, e := range g.cells[cellKey{x, y, z}] {
					check(e)
				}
			}
		}
	}
}

func (g *Grid) key(p neurite.Vec3) cellKey {
	return cellKey{
		int64(math.Floor(p[0] / g.cellSize)),
		int64(math.Floor(p[1] / g.cellSize)),
		int64(math.Floor(p[2] / g.cellSize)),
	}
}
