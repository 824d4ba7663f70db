package tile

import (
	"math"
	"slices"

	"github.com/paulmach/orb"

	"github.com/matzehuels/tilelabel/pkg/graph"
)

// Subgraph is the part of a region graph that falls inside one tile.
// Node coordinates are tile-local.
type Subgraph struct {
	Tile  Tile
	Size  int
	Nodes map[graph.NodeID]orb.Point
	Edges []graph.Edge
}

// Empty reports whether the subgraph has neither nodes nor edges.
func (s *Subgraph) Empty() bool {
	return len(s.Nodes) == 0 && len(s.Edges) == 0
}

// Partition extracts the subgraph of g inside tile t.
//
// Nodes are kept when their global coordinate is inside t and translated by
// the tile origin. Edges are kept, in the order of g.Edges, only when both
// endpoints were kept. g is not modified.
func Partition(g *graph.Graph, t Tile, size int) *Subgraph {
	sub := &Subgraph{
		Tile:  t,
		Size:  size,
		Nodes: make(map[graph.NodeID]orb.Point),
	}

	origin := t.Origin(size)
	for id, p := range g.Nodes {
		if t.Contains(p, size) {
			sub.Nodes[id] = orb.Point{p.X() - origin.X(), p.Y() - origin.Y()}
		}
	}

	if len(sub.Nodes) == 0 {
		return sub
	}
	for _, e := range g.Edges {
		_, srcIn := sub.Nodes[e.Src]
		_, dstIn := sub.Nodes[e.Dst]
		if srcIn && dstIn {
			sub.Edges = append(sub.Edges, e)
		}
	}
	return sub
}

// Assign returns, for every node of g, the tile that contains it.
// Each node lands in exactly one tile.
func Assign(g *graph.Graph, size int) map[graph.NodeID]Tile {
	out := make(map[graph.NodeID]Tile, len(g.Nodes))
	for id, p := range g.Nodes {
		out[id] = At(p, size)
	}
	return out
}

// At returns the tile containing p.
func At(p orb.Point, size int) Tile {
	return Tile{X: floorDiv(p.X(), size), Y: floorDiv(p.Y(), size)}
}

func floorDiv(v float64, size int) int {
	return int(math.Floor(v / float64(size)))
}

// Tiles returns the distinct tiles that contain at least one node of g,
// sorted by X then Y.
func Tiles(g *graph.Graph, size int) []Tile {
	set := make(map[Tile]struct{})
	for _, t := range Assign(g, size) {
		set[t] = struct{}{}
	}
	out := make([]Tile, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	slices.SortFunc(out, Compare)
	return out
}
