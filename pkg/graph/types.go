package graph

import (
	"slices"

	"github.com/paulmach/orb"
)

// NodeID identifies a node within one region's graph.
type NodeID int64

// UnspecifiedEdgeID is the edge identifier used when a feature carries none.
const UnspecifiedEdgeID int64 = -1

// Edge is a directed reference between two node identifiers.
// ID is supplied by the input and is not required to be unique.
type Edge struct {
	ID  int64  `json:"eid"`
	Src NodeID `json:"src"`
	Dst NodeID `json:"dst"`
}

// Graph is the global graph of one region.
type Graph struct {
	Nodes map[NodeID]orb.Point
	Edges []Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{Nodes: make(map[NodeID]orb.Point)}
}

// NodeCount returns the number of distinct node identifiers.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Coord returns the global coordinate of a node.
func (g *Graph) Coord(id NodeID) (orb.Point, bool) {
	p, ok := g.Nodes[id]
	return p, ok
}

// SortedIDs returns the node identifiers in ascending order.
func (g *Graph) SortedIDs() []NodeID {
	return SortedKeys(g.Nodes)
}

// Bound returns the bounding box of all node coordinates.
// An empty graph yields the zero bound.
func (g *Graph) Bound() orb.Bound {
	var mp orb.MultiPoint
	for _, id := range g.SortedIDs() {
		mp = append(mp, g.Nodes[id])
	}
	if len(mp) == 0 {
		return orb.Bound{}
	}
	return mp.Bound()
}

// SortedKeys returns the keys of a node-keyed map in ascending order.
func SortedKeys[V any](m map[NodeID]V) []NodeID {
	ids := make([]NodeID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
