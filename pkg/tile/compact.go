package tile

import (
	"github.com/paulmach/orb"

	"github.com/matzehuels/tilelabel/pkg/graph"
)

// LocalNode is a subgraph node with its dense local index.
type LocalNode struct {
	ID    graph.NodeID
	Index int
	Point orb.Point // tile-local coordinate
}

// LocalEdge is a subgraph edge with endpoints rewritten to local indices.
type LocalEdge struct {
	ID  int64
	Src int
	Dst int
}

// Compacted is a subgraph whose nodes carry indices 0..N-1.
type Compacted struct {
	Tile  Tile
	Size  int
	Nodes []LocalNode // ordered by Index, equivalently by ID
	Edges []LocalEdge
}

// Compact assigns local indices to the nodes of sub in ascending identifier
// order and rewrites edge endpoints to those indices. The result depends only
// on the node set, never on map iteration order.
func Compact(sub *Subgraph) *Compacted {
	ids := graph.SortedKeys(sub.Nodes)
	index := make(map[graph.NodeID]int, len(ids))

	c := &Compacted{
		Tile:  sub.Tile,
		Size:  sub.Size,
		Nodes: make([]LocalNode, len(ids)),
		Edges: make([]LocalEdge, 0, len(sub.Edges)),
	}
	for i, id := range ids {
		index[id] = i
		c.Nodes[i] = LocalNode{ID: id, Index: i, Point: sub.Nodes[id]}
	}
	for _, e := range sub.Edges {
		c.Edges = append(c.Edges, LocalEdge{
			ID:  e.ID,
			Src: index[e.Src],
			Dst: index[e.Dst],
		})
	}
	return c
}
