package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
)

// wireGraph is the JSON form of a Graph. Nodes are a sorted slice because
// JSON object keys cannot carry integer identifiers.
type wireGraph struct {
	Nodes []wireNode `json:"nodes"`
	Edges []Edge     `json:"edges"`
}

type wireNode struct {
	ID NodeID  `json:"nid"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Marshal converts a graph to JSON bytes.
// Nodes are sorted by identifier for deterministic output.
func Marshal(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes a graph as JSON to w.
func Write(g *Graph, w io.Writer) error {
	out := wireGraph{
		Nodes: make([]wireNode, 0, len(g.Nodes)),
		Edges: g.Edges,
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	for _, id := range g.SortedIDs() {
		p := g.Nodes[id]
		out.Nodes = append(out.Nodes, wireNode{ID: id, X: p.X(), Y: p.Y()})
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Unmarshal decodes a graph produced by Marshal.
func Unmarshal(data []byte) (*Graph, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes a graph produced by Write from r.
func Read(r io.Reader) (*Graph, error) {
	var data wireGraph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	g := New()
	for _, n := range data.Nodes {
		if _, dup := g.Nodes[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node %d", n.ID)
		}
		g.Nodes[n.ID] = orb.Point{n.X, n.Y}
	}
	for i, e := range data.Edges {
		if _, ok := g.Nodes[e.Src]; !ok {
			return nil, fmt.Errorf("edge %d: unknown src %d", i, e.Src)
		}
		if _, ok := g.Nodes[e.Dst]; !ok {
			return nil, fmt.Errorf("edge %d: unknown dst %d", i, e.Dst)
		}
	}
	g.Edges = data.Edges
	return g, nil
}
