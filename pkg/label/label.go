// Package label builds and writes per-tile ground-truth graph labels.
//
// # JSON Format
//
// Each label file holds one record:
//
//	{
//	  "region": "r1",
//	  "image_path": "data/imagery/r1_1_0_sat.png",
//	  "tile_xy": [1, 0],
//	  "tile_size": 4096,
//	  "coord_convention": "pixel_y_down",
//	  "num_nodes": 2,
//	  "num_edges": 1,
//	  "nodes": [
//	    {"nid": 2, "idx": 0, "x": 4, "y": 10},
//	    {"nid": 3, "idx": 1, "x": 9, "y": 15}
//	  ],
//	  "edges": [
//	    {"eid": 8, "src_idx": 0, "dst_idx": 1}
//	  ]
//	}
//
// Coordinates are tile-local pixels with y growing downward. Node indices are
// dense (0..num_nodes-1) and follow ascending original node identifiers; edge
// endpoints refer to those indices.
//
// Encoding is deterministic: the same record always produces the same bytes,
// so rerunning over unchanged input rewrites identical files.
package label

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/tilelabel/pkg/tile"
)

// CoordConvention tags coordinates as pixel space with y increasing downward.
const CoordConvention = "pixel_y_down"

// Record is the content of one label file.
type Record struct {
	Region          string `json:"region"`
	ImagePath       string `json:"image_path"`
	TileXY          [2]int `json:"tile_xy"`
	TileSize        int    `json:"tile_size"`
	CoordConvention string `json:"coord_convention"`
	NumNodes        int    `json:"num_nodes"`
	NumEdges        int    `json:"num_edges"`
	Nodes           []Node `json:"nodes"`
	Edges           []Edge `json:"edges"`
}

// Node is a label node: original identifier, local index, local coordinate.
type Node struct {
	NID int64   `json:"nid"`
	Idx int     `json:"idx"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

// Edge is a label edge between local node indices.
type Edge struct {
	EID    int64 `json:"eid"`
	SrcIdx int   `json:"src_idx"`
	DstIdx int   `json:"dst_idx"`
}

// Build assembles the record for a compacted tile subgraph.
func Build(region, imagePath string, c *tile.Compacted) *Record {
	r := &Record{
		Region:          region,
		ImagePath:       imagePath,
		TileXY:          [2]int{c.Tile.X, c.Tile.Y},
		TileSize:        c.Size,
		CoordConvention: CoordConvention,
		NumNodes:        len(c.Nodes),
		NumEdges:        len(c.Edges),
		Nodes:           make([]Node, len(c.Nodes)),
		Edges:           make([]Edge, len(c.Edges)),
	}
	for i, n := range c.Nodes {
		r.Nodes[i] = Node{NID: int64(n.ID), Idx: n.Index, X: n.Point.X(), Y: n.Point.Y()}
	}
	for i, e := range c.Edges {
		r.Edges[i] = Edge{EID: e.ID, SrcIdx: e.Src, DstIdx: e.Dst}
	}
	return r
}

// Empty reports whether the record has neither nodes nor edges.
// Empty records are not written.
func (r *Record) Empty() bool {
	return len(r.Nodes) == 0 && len(r.Edges) == 0
}

// Validate checks the structural invariants of a record: counts match,
// indices are exactly 0..N-1 in ascending identifier order, and every edge
// endpoint is a valid index.
func (r *Record) Validate() error {
	if r.NumNodes != len(r.Nodes) {
		return fmt.Errorf("num_nodes %d does not match %d nodes", r.NumNodes, len(r.Nodes))
	}
	if r.NumEdges != len(r.Edges) {
		return fmt.Errorf("num_edges %d does not match %d edges", r.NumEdges, len(r.Edges))
	}
	for i, n := range r.Nodes {
		if n.Idx != i {
			return fmt.Errorf("node %d has index %d, want %d", n.NID, n.Idx, i)
		}
		if i > 0 && r.Nodes[i-1].NID >= n.NID {
			return fmt.Errorf("node %d out of identifier order", n.NID)
		}
	}
	for i, e := range r.Edges {
		if e.SrcIdx < 0 || e.SrcIdx >= len(r.Nodes) {
			return fmt.Errorf("edge %d: src_idx %d out of range", i, e.SrcIdx)
		}
		if e.DstIdx < 0 || e.DstIdx >= len(r.Nodes) {
			return fmt.Errorf("edge %d: dst_idx %d out of range", i, e.DstIdx)
		}
	}
	return nil
}

// FileName returns the label file name for a region tile.
func FileName(region string, t tile.Tile) string {
	return fmt.Sprintf("%s_%d_%d_graph.json", region, t.X, t.Y)
}

// Path returns the label file path under dir.
func Path(dir, region string, t tile.Tile) string {
	return filepath.Join(dir, FileName(region, t))
}

// Write encodes r as indented JSON to w.
func Write(r *Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the encoded bytes of r.
func Marshal(r *Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(r, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes r to path, replacing any existing file.
func WriteFile(r *Record, path string) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Read decodes a record from r.
func Read(r io.Reader) (*Record, error) {
	var rec Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &rec, nil
}

// ReadFile decodes the record stored at path.
func ReadFile(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
