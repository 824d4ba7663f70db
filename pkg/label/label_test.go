package label

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tilelabel/pkg/graph"
	"github.com/matzehuels/tilelabel/pkg/tile"
)

func exampleCompacted() *tile.Compacted {
	g := &graph.Graph{
		Nodes: map[graph.NodeID]orb.Point{1: {10, 10}, 2: {4100, 10}, 3: {4105, 15}},
		Edges: []graph.Edge{{ID: 7, Src: 1, Dst: 2}, {ID: 8, Src: 2, Dst: 3}},
	}
	return tile.Compact(tile.Partition(g, tile.Tile{X: 1, Y: 0}, 4096))
}

const wantExample = `{
  "region": "r1",
  "image_path": "img/r1_1_0_sat.png",
  "tile_xy": [
    1,
    0
  ],
  "tile_size": 4096,
  "coord_convention": "pixel_y_down",
  "num_nodes": 2,
  "num_edges": 1,
  "nodes": [
    {
      "nid": 2,
      "idx": 0,
      "x": 4,
      "y": 10
    },
    {
      "nid": 3,
      "idx": 1,
      "x": 9,
      "y": 15
    }
  ],
  "edges": [
    {
      "eid": 8,
      "src_idx": 0,
      "dst_idx": 1
    }
  ]
}
`

func TestBuild(t *testing.T) {
	r := Build("r1", "img/r1_1_0_sat.png", exampleCompacted())

	assert.Equal(t, "r1", r.Region)
	assert.Equal(t, [2]int{1, 0}, r.TileXY)
	assert.Equal(t, 4096, r.TileSize)
	assert.Equal(t, CoordConvention, r.CoordConvention)
	assert.Equal(t, 2, r.NumNodes)
	assert.Equal(t, 1, r.NumEdges)
	assert.Equal(t, []Node{{NID: 2, Idx: 0, X: 4, Y: 10}, {NID: 3, Idx: 1, X: 9, Y: 15}}, r.Nodes)
	assert.Equal(t, []Edge{{EID: 8, SrcIdx: 0, DstIdx: 1}}, r.Edges)
	assert.False(t, r.Empty())
	assert.NoError(t, r.Validate())
}

func TestMarshalGolden(t *testing.T) {
	data, err := Marshal(Build("r1", "img/r1_1_0_sat.png", exampleCompacted()))
	require.NoError(t, err)
	assert.Equal(t, wantExample, string(data))
}

func TestMarshalEmptyListsAreArrays(t *testing.T) {
	c := &tile.Compacted{Tile: tile.Tile{X: 0, Y: 0}, Size: 4096}
	r := Build("r1", "a.png", c)
	assert.True(t, r.Empty())

	data, err := Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"nodes": []`)
	assert.Contains(t, string(data), `"edges": []`)
}

func TestMarshalDoesNotEscapePaths(t *testing.T) {
	data, err := Marshal(Build("r&d", "imagery/r&d_0_0_sat.png", exampleCompacted()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"imagery/r&d_0_0_sat.png"`)
}

func TestWriteFileIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir, "r1", tile.Tile{X: 1, Y: 0})
	assert.Equal(t, filepath.Join(dir, "r1_1_0_graph.json"), path)

	r := Build("r1", "img/r1_1_0_sat.png", exampleCompacted())
	require.NoError(t, WriteFile(r, path))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, WriteFile(Build("r1", "img/r1_1_0_sat.png", exampleCompacted()), path))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second))

	back, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, r, back)
}

func TestWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x_graph.json")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is much longer than nothing"), 0644))

	require.NoError(t, WriteFile(Build("r1", "img/r1_1_0_sat.png", exampleCompacted()), path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, wantExample, string(data))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "r1_0_0_graph.json", FileName("r1", tile.Tile{}))
	assert.Equal(t, "city_-2_7_graph.json", FileName("city", tile.Tile{X: -2, Y: 7}))
}

func TestValidate(t *testing.T) {
	valid := func() *Record { return Build("r1", "a.png", exampleCompacted()) }

	tests := []struct {
		name    string
		mutate  func(r *Record)
		errPart string
	}{
		{"count mismatch", func(r *Record) { r.NumNodes = 5 }, "num_nodes"},
		{"edge count mismatch", func(r *Record) { r.NumEdges = 0 }, "num_edges"},
		{"gap in indices", func(r *Record) { r.Nodes[1].Idx = 2 }, "index 2"},
		{"identifier order", func(r *Record) { r.Nodes[1].NID = 1 }, "out of identifier order"},
		{"dangling edge", func(r *Record) { r.Edges[0].DstIdx = 2 }, "dst_idx 2 out of range"},
		{"negative src", func(r *Record) { r.Edges[0].SrcIdx = -1 }, "src_idx -1 out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)
			err := r.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}
