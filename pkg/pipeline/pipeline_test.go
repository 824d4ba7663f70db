package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tilelabel/pkg/cache"
	"github.com/matzehuels/tilelabel/pkg/errors"
	"github.com/matzehuels/tilelabel/pkg/label"
	"github.com/matzehuels/tilelabel/pkg/observability"
	"github.com/matzehuels/tilelabel/pkg/tile"
)

const r1GeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "geometry": {"type": "LineString", "coordinates": [[10, 10], [2000, 10], [4100, 10]]},
     "properties": {"src": 1, "dst": 2, "edge_id": 7}},
    {"type": "Feature",
     "geometry": {"type": "LineString", "coordinates": [[4100, 10], [4105, 15]]},
     "properties": {"src": 2, "dst": 3, "edge_id": 8}}
  ]
}`

type fixture struct {
	graphs  string
	imagery string
	out     string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		graphs:  filepath.Join(root, "graphs"),
		imagery: filepath.Join(root, "imagery"),
		out:     filepath.Join(root, "labels"),
	}
	require.NoError(t, os.MkdirAll(f.graphs, 0755))
	require.NoError(t, os.MkdirAll(f.imagery, 0755))
	return f
}

func (f fixture) region(t *testing.T, name, geojson string, tiles ...tile.Tile) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.graphs, name+".geojson"), []byte(geojson), 0644))
	for _, tl := range tiles {
		require.NoError(t, os.WriteFile(filepath.Join(f.imagery, tile.ImageName(name, tl, "png")), nil, 0644))
	}
}

func (f fixture) options() Options {
	return Options{
		GraphsDir:  f.graphs,
		ImageryDir: f.imagery,
		OutDir:     f.out,
		TileSize:   4096,
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr errors.Code
	}{
		{"defaults", func(*Options) {}, ""},
		{"zero tile size", func(o *Options) { o.TileSize = 0 }, errors.ErrCodeInvalidTileSize},
		{"negative tile size", func(o *Options) { o.TileSize = -1 }, errors.ErrCodeInvalidTileSize},
		{"blank out dir", func(o *Options) { o.OutDir = "  " }, errors.ErrCodeInvalidInput},
		{"bad region is checked per region", func(o *Options) { o.Regions = []string{"../etc"} }, ""},
		{"good regions", func(o *Options) { o.Regions = []string{"AOI_2_Vegas", "r1"} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{TileSize: DefaultTileSize}
			tt.mutate(&opts)
			err := opts.ValidateAndSetDefaults()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want code %s", err, tt.wantErr)
		})
	}
}

func TestSetDefaults(t *testing.T) {
	var opts Options
	opts.SetDefaults()
	assert.Equal(t, DefaultGraphsDir, opts.GraphsDir)
	assert.Equal(t, DefaultImageryDir, opts.ImageryDir)
	assert.Equal(t, DefaultOutDir, opts.OutDir)
	assert.Zero(t, opts.TileSize)
	assert.Nil(t, opts.Logger)
}

func TestDiscoverRegions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.geojson", "a.geojson", "notes.txt", "c.graph"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.geojson"), 0755))

	regions, err := DiscoverRegions(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, regions)

	regions, err = DiscoverRegions(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestProcessRegionEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.region(t, "r1", r1GeoJSON, tile.Tile{X: 1, Y: 0}, tile.Tile{X: 0, Y: 0}, tile.Tile{X: 5, Y: 5})

	r := NewRunner(nil, nil, nil)
	rr, err := r.ProcessRegion(context.Background(), f.options(), "r1")
	require.NoError(t, err)

	assert.Equal(t, 3, rr.Tiles)
	assert.Equal(t, 2, rr.Written)
	assert.Equal(t, 1, rr.Empty)
	assert.Equal(t, 3, rr.Nodes)
	assert.Equal(t, 2, rr.Edges)
	assert.Equal(t, "ok", rr.Status())

	t00, err := label.ReadFile(filepath.Join(f.out, "r1_0_0_graph.json"))
	require.NoError(t, err)
	assert.Equal(t, "r1", t00.Region)
	assert.Equal(t, filepath.Join(f.imagery, "r1_0_0_sat.png"), t00.ImagePath)
	assert.Equal(t, [2]int{0, 0}, t00.TileXY)
	assert.Equal(t, 4096, t00.TileSize)
	assert.Equal(t, label.CoordConvention, t00.CoordConvention)
	assert.Equal(t, []label.Node{{NID: 1, Idx: 0, X: 10, Y: 10}}, t00.Nodes)
	assert.Empty(t, t00.Edges)
	assert.Equal(t, 1, t00.NumNodes)
	assert.Equal(t, 0, t00.NumEdges)

	t10, err := label.ReadFile(filepath.Join(f.out, "r1_1_0_graph.json"))
	require.NoError(t, err)
	assert.Equal(t, []label.Node{
		{NID: 2, Idx: 0, X: 4, Y: 10},
		{NID: 3, Idx: 1, X: 9, Y: 15},
	}, t10.Nodes)
	assert.Equal(t, []label.Edge{{EID: 8, SrcIdx: 0, DstIdx: 1}}, t10.Edges)

	_, err = os.Stat(filepath.Join(f.out, "r1_5_5_graph.json"))
	assert.True(t, os.IsNotExist(err), "empty tile must not be written")
}

func TestExecuteIdempotent(t *testing.T) {
	f := newFixture(t)
	f.region(t, "r1", r1GeoJSON, tile.Tile{X: 0, Y: 0}, tile.Tile{X: 1, Y: 0})

	r := NewRunner(nil, nil, nil)
	first, err := r.Execute(context.Background(), f.options())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Total)

	before := map[string][]byte{}
	for _, name := range []string{"r1_0_0_graph.json", "r1_1_0_graph.json"} {
		data, err := os.ReadFile(filepath.Join(f.out, name))
		require.NoError(t, err)
		before[name] = data
	}

	second, err := r.Execute(context.Background(), f.options())
	require.NoError(t, err)
	assert.Equal(t, first.Total, second.Total)
	assert.NotEqual(t, first.RunID, second.RunID)

	for name, want := range before {
		got, err := os.ReadFile(filepath.Join(f.out, name))
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got), name)
	}
}

func TestExecuteSkipsFailingRegions(t *testing.T) {
	f := newFixture(t)
	f.region(t, "good", r1GeoJSON, tile.Tile{X: 1, Y: 0})
	f.region(t, "empty", `{"type":"FeatureCollection","features":[]}`, tile.Tile{X: 0, Y: 0})
	f.region(t, "malformed", `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":{"dst":2}}]}`,
		tile.Tile{X: 0, Y: 0})
	f.region(t, "noimagery", r1GeoJSON)

	opts := f.options()
	opts.Regions = []string{"good", "missing", "empty", "malformed", "noimagery"}

	result, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, result.Regions, 5)

	status := map[string]string{}
	for _, rr := range result.Regions {
		status[rr.Region] = rr.Status()
	}
	assert.Equal(t, map[string]string{
		"good":      "ok",
		"missing":   string(errors.ErrCodeMissingInput),
		"empty":     string(errors.ErrCodeEmptyGraph),
		"malformed": string(errors.ErrCodeMalformedGraph),
		"noimagery": string(errors.ErrCodeMissingInput),
	}, status)
	assert.Equal(t, 1, result.Total)
	assert.Len(t, result.Failed(), 4)
}

func TestExecuteSkipsInvalidRegionName(t *testing.T) {
	f := newFixture(t)
	f.region(t, "r1", r1GeoJSON, tile.Tile{X: 0, Y: 0}, tile.Tile{X: 1, Y: 0})

	opts := f.options()
	opts.Regions = []string{"r1", "a/b"}

	result, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, result.Regions, 2)

	assert.Equal(t, "ok", result.Regions[0].Status())
	assert.Equal(t, "a/b", result.Regions[1].Region)
	assert.Equal(t, string(errors.ErrCodeInvalidRegion), result.Regions[1].Status())
	assert.Equal(t, 2, result.Total)

	for _, name := range []string{"r1_0_0_graph.json", "r1_1_0_graph.json"} {
		_, err := os.Stat(filepath.Join(f.out, name))
		assert.NoError(t, err, name)
	}
}

func TestExecuteRegionNameWithDoubleDot(t *testing.T) {
	f := newFixture(t)
	f.region(t, "aoi..v2", r1GeoJSON, tile.Tile{X: 1, Y: 0})

	result, err := NewRunner(nil, nil, nil).Execute(context.Background(), f.options())
	require.NoError(t, err)
	require.Len(t, result.Regions, 1)
	assert.Equal(t, "ok", result.Regions[0].Status())

	_, err = os.Stat(filepath.Join(f.out, "aoi..v2_1_0_graph.json"))
	assert.NoError(t, err)
}

// logLines decodes JSON log output into one map per line.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(raw) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m), string(raw))
		lines = append(lines, m)
	}
	return lines
}

func jsonLogger(buf *bytes.Buffer) *log.Logger {
	return log.NewWithOptions(buf, log.Options{Level: log.InfoLevel, Formatter: log.JSONFormatter})
}

func TestExecuteLogsWrittenTiles(t *testing.T) {
	f := newFixture(t)
	f.region(t, "r1", r1GeoJSON, tile.Tile{X: 0, Y: 0}, tile.Tile{X: 1, Y: 0}, tile.Tile{X: 5, Y: 5})

	var buf bytes.Buffer
	opts := f.options()
	opts.Logger = jsonLogger(&buf)

	result, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 2, result.Total)

	var paths []string
	for _, line := range logLines(t, &buf) {
		if line["msg"] != "wrote label" {
			continue
		}
		assert.Equal(t, "info", line["level"])
		assert.Equal(t, "r1", line["region"])
		assert.Contains(t, line, "nodes")
		assert.Contains(t, line, "edges")
		paths = append(paths, line["path"].(string))
	}
	assert.Equal(t, []string{
		filepath.Join(f.out, "r1_0_0_graph.json"),
		filepath.Join(f.out, "r1_1_0_graph.json"),
	}, paths)
}

func TestExecuteSkipLogLevels(t *testing.T) {
	f := newFixture(t)
	f.region(t, "r1", r1GeoJSON, tile.Tile{X: 1, Y: 0})

	outFile := filepath.Join(t.TempDir(), "labels")
	require.NoError(t, os.WriteFile(outFile, nil, 0644))

	var buf bytes.Buffer
	opts := f.options()
	opts.OutDir = outFile
	opts.Regions = []string{"missing", "r1"}
	opts.Logger = jsonLogger(&buf)

	result, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, result.Regions, 2)
	assert.Equal(t, string(errors.ErrCodeInternal), result.Regions[1].Status())

	levels := map[string]string{}
	for _, line := range logLines(t, &buf) {
		if line["msg"] == "skipping region" {
			levels[line["region"].(string)] = line["level"].(string)
		}
	}
	assert.Equal(t, map[string]string{
		"missing": "warn",
		"r1":      "error",
	}, levels)
}

func TestExecuteNoRegions(t *testing.T) {
	f := newFixture(t)
	result, err := NewRunner(nil, nil, nil).Execute(context.Background(), f.options())
	require.NoError(t, err)
	assert.Empty(t, result.Regions)
	assert.Zero(t, result.Total)
	assert.NotEmpty(t, result.RunID)
}

func TestExecuteInvalidOptions(t *testing.T) {
	opts := Options{TileSize: 0}
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidTileSize))
}

func TestExecuteCanceled(t *testing.T) {
	f := newFixture(t)
	f.region(t, "r1", r1GeoJSON, tile.Tile{X: 0, Y: 0})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewRunner(nil, nil, nil).Execute(ctx, f.options())
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Zero(t, result.Total)
}

func TestInjectedCatalog(t *testing.T) {
	f := newFixture(t)
	f.region(t, "r1", r1GeoJSON)

	r := NewRunner(nil, nil, nil)
	r.Catalog = tile.StaticCatalog{
		"r1": {{Tile: tile.Tile{X: 1, Y: 0}, Image: "s3://bucket/r1_1_0.tif"}},
	}

	rr, err := r.ProcessRegion(context.Background(), f.options(), "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, rr.Written)

	rec, err := label.ReadFile(filepath.Join(f.out, "r1_1_0_graph.json"))
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/r1_1_0.tif", rec.ImagePath)
}

func TestImageExtFilter(t *testing.T) {
	f := newFixture(t)
	f.region(t, "r1", r1GeoJSON, tile.Tile{X: 0, Y: 0})

	opts := f.options()
	opts.ImageExts = []string{"tif"}

	_, err := NewRunner(nil, nil, nil).ProcessRegion(context.Background(), opts, "r1")
	assert.True(t, errors.Is(err, errors.ErrCodeMissingInput))
}

func TestLoadGraphCache(t *testing.T) {
	f := newFixture(t)
	f.region(t, "r1", r1GeoJSON)
	path := filepath.Join(f.graphs, "r1.geojson")

	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	stats := observability.NewCacheStats()
	observability.SetCacheHooks(stats)
	defer observability.Reset()

	r := NewRunner(fc, nil, nil)
	ctx := context.Background()

	res, hit, err := r.LoadGraph(ctx, path, false)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, res.Graph.NodeCount())

	res, hit, err = r.LoadGraph(ctx, path, false)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, res.Graph.NodeCount())
	assert.Equal(t, 2, res.Graph.EdgeCount())

	_, hit, err = r.LoadGraph(ctx, path, true)
	require.NoError(t, err)
	assert.False(t, hit, "refresh must bypass cache reads")

	hits, misses, sets := stats.Snapshot()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 2, sets)
}

func TestLoadGraphMissing(t *testing.T) {
	_, _, err := NewRunner(nil, nil, nil).LoadGraph(context.Background(), filepath.Join(t.TempDir(), "nope.geojson"), false)
	assert.True(t, errors.Is(err, errors.ErrCodeMissingInput))
	assert.True(t, errors.IsRegionSkip(err))
}
