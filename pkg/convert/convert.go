// Package convert turns plain-text .graph files into GeoJSON region files.
//
// A .graph file has a node section of "x y" lines, a blank line, and an edge
// section of "src dst" lines. A node's identifier is its line index within
// the node section and an edge's identifier is its line index within the
// edge section. Each edge becomes a two-point LineString feature with
// edge_id, src and dst properties, which is exactly what pkg/source reads.
package convert

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/tilelabel/pkg/errors"
	"github.com/matzehuels/tilelabel/pkg/graph"
	"github.com/matzehuels/tilelabel/pkg/source"
)

// File extensions of input and output files.
const (
	Ext    = ".graph"
	OutExt = ".geojson"
)

// ReadGraph parses the .graph text format. Only the first two fields of a
// line are read; trailing fields are ignored.
func ReadGraph(r io.Reader) (*graph.Graph, error) {
	g := graph.New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	inEdges := false
	var nextNode graph.NodeID
	var nextEdge int64
	line := 0

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			if nextNode > 0 {
				inEdges = true
			}
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, errors.New(errors.ErrCodeMalformedGraph, "line %d: expected at least 2 fields, got %d", line, len(fields))
		}

		if !inEdges {
			x, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeMalformedGraph, err, "line %d: node x", line)
			}
			y, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeMalformedGraph, err, "line %d: node y", line)
			}
			g.Nodes[nextNode] = orb.Point{x, y}
			nextNode++
			continue
		}

		src, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedGraph, err, "line %d: edge src", line)
		}
		dst, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedGraph, err, "line %d: edge dst", line)
		}
		for _, id := range []int64{src, dst} {
			if _, ok := g.Nodes[graph.NodeID(id)]; !ok {
				return nil, errors.New(errors.ErrCodeMalformedGraph, "line %d: edge references unknown node %d", line, id)
			}
		}
		g.Edges = append(g.Edges, graph.Edge{ID: nextEdge, Src: graph.NodeID(src), Dst: graph.NodeID(dst)})
		nextEdge++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return g, nil
}

// ToFeatureCollection renders every edge as a two-point LineString in edge
// order. Nodes without edges are not represented.
func ToFeatureCollection(g *graph.Graph) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, e := range g.Edges {
		f := geojson.NewFeature(orb.LineString{g.Nodes[e.Src], g.Nodes[e.Dst]})
		f.Properties[source.PropEdgeID] = e.ID
		f.Properties[source.PropSrc] = int64(e.Src)
		f.Properties[source.PropDst] = int64(e.Dst)
		fc.Append(f)
	}
	return fc
}

// File converts one .graph file to a GeoJSON file and returns the number of
// edges written.
func File(inPath, outPath string) (int, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", inPath, err)
	}
	defer in.Close()

	g, err := ReadGraph(in)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", inPath, err)
	}

	data, err := json.MarshalIndent(ToFeatureCollection(g), "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal geojson for %s: %w", inPath, err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return 0, fmt.Errorf("write %s: %w", outPath, err)
	}
	return len(g.Edges), nil
}

// Failure is a file that could not be converted.
type Failure struct {
	Name string
	Err  error
}

// Summary reports the outcome of a directory conversion.
type Summary struct {
	Converted []string
	Failed    []Failure
}

// Dir converts every *.graph file in dir to <name>.geojson next to it.
// Files are processed in name order; a failing file is logged and skipped.
func Dir(ctx context.Context, dir string, logger *log.Logger) (*Summary, error) {
	if logger == nil {
		logger = log.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), Ext) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	sum := &Summary{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		inPath := filepath.Join(dir, name)
		outName := strings.TrimSuffix(name, Ext) + OutExt
		edges, err := File(inPath, filepath.Join(dir, outName))
		if err != nil {
			logger.Error("convert failed", "file", name, "err", err)
			sum.Failed = append(sum.Failed, Failure{Name: name, Err: err})
			continue
		}
		logger.Info("converted", "file", name, "out", outName, "edges", edges)
		sum.Converted = append(sum.Converted, outName)
	}
	return sum, nil
}
