// Package source loads region graphs from GeoJSON geometry files.
//
// Each region is a FeatureCollection in global pixel coordinates. Only
// LineString features are consumed; every one of them contributes an edge
// between the node identifiers in its "src" and "dst" properties, and the
// line's first and last points become those nodes' coordinates. Interior
// vertices are discarded.
//
// Required properties are "src" and "dst"; "edge_id" is optional and defaults
// to -1. Identifiers may be JSON numbers or numeric strings.
package source

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/tilelabel/pkg/errors"
	"github.com/matzehuels/tilelabel/pkg/graph"
)

// Property keys read from line features.
const (
	PropSrc    = "src"
	PropDst    = "dst"
	PropEdgeID = "edge_id"
)

// Result is a decoded region graph plus what was observed while decoding it.
type Result struct {
	Graph     *graph.Graph
	Conflicts []graph.Conflict

	Features     int // features in the collection
	LineFeatures int // LineString features that produced an edge
	EmptyLines   int // LineString features skipped for having no coordinates
}

// LoadRegion reads and decodes the geometry file at path.
// A missing file is reported as MISSING_INPUT.
func LoadRegion(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeMissingInput, err, "geometry file %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data)
}

// ReadGeoJSON decodes a FeatureCollection from r. It does not close r.
func ReadGeoJSON(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(data)
}

// Decode parses FeatureCollection bytes into a region graph.
func Decode(data []byte) (*Result, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedGraph, err, "decode feature collection")
	}
	return FromFeatureCollection(fc)
}

// FromFeatureCollection builds a region graph from already decoded features.
//
// A LineString without a usable src or dst identifier fails the whole
// collection with MALFORMED_GRAPH. Features of any other geometry type are
// ignored, as are LineStrings with no coordinates.
func FromFeatureCollection(fc *geojson.FeatureCollection) (*Result, error) {
	res := &Result{Features: len(fc.Features)}

	var obs []graph.Endpoint
	var edges []graph.Edge

	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		ls, ok := f.Geometry.(orb.LineString)
		if !ok {
			continue
		}

		src, err := requiredID(f.Properties, PropSrc, i)
		if err != nil {
			return nil, err
		}
		dst, err := requiredID(f.Properties, PropDst, i)
		if err != nil {
			return nil, err
		}
		eid, err := optionalID(f.Properties, PropEdgeID, graph.UnspecifiedEdgeID, i)
		if err != nil {
			return nil, err
		}

		if len(ls) == 0 {
			res.EmptyLines++
			continue
		}

		obs = append(obs,
			graph.Endpoint{ID: graph.NodeID(src), Point: ls[0], Feature: i},
			graph.Endpoint{ID: graph.NodeID(dst), Point: ls[len(ls)-1], Feature: i},
		)
		edges = append(edges, graph.Edge{ID: eid, Src: graph.NodeID(src), Dst: graph.NodeID(dst)})
		res.LineFeatures++
	}

	nodes, conflicts := graph.MergeEndpoints(obs)
	res.Graph = &graph.Graph{Nodes: nodes, Edges: edges}
	res.Conflicts = conflicts
	return res, nil
}

func requiredID(props geojson.Properties, key string, feature int) (int64, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return 0, errors.New(errors.ErrCodeMalformedGraph, "feature %d: missing required property %q", feature, key)
	}
	id, ok := coerceInt(v)
	if !ok {
		return 0, errors.New(errors.ErrCodeMalformedGraph, "feature %d: property %q is not an integer: %v", feature, key, v)
	}
	return id, nil
}

func optionalID(props geojson.Properties, key string, def int64, feature int) (int64, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return def, nil
	}
	id, ok := coerceInt(v)
	if !ok {
		return 0, errors.New(errors.ErrCodeMalformedGraph, "feature %d: property %q is not an integer: %v", feature, key, v)
	}
	return id, nil
}

// coerceInt converts a decoded JSON property to an integer. Floats are
// truncated toward zero; strings must hold a base-10 integer.
func coerceInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case float32:
		return coerceInt(float64(n))
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return coerceInt(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
