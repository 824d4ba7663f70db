// Package pkg provides the core libraries for tilelabel ground-truth generation.
//
// # Overview
//
// Tilelabel turns a region-wide road graph, stored as GeoJSON line features in
// global pixel coordinates, into one label file per image tile. Each label
// holds the part of the graph inside its tile, translated to tile-local
// pixels, with node identifiers compacted to a dense local index range.
//
// # Architecture
//
// The typical data flow through tilelabel:
//
//	<region>.geojson
//	         ↓
//	    [source] package (decode features, merge endpoints)
//	         ↓
//	    [graph] package (global node map + edge list)
//	         ↓
//	    [tile] package (catalog tiles, partition, compact)
//	         ↓
//	    [label] package (record + deterministic JSON)
//	         ↓
//	<region>_<x>_<y>_graph.json
//
// # Quick Start
//
//	res, _ := source.LoadRegion("data/graphs/AOI_2_Vegas.geojson")
//	sub := tile.Partition(res.Graph, tile.Tile{X: 3, Y: 1}, 4096)
//	rec := label.Build("AOI_2_Vegas", "AOI_2_Vegas_3_1_sat.png", tile.Compact(sub))
//	_ = label.WriteFile(rec, "AOI_2_Vegas_3_1_graph.json")
//
// # Main Packages
//
// [source] - GeoJSON region loader built on paulmach/orb. Reads src, dst and
// edge_id properties from LineString features.
//
// [graph] - Global graph types, explicit endpoint merge with conflict
// reporting, and a JSON encoding used by the cache.
//
// [tile] - Half-open tile membership, partitioning, index compaction and the
// tile catalog (directory scan or static list).
//
// [label] - Label record assembly and serialization.
//
// [convert] - Conversion of .graph text files to GeoJSON region files.
//
// [pipeline] - The region driver used by the CLI: options, caching, per-region
// results.
//
// [cache] - File and null caches for decoded region graphs.
//
// [errors] - Structured error codes shared by all packages.
//
// [observability] - Hooks for region, tile and cache events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/tile/...      # Specific package
//
// [source]: https://pkg.go.dev/github.com/matzehuels/tilelabel/pkg/source
// [graph]: https://pkg.go.dev/github.com/matzehuels/tilelabel/pkg/graph
// [tile]: https://pkg.go.dev/github.com/matzehuels/tilelabel/pkg/tile
// [label]: https://pkg.go.dev/github.com/matzehuels/tilelabel/pkg/label
// [convert]: https://pkg.go.dev/github.com/matzehuels/tilelabel/pkg/convert
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tilelabel/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/tilelabel/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/tilelabel/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/tilelabel/pkg/observability
package pkg
