// Package pipeline provides the label generation pipeline for tilelabel.
//
// This package implements the complete load → partition → compact → write
// pipeline that turns region geometry files into per-tile ground-truth label
// files. The CLI and tests drive it through a Runner.
//
// # Architecture
//
// For every region the pipeline:
//
//  1. Loads <graphs_dir>/<region>.geojson into a global graph (cached by
//     file content)
//  2. Lists the region's image tiles from a tile.Catalog
//  3. For each tile in (X, Y) order, extracts the subgraph inside the tile,
//     compacts its node indices and writes <region>_<x>_<y>_graph.json
//
// Regions that cannot be processed are logged and skipped; the run goes on.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    GraphsDir:  "data/graphs",
//	    ImageryDir: "data/imagery",
//	    OutDir:     "data/labels",
//	    TileSize:   4096,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("labels written:", result.Total)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tilelabel/pkg/errors"
	"github.com/matzehuels/tilelabel/pkg/tile"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and config
// =============================================================================

const (
	// DefaultGraphsDir holds one <region>.geojson per region.
	DefaultGraphsDir = "data/graphs"

	// DefaultImageryDir holds the pre-cut image tiles.
	DefaultImageryDir = "data/imagery"

	// DefaultOutDir receives the label files.
	DefaultOutDir = "data/labels"

	// DefaultTileSize is the tile side length in pixels.
	DefaultTileSize = tile.DefaultSize

	// GeometryExt is the extension of region geometry files.
	GeometryExt = ".geojson"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a label generation run.
type Options struct {
	GraphsDir  string `json:"graphs_dir"`
	ImageryDir string `json:"imagery_dir"`
	OutDir     string `json:"out_dir"`
	TileSize   int    `json:"tile_size"`

	// Regions to process. Empty means every *.geojson in GraphsDir.
	Regions []string `json:"regions,omitempty"`

	// ImageExts restricts which image extensions count as tiles.
	// Empty accepts any extension.
	ImageExts []string `json:"image_exts,omitempty"`

	// Refresh skips cache reads; decoded graphs are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`
}

// SetDefaults fills empty directories.
// TileSize is left alone so that an explicit zero is still rejected by Validate.
func (o *Options) SetDefaults() {
	if o.GraphsDir == "" {
		o.GraphsDir = DefaultGraphsDir
	}
	if o.ImageryDir == "" {
		o.ImageryDir = DefaultImageryDir
	}
	if o.OutDir == "" {
		o.OutDir = DefaultOutDir
	}
}

// Validate checks the options. Failures carry INVALID_* error codes.
// Region names are not checked here; ProcessRegion rejects them per region.
func (o *Options) Validate() error {
	if err := errors.ValidateDir("graphs dir", o.GraphsDir); err != nil {
		return err
	}
	if err := errors.ValidateDir("imagery dir", o.ImageryDir); err != nil {
		return err
	}
	if err := errors.ValidateDir("out dir", o.OutDir); err != nil {
		return err
	}
	if err := errors.ValidateTileSize(o.TileSize); err != nil {
		return err
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outcome of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Regions lists per-region outcomes in processing order.
	Regions []RegionResult

	// Total is the number of label files written across all regions.
	Total int

	Duration time.Duration
}

// Failed returns the regions that were skipped because of an error.
func (r *Result) Failed() []RegionResult {
	var out []RegionResult
	for _, rr := range r.Regions {
		if rr.Err != nil {
			out = append(out, rr)
		}
	}
	return out
}

// RegionResult describes what happened to one region.
type RegionResult struct {
	Region string

	Nodes     int // nodes in the global graph
	Edges     int // edges in the global graph
	Conflicts int // node ids seen with disagreeing coordinates

	Tiles   int // catalogued tiles
	Written int // label files written
	Empty   int // tiles with no nodes, not written

	CacheHit bool
	Duration time.Duration

	// Err is the reason the region was skipped, nil on success.
	Err error
}

// Status returns "ok" for a processed region or the error code of a skipped one.
func (r RegionResult) Status() string {
	if r.Err == nil {
		return "ok"
	}
	if code := errors.GetCode(r.Err); code != "" {
		return string(code)
	}
	return "error"
}
