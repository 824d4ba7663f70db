package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/tilelabel/pkg/cache"
	"github.com/matzehuels/tilelabel/pkg/errors"
	"github.com/matzehuels/tilelabel/pkg/graph"
	"github.com/matzehuels/tilelabel/pkg/label"
	"github.com/matzehuels/tilelabel/pkg/observability"
	"github.com/matzehuels/tilelabel/pkg/source"
	"github.com/matzehuels/tilelabel/pkg/tile"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for its collaborators. Regions and tiles
// are processed sequentially; the only cancellation points are between
// regions and between tiles.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Catalog lists tiles. When nil, a DirCatalog over Options.ImageryDir
	// filtered by Options.ImageExts is used.
	Catalog tile.Catalog
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute processes every selected region and returns the per-region outcomes.
//
// Invalid options are returned as an error before any region runs. Region
// failures are logged, recorded in the result and do not stop the run; only
// context cancellation ends it early, in which case the partial result is
// returned along with ctx.Err().
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	start := time.Now()

	result := &Result{RunID: uuid.NewString()}
	logger := r.logger(opts).With("run", result.RunID[:8])

	regions := opts.Regions
	if len(regions) == 0 {
		found, err := DiscoverRegions(opts.GraphsDir)
		if err != nil {
			return nil, err
		}
		regions = found
	}
	if len(regions) == 0 {
		logger.Info("no regions found", "graphs_dir", opts.GraphsDir)
		return result, nil
	}

	logger.Info("starting run", "regions", len(regions), "tile_size", opts.TileSize, "out", opts.OutDir)

	for _, region := range regions {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		rr, err := r.ProcessRegion(ctx, opts, region)
		if err != nil {
			if ctx.Err() != nil {
				result.Regions = append(result.Regions, rr)
				result.Total += rr.Written
				result.Duration = time.Since(start)
				return result, ctx.Err()
			}
			logSkip := logger.Error
			if errors.IsRegionSkip(err) {
				logSkip = logger.Warn
			}
			logSkip("skipping region",
				"region", region,
				"code", errors.GetCode(err),
				"reason", errors.UserMessage(err))
		}
		result.Regions = append(result.Regions, rr)
		result.Total += rr.Written
	}

	result.Duration = time.Since(start)
	logger.Info("all regions done", "total", result.Total, "duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

// ProcessRegion writes the label files of one region.
//
// Failures are returned with codes MISSING_INPUT (no geometry file or no
// imagery tiles), MALFORMED_GRAPH, EMPTY_GRAPH or INTERNAL_ERROR (output I/O).
// Label files written before a write failure stay on disk and are counted in
// the returned RegionResult.
func (r *Runner) ProcessRegion(ctx context.Context, opts Options, region string) (rr RegionResult, err error) {
	rr.Region = region
	start := time.Now()
	observability.Pipeline().OnRegionStart(ctx, region)
	defer func() {
		rr.Duration = time.Since(start)
		rr.Err = err
		observability.Pipeline().OnRegionComplete(ctx, region, rr.Written, rr.Duration, err)
	}()

	opts.SetDefaults()
	if err := errors.ValidateTileSize(opts.TileSize); err != nil {
		return rr, err
	}
	if err := errors.ValidateRegionName(region); err != nil {
		return rr, err
	}
	logger := r.logger(opts).With("region", region)

	path := filepath.Join(opts.GraphsDir, region+GeometryExt)
	logger.Info("loading graph", "path", path)
	loaded, hit, err := r.LoadGraph(ctx, path, opts.Refresh)
	if err != nil {
		return rr, err
	}
	g := loaded.Graph
	rr.CacheHit = hit
	rr.Nodes = g.NodeCount()
	rr.Edges = g.EdgeCount()
	rr.Conflicts = len(loaded.Conflicts)

	if g.EdgeCount() == 0 {
		return rr, errors.New(errors.ErrCodeEmptyGraph, "no edges found in %s", path)
	}
	logger.Debug("graph loaded",
		"nodes", rr.Nodes,
		"edges", rr.Edges,
		"bound", g.Bound(),
		"tiles_covered", len(tile.Tiles(g, opts.TileSize)),
		"cached", hit)
	if len(loaded.Conflicts) > 0 {
		logger.Warn("node coordinates disagree between features; last one wins", "nodes", len(loaded.Conflicts))
		for _, c := range loaded.Conflicts {
			logger.Debug("coordinate conflict", "nid", c.ID, "kept", c.Kept, "dropped", c.Dropped, "features", c.Features)
		}
	}

	catalog := r.catalog(opts)
	entries, err := catalog.Tiles(ctx, region)
	if err != nil {
		if ctx.Err() != nil {
			return rr, ctx.Err()
		}
		return rr, errors.Wrap(errors.ErrCodeInternal, err, "list tiles")
	}
	rr.Tiles = len(entries)
	if len(entries) == 0 {
		return rr, errors.New(errors.ErrCodeMissingInput, "no imagery tiles found in %s", opts.ImageryDir)
	}

	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return rr, errors.Wrap(errors.ErrCodeInternal, err, "create output directory %s", opts.OutDir)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return rr, err
		}

		sub := tile.Partition(g, e.Tile, opts.TileSize)
		if sub.Empty() {
			rr.Empty++
			continue
		}

		rec := label.Build(region, e.Image, tile.Compact(sub))
		if err := rec.Validate(); err != nil {
			return rr, errors.Wrap(errors.ErrCodeInternal, err, "tile %s", e.Tile)
		}
		out := label.Path(opts.OutDir, region, e.Tile)
		if err := label.WriteFile(rec, out); err != nil {
			return rr, errors.Wrap(errors.ErrCodeInternal, err, "write label %s", out)
		}
		rr.Written++

		logger.Info("wrote label", "path", out, "nodes", rec.NumNodes, "edges", rec.NumEdges)
		observability.Pipeline().OnTileWritten(ctx, region, e.Tile.String(), rec.NumNodes, rec.NumEdges)
	}

	logger.Info("region done", "files", rr.Written, "empty", rr.Empty, "tiles", rr.Tiles)
	return rr, nil
}

// cachedRegion is the cache encoding of a decoded geometry file.
type cachedRegion struct {
	Graph     json.RawMessage  `json:"graph"`
	Conflicts []graph.Conflict `json:"conflicts,omitempty"`
}

// LoadGraph reads and decodes a geometry file, consulting the cache by
// file content. It reports whether the decoded graph came from the cache.
// Cache failures are logged and never fail the load.
func (r *Runner) LoadGraph(ctx context.Context, path string, refresh bool) (*source.Result, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, errors.Wrap(errors.ErrCodeMissingInput, err, "geometry file %s not found", path)
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}

	key := r.Keyer.GraphKey(cache.Hash(data), cache.GraphKeyOpts{Schema: cache.GraphSchema})

	// Try cache first (unless refresh requested)
	if !refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if res, err := decodeCached(cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				r.Logger.Debug("graph cache hit", "path", path)
				return res, true, nil
			}
			// If deserialization fails, fall through to decode
		} else if err != nil {
			r.Logger.Debug("graph cache read failed", "path", path, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	res, err := source.Decode(data)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if enc, err := encodeCached(res); err == nil {
		if err := r.Cache.Set(ctx, key, enc, cache.TTLGraph); err != nil {
			r.Logger.Debug("graph cache write failed", "path", path, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "graph", len(enc))
		}
	}

	return res, false, nil
}

func encodeCached(res *source.Result) ([]byte, error) {
	g, err := graph.Marshal(res.Graph)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cachedRegion{Graph: g, Conflicts: res.Conflicts})
}

func decodeCached(data []byte) (*source.Result, error) {
	var c cachedRegion
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	g, err := graph.Unmarshal(c.Graph)
	if err != nil {
		return nil, err
	}
	return &source.Result{
		Graph:        g,
		Conflicts:    c.Conflicts,
		LineFeatures: g.EdgeCount(),
	}, nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func (r *Runner) catalog(opts Options) tile.Catalog {
	if r.Catalog != nil {
		return r.Catalog
	}
	return tile.NewDirCatalog(opts.ImageryDir, opts.ImageExts...)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
