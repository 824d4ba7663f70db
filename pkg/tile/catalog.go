package tile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Entry pairs a tile with the image it was cut from.
type Entry struct {
	Tile  Tile
	Image string
}

// Catalog lists the tiles available for a region.
// Implementations return entries sorted by tile (X, then Y) with at most one
// entry per tile.
type Catalog interface {
	Tiles(ctx context.Context, region string) ([]Entry, error)
}

// DirCatalog discovers tiles from image files in a directory named
// "<region>_<x>_<y>_sat.<ext>", where x and y are signed integers.
type DirCatalog struct {
	Dir string

	// Extensions restricts matches to these extensions (without the dot,
	// compared case-insensitively). Empty means any extension.
	Extensions []string
}

// NewDirCatalog creates a catalog over dir.
func NewDirCatalog(dir string, exts ...string) *DirCatalog {
	return &DirCatalog{Dir: dir, Extensions: exts}
}

// Pattern returns the file name pattern for region's tiles.
func Pattern(region string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(region) + `_(-?\d+)_(-?\d+)_sat\.([A-Za-z0-9]+)$`)
}

// ParseName extracts the tile coordinate and extension from an image file
// name belonging to region.
func ParseName(region, name string) (Tile, string, bool) {
	return parseName(Pattern(region), name)
}

func parseName(pattern *regexp.Regexp, name string) (Tile, string, bool) {
	m := pattern.FindStringSubmatch(name)
	if m == nil {
		return Tile{}, "", false
	}
	x, err := strconv.Atoi(m[1])
	if err != nil {
		return Tile{}, "", false
	}
	y, err := strconv.Atoi(m[2])
	if err != nil {
		return Tile{}, "", false
	}
	return Tile{X: x, Y: y}, m[3], true
}

// ImageName returns the image file name of a tile.
func ImageName(region string, t Tile, ext string) string {
	return fmt.Sprintf("%s_%d_%d_sat.%s", region, t.X, t.Y, ext)
}

// Tiles lists region's tiles. A missing directory yields no entries.
// When a tile exists under several extensions, the lexically first file name
// is used.
func (c *DirCatalog) Tiles(ctx context.Context, region string) ([]Entry, error) {
	entries, err := os.ReadDir(c.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read imagery dir %s: %w", c.Dir, err)
	}

	pattern := Pattern(region)
	seen := make(map[Tile]bool)
	var out []Entry

	// os.ReadDir returns entries sorted by file name.
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() {
			continue
		}
		t, ext, ok := parseName(pattern, e.Name())
		if !ok || !c.allowed(ext) {
			continue
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, Entry{Tile: t, Image: filepath.Join(c.Dir, e.Name())})
	}

	SortEntries(out)
	return out, nil
}

func (c *DirCatalog) allowed(ext string) bool {
	if len(c.Extensions) == 0 {
		return true
	}
	for _, want := range c.Extensions {
		if strings.EqualFold(strings.TrimPrefix(want, "."), ext) {
			return true
		}
	}
	return false
}

// StaticCatalog serves a fixed set of entries per region.
type StaticCatalog map[string][]Entry

// Tiles returns a sorted, de-duplicated copy of the region's entries.
func (s StaticCatalog) Tiles(ctx context.Context, region string) ([]Entry, error) {
	seen := make(map[Tile]bool)
	var out []Entry
	for _, e := range s[region] {
		if seen[e.Tile] {
			continue
		}
		seen[e.Tile] = true
		out = append(out, e)
	}
	SortEntries(out)
	return out, nil
}

// SortEntries sorts entries by tile X, then Y.
func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return Compare(a.Tile, b.Tile)
	})
}

var (
	_ Catalog = (*DirCatalog)(nil)
	_ Catalog = StaticCatalog(nil)
)
