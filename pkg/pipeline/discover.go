package pipeline

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// DiscoverRegions returns the names of every *.geojson file in dir, sorted.
// A missing directory yields no regions.
func DiscoverRegions(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read graphs dir %s: %w", dir, err)
	}

	var regions []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, GeometryExt) {
			continue
		}
		region := strings.TrimSuffix(name, GeometryExt)
		if region == "" {
			continue
		}
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions, nil
}
