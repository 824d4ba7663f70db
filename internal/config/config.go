// Package config loads tilelabel settings from defaults, a YAML file,
// TILELABEL_* environment variables and command-line flags.
//
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// Only flags that were explicitly set take part, so a flag's default never
// hides a value from the file or the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/matzehuels/tilelabel/pkg/pipeline"
)

// EnvPrefix is the prefix of environment variables read into the config.
const EnvPrefix = "TILELABEL_"

// DefaultFiles are the config file names looked up in the working directory.
var DefaultFiles = []string{"tilelabel.yaml", "tilelabel.yml"}

// Config holds every setting of a generate run.
type Config struct {
	GraphsDir  string   `koanf:"graphs_dir"`
	ImageryDir string   `koanf:"imagery_dir"`
	OutDir     string   `koanf:"out_dir"`
	TileSize   int      `koanf:"tile_size"`
	Regions    []string `koanf:"regions"`
	ImageExts  []string `koanf:"image_exts"`

	NoCache  bool   `koanf:"no_cache"`
	Refresh  bool   `koanf:"refresh"`
	CacheDir string `koanf:"cache_dir"`
	Verbose  bool   `koanf:"verbose"`

	// File is the config file that was loaded, empty if none.
	File string `koanf:"-"`
}

// flagKeys maps flag names whose config key is not the snake_case form.
var flagKeys = map[string]string{
	"image-ext": "image_exts",
	"region":    "regions",
}

// skipFlags are flags that are not configuration values.
var skipFlags = map[string]bool{
	"config": true,
	"help":   true,
}

// Load builds a Config. cfgFile names an explicit config file, which must
// exist; when empty the working directory is searched for DefaultFiles.
// flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"graphs_dir":  pipeline.DefaultGraphsDir,
		"imagery_dir": pipeline.DefaultImageryDir,
		"out_dir":     pipeline.DefaultOutDir,
		"tile_size":   pipeline.DefaultTileSize,
		"no_cache":    false,
		"refresh":     false,
		"verbose":     false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	used, err := findConfigFile(cfgFile)
	if err != nil {
		return nil, err
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Load environment variables (TILELABEL_ prefix)
	// Transform: TILELABEL_OUT_DIR -> out_dir
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			if !f.Changed || skipFlags[f.Name] {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	cfg.Regions = splitList(cfg.Regions)
	cfg.ImageExts = splitList(cfg.ImageExts)
	return &cfg, nil
}

// findConfigFile returns the config file to use.
// Priority: explicit path > tilelabel.yaml > tilelabel.yml
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}

// splitList flattens comma separated entries, as they arrive from
// environment variables, and drops blanks.
func splitList(in []string) []string {
	var out []string
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// PipelineOptions converts the config into pipeline options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		GraphsDir:  c.GraphsDir,
		ImageryDir: c.ImageryDir,
		OutDir:     c.OutDir,
		TileSize:   c.TileSize,
		Regions:    c.Regions,
		ImageExts:  c.ImageExts,
		Refresh:    c.Refresh,
	}
}
