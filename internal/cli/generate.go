package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/tilelabel/internal/config"
	"github.com/matzehuels/tilelabel/pkg/observability"
	"github.com/matzehuels/tilelabel/pkg/pipeline"
)

// generateCommand creates the generate command for writing tile labels.
func (c *CLI) generateCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write per-tile ground-truth labels for every region",
		Long: `Generate reads <graphs-dir>/<region>.geojson for each region, lists the
region's image tiles (<region>_<x>_<y>_sat.<ext>) in the imagery directory and
writes one <region>_<x>_<y>_graph.json per tile that contains at least one node.

Settings are read from tilelabel.yaml, TILELABEL_* environment variables and
flags, in increasing order of precedence.`,
		Example: `  # Process every region with the default directories
  tilelabel generate

  # Two regions, 1024px tiles, PNG imagery only
  tilelabel generate --regions AOI_2_Vegas,AOI_3_Paris --tile-size 1024 --image-ext png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), cfgFile, cmd.Flags())
		},
	}

	cmd.Flags().String("graphs-dir", pipeline.DefaultGraphsDir, "directory of <region>.geojson files")
	cmd.Flags().String("imagery-dir", pipeline.DefaultImageryDir, "directory of <region>_<x>_<y>_sat.<ext> tiles")
	cmd.Flags().String("out-dir", pipeline.DefaultOutDir, "directory for label files")
	cmd.Flags().Int("tile-size", pipeline.DefaultTileSize, "tile side length in pixels")
	cmd.Flags().StringSlice("regions", nil, "regions to process (default: every *.geojson in graphs dir)")
	cmd.Flags().StringSlice("image-ext", nil, "accepted image extensions (default: any)")
	cmd.Flags().Bool("no-cache", false, "disable the decoded graph cache")
	cmd.Flags().Bool("refresh", false, "ignore cached graphs and decode again")
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default: ./tilelabel.yaml)")

	return cmd
}

// runGenerate loads configuration, runs the pipeline and prints the summary.
// Region failures are reported but do not make the command fail.
func (c *CLI) runGenerate(ctx context.Context, cfgFile string, flags *pflag.FlagSet) error {
	cfg, err := config.Load(cfgFile, flags)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		c.SetLogLevel(LogDebug)
	}
	logger := loggerFromContext(ctx)
	if cfg.File != "" {
		logger.Debug("loaded config", "file", cfg.File)
	}

	opts := cfg.PipelineOptions()
	opts.Logger = logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	runner, err := c.newRunner(cfg.NoCache, cfg.CacheDir)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer runner.Close()

	stats := observability.NewCacheStats()
	observability.SetCacheHooks(stats)
	defer observability.Reset()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	if len(result.Regions) == 0 {
		printWarning("No regions found.")
		printDetail("Looked for *.geojson in %s", opts.GraphsDir)
		return nil
	}

	printKeyValue("Run", result.RunID)
	printKeyValue("Output", opts.OutDir)
	printSummary(c.Out, result)
	if hits, misses, _ := stats.Snapshot(); hits+misses > 0 {
		printDetail("Graph cache: %d hit(s), %d miss(es)", hits, misses)
	}
	for _, rr := range result.Failed() {
		printWarning("%s skipped: %s", rr.Region, rr.Status())
	}
	prog.done("Generated labels")
	printSuccess("All regions done. Total GT files: %d", result.Total)
	return nil
}
