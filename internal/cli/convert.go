package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tilelabel/pkg/convert"
	"github.com/matzehuels/tilelabel/pkg/pipeline"
)

// convertCommand creates the convert command for .graph to GeoJSON conversion.
func (c *CLI) convertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [dir]",
		Short: "Convert .graph files to GeoJSON region files",
		Long: `Convert turns every <name>.graph file in dir into <name>.geojson next to it.

A .graph file lists node coordinates as "x y" lines, then a blank line, then
edges as "src dst" lines referencing node line numbers. Each edge becomes a
LineString feature with edge_id, src and dst properties, ready for generate.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := pipeline.DefaultGraphsDir
			if len(args) > 0 && args[0] != "" {
				dir = args[0]
			}

			sum, err := convert.Dir(cmd.Context(), dir, loggerFromContext(cmd.Context()))
			if err != nil {
				return err
			}

			for _, f := range sum.Failed {
				printError("%s: %v", f.Name, f.Err)
			}
			if len(sum.Converted) == 0 && len(sum.Failed) == 0 {
				printWarning("No .graph files found in %s", dir)
				return nil
			}
			printSuccess("Converted %d file(s)", len(sum.Converted))
			for _, name := range sum.Converted {
				printFile(filepath.Join(dir, name))
			}
			return nil
		},
	}
}
