package cli

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/matzehuels/tilelabel/pkg/pipeline"
)

// printSummary renders one row per region and a total footer.
func printSummary(w io.Writer, result *pipeline.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Region", "Status", "Nodes", "Edges", "Tiles", "Written", "Empty", "Cache", "Time"})

	for _, rr := range result.Regions {
		t.AppendRow(table.Row{
			rr.Region,
			rr.Status(),
			rr.Nodes,
			rr.Edges,
			rr.Tiles,
			rr.Written,
			rr.Empty,
			cacheLabel(rr),
			rr.Duration.Round(time.Millisecond),
		})
	}

	t.AppendFooter(table.Row{"Total", "", "", "", "", result.Total, "", "", result.Duration.Round(time.Millisecond)})
	t.Render()
}

func cacheLabel(rr pipeline.RegionResult) string {
	switch {
	case rr.CacheHit:
		return iconCached
	case rr.Nodes == 0 && rr.Edges == 0:
		return "-"
	default:
		return iconFresh
	}
}
