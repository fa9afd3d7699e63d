package output

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/ritzau/deflex-graph/pkg/graph"
	"github.com/ritzau/deflex-graph/pkg/scenario"
)

// categoryOrder is the order categories are listed in the report
var categoryOrder = []string{
	"bus", "source", "transformer", "line", "storage",
	"demand", "usage", "excess", "shortage",
}

// PrintCompileReport prints a nicely formatted summary of a compiled scenario with colors
func PrintCompileReport(w io.Writer, meta scenario.Metadata, summary graph.Summary) {
	// Color definitions
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Fprintln(w, "deflex-graph - Compile Report")
	bold.Fprintln(w, "=============================")
	fmt.Fprintf(w, "Scenario: %s\n", meta.Name)
	if meta.Location != "" {
		fmt.Fprintf(w, "Tables: %s\n", meta.Location)
	}
	fmt.Fprintf(w, "Year: %d (%d steps)\n", meta.Year, meta.Steps)
	if len(meta.ExtraRegions) > 0 {
		fmt.Fprintf(w, "Extra regions: %s\n", strings.Join(meta.ExtraRegions, ", "))
	}
	fmt.Fprintln(w)

	// Node counts per category
	bold.Fprintln(w, "NODES:")
	for _, cat := range orderedCategories(meta.Categories) {
		cyan.Fprintf(w, "  %-12s", cat)
		fmt.Fprintf(w, "%d\n", meta.Categories[cat])
	}
	fmt.Fprintf(w, "  %-12s%d nodes, %d flows\n", "total", summary.Nodes, summary.Flows)
	fmt.Fprintln(w)

	// Structure
	fmt.Fprintf(w, "Islands: %d\n", summary.Islands)
	for _, zone := range summary.Zones {
		if regions := zone.Regions(); len(regions) > 1 {
			cyan.Fprintf(w, "  Coupled regions: %s\n", strings.Join(regions, ", "))
		}
	}

	if len(summary.Issues) > 0 {
		yellow.Fprintf(w, "Unbalanced buses: %d\n", len(summary.Issues))
		for _, issue := range summary.Issues {
			var missing []string
			if issue.MissingInflow {
				missing = append(missing, "inflow")
			}
			if issue.MissingOutflow {
				missing = append(missing, "outflow")
			}
			yellow.Fprintf(w, "  %s (no %s)\n", issue.Bus, strings.Join(missing, ", no "))
		}
		return
	}

	green.Fprintf(w, "✓ All %d buses can be balanced\n", summary.Buses)
}

// PrintCompileError prints a failed compilation
func PrintCompileError(w io.Writer, name string, err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintf(w, "✗ Compiling %s failed\n", name)
	fmt.Fprintf(w, "  %v\n", err)
}

// orderedCategories lists known categories first, then any others sorted
func orderedCategories(counts map[string]int) []string {
	var cats []string
	for _, cat := range categoryOrder {
		if counts[cat] > 0 {
			cats = append(cats, cat)
		}
	}
	var rest []string
	for cat := range counts {
		if !slices.Contains(categoryOrder, cat) {
			rest = append(rest, cat)
		}
	}
	slices.Sort(rest)
	return append(cats, rest...)
}
