package main

import (
	"github.com/spf13/cobra"
)

const version = "0.1.0"

func addCommands(root *cobra.Command) {
	// Comparison
	cmd := &cobra.Command{
		Use:   "compare file-a file-b",
		Short: "Outer-join two tables and diff their shared numeric columns",
		Args:  cobra.ExactArgs(2),
		Run:   runCompare}
	cmd.Flags().StringP("key", "k", "", "join key column (required)")
	cmd.MarkFlagRequired("key")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().String("format", "csv", "output format, 'csv' or 'json'")
	addReshapeFlags(cmd)
	root.AddCommand(cmd)

	// Charts
	cmd = &cobra.Command{
		Use:   "chart file",
		Short: "Render a chart from a tabular file",
		Args:  cobra.ExactArgs(1),
		Run:   runChart}
	cmd.Flags().StringP("type", "t", "bar", "chart type: bar, line, scatter, histogram, pie")
	cmd.Flags().StringP("x", "x", "", "x-axis column (required)")
	cmd.MarkFlagRequired("x")
	cmd.Flags().StringSliceP("y", "y", nil, "y-axis column(s)")
	cmd.Flags().String("color", "", "split into one series per value of this column")
	cmd.Flags().StringSlice("facets", nil, "facet column(s), shown behind a subset selector")
	cmd.Flags().String("title", "", "chart title")
	cmd.Flags().StringP("output", "o", "", "output file: .html, .png, .pdf or .svg (default: HTML to stdout)")
	cmd.Flags().Int("width", 0, "figure width in pixels")
	cmd.Flags().Int("height", 0, "figure height in pixels")
	addReshapeFlags(cmd)
	root.AddCommand(cmd)

	// Networks
	cmd = &cobra.Command{
		Use:   "network file",
		Short: "Render a network graph from an edge-list file",
		Args:  cobra.ExactArgs(1),
		Run:   runNetwork}
	cmd.Flags().String("source", "source", "source node column")
	cmd.Flags().String("target", "target", "target node column")
	cmd.Flags().String("weight", "", "edge weight column")
	cmd.Flags().String("layout", "spring", "node layout: spring, circular, shell, grid, random")
	cmd.Flags().String("title", "", "figure title")
	cmd.Flags().StringP("output", "o", "", "output file: .html, .png, .pdf or .svg (default: HTML to stdout)")
	cmd.Flags().Int("width", 0, "figure width in pixels")
	cmd.Flags().Int("height", 0, "figure height in pixels")
	addReshapeFlags(cmd)
	root.AddCommand(cmd)

	// Misc
	cmd = &cobra.Command{
		Use:   "renderers",
		Short: "List the registered rendering backends",
		Run:   runRenderers}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Run:   runServe}
	root.AddCommand(cmd)
}

// addReshapeFlags adds the pre-processing pipeline flags shared by the data
// commands: unpivot, lookup, filter/exclude, drop.
func addReshapeFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("id-cols", nil, "unpivot: identifier columns kept as-is")
	cmd.Flags().Int("value-start", 0, "unpivot: first value column index")
	cmd.Flags().Int("value-end", 0, "unpivot: one past the last value column index")
	cmd.Flags().String("var-name", "variable", "unpivot: name for the variable column")
	cmd.Flags().String("value-name", "value", "unpivot: name for the value column")

	cmd.Flags().String("lookup-file", "", "lookup table file for code→label replacement")
	cmd.Flags().String("lookup-source", "", "column whose values are replaced")
	cmd.Flags().String("lookup-code", "", "lookup table column holding codes")
	cmd.Flags().String("lookup-label", "", "lookup table column holding labels")

	cmd.Flags().String("filter", "", "keep only matching rows, as column=v1,v2,...")
	cmd.Flags().String("exclude", "", "drop matching rows, as column=v1,v2,...")
	cmd.Flags().StringSlice("drop-columns", nil, "columns to remove")
}

func main() {
	var root = &cobra.Command{
		Use:     "vizier",
		Short:   "Load, reshape, compare and chart tabular data",
		Version: version,
	}
	root.PersistentFlags().StringP("renderer", "r", "echarts", "rendering backend")
	addCommands(root)
	root.Execute()
}
