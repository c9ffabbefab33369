package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vizier-org/vizier/render/layout"
	"github.com/vizier-org/vizier/table"
)

// ============================================================================
// RENDERER PROTOCOL — the capability contract every backend satisfies
// ============================================================================
// A Renderer turns tables into figures and figures into files or HTML.
// Backends are resolved by name through the Registry, so pipeline code
// never depends on a concrete charting library.
// ============================================================================

// ChartType selects a statistical chart family.
type ChartType string

const (
	ChartBar       ChartType = "bar"
	ChartLine      ChartType = "line"
	ChartScatter   ChartType = "scatter"
	ChartHistogram ChartType = "histogram"
	ChartPie       ChartType = "pie"
)

// ParseChartType resolves a chart type name.
func ParseChartType(s string) (ChartType, error) {
	switch ChartType(strings.ToLower(s)) {
	case ChartBar, ChartLine, ChartScatter, ChartHistogram, ChartPie:
		return ChartType(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("unknown chart type %q", s)
	}
}

// Format selects an export file format.
type Format string

const (
	FormatHTML Format = "html"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
	FormatSVG  Format = "svg"
)

// FormatForPath derives the export format from a destination file name.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html":
		return FormatHTML, nil
	case ".png":
		return FormatPNG, nil
	case ".pdf":
		return FormatPDF, nil
	case ".svg":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use .html, .png, .pdf or .svg)", filepath.Ext(path))
	}
}

// Figure is an opaque, backend-specific rendering object. It is owned by
// the renderer that created it; passing it to another backend fails with a
// *RenderError at call time.
type Figure any

// ChartSpec describes a statistical chart over a table.
type ChartSpec struct {
	Type ChartType
	// X is the category/value column; Y lists one or more numeric series
	// columns (histogram uses X only).
	X string
	Y []string

	Title string
	// Color splits rows into one series per distinct value of this column.
	Color string
	// Facets pre-renders one data subset per distinct (combined) value of
	// these columns into the same figure, behind an interactive selector.
	Facets []string

	// Width and Height are pixels; zero means the backend default.
	Width, Height int
}

// NetworkSpec describes a graph figure built from an edge-list table: one
// edge per row, from the Source column value to the Target column value.
type NetworkSpec struct {
	Source string
	Target string
	// Weight optionally names a numeric edge-weight column.
	Weight string

	Title  string
	Layout layout.Algorithm

	Width, Height int
}

// Renderer is the contract a rendering backend must satisfy.
//
// Export with a static Format (png, pdf, svg) requires a headless browser
// in the execution environment and fails with *EngineUnavailableError when
// none is present; HTML output never needs one. Whatever the outcome, any
// engine process is fully torn down before Export returns.
type Renderer interface {
	CreateChart(t *table.Table, spec ChartSpec) (Figure, error)
	CreateNetwork(t *table.Table, spec NetworkSpec) (Figure, error)
	Export(fig Figure, path string, format Format) error
	ToHTML(fig Figure) (string, error)
}
