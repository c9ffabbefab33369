package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"

	"github.com/vizier-org/vizier/render/layout"
	"github.com/vizier-org/vizier/table"
)

// ============================================================================
// ECHARTS BACKEND — built-in renderer over go-echarts
// ============================================================================
// Charts render to self-contained HTML with no external engine. Static
// formats rasterize that HTML through a headless browser (see export.go).
//
// Faceting: one series per distinct facet value, all pre-rendered into the
// figure, with a single-select legend acting as the subset selector. Pie
// charts, whose legend addresses slices rather than series, render facets
// as side-by-side pies instead.
// ============================================================================

// BackendECharts is the name of the built-in backend.
const BackendECharts = "echarts"

func init() {
	Register(BackendECharts, func() Renderer { return NewECharts() })
}

// ECharts renders figures with the go-echarts charting library.
type ECharts struct{}

// NewECharts returns a new echarts backend instance.
func NewECharts() *ECharts { return &ECharts{} }

// renderable is satisfied by every go-echarts chart type.
type renderable interface {
	Render(w io.Writer) error
}

// echartsFigure is the backend-specific Figure value.
type echartsFigure struct {
	id    string
	chart renderable
}

func chartID() string {
	return "viz" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

func (r *ECharts) figure(fig Figure, op string) (*echartsFigure, error) {
	ef, ok := fig.(*echartsFigure)
	if !ok || ef.chart == nil {
		return nil, renderErrf(op, "figure was not created by the %s backend", BackendECharts)
	}
	return ef, nil
}

// ============================================================================
// CHARTS
// ============================================================================

// CreateChart builds a statistical chart figure from a table.
func (r *ECharts) CreateChart(t *table.Table, spec ChartSpec) (Figure, error) {
	const op = "create chart"

	if spec.X == "" || !t.HasColumn(spec.X) {
		return nil, renderErrf(op, "x column %q does not exist", spec.X)
	}
	if spec.Type != ChartHistogram && len(spec.Y) == 0 {
		return nil, renderErrf(op, "at least one y column is required")
	}
	for _, y := range spec.Y {
		if !t.HasColumn(y) {
			return nil, renderErrf(op, "y column %q does not exist", y)
		}
	}
	if spec.Color != "" && !t.HasColumn(spec.Color) {
		return nil, renderErrf(op, "color column %q does not exist", spec.Color)
	}
	for _, f := range spec.Facets {
		if !t.HasColumn(f) {
			return nil, renderErrf(op, "facet column %q does not exist", f)
		}
	}

	groups := chartGroups(t, spec)
	selector := len(spec.Facets) > 0

	fig := &echartsFigure{id: chartID()}
	var err error
	switch spec.Type {
	case ChartBar:
		fig.chart, err = r.buildBar(t, spec, fig.id, groups, selector)
	case ChartLine:
		fig.chart, err = r.buildLine(t, spec, fig.id, groups, selector)
	case ChartScatter:
		fig.chart, err = r.buildScatter(t, spec, fig.id, groups, selector)
	case ChartHistogram:
		fig.chart, err = r.buildHistogram(t, spec, fig.id, groups, selector)
	case ChartPie:
		fig.chart, err = r.buildPie(t, spec, fig.id, groups)
	default:
		return nil, renderErrf(op, "unsupported chart type %q", spec.Type)
	}
	if err != nil {
		return nil, err
	}
	return fig, nil
}

// rowGroup is a named subset of row indices rendered as one series (or, for
// multiple y columns, one series per y column).
type rowGroup struct {
	name string
	rows []int
}

// chartGroups partitions rows by facet columns (selector subsets), else by
// the color column, else into a single group. Group order is first-seen.
func chartGroups(t *table.Table, spec ChartSpec) []rowGroup {
	keyCols := spec.Facets
	if len(keyCols) == 0 && spec.Color != "" {
		keyCols = []string{spec.Color}
	}
	if len(keyCols) == 0 {
		rows := make([]int, t.NumRows())
		for i := range rows {
			rows[i] = i
		}
		return []rowGroup{{rows: rows}}
	}

	cols := make([]table.Column, len(keyCols))
	for i, name := range keyCols {
		cols[i], _ = t.Column(name)
	}

	index := make(map[string]int)
	var groups []rowGroup
	for i := 0; i < t.NumRows(); i++ {
		parts := make([]string, len(cols))
		for j, c := range cols {
			parts[j] = table.Format(c.Values[i])
		}
		key := strings.Join(parts, " / ")
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, rowGroup{name: key})
		}
		groups[gi].rows = append(groups[gi].rows, i)
	}
	return groups
}

// alignedSeries lays every group's y values over one shared category axis
// (distinct x values in first-seen order). A missing (category, group) cell
// stays null; for duplicates the first row wins.
func alignedSeries(t *table.Table, spec ChartSpec, groups []rowGroup) (categories []string, series []struct {
	name   string
	values []any
}) {
	xCol, _ := t.Column(spec.X)

	catIndex := make(map[string]int)
	for _, v := range xCol.Values {
		s := table.Format(v)
		if _, ok := catIndex[s]; !ok {
			catIndex[s] = len(categories)
			categories = append(categories, s)
		}
	}

	for _, g := range groups {
		for _, yName := range spec.Y {
			yCol, _ := t.Column(yName)
			values := make([]any, len(categories))
			filled := make([]bool, len(categories))
			for _, row := range g.rows {
				ci := catIndex[table.Format(xCol.Values[row])]
				if !filled[ci] {
					filled[ci] = true
					values[ci] = yCol.Values[row]
				}
			}
			series = append(series, struct {
				name   string
				values []any
			}{name: seriesName(g.name, yName, len(spec.Y)), values: values})
		}
	}
	return categories, series
}

func seriesName(group, y string, yCount int) string {
	switch {
	case group == "":
		return y
	case yCount <= 1:
		return group
	default:
		return group + " · " + y
	}
}

func (r *ECharts) globalOpts(id, title string, spec ChartSpec, selector bool, firstGroup string) []charts.GlobalOpts {
	init := opts.Initialization{ChartID: id, PageTitle: title}
	if spec.Width > 0 {
		init.Width = fmt.Sprintf("%dpx", spec.Width)
	}
	if spec.Height > 0 {
		init.Height = fmt.Sprintf("%dpx", spec.Height)
	}

	legend := opts.Legend{Show: opts.Bool(true)}
	if selector {
		// The facet selector: exactly one subset visible at a time.
		legend.SelectedMode = "single"
		if firstGroup != "" {
			legend.Selected = map[string]bool{firstGroup: true}
		}
	}

	return []charts.GlobalOpts{
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(legend),
	}
}

func (r *ECharts) buildBar(t *table.Table, spec ChartSpec, id string, groups []rowGroup, selector bool) (renderable, error) {
	categories, series := alignedSeries(t, spec, groups)

	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalOpts(id, spec.Title, spec, selector, firstSeriesName(groups, spec))...)
	bar.SetXAxis(categories)
	for _, s := range series {
		data := make([]opts.BarData, len(s.values))
		for i, v := range s.values {
			data[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(s.name, data)
	}
	return bar, nil
}

func (r *ECharts) buildLine(t *table.Table, spec ChartSpec, id string, groups []rowGroup, selector bool) (renderable, error) {
	categories, series := alignedSeries(t, spec, groups)

	line := charts.NewLine()
	line.SetGlobalOptions(r.globalOpts(id, spec.Title, spec, selector, firstSeriesName(groups, spec))...)
	line.SetXAxis(categories)
	for _, s := range series {
		data := make([]opts.LineData, len(s.values))
		for i, v := range s.values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.name, data)
	}
	return line, nil
}

func (r *ECharts) buildScatter(t *table.Table, spec ChartSpec, id string, groups []rowGroup, selector bool) (renderable, error) {
	categories, series := alignedSeries(t, spec, groups)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(r.globalOpts(id, spec.Title, spec, selector, firstSeriesName(groups, spec))...)
	scatter.SetXAxis(categories)
	for _, s := range series {
		data := make([]opts.ScatterData, len(s.values))
		for i, v := range s.values {
			data[i] = opts.ScatterData{Value: v}
		}
		scatter.AddSeries(s.name, data)
	}
	return scatter, nil
}

// buildHistogram bins the x column (Sturges' rule) and renders per-group
// counts as bars. Y columns are ignored, matching the usual histogram form.
func (r *ECharts) buildHistogram(t *table.Table, spec ChartSpec, id string, groups []rowGroup, selector bool) (renderable, error) {
	xCol, _ := t.Column(spec.X)
	if xCol.Kind != table.KindNumber {
		return nil, renderErrf("create chart", "histogram needs a numeric x column, %q is %s", spec.X, xCol.Kind)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	n := 0
	for _, v := range xCol.Values {
		if f, ok := table.Number(v); ok {
			lo = math.Min(lo, f)
			hi = math.Max(hi, f)
			n++
		}
	}
	if n == 0 {
		return nil, renderErrf("create chart", "histogram column %q has no values", spec.X)
	}

	bins := int(math.Ceil(math.Log2(float64(n)))) + 1
	if bins < 1 {
		bins = 1
	}
	width := (hi - lo) / float64(bins)
	if width == 0 {
		width = 1
	}

	labels := make([]string, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.4g–%.4g", lo+float64(i)*width, lo+float64(i+1)*width)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalOpts(id, spec.Title, spec, selector, firstSeriesName(groups, spec))...)
	bar.SetXAxis(labels)
	for _, g := range groups {
		counts := make([]int, bins)
		for _, row := range g.rows {
			f, ok := table.Number(xCol.Values[row])
			if !ok {
				continue
			}
			bin := int((f - lo) / width)
			if bin >= bins {
				bin = bins - 1
			}
			counts[bin]++
		}
		data := make([]opts.BarData, bins)
		for i, c := range counts {
			data[i] = opts.BarData{Value: c}
		}
		name := g.name
		if name == "" {
			name = spec.X
		}
		bar.AddSeries(name, data)
	}
	return bar, nil
}

// buildPie maps x to slice names and the first y column to slice values.
// Faceted pies render side by side, one per subset.
func (r *ECharts) buildPie(t *table.Table, spec ChartSpec, id string, groups []rowGroup) (renderable, error) {
	xCol, _ := t.Column(spec.X)
	yCol, _ := t.Column(spec.Y[0])

	pie := charts.NewPie()
	pie.SetGlobalOptions(r.globalOpts(id, spec.Title, spec, false, "")...)

	for gi, g := range groups {
		data := make([]opts.PieData, 0, len(g.rows))
		for _, row := range g.rows {
			data = append(data, opts.PieData{
				Name:  table.Format(xCol.Values[row]),
				Value: yCol.Values[row],
			})
		}
		name := g.name
		if name == "" {
			name = spec.Y[0]
		}
		var seriesOpts []charts.SeriesOpts
		if len(groups) > 1 {
			center := fmt.Sprintf("%.1f%%", (float64(gi)+0.5)/float64(len(groups))*100)
			seriesOpts = append(seriesOpts, charts.WithPieChartOpts(opts.PieChart{
				Center: []string{center, "50%"},
				Radius: fmt.Sprintf("%d%%", 60/len(groups)+10),
			}))
		}
		pie.AddSeries(name, data, seriesOpts...)
	}
	return pie, nil
}

func firstSeriesName(groups []rowGroup, spec ChartSpec) string {
	if len(groups) == 0 {
		return ""
	}
	return seriesName(groups[0].name, firstY(spec), len(spec.Y))
}

func firstY(spec ChartSpec) string {
	if len(spec.Y) == 0 {
		return ""
	}
	return spec.Y[0]
}

// ============================================================================
// NETWORKS
// ============================================================================

// CreateNetwork builds a graph figure from an edge-list table. Node
// positions are computed in-process (see render/layout) so the picture is
// deterministic for a given input and algorithm.
func (r *ECharts) CreateNetwork(t *table.Table, spec NetworkSpec) (Figure, error) {
	const op = "create network"

	srcCol, ok := t.Column(spec.Source)
	if !ok {
		return nil, renderErrf(op, "source column %q does not exist", spec.Source)
	}
	dstCol, ok := t.Column(spec.Target)
	if !ok {
		return nil, renderErrf(op, "target column %q does not exist", spec.Target)
	}
	var weightCol table.Column
	if spec.Weight != "" {
		weightCol, ok = t.Column(spec.Weight)
		if !ok {
			return nil, renderErrf(op, "weight column %q does not exist", spec.Weight)
		}
	}

	// Collect nodes in first-seen order and edges per row.
	nodeIndex := make(map[string]int)
	var names []string
	internNode := func(v any) int {
		name := table.Format(v)
		if i, ok := nodeIndex[name]; ok {
			return i
		}
		nodeIndex[name] = len(names)
		names = append(names, name)
		return len(names) - 1
	}

	edges := make([][2]int, 0, t.NumRows())
	weights := make([]float64, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		a := internNode(srcCol.Values[i])
		b := internNode(dstCol.Values[i])
		edges = append(edges, [2]int{a, b})
		w := 1.0
		if spec.Weight != "" {
			if f, ok := table.Number(weightCol.Values[i]); ok {
				w = f
			}
		}
		weights = append(weights, w)
	}

	positions := layout.Positions(names, edges, spec.Layout)
	degree := make([]int, len(names))
	for _, e := range edges {
		degree[e[0]]++
		degree[e[1]]++
	}

	// Scale layout coordinates into a comfortable pixel range.
	const scale = 300
	nodes := make([]opts.GraphNode, len(names))
	for i, name := range names {
		size := 10 + 3*degree[i]
		if size > 40 {
			size = 40
		}
		nodes[i] = opts.GraphNode{
			Name:       name,
			X:          float32(positions[i].X * scale),
			Y:          float32(positions[i].Y * scale),
			SymbolSize: size,
		}
	}

	links := make([]opts.GraphLink, len(edges))
	for i, e := range edges {
		links[i] = opts.GraphLink{
			Source: names[e[0]],
			Target: names[e[1]],
			Value:  float32(weights[i]),
		}
	}

	title := spec.Title
	if title == "" {
		title = "Network Graph"
	}

	fig := &echartsFigure{id: chartID()}
	graph := charts.NewGraph()
	graph.SetGlobalOptions(r.globalOpts(fig.id, title, ChartSpec{Width: spec.Width, Height: spec.Height}, false, "")...)
	graph.AddSeries("network", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{Layout: "none"}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)
	fig.chart = graph
	return fig, nil
}

// ============================================================================
// OUTPUT
// ============================================================================

// ToHTML renders the figure as a self-contained HTML document.
func (r *ECharts) ToHTML(fig Figure) (string, error) {
	ef, err := r.figure(fig, "to html")
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := ef.chart.Render(&buf); err != nil {
		return "", renderErrf("to html", "%v", err)
	}
	return buf.String(), nil
}

// Export writes the figure to path in the given format. HTML needs no
// rendering engine; static formats go through a headless browser.
func (r *ECharts) Export(fig Figure, path string, format Format) error {
	ef, err := r.figure(fig, "export")
	if err != nil {
		return err
	}

	switch format {
	case FormatHTML:
		f, err := os.Create(path)
		if err != nil {
			return renderErrf("export", "%v", err)
		}
		defer f.Close()
		if err := ef.chart.Render(f); err != nil {
			return renderErrf("export", "%v", err)
		}
		return nil
	case FormatPNG, FormatPDF, FormatSVG:
		return r.exportStatic(ef, path, format)
	default:
		return renderErrf("export", "unsupported export format %q", format)
	}
}
