package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vizier-org/vizier/engine"
	"github.com/vizier-org/vizier/internal/config"
	"github.com/vizier-org/vizier/internal/logging"
	"github.com/vizier-org/vizier/internal/web"
	"github.com/vizier-org/vizier/loader"
	"github.com/vizier-org/vizier/render"
	"github.com/vizier-org/vizier/render/layout"
	"github.com/vizier-org/vizier/table"
)

func fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	os.Exit(1)
}

func getString(cmd *cobra.Command, name string) string {
	result, _ := cmd.Flags().GetString(name)
	return result
}

func getStringSlice(cmd *cobra.Command, name string) []string {
	result, _ := cmd.Flags().GetStringSlice(name)
	return result
}

func getInt(cmd *cobra.Command, name string) int {
	result, _ := cmd.Flags().GetInt(name)
	return result
}

// loadTable reads a data file and runs it through the reshape flags shared
// by the data commands.
func loadTable(cmd *cobra.Command, path string) (*table.Table, error) {
	t, err := loader.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return applyReshape(cmd, t)
}

// applyReshape runs the optional pre-processing pipeline in a fixed order:
// unpivot, lookup, filter, exclude, drop.
func applyReshape(cmd *cobra.Command, t *table.Table) (*table.Table, error) {
	var err error

	idCols := getStringSlice(cmd, "id-cols")
	if len(idCols) > 0 || cmd.Flags().Changed("value-start") || cmd.Flags().Changed("value-end") {
		spec := engine.UnpivotSpec{
			IDColumns:    idCols,
			VariableName: getString(cmd, "var-name"),
			ValueName:    getString(cmd, "value-name"),
		}
		if cmd.Flags().Changed("value-start") {
			v := getInt(cmd, "value-start")
			spec.ValueStart = &v
		}
		if cmd.Flags().Changed("value-end") {
			v := getInt(cmd, "value-end")
			spec.ValueEnd = &v
		}
		if t, err = engine.Unpivot(t, spec); err != nil {
			return nil, err
		}
	}

	if lookupFile := getString(cmd, "lookup-file"); lookupFile != "" {
		lookup, err := loader.Load(lookupFile)
		if err != nil {
			return nil, errors.Wrapf(err, "loading lookup table %s", lookupFile)
		}
		t, err = engine.ApplyLookup(t, lookup,
			getString(cmd, "lookup-source"),
			getString(cmd, "lookup-code"),
			getString(cmd, "lookup-label"))
		if err != nil {
			return nil, err
		}
	}

	if spec := getString(cmd, "filter"); spec != "" {
		column, values, err := parseRowSpec(t, spec)
		if err != nil {
			return nil, err
		}
		if t, err = engine.Filter(t, column, values); err != nil {
			return nil, err
		}
	}
	if spec := getString(cmd, "exclude"); spec != "" {
		column, values, err := parseRowSpec(t, spec)
		if err != nil {
			return nil, err
		}
		if t, err = engine.Exclude(t, column, values); err != nil {
			return nil, err
		}
	}

	if drop := getStringSlice(cmd, "drop-columns"); len(drop) > 0 {
		if t, err = engine.DropColumns(t, drop); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// parseRowSpec splits a column=v1,v2 flag value and coerces the values to
// the column's kind so numeric filters match numeric cells.
func parseRowSpec(t *table.Table, spec string) (string, []any, error) {
	column, raw, ok := strings.Cut(spec, "=")
	if !ok {
		return "", nil, errors.Errorf("row spec %q is not column=value,...", spec)
	}
	col, exists := t.Column(column)
	if !exists {
		return "", nil, errors.Errorf("column %q does not exist", column)
	}
	values, err := engine.CoerceValues(col.Kind, strings.Split(raw, ","))
	if err != nil {
		return "", nil, err
	}
	return column, values, nil
}

func outputWriter(cmd *cobra.Command) (*os.File, func()) {
	path := getString(cmd, "output")
	if path == "" {
		return os.Stdout, func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		fatal("creating output file: %v", err)
	}
	return f, func() { f.Close() }
}

func writeTableCSV(w *os.File, t *table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return err
	}
	record := make([]string, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, v := range t.Row(i) {
			record[j] = table.Format(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeTableJSON(w *os.File, t *table.Table) error {
	type column struct {
		Name   string `json:"name"`
		Kind   string `json:"kind"`
		Values []any  `json:"values"`
	}
	out := struct {
		Rows    int      `json:"rows"`
		Columns []column `json:"columns"`
	}{Rows: t.NumRows()}
	for _, c := range t.Columns() {
		out.Columns = append(out.Columns, column{Name: c.Name, Kind: c.Kind.String(), Values: c.Values})
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(out)
}

// exportFigure writes a figure per the --output flag; no flag means HTML on
// stdout.
func exportFigure(cmd *cobra.Command, renderer render.Renderer, fig render.Figure) {
	path := getString(cmd, "output")
	if path == "" {
		html, err := renderer.ToHTML(fig)
		if err != nil {
			fatal("%v", err)
		}
		fmt.Print(html)
		return
	}
	format, err := render.FormatForPath(path)
	if err != nil {
		fatal("%v", err)
	}
	if err := renderer.Export(fig, path, format); err != nil {
		fatal("%v", err)
	}
}

func getRenderer(cmd *cobra.Command) render.Renderer {
	name := getString(cmd, "renderer")
	renderer, err := render.Get(name)
	if err != nil {
		fatal("%v", err)
	}
	return renderer
}

// ============================================================================
// COMMANDS
// ============================================================================

func runCompare(cmd *cobra.Command, args []string) {
	a, err := loadTable(cmd, args[0])
	if err != nil {
		fatal("%v", err)
	}
	b, err := loadTable(cmd, args[1])
	if err != nil {
		fatal("%v", err)
	}

	result, err := engine.Compare(a, b, getString(cmd, "key"))
	if err != nil {
		fatal("%v", err)
	}

	w, closeOutput := outputWriter(cmd)
	defer closeOutput()
	switch format := getString(cmd, "format"); format {
	case "csv":
		err = writeTableCSV(w, result)
	case "json":
		err = writeTableJSON(w, result)
	default:
		fatal("unknown output format %q (use csv or json)", format)
	}
	if err != nil {
		fatal("writing output: %v", err)
	}
}

func runChart(cmd *cobra.Command, args []string) {
	t, err := loadTable(cmd, args[0])
	if err != nil {
		fatal("%v", err)
	}

	chartType, err := render.ParseChartType(getString(cmd, "type"))
	if err != nil {
		fatal("%v", err)
	}
	spec := render.ChartSpec{
		Type:   chartType,
		X:      getString(cmd, "x"),
		Y:      getStringSlice(cmd, "y"),
		Color:  getString(cmd, "color"),
		Facets: getStringSlice(cmd, "facets"),
		Title:  getString(cmd, "title"),
		Width:  getInt(cmd, "width"),
		Height: getInt(cmd, "height"),
	}

	renderer := getRenderer(cmd)
	fig, err := renderer.CreateChart(t, spec)
	if err != nil {
		fatal("%v", err)
	}
	exportFigure(cmd, renderer, fig)
}

func runNetwork(cmd *cobra.Command, args []string) {
	t, err := loadTable(cmd, args[0])
	if err != nil {
		fatal("%v", err)
	}

	alg, ok := layout.Parse(getString(cmd, "layout"))
	if !ok {
		fatal("unknown layout %q (use spring, circular, shell, grid or random)", getString(cmd, "layout"))
	}
	spec := render.NetworkSpec{
		Source: getString(cmd, "source"),
		Target: getString(cmd, "target"),
		Weight: getString(cmd, "weight"),
		Title:  getString(cmd, "title"),
		Layout: alg,
		Width:  getInt(cmd, "width"),
		Height: getInt(cmd, "height"),
	}

	renderer := getRenderer(cmd)
	fig, err := renderer.CreateNetwork(t, spec)
	if err != nil {
		fatal("%v", err)
	}
	exportFigure(cmd, renderer, fig)
}

func runRenderers(cmd *cobra.Command, args []string) {
	for _, name := range render.Names() {
		fmt.Println(name)
	}
}

func runServe(cmd *cobra.Command, args []string) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	srv := web.NewServer(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe() }()

	slog.Info("server listening", "addr", cfg.Server.Addr)
	select {
	case err := <-done:
		fatal("server: %v", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fatal("shutdown: %v", err)
	}
}
