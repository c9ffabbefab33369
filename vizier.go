// Package vizier provides an in-memory tabular transform pipeline with
// pluggable chart rendering.
//
// Usage:
//
//	import (
//	    "github.com/vizier-org/vizier/engine"
//	    "github.com/vizier-org/vizier/loader"
//	    "github.com/vizier-org/vizier/render"
//	)
//
//	a, _ := loader.Load("before.csv")
//	b, _ := loader.Load("after.csv")
//	diff, _ := engine.Compare(a, b, "id")
//
//	r, _ := render.Get("echarts")
//	fig, _ := r.CreateChart(diff, render.ChartSpec{
//	    Type: render.ChartBar, X: "id", Y: []string{"amount_diff"},
//	})
//	_ = r.Export(fig, "diff.html", render.FormatHTML)
//
// Every transform is a single-shot, synchronous function over a bounded
// table; tables are treated as immutable values and each step returns a new
// one. Rendering backends are resolved by name through a registry so
// callers never depend on a concrete charting library.
//
// The CLI (cmd/vizier) and the web form (internal/web) are thin adapters
// over this pipeline.
package vizier
