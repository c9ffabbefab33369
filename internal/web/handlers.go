package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/vizier-org/vizier/engine"
	"github.com/vizier-org/vizier/internal/logging"
	"github.com/vizier-org/vizier/loader"
	"github.com/vizier-org/vizier/render"
	"github.com/vizier-org/vizier/render/layout"
	"github.com/vizier-org/vizier/table"
)

const indexPage = `<!DOCTYPE html>
<html>
<head><title>vizier</title></head>
<body>
<h1>vizier</h1>
<p>Tabular data comparison and charting.</p>
<ul>
<li>POST /api/compare — files "a", "b", field "key"; returns the diff table as JSON</li>
<li>POST /api/chart — file "data", fields "type", "x", "y", "color", "facets", "title"; returns HTML</li>
<li>POST /api/network — file "data", fields "source", "target", "weight", "layout", "title"; returns HTML</li>
<li>GET /api/renderers — registered rendering backends</li>
</ul>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

func (s *Server) handleRenderers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"renderers": render.Names()})
}

// loadUpload reads one named multipart file into a table. The request body
// must already be parsed.
func (s *Server) loadUpload(r *http.Request, field string) (*table.Table, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, badRequestf("missing file field %q", field)
	}
	defer file.Close()
	return loader.LoadReader(file, header.Filename)
}

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxFileSize); err != nil {
		return badRequestf("parsing upload: %v", err)
	}
	return nil
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		s.respondError(w, r, err)
		return
	}

	key := r.FormValue("key")
	if key == "" {
		s.respondError(w, r, badRequestf("missing form field %q", "key"))
		return
	}

	a, err := s.loadUpload(r, "a")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	b, err := s.loadUpload(r, "b")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := engine.Compare(a, b, key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("compared tables",
		"key", key, "rows", result.NumRows(), "cols", result.NumCols())
	respondJSON(w, http.StatusOK, tableJSON(result))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		s.respondError(w, r, err)
		return
	}

	t, err := s.loadUpload(r, "data")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	chartType, err := render.ParseChartType(formDefault(r, "type", "bar"))
	if err != nil {
		s.respondError(w, r, badRequestf("%v", err))
		return
	}
	spec := render.ChartSpec{
		Type:   chartType,
		X:      r.FormValue("x"),
		Y:      splitList(r.FormValue("y")),
		Color:  r.FormValue("color"),
		Facets: splitList(r.FormValue("facets")),
		Title:  r.FormValue("title"),
		Width:  formInt(r, "width"),
		Height: formInt(r, "height"),
	}

	renderer, err := render.Get(formDefault(r, "renderer", s.cfg.Render.DefaultRenderer))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	fig, err := renderer.CreateChart(t, spec)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	html, err := renderer.ToHTML(fig)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("rendered chart", "type", spec.Type, "x", spec.X)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		s.respondError(w, r, err)
		return
	}

	t, err := s.loadUpload(r, "data")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	alg, ok := layout.Parse(formDefault(r, "layout", string(layout.Spring)))
	if !ok {
		s.respondError(w, r, badRequestf("unknown layout %q", r.FormValue("layout")))
		return
	}
	spec := render.NetworkSpec{
		Source: formDefault(r, "source", "source"),
		Target: formDefault(r, "target", "target"),
		Weight: r.FormValue("weight"),
		Title:  r.FormValue("title"),
		Layout: alg,
		Width:  formInt(r, "width"),
		Height: formInt(r, "height"),
	}

	renderer, err := render.Get(formDefault(r, "renderer", s.cfg.Render.DefaultRenderer))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	fig, err := renderer.CreateNetwork(t, spec)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	html, err := renderer.ToHTML(fig)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("rendered network",
		"source", spec.Source, "target", spec.Target, "layout", spec.Layout)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

// tableJSON shapes a table as ordered column records; a plain map would
// scramble column order.
func tableJSON(t *table.Table) map[string]any {
	cols := make([]map[string]any, 0, t.NumCols())
	for _, c := range t.Columns() {
		cols = append(cols, map[string]any{
			"name":   c.Name,
			"kind":   c.Kind.String(),
			"values": c.Values,
		})
	}
	return map[string]any{
		"rows":    t.NumRows(),
		"columns": cols,
	}
}

func formDefault(r *http.Request, field, fallback string) string {
	if v := r.FormValue(field); v != "" {
		return v
	}
	return fallback
}

func formInt(r *http.Request, field string) int {
	n, err := strconv.Atoi(r.FormValue(field))
	if err != nil {
		return 0
	}
	return n
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
