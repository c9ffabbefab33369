package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vizier-org/vizier/internal/config"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	return NewServer(cfg)
}

// multipartBody assembles files (field → csv content, uploaded as <field>.csv)
// and plain form fields into a request body.
func multipartBody(t *testing.T, files, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, content := range files {
		fw, err := w.CreateFormFile(field, field+".csv")
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("writing form file: %v", err)
		}
	}
	for field, value := range fields {
		if err := w.WriteField(field, value); err != nil {
			t.Fatalf("writing form field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func post(t *testing.T, s *Server, path string, files, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, files, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleRenderers(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/renderers", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Renderers []string `json:"renderers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	found := false
	for _, name := range body.Renderers {
		if name == "echarts" {
			found = true
		}
	}
	if !found {
		t.Errorf("renderers = %v, want echarts included", body.Renderers)
	}
}

func TestHandleCompare(t *testing.T) {
	s := testServer(t)
	rec := post(t, s, "/api/compare",
		map[string]string{
			"a": "id,sales\nx,100\ny,200\n",
			"b": "id,sales\nx,110\nz,50\n",
		},
		map[string]string{"key": "id"},
	)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Rows    int `json:"rows"`
		Columns []struct {
			Name   string `json:"name"`
			Values []any  `json:"values"`
		} `json:"columns"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Rows != 3 {
		t.Errorf("rows = %d, want 3 (outer join of x,y,z)", body.Rows)
	}
	var names []string
	for _, c := range body.Columns {
		names = append(names, c.Name)
	}
	want := "id,sales_a,sales_b,sales_diff"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("columns = %s, want %s", got, want)
	}
}

func TestHandleCompareMissingKey(t *testing.T) {
	s := testServer(t)
	rec := post(t, s, "/api/compare",
		map[string]string{"a": "id\nx\n", "b": "id\nx\n"},
		nil,
	)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCompareMissingFile(t *testing.T) {
	s := testServer(t)
	rec := post(t, s, "/api/compare",
		map[string]string{"a": "id\nx\n"},
		map[string]string{"key": "id"},
	)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleChart(t *testing.T) {
	s := testServer(t)
	rec := post(t, s, "/api/chart",
		map[string]string{"data": "year,sales\n2020,100\n2021,120\n"},
		map[string]string{"type": "bar", "x": "year", "y": "sales", "title": "Sales"},
	)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	html := rec.Body.String()
	if !strings.Contains(html, "echarts") || !strings.Contains(html, "Sales") {
		t.Error("chart response does not look like a rendered figure")
	}
}

func TestHandleChartBadColumn(t *testing.T) {
	s := testServer(t)
	rec := post(t, s, "/api/chart",
		map[string]string{"data": "year,sales\n2020,100\n"},
		map[string]string{"type": "bar", "x": "nope", "y": "sales"},
	)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestHandleChartUnknownRenderer(t *testing.T) {
	s := testServer(t)
	rec := post(t, s, "/api/chart",
		map[string]string{"data": "year,sales\n2020,100\n"},
		map[string]string{"type": "bar", "x": "year", "y": "sales", "renderer": "plotly"},
	)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleNetwork(t *testing.T) {
	s := testServer(t)
	rec := post(t, s, "/api/network",
		map[string]string{"data": "source,target\na,b\nb,c\n"},
		map[string]string{"layout": "circular"},
	)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "echarts") {
		t.Error("network response does not look like a rendered figure")
	}
}

func TestHandleNetworkUnknownLayout(t *testing.T) {
	s := testServer(t)
	rec := post(t, s, "/api/network",
		map[string]string{"data": "source,target\na,b\n"},
		map[string]string{"layout": "volcano"},
	)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestIndexPage(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "vizier") {
		t.Error("index page missing application name")
	}
}
