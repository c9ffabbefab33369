package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/vizier-org/vizier/table"
)

// ============================================================================
// TABULAR LOADER — Extension-dispatched parsing into table.Table
// ============================================================================
// Load reads CSV, JSON, or Parquet based on the file extension and infers
// per-column types the way the underlying format does: CSV by scanning cell
// text, JSON by native value types, Parquet by its column schema.
//
// Failures are all-or-nothing: a parse error yields a *LoadError and no
// table; an unknown extension yields an *UnsupportedFormatError.
// ============================================================================

// Load reads the file at path into a Table.
func Load(path string) (*table.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadWith(path, parseCSV)
	case ".json":
		return loadWith(path, parseJSON)
	case ".parquet":
		return loadParquetFile(path)
	default:
		return nil, &UnsupportedFormatError{Path: path}
	}
}

// LoadReader reads an already-open source (e.g. an uploaded file) into a
// Table. The name is used only for format detection and error reporting.
func LoadReader(r io.Reader, name string) (*table.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		t, err := parseCSV(data)
		return wrapParse(name, t, err)
	case ".json":
		t, err := parseJSON(data)
		return wrapParse(name, t, err)
	case ".parquet":
		t, err := parseParquet(bytes.NewReader(data))
		return wrapParse(name, t, err)
	default:
		return nil, &UnsupportedFormatError{Path: name}
	}
}

func loadWith(path string, parse func([]byte) (*table.Table, error)) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	t, err := parse(data)
	return wrapParse(path, t, err)
}

func wrapParse(path string, t *table.Table, err error) (*table.Table, error) {
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return t, nil
}

// ============================================================================
// CSV — header row + per-column text inference
// ============================================================================

func parseCSV(data []byte) (*table.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse csv")
	}
	if len(records) == 0 {
		return nil, errors.New("parse csv: missing header row")
	}

	headers := records[0]
	rows := records[1:]

	cols := make([]table.Column, len(headers))
	for i, name := range headers {
		cells := make([]string, len(rows))
		for j, row := range rows {
			cells[j] = strings.TrimSpace(row[i])
		}
		cols[i] = inferCSVColumn(strings.TrimSpace(name), cells)
	}
	return table.New(cols...)
}

// inferCSVColumn classifies a column by scanning every non-empty cell.
// All-numeric → number, all true/false → bool, otherwise string.
// Empty cells become nulls regardless of kind.
func inferCSVColumn(name string, cells []string) table.Column {
	kind := table.KindNull
	for _, c := range cells {
		if c == "" {
			continue
		}
		k := table.KindString
		if _, err := strconv.ParseFloat(c, 64); err == nil {
			k = table.KindNumber
		} else if c == "true" || c == "false" {
			k = table.KindBool
		}
		if kind == table.KindNull {
			kind = k
		} else if kind != k {
			kind = table.KindString
			break
		}
	}

	values := make([]any, len(cells))
	for i, c := range cells {
		if c == "" {
			continue
		}
		switch kind {
		case table.KindNumber:
			f, _ := strconv.ParseFloat(c, 64)
			values[i] = f
		case table.KindBool:
			values[i] = c == "true"
		default:
			values[i] = c
		}
	}
	return table.Column{Name: name, Kind: kind, Values: values}
}

// ============================================================================
// JSON — top-level array of flat objects
// ============================================================================

// parseJSON reads a top-level array of objects. Column order follows the
// key order of the objects as encountered; keys missing from a row become
// nulls. Nested objects and arrays are rejected.
func parseJSON(data []byte) (*table.Table, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse json: expected a top-level array of objects")
	}

	var keys []string
	seen := make(map[string]bool)
	rows := make([]map[string]any, 0, len(raw))

	for i, msg := range raw {
		row, rowKeys, err := decodeObject(msg)
		if err != nil {
			return nil, errors.Wrapf(err, "parse json: row %d", i)
		}
		for _, k := range rowKeys {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
		rows = append(rows, row)
	}

	cols := make([]table.Column, len(keys))
	for i, key := range keys {
		values := make([]any, len(rows))
		for j, row := range rows {
			values[j] = row[key]
		}
		values = normalizeNumbers(values)
		kind := table.InferKind(values)
		if kind == table.KindString {
			// Mixed-type columns degrade to string; keep values consistent.
			for j, v := range values {
				if v != nil {
					values[j] = table.Format(v)
				}
			}
		}
		cols[i] = table.Column{Name: key, Kind: kind, Values: values}
	}
	return table.New(cols...)
}

// decodeObject walks one object's token stream so key order is preserved
// (encoding/json maps lose it).
func decodeObject(msg json.RawMessage) (map[string]any, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.New("expected an object")
	}

	row := make(map[string]any)
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key := tok.(string)

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		switch v.(type) {
		case map[string]any, []any:
			return nil, nil, errors.Errorf("key %q: nested values are not supported", key)
		}
		keys = append(keys, key)
		row[key] = v
	}
	return row, keys, nil
}

// normalizeNumbers widens json.Number to float64 in place-of copies.
func normalizeNumbers(values []any) []any {
	for i, v := range values {
		if n, ok := v.(json.Number); ok {
			f, err := n.Float64()
			if err == nil {
				values[i] = f
			} else {
				values[i] = n.String()
			}
		}
	}
	return values
}
