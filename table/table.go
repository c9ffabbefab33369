package table

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ============================================================================
// TABLE — Ordered, typed, in-memory columns
// ============================================================================
// A Table is an ordered sequence of named, typed columns of equal length.
// Rows are implicit: row i is the i-th value of every column.
//
// Tables are treated as immutable values. Transforms in the engine package
// always build a new Table; nothing in this module mutates a Table it did
// not create.
// ============================================================================

// Kind classifies the scalar values a column holds.
type Kind int

const (
	// KindNull marks a column with no non-null values.
	KindNull Kind = iota
	// KindNumber holds float64 values (ints are widened on load).
	KindNumber
	// KindString holds string values.
	KindString
	// KindBool holds bool values.
	KindBool
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Column is a named, typed sequence of scalar values.
// Values are nil (null), float64, string, or bool, matching Kind.
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// Table is an ordered set of same-length columns with unique names.
type Table struct {
	cols   []Column
	byName map[string]int
}

// New builds a Table from columns, validating that all columns share the
// same length and that names are unique.
func New(cols ...Column) (*Table, error) {
	byName := make(map[string]int, len(cols))
	rows := -1
	for i, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		byName[c.Name] = i
		if rows == -1 {
			rows = len(c.Values)
		} else if len(c.Values) != rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", c.Name, len(c.Values), rows)
		}
	}
	return &Table{cols: cols, byName: byName}, nil
}

// NumRows returns the row count (0 for a table with no columns).
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Values)
}

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in table order. The returned slice and the
// value slices inside it must not be mutated.
func (t *Table) Columns() []Column { return t.cols }

// Column returns the named column and whether it exists.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.cols))
	for j, c := range t.cols {
		row[j] = c.Values[i]
	}
	return row
}

// Head returns a new Table with at most n rows.
func (t *Table) Head(n int) *Table {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = Column{Name: c.Name, Kind: c.Kind, Values: c.Values[:n]}
	}
	out, _ := New(cols...)
	return out
}

// Equal reports whether two tables have identical column names, kinds, and
// values. Intended for tests and golden comparisons.
func (t *Table) Equal(other *Table) bool {
	if other == nil || len(t.cols) != len(other.cols) {
		return false
	}
	for i, c := range t.cols {
		o := other.cols[i]
		if c.Name != o.Name || c.Kind != o.Kind || len(c.Values) != len(o.Values) {
			return false
		}
		for j, v := range c.Values {
			if v != o.Values[j] {
				return false
			}
		}
	}
	return true
}

// ============================================================================
// VALUE HELPERS
// ============================================================================

// InferKind classifies a value slice. Null values are ignored; a column of
// only nulls is KindNull; mixed non-null types degrade to KindString.
func InferKind(values []any) Kind {
	kind := KindNull
	for _, v := range values {
		if v == nil {
			continue
		}
		var k Kind
		switch v.(type) {
		case float64, int, int64, json.Number:
			k = KindNumber
		case bool:
			k = KindBool
		default:
			k = KindString
		}
		if kind == KindNull {
			kind = k
		} else if kind != k {
			return KindString
		}
	}
	return kind
}

// Number normalizes a scalar to float64. Returns false for nulls and
// non-numeric values.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Format renders a scalar for display. Nulls render as the empty string;
// numbers drop a trailing ".0" for integral values.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
