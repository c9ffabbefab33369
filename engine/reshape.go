package engine

import (
	"strconv"

	"github.com/vizier-org/vizier/table"
)

// ============================================================================
// RESHAPE ENGINE — pure wide/long and row/column transforms
// ============================================================================
// Every function takes a Table and returns a new Table; inputs are never
// mutated. All failures are *ConfigurationError — no partial results.
// ============================================================================

// UnpivotSpec selects which columns to melt. Exactly one mode must be used:
// either IDColumns (all other columns become value columns) or
// ValueStart/ValueEnd (a contiguous index range of value columns, all other
// columns become identifiers). ValueEnd is exclusive and defaults to the
// column count when nil.
type UnpivotSpec struct {
	IDColumns  []string
	ValueStart *int
	ValueEnd   *int

	// VariableName and ValueName name the two long-format output columns.
	// They default to "variable" and "value".
	VariableName string
	ValueName    string
}

// Unpivot transforms a wide table to long format: one output row per
// (input row × value column), with identifier columns repeated, the value
// column's name in the variable column and its cell in the value column.
// Value columns iterate in input column order.
func Unpivot(t *table.Table, spec UnpivotSpec) (*table.Table, error) {
	hasIDs := len(spec.IDColumns) > 0
	hasRange := spec.ValueStart != nil
	if hasIDs == hasRange {
		return nil, configErrf("unpivot", "exactly one of id columns or a value column range must be given")
	}

	names := t.Names()
	isValue := make(map[string]bool, len(names))

	if hasRange {
		start := *spec.ValueStart
		end := len(names)
		if spec.ValueEnd != nil {
			end = *spec.ValueEnd
		}
		if start < 0 || end > len(names) {
			return nil, configErrf("unpivot", "column indices out of range, table has %d columns", len(names))
		}
		if start >= end {
			return nil, configErrf("unpivot", "value column start %d must be less than end %d", start, end)
		}
		for _, name := range names[start:end] {
			isValue[name] = true
		}
	} else {
		ids := make(map[string]bool, len(spec.IDColumns))
		for _, name := range spec.IDColumns {
			if !t.HasColumn(name) {
				return nil, configErrf("unpivot", "id column %q does not exist", name)
			}
			ids[name] = true
		}
		for _, name := range names {
			if !ids[name] {
				isValue[name] = true
			}
		}
	}

	variableName := spec.VariableName
	if variableName == "" {
		variableName = "variable"
	}
	valueName := spec.ValueName
	if valueName == "" {
		valueName = "value"
	}

	var idCols, valueCols []table.Column
	for _, c := range t.Columns() {
		if isValue[c.Name] {
			valueCols = append(valueCols, c)
		} else {
			idCols = append(idCols, c)
		}
	}

	rows := t.NumRows()
	outRows := rows * len(valueCols)

	out := make([]table.Column, 0, len(idCols)+2)
	for _, c := range idCols {
		values := make([]any, 0, outRows)
		for _, v := range c.Values {
			for range valueCols {
				values = append(values, v)
			}
		}
		out = append(out, table.Column{Name: c.Name, Kind: c.Kind, Values: values})
	}

	variables := make([]any, 0, outRows)
	values := make([]any, 0, outRows)
	for i := 0; i < rows; i++ {
		for _, c := range valueCols {
			variables = append(variables, c.Name)
			values = append(values, c.Values[i])
		}
	}
	out = append(out,
		table.Column{Name: variableName, Kind: table.KindString, Values: variables},
		table.Column{Name: valueName, Kind: table.InferKind(values), Values: values},
	)
	return table.New(out...)
}

// ApplyLookup replaces values of sourceCol with labels from a side table,
// matching codeCol against the source value. Left-join semantics: values
// with no match are preserved unchanged rather than nulled, so a partial
// lookup table degrades gracefully instead of losing data.
func ApplyLookup(t, lookup *table.Table, sourceCol, codeCol, labelCol string) (*table.Table, error) {
	src, ok := t.Column(sourceCol)
	if !ok {
		return nil, configErrf("lookup", "source column %q does not exist", sourceCol)
	}
	codes, ok := lookup.Column(codeCol)
	if !ok {
		return nil, configErrf("lookup", "code column %q does not exist in lookup table", codeCol)
	}
	labels, ok := lookup.Column(labelCol)
	if !ok {
		return nil, configErrf("lookup", "label column %q does not exist in lookup table", labelCol)
	}

	// First match wins for duplicate codes.
	mapping := make(map[any]any, len(codes.Values))
	for i, code := range codes.Values {
		key := matchKey(code)
		if _, seen := mapping[key]; !seen {
			mapping[key] = labels.Values[i]
		}
	}

	replaced := make([]any, len(src.Values))
	for i, v := range src.Values {
		if label, ok := mapping[matchKey(v)]; ok {
			replaced[i] = label
		} else {
			replaced[i] = v
		}
	}

	cols := make([]table.Column, 0, t.NumCols())
	for _, c := range t.Columns() {
		if c.Name == sourceCol {
			cols = append(cols, table.Column{Name: c.Name, Kind: table.InferKind(replaced), Values: replaced})
		} else {
			cols = append(cols, c)
		}
	}
	return table.New(cols...)
}

// Filter keeps only the rows whose column value is a member of values.
func Filter(t *table.Table, column string, values []any) (*table.Table, error) {
	return filterRows(t, "filter", column, values, true)
}

// Exclude removes the rows whose column value is a member of values.
func Exclude(t *table.Table, column string, values []any) (*table.Table, error) {
	return filterRows(t, "exclude", column, values, false)
}

func filterRows(t *table.Table, op, column string, values []any, keep bool) (*table.Table, error) {
	col, ok := t.Column(column)
	if !ok {
		return nil, configErrf(op, "column %q does not exist", column)
	}

	set := make(map[any]bool, len(values))
	for _, v := range values {
		set[matchKey(v)] = true
	}

	indices := make([]int, 0, len(col.Values))
	for i, v := range col.Values {
		if set[matchKey(v)] == keep {
			indices = append(indices, i)
		}
	}
	return selectRows(t, indices), nil
}

// DropColumns removes the named columns. Strict by design: naming an absent
// column fails rather than silently skipping it.
func DropColumns(t *table.Table, columns []string) (*table.Table, error) {
	drop := make(map[string]bool, len(columns))
	for _, name := range columns {
		if !t.HasColumn(name) {
			return nil, configErrf("drop", "column %q does not exist", name)
		}
		drop[name] = true
	}

	cols := make([]table.Column, 0, t.NumCols()-len(drop))
	for _, c := range t.Columns() {
		if !drop[c.Name] {
			cols = append(cols, c)
		}
	}
	return table.New(cols...)
}

// CoerceValues converts raw string literals (as supplied by a CLI flag) to
// the column kind they will be matched against, so numeric columns compare
// as numbers rather than text.
func CoerceValues(kind table.Kind, raw []string) ([]any, error) {
	values := make([]any, len(raw))
	for i, s := range raw {
		switch kind {
		case table.KindNumber:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, configErrf("filter", "value %q is not numeric", s)
			}
			values[i] = f
		case table.KindBool:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, configErrf("filter", "value %q is not a bool", s)
			}
			values[i] = b
		default:
			values[i] = s
		}
	}
	return values, nil
}

// ============================================================================
// SHARED HELPERS
// ============================================================================

// matchKey normalizes a scalar for map-based equality: every numeric
// representation collapses to float64 so 2, 2.0 and int64(2) match.
func matchKey(v any) any {
	if f, ok := table.Number(v); ok {
		return f
	}
	return v
}

// selectRows builds a new table containing only the given row indices.
func selectRows(t *table.Table, indices []int) *table.Table {
	cols := make([]table.Column, t.NumCols())
	for i, c := range t.Columns() {
		values := make([]any, len(indices))
		for j, idx := range indices {
			values[j] = c.Values[idx]
		}
		cols[i] = table.Column{Name: c.Name, Kind: c.Kind, Values: values}
	}
	out, _ := table.New(cols...)
	return out
}
