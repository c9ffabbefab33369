package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/vizier-org/vizier/table"
)

// ============================================================================
// RESHAPE TESTS
// ============================================================================

// Wide population table: two id columns, three year columns.
func wideTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.Column{Name: "Name", Kind: table.KindString, Values: []any{"Bulgaria", "Denmark"}},
		table.Column{Name: "Code", Kind: table.KindString, Values: []any{"BG", "DK"}},
		table.Column{Name: "2000", Kind: table.KindNumber, Values: []any{8.1, 5.3}},
		table.Column{Name: "2010", Kind: table.KindNumber, Values: []any{7.4, 5.5}},
		table.Column{Name: "2020", Kind: table.KindNumber, Values: []any{7.0, 5.8}},
	)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return tbl
}

func intp(i int) *int { return &i }

func assertConfigErr(t *testing.T, err error, context string) {
	t.Helper()
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("%s: expected *ConfigurationError, got %v", context, err)
	}
}

func TestUnpivotIDMode(t *testing.T) {
	long, err := Unpivot(wideTable(t), UnpivotSpec{
		IDColumns:    []string{"Name", "Code"},
		VariableName: "Year",
		ValueName:    "Population",
	})
	if err != nil {
		t.Fatalf("Unpivot failed: %v", err)
	}

	// Cardinality: rows × value columns.
	if long.NumRows() != 2*3 {
		t.Errorf("rows = %d, want 6", long.NumRows())
	}
	if got := strings.Join(long.Names(), ","); got != "Name,Code,Year,Population" {
		t.Errorf("columns = %q", got)
	}

	// Value columns iterate in input column order.
	year, _ := long.Column("Year")
	if year.Values[0] != "2000" || year.Values[1] != "2010" || year.Values[2] != "2020" {
		t.Errorf("year order = %v", year.Values[:3])
	}
	pop, _ := long.Column("Population")
	if pop.Values[0] != 8.1 || pop.Values[5] != 5.8 {
		t.Errorf("population = %v", pop.Values)
	}
	name, _ := long.Column("Name")
	if name.Values[2] != "Bulgaria" || name.Values[3] != "Denmark" {
		t.Errorf("ids not repeated correctly: %v", name.Values)
	}
}

func TestUnpivotRangeMode(t *testing.T) {
	long, err := Unpivot(wideTable(t), UnpivotSpec{ValueStart: intp(2)})
	if err != nil {
		t.Fatalf("Unpivot failed: %v", err)
	}
	if got := strings.Join(long.Names(), ","); got != "Name,Code,variable,value" {
		t.Errorf("columns = %q", got)
	}
	if long.NumRows() != 6 {
		t.Errorf("rows = %d, want 6", long.NumRows())
	}

	// Bounded range leaves trailing columns as identifiers.
	bounded, err := Unpivot(wideTable(t), UnpivotSpec{ValueStart: intp(2), ValueEnd: intp(4)})
	if err != nil {
		t.Fatalf("Unpivot failed: %v", err)
	}
	if got := strings.Join(bounded.Names(), ","); got != "Name,Code,2020,variable,value" {
		t.Errorf("columns = %q", got)
	}
	if bounded.NumRows() != 4 {
		t.Errorf("rows = %d, want 4", bounded.NumRows())
	}
}

func TestUnpivotRoundTrip(t *testing.T) {
	wide := wideTable(t)
	long, err := Unpivot(wide, UnpivotSpec{IDColumns: []string{"Name", "Code"}})
	if err != nil {
		t.Fatalf("Unpivot failed: %v", err)
	}

	// Re-pivot by (Name, variable) and check every original cell survives.
	name, _ := long.Column("Name")
	variable, _ := long.Column("variable")
	value, _ := long.Column("value")

	recovered := make(map[[2]string]any)
	for i := 0; i < long.NumRows(); i++ {
		recovered[[2]string{name.Values[i].(string), variable.Values[i].(string)}] = value.Values[i]
	}

	origName, _ := wide.Column("Name")
	for _, yearCol := range []string{"2000", "2010", "2020"} {
		col, _ := wide.Column(yearCol)
		for i, want := range col.Values {
			got := recovered[[2]string{origName.Values[i].(string), yearCol}]
			if got != want {
				t.Errorf("cell (%v, %s) = %v, want %v", origName.Values[i], yearCol, got, want)
			}
		}
	}
}

func TestUnpivotModeExclusivity(t *testing.T) {
	_, err := Unpivot(wideTable(t), UnpivotSpec{})
	assertConfigErr(t, err, "neither mode")

	_, err = Unpivot(wideTable(t), UnpivotSpec{IDColumns: []string{"Name"}, ValueStart: intp(2)})
	assertConfigErr(t, err, "both modes")
}

func TestUnpivotValidation(t *testing.T) {
	_, err := Unpivot(wideTable(t), UnpivotSpec{IDColumns: []string{"Missing"}})
	assertConfigErr(t, err, "unknown id column")

	_, err = Unpivot(wideTable(t), UnpivotSpec{ValueStart: intp(2), ValueEnd: intp(9)})
	assertConfigErr(t, err, "range out of bounds")

	_, err = Unpivot(wideTable(t), UnpivotSpec{ValueStart: intp(3), ValueEnd: intp(3)})
	assertConfigErr(t, err, "empty range")
}

func TestApplyLookup(t *testing.T) {
	main, _ := table.New(
		table.Column{Name: "Code", Kind: table.KindString, Values: []any{"BG", "DK", "XX"}},
		table.Column{Name: "Value", Kind: table.KindNumber, Values: []any{1.0, 2.0, 3.0}},
	)
	lookup, _ := table.New(
		table.Column{Name: "code", Kind: table.KindString, Values: []any{"BG", "DK"}},
		table.Column{Name: "label", Kind: table.KindString, Values: []any{"Bulgaria", "Denmark"}},
	)

	out, err := ApplyLookup(main, lookup, "Code", "code", "label")
	if err != nil {
		t.Fatalf("ApplyLookup failed: %v", err)
	}

	code, _ := out.Column("Code")
	if code.Values[0] != "Bulgaria" || code.Values[1] != "Denmark" {
		t.Errorf("labels not applied: %v", code.Values)
	}
	// Unmatched values are preserved, never nulled.
	if code.Values[2] != "XX" {
		t.Errorf("unmatched value = %v, want XX", code.Values[2])
	}

	// Input table untouched.
	origCode, _ := main.Column("Code")
	if origCode.Values[0] != "BG" {
		t.Error("ApplyLookup mutated its input")
	}
}

func TestApplyLookupMissingColumns(t *testing.T) {
	main, _ := table.New(table.Column{Name: "a", Kind: table.KindString, Values: []any{"x"}})
	lookup, _ := table.New(
		table.Column{Name: "code", Kind: table.KindString, Values: []any{"x"}},
		table.Column{Name: "label", Kind: table.KindString, Values: []any{"X"}},
	)

	_, err := ApplyLookup(main, lookup, "missing", "code", "label")
	assertConfigErr(t, err, "missing source column")
	_, err = ApplyLookup(main, lookup, "a", "nope", "label")
	assertConfigErr(t, err, "missing code column")
	_, err = ApplyLookup(main, lookup, "a", "code", "nope")
	assertConfigErr(t, err, "missing label column")
}

func TestFilterExcludeComplementarity(t *testing.T) {
	tbl, _ := table.New(
		table.Column{Name: "country", Kind: table.KindString, Values: []any{"BG", "DE", "DK", "FR", "BG"}},
		table.Column{Name: "value", Kind: table.KindNumber, Values: []any{1.0, 2.0, 3.0, 4.0, 5.0}},
	)
	values := []any{"BG", "DK"}

	kept, err := Filter(tbl, "country", values)
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	dropped, err := Exclude(tbl, "country", values)
	if err != nil {
		t.Fatalf("Exclude failed: %v", err)
	}

	if kept.NumRows() != 3 || dropped.NumRows() != 2 {
		t.Errorf("partition = %d + %d, want 3 + 2", kept.NumRows(), dropped.NumRows())
	}
	if kept.NumRows()+dropped.NumRows() != tbl.NumRows() {
		t.Error("filter and exclude must partition the rows")
	}
}

func TestFilterNumericNativeComparison(t *testing.T) {
	tbl, _ := table.New(
		table.Column{Name: "year", Kind: table.KindNumber, Values: []any{2019.0, 2020.0, 2021.0}},
	)

	out, err := Filter(tbl, "year", []any{2020.0})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if out.NumRows() != 1 {
		t.Errorf("rows = %d, want 1", out.NumRows())
	}

	// String literals do not match a numeric column.
	out, err = Filter(tbl, "year", []any{"2020"})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if out.NumRows() != 0 {
		t.Errorf("string literal matched numeric column: %d rows", out.NumRows())
	}
}

func TestFilterUnknownColumn(t *testing.T) {
	tbl, _ := table.New(table.Column{Name: "a", Kind: table.KindString, Values: []any{"x"}})
	_, err := Filter(tbl, "nope", []any{"x"})
	assertConfigErr(t, err, "filter unknown column")
	_, err = Exclude(tbl, "nope", []any{"x"})
	assertConfigErr(t, err, "exclude unknown column")
}

func TestDropColumns(t *testing.T) {
	tbl := wideTable(t)

	out, err := DropColumns(tbl, []string{"2000", "2010"})
	if err != nil {
		t.Fatalf("DropColumns failed: %v", err)
	}
	if got := strings.Join(out.Names(), ","); got != "Name,Code,2020" {
		t.Errorf("columns = %q", got)
	}

	// Strict: an absent name always fails, never silently succeeds.
	_, err = DropColumns(tbl, []string{"2020", "Total"})
	assertConfigErr(t, err, "drop absent column")
}

func TestCoerceValues(t *testing.T) {
	vals, err := CoerceValues(table.KindNumber, []string{"2020", "3.5"})
	if err != nil {
		t.Fatalf("CoerceValues failed: %v", err)
	}
	if vals[0] != 2020.0 || vals[1] != 3.5 {
		t.Errorf("coerced = %v", vals)
	}

	_, err = CoerceValues(table.KindNumber, []string{"abc"})
	assertConfigErr(t, err, "non-numeric literal")

	vals, err = CoerceValues(table.KindBool, []string{"true"})
	if err != nil || vals[0] != true {
		t.Errorf("bool coercion = %v, %v", vals, err)
	}

	vals, err = CoerceValues(table.KindString, []string{"x"})
	if err != nil || vals[0] != "x" {
		t.Errorf("string coercion = %v, %v", vals, err)
	}
}
