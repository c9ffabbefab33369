package engine

import (
	"strings"
	"testing"

	"github.com/vizier-org/vizier/table"
)

// ============================================================================
// COMPARISON TESTS
// ============================================================================

func amountTable(t *testing.T, ids []any, amounts []any) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.Column{Name: "id", Kind: table.KindNumber, Values: ids},
		table.Column{Name: "amount", Kind: table.KindNumber, Values: amounts},
	)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return tbl
}

func TestCompareDiffs(t *testing.T) {
	a := amountTable(t, []any{1.0, 2.0, 3.0}, []any{100.0, 150.0, 200.0})
	b := amountTable(t, []any{1.0, 2.0, 3.0}, []any{110.0, 150.0, 190.0})

	out, err := Compare(a, b, "id")
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if out.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", out.NumRows())
	}
	diff, ok := out.Column("amount_diff")
	if !ok {
		t.Fatalf("amount_diff missing, columns = %v", out.Names())
	}
	want := []any{10.0, 0.0, -10.0}
	for i, w := range want {
		if diff.Values[i] != w {
			t.Errorf("amount_diff[%d] = %v, want %v", i, diff.Values[i], w)
		}
	}

	// Both sides retained with suffixes.
	if !out.HasColumn("amount_a") || !out.HasColumn("amount_b") {
		t.Errorf("shared column sides missing, columns = %v", out.Names())
	}
}

func TestCompareSymmetryBreaking(t *testing.T) {
	a := amountTable(t, []any{1.0, 2.0}, []any{100.0, 250.0})
	b := amountTable(t, []any{1.0, 2.0}, []any{130.0, 200.0})

	ab, err := Compare(a, b, "id")
	if err != nil {
		t.Fatalf("Compare(a,b) failed: %v", err)
	}
	ba, err := Compare(b, a, "id")
	if err != nil {
		t.Fatalf("Compare(b,a) failed: %v", err)
	}

	dab, _ := ab.Column("amount_diff")
	dba, _ := ba.Column("amount_diff")
	for i := range dab.Values {
		x, _ := table.Number(dab.Values[i])
		y, _ := table.Number(dba.Values[i])
		if x != -y {
			t.Errorf("diff[%d]: %v and %v are not negations", i, x, y)
		}
	}
}

func TestCompareOuterJoinCompleteness(t *testing.T) {
	a := amountTable(t, []any{1.0, 2.0}, []any{100.0, 150.0})
	b := amountTable(t, []any{2.0, 3.0}, []any{150.0, 190.0})

	out, err := Compare(a, b, "id")
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	// Keys 1, 2, 3 each appear exactly once, in first-seen order.
	id, _ := out.Column("id")
	if len(id.Values) != 3 || id.Values[0] != 1.0 || id.Values[1] != 2.0 || id.Values[2] != 3.0 {
		t.Fatalf("keys = %v", id.Values)
	}

	// One-sided rows have nulls on the absent side and a null diff.
	sideB, _ := out.Column("amount_b")
	if sideB.Values[0] != nil {
		t.Errorf("amount_b for a-only key = %v, want null", sideB.Values[0])
	}
	diff, _ := out.Column("amount_diff")
	if diff.Values[0] != nil || diff.Values[2] != nil {
		t.Errorf("one-sided diffs = %v, %v, want nulls", diff.Values[0], diff.Values[2])
	}
	if diff.Values[1] != 0.0 {
		t.Errorf("shared diff = %v, want 0", diff.Values[1])
	}
}

func TestCompareNullPropagation(t *testing.T) {
	a := amountTable(t, []any{1.0, 2.0}, []any{nil, 150.0})
	b := amountTable(t, []any{1.0, 2.0}, []any{110.0, 150.0})

	out, err := Compare(a, b, "id")
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	diff, _ := out.Column("amount_diff")
	if diff.Values[0] != nil {
		t.Errorf("diff over null cell = %v, want null", diff.Values[0])
	}
}

func TestCompareNonNumericShared(t *testing.T) {
	a, _ := table.New(
		table.Column{Name: "id", Kind: table.KindNumber, Values: []any{1.0}},
		table.Column{Name: "region", Kind: table.KindString, Values: []any{"north"}},
		table.Column{Name: "only_a", Kind: table.KindNumber, Values: []any{7.0}},
	)
	b, _ := table.New(
		table.Column{Name: "id", Kind: table.KindNumber, Values: []any{1.0}},
		table.Column{Name: "region", Kind: table.KindString, Values: []any{"south"}},
		table.Column{Name: "only_b", Kind: table.KindString, Values: []any{"z"}},
	)

	out, err := Compare(a, b, "id")
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if got := strings.Join(out.Names(), ","); got != "id,region_a,region_b,only_a,only_b" {
		t.Errorf("columns = %q", got)
	}
	// No diff column for a non-numeric shared column.
	if out.HasColumn("region_diff") {
		t.Error("region_diff should not exist")
	}
	ra, _ := out.Column("region_a")
	rb, _ := out.Column("region_b")
	if ra.Values[0] != "north" || rb.Values[0] != "south" {
		t.Errorf("region sides = %v / %v", ra.Values[0], rb.Values[0])
	}
}

func TestCompareMissingJoinKey(t *testing.T) {
	a := amountTable(t, []any{1.0}, []any{100.0})
	b, _ := table.New(table.Column{Name: "key", Kind: table.KindNumber, Values: []any{1.0}})

	_, err := Compare(a, b, "id")
	assertConfigErr(t, err, "key missing from b")
	_, err = Compare(b, a, "id")
	assertConfigErr(t, err, "key missing from a")
}
