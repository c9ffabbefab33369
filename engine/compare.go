package engine

import (
	"github.com/vizier-org/vizier/table"
)

// ============================================================================
// COMPARISON ENGINE — outer join + per-numeric-column deltas
// ============================================================================

// Compare outer-joins two tables on joinKey and derives a `<col>_diff`
// column (b minus a) for every numeric column the inputs share.
//
// Output shape:
//   - one row per distinct key value, in first-seen order (a's keys, then
//     keys only in b); for repeated keys the first occurrence on each side
//     is used
//   - shared non-key columns are kept from both sides as `<col>_a` /
//     `<col>_b`; one-sided columns keep their name and are null for rows
//     originating from the other side
//   - diffs are null whenever either side is missing for that key
func Compare(a, b *table.Table, joinKey string) (*table.Table, error) {
	keyA, ok := a.Column(joinKey)
	if !ok {
		return nil, configErrf("compare", "join key %q does not exist in the first table", joinKey)
	}
	keyB, ok := b.Column(joinKey)
	if !ok {
		return nil, configErrf("compare", "join key %q does not exist in the second table", joinKey)
	}

	rowA := firstRowPerKey(keyA.Values)
	rowB := firstRowPerKey(keyB.Values)

	// Key order: every key in a, then keys only in b.
	var keys []any
	keyValues := make(map[any]any)
	for _, v := range keyA.Values {
		k := matchKey(v)
		if _, seen := keyValues[k]; !seen {
			keyValues[k] = v
			keys = append(keys, k)
		}
	}
	for _, v := range keyB.Values {
		k := matchKey(v)
		if _, seen := keyValues[k]; !seen {
			keyValues[k] = v
			keys = append(keys, k)
		}
	}

	shared := make(map[string]bool)
	for _, c := range a.Columns() {
		if c.Name != joinKey && b.HasColumn(c.Name) {
			shared[c.Name] = true
		}
	}

	gatherSide := func(c table.Column, rows map[any]int) []any {
		values := make([]any, len(keys))
		for i, k := range keys {
			if idx, ok := rows[k]; ok {
				values[i] = c.Values[idx]
			}
		}
		return values
	}

	cols := make([]table.Column, 0, a.NumCols()+b.NumCols())

	keyOut := make([]any, len(keys))
	for i, k := range keys {
		keyOut[i] = keyValues[k]
	}
	cols = append(cols, table.Column{Name: joinKey, Kind: table.InferKind(keyOut), Values: keyOut})

	// a's columns in order, suffixed where shared.
	var diffCols []table.Column
	for _, ca := range a.Columns() {
		if ca.Name == joinKey {
			continue
		}
		if !shared[ca.Name] {
			cols = append(cols, table.Column{Name: ca.Name, Kind: ca.Kind, Values: gatherSide(ca, rowA)})
			continue
		}
		cb, _ := b.Column(ca.Name)
		sideA := gatherSide(ca, rowA)
		sideB := gatherSide(cb, rowB)
		cols = append(cols,
			table.Column{Name: ca.Name + "_a", Kind: ca.Kind, Values: sideA},
			table.Column{Name: ca.Name + "_b", Kind: cb.Kind, Values: sideB},
		)
		if ca.Kind == table.KindNumber && cb.Kind == table.KindNumber {
			diffCols = append(diffCols, table.Column{
				Name:   ca.Name + "_diff",
				Kind:   table.KindNumber,
				Values: diffValues(sideA, sideB),
			})
		}
	}

	// b-only columns in b's order.
	for _, cb := range b.Columns() {
		if cb.Name == joinKey || shared[cb.Name] {
			continue
		}
		cols = append(cols, table.Column{Name: cb.Name, Kind: cb.Kind, Values: gatherSide(cb, rowB)})
	}

	cols = append(cols, diffCols...)
	return table.New(cols...)
}

// firstRowPerKey indexes the first row holding each distinct key value.
func firstRowPerKey(keyValues []any) map[any]int {
	rows := make(map[any]int, len(keyValues))
	for i, v := range keyValues {
		k := matchKey(v)
		if _, seen := rows[k]; !seen {
			rows[k] = i
		}
	}
	return rows
}

// diffValues computes b−a elementwise with null propagation.
func diffValues(sideA, sideB []any) []any {
	diffs := make([]any, len(sideA))
	for i := range sideA {
		va, okA := table.Number(sideA[i])
		vb, okB := table.Number(sideB[i])
		if okA && okB {
			diffs[i] = vb - va
		}
	}
	return diffs
}
