package layout

import (
	"math"
	"testing"
)

// ============================================================================
// LAYOUT TESTS
// ============================================================================

var testNodes = []string{"a", "b", "c", "d", "e"}
var testEdges = [][2]int{{0, 1}, {0, 2}, {0, 3}, {3, 4}}

func TestParse(t *testing.T) {
	for _, name := range []string{"spring", "circular", "shell", "grid", "random"} {
		if alg, ok := Parse(name); !ok || string(alg) != name {
			t.Errorf("Parse(%q) = %v, %v", name, alg, ok)
		}
	}
	if _, ok := Parse("kamada_kawai"); ok {
		t.Error("Parse should reject unknown algorithms")
	}
}

func TestPositionsDeterministic(t *testing.T) {
	for _, alg := range []Algorithm{Spring, Circular, Shell, Grid, Random} {
		first := Positions(testNodes, testEdges, alg)
		second := Positions(testNodes, testEdges, alg)
		if len(first) != len(testNodes) {
			t.Fatalf("%s: %d points for %d nodes", alg, len(first), len(testNodes))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("%s: position %d differs between runs: %v vs %v", alg, i, first[i], second[i])
			}
		}
	}
}

func TestCircularOnUnitCircle(t *testing.T) {
	pts := Positions(testNodes, nil, Circular)
	for i, p := range pts {
		r := math.Hypot(p.X, p.Y)
		if math.Abs(r-1) > 1e-9 {
			t.Errorf("node %d at radius %v, want 1", i, r)
		}
	}
	// Distinct angles.
	if pts[0] == pts[1] {
		t.Error("nodes should not overlap")
	}
}

func TestShellPutsHubInnermost(t *testing.T) {
	pts := Positions(testNodes, testEdges, Shell)
	// Node 0 has degree 3 — it should sit on the innermost ring.
	r0 := math.Hypot(pts[0].X, pts[0].Y)
	for i := 1; i < len(pts); i++ {
		if r := math.Hypot(pts[i].X, pts[i].Y); r < r0-1e-9 {
			t.Errorf("node %d at radius %v is inside hub radius %v", i, r, r0)
		}
	}
}

func TestSpringSeparatesNodes(t *testing.T) {
	pts := Positions(testNodes, testEdges, Spring)
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			if math.Hypot(pts[i].X-pts[j].X, pts[i].Y-pts[j].Y) < 1e-6 {
				t.Errorf("nodes %d and %d collapsed to the same point", i, j)
			}
		}
	}
}

func TestUnknownAlgorithmFallsBackToSpring(t *testing.T) {
	got := Positions(testNodes, testEdges, Algorithm("bogus"))
	want := Positions(testNodes, testEdges, Spring)
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("fallback layout differs from spring at %d", i)
		}
	}
}

func TestEmptyAndSingle(t *testing.T) {
	if pts := Positions(nil, nil, Spring); pts != nil {
		t.Errorf("empty graph should have no points, got %v", pts)
	}
	if pts := Positions([]string{"solo"}, nil, Spring); len(pts) != 1 {
		t.Errorf("single node layout = %v", pts)
	}
}
