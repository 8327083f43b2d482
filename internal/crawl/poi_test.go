package crawl

import (
	"math/rand"
	"testing"
)

func TestRandomMarks_CountAndRanges(t *testing.T) {
	lat := testLattice(t)
	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- deterministic test sweep
		marks := RandomMarks(lat, rng)
		if len(marks) < 3 || len(marks) > 6 {
			t.Fatalf("seed %d: expected 3..6 marks on a 13-cell lattice, got %d", seed, len(marks))
		}
		seen := make(map[int]bool)
		for _, m := range marks {
			if m.CellIndex < 0 || m.CellIndex >= len(lat.Cells) {
				t.Fatalf("seed %d: mark index %d out of range", seed, m.CellIndex)
			}
			if seen[m.CellIndex] {
				t.Fatalf("seed %d: duplicate mark on cell %d", seed, m.CellIndex)
			}
			seen[m.CellIndex] = true
			if m.Label < 1 || m.Label > 5 {
				t.Fatalf("seed %d: label %d outside 1..5", seed, m.Label)
			}
		}
	}
}

func TestRandomMarks_SmallAndEmptyLattices(t *testing.T) {
	rng := rand.New(rand.NewSource(42)) // #nosec G404 -- deterministic test
	empty, err := NewLattice(LatticeConfig{Right: 10, Bottom: 10, CellsAcross: 6})
	if err != nil {
		t.Fatalf("lattice: %v", err)
	}
	if marks := RandomMarks(empty, rng); marks != nil {
		t.Fatalf("empty lattice should yield no marks, got %d", len(marks))
	}

	// Two cells cap the draw at 2 marks instead of erroring.
	two := &Lattice{Cells: make([]Cell, 2)}
	marks := RandomMarks(two, rng)
	if len(marks) != 2 {
		t.Fatalf("2-cell lattice should yield exactly 2 marks, got %d", len(marks))
	}
}

func TestRandomMarks_Deterministic(t *testing.T) {
	lat := testLattice(t)
	a := RandomMarks(lat, rand.New(rand.NewSource(99))) // #nosec G404 -- deterministic test
	b := RandomMarks(lat, rand.New(rand.NewSource(99))) // #nosec G404 -- deterministic test
	if len(a) != len(b) {
		t.Fatalf("same seed produced %d and %d marks", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("mark %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestResolveMarks_BindsToCells(t *testing.T) {
	lat := testLattice(t)
	marks := []Mark{{CellIndex: 0, Label: 3}, {CellIndex: 12, Label: 5}}
	diamonds, err := ResolveMarks(lat, marks)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(diamonds) != 2 {
		t.Fatalf("expected 2 diamonds, got %d", len(diamonds))
	}
	for i, d := range diamonds {
		cell := lat.Cells[marks[i].CellIndex]
		if d.Coord != cell.Coord || d.X != cell.X || d.Y != cell.Y {
			t.Fatalf("diamond %d not bound to cell %d: %+v", i, marks[i].CellIndex, d)
		}
		if d.Label != marks[i].Label {
			t.Fatalf("diamond %d label %d, want %d", i, d.Label, marks[i].Label)
		}
	}
}

func TestResolveMarks_SkipsStaleIndexes(t *testing.T) {
	lat := testLattice(t)
	// A persisted sheet rendered against a larger lattice may carry
	// indexes that no longer exist; those are dropped, not fatal.
	diamonds, err := ResolveMarks(lat, []Mark{
		{CellIndex: -1, Label: 2},
		{CellIndex: 6, Label: 4},
		{CellIndex: 99, Label: 1},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(diamonds) != 1 || diamonds[0].CellIndex != 6 {
		t.Fatalf("expected only cell 6 to survive, got %+v", diamonds)
	}
}

func TestResolveMarks_DuplicateCellIsError(t *testing.T) {
	lat := testLattice(t)
	_, err := ResolveMarks(lat, []Mark{{CellIndex: 5, Label: 1}, {CellIndex: 5, Label: 2}})
	if err == nil {
		t.Fatal("two marks on one cell should be rejected")
	}
}

func TestResolveMarks_ClampsLabels(t *testing.T) {
	lat := testLattice(t)
	diamonds, err := ResolveMarks(lat, []Mark{
		{CellIndex: 1, Label: 0},
		{CellIndex: 2, Label: -7},
		{CellIndex: 3, Label: 9},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diamonds[0].Label != 1 || diamonds[1].Label != 1 || diamonds[2].Label != 5 {
		t.Fatalf("labels should clamp to 1..5, got %d %d %d",
			diamonds[0].Label, diamonds[1].Label, diamonds[2].Label)
	}
}
