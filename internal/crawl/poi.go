package crawl

import (
	"fmt"
	"math/rand"
)

// Mark is the persisted form of a point of interest: a lattice cell index
// plus a severity label in 1..5.
type Mark struct {
	CellIndex int `json:"center_index"`
	Label     int `json:"value"`
}

// Diamond is a mark resolved against a lattice.
type Diamond struct {
	CellIndex int
	Coord     HexCoord
	X, Y      float64
	Label     int
}

// RandomMarks picks between 3 and min(6, cell count) distinct cells and
// labels each 1..5. Lattices with fewer than 3 cells get fewer marks
// rather than an error; an empty lattice yields nil.
func RandomMarks(lat *Lattice, rng *rand.Rand) []Mark {
	n := len(lat.Cells)
	if n == 0 {
		return nil
	}
	lo := min(3, n)
	hi := min(6, n)
	k := lo + rng.Intn(hi-lo+1)

	marks := make([]Mark, 0, k)
	for _, idx := range rng.Perm(n)[:k] {
		marks = append(marks, Mark{CellIndex: idx, Label: 1 + rng.Intn(5)})
	}
	return marks
}

// ResolveMarks binds marks to lattice cells. Marks whose index no longer
// fits the lattice are dropped (a persisted sheet may predate a layout
// change); two marks on the same cell is a configuration error. Labels
// are clamped to 1..5.
func ResolveMarks(lat *Lattice, marks []Mark) ([]Diamond, error) {
	diamonds := make([]Diamond, 0, len(marks))
	seen := make(map[int]bool, len(marks))
	for _, m := range marks {
		if m.CellIndex < 0 || m.CellIndex >= len(lat.Cells) {
			continue
		}
		if seen[m.CellIndex] {
			return nil, fmt.Errorf("crawl: two marks share cell %d", m.CellIndex)
		}
		seen[m.CellIndex] = true

		label := m.Label
		if label < 1 {
			label = 1
		}
		if label > 5 {
			label = 5
		}
		cell := lat.Cells[m.CellIndex]
		diamonds = append(diamonds, Diamond{
			CellIndex: m.CellIndex,
			Coord:     cell.Coord,
			X:         cell.X,
			Y:         cell.Y,
			Label:     label,
		})
	}
	return diamonds, nil
}
