package crawl

import (
	"fmt"
	"math"
)

var sqrt3 = math.Sqrt(3)

// LatticeConfig describes the rectangle the big hex is inscribed in and
// how finely it is subdivided.
type LatticeConfig struct {
	Left   float64 // bounding rectangle, pixels
	Top    float64
	Right  float64
	Bottom float64

	CellsAcross  int     // small cells across the big hex diameter (min 2)
	DiamondScale float64 // glyph radius as a fraction of the cell edge (0 = default 0.55)
}

// Cell is one small hexagon of the lattice: its axial coordinate and its
// pixel center, fixed at construction.
type Cell struct {
	Coord HexCoord
	X, Y  float64
}

// Lattice is the set of small-hex centers clipped inside one big flat-top
// hexagon, with adjacency over the six axial directions.
type Lattice struct {
	Cells []Cell // scan order: q ascending, r ascending within q

	CX, CY   float64 // big hex center
	R        float64 // big hex circumradius
	CellEdge float64 // small-hex edge length s
	GlyphR   float64 // diamond glyph radius, px

	index map[HexCoord]int
}

// NewLattice builds the clipped lattice. The cell edge is chosen so
// CellsAcross cells tile the big hex diameter, with a small compaction
// factor so boundary cells are not half-clipped. Candidates are kept only
// if their center lies inside the big hex shrunk by 1.2 cell edges.
// An empty lattice (rectangle too small for even one cell) is a valid
// result; invalid configuration is not.
func NewLattice(cfg LatticeConfig) (*Lattice, error) {
	if cfg.CellsAcross < 2 {
		return nil, fmt.Errorf("crawl: lattice needs at least 2 cells across, got %d", cfg.CellsAcross)
	}
	if cfg.Right <= cfg.Left || cfg.Bottom <= cfg.Top {
		return nil, fmt.Errorf("crawl: lattice rectangle has non-positive area (%.1f,%.1f)-(%.1f,%.1f)",
			cfg.Left, cfg.Top, cfg.Right, cfg.Bottom)
	}
	scale := cfg.DiamondScale
	if scale <= 0 {
		scale = 0.55
	}

	cx := (cfg.Left + cfg.Right) / 2
	cy := (cfg.Top + cfg.Bottom) / 2
	r := math.Min(cfg.Right-cfg.Left, cfg.Bottom-cfg.Top)/2 - 6

	lat := &Lattice{
		CX:    cx,
		CY:    cy,
		R:     r,
		index: make(map[HexCoord]int),
	}
	if r <= 0 {
		return lat, nil
	}

	c := float64(cfg.CellsAcross)
	s := (4.0 * r) / (3.0*c + 1.0) * 0.985
	lat.CellEdge = s
	lat.GlyphR = math.Max(8, s*scale)

	qMax := int(r/(1.5*s)) + 3
	rMax := int(r/(sqrt3*s)) + 3
	inset := r - s*1.2

	for q := -qMax; q <= qMax; q++ {
		for rr := -rMax; rr <= rMax; rr++ {
			x := cx + (1.5*s)*float64(q)
			y := cy + (sqrt3*s)*(float64(rr)+float64(q)/2.0)
			if !pointInHex(cx, cy, inset, x, y) {
				continue
			}
			coord := HexCoord{Q: q, R: rr}
			lat.index[coord] = len(lat.Cells)
			lat.Cells = append(lat.Cells, Cell{Coord: coord, X: x, Y: y})
		}
	}
	return lat, nil
}

// pointInHex reports whether (x, y) lies inside the flat-top hexagon of
// circumradius r centered at (cx, cy), with a 1-pixel tolerance on the
// top edge and the slanted edges.
func pointInHex(cx, cy, r, x, y float64) bool {
	px := math.Abs(x - cx)
	py := math.Abs(y - cy)
	if px > r || py > r*sqrt3/2+1 {
		return false
	}
	return sqrt3*px+py <= sqrt3*r+1
}

// Contains reports whether the coordinate is a member cell.
func (l *Lattice) Contains(c HexCoord) bool {
	_, ok := l.index[c]
	return ok
}

// CellAt returns the member cell at the coordinate, if any.
func (l *Lattice) CellAt(c HexCoord) (Cell, bool) {
	i, ok := l.index[c]
	if !ok {
		return Cell{}, false
	}
	return l.Cells[i], true
}

// Neighbors returns the member cells adjacent to c, in direction order.
func (l *Lattice) Neighbors(c HexCoord) []HexCoord {
	out := make([]HexCoord, 0, 6)
	for _, d := range hexDirections {
		n := c.Add(d)
		if l.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

// ClosestCell returns the index of the cell whose center is nearest to
// (x, y), or false for an empty lattice.
func (l *Lattice) ClosestCell(x, y float64) (int, bool) {
	best, bd := -1, math.MaxFloat64
	for i, cell := range l.Cells {
		dx := cell.X - x
		dy := cell.Y - y
		if d2 := dx*dx + dy*dy; d2 < bd {
			bd = d2
			best = i
		}
	}
	return best, best >= 0
}

// InsideInterior reports whether (x, y) passes the same inset test used
// to retain cells, so callers can keep markers off the outer boundary.
func (l *Lattice) InsideInterior(x, y float64) bool {
	return pointInHex(l.CX, l.CY, l.R-l.CellEdge*1.2, x, y)
}

// HexPolygon returns the six vertices of a flat-top hexagon of
// circumradius r centered at (xc, yc), at angles 0°, 60°, ... 300°.
func HexPolygon(xc, yc, r float64) [6][2]float64 {
	var out [6][2]float64
	for k := 0; k < 6; k++ {
		a := float64(k) * math.Pi / 3
		out[k] = [2]float64{xc + r*math.Cos(a), yc + r*math.Sin(a)}
	}
	return out
}
