package crawl

import "math/rand"

// TestPass is a headless generation harness used exclusively by tests.
// It mirrors Generate but lets tests pin the lattice, the marks, and
// the routing knobs independently, and exposes every intermediate
// product of the pass.
type TestPass struct {
	Lattice  *Lattice
	Diamonds []Diamond
	Trails   []Trail
	Log      *PassLog

	cfg       LatticeConfig
	marks     []Mark
	seed      int64
	maxTrails int
	rng       *rand.Rand
}

// passOptionKind controls the pass in which an option is applied.
type passOptionKind int

const (
	passOptInfra passOptionKind = iota // bounds, cells across, seed, trail cap; applied first
	passOptMark                        // add marks; applied after the lattice is built
)

// PassOption is a builder function applied to a TestPass during construction.
type PassOption struct {
	kind passOptionKind
	fn   func(*TestPass)
}

// WithBounds sets the rectangle the big hex is inscribed in.
func WithBounds(left, top, right, bottom float64) PassOption {
	return PassOption{passOptInfra, func(tp *TestPass) {
		tp.cfg.Left, tp.cfg.Top = left, top
		tp.cfg.Right, tp.cfg.Bottom = right, bottom
	}}
}

// WithCellsAcross sets how many small cells tile the big hex diameter.
func WithCellsAcross(n int) PassOption {
	return PassOption{passOptInfra, func(tp *TestPass) {
		tp.cfg.CellsAcross = n
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) PassOption {
	return PassOption{passOptInfra, func(tp *TestPass) {
		tp.seed = seed
	}}
}

// WithMaxTrails caps the connector count for the pass.
func WithMaxTrails(n int) PassOption {
	return PassOption{passOptInfra, func(tp *TestPass) {
		tp.maxTrails = n
	}}
}

// WithMark pins a diamond on the given cell index with a label in 1..5.
func WithMark(cellIndex, label int) PassOption {
	return PassOption{passOptMark, func(tp *TestPass) {
		tp.marks = append(tp.marks, Mark{CellIndex: cellIndex, Label: label})
	}}
}

// WithMarkAt pins a diamond on the cell at axial (q, r). A coordinate
// outside the lattice is ignored, the same way stale persisted marks are
// skipped during resolution.
func WithMarkAt(q, r, label int) PassOption {
	return PassOption{passOptMark, func(tp *TestPass) {
		if i, ok := tp.Lattice.index[HexCoord{Q: q, R: r}]; ok {
			tp.marks = append(tp.marks, Mark{CellIndex: i, Label: label})
		}
	}}
}

// NewTestPass constructs a TestPass from the given options in ordered passes:
//  1. Infrastructure (bounds, cells across, seed, trail cap)
//  2. Build the lattice
//  3. Marks (random when none were pinned)
//  4. Resolve diamonds and route trails
func NewTestPass(opts ...PassOption) *TestPass {
	tp := &TestPass{
		cfg: LatticeConfig{
			Left: 0, Top: 0, Right: 360, Bottom: 300,
			CellsAcross: 6,
		},
		seed:      1,
		maxTrails: 4,
	}
	for _, o := range opts {
		if o.kind == passOptInfra {
			o.fn(tp)
		}
	}
	lat, err := NewLattice(tp.cfg)
	if err != nil {
		panic(err) // option misuse in a test
	}
	tp.Lattice = lat
	for _, o := range opts {
		if o.kind == passOptMark {
			o.fn(tp)
		}
	}
	tp.rng = rand.New(rand.NewSource(tp.seed)) // #nosec G404 -- test harness
	if tp.marks == nil {
		tp.marks = RandomMarks(lat, tp.rng)
	}
	diamonds, err := ResolveMarks(lat, tp.marks)
	if err != nil {
		panic(err)
	}
	tp.Diamonds = diamonds
	tp.route()
	return tp
}

// route (re)builds the trail set from the current diamonds.
func (tp *TestPass) route() {
	tp.Log = NewPassLog()
	rt := NewRouter(tp.Lattice)
	rt.Log = tp.Log
	tp.Trails = rt.BuildTrails(tp.Diamonds, tp.maxTrails, tp.rng)
}

// Reroute drops the current trails and routes again under a fresh seed,
// keeping the diamonds where they are. Mirrors the viewer's reroll key.
func (tp *TestPass) Reroute(seed int64) {
	tp.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- test harness
	tp.route()
}

// TrailBetween returns the first trail whose endpoint labels match a and
// b in either direction, or nil.
func (tp *TestPass) TrailBetween(a, b int) *Trail {
	for i := range tp.Trails {
		t := &tp.Trails[i]
		la, lb := tp.Diamonds[t.A].Label, tp.Diamonds[t.B].Label
		if (la == a && lb == b) || (la == b && lb == a) {
			return t
		}
	}
	return nil
}
