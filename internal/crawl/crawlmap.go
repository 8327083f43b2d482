package crawl

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
)

// MapConfig drives one generation pass.
type MapConfig struct {
	Lattice   LatticeConfig
	Marks     []Mark // nil = place diamonds randomly
	MaxTrails int    // 0 = default 4
	Seed      int64
}

// Map is the result of one generation pass.
type Map struct {
	Lattice  *Lattice
	Marks    []Mark
	Diamonds []Diamond
	Trails   []Trail
	Seed     int64
	Log      *PassLog
}

// Generate runs a full pass: lattice, diamond placement, trail routing,
// smoothing, and styling, all driven by a single random source seeded
// from cfg.Seed. Equal configs produce equal maps.
func Generate(cfg MapConfig) (*Map, error) {
	lat, err := NewLattice(cfg.Lattice)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed)) // #nosec G404 -- reproducible layouts

	log := NewPassLog()
	log.add(EventLattice, "%d cells edge %.1f", len(lat.Cells), lat.CellEdge)

	marks := cfg.Marks
	if marks == nil {
		marks = RandomMarks(lat, rng)
	}
	diamonds, err := ResolveMarks(lat, marks)
	if err != nil {
		return nil, err
	}
	log.add(EventDiamonds, "%d placed", len(diamonds))

	maxTrails := cfg.MaxTrails
	if maxTrails <= 0 {
		maxTrails = 4
	}

	m := &Map{
		Lattice:  lat,
		Marks:    marks,
		Diamonds: diamonds,
		Seed:     cfg.Seed,
		Log:      log,
	}
	if len(diamonds) >= 2 {
		rt := NewRouter(lat)
		rt.Log = log
		m.Trails = rt.BuildTrails(diamonds, maxTrails, rng)
	}
	return m, nil
}

// SeedFromMarks derives a stable seed from a mark list, so a sheet
// persisted without a seed still re-renders the exact same trails.
func SeedFromMarks(marks []Mark) int64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, m := range marks {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(m.CellIndex))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(m.Label))
		h.Write(buf[:])
	}
	return int64(h.Sum64())
}

// Report renders a human-readable pass summary for the CLI and tests.
func (m *Map) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- crawl map report ---\n")
	fmt.Fprintf(&b, "seed=%d cells=%d edge=%.1f glyph_r=%.1f\n",
		m.Seed, len(m.Lattice.Cells), m.Lattice.CellEdge, m.Lattice.GlyphR)

	fmt.Fprintf(&b, "diamonds (%d):\n", len(m.Diamonds))
	for _, d := range m.Diamonds {
		fmt.Fprintf(&b, "  cell=%-3d q=%-3d r=%-3d label=%d\n", d.CellIndex, d.Coord.Q, d.Coord.R, d.Label)
	}

	fmt.Fprintf(&b, "trails (%d):\n", len(m.Trails))
	for i, t := range m.Trails {
		fmt.Fprintf(&b, "  %02d) %-9s %d -> %d  pts=%-3d marks=%-2d dashes=%d\n",
			i+1, t.Style.Name(), m.Diamonds[t.A].Label, m.Diamonds[t.B].Label,
			len(t.Points), len(t.Marks), len(t.Dashes))
	}

	if entries := m.Log.Entries(); len(entries) > 0 {
		b.WriteString("log:\n")
		for _, e := range entries {
			b.WriteString("  ")
			b.WriteString(e.String())
			b.WriteByte('\n')
		}
	}
	return b.String()
}
