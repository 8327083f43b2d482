package crawl

import (
	"container/heap"
	"math/rand"
)

// edgeKey is an unordered pair of adjacent coordinates.
type edgeKey struct {
	a, b HexCoord
}

func newEdgeKey(a, b HexCoord) edgeKey {
	if b.Q < a.Q || (b.Q == a.Q && b.R < a.R) {
		a, b = b, a
	}
	return edgeKey{a: a, b: b}
}

// Router routes connector trails over a lattice. It carries the
// pass-global state: edges already used (corridor-reuse penalty) and the
// sample cloud of accepted trails (anti-overlap).
type Router struct {
	lat       *Lattice
	usedEdges map[edgeKey]bool
	samples   [][2]float64

	// Log, when set, receives one entry per routing decision.
	Log *PassLog
}

// NewRouter panics on a nil lattice: that is a wiring bug, not a
// geometric edge case.
func NewRouter(lat *Lattice) *Router {
	if lat == nil {
		panic("crawl: router requires a lattice")
	}
	return &Router{
		lat:       lat,
		usedEdges: make(map[edgeKey]bool),
	}
}

// BuildTrails shuffles the diamonds and connects them pairwise as a
// chain, routing each connector with A* around the other diamonds. A
// connector whose goal is unreachable, or whose finished polyline runs
// within NoOverlapDist of an earlier trail, is dropped. Fewer than two
// diamonds is a no-op.
func (rt *Router) BuildTrails(diamonds []Diamond, maxTrails int, rng *rand.Rand) []Trail {
	if rng == nil {
		panic("crawl: router requires a random source")
	}
	if len(diamonds) < 2 {
		return nil
	}
	if maxTrails <= 0 {
		maxTrails = 4
	}

	order := make([]int, len(diamonds))
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	upper := min(maxTrails, len(diamonds)-1)
	segs := upper
	if upper >= 2 {
		segs = 2
	}
	if upper > 2 {
		segs = 2 + rng.Intn(upper-1)
	}

	allBlocked := make(map[HexCoord]bool, len(diamonds))
	for _, d := range diamonds {
		allBlocked[d.Coord] = true
	}
	circles := clearanceCircles(diamonds, rt.lat.GlyphR)

	var trails []Trail
	for i := 0; i < segs; i++ {
		ai, bi := order[i], order[i+1]
		a, b := diamonds[ai], diamonds[bi]

		// Roll the style before routing so the random stream stays
		// aligned even when a connector is later dropped.
		style := rollStyle(rng)

		blocked := make(map[HexCoord]bool, len(allBlocked))
		for c := range allBlocked {
			blocked[c] = true
		}
		delete(blocked, a.Coord)
		delete(blocked, b.Coord)

		pathAx := rt.astar(a.Coord, b.Coord, blocked, rng)
		if len(pathAx) < 2 {
			rt.Log.add(EventUnreachable, "%d -> %d no route", a.Label, b.Label)
			continue
		}

		poly := make([][2]float64, len(pathAx))
		for j, c := range pathAx {
			cell, _ := rt.lat.CellAt(c)
			poly[j] = [2]float64{cell.X, cell.Y}
		}
		poly = chaikin(poly, 2)
		poly[0] = trimToGlyph(poly[0], poly[1], rt.lat.GlyphR)
		poly[len(poly)-1] = trimToGlyph(poly[len(poly)-1], poly[len(poly)-2], rt.lat.GlyphR)

		cloud := evenlySample(poly, overlapSampleStep)
		if rt.overlaps(cloud) {
			rt.Log.add(EventOverlap, "%d -> %d spacing", a.Label, b.Label)
			continue
		}

		trail := styleTrail(style, poly, circles)
		trail.A, trail.B = ai, bi
		trails = append(trails, trail)

		rt.samples = append(rt.samples, cloud...)
		for j := 0; j < len(pathAx)-1; j++ {
			rt.usedEdges[newEdgeKey(pathAx[j], pathAx[j+1])] = true
		}
		rt.Log.add(EventAccepted, "%d -> %d %s %d pts", a.Label, b.Label, style.Name(), len(poly))
	}
	return trails
}

// overlaps reports whether any candidate sample comes within
// NoOverlapDist of the accepted cloud.
func (rt *Router) overlaps(cloud [][2]float64) bool {
	if len(rt.samples) == 0 {
		return false
	}
	const md2 = NoOverlapDist * NoOverlapDist
	for _, p := range cloud {
		for _, q := range rt.samples {
			dx := p[0] - q[0]
			dy := p[1] - q[1]
			if dx*dx+dy*dy < md2 {
				return true
			}
		}
	}
	return false
}

// --- A* over the lattice adjacency graph ---

type pathNode struct {
	coord  HexCoord
	g, h   float64
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	fi := ol[i].g + ol[i].h
	fj := ol[j].g + ol[j].h
	if fi != fj {
		return fi < fj
	}
	if ol[i].h != ol[j].h {
		return ol[i].h < ol[j].h
	}
	// Coordinate order keeps expansion reproducible for a fixed seed.
	if ol[i].coord.Q != ol[j].coord.Q {
		return ol[i].coord.Q < ol[j].coord.Q
	}
	return ol[i].coord.R < ol[j].coord.R
}
func (ol openList) Swap(i, j int) { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) {
	n := x.(*pathNode)
	n.index = len(*ol)
	*ol = append(*ol, n)
}
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

// astar finds a cheapest route from start to goal over lattice adjacency,
// never expanding blocked coordinates. Edge cost is 1.0, +2.0 when the
// edge was used by an earlier trail this pass, plus jitter in [0, 0.25)
// per evaluation. Returns nil when the goal is unreachable.
func (rt *Router) astar(start, goal HexCoord, blocked map[HexCoord]bool, rng *rand.Rand) []HexCoord {
	if !rt.lat.Contains(start) || !rt.lat.Contains(goal) {
		return nil
	}

	h := func(c HexCoord) float64 { return float64(HexDistance(c, goal)) }

	first := &pathNode{coord: start, g: 0, h: h(start)}
	ol := &openList{first}
	heap.Init(ol)

	closed := make(map[HexCoord]bool)
	best := make(map[HexCoord]*pathNode)
	best[start] = first

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.coord == goal {
			return buildRoute(cur)
		}
		if closed[cur.coord] {
			continue
		}
		closed[cur.coord] = true

		for _, d := range hexDirections {
			nc := cur.coord.Add(d)
			if !rt.lat.Contains(nc) || blocked[nc] || closed[nc] {
				continue
			}
			step := 1.0
			if rt.usedEdges[newEdgeKey(cur.coord, nc)] {
				step += 2.0
			}
			step += rng.Float64() * 0.25

			ng := cur.g + step
			if prev, ok := best[nc]; ok && ng >= prev.g {
				continue
			}
			node := &pathNode{coord: nc, g: ng, h: h(nc), parent: cur}
			best[nc] = node
			heap.Push(ol, node)
		}
	}
	return nil
}

func buildRoute(end *pathNode) []HexCoord {
	var route []HexCoord
	for n := end; n != nil; n = n.parent {
		route = append(route, n.coord)
	}
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route
}
