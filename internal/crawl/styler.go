package crawl

import (
	"math"
	"math/rand"
)

// NoOverlapDist is the minimum spacing, in pixels, between sample points
// of different accepted trails.
const NoOverlapDist = 14.0

// overlapSampleStep is the resample interval for the overlap cloud.
const overlapSampleStep = 3.5

// TrailStyle tags how a trail is drawn.
type TrailStyle uint8

const (
	StylePath TrailStyle = iota
	StyleDifficult
	StyleDangerous
	StyleSpecial

	trailStyleCount
)

// Name returns the style's lowercase tag.
func (s TrailStyle) Name() string {
	switch s {
	case StylePath:
		return "path"
	case StyleDifficult:
		return "difficult"
	case StyleDangerous:
		return "dangerous"
	case StyleSpecial:
		return "special"
	}
	return "unknown"
}

// rollStyle draws a d8: 1-4 path, 5-6 difficult, 7 dangerous, 8 special.
func rollStyle(rng *rand.Rand) TrailStyle {
	switch r := 1 + rng.Intn(8); {
	case r <= 4:
		return StylePath
	case r <= 6:
		return StyleDifficult
	case r == 7:
		return StyleDangerous
	default:
		return StyleSpecial
	}
}

// Segment is one straight stroke in pixel space.
type Segment struct {
	X1, Y1 float64
	X2, Y2 float64
}

// Trail is one accepted connector: the smoothed, glyph-trimmed centerline
// plus the ornament geometry for its style. For StyleSpecial the
// centerline is replaced by Dashes when drawing; for the other styles
// Dashes is empty and Marks carries ticks or chevron legs.
type Trail struct {
	Style  TrailStyle
	Points [][2]float64
	Marks  []Segment
	Dashes []Segment

	A, B int // indices into the pass's diamond list
}

// clearanceCircle is a keep-out disc around a diamond glyph.
type clearanceCircle struct {
	x, y, r float64
}

func clearanceCircles(diamonds []Diamond, glyphR float64) []clearanceCircle {
	out := make([]clearanceCircle, len(diamonds))
	for i, d := range diamonds {
		out[i] = clearanceCircle{x: d.X, y: d.Y, r: glyphR + 2}
	}
	return out
}

func nearAnyCircle(p [2]float64, circles []clearanceCircle, pad float64) bool {
	for _, c := range circles {
		dx := p[0] - c.x
		dy := p[1] - c.y
		if dx*dx+dy*dy <= (c.r+pad)*(c.r+pad) {
			return true
		}
	}
	return false
}

// safePositions returns the interior resample indices where an ornament
// may sit: away from every clearance circle (padded 4 px) and at least
// edgeClear px from both ends of the trimmed centerline.
func safePositions(samples, poly [][2]float64, circles []clearanceCircle, edgeClear float64) []int {
	var out []int
	for i := 1; i < len(samples)-1; i++ {
		c := samples[i]
		if nearAnyCircle(c, circles, 4) {
			continue
		}
		if dist(c, poly[0]) < edgeClear || dist(c, poly[len(poly)-1]) < edgeClear {
			continue
		}
		out = append(out, i)
	}
	return out
}

// ornamentTicks emits a perpendicular tick of half-length 5 roughly every
// 10 px along the centerline.
func ornamentTicks(poly [][2]float64, circles []clearanceCircle) []Segment {
	samples := evenlySample(poly, 10)
	var out []Segment
	for _, i := range safePositions(samples, poly, circles, 10) {
		nx, ny := perpUnit(samples[i-1], samples[i+1])
		c := samples[i]
		const tick = 5.0
		out = append(out, Segment{
			X1: c[0] - nx*tick, Y1: c[1] - ny*tick,
			X2: c[0] + nx*tick, Y2: c[1] + ny*tick,
		})
	}
	return out
}

// ornamentChevrons emits a two-leg barb pointing along the travel
// direction roughly every 14 px. A chevron is dropped entirely if either
// barb end strays into a clearance circle.
func ornamentChevrons(poly [][2]float64, circles []clearanceCircle) []Segment {
	samples := evenlySample(poly, 14)
	var out []Segment
	for _, i := range safePositions(samples, poly, circles, 10) {
		p, q := samples[i-1], samples[i+1]
		nx, ny := perpUnit(p, q)
		dx := q[0] - p[0]
		dy := q[1] - p[1]
		l := math.Hypot(dx, dy)
		if l == 0 {
			l = 1
		}
		ux, uy := dx/l, dy/l

		const barb = 6.0
		c := samples[i]
		left := [2]float64{c[0] - ux*barb + nx*barb, c[1] - uy*barb + ny*barb}
		right := [2]float64{c[0] - ux*barb - nx*barb, c[1] - uy*barb - ny*barb}
		if nearAnyCircle(left, circles, 4) || nearAnyCircle(right, circles, 4) {
			continue
		}
		out = append(out,
			Segment{X1: left[0], Y1: left[1], X2: c[0], Y2: c[1]},
			Segment{X1: c[0], Y1: c[1], X2: right[0], Y2: right[1]},
		)
	}
	return out
}

// ornamentDashes renders the centerline as 8 px dashes with 6 px gaps,
// walking each polyline edge separately. A dash whose midpoint lies in a
// clearance circle or within 10 px of either endpoint is suppressed.
func ornamentDashes(poly [][2]float64, circles []clearanceCircle) []Segment {
	const (
		dashLen   = 8.0
		gapLen    = 6.0
		edgeClear = 10.0
	)
	var out []Segment
	first := poly[0]
	last := poly[len(poly)-1]
	for i := 0; i < len(poly)-1; i++ {
		a, b := poly[i], poly[i+1]
		seg := dist(a, b)
		if seg <= 1e-6 {
			continue
		}
		ux := (b[0] - a[0]) / seg
		uy := (b[1] - a[1]) / seg

		pos := 0.0
		drawDash := true
		for pos < seg {
			end := math.Min(seg, pos+dashLen)
			s := [2]float64{a[0] + ux*pos, a[1] + uy*pos}
			e := [2]float64{a[0] + ux*end, a[1] + uy*end}
			mid := [2]float64{(s[0] + e[0]) / 2, (s[1] + e[1]) / 2}
			if drawDash &&
				dist(mid, first) >= edgeClear && dist(mid, last) >= edgeClear &&
				!nearAnyCircle(mid, circles, 4) {
				out = append(out, Segment{X1: s[0], Y1: s[1], X2: e[0], Y2: e[1]})
			}
			pos += dashLen + gapLen
			drawDash = !drawDash
		}
	}
	return out
}

// styleTrail fills in the ornament geometry for the rolled style.
func styleTrail(style TrailStyle, poly [][2]float64, circles []clearanceCircle) Trail {
	t := Trail{Style: style, Points: poly}
	switch style {
	case StylePath:
	case StyleDifficult:
		t.Marks = ornamentTicks(poly, circles)
	case StyleDangerous:
		t.Marks = ornamentChevrons(poly, circles)
	case StyleSpecial:
		t.Dashes = ornamentDashes(poly, circles)
	default:
		panic("crawl: unknown trail style")
	}
	return t
}
