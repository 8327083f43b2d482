package crawl

import "math"

// chaikin applies corner-cutting subdivision: every edge (a, b) is
// replaced by points at 25% and 75%, keeping the polyline's first and
// last points exact. Fewer than 3 points is returned as a copy.
func chaikin(pts [][2]float64, iters int) [][2]float64 {
	if len(pts) < 3 {
		return append([][2]float64(nil), pts...)
	}
	out := append([][2]float64(nil), pts...)
	for it := 0; it < iters; it++ {
		next := make([][2]float64, 0, 2*len(out))
		next = append(next, out[0])
		for i := 0; i < len(out)-1; i++ {
			a, b := out[i], out[i+1]
			next = append(next,
				[2]float64{0.75*a[0] + 0.25*b[0], 0.75*a[1] + 0.25*b[1]},
				[2]float64{0.25*a[0] + 0.75*b[0], 0.25*a[1] + 0.75*b[1]},
			)
		}
		next = append(next, out[len(out)-1])
		out = next
	}
	return out
}

// trimToGlyph returns the point at glyph radius + 2 from the diamond
// center along the direction of the adjacent polyline point, so the
// stroke stops at the glyph edge without changing its approach angle.
func trimToGlyph(center, toward [2]float64, radius float64) [2]float64 {
	dx := toward[0] - center[0]
	dy := toward[1] - center[1]
	l := math.Hypot(dx, dy)
	if l == 0 {
		l = 1
	}
	return [2]float64{
		center[0] + dx/l*(radius+2),
		center[1] + dy/l*(radius+2),
	}
}

// evenlySample resamples the polyline roughly every step px, carrying the
// remainder across segments. The final point is snapped to the polyline
// end so ornaments and overlap checks cover the whole stroke.
func evenlySample(pts [][2]float64, step float64) [][2]float64 {
	if len(pts) < 2 {
		return append([][2]float64(nil), pts...)
	}
	acc := [][2]float64{pts[0]}
	carry := 0.0
	for i := 0; i < len(pts)-1; i++ {
		a := acc[len(acc)-1]
		b := pts[i+1]
		seg := dist(a, b)
		if seg <= 1e-6 {
			continue
		}
		dirX := (b[0] - a[0]) / seg
		dirY := (b[1] - a[1]) / seg
		t := step - carry
		for t <= seg {
			acc = append(acc, [2]float64{a[0] + dirX*t, a[1] + dirY*t})
			t += step
		}
		carry = seg - (t - step)
		acc[len(acc)-1] = b
	}
	return acc
}

// perpUnit returns the unit normal of the segment a→b.
func perpUnit(a, b [2]float64) (float64, float64) {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	l := math.Hypot(dx, dy)
	if l == 0 {
		l = 1
	}
	return -dy / l, dx / l
}

func dist(a, b [2]float64) float64 {
	return math.Hypot(b[0]-a[0], b[1]-a[1])
}
