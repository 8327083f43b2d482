package viewer

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Rws117r/HexScribe/internal/crawl"
)

// directionKeys maps selection keys to screen directions. Y grows
// downward, so "up" is (0, -1). The numpad adds diagonals.
var directionKeys = []struct {
	key    ebiten.Key
	dx, dy float64
}{
	{ebiten.KeyArrowUp, 0, -1},
	{ebiten.KeyArrowDown, 0, 1},
	{ebiten.KeyArrowLeft, -1, 0},
	{ebiten.KeyArrowRight, 1, 0},
	{ebiten.KeyNumpad8, 0, -1},
	{ebiten.KeyNumpad2, 0, 1},
	{ebiten.KeyNumpad4, -1, 0},
	{ebiten.KeyNumpad6, 1, 0},
	{ebiten.KeyNumpad7, -1, -1},
	{ebiten.KeyNumpad9, 1, -1},
	{ebiten.KeyNumpad1, -1, 1},
	{ebiten.KeyNumpad3, 1, 1},
}

// pollPressed records k's state in cur and reports a rising edge
// against prev.
func pollPressed(cur, prev map[ebiten.Key]bool, k ebiten.Key) bool {
	down := ebiten.IsKeyPressed(k)
	cur[k] = down
	return down && !prev[k]
}

// nextDiamond picks the diamond the cursor should move to for a pressed
// direction. Candidates ahead of the cursor (positive projection) win by
// best alignment, nearest first on ties; with nothing ahead the cursor
// wraps to the candidate farthest behind.
func nextDiamond(ds []crawl.Diamond, cur int, dx, dy float64) int {
	if len(ds) == 0 {
		return cur
	}
	if cur < 0 || cur >= len(ds) {
		return 0
	}
	norm := math.Hypot(dx, dy)
	if norm == 0 {
		return cur
	}
	dx, dy = dx/norm, dy/norm
	cx, cy := ds[cur].X, ds[cur].Y

	const eps = 1e-9
	best, bestAlign, bestDist := -1, 0.0, 0.0
	wrap, wrapProj := -1, 0.0
	for i := range ds {
		if i == cur {
			continue
		}
		vx, vy := ds[i].X-cx, ds[i].Y-cy
		dist := math.Hypot(vx, vy)
		if dist == 0 {
			continue
		}
		proj := vx*dx + vy*dy
		if proj > 0 {
			align := proj / dist
			if best < 0 || align > bestAlign+eps ||
				(align > bestAlign-eps && dist < bestDist) {
				best, bestAlign, bestDist = i, align, dist
			}
			continue
		}
		if wrap < 0 || proj < wrapProj {
			wrap, wrapProj = i, proj
		}
	}
	if best >= 0 {
		return best
	}
	if wrap >= 0 {
		return wrap
	}
	return cur
}
