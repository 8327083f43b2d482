package crawl

// HexCoord is an axial (q, r) address in a flat-top hex grid.
type HexCoord struct {
	Q int
	R int
}

// hexDirections lists the six axial neighbor offsets for a flat-top
// layout, in fixed order: E, NE, NW, W, SW, SE.
var hexDirections = [6]HexCoord{
	{+1, 0}, {+1, -1}, {0, -1},
	{-1, 0}, {-1, +1}, {0, +1},
}

// Add returns c shifted by d.
func (c HexCoord) Add(d HexCoord) HexCoord {
	return HexCoord{Q: c.Q + d.Q, R: c.R + d.R}
}

// HexDistance returns the minimum number of cell steps between a and b.
func HexDistance(a, b HexCoord) int {
	dq := a.Q - b.Q
	dr := a.R - b.R
	return (intAbs(dq) + intAbs(dq+dr) + intAbs(dr)) / 2
}

func intAbs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
