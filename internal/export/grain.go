package export

import (
	"image"
	"image/color"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Grain tuning. Two octaves of normalized noise drive the speckle so
// fiber clumps read as paper texture rather than static.
const (
	grainBaseFreq = 0.35
	grainFineFreq = 1.1
	grainCutoff   = 0.72
)

var grainGray = color.RGBA{168, 168, 168, 255}

// speckle scatters grain dots across the map hex. Only bare paper is
// touched; ink pixels keep their contrast.
func speckle(img *image.RGBA, seed int64, cx, cy, r float64) {
	base := opensimplex.NewNormalized(seed)
	fine := opensimplex.NewNormalized(seed + 1)

	x0, x1 := int(cx-r), int(cx+r)
	y0, y1 := int(cy-r), int(cy+r)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			fx, fy := float64(x), float64(y)
			if !insideHex(cx, cy, r-2, fx, fy) {
				continue
			}
			v := 0.7*base.Eval2(fx*grainBaseFreq, fy*grainBaseFreq) +
				0.3*fine.Eval2(fx*grainFineFreq, fy*grainFineFreq)
			if v <= grainCutoff {
				continue
			}
			if p := img.RGBAAt(x, y); p.R > 200 && p.G > 200 && p.B > 200 {
				img.SetRGBA(x, y, grainGray)
			}
		}
	}
}
