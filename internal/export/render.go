package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/Rws117r/HexScribe/internal/crawl"
)

// Strokes are laid down at 4x and downsampled once per frame.
const superSample = 4

var (
	colorPaper = color.RGBA{255, 255, 255, 255}
	colorInk   = color.RGBA{0, 0, 0, 255}
)

var sqrt3 = math.Sqrt(3)

// Panel is the right-hand feature panel content.
type Panel struct {
	Name string
	Type string
	Text string
	Hint string // italic line under the body text
}

// UnknownPanel is shown for diamonds that have not been explored. The
// exploration prompt lands on the hint line, in italics.
var UnknownPanel = Panel{
	Name: crawl.UnknownFeature.Name,
	Type: crawl.UnknownFeature.Type,
	Hint: crawl.UnknownFeature.Text,
}

// Scene is one full screen: identity, prose, map and panel state.
type Scene struct {
	HexID       string
	Description string
	Map         *crawl.Map
	Selected    int // diamond index; -1 for no cursor
	Panel       Panel
	Grain       bool // paper speckle over the map area
}

// Renderer rasterizes scenes at a fixed layout.
type Renderer struct {
	L     Layout
	faces *faceCache
}

func NewRenderer(l Layout) *Renderer {
	return &Renderer{L: l, faces: newFaceCache()}
}

// HexBox returns the lattice rectangle: the left column below the title
// and wrapped description. Generation and rendering must agree on where
// the hex sits, so callers derive the lattice config here before
// calling crawl.Generate.
func (r *Renderer) HexBox(hexID, description string) crawl.LatticeConfig {
	L := r.L
	gridTop := r.textBottom(hexID, description) + float64(L.HexInsetTop)
	return crawl.LatticeConfig{
		Left:         float64(L.Margin + L.LeftPad + L.HexInsetSides),
		Top:          gridTop,
		Right:        float64(L.SplitX - L.RightPad - L.HexInsetSides),
		Bottom:       float64(L.Height - L.Margin - L.HexInsetBottom),
		CellsAcross:  L.CellsAcross,
		DiamondScale: L.DiamondScale,
	}
}

// textBottom computes where the left column's text flow ends. Render
// walks the same flow, so the two never disagree.
func (r *Renderer) textBottom(hexID, description string) float64 {
	L := r.L
	maxPx := float64(L.SplitX-L.RightPad) - float64(L.Margin+L.LeftPad)
	title := "HEX:" + hexID
	size := r.faces.fitSize(fontBold, title, maxPx, L.TitleSize, 14)
	_, th := r.faces.measure(fontBold, float64(size), title)

	y := float64(L.Margin+L.TopPad) + th + 6
	step := r.lineStep(float64(L.BodySize), 1.4)
	y += float64(len(r.descriptionLines(description, maxPx))) * step
	return y
}

func (r *Renderer) descriptionLines(description string, maxPx float64) []string {
	lines := r.wrap(description, fontRegular, float64(r.L.BodySize), maxPx)
	if len(lines) == 0 {
		lines = []string{"(description placeholder)"}
	}
	return lines
}

// lineStep is the per-line y advance: the tight height of "Ag" times
// the gap factor, truncated to whole pixels.
func (r *Renderer) lineStep(size, gap float64) float64 {
	_, lh := r.faces.measure(fontRegular, size, "Ag")
	return math.Trunc(lh * gap)
}

// wrap greedily packs words into lines no wider than maxPx. A word too
// wide for an empty line gets a line of its own.
func (r *Renderer) wrap(text string, fnt *sfnt.Font, size, maxPx float64) []string {
	var lines []string
	var cur []string
	for _, w := range strings.Fields(text) {
		cand := w
		if len(cur) > 0 {
			cand = strings.Join(cur, " ") + " " + w
		}
		tw, _ := r.faces.measure(fnt, size, cand)
		if tw <= maxPx || len(cur) == 0 {
			cur = append(cur, w)
		} else {
			lines = append(lines, strings.Join(cur, " "))
			cur = []string{w}
		}
	}
	if len(cur) > 0 {
		lines = append(lines, strings.Join(cur, " "))
	}
	return lines
}

// Render rasterizes the scene to its final size.
func (r *Renderer) Render(sc Scene) *image.RGBA {
	big := r.renderScaled(sc, superSample)
	out := image.NewRGBA(image.Rect(0, 0, r.L.Width, r.L.Height))
	xdraw.CatmullRom.Scale(out, out.Bounds(), big, big.Bounds(), xdraw.Over, nil)

	if sc.Grain && sc.Map != nil {
		lat := sc.Map.Lattice
		speckle(out, sc.Map.Seed, lat.CX, lat.CY, lat.R)
	}
	return out
}

func (r *Renderer) renderScaled(sc Scene, scale int) *image.RGBA {
	L := r.L
	c := &canvas{
		img:   image.NewRGBA(image.Rect(0, 0, L.Width*scale, L.Height*scale)),
		k:     float64(scale),
		faces: r.faces,
	}
	c.fill(colorPaper)

	W, H := float64(L.Width), float64(L.Height)
	m := float64(L.Margin)

	// frame and panel split
	c.strokeRect(m, m, W-m, H-m, 2)
	c.line(float64(L.SplitX), m, float64(L.SplitX), H-m, 2)

	// left title, fitted to the column
	leftX := float64(L.Margin + L.LeftPad)
	maxPx := float64(L.SplitX-L.RightPad) - leftX
	title := "HEX:" + sc.HexID
	titleSize := r.faces.fitSize(fontBold, title, maxPx, L.TitleSize, 14)
	c.text(leftX, m+float64(L.TopPad), title, fontBold, float64(titleSize), colorInk)
	_, th := r.faces.measure(fontBold, float64(titleSize), title)

	// description
	y := m + float64(L.TopPad) + th + 6
	step := r.lineStep(float64(L.BodySize), 1.4)
	for _, line := range r.descriptionLines(sc.Description, maxPx) {
		c.text(leftX, y, line, fontRegular, float64(L.BodySize), colorInk)
		y += step
	}

	if sc.Map != nil {
		r.drawMap(c, sc)
	}

	r.drawCompass(c, m+float64(L.CompassOffsetX), H-m-float64(L.CompassOffsetY), 20)
	r.drawPanel(c, sc.Panel)

	return c.img
}

// drawMap lays down the hex grid, then trails, then diamonds and their
// numbers on top so trails never cross a glyph, then the cursor ring.
func (r *Renderer) drawMap(c *canvas, sc Scene) {
	lat := sc.Map.Lattice
	if lat == nil || lat.R <= 0 {
		return
	}

	r.drawGrid(c, lat)

	for _, t := range sc.Map.Trails {
		if t.Style != crawl.StyleSpecial {
			c.polyline(t.Points, 2)
		}
		for _, s := range t.Marks {
			c.line(s.X1, s.Y1, s.X2, s.Y2, 2)
		}
		for _, s := range t.Dashes {
			c.line(s.X1, s.Y1, s.X2, s.Y2, 2)
		}
	}

	for _, d := range sc.Map.Diamonds {
		r.drawDiamond(c, d.X, d.Y, lat.GlyphR, d.Label)
	}

	if sc.Selected >= 0 && sc.Selected < len(sc.Map.Diamonds) {
		d := sc.Map.Diamonds[sc.Selected]
		c.circle(d.X, d.Y, lat.GlyphR+6, 2)
	}

	r.drawLegend(c, lat)
}

// drawGrid tiles small hex outlines across the big hex and clips them
// at its boundary, then strokes the big outline on top.
func (r *Renderer) drawGrid(c *canvas, lat *crawl.Lattice) {
	s := lat.CellEdge
	if s <= 0 {
		return
	}
	inside := func(x, y float64) bool {
		return insideHex(lat.CX, lat.CY, lat.R, x, y)
	}

	qMax := int(lat.R/(1.5*s)) + 3
	rMax := int(lat.R/(sqrt3*s)) + 3
	for q := -qMax; q <= qMax; q++ {
		for rr := -rMax; rr <= rMax; rr++ {
			x := lat.CX + 1.5*s*float64(q)
			y := lat.CY + sqrt3*s*(float64(rr)+float64(q)/2)
			if math.Hypot(x-lat.CX, y-lat.CY) > lat.R+2*s {
				continue
			}
			poly := crawl.HexPolygon(x, y, s)
			for i := 0; i < 6; i++ {
				a, b := poly[i], poly[(i+1)%6]
				c.clippedLine(a[0], a[1], b[0], b[1], 1, inside)
			}
		}
	}

	big := crawl.HexPolygon(lat.CX, lat.CY, lat.R)
	c.polygonOutline(big[:], 1)
}

func (r *Renderer) drawDiamond(c *canvas, x, y, glyphR float64, label int) {
	poly := [][2]float64{{x, y - glyphR}, {x + glyphR, y}, {x, y + glyphR}, {x - glyphR, y}}
	c.fillPolygon(poly, colorInk)
	c.polygonOutline(poly, 2)
	c.textCentered(x, y, strconv.Itoa(label), fontBold, glyphR*1.2, colorPaper)
}

func (r *Renderer) drawCompass(c *canvas, cx, cy, size float64) {
	w := math.Trunc(size / 3)
	if w < 3 {
		w = 3
	}
	c.fillPolygon([][2]float64{{cx, cy - size}, {cx - w, cy - w}, {cx + w, cy - w}}, colorInk)
	c.fillPolygon([][2]float64{{cx, cy + size}, {cx - w, cy + w}, {cx + w, cy + w}}, colorInk)
	c.fillPolygon([][2]float64{{cx - size, cy}, {cx - w, cy - w}, {cx - w, cy + w}}, colorInk)
	c.fillPolygon([][2]float64{{cx + size, cy}, {cx + w, cy - w}, {cx + w, cy + w}}, colorInk)

	body := float64(r.L.BodySize)
	c.text(cx-5, cy-size-14, "N", fontRegular, body, colorInk)
	c.text(cx-5, cy+size+2, "S", fontRegular, body, colorInk)
	c.text(cx-size-12, cy-6, "W", fontRegular, body, colorInk)
	c.text(cx+size+6, cy-6, "E", fontRegular, body, colorInk)
}

// drawLegend places the four-row trail key near the split line, pushed
// right of the hex and kept inside the panel's bottom margin.
func (r *Renderer) drawLegend(c *canvas, lat *crawl.Lattice) {
	L := r.L
	const (
		iconW   = 22.0
		iconH   = 22.0
		rowGap  = 8.0
		iconGap = 8.0
	)

	panelRightInner := float64(L.SplitX - L.LegendRightMargin - L.LegendSafeFromSplit)
	panelBottom := float64(L.Height - L.Margin - L.LegendBottomMargin)
	hexRight := lat.CX + lat.R

	rightTarget := math.Max(panelRightInner, hexRight+float64(L.LegendPushFromHex))
	xIcon := rightTarget - iconW

	neededH := iconH*4 + rowGap*3
	topY := math.Min(panelBottom-neededH, lat.CY+lat.R-iconH-18)
	topY = math.Max(topY, lat.CY-lat.R+float64(L.LegendTopMinAboveHex))

	labels := []string{"Path", "Difficult", "Dangerous", "Special"}
	icons := []func(x, y float64){
		func(x, y float64) { r.legendPath(c, x, y, iconW, iconH) },
		func(x, y float64) { r.legendDifficult(c, x, y, iconW, iconH) },
		func(x, y float64) { r.legendDangerous(c, x, y, iconW, iconH) },
		func(x, y float64) { r.legendSpecial(c, x, y, iconW, iconH) },
	}

	body := float64(L.BodySize)
	y := topY
	for i, label := range labels {
		tw, lh := r.faces.measure(fontRegular, body, label)
		tx := xIcon - iconGap - tw
		ty := y + math.Trunc((iconH-lh)/2)
		c.text(tx, ty, label, fontRegular, body, colorInk)
		c.strokeRect(xIcon, y, xIcon+iconW, y+iconH, 2)
		icons[i](xIcon, y)
		y += iconH + rowGap
	}
}

func (r *Renderer) legendPath(c *canvas, x, y, w, h float64) {
	cy := y + h/2
	c.line(x+4, cy, x+w-4, cy, 2)
}

func (r *Renderer) legendDifficult(c *canvas, x, y, w, h float64) {
	r.legendPath(c, x, y, w, h)
	cy := y + h/2
	for t := x + 7; t <= x+w-7; t += 6 {
		c.line(t, cy-5, t, cy+5, 2)
	}
}

func (r *Renderer) legendDangerous(c *canvas, x, y, w, h float64) {
	r.legendPath(c, x, y, w, h)
	cy := y + h/2
	const barb = 5
	for t := x + 9; t <= x+w-9; t += 10 {
		c.line(t-barb, cy-barb, t, cy, 2)
		c.line(t, cy, t-barb, cy+barb, 2)
	}
}

func (r *Renderer) legendSpecial(c *canvas, x, y, w, h float64) {
	cy := y + h/2
	c.dashLine(x+4, cy, x+w-4, cy, 8, 6, 2)
}

// drawPanel fills the right panel: centered fitted name and type, then
// the outlined text box with wrapped body and an italic hint line.
func (r *Renderer) drawPanel(c *canvas, p Panel) {
	L := r.L
	headerY := float64(L.Margin + 8)
	panelLeft := float64(L.SplitX + 16)
	panelRight := float64(L.Width - L.Margin - 8)
	panelWidth := panelRight - panelLeft

	typeCap := L.FeatureSize
	if typeCap < 12 {
		typeCap = 12
	}

	nameSize := r.faces.fitSize(fontBold, p.Name, panelWidth, L.TitleSize, 14)
	typeSize := r.faces.fitSize(fontMedium, p.Type, panelWidth, typeCap, 10)

	nameW, nameH := r.faces.measure(fontBold, float64(nameSize), p.Name)
	c.text(panelLeft+(panelWidth-nameW)/2, headerY, p.Name, fontBold, float64(nameSize), colorInk)

	typeY := headerY + nameH + 6
	typeW, typeH := r.faces.measure(fontMedium, float64(typeSize), p.Type)
	c.text(panelLeft+(panelWidth-typeW)/2, typeY, p.Type, fontMedium, float64(typeSize), colorInk)

	boxTop := typeY + typeH + 12
	boxBottom := float64(L.Height - L.Margin - 8)
	c.strokeRect(panelLeft, boxTop, panelLeft+panelWidth, boxBottom, 2)

	const pad = 10
	tx := panelLeft + pad
	ty := boxTop + pad
	usable := panelWidth - 2*pad
	body := float64(L.BodySize)
	step := r.lineStep(body, 1.5)

	for _, line := range r.wrap(p.Text, fontRegular, body, usable) {
		c.text(tx, ty, line, fontRegular, body, colorInk)
		ty += step
	}
	if p.Hint != "" {
		if p.Text != "" {
			ty += step
		}
		for _, line := range r.wrap(p.Hint, fontItalic, body, usable) {
			c.text(tx, ty, line, fontItalic, body, colorInk)
			ty += step
		}
	}
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

func insideHex(cx, cy, r, x, y float64) bool {
	px, py := math.Abs(x-cx), math.Abs(y-cy)
	if px > r || py > r*sqrt3/2+1 {
		return false
	}
	return sqrt3*px+py <= sqrt3*r+1
}

// canvas draws in base-layout coordinates onto a supersampled image;
// every coordinate and stroke width is multiplied by k on the way in.
type canvas struct {
	img   *image.RGBA
	k     float64
	faces *faceCache
}

func (c *canvas) fill(col color.Color) {
	xdraw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, xdraw.Src)
}

func (c *canvas) line(x1, y1, x2, y2, width float64) {
	x1, y1, x2, y2 = x1*c.k, y1*c.k, x2*c.k, y2*c.k
	w := width * c.k

	dx, dy := x2-x1, y2-y1
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		half := w / 2
		for oy := -half; oy <= half; oy++ {
			for ox := -half; ox <= half; ox++ {
				c.img.Set(int(x1+ox), int(y1+oy), colorInk)
			}
		}
		return
	}

	steps := math.Max(math.Abs(dx), math.Abs(dy))
	px, py := -dy/dist, dx/dist
	half := w / 2
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		mx, my := x1+dx*t, y1+dy*t
		for o := -half; o <= half; o += 0.5 {
			c.img.Set(int(mx+px*o), int(my+py*o), colorInk)
		}
	}
}

// clippedLine subdivides the segment and keeps only the pieces whose
// midpoints pass the inside test, so strokes stop at region boundaries.
func (c *canvas) clippedLine(x1, y1, x2, y2, width float64, inside func(x, y float64) bool) {
	dx, dy := x2-x1, y2-y1
	n := int(math.Hypot(dx, dy)/2) + 1
	for i := 0; i < n; i++ {
		t0 := float64(i) / float64(n)
		t1 := float64(i+1) / float64(n)
		tm := (t0 + t1) / 2
		if inside(x1+dx*tm, y1+dy*tm) {
			c.line(x1+dx*t0, y1+dy*t0, x1+dx*t1, y1+dy*t1, width)
		}
	}
}

func (c *canvas) polyline(pts [][2]float64, width float64) {
	for i := 1; i < len(pts); i++ {
		c.line(pts[i-1][0], pts[i-1][1], pts[i][0], pts[i][1], width)
	}
}

func (c *canvas) polygonOutline(pts [][2]float64, width float64) {
	n := len(pts)
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		c.line(a[0], a[1], b[0], b[1], width)
	}
}

func (c *canvas) strokeRect(x0, y0, x1, y1, width float64) {
	c.line(x0, y0, x1, y0, width)
	c.line(x1, y0, x1, y1, width)
	c.line(x1, y1, x0, y1, width)
	c.line(x0, y1, x0, y0, width)
}

// fillPolygon rasterizes with even-odd scanlines.
func (c *canvas) fillPolygon(pts [][2]float64, col color.Color) {
	n := len(pts)
	if n < 3 {
		return
	}
	sp := make([][2]float64, n)
	minY, maxY := pts[0][1]*c.k, pts[0][1]*c.k
	for i, p := range pts {
		sp[i] = [2]float64{p[0] * c.k, p[1] * c.k}
		minY = math.Min(minY, sp[i][1])
		maxY = math.Max(maxY, sp[i][1])
	}

	for y := int(minY); y <= int(maxY); y++ {
		fy := float64(y) + 0.5
		var xs []float64
		for i := 0; i < n; i++ {
			a, b := sp[i], sp[(i+1)%n]
			if (a[1] <= fy) != (b[1] <= fy) {
				t := (fy - a[1]) / (b[1] - a[1])
				xs = append(xs, a[0]+(b[0]-a[0])*t)
			}
		}
		sort.Float64s(xs)
		for j := 0; j+1 < len(xs); j += 2 {
			for x := int(xs[j]); x <= int(xs[j+1]); x++ {
				c.img.Set(x, y, col)
			}
		}
	}
}

func (c *canvas) circle(cx, cy, r, width float64) {
	cx, cy, r = cx*c.k, cy*c.k, r*c.k
	w := width * c.k
	for a := 0.0; a < 2*math.Pi; a += 0.002 {
		nx, ny := math.Cos(a), math.Sin(a)
		for t := -w / 2; t <= w/2; t += 0.5 {
			c.img.Set(int(cx+nx*(r+t)), int(cy+ny*(r+t)), colorInk)
		}
	}
}

func (c *canvas) dashLine(x1, y1, x2, y2, dash, gap, width float64) {
	dx, dy := x2-x1, y2-y1
	dist := math.Hypot(dx, dy)
	if dist <= 1e-6 {
		return
	}
	ux, uy := dx/dist, dy/dist
	pos := 0.0
	drawOn := true
	for pos < dist {
		seg := gap
		if drawOn {
			seg = dash
		}
		seg = math.Min(seg, dist-pos)
		if drawOn {
			c.line(x1+ux*pos, y1+uy*pos, x1+ux*(pos+seg), y1+uy*(pos+seg), width)
		}
		pos += seg
		drawOn = !drawOn
	}
}

// text draws with the top-left corner at (x, y).
func (c *canvas) text(x, y float64, s string, fnt *sfnt.Font, size float64, col color.Color) {
	face := c.faces.face(fnt, size*c.k)
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot: fixed.Point26_6{
			X: toFixed(x * c.k),
			Y: toFixed(y*c.k) + face.Metrics().Ascent,
		},
	}
	d.DrawString(s)
}

// textCentered draws s centered on (x, y). Digits run from the baseline
// to the cap height, roughly 0.7 of the ascent, so the baseline sits
// half a cap below center.
func (c *canvas) textCentered(x, y float64, s string, fnt *sfnt.Font, size float64, col color.Color) {
	face := c.faces.face(fnt, size*c.k)
	w := fromFixed(font.MeasureString(face, s))
	asc := fromFixed(face.Metrics().Ascent)
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot: fixed.Point26_6{
			X: toFixed(x*c.k - w/2),
			Y: toFixed(y*c.k + 0.35*asc),
		},
	}
	d.DrawString(s)
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }
