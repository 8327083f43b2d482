// Package viewer is the interactive crawl screen: an Ebiten front end
// over the map generator, the sheet store, and the scribe.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Rws117r/HexScribe/internal/crawl"
	"github.com/Rws117r/HexScribe/internal/export"
	"github.com/Rws117r/HexScribe/internal/scribe"
	"github.com/Rws117r/HexScribe/internal/store"
)

// cursorGap is the ring clearance around the selected diamond's glyph.
const cursorGap = 6

// statusDuration is how long a status line stays on screen.
const statusDuration = 4 * time.Second

var colorCursor = color.RGBA{0, 0, 0, 255}

// Config wires a viewer to its backends.
type Config struct {
	HexID     string         // crawl hex id, e.g. "0704"
	Store     *store.Store   // open sheet store (required)
	Scribe    *scribe.Client // nil disables the G key
	Layout    export.Layout  // zero value falls back to DefaultLayout
	Seed      int64          // used only when the hex has no sheet yet; 0 = clock
	MaxTrails int            // 0 = engine default
}

type Viewer struct {
	ren    *export.Renderer
	st     *store.Store
	scribe *scribe.Client

	hexID     string
	maxTrails int

	sheet    *store.Sheet
	m        *crawl.Map
	selected int

	explore *exploreState // non-nil while the wizard is open
	status  statusLine

	// Page image is rebuilt only when sheet or selection state changes.
	dirty bool
	page  *ebiten.Image

	prevKeys map[ebiten.Key]bool

	scribeBusy bool
	scribeDone chan scribeResult
}

type scribeResult struct {
	sheetID string
	uid     string
	text    string
	err     error
}

// New loads the hex's sheet, or generates and persists a fresh one when
// the hex has never been opened.
func New(cfg Config) (*Viewer, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("viewer: store is required")
	}
	if cfg.HexID == "" {
		return nil, fmt.Errorf("viewer: hex id is required")
	}
	if cfg.Layout.Width == 0 {
		cfg.Layout = export.DefaultLayout
	}
	v := &Viewer{
		ren:        export.NewRenderer(cfg.Layout),
		st:         cfg.Store,
		scribe:     cfg.Scribe,
		hexID:      cfg.HexID,
		maxTrails:  cfg.MaxTrails,
		dirty:      true,
		prevKeys:   map[ebiten.Key]bool{},
		scribeDone: make(chan scribeResult, 1),
	}
	if err := v.loadOrCreate(cfg.Seed); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Viewer) loadOrCreate(seed int64) error {
	sh, err := v.st.LoadSheet(v.hexID)
	if err != nil {
		return fmt.Errorf("load sheet: %w", err)
	}
	if sh != nil {
		m, err := v.generate(sh.Seed, sh.Marks(), sh.Description)
		if err != nil {
			return err
		}
		v.sheet, v.m = sh, m
		return nil
	}

	// First visit: roll the hex and persist the marks right away so the
	// layout survives restarts even before anything is explored.
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	m, err := v.generate(seed, nil, "")
	if err != nil {
		return err
	}
	sh = store.NewSheet(v.hexID, seed, m.Marks)
	if err := v.st.SaveSheet(sh); err != nil {
		return fmt.Errorf("save new sheet: %w", err)
	}
	v.sheet, v.m = sh, m
	return nil
}

func (v *Viewer) generate(seed int64, marks []crawl.Mark, description string) (*crawl.Map, error) {
	return crawl.Generate(crawl.MapConfig{
		Lattice:   v.ren.HexBox(v.hexID, description),
		Marks:     marks,
		MaxTrails: v.maxTrails,
		Seed:      seed,
	})
}

func (v *Viewer) Update() error {
	v.drainScribe()
	if v.explore != nil {
		v.updateExplore()
		return nil
	}
	return v.updateMap()
}

// updateMap processes map-screen keypresses (edge-triggered).
func (v *Viewer) updateMap() error {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		return pollPressed(currentKeys, v.prevKeys, k)
	}
	defer func() { v.prevKeys = currentKeys }()

	esc := pressed(ebiten.KeyEscape)
	quit := pressed(ebiten.KeyQ)
	if esc || quit {
		return ebiten.Termination
	}

	for _, dk := range directionKeys {
		if pressed(dk.key) {
			if next := nextDiamond(v.m.Diamonds, v.selected, dk.dx, dk.dy); next != v.selected {
				v.selected = next
				v.dirty = true
			}
		}
	}

	enter := pressed(ebiten.KeyEnter)
	numEnter := pressed(ebiten.KeyNumpadEnter)
	edit := pressed(ebiten.KeyE)
	if enter || numEnter || edit {
		v.openExplore()
	}
	if pressed(ebiten.KeyR) {
		v.reroll()
	}
	if pressed(ebiten.KeyC) {
		v.copyShareCode()
	}
	if pressed(ebiten.KeyP) {
		v.snapshot()
	}
	if pressed(ebiten.KeyG) {
		v.sendToScribe()
	}
	return nil
}

// selectedDiamond resolves the cursor to its sheet record.
func (v *Viewer) selectedDiamond() *store.SheetDiamond {
	if v.selected < 0 || v.selected >= len(v.m.Diamonds) {
		return nil
	}
	return v.sheet.DiamondAt(v.m.Diamonds[v.selected].CellIndex)
}

// reroll discards the sheet and rolls the hex again from the clock.
func (v *Viewer) reroll() {
	if err := v.st.DeleteSheet(v.hexID); err != nil {
		v.setStatus("Reroll failed: " + err.Error())
		return
	}
	seed := time.Now().UnixNano()
	m, err := v.generate(seed, nil, "")
	if err != nil {
		v.setStatus("Reroll failed: " + err.Error())
		return
	}
	sh := store.NewSheet(v.hexID, seed, m.Marks)
	if err := v.st.SaveSheet(sh); err != nil {
		v.setStatus("Reroll failed: " + err.Error())
		return
	}
	v.sheet, v.m = sh, m
	v.selected = 0
	v.dirty = true
	v.setStatus(fmt.Sprintf("Rerolled hex %s", v.hexID))
}

func (v *Viewer) copyShareCode() {
	code := crawl.ShareCode(v.sheet.Seed, v.sheet.Marks())
	if err := clipboard.WriteAll(code); err != nil {
		v.setStatus("Clipboard failed: " + err.Error())
		return
	}
	v.setStatus("Copied " + code)
}

func (v *Viewer) snapshot() {
	name := fmt.Sprintf("hex-%s-%s.png", v.hexID, time.Now().Format("20060102-150405"))
	if err := export.WritePNG(name, v.ren.Render(v.scene())); err != nil {
		v.setStatus("Snapshot failed: " + err.Error())
		return
	}
	v.setStatus("Wrote " + name)
}

// sendToScribe rewrites the selected site's notes in the background.
// The raw notes stay in place until a rewrite actually lands.
func (v *Viewer) sendToScribe() {
	d := v.selectedDiamond()
	switch {
	case d == nil:
	case !v.scribe.Enabled():
		v.setStatus("Scribe off: set OLLAMA_HOST to enable")
	case d.Status != store.StatusDiscovered:
		v.setStatus("Explore the site first, then polish its notes")
	case strings.TrimSpace(d.Text) == "":
		v.setStatus("No notes to rewrite")
	case v.scribeBusy:
		v.setStatus("Scribe is still writing")
	default:
		v.scribeBusy = true
		v.setStatus("Scribe is rewriting " + d.Name + "...")
		sheetID, uid, notes := v.sheet.ID, d.UID, d.Text
		go func() {
			out, err := v.scribe.Rewrite(context.Background(), notes, "")
			v.scribeDone <- scribeResult{sheetID: sheetID, uid: uid, text: out, err: err}
		}()
	}
}

// drainScribe applies a finished rewrite, if one is waiting. Results for
// a sheet that was rerolled in the meantime are dropped.
func (v *Viewer) drainScribe() {
	select {
	case res := <-v.scribeDone:
		v.scribeBusy = false
		if res.err != nil {
			v.setStatus("Scribe failed: " + res.err.Error())
			return
		}
		if res.sheetID != v.sheet.ID {
			v.setStatus("Scribe result discarded: sheet changed")
			return
		}
		d := v.sheet.Diamond(res.uid)
		if d == nil {
			return
		}
		d.Text = res.text
		if err := v.st.SaveSheet(v.sheet); err != nil {
			v.setStatus("Save failed: " + err.Error())
			return
		}
		v.dirty = true
		v.setStatus("Scribe rewrote " + d.Name)
	default:
	}
}

func (v *Viewer) setStatus(s string) { v.status.set(s) }

// scene builds the renderer input for the current state. The cursor ring
// is drawn live by Draw, not baked into the page.
func (v *Viewer) scene() export.Scene {
	return export.Scene{
		HexID:       v.hexID,
		Description: v.sheet.Description,
		Map:         v.m,
		Selected:    -1,
		Panel:       v.panelFor(v.selectedDiamond()),
	}
}

func (v *Viewer) panelFor(d *store.SheetDiamond) export.Panel {
	if d == nil || d.Status != store.StatusDiscovered {
		return export.UnknownPanel
	}
	label := crawl.FeatureLabel(d.Type)
	if label == "" {
		label = d.Type
	}
	return export.Panel{Name: d.Name, Type: label, Text: d.Text}
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	if v.dirty || v.page == nil {
		v.page = ebiten.NewImageFromImage(v.ren.Render(v.scene()))
		v.dirty = false
	}
	screen.DrawImage(v.page, nil)

	v.drawCursor(screen)
	if v.explore != nil {
		v.explore.draw(screen, v.ren.L.Width, v.ren.L.Height)
	}
	v.drawStatus(screen)
}

func (v *Viewer) drawCursor(screen *ebiten.Image) {
	if v.selected < 0 || v.selected >= len(v.m.Diamonds) {
		return
	}
	d := v.m.Diamonds[v.selected]
	r := float32(v.m.Lattice.GlyphR + cursorGap)
	vector.StrokeCircle(screen, float32(d.X), float32(d.Y), r, 2, colorCursor, true)
}

func (v *Viewer) drawStatus(screen *ebiten.Image) {
	s := v.status.current()
	if s == "" {
		return
	}
	m := v.ren.L.Margin
	w := float32(len(s)*6 + 12)
	y := float32(v.ren.L.Height - m - 18)
	vector.FillRect(screen, float32(m), y, w, 16, color.RGBA{0, 0, 0, 230}, false)
	ebitenutil.DebugPrintAt(screen, s, m+6, int(y))
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.ren.L.Width, v.ren.L.Height
}

// statusLine is a transient one-line message at the page's bottom edge.
type statusLine struct {
	text  string
	until time.Time
}

func (s *statusLine) set(text string) {
	s.text = text
	s.until = time.Now().Add(statusDuration)
}

func (s *statusLine) current() string {
	if time.Now().After(s.until) {
		return ""
	}
	return s.text
}
