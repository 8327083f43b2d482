package viewer

import (
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Rws117r/HexScribe/internal/crawl"
	"github.com/Rws117r/HexScribe/internal/store"
)

// Explore wizard steps, in play order.
type exploreStep int

const (
	stepDeck    exploreStep = iota // draw-from-deck prompt
	stepName                       // name entry
	stepType                       // feature type picker
	stepNotes                      // free-form notes
	stepConfirm                    // review and save
)

const (
	modalWidth = 440
	modalPad   = 12
	modalLineH = 16
	modalCols  = 60 // wrap width for notes, in characters
	typeColW   = 20 // picker column width, in characters
)

// exploreState is the modal wizard over one diamond.
type exploreState struct {
	uid     string
	label   int
	step    exploreStep
	editing bool // reopened on an already-discovered site

	name  []rune
	notes []rune

	col, row int // type picker cursor
}

// newExplore starts the wizard. A discovered site skips the deck prompt
// and comes back prefilled.
func newExplore(d *store.SheetDiamond) *exploreState {
	e := &exploreState{uid: d.UID, label: d.Label}
	if d.Status == store.StatusDiscovered {
		e.step = stepName
		e.editing = true
		e.name = []rune(d.Name)
		e.notes = []rune(d.Text)
		e.col, e.row = findType(d.Type)
	}
	return e
}

// findType locates a feature key in the picker columns, or (0, 0).
func findType(key string) (int, int) {
	for c, col := range crawl.FeatureColumns {
		for r, ft := range col.Types {
			if ft.Key == key {
				return c, r
			}
		}
	}
	return 0, 0
}

func (v *Viewer) openExplore() {
	d := v.selectedDiamond()
	if d == nil {
		return
	}
	v.explore = newExplore(d)
}

// updateExplore processes wizard keypresses (edge-triggered, sharing
// prevKeys with the map screen so the opening Enter does not leak in).
func (v *Viewer) updateExplore() {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		return pollPressed(currentKeys, v.prevKeys, k)
	}
	defer func() { v.prevKeys = currentKeys }()

	e := v.explore
	if pressed(ebiten.KeyEscape) {
		v.explore = nil
		return
	}
	enterMain := pressed(ebiten.KeyEnter)
	enterNum := pressed(ebiten.KeyNumpadEnter)
	enter := enterMain || enterNum
	back := pressed(ebiten.KeyBackspace)

	switch e.step {
	case stepDeck:
		if enter {
			e.step = stepName
		}
	case stepName:
		e.name = appendPrintable(e.name, ebiten.AppendInputChars(nil))
		if back {
			e.name = dropLast(e.name)
		}
		if enter && strings.TrimSpace(string(e.name)) != "" {
			e.step = stepType
		}
	case stepType:
		if pressed(ebiten.KeyArrowLeft) {
			e.moveType(-1, 0)
		}
		if pressed(ebiten.KeyArrowRight) {
			e.moveType(1, 0)
		}
		if pressed(ebiten.KeyArrowUp) {
			e.moveType(0, -1)
		}
		if pressed(ebiten.KeyArrowDown) {
			e.moveType(0, 1)
		}
		if back {
			e.step = stepName
		}
		if enter {
			e.step = stepNotes
		}
	case stepNotes:
		e.notes = appendPrintable(e.notes, ebiten.AppendInputChars(nil))
		if back {
			e.notes = dropLast(e.notes)
		}
		if enter {
			if ebiten.IsKeyPressed(ebiten.KeyControl) {
				e.step = stepConfirm
			} else {
				e.notes = append(e.notes, '\n')
			}
		}
	case stepConfirm:
		if back {
			e.step = stepNotes
		}
		if enter {
			v.saveExplore()
		}
	}
}

// saveExplore commits the wizard to the sheet and the store.
func (v *Viewer) saveExplore() {
	e := v.explore
	v.explore = nil
	d := v.sheet.Diamond(e.uid)
	if d == nil {
		return
	}
	d.Status = store.StatusDiscovered
	d.Name = strings.TrimSpace(string(e.name))
	d.Type = e.picked().Key
	d.Text = strings.TrimSpace(string(e.notes))
	v.dirty = true
	if err := v.st.SaveSheet(v.sheet); err != nil {
		v.setStatus("Save failed: " + err.Error())
		return
	}
	v.setStatus("Recorded " + d.Name)
}

// moveType steps the picker cursor, clamping the row when crossing into
// a shorter column.
func (e *exploreState) moveType(dcol, drow int) {
	cols := crawl.FeatureColumns
	e.col = clamp(e.col+dcol, 0, len(cols)-1)
	e.row = clamp(e.row+drow, 0, len(cols[e.col].Types)-1)
}

func (e *exploreState) picked() crawl.FeatureType {
	return crawl.FeatureColumns[e.col].Types[e.row]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (e *exploreState) title() string {
	if e.editing {
		return fmt.Sprintf("EDIT SITE %d", e.label)
	}
	return fmt.Sprintf("EXPLORE SITE %d", e.label)
}

// lines renders the modal body as rows of monospace text.
func (e *exploreState) lines() []string {
	ls := []string{e.title(), ""}
	switch e.step {
	case stepDeck:
		ls = append(ls,
			fmt.Sprintf("Draw a card from deck %d.", e.label),
			"",
			"[Enter] draw   [Esc] cancel",
		)
	case stepName:
		ls = append(ls,
			"Name this site:",
			"",
			"  "+string(e.name)+"_",
			"",
			"[Enter] next   [Backspace] delete   [Esc] cancel",
		)
	case stepType:
		ls = append(ls, "Choose a feature type:", "")
		ls = append(ls, e.pickerRows()...)
		ls = append(ls, "", "[Arrows] move   [Enter] next   [Backspace] name")
	case stepNotes:
		ls = append(ls, "Notes for the keeper:", "")
		for _, l := range wrapRunes(string(e.notes)+"_", modalCols) {
			ls = append(ls, "  "+l)
		}
		ls = append(ls, "", "[Ctrl+Enter] continue   [Enter] new line   [Esc] cancel")
	case stepConfirm:
		ls = append(ls,
			"Record this site?",
			"",
			"  Name: "+strings.TrimSpace(string(e.name)),
			"  Type: "+e.picked().Label,
			"",
		)
		for _, l := range wrapRunes(strings.TrimSpace(string(e.notes)), modalCols) {
			ls = append(ls, "  "+l)
		}
		ls = append(ls, "", "[Enter] save   [Backspace] notes   [Esc] cancel")
	}
	return ls
}

// pickerRows lays the three catalog columns side by side with a cursor
// marker on the highlighted entry.
func (e *exploreState) pickerRows() []string {
	cols := crawl.FeatureColumns
	rows := 0
	head := ""
	for _, c := range cols {
		if len(c.Types) > rows {
			rows = len(c.Types)
		}
		head += padRight("  "+c.Title, typeColW)
	}
	out := []string{strings.TrimRight(head, " ")}
	for r := 0; r < rows; r++ {
		line := ""
		for ci, c := range cols {
			cell := ""
			if r < len(c.Types) {
				marker := "  "
				if ci == e.col && r == e.row {
					marker = "> "
				}
				cell = marker + c.Types[r].Label
			}
			line += padRight(cell, typeColW)
		}
		out = append(out, strings.TrimRight(line, " "))
	}
	return out
}

func padRight(s string, w int) string {
	return fmt.Sprintf("%-*s", w, s)
}

// appendPrintable filters a frame's typed characters onto a buffer.
func appendPrintable(buf, in []rune) []rune {
	for _, r := range in {
		if r >= ' ' && r != 0x7f {
			buf = append(buf, r)
		}
	}
	return buf
}

func dropLast(buf []rune) []rune {
	if len(buf) == 0 {
		return buf
	}
	return buf[:len(buf)-1]
}

// wrapRunes word-wraps text to width characters, keeping explicit line
// breaks. A word longer than the width keeps its own line.
func wrapRunes(text string, width int) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, w := range words {
			switch {
			case line == "":
				line = w
			case utf8.RuneCountInString(line)+1+utf8.RuneCountInString(w) <= width:
				line += " " + w
			default:
				out = append(out, line)
				line = w
			}
		}
		out = append(out, line)
	}
	return out
}

// draw paints the modal panel centered over the page.
func (e *exploreState) draw(screen *ebiten.Image, pageW, pageH int) {
	ls := e.lines()
	boxH := len(ls)*modalLineH + 2*modalPad
	x0 := (pageW - modalWidth) / 2
	y0 := (pageH - boxH) / 2
	if y0 < 16 {
		y0 = 16
	}

	vector.FillRect(screen, float32(x0), float32(y0), modalWidth, float32(boxH),
		color.RGBA{0, 0, 0, 235}, false)
	vector.StrokeRect(screen, float32(x0), float32(y0), modalWidth, float32(boxH),
		2, color.White, false)

	for i, l := range ls {
		ebitenutil.DebugPrintAt(screen, l, x0+modalPad, y0+modalPad+i*modalLineH)
	}
}
