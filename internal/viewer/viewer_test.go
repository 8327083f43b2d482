package viewer

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Rws117r/HexScribe/internal/crawl"
	"github.com/Rws117r/HexScribe/internal/export"
	"github.com/Rws117r/HexScribe/internal/store"
)

func testViewer(t *testing.T, seed int64) (*Viewer, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "crawl.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	v, err := New(Config{HexID: "0704", Store: st, Seed: seed})
	if err != nil {
		t.Fatalf("new viewer: %v", err)
	}
	return v, st
}

func TestNew_RequiresStoreAndHex(t *testing.T) {
	if _, err := New(Config{HexID: "0704"}); err == nil {
		t.Error("want error without a store")
	}
	st, err := store.Open(filepath.Join(t.TempDir(), "crawl.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()
	if _, err := New(Config{Store: st}); err == nil {
		t.Error("want error without a hex id")
	}
}

func TestNew_PersistsFreshSheet(t *testing.T) {
	v, st := testViewer(t, 42)

	sh, err := st.LoadSheet("0704")
	if err != nil {
		t.Fatalf("LoadSheet: %v", err)
	}
	if sh == nil {
		t.Fatal("first open should persist a sheet")
	}
	if sh.ID != v.sheet.ID {
		t.Errorf("stored sheet %s, viewer holds %s", sh.ID, v.sheet.ID)
	}
	if sh.Seed != 42 {
		t.Errorf("seed = %d, want the configured 42", sh.Seed)
	}
	if len(sh.Diamonds) == 0 || len(sh.Diamonds) != len(v.m.Diamonds) {
		t.Errorf("stored %d diamonds, map has %d", len(sh.Diamonds), len(v.m.Diamonds))
	}
	for _, d := range sh.Diamonds {
		if d.Status != store.StatusUnknown {
			t.Errorf("diamond %s starts %q, want unknown", d.UID, d.Status)
		}
	}
}

func TestNew_LoadsExistingSheet(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "crawl.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	marks := []crawl.Mark{{CellIndex: 0, Label: 1}, {CellIndex: 6, Label: 3}}
	sh := store.NewSheet("0704", 7, marks)
	if err := st.SaveSheet(sh); err != nil {
		t.Fatalf("SaveSheet: %v", err)
	}

	v, err := New(Config{HexID: "0704", Store: st, Seed: 999})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if v.sheet.ID != sh.ID {
		t.Error("existing sheet should be loaded, not recreated")
	}
	if v.sheet.Seed != 7 {
		t.Errorf("seed = %d, want the stored 7 (config seed only applies to fresh hexes)", v.sheet.Seed)
	}
	if !reflect.DeepEqual(v.m.Marks, marks) {
		t.Errorf("map marks = %+v, want stored %+v", v.m.Marks, marks)
	}
}

func TestSaveExplore_Roundtrip(t *testing.T) {
	v, st := testViewer(t, 42)

	v.selected = 0
	v.openExplore()
	if v.explore == nil {
		t.Fatal("openExplore did not open the wizard")
	}
	if v.explore.step != stepDeck {
		t.Errorf("fresh diamond starts at step %d, want deck prompt", v.explore.step)
	}

	v.explore.name = []rune("  The Spring Estate ")
	v.explore.col, v.explore.row = 2, 0 // Civilization / Outpost
	v.explore.notes = []rune("walled-up dream-walker\n")
	v.saveExplore()

	if v.explore != nil {
		t.Error("wizard should close on save")
	}
	if !v.dirty {
		t.Error("save should dirty the page")
	}

	sh, err := st.LoadSheet("0704")
	if err != nil || sh == nil {
		t.Fatalf("LoadSheet: %v", err)
	}
	d := sh.DiamondAt(v.m.Diamonds[0].CellIndex)
	if d == nil {
		t.Fatal("selected diamond missing after save")
	}
	if d.Status != store.StatusDiscovered {
		t.Errorf("status = %q, want discovered", d.Status)
	}
	if d.Name != "The Spring Estate" {
		t.Errorf("name = %q, want trimmed entry", d.Name)
	}
	if d.Type != "outpost" {
		t.Errorf("type = %q, want outpost", d.Type)
	}
	if d.Text != "walled-up dream-walker" {
		t.Errorf("text = %q, want trimmed notes", d.Text)
	}
}

func TestReroll_ReplacesSheet(t *testing.T) {
	v, st := testViewer(t, 42)
	oldID := v.sheet.ID

	v.selected = 1
	v.reroll()

	if v.sheet.ID == oldID {
		t.Error("reroll should mint a new sheet")
	}
	if v.sheet.Seed == 42 {
		t.Error("reroll should pick a fresh seed")
	}
	if v.selected != 0 {
		t.Errorf("selected = %d, want reset to 0", v.selected)
	}
	if !v.dirty {
		t.Error("reroll should dirty the page")
	}

	sh, err := st.LoadSheet("0704")
	if err != nil || sh == nil {
		t.Fatalf("LoadSheet: %v", err)
	}
	if sh.ID != v.sheet.ID {
		t.Errorf("store holds sheet %s, viewer holds %s", sh.ID, v.sheet.ID)
	}
}

func discoverFirst(t *testing.T, v *Viewer) *store.SheetDiamond {
	t.Helper()
	d := v.sheet.Diamond("d00")
	if d == nil {
		t.Fatal("sheet has no d00")
	}
	d.Status = store.StatusDiscovered
	d.Name = "The Missing Gate"
	d.Type = "portal"
	d.Text = "raw keeper notes"
	if err := v.st.SaveSheet(v.sheet); err != nil {
		t.Fatalf("SaveSheet: %v", err)
	}
	return d
}

func TestDrainScribe_AppliesResult(t *testing.T) {
	v, st := testViewer(t, 42)
	discoverFirst(t, v)

	v.scribeBusy = true
	v.scribeDone <- scribeResult{sheetID: v.sheet.ID, uid: "d00", text: "polished prose"}
	v.drainScribe()

	if v.scribeBusy {
		t.Error("drain should clear the busy flag")
	}
	if got := v.sheet.Diamond("d00").Text; got != "polished prose" {
		t.Errorf("text = %q, want the rewrite", got)
	}
	if !v.dirty {
		t.Error("rewrite should dirty the page")
	}
	sh, err := st.LoadSheet("0704")
	if err != nil || sh == nil {
		t.Fatalf("LoadSheet: %v", err)
	}
	if got := sh.Diamond("d00").Text; got != "polished prose" {
		t.Errorf("stored text = %q, rewrite should persist", got)
	}
}

func TestDrainScribe_ErrorKeepsRawNotes(t *testing.T) {
	v, _ := testViewer(t, 42)
	discoverFirst(t, v)

	v.scribeBusy = true
	v.scribeDone <- scribeResult{sheetID: v.sheet.ID, uid: "d00", err: errors.New("boom")}
	v.drainScribe()

	if v.scribeBusy {
		t.Error("drain should clear the busy flag")
	}
	if got := v.sheet.Diamond("d00").Text; got != "raw keeper notes" {
		t.Errorf("text = %q, raw notes should survive a failure", got)
	}
	if s := v.status.current(); !strings.Contains(s, "boom") {
		t.Errorf("status = %q, want the error surfaced", s)
	}
}

func TestDrainScribe_DropsStaleSheet(t *testing.T) {
	v, _ := testViewer(t, 42)
	discoverFirst(t, v)

	v.scribeBusy = true
	v.scribeDone <- scribeResult{sheetID: "some-old-sheet", uid: "d00", text: "stale"}
	v.drainScribe()

	if got := v.sheet.Diamond("d00").Text; got != "raw keeper notes" {
		t.Errorf("text = %q, a stale result must not apply", got)
	}
}

func TestPanelFor(t *testing.T) {
	v, _ := testViewer(t, 42)

	if got := v.panelFor(nil); !reflect.DeepEqual(got, export.UnknownPanel) {
		t.Errorf("nil diamond panel = %+v", got)
	}
	if got := v.panelFor(v.sheet.Diamond("d00")); !reflect.DeepEqual(got, export.UnknownPanel) {
		t.Errorf("unexplored diamond panel = %+v", got)
	}

	d := discoverFirst(t, v)
	got := v.panelFor(d)
	if got.Name != "The Missing Gate" || got.Text != "raw keeper notes" {
		t.Errorf("panel = %+v", got)
	}
	if got.Type != "Portal" {
		t.Errorf("type = %q, want the catalog label", got.Type)
	}

	d.Type = "not-in-catalog"
	if got := v.panelFor(d); got.Type != "not-in-catalog" {
		t.Errorf("type = %q, unknown keys pass through", got.Type)
	}
}

func TestNextDiamond_PrefersAlignmentThenDistance(t *testing.T) {
	ds := []crawl.Diamond{
		{X: 100, Y: 100},
		{X: 300, Y: 100}, // dead right, far
		{X: 140, Y: 130}, // right and down, near
	}
	if got := nextDiamond(ds, 0, 1, 0); got != 1 {
		t.Errorf("pressing right picked %d, want the aligned 1", got)
	}

	tie := []crawl.Diamond{
		{X: 100, Y: 100},
		{X: 400, Y: 100},
		{X: 200, Y: 100},
	}
	if got := nextDiamond(tie, 0, 1, 0); got != 2 {
		t.Errorf("equal alignment picked %d, want the nearer 2", got)
	}
}

func TestNextDiamond_WrapsToFarthestBehind(t *testing.T) {
	ds := []crawl.Diamond{
		{X: 300, Y: 100},
		{X: 200, Y: 100},
		{X: 100, Y: 100},
	}
	// Nothing to the right of the cursor: wrap to the leftmost.
	if got := nextDiamond(ds, 0, 1, 0); got != 2 {
		t.Errorf("wrap picked %d, want the farthest behind 2", got)
	}
}

func TestNextDiamond_Degenerate(t *testing.T) {
	if got := nextDiamond(nil, 0, 1, 0); got != 0 {
		t.Errorf("empty list moved the cursor to %d", got)
	}
	ds := []crawl.Diamond{{X: 10, Y: 10}, {X: 20, Y: 20}}
	if got := nextDiamond(ds, -1, 1, 0); got != 0 {
		t.Errorf("out-of-range cursor should snap to 0, got %d", got)
	}
	if got := nextDiamond(ds, 0, 0, 0); got != 0 {
		t.Errorf("zero direction moved the cursor to %d", got)
	}
	one := []crawl.Diamond{{X: 10, Y: 10}}
	if got := nextDiamond(one, 0, 1, 0); got != 0 {
		t.Errorf("single diamond moved the cursor to %d", got)
	}
}

func TestNewExplore_FreshAndEditing(t *testing.T) {
	fresh := newExplore(&store.SheetDiamond{UID: "d01", Label: 4, Status: store.StatusUnknown})
	if fresh.step != stepDeck || fresh.editing {
		t.Errorf("fresh diamond: step=%d editing=%v, want deck prompt", fresh.step, fresh.editing)
	}
	if len(fresh.name) != 0 || len(fresh.notes) != 0 {
		t.Error("fresh diamond should start with empty buffers")
	}

	edit := newExplore(&store.SheetDiamond{
		UID: "d02", Label: 2, Status: store.StatusDiscovered,
		Name: "The Missing Gate", Type: "portal", Text: "old notes",
	})
	if edit.step != stepName || !edit.editing {
		t.Errorf("discovered diamond: step=%d editing=%v, want name entry", edit.step, edit.editing)
	}
	if string(edit.name) != "The Missing Gate" || string(edit.notes) != "old notes" {
		t.Error("discovered diamond should prefill buffers")
	}
	if edit.col != 0 || edit.row != 2 {
		t.Errorf("portal resolves to (%d,%d), want (0,2)", edit.col, edit.row)
	}
}

func TestFindType(t *testing.T) {
	if c, r := findType("portal"); c != 0 || r != 2 {
		t.Errorf("portal = (%d,%d), want (0,2)", c, r)
	}
	if c, r := findType("city"); c != 2 || r != 3 {
		t.Errorf("city = (%d,%d), want (2,3)", c, r)
	}
	if c, r := findType("nope"); c != 0 || r != 0 {
		t.Errorf("unknown key = (%d,%d), want (0,0)", c, r)
	}
}

func TestMoveType_ClampsAtEdges(t *testing.T) {
	e := &exploreState{}
	e.moveType(-1, 0)
	e.moveType(0, -1)
	if e.col != 0 || e.row != 0 {
		t.Errorf("cursor left the top-left corner: (%d,%d)", e.col, e.row)
	}

	// Mystic has 4 rows, Danger only 3: crossing right clamps the row.
	e.col, e.row = 0, 3
	e.moveType(1, 0)
	if e.col != 1 || e.row != 2 {
		t.Errorf("crossing into Danger = (%d,%d), want (1,2)", e.col, e.row)
	}

	e.col, e.row = 2, 0
	e.moveType(1, 0)
	if e.col != 2 {
		t.Errorf("cursor left the last column: col=%d", e.col)
	}
	if e.picked().Key != "outpost" {
		t.Errorf("picked %q, want outpost", e.picked().Key)
	}
}

func TestExploreLines_PerStep(t *testing.T) {
	e := &exploreState{label: 2}

	ls := e.lines()
	if ls[0] != "EXPLORE SITE 2" {
		t.Errorf("title = %q", ls[0])
	}
	joined := strings.Join(ls, "\n")
	if !strings.Contains(joined, "Draw a card from deck 2.") {
		t.Errorf("deck step missing prompt:\n%s", joined)
	}

	e.step = stepName
	e.name = []rune("Shrine")
	if joined = strings.Join(e.lines(), "\n"); !strings.Contains(joined, "Shrine_") {
		t.Errorf("name step missing buffer and caret:\n%s", joined)
	}

	e.step = stepType
	e.col, e.row = 1, 1
	joined = strings.Join(e.lines(), "\n")
	for _, want := range []string{"Mystic", "Danger", "Civilization", "> Dungeon"} {
		if !strings.Contains(joined, want) {
			t.Errorf("type step missing %q:\n%s", want, joined)
		}
	}
	if strings.Contains(joined, "> Hazard") {
		t.Errorf("marker on the wrong row:\n%s", joined)
	}

	e.step = stepConfirm
	e.notes = []rune("short notes")
	joined = strings.Join(e.lines(), "\n")
	for _, want := range []string{"Name: Shrine", "Type: Dungeon", "short notes", "[Enter] save"} {
		if !strings.Contains(joined, want) {
			t.Errorf("confirm step missing %q:\n%s", want, joined)
		}
	}

	edit := &exploreState{label: 5, editing: true}
	if got := edit.lines()[0]; got != "EDIT SITE 5" {
		t.Errorf("editing title = %q", got)
	}
}

func TestAppendPrintable_FiltersControls(t *testing.T) {
	got := appendPrintable(nil, []rune{'a', '\n', 0x7f, 'b', 0x01})
	if string(got) != "ab" {
		t.Errorf("appendPrintable = %q, want ab", string(got))
	}
}

func TestDropLast(t *testing.T) {
	if got := dropLast(nil); len(got) != 0 {
		t.Errorf("dropLast(nil) = %q", string(got))
	}
	if got := dropLast([]rune("ab")); string(got) != "a" {
		t.Errorf("dropLast = %q, want a", string(got))
	}
}

func TestWrapRunes(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"empty", "", 10, []string{""}},
		{"fits", "one two", 10, []string{"one two"}},
		{"wraps", "one two three", 8, []string{"one two", "three"}},
		{"keeps breaks", "a\nb", 10, []string{"a", "b"}},
		{"long word stands alone", "tiny enormousword", 6, []string{"tiny", "enormousword"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapRunes(tt.text, tt.width); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wrapRunes(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestStatusLine_Expiry(t *testing.T) {
	var s statusLine
	if got := s.current(); got != "" {
		t.Errorf("zero status = %q", got)
	}
	s.set("saved")
	if got := s.current(); got != "saved" {
		t.Errorf("status = %q, want saved", got)
	}
	s.until = time.Now().Add(-time.Second)
	if got := s.current(); got != "" {
		t.Errorf("expired status = %q, want empty", got)
	}
}
