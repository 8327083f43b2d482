package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	xdraw "golang.org/x/image/draw"

	"github.com/Rws117r/HexScribe/internal/crawl"
	"github.com/Rws117r/HexScribe/internal/export"
	"github.com/Rws117r/HexScribe/internal/store"
)

// options carries the parsed command line.
type options struct {
	hexID  string
	seed   int64
	share  string
	cells  int
	trails int
	out    string
	grain  bool
	scale  int
	report bool
	stats  int
	dbPath string
	list   bool
}

func main() {
	var o options
	flag.StringVar(&o.hexID, "hex", "0704", "hex id to render")
	flag.Int64Var(&o.seed, "seed", 0, "generation seed (0 = clock)")
	flag.StringVar(&o.share, "share", "", "share code; overrides seed and marks")
	flag.IntVar(&o.cells, "cells", export.DefaultLayout.CellsAcross, "small hexes across the big hex")
	flag.IntVar(&o.trails, "trails", 0, "max trails (0 = engine default)")
	flag.StringVar(&o.out, "out", "crawl.png", "output PNG path")
	flag.BoolVar(&o.grain, "grain", false, "paper speckle over the map")
	flag.IntVar(&o.scale, "scale", 1, "integer output upscale")
	flag.BoolVar(&o.report, "report", false, "print the generation pass report")
	flag.IntVar(&o.stats, "stats", 0, "run N seeded passes and print aggregates instead of rendering")
	flag.StringVar(&o.dbPath, "db", "", "sheet database; renders the stored sheet when the hex has one")
	flag.BoolVar(&o.list, "list", false, "list stored sheets and exit (needs -db)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(o); err != nil {
		slog.Error("headless-render failed", "err", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if o.scale < 1 {
		return fmt.Errorf("-scale must be >= 1, got %d", o.scale)
	}
	if o.stats < 0 {
		return fmt.Errorf("-stats must be >= 0, got %d", o.stats)
	}
	if o.list {
		return runList(o)
	}
	if o.stats > 0 {
		return runStats(o)
	}
	return runRender(o)
}

func (o options) layout() export.Layout {
	l := export.DefaultLayout
	if o.cells > 0 {
		l.CellsAcross = o.cells
	}
	return l
}

func runList(o options) error {
	if o.dbPath == "" {
		return fmt.Errorf("-list needs -db")
	}
	st, err := store.Open(o.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	infos, err := st.ListSheets()
	if err != nil {
		return err
	}
	fmt.Print(formatSheetList(infos, time.Now()))
	return nil
}

// formatSheetList renders the sheet inventory with humanized ages.
func formatSheetList(infos []store.SheetInfo, now time.Time) string {
	if len(infos) == 0 {
		return "no sheets\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-9s %-38s %s\n", "hex", "diamonds", "id", "updated")
	for _, in := range infos {
		age := humanize.RelTime(time.Unix(in.UpdatedAt, 0), now, "ago", "from now")
		fmt.Fprintf(&b, "%-6s %-9d %-38s %s\n", in.HexID, in.Diamonds, in.ID, age)
	}
	return b.String()
}

func runStats(o options) error {
	base := o.seed
	if base == 0 {
		base = 42
	}
	ren := export.NewRenderer(o.layout())
	agg, err := aggregatePasses(ren.HexBox(o.hexID, ""), base, o.stats, o.trails)
	if err != nil {
		return err
	}
	fmt.Print(formatStats(agg, base))
	return nil
}

// passAggregate sums generation outcomes over several seeded passes.
type passAggregate struct {
	runs        int
	styleCount  [4]int // indexed by crawl.TrailStyle
	accepted    int
	unreachable int
	overlap     int
	diamonds    int
}

func aggregatePasses(lat crawl.LatticeConfig, baseSeed int64, runs, maxTrails int) (passAggregate, error) {
	var agg passAggregate
	for i := 0; i < runs; i++ {
		m, err := crawl.Generate(crawl.MapConfig{
			Lattice:   lat,
			MaxTrails: maxTrails,
			Seed:      baseSeed + int64(i),
		})
		if err != nil {
			return agg, fmt.Errorf("pass %d: %w", i+1, err)
		}
		agg.runs++
		agg.diamonds += len(m.Diamonds)
		for _, t := range m.Trails {
			agg.styleCount[t.Style]++
		}
		agg.accepted += m.Log.Count(crawl.EventAccepted)
		agg.unreachable += m.Log.Count(crawl.EventUnreachable)
		agg.overlap += m.Log.Count(crawl.EventOverlap)
	}
	return agg, nil
}

func formatStats(agg passAggregate, baseSeed int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Crawl Pass Stats ===\n")
	fmt.Fprintf(&b, "runs=%d seed_base=%d diamonds_per_run=%.2f\n\n", agg.runs, baseSeed, avg(agg.diamonds, agg.runs))

	fmt.Fprintf(&b, "%-12s %8s %10s\n", "style", "trails", "per_run")
	total := 0
	for _, s := range []crawl.TrailStyle{crawl.StylePath, crawl.StyleDifficult, crawl.StyleDangerous, crawl.StyleSpecial} {
		n := agg.styleCount[s]
		total += n
		fmt.Fprintf(&b, "%-12s %8d %10.2f\n", s.Name(), n, avg(n, agg.runs))
	}
	fmt.Fprintf(&b, "%-12s %8d %10.2f\n", "total", total, avg(total, agg.runs))

	fmt.Fprintf(&b, "\n%-12s %8s %10s\n", "outcome", "count", "per_run")
	fmt.Fprintf(&b, "%-12s %8d %10.2f\n", "accepted", agg.accepted, avg(agg.accepted, agg.runs))
	fmt.Fprintf(&b, "%-12s %8d %10.2f\n", "unreachable", agg.unreachable, avg(agg.unreachable, agg.runs))
	fmt.Fprintf(&b, "%-12s %8d %10.2f\n", "overlap", agg.overlap, avg(agg.overlap, agg.runs))
	return b.String()
}

func avg(sum, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func runRender(o options) error {
	ren := export.NewRenderer(o.layout())

	seed := o.seed
	var marks []crawl.Mark
	var description string
	var sheet *store.Sheet

	switch {
	case o.share != "":
		s, ms, err := crawl.ParseShareCode(o.share)
		if err != nil {
			return fmt.Errorf("parse share code: %w", err)
		}
		seed, marks = s, ms
	case o.dbPath != "":
		st, err := store.Open(o.dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
		sh, err := st.LoadSheet(o.hexID)
		if err != nil {
			return err
		}
		if sh != nil {
			sheet = sh
			seed, marks, description = sh.Seed, sh.Marks(), sh.Description
		}
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	m, err := crawl.Generate(crawl.MapConfig{
		Lattice:   ren.HexBox(o.hexID, description),
		Marks:     marks,
		MaxTrails: o.trails,
		Seed:      seed,
	})
	if err != nil {
		return err
	}

	panel := export.UnknownPanel
	if len(m.Diamonds) > 0 {
		if sheet != nil {
			panel = sheetPanel(sheet.DiamondAt(m.Diamonds[0].CellIndex))
		} else {
			panel = demoPanel(m.Diamonds[0].Label)
		}
	}

	img := ren.Render(export.Scene{
		HexID:       o.hexID,
		Description: description,
		Map:         m,
		Selected:    0,
		Panel:       panel,
		Grain:       o.grain,
	})
	if o.scale > 1 {
		img = upscale(img, o.scale)
	}
	if err := export.WritePNG(o.out, img); err != nil {
		return err
	}
	if o.report {
		fmt.Print(m.Report())
	}
	slog.Info("rendered", "hex", o.hexID, "seed", m.Seed, "out", o.out)
	return nil
}

// sheetPanel shows a stored diamond's state on the right panel.
func sheetPanel(d *store.SheetDiamond) export.Panel {
	if d == nil || d.Status != store.StatusDiscovered {
		return export.UnknownPanel
	}
	label := crawl.FeatureLabel(d.Type)
	if label == "" {
		label = d.Type
	}
	return export.Panel{Name: d.Name, Type: label, Text: d.Text}
}

// demoPanel shows the canned feature for a diamond's severity label.
func demoPanel(label int) export.Panel {
	f := crawl.DemoFeature(label)
	return export.Panel{Name: f.Name, Type: f.Type, Text: f.Text, Hint: f.Category}
}

// upscale enlarges the page by an integer factor, nearest-neighbor so the
// already-smoothed strokes stay crisp.
func upscale(img *image.RGBA, k int) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*k, b.Dy()*k))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
