package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Rws117r/HexScribe/internal/export"
	"github.com/Rws117r/HexScribe/internal/scribe"
	"github.com/Rws117r/HexScribe/internal/store"
	"github.com/Rws117r/HexScribe/internal/viewer"
)

type options struct {
	hexID  string
	dbPath string
	seed   int64
	cells  int
	trails int
	ai     bool
}

func main() {
	var o options
	flag.StringVar(&o.hexID, "hex", "0704", "hex id to open")
	flag.StringVar(&o.dbPath, "db", "hexscribe.db", "sheet database path")
	flag.Int64Var(&o.seed, "seed", 0, "seed for a first visit (0 = clock)")
	flag.IntVar(&o.cells, "cells", export.DefaultLayout.CellsAcross, "small hexes across the big hex")
	flag.IntVar(&o.trails, "trails", 0, "max trails (0 = engine default)")
	flag.BoolVar(&o.ai, "ai", false, "enable the scribe even without OLLAMA_HOST")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(o); err != nil {
		slog.Error("hexscribe failed", "err", err)
		os.Exit(1)
	}
}

func run(o options) error {
	st, err := store.Open(o.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	sc := scribe.FromEnv()
	if o.ai && sc == nil {
		sc = scribe.New("", "")
	}

	layout := export.DefaultLayout
	if o.cells > 0 {
		layout.CellsAcross = o.cells
	}

	v, err := viewer.New(viewer.Config{
		HexID:     o.hexID,
		Store:     st,
		Scribe:    sc,
		Layout:    layout,
		Seed:      o.seed,
		MaxTrails: o.trails,
	})
	if err != nil {
		return err
	}

	slog.Info("opening", "hex", o.hexID, "db", o.dbPath, "scribe", sc.Enabled())

	ebiten.SetWindowTitle(fmt.Sprintf("HexScribe — Hex %s", o.hexID))
	ebiten.SetWindowSize(layout.Width*2, layout.Height*2)
	return ebiten.RunGame(v)
}
