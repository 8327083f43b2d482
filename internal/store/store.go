// Package store persists crawl sheets to SQLite. A sheet records the
// seed and diamond marks that regenerate a map plus the keeper's notes
// for each diamond.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Rws117r/HexScribe/internal/crawl"
)

// Diamond discovery states.
const (
	StatusUnknown    = "unknown"
	StatusDiscovered = "discovered"
)

// Sheet is one saved hex: enough to regenerate its map (seed + marks)
// plus whatever the keeper has written about it.
type Sheet struct {
	ID          string `db:"id"`
	HexID       string `db:"hex_id"`
	Seed        int64  `db:"seed"`
	Description string `db:"description"`
	CreatedAt   int64  `db:"created_at"` // unix seconds, UTC
	UpdatedAt   int64  `db:"updated_at"`

	Diamonds []SheetDiamond `db:"-"`
}

// SheetDiamond is one point of interest on a sheet.
type SheetDiamond struct {
	SheetID   string   `db:"sheet_id"`
	UID       string   `db:"uid"`
	CellIndex int      `db:"cell_index"`
	Label     int      `db:"label"`
	Status    string   `db:"status"`
	Name      string   `db:"name"`
	Type      string   `db:"type"`
	Text      string   `db:"text"`
	Icon      string   `db:"icon"`
	Tags      []string `db:"-"`
}

// SheetInfo is one row of a sheet listing.
type SheetInfo struct {
	ID        string `db:"id"`
	HexID     string `db:"hex_id"`
	Diamonds  int    `db:"diamonds"`
	UpdatedAt int64  `db:"updated_at"`
}

// NewSheet builds an unsaved sheet for a hex. Every mark becomes an
// unexplored diamond with a stable "d00"-style uid.
func NewSheet(hexID string, seed int64, marks []crawl.Mark) *Sheet {
	now := time.Now().UTC().Unix()
	sh := &Sheet{
		ID:        uuid.NewString(),
		HexID:     hexID,
		Seed:      seed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, m := range marks {
		sh.Diamonds = append(sh.Diamonds, SheetDiamond{
			SheetID:   sh.ID,
			UID:       fmt.Sprintf("d%02d", i),
			CellIndex: m.CellIndex,
			Label:     m.Label,
			Status:    StatusUnknown,
		})
	}
	return sh
}

// Marks converts the sheet's diamonds back into generator marks.
func (sh *Sheet) Marks() []crawl.Mark {
	marks := make([]crawl.Mark, 0, len(sh.Diamonds))
	for _, d := range sh.Diamonds {
		marks = append(marks, crawl.Mark{CellIndex: d.CellIndex, Label: d.Label})
	}
	return marks
}

// Diamond returns the diamond with the given uid, or nil.
func (sh *Sheet) Diamond(uid string) *SheetDiamond {
	for i := range sh.Diamonds {
		if sh.Diamonds[i].UID == uid {
			return &sh.Diamonds[i]
		}
	}
	return nil
}

// DiamondAt returns the diamond on the given lattice cell, or nil.
func (sh *Sheet) DiamondAt(cellIndex int) *SheetDiamond {
	for i := range sh.Diamonds {
		if sh.Diamonds[i].CellIndex == cellIndex {
			return &sh.Diamonds[i]
		}
	}
	return nil
}

// Store wraps a SQLite connection for sheet persistence.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sheets (
		id TEXT PRIMARY KEY,
		hex_id TEXT NOT NULL UNIQUE,
		seed INTEGER NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sheet_diamonds (
		sheet_id TEXT NOT NULL,
		uid TEXT NOT NULL,
		cell_index INTEGER NOT NULL,
		label INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'unknown',
		name TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		tags_json TEXT NOT NULL DEFAULT 'null',
		PRIMARY KEY (sheet_id, uid)
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_diamonds_sheet ON sheet_diamonds(sheet_id);
	CREATE INDEX IF NOT EXISTS idx_sheets_updated ON sheets(updated_at);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveSheet writes a sheet and all its diamonds (full replace of the
// diamond rows). UpdatedAt is stamped here.
func (s *Store) SaveSheet(sh *Sheet) error {
	now := time.Now().UTC().Unix()
	if sh.CreatedAt == 0 {
		sh.CreatedAt = now
	}
	sh.UpdatedAt = now

	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO sheets
		(id, hex_id, seed, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sh.ID, sh.HexID, sh.Seed, sh.Description, sh.CreatedAt, sh.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert sheet %s: %w", sh.HexID, err)
	}

	if _, err := tx.Exec("DELETE FROM sheet_diamonds WHERE sheet_id = ?", sh.ID); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO sheet_diamonds
		(sheet_id, uid, cell_index, label, status, name, type, text, icon, tags_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range sh.Diamonds {
		d := &sh.Diamonds[i]
		if d.SheetID == "" {
			d.SheetID = sh.ID
		}
		tagsJSON, _ := json.Marshal(d.Tags)

		_, err := stmt.Exec(
			d.SheetID, d.UID, d.CellIndex, d.Label, d.Status,
			d.Name, d.Type, d.Text, d.Icon, string(tagsJSON),
		)
		if err != nil {
			return fmt.Errorf("insert diamond %s: %w", d.UID, err)
		}
	}

	return tx.Commit()
}

type diamondRow struct {
	SheetDiamond
	TagsJSON string `db:"tags_json"`
}

// LoadSheet fetches a sheet by hex id. Returns nil without error when
// no sheet exists for the hex.
func (s *Store) LoadSheet(hexID string) (*Sheet, error) {
	var sh Sheet
	err := s.conn.Get(&sh,
		"SELECT id, hex_id, seed, description, created_at, updated_at FROM sheets WHERE hex_id = ?",
		hexID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load sheet %s: %w", hexID, err)
	}

	var rows []diamondRow
	err = s.conn.Select(&rows,
		`SELECT sheet_id, uid, cell_index, label, status, name, type, text, icon, tags_json
		 FROM sheet_diamonds WHERE sheet_id = ? ORDER BY uid`,
		sh.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("load diamonds %s: %w", hexID, err)
	}

	for _, r := range rows {
		d := r.SheetDiamond
		json.Unmarshal([]byte(r.TagsJSON), &d.Tags)
		sh.Diamonds = append(sh.Diamonds, d)
	}

	return &sh, nil
}

// DeleteSheet removes a sheet and its diamonds. Deleting a hex that
// was never saved is a no-op.
func (s *Store) DeleteSheet(hexID string) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM sheet_diamonds WHERE sheet_id IN (SELECT id FROM sheets WHERE hex_id = ?)",
		hexID,
	); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM sheets WHERE hex_id = ?", hexID); err != nil {
		return err
	}

	return tx.Commit()
}

// ListSheets returns every saved sheet, most recently updated first.
func (s *Store) ListSheets() ([]SheetInfo, error) {
	var infos []SheetInfo
	err := s.conn.Select(&infos,
		`SELECT s.id, s.hex_id, COUNT(d.uid) AS diamonds, s.updated_at
		 FROM sheets s LEFT JOIN sheet_diamonds d ON d.sheet_id = s.id
		 GROUP BY s.id ORDER BY s.updated_at DESC, s.hex_id`,
	)
	return infos, err
}

// SaveMeta stores a key-value pair.
func (s *Store) SaveMeta(key, value string) error {
	_, err := s.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
