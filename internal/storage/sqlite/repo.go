// Package sqlite is the embedded HotspotStore backed by modernc.org/sqlite,
// used for single-node deployments and local development.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"culture_hotspots/internal/domain"
	"culture_hotspots/internal/storage/sqlrow"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS hotspots (
  seq                        INTEGER PRIMARY KEY AUTOINCREMENT,
  id                         TEXT    NOT NULL UNIQUE,
  name                       TEXT,
  address                    TEXT,
  type                       TEXT,
  description                TEXT,
  image_url                  TEXT,
  latitude                   REAL,
  longitude                  REAL,
  geometry_type              TEXT,
  geometry                   TEXT,
  loops_guide                TEXT,
  loop_name                  TEXT,
  tour_num                   TEXT,
  order_num                  TEXT,
  loop_tour_name             TEXT,
  loop_tour_url              TEXT,
  tour_label                 TEXT,
  neighbourhood              TEXT,
  duration                   TEXT,
  entry_type                 TEXT,
  interests                  TEXT,
  directions_transit         TEXT,
  directions_car             TEXT,
  external_link              TEXT,
  image_credit               TEXT,
  image_credit_external_link TEXT,
  image_alt_text             TEXT,
  thumb_url                  TEXT,
  image_orientation          TEXT,
  object_id                  TEXT,
  extras                     TEXT,
  created_at                 INTEGER NOT NULL,
  updated_at                 INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_hotspots_type ON hotspots(type);
CREATE INDEX IF NOT EXISTS idx_hotspots_neighbourhood ON hotspots(neighbourhood);
`

var (
	upsertSQL = fmt.Sprintf(`
INSERT INTO hotspots (%s) VALUES (%s)
ON CONFLICT(id) DO UPDATE SET
  name = excluded.name, address = excluded.address, type = excluded.type,
  description = excluded.description, image_url = excluded.image_url,
  latitude = excluded.latitude, longitude = excluded.longitude,
  geometry_type = excluded.geometry_type, geometry = excluded.geometry,
  loops_guide = excluded.loops_guide, loop_name = excluded.loop_name,
  tour_num = excluded.tour_num, order_num = excluded.order_num,
  loop_tour_name = excluded.loop_tour_name, loop_tour_url = excluded.loop_tour_url,
  tour_label = excluded.tour_label, neighbourhood = excluded.neighbourhood,
  duration = excluded.duration, entry_type = excluded.entry_type,
  interests = excluded.interests, directions_transit = excluded.directions_transit,
  directions_car = excluded.directions_car, external_link = excluded.external_link,
  image_credit = excluded.image_credit,
  image_credit_external_link = excluded.image_credit_external_link,
  image_alt_text = excluded.image_alt_text, thumb_url = excluded.thumb_url,
  image_orientation = excluded.image_orientation, object_id = excluded.object_id,
  extras = excluded.extras, updated_at = excluded.updated_at
`, sqlrow.SelectList, sqlrow.Placeholders())

	selectByIDSQL = `SELECT ` + sqlrow.SelectList + ` FROM hotspots WHERE id = ?`
	selectAllSQL  = `SELECT ` + sqlrow.SelectList + ` FROM hotspots ORDER BY seq`
)

type Repo struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for a throwaway store.
func Open(ctx context.Context, path string) (*Repo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single connection keeps ":memory:" databases shared and serialises writers
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &Repo{db: db, now: time.Now}, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) Put(ctx context.Context, h domain.Hotspot) error {
	args, err := sqlrow.Args(h, r.now())
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertSQL, args...)
	return err
}

func (r *Repo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM hotspots`)
	return err
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hotspots`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (domain.Hotspot, bool, error) {
	h, err := sqlrow.Scan(r.db.QueryRowContext(ctx, selectByIDSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hotspot{}, false, nil
	}
	if err != nil {
		return domain.Hotspot{}, false, err
	}
	return h, true, nil
}

func (r *Repo) FindAll(ctx context.Context) ([]domain.Hotspot, error) {
	rows, err := r.db.QueryContext(ctx, selectAllSQL)
	if err != nil {
		return nil, err
	}
	return sqlrow.ScanAll(rows)
}

func (r *Repo) FindByField(ctx context.Context, f domain.Field, value string) ([]domain.Hotspot, error) {
	col, err := sqlrow.Column(f)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqlrow.SelectList+` FROM hotspots WHERE `+col+` = ? ORDER BY seq`, value)
	if err != nil {
		return nil, err
	}
	return sqlrow.ScanAll(rows)
}

// FindByFieldContaining uses instr rather than LIKE: sqlite's LIKE ignores
// ASCII case and would need escaping of % and _.
func (r *Repo) FindByFieldContaining(ctx context.Context, f domain.Field, substr string, caseInsensitive bool) ([]domain.Hotspot, error) {
	col, err := sqlrow.Column(f)
	if err != nil {
		return nil, err
	}
	cond := `instr(` + col + `, ?) > 0`
	if caseInsensitive {
		cond = `instr(lower(` + col + `), lower(?)) > 0`
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqlrow.SelectList+` FROM hotspots WHERE `+cond+` ORDER BY seq`, substr)
	if err != nil {
		return nil, err
	}
	return sqlrow.ScanAll(rows)
}
