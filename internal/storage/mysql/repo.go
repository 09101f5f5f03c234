package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"culture_hotspots/internal/domain"
	"culture_hotspots/internal/storage/sqlrow"
)

type Repo struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Repo { return &Repo{db: db, now: time.Now} }

func (r *Repo) Put(ctx context.Context, h domain.Hotspot) error {
	args, err := sqlrow.Args(h, r.now())
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertHotspotSQL, args...)
	return err
}

func (r *Repo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, clearSQL)
	return err
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countSQL).Scan(&n); err != nil {
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
	rows, err := r.db.QueryContext(ctx, selectByFieldSQL(col), value)
	if err != nil {
		return nil, err
	}
	return sqlrow.ScanAll(rows)
}

func (r *Repo) FindByFieldContaining(ctx context.Context, f domain.Field, substr string, caseInsensitive bool) ([]domain.Hotspot, error) {
	col, err := sqlrow.Column(f)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, selectContainingSQL(col, caseInsensitive), substr)
	if err != nil {
		return nil, err
	}
	return sqlrow.ScanAll(rows)
}

// EnsureSchema creates the hotspots table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	return err
}
