package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// CatalogRepository persists serialized catalog configuration versions.
// Each admin write produces a new immutable row; versions are never
// updated or deleted, so orders can pin them indefinitely.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new instance.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

type configVersionRow struct {
	Version   int64     `db:"version"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

// SaveVersion inserts a new configuration version and returns its id.
func (r *CatalogRepository) SaveVersion(ctx context.Context, payload []byte) (int64, time.Time, error) {
	var row configVersionRow
	query := `
		INSERT INTO config_versions (payload)
		VALUES ($1)
		RETURNING version, payload, created_at
	`
	if err := r.db.GetContext(ctx, &row, query, payload); err != nil {
		return 0, time.Time{}, fmt.Errorf("catalog repository: save version %w", err)
	}
	return row.Version, row.CreatedAt, nil
}

// LoadVersion returns the payload of a specific version.
func (r *CatalogRepository) LoadVersion(ctx context.Context, version int64) ([]byte, time.Time, error) {
	var row configVersionRow
	query := `SELECT version, payload, created_at FROM config_versions WHERE version = $1`
	if err := r.db.GetContext(ctx, &row, query, version); err != nil {
		if err == sql.ErrNoRows {
			return nil, time.Time{}, ErrVersionNotFound
		}
		return nil, time.Time{}, fmt.Errorf("catalog repository: load version %w", err)
	}
	return row.Payload, row.CreatedAt, nil
}

// LatestVersion returns the most recently published version. A catalog
// with no versions yet yields version zero and a nil payload.
func (r *CatalogRepository) LatestVersion(ctx context.Context) (int64, []byte, time.Time, error) {
	var row configVersionRow
	query := `SELECT version, payload, created_at FROM config_versions ORDER BY version DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil, time.Time{}, nil
		}
		return 0, nil, time.Time{}, fmt.Errorf("catalog repository: latest version %w", err)
	}
	return row.Version, row.Payload, row.CreatedAt, nil
}
