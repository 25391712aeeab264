// Package vault is the asset registry: licensable assets with their creator
// policies, plus the creator's monthly revenue history.
// It is backed by SQLite. If the database cannot be opened, the store serves
// the built-in fixtures from memory.
package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"github.com/comigor/creatorvault/internal/apperr"
	"github.com/comigor/creatorvault/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS assets (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    creator TEXT NOT NULL,
    type TEXT NOT NULL,
    thumbnail TEXT NOT NULL,
    min_price TEXT NOT NULL,
    royalty_percentage REAL NOT NULL,
    duration_days INTEGER NOT NULL,
    allow_commercial INTEGER NOT NULL,
    is_exclusive INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS revenue (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    month TEXT NOT NULL,
    revenue TEXT NOT NULL,
    forecast TEXT NOT NULL
);`

type Store struct {
	db *sql.DB // nil when serving fixtures from memory
}

// Open opens (and seeds, when empty) the SQLite registry at path.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) *Store {
	db, err := openDB(ctx, path)
	if err != nil {
		logger.L.Warn("sqlite vault unavailable; using in-memory fixtures", "path", path, "error", err)
		return &Store{}
	}
	logger.L.Info("sqlite vault initialized", "path", path)
	return &Store{db: db}
}

func openDB(ctx context.Context, path string) (*sql.DB, error) {
	dsn := "file:" + path + "?_busy_timeout=10000"
	if path == ":memory:" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" a single database
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	if err := seed(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}
	return db, nil
}

func seed(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets;`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, a := range seedAssets {
		if err := insertAsset(ctx, tx, i, a); err != nil {
			return err
		}
	}
	for _, r := range seedRevenue {
		if _, err := tx.ExecContext(ctx, `INSERT INTO revenue (month, revenue, forecast) VALUES (?,?,?);`,
			r.Month, r.Revenue, r.Forecast); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertAsset(ctx context.Context, tx *sql.Tx, position int, a Asset) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO assets (id, position, name, creator, type, thumbnail, min_price, royalty_percentage, duration_days, allow_commercial, is_exclusive)
        VALUES (?,?,?,?,?,?,?,?,?,?,?);`,
		a.ID, position, a.Name, a.Creator, string(a.Type), a.Thumbnail,
		a.Params.MinPrice, a.Params.RoyaltyPercentage, a.Params.DurationDays,
		a.Params.AllowCommercial, a.Params.Exclusive)
	return err
}

const assetColumns = `id, name, creator, type, thumbnail, min_price, royalty_percentage, duration_days, allow_commercial, is_exclusive`

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(row scanner) (Asset, error) {
	var a Asset
	var typ string
	err := row.Scan(&a.ID, &a.Name, &a.Creator, &typ, &a.Thumbnail,
		&a.Params.MinPrice, &a.Params.RoyaltyPercentage, &a.Params.DurationDays,
		&a.Params.AllowCommercial, &a.Params.Exclusive)
	a.Type = AssetType(typ)
	return a, err
}

// ListAssets returns every registered asset in registration order.
func (s *Store) ListAssets(ctx context.Context) ([]Asset, error) {
	if s.db == nil {
		out := make([]Asset, len(seedAssets))
		copy(out, seedAssets)
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY position ASC;`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var out []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAsset returns the asset with the given id, or an apperr NotFound error.
func (s *Store) GetAsset(ctx context.Context, id string) (Asset, error) {
	if s.db == nil {
		for _, a := range seedAssets {
			if a.ID == id {
				return a, nil
			}
		}
		return Asset{}, apperr.NotFound("asset " + id)
	}

	a, err := scanAsset(s.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = ?;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Asset{}, apperr.NotFound("asset " + id)
	}
	if err != nil {
		return Asset{}, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

// Revenue returns the monthly revenue history in chronological order.
func (s *Store) Revenue(ctx context.Context) ([]RevenuePoint, error) {
	if s.db == nil {
		out := make([]RevenuePoint, len(seedRevenue))
		copy(out, seedRevenue)
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT month, revenue, forecast FROM revenue ORDER BY id ASC;`)
	if err != nil {
		return nil, fmt.Errorf("list revenue: %w", err)
	}
	defer rows.Close()

	var out []RevenuePoint
	for rows.Next() {
		var r RevenuePoint
		if err := rows.Scan(&r.Month, &r.Revenue, &r.Forecast); err != nil {
			return nil, fmt.Errorf("scan revenue: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InMemory reports whether the store fell back to the built-in fixtures.
func (s *Store) InMemory() bool {
	return s.db == nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
