package drugdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store caches drug records fetched from OpenFDA so repeat queries for
// the same term skip the network. Rows are keyed by the normalized
// query term, not the resolved generic name; two terms resolving to
// the same drug get their own rows.
type Store struct {
	db *sql.DB
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS drug_info_cache (
    id TEXT PRIMARY KEY,
    query TEXT UNIQUE NOT NULL COLLATE NOCASE,
    generic_name TEXT NOT NULL,
    brand_name TEXT,
    manufacturer TEXT,
    indications TEXT,
    dosage TEXT,
    warnings TEXT,
    side_effects TEXT,
    last_updated TIMESTAMP NOT NULL
);
`

// OpenStore opens (creating if needed) the cache database at path.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache db: %w", err)
	}
	if _, err := db.ExecContext(ctx, cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the cached record for a query term, or nil when the term
// has never been cached.
func (s *Store) Get(ctx context.Context, query string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT generic_name, brand_name, manufacturer, indications, dosage, warnings, side_effects
		 FROM drug_info_cache WHERE query = ?`, normalize(query))

	var rec Record
	err := row.Scan(&rec.GenericName, &rec.BrandName, &rec.Manufacturer,
		&rec.Indications, &rec.Dosage, &rec.Warnings, &rec.SideEffects)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	return &rec, nil
}

// Put stores the record under a query term, replacing any earlier row
// for the same term.
func (s *Store) Put(ctx context.Context, query string, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drug_info_cache
		   (id, query, generic_name, brand_name, manufacturer, indications, dosage, warnings, side_effects, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(query) DO UPDATE SET
		   generic_name=excluded.generic_name, brand_name=excluded.brand_name,
		   manufacturer=excluded.manufacturer, indications=excluded.indications,
		   dosage=excluded.dosage, warnings=excluded.warnings,
		   side_effects=excluded.side_effects, last_updated=excluded.last_updated`,
		uuid.NewString(), normalize(query), rec.GenericName, rec.BrandName, rec.Manufacturer,
		rec.Indications, rec.Dosage, rec.Warnings, rec.SideEffects, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}
