// internal/kv/sql.go
//
// MySQL-backed Store.
//
// Context
// -------
// Deployments that already run MariaDB or MySQL for the control plane can
// point the KV layer at a single `kv_entry` table instead of standing up
// Redis.  The table is deliberately minimal:
//
//	CREATE TABLE kv_entry (
//	    k VARCHAR(512) NOT NULL PRIMARY KEY,
//	    v MEDIUMTEXT   NOT NULL,
//	    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
//	        ON UPDATE CURRENT_TIMESTAMP
//	);
//
// Set uses INSERT … ON DUPLICATE KEY UPDATE, so concurrent writers get
// last-write-wins, which is exactly the consistency the resolver tolerates.
//
// Notes
// -----
// • Pool sizes stay small; every replica opens its own pool.
// • The driver also speaks to MariaDB and Cockroach in MySQL mode.
// • Oxford commas, two spaces after periods.

package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// SQLStore implements Store on a sqlx pool.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQL opens a pool with conservative sizes and pings before returning so
// bootstrap fails fast on a bad DSN.
func NewSQL(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("kv: open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(3)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("kv: mysql ping: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// NewSQLFromDB wraps an existing pool; used by tests with sqlmock.
func NewSQLFromDB(db *sql.DB) *SQLStore {
	return &SQLStore{db: sqlx.NewDb(db, "mysql")}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	const q = `SELECT v FROM kv_entry WHERE k = ? LIMIT 1`
	var val string
	err := s.db.GetContext(ctx, &val, q, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv: sql get %q: %w", key, err)
	}
	return val, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	const q = `INSERT INTO kv_entry (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`
	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("kv: sql set %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM kv_entry WHERE k = ?`
	if _, err := s.db.ExecContext(ctx, q, key); err != nil {
		return fmt.Errorf("kv: sql delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the pool.
func (s *SQLStore) Close() error { return s.db.Close() }
