// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Register the pure-Go SQLite driver under name "sqlite".
	_ "modernc.org/sqlite"
)

const (
	createTableQuery = `CREATE TABLE IF NOT EXISTS utxo_sets (
	name TEXT PRIMARY KEY,
	data BLOB NOT NULL
)`

	hasQuery = `SELECT 1 FROM utxo_sets WHERE name = ?`

	getQuery = `SELECT data FROM utxo_sets WHERE name = ?`

	insertQuery = `INSERT INTO utxo_sets (name, data) VALUES (?, ?)
ON CONFLICT (name) DO NOTHING`

	upsertQuery = `INSERT INTO utxo_sets (name, data) VALUES (?, ?)
ON CONFLICT (name) DO UPDATE SET data = excluded.data`
)

// SQLStore is a Store kept in a SQLite table.
type SQLStore struct {
	db *sql.DB

	// closeDB is set when the store opened db itself.
	closeDB bool
}

// A compile-time assertion to ensure SQLStore implements Store.
var _ Store = (*SQLStore)(nil)

// NewSQLStore returns a store using db, creating its table if needed.  The
// caller keeps ownership of db.
func NewSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, createTableQuery); err != nil {
		return nil, fmt.Errorf("create utxo_sets table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// OpenSQLiteStore opens, creating if needed, the SQLite database at path and
// returns a store using it.  Close releases the database.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open %v: %w", path, err)
	}

	store, err := NewSQLStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.closeDB = true
	return store, nil
}

// Close closes the underlying database if the store opened it.
func (s *SQLStore) Close() error {
	if !s.closeDB {
		return nil
	}
	return s.db.Close()
}

// Has implements Store.
func (s *SQLStore) Has(ctx context.Context, name string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, hasQuery, name).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, name string) ([]string, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, getQuery, name).Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	return decodeStrings(v)
}

// Set implements Store.
func (s *SQLStore) Set(ctx context.Context, name string, data []string,
	overwrite bool) (bool, error) {

	v, err := encodeStrings(data)
	if err != nil {
		return false, err
	}

	query := insertQuery
	if overwrite {
		query = upsertQuery
	}
	res, err := s.db.ExecContext(ctx, query, name, v)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
