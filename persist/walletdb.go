// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcwallet/walletdb"

	// Register the bolt-backed walletdb driver.
	_ "github.com/btcsuite/btcwallet/walletdb/bdb"
)

const (
	// dbDriver is the walletdb driver used by OpenWalletDBStore.
	dbDriver = "bdb"

	// dbDirPerm is the permission of a newly created database directory.
	dbDirPerm = 0o700
)

// utxoSetsBucket is the top-level bucket holding one key per cached set.
var utxoSetsBucket = []byte("utxosets")

// WalletDBStore is a Store kept in a walletdb database.
type WalletDBStore struct {
	db walletdb.DB

	// closeDB is set when the store opened db itself.
	closeDB bool
}

// A compile-time assertion to ensure WalletDBStore implements Store.
var _ Store = (*WalletDBStore)(nil)

// NewWalletDBStore returns a store using db, creating its bucket if needed.
// The caller keeps ownership of db.
func NewWalletDBStore(db walletdb.DB) (*WalletDBStore, error) {
	err := walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		_, err := tx.CreateTopLevelBucket(utxoSetsBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create utxo set bucket: %w", err)
	}
	return &WalletDBStore{db: db}, nil
}

// OpenWalletDBStore opens, creating if needed, the bolt database at path and
// returns a store using it.  Close releases the database.
func OpenWalletDBStore(path string, timeout time.Duration) (*WalletDBStore,
	error) {

	if err := os.MkdirAll(filepath.Dir(path), dbDirPerm); err != nil {
		return nil, err
	}

	var (
		db  walletdb.DB
		err error
	)
	if _, statErr := os.Stat(path); statErr == nil {
		db, err = walletdb.Open(dbDriver, path, true, timeout)
	} else {
		db, err = walletdb.Create(dbDriver, path, true, timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("open %v: %w", path, err)
	}

	store, err := NewWalletDBStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.closeDB = true
	return store, nil
}

// Close closes the underlying database if the store opened it.
func (s *WalletDBStore) Close() error {
	if !s.closeDB {
		return nil
	}
	return s.db.Close()
}

// Has implements Store.
func (s *WalletDBStore) Has(_ context.Context, name string) (bool, error) {
	var has bool
	err := walletdb.View(s.db, func(tx walletdb.ReadTx) error {
		bucket := tx.ReadBucket(utxoSetsBucket)
		has = bucket.Get([]byte(name)) != nil
		return nil
	})
	return has, err
}

// Get implements Store.
func (s *WalletDBStore) Get(_ context.Context, name string) ([]string, error) {
	var strs []string
	err := walletdb.View(s.db, func(tx walletdb.ReadTx) error {
		v := tx.ReadBucket(utxoSetsBucket).Get([]byte(name))
		if v == nil {
			return ErrNotFound
		}

		var err error
		strs, err = decodeStrings(v)
		return err
	})
	return strs, err
}

// Set implements Store.
func (s *WalletDBStore) Set(_ context.Context, name string, data []string,
	overwrite bool) (bool, error) {

	v, err := encodeStrings(data)
	if err != nil {
		return false, err
	}

	var stored bool
	err = walletdb.Update(s.db, func(tx walletdb.ReadWriteTx) error {
		bucket := tx.ReadWriteBucket(utxoSetsBucket)
		if !overwrite && bucket.Get([]byte(name)) != nil {
			return nil
		}
		stored = true
		return bucket.Put([]byte(name), v)
	})
	return stored, err
}
