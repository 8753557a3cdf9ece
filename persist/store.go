// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package persist caches UTXO sets between runs.  A set is stored under a
// name as the list of its entries' string forms, and freshly fetched data is
// reconciled with the cached list using one of the utxo merge rules.
package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/utxoset/utxo"
)

var (
	// ErrNotFound is returned by Store.Get when nothing is stored under
	// the requested name.
	ErrNotFound = errors.New("persist: no utxo set stored under name")

	// ErrEmptyName is returned when Options carry no name.
	ErrEmptyName = errors.New("persist: empty name")
)

// Store is a key-value store of string lists.
type Store interface {
	// Has reports whether a list is stored under name.
	Has(ctx context.Context, name string) (bool, error)

	// Get returns the list stored under name, or ErrNotFound.
	Get(ctx context.Context, name string) ([]string, error)

	// Set stores data under name.  An existing list is only replaced when
	// overwrite is set.  The boolean reports whether data was written.
	Set(ctx context.Context, name string, data []string,
		overwrite bool) (bool, error)
}

// Options say where a set is cached and how fresh data is combined with the
// cached data.
type Options struct {
	// Name is the key the set is stored under.
	Name string

	// Overwrite replaces a previously stored list.
	Overwrite bool

	// MergeRule combines the cached set ("self") with the fetched set
	// ("new").
	MergeRule utxo.MergeRule
}

// NewOptions validates and returns persistence options.
func NewOptions(name string, overwrite bool, rule string) (*Options, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	mergeRule, err := utxo.ParseMergeRule(rule)
	if err != nil {
		return nil, err
	}
	return &Options{Name: name, Overwrite: overwrite, MergeRule: mergeRule}, nil
}

// encodeStrings serializes a string list as a var-int count followed by
// var-strings.
func encodeStrings(strs []string) ([]byte, error) {
	var buf bytes.Buffer
	if err := wire.WriteVarInt(&buf, 0, uint64(len(strs))); err != nil {
		return nil, err
	}
	for _, s := range strs {
		if err := wire.WriteVarString(&buf, 0, s); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// decodeStrings reverses encodeStrings.
func decodeStrings(b []byte) ([]string, error) {
	r := bytes.NewReader(b)
	count, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return nil, fmt.Errorf("read string count: %w", err)
	}

	// Every string takes at least its one-byte length prefix.
	if count > uint64(r.Len()) {
		return nil, fmt.Errorf("%d strings declared in %d bytes", count,
			r.Len())
	}

	strs := make([]string, 0, count)
	for i := uint64(0); i < count; i++ {
		s, err := wire.ReadVarString(r, 0)
		if err != nil {
			return nil, fmt.Errorf("read string %d: %w", i, err)
		}
		strs = append(strs, s)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes", r.Len())
	}
	return strs, nil
}
