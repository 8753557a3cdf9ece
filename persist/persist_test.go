// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package persist

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/utxoset/utxo"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/require"
)

// storeFactory creates an isolated store for a test.
type storeFactory func(t *testing.T) Store

func newWalletDBStore(t *testing.T) Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "utxosets.db")
	store, err := OpenWalletDBStore(path, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func newSQLiteStore(t *testing.T) Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "utxosets.sqlite")
	store, err := OpenSQLiteStore(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

// runStoreTest runs testFunc against every Store implementation.
func runStoreTest(t *testing.T,
	testFunc func(t *testing.T, newStore storeFactory)) {

	t.Helper()

	testCases := []struct {
		name     string
		newStore storeFactory
	}{
		{name: "walletdb", newStore: newWalletDBStore},
		{name: "sqlite", newStore: newSQLiteStore},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			testFunc(t, tc.newStore)
		})
	}
}

func testAddr(b byte) utxo.Address {
	var a utxo.Address
	copy(a[:], bytes.Repeat([]byte{b}, utxo.AddressLen))
	return a
}

// testUTXO builds a single-owner transfer UTXO for transaction txByte.
func testUTXO(t *testing.T, txByte byte, amount uint64) *utxo.UTXO {
	t.Helper()

	owners, err := utxo.NewOwners(0, 1, testAddr(txByte))
	require.NoError(t, err)

	u, err := utxo.NewUTXO(
		utxo.WithTxID(bytes.Repeat([]byte{txByte}, utxo.IDLen)),
		utxo.WithAssetID(bytes.Repeat([]byte{0xaa}, utxo.IDLen)),
		utxo.WithOutput(utxo.NewTransferOutput(amount, owners)),
	)
	require.NoError(t, err)
	return u
}

func newSet(us ...*utxo.UTXO) *utxo.UTXOSet {
	s := utxo.NewUTXOSet(nil, clock.NewTestClock(time.Unix(1_700_000_000, 0)))
	s.AddMany(us, false)
	return s
}

func idsOf(us ...*utxo.UTXO) []string {
	ids := make([]string, 0, len(us))
	for _, u := range us {
		ids = append(ids, u.UTXOID())
	}
	return ids
}

// TestStore checks the Has/Get/Set contract of every store.
func TestStore(t *testing.T) {
	t.Parallel()

	runStoreTest(t, func(t *testing.T, newStore storeFactory) {
		ctx := context.Background()
		store := newStore(t)

		has, err := store.Has(ctx, "wallet")
		require.NoError(t, err)
		require.False(t, has)

		_, err = store.Get(ctx, "wallet")
		require.ErrorIs(t, err, ErrNotFound)

		stored, err := store.Set(ctx, "wallet", []string{"a", "b"}, false)
		require.NoError(t, err)
		require.True(t, stored)

		has, err = store.Has(ctx, "wallet")
		require.NoError(t, err)
		require.True(t, has)

		// Without overwrite the first list is kept.
		stored, err = store.Set(ctx, "wallet", []string{"c"}, false)
		require.NoError(t, err)
		require.False(t, stored)

		got, err := store.Get(ctx, "wallet")
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, got)

		stored, err = store.Set(ctx, "wallet", []string{"c"}, true)
		require.NoError(t, err)
		require.True(t, stored)

		got, err = store.Get(ctx, "wallet")
		require.NoError(t, err)
		require.Equal(t, []string{"c"}, got)

		// An empty list is still a stored list.
		_, err = store.Set(ctx, "empty", nil, false)
		require.NoError(t, err)
		has, err = store.Has(ctx, "empty")
		require.NoError(t, err)
		require.True(t, has)
		got, err = store.Get(ctx, "empty")
		require.NoError(t, err)
		require.Empty(t, got)
	})
}

// TestReconcile checks that fetched data is merged with cached data by the
// configured rule and written back.
func TestReconcile(t *testing.T) {
	t.Parallel()

	runStoreTest(t, func(t *testing.T, newStore storeFactory) {
		ctx := context.Background()
		store := newStore(t)

		u1, u2, u3 := testUTXO(t, 1, 10), testUTXO(t, 2, 20),
			testUTXO(t, 3, 30)

		// Nothing cached yet: the fetched set is cached as is.
		opts, err := NewOptions("x-chain", false, "union")
		require.NoError(t, err)
		result, err := Reconcile(ctx, store, opts, newSet(u1, u2))
		require.NoError(t, err)
		require.ElementsMatch(t, idsOf(u1, u2), result.UTXOIDs(nil, false))

		cached, err := store.Get(ctx, "x-chain")
		require.NoError(t, err)
		require.ElementsMatch(t, []string{u1.String(), u2.String()}, cached)

		// Cached {u1, u2}, fetched {u2, u3}: union minus new is {u1}.
		opts, err = NewOptions("x-chain", true, "unionMinusNew")
		require.NoError(t, err)
		result, err = Reconcile(ctx, store, opts, newSet(u2, u3))
		require.NoError(t, err)
		require.Equal(t, idsOf(u1), result.UTXOIDs(nil, false))

		cached, err = store.Get(ctx, "x-chain")
		require.NoError(t, err)
		require.Equal(t, []string{u1.String()}, cached)

		// Without overwrite the merged result is returned but the
		// cached list stays.
		opts, err = NewOptions("x-chain", false, "differenceNew")
		require.NoError(t, err)
		result, err = Reconcile(ctx, store, opts, newSet(u2, u3))
		require.NoError(t, err)
		require.ElementsMatch(t, idsOf(u2, u3), result.UTXOIDs(nil, false))

		cached, err = store.Get(ctx, "x-chain")
		require.NoError(t, err)
		require.Equal(t, []string{u1.String()}, cached)
	})
}

// TestReconcileSkipsCorruptEntries checks that unparseable cached strings are
// dropped rather than failing the reconciliation.
func TestReconcileSkipsCorruptEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newWalletDBStore(t)
	u1, u2 := testUTXO(t, 1, 10), testUTXO(t, 2, 20)

	_, err := store.Set(ctx, "p-chain", []string{"corrupt", u1.String()}, false)
	require.NoError(t, err)

	opts := &Options{Name: "p-chain", Overwrite: true,
		MergeRule: utxo.MergeUnion}
	result, err := Reconcile(ctx, store, opts, newSet(u2))
	require.NoError(t, err)
	require.ElementsMatch(t, idsOf(u1, u2), result.UTXOIDs(nil, false))
}

// TestReconcileBadRule checks that an unknown rule on a cached set fails and
// leaves the cache untouched.
func TestReconcileBadRule(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newSQLiteStore(t)
	u1 := testUTXO(t, 1, 10)

	_, err := store.Set(ctx, "x-chain", []string{u1.String()}, false)
	require.NoError(t, err)

	opts := &Options{Name: "x-chain", Overwrite: true, MergeRule: "bogus"}
	_, err = Reconcile(ctx, store, opts, newSet())
	require.True(t, utxo.IsErrorCode(err, utxo.ErrUnknownMergeRule), err)

	cached, err := store.Get(ctx, "x-chain")
	require.NoError(t, err)
	require.Equal(t, []string{u1.String()}, cached)
}

// TestNewOptions checks option validation.
func TestNewOptions(t *testing.T) {
	t.Parallel()

	_, err := NewOptions("", false, "union")
	require.ErrorIs(t, err, ErrEmptyName)

	_, err = NewOptions("x", false, "symDifference")
	require.True(t, utxo.IsErrorCode(err, utxo.ErrUnknownMergeRule), err)

	opts, err := NewOptions("x", true, "intersection")
	require.NoError(t, err)
	require.Equal(t, utxo.MergeIntersection, opts.MergeRule)
	require.True(t, opts.Overwrite)
}

// TestStringsEncoding checks the persisted list encoding and its rejection
// of malformed input.
func TestStringsEncoding(t *testing.T) {
	t.Parallel()

	want := []string{"", "one", string(bytes.Repeat([]byte{'x'}, 300))}
	b, err := encodeStrings(want)
	require.NoError(t, err)

	got, err := decodeStrings(b)
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = decodeStrings(b[:len(b)-1])
	require.Error(t, err)

	_, err = decodeStrings(append(b, 0))
	require.Error(t, err)

	_, err = decodeStrings([]byte{0xfd, 0xff, 0xff})
	require.Error(t, err)
}
