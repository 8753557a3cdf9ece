// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package utxo

import (
	"bytes"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/require"
)

// testNow is the unix time the test clock is pinned to.
const testNow = 1_700_000_000

var (
	addr1 = testAddr(1)
	addr2 = testAddr(2)
	addr3 = testAddr(3)

	assetX = testID(0xaa)
	assetY = testID(0xbb)
)

func testAddr(b byte) Address {
	var a Address
	copy(a[:], bytes.Repeat([]byte{b}, AddressLen))
	return a
}

func testID(b byte) [IDLen]byte {
	var id [IDLen]byte
	copy(id[:], bytes.Repeat([]byte{b}, IDLen))
	return id
}

func testClock() *clock.TestClock {
	return clock.NewTestClock(time.Unix(testNow, 0))
}

func newTestSet() *UTXOSet {
	return NewUTXOSet(nil, testClock())
}

// testOwners builds an owner set, failing the test on error.
func testOwners(t *testing.T, locktime uint64, threshold uint32,
	addrs ...Address) Owners {

	t.Helper()

	owners, err := NewOwners(locktime, threshold, addrs...)
	require.NoError(t, err)
	return owners
}

// testUTXO builds a UTXO for transaction txByte (repeated) at idx.
func testUTXO(t *testing.T, txByte byte, idx uint32, asset [IDLen]byte,
	out *Output) *UTXO {

	t.Helper()

	txID := testID(txByte)
	u, err := NewUTXO(
		WithTxID(txID[:]),
		WithOutputIndex(idx),
		WithAssetID(asset[:]),
		WithOutput(out),
	)
	require.NoError(t, err)
	return u
}

// transferUTXO builds an amount-bearing UTXO owned by addrs with threshold 1.
func transferUTXO(t *testing.T, txByte byte, asset [IDLen]byte,
	amount, locktime uint64, addrs ...Address) *UTXO {

	t.Helper()

	out := NewTransferOutput(amount, testOwners(t, locktime, 1, addrs...))
	return testUTXO(t, txByte, 0, asset, out)
}

// setSnapshot is a deep copy of both maps of a set.
type setSnapshot struct {
	utxos     map[string]string
	byAddress map[Address]map[string]uint64
}

func snapshot(s *UTXOSet) setSnapshot {
	snap := setSnapshot{
		utxos:     make(map[string]string),
		byAddress: make(map[Address]map[string]uint64),
	}
	for id, u := range s.utxos {
		snap.utxos[id] = u.String()
	}
	for addr, ids := range s.byAddress {
		c := make(map[string]uint64)
		for id, lt := range ids {
			c[id] = lt
		}
		snap.byAddress[addr] = c
	}
	return snap
}

// requireIndexConsistent checks that the address index matches the stored
// entries exactly.
func requireIndexConsistent(t *testing.T, s *UTXOSet) {
	t.Helper()

	want := make(map[Address]map[string]uint64)
	for id, u := range s.utxos {
		for _, addr := range u.Output().Addresses() {
			if want[addr] == nil {
				want[addr] = make(map[string]uint64)
			}
			want[addr][id] = u.Output().Locktime()
		}
	}
	require.Equal(t, want, s.byAddress)
}

// ids returns the ids of a set's entries in ascending order.
func ids(s *UTXOSet) []string {
	return s.UTXOIDs(nil, false)
}

// idsOf returns the ids of the given UTXOs.
func idsOf(us ...*UTXO) []string {
	out := make([]string, 0, len(us))
	for _, u := range us {
		out = append(out, u.UTXOID())
	}
	return out
}
