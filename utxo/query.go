// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package utxo

import (
	"bytes"
	"math/big"
	"sort"
)

// now returns the set clock's current unix time in seconds.
func (s *Set[U]) now() uint64 {
	unix := s.clock.Now().Unix()
	if unix < 0 {
		return 0
	}
	return uint64(unix)
}

// UTXOIDs returns the ids of the entries the given addresses can help spend.
//
// With nil addrs every stored id is returned in ascending order and the
// address index is not consulted.  Otherwise the ids indexed under each
// address are returned address by address, each id at most once.  When
// spendableOnly is set, ids whose locktime is later than the clock's current
// time are left out.
func (s *Set[U]) UTXOIDs(addrs []Address, spendableOnly bool) []string {
	if addrs == nil {
		return s.sortedIDs()
	}

	now := s.now()
	seen := make(map[string]struct{})
	var result []string
	for _, addr := range addrs {
		indexed, ok := s.byAddress[addr]
		if !ok {
			continue
		}

		ids := make([]string, 0, len(indexed))
		for id := range indexed {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			if spendableOnly && indexed[id] > now {
				continue
			}
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}
	return result
}

// Addresses returns every address with at least one indexed entry, in
// ascending byte order.
func (s *Set[U]) Addresses() []Address {
	addrs := make([]Address, 0, len(s.byAddress))
	for addr := range s.byAddress {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
	return addrs
}

// Balance returns the amount of assetID that addrs can spend now.
func (s *Set[U]) Balance(addrs []Address, assetID [IDLen]byte) *big.Int {
	return s.BalanceAsOf(addrs, assetID, s.now())
}

// BalanceAsOf returns the summed amount of every currently spendable entry of
// addrs that denominates assetID and whose threshold addrs meet at asOf.
// Outputs without an amount contribute nothing.
func (s *Set[U]) BalanceAsOf(addrs []Address, assetID [IDLen]byte,
	asOf uint64) *big.Int {

	total := new(big.Int)
	for _, id := range s.UTXOIDs(addrs, true) {
		u := s.utxos[id]
		if u.AssetID() != assetID {
			continue
		}

		out := u.Output()
		amount, ok := out.Amount()
		if !ok || !out.MeetsThreshold(addrs, asOf) {
			continue
		}
		total.Add(total, new(big.Int).SetUint64(amount))
	}
	return total
}

// AssetIDs returns the distinct asset ids of the entries selected by
// UTXOIDs(addrs, false), in first-seen order.
func (s *Set[U]) AssetIDs(addrs []Address) [][IDLen]byte {
	seen := make(map[[IDLen]byte]struct{})
	var assets [][IDLen]byte
	for _, id := range s.UTXOIDs(addrs, false) {
		asset := s.utxos[id].AssetID()
		if _, ok := seen[asset]; ok {
			continue
		}
		seen[asset] = struct{}{}
		assets = append(assets, asset)
	}
	return assets
}

// Filter returns a clone of the set without the entries for which keep
// returns false.  Extra predicate arguments are captured by the closure.
func (s *Set[U]) Filter(keep func(U) bool) *Set[U] {
	filtered := s.Clone()
	for _, id := range filtered.sortedIDs() {
		if !keep(filtered.utxos[id]) {
			filtered.drop(id)
		}
	}
	return filtered
}
