// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package utxo

import (
	"sort"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Entry is the behaviour a Set needs from the UTXO type it stores.
type Entry interface {
	// UTXOID returns the identity of the entry.
	UTXOID() string

	// AssetID returns the asset the entry denominates.
	AssetID() [IDLen]byte

	// Output returns the output the entry wraps.
	Output() *Output

	// String returns the checksummed string form of the entry.
	String() string
}

// Parser turns the string form of an entry back into an entry.
type Parser[U Entry] interface {
	Parse(s string) (U, error)
}

// Set is an index of unspent outputs keyed by UTXO id, with a secondary
// index from each owner address to the ids it can help spend and their
// locktimes.
//
// A Set performs no locking.  Queries and set operations never modify the
// receiver or their arguments, so a Set that is not being mutated may be read
// from several goroutines; mutation must be serialized by the caller.
type Set[U Entry] struct {
	parser Parser[U]
	clock  clock.Clock

	utxos     map[string]U
	byAddress map[Address]map[string]uint64
}

// UTXOSet is a Set of UTXOs.
type UTXOSet = Set[*UTXO]

// NewSet returns an empty Set that parses string entries with parser and
// judges spendability against clk.  A nil clk uses the system clock.
func NewSet[U Entry](parser Parser[U], clk clock.Clock) *Set[U] {
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	return &Set[U]{
		parser:    parser,
		clock:     clk,
		utxos:     make(map[string]U),
		byAddress: make(map[Address]map[string]uint64),
	}
}

// NewUTXOSet returns an empty UTXOSet whose string entries use codec c.
func NewUTXOSet(c Codec, clk clock.Clock) *UTXOSet {
	return NewSet[*UTXO](NewDecoder(c), clk)
}

// NewEmpty returns an empty Set sharing the receiver's parser and clock.
func (s *Set[U]) NewEmpty() *Set[U] {
	return NewSet[U](s.parser, s.clock)
}

// Clone returns a Set holding the same entries as the receiver.  Entries are
// shared, the indexes are not.
func (s *Set[U]) Clone() *Set[U] {
	c := s.NewEmpty()
	for _, u := range s.utxos {
		c.put(u)
	}
	return c
}

// Len returns the number of entries.
func (s *Set[U]) Len() int {
	return len(s.utxos)
}

// put stores u under its id and indexes it under each of its addresses.  Any
// entry already stored under the id must have been dropped first.  put and
// drop are the only writers of the two maps.
func (s *Set[U]) put(u U) {
	id := u.UTXOID()
	s.utxos[id] = u

	out := u.Output()
	for _, addr := range out.Addresses() {
		ids, ok := s.byAddress[addr]
		if !ok {
			ids = make(map[string]uint64)
			s.byAddress[addr] = ids
		}
		ids[id] = out.Locktime()
	}
}

// drop removes the entry stored under id from both maps.  Address entries
// left empty are deleted.
func (s *Set[U]) drop(id string) (U, bool) {
	u, ok := s.utxos[id]
	if !ok {
		return u, false
	}
	delete(s.utxos, id)

	for _, addr := range u.Output().Addresses() {
		ids := s.byAddress[addr]
		delete(ids, id)
		if len(ids) == 0 {
			delete(s.byAddress, addr)
		}
	}
	return u, true
}

// parse wraps the parser, logging entries that fail to parse.
func (s *Set[U]) parse(str string) (U, bool) {
	u, err := s.parser.Parse(str)
	if err != nil {
		log.Warnf("Skipping unparseable UTXO %q: %v", str, err)
		return u, false
	}
	return u, true
}

// Add stores u unless an entry with the same id is already present and
// overwrite is false.  The stored entry is returned, or None when nothing
// changed.
func (s *Set[U]) Add(u U, overwrite bool) fn.Option[U] {
	id := u.UTXOID()
	if _, ok := s.utxos[id]; ok {
		if !overwrite {
			return fn.None[U]()
		}
		log.Debugf("Overwriting UTXO %v", id)
		s.drop(id)
	}

	s.put(u)
	return fn.Some(u)
}

// AddString parses str and adds the result.  Unparseable input is logged and
// yields None.
func (s *Set[U]) AddString(str string, overwrite bool) fn.Option[U] {
	u, ok := s.parse(str)
	if !ok {
		return fn.None[U]()
	}
	return s.Add(u, overwrite)
}

// AddMany adds each entry in order and returns those that were stored.
func (s *Set[U]) AddMany(us []U, overwrite bool) []U {
	added := make([]U, 0, len(us))
	for _, u := range us {
		s.Add(u, overwrite).WhenSome(func(u U) {
			added = append(added, u)
		})
	}
	return added
}

// AddStrings parses and adds each string in order and returns the entries
// that were stored.
func (s *Set[U]) AddStrings(strs []string, overwrite bool) []U {
	added := make([]U, 0, len(strs))
	for _, str := range strs {
		s.AddString(str, overwrite).WhenSome(func(u U) {
			added = append(added, u)
		})
	}
	if skipped := len(strs) - len(added); skipped > 0 {
		log.Debugf("Added %d of %d UTXO %s", len(added), len(strs),
			pickNoun(len(strs), "string", "strings"))
	}
	return added
}

// Remove deletes the entry with u's id.  The removed entry is returned, or
// None when no such entry exists.
func (s *Set[U]) Remove(u U) fn.Option[U] {
	removed, ok := s.drop(u.UTXOID())
	if !ok {
		return fn.None[U]()
	}
	return fn.Some(removed)
}

// RemoveString parses str and removes the matching entry.  Unparseable input
// is logged and yields None.
func (s *Set[U]) RemoveString(str string) fn.Option[U] {
	u, ok := s.parse(str)
	if !ok {
		return fn.None[U]()
	}
	return s.Remove(u)
}

// RemoveMany removes each entry and returns those that were present.
func (s *Set[U]) RemoveMany(us []U) []U {
	removed := make([]U, 0, len(us))
	for _, u := range us {
		s.Remove(u).WhenSome(func(u U) {
			removed = append(removed, u)
		})
	}
	return removed
}

// RemoveStrings parses and removes each string and returns the entries that
// were present.
func (s *Set[U]) RemoveStrings(strs []string) []U {
	removed := make([]U, 0, len(strs))
	for _, str := range strs {
		s.RemoveString(str).WhenSome(func(u U) {
			removed = append(removed, u)
		})
	}
	return removed
}

// Includes reports whether an entry with u's id is stored.
func (s *Set[U]) Includes(u U) bool {
	_, ok := s.utxos[u.UTXOID()]
	return ok
}

// IncludesString parses str and reports whether the matching entry is
// stored.  Unparseable input is reported as not included.
func (s *Set[U]) IncludesString(str string) bool {
	u, ok := s.parse(str)
	if !ok {
		return false
	}
	return s.Includes(u)
}

// Get returns the entry stored under id.
func (s *Set[U]) Get(id string) fn.Option[U] {
	u, ok := s.utxos[id]
	if !ok {
		return fn.None[U]()
	}
	return fn.Some(u)
}

// sortedIDs returns every stored id in ascending order.
func (s *Set[U]) sortedIDs() []string {
	ids := make([]string, 0, len(s.utxos))
	for id := range s.utxos {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns the entries named by ids, in the order requested, skipping ids
// that are not stored.  A nil ids selects every entry, ordered by id.
func (s *Set[U]) All(ids []string) []U {
	if ids == nil {
		ids = s.sortedIDs()
	}

	us := make([]U, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.utxos[id]; ok {
			us = append(us, u)
		}
	}
	return us
}

// AllStrings is like All but returns the string form of each entry.
func (s *Set[U]) AllStrings(ids []string) []string {
	us := s.All(ids)
	strs := make([]string, 0, len(us))
	for _, u := range us {
		strs = append(strs, u.String())
	}
	return strs
}
