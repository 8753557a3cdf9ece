// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package utxo

import (
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// MergeRule names a way of combining two sets, typically a freshly fetched
// set and a previously cached one.
type MergeRule string

// The seven merge rules.  "Self" is the receiver of MergeByRule and "new" is
// its argument.
const (
	// MergeIntersection keeps the ids present in both sets.
	MergeIntersection MergeRule = "intersection"

	// MergeDifferenceSelf keeps the ids only present in self.
	MergeDifferenceSelf MergeRule = "differenceSelf"

	// MergeDifferenceNew keeps the ids only present in new.
	MergeDifferenceNew MergeRule = "differenceNew"

	// MergeSymmetricDifference keeps the ids present in exactly one set.
	MergeSymmetricDifference MergeRule = "symmetricDifference"

	// MergeUnion keeps every id.
	MergeUnion MergeRule = "union"

	// MergeUnionMinusNew keeps the union minus everything in new.
	MergeUnionMinusNew MergeRule = "unionMinusNew"

	// MergeUnionMinusSelf keeps the union minus everything in self.
	MergeUnionMinusSelf MergeRule = "unionMinusSelf"
)

// MergeRules returns the seven merge rules.
func MergeRules() []MergeRule {
	return []MergeRule{
		MergeIntersection,
		MergeDifferenceSelf,
		MergeDifferenceNew,
		MergeSymmetricDifference,
		MergeUnion,
		MergeUnionMinusNew,
		MergeUnionMinusSelf,
	}
}

// ParseMergeRule returns the merge rule named s.
func ParseMergeRule(s string) (MergeRule, error) {
	for _, rule := range MergeRules() {
		if string(rule) == s {
			return rule, nil
		}
	}
	str := fmt.Sprintf("unknown merge rule %q", s)
	return "", utxoError(ErrUnknownMergeRule, str, nil)
}

// String returns the rule name.
func (r MergeRule) String() string {
	return string(r)
}

// Merge returns a new set holding the entries of both sets named by ids.  A
// nil ids selects every entry of both sets.  Entries of the receiver win over
// entries of other with the same id.
func (s *Set[U]) Merge(other *Set[U], ids []string) *Set[U] {
	merged := s.NewEmpty()
	merged.AddMany(s.All(ids), false)
	merged.AddMany(other.All(ids), false)
	return merged
}

// Union returns a new set holding every entry of both sets.
func (s *Set[U]) Union(other *Set[U]) *Set[U] {
	return s.Merge(other, nil)
}

// Intersection returns a new set holding the entries whose ids are in both
// sets.
func (s *Set[U]) Intersection(other *Set[U]) *Set[U] {
	theirs := fn.NewSet(other.UTXOIDs(nil, false)...)

	ids := make([]string, 0)
	for _, id := range s.UTXOIDs(nil, false) {
		if theirs.Contains(id) {
			ids = append(ids, id)
		}
	}
	return s.Merge(other, ids)
}

// Difference returns a new set holding the entries of the receiver whose ids
// are not in other.
func (s *Set[U]) Difference(other *Set[U]) *Set[U] {
	theirs := fn.NewSet(other.UTXOIDs(nil, false)...)

	ids := make([]string, 0)
	for _, id := range s.UTXOIDs(nil, false) {
		if !theirs.Contains(id) {
			ids = append(ids, id)
		}
	}
	return s.Merge(other, ids)
}

// SymmetricDifference returns a new set holding the entries whose ids are in
// exactly one of the two sets.
func (s *Set[U]) SymmetricDifference(other *Set[U]) *Set[U] {
	ours := s.UTXOIDs(nil, false)
	theirs := other.UTXOIDs(nil, false)
	oursSet, theirsSet := fn.NewSet(ours...), fn.NewSet(theirs...)

	ids := make([]string, 0)
	for _, id := range ours {
		if !theirsSet.Contains(id) {
			ids = append(ids, id)
		}
	}
	for _, id := range theirs {
		if !oursSet.Contains(id) {
			ids = append(ids, id)
		}
	}
	return s.Merge(other, ids)
}

// MergeByRule combines the receiver ("self") with other ("new") according to
// rule.  An unknown rule is a programming error and is reported as
// ErrUnknownMergeRule; neither set is modified either way.
func (s *Set[U]) MergeByRule(other *Set[U], rule MergeRule) (*Set[U], error) {
	switch rule {
	case MergeIntersection:
		return s.Intersection(other), nil

	case MergeDifferenceSelf:
		return s.Difference(other), nil

	case MergeDifferenceNew:
		return other.Difference(s), nil

	case MergeSymmetricDifference:
		return s.SymmetricDifference(other), nil

	case MergeUnion:
		return s.Union(other), nil

	case MergeUnionMinusNew:
		return s.Union(other).Difference(other), nil

	case MergeUnionMinusSelf:
		return s.Union(other).Difference(s), nil

	default:
		str := fmt.Sprintf("unknown merge rule %q", string(rule))
		return nil, utxoError(ErrUnknownMergeRule, str, nil)
	}
}
