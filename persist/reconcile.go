// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package persist

import (
	"context"
	"fmt"

	"github.com/btcsuite/utxoset/utxo"
)

// Reconcile combines fetched with the set cached under opts.Name and caches
// the result.
//
// When a list is cached, it is loaded into an empty set ("self") and the
// result is self.MergeByRule(fetched, opts.MergeRule).  Otherwise fetched is
// the result.  Cached strings that no longer parse are skipped.  The result's
// strings are then written back, replacing the cached list only when
// opts.Overwrite is set.
func Reconcile[U utxo.Entry](ctx context.Context, store Store, opts *Options,
	fetched *utxo.Set[U]) (*utxo.Set[U], error) {

	if opts.Name == "" {
		return nil, ErrEmptyName
	}

	has, err := store.Has(ctx, opts.Name)
	if err != nil {
		return nil, fmt.Errorf("check cached set %q: %w", opts.Name, err)
	}

	result := fetched
	if has {
		strs, err := store.Get(ctx, opts.Name)
		if err != nil {
			return nil, fmt.Errorf("load cached set %q: %w",
				opts.Name, err)
		}

		cached := fetched.NewEmpty()
		cached.AddStrings(strs, false)
		log.Debugf("Loaded %d cached UTXOs under %q", cached.Len(),
			opts.Name)

		result, err = cached.MergeByRule(fetched, opts.MergeRule)
		if err != nil {
			return nil, err
		}
	}

	stored, err := store.Set(ctx, opts.Name, result.AllStrings(nil),
		opts.Overwrite)
	if err != nil {
		return nil, fmt.Errorf("store set %q: %w", opts.Name, err)
	}
	if stored {
		log.Infof("Cached %d UTXOs under %q (rule %v)", result.Len(),
			opts.Name, opts.MergeRule)
	} else {
		log.Debugf("Kept previously cached set %q", opts.Name)
	}

	return result, nil
}
