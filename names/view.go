// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package names

import (
	"fmt"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
)

// Store is the persisted name-state backing a View. Implementations live
// in the database package; this interface lets View stay storage-agnostic
// so it can be exercised in tests against a plain in-memory map.
type Store interface {
	// GetName returns the persisted NameState for hash, or nil if none
	// exists.
	GetName(hash chainhash.Hash) (*NameState, error)
}

// View is a copy-on-write cache of name states layered over a persisted
// Store. All mutation during block connection is staged here; nothing is
// written back to the Store until the caller explicitly commits the
// view's Entries after a block fully validates. This mirrors a UTXO
// viewpoint: many readers may hold independent views over the same
// persisted store, and a view never observes another view's uncommitted
// writes.
type View struct {
	store   Store
	entries map[chainhash.Hash]*NameState

	// fetched remembers which hashes have already been consulted against
	// the backing store, including misses, so a view never re-queries
	// storage for a hash it has already resolved to nil.
	fetched map[chainhash.Hash]struct{}
}

// NewView returns a View layered over store.
func NewView(store Store) *View {
	return &View{
		store:   store,
		entries: make(map[chainhash.Hash]*NameState),
		fetched: make(map[chainhash.Hash]struct{}),
	}
}

// Entry returns the staged NameState for hash, fetching and caching it
// from the backing store on first access. The returned pointer is owned
// by the view; callers must not mutate it in place outside of Stage.
func (v *View) Entry(hash chainhash.Hash) (*NameState, error) {
	if ns, ok := v.entries[hash]; ok {
		return ns, nil
	}
	if _, ok := v.fetched[hash]; ok {
		return nil, nil
	}

	ns, err := v.store.GetName(hash)
	if err != nil {
		return nil, fmt.Errorf("names: fetching %s: %w", hash, err)
	}
	v.fetched[hash] = struct{}{}
	if ns != nil {
		v.entries[hash] = ns
	}
	return ns, nil
}

// Stage records a mutated (or newly created, or expired-to-nil) NameState
// for hash, to be included in the view's Entries when the block that
// produced it is committed. Passing nil stages the name's deletion
// (expiry or never having existed).
func (v *View) Stage(hash chainhash.Hash, ns *NameState) {
	v.entries[hash] = ns
	v.fetched[hash] = struct{}{}
}

// Entries returns every name hash this view has staged a change for,
// alongside its resulting state (nil meaning the name was deleted). The
// block connector uses this to build both the persisted delta and the
// NameUndo for the block, and to select which hashes require a tree
// update at the next interval boundary.
func (v *View) Entries() map[chainhash.Hash]*NameState {
	return v.entries
}
