// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

// Filter is the watch-list an interactive scan matches transactions
// against: a set of opaque 32-byte items (typically name hashes) the
// caller is interested in. It is intentionally simple — the consensus
// core only needs membership testing and merging, not a probabilistic
// structure, since wallets own the tradeoff between precision and
// bandwidth at the layer that constructs the filter.
type Filter struct {
	items map[[32]byte]struct{}
}

// NewFilter returns an empty Filter.
func NewFilter() *Filter {
	return &Filter{items: make(map[[32]byte]struct{})}
}

// Add inserts item into the filter. item must be exactly 32 bytes;
// shorter or longer items are ignored.
func (f *Filter) Add(item []byte) {
	if len(item) != 32 {
		return
	}
	var key [32]byte
	copy(key[:], item)
	f.items[key] = struct{}{}
}

// Merge ORs every chunk in chunks into the filter, implementing the
// REPEAT_ADD scan action.
func (f *Filter) Merge(chunks [][]byte) {
	for _, c := range chunks {
		f.Add(c)
	}
}

// Contains reports whether item is present in the filter.
func (f *Filter) Contains(item []byte) bool {
	if len(item) != 32 {
		return false
	}
	var key [32]byte
	copy(key[:], item)
	_, ok := f.items[key]
	return ok
}

// Empty reports whether the filter has no items, meaning every
// transaction matches (an unfiltered scan).
func (f *Filter) Empty() bool {
	return len(f.items) == 0
}
