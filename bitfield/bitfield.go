// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bitfield implements the consensus-level bitmap that prevents
// replay of one-shot coinbase inputs: CLAIM outputs seeding a
// pre-chain name directly to its claimant. Each reservation or airdrop
// slot owns exactly one bit; once set it can never be cleared except by
// a disconnect undoing the block that set it.
package bitfield

import (
	"fmt"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
)

// Bitfield is a fixed-size bit array, one bit per reservation slot.
// Writes made during a single block are buffered in delta until the
// caller explicitly commits them, so a block that fails validation
// partway through never leaves a partially-applied bitfield behind.
type Bitfield struct {
	size  uint32
	bits  []byte
	delta []uint32 // indices set during the in-progress block, in order
}

// New returns a Bitfield with room for size bits, all initially clear.
func New(size uint32) *Bitfield {
	return &Bitfield{
		size: size,
		bits: make([]byte, (size+7)/8),
	}
}

// Get reports whether bit i is set.
func (b *Bitfield) Get(i uint32) bool {
	if i >= b.size {
		return false
	}
	return b.bits[i/8]&(1<<(i%8)) != 0
}

// Set sets bit i, buffering the write into the current block's delta. It
// fails with an error carrying the bad-txns-bits-missingorspent reason
// string if the bit is already set, matching the replay-prevention rule
// that gives the bitfield its purpose.
func (b *Bitfield) Set(i uint32) error {
	if i >= b.size {
		return fmt.Errorf("bitfield: index %d exceeds size %d", i, b.size)
	}
	if b.Get(i) {
		return fmt.Errorf("bad-txns-bits-missingorspent: bit %d already set", i)
	}
	b.bits[i/8] |= 1 << (i % 8)
	b.delta = append(b.delta, i)
	return nil
}

// DeltaForBlock returns the indices set since the last Commit or Rollback,
// in the order they were set. The block connector persists this alongside
// the block's NameUndo so a disconnect can clear exactly these bits.
func (b *Bitfield) DeltaForBlock() []uint32 {
	out := make([]uint32, len(b.delta))
	copy(out, b.delta)
	return out
}

// Commit clears the pending delta, finalizing the bits set during the
// current block as permanent (until a future disconnect clears them via
// Clear).
func (b *Bitfield) Commit() {
	b.delta = b.delta[:0]
}

// Rollback clears every bit set since the last Commit, used when a block
// fails validation partway through and the in-progress delta must be
// discarded without touching bits set by earlier, already-committed
// blocks.
func (b *Bitfield) Rollback() {
	for _, i := range b.delta {
		b.bits[i/8] &^= 1 << (i % 8)
	}
	b.delta = b.delta[:0]
}

// Clear unsets every bit in indices, used by the block disconnector to
// undo a previously-committed block's delta during a reorg.
func (b *Bitfield) Clear(indices []uint32) {
	for _, i := range indices {
		if i < b.size {
			b.bits[i/8] &^= 1 << (i % 8)
		}
	}
}

// Hash returns the content hash of the bitfield's current state, used for
// the block header's bitfield commitment field.
func (b *Bitfield) Hash() chainhash.Hash {
	return chainhash.Sum(b.bits)
}

// Bytes returns a copy of the raw bitmap, for persistence.
func (b *Bitfield) Bytes() []byte {
	out := make([]byte, len(b.bits))
	copy(out, b.bits)
	return out
}

// Load replaces the bitfield's contents with raw, previously returned by
// Bytes, used to restore state from the persisted store on startup.
func Load(size uint32, raw []byte) (*Bitfield, error) {
	want := int((size + 7) / 8)
	if len(raw) != want {
		return nil, fmt.Errorf("bitfield: expected %d bytes for size %d, got %d", want, size, len(raw))
	}
	b := New(size)
	copy(b.bits, raw)
	return b, nil
}
