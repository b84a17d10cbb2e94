// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bitfield

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSetTwiceWithinBlockFails checks Testable Property 5: the same bit
// cannot be set twice within a single block's delta.
func TestSetTwiceWithinBlockFails(t *testing.T) {
	b := New(64)
	require.NoError(t, b.Set(5))
	err := b.Set(5)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad-txns-bits-missingorspent")
}

// TestMonotoneAcrossCommit checks that bits committed by one block remain
// set and cannot be re-set by a later block, matching the main-chain
// monotonicity half of Property 5.
func TestMonotoneAcrossCommit(t *testing.T) {
	b := New(64)
	require.NoError(t, b.Set(3))
	b.Commit()

	require.True(t, b.Get(3))
	err := b.Set(3)
	require.Error(t, err)
}

// TestRollbackDiscardsUncommittedBits checks that a block which fails
// partway through validation leaves no trace of the bits it tentatively
// set, so a retry (or a sibling block) can set them.
func TestRollbackDiscardsUncommittedBits(t *testing.T) {
	b := New(64)
	require.NoError(t, b.Set(7))
	b.Rollback()

	require.False(t, b.Get(7))
	require.NoError(t, b.Set(7))
}

// TestClearUndoesCommittedDelta checks the disconnect path: clearing the
// indices recorded in a block's delta restores the pre-block bitfield.
func TestClearUndoesCommittedDelta(t *testing.T) {
	b := New(64)
	require.NoError(t, b.Set(1))
	require.NoError(t, b.Set(2))
	delta := b.DeltaForBlock()
	b.Commit()

	require.True(t, b.Get(1))
	require.True(t, b.Get(2))

	b.Clear(delta)
	require.False(t, b.Get(1))
	require.False(t, b.Get(2))
}

// TestHashChangesWithContent checks that the bitfield's content hash,
// used for the block header's bitfield commitment, changes when a bit is
// set and round-trips through Bytes/Load.
func TestHashChangesWithContent(t *testing.T) {
	b := New(64)
	before := b.Hash()
	require.NoError(t, b.Set(10))
	b.Commit()
	after := b.Hash()
	require.NotEqual(t, before, after)

	loaded, err := Load(64, b.Bytes())
	require.NoError(t, err)
	require.Equal(t, after, loaded.Hash())
	require.True(t, loaded.Get(10))
}
