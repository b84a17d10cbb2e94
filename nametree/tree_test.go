// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nametree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
)

// TestIncrementalRootMatchesFreshInsert exercises scenario E: the root
// computed by inserting entries one at a time into a tree that already
// holds other entries equals the root of a fresh tree populated with the
// same final key-value set in one pass.
func TestIncrementalRootMatchesFreshInsert(t *testing.T) {
	entries := map[string]string{
		"apple":    "v1",
		"banana":   "v2",
		"cherry":   "v3",
		"date":     "v4",
		"eggplant": "v5",
	}

	incremental := New()
	for name, value := range entries {
		incremental.Insert(chainhash.Sum([]byte(name)), chainhash.Sum([]byte(value)))
	}

	fresh := New()
	keys := make([]chainhash.Hash, 0, len(entries))
	values := make([]chainhash.Hash, 0, len(entries))
	for name, value := range entries {
		keys = append(keys, chainhash.Sum([]byte(name)))
		values = append(values, chainhash.Sum([]byte(value)))
	}
	for i := range keys {
		fresh.Insert(keys[i], values[i])
	}

	require.Equal(t, fresh.Root(), incremental.Root())
}

// TestRemoveRestoresPriorRoot checks that removing every leaf brings the
// tree back to the empty-tree root, the base case the reorg rollback
// property relies on.
func TestRemoveRestoresPriorRoot(t *testing.T) {
	empty := New().Root()

	tree := New()
	tree.Insert(chainhash.Sum([]byte("a")), chainhash.Sum([]byte("1")))
	tree.Insert(chainhash.Sum([]byte("b")), chainhash.Sum([]byte("2")))
	require.NotEqual(t, empty, tree.Root())

	tree.Remove(chainhash.Sum([]byte("a")))
	tree.Remove(chainhash.Sum([]byte("b")))
	require.Equal(t, empty, tree.Root())
}

// TestSnapshotRollback checks the copy-on-write snapshot/rollback pair the
// block disconnector relies on when unwinding past an interval boundary.
func TestSnapshotRollback(t *testing.T) {
	tree := New()
	tree.Insert(chainhash.Sum([]byte("a")), chainhash.Sum([]byte("1")))
	snap := tree.Snapshot()
	rootBefore := tree.Root()

	tree.Insert(chainhash.Sum([]byte("b")), chainhash.Sum([]byte("2")))
	require.NotEqual(t, rootBefore, tree.Root())

	tree.Rollback(snap)
	require.Equal(t, rootBefore, tree.Root())
}

// TestProofVerifies checks that a Merkle inclusion proof produced by
// Prove recomputes to the tree's root via VerifyProof.
func TestProofVerifies(t *testing.T) {
	tree := New()
	key := chainhash.Sum([]byte("target"))
	value := chainhash.Sum([]byte("target-value"))
	tree.Insert(key, value)
	tree.Insert(chainhash.Sum([]byte("sibling-1")), chainhash.Sum([]byte("v1")))
	tree.Insert(chainhash.Sum([]byte("sibling-2")), chainhash.Sum([]byte("v2")))

	steps := tree.Prove(key)
	got := VerifyProof(key, value, steps)
	require.Equal(t, tree.Root(), got)
}
