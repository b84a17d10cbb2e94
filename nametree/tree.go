// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package nametree implements the authenticated binary trie that commits
// the global name set into the block header. It is a sparse Merkle tree
// keyed by 256-bit name-hash: every possible key has a well-defined
// position, and an empty subtree's hash is a precomputed constant, so the
// root can be computed by touching only the populated leaves rather than
// all 2^256 of them.
package nametree

import (
	"bytes"
	"sort"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
)

// Depth is the number of bits in a name-hash key, and so the depth of the
// trie from root to leaf.
const Depth = chainhash.HashSize * 8

// defaultHashes[d] is the root hash of a subtree of depth d containing
// only empty leaves. defaultHashes[0] is the empty-leaf hash itself.
var defaultHashes [Depth + 1]chainhash.Hash

func init() {
	defaultHashes[0] = chainhash.Sum([]byte("nametree:empty-leaf"))
	for d := 1; d <= Depth; d++ {
		defaultHashes[d] = hashPair(defaultHashes[d-1], defaultHashes[d-1])
	}
}

func hashPair(left, right chainhash.Hash) chainhash.Hash {
	var buf [chainhash.HashSize * 2]byte
	copy(buf[:chainhash.HashSize], left[:])
	copy(buf[chainhash.HashSize:], right[:])
	return chainhash.Sum(buf[:])
}

// bit returns the bit at position depth (0 = most significant) of key.
func bit(key chainhash.Hash, depth int) int {
	b := key[depth/8]
	shift := 7 - uint(depth%8)
	return int((b >> shift) & 1)
}

// Tree is an authenticated binary trie mapping name-hash keys to 32-byte
// value digests (the hash of a serialized NameState). It supports
// snapshotting for the copy-on-write rollback a reorg requires.
type Tree struct {
	leaves map[chainhash.Hash]chainhash.Hash

	// generation/cachedAtGen/cachedRoot memoize the most recently computed
	// root so repeated Root() calls between mutations (common when both
	// the block connector and an observer want it) don't repeat the full
	// partition walk.
	generation  uint64
	cachedAtGen uint64
	cachedRoot  chainhash.Hash
	haveCached  bool
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{
		leaves: make(map[chainhash.Hash]chainhash.Hash),
	}
}

// Insert sets the value digest stored at key.
func (t *Tree) Insert(key, value chainhash.Hash) {
	t.leaves[key] = value
	t.generation++
}

// Remove deletes key from the tree, if present.
func (t *Tree) Remove(key chainhash.Hash) {
	if _, ok := t.leaves[key]; ok {
		delete(t.leaves, key)
		t.generation++
	}
}

// Get returns the value digest stored at key, and whether it was present.
func (t *Tree) Get(key chainhash.Hash) (chainhash.Hash, bool) {
	v, ok := t.leaves[key]
	return v, ok
}

// Root computes the trie's root hash.
func (t *Tree) Root() chainhash.Hash {
	if t.haveCached && t.cachedAtGen == t.generation {
		return t.cachedRoot
	}

	keys := make([]chainhash.Hash, 0, len(t.leaves))
	for k := range t.leaves {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	root := t.computeNode(keys, 0)
	t.cachedRoot = root
	t.cachedAtGen = t.generation
	t.haveCached = true
	return root
}

func (t *Tree) computeNode(keys []chainhash.Hash, depth int) chainhash.Hash {
	if len(keys) == 0 {
		return defaultHashes[Depth-depth]
	}
	if depth == Depth {
		return t.leaves[keys[0]]
	}

	split := sort.Search(len(keys), func(i int) bool { return bit(keys[i], depth) == 1 })
	left := t.computeNode(keys[:split], depth+1)
	right := t.computeNode(keys[split:], depth+1)
	return hashPair(left, right)
}

// ProofStep is one sibling hash on the path from a leaf to the root,
// ordered from the leaf upward.
type ProofStep struct {
	Sibling chainhash.Hash
	// Right is true if Sibling is the right child at this depth (meaning
	// the proven key's node was the left child).
	Right bool
}

// Prove returns the Merkle inclusion (or exclusion) proof for key: the
// sibling hash at every depth from the leaf to the root.
func (t *Tree) Prove(key chainhash.Hash) []ProofStep {
	keys := make([]chainhash.Hash, 0, len(t.leaves))
	for k := range t.leaves {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	steps := make([]ProofStep, 0, Depth)
	t.collectProof(keys, 0, key, &steps)
	// Reverse so the proof reads leaf-to-root.
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps
}

func (t *Tree) collectProof(keys []chainhash.Hash, depth int, target chainhash.Hash, steps *[]ProofStep) chainhash.Hash {
	if len(keys) == 0 {
		return defaultHashes[Depth-depth]
	}
	if depth == Depth {
		return t.leaves[keys[0]]
	}

	split := sort.Search(len(keys), func(i int) bool { return bit(keys[i], depth) == 1 })
	left, right := keys[:split], keys[split:]

	if bit(target, depth) == 0 {
		leftHash := t.collectProof(left, depth+1, target, steps)
		rightHash := t.computeNode(right, depth+1)
		*steps = append(*steps, ProofStep{Sibling: rightHash, Right: true})
		return hashPair(leftHash, rightHash)
	}
	rightHash := t.collectProof(right, depth+1, target, steps)
	leftHash := t.computeNode(left, depth+1)
	*steps = append(*steps, ProofStep{Sibling: leftHash, Right: false})
	return hashPair(leftHash, rightHash)
}

// VerifyProof recomputes a root from a leaf value and its proof, for use
// by light clients that only received a Merkle path rather than the full
// tree.
func VerifyProof(key, value chainhash.Hash, steps []ProofStep) chainhash.Hash {
	cur := value
	for _, step := range steps {
		if step.Right {
			cur = hashPair(cur, step.Sibling)
		} else {
			cur = hashPair(step.Sibling, cur)
		}
	}
	return cur
}

// Snapshot returns an opaque handle capturing the tree's current content
// as a full copy of the leaf map.
func (t *Tree) Snapshot() *Snapshot {
	leaves := make(map[chainhash.Hash]chainhash.Hash, len(t.leaves))
	for k, v := range t.leaves {
		leaves[k] = v
	}
	return &Snapshot{leaves: leaves}
}

// Snapshot is a point-in-time copy of a Tree's leaves, usable to roll
// back a tree to a prior state after a reorg disconnects blocks past the
// last interval boundary the snapshot was taken at.
type Snapshot struct {
	leaves map[chainhash.Hash]chainhash.Hash
}

// Rollback replaces t's contents with the snapshot's.
func (t *Tree) Rollback(snap *Snapshot) {
	leaves := make(map[chainhash.Hash]chainhash.Hash, len(snap.leaves))
	for k, v := range snap.leaves {
		leaves[k] = v
	}
	t.leaves = leaves
	t.generation++
	t.haveCached = false
}
