// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"fmt"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
)

// GetTreeRoot implements blockchain.TreeRootStore, returning the
// authenticated name-tree root recorded at the interval-boundary height.
func (d *DB) GetTreeRoot(height uint32) (chainhash.Hash, error) {
	raw, err := d.getOrNil(treeRootKey(height))
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("database: reading tree root at %d: %w", height, err)
	}
	if raw == nil {
		return chainhash.Hash{}, nil
	}
	if len(raw) != chainhash.HashSize {
		return chainhash.Hash{}, fmt.Errorf("database: corrupt tree root at %d", height)
	}
	var root chainhash.Hash
	copy(root[:], raw)
	return root, nil
}

// PutTreeRoot implements blockchain.TreeRootStore, recording the root
// committed at the interval-boundary height.
func (d *DB) PutTreeRoot(height uint32, root chainhash.Hash) error {
	return d.ldb.Put(treeRootKey(height), root[:], nil)
}
