// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package database provides the goleveldb-backed persistence layer for the
// consensus core: name states, per-block undo data, the authenticated
// tree's interval-boundary roots, and the coinbase bitfield. It implements
// the storage interfaces the blockchain and names packages consume,
// keeping every key under a single LevelDB handle with a short prefix per
// logical table.
package database

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
)

// Prefixes for the logical tables sharing one LevelDB handle, matching
// the persisted state layout: name states by hash, block undo data,
// tree roots by height, and the bitfield blob.
const (
	prefixName     = 'n'
	prefixUndo     = 'u'
	prefixTreeRoot = 't'
	prefixBitfield = 'b'
)

// DB is a LevelDB-backed store implementing names.Store, the write-side
// nameStoreWriter interface, blockchain.UndoStore, and
// blockchain.TreeRootStore. A single instance is meant to back one
// running node; it is safe for concurrent use, matching the single-writer,
// many-reader discipline the consensus core expects from its backing
// store.
type DB struct {
	ldb *leveldb.DB
}

// Open opens (creating if necessary) the LevelDB database at path.
func Open(path string) (*DB, error) {
	ldb, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("database: opening %s: %w", path, err)
	}
	return &DB{ldb: ldb}, nil
}

// Close releases the underlying LevelDB handle.
func (d *DB) Close() error {
	return d.ldb.Close()
}

func nameKey(hash chainhash.Hash) []byte {
	key := make([]byte, 1+chainhash.HashSize)
	key[0] = prefixName
	copy(key[1:], hash[:])
	return key
}

func undoKey(blockHash chainhash.Hash) []byte {
	key := make([]byte, 1+chainhash.HashSize)
	key[0] = prefixUndo
	copy(key[1:], blockHash[:])
	return key
}

func treeRootKey(height uint32) []byte {
	return []byte{
		prefixTreeRoot,
		byte(height >> 24), byte(height >> 16), byte(height >> 8), byte(height),
	}
}

func bitfieldKey() []byte {
	return []byte{prefixBitfield}
}

// getOrNil reads key, translating leveldb.ErrNotFound into a (nil, nil)
// result rather than an error, matching the names.Store contract that a
// missing entry is not itself a failure.
func (d *DB) getOrNil(key []byte) ([]byte, error) {
	val, err := d.ldb.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}
