// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"fmt"

	"github.com/hnsgo/hnsd/bitfield"
)

// LoadBitfield reconstructs the coinbase bitfield of the given size from
// its persisted blob, or returns a fresh all-clear bitfield if none has
// been written yet (a new node at genesis).
func (d *DB) LoadBitfield(size uint32) (*bitfield.Bitfield, error) {
	raw, err := d.getOrNil(bitfieldKey())
	if err != nil {
		return nil, fmt.Errorf("database: reading bitfield: %w", err)
	}
	if raw == nil {
		return bitfield.New(size), nil
	}
	return bitfield.Load(size, raw)
}

// SaveBitfield persists the current content of bf. Callers are expected
// to call this after every committed block, alongside PutUndo for that
// block's delta.
func (d *DB) SaveBitfield(bf *bitfield.Bitfield) error {
	return d.ldb.Put(bitfieldKey(), bf.Bytes(), nil)
}
