// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"bytes"
	"fmt"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/names"
	"github.com/hnsgo/hnsd/wire/wireutil"
)

// GetUndo implements blockchain.UndoStore, returning the NameUndo and
// bitfield delta recorded when blockHash was connected.
func (d *DB) GetUndo(blockHash chainhash.Hash) (names.Undo, []uint32, error) {
	raw, err := d.getOrNil(undoKey(blockHash))
	if err != nil {
		return nil, nil, fmt.Errorf("database: reading undo for %s: %w", blockHash, err)
	}
	if raw == nil {
		return nil, nil, fmt.Errorf("database: no undo recorded for block %s", blockHash)
	}

	r := bytes.NewReader(raw)
	undo, err := names.DeserializeUndo(r)
	if err != nil {
		return nil, nil, fmt.Errorf("database: decoding undo for %s: %w", blockHash, err)
	}

	count, err := wireutil.ReadVarInt(r)
	if err != nil {
		return nil, nil, fmt.Errorf("database: decoding bitfield delta count for %s: %w", blockHash, err)
	}
	delta := make([]uint32, count)
	for i := range delta {
		delta[i], err = wireutil.ReadUint32(r)
		if err != nil {
			return nil, nil, fmt.Errorf("database: decoding bitfield delta entry for %s: %w", blockHash, err)
		}
	}

	return undo, delta, nil
}

// PutUndo implements blockchain.UndoStore, persisting the NameUndo and
// bitfield delta produced by connecting blockHash.
func (d *DB) PutUndo(blockHash chainhash.Hash, undo names.Undo, bitfieldDelta []uint32) error {
	var buf bytes.Buffer
	if err := undo.Serialize(&buf); err != nil {
		return fmt.Errorf("database: encoding undo for %s: %w", blockHash, err)
	}
	if err := wireutil.WriteVarInt(&buf, uint64(len(bitfieldDelta))); err != nil {
		return err
	}
	for _, idx := range bitfieldDelta {
		if err := wireutil.WriteUint32(&buf, idx); err != nil {
			return err
		}
	}
	return d.ldb.Put(undoKey(blockHash), buf.Bytes(), nil)
}
