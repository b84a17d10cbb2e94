// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package names

import (
	"bytes"
	"io"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/wire/wireutil"
)

// UndoEntry pairs a name hash with the NameState it held immediately
// before the block that produced this undo entry was connected. A nil
// Prior means the name did not exist before the block (it was created by
// OPEN or CLAIM within it); reversing such an entry deletes the name.
type UndoEntry struct {
	NameHash chainhash.Hash
	Prior    *NameState
}

// Undo is the list of per-name prior states needed to exactly invert a
// single block's name-state mutations. Each name appears at most once and
// the entries are in no particular order.
type Undo []UndoEntry

// NewUndo builds an Undo from a View's staged entries paired with the
// state each name held before the block started, as looked up through
// before (typically the persisted store's GetName).
func NewUndo(view *View, before func(hash chainhash.Hash) (*NameState, error)) (Undo, error) {
	undo := make(Undo, 0, len(view.Entries()))
	for hash := range view.Entries() {
		prior, err := before(hash)
		if err != nil {
			return nil, err
		}
		undo = append(undo, UndoEntry{NameHash: hash, Prior: prior})
	}
	return undo, nil
}

// Apply reverses every entry in undo against store, restoring each name to
// its pre-block state (or deleting it if Prior is nil). Callers are
// expected to persist the resulting states themselves; Apply only
// produces the restored map.
func (u Undo) Apply() map[chainhash.Hash]*NameState {
	restored := make(map[chainhash.Hash]*NameState, len(u))
	for _, entry := range u {
		restored[entry.NameHash] = entry.Prior
	}
	return restored
}

// Serialize encodes the undo list.
func (u Undo) Serialize(w io.Writer) error {
	if err := wireutil.WriteVarInt(w, uint64(len(u))); err != nil {
		return err
	}
	for _, entry := range u {
		if _, err := w.Write(entry.NameHash[:]); err != nil {
			return err
		}
		if entry.Prior == nil {
			if err := wireutil.WriteVarInt(w, 0); err != nil {
				return err
			}
			continue
		}
		var buf bytes.Buffer
		if err := entry.Prior.Serialize(&buf); err != nil {
			return err
		}
		if err := wireutil.WriteVarBytes(w, buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// DeserializeUndo decodes an Undo list previously written by Serialize.
func DeserializeUndo(r io.Reader) (Undo, error) {
	count, err := wireutil.ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	undo := make(Undo, count)
	for i := uint64(0); i < count; i++ {
		var entry UndoEntry
		if _, err := io.ReadFull(r, entry.NameHash[:]); err != nil {
			return nil, err
		}
		raw, err := wireutil.ReadVarBytes(r, 1<<20, "name undo entry")
		if err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			ns, err := Deserialize(bytes.NewReader(raw))
			if err != nil {
				return nil, err
			}
			entry.Prior = ns
		}
		undo[i] = entry
	}
	return undo, nil
}

// Bytes returns the serialized form of the undo list.
func (u Undo) Bytes() []byte {
	var buf bytes.Buffer
	_ = u.Serialize(&buf)
	return buf.Bytes()
}
