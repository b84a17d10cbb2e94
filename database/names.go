// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"bytes"
	"fmt"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/names"
)

// GetName implements names.Store, returning the persisted NameState for
// hash, or nil if the name has never been written (or was deleted by an
// expiry/undo).
func (d *DB) GetName(hash chainhash.Hash) (*names.NameState, error) {
	raw, err := d.getOrNil(nameKey(hash))
	if err != nil {
		return nil, fmt.Errorf("database: reading name %s: %w", hash, err)
	}
	if raw == nil {
		return nil, nil
	}
	ns, err := names.Deserialize(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("database: decoding name %s: %w", hash, err)
	}
	return ns, nil
}

// PutName implements the block connector/disconnector's nameStoreWriter
// interface. A nil ns deletes the entry, matching a View.Stage(hash, nil)
// call for an expired or never-existing name.
func (d *DB) PutName(hash chainhash.Hash, ns *names.NameState) error {
	key := nameKey(hash)
	if ns == nil {
		return d.ldb.Delete(key, nil)
	}
	var buf bytes.Buffer
	if err := ns.Serialize(&buf); err != nil {
		return fmt.Errorf("database: encoding name %s: %w", hash, err)
	}
	return d.ldb.Put(key, buf.Bytes(), nil)
}
