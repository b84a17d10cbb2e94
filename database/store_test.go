// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/names"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPutGetNameRoundTrip(t *testing.T) {
	db := openTestDB(t)
	hash := chainhash.Sum([]byte("example"))

	got, err := db.GetName(hash)
	require.NoError(t, err)
	require.Nil(t, got)

	ns := &names.NameState{NameHash: hash, Name: "example", Height: 10, Value: 500, Highest: 1000}
	require.NoError(t, db.PutName(hash, ns))

	got, err = db.GetName(hash)
	require.NoError(t, err)
	require.Equal(t, ns.Name, got.Name)
	require.Equal(t, ns.Height, got.Height)
	require.Equal(t, ns.Value, got.Value)

	require.NoError(t, db.PutName(hash, nil))
	got, err = db.GetName(hash)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPutGetUndoRoundTrip(t *testing.T) {
	db := openTestDB(t)
	blockHash := chainhash.Sum([]byte("block-1"))

	prior := &names.NameState{NameHash: chainhash.Sum([]byte("foo")), Name: "foo", Height: 1}
	undo := names.Undo{{NameHash: prior.NameHash, Prior: prior}, {NameHash: chainhash.Sum([]byte("bar"))}}
	delta := []uint32{3, 7, 9}

	require.NoError(t, db.PutUndo(blockHash, undo, delta))

	gotUndo, gotDelta, err := db.GetUndo(blockHash)
	require.NoError(t, err)
	require.Equal(t, delta, gotDelta)
	require.Len(t, gotUndo, 2)
	require.Equal(t, "foo", gotUndo[0].Prior.Name)
	require.Nil(t, gotUndo[1].Prior)
}

func TestPutGetTreeRootRoundTrip(t *testing.T) {
	db := openTestDB(t)
	root := chainhash.Sum([]byte("root-at-36"))

	got, err := db.GetTreeRoot(36)
	require.NoError(t, err)
	require.Equal(t, chainhash.Hash{}, got)

	require.NoError(t, db.PutTreeRoot(36, root))
	got, err = db.GetTreeRoot(36)
	require.NoError(t, err)
	require.Equal(t, root, got)
}

func TestLoadSaveBitfieldRoundTrip(t *testing.T) {
	db := openTestDB(t)

	bf, err := db.LoadBitfield(64)
	require.NoError(t, err)
	require.False(t, bf.Get(5))

	require.NoError(t, bf.Set(5))
	bf.Commit()
	require.NoError(t, db.SaveBitfield(bf))

	reloaded, err := db.LoadBitfield(64)
	require.NoError(t, err)
	require.True(t, reloaded.Get(5))
}
