// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/hnsgo/hnsd/wire/wireutil"
)

// MaxVarIntPayload is the maximum payload size for a variable length integer.
const MaxVarIntPayload = wireutil.MaxVarIntPayload

// ReadVarInt reads a variable length integer from r.
func ReadVarInt(r io.Reader) (uint64, error) { return wireutil.ReadVarInt(r) }

// WriteVarInt writes val to w using the minimal encoding.
func WriteVarInt(w io.Writer, val uint64) error { return wireutil.WriteVarInt(w, val) }

// ReadVarBytes reads a variable length byte array preceded by a VarInt
// giving the exact number of bytes.
func ReadVarBytes(r io.Reader, maxAllowed uint64, fieldName string) ([]byte, error) {
	return wireutil.ReadVarBytes(r, maxAllowed, fieldName)
}

// WriteVarBytes writes a VarInt-prefixed byte array to w.
func WriteVarBytes(w io.Writer, data []byte) error { return wireutil.WriteVarBytes(w, data) }

func readUint32(r io.Reader) (uint32, error) { return wireutil.ReadUint32(r) }
func writeUint32(w io.Writer, v uint32) error { return wireutil.WriteUint32(w, v) }
func readUint64(r io.Reader) (uint64, error) { return wireutil.ReadUint64(r) }
func writeUint64(w io.Writer, v uint64) error { return wireutil.WriteUint64(w, v) }
func readInt64(r io.Reader) (int64, error)   { return wireutil.ReadInt64(r) }
func writeInt64(w io.Writer, v int64) error  { return wireutil.WriteInt64(w, v) }
