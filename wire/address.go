// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/hnsgo/hnsd/wire/wireutil"
)

// MaxAddressHashSize bounds the witness-program-style hash carried by an
// Address, mirroring the 2-to-40 byte range a segwit-style program allows.
const MaxAddressHashSize = 40

// Address is a version-tagged output hash: a payment destination that, like
// a segwit witness program, carries a version byte plus a hash whose
// interpretation (pubkey hash, script hash, or something wider) depends on
// that version.
type Address struct {
	Version uint8
	Hash    []byte
}

// Encode writes the address as a version byte followed by a
// varint-prefixed hash.
func (a *Address) Encode(w io.Writer) error {
	if _, err := w.Write([]byte{a.Version}); err != nil {
		return err
	}
	return wireutil.WriteVarBytes(w, a.Hash)
}

// DecodeAddress reads an Address previously written by Encode.
func DecodeAddress(r io.Reader) (Address, error) {
	var a Address
	var version [1]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return a, err
	}
	a.Version = version[0]

	hash, err := wireutil.ReadVarBytes(r, MaxAddressHashSize, "address hash")
	if err != nil {
		return a, err
	}
	a.Hash = hash
	return a, nil
}

// String renders the address as version:hex, a debug-only form; the node's
// bech32 presentation layer lives outside the consensus core.
func (a Address) String() string {
	return fmt.Sprintf("%d:%x", a.Version, a.Hash)
}
