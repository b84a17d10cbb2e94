// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the 32-byte digest type used throughout the
// chain: block hashes, transaction hashes, name hashes and authenticated
// name-tree node hashes. The network hashes with BLAKE2b-256 rather than
// Bitcoin's double SHA-256, matching the hash function the covenant scheme
// was originally specified against.
package chainhash

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// HashSize is the number of bytes in the preferred hash used by the chain,
// BLAKE2b-256.
const HashSize = 32

// MaxHashStringSize is the maximum length of a Hash hash string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize describes an error that indicates the caller specified a hex
// string that does not have the right number of characters.
var ErrHashStrSize = fmt.Errorf("max hash string length is %v bytes", MaxHashStringSize)

// Hash is used in several of the chain's data structures and is typically
// the BLAKE2b-256 of some arbitrary data.
type Hash [HashSize]byte

// String returns the Hash as the hexadecimal string of the byte-reversed
// hash, matching the big-endian display convention inherited from Bitcoin.
func (h Hash) String() string {
	var buf [HashSize * 2]byte
	hex.Encode(buf[:], h.bytesReversed())
	return string(buf[:])
}

func (h Hash) bytesReversed() []byte {
	out := make([]byte, HashSize)
	for i := 0; i < HashSize; i++ {
		out[i] = h[HashSize-1-i]
	}
	return out
}

// CloneBytes returns a copy of the bytes which make up the hash.
func (h *Hash) CloneBytes() []byte {
	out := make([]byte, HashSize)
	copy(out, h[:])
	return out
}

// SetBytes sets the bytes which represent the hash.  An error is returned if
// the number of bytes passed in is not HashSize.
func (h *Hash) SetBytes(newHash []byte) error {
	if len(newHash) != HashSize {
		return fmt.Errorf("invalid hash length of %v, want %v", len(newHash), HashSize)
	}
	copy(h[:], newHash)
	return nil
}

// IsEqual returns true if target is the same as the hash.
func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil && target == nil {
		return true
	}
	if h == nil || target == nil {
		return false
	}
	return *h == *target
}

// NewHash returns a new Hash from a byte slice.
func NewHash(newHash []byte) (*Hash, error) {
	var h Hash
	if err := h.SetBytes(newHash); err != nil {
		return nil, err
	}
	return &h, nil
}

// NewHashFromStr creates a Hash from a hash string. The string should be the
// hexadecimal string of a byte-reversed hash, but any missing characters
// result in zero padding at the end of the Hash.
func NewHashFromStr(hash string) (*Hash, error) {
	ret := new(Hash)
	if err := Decode(ret, hash); err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode decodes the byte-reversed hexadecimal string encoding of a Hash to
// a destination.
func Decode(dst *Hash, src string) error {
	if len(src) > MaxHashStringSize {
		return ErrHashStrSize
	}

	var srcBytes []byte
	if len(src)%2 == 0 {
		srcBytes = []byte(src)
	} else {
		srcBytes = make([]byte, 1+len(src))
		srcBytes[0] = '0'
		copy(srcBytes[1:], src)
	}

	var reversedHash Hash
	_, err := hex.Decode(reversedHash[HashSize-hex.DecodedLen(len(srcBytes)):], srcBytes)
	if err != nil {
		return err
	}

	for i, b := range reversedHash[:HashSize/2] {
		reversedHash[i], reversedHash[HashSize-1-i] = reversedHash[HashSize-1-i], b
	}
	*dst = reversedHash
	return nil
}

// Sum returns the BLAKE2b-256 digest of the given data.
func Sum(data []byte) Hash {
	return Hash(blake2b.Sum256(data))
}

// SumB is the byte-slice returning variant of Sum.
func SumB(data []byte) []byte {
	h := Sum(data)
	return h[:]
}

// DoubleSum returns BLAKE2b-256(BLAKE2b-256(data)), used for the block and
// transaction identifier hash to provide the same second-preimage hardening
// property double SHA-256 gives Bitcoin.
func DoubleSum(data []byte) Hash {
	first := Sum(data)
	return Sum(first[:])
}

// DoubleSumB is the byte-slice returning variant of DoubleSum.
func DoubleSumB(data []byte) []byte {
	h := DoubleSum(data)
	return h[:]
}
