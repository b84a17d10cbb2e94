// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package covenant

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/wire/wireutil"
)

// MaxItemSize bounds a single covenant item, guarding decode against a
// corrupt or adversarial length prefix.
const MaxItemSize = 512

// MaxItems bounds the number of items a single covenant may carry. CLAIM
// and FINALIZE carry the most at 7.
const MaxItems = 7

// itemCounts gives the exact number of items each kind requires, matching
// the positional schema each covenant kind is defined against. A covenant
// decoding to a different count than its kind demands is malformed.
var itemCounts = map[Kind]int{
	None:     0,
	Open:     3, // name_hash, start_height, raw_name
	Bid:      4, // name_hash, start_height, raw_name, blind
	Reveal:   3, // name_hash, start_height, nonce
	Redeem:   2, // name_hash, start_height
	Register: 4, // name_hash, start_height, resource_bytes, renewal_anchor_hash
	Update:   3, // name_hash, start_height, resource_bytes
	Renew:    3, // name_hash, start_height, renewal_anchor_hash
	Transfer: 4, // name_hash, start_height, addr_version, addr_hash
	Finalize: 7, // name_hash, start_height, raw_name, flags, claimed, renewals, renewal_anchor_hash
	Revoke:   2, // name_hash, start_height
	Claim:    7, // name_hash, start_height, raw_name, flags, commit_hash, commit_height, claimed
	Data:     3, // name_hash, start_height, data
}

// Covenant is the generic, positionally-encoded tag attached to a
// transaction output. Interpretation of Items is entirely up to the Kind;
// the names package is responsible for validating and acting on them.
type Covenant struct {
	Kind  Kind
	Items [][]byte
}

// Name returns the name hash an output's covenant applies to. Every kind
// except NONE carries the name hash as its first item.
func (c *Covenant) Name() (chainhash.Hash, error) {
	var h chainhash.Hash
	if c.Kind == None {
		return h, fmt.Errorf("covenant: NONE outputs do not carry a name")
	}
	if len(c.Items) == 0 {
		return h, fmt.Errorf("covenant: missing name hash item")
	}
	if err := h.SetBytes(c.Items[0]); err != nil {
		return h, fmt.Errorf("covenant: malformed name hash: %w", err)
	}
	return h, nil
}

// Validate checks that the covenant carries the exact item count and item
// size bounds its kind requires. It does not validate the domain semantics
// of individual items (e.g. that a height item actually decodes sanely);
// that is the job of the names package's per-kind acceptance checks.
func (c *Covenant) Validate() error {
	want, ok := itemCounts[c.Kind]
	if !ok {
		return fmt.Errorf("covenant: unknown kind %d", uint8(c.Kind))
	}
	if len(c.Items) != want {
		return fmt.Errorf("covenant: kind %s requires %d items, got %d",
			c.Kind, want, len(c.Items))
	}
	if len(c.Items) > MaxItems {
		return fmt.Errorf("covenant: %d items exceeds maximum of %d",
			len(c.Items), MaxItems)
	}
	for i, item := range c.Items {
		if len(item) > MaxItemSize {
			return fmt.Errorf("covenant: item %d size %d exceeds maximum of %d",
				i, len(item), MaxItemSize)
		}
	}
	return nil
}

// Encode writes the covenant's wire representation: a byte giving the kind,
// a varint item count, and each item as a varint-prefixed byte string.
func (c *Covenant) Encode(w io.Writer) error {
	if _, err := w.Write([]byte{byte(c.Kind)}); err != nil {
		return err
	}
	if err := wireutil.WriteVarInt(w, uint64(len(c.Items))); err != nil {
		return err
	}
	for _, item := range c.Items {
		if err := wireutil.WriteVarBytes(w, item); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a covenant previously written by Encode. It enforces
// MaxItems and MaxItemSize while reading but does not call Validate; callers
// that need strict per-kind item counts should call Validate explicitly.
func Decode(r io.Reader) (*Covenant, error) {
	var kindByte [1]byte
	if _, err := io.ReadFull(r, kindByte[:]); err != nil {
		return nil, err
	}
	kind := Kind(kindByte[0])
	if _, ok := itemCounts[kind]; !ok {
		return nil, fmt.Errorf("covenant: unknown kind %d", kindByte[0])
	}

	count, err := wireutil.ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > MaxItems {
		return nil, fmt.Errorf("covenant: %d items exceeds maximum of %d", count, MaxItems)
	}

	items := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		item, err := wireutil.ReadVarBytes(r, MaxItemSize, "covenant item")
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return &Covenant{Kind: kind, Items: items}, nil
}

// Bytes returns the encoded form of the covenant.
func (c *Covenant) Bytes() []byte {
	var buf bytes.Buffer
	// Encode on a preallocated buffer never errors.
	_ = c.Encode(&buf)
	return buf.Bytes()
}
