// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package covenant

import (
	"encoding/binary"
	"fmt"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
)

// The generic Covenant carries its fields as an untyped item list so it
// round-trips over the wire without the codec needing to know every kind's
// domain semantics. Everywhere else in the tree, a name transitions
// through one of the typed views below, each a thin, kind-specific sum
// member decoded from (and encoded back to) a generic Covenant.

func decodeU32(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("covenant: expected a 4-byte integer, got %d bytes", len(b))
	}
	return binary.BigEndian.Uint32(b), nil
}

func encodeU32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func decodeNameHash(b []byte) (chainhash.Hash, error) {
	var h chainhash.Hash
	if err := h.SetBytes(b); err != nil {
		return h, fmt.Errorf("covenant: malformed name hash: %w", err)
	}
	return h, nil
}

func decodeHash(b []byte) (chainhash.Hash, error) {
	var h chainhash.Hash
	if err := h.SetBytes(b); err != nil {
		return h, fmt.Errorf("covenant: malformed 32-byte field: %w", err)
	}
	return h, nil
}

func wrongKind(kind Kind, name string) error {
	return fmt.Errorf("covenant: expected a %s covenant, got %s", name, kind)
}

// OpenCovenant is the typed view of an OPEN covenant: starts the auction
// for a name.
type OpenCovenant struct {
	NameHash    chainhash.Hash
	StartHeight uint32
	Name        string
}

// ToCovenant renders c as a generic, wire-ready Covenant.
func (c *OpenCovenant) ToCovenant() *Covenant {
	return &Covenant{Kind: Open, Items: [][]byte{
		c.NameHash.CloneBytes(), encodeU32(c.StartHeight), []byte(c.Name),
	}}
}

// DecodeOpen interprets a generic Covenant of kind OPEN.
func DecodeOpen(c *Covenant) (*OpenCovenant, error) {
	if c.Kind != Open {
		return nil, wrongKind(c.Kind, "OPEN")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	h, err := decodeNameHash(c.Items[0])
	if err != nil {
		return nil, err
	}
	height, err := decodeU32(c.Items[1])
	if err != nil {
		return nil, err
	}
	return &OpenCovenant{NameHash: h, StartHeight: height, Name: string(c.Items[2])}, nil
}

// BidCovenant is the typed view of a BID covenant: a blinded commitment to
// a bid amount, locked behind output value lockup.
type BidCovenant struct {
	NameHash    chainhash.Hash
	StartHeight uint32
	Name        string
	Blind       chainhash.Hash
}

// ToCovenant renders c as a generic, wire-ready Covenant.
func (c *BidCovenant) ToCovenant() *Covenant {
	return &Covenant{Kind: Bid, Items: [][]byte{
		c.NameHash.CloneBytes(), encodeU32(c.StartHeight), []byte(c.Name), c.Blind.CloneBytes(),
	}}
}

// DecodeBid interprets a generic Covenant of kind BID.
func DecodeBid(c *Covenant) (*BidCovenant, error) {
	if c.Kind != Bid {
		return nil, wrongKind(c.Kind, "BID")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	h, err := decodeNameHash(c.Items[0])
	if err != nil {
		return nil, err
	}
	height, err := decodeU32(c.Items[1])
	if err != nil {
		return nil, err
	}
	blind, err := decodeHash(c.Items[3])
	if err != nil {
		return nil, err
	}
	return &BidCovenant{NameHash: h, StartHeight: height, Name: string(c.Items[2]), Blind: blind}, nil
}

// RevealCovenant is the typed view of a REVEAL covenant: discloses the
// true bid value (carried in the output itself) and the nonce that proves
// it matches an earlier blind.
type RevealCovenant struct {
	NameHash    chainhash.Hash
	StartHeight uint32
	Nonce       chainhash.Hash
}

func (c *RevealCovenant) ToCovenant() *Covenant {
	return &Covenant{Kind: Reveal, Items: [][]byte{
		c.NameHash.CloneBytes(), encodeU32(c.StartHeight), c.Nonce.CloneBytes(),
	}}
}

// DecodeReveal interprets a generic Covenant of kind REVEAL.
func DecodeReveal(c *Covenant) (*RevealCovenant, error) {
	if c.Kind != Reveal {
		return nil, wrongKind(c.Kind, "REVEAL")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	h, err := decodeNameHash(c.Items[0])
	if err != nil {
		return nil, err
	}
	height, err := decodeU32(c.Items[1])
	if err != nil {
		return nil, err
	}
	nonce, err := decodeHash(c.Items[2])
	if err != nil {
		return nil, err
	}
	return &RevealCovenant{NameHash: h, StartHeight: height, Nonce: nonce}, nil
}

// RedeemCovenant is the typed view of a REDEEM covenant: returns a losing
// bidder's excess lockup.
type RedeemCovenant struct {
	NameHash    chainhash.Hash
	StartHeight uint32
}

func (c *RedeemCovenant) ToCovenant() *Covenant {
	return &Covenant{Kind: Redeem, Items: [][]byte{c.NameHash.CloneBytes(), encodeU32(c.StartHeight)}}
}

// DecodeRedeem interprets a generic Covenant of kind REDEEM.
func DecodeRedeem(c *Covenant) (*RedeemCovenant, error) {
	if c.Kind != Redeem {
		return nil, wrongKind(c.Kind, "REDEEM")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	h, err := decodeNameHash(c.Items[0])
	if err != nil {
		return nil, err
	}
	height, err := decodeU32(c.Items[1])
	if err != nil {
		return nil, err
	}
	return &RedeemCovenant{NameHash: h, StartHeight: height}, nil
}

// RegisterCovenant is the typed view of a REGISTER covenant: finalizes the
// winning bid, recording the name's first resource record.
type RegisterCovenant struct {
	NameHash          chainhash.Hash
	StartHeight       uint32
	Resource          []byte
	RenewalAnchorHash chainhash.Hash
}

func (c *RegisterCovenant) ToCovenant() *Covenant {
	return &Covenant{Kind: Register, Items: [][]byte{
		c.NameHash.CloneBytes(), encodeU32(c.StartHeight), c.Resource, c.RenewalAnchorHash.CloneBytes(),
	}}
}

// DecodeRegister interprets a generic Covenant of kind REGISTER.
func DecodeRegister(c *Covenant) (*RegisterCovenant, error) {
	if c.Kind != Register {
		return nil, wrongKind(c.Kind, "REGISTER")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	h, err := decodeNameHash(c.Items[0])
	if err != nil {
		return nil, err
	}
	height, err := decodeU32(c.Items[1])
	if err != nil {
		return nil, err
	}
	anchor, err := decodeHash(c.Items[3])
	if err != nil {
		return nil, err
	}
	return &RegisterCovenant{
		NameHash: h, StartHeight: height, Resource: c.Items[2], RenewalAnchorHash: anchor,
	}, nil
}

// UpdateCovenant is the typed view of an UPDATE covenant: replaces a
// registered name's resource record.
type UpdateCovenant struct {
	NameHash    chainhash.Hash
	StartHeight uint32
	Resource    []byte
}

func (c *UpdateCovenant) ToCovenant() *Covenant {
	return &Covenant{Kind: Update, Items: [][]byte{
		c.NameHash.CloneBytes(), encodeU32(c.StartHeight), c.Resource,
	}}
}

// DecodeUpdate interprets a generic Covenant of kind UPDATE.
func DecodeUpdate(c *Covenant) (*UpdateCovenant, error) {
	if c.Kind != Update {
		return nil, wrongKind(c.Kind, "UPDATE")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	h, err := decodeNameHash(c.Items[0])
	if err != nil {
		return nil, err
	}
	height, err := decodeU32(c.Items[1])
	if err != nil {
		return nil, err
	}
	return &UpdateCovenant{NameHash: h, StartHeight: height, Resource: c.Items[2]}, nil
}

// RenewCovenant is the typed view of a RENEW covenant: extends a name's
// expiration without altering its resource record.
type RenewCovenant struct {
	NameHash          chainhash.Hash
	StartHeight       uint32
	RenewalAnchorHash chainhash.Hash
}

func (c *RenewCovenant) ToCovenant() *Covenant {
	return &Covenant{Kind: Renew, Items: [][]byte{
		c.NameHash.CloneBytes(), encodeU32(c.StartHeight), c.RenewalAnchorHash.CloneBytes(),
	}}
}

// DecodeRenew interprets a generic Covenant of kind RENEW.
func DecodeRenew(c *Covenant) (*RenewCovenant, error) {
	if c.Kind != Renew {
		return nil, wrongKind(c.Kind, "RENEW")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	h, err := decodeNameHash(c.Items[0])
	if err != nil {
		return nil, err
	}
	height, err := decodeU32(c.Items[1])
	if err != nil {
		return nil, err
	}
	anchor, err := decodeHash(c.Items[2])
	if err != nil {
		return nil, err
	}
	return &RenewCovenant{NameHash: h, StartHeight: height, RenewalAnchorHash: anchor}, nil
}

// TransferCovenant is the typed view of a TRANSFER covenant: begins a
// pending ownership change to a new address.
type TransferCovenant struct {
	NameHash    chainhash.Hash
	StartHeight uint32
	AddrVersion uint8
	AddrHash    []byte
}

func (c *TransferCovenant) ToCovenant() *Covenant {
	return &Covenant{Kind: Transfer, Items: [][]byte{
		c.NameHash.CloneBytes(), encodeU32(c.StartHeight), {c.AddrVersion}, c.AddrHash,
	}}
}

// DecodeTransfer interprets a generic Covenant of kind TRANSFER.
func DecodeTransfer(c *Covenant) (*TransferCovenant, error) {
	if c.Kind != Transfer {
		return nil, wrongKind(c.Kind, "TRANSFER")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	h, err := decodeNameHash(c.Items[0])
	if err != nil {
		return nil, err
	}
	height, err := decodeU32(c.Items[1])
	if err != nil {
		return nil, err
	}
	if len(c.Items[2]) != 1 {
		return nil, fmt.Errorf("covenant: TRANSFER addr_version must be 1 byte")
	}
	return &TransferCovenant{
		NameHash: h, StartHeight: height, AddrVersion: c.Items[2][0], AddrHash: c.Items[3],
	}, nil
}

// FinalizeCovenant is the typed view of a FINALIZE covenant: completes a
// pending transfer once its lockup has elapsed. Its embedded fields must
// equal the corresponding NameState fields as a tamper check.
type FinalizeCovenant struct {
	NameHash          chainhash.Hash
	StartHeight       uint32
	Name              string
	Flags             uint8
	Claimed           uint32
	Renewals          uint32
	RenewalAnchorHash chainhash.Hash
}

func (c *FinalizeCovenant) ToCovenant() *Covenant {
	return &Covenant{Kind: Finalize, Items: [][]byte{
		c.NameHash.CloneBytes(), encodeU32(c.StartHeight), []byte(c.Name), {c.Flags},
		encodeU32(c.Claimed), encodeU32(c.Renewals), c.RenewalAnchorHash.CloneBytes(),
	}}
}

// DecodeFinalize interprets a generic Covenant of kind FINALIZE.
func DecodeFinalize(c *Covenant) (*FinalizeCovenant, error) {
	if c.Kind != Finalize {
		return nil, wrongKind(c.Kind, "FINALIZE")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	h, err := decodeNameHash(c.Items[0])
	if err != nil {
		return nil, err
	}
	height, err := decodeU32(c.Items[1])
	if err != nil {
		return nil, err
	}
	if len(c.Items[3]) != 1 {
		return nil, fmt.Errorf("covenant: FINALIZE flags must be 1 byte")
	}
	claimed, err := decodeU32(c.Items[4])
	if err != nil {
		return nil, err
	}
	renewals, err := decodeU32(c.Items[5])
	if err != nil {
		return nil, err
	}
	anchor, err := decodeHash(c.Items[6])
	if err != nil {
		return nil, err
	}
	return &FinalizeCovenant{
		NameHash: h, StartHeight: height, Name: string(c.Items[2]), Flags: c.Items[3][0],
		Claimed: claimed, Renewals: renewals, RenewalAnchorHash: anchor,
	}, nil
}

// RevokeCovenant is the typed view of a REVOKE covenant: permanently
// retires a name.
type RevokeCovenant struct {
	NameHash    chainhash.Hash
	StartHeight uint32
}

func (c *RevokeCovenant) ToCovenant() *Covenant {
	return &Covenant{Kind: Revoke, Items: [][]byte{c.NameHash.CloneBytes(), encodeU32(c.StartHeight)}}
}

// DecodeRevoke interprets a generic Covenant of kind REVOKE.
func DecodeRevoke(c *Covenant) (*RevokeCovenant, error) {
	if c.Kind != Revoke {
		return nil, wrongKind(c.Kind, "REVOKE")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	h, err := decodeNameHash(c.Items[0])
	if err != nil {
		return nil, err
	}
	height, err := decodeU32(c.Items[1])
	if err != nil {
		return nil, err
	}
	return &RevokeCovenant{NameHash: h, StartHeight: height}, nil
}

// ClaimCovenant is the typed view of a CLAIM covenant: seeds a name
// directly to a pre-chain claimant via the airdrop pipeline.
type ClaimCovenant struct {
	NameHash     chainhash.Hash
	StartHeight  uint32
	Name         string
	Flags        uint8
	CommitHash   chainhash.Hash
	CommitHeight uint32
	Claimed      uint32
}

// WeakClaim reports whether the low bit of Flags marks this as a "weak"
// claim, one whose ownership proof is considered less authoritative (used
// by name state's Weak field).
func (c *ClaimCovenant) WeakClaim() bool {
	return c.Flags&0x01 != 0
}

func (c *ClaimCovenant) ToCovenant() *Covenant {
	return &Covenant{Kind: Claim, Items: [][]byte{
		c.NameHash.CloneBytes(), encodeU32(c.StartHeight), []byte(c.Name), {c.Flags},
		c.CommitHash.CloneBytes(), encodeU32(c.CommitHeight), encodeU32(c.Claimed),
	}}
}

// DecodeClaim interprets a generic Covenant of kind CLAIM.
func DecodeClaim(c *Covenant) (*ClaimCovenant, error) {
	if c.Kind != Claim {
		return nil, wrongKind(c.Kind, "CLAIM")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	h, err := decodeNameHash(c.Items[0])
	if err != nil {
		return nil, err
	}
	height, err := decodeU32(c.Items[1])
	if err != nil {
		return nil, err
	}
	if len(c.Items[3]) != 1 {
		return nil, fmt.Errorf("covenant: CLAIM flags must be 1 byte")
	}
	commitHash, err := decodeHash(c.Items[4])
	if err != nil {
		return nil, err
	}
	commitHeight, err := decodeU32(c.Items[5])
	if err != nil {
		return nil, err
	}
	claimed, err := decodeU32(c.Items[6])
	if err != nil {
		return nil, err
	}
	return &ClaimCovenant{
		NameHash: h, StartHeight: height, Name: string(c.Items[2]), Flags: c.Items[3][0],
		CommitHash: commitHash, CommitHeight: commitHeight, Claimed: claimed,
	}, nil
}

// DataCovenant is the typed view of the generic DATA covenant: attaches
// opaque auxiliary data to a registered name without touching ownership.
type DataCovenant struct {
	NameHash    chainhash.Hash
	StartHeight uint32
	Data        []byte
}

func (c *DataCovenant) ToCovenant() *Covenant {
	return &Covenant{Kind: Data, Items: [][]byte{
		c.NameHash.CloneBytes(), encodeU32(c.StartHeight), c.Data,
	}}
}

// DecodeData interprets a generic Covenant of kind DATA.
func DecodeData(c *Covenant) (*DataCovenant, error) {
	if c.Kind != Data {
		return nil, wrongKind(c.Kind, "DATA")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	h, err := decodeNameHash(c.Items[0])
	if err != nil {
		return nil, err
	}
	height, err := decodeU32(c.Items[1])
	if err != nil {
		return nil, err
	}
	return &DataCovenant{NameHash: h, StartHeight: height, Data: c.Items[2]}, nil
}
