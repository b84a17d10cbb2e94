// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package names

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hnsgo/hnsd/chaincfg"
	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/wire"
	"github.com/hnsgo/hnsd/wire/wireutil"
)

// State identifies where a name currently sits in its auction lifecycle.
type State uint8

const (
	// StateOpening is the window immediately following OPEN, before
	// bidding has begun.
	StateOpening State = iota

	// StateBidding is the window during which BID outputs may be added.
	StateBidding

	// StateReveal is the window during which REVEAL outputs disclose
	// bid values.
	StateReveal

	// StateClosed is reached once reveal ends; the name may be
	// registered, and afterward updated, renewed, or transferred.
	StateClosed

	// StateRevoked holds for RenewalWindow blocks after a REVOKE, after
	// which the name reopens as a fresh auction.
	StateRevoked
)

func (s State) String() string {
	switch s {
	case StateOpening:
		return "OPENING"
	case StateBidding:
		return "BIDDING"
	case StateReveal:
		return "REVEAL"
	case StateClosed:
		return "CLOSED"
	case StateRevoked:
		return "REVOKED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
	}
}

// NameState is the authoritative per-name record. A nil record, or one
// with zero height, no registration and a zero name hash, marks a name as
// never having existed (see IsNull).
type NameState struct {
	NameHash   chainhash.Hash
	Name       string
	Height     uint32 // start-height anchoring the current auction cycle
	Renewal    uint32 // last renewal anchor height
	Renewals   uint32 // renewal counter
	Claimed    uint32 // claim witness sequence, 0 if never claimed
	Weak       bool   // set from a CLAIM's flags bit 0
	Owner      wire.OutPoint
	Highest    uint64 // top bid value revealed so far
	Value      uint64 // second-highest bid: the Vickrey clearing price
	Transfer   uint32 // height a TRANSFER began, 0 if not transferring
	Revoked    uint32 // height REVOKE happened, 0 if not revoked
	Data       []byte // last committed resource record
	Registered bool
}

// IsNull reports whether ns represents "no such name" rather than an
// actual registered or in-progress name.
func (ns *NameState) IsNull() bool {
	return ns == nil || ns.Height == 0 && !ns.Registered && ns.NameHash == (chainhash.Hash{})
}

// State returns the lifecycle state of ns at the given height, under the
// timing constants in params.
func (ns *NameState) State(height uint32, params *chaincfg.NamesParams) State {
	if ns.Revoked != 0 {
		return StateRevoked
	}
	elapsed := height - ns.Height
	switch {
	case elapsed < params.TreeInterval:
		return StateOpening
	case elapsed < params.TreeInterval+params.BiddingPeriod:
		return StateBidding
	case elapsed < params.TreeInterval+params.BiddingPeriod+params.RevealPeriod:
		return StateReveal
	default:
		return StateClosed
	}
}

// IsExpired reports whether ns should be treated as having expired at
// height: more than RenewalWindow blocks have passed since the latest of
// its start height, last renewal and revoke height. The maybe-expire probe
// run at the top of every block uses it.
func (ns *NameState) IsExpired(height uint32, params *chaincfg.NamesParams) bool {
	if ns.IsNull() {
		return false
	}
	since := ns.Renewal
	if ns.Height > since {
		since = ns.Height
	}
	if ns.Revoked > since {
		since = ns.Revoked
	}
	return height > since+params.RenewalWindow
}

// Clone returns a deep copy of ns, used by NameView to stage mutations
// without aliasing the persisted record.
func (ns *NameState) Clone() *NameState {
	if ns == nil {
		return nil
	}
	clone := *ns
	if ns.Data != nil {
		clone.Data = make([]byte, len(ns.Data))
		copy(clone.Data, ns.Data)
	}
	return &clone
}

// Serialize encodes ns in the positional format persisted to the name
// store and committed into the authenticated tree.
func (ns *NameState) Serialize(w io.Writer) error {
	if len(ns.Name) > 255 {
		return fmt.Errorf("names: name %q exceeds 255 bytes", ns.Name)
	}
	if _, err := w.Write([]byte{byte(len(ns.Name))}); err != nil {
		return err
	}
	if _, err := w.Write([]byte(ns.Name)); err != nil {
		return err
	}
	if _, err := w.Write(ns.NameHash[:]); err != nil {
		return err
	}
	for _, v := range []uint32{ns.Height, ns.Renewal} {
		if err := wireutil.WriteUint32(w, v); err != nil {
			return err
		}
	}
	if _, err := w.Write(ns.Owner.Hash[:]); err != nil {
		return err
	}
	if err := wireutil.WriteUint32(w, ns.Owner.Index); err != nil {
		return err
	}
	for _, v := range []uint64{ns.Value, ns.Highest} {
		if err := wireutil.WriteUint64(w, v); err != nil {
			return err
		}
	}
	if err := wireutil.WriteVarBytes(w, ns.Data); err != nil {
		return err
	}
	for _, v := range []uint32{ns.Transfer, ns.Revoked, ns.Claimed, ns.Renewals} {
		if err := wireutil.WriteUint32(w, v); err != nil {
			return err
		}
	}
	var flags byte
	if ns.Registered {
		flags |= 0x01
	}
	if ns.Weak {
		flags |= 0x02
	}
	_, err := w.Write([]byte{flags})
	return err
}

// Deserialize decodes a NameState previously written by Serialize.
func Deserialize(r io.Reader) (*NameState, error) {
	ns := &NameState{}

	var nameLen [1]byte
	if _, err := io.ReadFull(r, nameLen[:]); err != nil {
		return nil, err
	}
	nameBuf := make([]byte, nameLen[0])
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return nil, err
	}
	ns.Name = string(nameBuf)

	if _, err := io.ReadFull(r, ns.NameHash[:]); err != nil {
		return nil, err
	}

	var err error
	if ns.Height, err = wireutil.ReadUint32(r); err != nil {
		return nil, err
	}
	if ns.Renewal, err = wireutil.ReadUint32(r); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, ns.Owner.Hash[:]); err != nil {
		return nil, err
	}
	if ns.Owner.Index, err = wireutil.ReadUint32(r); err != nil {
		return nil, err
	}
	if ns.Value, err = wireutil.ReadUint64(r); err != nil {
		return nil, err
	}
	if ns.Highest, err = wireutil.ReadUint64(r); err != nil {
		return nil, err
	}
	if ns.Data, err = wireutil.ReadVarBytes(r, 64*1024, "name state data"); err != nil {
		return nil, err
	}
	if len(ns.Data) == 0 {
		ns.Data = nil
	}
	if ns.Transfer, err = wireutil.ReadUint32(r); err != nil {
		return nil, err
	}
	if ns.Revoked, err = wireutil.ReadUint32(r); err != nil {
		return nil, err
	}
	if ns.Claimed, err = wireutil.ReadUint32(r); err != nil {
		return nil, err
	}
	if ns.Renewals, err = wireutil.ReadUint32(r); err != nil {
		return nil, err
	}

	var flags [1]byte
	if _, err := io.ReadFull(r, flags[:]); err != nil {
		return nil, err
	}
	ns.Registered = flags[0]&0x01 != 0
	ns.Weak = flags[0]&0x02 != 0

	return ns, nil
}

// Bytes returns the serialized form of ns.
func (ns *NameState) Bytes() []byte {
	var buf bytes.Buffer
	_ = ns.Serialize(&buf)
	return buf.Bytes()
}
