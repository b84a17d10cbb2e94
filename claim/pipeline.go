// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package claim

import (
	"fmt"

	"github.com/hnsgo/hnsd/chaincfg"
	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/covenant"
	"github.com/hnsgo/hnsd/wire"
)

// ChainReader is the slice of the consensus core's chain access a pipeline
// run needs: resolving the block hash a proof's commitment pins itself to.
type ChainReader interface {
	HashAt(height uint32) (chainhash.Hash, error)
}

// ReservedValue is the base allocation, in the smallest monetary unit,
// that a reserved or Alexa-lockup name is worth before the claim fee is
// subtracted. Names absent from the table fall back to DefaultReservedValue.
var ReservedValue = map[string]uint64{
	"google":    10_000_000_000_000,
	"facebook":  6_000_000_000_000,
	"amazon":    6_000_000_000_000,
	"wikipedia": 2_000_000_000_000,
	"twitter":   2_000_000_000_000,
	"instagram": 2_000_000_000_000,
	"microsoft": 8_000_000_000_000,
	"apple":     8_000_000_000_000,
	"netflix":   3_000_000_000_000,
	"reddit":    1_000_000_000_000,
}

// DefaultReservedValue is the allocation given to a reserved name that
// does not appear in ReservedValue.
const DefaultReservedValue = 100_000_000

// reservedValueFor looks up the base allocation for name.
func reservedValueFor(name string) uint64 {
	if v, ok := ReservedValue[name]; ok {
		return v
	}
	return DefaultReservedValue
}

// Pipeline turns a raw ownership proof into the synthetic coinbase CLAIM
// input the block connector's coinbase-specific step accepts. It
// implements the five-step sequence from the component design: decode,
// extract the embedded commitment, pin it to the main chain, check the
// name is still reserved, and emit the CLAIM input.
type Pipeline struct {
	Chain  ChainReader
	Params *chaincfg.Params
}

// Process runs the pipeline over raw, the wire-encoded OwnershipProof
// bytes, at height (the height the resulting CLAIM would be mined at).
// It returns the TxOut the coinbase transaction should carry, bearing the
// CLAIM covenant and a value equal to the reserved allocation minus the
// proof's stated fee. The ownership proof's cryptography is not checked
// here — that is the job of the ClaimValidator the block connector
// consults when the resulting covenant is later accepted.
func (p *Pipeline) Process(raw []byte, height uint32, claimed uint32) (*wire.TxOut, error) {
	proof, err := DecodeOwnershipProof(raw)
	if err != nil {
		return nil, fmt.Errorf("bad-claim-proof: %w", err)
	}

	commitHash, err := p.Chain.HashAt(proof.Commitment.CommitHeight)
	if err != nil {
		return nil, fmt.Errorf("bad-claim-commitment: resolving commit height %d: %w", proof.Commitment.CommitHeight, err)
	}
	if commitHash != proof.Commitment.CommitHash {
		return nil, fmt.Errorf("bad-claim-commitment: proof pins a block the main chain does not have at height %d", proof.Commitment.CommitHeight)
	}

	if !chaincfg.IsReserved(proof.Name) && !chaincfg.IsAlexaLockup(proof.Name) {
		return nil, fmt.Errorf("bad-claim-not-reserved: %q is not a reserved name", proof.Name)
	}
	if p.Params != nil && height >= p.Params.Names.ClaimPeriod {
		return nil, fmt.Errorf("bad-claim-timeout: claim period has elapsed at height %d", height)
	}

	reserved := reservedValueFor(proof.Name)
	if proof.Commitment.Fee > reserved {
		return nil, fmt.Errorf("bad-claim-proof: fee %d exceeds reserved value %d", proof.Commitment.Fee, reserved)
	}

	nameHash := chainhash.Sum([]byte(proof.Name))
	cov := &covenant.ClaimCovenant{
		NameHash:     nameHash,
		StartHeight:  height,
		Name:         proof.Name,
		CommitHash:   proof.Commitment.CommitHash,
		CommitHeight: proof.Commitment.CommitHeight,
		Claimed:      claimed,
	}

	return &wire.TxOut{
		Value:    int64(reserved - proof.Commitment.Fee),
		Covenant: *cov.ToCovenant(),
	}, nil
}
