// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package claim implements the airdrop/reserved-name claim pipeline: it
// turns a DNSSEC-style ownership proof into the synthetic coinbase CLAIM
// input the block connector accepts, and defines the external collaborator
// the consensus core calls to verify the proof's cryptography.
package claim

import (
	"bytes"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/decred/dcrd/lru"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/wire/wireutil"
)

// verifiedCacheLimit bounds the number of proof digests Validator
// remembers as already cryptographically verified. A claim proof is
// re-presented to Validate once when it enters the mempool and again
// when its containing block connects; the cache turns the second check
// into a lookup instead of a second ECDSA verification.
const verifiedCacheLimit = 2048

// Commitment is the payload a proof's terminal TXT record commits to: the
// address the claimed value pays to, the fee charged by whoever assembled
// the proof, and a pin to a specific main-chain block so the proof cannot
// be replayed against a history it never saw.
type Commitment struct {
	Address      []byte
	Fee          uint64
	CommitHash   chainhash.Hash
	CommitHeight uint32
	Network      string
}

// DNSRecord is a single link in the signed chain a proof carries. The
// chain terminates in a TXT record whose RDATA, once the chain verifies,
// decodes as a Commitment.
type DNSRecord struct {
	Type      uint16
	Name      string
	RDATA     []byte
	Signature []byte
}

// OwnershipProof is the decoded form of a DNSSEC-style proof that a given
// record chain resolves to the commitment it embeds. Decoding here is
// purely structural; whether the chain actually verifies against a
// trusted DNSSEC root is answered by a Validator.
type OwnershipProof struct {
	Name       string
	Records    []DNSRecord
	Commitment Commitment
	PubKey     []byte
}

// DecodeOwnershipProof parses the positional wire encoding of a proof:
// name, a varint-counted record chain, the commitment fields, and the
// public key the chain's final signature must verify against.
func DecodeOwnershipProof(raw []byte) (*OwnershipProof, error) {
	r := bytes.NewReader(raw)

	nameBytes, err := wireutil.ReadVarBytes(r, 255, "claim proof name")
	if err != nil {
		return nil, fmt.Errorf("claim: reading name: %w", err)
	}

	count, err := wireutil.ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("claim: reading record count: %w", err)
	}
	if count > 64 {
		return nil, fmt.Errorf("claim: record chain too long (%d)", count)
	}

	records := make([]DNSRecord, count)
	for i := range records {
		typ, err := wireutil.ReadUint32(r)
		if err != nil {
			return nil, fmt.Errorf("claim: reading record %d type: %w", i, err)
		}
		recName, err := wireutil.ReadVarBytes(r, 255, "claim record name")
		if err != nil {
			return nil, fmt.Errorf("claim: reading record %d name: %w", i, err)
		}
		rdata, err := wireutil.ReadVarBytes(r, 8192, "claim record rdata")
		if err != nil {
			return nil, fmt.Errorf("claim: reading record %d rdata: %w", i, err)
		}
		sig, err := wireutil.ReadVarBytes(r, 128, "claim record signature")
		if err != nil {
			return nil, fmt.Errorf("claim: reading record %d signature: %w", i, err)
		}
		records[i] = DNSRecord{Type: uint16(typ), Name: string(recName), RDATA: rdata, Signature: sig}
	}

	address, err := wireutil.ReadVarBytes(r, 128, "claim commitment address")
	if err != nil {
		return nil, fmt.Errorf("claim: reading commitment address: %w", err)
	}
	fee, err := wireutil.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("claim: reading commitment fee: %w", err)
	}
	var commitHash chainhash.Hash
	if _, err := io.ReadFull(r, commitHash[:]); err != nil {
		return nil, fmt.Errorf("claim: reading commit hash: %w", err)
	}
	commitHeight, err := wireutil.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("claim: reading commit height: %w", err)
	}
	networkBytes, err := wireutil.ReadVarBytes(r, 32, "claim commitment network")
	if err != nil {
		return nil, fmt.Errorf("claim: reading commitment network: %w", err)
	}
	pubKey, err := wireutil.ReadVarBytes(r, 65, "claim public key")
	if err != nil {
		return nil, fmt.Errorf("claim: reading public key: %w", err)
	}

	return &OwnershipProof{
		Name:    string(nameBytes),
		Records: records,
		Commitment: Commitment{
			Address:      address,
			Fee:          fee,
			CommitHash:   commitHash,
			CommitHeight: commitHeight,
			Network:      string(networkBytes),
		},
		PubKey: pubKey,
	}, nil
}

// TerminalSignature returns the signature on the last record in the
// chain, the one whose signer must be the claim's public key.
func (p *OwnershipProof) TerminalSignature() []byte {
	if len(p.Records) == 0 {
		return nil
	}
	return p.Records[len(p.Records)-1].Signature
}

// Validator verifies the cryptography backing an ownership proof: that
// the record chain's terminal signature verifies against the embedded
// public key over the commitment bytes, and that the public key is
// authorized to speak for name (a DNSSEC chain-of-trust check out of
// scope for this package). It satisfies blockchain.ClaimValidator
// structurally.
type Validator struct {
	// Authorize authorizes a public key to claim name, checking the DNSSEC
	// chain of trust. Proof-of-origin cryptography beyond the terminal
	// signature is delegated here rather than re-derived in this package.
	Authorize func(name string, pubKey []byte) (bool, error)

	verified *lru.Cache
}

// cache lazily initializes the verified-proof cache so a zero-value
// Validator (the common case in tests and simple wiring) still works.
func (v *Validator) cache() *lru.Cache {
	if v.verified == nil {
		v.verified = lru.NewCache(verifiedCacheLimit)
	}
	return v.verified
}

// Validate implements blockchain.ClaimValidator. proof is the raw
// encoded OwnershipProof bytes the CLAIM covenant's witness carries out
// of band (the covenant itself only carries the commitment, not the
// proof); nameHash is cross-checked against the decoded name.
func (v *Validator) Validate(nameHash chainhash.Hash, proof []byte) (bool, error) {
	p, err := DecodeOwnershipProof(proof)
	if err != nil {
		return false, fmt.Errorf("bad-claim-proof: %w", err)
	}
	if chainhash.Sum([]byte(p.Name)) != nameHash {
		return false, fmt.Errorf("bad-claim-proof: name hash does not match proof")
	}

	digest := chainhash.Sum(proof)
	if v.cache().Contains(digest) {
		return true, nil
	}

	pubKey, err := secp256k1.ParsePubKey(p.PubKey)
	if err != nil {
		return false, fmt.Errorf("bad-claim-proof: parsing public key: %w", err)
	}
	sig, err := ecdsa.ParseDERSignature(p.TerminalSignature())
	if err != nil {
		return false, fmt.Errorf("bad-claim-proof: parsing signature: %w", err)
	}
	commitDigest := commitmentDigest(&p.Commitment)
	if !sig.Verify(commitDigest[:], pubKey) {
		return false, nil
	}

	if v.Authorize != nil {
		ok, err := v.Authorize(p.Name, p.PubKey)
		if err != nil || !ok {
			return ok, err
		}
	}

	v.cache().Add(digest)
	return true, nil
}

// commitmentDigest hashes the commitment fields the terminal signature
// covers, in the same order DecodeOwnershipProof reads them.
func commitmentDigest(c *Commitment) chainhash.Hash {
	var buf bytes.Buffer
	_ = wireutil.WriteVarBytes(&buf, c.Address)
	_ = wireutil.WriteUint64(&buf, c.Fee)
	buf.Write(c.CommitHash[:])
	_ = wireutil.WriteUint32(&buf, c.CommitHeight)
	_ = wireutil.WriteVarBytes(&buf, []byte(c.Network))
	return chainhash.Sum(buf.Bytes())
}
