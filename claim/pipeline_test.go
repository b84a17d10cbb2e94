// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package claim

import (
	"bytes"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/require"

	"github.com/hnsgo/hnsd/chaincfg"
	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/wire/wireutil"
)

type stubChain struct {
	hashes map[uint32]chainhash.Hash
}

func (s *stubChain) HashAt(height uint32) (chainhash.Hash, error) {
	h, ok := s.hashes[height]
	if !ok {
		return chainhash.Hash{}, errNoSuchHeight
	}
	return h, nil
}

var errNoSuchHeight = errUnknownHeight{}

type errUnknownHeight struct{}

func (errUnknownHeight) Error() string { return "no such height" }

func encodeProof(t *testing.T, priv *secp256k1.PrivateKey, name string, commit Commitment) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, wireutil.WriteVarBytes(&buf, []byte(name)))
	require.NoError(t, wireutil.WriteVarInt(&buf, 1))

	require.NoError(t, wireutil.WriteUint32(&buf, 16))
	require.NoError(t, wireutil.WriteVarBytes(&buf, []byte(name)))
	require.NoError(t, wireutil.WriteVarBytes(&buf, []byte("commitment rdata")))

	digest := commitmentDigest(&commit)
	sig := ecdsa.Sign(priv, digest[:])
	require.NoError(t, wireutil.WriteVarBytes(&buf, sig.Serialize()))

	require.NoError(t, wireutil.WriteVarBytes(&buf, commit.Address))
	require.NoError(t, wireutil.WriteUint64(&buf, commit.Fee))
	buf.Write(commit.CommitHash[:])
	require.NoError(t, wireutil.WriteUint32(&buf, commit.CommitHeight))
	require.NoError(t, wireutil.WriteVarBytes(&buf, []byte(commit.Network)))
	require.NoError(t, wireutil.WriteVarBytes(&buf, priv.PubKey().SerializeCompressed()))

	return buf.Bytes()
}

func TestDecodeOwnershipProofRoundTrip(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	commit := Commitment{
		Address:      []byte{1, 2, 3, 4},
		Fee:          500,
		CommitHash:   chainhash.Sum([]byte("block-100")),
		CommitHeight: 100,
		Network:      "main",
	}
	raw := encodeProof(t, priv, "google", commit)

	proof, err := DecodeOwnershipProof(raw)
	require.NoError(t, err)
	require.Equal(t, "google", proof.Name)
	require.Equal(t, commit.CommitHash, proof.Commitment.CommitHash)
	require.Equal(t, commit.Fee, proof.Commitment.Fee)
	require.Len(t, proof.Records, 1)
}

func TestValidatorValidateAcceptsGenuineProof(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	commit := Commitment{
		Address:      []byte{9, 9, 9},
		Fee:          10,
		CommitHash:   chainhash.Sum([]byte("block-42")),
		CommitHeight: 42,
		Network:      "main",
	}
	raw := encodeProof(t, priv, "apple", commit)
	nameHash := chainhash.Sum([]byte("apple"))

	v := &Validator{}
	ok, err := v.Validate(nameHash, raw)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestValidatorValidateRejectsWrongName(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	commit := Commitment{CommitHash: chainhash.Sum([]byte("b")), CommitHeight: 1}
	raw := encodeProof(t, priv, "apple", commit)

	v := &Validator{}
	_, err = v.Validate(chainhash.Sum([]byte("not-apple")), raw)
	require.Error(t, err)
}

func TestPipelineProcessRejectsStaleCommitment(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	blockHash := chainhash.Sum([]byte("real-block-100"))
	commit := Commitment{
		Address:      []byte{1},
		Fee:          1000,
		CommitHash:   chainhash.Sum([]byte("forged-block-100")),
		CommitHeight: 100,
		Network:      "main",
	}
	raw := encodeProof(t, priv, "google", commit)

	p := &Pipeline{
		Chain:  &stubChain{hashes: map[uint32]chainhash.Hash{100: blockHash}},
		Params: &chaincfg.MainNetParams,
	}
	_, err = p.Process(raw, 200, 1)
	require.Error(t, err)
}

func TestPipelineProcessEmitsClaimOutput(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	blockHash := chainhash.Sum([]byte("block-100"))
	commit := Commitment{
		Address:      []byte{1},
		Fee:          1000,
		CommitHash:   blockHash,
		CommitHeight: 100,
		Network:      "main",
	}
	raw := encodeProof(t, priv, "google", commit)

	p := &Pipeline{
		Chain:  &stubChain{hashes: map[uint32]chainhash.Hash{100: blockHash}},
		Params: &chaincfg.MainNetParams,
	}
	out, err := p.Process(raw, 200, 1)
	require.NoError(t, err)
	require.Equal(t, int64(ReservedValue["google"]-1000), out.Value)
}

func TestPipelineProcessRejectsNonReservedName(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	blockHash := chainhash.Sum([]byte("block-1"))
	commit := Commitment{CommitHash: blockHash, CommitHeight: 1}
	raw := encodeProof(t, priv, "not-a-reserved-name", commit)

	p := &Pipeline{
		Chain:  &stubChain{hashes: map[uint32]chainhash.Hash{1: blockHash}},
		Params: &chaincfg.MainNetParams,
	}
	_, err = p.Process(raw, 10, 1)
	require.Error(t, err)
}
