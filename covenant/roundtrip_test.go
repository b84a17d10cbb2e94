// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package covenant

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
)

func genHash(t *rapid.T, label string) chainhash.Hash {
	var h chainhash.Hash
	copy(h[:], rapid.SliceOfN(rapid.Byte(), chainhash.HashSize, chainhash.HashSize).Draw(t, label))
	return h
}

// TestCovenantWireRoundTrip checks Testable Property 1 for the generic
// wire codec: decode(encode(x)) == x for a covenant of any of the defined
// kinds, built from an item list matching that kind's positional schema.
func TestCovenantWireRoundTrip(t *testing.T) {
	kinds := []Kind{Open, Bid, Reveal, Redeem, Register, Update, Renew, Transfer, Finalize, Revoke, Claim, Data}

	rapid.Check(t, func(t *rapid.T) {
		kind := kinds[rapid.IntRange(0, len(kinds)-1).Draw(t, "kind")]
		count := itemCounts[kind]
		items := make([][]byte, count)
		for i := range items {
			n := rapid.IntRange(0, 64).Draw(t, "itemLen")
			items[i] = rapid.SliceOfN(rapid.Byte(), n, n).Draw(t, "item")
		}
		c := &Covenant{Kind: kind, Items: items}

		var buf bytes.Buffer
		require.NoError(t, c.Encode(&buf))

		decoded, err := Decode(&buf)
		require.NoError(t, err)
		require.Equal(t, c.Kind, decoded.Kind)
		require.Equal(t, len(c.Items), len(decoded.Items))
		for i := range c.Items {
			require.True(t, bytes.Equal(c.Items[i], decoded.Items[i]), "item %d mismatch", i)
		}
	})
}

// TestOpenCovenantTypedRoundTrip checks the typed OPEN view round-trips
// through ToCovenant/DecodeOpen for arbitrary field values.
func TestOpenCovenantTypedRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := &OpenCovenant{
			NameHash:    genHash(t, "nameHash"),
			StartHeight: rapid.Uint32().Draw(t, "startHeight"),
			Name:        rapid.StringN(0, 63, -1).Draw(t, "name"),
		}
		decoded, err := DecodeOpen(c.ToCovenant())
		require.NoError(t, err)
		require.Equal(t, c, decoded)
	})
}

// TestBidCovenantTypedRoundTrip checks the typed BID view round-trips.
func TestBidCovenantTypedRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := &BidCovenant{
			NameHash:    genHash(t, "nameHash"),
			StartHeight: rapid.Uint32().Draw(t, "startHeight"),
			Name:        rapid.StringN(0, 63, -1).Draw(t, "name"),
			Blind:       genHash(t, "blind"),
		}
		decoded, err := DecodeBid(c.ToCovenant())
		require.NoError(t, err)
		require.Equal(t, c, decoded)
	})
}

// TestClaimCovenantTypedRoundTrip checks the typed CLAIM view round-trips,
// including its Flags byte and commitment fields.
func TestClaimCovenantTypedRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := &ClaimCovenant{
			NameHash:     genHash(t, "nameHash"),
			StartHeight:  rapid.Uint32().Draw(t, "startHeight"),
			Name:         rapid.StringN(0, 63, -1).Draw(t, "name"),
			Flags:        rapid.Uint8().Draw(t, "flags"),
			CommitHash:   genHash(t, "commitHash"),
			CommitHeight: rapid.Uint32().Draw(t, "commitHeight"),
			Claimed:      rapid.Uint32().Draw(t, "claimed"),
		}
		decoded, err := DecodeClaim(c.ToCovenant())
		require.NoError(t, err)
		require.Equal(t, c, decoded)
	})
}

// TestDecodeRejectsUnknownKind checks that an unrecognized covenant kind
// byte is a decode error, per the covenant codec's component design.
func TestDecodeRejectsUnknownKind(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0xfe)
	buf.WriteByte(0x00) // item count varint
	_, err := Decode(&buf)
	require.Error(t, err)
}
