// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package names

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hnsgo/hnsd/chaincfg"
	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/covenant"
	"github.com/hnsgo/hnsd/wire"
)

// memStore is a trivial in-memory names.Store for tests.
type memStore map[chainhash.Hash]*NameState

func (s memStore) GetName(hash chainhash.Hash) (*NameState, error) {
	return s[hash], nil
}

// memBitfield is a trivial in-memory names.Bitfield for tests.
type memBitfield map[uint32]bool

func (b memBitfield) Get(i uint32) bool { return b[i] }
func (b memBitfield) Set(i uint32) error {
	if b[i] {
		return errBitAlreadySet
	}
	b[i] = true
	return nil
}

type bitAlreadySetError struct{}

func (bitAlreadySetError) Error() string { return "bad-txns-bits-missingorspent: already set" }

var errBitAlreadySet = bitAlreadySetError{}

// stubChain is a names.ChainReader stand-in that always resolves
// TreeRootAt to a single fixed root, so tests can construct
// REGISTER/RENEW/FINALIZE covenants whose renewal_anchor_hash matches by
// construction.
type stubChain struct {
	root   chainhash.Hash
	hashes map[uint32]chainhash.Hash
}

func (c *stubChain) TreeRootAt(uint32) (chainhash.Hash, error) { return c.root, nil }
func (c *stubChain) HashAt(height uint32) (chainhash.Hash, error) {
	h, ok := c.hashes[height]
	if !ok {
		return chainhash.Hash{}, fmt.Errorf("no block at height %d", height)
	}
	return h, nil
}

func testContext(height uint32, chain *stubChain) *Context {
	params := chaincfg.RegressionNetParams
	return &Context{
		Height:   height,
		Params:   &params,
		Bitfield: memBitfield{},
		Chain:    chain,
	}
}

func outpointFor(label string) wire.OutPoint {
	return wire.OutPoint{Hash: chainhash.Sum([]byte(label)), Index: 0}
}

// TestVickreyAuctionCorrectness exercises Testable Property 4 and
// scenario A: of two reveals, the higher value wins ownership and the
// name's value settles at the second-highest (Vickrey) price; a tie
// preserves the earlier owner.
func TestVickreyAuctionCorrectness(t *testing.T) {
	chain := &stubChain{root: chainhash.Hash{}}
	store := memStore{}
	nameHash := chainhash.Sum([]byte("abcd"))

	view := NewView(store)
	openCtx := testContext(0, chain)
	openCov := (&covenant.OpenCovenant{NameHash: nameHash, Name: "abcd"}).ToCovenant()
	require.NoError(t, AcceptOpen(view, openCtx, openCov, outpointFor("open")))

	// Enter the reveal window.
	revealHeight := openCtx.Params.Names.TreeInterval + openCtx.Params.Names.BiddingPeriod
	revealCtx := testContext(revealHeight, chain)

	bidLow := &covenant.BidCovenant{NameHash: nameHash, Name: "abcd", Blind: chainhash.Sum([]byte("blind-low"))}
	bidHigh := &covenant.BidCovenant{NameHash: nameHash, Name: "abcd", Blind: chainhash.Sum([]byte("blind-high"))}

	revealLow := &covenant.RevealCovenant{NameHash: nameHash, Nonce: chainhash.Sum([]byte("nonce-low"))}
	revealHigh := &covenant.RevealCovenant{NameHash: nameHash, Nonce: chainhash.Sum([]byte("nonce-high"))}

	// Fix up the blinds to actually match H(value || nonce) for the
	// values each reveal will disclose, per the BID/REVEAL schema.
	bidLow.Blind = blindFor(t, 500, revealLow.Nonce)
	bidHigh.Blind = blindFor(t, 1000, revealHigh.Nonce)

	loserOutpoint := outpointFor("loser-reveal")
	require.NoError(t, AcceptReveal(view, revealCtx, revealLow.ToCovenant(), bidLow.ToCovenant(), 500))
	ApplyRevealOwner(view, nameHash, loserOutpoint, 500, true)

	winnerOutpoint := outpointFor("winner-reveal")
	require.NoError(t, AcceptReveal(view, revealCtx, revealHigh.ToCovenant(), bidHigh.ToCovenant(), 1000))
	ApplyRevealOwner(view, nameHash, winnerOutpoint, 1000, true)

	ns, err := view.Entry(nameHash)
	require.NoError(t, err)
	require.Equal(t, winnerOutpoint, ns.Owner)
	require.Equal(t, uint64(1000), ns.Highest)
	require.Equal(t, uint64(500), ns.Value)
}

// TestVickreyTieKeepsEarlierOwner checks that when a later reveal exactly
// matches the current leader's value, the earlier owner is kept (strict
// greater-than, not greater-or-equal).
func TestVickreyTieKeepsEarlierOwner(t *testing.T) {
	chain := &stubChain{root: chainhash.Hash{}}
	store := memStore{}
	nameHash := chainhash.Sum([]byte("tie"))

	view := NewView(store)
	openCtx := testContext(0, chain)
	openCov := (&covenant.OpenCovenant{NameHash: nameHash, Name: "tie"}).ToCovenant()
	require.NoError(t, AcceptOpen(view, openCtx, openCov, outpointFor("open")))

	revealHeight := openCtx.Params.Names.TreeInterval + openCtx.Params.Names.BiddingPeriod
	revealCtx := testContext(revealHeight, chain)

	firstNonce := chainhash.Sum([]byte("nonce-a"))
	secondNonce := chainhash.Sum([]byte("nonce-b"))
	firstBid := &covenant.BidCovenant{NameHash: nameHash, Name: "tie", Blind: blindFor(t, 700, firstNonce)}
	secondBid := &covenant.BidCovenant{NameHash: nameHash, Name: "tie", Blind: blindFor(t, 700, secondNonce)}

	firstOutpoint := outpointFor("first")
	require.NoError(t, AcceptReveal(view, revealCtx, (&covenant.RevealCovenant{NameHash: nameHash, Nonce: firstNonce}).ToCovenant(), firstBid.ToCovenant(), 700))
	ApplyRevealOwner(view, nameHash, firstOutpoint, 700, true)

	secondOutpoint := outpointFor("second")
	require.NoError(t, AcceptReveal(view, revealCtx, (&covenant.RevealCovenant{NameHash: nameHash, Nonce: secondNonce}).ToCovenant(), secondBid.ToCovenant(), 700))
	ApplyRevealOwner(view, nameHash, secondOutpoint, 700, false)

	ns, err := view.Entry(nameHash)
	require.NoError(t, err)
	require.Equal(t, firstOutpoint, ns.Owner)
	require.Equal(t, uint64(700), ns.Highest)
	require.Equal(t, uint64(700), ns.Value)
}

// TestRegisterRejectsStaleAnchor exercises Testable Property 7: a
// REGISTER whose renewal_anchor_hash does not match the committed root at
// height - 2*tree_interval is rejected with invalid-covenant.
func TestRegisterRejectsStaleAnchor(t *testing.T) {
	chain := &stubChain{root: chainhash.Sum([]byte("real-root"))}
	store := memStore{}
	nameHash := chainhash.Sum([]byte("example"))

	view := NewView(store)
	view.Stage(nameHash, &NameState{
		NameHash: nameHash,
		Name:     "example",
		Height:   0,
	})

	params := chaincfg.RegressionNetParams
	closedHeight := params.Names.TreeInterval + params.Names.BiddingPeriod + params.Names.RevealPeriod + 1
	ctx := testContext(closedHeight, chain)

	reg := &covenant.RegisterCovenant{
		NameHash:          nameHash,
		Resource:          []byte("data"),
		RenewalAnchorHash: chainhash.Sum([]byte("wrong-root")),
	}
	err := AcceptRegister(view, ctx, reg.ToCovenant(), outpointFor("register"), 1000)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid-covenant")
}

// TestMaybeExpireResetsUnrenewedName checks the maybe-expire probe: a
// registered name untouched past its renewal window reverts to null.
func TestMaybeExpireResetsUnrenewedName(t *testing.T) {
	chain := &stubChain{root: chainhash.Hash{}}
	nameHash := chainhash.Sum([]byte("stale"))
	store := memStore{
		nameHash: {NameHash: nameHash, Name: "stale", Height: 10, Renewal: 10, Registered: true},
	}

	params := chaincfg.RegressionNetParams
	view := NewView(store)
	ctx := testContext(10+params.Names.RenewalWindow+1, chain)

	require.NoError(t, MaybeExpire(view, ctx, nameHash))
	ns, err := view.Entry(nameHash)
	require.NoError(t, err)
	require.True(t, ns.IsNull())
}

// TestClaimReplayRejected exercises scenario B: a CLAIM cannot be mined
// twice for the same reservation slot. The first acceptance sets the
// bitfield bit; a second attempt against the same view and bitfield is
// rejected with bad-txns-bits-missingorspent.
func TestClaimReplayRejected(t *testing.T) {
	chain := &stubChain{root: chainhash.Hash{}, hashes: map[uint32]chainhash.Hash{
		10: chainhash.Sum([]byte("commit-block-10")),
	}}
	store := memStore{}
	view := NewView(store)
	ctx := testContext(0, chain)

	claimCov := &covenant.ClaimCovenant{
		NameHash:     chainhash.Sum([]byte("google")),
		Name:         "google",
		CommitHash:   chainhash.Sum([]byte("commit-block-10")),
		CommitHeight: 10,
	}

	require.NoError(t, AcceptClaim(view, ctx, claimCov.ToCovenant(), outpointFor("claim-1"), 64, true))

	err := AcceptClaim(view, ctx, claimCov.ToCovenant(), outpointFor("claim-2"), 64, true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad-txns-bits-missingorspent")
}

func blindFor(t *testing.T, value uint64, nonce chainhash.Hash) chainhash.Hash {
	t.Helper()
	preimage := make([]byte, 8+chainhash.HashSize)
	for i := 0; i < 8; i++ {
		preimage[i] = byte(value >> (56 - 8*i))
	}
	copy(preimage[8:], nonce[:])
	return chainhash.Sum(preimage)
}
