// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package names

import (
	"encoding/binary"
	"fmt"

	"github.com/hnsgo/hnsd/chaincfg"
	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/covenant"
	"github.com/hnsgo/hnsd/wire"
)

// Bitfield is the capability the auction state machine needs from the
// one-shot coinbase bitmap: test and set a single reservation slot. The
// concrete bitmap implementation lives in the bitfield package.
type Bitfield interface {
	Get(i uint32) bool
	Set(i uint32) error
}

// ChainReader is the capability the auction state machine needs from the
// block connector to validate renewal anchors and claim commitments
// without depending on the blockchain package directly.
type ChainReader interface {
	// TreeRootAt returns the authenticated name-tree root committed by
	// the most recent interval-boundary block at or before height.
	TreeRootAt(height uint32) (chainhash.Hash, error)

	// HashAt returns the block hash of the main-chain block at height.
	HashAt(height uint32) (chainhash.Hash, error)
}

// Context bundles everything accept needs beyond the view itself: the
// current height, network parameters, the bitfield, a chain reader for
// anchor/commitment checks, and the current ICANN-lockup deployment
// state.
type Context struct {
	Height            uint32
	Params            *chaincfg.Params
	Bitfield          Bitfield
	Chain             ChainReader
	ICANNLockupActive bool
	// ICANNActivationHeight is the height at which the ICANN-lockup
	// deployment became ACTIVE, or 0 if it has not. Needed to compute the
	// Alexa lockup window, which runs from activation rather than from
	// genesis.
	ICANNActivationHeight uint32
}

// BitIndex deterministically maps a name hash to its slot in the one-shot
// claim bitfield. The reservation space is fixed per network, so the
// index is the name hash's first four bytes, read big-endian, reduced into
// that range.
func BitIndex(hash chainhash.Hash, bitfieldSize uint32) uint32 {
	return binary.BigEndian.Uint32(hash[:4]) % bitfieldSize
}

// renewalAnchorHeight returns the height whose committed tree root a
// REGISTER/RENEW/FINALIZE at height must reference, clamped to genesis.
func renewalAnchorHeight(height uint32, treeInterval uint32) uint32 {
	anchor := int64(height) - 2*int64(treeInterval)
	if anchor < 0 {
		return 0
	}
	return uint32(anchor)
}

func checkAnchor(ctx *Context, claimed chainhash.Hash) error {
	wantHeight := renewalAnchorHeight(ctx.Height, ctx.Params.Names.TreeInterval)
	want, err := ctx.Chain.TreeRootAt(wantHeight)
	if err != nil {
		return fmt.Errorf("names: resolving renewal anchor: %w", err)
	}
	if want != claimed {
		return errInvalidCovenant("renewal anchor does not match name tree root at height %d", wantHeight)
	}
	return nil
}

func errInvalidCovenant(format string, args ...interface{}) error {
	return fmt.Errorf("invalid-covenant: "+format, args...)
}

// AcceptOpen validates and applies an OPEN covenant.
func AcceptOpen(view *View, ctx *Context, c *covenant.Covenant, outpoint wire.OutPoint) error {
	open, err := covenant.DecodeOpen(c)
	if err != nil {
		return errInvalidCovenant("%v", err)
	}
	if !IsValidName(open.Name) {
		return errInvalidCovenant("OPEN name %q is not valid", open.Name)
	}

	lockedUp := ctx.ICANNLockupActive &&
		ctx.Params.Names.IsLockedUp(open.Name, ctx.ICANNActivationHeight, ctx.Height)
	if lockedUp {
		return errInvalidCovenant("name %q is locked up", open.Name)
	}

	ns, err := view.Entry(open.NameHash)
	if err != nil {
		return err
	}
	if !ns.IsNull() && !ns.IsExpired(ctx.Height, &ctx.Params.Names) {
		return errInvalidCovenant("name %q already has an active auction", open.Name)
	}

	view.Stage(open.NameHash, &NameState{
		NameHash: open.NameHash,
		Name:     open.Name,
		Height:   ctx.Height,
		Owner:    outpoint,
	})
	return nil
}

// AcceptBid validates a BID covenant. Per the edge rule, a BID for a name
// with no prior OPEN is still admissible; it simply cannot ever reveal
// successfully unless an OPEN lands in the same or an earlier block.
func AcceptBid(view *View, ctx *Context, c *covenant.Covenant) error {
	bid, err := covenant.DecodeBid(c)
	if err != nil {
		return errInvalidCovenant("%v", err)
	}

	ns, err := view.Entry(bid.NameHash)
	if err != nil {
		return err
	}
	if ns.IsNull() {
		return nil
	}
	state := ns.State(ctx.Height, &ctx.Params.Names)
	if state != StateBidding && state != StateOpening {
		return errInvalidCovenant("BID for %q outside bidding window (state %s)", bid.Name, state)
	}
	return nil
}

// AcceptReveal validates and applies a REVEAL covenant. spentBid is the
// BID covenant carried by the input this REVEAL spends.
func AcceptReveal(view *View, ctx *Context, c *covenant.Covenant, spentBid *covenant.Covenant, outputValue uint64) error {
	reveal, err := covenant.DecodeReveal(c)
	if err != nil {
		return errInvalidCovenant("%v", err)
	}
	bid, err := covenant.DecodeBid(spentBid)
	if err != nil {
		return errInvalidCovenant("REVEAL does not spend a BID output: %v", err)
	}
	if bid.NameHash != reveal.NameHash {
		return errInvalidCovenant("REVEAL name hash does not match spent BID")
	}

	preimage := make([]byte, 8+chainhash.HashSize)
	binary.BigEndian.PutUint64(preimage, outputValue)
	copy(preimage[8:], reveal.Nonce[:])
	if chainhash.Sum(preimage) != bid.Blind {
		return errInvalidCovenant("REVEAL blind does not match H(value || nonce)")
	}

	ns, err := view.Entry(reveal.NameHash)
	if err != nil {
		return err
	}
	if ns.IsNull() || ns.State(ctx.Height, &ctx.Params.Names) != StateReveal {
		return errInvalidCovenant("REVEAL for %s outside reveal window", reveal.NameHash)
	}

	staged := ns.Clone()
	switch {
	case staged.Owner == (wire.OutPoint{}) || outputValue > staged.Highest:
		staged.Value = staged.Highest
		staged.Owner = wire.OutPoint{} // set below once caller supplies outpoint
		staged.Highest = outputValue
	case outputValue > staged.Value:
		staged.Value = outputValue
	}
	view.Stage(reveal.NameHash, staged)
	return nil
}

// ApplyRevealOwner finalizes the winning outpoint for a REVEAL once the
// caller knows it, since AcceptReveal alone cannot distinguish "first ever
// reveal" from "new leader" without the final owner in hand. Call
// immediately after AcceptReveal returns nil and only when it changed the
// leader (output value was the new high).
func ApplyRevealOwner(view *View, nameHash chainhash.Hash, outpoint wire.OutPoint, outputValue uint64, wasNewLeader bool) {
	if !wasNewLeader {
		return
	}
	ns, _ := view.Entry(nameHash)
	if ns == nil {
		return
	}
	staged := ns.Clone()
	staged.Owner = outpoint
	view.Stage(nameHash, staged)
}

// AcceptRedeem validates a REDEEM covenant. spentReveal is the REVEAL
// covenant carried by the input being redeemed.
func AcceptRedeem(view *View, ctx *Context, c *covenant.Covenant, spentReveal *covenant.Covenant, spentOutpoint wire.OutPoint) error {
	redeem, err := covenant.DecodeRedeem(c)
	if err != nil {
		return errInvalidCovenant("%v", err)
	}
	reveal, err := covenant.DecodeReveal(spentReveal)
	if err != nil {
		return errInvalidCovenant("REDEEM does not spend a REVEAL output: %v", err)
	}
	if reveal.NameHash != redeem.NameHash {
		return errInvalidCovenant("REDEEM name hash does not match spent REVEAL")
	}

	ns, err := view.Entry(redeem.NameHash)
	if err != nil {
		return err
	}
	if ns.IsNull() || ns.State(ctx.Height, &ctx.Params.Names) != StateClosed {
		return errInvalidCovenant("REDEEM for %s outside closed window", redeem.NameHash)
	}
	if ns.Owner == spentOutpoint {
		return errInvalidCovenant("REDEEM cannot spend the winning REVEAL")
	}
	return nil
}

// AcceptRegister validates and applies a REGISTER covenant. It does not
// check which coin is spent or its maturity.
func AcceptRegister(view *View, ctx *Context, c *covenant.Covenant, outpoint wire.OutPoint, outputValue uint64) error {
	reg, err := covenant.DecodeRegister(c)
	if err != nil {
		return errInvalidCovenant("%v", err)
	}

	ns, err := view.Entry(reg.NameHash)
	if err != nil {
		return err
	}
	if ns.IsNull() || ns.State(ctx.Height, &ctx.Params.Names) != StateClosed {
		return errInvalidCovenant("REGISTER for %s outside closed window", reg.NameHash)
	}
	if err := checkAnchor(ctx, reg.RenewalAnchorHash); err != nil {
		return err
	}

	staged := ns.Clone()
	staged.Registered = true
	staged.Owner = outpoint
	staged.Renewal = ctx.Height
	staged.Value = outputValue
	staged.Data = reg.Resource
	view.Stage(reg.NameHash, staged)
	return nil
}

// AcceptUpdate validates and applies an UPDATE covenant.
func AcceptUpdate(view *View, ctx *Context, c *covenant.Covenant, outpoint wire.OutPoint, spentOutpoint wire.OutPoint) error {
	upd, err := covenant.DecodeUpdate(c)
	if err != nil {
		return errInvalidCovenant("%v", err)
	}

	ns, err := view.Entry(upd.NameHash)
	if err != nil {
		return err
	}
	if ns.IsNull() || !ns.Registered {
		return errInvalidCovenant("UPDATE for unregistered name %s", upd.NameHash)
	}
	if ns.Transfer != 0 {
		return errInvalidCovenant("UPDATE while TRANSFER is pending for %s", upd.NameHash)
	}
	if ns.Owner != spentOutpoint {
		return errInvalidCovenant("UPDATE does not spend the current owner coin")
	}

	staged := ns.Clone()
	staged.Owner = outpoint
	if len(upd.Resource) > 0 {
		staged.Data = upd.Resource
	}
	view.Stage(upd.NameHash, staged)
	return nil
}

// AcceptRenew validates and applies a RENEW covenant.
func AcceptRenew(view *View, ctx *Context, c *covenant.Covenant, outpoint wire.OutPoint, spentOutpoint wire.OutPoint) error {
	ren, err := covenant.DecodeRenew(c)
	if err != nil {
		return errInvalidCovenant("%v", err)
	}

	ns, err := view.Entry(ren.NameHash)
	if err != nil {
		return err
	}
	if ns.IsNull() || !ns.Registered {
		return errInvalidCovenant("RENEW for unregistered name %s", ren.NameHash)
	}
	if ns.Transfer != 0 {
		return errInvalidCovenant("RENEW while TRANSFER is pending for %s", ren.NameHash)
	}
	if ns.Owner != spentOutpoint {
		return errInvalidCovenant("RENEW does not spend the current owner coin")
	}
	if ctx.Height < ns.Renewal+ctx.Params.Names.TreeInterval {
		return errInvalidCovenant("RENEW too soon after last renewal for %s", ren.NameHash)
	}
	if err := checkAnchor(ctx, ren.RenewalAnchorHash); err != nil {
		return err
	}

	staged := ns.Clone()
	staged.Renewal = ctx.Height
	staged.Renewals++
	staged.Owner = outpoint
	view.Stage(ren.NameHash, staged)
	return nil
}

// AcceptTransfer validates and applies a TRANSFER covenant. The target
// address is carried in the covenant itself, not in NameState; the
// FINALIZE output is expected to pay it.
func AcceptTransfer(view *View, ctx *Context, c *covenant.Covenant, spentOutpoint wire.OutPoint) error {
	tr, err := covenant.DecodeTransfer(c)
	if err != nil {
		return errInvalidCovenant("%v", err)
	}

	ns, err := view.Entry(tr.NameHash)
	if err != nil {
		return err
	}
	if ns.IsNull() || !ns.Registered {
		return errInvalidCovenant("TRANSFER for unregistered name %s", tr.NameHash)
	}
	if ns.Transfer != 0 {
		return errInvalidCovenant("TRANSFER already pending for %s", tr.NameHash)
	}
	if ns.Owner != spentOutpoint {
		return errInvalidCovenant("TRANSFER does not spend the current owner coin")
	}

	staged := ns.Clone()
	staged.Transfer = ctx.Height
	view.Stage(tr.NameHash, staged)
	return nil
}

// AcceptFinalize validates and applies a FINALIZE covenant. Its embedded
// fields are a tamper check: they must equal the NameState fields they
// claim to describe.
func AcceptFinalize(view *View, ctx *Context, c *covenant.Covenant, outpoint wire.OutPoint) error {
	fin, err := covenant.DecodeFinalize(c)
	if err != nil {
		return errInvalidCovenant("%v", err)
	}

	ns, err := view.Entry(fin.NameHash)
	if err != nil {
		return err
	}
	if ns.IsNull() || ns.Transfer == 0 {
		return errInvalidCovenant("FINALIZE for %s with no pending TRANSFER", fin.NameHash)
	}
	if ctx.Height < ns.Transfer+ctx.Params.Names.TransferLockup {
		return errInvalidCovenant("FINALIZE before transfer lockup elapsed for %s", fin.NameHash)
	}
	if fin.Name != ns.Name || fin.Claimed != ns.Claimed || fin.Renewals != ns.Renewals {
		return errInvalidCovenant("FINALIZE tamper check failed for %s", fin.NameHash)
	}
	if err := checkAnchor(ctx, fin.RenewalAnchorHash); err != nil {
		return err
	}

	staged := ns.Clone()
	staged.Transfer = 0
	staged.Owner = outpoint
	staged.Renewal = ctx.Height
	staged.Renewals++
	view.Stage(fin.NameHash, staged)
	return nil
}

// AcceptRevoke validates and applies a REVOKE covenant.
func AcceptRevoke(view *View, ctx *Context, c *covenant.Covenant, spentOutpoint wire.OutPoint) error {
	rev, err := covenant.DecodeRevoke(c)
	if err != nil {
		return errInvalidCovenant("%v", err)
	}

	ns, err := view.Entry(rev.NameHash)
	if err != nil {
		return err
	}
	if ns.IsNull() {
		return errInvalidCovenant("REVOKE for unknown name %s", rev.NameHash)
	}
	if ns.Owner != spentOutpoint {
		return errInvalidCovenant("REVOKE does not spend the current owner coin")
	}

	staged := ns.Clone()
	staged.Revoked = ctx.Height
	staged.Data = nil
	view.Stage(rev.NameHash, staged)
	return nil
}

// AcceptClaim validates and applies a CLAIM covenant. proofOK is the
// external ownership-proof validator's verdict, already checked by the
// claim pipeline (package claim) before this is called; AcceptClaim only
// enforces the consensus-level constraints around it.
func AcceptClaim(view *View, ctx *Context, c *covenant.Covenant, outpoint wire.OutPoint, bitfieldSize uint32, proofOK bool) error {
	cl, err := covenant.DecodeClaim(c)
	if err != nil {
		return errInvalidCovenant("%v", err)
	}
	if !proofOK {
		return errInvalidCovenant("bad-claim-proof: ownership proof for %q did not verify", cl.Name)
	}
	if !chaincfg.IsReserved(cl.Name) && !chaincfg.IsAlexaLockup(cl.Name) {
		return errInvalidCovenant("bad-claim-not-reserved: %q is not a reserved name", cl.Name)
	}
	if ctx.Height >= ctx.Params.Names.ClaimPeriod {
		return errInvalidCovenant("bad-claim-expired: claim period has elapsed")
	}

	idx := BitIndex(cl.NameHash, bitfieldSize)
	if ctx.Bitfield.Get(idx) {
		return fmt.Errorf("bad-txns-bits-missingorspent: bit %d already set for %s", idx, cl.NameHash)
	}

	commitHash, err := ctx.Chain.HashAt(cl.CommitHeight)
	if err != nil {
		return fmt.Errorf("bad-claim-commitment: resolving commit height %d: %w", cl.CommitHeight, err)
	}
	if commitHash != cl.CommitHash {
		return errInvalidCovenant("bad-claim-commitment: commit hash does not match chain at height %d", cl.CommitHeight)
	}

	if err := ctx.Bitfield.Set(idx); err != nil {
		return err
	}

	view.Stage(cl.NameHash, &NameState{
		NameHash: cl.NameHash,
		Name:     cl.Name,
		Height:   ctx.Height,
		Claimed:  cl.Claimed + 1,
		Weak:     cl.WeakClaim(),
		Owner:    outpoint,
	})
	return nil
}

// MaybeExpire applies the maybe-expire probe for a single name: if its
// state is non-null and has passed its renewal window unrenewed, it is
// staged as deleted (reset to null). Called at the top of block
// processing for every name touched by the block, per the spec's
// maybe-expire rule.
func MaybeExpire(view *View, ctx *Context, hash chainhash.Hash) error {
	ns, err := view.Entry(hash)
	if err != nil {
		return err
	}
	if ns.IsExpired(ctx.Height, &ctx.Params.Names) {
		view.Stage(hash, nil)
	}
	return nil
}
