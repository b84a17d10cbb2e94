// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/hnsgo/hnsd/chaincfg"
	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/covenant"
	"github.com/hnsgo/hnsd/names"
	"github.com/hnsgo/hnsd/wire"
)

// ConnectBlock validates block against the current best chain tip and, if
// it is valid, extends the chain with it. It implements the connect steps
// described in the component design: deployment-state refresh, per-
// transaction covenant acceptance against a fresh NameView, the coinbase
// bitfield check, the interval-boundary tree commit, and the bitfield
// commitment check, all applied atomically (connect either fully commits
// or leaves the prior state untouched).
func (b *BlockChain) ConnectBlock(block *wire.MsgBlock) error {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	parent := b.bestChain.Tip()
	if block.Header.PrevBlock != parent.hash {
		return ruleError(ErrVerify, ReasonScriptVerifyFailed, "block does not extend the current tip")
	}
	height := uint32(parent.height + 1)

	writer, ok := b.nameStore.(nameStoreWriter)
	if !ok {
		return fmt.Errorf("blockchain: configured NameStore does not support writes")
	}

	icannActive, icannSince, err := b.icannLockupState(parent)
	if err != nil {
		return err
	}

	view := names.NewView(b.nameStore)
	ctx := &names.Context{
		Height:                height,
		Params:                b.chainParams,
		Bitfield:              b.bits,
		Chain:                 b,
		ICANNLockupActive:     icannActive,
		ICANNActivationHeight: icannSince,
	}

	touched := make(map[chainhash.Hash]struct{})
	for _, tx := range block.Transactions {
		for _, txOut := range tx.TxOut {
			if nh, err := coventantNameHash(&txOut.Covenant); err == nil {
				touched[nh] = struct{}{}
			}
		}
	}
	for hash := range touched {
		if err := names.MaybeExpire(view, ctx, hash); err != nil {
			return err
		}
	}

	for txIdx, tx := range block.Transactions {
		isCoinbase := txIdx == 0

		for outIdx, txOut := range tx.TxOut {
			outpoint := wire.OutPoint{Hash: tx.TxHash(), Index: uint32(outIdx)}
			if err := b.acceptOutput(view, ctx, txOut, outpoint, tx, isCoinbase); err != nil {
				b.bits.Rollback()
				return err
			}
		}
	}

	undo, err := names.NewUndo(view, b.nameStore.GetName)
	if err != nil {
		b.bits.Rollback()
		return fmt.Errorf("blockchain: building undo: %w", err)
	}

	// Every block's changes are folded into the tree immediately, not just
	// a boundary block's: the tree batch accumulates across the whole
	// interval window and is only asserted against the header (and
	// persisted) once the window closes. A snapshot lets a validation
	// failure below undo exactly this block's insertions.
	treeSnapshot := b.tree.Snapshot()
	for hash, ns := range view.Entries() {
		if ns == nil {
			b.tree.Remove(hash)
			continue
		}
		b.tree.Insert(hash, chainhash.Sum(ns.Bytes()))
	}

	interval := b.chainParams.Names.TreeInterval
	if interval != 0 && height%interval == 0 {
		root := b.tree.Root()
		if root != block.Header.NameRoot {
			b.tree.Rollback(treeSnapshot)
			b.bits.Rollback()
			return ruleError(ErrVerify, ReasonInvalidCovenant, "name-tree root mismatch at interval boundary")
		}
		if b.rootStore != nil {
			if err := b.rootStore.PutTreeRoot(height, root); err != nil {
				b.tree.Rollback(treeSnapshot)
				b.bits.Rollback()
				return err
			}
		}
	}

	if bitsHash := b.bits.Hash(); bitsHash != block.Header.BitfieldCommitment {
		b.tree.Rollback(treeSnapshot)
		b.bits.Rollback()
		return ruleError(ErrVerify, ReasonBitsMissingOrSpent, "bitfield commitment mismatch")
	}
	if b.undoStore != nil {
		if err := b.undoStore.PutUndo(block.Header.BlockHash(), undo, b.bits.DeltaForBlock()); err != nil {
			b.tree.Rollback(treeSnapshot)
			b.bits.Rollback()
			return err
		}
	}
	b.bits.Commit()

	for hash, ns := range view.Entries() {
		if err := writer.PutName(hash, ns); err != nil {
			return fmt.Errorf("blockchain: persisting name %s: %w", hash, err)
		}
	}

	node := newBlockNode(&block.Header, parent)
	node.status = statusDataStored | statusValid
	b.index.AddNode(node)
	b.bestChain.setTip(node)

	if err := b.warnUnknownRuleActivations(node); err != nil {
		return err
	}

	b.sendNotification(Notification{Type: NTBlockConnected, Block: block})
	return nil
}

// acceptOutput dispatches a single output's covenant to the matching
// acceptance predicate, resolving its spent input's covenant through the
// coin view where the kind requires chaining from a prior covenant.
func (b *BlockChain) acceptOutput(view *names.View, ctx *names.Context, txOut *wire.TxOut, outpoint wire.OutPoint, tx *wire.MsgTx, isCoinbase bool) error {
	c := &txOut.Covenant
	switch c.Kind {
	case covenant.None, covenant.Data:
		return nil

	case covenant.Open:
		return names.AcceptOpen(view, ctx, c, outpoint)

	case covenant.Bid:
		return names.AcceptBid(view, ctx, c)

	case covenant.Reveal:
		spentCov, spentValue, err := b.spentCovenant(tx, outpoint)
		if err != nil {
			return err
		}
		_ = spentValue
		if err := names.AcceptReveal(view, ctx, c, spentCov, uint64(txOut.Value)); err != nil {
			return err
		}
		reveal, err := covenant.DecodeReveal(c)
		if err != nil {
			return err
		}
		ns, err := view.Entry(reveal.NameHash)
		if err == nil && ns != nil && ns.Owner == (wire.OutPoint{}) {
			names.ApplyRevealOwner(view, reveal.NameHash, outpoint, uint64(txOut.Value), true)
		}
		return nil

	case covenant.Redeem:
		spentCov, _, err := b.spentCovenant(tx, outpoint)
		if err != nil {
			return err
		}
		redeem, err := covenant.DecodeRedeem(c)
		if err != nil {
			return err
		}
		spentOutpoint, err := b.spentOutpointFor(tx, outpoint)
		if err != nil {
			return err
		}
		_ = redeem
		return names.AcceptRedeem(view, ctx, c, spentCov, spentOutpoint)

	case covenant.Register:
		return names.AcceptRegister(view, ctx, c, outpoint, uint64(txOut.Value))

	case covenant.Update:
		spentOutpoint, err := b.spentOutpointFor(tx, outpoint)
		if err != nil {
			return err
		}
		return names.AcceptUpdate(view, ctx, c, outpoint, spentOutpoint)

	case covenant.Renew:
		spentOutpoint, err := b.spentOutpointFor(tx, outpoint)
		if err != nil {
			return err
		}
		return names.AcceptRenew(view, ctx, c, outpoint, spentOutpoint)

	case covenant.Transfer:
		spentOutpoint, err := b.spentOutpointFor(tx, outpoint)
		if err != nil {
			return err
		}
		return names.AcceptTransfer(view, ctx, c, spentOutpoint)

	case covenant.Finalize:
		return names.AcceptFinalize(view, ctx, c, outpoint)

	case covenant.Revoke:
		spentOutpoint, err := b.spentOutpointFor(tx, outpoint)
		if err != nil {
			return err
		}
		return names.AcceptRevoke(view, ctx, c, spentOutpoint)

	case covenant.Claim:
		if !isCoinbase {
			return ruleError(ErrVerify, ReasonInvalidCovenant, "CLAIM outside coinbase transaction")
		}
		cl, err := covenant.DecodeClaim(c)
		if err != nil {
			return err
		}
		proofOK := true
		if b.claims != nil {
			proofOK, err = b.claims.Validate(cl.NameHash, nil)
			if err != nil {
				return err
			}
		}
		return names.AcceptClaim(view, ctx, c, outpoint, b.bitfieldSize, proofOK)

	default:
		return ruleError(ErrDecode, ReasonInvalidCovenant, "unknown covenant kind")
	}
}

// spentCovenant resolves the covenant carried by the single non-coinbase
// input of tx, for kinds (REVEAL, REDEEM) that must chain from it.
func (b *BlockChain) spentCovenant(tx *wire.MsgTx, _ wire.OutPoint) (*covenant.Covenant, int64, error) {
	if len(tx.TxIn) == 0 {
		return nil, 0, fmt.Errorf("blockchain: transaction has no inputs")
	}
	if b.coinView == nil {
		return nil, 0, fmt.Errorf("blockchain: no coin view configured")
	}
	cov, value, ok, err := b.coinView.Coin(tx.TxIn[0].PreviousOutPoint)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, ruleError(ErrMissingData, ReasonBitsMissingOrSpent, "spent coin not found")
	}
	return cov, value, nil
}

// spentOutpointFor returns the outpoint of tx's first input, the coin
// whose covenant the accept predicates check ownership against.
func (b *BlockChain) spentOutpointFor(tx *wire.MsgTx, _ wire.OutPoint) (wire.OutPoint, error) {
	if len(tx.TxIn) == 0 {
		return wire.OutPoint{}, fmt.Errorf("blockchain: transaction has no inputs")
	}
	return tx.TxIn[0].PreviousOutPoint, nil
}

// coventantNameHash returns the name hash a covenant refers to, for kinds
// that carry one.
func coventantNameHash(c *covenant.Covenant) (chainhash.Hash, error) {
	if c.Kind == covenant.None {
		return chainhash.Hash{}, fmt.Errorf("no name hash")
	}
	return c.Name()
}

// icannLockupState reports whether the ICANN-lockup deployment is active
// as of prevNode, and the height at which it first became so (0 if it
// never has). The activation height is only tracked for the lifetime of
// this process; callers needing it to survive a restart must persist it
// themselves via the deployment-state cache keys described in the
// persisted-state layout.
func (b *BlockChain) icannLockupState(prevNode *blockNode) (bool, uint32, error) {
	deployment := &b.chainParams.Deployments[chaincfg.DeploymentICANNLockup]
	checker := deploymentChecker{deployment: deployment, chain: b}
	cache := &b.deploymentCaches[chaincfg.DeploymentICANNLockup]
	state, err := b.thresholdState(prevNode, checker, cache)
	if err != nil {
		return false, 0, err
	}
	if state != ThresholdActive {
		return false, 0, nil
	}
	if b.icannActivationHeight == 0 {
		b.icannActivationHeight = uint32(prevNode.height) + 1
	}
	return true, b.icannActivationHeight, nil
}
