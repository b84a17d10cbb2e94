// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/names"
	"github.com/hnsgo/hnsd/wire"
)

// nameStoreWriter is the write side of a names.Store implementation. The
// database package's concrete store satisfies both this and names.Store;
// the split keeps names.View's dependency read-only while still letting
// the block connector/disconnector persist what it stages.
type nameStoreWriter interface {
	PutName(hash chainhash.Hash, ns *names.NameState) error
}

// DisconnectBlock reverses the effect of having connected block, which
// must be the current chain tip. It implements the disconnect steps from
// the component design: replay the block's NameUndo, clear the bitfield
// delta it set, reverse this block's changes to the authenticated tree,
// and clear the deployment-state caches.
func (b *BlockChain) DisconnectBlock(block *wire.MsgBlock) error {
	b.chainLock.Lock()
	defer b.chainLock.Unlock()

	tip := b.bestChain.Tip()
	blockHash := block.Header.BlockHash()
	if tip.hash != blockHash {
		return fmt.Errorf("blockchain: disconnect target is not the current tip")
	}

	if b.undoStore == nil {
		return fmt.Errorf("blockchain: no undo store configured")
	}
	undo, bitfieldDelta, err := b.undoStore.GetUndo(blockHash)
	if err != nil {
		return fmt.Errorf("blockchain: loading undo for %s: %w", blockHash, err)
	}

	restored := undo.Apply()
	for hash, prior := range restored {
		if err := b.applyRestoredName(hash, prior); err != nil {
			return err
		}
	}

	b.bits.Clear(bitfieldDelta)

	// Reverse this block's tree insertions unconditionally, mirroring
	// ConnectBlock folding every block's changes into the tree rather than
	// only a boundary block's: the tree must hold exactly the state a
	// fresh replay up to the parent would produce, not just agree at the
	// next boundary.
	for hash, prior := range restored {
		if prior == nil {
			b.tree.Remove(hash)
			continue
		}
		b.tree.Insert(hash, chainhash.Sum(prior.Bytes()))
	}

	b.invalidateDeploymentCaches(tip.height)

	b.bestChain.setTip(tip.parent)

	b.sendNotification(Notification{Type: NTBlockDisconnected, Block: block})
	return nil
}

// applyRestoredName persists a single restored (or deleted) NameState to
// the backing store. The concrete persistence call is delegated to the
// NameStore implementation, which in the database package also exposes a
// write path beyond the read-only names.Store interface this package
// depends on directly; callers wire a store satisfying both.
func (b *BlockChain) applyRestoredName(hash chainhash.Hash, ns *names.NameState) error {
	writer, ok := b.nameStore.(nameStoreWriter)
	if !ok {
		return fmt.Errorf("blockchain: configured NameStore does not support writes")
	}
	return writer.PutName(hash, ns)
}

// invalidateDeploymentCaches clears every deployment and warning cache
// (see invalidateCacheForHeight), which also drops the entries for the
// confirmation window the disconnected block participated in.
func (b *BlockChain) invalidateDeploymentCaches(disconnectedHeight int32) {
	for i := range b.deploymentCaches {
		invalidateCacheForHeight(&b.deploymentCaches[i], disconnectedHeight, b.chainParams.MinerConfirmationWindow)
	}
	for i := range b.warningCaches {
		invalidateCacheForHeight(&b.warningCaches[i], disconnectedHeight, b.chainParams.MinerConfirmationWindow)
	}
}

// invalidateCacheForHeight conservatively wipes cache: entries are keyed
// by block hash rather than height, so there is no cheaper way to evict
// just the window the disconnected block participated in. thresholdState
// repopulates lazily on the next query, so this only costs a recompute,
// never correctness.
func invalidateCacheForHeight(cache *thresholdStateCache, _ int32, window uint32) {
	if window == 0 {
		return
	}
	cache.entries = make(map[chainHashKey]ThresholdState)
}
