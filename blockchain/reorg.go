// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/wire"
)

// BlockFetcher resolves the full block body for a block node, needed to
// disconnect blocks that are no longer the in-memory tip and to connect
// blocks along the new branch during a reorg. Block storage on disk is
// out of scope for this package, so the caller supplies this.
type BlockFetcher interface {
	Block(hash chainhash.Hash) (*wire.MsgBlock, error)
}

// Reorganize disconnects the current best chain down to the common
// ancestor of its tip and newTip, then connects newTip's branch forward
// from there, emitting exactly one NTReorganization notification before
// any disconnect or connect in the sequence. The whole operation is a
// pure function of block sequence: two nodes applying the same reorg must
// converge on identical tree root, bitfield, and deployment-state cache,
// matching the reorg coordinator's contract.
func (b *BlockChain) Reorganize(fetcher BlockFetcher, newTipHash chainhash.Hash) error {
	b.chainLock.RLock()
	oldTip := b.bestChain.Tip()
	newTipNode := b.index.LookupNode(&newTipHash)
	b.chainLock.RUnlock()

	if newTipNode == nil {
		return fmt.Errorf("blockchain: unknown reorganization target")
	}

	ancestor := findCommonAncestor(oldTip, newTipNode)
	if ancestor == nil {
		return fmt.Errorf("blockchain: no common ancestor for reorganization")
	}

	b.sendNotification(Notification{
		Type:   NTReorganization,
		OldTip: oldTip.hash,
		NewTip: newTipNode.hash,
	})

	var toDisconnect []*blockNode
	for n := oldTip; n != nil && n.height > ancestor.height; n = n.parent {
		toDisconnect = append(toDisconnect, n)
	}
	for _, n := range toDisconnect {
		block, err := fetcher.Block(n.hash)
		if err != nil {
			return fmt.Errorf("blockchain: fetching block %s to disconnect: %w", n.hash, err)
		}
		if err := b.DisconnectBlock(block); err != nil {
			return err
		}
	}

	var toConnect []*blockNode
	for n := newTipNode; n != nil && n.height > ancestor.height; n = n.parent {
		toConnect = append(toConnect, n)
	}
	for i := len(toConnect) - 1; i >= 0; i-- {
		block, err := fetcher.Block(toConnect[i].hash)
		if err != nil {
			return fmt.Errorf("blockchain: fetching block %s to connect: %w", toConnect[i].hash, err)
		}
		if err := b.ConnectBlock(block); err != nil {
			return err
		}
	}

	return nil
}

// findCommonAncestor walks both chains back to their shared ancestor.
func findCommonAncestor(a, b *blockNode) *blockNode {
	for a.height > b.height {
		a = a.parent
	}
	for b.height > a.height {
		b = b.parent
	}
	for a != b {
		if a == nil || b == nil {
			return nil
		}
		a = a.parent
		b = b.parent
	}
	return a
}
