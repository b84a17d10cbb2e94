// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain implements the consensus core: block and transaction
// validation against the name-auction covenant rules, the authenticated
// name-tree commitment schedule, the coinbase-bitfield replay guard, and
// the BIP9-style soft-fork deployment engine that gates the ICANN-lockup
// rule. It is organized the way btcd's blockchain package is organized:
// a block index of in-memory nodes, a chain view tracking the active
// best chain, and a single-writer connect/disconnect/reorganize pipeline.
package blockchain

import (
	"fmt"
	"sync"

	"github.com/hnsgo/hnsd/bitfield"
	"github.com/hnsgo/hnsd/chaincfg"
	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/covenant"
	"github.com/hnsgo/hnsd/names"
	"github.com/hnsgo/hnsd/nametree"
	"github.com/hnsgo/hnsd/wire"
)

// CoinView resolves the covenant and value carried by a previously
// confirmed output. The consensus core consumes this as an external
// collaborator — persisted coin/UTXO storage is out of scope for this
// package, per the purpose-and-scope boundary — so ConnectBlock only ever
// reads through this interface rather than maintaining its own UTXO set.
type CoinView interface {
	// Coin returns the covenant and value of the output identified by
	// op. ok is false if the output is unknown or already spent.
	Coin(op wire.OutPoint) (cov *covenant.Covenant, value int64, ok bool, err error)
}

// ClaimValidator verifies the DNSSEC-style ownership proof backing a
// CLAIM covenant. Proof cryptography itself (signature and record-chain
// verification) is delegated to this external collaborator; ConnectBlock
// only consumes its yes/no outcome, per the claim pipeline design in the
// component design.
type ClaimValidator interface {
	Validate(nameHash chainhash.Hash, proof []byte) (bool, error)
}

// NotificationCallback is invoked for every observable event the core
// emits: connect, disconnect, reorganize, and the block-tip-advanced
// event that follows a successful connect.
type NotificationCallback func(Notification)

// NotificationType identifies the kind of event carried by a Notification.
type NotificationType int

const (
	NTBlockConnected NotificationType = iota
	NTBlockDisconnected
	NTReorganization
)

// Notification is the event payload delivered to registered callbacks.
type Notification struct {
	Type  NotificationType
	Block *wire.MsgBlock
	// OldTip/NewTip are only populated for NTReorganization.
	OldTip, NewTip chainhash.Hash
}

// Config holds the parameters needed to instantiate a BlockChain.
type Config struct {
	ChainParams    *chaincfg.Params
	NameStore      names.Store
	CoinView       CoinView
	ClaimValidator ClaimValidator

	// BitfieldSize is the number of one-shot coinbase reservation slots
	// the network fixes ahead of time (the reserved-name table plus the
	// airdrop allocation).
	BitfieldSize uint32

	// UndoStore persists and retrieves a block's NameUndo and bitfield
	// delta, keyed by block hash, so disconnect can invert a block
	// without replaying the whole chain.
	UndoStore UndoStore

	// TreeRootStore persists the authenticated tree root recorded at
	// each interval boundary height, used to answer
	// name_tree_root_at(height) for anchor-freshness checks.
	TreeRootStore TreeRootStore
}

// UndoStore is the persisted per-block undo data the disconnector reads.
type UndoStore interface {
	GetUndo(blockHash chainhash.Hash) (names.Undo, []uint32, error)
	PutUndo(blockHash chainhash.Hash, undo names.Undo, bitfieldDelta []uint32) error
}

// TreeRootStore is the persisted per-height tree-root history the anchor
// freshness check reads.
type TreeRootStore interface {
	GetTreeRoot(height uint32) (chainhash.Hash, error)
	PutTreeRoot(height uint32, root chainhash.Hash) error
}

// BlockChain provides functions for working with the blockchain,
// maintaining the block index, applying covenant and bitfield rules, and
// answering soft-fork deployment threshold queries. It is safe for
// concurrent access.
type BlockChain struct {
	chainLock sync.RWMutex

	chainParams *chaincfg.Params
	nameStore   names.Store
	coinView    CoinView
	claims      ClaimValidator
	undoStore   UndoStore
	rootStore   TreeRootStore

	index     *blockIndex
	bestChain *chainView

	bits         *bitfield.Bitfield
	bitfieldSize uint32
	tree         *nametree.Tree

	deploymentCaches []thresholdStateCache
	warningCaches    []thresholdStateCache

	unknownRulesWarned bool

	// icannActivationHeight caches the height at which the ICANN-lockup
	// deployment first reached ThresholdActive, computed lazily the
	// first time it is observed. It does not survive a process restart;
	// a caller that needs it to is expected to persist it alongside the
	// other deployment-state cache entries.
	icannActivationHeight uint32

	notificationsLock sync.RWMutex
	notifications     []NotificationCallback
}

// New returns a BlockChain instance using the provided configuration
// details. The genesis block is assumed to already be reflected in
// cfg.NameStore (empty) and is installed as the initial block-index entry
// and chain tip.
func New(cfg *Config) (*BlockChain, error) {
	if cfg.ChainParams == nil {
		return nil, fmt.Errorf("blockchain: ChainParams is required")
	}
	if cfg.NameStore == nil {
		return nil, fmt.Errorf("blockchain: NameStore is required")
	}

	genesisNode := newBlockNode(&cfg.ChainParams.GenesisBlock.Header, nil)
	genesisNode.status = statusDataStored | statusValid

	b := &BlockChain{
		chainParams:      cfg.ChainParams,
		nameStore:        cfg.NameStore,
		coinView:         cfg.CoinView,
		claims:           cfg.ClaimValidator,
		undoStore:        cfg.UndoStore,
		rootStore:        cfg.TreeRootStore,
		index:            newBlockIndex(),
		bestChain:        newChainView(genesisNode),
		bits:             bitfield.New(cfg.BitfieldSize),
		bitfieldSize:     cfg.BitfieldSize,
		tree:             nametree.New(),
		deploymentCaches: newThresholdCaches(len(cfg.ChainParams.Deployments)),
		warningCaches:    newThresholdCaches(vbNumBits),
	}
	b.index.AddNode(genesisNode)

	return b, nil
}

// Subscribe registers callback to be invoked for every future
// Notification.
func (b *BlockChain) Subscribe(callback NotificationCallback) {
	b.notificationsLock.Lock()
	defer b.notificationsLock.Unlock()
	b.notifications = append(b.notifications, callback)
}

func (b *BlockChain) sendNotification(n Notification) {
	b.notificationsLock.RLock()
	defer b.notificationsLock.RUnlock()
	for _, callback := range b.notifications {
		callback(n)
	}
}

// BestSnapshot returns the hash and height of the current best chain tip.
func (b *BlockChain) BestSnapshot() (chainhash.Hash, int32) {
	b.chainLock.RLock()
	defer b.chainLock.RUnlock()
	tip := b.bestChain.Tip()
	return tip.hash, tip.height
}

// HashAt implements names.ChainReader, returning the block hash at height
// on the current best chain.
func (b *BlockChain) HashAt(height uint32) (chainhash.Hash, error) {
	node := b.bestChain.NodeByHeight(int32(height))
	if node == nil {
		return chainhash.Hash{}, fmt.Errorf("blockchain: no block at height %d", height)
	}
	return node.hash, nil
}

// TreeRootAt implements names.ChainReader, returning the authenticated
// name-tree root committed at or before height, per the anchor-rounding
// rule: the most recent interval boundary at or before height. Callers
// clamp heights below genesis to 0 before calling.
func (b *BlockChain) TreeRootAt(height uint32) (chainhash.Hash, error) {
	interval := b.chainParams.Names.TreeInterval
	if interval == 0 {
		return chainhash.Hash{}, fmt.Errorf("blockchain: zero tree interval")
	}
	boundary := (height / interval) * interval
	if b.rootStore == nil {
		return chainhash.Hash{}, nil
	}
	return b.rootStore.GetTreeRoot(boundary)
}
