// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/covenant"
	"github.com/hnsgo/hnsd/wire"
)

// ScanAction is the verdict an interactive scan's iterator returns for
// the entry it was just handed.
type ScanAction int

const (
	// ScanNext advances to the following block.
	ScanNext ScanAction = iota
	// ScanAbort stops the scan; ScanInteractive returns a ScanAborted
	// error with the exact reason string scan callers match on.
	ScanAbort
	// ScanRepeat re-invokes the iterator on the same entry unchanged.
	ScanRepeat
	// ScanRepeatSet replaces the filter with Result.Filter and
	// re-invokes the iterator on the same entry against it.
	ScanRepeatSet
	// ScanRepeatAdd merges Result.Chunks into the current filter and
	// re-invokes the iterator on the same entry.
	ScanRepeatAdd
)

// ScanResult is the iterator's verdict for one entry.
type ScanResult struct {
	Action ScanAction
	Filter *Filter  // used by ScanRepeatSet
	Chunks [][]byte // used by ScanRepeatAdd
}

// ScanEntry identifies a single scanned block.
type ScanEntry struct {
	Height uint32
	Hash   chainhash.Hash
}

// ScanIterator is invoked once per scanned block, and again for each
// ScanRepeat/ScanRepeatSet/ScanRepeatAdd verdict it returns for that
// block, until it returns ScanNext or ScanAbort.
type ScanIterator func(entry ScanEntry, txs []*wire.MsgTx) ScanResult

// ScanInteractive implements scan_interactive: it walks main-chain blocks
// from startHeight upward through the current tip, narrowing each block
// down to the transactions matching filter (or every transaction, if
// filter is empty) before invoking iter. The caller supplies fetcher to
// resolve block bodies, since block storage on disk is out of scope for
// this package.
func (b *BlockChain) ScanInteractive(fetcher BlockFetcher, startHeight uint32, filter *Filter, iter ScanIterator) error {
	if filter == nil {
		filter = NewFilter()
	}

	_, tipHeight := b.BestSnapshot()

	for height := startHeight; int32(height) <= tipHeight; height++ {
		hash, err := b.HashAt(height)
		if err != nil {
			return err
		}
		block, err := fetcher.Block(hash)
		if err != nil {
			return err
		}
		entry := ScanEntry{Height: height, Hash: hash}
		txs := matchingTransactions(block, filter)

		for {
			result := iter(entry, txs)
			switch result.Action {
			case ScanNext:
			case ScanAbort:
				return ruleError(ErrScanAborted, ReasonScanAborted, "")
			case ScanRepeat:
				continue
			case ScanRepeatSet:
				if result.Filter != nil {
					filter = result.Filter
				}
				txs = matchingTransactions(block, filter)
				continue
			case ScanRepeatAdd:
				filter.Merge(result.Chunks)
				txs = matchingTransactions(block, filter)
				continue
			}
			break
		}
	}
	return nil
}

// matchingTransactions returns every transaction in block carrying a
// covenant output whose name hash is in filter, or every transaction if
// filter is empty.
func matchingTransactions(block *wire.MsgBlock, filter *Filter) []*wire.MsgTx {
	if filter.Empty() {
		return block.Transactions
	}

	var matched []*wire.MsgTx
	for _, tx := range block.Transactions {
		for _, txOut := range tx.TxOut {
			if txOut.Covenant.Kind == covenant.None {
				continue
			}
			nameHash, err := txOut.Covenant.Name()
			if err != nil {
				continue
			}
			if filter.Contains(nameHash[:]) {
				matched = append(matched, tx)
				break
			}
		}
	}
	return matched
}
