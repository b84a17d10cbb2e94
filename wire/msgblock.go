// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/wire/wireutil"
)

// MaxBlockTransactions bounds how many transactions a single block decode
// will allocate room for.
const MaxBlockTransactions = 1_000_000 / 61

// BlockHeader defines information about a block and is used in the block
// message (MsgBlock). It additionally binds
// two commitments beyond Bitcoin's header: the authenticated name-tree root
// after applying this block, and a commitment to the cumulative airdrop
// bitfield. Both travel in dedicated fields rather than being smuggled into
// the coinbase, so headers alone are enough to verify name-tree and
// bitfield continuity during a reorg.
type BlockHeader struct {
	// Version signals which consensus rules a block follows. The low bits
	// double as the BIP9-style versionbits deployment signal; bits not
	// claimed by an active deployment are otherwise unconstrained.
	Version int32

	// PrevBlock is the hash of the previous block in the chain.
	PrevBlock chainhash.Hash

	// MerkleRoot commits to the ordered set of transactions in the block.
	MerkleRoot chainhash.Hash

	// NameRoot commits to the root of the authenticated name tree after
	// applying every name-affecting transaction in this block.
	NameRoot chainhash.Hash

	// BitfieldCommitment commits to the cumulative one-shot airdrop
	// bitfield after applying this block's CLAIM outputs.
	BitfieldCommitment chainhash.Hash

	// Timestamp is the block's creation time.
	Timestamp time.Time

	// Bits is the proof of work target for the block, stored in compact
	// form.
	Bits uint32

	// Nonce is a value used by miners to try to make the block's hash
	// satisfy its proof-of-work target.
	Nonce uint32
}

// blockHeaderLen is the number of bytes a BlockHeader occupies when
// serialized: 4 (version) + 32*4 (hashes) + 4 (time) + 4 (bits) + 4 (nonce).
const blockHeaderLen = 4 + chainhash.HashSize*4 + 4 + 4 + 4

// BlockHash computes the block identifier by double-hashing the header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, blockHeaderLen))
	_ = h.Serialize(buf)
	return chainhash.DoubleSum(buf.Bytes())
}

// Serialize encodes the header in the format used for hashing and network
// transfer.
func (h *BlockHeader) Serialize(w io.Writer) error {
	if err := writeUint32(w, uint32(h.Version)); err != nil {
		return err
	}
	if _, err := w.Write(h.PrevBlock[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.MerkleRoot[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.NameRoot[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.BitfieldCommitment[:]); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(h.Timestamp.Unix())); err != nil {
		return err
	}
	if err := writeUint32(w, h.Bits); err != nil {
		return err
	}
	return writeUint32(w, h.Nonce)
}

// Deserialize decodes a header previously written by Serialize.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	version, err := readUint32(r)
	if err != nil {
		return err
	}
	h.Version = int32(version)

	for _, dst := range []*chainhash.Hash{&h.PrevBlock, &h.MerkleRoot, &h.NameRoot, &h.BitfieldCommitment} {
		if _, err := io.ReadFull(r, dst[:]); err != nil {
			return err
		}
	}

	ts, err := readUint32(r)
	if err != nil {
		return err
	}
	h.Timestamp = time.Unix(int64(ts), 0)

	if h.Bits, err = readUint32(r); err != nil {
		return err
	}
	if h.Nonce, err = readUint32(r); err != nil {
		return err
	}
	return nil
}

// MsgBlock implements a full block: a header plus its ordered transaction
// list, the first of which must be the coinbase.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// AddTransaction adds a transaction to the message.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Transactions = append(msg.Transactions, tx)
}

// BlockHash computes the block identifier from the header alone.
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.BlockHash()
}

// Serialize encodes the full block, including witness data.
func (msg *MsgBlock) Serialize(w io.Writer) error {
	if err := msg.Header.Serialize(w); err != nil {
		return err
	}
	if err := wireutil.WriteVarInt(w, uint64(len(msg.Transactions))); err != nil {
		return err
	}
	for _, tx := range msg.Transactions {
		if err := tx.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize decodes a block previously written by Serialize.
func (msg *MsgBlock) Deserialize(r io.Reader) error {
	if err := msg.Header.Deserialize(r); err != nil {
		return err
	}

	count, err := wireutil.ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxBlockTransactions {
		return fmt.Errorf("wire: too many transactions to fit into max "+
			"message size (%d)", count)
	}

	msg.Transactions = make([]*MsgTx, count)
	for i := uint64(0); i < count; i++ {
		tx := new(MsgTx)
		if err := tx.Deserialize(r); err != nil {
			return err
		}
		msg.Transactions[i] = tx
	}
	return nil
}
