// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/covenant"
	"github.com/hnsgo/hnsd/wire"
)

// genesisCoinbaseTx is the coinbase transaction shared by the genesis block
// on every network. It carries no covenant and no claimable address: real
// value enters the chain only through mined subsidy and CLAIM outputs in
// later blocks, not a premine.
var genesisCoinbaseTx = wire.MsgTx{
	Version: 1,
	TxIn: []*wire.TxIn{
		{
			PreviousOutPoint: wire.OutPoint{
				Hash:  chainhash.Hash{},
				Index: 0xffffffff,
			},
			Witness: wire.TxWitness{
				[]byte("No premine. No special allocations. Pure proof-of-work distribution from block zero."),
			},
			Sequence: 0xffffffff,
		},
	},
	TxOut: []*wire.TxOut{
		{
			Value:    0,
			Address:  wire.Address{Version: 0, Hash: make([]byte, 20)},
			Covenant: covenant.Covenant{Kind: covenant.None},
		},
	},
	LockTime: 0,
}

// genesisMerkleRoot is the merkle root of genesisCoinbaseTx, the sole
// transaction in the genesis block.
var genesisMerkleRoot = genesisCoinbaseTx.TxHash()

// genesisNameRoot is the zero hash: no name has ever been committed at the
// start of the chain. It is not the root nametree computes for an empty
// tree.
var genesisNameRoot = chainhash.Hash{}

// genesisBitfieldCommitment is the zero hash, since no CLAIM output has
// ever been processed at genesis. It is not the Hash of an all-zero
// bitfield.
var genesisBitfieldCommitment = chainhash.Hash{}

// genesisBlock defines the genesis block shared by every network. Networks
// differ in the interpretation of its proof of work (PowLimitBits) and in
// the parameters that govern blocks built on top of it, not in the genesis
// block's content itself.
var genesisBlock = wire.MsgBlock{
	Header: wire.BlockHeader{
		Version:            1,
		PrevBlock:          chainhash.Hash{},
		MerkleRoot:         genesisMerkleRoot,
		NameRoot:           genesisNameRoot,
		BitfieldCommitment: genesisBitfieldCommitment,
		Timestamp:          time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		Bits:               0x1d00ffff,
		Nonce:              0,
	},
	Transactions: []*wire.MsgTx{&genesisCoinbaseTx},
}

// genesisHash is the hash of the genesis block, computed directly from its
// header rather than hard-coded, so it always agrees with genesisBlock
// regardless of how the header's fields above are edited.
var genesisHash = genesisBlock.Header.BlockHash()
