// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2025 The hnsd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hnsgo/hnsd/chaincfg/chainhash"
	"github.com/hnsgo/hnsd/covenant"
	"github.com/hnsgo/hnsd/wire/wireutil"
)

const (
	// TxVersion is the current latest supported transaction version.
	TxVersion = 1

	// MaxTxInPerMessage and MaxTxOutPerMessage bound how many inputs or
	// outputs a single transaction decode will allocate for, guarding
	// against a corrupt or adversarial count prefix.
	MaxTxInPerMessage  = 1_000_000 / 41
	MaxTxOutPerMessage = 1_000_000 / 9

	// MaxWitnessItemsPerInput and MaxWitnessItemSize bound witness stack
	// decoding the same way.
	MaxWitnessItemsPerInput = 100_000
	MaxWitnessItemSize      = 1_000_000
)

// OutPoint defines a single previously-spent output to be referenced as an
// input.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new OutPoint.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// String returns the canonical string representation, hash:index.
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.Hash, o.Index)
}

// TxIn defines a transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	Witness          TxWitness
	Sequence         uint32
}

// NewTxIn returns a new transaction input with the given previous outpoint.
func NewTxIn(prevOut *OutPoint) *TxIn {
	return &TxIn{PreviousOutPoint: *prevOut, Sequence: MaxTxInSequenceNum}
}

// MaxTxInSequenceNum is the default, "final" sequence number.
const MaxTxInSequenceNum uint32 = 0xffffffff

// TxWitness is the witness stack unlocking a transaction input: a list of
// byte arrays, typically a signature followed by the public key it was
// produced with.
type TxWitness [][]byte

// TxOut defines a transaction output: a value, a destination address, and
// an optional covenant constraining what may later spend it.
type TxOut struct {
	Value    int64
	Address  Address
	Covenant covenant.Covenant
}

// NewTxOut returns a new, covenant-free transaction output.
func NewTxOut(value int64, address Address) *TxOut {
	return &TxOut{Value: value, Address: address}
}

// MsgTx implements a Handshake-style transaction: like Bitcoin's, except
// each output carries a covenant tag alongside its value and address,
// driving the name-auction state machine directly rather than through a
// scripting language.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new transaction with the given version and no
// inputs or outputs.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{Version: version}
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// HasWitness reports whether any input carries witness data.
func (msg *MsgTx) HasWitness() bool {
	for _, txIn := range msg.TxIn {
		if len(txIn.Witness) > 0 {
			return true
		}
	}
	return false
}

// IsCoinBase determines whether the transaction is a coinbase: exactly one
// input referencing the null outpoint.
func (msg *MsgTx) IsCoinBase() bool {
	if len(msg.TxIn) != 1 {
		return false
	}
	prevOut := &msg.TxIn[0].PreviousOutPoint
	return prevOut.Index == 0xffffffff && prevOut.Hash == chainhash.Hash{}
}

// TxHash computes the transaction identifier: the BLAKE2b-256 double hash
// over the serialized transaction with witness data stripped, so that
// malleating a witness stack never changes a transaction's id.
func (msg *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = msg.serialize(&buf, false)
	return chainhash.DoubleSum(buf.Bytes())
}

// WitnessHash computes a hash over the transaction including witness data,
// used as the leaf of the witness merkle tree.
func (msg *MsgTx) WitnessHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = msg.serialize(&buf, true)
	return chainhash.DoubleSum(buf.Bytes())
}

// Serialize encodes the transaction including witness data.
func (msg *MsgTx) Serialize(w io.Writer) error {
	return msg.serialize(w, true)
}

func (msg *MsgTx) serialize(w io.Writer, withWitness bool) error {
	if err := writeUint32(w, uint32(msg.Version)); err != nil {
		return err
	}

	if err := wireutil.WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, ti, withWitness); err != nil {
			return err
		}
	}

	if err := wireutil.WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeTxOut(w, to); err != nil {
			return err
		}
	}

	return writeUint32(w, msg.LockTime)
}

func writeTxIn(w io.Writer, ti *TxIn, withWitness bool) error {
	if _, err := w.Write(ti.PreviousOutPoint.Hash[:]); err != nil {
		return err
	}
	if err := writeUint32(w, ti.PreviousOutPoint.Index); err != nil {
		return err
	}
	if err := writeUint32(w, ti.Sequence); err != nil {
		return err
	}
	if !withWitness {
		return nil
	}
	if err := wireutil.WriteVarInt(w, uint64(len(ti.Witness))); err != nil {
		return err
	}
	for _, item := range ti.Witness {
		if err := wireutil.WriteVarBytes(w, item); err != nil {
			return err
		}
	}
	return nil
}

func writeTxOut(w io.Writer, to *TxOut) error {
	if err := writeInt64(w, to.Value); err != nil {
		return err
	}
	if err := to.Address.Encode(w); err != nil {
		return err
	}
	return to.Covenant.Encode(w)
}

// Deserialize decodes a transaction previously written by Serialize.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	version, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.Version = int32(version)

	inCount, err := wireutil.ReadVarInt(r)
	if err != nil {
		return err
	}
	if inCount > MaxTxInPerMessage {
		return fmt.Errorf("wire: too many transaction inputs to fit into max "+
			"message size (%d)", inCount)
	}
	msg.TxIn = make([]*TxIn, inCount)
	for i := uint64(0); i < inCount; i++ {
		ti, err := readTxIn(r)
		if err != nil {
			return err
		}
		msg.TxIn[i] = ti
	}

	outCount, err := wireutil.ReadVarInt(r)
	if err != nil {
		return err
	}
	if outCount > MaxTxOutPerMessage {
		return fmt.Errorf("wire: too many transaction outputs to fit into "+
			"max message size (%d)", outCount)
	}
	msg.TxOut = make([]*TxOut, outCount)
	for i := uint64(0); i < outCount; i++ {
		to, err := readTxOut(r)
		if err != nil {
			return err
		}
		msg.TxOut[i] = to
	}

	lockTime, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.LockTime = lockTime
	return nil
}

func readTxIn(r io.Reader) (*TxIn, error) {
	ti := &TxIn{}
	if _, err := io.ReadFull(r, ti.PreviousOutPoint.Hash[:]); err != nil {
		return nil, err
	}
	index, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	ti.PreviousOutPoint.Index = index

	sequence, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	ti.Sequence = sequence

	witCount, err := wireutil.ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if witCount > MaxWitnessItemsPerInput {
		return nil, fmt.Errorf("wire: too many witness items to fit into "+
			"max message size (%d)", witCount)
	}
	ti.Witness = make(TxWitness, witCount)
	for i := uint64(0); i < witCount; i++ {
		item, err := wireutil.ReadVarBytes(r, MaxWitnessItemSize, "witness item")
		if err != nil {
			return nil, err
		}
		ti.Witness[i] = item
	}
	return ti, nil
}

func readTxOut(r io.Reader) (*TxOut, error) {
	to := &TxOut{}
	value, err := readInt64(r)
	if err != nil {
		return nil, err
	}
	to.Value = value

	addr, err := DecodeAddress(r)
	if err != nil {
		return nil, err
	}
	to.Address = addr

	cov, err := covenant.Decode(r)
	if err != nil {
		return nil, err
	}
	to.Covenant = *cov
	return to, nil
}

// Copy returns a deep copy of the transaction.
func (msg *MsgTx) Copy() *MsgTx {
	clone := &MsgTx{
		Version:  msg.Version,
		LockTime: msg.LockTime,
		TxIn:     make([]*TxIn, len(msg.TxIn)),
		TxOut:    make([]*TxOut, len(msg.TxOut)),
	}
	for i, ti := range msg.TxIn {
		witness := make(TxWitness, len(ti.Witness))
		for j, item := range ti.Witness {
			w := make([]byte, len(item))
			copy(w, item)
			witness[j] = w
		}
		clone.TxIn[i] = &TxIn{
			PreviousOutPoint: ti.PreviousOutPoint,
			Witness:          witness,
			Sequence:         ti.Sequence,
		}
	}
	for i, to := range msg.TxOut {
		items := make([][]byte, len(to.Covenant.Items))
		for j, item := range to.Covenant.Items {
			it := make([]byte, len(item))
			copy(it, item)
			items[j] = it
		}
		hash := make([]byte, len(to.Address.Hash))
		copy(hash, to.Address.Hash)
		clone.TxOut[i] = &TxOut{
			Value:    to.Value,
			Address:  Address{Version: to.Address.Version, Hash: hash},
			Covenant: covenant.Covenant{Kind: to.Covenant.Kind, Items: items},
		}
	}
	return clone
}
