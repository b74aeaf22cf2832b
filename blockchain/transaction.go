package blockchain

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// ValueSize is the fixed width of an encoded output value.
	ValueSize = 8

	// SpendingKeySize is the length of an uncompressed secp256k1 point:
	// the 0x04 marker followed by the X and Y coordinates.
	SpendingKeySize = 65

	// OutputSize is the encoded size of a single output. Inputs encode
	// the output they spend, so they have the same size.
	OutputSize = ValueSize + SpendingKeySize
)

// SpendingKey is the uncompressed public key of an output's recipient.
type SpendingKey [SpendingKeySize]byte

// String returns the key as lowercase hex.
func (k SpendingKey) String() string {
	return hex.EncodeToString(k[:])
}

// PubKey parses the key into a curve point.
func (k SpendingKey) PubKey() (*btcec.PublicKey, error) {
	return ParseSpendingKey(k[:])
}

// NewSpendingKey returns the uncompressed encoding of pub.
func NewSpendingKey(pub *btcec.PublicKey) SpendingKey {
	var k SpendingKey
	copy(k[:], pub.SerializeUncompressed())
	return k
}

// TxOutput assigns Value to whoever holds the private key of SpendingKey.
type TxOutput struct {
	Value       uint64
	SpendingKey SpendingKey
}

// NewTxOutput returns an output paying value to pub.
func NewTxOutput(value uint64, pub *btcec.PublicKey) TxOutput {
	return TxOutput{
		Value:       value,
		SpendingKey: NewSpendingKey(pub),
	}
}

// Validate checks that the spending key decodes to a point on the curve.
func (out TxOutput) Validate() error {
	_, err := out.SpendingKey.PubKey()
	return err
}

// TxInput spends one earlier output. The output is carried by value, there
// is no lookup into a ledger.
type TxInput struct {
	Prev TxOutput
}

// Transaction is an ordered list of inputs followed by an ordered list of
// outputs. Position matters: reordering either list changes the digest.
type Transaction struct {
	Inputs  []TxInput
	Outputs []TxOutput
}

// NewTransaction returns an unsigned transaction.
func NewTransaction(inputs []TxInput, outputs []TxOutput) *Transaction {
	return &Transaction{
		Inputs:  inputs,
		Outputs: outputs,
	}
}

// SerializedSize returns the number of bytes Serialize will produce.
func (tx *Transaction) SerializedSize() int {
	return OutputSize * (len(tx.Inputs) + len(tx.Outputs))
}

// Serialize returns the canonical encoding of the transaction: for every
// input and then every output, the 8 byte big-endian value followed by the
// 65 byte spending key. No length prefixes or tags are written, the fixed
// field widths keep the encoding unambiguous.
func (tx *Transaction) Serialize() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, tx.SerializedSize()))

	// bytes.Buffer writes can't fail.
	_, _ = tx.WriteTo(buf)

	return buf.Bytes()
}

// WriteTo streams the canonical encoding to w.
func (tx *Transaction) WriteTo(w io.Writer) (int64, error) {
	var (
		total int64
		field [OutputSize]byte
	)
	writeOut := func(out *TxOutput) error {
		binary.BigEndian.PutUint64(field[:ValueSize], out.Value)
		copy(field[ValueSize:], out.SpendingKey[:])

		n, err := w.Write(field[:])
		total += int64(n)
		return err
	}

	for i := range tx.Inputs {
		if err := writeOut(&tx.Inputs[i].Prev); err != nil {
			return total, err
		}
	}
	for i := range tx.Outputs {
		if err := writeOut(&tx.Outputs[i]); err != nil {
			return total, err
		}
	}

	return total, nil
}

// Digest is the SHA-256 of the canonical encoding. It is recomputed on
// every call so any mutation is reflected.
func (tx *Transaction) Digest() chainhash.Hash {
	return chainhash.HashH(tx.Serialize())
}

// TxID is the digest as lowercase hex, in natural byte order.
func (tx *Transaction) TxID() string {
	d := tx.Digest()
	return hex.EncodeToString(d[:])
}

// Validate checks every spending key referenced by the transaction.
func (tx *Transaction) Validate() error {
	for i, in := range tx.Inputs {
		if err := in.Prev.Validate(); err != nil {
			return wrapIndex("input", i, err)
		}
	}
	for i, out := range tx.Outputs {
		if err := out.Validate(); err != nil {
			return wrapIndex("output", i, err)
		}
	}
	return nil
}
