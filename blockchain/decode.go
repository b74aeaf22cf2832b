package blockchain

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedTx is returned when raw bytes are not a canonical encoding.
var ErrMalformedTx = errors.New("malformed transaction encoding")

// ParseTransaction reverses Serialize. The encoding carries no counts, so
// the caller has to say how many of the leading entries are inputs.
func ParseTransaction(raw []byte, numInputs int) (*Transaction, error) {
	if len(raw)%OutputSize != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of %d",
			ErrMalformedTx, len(raw), OutputSize)
	}

	total := len(raw) / OutputSize
	if numInputs < 0 || numInputs > total {
		return nil, fmt.Errorf("%w: %d inputs in %d entries",
			ErrMalformedTx, numInputs, total)
	}

	entries := make([]TxOutput, total)
	for i := range entries {
		field := raw[i*OutputSize : (i+1)*OutputSize]
		entries[i].Value = binary.BigEndian.Uint64(field[:ValueSize])
		copy(entries[i].SpendingKey[:], field[ValueSize:])
	}

	tx := &Transaction{}
	if numInputs > 0 {
		tx.Inputs = make([]TxInput, numInputs)
		for i := range tx.Inputs {
			tx.Inputs[i].Prev = entries[i]
		}
	}
	if total > numInputs {
		tx.Outputs = entries[numInputs:]
	}

	return tx, nil
}
