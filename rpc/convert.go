package rpc

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"utxosig/blockchain"
)

func outToDTO(o blockchain.TxOutput) TxOutDTO {
	return TxOutDTO{
		Value:       strconv.FormatUint(o.Value, 10),
		SpendingKey: o.SpendingKey.String(),
	}
}

func dtoToOut(d TxOutDTO) (blockchain.TxOutput, error) {
	var out blockchain.TxOutput

	v, err := strconv.ParseUint(d.Value, 10, 64)
	if err != nil {
		return out, fmt.Errorf("invalid value %q: %w", d.Value, err)
	}
	out.Value = v

	key, err := hex.DecodeString(d.SpendingKey)
	if err != nil {
		return out, fmt.Errorf("invalid spending key hex: %w", err)
	}
	if len(key) != blockchain.SpendingKeySize {
		return out, fmt.Errorf("%w: spending key is %d bytes, want %d",
			blockchain.ErrMalformedKey, len(key),
			blockchain.SpendingKeySize)
	}
	copy(out.SpendingKey[:], key)

	return out, nil
}

// Transaction → DTO
func TxToDTO(tx blockchain.Transaction) TransactionDTO {
	ins := make([]TxOutDTO, 0, len(tx.Inputs))
	for _, in := range tx.Inputs {
		ins = append(ins, outToDTO(in.Prev))
	}

	outs := make([]TxOutDTO, 0, len(tx.Outputs))
	for _, o := range tx.Outputs {
		outs = append(outs, outToDTO(o))
	}

	return TransactionDTO{
		Inputs:  ins,
		Outputs: outs,
	}
}

// DTOToTx converts back and checks the field encodings. Whether the keys
// are points on the curve is left to verification.
func DTOToTx(d TransactionDTO) (*blockchain.Transaction, error) {
	var tx blockchain.Transaction
	for i, in := range d.Inputs {
		out, err := dtoToOut(in)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		tx.Inputs = append(tx.Inputs, blockchain.TxInput{Prev: out})
	}

	for i, o := range d.Outputs {
		out, err := dtoToOut(o)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		tx.Outputs = append(tx.Outputs, out)
	}

	return &tx, nil
}

func sigsToHex(sigs [][]byte) []string {
	list := make([]string, len(sigs))
	for i, s := range sigs {
		list[i] = hex.EncodeToString(s)
	}
	return list
}

// hexToSigs decodes signature slots. An empty string is an unsigned slot.
func hexToSigs(list []string) ([][]byte, error) {
	sigs := make([][]byte, len(list))
	for i, s := range list {
		if s == "" {
			continue
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
		sigs[i] = b
	}
	return sigs, nil
}

func signedTxFromParams(p txParams) (*blockchain.SignedTx, error) {
	tx, err := DTOToTx(p.Tx)
	if err != nil {
		return nil, err
	}

	stx := blockchain.NewSignedTx(*tx)
	if p.Sigs == nil {
		return stx, nil
	}

	sigs, err := hexToSigs(p.Sigs)
	if err != nil {
		return nil, err
	}
	stx.Sigs = sigs

	return stx, nil
}
