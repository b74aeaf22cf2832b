package wallet

import (
	"errors"

	"utxosig/blockchain"
)

// ErrNoOwnedInputs is returned when a wallet is asked to sign a transaction
// that spends none of its outputs.
var ErrNoOwnedInputs = errors.New("transaction spends no output owned " +
	"by this wallet")

// SignTransaction fills the signature slot of every input payable to the
// wallet key and returns how many it signed. Slots of other owners are left
// untouched, so several wallets can sign the same SignedTx in turn.
func (w *Wallet) SignTransaction(stx *blockchain.SignedTx) (int, error) {
	if len(stx.Sigs) != len(stx.Tx.Inputs) {
		sigs := make([][]byte, len(stx.Tx.Inputs))
		copy(sigs, stx.Sigs)
		stx.Sigs = sigs
	}

	// Every input signs the same digest.
	digest := stx.Tx.Digest()

	signed := 0
	for i, in := range stx.Tx.Inputs {
		if !w.Owns(in.Prev) {
			continue
		}

		sig, err := w.SignDigest(digest[:])
		if err != nil {
			return signed, err
		}
		stx.Sigs[i] = sig
		signed++
	}

	if signed == 0 {
		return 0, ErrNoOwnedInputs
	}

	log.Debugf("Wallet %s signed %d input(s) of tx %x", w.Address,
		signed, digest[:])

	return signed, nil
}
