package blockchain

// SignedTx pairs a transaction with one signature slot per input. Slot i
// authorizes spending Tx.Inputs[i] and must be made by the owner of that
// input's spending key. Signatures are not part of the serialized
// transaction, every signer signs the same digest.
type SignedTx struct {
	Tx   Transaction
	Sigs [][]byte
}

// NewSignedTx returns tx with one empty signature slot per input.
func NewSignedTx(tx Transaction) *SignedTx {
	return &SignedTx{
		Tx:   tx,
		Sigs: make([][]byte, len(tx.Inputs)),
	}
}

// Unsigned returns the indexes of inputs that have no signature yet.
func (s *SignedTx) Unsigned() []int {
	var missing []int
	for i := range s.Tx.Inputs {
		if i >= len(s.Sigs) || len(s.Sigs[i]) == 0 {
			missing = append(missing, i)
		}
	}
	return missing
}

// Verify recomputes the digest from the current transaction contents and
// checks every input's signature against its spending key. Missing
// signatures or a slot count that doesn't match the inputs are a plain
// rejection. An error means a key or signature could not be decoded.
//
// A transaction without inputs has nothing to authorize and is accepted.
func (s *SignedTx) Verify() (bool, error) {
	if len(s.Sigs) != len(s.Tx.Inputs) {
		log.Debugf("Rejecting tx: %d signatures for %d inputs",
			len(s.Sigs), len(s.Tx.Inputs))
		return false, nil
	}

	digest := s.Tx.Digest()
	for i, in := range s.Tx.Inputs {
		if len(s.Sigs[i]) == 0 {
			log.Debugf("Rejecting tx %x: input %d unsigned", digest[:],
				i)
			return false, nil
		}

		pub, err := in.Prev.SpendingKey.PubKey()
		if err != nil {
			return false, wrapIndex("input", i, err)
		}

		ok, err := verifyParsed(digest[:], s.Sigs[i], pub)
		if err != nil {
			return false, wrapIndex("input", i, err)
		}
		if !ok {
			log.Debugf("Rejecting tx %x: bad signature on input %d",
				digest[:], i)
			return false, nil
		}
	}

	log.Tracef("Verified %d input signature(s) for tx %x",
		len(s.Tx.Inputs), digest[:])

	return true, nil
}
