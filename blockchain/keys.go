package blockchain

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
)

const (
	// PrivKeySize is the length of a serialized private key scalar.
	PrivKeySize = 32

	pubKeyUncompressed byte = 0x04
)

// ParsePrivKey decodes a 32 byte big-endian scalar. Unlike
// btcec.PrivKeyFromBytes the value isn't reduced modulo the group order: zero
// and anything >= N are rejected.
func ParsePrivKey(b []byte) (*btcec.PrivateKey, error) {
	if len(b) != PrivKeySize {
		return nil, fmt.Errorf("%w: private key is %d bytes, want %d",
			ErrMalformedKey, len(b), PrivKeySize)
	}

	var s btcec.ModNScalar
	if overflow := s.SetByteSlice(b); overflow || s.IsZero() {
		return nil, fmt.Errorf("%w: private key outside curve order",
			ErrMalformedKey)
	}

	priv, _ := btcec.PrivKeyFromBytes(b)
	return priv, nil
}

// ParseSpendingKey decodes an uncompressed public key. Compressed and hybrid
// encodings are rejected, no implicit decompression is done.
func ParseSpendingKey(b []byte) (*btcec.PublicKey, error) {
	if len(b) != SpendingKeySize {
		return nil, fmt.Errorf("%w: public key is %d bytes, want %d",
			ErrMalformedKey, len(b), SpendingKeySize)
	}
	if b[0] != pubKeyUncompressed {
		return nil, fmt.Errorf("%w: public key format 0x%02x is not "+
			"uncompressed", ErrMalformedKey, b[0])
	}

	pub, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}

	return pub, nil
}

// PubKeyFromPrivKey derives the uncompressed public key for a raw private
// key.
func PubKeyFromPrivKey(b []byte) (SpendingKey, error) {
	priv, err := ParsePrivKey(b)
	if err != nil {
		return SpendingKey{}, err
	}

	return NewSpendingKey(priv.PubKey()), nil
}
