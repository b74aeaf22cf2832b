package wallet

import (
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"

	"utxosig/blockchain"
)

// maxKeyAttempts bounds how many candidates NewWallet draws before giving
// up. A uniformly random 32 byte string is out of range with probability
// about 2^-128, so hitting the bound means the source is broken.
const maxKeyAttempts = 64

// ErrBadEntropy is returned when the randomness source never yields a
// usable private key.
var ErrBadEntropy = errors.New("randomness source produced no valid key")

// Wallet holds one key pair and its derived address.
type Wallet struct {
	PrivateKey *btcec.PrivateKey
	PublicKey  blockchain.SpendingKey
	Address    string
}

// NewWallet generates a key pair from rand. Pass crypto/rand.Reader in
// production; tests pass a seeded reader to get reproducible keys.
func NewWallet(rand io.Reader) (*Wallet, error) {
	var candidate [blockchain.PrivKeySize]byte
	for i := 0; i < maxKeyAttempts; i++ {
		if _, err := io.ReadFull(rand, candidate[:]); err != nil {
			return nil, fmt.Errorf("read randomness: %w", err)
		}

		w, err := NewWalletFromKey(candidate[:])
		if errors.Is(err, blockchain.ErrMalformedKey) {
			// Out of range, draw again.
			continue
		}
		if err != nil {
			return nil, err
		}

		log.Debugf("Generated wallet %s", w.Address)
		return w, nil
	}

	return nil, ErrBadEntropy
}

// NewWalletFromKey builds a wallet around a raw 32 byte private key.
func NewWalletFromKey(privKey []byte) (*Wallet, error) {
	priv, err := blockchain.ParsePrivKey(privKey)
	if err != nil {
		return nil, err
	}

	return fromPrivKey(priv), nil
}

func fromPrivKey(priv *btcec.PrivateKey) *Wallet {
	pub := blockchain.NewSpendingKey(priv.PubKey())

	return &Wallet{
		PrivateKey: priv,
		PublicKey:  pub,
		Address:    PubKeyToAddress(pub),
	}
}

// Owns reports whether out is payable to this wallet.
func (w *Wallet) Owns(out blockchain.TxOutput) bool {
	return out.SpendingKey == w.PublicKey
}

// SignDigest signs a 32 byte digest and returns the DER signature.
func (w *Wallet) SignDigest(digest []byte) ([]byte, error) {
	return blockchain.SignDigestWithKey(digest, w.PrivateKey)
}

// VerifySignature checks a DER signature over digest against an
// uncompressed public key. Malformed input counts as a failed check.
func VerifySignature(pubKey, sig, digest []byte) bool {
	ok, err := blockchain.VerifyDigest(digest, sig, pubKey)
	if err != nil {
		log.Debugf("Signature check failed: %v", err)
		return false
	}
	return ok
}
