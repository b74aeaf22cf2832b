package blockchain

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// DigestSize is the only digest length accepted by SignDigest and
// VerifyDigest.
const DigestSize = chainhash.HashSize

func checkDigest(digest []byte) error {
	if len(digest) != DigestSize {
		return fmt.Errorf("%w: digest is %d bytes, want %d",
			ErrMalformedDigest, len(digest), DigestSize)
	}
	return nil
}

// SignDigest signs a 32 byte digest with a raw private key and returns the
// DER encoded signature.
func SignDigest(digest, privKey []byte) ([]byte, error) {
	if err := checkDigest(digest); err != nil {
		return nil, err
	}

	priv, err := ParsePrivKey(privKey)
	if err != nil {
		return nil, err
	}

	return SignDigestWithKey(digest, priv)
}

// SignDigestWithKey is SignDigest for an already parsed key. Nonces are
// derived per RFC 6979, so the same digest and key always give the same
// signature and no randomness source is consumed.
func SignDigestWithKey(digest []byte, priv *btcec.PrivateKey) ([]byte, error) {
	if err := checkDigest(digest); err != nil {
		return nil, err
	}
	if priv == nil {
		return nil, fmt.Errorf("%w: nil private key", ErrMalformedKey)
	}

	// low-S, DER encoded.
	sig := ecdsa.Sign(priv, digest)

	return sig.Serialize(), nil
}

// VerifyDigest reports whether sig is a valid signature over digest by the
// owner of the uncompressed public key pubKey. A signature by another key or
// over another digest yields false with a nil error; errors are only returned
// for input that can't be decoded.
func VerifyDigest(digest, sig, pubKey []byte) (bool, error) {
	if err := checkDigest(digest); err != nil {
		return false, err
	}

	pub, err := ParseSpendingKey(pubKey)
	if err != nil {
		return false, err
	}

	return verifyParsed(digest, sig, pub)
}

// verifyParsed uses the dcrd parser, btcec's ParseDERSignature ignores
// bytes trailing the encoded sequence.
func verifyParsed(digest, sig []byte, pub *btcec.PublicKey) (bool, error) {
	parsed, err := secpecdsa.ParseDERSignature(sig)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}

	return parsed.Verify(digest, pub), nil
}
