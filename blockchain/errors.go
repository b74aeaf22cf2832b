package blockchain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedKey is returned when a private key is not a scalar in
	// [1, N-1] or a public key is not an uncompressed curve point.
	ErrMalformedKey = errors.New("malformed key")

	// ErrMalformedDigest is returned when a digest is not DigestSize
	// bytes long.
	ErrMalformedDigest = errors.New("malformed digest")

	// ErrMalformedSignature is returned when a signature is not a strict
	// DER encoding.
	ErrMalformedSignature = errors.New("malformed signature")
)

// IsMalformedInput reports whether err was caused by structurally invalid
// input to a sign or verify call. A failed verification is never an error,
// so callers can use this to tell bad requests from internal failures.
func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedKey) ||
		errors.Is(err, ErrMalformedDigest) ||
		errors.Is(err, ErrMalformedSignature)
}

func wrapIndex(kind string, i int, err error) error {
	return fmt.Errorf("%s %d: %w", kind, i, err)
}
