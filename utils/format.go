package utils

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// HexUpper renders b as uppercase hex, two digits per byte. Display only.
func HexUpper(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// EqualHex compares two hex strings ignoring case.
func EqualHex(a, b string) bool {
	return strings.EqualFold(a, b)
}

// FormatDigest renders a digest in its natural byte order. chainhash.Hash's
// String method reverses the bytes the way bitcoin txids are shown, which
// is not what we want for a plain SHA-256.
func FormatDigest(d *chainhash.Hash) string {
	if d == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%x", d[:])
}
