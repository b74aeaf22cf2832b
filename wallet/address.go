package wallet

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/ripemd160"

	"utxosig/blockchain"
)

const mainnetPrefix = byte(0x00) // Bitcoin mainnet P2PKH version

// ErrInvalidAddress is returned for strings that aren't a base58check
// address with the mainnet prefix.
var ErrInvalidAddress = errors.New("invalid address")

// PubKeyHash returns RIPEMD160(SHA256(key)) of the uncompressed key.
func PubKeyHash(key blockchain.SpendingKey) []byte {
	sha := sha256.Sum256(key[:])

	rip := ripemd160.New()
	_, _ = rip.Write(sha[:])
	return rip.Sum(nil)
}

// PubKeyToAddress returns the base58check address of key. It is only used
// for display.
func PubKeyToAddress(key blockchain.SpendingKey) string {
	return base58.CheckEncode(PubKeyHash(key), mainnetPrefix)
}

// DecodeAddress returns the 20 byte key hash carried by addr.
func DecodeAddress(addr string) ([]byte, error) {
	hash, version, err := base58.CheckDecode(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if version != mainnetPrefix || len(hash) != ripemd160.Size {
		return nil, fmt.Errorf("%w: version %d, %d byte hash",
			ErrInvalidAddress, version, len(hash))
	}
	return hash, nil
}
