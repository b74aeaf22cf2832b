package wallet

import (
	"bytes"
	"errors"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"utxosig/blockchain"
)

const (
	wifPrefix   = byte(0x80) // Bitcoin WIF mainnet
	checksumLen = 4
	wifLen      = 1 + blockchain.PrivKeySize + checksumLen
)

// ErrInvalidWIF is returned when a WIF string fails to decode.
var ErrInvalidWIF = errors.New("invalid WIF")

// ExportWIF encodes the private key as WIF for an uncompressed key, so
// without the 0x01 suffix.
func (w *Wallet) ExportWIF() string {
	raw := make([]byte, 0, wifLen)
	raw = append(raw, wifPrefix)
	raw = append(raw, w.PrivateKey.Serialize()...)

	// double SHA256
	chk := chainhash.DoubleHashB(raw)
	raw = append(raw, chk[:checksumLen]...)

	return base58.Encode(raw)
}

// ImportWIF decodes a WIF string and checks its checksum.
func ImportWIF(wif string) (*Wallet, error) {
	raw := base58.Decode(wif)
	if len(raw) != wifLen || raw[0] != wifPrefix {
		return nil, ErrInvalidWIF
	}

	payload, chk := raw[:wifLen-checksumLen], raw[wifLen-checksumLen:]
	if !bytes.Equal(chainhash.DoubleHashB(payload)[:checksumLen], chk) {
		return nil, ErrInvalidWIF
	}

	w, err := NewWalletFromKey(payload[1:])
	if err != nil {
		return nil, errors.Join(ErrInvalidWIF, err)
	}
	return w, nil
}
