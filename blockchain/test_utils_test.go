package blockchain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	alicePrivHex = "18a86a6c8a3818284b5b3ab681f9ce155173f5b222376dd7a358f4" +
		"f077401b59"
	bobPrivHex = "19a86a6c8a3818284b5c3ab681f9ce155173f5b222376dd7a358f4" +
		"f077401b59"

	alicePubHex = "042d0869a12fa71b61dcd7f41a5d926cf830b47dba69d8d48dcc57" +
		"f147100792dd3f4795c51457414cc0e96675e051400c1c5411d0e53eb579fab" +
		"e9a207f07cbf5"
	bobPubHex = "0462c9181d1b61667df36a365554f17241cc3dce493a1d7cb0bb4acc" +
		"f7b997818048a5039f82b85b29ceec65ac280726736960db05273a1b410cfb32" +
		"a04f3d7a21"
)

func mustHex(t testing.TB, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func mustKey(t testing.TB, s string) SpendingKey {
	t.Helper()

	var k SpendingKey
	b := mustHex(t, s)
	require.Len(t, b, SpendingKeySize)
	copy(k[:], b)
	return k
}

// seededPrivKey turns a seed into a private key. SHA-256 output is below the
// group order with overwhelming probability.
func seededPrivKey(t require.TestingT, seed uint64) *btcec.PrivateKey {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seed)
	h := sha256.Sum256(b[:])

	priv, err := ParsePrivKey(h[:])
	require.NoError(t, err)
	return priv
}

func genOutput() *rapid.Generator[TxOutput] {
	return rapid.Custom(func(t *rapid.T) TxOutput {
		var out TxOutput
		out.Value = rapid.Uint64().Draw(t, "value")
		key := rapid.SliceOfN(
			rapid.Byte(), SpendingKeySize, SpendingKeySize,
		).Draw(t, "key")
		copy(out.SpendingKey[:], key)
		return out
	})
}

func genTx() *rapid.Generator[*Transaction] {
	return rapid.Custom(func(t *rapid.T) *Transaction {
		prevs := rapid.SliceOfN(genOutput(), 0, 4).Draw(t, "prevs")
		outs := rapid.SliceOfN(genOutput(), 0, 4).Draw(t, "outs")

		tx := &Transaction{Outputs: outs}
		for _, p := range prevs {
			tx.Inputs = append(tx.Inputs, TxInput{Prev: p})
		}
		return tx
	})
}
