package blockchain

import (
	"bytes"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestPubKeyDerivation pins key derivation against a known key pair.
func TestPubKeyDerivation(t *testing.T) {
	t.Parallel()

	pub, err := PubKeyFromPrivKey(mustHex(t, alicePrivHex))
	require.NoError(t, err)
	require.Equal(t, mustHex(t, alicePubHex), pub[:])

	pub, err = PubKeyFromPrivKey(mustHex(t, bobPrivHex))
	require.NoError(t, err)
	require.Equal(t, bobPubHex, pub.String())
}

// TestAliceBobScenario signs a 50 -> 20/30 spend with Alice's key and checks
// it verifies only against Alice.
func TestAliceBobScenario(t *testing.T) {
	t.Parallel()

	alicePriv := mustHex(t, alicePrivHex)
	bobPriv := mustHex(t, bobPrivHex)
	alice := mustKey(t, alicePubHex)
	bob := mustKey(t, bobPubHex)

	// An earlier output Alice received.
	prev := TxOutput{Value: 50, SpendingKey: alice}
	tx := NewTransaction(
		[]TxInput{{Prev: prev}},
		[]TxOutput{
			{Value: 20, SpendingKey: bob},
			{Value: 30, SpendingKey: alice},
		},
	)
	digest := tx.Digest()

	sig, err := SignDigest(digest[:], alicePriv)
	require.NoError(t, err)

	ok, err := VerifyDigest(digest[:], sig, alice[:])
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyDigest(digest[:], sig, bob[:])
	require.NoError(t, err)
	require.False(t, ok)

	// Bob signing the same digest doesn't authorize Alice's output.
	bobSig, err := SignDigest(digest[:], bobPriv)
	require.NoError(t, err)

	ok, err = VerifyDigest(digest[:], bobSig, alice[:])
	require.NoError(t, err)
	require.False(t, ok)

	stx := NewSignedTx(*tx)
	stx.Sigs[0] = bobSig
	ok, err = stx.Verify()
	require.NoError(t, err)
	require.False(t, ok)

	stx.Sigs[0] = sig
	ok, err = stx.Verify()
	require.NoError(t, err)
	require.True(t, ok)
}

// TestSignDeterministic checks that signing is repeatable and produces
// canonical low-S signatures.
func TestSignDeterministic(t *testing.T) {
	t.Parallel()

	digest := bytes.Repeat([]byte{0xab}, DigestSize)
	priv := mustHex(t, alicePrivHex)

	sig1, err := SignDigest(digest, priv)
	require.NoError(t, err)
	sig2, err := SignDigest(digest, priv)
	require.NoError(t, err)
	require.Equal(t, sig1, sig2)

	parsed, err := ecdsa.ParseDERSignature(sig1)
	require.NoError(t, err)
	require.Equal(t, sig1, parsed.Serialize())
}

func TestSignDigestErrors(t *testing.T) {
	t.Parallel()

	digest := make([]byte, DigestSize)
	priv := mustHex(t, alicePrivHex)

	tests := []struct {
		name    string
		digest  []byte
		priv    []byte
		wantErr error
	}{
		{
			name:    "short digest",
			digest:  digest[:31],
			priv:    priv,
			wantErr: ErrMalformedDigest,
		},
		{
			name:    "long digest",
			digest:  append(digest, 0),
			priv:    priv,
			wantErr: ErrMalformedDigest,
		},
		{
			name:    "short key",
			digest:  digest,
			priv:    priv[:31],
			wantErr: ErrMalformedKey,
		},
		{
			name:    "zero key",
			digest:  digest,
			priv:    make([]byte, PrivKeySize),
			wantErr: ErrMalformedKey,
		},
		{
			name:   "key equal to order",
			digest: digest,
			priv: mustHex(t, "fffffffffffffffffffffffffffffffebaaedce6"+
				"af48a03bbfd25e8cd0364141"),
			wantErr: ErrMalformedKey,
		},
		{
			name:    "key above order",
			digest:  digest,
			priv:    bytes.Repeat([]byte{0xff}, PrivKeySize),
			wantErr: ErrMalformedKey,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sig, err := SignDigest(tc.digest, tc.priv)
			require.ErrorIs(t, err, tc.wantErr)
			require.True(t, IsMalformedInput(err))
			require.Nil(t, sig)
		})
	}

	_, err := SignDigestWithKey(digest, nil)
	require.ErrorIs(t, err, ErrMalformedKey)
}

func TestVerifyDigestErrors(t *testing.T) {
	t.Parallel()

	digest := make([]byte, DigestSize)
	sig, err := SignDigest(digest, mustHex(t, alicePrivHex))
	require.NoError(t, err)

	alice := mustKey(t, alicePubHex)
	priv, err := ParsePrivKey(mustHex(t, alicePrivHex))
	require.NoError(t, err)
	compressed := priv.PubKey().SerializeCompressed()

	badPrefix := append([]byte(nil), alice[:]...)
	badPrefix[0] = 0x06

	offCurve := make([]byte, SpendingKeySize)
	offCurve[0] = pubKeyUncompressed

	tests := []struct {
		name    string
		digest  []byte
		sig     []byte
		pub     []byte
		wantErr error
	}{
		{
			name:    "short digest",
			digest:  digest[:16],
			sig:     sig,
			pub:     alice[:],
			wantErr: ErrMalformedDigest,
		},
		{
			name:    "compressed key",
			digest:  digest,
			sig:     sig,
			pub:     compressed,
			wantErr: ErrMalformedKey,
		},
		{
			name:    "hybrid key",
			digest:  digest,
			sig:     sig,
			pub:     badPrefix,
			wantErr: ErrMalformedKey,
		},
		{
			name:    "point off curve",
			digest:  digest,
			sig:     sig,
			pub:     offCurve,
			wantErr: ErrMalformedKey,
		},
		{
			name:    "empty signature",
			digest:  digest,
			sig:     nil,
			pub:     alice[:],
			wantErr: ErrMalformedSignature,
		},
		{
			name:    "truncated signature",
			digest:  digest,
			sig:     sig[:len(sig)-1],
			pub:     alice[:],
			wantErr: ErrMalformedSignature,
		},
		{
			name:    "trailing byte",
			digest:  digest,
			sig:     append(append([]byte(nil), sig...), 0xde),
			pub:     alice[:],
			wantErr: ErrMalformedSignature,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ok, err := VerifyDigest(tc.digest, tc.sig, tc.pub)
			require.ErrorIs(t, err, tc.wantErr)
			require.True(t, IsMalformedInput(err))
			require.False(t, ok)
		})
	}
}

// TestSignVerifyProperties covers soundness, signer binding and tamper
// detection over random keys and digests.
func TestSignVerifyProperties(t *testing.T) {
	t.Parallel()

	genDigest := rapid.SliceOfN(rapid.Byte(), DigestSize, DigestSize)

	t.Run("soundness", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			priv := seededPrivKey(t, rapid.Uint64().Draw(t, "seed"))
			digest := genDigest.Draw(t, "digest")
			pub := NewSpendingKey(priv.PubKey())

			sig, err := SignDigest(digest, priv.Serialize())
			require.NoError(t, err)

			ok, err := VerifyDigest(digest, sig, pub[:])
			require.NoError(t, err)
			require.True(t, ok)
		})
	})

	t.Run("signer_binding", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			seed := rapid.Uint64().Draw(t, "seed")
			flip := rapid.Uint64Min(1).Draw(t, "flip")
			priv1 := seededPrivKey(t, seed)
			priv2 := seededPrivKey(t, seed^flip)
			digest := genDigest.Draw(t, "digest")

			pub1 := NewSpendingKey(priv1.PubKey())
			sig, err := SignDigestWithKey(digest, priv2)
			require.NoError(t, err)

			ok, err := VerifyDigest(digest, sig, pub1[:])
			require.NoError(t, err)
			require.False(t, ok)
		})
	})

	t.Run("tamper_detection", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			priv := seededPrivKey(t, rapid.Uint64().Draw(t, "seed"))
			pub := NewSpendingKey(priv.PubKey())

			d1 := genDigest.Draw(t, "digest")
			idx := rapid.IntRange(0, DigestSize-1).Draw(t, "idx")
			mask := rapid.ByteMin(1).Draw(t, "mask")
			d2 := append([]byte(nil), d1...)
			d2[idx] ^= mask

			sig, err := SignDigestWithKey(d1, priv)
			require.NoError(t, err)

			ok, err := VerifyDigest(d1, sig, pub[:])
			require.NoError(t, err)
			require.True(t, ok)

			ok, err = VerifyDigest(d2, sig, pub[:])
			require.NoError(t, err)
			require.False(t, ok)
		})
	})
}

// TestSignedTxVerify covers slot handling and re-verification after the
// transaction is changed.
func TestSignedTxVerify(t *testing.T) {
	t.Parallel()

	alicePriv, err := ParsePrivKey(mustHex(t, alicePrivHex))
	require.NoError(t, err)
	bobPriv, err := ParsePrivKey(mustHex(t, bobPrivHex))
	require.NoError(t, err)
	alice := NewSpendingKey(alicePriv.PubKey())
	bob := NewSpendingKey(bobPriv.PubKey())

	tx := Transaction{
		Inputs: []TxInput{
			{Prev: TxOutput{Value: 10, SpendingKey: alice}},
			{Prev: TxOutput{Value: 15, SpendingKey: bob}},
		},
		Outputs: []TxOutput{{Value: 25, SpendingKey: bob}},
	}
	stx := NewSignedTx(tx)
	require.Equal(t, []int{0, 1}, stx.Unsigned())

	digest := stx.Tx.Digest()
	aliceSig, err := SignDigestWithKey(digest[:], alicePriv)
	require.NoError(t, err)
	bobSig, err := SignDigestWithKey(digest[:], bobPriv)
	require.NoError(t, err)

	// Partially signed.
	stx.Sigs[0] = aliceSig
	ok, err := stx.Verify()
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, []int{1}, stx.Unsigned())

	// Signatures in the wrong slots.
	stx.Sigs[0], stx.Sigs[1] = bobSig, aliceSig
	ok, err = stx.Verify()
	require.NoError(t, err)
	require.False(t, ok)

	stx.Sigs[0], stx.Sigs[1] = aliceSig, bobSig
	ok, err = stx.Verify()
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, stx.Unsigned())

	// Too few slots.
	short := &SignedTx{Tx: tx, Sigs: [][]byte{aliceSig}}
	ok, err = short.Verify()
	require.NoError(t, err)
	require.False(t, ok)

	// Garbage signature is an error, not a rejection.
	stx.Sigs[1] = []byte{0x30, 0x01}
	ok, err = stx.Verify()
	require.ErrorIs(t, err, ErrMalformedSignature)
	require.False(t, ok)
	stx.Sigs[1] = append(append([]byte(nil), bobSig...), 0x00)
	ok, err = stx.Verify()
	require.ErrorIs(t, err, ErrMalformedSignature)
	require.False(t, ok)
	stx.Sigs[1] = bobSig

	// Changing the transaction after signing invalidates the signatures.
	stx.Tx.Outputs[0].Value = 24
	ok, err = stx.Verify()
	require.NoError(t, err)
	require.False(t, ok)

	// Nothing to authorize.
	ok, err = NewSignedTx(Transaction{}).Verify()
	require.NoError(t, err)
	require.True(t, ok)
}

// TestConcurrentSignVerify runs sign and verify from many goroutines at
// once. Run with -race.
func TestConcurrentSignVerify(t *testing.T) {
	t.Parallel()

	const workers = 16

	priv, err := ParsePrivKey(mustHex(t, alicePrivHex))
	require.NoError(t, err)
	pub := NewSpendingKey(priv.PubKey())

	tx := &Transaction{
		Inputs:  []TxInput{{Prev: TxOutput{Value: 50, SpendingKey: pub}}},
		Outputs: []TxOutput{{Value: 50, SpendingKey: pub}},
	}

	var (
		wg      sync.WaitGroup
		results = make(chan bool, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			digest := tx.Digest()
			sig, err := SignDigestWithKey(digest[:], priv)
			if err != nil {
				results <- false
				return
			}
			ok, err := VerifyDigest(digest[:], sig, pub[:])
			results <- ok && err == nil
		}()
	}
	wg.Wait()
	close(results)

	for ok := range results {
		require.True(t, ok)
	}
}
