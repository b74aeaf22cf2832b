package database

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"utxosig/blockchain"
)

var countKey = []byte("tx_count")

// ErrUnverified is returned when a signed transaction that doesn't verify
// is offered to the store.
var ErrUnverified = errors.New("transaction signatures do not verify")

// txRecord is the stored form of a signed transaction. Raw is the canonical
// encoding; NumInputs tells where the inputs end.
type txRecord struct {
	NumInputs int      `json:"num_inputs"`
	Raw       []byte   `json:"raw"`
	Sigs      [][]byte `json:"sigs"`
	StoredAt  int64    `json:"stored_at"`
}

// TxStore archives fully signed transactions keyed by TxID.
type TxStore struct {
	db *BoltDB
}

// NewTxStore returns an archive backed by db.
func NewTxStore(db *BoltDB) *TxStore {
	return &TxStore{db: db}
}

// PutSignedTx checks every spending key, verifies stx and stores it.
// Storing the same transaction again overwrites the earlier signatures and
// doesn't change the count.
func (s *TxStore) PutSignedTx(stx *blockchain.SignedTx) (string, error) {
	if err := stx.Tx.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnverified, err)
	}

	ok, err := stx.Verify()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnverified, err)
	}
	if !ok {
		return "", ErrUnverified
	}

	txid := stx.Tx.TxID()
	rec, err := json.Marshal(txRecord{
		NumInputs: len(stx.Tx.Inputs),
		Raw:       stx.Tx.Serialize(),
		Sigs:      stx.Sigs,
		StoredAt:  time.Now().Unix(),
	})
	if err != nil {
		return "", err
	}

	err = s.db.DB.Update(func(tx *bolt.Tx) error {
		txs := tx.Bucket([]byte(txBucket))
		meta := tx.Bucket([]byte(metaBucket))

		isNew := txs.Get([]byte(txid)) == nil
		if err := txs.Put([]byte(txid), rec); err != nil {
			return err
		}
		if !isNew {
			return nil
		}

		var n [8]byte
		if v := meta.Get(countKey); len(v) == 8 {
			copy(n[:], v)
		}
		binary.BigEndian.PutUint64(n[:], binary.BigEndian.Uint64(n[:])+1)
		return meta.Put(countKey, n[:])
	})
	if err != nil {
		return "", err
	}

	log.Debugf("Stored tx %s (%d inputs)", txid, len(stx.Tx.Inputs))

	return txid, nil
}

// GetSignedTx loads an archived transaction.
func (s *TxStore) GetSignedTx(txid string) (*blockchain.SignedTx, error) {
	v, err := s.db.Get(txBucket, txid)
	if err != nil {
		return nil, err
	}

	var rec txRecord
	if err := json.Unmarshal(v, &rec); err != nil {
		return nil, fmt.Errorf("decode tx %s: %w", txid, err)
	}

	tx, err := blockchain.ParseTransaction(rec.Raw, rec.NumInputs)
	if err != nil {
		return nil, fmt.Errorf("decode tx %s: %w", txid, err)
	}

	return &blockchain.SignedTx{Tx: *tx, Sigs: rec.Sigs}, nil
}

// ListTxIDs returns every stored txid in key order.
func (s *TxStore) ListTxIDs() ([]string, error) {
	var ids []string
	err := s.db.Iterate(txBucket, func(k, _ []byte) error {
		ids = append(ids, string(k))
		return nil
	})
	return ids, err
}

// Count returns the number of distinct stored transactions.
func (s *TxStore) Count() (uint64, error) {
	v, err := s.db.Get(metaBucket, string(countKey))
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("corrupt tx count of %d bytes", len(v))
	}
	return binary.BigEndian.Uint64(v), nil
}

// Clear drops every archived transaction and resets the count.
func (s *TxStore) Clear() error {
	if err := s.db.ClearBucket(txBucket, metaBucket); err != nil {
		return err
	}
	log.Infof("Transaction archive cleared")
	return nil
}

// Delete removes a transaction from the archive.
func (s *TxStore) Delete(txid string) error {
	return s.db.DB.Update(func(tx *bolt.Tx) error {
		txs := tx.Bucket([]byte(txBucket))
		if txs.Get([]byte(txid)) == nil {
			return fmt.Errorf("tx %s: %w", txid, ErrNotFound)
		}
		if err := txs.Delete([]byte(txid)); err != nil {
			return err
		}

		meta := tx.Bucket([]byte(metaBucket))
		v := meta.Get(countKey)
		if len(v) != 8 {
			return nil
		}
		var n [8]byte
		if c := binary.BigEndian.Uint64(v); c > 0 {
			binary.BigEndian.PutUint64(n[:], c-1)
		}
		return meta.Put(countKey, n[:])
	})
}
