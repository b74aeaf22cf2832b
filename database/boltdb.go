package database

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	txBucket   = "txs"
	metaBucket = "meta"
)

// ErrNotFound is returned when a key is not in its bucket.
var ErrNotFound = errors.New("not found")

// BoltDB wraps the bbolt handle holding the archive buckets.
type BoltDB struct {
	DB *bolt.DB
}

// OpenDB opens (or creates) the database at path and makes sure the
// buckets exist.
func OpenDB(path string) (*BoltDB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{txBucket, metaBucket} {
			_, err := tx.CreateBucketIfNotExists([]byte(name))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Infof("Opened database %s", path)

	return &BoltDB{DB: db}, nil
}

// Close releases the database file lock.
func (db *BoltDB) Close() error {
	return db.DB.Close()
}

// Get returns a copy of the value, bbolt memory is only valid inside the
// transaction.
func (db *BoltDB) Get(bucket, key string) ([]byte, error) {
	var val []byte
	err := db.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket %s: %w", bucket, ErrNotFound)
		}

		v := b.Get([]byte(key))
		if v == nil {
			return fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
		}
		val = append([]byte{}, v...)
		return nil
	})
	return val, err
}

// Iterate calls fn for every key in bucket, in key order.
func (db *BoltDB) Iterate(bucket string, fn func(k, v []byte) error) error {
	return db.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket %s: %w", bucket, ErrNotFound)
		}

		return b.ForEach(fn)
	})
}

// ClearBucket empties the named buckets in a single transaction.
func (db *BoltDB) ClearBucket(buckets ...string) error {
	return db.DB.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			err := tx.DeleteBucket([]byte(name))
			if err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
}
