package marker

import (
	"fmt"
	"log"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketName = "applied"

// Store persists audit markers recording which remediations were applied.
// Markers are write-only from the updater's perspective: they exist for
// reporting, and are never read back to gate dispatch decisions.
type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt.Open %v: %v", path, err)
	}

	return &Store{db: db}, nil
}

// WriteMarker records a key/value pair. Idempotent: rewriting an existing key
// is safe and overwrites its value.
func (store *Store) WriteMarker(key string, value string) error {
	log.Printf("marker: %v = %v", key, value)

	return store.db.Update(func(tx *bolt.Tx) error {
		if bucket, err := tx.CreateBucketIfNotExists([]byte(bucketName)); err != nil {
			return fmt.Errorf("bolt.CreateBucketIfNotExists: %v", err)
		} else if err := bucket.Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("bolt.Put %v: %v", key, err)
		} else {
			return nil
		}
	})
}

// ReadMarker returns the value for key, or "" if absent. Only used by
// reporting tooling and tests.
func (store *Store) ReadMarker(key string) (string, error) {
	var value string

	if err := store.db.View(func(tx *bolt.Tx) error {
		if bucket := tx.Bucket([]byte(bucketName)); bucket == nil {

		} else {
			value = string(bucket.Get([]byte(key)))
		}

		return nil
	}); err != nil {
		return "", fmt.Errorf("bolt.View: %v", err)
	}

	return value, nil
}

func (store *Store) Close() error {
	return store.db.Close()
}
