package persist

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("slots")

// Bolt stores the blob under key in a bbolt bucket.
type Bolt struct {
	db  *bolt.DB
	key []byte
}

// OpenBolt opens (creating if needed) the bolt file at path.
func OpenBolt(path, key string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("persist: open bolt: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("persist: create bucket: %w", err)
	}
	return &Bolt{db: db, key: []byte(key)}, nil
}

func (b *Bolt) Read() ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get(b.key)
		if v == nil {
			return ErrNoData
		}
		// v is only valid inside the transaction.
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Bolt) Write(v []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put(b.key, v)
	})
	if err != nil {
		return fmt.Errorf("persist: write bolt: %w", err)
	}
	return nil
}

func (b *Bolt) Close() error { return b.db.Close() }
