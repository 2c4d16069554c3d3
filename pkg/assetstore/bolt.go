package assetstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
)

// AnimationsBucket holds one JSON descriptor per asset name.
const AnimationsBucket = "animations"

// BoltStore is a Store persisted in a bbolt database file. A read-only
// store over a missing file has no db and finds nothing.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStoreReadOnly opens an existing asset database without writing to
// it. A missing file yields an empty store, so lookups report
// errors.ErrAssetNotFound and nothing is created on disk.
func OpenBoltStoreReadOnly(path string) (*BoltStore, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return &BoltStore{}, nil
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open asset database %s: %w", path, err)
	}
	return &BoltStore{db: db}, nil
}

// OpenBoltStore opens (creating if needed) a bbolt asset database.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open asset database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(AnimationsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create %s bucket: %w", AnimationsBucket, err)
	}

	return &BoltStore{db: db}, nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) Lookup(_ context.Context, name string) (Descriptor, error) {
	if s.db == nil {
		return Descriptor{}, notFound(name)
	}

	var d Descriptor
	err := s.db.View(func(tx *bolt.Tx) error {
		buck := tx.Bucket([]byte(AnimationsBucket))
		if buck == nil {
			return notFound(name)
		}

		data := buck.Get([]byte(name))
		if data == nil {
			return notFound(name)
		}

		if err := json.Unmarshal(data, &d); err != nil {
			return fmt.Errorf("corrupt descriptor for %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// Put stores a single descriptor.
func (s *BoltStore) Put(d Descriptor) error {
	return s.Import([]Descriptor{d})
}

// Import stores all descriptors in one transaction. Nothing is written if
// any descriptor is invalid.
func (s *BoltStore) Import(descriptors []Descriptor) error {
	if s.db == nil {
		return fmt.Errorf("asset database is not open for writing")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		buck, err := tx.CreateBucketIfNotExists([]byte(AnimationsBucket))
		if err != nil {
			return err
		}

		for _, d := range descriptors {
			if err := d.Validate(); err != nil {
				return err
			}
			data, err := json.Marshal(d)
			if err != nil {
				return fmt.Errorf("failed to encode %q: %w", d.Name, err)
			}
			if err := buck.Put([]byte(d.Name), data); err != nil {
				return fmt.Errorf("failed to store %q: %w", d.Name, err)
			}
		}
		return nil
	})
}

// Names returns every stored asset name in key order.
func (s *BoltStore) Names() ([]string, error) {
	var names []string
	if s.db == nil {
		return names, nil
	}
	err := s.db.View(func(tx *bolt.Tx) error {
		buck := tx.Bucket([]byte(AnimationsBucket))
		if buck == nil {
			return nil
		}
		return buck.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}
