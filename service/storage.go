package service

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

var bucketName = []byte("proofs")

// ProofStore is a bbolt-backed ProofSource. A real authority derives proofs
// from its persisted tree; here the store holds the ordered sibling digests
// per item directly, keyed by item identifier.
type ProofStore struct {
	db *bbolt.DB
}

func NewProofStore(dbPath string) (*ProofStore, error) {
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &ProofStore{db: db}, nil
}

func (s *ProofStore) Close() error {
	return s.db.Close()
}

// Put stores the proof stream for item, replacing any previous one.
func (s *ProofStore) Put(item string, nodes []string) error {
	data, err := json.Marshal(nodes)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		return b.Put([]byte(item), data)
	})
}

// Lookup returns the stored proof stream for item.
func (s *ProofStore) Lookup(item string) ([]string, error) {
	var nodes []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		v := b.Get([]byte(item))
		if v == nil {
			return fmt.Errorf("no proof recorded for item: %s", item)
		}
		return json.Unmarshal(v, &nodes)
	})
	return nodes, err
}
