package invoice

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "analyses"

// ErrNotFound is returned when an analysis does not exist
var ErrNotFound = errors.New("analysis not found")

// DB defines the interface for database operations
type DB interface {
	// SaveAnalysis saves an analysis to the database
	SaveAnalysis(a *Analysis) error

	// GetAnalysis retrieves an analysis by ID
	GetAnalysis(id string) (*Analysis, error)

	// ListAnalyses returns all analyses, newest first
	ListAnalyses() ([]*Analysis, error)

	// DeleteAnalysis removes an analysis from the database
	DeleteAnalysis(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveAnalysis saves an analysis to the database
func (b *BoltDB) SaveAnalysis(a *Analysis) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("marshaling analysis: %w", err)
		}
		return tx.Bucket([]byte(bucketName)).Put([]byte(a.ID), data)
	})
}

// GetAnalysis retrieves an analysis by ID
func (b *BoltDB) GetAnalysis(id string) (*Analysis, error) {
	var a *Analysis
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListAnalyses returns all analyses, newest first
func (b *BoltDB) ListAnalyses() ([]*Analysis, error) {
	analyses := make([]*Analysis, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			var a Analysis
			if err := json.Unmarshal(v, &a); err != nil {
				return fmt.Errorf("unmarshaling analysis %s: %w", k, err)
			}
			analyses = append(analyses, &a)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].CreatedAt.After(analyses[j].CreatedAt)
	})
	return analyses, nil
}

// DeleteAnalysis removes an analysis from the database
func (b *BoltDB) DeleteAnalysis(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return bucket.Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
