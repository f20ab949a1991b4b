// Package history provides an optional BoltDB-backed record of training runs.
// It stores one summary per processed dataset so successive runs can be
// compared; it does not persist models or evaluation results.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const runsBucket = "runs"

// Record summarizes one dataset's trip through the pipeline.
type Record struct {
	Dataset    string        `json:"dataset"`
	Rows       int           `json:"rows"`
	Columns    int           `json:"columns"`
	Windows    int           `json:"windows"`
	SkipReason string        `json:"skip_reason,omitempty"`
	Duration   time.Duration `json:"duration"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Store persists run records using BoltDB.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the history database at the given directory.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "trainer-history.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(runsBucket)); err != nil {
			return fmt.Errorf("create runs bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Append stores one run record keyed by dataset name and record timestamp.
func (s *Store) Append(rec Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		key := fmt.Sprintf("%s_%d", rec.Dataset, rec.Timestamp.UnixNano())
		return b.Put([]byte(key), data)
	})
}

// List returns the records for a dataset within [from, to], oldest first.
func (s *Store) List(dataset string, from, to time.Time) ([]Record, error) {
	var records []Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		c := b.Cursor()

		prefix := []byte(dataset + "_")
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			if rec.Timestamp.Before(from) || rec.Timestamp.After(to) {
				continue
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}
