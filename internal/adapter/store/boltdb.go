package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"arcutil/internal/domain"
)

var (
	bucketRecords = []byte("records")
	bucketMeta    = []byte("meta")
)

// BoltStore is the on-disk manifest of archived files, keyed by entry name.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketRecords, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

type recordMeta struct {
	Size    int64  `json:"size"`
	ModTime int64  `json:"mod_time"`
	Digest  string `json:"digest"`
}

func (s *BoltStore) PutRecord(rec domain.ManifestRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putRecord(tx.Bucket(bucketRecords), rec)
	})
}

// ApplyRecords writes put and deletes remove in a single transaction.
func (s *BoltStore) ApplyRecords(put []domain.ManifestRecord, remove []string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		for _, rec := range put {
			if err := putRecord(b, rec); err != nil {
				return fmt.Errorf("failed to store record %s: %w", rec.Name, err)
			}
		}
		for _, name := range remove {
			if err := b.Delete([]byte(name)); err != nil {
				return fmt.Errorf("failed to delete record %s: %w", name, err)
			}
		}
		return nil
	})
}

func putRecord(b *bbolt.Bucket, rec domain.ManifestRecord) error {
	data, err := json.Marshal(recordMeta{
		Size:    rec.Size,
		ModTime: rec.ModTime.Unix(),
		Digest:  rec.Digest,
	})
	if err != nil {
		return err
	}
	return b.Put([]byte(rec.Name), data)
}

func (s *BoltStore) GetRecord(name string) (domain.ManifestRecord, bool, error) {
	var (
		rec   domain.ManifestRecord
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRecords).Get([]byte(name))
		if data == nil {
			return nil
		}
		var meta recordMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return fmt.Errorf("failed to decode record %s: %w", name, err)
		}
		rec = toRecord(name, meta)
		found = true
		return nil
	})
	return rec, found, err
}

func (s *BoltStore) DeleteRecord(name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).Delete([]byte(name))
	})
}

// ListRecords returns every record ordered by name.
func (s *BoltStore) ListRecords() ([]domain.ManifestRecord, error) {
	var records []domain.ManifestRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).ForEach(func(k, v []byte) error {
			var meta recordMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return fmt.Errorf("failed to decode record %s: %w", k, err)
			}
			records = append(records, toRecord(string(k), meta))
			return nil
		})
	})
	return records, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func toRecord(name string, meta recordMeta) domain.ManifestRecord {
	return domain.ManifestRecord{
		Name:    name,
		Size:    meta.Size,
		ModTime: time.Unix(meta.ModTime, 0),
		Digest:  meta.Digest,
	}
}
