package memstore

import (
	"sort"
	"sync"

	"arcutil/internal/domain"
)

// MemoryStore is a manifest kept in process memory. It forgets everything
// on Close.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.ManifestRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]domain.ManifestRecord),
	}
}

func (s *MemoryStore) PutRecord(rec domain.ManifestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Name] = rec
	return nil
}

func (s *MemoryStore) GetRecord(name string) (domain.ManifestRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[name]
	return rec, ok, nil
}

func (s *MemoryStore) DeleteRecord(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, name)
	return nil
}

func (s *MemoryStore) ApplyRecords(put []domain.ManifestRecord, remove []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range put {
		s.records[rec.Name] = rec
	}
	for _, name := range remove {
		delete(s.records, name)
	}
	return nil
}

// ListRecords returns every record ordered by name, matching BoltStore.
func (s *MemoryStore) ListRecords() ([]domain.ManifestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.ManifestRecord, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
	return records, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]domain.ManifestRecord)
	return nil
}
