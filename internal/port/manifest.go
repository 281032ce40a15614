package port

import "arcutil/internal/domain"

type ManifestStore interface {
	PutRecord(rec domain.ManifestRecord) error

	GetRecord(name string) (domain.ManifestRecord, bool, error)

	DeleteRecord(name string) error

	ListRecords() ([]domain.ManifestRecord, error)

	// ApplyRecords stores put and deletes remove as one unit: either every
	// change is visible afterwards or none is.
	ApplyRecords(put []domain.ManifestRecord, remove []string) error

	Close() error
}
