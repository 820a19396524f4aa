package storage

import (
	"context"
	"errors"
)

var ErrUnsupportedDriver = errors.New("unsupported storage driver")

// Document is the persisted shape of one exchange rate record
type Document struct {
	Key   string
	Date  string
	Base  string
	Rates map[string]float64
}

// Batch groups writes and deletes that are applied atomically
type Batch struct {
	Sets    []Document
	Deletes []string
}

func (b Batch) Empty() bool {
	return len(b.Sets) == 0 && len(b.Deletes) == 0
}

// Store abstracts the document store exchange rate records are kept in.
//
//go:generate mockgen -source storage.go -destination mock_store.go -package storage
type Store interface {
	// Exists reports whether a document with the key is stored
	Exists(ctx context.Context, key string) (bool, error)

	// StaleKeys returns up to limit keys of documents whose date is not one of keepDates
	StaleKeys(ctx context.Context, keepDates []string, limit int) ([]string, error)

	// Commit applies every write and delete of the batch or none of them
	Commit(ctx context.Context, batch Batch) error

	// Close releases any resources (no-op for in-memory).
	Close() error
}
