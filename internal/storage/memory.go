package storage

import (
	"context"
	"sort"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps documents in a map, used for tests and local runs
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewMemory() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.docs[key]
	return ok, nil
}

// Get returns a copy of the stored document
func (m *MemoryStore) Get(_ context.Context, key string) (Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[key]
	if !ok {
		return Document{}, false
	}

	return copyDocument(doc), true
}

// Len returns the number of stored documents
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.docs)
}

// StaleKeys is ordered by key
func (m *MemoryStore) StaleKeys(_ context.Context, keepDates []string, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keep := make(map[string]struct{}, len(keepDates))
	for _, d := range keepDates {
		keep[d] = struct{}{}
	}

	keys := make([]string, 0)
	for key, doc := range m.docs {
		if _, ok := keep[doc.Date]; ok {
			continue
		}

		keys = append(keys, key)
	}

	sort.Strings(keys)

	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	return keys, nil
}

func (m *MemoryStore) Commit(_ context.Context, batch Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range batch.Sets {
		m.docs[doc.Key] = copyDocument(doc)
	}

	for _, key := range batch.Deletes {
		delete(m.docs, key)
	}

	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func copyDocument(doc Document) Document {
	rates := make(map[string]float64, len(doc.Rates))
	for k, v := range doc.Rates {
		rates[k] = v
	}
	doc.Rates = rates

	return doc
}
