// Package memory provides a thread-safe in-memory storage.Repository,
// suitable for tests and demo servers.
package memory

import (
	"strings"
	"sync"

	"github.com/jmcleod/authbox/storage"
)

// Repository is a thread-safe in-memory implementation of
// storage.Repository. Records are lost on restart.
type Repository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository creates an empty in-memory Repository.
func NewRepository() *Repository {
	return &Repository{data: make(map[string][]byte)}
}

func makeKey(recordType, recordID string) string {
	return recordType + ":" + recordID
}

func (r *Repository) Put(recordType, recordID string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[makeKey(recordType, recordID)] = append([]byte(nil), data...)
	return nil
}

func (r *Repository) Get(recordType, recordID string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.data[makeKey(recordType, recordID)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (r *Repository) List(recordType string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefix := recordType + ":"
	var ids []string
	for k := range r.data {
		if strings.HasPrefix(k, prefix) {
			ids = append(ids, strings.TrimPrefix(k, prefix))
		}
	}
	return ids, nil
}

func (r *Repository) Delete(recordType, recordID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := makeKey(recordType, recordID)
	if _, ok := r.data[k]; !ok {
		return storage.ErrNotFound
	}
	delete(r.data, k)
	return nil
}
