// Package storagetest provides an in-memory object store for tests.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ghuser/showcase/pkg/storage"
)

// BaseURL is the public URL prefix of objects in a MemStore.
const BaseURL = "https://img.test/bucket"

// MemStore keeps uploaded objects in a map. Set UploadErr to make uploads fail.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	seq     int

	UploadErr error
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{objects: map[string][]byte{}}
}

func (m *MemStore) Upload(_ context.Context, r io.Reader, _ int64, _, ext string) (storage.Object, error) {
	if m.UploadErr != nil {
		return storage.Object{}, m.UploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.Object{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	key := fmt.Sprintf("%s%d%s", storage.KeyPrefix, m.seq, ext)
	m.objects[key] = data
	return storage.Object{Key: key, URL: BaseURL + "/" + key}, nil
}

func (m *MemStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return errors.New("no such object")
	}
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *MemStore) KeyFromURL(raw string) (string, bool) {
	return storage.KeyFromURL(BaseURL, raw)
}

// Len returns the number of stored objects.
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Deleted lists the keys removed so far.
func (m *MemStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
