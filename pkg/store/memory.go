package store

import (
	"context"
	"sort"
	"sync"

	"github.com/easelkit/easel/pkg/scene"
)

// MemoryStore keeps documents in a process-local map. Useful for tests and
// throwaway sessions.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string][]byte{}}
}

func (s *MemoryStore) Save(ctx context.Context, doc *scene.Document) error {
	if err := validateDoc(doc); err != nil {
		return err
	}
	// Documents are stored serialized so callers cannot mutate a stored
	// document through a retained pointer.
	data, err := scene.MarshalDocument(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = data
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*scene.Document, error) {
	s.mu.RLock()
	data, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	return scene.UnmarshalDocument(data)
}

func (s *MemoryStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Info, 0, len(s.docs))
	for _, data := range s.docs {
		doc, err := scene.UnmarshalDocument(data)
		if err != nil {
			continue
		}
		out = append(out, InfoOf(doc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
