package docstore

import (
	"context"
	"errors"
	"sync"
)

// Memory is a mutex-guarded in-process Store used by tests and by the
// development docstore driver. Semantics mirror the Postgres store,
// including upsert-by-key and text equality filters.
type Memory struct {
	hub *Hub

	mu          sync.RWMutex
	collections map[string]map[string]Document
}

// NewMemory constructs the store. The hub may be nil when subscriptions are
// not needed (most unit tests).
func NewMemory(hub *Hub) *Memory {
	return &Memory{
		hub:         hub,
		collections: make(map[string]map[string]Document),
	}
}

func (m *Memory) Get(ctx context.Context, collection, key string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.collections[collection][key]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(key, doc), nil
}

func (m *Memory) List(ctx context.Context, collection string) ([]Document, error) {
	return m.Query(ctx, collection, nil)
}

func (m *Memory) Query(ctx context.Context, collection string, filters []Filter) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]Document, 0)
	for key, doc := range m.collections[collection] {
		if matchesFilters(doc, filters) {
			docs = append(docs, cloneDoc(key, doc))
		}
	}
	return docs, nil
}

func (m *Memory) Create(ctx context.Context, collection, key string, doc Document) error {
	m.mu.Lock()
	if _, exists := m.collections[collection][key]; exists {
		m.mu.Unlock()
		return ErrDuplicateKey
	}
	m.put(collection, key, doc)
	m.mu.Unlock()

	m.notify(collection)
	return nil
}

func (m *Memory) Upsert(ctx context.Context, collection, key string, doc Document) error {
	m.mu.Lock()
	m.put(collection, key, doc)
	m.mu.Unlock()

	m.notify(collection)
	return nil
}

func (m *Memory) Update(ctx context.Context, collection, key string, patch Document) error {
	m.mu.Lock()
	existing, ok := m.collections[collection][key]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	merged := cloneDoc("", existing)
	delete(merged, "_key")
	for field, value := range patch {
		merged[field] = value
	}
	m.put(collection, key, merged)
	m.mu.Unlock()

	m.notify(collection)
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, key string) error {
	m.mu.Lock()
	if _, ok := m.collections[collection][key]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.collections[collection], key)
	m.mu.Unlock()

	m.notify(collection)
	return nil
}

func (m *Memory) Subscribe(collection string, filters []Filter, fn OnChange) (Unsubscribe, error) {
	if m.hub == nil {
		return nil, errors.New("docstore: subscriptions not enabled")
	}
	return m.hub.Subscribe(collection, filters, fn)
}

func (m *Memory) put(collection, key string, doc Document) {
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]Document)
	}
	stored := cloneDoc("", doc)
	delete(stored, "_key")
	m.collections[collection][key] = stored
}

func (m *Memory) notify(collection string) {
	if m.hub != nil {
		m.hub.Notify(collection)
	}
}

func matchesFilters(doc Document, filters []Filter) bool {
	for _, f := range filters {
		value, ok := doc[f.Field]
		if !ok || !matchText(value, f.Value) {
			return false
		}
	}
	return true
}

func cloneDoc(key string, doc Document) Document {
	out := make(Document, len(doc)+1)
	for field, value := range doc {
		out[field] = value
	}
	if key != "" {
		out["_key"] = key
	}
	return out
}
