package docstore

import (
	"context"
	"errors"
	"sync"
)

// Ensure Memory implements Store at compile time.
var _ Store = (*Memory)(nil)

var errClosed = errors.New("store closed")

// Memory is an in-process Store. Documents list in insertion order.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
	closed      bool
}

type memCollection struct {
	order []string
	docs  map[string]Fields
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memCollection)}
}

// ListAll implements Store.
func (m *Memory) ListAll(ctx context.Context, collection string) ([]Document, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	col, ok := m.collections[collection]
	if !ok {
		return nil, nil
	}
	docs := make([]Document, 0, len(col.order))
	for _, key := range col.order {
		docs = append(docs, Document{Key: key, Fields: col.docs[key].Clone()})
	}
	return docs, nil
}

// GetOne implements Store.
func (m *Memory) GetOne(ctx context.Context, collection, key string) (Document, bool, error) {
	if err := m.check(ctx); err != nil {
		return Document{}, false, err
	}
	if err := validateKey(key); err != nil {
		return Document{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	col, ok := m.collections[collection]
	if !ok {
		return Document{}, false, nil
	}
	fields, ok := col.docs[key]
	if !ok {
		return Document{}, false, nil
	}
	return Document{Key: key, Fields: fields.Clone()}, true, nil
}

// SetOne implements Store.
func (m *Memory) SetOne(ctx context.Context, collection, key string, fields Fields, merge bool) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	normalized, err := Normalize(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.collections[collection]
	if !ok {
		col = &memCollection{docs: make(map[string]Fields)}
		m.collections[collection] = col
	}
	existing, ok := col.docs[key]
	if !ok {
		col.order = append(col.order, key)
		col.docs[key] = normalized
		return nil
	}
	if !merge {
		col.docs[key] = normalized
		return nil
	}
	for name, value := range normalized {
		existing[name] = value
	}
	return nil
}

// DeleteOne implements Store.
func (m *Memory) DeleteOne(ctx context.Context, collection, key string) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	col, ok := m.collections[collection]
	if !ok {
		return nil
	}
	if _, ok := col.docs[key]; !ok {
		return nil
	}
	delete(col.docs, key)
	for i, k := range col.order {
		if k == key {
			col.order = append(col.order[:i], col.order[i+1:]...)
			break
		}
	}
	return nil
}

// Close marks the store closed. Later calls report ErrUnavailable.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *Memory) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return unavailable("memory", "request", err)
	}
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return unavailable("memory", "request", errClosed)
	}
	return nil
}
