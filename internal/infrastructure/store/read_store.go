package store

import "sync"

// ReadStoreInterface is the storage the projector writes read models into.
type ReadStoreInterface interface {
	Set(collection, id string, data any)
	Get(collection, id string) (any, bool)
	GetAll(collection string) []any
	Delete(collection, id string)
	Update(collection, id string, updateFn func(current any) any) bool
}

// ReadStore is the in-memory read model store.
type ReadStore struct {
	mu   sync.RWMutex
	data map[string]map[string]any // collection -> id -> data
}

func NewReadStore() *ReadStore {
	return &ReadStore{data: make(map[string]map[string]any)}
}

func (rs *ReadStore) Set(collection, id string, data any) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.data[collection] == nil {
		rs.data[collection] = make(map[string]any)
	}
	rs.data[collection][id] = data
}

func (rs *ReadStore) Get(collection, id string) (any, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	if rs.data[collection] == nil {
		return nil, false
	}
	data, ok := rs.data[collection][id]
	return data, ok
}

func (rs *ReadStore) GetAll(collection string) []any {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	var items []any
	for _, item := range rs.data[collection] {
		items = append(items, item)
	}
	return items
}

func (rs *ReadStore) Delete(collection, id string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.data[collection] != nil {
		delete(rs.data[collection], id)
	}
}

func (rs *ReadStore) Update(collection, id string, updateFn func(current any) any) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.data[collection] == nil {
		return false
	}
	current, ok := rs.data[collection][id]
	if !ok {
		return false
	}
	rs.data[collection][id] = updateFn(current)
	return true
}
