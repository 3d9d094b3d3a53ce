// Copyright (c) 2025 Open Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package kvstore

import (
	"context"
	"strings"
	"sync"
	"time"
)

// entry pairs a stored value with bookkeeping needed for Stats.
type entry struct {
	value      any
	storedAt   time.Time
	approxSize int64
}

// MemoryStore is the default, always-available backend: a mutex-guarded map
// of namespace -> key -> entry, grounded in the teacher's pkg/agent.Manager
// and pkg/coordinator.Coordinator lock discipline (single RWMutex, writers
// fully serialized, readers never observe a partial write because the
// critical section never crosses a write boundary).
type MemoryStore struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]entry
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{namespaces: make(map[string]map[string]entry)}
}

func normalizeNamespace(ns string) string {
	if ns == "" {
		return DefaultNamespace
	}
	return ns
}

// Store implements Store.
func (m *MemoryStore) Store(_ context.Context, key string, value any, namespace string) (StoreResult, error) {
	namespace = normalizeNamespace(namespace)

	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.namespaces[namespace]
	if !ok {
		bucket = make(map[string]entry)
		m.namespaces[namespace] = bucket
	}

	now := time.Now()
	bucket[key] = entry{value: value, storedAt: now, approxSize: approximateSize(value)}

	return StoreResult{
		ID:        namespace + "/" + key,
		Timestamp: now.UnixMilli(),
		Status:    "ok",
	}, nil
}

// Retrieve implements Store.
func (m *MemoryStore) Retrieve(_ context.Context, key string, namespace string) (any, error) {
	namespace = normalizeNamespace(namespace)

	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket, ok := m.namespaces[namespace]
	if !ok {
		return nil, nil
	}
	e, ok := bucket[key]
	if !ok {
		return nil, nil
	}
	return e.value, nil
}

// Search implements Store.
func (m *MemoryStore) Search(_ context.Context, pattern string, namespace string) (map[string]any, error) {
	namespace = normalizeNamespace(namespace)

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]any)
	bucket, ok := m.namespaces[namespace]
	if !ok {
		return result, nil
	}

	for k, e := range bucket {
		if pattern == "*" || strings.Contains(k, pattern) {
			result[k] = e.value
		}
	}
	return result, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, key string, namespace string) (bool, error) {
	namespace = normalizeNamespace(namespace)

	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.namespaces[namespace]
	if !ok {
		return false, nil
	}
	if _, ok := bucket[key]; !ok {
		return false, nil
	}
	delete(bucket, key)
	return true, nil
}

// ListNamespaces implements Store.
func (m *MemoryStore) ListNamespaces(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.namespaces))
	for ns := range m.namespaces {
		out = append(out, ns)
	}
	return out, nil
}

// Stats implements Store.
func (m *MemoryStore) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		entries      int
		size         int64
		lastModified time.Time
		namespaces   []string
	)

	for ns, bucket := range m.namespaces {
		namespaces = append(namespaces, ns)
		for _, e := range bucket {
			entries++
			size += e.approxSize
			if e.storedAt.After(lastModified) {
				lastModified = e.storedAt
			}
		}
	}

	return Stats{
		Entries:      entries,
		SizeBytes:    size,
		LastModified: lastModified.UnixMilli(),
		Namespaces:   namespaces,
	}, nil
}

// approximateSize gives a rough byte estimate without a full JSON encode,
// good enough for the advisory Stats.SizeBytes field.
func approximateSize(value any) int64 {
	switch v := value.(type) {
	case string:
		return int64(len(v))
	case []byte:
		return int64(len(v))
	default:
		return 64
	}
}
