package objectstore

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Object is a stored body with its content type.
type Object struct {
	Body        []byte
	ContentType string
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string]Object
}

// NewMemoryStore returns an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: map[string]map[string]Object{}}
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	obj, ok := m.Object(bucket, key)
	if !ok {
		return nil, notFound(bucket, key)
	}
	return obj.Body, nil
}

// Object returns the stored object including its content type.
func (m *MemoryStore) Object(bucket, key string) (Object, bool) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return Object{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.buckets[bucket][cleaned]
	if !ok {
		return Object{}, false
	}
	return Object{Body: slices.Clone(obj.Body), ContentType: obj.ContentType}, true
}

// Put implements Store.
func (m *MemoryStore) Put(ctx context.Context, bucket, key string, body []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateBucket(bucket); err != nil {
		return "", err
	}
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	objects := m.buckets[bucket]
	if objects == nil {
		objects = map[string]Object{}
		m.buckets[bucket] = objects
	}
	objects[cleaned] = Object{Body: slices.Clone(body), ContentType: contentType}
	return cleaned, nil
}

// List implements Store. Keys are returned in lexical order.
func (m *MemoryStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix = normalizePrefix(prefix)
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for key := range m.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}
