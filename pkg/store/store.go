// Package store provides the key-value persistence used by the registry.
//
// Values are plain strings (JSON documents). Three backends are available:
// etcd (shared by several registry instances), Badger (embedded) and memory.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cloud-barista/cb-subnet/pkg/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CBLogger represents a logger to show execution processes according to the logging level.
var CBLogger *logrus.Logger

func init() {
	CBLogger = logger.GetLogger()
}

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("key not found")

// KeyValue represents a key and its value.
type KeyValue struct {
	Key   string
	Value string
}

// Store is implemented by every storage backend.
// GetWithPrefix returns the pairs sorted by key.
// PutAll writes every pair or none of them.
type Store interface {
	Put(ctx context.Context, key, value string) error
	PutAll(ctx context.Context, kvs ...KeyValue) error
	Get(ctx context.Context, key string) (string, error)
	GetWithPrefix(ctx context.Context, prefix string) ([]KeyValue, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Memory is an in-memory Store.
type Memory struct {
	mutex sync.RWMutex
	kvs   map[string]string
}

var _ Store = (*Memory)(nil)

// NewMemory represents a constructor of Memory.
func NewMemory() *Memory {
	return &Memory{kvs: make(map[string]string)}
}

// Put stores value at key.
func (m *Memory) Put(ctx context.Context, key, value string) error {
	return m.PutAll(ctx, KeyValue{Key: key, Value: value})
}

// PutAll stores every pair.
func (m *Memory) PutAll(ctx context.Context, kvs ...KeyValue) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "put")
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, kv := range kvs {
		m.kvs[kv.Key] = kv.Value
	}
	return nil
}

// Get returns the value at key or ErrNotFound.
func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, "get")
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	v, ok := m.kvs[key]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "get %s", key)
	}
	return v, nil
}

// GetWithPrefix returns every pair whose key starts with prefix.
func (m *Memory) GetWithPrefix(ctx context.Context, prefix string) ([]KeyValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "get with prefix")
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	var kvs []KeyValue
	for k, v := range m.kvs {
		if strings.HasPrefix(k, prefix) {
			kvs = append(kvs, KeyValue{Key: k, Value: v})
		}
	}
	sort.Slice(kvs, func(i, j int) bool { return kvs[i].Key < kvs[j].Key })
	return kvs, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "delete")
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.kvs, key)
	return nil
}

// Close does nothing for Memory.
func (m *Memory) Close() error {
	return nil
}
