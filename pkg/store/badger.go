package store

import (
	"context"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// Badger is a Store backed by an embedded Badger database.
type Badger struct {
	db *badger.DB
}

var _ Store = (*Badger)(nil)

// NewBadger opens (or creates) a Badger database in dir.
func NewBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(filepath.Clean(dir))
	opts.Logger = nil
	opts = opts.WithValueLogFileSize(1 << 20)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open badger at %s", dir)
	}
	return &Badger{db: db}, nil
}

// Put stores value at key.
func (b *Badger) Put(ctx context.Context, key, value string) error {
	return b.PutAll(ctx, KeyValue{Key: key, Value: value})
}

// PutAll stores every pair in a single transaction.
func (b *Badger) PutAll(ctx context.Context, kvs ...KeyValue) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "put all")
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		for _, kv := range kvs {
			CBLogger.Tracef("Put %s: %s", kv.Key, kv.Value)
			if err := txn.Set([]byte(kv.Key), []byte(kv.Value)); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "put all")
}

// Get returns the value at key or ErrNotFound.
func (b *Badger) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, "get")
	}
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return "", errors.Wrapf(err, "get %s", key)
	}
	return string(value), nil
}

// GetWithPrefix returns every pair whose key starts with prefix.
func (b *Badger) GetWithPrefix(ctx context.Context, prefix string) ([]KeyValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "get with prefix")
	}
	var kvs []KeyValue
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			kvs = append(kvs, KeyValue{Key: string(item.KeyCopy(nil)), Value: string(v)})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "get with prefix %s", prefix)
	}
	return kvs, nil
}

// Delete removes key.
func (b *Badger) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "delete")
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	return errors.Wrapf(err, "delete %s", key)
}

// Close closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}
