package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Etcd is a Store backed by an etcd cluster.
type Etcd struct {
	client *clientv3.Client
}

var _ Store = (*Etcd)(nil)

// NewEtcd connects to the etcd cluster at endpoints.
func NewEtcd(endpoints []string) (*Etcd, error) {
	etcdClient, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect to etcd")
	}
	CBLogger.Infoln("The etcdClient is connected.")
	return &Etcd{client: etcdClient}, nil
}

// NewEtcdWithClient wraps an existing etcd client.
func NewEtcdWithClient(client *clientv3.Client) *Etcd {
	return &Etcd{client: client}
}

// Put stores value at key.
func (e *Etcd) Put(ctx context.Context, key, value string) error {
	CBLogger.Tracef("Put %s: %s", key, value)
	if _, err := e.client.Put(ctx, key, value); err != nil {
		return errors.Wrapf(err, "put %s", key)
	}
	return nil
}

// PutAll stores every pair in a single transaction.
func (e *Etcd) PutAll(ctx context.Context, kvs ...KeyValue) error {
	ops := make([]clientv3.Op, 0, len(kvs))
	for _, kv := range kvs {
		CBLogger.Tracef("Put %s: %s", kv.Key, kv.Value)
		ops = append(ops, clientv3.OpPut(kv.Key, kv.Value))
	}
	if _, err := e.client.Txn(ctx).Then(ops...).Commit(); err != nil {
		return errors.Wrap(err, "put all")
	}
	return nil
}

// Get returns the value at key or ErrNotFound.
func (e *Etcd) Get(ctx context.Context, key string) (string, error) {
	resp, err := e.client.Get(ctx, key)
	if err != nil {
		return "", errors.Wrapf(err, "get %s", key)
	}
	if len(resp.Kvs) == 0 {
		return "", errors.Wrapf(ErrNotFound, "get %s", key)
	}
	return string(resp.Kvs[0].Value), nil
}

// GetWithPrefix returns every pair whose key starts with prefix.
func (e *Etcd) GetWithPrefix(ctx context.Context, prefix string) ([]KeyValue, error) {
	resp, err := e.client.Get(ctx, prefix, clientv3.WithPrefix(), clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	if err != nil {
		return nil, errors.Wrapf(err, "get with prefix %s", prefix)
	}
	kvs := make([]KeyValue, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		kvs = append(kvs, KeyValue{Key: string(kv.Key), Value: string(kv.Value)})
	}
	return kvs, nil
}

// Delete removes key.
func (e *Etcd) Delete(ctx context.Context, key string) error {
	if _, err := e.client.Delete(ctx, key); err != nil {
		return errors.Wrapf(err, "delete %s", key)
	}
	return nil
}

// Close closes the etcd client.
func (e *Etcd) Close() error {
	return e.client.Close()
}
