package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	etcdkey "github.com/cloud-barista/cb-subnet/pkg/etcd-key"
	"github.com/cloud-barista/cb-subnet/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitAssignsSequence(t *testing.T) {
	fixed := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	l := NewLog(WithClock(func() time.Time { return fixed }))

	e1 := l.Emit(NewPeerAdded(0, "abc123"))
	e2 := l.Emit(NewPeerRemoved(0, "abc123"))

	assert.Equal(t, uint64(1), e1.Sequence)
	assert.Equal(t, uint64(2), e2.Sequence)
	assert.NotEmpty(t, e1.ID)
	assert.NotEqual(t, e1.ID, e2.ID)
	assert.Equal(t, fixed, e1.Timestamp)
	assert.Equal(t, 2, l.Len())
}

func TestSince(t *testing.T) {
	l := NewLog()
	l.Emit(NewNetworkCreated(0, "c0", "A"))
	l.Emit(NewNetworkCreated(1, "c1", "B"))
	l.Emit(NewNetworkDeleted(0, "A"))

	all := l.Since(0)
	require.Len(t, all, 3)
	assert.Equal(t, NetworkCreated, all[0].Name)

	tail := l.Since(2)
	require.Len(t, tail, 1)
	assert.Equal(t, NetworkDeleted, tail[0].Name)
	assert.Equal(t, 0, *tail[0].Args.NetworkID)

	assert.Empty(t, l.Since(3))
	assert.Empty(t, l.Since(10))
}

func TestSubscribe(t *testing.T) {
	l := NewLog()
	l.Emit(NewUserRegistered("abc123", "111aaa"))

	ch, cancel := l.Subscribe(4)
	l.Emit(NewPeerRelationAdded(0, "abc123", "456xyz"))

	select {
	case e := <-ch:
		assert.Equal(t, PeerRelationAdded, e.Name)
		assert.Equal(t, "abc123", e.Args.PubKeyHashMine)
		assert.Equal(t, "456xyz", e.Args.PubKeyHashOther)
		assert.Equal(t, uint64(2), e.Sequence)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)

	l.Emit(NewPeerAdded(0, "omg789"))
	assert.Equal(t, 3, l.Len())
}

func TestSubscriberFullDoesNotBlock(t *testing.T) {
	l := NewLog()
	ch, cancel := l.Subscribe(1)
	defer cancel()

	l.Emit(NewPeerAdded(0, "abc123"))
	l.Emit(NewPeerAdded(0, "456xyz"))

	e := <-ch
	assert.Equal(t, "abc123", e.Args.PubKeyHash)
	assert.Equal(t, 2, l.Len())
}

func TestUserRegisteredHasNoNetwork(t *testing.T) {
	doc, err := json.Marshal(NewUserRegistered("abc123", "111aaa"))
	require.NoError(t, err)
	assert.NotContains(t, string(doc), "networkId")
	assert.Contains(t, string(doc), `"macHash":"111aaa"`)

	doc, err = json.Marshal(NewNetworkStateUpdated(3, false))
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"networkId":3`)
	assert.Contains(t, string(doc), `"active":false`)
}

func TestStoreWriteThroughAndLoad(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	l := NewLog(WithStore(s))
	l.Emit(NewNetworkCreated(0, "c0", "A"))
	l.Emit(NewPeerAdded(0, "abc123"))

	v, err := s.Get(ctx, etcdkey.EventKey(2))
	require.NoError(t, err)
	assert.Contains(t, v, `"event":"PeerAdded"`)

	restored := NewLog(WithStore(s))
	require.NoError(t, restored.Load(ctx))
	assert.Equal(t, 2, restored.Len())

	e := restored.Emit(NewPeerRemoved(0, "abc123"))
	assert.Equal(t, uint64(3), e.Sequence)
}

func TestDiscard(t *testing.T) {
	e := Discard.Emit(NewPeerAdded(1, "abc123"))
	assert.Equal(t, PeerAdded, e.Name)
	assert.Zero(t, e.Sequence)
}
