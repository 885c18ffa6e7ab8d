package natspub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cloud-barista/cb-subnet/pkg/event"
	msgtype "github.com/cloud-barista/cb-subnet/pkg/message-type"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	subject string
	data    string
}

type fakeConn struct {
	mutex    sync.Mutex
	messages []message
	closed   bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.messages = append(c.messages, message{subject: subject, data: string(data)})
	return nil
}

func (c *fakeConn) IsClosed() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.closed
}

func (c *fakeConn) Drain() error { return nil }

func (c *fakeConn) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.closed = true
}

func (c *fakeConn) published() []message {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]message{}, c.messages...)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "cb-subnet.events.PeerAdded", Subject("cb-subnet.events", event.PeerAdded))
}

func TestPublish(t *testing.T) {
	nc := &fakeConn{}
	p := &Publisher{nc: nc, subject: "cb-subnet.events"}

	require.NoError(t, p.Publish(context.Background(), event.NewPeerAdded(0, "abc123")))
	msgs := nc.published()
	require.Len(t, msgs, 1)
	assert.Equal(t, "cb-subnet.events.PeerAdded", msgs[0].subject)
	assert.Equal(t, "PeerAdded", msgtype.ParseEventName(msgs[0].data))

	p.Close()
	assert.ErrorIs(t, p.Publish(context.Background(), event.NewPeerAdded(0, "abc123")), ErrNotConnected)
}

func TestStartForwardsRecords(t *testing.T) {
	nc := &fakeConn{}
	p := &Publisher{nc: nc, subject: "s"}
	log := event.NewLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx, log)

	log.Emit(event.NewNetworkCreated(0, "c0", "A"))
	log.Emit(event.NewUserRegistered("abc123", "111aaa"))

	require.Eventually(t, func() bool { return len(nc.published()) == 2 }, 5*time.Second, 10*time.Millisecond)
	msgs := nc.published()
	assert.Equal(t, "s.NetworkCreated", msgs[0].subject)
	assert.Equal(t, "s.UserRegistered", msgs[1].subject)
}

func TestNewPublisherUnreachable(t *testing.T) {
	_, err := NewPublisher("nats://127.0.0.1:1", "s")
	assert.Error(t, err)
}
