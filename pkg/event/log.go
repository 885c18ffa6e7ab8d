package event

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	etcdkey "github.com/cloud-barista/cb-subnet/pkg/etcd-key"
	"github.com/cloud-barista/cb-subnet/pkg/logger"
	"github.com/cloud-barista/cb-subnet/pkg/store"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CBLogger represents a logger to show execution processes according to the logging level.
var CBLogger *logrus.Logger

func init() {
	CBLogger = logger.GetLogger()
}

const storeTimeout = 5 * time.Second

// Log represents an append-only, sequenced log of event records.
// Subscribers receive every record emitted after they subscribed.
type Log struct {
	mutex       sync.RWMutex
	records     []Event
	subscribers map[int]chan Event
	nextSubID   int
	store       store.Store
	now         func() time.Time
}

var _ Emitter = (*Log)(nil)

// LogOption configures a Log.
type LogOption func(*Log)

// WithStore writes every record to s under etcdkey.Event.
func WithStore(s store.Store) LogOption {
	return func(l *Log) {
		l.store = s
	}
}

// WithClock replaces time.Now as the source of record timestamps.
func WithClock(now func() time.Time) LogOption {
	return func(l *Log) {
		l.now = now
	}
}

// NewLog represents a constructor of Log.
func NewLog(opts ...LogOption) *Log {
	l := &Log{
		subscribers: make(map[int]chan Event),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load restores the records kept in the store, so sequences continue after a restart.
func (l *Log) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	kvs, err := l.store.GetWithPrefix(ctx, etcdkey.Event+"/")
	if err != nil {
		return err
	}

	records := make([]Event, 0, len(kvs))
	for _, kv := range kvs {
		var e Event
		if err := json.Unmarshal([]byte(kv.Value), &e); err != nil {
			return errors.Wrapf(err, "decode %s", kv.Key)
		}
		records = append(records, e)
	}

	l.mutex.Lock()
	l.records = records
	l.mutex.Unlock()
	CBLogger.Debugf("Loaded %d event records", len(records))
	return nil
}

// Emit assigns the sequence, id and timestamp of e, appends it and fans it out.
// A subscriber whose buffer is full misses the record.
func (l *Log) Emit(e Event) Event {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	e.Sequence = uint64(len(l.records)) + 1
	e.ID = uuid.NewString()
	e.Timestamp = l.now().UTC()
	l.records = append(l.records, e)

	if l.store != nil {
		l.write(e)
	}

	for id, ch := range l.subscribers {
		select {
		case ch <- e:
		default:
			CBLogger.Warnf("Subscriber %d is full, drop event %d (%s)", id, e.Sequence, e.Name)
		}
	}
	return e
}

func (l *Log) write(e Event) {
	doc, err := json.Marshal(e)
	if err != nil {
		CBLogger.Error(err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := l.store.Put(ctx, etcdkey.EventKey(e.Sequence), string(doc)); err != nil {
		CBLogger.Errorf("Can't write event %d: %v", e.Sequence, err)
	}
}

// Since returns the records whose sequence is greater than seq, in order.
func (l *Log) Since(seq uint64) []Event {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if seq >= uint64(len(l.records)) {
		return []Event{}
	}
	out := make([]Event, len(l.records)-int(seq))
	copy(out, l.records[seq:])
	return out
}

// Len returns the number of records.
func (l *Log) Len() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return len(l.records)
}

// Subscribe returns a channel receiving every record emitted from now on,
// and a function releasing the subscription and closing the channel.
func (l *Log) Subscribe(buffer int) (<-chan Event, func()) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	id := l.nextSubID
	l.nextSubID++
	ch := make(chan Event, buffer)
	l.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mutex.Lock()
			defer l.mutex.Unlock()
			delete(l.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}
