// Package natspub forwards the event records of the registry to NATS subjects,
// one subject per event name.
package natspub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cloud-barista/cb-subnet/pkg/event"
	"github.com/cloud-barista/cb-subnet/pkg/logger"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CBLogger represents a logger to show execution processes according to the logging level.
var CBLogger *logrus.Logger

func init() {
	CBLogger = logger.GetLogger()
}

const subscriberBuffer = 1024

// ErrNotConnected is returned when publishing on a closed connection.
var ErrNotConnected = errors.New("nats not connected")

// conn is the part of *nats.Conn used by the Publisher.
type conn interface {
	Publish(subject string, data []byte) error
	IsClosed() bool
	Drain() error
	Close()
}

// Publisher represents a NATS publisher of event records.
type Publisher struct {
	nc      conn
	subject string
}

// NewPublisher connects to the NATS server at url. Records are published to "<subject>.<event name>".
func NewPublisher(url, subject string) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("cb-subnet-registry"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			CBLogger.Warnf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			CBLogger.Infof("nats reconnected to %s", nc.ConnectedUrl())
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to nats at %s", url)
	}
	CBLogger.Infof("The NATS connection is established (%s)", url)
	return &Publisher{nc: nc, subject: subject}, nil
}

// Subject returns the subject of an event record.
func Subject(base string, name event.Name) string {
	return base + "." + string(name)
}

// Publish represents a function to publish one event record.
func (p *Publisher) Publish(ctx context.Context, e event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.nc == nil || p.nc.IsClosed() {
		return ErrNotConnected
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}
	CBLogger.Tracef("Publish %s: %s", Subject(p.subject, e.Name), payload)
	return p.nc.Publish(Subject(p.subject, e.Name), payload)
}

// Start represents a function to publish every record emitted to log from now on, until ctx is done.
func (p *Publisher) Start(ctx context.Context, log *event.Log) {
	records, cancel := log.Subscribe(subscriberBuffer)
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-records:
				if !ok {
					return
				}
				if err := p.Publish(ctx, e); err != nil {
					CBLogger.Errorf("Can't publish event %d: %v", e.Sequence, err)
				}
			}
		}
	}()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			CBLogger.Debug(err)
		}
		p.nc.Close()
	}
}
