// Package bus publishes domain events to NATS JetStream.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/nats-io/nats.go"
)

const (
	// StreamName is the JetStream stream holding every domain event
	StreamName = "REVIEW_EVENTS"
	// SubjectPrefix prefixes every event subject
	SubjectPrefix = "review."
)

// Event subjects
const (
	SubjectReviewPosted        = SubjectPrefix + "review.posted"
	SubjectReviewStatusChanged = SubjectPrefix + "review.status_changed"
	SubjectReviewDeleted       = SubjectPrefix + "review.deleted"
	SubjectBrandCreated        = SubjectPrefix + "brand.created"
	SubjectBrandVerified       = SubjectPrefix + "brand.verified"
	SubjectProductCreated      = SubjectPrefix + "product.created"
	SubjectProductMerged       = SubjectPrefix + "product.merged"
	SubjectProductDeleted      = SubjectPrefix + "product.deleted"
)

// Bus wraps a NATS JetStream connection. A nil *Bus drops every event.
type Bus struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

var marshalEvent = json.Marshal

// New creates a Bus connected to the provided NATS endpoint and makes sure the
// event stream exists.
func New(url string, opts ...nats.Option) (*Bus, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	if _, err := js.StreamInfo(StreamName); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			nc.Close()
			return nil, err
		}
		if _, err := js.AddStream(&nats.StreamConfig{
			Name:     StreamName,
			Subjects: []string{SubjectPrefix + ">"},
		}); err != nil {
			nc.Close()
			return nil, err
		}
	}

	return &Bus{conn: nc, js: js}, nil
}

// Close shuts down the underlying NATS connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// Enabled reports whether events actually leave the process
func (b *Bus) Enabled() bool {
	return b != nil
}

// Publish encodes v as JSON and publishes it to the given subject.
func (b *Bus) Publish(ctx context.Context, subj string, v any) error {
	if b == nil {
		return nil
	}

	data, err := marshalEvent(v)
	if err != nil {
		return err
	}

	_, err = b.js.Publish(subj, data, nats.Context(ctx))
	return err
}

type subscription struct {
	sub    *nats.Subscription
	mu     sync.Mutex
	closed bool
}

func (s *subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.sub.Drain()
}

// Subscribe creates a durable consumer on the given subject and invokes fn for each message.
func (b *Bus) Subscribe(ctx context.Context, subj, durable string, fn func(ctx context.Context, subject string, data []byte) error) (io.Closer, error) {
	if b == nil {
		return nil, errors.New("nil bus")
	}
	if fn == nil {
		return nil, errors.New("nil handler")
	}

	handler := func(msg *nats.Msg) {
		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		if err := fn(handlerCtx, msg.Subject, msg.Data); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}

	sub, err := b.js.Subscribe(subj, handler, nats.Durable(durable), nats.ManualAck(), nats.AckExplicit())
	if err != nil {
		return nil, err
	}

	s := &subscription{sub: sub}

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	return s, nil
}
