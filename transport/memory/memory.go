// Package memory implements an in-process fugue transport, registered under
// the "memory" URL scheme. Every transport opened from a memory URL holds its
// own isolated topic log, which makes it suitable for tests and local
// development without a broker.
package memory

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/streamhaus/fugue/logger"
	"github.com/streamhaus/fugue/transport"
)

func init() {
	transport.Register("memory", transport.DriverFunc(open))
}

// Transport keeps an ordered in-memory record log per topic and fans
// records out to subscribed consumers.
type Transport struct {
	log *logger.Logger

	mu     sync.Mutex
	topics map[string][]transport.Message
	subs   map[string][]chan transport.Message
}

var _ transport.Transport = (*Transport)(nil)

func open(_ *url.URL, _ transport.Config, log *logger.Logger) (transport.Transport, error) {
	return &Transport{
		log:    log.WithComponent("memory"),
		topics: make(map[string][]transport.Message),
		subs:   make(map[string][]chan transport.Message),
	}, nil
}

// NewProducer creates an unstarted producer writing into this transport.
func (t *Transport) NewProducer() transport.Producer {
	return &Producer{transport: t}
}

// NewConsumer creates a consumer subscribed to the given topic. Records
// published after subscription are delivered in publish order.
func (t *Transport) NewConsumer(topic string) (transport.Consumer, error) {
	ch := make(chan transport.Message, 128)

	t.mu.Lock()
	t.subs[topic] = append(t.subs[topic], ch)
	t.mu.Unlock()

	return &Consumer{
		transport: t,
		topic:     topic,
		ch:        ch,
		closed:    make(chan struct{}),
	}, nil
}

// Messages returns a copy of the records published to topic, in order.
func (t *Transport) Messages(topic string) []transport.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	msgs := make([]transport.Message, len(t.topics[topic]))
	copy(msgs, t.topics[topic])
	return msgs
}

func (t *Transport) publish(topic string, key, value []byte) {
	msg := transport.Message{
		Topic: topic,
		Key:   key,
		Value: value,
		Time:  time.Now(),
		Headers: map[string]string{
			"record-id": uuid.NewString(),
		},
	}

	t.mu.Lock()
	msg.Offset = int64(len(t.topics[topic]))
	t.topics[topic] = append(t.topics[topic], msg)
	subs := t.subs[topic]
	t.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- msg:
		default:
			t.log.Warn("Dropping record for slow consumer", map[string]interface{}{
				"topic": topic,
			})
		}
	}
}

// Producer appends records to the owning transport's topic logs.
type Producer struct {
	transport *Transport

	mu      sync.Mutex
	started bool
	closed  bool
}

var _ transport.Producer = (*Producer)(nil)

// Start marks the producer as connected.
func (p *Producer) Start(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return transport.ErrProducerClosed
	}
	p.started = true
	return nil
}

// SendAndWait publishes a record. Memory delivery is immediate, so the ack
// semantics collapse to a synchronous append.
func (p *Producer) SendAndWait(_ context.Context, topic string, key, value []byte) error {
	if err := p.check(); err != nil {
		return err
	}
	p.transport.publish(topic, key, value)
	return nil
}

// Send publishes a record without waiting. Identical to SendAndWait for the
// memory transport.
func (p *Producer) Send(ctx context.Context, topic string, key, value []byte) error {
	return p.SendAndWait(ctx, topic, key, value)
}

// Stop marks the producer as closed. Terminal.
func (p *Producer) Stop(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *Producer) check() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return transport.ErrProducerClosed
	}
	if !p.started {
		return transport.ErrNotConnected
	}
	return nil
}

// Consumer delivers records from a memory topic subscription.
type Consumer struct {
	transport *Transport
	topic     string
	ch        chan transport.Message

	closeOnce sync.Once
	closed    chan struct{}
}

var _ transport.Consumer = (*Consumer)(nil)

// Topic returns the subscribed topic.
func (c *Consumer) Topic() string { return c.topic }

// Consume invokes handler for each record until ctx is canceled or the
// consumer is closed.
func (c *Consumer) Consume(ctx context.Context, handler transport.MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.closed:
			return nil
		case msg := <-c.ch:
			if err := handler(ctx, msg); err != nil {
				c.transport.log.Error("Message processing failed", map[string]interface{}{
					"topic": c.topic,
					"error": err.Error(),
				})
			}
		}
	}
}

// Close detaches the consumer from the transport.
func (c *Consumer) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)

		c.transport.mu.Lock()
		subs := c.transport.subs[c.topic]
		for i, ch := range subs {
			if ch == c.ch {
				c.transport.subs[c.topic] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		c.transport.mu.Unlock()
	})
	return nil
}
