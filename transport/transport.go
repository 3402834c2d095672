package transport

import (
	"context"
	"time"
)

// Message is a transport-level record handed to consumers.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Partition int
	Offset    int64
	Time      time.Time
	Headers   map[string]string
}

// MessageHandler processes a single consumed message. Returning an error
// logs a processing failure; the consumer continues with the next message.
type MessageHandler func(ctx context.Context, msg Message) error

// Producer is a publishing client bound to one transport.
//
// Start performs the broker handshake and is called at most once per process
// lifetime by the application core. Stop is terminal: a stopped producer is
// never restarted.
type Producer interface {
	// Start opens the connection to the broker.
	Start(ctx context.Context) error

	// Send queues the message for asynchronous delivery and returns once it
	// is buffered. No delivery guarantee is surfaced to the caller.
	Send(ctx context.Context, topic string, key, value []byte) error

	// SendAndWait blocks until the broker acknowledges (or rejects) delivery.
	SendAndWait(ctx context.Context, topic string, key, value []byte) error

	// Stop flushes and closes the producer.
	Stop(ctx context.Context) error
}

// Consumer reads messages from a single topic.
type Consumer interface {
	// Consume reads messages in a loop, invoking handler for each one. It
	// blocks until ctx is canceled or an unrecoverable error occurs.
	Consume(ctx context.Context, handler MessageHandler) error

	// Close releases the consumer's resources.
	Close() error

	// Topic returns the topic this consumer reads from.
	Topic() string
}

// Transport is the wire-protocol collaborator selected by URL scheme. It
// supplies producers and consumers; connection setup is deferred until a
// producer is started or a consumer begins reading.
type Transport interface {
	// NewProducer creates an unstarted producer bound to this transport.
	NewProducer() Producer

	// NewConsumer creates a consumer for the given topic.
	NewConsumer(topic string) (Consumer, error)
}
