package fugue

import (
	"context"
	"fmt"
	"time"

	"github.com/streamhaus/fugue/codec"
	"github.com/streamhaus/fugue/transport"
)

// sendOptions carries per-send overrides.
type sendOptions struct {
	wait        bool
	keyCodec    string
	keyCodecSet bool
}

// SendOption customizes a single send.
type SendOption func(*sendOptions)

// NoWait makes the send return once the message is queued for asynchronous
// delivery instead of waiting for the broker acknowledgment.
func NoWait() SendOption {
	return func(o *sendOptions) { o.wait = false }
}

// KeyCodec overrides the key codec for this send, taking precedence over the
// destination's default and the application default.
func KeyCodec(name string) SendOption {
	return func(o *sendOptions) {
		o.keyCodec = name
		o.keyCodecSet = true
	}
}

// Send publishes an event to a stream topic.
//
// dest is either a raw topic name (ToName) or a topic descriptor (ToTopic);
// a descriptor contributes its first underlying topic name and its default
// key codec. An absent key or event yields a null byte sequence on the wire,
// never an empty one. By default the call blocks until the broker
// acknowledges delivery; pass NoWait to return once the message is buffered.
//
// The first send starts the producer; concurrent first sends issue exactly
// one start and every racing send waits for it to complete before
// dispatching.
func (a *App) Send(ctx context.Context, dest Destination, key interface{}, event Event, opts ...SendOption) error {
	so := sendOptions{wait: true}
	for _, opt := range opts {
		opt(&so)
	}

	topicName, topicCodec, err := dest.resolve()
	if err != nil {
		return err
	}

	codecName := a.opts.KeyCodec
	if topicCodec != "" {
		codecName = topicCodec
	}
	if so.keyCodecSet {
		codecName = so.keyCodec
	}

	keyBytes, err := encodeKey(key, codecName)
	if err != nil {
		return err
	}

	valueBytes, err := encodeValue(event)
	if err != nil {
		return err
	}

	return a.send(ctx, topicName, keyBytes, valueBytes, so.wait)
}

// encodeKey serializes the key through the named codec, or converts it
// directly to bytes when no codec applies. A nil key stays nil.
func encodeKey(key interface{}, codecName string) ([]byte, error) {
	if key == nil {
		return nil, nil
	}

	var (
		data []byte
		err  error
	)
	if codecName != "" {
		c, rerr := codec.Resolve(codecName)
		if rerr != nil {
			return nil, &SerializationError{What: "key", Cause: rerr}
		}
		data, err = c.Encode(key)
	} else {
		data, err = codec.Raw{}.Encode(key)
	}
	if err != nil {
		return nil, &SerializationError{What: "key", Cause: err}
	}

	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

// encodeValue converts the event's own serialization to bytes. A nil event
// or empty representation stays nil.
func encodeValue(event Event) ([]byte, error) {
	if event == nil {
		return nil, nil
	}

	s, err := event.Dumps()
	if err != nil {
		return nil, &SerializationError{What: "value", Cause: err}
	}
	if s == "" {
		return nil, nil
	}
	return []byte(s), nil
}

// send provisions the producer if needed, arranges its one-time start, and
// dispatches the encoded message.
func (a *App) send(ctx context.Context, topic string, key, value []byte, wait bool) error {
	a.log.Debug("send", map[string]interface{}{
		"topic": topic,
		"key":   string(key),
		"wait":  wait,
	})

	producer, err := a.Producer()
	if err != nil {
		return err
	}

	if err := a.maybeStartProducer(ctx, producer); err != nil {
		return err
	}

	began := time.Now()
	if wait {
		err = producer.SendAndWait(ctx, topic, key, value)
	} else {
		err = producer.Send(ctx, topic, key, value)
	}
	a.metrics.RecordSend(ctx, topic, time.Since(began), wait, err)

	if err != nil {
		return fmt.Errorf("send to %s: %w", topic, err)
	}
	return nil
}

// maybeStartProducer starts the producer at most once per application
// lifetime. The latch is flipped before awaiting the start so a concurrent
// send cannot issue a second start; sends that lose the race wait for the
// winner's start to finish and observe its outcome.
func (a *App) maybeStartProducer(ctx context.Context, p transport.Producer) error {
	a.startMu.Lock()
	if !a.producerStarted {
		a.producerStarted = true
		a.startDone = make(chan struct{})
		done := a.startDone
		a.startMu.Unlock()

		began := time.Now()
		err := p.Start(ctx)
		a.metrics.RecordProducerStart(ctx, time.Since(began), err)

		a.startMu.Lock()
		a.startErr = err
		a.startMu.Unlock()
		close(done)

		if err != nil {
			return fmt.Errorf("start producer: %w", err)
		}
		return nil
	}
	done := a.startDone
	a.startMu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	a.startMu.Lock()
	err := a.startErr
	a.startMu.Unlock()
	if err != nil {
		return fmt.Errorf("start producer: %w", err)
	}
	return nil
}
