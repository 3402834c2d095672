package kafka

import (
	"context"
	"fmt"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/streamhaus/fugue/logger"
	"github.com/streamhaus/fugue/transport"
)

// Producer wraps a pair of kafka-go Writers: a synchronous one for
// acknowledged sends and an asynchronous one for buffered sends.
//
// The application core calls Start at most once before the first dispatch
// and Stop at most once during shutdown; a stopped producer stays stopped.
type Producer struct {
	brokers []string
	cfg     transport.Config
	log     *logger.Logger

	mu          sync.Mutex
	writer      *kafkago.Writer
	asyncWriter *kafkago.Writer
	started     bool
	closed      bool
}

var _ transport.Producer = (*Producer)(nil)

func newProducer(brokers []string, cfg transport.Config, log *logger.Logger) *Producer {
	return &Producer{
		brokers: brokers,
		cfg:     cfg,
		log:     log.WithComponent("kafka.producer"),
	}
}

// Start verifies broker connectivity and initializes the writers.
func (p *Producer) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return transport.ErrProducerClosed
	}
	if p.started {
		return nil
	}

	dialer, err := createDialer(&p.cfg)
	if err != nil {
		return fmt.Errorf("kafka producer dialer: %w", err)
	}

	conn, err := dialer.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("kafka producer handshake %s: %w", p.brokers[0], err)
	}
	if _, err := conn.Brokers(); err != nil {
		conn.Close()
		return fmt.Errorf("kafka producer metadata: %w", err)
	}
	conn.Close()

	netTransport, err := createTransport(&p.cfg)
	if err != nil {
		return fmt.Errorf("kafka producer transport: %w", err)
	}

	p.writer = p.newWriter(netTransport, false)
	p.asyncWriter = p.newWriter(netTransport, true)
	p.started = true

	p.log.Info("Kafka producer started", map[string]interface{}{
		"brokers":     p.brokers,
		"compression": p.cfg.Compression,
		"batch_size":  p.cfg.BatchSize,
	})
	return nil
}

func (p *Producer) newWriter(netTransport *kafkago.Transport, async bool) *kafkago.Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(p.brokers...),
		Transport:    netTransport,
		Balancer:     &kafkago.LeastBytes{},
		BatchSize:    p.cfg.BatchSize,
		BatchTimeout: transport.ParseDuration(p.cfg.BatchTimeout),
		RequiredAcks: kafkago.RequiredAcks(p.cfg.RequiredAcks),
		Compression:  resolveCompression(p.cfg.Compression),
		WriteTimeout: transport.ParseDuration(p.cfg.WriteTimeout),
		Async:        async,
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			p.log.Error("writer: "+msg, map[string]interface{}{
				"args": fmt.Sprintf("%v", args),
			})
		}),
	}
	if async {
		w.Completion = func(messages []kafkago.Message, err error) {
			if err != nil {
				p.log.Error("Async delivery failed", map[string]interface{}{
					"messages": len(messages),
					"error":    err.Error(),
				})
			}
		}
	}
	return w
}

// SendAndWait publishes one message and blocks until the broker acknowledges
// it according to the configured required acks.
func (p *Producer) SendAndWait(ctx context.Context, topic string, key, value []byte) error {
	w, err := p.pick(false)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafkago.Message{Topic: topic, Key: key, Value: value})
}

// Send queues one message for asynchronous delivery and returns once it is
// buffered. Delivery failures are reported through the completion callback.
func (p *Producer) Send(ctx context.Context, topic string, key, value []byte) error {
	w, err := p.pick(true)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafkago.Message{Topic: topic, Key: key, Value: value})
}

func (p *Producer) pick(async bool) (*kafkago.Writer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, transport.ErrProducerClosed
	}
	if !p.started {
		return nil, transport.ErrNotConnected
	}
	if async {
		return p.asyncWriter, nil
	}
	return p.writer, nil
}

// Stats returns writer statistics for the synchronous writer.
func (p *Producer) Stats() kafkago.WriterStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer != nil {
		return p.writer.Stats()
	}
	return kafkago.WriterStats{}
}

// Stop flushes and closes both writers. Stop is idempotent and terminal.
func (p *Producer) Stop(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	p.log.Info("Kafka producer closing")

	var firstErr error
	for _, w := range []*kafkago.Writer{p.asyncWriter, p.writer} {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.writer = nil
	p.asyncWriter = nil
	return firstErr
}
