package kafka

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/streamhaus/fugue/logger"
	"github.com/streamhaus/fugue/transport"
)

// Consumer wraps a kafka-go Reader for a single topic within a consumer
// group. Offsets are committed automatically on the configured commit
// interval.
type Consumer struct {
	reader   *kafkago.Reader
	topic    string
	groupID  string
	log      *logger.Logger
	failures int
}

var _ transport.Consumer = (*Consumer)(nil)

func newConsumer(brokers []string, cfg transport.Config, topic string, log *logger.Logger) (*Consumer, error) {
	dialer, err := createDialer(&cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer dialer: %w", err)
	}

	groupID := cfg.GroupID
	if groupID == "" {
		groupID = cfg.ClientID
	}

	clog := log.WithComponent("kafka.consumer")

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		Dialer:         dialer,
		StartOffset:    kafkago.FirstOffset,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: cfg.CommitInterval,
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			clog.Error("reader: "+msg, map[string]interface{}{
				"args":    fmt.Sprintf("%v", args),
				"topic":   topic,
				"groupID": groupID,
			})
		}),
	})

	clog.Debug("Kafka consumer created", map[string]interface{}{
		"topic":   topic,
		"groupID": groupID,
		"brokers": brokers,
	})

	return &Consumer{
		reader:  reader,
		topic:   topic,
		groupID: groupID,
		log:     clog,
	}, nil
}

// Topic returns the topic this consumer reads from.
func (c *Consumer) Topic() string { return c.topic }

// Consume reads messages in a loop, calling handler for each one. It blocks
// until ctx is canceled or an unrecoverable error occurs.
func (c *Consumer) Consume(ctx context.Context, handler transport.MessageHandler) error {
	c.log.Info("Starting consume loop", map[string]interface{}{
		"topic":   c.topic,
		"groupID": c.groupID,
	})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if retryErr := c.handleFailure(ctx, err); retryErr != nil {
					return retryErr
				}
				continue
			}

			c.failures = 0

			if err := handler(ctx, fromKafkaMessage(msg)); err != nil {
				c.log.Error("Message processing failed", map[string]interface{}{
					"error":  err.Error(),
					"topic":  msg.Topic,
					"offset": msg.Offset,
				})
			}
		}
	}
}

func (c *Consumer) handleFailure(ctx context.Context, err error) error {
	c.failures++
	if c.failures > 3 && !transport.IsRetryableError(err) {
		return fmt.Errorf("kafka consumer %s: %w", c.topic, err)
	}

	c.log.Error("Kafka read error", map[string]interface{}{
		"error":    err.Error(),
		"topic":    c.topic,
		"failures": c.failures,
	})

	backoff := time.Duration(c.failures) * time.Second
	if backoff > 10*time.Second {
		backoff = 10 * time.Second
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}

// Close releases the reader's resources.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func fromKafkaMessage(msg kafkago.Message) transport.Message {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return transport.Message{
		Topic:     msg.Topic,
		Key:       msg.Key,
		Value:     msg.Value,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Time:      msg.Time,
		Headers:   headers,
	}
}
