package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/streamhaus/fugue/logger"
)

// MetricsRecorder records publish-pipeline metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordSend records one send with its topic, duration, ack mode, and
	// error status.
	RecordSend(ctx context.Context, topic string, duration time.Duration, waited bool, err error)

	// RecordProducerStart records the one-time producer start.
	RecordProducerStart(ctx context.Context, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	sends         metric.Int64Counter
	sendErrors    metric.Int64Counter
	sendLatency   metric.Float64Histogram
	producerStart metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("fugue")

	sends, err := meter.Int64Counter("fugue.send.total",
		metric.WithDescription("Number of events handed to the publish pipeline"),
	)
	if err != nil {
		return nil, err
	}

	sendErrors, err := meter.Int64Counter("fugue.send.errors",
		metric.WithDescription("Number of failed sends"),
	)
	if err != nil {
		return nil, err
	}

	sendLatency, err := meter.Float64Histogram("fugue.send.latency_ms",
		metric.WithDescription("Send latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	producerStart, err := meter.Float64Histogram("fugue.producer.start_ms",
		metric.WithDescription("Producer start duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		sends:         sends,
		sendErrors:    sendErrors,
		sendLatency:   sendLatency,
		producerStart: producerStart,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, it returns a no-op recorder.
//
// The recorder uses the global OTel meter provider; install one before
// calling this function, otherwise the default no-op provider applies.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		logger.Warn("Metrics initialization failed, using no-op recorder", map[string]interface{}{
			"error": err.Error(),
		})
		return NoopMetrics{}
	}
	return m
}

// RecordSend records a send.
func (m *otelMetrics) RecordSend(ctx context.Context, topic string, duration time.Duration, waited bool, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("topic", topic),
		attribute.Bool("waited", waited),
	}

	m.sends.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.sendLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.sendErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordProducerStart records the producer start.
func (m *otelMetrics) RecordProducerStart(ctx context.Context, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", err == nil),
	}
	m.producerStart.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// NoopMetrics is a MetricsRecorder that records nothing.
type NoopMetrics struct{}

// RecordSend does nothing.
func (NoopMetrics) RecordSend(context.Context, string, time.Duration, bool, error) {}

// RecordProducerStart does nothing.
func (NoopMetrics) RecordProducerStart(context.Context, time.Duration, error) {}
