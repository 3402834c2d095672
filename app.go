package fugue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/streamhaus/fugue/logger"
	"github.com/streamhaus/fugue/observability"
	"github.com/streamhaus/fugue/service"
	"github.com/streamhaus/fugue/transport"
)

// sourcePrefix is the name prefix for anonymous streams.
const sourcePrefix = "source"

// App is the application orchestrator. It owns the lifecycle of the
// registered streams, lazily provisions the transport and producer pair,
// and exposes Send as the single path for publishing events.
//
// Constructing an App performs no I/O; the transport is parsed from the URL
// on first access and the producer connects on first send.
type App struct {
	*service.Service

	opts    Options
	log     *logger.Logger
	metrics observability.MetricsRecorder

	nameIndex atomic.Int64
	streams   *streamRegistry

	// resourceMu guards the memoized transport/producer pair.
	resourceMu sync.Mutex
	transport  transport.Transport
	producer   transport.Producer

	// startMu serializes the check-and-set of the producer-started latch.
	startMu         sync.Mutex
	producerStarted bool
	startDone       chan struct{}
	startErr        error
}

// New creates an application with the given identity.
func New(id string, opts ...Option) (*App, error) {
	a := &App{
		opts:    Options{ID: id},
		streams: newStreamRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.opts.ApplyDefaults()
	if err := a.opts.Validate(); err != nil {
		return nil, err
	}

	if a.log == nil {
		a.log = logger.New(&a.opts.Logging, a.opts.ID)
	}
	a.log = a.log.WithComponent("app")
	if a.metrics == nil {
		a.metrics = observability.NewMetricsRecorder()
	}

	a.Service = service.New(a.opts.ID, service.Hooks{
		OnStart: a.onStart,
		OnStop:  a.onStop,
	}, a.log)

	return a, nil
}

// Options returns a copy of the application's resolved options.
func (a *App) Options() Options { return a.opts }

// NewName returns prefix concatenated with a zero-padded counter value. The
// counter is owned by this App and increases monotonically; no two calls
// return the same name.
func (a *App) NewName(prefix string) string {
	return fmt.Sprintf("%s%010d", prefix, a.nameIndex.Add(1)-1)
}

// NewStreamName creates a new name for an anonymous stream.
func (a *App) NewStreamName() string {
	return a.NewName(sourcePrefix)
}

// AddSource registers an existing stream. The stream's name must be set and
// unique; on a DuplicateNameError the registry is unchanged. Registration
// during an active start or stop sweep is caller-disciplined.
func (a *App) AddSource(s Stream) error {
	if err := a.streams.register(s); err != nil {
		return err
	}
	a.log.Debug("Stream registered", map[string]interface{}{
		"stream": s.Name(),
	})
	return nil
}

// Streams returns the registered streams in registration order.
func (a *App) Streams() []Stream {
	return a.streams.values()
}

// Transport returns the memoized transport, constructing it from the
// configured URL on first call. Unknown URL schemes fail with
// transport.UnsupportedSchemeError.
func (a *App) Transport() (transport.Transport, error) {
	a.resourceMu.Lock()
	defer a.resourceMu.Unlock()
	return a.transportLocked()
}

func (a *App) transportLocked() (transport.Transport, error) {
	if a.transport == nil {
		tr, err := transport.FromURL(a.opts.URL, a.opts.Transport, a.log)
		if err != nil {
			return nil, err
		}
		a.transport = tr
		a.log.Debug("Transport created", map[string]interface{}{
			"url": a.opts.URL,
		})
	}
	return a.transport, nil
}

// Producer returns the memoized producer, requesting one from the transport
// on first call. The producer is not started here; starting is deferred to
// the first send.
func (a *App) Producer() (transport.Producer, error) {
	a.resourceMu.Lock()
	defer a.resourceMu.Unlock()

	if a.producer == nil {
		tr, err := a.transportLocked()
		if err != nil {
			return nil, err
		}
		a.producer = tr.NewProducer()
	}
	return a.producer, nil
}

// onStart starts every registered stream in registration order, each
// awaited before the next begins. The first failure aborts the remaining
// sequence; already-started streams keep running.
func (a *App) onStart(ctx context.Context) error {
	streams := a.streams.values()
	a.log.Info("Starting streams", map[string]interface{}{
		"count": len(streams),
	})

	for _, s := range streams {
		if err := s.Start(ctx); err != nil {
			a.log.Error("Stream start failed", map[string]interface{}{
				"stream": s.Name(),
				"error":  err.Error(),
			})
			return fmt.Errorf("start stream %s: %w", s.Name(), err)
		}
		a.log.Debug("Stream started", map[string]interface{}{
			"stream": s.Name(),
		})
	}
	return nil
}

// onStop stops every registered stream in reverse registration order. Each
// stop is attempted regardless of earlier failures; the first error is
// surfaced after the sweep. The producer is then stopped exactly once, and
// only if one was ever created.
func (a *App) onStop(ctx context.Context) error {
	var firstErr error

	for _, s := range a.streams.reversed() {
		if err := s.Stop(ctx); err != nil {
			a.log.Error("Stream stop failed", map[string]interface{}{
				"stream": s.Name(),
				"error":  err.Error(),
			})
			if firstErr == nil {
				firstErr = fmt.Errorf("stop stream %s: %w", s.Name(), err)
			}
			continue
		}
		a.log.Debug("Stream stopped", map[string]interface{}{
			"stream": s.Name(),
		})
	}

	a.resourceMu.Lock()
	p := a.producer
	a.resourceMu.Unlock()

	if p != nil {
		if err := p.Stop(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop producer: %w", err)
		}
	}
	return firstErr
}
