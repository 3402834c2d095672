package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/streamhaus/fugue/logger"
)

// State is the lifecycle state of a service.
type State int32

const (
	StateInit State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
	StateFailed
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Hooks holds the callbacks a service runs on lifecycle transitions.
// Either hook may be nil.
type Hooks struct {
	// OnStart runs during the starting transition. An error moves the
	// service to StateFailed.
	OnStart func(ctx context.Context) error

	// OnStop runs during the stopping transition. An error moves the
	// service to StateFailed; otherwise the service ends in StateStopped.
	OnStop func(ctx context.Context) error
}

// Service is a lifecycle-managed unit with an explicit state machine:
// init -> starting -> running -> stopping -> stopped, with failed reachable
// from starting and stopping.
type Service struct {
	name  string
	hooks Hooks
	log   *logger.Logger

	mu    sync.Mutex
	state State
}

// New creates a service in StateInit.
func New(name string, hooks Hooks, log *logger.Logger) *Service {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Service{
		name:  name,
		hooks: hooks,
		log:   log.WithComponent("service." + name),
	}
}

// Name returns the service name.
func (s *Service) Name() string { return s.name }

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start transitions the service from init to running, invoking the OnStart
// hook in between. It is an error to start a service twice.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateInit {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("service %s: cannot start from state %s", s.name, state)
	}
	s.state = StateStarting
	s.mu.Unlock()

	s.log.Debug("Service starting")

	if s.hooks.OnStart != nil {
		if err := s.hooks.OnStart(ctx); err != nil {
			s.setState(StateFailed)
			s.log.Error("Service start failed", map[string]interface{}{
				"error": err.Error(),
			})
			return fmt.Errorf("service %s: start: %w", s.name, err)
		}
	}

	s.setState(StateRunning)
	s.log.Info("Service started")
	return nil
}

// Stop transitions the service to stopped, invoking the OnStop hook. Stopping
// a service that was never started still runs the hook so owned resources get
// a shutdown attempt. Stop is a no-op once the service is stopped or stopping.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateStopped, StateStopping:
		s.mu.Unlock()
		return nil
	}
	s.state = StateStopping
	s.mu.Unlock()

	s.log.Debug("Service stopping")

	if s.hooks.OnStop != nil {
		if err := s.hooks.OnStop(ctx); err != nil {
			s.setState(StateFailed)
			s.log.Error("Service stop failed", map[string]interface{}{
				"error": err.Error(),
			})
			return fmt.Errorf("service %s: stop: %w", s.name, err)
		}
	}

	s.setState(StateStopped)
	s.log.Info("Service stopped")
	return nil
}

func (s *Service) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
