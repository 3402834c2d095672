package service

import (
	"context"
	"errors"
	"testing"
)

func TestStartTransitions(t *testing.T) {
	var started bool
	s := New("test", Hooks{
		OnStart: func(ctx context.Context) error {
			started = true
			return nil
		},
	}, nil)

	if s.State() != StateInit {
		t.Fatalf("expected init, got %s", s.State())
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !started {
		t.Error("OnStart hook not invoked")
	}
	if s.State() != StateRunning {
		t.Errorf("expected running, got %s", s.State())
	}
}

func TestStartTwice(t *testing.T) {
	s := New("test", Hooks{}, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("expected error starting a running service")
	}
}

func TestStartFailure(t *testing.T) {
	boom := errors.New("boom")
	s := New("test", Hooks{
		OnStart: func(ctx context.Context) error { return boom },
	}, nil)

	err := s.Start(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if s.State() != StateFailed {
		t.Errorf("expected failed, got %s", s.State())
	}
}

func TestStopTransitions(t *testing.T) {
	var stopped bool
	s := New("test", Hooks{
		OnStop: func(ctx context.Context) error {
			stopped = true
			return nil
		},
	}, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if !stopped {
		t.Error("OnStop hook not invoked")
	}
	if s.State() != StateStopped {
		t.Errorf("expected stopped, got %s", s.State())
	}
}

func TestStopNeverStarted(t *testing.T) {
	calls := 0
	s := New("test", Hooks{
		OnStop: func(ctx context.Context) error {
			calls++
			return nil
		},
	}, nil)

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected one OnStop call, got %d", calls)
	}
	if s.State() != StateStopped {
		t.Errorf("expected stopped, got %s", s.State())
	}
}

func TestStopIdempotent(t *testing.T) {
	calls := 0
	s := New("test", Hooks{
		OnStop: func(ctx context.Context) error {
			calls++
			return nil
		},
	}, nil)

	s.Stop(context.Background())
	s.Stop(context.Background())

	if calls != 1 {
		t.Errorf("expected one OnStop call, got %d", calls)
	}
}

func TestStopFailure(t *testing.T) {
	boom := errors.New("boom")
	s := New("test", Hooks{
		OnStop: func(ctx context.Context) error { return boom },
	}, nil)

	s.Start(context.Background())
	err := s.Stop(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if s.State() != StateFailed {
		t.Errorf("expected failed, got %s", s.State())
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateInit:     "init",
		StateStarting: "starting",
		StateRunning:  "running",
		StateStopping: "stopping",
		StateStopped:  "stopped",
		StateFailed:   "failed",
	}
	for state, want := range cases {
		if state.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", state, state.String(), want)
		}
	}
}
