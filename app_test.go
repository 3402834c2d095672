package fugue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/streamhaus/fugue/service"
	"github.com/streamhaus/fugue/transport"
	_ "github.com/streamhaus/fugue/transport/memory"
)

// mockStream records lifecycle calls into a shared journal so tests can
// assert ordering across streams.
type mockStream struct {
	name     string
	journal  *[]string
	mu       *sync.Mutex
	startErr error
	stopErr  error
}

func (m *mockStream) Name() string { return m.name }

func (m *mockStream) Start(_ context.Context) error {
	m.record("start:" + m.name)
	return m.startErr
}

func (m *mockStream) Stop(_ context.Context) error {
	m.record("stop:" + m.name)
	return m.stopErr
}

func (m *mockStream) record(entry string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.journal = append(*m.journal, entry)
}

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) stream(name string) *mockStream {
	return &mockStream{name: name, journal: &j.entries, mu: &j.mu}
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{WithURL("memory://")}, opts...)
	app, err := New("test-app", opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return app
}

func TestNewValidation(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for missing id")
	}

	var cfgErr *ConfigurationError
	_, err := New("app", WithValueCodec("no-such-codec"))
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}

	_, err = New("app", WithKeyCodec("no-such-codec"))
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestNewDefaults(t *testing.T) {
	app := newTestApp(t)
	opts := app.Options()

	if opts.ValueCodec != "json" {
		t.Errorf("value codec = %q, want json", opts.ValueCodec)
	}
	if opts.KeyCodec != "" {
		t.Errorf("key codec = %q, want empty", opts.KeyCodec)
	}
	if opts.ReplicationFactor != 1 {
		t.Errorf("replication factor = %d, want 1", opts.ReplicationFactor)
	}
	if opts.StandbyReplicas != 0 {
		t.Errorf("standby replicas = %d, want 0", opts.StandbyReplicas)
	}
	if opts.CommitInterval.Seconds() != 30 {
		t.Errorf("commit interval = %s, want 30s", opts.CommitInterval)
	}
	if opts.ClientID == "" {
		t.Error("client id not defaulted")
	}
	if opts.Transport.GroupID != "test-app" {
		t.Errorf("transport group id = %q, want test-app", opts.Transport.GroupID)
	}
}

func TestNewNameUnique(t *testing.T) {
	app := newTestApp(t)

	seen := make(map[string]bool)
	var names []string
	for i := 0; i < 100; i++ {
		name := app.NewName("worker-")
		if seen[name] {
			t.Fatalf("duplicate name %q", name)
		}
		seen[name] = true
		names = append(names, name)
	}

	if !sort.StringsAreSorted(names) {
		t.Error("generated names are not in lexicographic order")
	}
	if names[0] != "worker-0000000000" {
		t.Errorf("first name = %q, want worker-0000000000", names[0])
	}
	if names[10] != "worker-0000000010" {
		t.Errorf("eleventh name = %q, want worker-0000000010", names[10])
	}
}

func TestNewNameConcurrent(t *testing.T) {
	app := newTestApp(t)

	const workers = 8
	const perWorker = 50

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				name := app.NewStreamName()
				mu.Lock()
				if seen[name] {
					t.Errorf("duplicate name %q", name)
				}
				seen[name] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Fatalf("got %d unique names, want %d", len(seen), workers*perWorker)
	}
}

func TestNewStreamNamePrefix(t *testing.T) {
	app := newTestApp(t)
	if got := app.NewStreamName(); got != "source0000000000" {
		t.Errorf("stream name = %q, want source0000000000", got)
	}
}

func TestAddSourceDuplicate(t *testing.T) {
	app := newTestApp(t)
	j := &journal{}

	if err := app.AddSource(j.stream("a")); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	err := app.AddSource(j.stream("a"))

	var dup *DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateNameError, got %v", err)
	}
	if dup.Name != "a" {
		t.Errorf("error name = %q, want a", dup.Name)
	}
	if got := len(app.Streams()); got != 1 {
		t.Errorf("registry has %d streams after failed register, want 1", got)
	}
}

func TestAddSourceEmptyName(t *testing.T) {
	app := newTestApp(t)
	j := &journal{}

	var cfgErr *ConfigurationError
	if err := app.AddSource(j.stream("")); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if len(app.Streams()) != 0 {
		t.Error("registry changed by failed register")
	}
}

func TestStartStopOrder(t *testing.T) {
	app := newTestApp(t)
	j := &journal{}
	for _, name := range []string{"a", "b", "c"} {
		if err := app.AddSource(j.stream(name)); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if app.State() != service.StateRunning {
		t.Fatalf("state = %s, want running", app.State())
	}
	if err := app.Stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if app.State() != service.StateStopped {
		t.Fatalf("state = %s, want stopped", app.State())
	}

	want := []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}
	if fmt.Sprint(j.entries) != fmt.Sprint(want) {
		t.Errorf("journal = %v, want %v", j.entries, want)
	}
}

func TestStartAbortsOnFirstError(t *testing.T) {
	app := newTestApp(t)
	j := &journal{}

	boom := errors.New("boom")
	a := j.stream("a")
	b := j.stream("b")
	b.startErr = boom
	c := j.stream("c")
	for _, s := range []Stream{a, b, c} {
		if err := app.AddSource(s); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	err := app.Start(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if app.State() != service.StateFailed {
		t.Errorf("state = %s, want failed", app.State())
	}

	want := []string{"start:a", "start:b"}
	if fmt.Sprint(j.entries) != fmt.Sprint(want) {
		t.Errorf("journal = %v, want %v", j.entries, want)
	}
}

func TestStopSweepContinuesPastFailure(t *testing.T) {
	app := newTestApp(t)
	j := &journal{}

	boom := errors.New("boom")
	a := j.stream("a")
	b := j.stream("b")
	b.stopErr = boom
	c := j.stream("c")
	for _, s := range []Stream{a, b, c} {
		if err := app.AddSource(s); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	err := app.Stop(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom surfaced, got %v", err)
	}

	want := []string{
		"start:a", "start:b", "start:c",
		"stop:c", "stop:b", "stop:a",
	}
	if fmt.Sprint(j.entries) != fmt.Sprint(want) {
		t.Errorf("journal = %v, want %v", j.entries, want)
	}
}

func TestTransportMemoized(t *testing.T) {
	app := newTestApp(t)

	tr1, err := app.Transport()
	if err != nil {
		t.Fatalf("transport failed: %v", err)
	}
	tr2, err := app.Transport()
	if err != nil {
		t.Fatalf("transport failed: %v", err)
	}
	if tr1 != tr2 {
		t.Error("transport not memoized")
	}
}

func TestProducerMemoized(t *testing.T) {
	app := newTestApp(t)

	p1, err := app.Producer()
	if err != nil {
		t.Fatalf("producer failed: %v", err)
	}
	p2, err := app.Producer()
	if err != nil {
		t.Fatalf("producer failed: %v", err)
	}
	if p1 != p2 {
		t.Error("producer not memoized")
	}
}

func TestTransportUnknownScheme(t *testing.T) {
	app := newTestApp(t, WithURL("bogus://nowhere"))

	_, err := app.Transport()
	var schemeErr *transport.UnsupportedSchemeError
	if !errors.As(err, &schemeErr) {
		t.Fatalf("expected UnsupportedSchemeError, got %v", err)
	}
	if schemeErr.Scheme != "bogus" {
		t.Errorf("scheme = %q, want bogus", schemeErr.Scheme)
	}
}
