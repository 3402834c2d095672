package kafka

import (
	"context"
	"errors"
	"net/url"
	"testing"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/streamhaus/fugue/logger"
	"github.com/streamhaus/fugue/transport"
)

func testConfig() transport.Config {
	cfg := transport.Config{ClientID: "fugue-test"}
	cfg.ApplyDefaults()
	return cfg
}

func TestBrokersFromURL(t *testing.T) {
	cases := []struct {
		rawURL string
		want   []string
	}{
		{"kafka://localhost:9092", []string{"localhost:9092"}},
		{"kafka://a:9092,b:9093", []string{"a:9092", "b:9093"}},
		{"kafka://broker", []string{"broker:9092"}},
		{"kafka://", nil},
	}

	for _, c := range cases {
		u, err := url.Parse(c.rawURL)
		if err != nil {
			t.Fatalf("parse %q: %v", c.rawURL, err)
		}
		got := brokersFromURL(u)
		if len(got) != len(c.want) {
			t.Errorf("%s: got %v, want %v", c.rawURL, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("%s: got %v, want %v", c.rawURL, got, c.want)
			}
		}
	}
}

func TestOpenDefaultsBroker(t *testing.T) {
	u, _ := url.Parse("kafka://")
	tr, err := open(u, testConfig(), logger.NewDefault("test"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	kt := tr.(*Transport)
	if len(kt.Brokers()) != 1 || kt.Brokers()[0] != defaultBroker {
		t.Errorf("expected default broker, got %v", kt.Brokers())
	}
}

func TestOpenRejectsBadSASL(t *testing.T) {
	u, _ := url.Parse("kafka://localhost:9092")
	cfg := testConfig()
	cfg.EnableSASL = true
	cfg.SASLMechanism = "KERBEROS"

	if _, err := open(u, cfg, logger.NewDefault("test")); err == nil {
		t.Error("expected error for unsupported SASL mechanism")
	}
}

func TestResolveCompression(t *testing.T) {
	cases := map[string]kafkago.Compression{
		"gzip":    kafkago.Gzip,
		"lz4":     kafkago.Lz4,
		"zstd":    kafkago.Zstd,
		"snappy":  kafkago.Snappy,
		"none":    0,
		"unknown": kafkago.Snappy,
	}
	for name, want := range cases {
		if got := resolveCompression(name); got != want {
			t.Errorf("resolveCompression(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestBuildTLSConfig(t *testing.T) {
	cfg := testConfig()
	cfg.EnableTLS = true
	cfg.TLSSkipVerify = true

	tc, err := buildTLSConfig(&cfg)
	if err != nil {
		t.Fatalf("buildTLSConfig failed: %v", err)
	}
	if !tc.InsecureSkipVerify {
		t.Error("expected InsecureSkipVerify")
	}

	cfg.TLSCAFile = "/nonexistent/ca.pem"
	if _, err := buildTLSConfig(&cfg); err == nil {
		t.Error("expected error for missing CA file")
	}
}

func TestBuildSASLMechanism(t *testing.T) {
	cfg := testConfig()
	cfg.Username = "app"
	cfg.Password = "secret"

	for _, mech := range []string{"PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512"} {
		cfg.SASLMechanism = mech
		if _, err := buildSASLMechanism(&cfg); err != nil {
			t.Errorf("buildSASLMechanism(%s) failed: %v", mech, err)
		}
	}

	cfg.SASLMechanism = "GSSAPI"
	if _, err := buildSASLMechanism(&cfg); err == nil {
		t.Error("expected error for unsupported mechanism")
	}
}

func TestProducerSendBeforeStart(t *testing.T) {
	p := newProducer([]string{"localhost:9092"}, testConfig(), logger.NewDefault("test"))

	err := p.SendAndWait(context.Background(), "orders", nil, []byte("x"))
	if !errors.Is(err, transport.ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}

	err = p.Send(context.Background(), "orders", nil, []byte("x"))
	if !errors.Is(err, transport.ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestProducerStopIsTerminal(t *testing.T) {
	p := newProducer([]string{"localhost:9092"}, testConfig(), logger.NewDefault("test"))

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}

	if err := p.Start(context.Background()); !errors.Is(err, transport.ErrProducerClosed) {
		t.Errorf("expected ErrProducerClosed, got %v", err)
	}
	if err := p.SendAndWait(context.Background(), "t", nil, nil); !errors.Is(err, transport.ErrProducerClosed) {
		t.Errorf("expected ErrProducerClosed, got %v", err)
	}
}

func TestCollectWriterMetrics(t *testing.T) {
	stats := kafkago.WriterStats{Writes: 3, Messages: 5, Errors: 1, Topic: "orders"}
	m := CollectWriterMetrics(stats)
	if m.Writes != 3 || m.Messages != 5 || m.Errors != 1 || m.Topic != "orders" {
		t.Errorf("unexpected metrics: %+v", m)
	}
}
