package kafka

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/streamhaus/fugue/logger"
	"github.com/streamhaus/fugue/transport"
)

const defaultBroker = "localhost:9092"

func init() {
	transport.Register("kafka", transport.DriverFunc(open))
}

// Transport supplies Kafka producers and consumers for one broker cluster.
// Creating a Transport performs no network I/O; connections are opened when a
// producer is started or a consumer begins reading.
type Transport struct {
	brokers []string
	cfg     transport.Config
	log     *logger.Logger
}

var _ transport.Transport = (*Transport)(nil)

func open(u *url.URL, cfg transport.Config, log *logger.Logger) (transport.Transport, error) {
	brokers := brokersFromURL(u)
	if len(brokers) == 0 {
		brokers = []string{defaultBroker}
	}

	// TLS/SASL settings are validated up front so misconfiguration surfaces
	// at provisioning time rather than on first send.
	if _, err := createTransport(&cfg); err != nil {
		return nil, fmt.Errorf("kafka transport: %w", err)
	}

	t := &Transport{
		brokers: brokers,
		cfg:     cfg,
		log:     log.WithComponent("kafka"),
	}

	t.log.Debug("Kafka transport created", map[string]interface{}{
		"brokers": brokers,
	})
	return t, nil
}

// Brokers returns the broker addresses this transport connects to.
func (t *Transport) Brokers() []string { return t.brokers }

// NewProducer creates an unstarted producer for this cluster.
func (t *Transport) NewProducer() transport.Producer {
	return newProducer(t.brokers, t.cfg, t.log)
}

// NewConsumer creates a consumer group reader for the given topic.
func (t *Transport) NewConsumer(topic string) (transport.Consumer, error) {
	return newConsumer(t.brokers, t.cfg, topic, t.log)
}

// brokersFromURL extracts broker addresses from the transport URL. The host
// part may hold a comma-separated list: kafka://a:9092,b:9092.
func brokersFromURL(u *url.URL) []string {
	host := u.Host
	if host == "" {
		return nil
	}

	parts := strings.Split(host, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, ":") {
			p += ":9092"
		}
		brokers = append(brokers, p)
	}
	return brokers
}
