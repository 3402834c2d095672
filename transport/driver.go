package transport

import (
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/streamhaus/fugue/logger"
)

// Driver opens a Transport for a parsed URL. Drivers register themselves by
// URL scheme, typically from an init function:
//
//	import _ "github.com/streamhaus/fugue/transport/kafka"
type Driver interface {
	Open(u *url.URL, cfg Config, log *logger.Logger) (Transport, error)
}

// DriverFunc adapts a function to the Driver interface.
type DriverFunc func(u *url.URL, cfg Config, log *logger.Logger) (Transport, error)

// Open calls f.
func (f DriverFunc) Open(u *url.URL, cfg Config, log *logger.Logger) (Transport, error) {
	return f(u, cfg, log)
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a driver available under the given URL scheme. It panics on
// a duplicate scheme, mirroring database/sql driver registration.
func Register(scheme string, d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if d == nil {
		panic("transport: Register driver is nil")
	}
	if _, dup := drivers[scheme]; dup {
		panic(fmt.Sprintf("transport: Register called twice for scheme %q", scheme))
	}
	drivers[scheme] = d
}

// Schemes returns the registered URL schemes in sorted order.
func Schemes() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	schemes := make([]string, 0, len(drivers))
	for s := range drivers {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

// FromURL parses rawURL and opens a Transport using the driver registered for
// its scheme. Unknown schemes fail with UnsupportedSchemeError; this is a
// provisioning-time configuration error, not a connection attempt.
func FromURL(rawURL string, cfg Config, log *logger.Logger) (Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid URL %q: %w", rawURL, err)
	}

	driversMu.RLock()
	d, ok := drivers[u.Scheme]
	driversMu.RUnlock()
	if !ok {
		return nil, &UnsupportedSchemeError{Scheme: u.Scheme, URL: rawURL}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("transport config: %w", err)
	}

	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return d.Open(u, cfg, log)
}
