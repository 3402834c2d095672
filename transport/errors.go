package transport

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConnected is returned when a producer or consumer operation cannot
// reach the broker.
var ErrNotConnected = errors.New("transport: not connected")

// ErrProducerClosed is returned when sending through a stopped producer.
var ErrProducerClosed = errors.New("transport: producer is closed")

// UnsupportedSchemeError indicates the transport URL scheme has no
// registered driver.
type UnsupportedSchemeError struct {
	Scheme string
	URL    string
}

// Error implements the error interface.
func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("transport: unsupported scheme %q in URL %q (registered: %s)",
		e.Scheme, e.URL, strings.Join(Schemes(), ", "))
}

// IsConnectionError checks if an error is a connection-level error.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConnected) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	connectionPatterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"no route to host",
		"network is unreachable",
		"broker not available",
		"leader not available",
		"connection closed",
		"dial tcp",
		"network exception",
	}
	for _, p := range connectionPatterns {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}

// IsRetryableError determines if an error should trigger a retry by a caller
// that implements retries. The core publish pipeline never retries.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if IsConnectionError(err) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"temporary",
		"request timed out",
		"not enough replicas",
		"offset out of range",
	}
	for _, p := range retryablePatterns {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}
