// Package transport defines the wire-protocol collaborator interfaces
// consumed by the fugue application core, and the URL-scheme driver registry
// that selects a concrete transport implementation.
//
// Concrete drivers live in subpackages and register themselves on import:
//
//   - transport/kafka: Apache Kafka via segmentio/kafka-go ("kafka://")
//   - transport/memory: in-process transport for tests ("memory://")
package transport
