// Package kafka implements the fugue transport driver for Apache Kafka on
// top of segmentio/kafka-go.
//
// Importing the package registers the "kafka" URL scheme:
//
//	import _ "github.com/streamhaus/fugue/transport/kafka"
//
//	app, err := fugue.New("orders", fugue.WithURL("kafka://localhost:9092"))
//
// Multiple brokers can be given as a comma-separated host list in the URL.
// TLS and SASL are configured through the transport config; see
// transport.Config.
package kafka
