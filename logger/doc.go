// Package logger provides structured logging for fugue applications
// using zerolog.
//
// It supports JSON and console output formats, log level configuration,
// and component-scoped loggers with structured fields:
//
//	log := logger.NewDefault("my-app").WithComponent("producer")
//	log.Info("message sent", map[string]interface{}{"topic": "orders"})
package logger
