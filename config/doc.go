// Package config loads application configuration from YAML files, .env
// files and the process environment, in that order of precedence.
//
//	var opts fugue.Options
//	err := config.Load("orders", &opts)
//
// Environment variables use the FUGUE_ prefix with underscore-separated
// paths, e.g. FUGUE_TRANSPORT_BATCH_SIZE overrides transport.batch_size.
package config
