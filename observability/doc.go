// Package observability provides OpenTelemetry instrumentation for the
// fugue publish pipeline.
//
// Only the OTel API is used; installing a meter provider (SDK, exporters,
// intervals) is the embedding application's responsibility. Without a
// provider the recorder is effectively a no-op.
package observability
