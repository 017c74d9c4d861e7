// Package progress publishes run status events for the multi-kind track
// runner.
//
// Sinks are fire-and-forget from the runner's point of view: a failed publish
// is logged and never aborts a run. LogSink writes events through slog,
// WebhookSink POSTs them as JSON, and MemorySink records them for tests.
package progress
