// Package services defines shared utilities consumed by the track pipeline and
// its external collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, track kinds, and entity keys for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper so callers can tell a
//     malformed shard from an unsupported kind or a failing object store.
//
// Use these helpers when wiring new track logic so operational behaviour (error
// classification, observability) stays uniform across the engine.
package services
