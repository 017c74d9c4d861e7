// Package detection decodes AI detection shards and groups their records into
// per-entity chronological event streams.
//
// Each supported kind has a pure key function that maps one raw record to an
// entity key, an optional bounding box, and a confidence. Records missing a
// field that is mandatory for their kind are skipped silently; the upstream
// output is lossy and the transform is best-effort. A shard missing its
// top-level list is reported as ErrMalformedShard and skipped by the caller.
//
// Face matches are the one stateful kind: unconfirmed person indices inherit
// the most recently confirmed name through a FaceNameTable that the scan
// threads explicitly from record to record.
package detection
