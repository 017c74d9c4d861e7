// Package track turns fetched detection shards into per-entity cue files and
// timeline meta files.
//
// A Table maps each kind to its clustering parameters and render style. The
// Dispatcher runs one kind end to end: select and fetch shards, extract
// entity events, cluster and render each entity on a bounded worker pool, and
// upload the results. The Runner drives a list of kinds in order and
// publishes progress after each one.
package track
