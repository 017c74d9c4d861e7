// Package objectstore provides the bucket/key object storage the track
// pipeline reads shards from and writes cue and meta files to.
//
// Three backends implement Store: FSStore keeps one directory per bucket
// under a root, SQLiteStore keeps blobs in a single database file, and
// MemoryStore backs tests. FetchShards downloads a shard set concurrently and
// returns it ordered by shard index.
package objectstore
