package detection

import (
	"slices"
	"sort"
)

// BoundingBox is a normalized (0-1) rectangle.
type BoundingBox struct {
	Left   float64 `json:"Left"`
	Top    float64 `json:"Top"`
	Width  float64 `json:"Width"`
	Height float64 `json:"Height"`
}

// Center returns the box center point.
func (b BoundingBox) Center() (float64, float64) {
	return b.Left + b.Width/2, b.Top + b.Height/2
}

// Event is one detection of one entity. Confidence uses the 0-100 scale and is
// only meaningful when HasConfidence is set.
type Event struct {
	Timestamp     uint64
	Entity        string
	Confidence    float64
	HasConfidence bool
	Box           *BoundingBox
}

// Shard is one raw result file. Index is the numeric suffix of its key and
// defines the order shards are merged in.
type Shard struct {
	Index int
	Key   string
	Body  []byte
}

// SortShards orders shards by ascending index, keeping key order for ties.
func SortShards(shards []Shard) []Shard {
	sorted := slices.Clone(shards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})
	return sorted
}

// Mappings groups chronological events by entity key.
type Mappings map[string][]Event

// Keys returns the entity keys in lexical order.
func (m Mappings) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m Mappings) add(ev Event) {
	m[ev.Entity] = append(m[ev.Entity], ev)
}
