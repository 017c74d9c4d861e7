// Package summary builds the whole-asset analytics document from the meta
// files the track runner wrote.
//
// Per-entity categories (emotions, labels) are ranked with TopItems, which
// sums each entity's timelines into one count and count-weighted confidence.
// Dictionary categories (key phrases, locations, persons) are ranked with
// TopFlat over the aggregated JSON tracks. Celebrities are re-merged with a
// wider drift and filtered by confidence and duration.
package summary
