package summary

import (
	"slices"
	"sort"
	"strings"

	"cuesynth/internal/detection"
	"cuesynth/internal/timeline"
)

// TopOptions controls ranking. Both floors are exclusive.
type TopOptions struct {
	MinCount      int
	MinConfidence float64
	Top           int
	Stoplist      []string
}

// NamedTimelines is one entity's timeline meta file.
type NamedTimelines struct {
	Name      string
	Timelines []timeline.Timeline
}

// TopItems ranks entities by the count-weighted confidence of their
// timelines. An entity contributes only when its total count and average
// confidence clear the floors. When two inputs share a name, the later
// qualifying one replaces the earlier. The boolean is false when nothing
// qualifies.
func TopItems(inputs []NamedTimelines, opts TopOptions) (Category, bool) {
	candidates := map[string]Entry{}
	var order []string
	for _, input := range inputs {
		totalCount := 0
		totalConfidence := 0.0
		for _, t := range input.Timelines {
			totalCount += t.Count
			totalConfidence += t.Confidence * float64(t.Count)
		}
		if totalCount <= opts.MinCount {
			continue
		}
		average := totalConfidence / float64(totalCount)
		if average <= opts.MinConfidence {
			continue
		}
		if _, seen := candidates[input.Name]; !seen {
			order = append(order, input.Name)
		}
		candidates[input.Name] = Entry{
			Name:       input.Name,
			Confidence: average,
			Count:      totalCount,
			Timelines:  []Span{zeroAnchor},
		}
	}

	entries := make(Category, 0, len(order))
	for _, name := range order {
		entries = append(entries, candidates[name])
	}
	return rank(entries, opts)
}

// TopFlat ranks a pre-aggregated text -> score dictionary.
func TopFlat(scores map[string]detection.TextScore, opts TopOptions) (Category, bool) {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	slices.Sort(names)

	entries := make(Category, 0, len(names))
	for _, name := range names {
		score := scores[name]
		if score.Count <= opts.MinCount || score.Confidence <= opts.MinConfidence {
			continue
		}
		entries = append(entries, Entry{
			Name:       name,
			Confidence: score.Confidence,
			Count:      score.Count,
			Timelines:  []Span{zeroAnchor},
		})
	}
	return rank(entries, opts)
}

func rank(entries Category, opts TopOptions) (Category, bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Confidence > entries[j].Confidence
	})
	kept := entries[:0]
	for _, entry := range entries {
		if stoplisted(opts.Stoplist, entry.Name) {
			continue
		}
		kept = append(kept, entry)
	}
	if opts.Top > 0 && len(kept) > opts.Top {
		kept = kept[:opts.Top]
	}
	if len(kept) == 0 {
		return nil, false
	}
	return kept, true
}

func stoplisted(stoplist []string, name string) bool {
	for _, stop := range stoplist {
		if strings.EqualFold(stop, name) {
			return true
		}
	}
	return false
}
