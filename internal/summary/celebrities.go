package summary

import "cuesynth/internal/timeline"

// CelebrityTimelines re-merges each celebrity's timelines with opts and keeps
// those that survive the floors. Entries appear in input order; a later input
// with the same name replaces the earlier entry in place.
func CelebrityTimelines(inputs []NamedTimelines, opts timeline.MergeOptions) (Category, bool) {
	var out Category
	index := map[string]int{}
	for _, input := range inputs {
		merged, ok := timeline.Remerge(input.Timelines, opts)
		if !ok {
			continue
		}
		entry := Entry{Name: input.Name, Timelines: []Span{zeroAnchor}}
		weighted := 0.0
		for _, t := range merged {
			weighted += t.Confidence * float64(t.Count)
			entry.Count += t.Count
			entry.Timelines = append(entry.Timelines, Span{In: t.In, Out: t.Out})
		}
		if entry.Count > 0 {
			entry.Confidence = weighted / float64(entry.Count)
		}
		if i, seen := index[input.Name]; seen {
			out[i] = entry
			continue
		}
		index[input.Name] = len(out)
		out = append(out, entry)
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
