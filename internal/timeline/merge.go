package timeline

// Timeline is one appearance interval of an entity. Confidence uses the 0-1
// scale.
type Timeline struct {
	Confidence float64 `json:"Confidence"`
	Count      int     `json:"Count"`
	In         uint64  `json:"In"`
	Out        uint64  `json:"Out"`
}

// Duration returns Out-In in milliseconds.
func (t Timeline) Duration() uint64 {
	if t.Out < t.In {
		return 0
	}
	return t.Out - t.In
}

// MergeOptions controls the temporal merge. Floors apply only when positive,
// and both are exclusive: a timeline survives when it is strictly above them.
type MergeOptions struct {
	DriftMs       uint64
	MinConfidence float64
	MinDurationMs uint64
}

// Merge joins pseudo-cues whose gap is within DriftMs into timelines.
// Zero-length timelines are always dropped. The boolean is false when no
// timeline survives, which callers must treat as "no timeline" rather than an
// empty result.
func Merge(cues []PseudoCue, opts MergeOptions) ([]Timeline, bool) {
	spans := make([]Timeline, 0, len(cues))
	for _, cue := range cues {
		spans = append(spans, Timeline{
			Confidence: cue.Confidence / 100,
			Count:      cue.Count,
			In:         cue.Start,
			Out:        cue.End,
		})
	}
	return Remerge(spans, opts)
}

// Remerge applies the temporal merge to existing timelines, typically with a
// wider drift than the one used to produce them.
func Remerge(timelines []Timeline, opts MergeOptions) ([]Timeline, bool) {
	if len(timelines) == 0 {
		return nil, false
	}

	var merged []Timeline
	current := timelines[0]
	for _, next := range timelines[1:] {
		if gap(current.Out, next.In) <= opts.DriftMs {
			total := current.Count + next.Count
			if total > 0 {
				current.Confidence = (current.Confidence*float64(current.Count) + next.Confidence*float64(next.Count)) / float64(total)
			}
			current.Count = total
			current.Out = next.Out
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)

	kept := merged[:0]
	for _, t := range merged {
		if t.Duration() == 0 {
			continue
		}
		if opts.MinConfidence > 0 && t.Confidence <= opts.MinConfidence {
			continue
		}
		if opts.MinDurationMs > 0 && t.Duration() <= opts.MinDurationMs {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		return nil, false
	}
	return kept, true
}

func gap(end, start uint64) uint64 {
	if start <= end {
		return 0
	}
	return start - end
}
