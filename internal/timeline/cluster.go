package timeline

import (
	"math"

	"cuesynth/internal/detection"
)

// Params controls the first clustering pass.
type Params struct {
	TimeDriftMs   uint64
	PositionDrift float64
}

// PseudoCue is a provisional cluster of detections for one entity. Confidence
// is the running average on the 0-100 scale.
type PseudoCue struct {
	Start         uint64
	End           uint64
	Confidence    float64
	HasConfidence bool
	Count         int
	Box           detection.BoundingBox
}

// Duration returns End-Start in milliseconds.
func (c PseudoCue) Duration() uint64 {
	if c.End < c.Start {
		return 0
	}
	return c.End - c.Start
}

// Cluster groups a chronological event stream into pseudo-cues. Leading
// events without a bounding box are dropped, so a stream with no positional
// event yields no cues.
func Cluster(events []detection.Event, params Params) []PseudoCue {
	first := -1
	for i, ev := range events {
		if ev.Box != nil {
			first = i
			break
		}
	}
	if first < 0 {
		return nil
	}

	var out []PseudoCue
	cursor := newPseudoCue(events[first])
	for _, ev := range events[first+1:] {
		if ev.Box == nil {
			if ev.Timestamp >= cursor.End && ev.Timestamp-cursor.End < params.TimeDriftMs {
				cursor.End = ev.Timestamp
			}
			cursor.fold(ev)
			continue
		}

		next := newPseudoCue(ev)
		if next.Start >= cursor.End && next.Start-cursor.End >= params.TimeDriftMs {
			out = append(out, cursor)
			cursor = next
			continue
		}
		if centerDistance(cursor.Box, next.Box) > params.PositionDrift {
			out = append(out, cursor)
			cursor = next
			continue
		}
		cursor.End = next.Start
		cursor.fold(ev)
	}

	cursor.End = events[len(events)-1].Timestamp
	out = append(out, cursor)
	return out
}

func newPseudoCue(ev detection.Event) PseudoCue {
	return PseudoCue{
		Start:         ev.Timestamp,
		End:           ev.Timestamp,
		Confidence:    ev.Confidence,
		HasConfidence: ev.HasConfidence,
		Count:         1,
		Box:           *ev.Box,
	}
}

// fold applies the count-weighted average. Events without a confidence only
// bump the count.
func (c *PseudoCue) fold(ev detection.Event) {
	if ev.HasConfidence {
		c.Confidence = (c.Confidence*float64(c.Count) + ev.Confidence) / float64(c.Count+1)
		c.HasConfidence = true
	}
	c.Count++
}

func centerDistance(a, b detection.BoundingBox) float64 {
	ax, ay := a.Center()
	bx, by := b.Center()
	return math.Hypot(ax-bx, ay-by)
}
