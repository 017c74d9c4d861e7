package track

import (
	"fmt"
	"math"

	"cuesynth/internal/timeline"
	"cuesynth/internal/webvtt"
)

const cueSizePercent = 20

// RenderCues renders an entity's pseudo-cues into a WebVTT document using the
// given style. Transcript and JSON styles have no per-entity cues and render
// an empty document.
func RenderCues(kind string, style RenderStyle, name string, cues []timeline.PseudoCue) string {
	out := make([]webvtt.Cue, 0, len(cues))
	for _, cue := range cues {
		if rendered, ok := renderCue(kind, style, name, cue); ok {
			out = append(out, rendered)
		}
	}
	return webvtt.Render(out)
}

func renderCue(kind string, style RenderStyle, name string, cue timeline.PseudoCue) (webvtt.Cue, bool) {
	rendered := webvtt.Cue{Start: cue.Start, End: cue.End}
	switch style {
	case StyleBoxed:
		rendered.Settings = []webvtt.Setting{
			webvtt.Align("center"),
			webvtt.Line(linePercent(cue)),
			webvtt.Position(positionPercent(cue)),
			webvtt.Size(cueSizePercent),
		}
		rendered.Body = []string{classed(kind, name) + confidenceSuffix(cue)}
	case StylePerson:
		rendered.Settings = []webvtt.Setting{
			webvtt.Line(linePercent(cue)),
			webvtt.Position(positionPercent(cue)),
			webvtt.Align("middle"),
		}
		rendered.Body = []string{classed(kind, "Person "+name)}
	case StyleLabel:
		rendered.Settings = []webvtt.Setting{
			webvtt.Align("center"),
			webvtt.Size(cueSizePercent),
		}
		rendered.Body = []string{classed(kind, name) + confidenceSuffix(cue)}
	default:
		return webvtt.Cue{}, false
	}
	return rendered, true
}

func linePercent(cue timeline.PseudoCue) int {
	return int(math.Floor(cue.Box.Top * 100))
}

func positionPercent(cue timeline.PseudoCue) int {
	return int(math.Floor((cue.Box.Left + cue.Box.Width/2) * 100))
}

func classed(class, text string) string {
	return "<c." + class + ">" + text + "</c>"
}

// A zero average renders without the annotation, matching detections that
// never reported a confidence.
func confidenceSuffix(cue timeline.PseudoCue) string {
	if !cue.HasConfidence || cue.Confidence == 0 {
		return ""
	}
	return fmt.Sprintf(" <c.confidence>(%.2f)</c>", cue.Confidence)
}
