package track_test

import (
	"testing"

	"cuesynth/internal/detection"
	"cuesynth/internal/timeline"
	"cuesynth/internal/track"
)

func TestRenderCuesByStyle(t *testing.T) {
	cue := timeline.PseudoCue{
		Start:         0,
		End:           2900,
		Confidence:    80,
		HasConfidence: true,
		Count:         3,
		Box:           detection.BoundingBox{Left: 0.25, Top: 0.5, Width: 0.5, Height: 0.25},
	}
	tests := []struct {
		name   string
		kind   string
		style  track.RenderStyle
		entity string
		cue    timeline.PseudoCue
		want   string
	}{
		{
			name:   "boxed",
			kind:   detection.KindCelebrities,
			style:  track.StyleBoxed,
			entity: "Jane Doe",
			cue:    cue,
			want: "WEBVTT\n\n00:00:00.000 --> 00:00:02.900 align:center line:50% position:50% size:20%\n" +
				"<c.celebs>Jane Doe</c> <c.confidence>(80.00)</c>\n",
		},
		{
			name:   "boxed without confidence",
			kind:   detection.KindCelebrities,
			style:  track.StyleBoxed,
			entity: "John Roe",
			cue:    timeline.PseudoCue{End: 500, Count: 1, Box: cue.Box},
			want:   "WEBVTT\n\n00:00:00.000 --> 00:00:00.500 align:center line:50% position:50% size:20%\n<c.celebs>John Roe</c>\n",
		},
		{
			name:   "person",
			kind:   detection.KindPersons,
			style:  track.StylePerson,
			entity: "3",
			cue:    cue,
			want:   "WEBVTT\n\n00:00:00.000 --> 00:00:02.900 line:50% position:50% align:middle\n<c.persons>Person 3</c>\n",
		},
		{
			name:   "label",
			kind:   detection.KindLabels,
			style:  track.StyleLabel,
			entity: "Dog",
			cue:    timeline.PseudoCue{Start: 1000, End: 4000, Confidence: 95, HasConfidence: true, Count: 4},
			want:   "WEBVTT\n\n00:00:01.000 --> 00:00:04.000 align:center size:20%\n<c.labels>Dog</c> <c.confidence>(95.00)</c>\n",
		},
		{
			name:   "transcript style has no entity cues",
			kind:   "transcript",
			style:  track.StyleTranscript,
			entity: "transcript",
			cue:    cue,
			want:   "WEBVTT\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := track.RenderCues(tt.kind, tt.style, tt.entity, []timeline.PseudoCue{tt.cue})
			if got != tt.want {
				t.Fatalf("unexpected vtt:\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestRenderCuesNoCues(t *testing.T) {
	if got := track.RenderCues(detection.KindCelebrities, track.StyleBoxed, "Nobody", nil); got != "WEBVTT\n" {
		t.Fatalf("unexpected empty document %q", got)
	}
}
