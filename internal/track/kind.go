package track

import (
	"slices"
	"strings"

	"cuesynth/internal/config"
	"cuesynth/internal/detection"
	"cuesynth/internal/services"
	"cuesynth/internal/timeline"
	"cuesynth/internal/transcript"
)

// RenderStyle selects how a kind's output is produced.
type RenderStyle int

const (
	// StyleBoxed renders name and confidence at the box position.
	StyleBoxed RenderStyle = iota
	// StylePerson renders "Person N" at the box position without confidence.
	StylePerson
	// StyleLabel renders name and confidence without position settings.
	StyleLabel
	// StyleTranscript renders dialogue blocks from transcript tokens.
	StyleTranscript
	// StyleJSON writes a single aggregated meta document and no cues.
	StyleJSON
)

func (s RenderStyle) String() string {
	switch s {
	case StyleBoxed:
		return "boxed"
	case StylePerson:
		return "person"
	case StyleLabel:
		return "label"
	case StyleTranscript:
		return "transcript"
	case StyleJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Params is the per-kind parameter record. MinConfidence uses the 0-1 scale;
// extractors that filter on detector confidence use MinConfidence*100.
type Params struct {
	TimeDriftMs     uint64
	TimelineDriftMs uint64
	PositionDrift   float64
	MinConfidence   float64
	Style           RenderStyle
}

// MinConfidencePercent returns MinConfidence on the detector's 0-100 scale.
func (p Params) MinConfidencePercent() float64 {
	return p.MinConfidence * 100
}

// ClusterParams returns the first-pass clustering parameters.
func (p Params) ClusterParams() timeline.Params {
	return timeline.Params{TimeDriftMs: p.TimeDriftMs, PositionDrift: p.PositionDrift}
}

// MergeOptions returns the timeline merge options. Track timelines carry no
// confidence or duration floor.
func (p Params) MergeOptions() timeline.MergeOptions {
	return timeline.MergeOptions{DriftMs: p.TimelineDriftMs}
}

const (
	defaultTimeDriftMs     = 300
	defaultTimelineDriftMs = 1100
	defaultPositionDrift   = 0.05
	defaultMinConfidence   = 0.5
)

func builtinParams() map[string]Params {
	base := Params{
		TimeDriftMs:     defaultTimeDriftMs,
		TimelineDriftMs: defaultTimelineDriftMs,
		PositionDrift:   defaultPositionDrift,
		MinConfidence:   defaultMinConfidence,
	}
	with := func(minConfidence float64, style RenderStyle) Params {
		p := base
		p.MinConfidence = minConfidence
		p.Style = style
		return p
	}

	faceMatches := with(0.6, StyleBoxed)
	faceMatches.TimeDriftMs = 500

	return map[string]Params{
		detection.KindCelebrities: with(0.7, StyleBoxed),
		detection.KindPersons:     with(0.8, StylePerson),
		detection.KindFaces:       with(0.8, StyleBoxed),
		detection.KindFaceMatches: faceMatches,
		detection.KindLabels:      with(0.8, StyleLabel),
		transcript.Kind:           with(defaultMinConfidence, StyleTranscript),
		detection.KindEntities:    with(defaultMinConfidence, StyleJSON),
		detection.KindPhrases:     with(defaultMinConfidence, StyleJSON),
	}
}

// Table resolves kind names to parameters.
type Table struct {
	params map[string]Params
}

// DefaultTable returns the built-in parameters for every supported kind.
func DefaultTable() *Table {
	return &Table{params: builtinParams()}
}

// NewTable returns the built-in table with configuration overrides applied.
func NewTable(overrides map[string]config.KindOverride) *Table {
	table := DefaultTable()
	for kind, override := range overrides {
		kind = strings.ToLower(strings.TrimSpace(kind))
		p, ok := table.params[kind]
		if !ok {
			continue
		}
		if override.TimeDriftMs != nil {
			p.TimeDriftMs = *override.TimeDriftMs
		}
		if override.TimelineDriftMs != nil {
			p.TimelineDriftMs = *override.TimelineDriftMs
		}
		if override.PositionDrift != nil {
			p.PositionDrift = *override.PositionDrift
		}
		if override.MinConfidence != nil {
			p.MinConfidence = *override.MinConfidence
		}
		table.params[kind] = p
	}
	return table
}

// Lookup returns the parameters for kind. Unknown kinds are an
// ErrUnsupportedKind error.
func (t *Table) Lookup(kind string) (Params, error) {
	p, ok := t.params[kind]
	if !ok {
		return Params{}, services.Wrap(services.ErrUnsupportedKind, kind, "lookup kind", "no renderer registered", nil)
	}
	return p, nil
}

// Kinds lists the table's kinds in default run order.
func (t *Table) Kinds() []string {
	kinds := make([]string, 0, len(t.params))
	for _, kind := range config.KnownKinds() {
		if _, ok := t.params[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	for kind := range t.params {
		if !slices.Contains(kinds, kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
