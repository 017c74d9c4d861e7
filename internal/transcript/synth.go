package transcript

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"cuesynth/internal/webvtt"
)

// Options holds the dialogue block timing rules, all in seconds.
type Options struct {
	// PauseSeconds is the gap after a token's end that starts a new block.
	PauseSeconds float64
	// BlockSeconds is the fixed display span of every block.
	BlockSeconds float64
	// ForcedBreakSeconds forces a new block once this much time has passed
	// since the current block started.
	ForcedBreakSeconds float64
}

// DefaultOptions returns the standard block timing.
func DefaultOptions() Options {
	return Options{PauseSeconds: 0.9, BlockSeconds: 3, ForcedBreakSeconds: 3}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.PauseSeconds <= 0 {
		o.PauseSeconds = def.PauseSeconds
	}
	if o.BlockSeconds <= 0 {
		o.BlockSeconds = def.BlockSeconds
	}
	if o.ForcedBreakSeconds <= 0 {
		o.ForcedBreakSeconds = def.ForcedBreakSeconds
	}
	return o
}

// Confidence style classes, from least to most certain. Tokens above the
// plain threshold render without a class.
const (
	ClassUnsure = "unsure"
	ClassFive   = "five"
	ClassSix    = "six"
	ClassSeven  = "seven"
	ClassEight  = "eight"

	plainThreshold = 0.9
)

// StyleClass returns the cue class for a confidence, or "" when the text
// renders plain.
func StyleClass(confidence float64) string {
	switch {
	case confidence > plainThreshold:
		return ""
	case confidence > 0.8:
		return ClassEight
	case confidence > 0.7:
		return ClassSeven
	case confidence > 0.6:
		return ClassSix
	case confidence > 0.5:
		return ClassFive
	default:
		return ClassUnsure
	}
}

// Synthesize renders tokens as a WebVTT document in a single forward pass.
func Synthesize(tokens []Token, dict Dictionary, opts Options) string {
	if len(tokens) == 0 {
		return webvtt.Header + "\n"
	}
	opts = opts.withDefaults()

	var b bytes.Buffer
	var (
		started   bool
		prevEnd   float64
		lastBreak float64
		block     = 1
	)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.IsPunctuation() {
			trimTrailingGap(&b)
		}

		pause := tok.Start-prevEnd > opts.PauseSeconds
		forced := tok.Start-lastBreak > opts.ForcedBreakSeconds
		if !started || pause || forced {
			lastBreak = tok.Start
			if block == 1 {
				b.WriteString(webvtt.Header)
			}
			b.WriteString("\n\n")
			b.WriteString(strconv.Itoa(block))
			b.WriteByte('\n')
			b.WriteString(webvtt.FormatSeconds(tok.Start))
			b.WriteString(" --> ")
			b.WriteString(webvtt.FormatSeconds(tok.Start + opts.BlockSeconds))
			b.WriteByte('\n')
			block++
			started = true
		}
		if tok.End != 0 {
			prevEnd = tok.End
		}

		phrase, _ := dict.Lookup(tok.Content)
		confidence := tok.Confidence
		if corrected, conf, consumed, ok := lookahead(tokens[i:], dict); ok {
			phrase = corrected
			confidence = conf
			i += consumed - 1
		}

		if class := StyleClass(confidence); class == "" {
			b.WriteString(phrase)
			b.WriteByte(' ')
		} else {
			b.WriteString("<c.")
			b.WriteString(class)
			b.WriteByte('>')
			b.WriteString(phrase)
			b.WriteString(" </c>")
		}
	}
	b.WriteByte('\n')
	return b.String()
}

// lookahead tries a three-token window, then a two-token window, against the
// dictionary. A hit reports the replacement, the minimum confidence across the
// window and the number of tokens it covers.
func lookahead(window []Token, dict Dictionary) (string, float64, int, bool) {
	for _, size := range []int{3, 2} {
		if len(window) < size {
			continue
		}
		phrase := joinTokens(window[:size])
		replacement, ok := dict.Lookup(phrase)
		if !ok || replacement == phrase {
			continue
		}
		return replacement, minConfidence(window[:size]), size, true
	}
	return "", 0, 0, false
}

func joinTokens(tokens []Token) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 && !tok.IsPunctuation() {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Content)
	}
	return b.String()
}

func minConfidence(tokens []Token) float64 {
	lowest := math.Inf(1)
	for _, tok := range tokens {
		lowest = math.Min(lowest, tok.Confidence)
	}
	return lowest
}

// trimTrailingGap drops one trailing space or newline so punctuation attaches
// to the preceding word.
func trimTrailingGap(b *bytes.Buffer) {
	n := b.Len()
	if n == 0 {
		return
	}
	if last := b.Bytes()[n-1]; last == ' ' || last == '\n' {
		b.Truncate(n - 1)
	}
}
