package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cuesynth/internal/detection"
	"cuesynth/internal/services"
)

func word(content string, start, end, conf float64) Token {
	return Token{Type: TypePronunciation, Content: content, Start: start, End: end, Confidence: conf}
}

func TestSynthesizeDictionaryBigram(t *testing.T) {
	tokens := []Token{
		word("ice", 0, 0.3, 0.95),
		word("cream", 0.3, 0.6, 0.85),
	}
	dict := Dictionary{"ice cream": "Ice Cream™"}
	got := Synthesize(tokens, dict, DefaultOptions())
	want := "WEBVTT\n\n1\n00:00:00.000 --> 00:00:03.000\n<c.eight>Ice Cream™ </c>\n"
	if got != want {
		t.Fatalf("unexpected transcript:\n%q\nwant\n%q", got, want)
	}
}

func TestSynthesizeTrigramPreferred(t *testing.T) {
	tokens := []Token{
		word("new", 0, 0.2, 0.99),
		word("york", 0.2, 0.4, 0.97),
		word("city", 0.4, 0.6, 0.92),
		word("today", 0.6, 0.8, 0.99),
	}
	dict := Dictionary{"new york": "New York", "new york city": "NYC"}
	got := Synthesize(tokens, dict, DefaultOptions())
	want := "WEBVTT\n\n1\n00:00:00.000 --> 00:00:03.000\nNYC today \n"
	if got != want {
		t.Fatalf("unexpected transcript:\n%q\nwant\n%q", got, want)
	}
}

func TestSynthesizeBlocksAndPunctuation(t *testing.T) {
	tokens := []Token{
		word("hello", 0, 0.5, 1),
		{Type: TypePunctuation, Content: ".", Confidence: 1},
		word("world", 2.0, 2.4, 1),
	}
	got := Synthesize(tokens, nil, DefaultOptions())
	want := "WEBVTT\n\n1\n00:00:00.000 --> 00:00:03.000\nhello. \n\n2\n00:00:02.000 --> 00:00:05.000\nworld \n"
	if got != want {
		t.Fatalf("unexpected transcript:\n%q\nwant\n%q", got, want)
	}
}

func TestSynthesizeForcedBreak(t *testing.T) {
	var tokens []Token
	for i := 0; i < 9; i++ {
		start := float64(i) * 0.5
		tokens = append(tokens, word("w", start, start+0.5, 1))
	}
	got := Synthesize(tokens, nil, DefaultOptions())
	want := "WEBVTT\n\n1\n00:00:00.000 --> 00:00:03.000\nw w w w w w w \n\n2\n00:00:03.500 --> 00:00:06.500\nw w \n"
	if got != want {
		t.Fatalf("unexpected transcript:\n%q\nwant\n%q", got, want)
	}
}

func TestSynthesizeEmpty(t *testing.T) {
	if got := Synthesize(nil, nil, Options{}); got != "WEBVTT\n" {
		t.Fatalf("unexpected empty transcript %q", got)
	}
}

func TestStyleClass(t *testing.T) {
	tests := []struct {
		confidence float64
		want       string
	}{
		{0.95, ""},
		{0.9, ClassEight},
		{0.81, ClassEight},
		{0.8, ClassSeven},
		{0.65, ClassSix},
		{0.55, ClassFive},
		{0.5, ClassUnsure},
		{0, ClassUnsure},
	}
	for _, tt := range tests {
		if got := StyleClass(tt.confidence); got != tt.want {
			t.Fatalf("StyleClass(%v) = %q, want %q", tt.confidence, got, tt.want)
		}
	}
}

func TestDictionaryLookupHyphens(t *testing.T) {
	dict := Dictionary{"ice cream": "Ice Cream™"}
	if got, ok := dict.Lookup("ice-cream"); !ok || got != "Ice Cream™" {
		t.Fatalf("expected hyphenated hit, got %q %v", got, ok)
	}
	if got, ok := dict.Lookup("sun-dae"); ok || got != "sun dae" {
		t.Fatalf("expected normalized miss, got %q %v", got, ok)
	}
}

func TestLoadDictionary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dictionary.yaml")
	body := "\"ice  cream\": Ice Cream™\nnew-york: New York\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write dictionary: %v", err)
	}
	dict, err := LoadDictionary(path)
	if err != nil {
		t.Fatalf("LoadDictionary: %v", err)
	}
	if dict["ice cream"] != "Ice Cream™" || dict["new york"] != "New York" {
		t.Fatalf("unexpected dictionary %v", dict)
	}

	empty, err := LoadDictionary("")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty dictionary, got %v %v", empty, err)
	}
	if _, err := LoadDictionary(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing dictionary")
	}
}

func TestDecodeShards(t *testing.T) {
	shards := []detection.Shard{
		{Index: 2, Key: "transcript2.json", Body: []byte(`{"results":{"items":[
			{"type":"pronunciation","start_time":"1.5","end_time":"1.9","alternatives":[{"confidence":"0.72","content":"there"}]}
		]}}`)},
		{Index: 1, Key: "transcript1.json", Body: []byte(`{"results":{"items":[
			{"type":"pronunciation","start_time":"0.04","end_time":"0.5","alternatives":[{"confidence":"0.99","content":"hi"}]},
			{"type":"punctuation","alternatives":[{"content":","}]},
			{"type":"pronunciation","start_time":1,"end_time":1.2,"alternatives":[]}
		]}}`)},
		{Index: 3, Key: "transcript3.json", Body: []byte(`{"results":{}}`)},
	}
	tokens, errs := DecodeShards(shards)
	if len(errs) != 1 || !errors.Is(errs[0], services.ErrMalformedShard) {
		t.Fatalf("expected one malformed shard error, got %v", errs)
	}
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %+v", tokens)
	}
	if tokens[0].Content != "hi" || tokens[0].Start != 0.04 || tokens[0].Confidence != 0.99 {
		t.Fatalf("unexpected first token %+v", tokens[0])
	}
	if !tokens[1].IsPunctuation() || tokens[1].Confidence != 1 || tokens[1].Start != 0 {
		t.Fatalf("unexpected punctuation token %+v", tokens[1])
	}
	if tokens[2].Content != "there" {
		t.Fatalf("expected shard order by index, got %+v", tokens)
	}
}
