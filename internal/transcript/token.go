package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cuesynth/internal/detection"
	"cuesynth/internal/services"
)

// Kind is the track kind served by this package.
const Kind = "transcript"

// Token types emitted by the recognizer.
const (
	TypePronunciation = "pronunciation"
	TypePunctuation   = "punctuation"
)

// Token is one recognized word or punctuation mark. Times are in seconds.
// Confidence defaults to 1 when the recognizer omits it.
type Token struct {
	Type       string
	Start      float64
	End        float64
	Content    string
	Confidence float64
}

// IsPunctuation reports whether the token is a punctuation mark.
func (t Token) IsPunctuation() bool {
	return t.Type == TypePunctuation
}

// number accepts both JSON numbers and numeric strings; the recognizer
// emits times and confidences as strings.
type number struct {
	value float64
	set   bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", raw, err)
	}
	n.value = v
	n.set = true
	return nil
}

type transcriptShard struct {
	Results *struct {
		Items *[]rawItem `json:"items"`
	} `json:"results"`
}

type rawItem struct {
	Type         string           `json:"type"`
	StartTime    number           `json:"start_time"`
	EndTime      number           `json:"end_time"`
	Alternatives []rawAlternative `json:"alternatives"`
}

type rawAlternative struct {
	Confidence number `json:"confidence"`
	Content    string `json:"content"`
}

var errMissingItems = errors.New("missing results.items")

// DecodeShards concatenates the token lists of all shards in index order.
// Malformed shards are reported and skipped.
func DecodeShards(shards []detection.Shard) ([]Token, []error) {
	var tokens []Token
	var errs []error
	for _, shard := range detection.SortShards(shards) {
		var payload transcriptShard
		if err := json.Unmarshal(shard.Body, &payload); err != nil {
			errs = append(errs, services.Wrap(services.ErrMalformedShard, Kind, "decode shard", shard.Key, err))
			continue
		}
		if payload.Results == nil || payload.Results.Items == nil {
			errs = append(errs, services.Wrap(services.ErrMalformedShard, Kind, "decode shard", shard.Key, errMissingItems))
			continue
		}
		for _, item := range *payload.Results.Items {
			if tok, ok := item.token(); ok {
				tokens = append(tokens, tok)
			}
		}
	}
	return tokens, errs
}

func (item rawItem) token() (Token, bool) {
	if len(item.Alternatives) == 0 {
		return Token{}, false
	}
	alt := item.Alternatives[0]
	tok := Token{
		Type:       item.Type,
		Start:      item.StartTime.value,
		End:        item.EndTime.value,
		Content:    alt.Content,
		Confidence: 1,
	}
	if alt.Confidence.set {
		tok.Confidence = alt.Confidence.value
	}
	return tok, true
}
