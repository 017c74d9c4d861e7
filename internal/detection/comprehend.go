package detection

import "strings"

// Kind names for the text-analysis JSON tracks.
const (
	KindEntities = "entities"
	KindPhrases  = "phrases"
)

// TextScore is a running count-weighted score for one piece of text.
type TextScore struct {
	Count      int     `json:"Count"`
	Confidence float64 `json:"Confidence"`
}

func (s *TextScore) fold(score float64) {
	s.Confidence = (s.Confidence*float64(s.Count) + score) / float64(s.Count+1)
	s.Count++
}

type comprehendShard struct {
	ResultList []comprehendResult `json:"ResultList"`
}

type comprehendResult struct {
	Entities   *[]scoredText `json:"Entities"`
	KeyPhrases *[]scoredText `json:"KeyPhrases"`
}

type scoredText struct {
	Score *float64 `json:"Score"`
	Type  string   `json:"Type"`
	Text  string   `json:"Text"`
}

// ExtractEntities folds entity detections (score above minScore, 0-1 scale)
// into Type -> lowercased text -> score buckets.
func ExtractEntities(shards []Shard, minScore float64) (map[string]map[string]*TextScore, []error) {
	mappings := map[string]map[string]*TextScore{}
	var errs []error
	for _, shard := range SortShards(shards) {
		var payload comprehendShard
		if err := decodeShard(shard, KindEntities, &payload, func() bool {
			return len(payload.ResultList) > 0 && payload.ResultList[0].Entities != nil
		}); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, entity := range *payload.ResultList[0].Entities {
			if entity.Score == nil || *entity.Score <= minScore || entity.Text == "" {
				continue
			}
			bucket := mappings[entity.Type]
			if bucket == nil {
				bucket = map[string]*TextScore{}
				mappings[entity.Type] = bucket
			}
			foldText(bucket, entity.Text, *entity.Score)
		}
	}
	return mappings, errs
}

// ExtractKeyPhrases folds key phrases (score above minScore) into a single
// lowercased text -> score bucket.
func ExtractKeyPhrases(shards []Shard, minScore float64) (map[string]*TextScore, []error) {
	bucket := map[string]*TextScore{}
	var errs []error
	for _, shard := range SortShards(shards) {
		var payload comprehendShard
		if err := decodeShard(shard, KindPhrases, &payload, func() bool {
			return len(payload.ResultList) > 0 && payload.ResultList[0].KeyPhrases != nil
		}); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, phrase := range *payload.ResultList[0].KeyPhrases {
			if phrase.Score == nil || *phrase.Score <= minScore || phrase.Text == "" {
				continue
			}
			foldText(bucket, phrase.Text, *phrase.Score)
		}
	}
	return bucket, errs
}

func foldText(bucket map[string]*TextScore, text string, score float64) {
	key := strings.ToLower(text)
	if existing, ok := bucket[key]; ok {
		existing.fold(score)
		return
	}
	bucket[key] = &TextScore{Count: 1, Confidence: score}
}
