package detection

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"cuesynth/internal/services"
	"cuesynth/internal/textutil"
)

// Kind file prefixes, also used as the kind names of the track dispatcher.
const (
	KindCelebrities = "celebs"
	KindPersons     = "persons"
	KindFaces       = "faces"
	KindFaceMatches = "face_matches"
	KindLabels      = "labels"
)

var errMissingList = errors.New("missing top-level detection list")

// FaceNameTable maps a person index to the most recently confirmed
// face-collection name for that index.
type FaceNameTable map[string]string

// ExtractCelebrities groups celebrity recognitions by celebrity name.
func ExtractCelebrities(shards []Shard) (Mappings, []error) {
	mappings := Mappings{}
	var errs []error
	for _, shard := range SortShards(shards) {
		var payload celebrityShard
		if err := decodeShard(shard, KindCelebrities, &payload, func() bool { return payload.Celebrities != nil }); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, rec := range *payload.Celebrities {
			if ev, ok := celebrityEvent(rec); ok {
				mappings.add(ev)
			}
		}
	}
	return mappings, errs
}

// ExtractPersons groups person tracking results by person index.
func ExtractPersons(shards []Shard) (Mappings, []error) {
	mappings := Mappings{}
	var errs []error
	for _, shard := range SortShards(shards) {
		var payload personShard
		if err := decodeShard(shard, KindPersons, &payload, func() bool { return payload.Persons != nil }); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, rec := range *payload.Persons {
			if ev, ok := personEvent(rec); ok {
				mappings.add(ev)
			}
		}
	}
	return mappings, errs
}

// ExtractEmotions groups face detections by emotion type. Only emotions whose
// confidence exceeds minConfidencePercent are kept.
func ExtractEmotions(shards []Shard, minConfidencePercent float64) (Mappings, []error) {
	mappings := Mappings{}
	var errs []error
	for _, shard := range SortShards(shards) {
		var payload faceShard
		if err := decodeShard(shard, KindFaces, &payload, func() bool { return payload.Faces != nil }); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, rec := range *payload.Faces {
			for _, ev := range emotionEvents(rec, minConfidencePercent) {
				mappings.add(ev)
			}
		}
	}
	return mappings, errs
}

// ExtractFaceMatches groups face-collection matches by display name. A person
// index without a match in the current record inherits the last name confirmed
// for that index earlier in the stream.
func ExtractFaceMatches(shards []Shard, minConfidencePercent float64) (Mappings, []error) {
	mappings := Mappings{}
	table := FaceNameTable{}
	var errs []error
	for _, shard := range SortShards(shards) {
		var payload personShard
		if err := decodeShard(shard, KindFaceMatches, &payload, func() bool { return payload.Persons != nil }); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, rec := range *payload.Persons {
			if ev, ok := resolveFaceMatch(table, rec, minConfidencePercent); ok {
				mappings.add(ev)
			}
		}
	}
	return mappings, errs
}

// ExtractLabels groups label detections by label name. Labels carry no
// position, so every event gets a zero bounding box.
func ExtractLabels(shards []Shard, minConfidencePercent float64) (Mappings, []error) {
	mappings := Mappings{}
	var errs []error
	for _, shard := range SortShards(shards) {
		var payload labelShard
		if err := decodeShard(shard, KindLabels, &payload, func() bool { return payload.Labels != nil }); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, rec := range *payload.Labels {
			if ev, ok := labelEvent(rec, minConfidencePercent); ok {
				mappings.add(ev)
			}
		}
	}
	return mappings, errs
}

func decodeShard(shard Shard, kind string, dst any, present func() bool) error {
	if err := json.Unmarshal(shard.Body, dst); err != nil {
		return services.Wrap(services.ErrMalformedShard, kind, "decode shard", shard.Key, err)
	}
	if !present() {
		return services.Wrap(services.ErrMalformedShard, kind, "decode shard", shard.Key, errMissingList)
	}
	return nil
}

func celebrityEvent(rec celebrityRecord) (Event, bool) {
	if rec.Timestamp == nil || rec.Celebrity == nil || rec.Celebrity.Name == "" {
		return Event{}, false
	}
	ev := Event{
		Timestamp: *rec.Timestamp,
		Entity:    rec.Celebrity.Name,
		Box:       rec.Celebrity.BoundingBox,
	}
	setConfidence(&ev, rec.Celebrity.Confidence)
	return ev, true
}

func personEvent(rec personRecord) (Event, bool) {
	if rec.Timestamp == nil || rec.Person == nil || rec.Person.Index == nil {
		return Event{}, false
	}
	ev := Event{
		Timestamp: *rec.Timestamp,
		Entity:    strconv.FormatInt(*rec.Person.Index, 10),
		Box:       rec.Person.BoundingBox,
	}
	setConfidence(&ev, rec.Person.Confidence)
	return ev, true
}

func emotionEvents(rec faceRecord, minConfidencePercent float64) []Event {
	if rec.Timestamp == nil || rec.Face == nil {
		return nil
	}
	var events []Event
	for _, em := range rec.Face.Emotions {
		if em.Type == "" || em.Confidence == nil || *em.Confidence <= minConfidencePercent {
			continue
		}
		ev := Event{
			Timestamp: *rec.Timestamp,
			Entity:    strings.ToLower(em.Type),
			Box:       rec.Face.BoundingBox,
		}
		setConfidence(&ev, em.Confidence)
		events = append(events, ev)
	}
	return events
}

func labelEvent(rec labelRecord, minConfidencePercent float64) (Event, bool) {
	if rec.Timestamp == nil || rec.Label == nil || rec.Label.Name == "" {
		return Event{}, false
	}
	if rec.Label.Confidence == nil || *rec.Label.Confidence <= minConfidencePercent {
		return Event{}, false
	}
	ev := Event{
		Timestamp: *rec.Timestamp,
		Entity:    rec.Label.Name,
		Box:       &BoundingBox{},
	}
	setConfidence(&ev, rec.Label.Confidence)
	return ev, true
}

// resolveFaceMatch maps one person record to a named event, registering
// confirmed names in table and reading them back for unmatched records.
func resolveFaceMatch(table FaceNameTable, rec personRecord, minConfidencePercent float64) (Event, bool) {
	if rec.Timestamp == nil || rec.Person == nil || rec.Person.Index == nil {
		return Event{}, false
	}
	confidence, known := faceMatchConfidence(rec)
	if known && confidence < minConfidencePercent {
		return Event{}, false
	}
	idx := strconv.FormatInt(*rec.Person.Index, 10)
	ev := Event{
		Timestamp:     *rec.Timestamp,
		Box:           rec.Person.BoundingBox,
		Confidence:    confidence,
		HasConfidence: known,
	}

	if len(rec.FaceMatches) > 0 {
		best := bestMatch(rec.FaceMatches)
		if best.Face == nil || best.Face.ExternalImageID == "" {
			return Event{}, false
		}
		name := textutil.DisplayName(best.Face.ExternalImageID)
		if best.Similarity != nil && *best.Similarity != 0 {
			ev.Confidence = *best.Similarity
			ev.HasConfidence = true
		}
		ev.Entity = name
		table[idx] = name
		return ev, true
	}

	name, ok := table[idx]
	if !ok {
		return Event{}, false
	}
	ev.Entity = name
	return ev, true
}

func faceMatchConfidence(rec personRecord) (float64, bool) {
	if face := rec.Person.Face; face != nil && face.Confidence != nil && *face.Confidence != 0 {
		return *face.Confidence, true
	}
	if len(rec.FaceMatches) > 0 {
		if face := rec.FaceMatches[0].Face; face != nil && face.Confidence != nil {
			return *face.Confidence, true
		}
	}
	return 0, false
}

// bestMatch picks the highest similarity; on ties the later match wins.
func bestMatch(matches []faceMatch) faceMatch {
	best := matches[0]
	for _, cur := range matches[1:] {
		if similarity(best) > similarity(cur) {
			continue
		}
		best = cur
	}
	return best
}

func similarity(m faceMatch) float64 {
	if m.Similarity == nil {
		return 0
	}
	return *m.Similarity
}

func setConfidence(ev *Event, value *float64) {
	if value == nil {
		return
	}
	ev.Confidence = *value
	ev.HasConfidence = true
}
