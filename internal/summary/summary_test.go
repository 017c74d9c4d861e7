package summary_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cuesynth/internal/detection"
	"cuesynth/internal/logging"
	"cuesynth/internal/objectstore"
	"cuesynth/internal/progress"
	"cuesynth/internal/services"
	"cuesynth/internal/summary"
	"cuesynth/internal/testsupport"
	"cuesynth/internal/timeline"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTopItemsFloors(t *testing.T) {
	inputs := []summary.NamedTimelines{
		{Name: "a", Timelines: []timeline.Timeline{{Confidence: 0.9, Count: 10}}},
		{Name: "b", Timelines: []timeline.Timeline{{Confidence: 0.95, Count: 1}}},
	}
	got, ok := summary.TopItems(inputs, summary.TopOptions{MinCount: 5, MinConfidence: 0.5, Top: 5})
	if !ok {
		t.Fatal("expected a ranked category")
	}
	if len(got) != 1 || got[0].Name != "a" || got[0].Count != 10 || !approx(got[0].Confidence, 0.9) {
		t.Fatalf("unexpected result %+v", got)
	}
	if len(got[0].Timelines) != 1 || got[0].Timelines[0] != (summary.Span{}) {
		t.Fatalf("expected zero anchor timeline, got %+v", got[0].Timelines)
	}
}

func TestTopItemsWeightsAndRanks(t *testing.T) {
	inputs := []summary.NamedTimelines{
		{Name: "Low", Timelines: []timeline.Timeline{{Confidence: 0.6, Count: 4}, {Confidence: 0.8, Count: 4}}},
		{Name: "High", Timelines: []timeline.Timeline{{Confidence: 0.95, Count: 3}}},
		{Name: "Mid", Timelines: []timeline.Timeline{{Confidence: 0.85, Count: 3}}},
	}
	got, ok := summary.TopItems(inputs, summary.TopOptions{MinCount: 2, MinConfidence: 0.5, Top: 2})
	if !ok {
		t.Fatal("expected results")
	}
	if strings.Join(got.Names(), ",") != "High,Mid" {
		t.Fatalf("unexpected order %v", got.Names())
	}

	all, _ := summary.TopItems(inputs, summary.TopOptions{MinCount: 2, MinConfidence: 0.5})
	if len(all) != 3 || all[2].Name != "Low" || !approx(all[2].Confidence, 0.7) || all[2].Count != 8 {
		t.Fatalf("unexpected weighted entry %+v", all)
	}
}

func TestTopItemsStoplist(t *testing.T) {
	inputs := []summary.NamedTimelines{
		{Name: "Human", Timelines: []timeline.Timeline{{Confidence: 0.99, Count: 20}}},
		{Name: "Car", Timelines: []timeline.Timeline{{Confidence: 0.95, Count: 20}}},
		{Name: "Tree", Timelines: []timeline.Timeline{{Confidence: 0.92, Count: 20}}},
	}
	got, ok := summary.TopItems(inputs, summary.TopOptions{
		MinCount:      5,
		MinConfidence: 0.9,
		Top:           5,
		Stoplist:      summary.DefaultStoplists().For(summary.CategoryLabels),
	})
	if !ok {
		t.Fatal("expected results")
	}
	if strings.Join(got.Names(), ",") != "Car,Tree" {
		t.Fatalf("stoplisted entry not removed: %v", got.Names())
	}

	if _, ok := summary.TopItems(inputs[:1], summary.TopOptions{MinCount: 5, MinConfidence: 0.9, Stoplist: []string{"human"}}); ok {
		t.Fatal("expected no results once every entry is stoplisted")
	}
}

func TestTopItemsLaterDuplicateReplaces(t *testing.T) {
	inputs := []summary.NamedTimelines{
		{Name: "Dog", Timelines: []timeline.Timeline{{Confidence: 0.95, Count: 20}}},
		{Name: "Dog", Timelines: []timeline.Timeline{{Confidence: 0.91, Count: 30}}},
	}
	got, ok := summary.TopItems(inputs, summary.TopOptions{MinCount: 5, MinConfidence: 0.9})
	if !ok || len(got) != 1 || got[0].Count != 30 {
		t.Fatalf("expected later input to replace earlier, got %+v", got)
	}
}

func TestTopFlat(t *testing.T) {
	scores := map[string]detection.TextScore{
		"new york":    {Count: 4, Confidence: 0.95},
		"paris":       {Count: 1, Confidence: 0.99},
		"springfield": {Count: 3, Confidence: 0.7},
		"london":      {Count: 5, Confidence: 0.97},
	}
	got, ok := summary.TopFlat(scores, summary.TopOptions{MinCount: 2, MinConfidence: 0.8, Top: 10})
	if !ok {
		t.Fatal("expected results")
	}
	if strings.Join(got.Names(), ",") != "london,new york" {
		t.Fatalf("unexpected names %v", got.Names())
	}
	if _, ok := summary.TopFlat(nil, summary.TopOptions{}); ok {
		t.Fatal("expected empty dictionary to rank nothing")
	}
}

func TestCelebrityTimelines(t *testing.T) {
	opts := timeline.MergeOptions{DriftMs: 3000, MinConfidence: 0.6, MinDurationMs: 10000}
	inputs := []summary.NamedTimelines{
		{Name: "Jane Doe", Timelines: []timeline.Timeline{
			{Confidence: 0.9, Count: 10, In: 0, Out: 6000},
			{Confidence: 0.7, Count: 10, In: 8000, Out: 15000},
			{Confidence: 0.8, Count: 2, In: 40000, Out: 41000},
		}},
		{Name: "Brief", Timelines: []timeline.Timeline{{Confidence: 0.99, Count: 3, In: 0, Out: 2000}}},
	}
	got, ok := summary.CelebrityTimelines(inputs, opts)
	if !ok {
		t.Fatal("expected a celebrity entry")
	}
	if len(got) != 1 || got[0].Name != "Jane Doe" {
		t.Fatalf("unexpected entries %+v", got)
	}
	jane := got[0]
	if jane.Count != 20 || !approx(jane.Confidence, 0.8) {
		t.Fatalf("unexpected aggregate %+v", jane)
	}
	want := []summary.Span{{}, {In: 0, Out: 15000}}
	if len(jane.Timelines) != len(want) {
		t.Fatalf("unexpected timelines %+v", jane.Timelines)
	}
	for i := range want {
		if jane.Timelines[i] != want[i] {
			t.Fatalf("timeline %d = %+v, want %+v", i, jane.Timelines[i], want[i])
		}
	}

	replaced, _ := summary.CelebrityTimelines(append(inputs, summary.NamedTimelines{
		Name:      "Jane Doe",
		Timelines: []timeline.Timeline{{Confidence: 0.95, Count: 4, In: 0, Out: 20000}},
	}), opts)
	if len(replaced) != 1 || replaced[0].Count != 4 {
		t.Fatalf("expected later face match to replace celebrity entry, got %+v", replaced)
	}
}

func TestCategoryEncoding(t *testing.T) {
	cat := summary.Category{
		{Name: "Zed", Confidence: 0.9, Count: 3, Timelines: []summary.Span{{}}},
		{Name: "Abe", Confidence: 0.8, Count: 2, Timelines: []summary.Span{{}}},
	}
	data, err := json.Marshal(cat)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"Zed":{"Confidence":0.9,"Count":3,"Timelines":[{"In":0,"Out":0}]},"Abe":{"Confidence":0.8,"Count":2,"Timelines":[{"In":0,"Out":0}]}}`
	if string(data) != want {
		t.Fatalf("unexpected encoding\n got %s\nwant %s", data, want)
	}

	var empty summary.Category
	data, err = json.Marshal(struct {
		Labels summary.Category `json:"Labels"`
	}{empty})
	if err != nil {
		t.Fatalf("marshal empty: %v", err)
	}
	if string(data) != `{"Labels":{}}` {
		t.Fatalf("expected empty category to encode as object, got %s", data)
	}
}

func TestLoadStoplists(t *testing.T) {
	lists, err := summary.LoadStoplists("")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if strings.Join(lists.For(summary.CategoryLabels), ",") != "human,person,people,text" {
		t.Fatalf("unexpected default labels %v", lists.For(summary.CategoryLabels))
	}

	target := filepath.Join(t.TempDir(), "stoplist.yaml")
	if err := os.WriteFile(target, []byte("Labels:\n  - Car\n  - \" \"\nemotions:\n  - CALM\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	lists, err = summary.LoadStoplists(target)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if strings.Join(lists.For(summary.CategoryLabels), ",") != "Car" {
		t.Fatalf("expected file to replace labels, got %v", lists.For(summary.CategoryLabels))
	}
	if strings.Join(lists.For(summary.CategoryEmotions), ",") != "CALM" {
		t.Fatalf("unexpected emotions %v", lists.For(summary.CategoryEmotions))
	}

	if _, err := summary.LoadStoplists(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file error")
	}
}

func metaBody(t *testing.T, timelines ...timeline.Timeline) []byte {
	t.Helper()
	return testsupport.MarshalJSON(t, timelines)
}

func seedSummaryStore(t *testing.T) *objectstore.MemoryStore {
	t.Helper()
	labelTimelines := metaBody(t, timeline.Timeline{Confidence: 0.95, Count: 12, In: 0, Out: 5000})
	return testsupport.SeedShards(t, "proxy", map[string][]byte{
		"media/1/meta/celebs/jane_doe.json": metaBody(t,
			timeline.Timeline{Confidence: 0.9, Count: 10, In: 0, Out: 6000},
			timeline.Timeline{Confidence: 0.7, Count: 10, In: 8000, Out: 15000},
		),
		"media/1/meta/face_matches/john_roe.json": metaBody(t,
			timeline.Timeline{Confidence: 0.8, Count: 5, In: 20000, Out: 40000},
		),
		"media/1/meta/faces/happy.json": metaBody(t,
			timeline.Timeline{Confidence: 0.97, Count: 11, In: 0, Out: 1000},
		),
		"media/1/meta/labels/human.json":      labelTimelines,
		"media/1/meta/labels/sports_car.json": labelTimelines,
		"media/1/meta/labels/broken.json":     []byte("{not json"),
		"media/1/meta/phrases/phrases.json":   []byte(`{"KeyPhrases":{"the game":{"Count":3,"Confidence":0.9},"a thing":{"Count":1,"Confidence":0.99}}}`),
		"media/1/meta/entities/entities.json": []byte(`{"LOCATION":{"Boston":{"Count":1,"Confidence":0.9}},"PERSON":{"Sam":{"Count":2,"Confidence":0.5}}}`),
	})
}

func TestBuilderWritesResults(t *testing.T) {
	store := seedSummaryStore(t)
	cfg := testsupport.NewConfig(t)
	sink := &progress.MemorySink{}
	builder := summary.NewBuilder(cfg, store, logging.NewNop(), summary.WithProgressSink(sink))

	results, key, err := builder.Build(context.Background(), summary.Request{
		Bucket:     "proxy",
		Prefix:     "media/1",
		UUID:       "asset-1",
		DurationMs: 61500,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if key != "media/1/analytics/results.json" {
		t.Fatalf("unexpected key %q", key)
	}
	if results.UUID != "asset-1" || results.Duration != 61 || results.StartAt != 0 {
		t.Fatalf("unexpected header %+v", results)
	}
	if strings.Join(results.Celebrities.Names(), ",") != "Jane Doe,John Roe" {
		t.Fatalf("unexpected celebrities %v", results.Celebrities.Names())
	}
	if strings.Join(results.Emotions.Names(), ",") != "Happy" {
		t.Fatalf("unexpected emotions %v", results.Emotions.Names())
	}
	if strings.Join(results.Labels.Names(), ",") != "Sports Car" {
		t.Fatalf("unexpected labels %v", results.Labels.Names())
	}
	if strings.Join(results.KeyPhrases.Names(), ",") != "the game" {
		t.Fatalf("unexpected key phrases %v", results.KeyPhrases.Names())
	}
	if strings.Join(results.Locations.Names(), ",") != "Boston" {
		t.Fatalf("unexpected locations %v", results.Locations.Names())
	}
	if len(results.Persons) != 0 {
		t.Fatalf("expected no persons, got %v", results.Persons.Names())
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(testsupport.MustGet(t, store, "proxy", key), &doc); err != nil {
		t.Fatalf("decode stored results: %v", err)
	}
	if string(doc["Persons"]) != "{}" {
		t.Fatalf("expected empty persons object, got %s", doc["Persons"])
	}
	obj, _ := store.Object("proxy", key)
	if obj.ContentType != objectstore.ContentTypeJSON {
		t.Fatalf("unexpected content type %q", obj.ContentType)
	}

	events := sink.Events()
	var percents []int
	for _, ev := range events {
		percents = append(percents, ev.Percent)
	}
	if len(events) != 4 || events[3].Status != progress.StatusCompleted {
		t.Fatalf("unexpected progress events %+v", events)
	}
	if percents[0] != 1 || percents[1] != 50 || percents[2] != 75 || percents[3] != 100 {
		t.Fatalf("unexpected percents %v", percents)
	}
}

func TestBuilderEmptyPrefix(t *testing.T) {
	store := objectstore.NewMemoryStore()
	builder := summary.NewBuilder(nil, store, logging.NewNop())

	results, key, err := builder.Build(context.Background(), summary.Request{Bucket: "proxy", Prefix: "none"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if results.UUID == "" {
		t.Fatal("expected generated uuid")
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(testsupport.MustGet(t, store, "proxy", key), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, name := range []string{"Celebrities", "Emotions", "Labels", "KeyPhrases", "Locations", "Persons"} {
		if string(doc[name]) != "{}" {
			t.Fatalf("expected %s to be empty object, got %s", name, doc[name])
		}
	}
}

func TestBuilderValidation(t *testing.T) {
	builder := summary.NewBuilder(nil, objectstore.NewMemoryStore(), logging.NewNop())
	_, _, err := builder.Build(context.Background(), summary.Request{Bucket: "proxy"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBuilderStoplistFromConfig(t *testing.T) {
	store := seedSummaryStore(t)
	cfg := testsupport.NewConfig(t, testsupport.WithStoplist(map[string][]string{
		"labels": {"sports car"},
	}))
	builder := summary.NewBuilder(cfg, store, logging.NewNop())

	results, _, err := builder.Build(context.Background(), summary.Request{Bucket: "proxy", Prefix: "media/1"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Join(results.Labels.Names(), ",") != "Human" {
		t.Fatalf("expected configured stoplist to replace defaults, got %v", results.Labels.Names())
	}
}

func TestBuilderBadStoplist(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.StoplistFile = filepath.Join(t.TempDir(), "missing.yaml")
	builder := summary.NewBuilder(cfg, objectstore.NewMemoryStore(), logging.NewNop())

	_, _, err := builder.Build(context.Background(), summary.Request{Bucket: "proxy", Prefix: "media/1"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
