package track_test

import (
	"context"
	"errors"
	"testing"

	"cuesynth/internal/detection"
	"cuesynth/internal/logging"
	"cuesynth/internal/progress"
	"cuesynth/internal/services"
	"cuesynth/internal/testsupport"
	"cuesynth/internal/track"
)

func TestRunnerPublishesProgress(t *testing.T) {
	store := testsupport.SeedShards(t, "analysis", map[string][]byte{
		"job/celebs1.json":   []byte(celebrityShard),
		"job/labels1.json":   []byte(`{"Labels":[{"Timestamp":0,"Label":{"Name":"Dog","Confidence":95}}]}`),
		"other/celebs1.json": []byte(`not json`),
	})
	cfg := testsupport.NewConfig(t)
	dispatcher := track.NewDispatcher(cfg, store, logging.NewNop())
	sink := &progress.MemorySink{}
	runner := track.NewRunner(dispatcher, store, sink, logging.NewNop(), []string{detection.KindCelebrities, detection.KindLabels})

	report, err := runner.Run(context.Background(), track.RunRequest{
		Bucket:     "analysis",
		Prefix:     "job/",
		DestBucket: "proxy",
		DestPrefix: "media/1",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.RunID == "" {
		t.Fatal("expected run id")
	}
	if len(report.Results) != 2 || report.Results[0].Kind != detection.KindCelebrities || report.Results[1].Kind != detection.KindLabels {
		t.Fatalf("unexpected results %+v", report.Results)
	}
	if report.Results[0].SkippedShards != 0 {
		t.Fatalf("shards outside the prefix must not be read, got %d skipped", report.Results[0].SkippedShards)
	}

	events := sink.Events()
	want := []struct {
		status  progress.Status
		kind    string
		percent int
	}{
		{progress.StatusInProgress, "", 1},
		{progress.StatusInProgress, detection.KindCelebrities, 11},
		{progress.StatusInProgress, detection.KindLabels, 21},
		{progress.StatusCompleted, "", 100},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), events)
	}
	for i, w := range want {
		ev := events[i]
		if ev.Status != w.status || ev.Kind != w.kind || ev.Percent != w.percent {
			t.Fatalf("event %d = %+v, want %+v", i, ev, w)
		}
		if ev.RunID != report.RunID {
			t.Fatalf("event %d carries run id %q, want %q", i, ev.RunID, report.RunID)
		}
	}
}

func TestRunnerRejectsUnknownKindUpFront(t *testing.T) {
	store := testsupport.SeedShards(t, "analysis", map[string][]byte{"job/celebs1.json": []byte(celebrityShard)})
	dispatcher := track.NewDispatcher(testsupport.NewConfig(t), store, logging.NewNop())
	sink := &progress.MemorySink{}
	runner := track.NewRunner(dispatcher, store, sink, logging.NewNop(), nil)

	_, err := runner.Run(context.Background(), track.RunRequest{
		Bucket:     "analysis",
		Prefix:     "job/",
		DestBucket: "proxy",
		DestPrefix: "media/1",
		Kinds:      []string{detection.KindCelebrities, "gestures"},
	})
	if !errors.Is(err, services.ErrUnsupportedKind) {
		t.Fatalf("expected unsupported kind, got %v", err)
	}
	if keys, _ := store.List(context.Background(), "proxy", ""); len(keys) != 0 {
		t.Fatalf("expected no uploads before the kind check, got %v", keys)
	}
	events := sink.Events()
	if len(events) != 1 || events[0].Status != progress.StatusError || events[0].Kind != "gestures" {
		t.Fatalf("expected a single ERROR event, got %+v", events)
	}
}

func TestRunnerStopsOnKindFailure(t *testing.T) {
	store := testsupport.SeedShards(t, "analysis", map[string][]byte{"job/celebs1.json": []byte(celebrityShard)})
	dispatcher := track.NewDispatcher(testsupport.NewConfig(t), store, logging.NewNop())
	sink := &progress.MemorySink{}
	runner := track.NewRunner(dispatcher, store, sink, logging.NewNop(), nil)

	report, err := runner.Run(context.Background(), track.RunRequest{
		Bucket:     "analysis",
		Keys:       []string{"job/celebs1.json", "job/labels1.json"},
		DestBucket: "proxy",
		DestPrefix: "media/1",
		Kinds:      []string{detection.KindCelebrities, detection.KindLabels},
	})
	if !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected collaborator error for missing labels shard, got %v", err)
	}
	if len(report.Results) != 1 {
		t.Fatalf("expected celebs result before failure, got %+v", report.Results)
	}
	events := sink.Events()
	last := events[len(events)-1]
	if last.Status != progress.StatusError || last.Kind != detection.KindLabels || last.Percent != 11 {
		t.Fatalf("unexpected final event %+v", last)
	}
}
