package summary

import (
	"context"
	"encoding/json"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"cuesynth/internal/config"
	"cuesynth/internal/detection"
	"cuesynth/internal/logging"
	"cuesynth/internal/objectstore"
	"cuesynth/internal/progress"
	"cuesynth/internal/services"
	"cuesynth/internal/textutil"
	"cuesynth/internal/timeline"
	"cuesynth/internal/track"
)

// Kind tags summary progress events and errors.
const Kind = "summary"

const (
	emotionMinCount    = 10
	labelMinCount      = 5
	keyPhraseMinCount  = 2
	itemMinConfidence  = 0.9
	textMinConfidence  = 0.8
	locationEntityType = "LOCATION"
	personEntityType   = "PERSON"
)

// Request identifies the track output to summarize.
type Request struct {
	Bucket     string `json:"bucket"`
	Prefix     string `json:"prefix"`
	UUID       string `json:"uuid"`
	DurationMs uint64 `json:"durationMs"`
}

// Results is the analytics document. Categories with no qualifying entries
// encode as {}.
type Results struct {
	UUID        string   `json:"UUID"`
	StartAt     uint64   `json:"StartAt"`
	Duration    uint64   `json:"Duration"`
	Celebrities Category `json:"Celebrities"`
	Emotions    Category `json:"Emotions"`
	Labels      Category `json:"Labels"`
	KeyPhrases  Category `json:"KeyPhrases"`
	Locations   Category `json:"Locations"`
	Persons     Category `json:"Persons"`
}

// ResultsKey returns <prefix>/analytics/results.json.
func ResultsKey(prefix string) string {
	return path.Join(prefix, "analytics", "results.json")
}

// BuilderOption customizes a Builder.
type BuilderOption func(*Builder)

// WithStoplists injects stoplists instead of loading paths.stoplist_file.
func WithStoplists(lists Stoplists) BuilderOption {
	return func(b *Builder) {
		if lists != nil {
			b.stoplists = lists
			b.stoplistOnce.Do(func() {})
		}
	}
}

// WithProgressSink publishes build progress to sink.
func WithProgressSink(sink progress.Sink) BuilderOption {
	return func(b *Builder) {
		if sink != nil {
			b.sink = sink
		}
	}
}

// Builder assembles the results document from an object store.
type Builder struct {
	store        objectstore.Store
	logger       *slog.Logger
	sink         progress.Sink
	settings     config.Summary
	fetchWorkers int
	stoplistPath string

	stoplistOnce sync.Once
	stoplists    Stoplists
	stoplistErr  error
}

// NewBuilder constructs a Builder. A nil cfg uses defaults.
func NewBuilder(cfg *config.Config, store objectstore.Store, logger *slog.Logger, opts ...BuilderOption) *Builder {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	b := &Builder{
		store:        store,
		logger:       logging.NewComponentLogger(logger, "summary"),
		sink:         progress.Noop(),
		settings:     cfg.Summary,
		fetchWorkers: cfg.Store.FetchWorkers,
		stoplistPath: cfg.Paths.StoplistFile,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build reads the meta tracks under req.Prefix, ranks every category, and
// writes the document to ResultsKey(req.Prefix). It returns the document and
// the stored key.
func (b *Builder) Build(ctx context.Context, req Request) (Results, string, error) {
	if req.Bucket == "" || req.Prefix == "" {
		return Results{}, "", services.Wrap(services.ErrValidation, Kind, "build", "missing bucket or prefix", nil)
	}
	stoplists, err := b.loadStoplists()
	if err != nil {
		return Results{}, "", err
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(services.WithKind(ctx, Kind), runID)
	logger := logging.WithContext(ctx, b.logger)
	b.publish(ctx, logger, runID, progress.StatusInProgress, 1, "")

	results := Results{UUID: req.UUID, Duration: req.DurationMs / 1000}
	if results.UUID == "" {
		results.UUID = uuid.NewString()
	}

	fail := func(err error) (Results, string, error) {
		b.publish(ctx, logger, runID, progress.StatusError, 0, err.Error())
		return Results{}, "", err
	}

	celebs, err := b.namedTimelines(ctx, logger, req, detection.KindCelebrities)
	if err != nil {
		return fail(err)
	}
	matches, err := b.namedTimelines(ctx, logger, req, detection.KindFaceMatches)
	if err != nil {
		return fail(err)
	}
	results.Celebrities, _ = CelebrityTimelines(append(celebs, matches...), timeline.MergeOptions{
		DriftMs:       b.settings.CelebrityDriftMs,
		MinConfidence: b.settings.CelebrityMinConfidence,
		MinDurationMs: b.settings.CelebrityMinDurationMs,
	})

	faces, err := b.namedTimelines(ctx, logger, req, detection.KindFaces)
	if err != nil {
		return fail(err)
	}
	results.Emotions, _ = TopItems(faces, TopOptions{
		MinCount:      emotionMinCount,
		MinConfidence: itemMinConfidence,
		Top:           b.settings.TopItems,
		Stoplist:      stoplists.For(CategoryEmotions),
	})

	labels, err := b.namedTimelines(ctx, logger, req, detection.KindLabels)
	if err != nil {
		return fail(err)
	}
	results.Labels, _ = TopItems(labels, TopOptions{
		MinCount:      labelMinCount,
		MinConfidence: itemMinConfidence,
		Top:           b.settings.TopItems,
		Stoplist:      stoplists.For(CategoryLabels),
	})
	b.publish(ctx, logger, runID, progress.StatusInProgress, 50, "")

	phrases, err := b.textScores(ctx, req, detection.KindPhrases)
	if err != nil {
		return fail(err)
	}
	results.KeyPhrases, _ = TopFlat(phrases[track.PhrasesGroup], TopOptions{
		MinCount:      keyPhraseMinCount,
		MinConfidence: textMinConfidence,
		Top:           b.settings.TopPhrases,
		Stoplist:      stoplists.For(CategoryKeyPhrases),
	})

	entities, err := b.textScores(ctx, req, detection.KindEntities)
	if err != nil {
		return fail(err)
	}
	results.Locations, _ = TopFlat(entities[locationEntityType], TopOptions{
		MinConfidence: textMinConfidence,
		Top:           b.settings.TopPhrases,
		Stoplist:      stoplists.For(CategoryLocations),
	})
	results.Persons, _ = TopFlat(entities[personEntityType], TopOptions{
		MinConfidence: textMinConfidence,
		Top:           b.settings.TopPhrases,
		Stoplist:      stoplists.For(CategoryPersons),
	})
	b.publish(ctx, logger, runID, progress.StatusInProgress, 75, "")

	body, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fail(services.Wrap(services.ErrValidation, Kind, "encode results", "", err))
	}
	key, err := b.store.Put(ctx, req.Bucket, ResultsKey(req.Prefix), body, objectstore.ContentTypeJSON)
	if err != nil {
		return fail(services.Wrap(services.ErrCollaborator, Kind, "put results", "", err))
	}

	b.publish(ctx, logger, runID, progress.StatusCompleted, 100, "")
	logger.Info("summary written",
		logging.String(logging.FieldKey, key),
		logging.Int("celebrities", len(results.Celebrities)),
		logging.Int("labels", len(results.Labels)),
	)
	return results, key, nil
}

// namedTimelines loads every per-entity meta file of kind, naming each entry
// after its file.
func (b *Builder) namedTimelines(ctx context.Context, logger *slog.Logger, req Request, kind string) ([]NamedTimelines, error) {
	shards, err := b.fetchMeta(ctx, req, kind)
	if err != nil {
		return nil, err
	}
	out := make([]NamedTimelines, 0, len(shards))
	for _, shard := range shards {
		var timelines []timeline.Timeline
		if err := json.Unmarshal(shard.Body, &timelines); err != nil {
			logging.WarnWithContext(logger, "skipped malformed meta file", logging.EventShardMalformed,
				logging.String(logging.FieldKind, kind),
				logging.String(logging.FieldShard, shard.Key),
				logging.Error(err),
				logging.String(logging.FieldImpact, "entity excluded from summary"),
			)
			continue
		}
		out = append(out, NamedTimelines{
			Name:      textutil.DisplayName(textutil.BaseName(shard.Key)),
			Timelines: timelines,
		})
	}
	return out, nil
}

// textScores loads the first aggregated JSON track of kind. A missing or
// unreadable track yields an empty dictionary.
func (b *Builder) textScores(ctx context.Context, req Request, kind string) (map[string]map[string]detection.TextScore, error) {
	keys, err := b.store.List(ctx, req.Bucket, track.MetaPrefix(req.Prefix, kind)+"/")
	if err != nil {
		return nil, services.Wrap(services.ErrCollaborator, Kind, "list meta", kind, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	body, err := b.store.Get(ctx, req.Bucket, keys[0])
	if err != nil {
		return nil, services.Wrap(services.ErrCollaborator, Kind, "get meta", keys[0], err)
	}
	var doc map[string]map[string]detection.TextScore
	if err := json.Unmarshal(body, &doc); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, b.logger), "skipped malformed meta file", logging.EventShardMalformed,
			logging.String(logging.FieldShard, keys[0]),
			logging.Error(err),
		)
		return nil, nil
	}
	return doc, nil
}

func (b *Builder) fetchMeta(ctx context.Context, req Request, kind string) ([]detection.Shard, error) {
	keys, err := b.store.List(ctx, req.Bucket, track.MetaPrefix(req.Prefix, kind)+"/")
	if err != nil {
		return nil, services.Wrap(services.ErrCollaborator, Kind, "list meta", kind, err)
	}
	shards, err := objectstore.FetchShards(ctx, b.store, req.Bucket, keys, b.fetchWorkers)
	if err != nil {
		return nil, err
	}
	// Shard order follows numeric suffixes; restore listing order so
	// same-name replacement is deterministic.
	byKey := make(map[string]detection.Shard, len(shards))
	for _, shard := range shards {
		byKey[shard.Key] = shard
	}
	ordered := make([]detection.Shard, 0, len(keys))
	for _, key := range keys {
		ordered = append(ordered, byKey[key])
	}
	return ordered, nil
}

func (b *Builder) loadStoplists() (Stoplists, error) {
	b.stoplistOnce.Do(func() {
		lists, err := LoadStoplists(b.stoplistPath)
		if err != nil {
			b.stoplistErr = services.Wrap(services.ErrConfiguration, Kind, "load stoplist", b.stoplistPath, err)
			return
		}
		b.stoplists = lists
	})
	return b.stoplists, b.stoplistErr
}

func (b *Builder) publish(ctx context.Context, logger *slog.Logger, runID string, status progress.Status, percent int, message string) {
	event := progress.Event{
		RunID:   runID,
		Kind:    Kind,
		Status:  status,
		Percent: percent,
		Message: message,
		At:      time.Now().UTC(),
	}
	if err := b.sink.Publish(ctx, event); err != nil {
		logger.Warn("progress publish failed", logging.Error(err))
	}
}
