package track

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"sync"

	"cuesynth/internal/config"
	"cuesynth/internal/detection"
	"cuesynth/internal/logging"
	"cuesynth/internal/objectstore"
	"cuesynth/internal/services"
	"cuesynth/internal/textutil"
	"cuesynth/internal/timeline"
	"cuesynth/internal/transcript"
)

// Request describes one kind run.
type Request struct {
	Kind       string   `json:"kind"`
	Bucket     string   `json:"bucket"`
	Keys       []string `json:"keys"`
	DestBucket string   `json:"destBucket"`
	DestPrefix string   `json:"destPrefix"`
}

// TrackSet lists uploaded keys under a common prefix.
type TrackSet struct {
	Prefix string   `json:"Prefix"`
	Keys   []string `json:"Keys"`
}

// Result describes what a kind run produced. VttTracks and MetaTracks are nil
// when nothing of that type was written.
type Result struct {
	Kind           string    `json:"Kind"`
	Bucket         string    `json:"Bucket"`
	VttTracks      *TrackSet `json:"VttTracks,omitempty"`
	MetaTracks     *TrackSet `json:"MetaTracks,omitempty"`
	FailedEntities []string  `json:"FailedEntities,omitempty"`
	SkippedShards  int       `json:"SkippedShards,omitempty"`
}

// VttPrefix returns <destPrefix>/vtt/<kind>.
func VttPrefix(destPrefix, kind string) string {
	return path.Join(destPrefix, "vtt", kind)
}

// MetaPrefix returns <destPrefix>/meta/<kind>.
func MetaPrefix(destPrefix, kind string) string {
	return path.Join(destPrefix, "meta", kind)
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDictionary injects the transcript phrase dictionary instead of loading
// paths.dictionary_file.
func WithDictionary(dict transcript.Dictionary) DispatcherOption {
	return func(d *Dispatcher) {
		if dict != nil {
			d.dictionary = dict
			d.dictionaryOnce.Do(func() {})
		}
	}
}

// WithTable overrides the kind parameter table.
func WithTable(table *Table) DispatcherOption {
	return func(d *Dispatcher) {
		if table != nil {
			d.table = table
		}
	}
}

// Dispatcher runs a single kind against an object store.
type Dispatcher struct {
	store          objectstore.Store
	logger         *slog.Logger
	table          *Table
	transcriptOpts transcript.Options
	fetchWorkers   int
	entityWorkers  int
	dictionaryPath string

	dictionaryOnce sync.Once
	dictionary     transcript.Dictionary
	dictionaryErr  error
}

// NewDispatcher constructs a dispatcher. A nil cfg uses defaults.
func NewDispatcher(cfg *config.Config, store objectstore.Store, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	d := &Dispatcher{
		store:          store,
		logger:         logging.NewComponentLogger(logger, "track"),
		table:          NewTable(cfg.Tracks.Overrides),
		transcriptOpts: cfg.TranscriptOptions(),
		fetchWorkers:   cfg.Store.FetchWorkers,
		entityWorkers:  cfg.Tracks.EntityWorkers,
		dictionaryPath: cfg.Paths.DictionaryFile,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.entityWorkers < 1 {
		d.entityWorkers = 1
	}
	return d
}

// Table exposes the kind parameters in use.
func (d *Dispatcher) Table() *Table {
	return d.table
}

// Run processes one kind. Unknown kinds fail before any I/O. Object store
// failures are returned as collaborator errors; malformed shards and entities
// that cannot be rendered are logged and reported on the Result.
func (d *Dispatcher) Run(ctx context.Context, req Request) (Result, error) {
	params, err := d.table.Lookup(req.Kind)
	if err != nil {
		return Result{}, err
	}
	if req.DestBucket == "" || req.DestPrefix == "" {
		return Result{}, services.Wrap(services.ErrValidation, req.Kind, "run", "missing destination bucket or prefix", nil)
	}

	ctx = services.WithKind(ctx, req.Kind)
	logger := logging.WithContext(ctx, d.logger)

	keys := objectstore.SelectShardKeys(req.Keys, req.Kind)
	shards, err := objectstore.FetchShards(ctx, d.store, req.Bucket, keys, d.fetchWorkers)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("fetched shards", logging.Int("shards", len(shards)), logging.Int("keys", len(req.Keys)))

	result := Result{Kind: req.Kind, Bucket: req.DestBucket}
	switch params.Style {
	case StyleTranscript:
		err = d.runTranscript(ctx, logger, req, shards, &result)
	case StyleJSON:
		err = d.runJSON(ctx, logger, req, params, shards, &result)
	default:
		err = d.runEntities(ctx, logger, req, params, shards, &result)
	}
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func (d *Dispatcher) extract(kind string, params Params, shards []detection.Shard) (detection.Mappings, []error, error) {
	switch kind {
	case detection.KindCelebrities:
		m, errs := detection.ExtractCelebrities(shards)
		return m, errs, nil
	case detection.KindPersons:
		m, errs := detection.ExtractPersons(shards)
		return m, errs, nil
	case detection.KindFaces:
		m, errs := detection.ExtractEmotions(shards, params.MinConfidencePercent())
		return m, errs, nil
	case detection.KindFaceMatches:
		m, errs := detection.ExtractFaceMatches(shards, params.MinConfidencePercent())
		return m, errs, nil
	case detection.KindLabels:
		m, errs := detection.ExtractLabels(shards, params.MinConfidencePercent())
		return m, errs, nil
	default:
		return nil, nil, services.Wrap(services.ErrUnsupportedKind, kind, "extract", "no extractor registered", nil)
	}
}

// entityOutput is the per-entity result slot filled by a worker.
type entityOutput struct {
	vttKey  string
	metaKey string
	failed  bool
	err     error
}

func (d *Dispatcher) runEntities(ctx context.Context, logger *slog.Logger, req Request, params Params, shards []detection.Shard, result *Result) error {
	mappings, shardErrs, err := d.extract(req.Kind, params, shards)
	if err != nil {
		return err
	}
	result.SkippedShards = d.logShardErrors(logger, shardErrs)

	names := mappings.Keys()
	logger.Info("extracted entities", logging.Int("entities", len(names)))

	outputs := make([]entityOutput, len(names))
	sem := make(chan struct{}, d.entityWorkers)
	var wg sync.WaitGroup
	for i, name := range names {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			defer func() { <-sem }()
			outputs[i] = d.renderEntity(services.WithEntity(ctx, name), req, params, name, mappings[name])
		}(i, name)
	}
	wg.Wait()

	vttPrefix := VttPrefix(req.DestPrefix, req.Kind)
	metaPrefix := MetaPrefix(req.DestPrefix, req.Kind)
	var vttKeys, metaKeys []string
	for i, out := range outputs {
		if out.err != nil {
			return out.err
		}
		if out.failed {
			result.FailedEntities = append(result.FailedEntities, names[i])
			continue
		}
		if out.vttKey != "" {
			vttKeys = append(vttKeys, out.vttKey)
		}
		if out.metaKey != "" {
			metaKeys = append(metaKeys, out.metaKey)
		}
	}
	if len(vttKeys) > 0 {
		result.VttTracks = &TrackSet{Prefix: vttPrefix, Keys: vttKeys}
	}
	if len(metaKeys) > 0 {
		result.MetaTracks = &TrackSet{Prefix: metaPrefix, Keys: metaKeys}
	}
	return nil
}

// renderEntity clusters, renders, and uploads one entity. Upload failures are
// returned in err; anything else marks the entity failed without touching
// its siblings.
func (d *Dispatcher) renderEntity(ctx context.Context, req Request, params Params, name string, events []detection.Event) (out entityOutput) {
	logger := logging.WithContext(ctx, d.logger)
	defer func() {
		if r := recover(); r != nil {
			logging.WarnWithContext(logger, "entity render failed", logging.EventEntityRenderFailed,
				logging.String("panic", fmt.Sprint(r)),
				logging.String(logging.FieldImpact, "entity omitted from results"),
			)
			out = entityOutput{failed: true}
		}
	}()

	basename := textutil.SanitizeEntityName(name)
	cues := timeline.Cluster(events, params.ClusterParams())
	vtt := RenderCues(req.Kind, params.Style, name, cues)

	var meta []byte
	timelines, ok := timeline.Merge(cues, params.MergeOptions())
	if ok {
		encoded, err := json.MarshalIndent(timelines, "", "  ")
		if err != nil {
			logging.WarnWithContext(logger, "encode timelines failed", logging.EventEntityRenderFailed,
				logging.Error(err),
				logging.String(logging.FieldImpact, "entity omitted from results"),
			)
			return entityOutput{failed: true}
		}
		meta = encoded
	}

	vttKey, err := d.store.Put(ctx, req.DestBucket, path.Join(VttPrefix(req.DestPrefix, req.Kind), basename+".vtt"), []byte(vtt), objectstore.ContentTypeVTT)
	if err != nil {
		return entityOutput{err: services.Wrap(services.ErrCollaborator, req.Kind, "put cue track", name, err)}
	}
	out.vttKey = vttKey

	if meta != nil {
		metaKey, err := d.store.Put(ctx, req.DestBucket, path.Join(MetaPrefix(req.DestPrefix, req.Kind), basename+".json"), meta, objectstore.ContentTypeJSON)
		if err != nil {
			return entityOutput{err: services.Wrap(services.ErrCollaborator, req.Kind, "put timeline", name, err)}
		}
		out.metaKey = metaKey
	}

	logger.Debug("rendered entity",
		logging.Int("cues", len(cues)),
		logging.Int("timelines", len(timelines)),
		logging.String(logging.FieldKey, vttKey),
	)
	return out
}

func (d *Dispatcher) runTranscript(ctx context.Context, logger *slog.Logger, req Request, shards []detection.Shard, result *Result) error {
	dict, err := d.loadDictionary()
	if err != nil {
		return err
	}
	tokens, shardErrs := transcript.DecodeShards(shards)
	result.SkippedShards = d.logShardErrors(logger, shardErrs)

	vtt := transcript.Synthesize(tokens, dict, d.transcriptOpts)
	prefix := VttPrefix(req.DestPrefix, req.Kind)
	key, err := d.store.Put(ctx, req.DestBucket, path.Join(prefix, req.Kind+".vtt"), []byte(vtt), objectstore.ContentTypeVTT)
	if err != nil {
		return services.Wrap(services.ErrCollaborator, req.Kind, "put transcript", "", err)
	}
	logger.Info("rendered transcript", logging.Int("tokens", len(tokens)), logging.String(logging.FieldKey, key))
	result.VttTracks = &TrackSet{Prefix: prefix, Keys: []string{key}}
	return nil
}

func (d *Dispatcher) runJSON(ctx context.Context, logger *slog.Logger, req Request, params Params, shards []detection.Shard, result *Result) error {
	var (
		doc       any
		shardErrs []error
	)
	switch req.Kind {
	case detection.KindEntities:
		doc, shardErrs = detection.ExtractEntities(shards, params.MinConfidence)
	case detection.KindPhrases:
		phrases, errs := detection.ExtractKeyPhrases(shards, params.MinConfidence)
		shardErrs = errs
		grouped := map[string]map[string]*detection.TextScore{}
		if len(phrases) > 0 {
			grouped[PhrasesGroup] = phrases
		}
		doc = grouped
	default:
		return services.Wrap(services.ErrUnsupportedKind, req.Kind, "extract", "no JSON track registered", nil)
	}
	result.SkippedShards = d.logShardErrors(logger, shardErrs)

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrValidation, req.Kind, "encode meta", "", err)
	}
	prefix := MetaPrefix(req.DestPrefix, req.Kind)
	key, err := d.store.Put(ctx, req.DestBucket, path.Join(prefix, req.Kind+".json"), body, objectstore.ContentTypeJSON)
	if err != nil {
		return services.Wrap(services.ErrCollaborator, req.Kind, "put meta", "", err)
	}
	logger.Info("rendered json track", logging.String(logging.FieldKey, key))
	result.MetaTracks = &TrackSet{Prefix: prefix, Keys: []string{key}}
	return nil
}

// PhrasesGroup is the top-level key of the key-phrase meta document.
const PhrasesGroup = "KeyPhrases"

func (d *Dispatcher) loadDictionary() (transcript.Dictionary, error) {
	d.dictionaryOnce.Do(func() {
		dict, err := transcript.LoadDictionary(d.dictionaryPath)
		if err != nil {
			d.dictionaryErr = services.Wrap(services.ErrConfiguration, transcript.Kind, "load dictionary", d.dictionaryPath, err)
			return
		}
		d.dictionary = dict
	})
	return d.dictionary, d.dictionaryErr
}

// logShardErrors reports extraction errors and returns how many shards were
// skipped as malformed.
func (d *Dispatcher) logShardErrors(logger *slog.Logger, errs []error) int {
	skipped := 0
	for _, err := range errs {
		if !services.IsSkippable(err) {
			logging.ErrorWithContext(logger, "shard extraction failed", logging.EventShardMalformed, logging.Error(err))
			continue
		}
		skipped++
		logging.WarnWithContext(logger, "skipped malformed shard", logging.EventShardMalformed,
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the upstream detection job output"),
			logging.String(logging.FieldImpact, "shard ignored"),
		)
	}
	return skipped
}
