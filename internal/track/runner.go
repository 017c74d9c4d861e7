package track

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cuesynth/internal/logging"
	"cuesynth/internal/objectstore"
	"cuesynth/internal/progress"
	"cuesynth/internal/services"
)

const (
	progressStart   = 1
	progressPerKind = 10
)

// RunRequest describes a multi-kind run. When Keys is empty, every object under
// Prefix in Bucket is considered.
type RunRequest struct {
	Bucket     string   `json:"bucket"`
	Prefix     string   `json:"prefix"`
	Keys       []string `json:"keys"`
	DestBucket string   `json:"destBucket"`
	DestPrefix string   `json:"destPrefix"`
	Kinds      []string `json:"kinds"`
}

// Report summarizes a multi-kind run.
type Report struct {
	RunID    string        `json:"runId"`
	Results  []Result      `json:"results"`
	Duration time.Duration `json:"durationNs"`
}

// Runner processes several kinds in order against one shard set.
type Runner struct {
	dispatcher *Dispatcher
	store      objectstore.Store
	sink       progress.Sink
	logger     *slog.Logger
	kinds      []string
}

// NewRunner wires a runner around a dispatcher. defaultKinds is used when a
// request names no kinds.
func NewRunner(dispatcher *Dispatcher, store objectstore.Store, sink progress.Sink, logger *slog.Logger, defaultKinds []string) *Runner {
	if sink == nil {
		sink = progress.Noop()
	}
	if len(defaultKinds) == 0 {
		defaultKinds = dispatcher.Table().Kinds()
	}
	return &Runner{
		dispatcher: dispatcher,
		store:      store,
		sink:       sink,
		logger:     logging.NewComponentLogger(logger, "runner"),
		kinds:      append([]string(nil), defaultKinds...),
	}
}

// Run dispatches each kind in order. The first kind failure stops the run,
// is published as an ERROR event, and is returned alongside the results
// produced so far.
func (r *Runner) Run(ctx context.Context, req RunRequest) (report Report, err error) {
	report = Report{RunID: uuid.NewString()}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, r.logger)
	started := time.Now()
	defer func() { report.Duration = time.Since(started) }()

	kinds := req.Kinds
	if len(kinds) == 0 {
		kinds = r.kinds
	}
	for _, kind := range kinds {
		if _, err := r.dispatcher.Table().Lookup(kind); err != nil {
			r.publish(ctx, logger, progress.Event{Kind: kind, Status: progress.StatusError, Message: err.Error()}, report.RunID)
			return report, err
		}
	}

	percent := progressStart
	r.publish(ctx, logger, progress.Event{Status: progress.StatusInProgress, Percent: percent}, report.RunID)

	keys := req.Keys
	if len(keys) == 0 {
		listed, err := r.store.List(ctx, req.Bucket, req.Prefix)
		if err != nil {
			err = services.Wrap(services.ErrCollaborator, "", "list shards", req.Bucket+"/"+req.Prefix, err)
			r.publish(ctx, logger, progress.Event{Status: progress.StatusError, Percent: percent, Message: err.Error()}, report.RunID)
			return report, err
		}
		keys = listed
	}
	logger.Info("run started", logging.Int("kinds", len(kinds)), logging.Int("keys", len(keys)))

	for _, kind := range kinds {
		result, err := r.dispatcher.Run(ctx, Request{
			Kind:       kind,
			Bucket:     req.Bucket,
			Keys:       keys,
			DestBucket: req.DestBucket,
			DestPrefix: req.DestPrefix,
		})
		if err != nil {
			logging.ErrorWithContext(logger, "kind failed", logging.EventKindFailed,
				logging.String(logging.FieldKind, kind),
				logging.Error(err),
			)
			r.publish(ctx, logger, progress.Event{Kind: kind, Status: progress.StatusError, Percent: percent, Message: err.Error()}, report.RunID)
			return report, fmt.Errorf("run %s: %w", kind, err)
		}
		report.Results = append(report.Results, result)
		percent += progressPerKind
		r.publish(ctx, logger, progress.Event{Kind: kind, Status: progress.StatusInProgress, Percent: min(percent, 99)}, report.RunID)
	}

	r.publish(ctx, logger, progress.Event{Status: progress.StatusCompleted, Percent: 100}, report.RunID)
	logger.Info("run completed", logging.Int("results", len(report.Results)), logging.Duration("elapsed", time.Since(started)))
	return report, nil
}

func (r *Runner) publish(ctx context.Context, logger *slog.Logger, event progress.Event, runID string) {
	event.RunID = runID
	event.At = time.Now().UTC()
	if err := r.sink.Publish(ctx, event); err != nil {
		logger.Warn("progress publish failed",
			logging.String("status", string(event.Status)),
			logging.Error(err),
		)
	}
}
