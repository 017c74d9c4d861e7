package progress

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"cuesynth/internal/config"
	"cuesynth/internal/logging"
)

// Status is the coarse state of a run.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusError      Status = "ERROR"
)

// Event is one progress update.
type Event struct {
	RunID   string    `json:"runId"`
	Kind    string    `json:"kind,omitempty"`
	Status  Status    `json:"status"`
	Percent int       `json:"percent"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

// Sink receives progress events.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// NewSink builds the sink selected by configuration. Events always reach the
// log; a configured webhook receives them as well.
func NewSink(cfg *config.Config, logger *slog.Logger) Sink {
	logSink := NewLogSink(logger)
	if cfg == nil || strings.TrimSpace(cfg.Progress.WebhookURL) == "" {
		return logSink
	}
	timeout := time.Duration(cfg.Progress.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	webhook := NewWebhookSink(cfg.Progress.WebhookURL, &http.Client{Timeout: timeout})
	return Multi(logSink, webhook)
}

// LogSink writes events as structured log lines.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logging.NewComponentLogger(logger, "progress")}
}

func (s *LogSink) Publish(ctx context.Context, event Event) error {
	attrs := []logging.Attr{
		logging.String(logging.FieldRunID, event.RunID),
		logging.String("status", string(event.Status)),
		logging.Int("percent", event.Percent),
	}
	if event.Kind != "" {
		attrs = append(attrs, logging.String(logging.FieldKind, event.Kind))
	}
	if event.Message != "" {
		attrs = append(attrs, logging.String("detail", event.Message))
	}
	level := slog.LevelInfo
	if event.Status == StatusError {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "run progress", logging.Args(attrs...)...)
	return nil
}

// MemorySink records events in publish order.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func (m *MemorySink) Publish(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of the recorded events.
func (m *MemorySink) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

type multiSink []Sink

// Multi fans an event out to every sink, returning the first error after all
// sinks have been tried.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) Publish(ctx context.Context, event Event) error {
	var first error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type noopSink struct{}

// Noop returns a sink that discards events.
func Noop() Sink { return noopSink{} }

func (noopSink) Publish(context.Context, Event) error { return nil }
