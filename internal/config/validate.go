package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"cuesynth/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateTracks(); err != nil {
		return err
	}
	if err := c.validateTranscript(); err != nil {
		return err
	}
	if err := c.validateSummary(); err != nil {
		return err
	}
	if err := c.validateProgress(); err != nil {
		return err
	}
	return c.validateLogging()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", services.ErrConfiguration, fmt.Sprintf(format, args...))
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendFS:
		if strings.TrimSpace(c.Store.Root) == "" {
			return invalid("store.root must be set for the fs backend")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return invalid("store.sqlite_path must be set for the sqlite backend")
		}
	default:
		return invalid("store.backend: unsupported value %q (want fs or sqlite)", c.Store.Backend)
	}
	if c.Store.FetchWorkers < 1 {
		return invalid("store.fetch_workers must be positive")
	}
	return nil
}

func (c *Config) validateTracks() error {
	known := KnownKinds()
	if len(c.Tracks.Kinds) == 0 {
		return invalid("tracks.kinds must list at least one kind")
	}
	var errs []error
	for _, kind := range c.Tracks.Kinds {
		if !slices.Contains(known, kind) {
			errs = append(errs, invalid("tracks.kinds: unknown kind %q", kind))
		}
	}
	if c.Tracks.EntityWorkers < 1 {
		errs = append(errs, invalid("tracks.entity_workers must be positive"))
	}
	for kind, override := range c.Tracks.Overrides {
		if !slices.Contains(known, kind) {
			errs = append(errs, invalid("tracks.overrides.%s: unknown kind", kind))
			continue
		}
		if override.PositionDrift != nil && *override.PositionDrift < 0 {
			errs = append(errs, invalid("tracks.overrides.%s.position_drift must be non-negative", kind))
		}
		if override.MinConfidence != nil && (*override.MinConfidence < 0 || *override.MinConfidence > 1) {
			errs = append(errs, invalid("tracks.overrides.%s.min_confidence must be between 0 and 1", kind))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) validateTranscript() error {
	if c.Transcript.PauseSeconds <= 0 {
		return invalid("transcript.pause_seconds must be positive")
	}
	if c.Transcript.BlockSeconds <= 0 {
		return invalid("transcript.block_seconds must be positive")
	}
	if c.Transcript.ForcedBreakSeconds <= 0 {
		return invalid("transcript.forced_break_seconds must be positive")
	}
	return nil
}

func (c *Config) validateSummary() error {
	if c.Summary.CelebrityMinConfidence < 0 || c.Summary.CelebrityMinConfidence > 1 {
		return invalid("summary.celebrity_min_confidence must be between 0 and 1")
	}
	if c.Summary.TopItems < 1 {
		return invalid("summary.top_items must be positive")
	}
	if c.Summary.TopPhrases < 1 {
		return invalid("summary.top_phrases must be positive")
	}
	return nil
}

func (c *Config) validateProgress() error {
	if c.Progress.WebhookURL == "" {
		return nil
	}
	if !strings.HasPrefix(c.Progress.WebhookURL, "http://") && !strings.HasPrefix(c.Progress.WebhookURL, "https://") {
		return invalid("progress.webhook_url must be an http(s) URL")
	}
	if c.Progress.RequestTimeoutSeconds < 1 {
		return invalid("progress.request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return invalid("logging.level: unsupported value %q", c.Logging.Level)
	}
}
