package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"cuesynth/internal/config"
	"cuesynth/internal/services"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "cuesynth", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.LogDir != filepath.Join(tempHome, ".local", "share", "cuesynth", "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Store.Backend != config.BackendFS {
		t.Fatalf("unexpected backend %q", cfg.Store.Backend)
	}
	if cfg.Store.Root != filepath.Join(tempHome, ".local", "share", "cuesynth", "objects") {
		t.Fatalf("unexpected store root: %q", cfg.Store.Root)
	}
	if !slices.Equal(cfg.Tracks.Kinds, config.KnownKinds()) {
		t.Fatalf("unexpected kinds %v", cfg.Tracks.Kinds)
	}
	if cfg.Server.Bind != "127.0.0.1:7489" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
	if cfg.Transcript.PauseSeconds != 0.9 || cfg.Transcript.BlockSeconds != 3 {
		t.Fatalf("unexpected transcript timing %+v", cfg.Transcript)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Store.Root} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "cuesynth.toml")
	body := `
[store]
backend = "SQLite"
sqlite_path = "~/db/objects.db"
fetch_workers = 8

[tracks]
kinds = ["Celebs", "labels", "celebs"]

[tracks.overrides.celebs]
time_drift_ms = 450
min_confidence = 0.75

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected existing config at %q, got %q exists=%v", configPath, resolved, exists)
	}
	if cfg.Store.Backend != config.BackendSQLite || cfg.Store.FetchWorkers != 8 {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if !strings.HasSuffix(cfg.Store.SQLitePath, filepath.Join("db", "objects.db")) || !filepath.IsAbs(cfg.Store.SQLitePath) {
		t.Fatalf("expected expanded sqlite path, got %q", cfg.Store.SQLitePath)
	}
	if !slices.Equal(cfg.Tracks.Kinds, []string{"celebs", "labels"}) {
		t.Fatalf("expected normalized, deduplicated kinds, got %v", cfg.Tracks.Kinds)
	}
	override := cfg.Tracks.Overrides["celebs"]
	if override.TimeDriftMs == nil || *override.TimeDriftMs != 450 {
		t.Fatalf("unexpected time drift override %+v", override)
	}
	if override.PositionDrift != nil {
		t.Fatal("expected unset position drift to stay nil")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
	// Unspecified sections keep defaults.
	if cfg.Summary.TopItems != 5 || cfg.Summary.CelebrityDriftMs != 3000 {
		t.Fatalf("unexpected summary defaults %+v", cfg.Summary)
	}
}

func TestEnvironmentFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	t.Setenv("CUESYNTH_STORE_ROOT", root)
	t.Setenv("CUESYNTH_LOG_LEVEL", "warn")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Store.Root != root {
		t.Fatalf("expected store root from env, got %q", cfg.Store.Root)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected log level from env, got %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"backend", func(c *config.Config) { c.Store.Backend = "s3" }, "store.backend"},
		{"fetch workers", func(c *config.Config) { c.Store.FetchWorkers = -1 }, "store.fetch_workers"},
		{"unknown kind", func(c *config.Config) { c.Tracks.Kinds = []string{"gestures"} }, "unknown kind"},
		{"entity workers", func(c *config.Config) { c.Tracks.EntityWorkers = 0 }, "tracks.entity_workers"},
		{"override kind", func(c *config.Config) {
			c.Tracks.Overrides = map[string]config.KindOverride{"gestures": {}}
		}, "tracks.overrides.gestures"},
		{"override confidence", func(c *config.Config) {
			v := 1.5
			c.Tracks.Overrides = map[string]config.KindOverride{"celebs": {MinConfidence: &v}}
		}, "min_confidence"},
		{"pause", func(c *config.Config) { c.Transcript.PauseSeconds = 0 }, "transcript.pause_seconds"},
		{"top items", func(c *config.Config) { c.Summary.TopItems = 0 }, "summary.top_items"},
		{"webhook", func(c *config.Config) { c.Progress.WebhookURL = "ftp://example" }, "progress.webhook_url"},
		{"level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected configuration marker, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in error, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Tracks.EntityWorkers != 4 || cfg.Store.Backend != config.BackendFS {
		t.Fatalf("unexpected sample values %+v %+v", cfg.Tracks, cfg.Store)
	}
}
