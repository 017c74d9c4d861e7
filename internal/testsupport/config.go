package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"cuesynth/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Store.Root = filepath.Join(base, "objects")
	cfgVal.Store.SQLitePath = filepath.Join(base, "objects.db")
	cfgVal.Server.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithKinds restricts the runner's default kind list.
func WithKinds(kinds ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tracks.Kinds = append([]string(nil), kinds...)
	}
}

// WithEntityWorkers sets the per-entity worker pool size.
func WithEntityWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tracks.EntityWorkers = n
	}
}

// WithOverride installs a per-kind parameter override.
func WithOverride(kind string, override config.KindOverride) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Tracks.Overrides == nil {
			b.cfg.Tracks.Overrides = map[string]config.KindOverride{}
		}
		b.cfg.Tracks.Overrides[kind] = override
	}
}

// WithSQLiteStore switches the store backend to sqlite.
func WithSQLiteStore() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = config.BackendSQLite
	}
}

// WithDictionary writes entries as a YAML phrase dictionary and points
// paths.dictionary_file at it.
func WithDictionary(entries map[string]string) ConfigOption {
	return func(b *configBuilder) {
		target := filepath.Join(b.baseDir, "dictionary.yaml")
		writeYAML(b.t, target, entries)
		b.cfg.Paths.DictionaryFile = target
	}
}

// WithStoplist writes a YAML stoplist and points paths.stoplist_file at it.
func WithStoplist(lists map[string][]string) ConfigOption {
	return func(b *configBuilder) {
		target := filepath.Join(b.baseDir, "stoplist.yaml")
		writeYAML(b.t, target, lists)
		b.cfg.Paths.StoplistFile = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Store.Root)
}

func writeYAML(t testing.TB, target string, value any) {
	t.Helper()
	data, err := yaml.Marshal(value)
	if err != nil {
		t.Fatalf("encode %s: %v", target, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", target, err)
	}
}
