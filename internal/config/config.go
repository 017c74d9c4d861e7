package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains auxiliary file and directory locations.
type Paths struct {
	LogDir         string `toml:"log_dir"`
	DictionaryFile string `toml:"dictionary_file"`
	StoplistFile   string `toml:"stoplist_file"`
}

// Store selects and configures the object store backend.
type Store struct {
	Backend      string `toml:"backend"`
	Root         string `toml:"root"`
	SQLitePath   string `toml:"sqlite_path"`
	FetchWorkers int    `toml:"fetch_workers"`
	MinFreeMiB   uint64 `toml:"min_free_mib"`
}

// KindOverride replaces individual clustering parameters for one kind. Unset
// fields keep the built-in value.
type KindOverride struct {
	TimeDriftMs     *uint64  `toml:"time_drift_ms"`
	TimelineDriftMs *uint64  `toml:"timeline_drift_ms"`
	PositionDrift   *float64 `toml:"position_drift"`
	MinConfidence   *float64 `toml:"min_confidence"`
}

// Tracks controls which kinds the runner processes and how.
type Tracks struct {
	Kinds         []string                `toml:"kinds"`
	EntityWorkers int                     `toml:"entity_workers"`
	Overrides     map[string]KindOverride `toml:"overrides"`
}

// Transcript holds dialogue block timing in seconds.
type Transcript struct {
	PauseSeconds       float64 `toml:"pause_seconds"`
	BlockSeconds       float64 `toml:"block_seconds"`
	ForcedBreakSeconds float64 `toml:"forced_break_seconds"`
}

// Summary controls the whole-asset results document.
type Summary struct {
	CelebrityDriftMs       uint64  `toml:"celebrity_drift_ms"`
	CelebrityMinConfidence float64 `toml:"celebrity_min_confidence"`
	CelebrityMinDurationMs uint64  `toml:"celebrity_min_duration_ms"`
	TopItems               int     `toml:"top_items"`
	TopPhrases             int     `toml:"top_phrases"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Progress configures where run progress events are published.
type Progress struct {
	WebhookURL            string `toml:"webhook_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Server configures the optional HTTP surface.
type Server struct {
	Bind string `toml:"bind"`
}

// Config encapsulates all configuration values for cuesynth.
//
// Configuration sections by subsystem:
//   - Paths: log directory, phrase dictionary, summary stoplists
//   - Store: object store backend and download concurrency
//   - Tracks: kind list, entity worker pool size, per-kind overrides
//   - Transcript: dialogue block timing
//   - Summary: celebrity timeline floors and top-N sizes
//   - Progress: optional webhook for run progress events
//   - Logging: log format and level
//   - Server: HTTP bind address
type Config struct {
	Paths      Paths      `toml:"paths"`
	Store      Store      `toml:"store"`
	Tracks     Tracks     `toml:"tracks"`
	Transcript Transcript `toml:"transcript"`
	Summary    Summary    `toml:"summary"`
	Progress   Progress   `toml:"progress"`
	Logging    Logging    `toml:"logging"`
	Server     Server     `toml:"server"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		data, err := os.ReadFile(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		if err := Decode(data, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Decode parses TOML data over cfg, keeping values for absent keys.
func Decode(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory and, for the filesystem
// backend, the store root.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	switch c.Store.Backend {
	case BackendFS:
		dirs = append(dirs, c.Store.Root)
	case BackendSQLite:
		dirs = append(dirs, filepath.Dir(c.Store.SQLitePath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration text.
func SampleConfig() string {
	return sampleConfig
}
