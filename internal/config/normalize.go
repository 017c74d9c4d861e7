package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeTracks()
	c.normalizeProgress()
	c.normalizeLogging()
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.DictionaryFile, err = expandPath(strings.TrimSpace(c.Paths.DictionaryFile)); err != nil {
		return fmt.Errorf("paths.dictionary_file: %w", err)
	}
	if c.Paths.StoplistFile, err = expandPath(strings.TrimSpace(c.Paths.StoplistFile)); err != nil {
		return fmt.Errorf("paths.stoplist_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = BackendFS
	}
	if value, ok := os.LookupEnv("CUESYNTH_STORE_ROOT"); ok && strings.TrimSpace(value) != "" {
		c.Store.Root = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Store.Root) == "" {
		c.Store.Root = defaultStoreRoot
	}
	if strings.TrimSpace(c.Store.SQLitePath) == "" {
		c.Store.SQLitePath = defaultSQLitePath
	}
	var err error
	if c.Store.Root, err = expandPath(c.Store.Root); err != nil {
		return fmt.Errorf("store.root: %w", err)
	}
	if c.Store.SQLitePath, err = expandPath(c.Store.SQLitePath); err != nil {
		return fmt.Errorf("store.sqlite_path: %w", err)
	}
	if c.Store.FetchWorkers == 0 {
		c.Store.FetchWorkers = defaultFetchWorkers
	}
	return nil
}

func (c *Config) normalizeTracks() {
	if len(c.Tracks.Kinds) == 0 {
		c.Tracks.Kinds = KnownKinds()
	} else {
		kinds := make([]string, 0, len(c.Tracks.Kinds))
		seen := make(map[string]struct{}, len(c.Tracks.Kinds))
		for _, kind := range c.Tracks.Kinds {
			normalized := strings.ToLower(strings.TrimSpace(kind))
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			kinds = append(kinds, normalized)
		}
		c.Tracks.Kinds = kinds
	}
	if c.Tracks.EntityWorkers == 0 {
		c.Tracks.EntityWorkers = defaultEntityWorkers
	}
	if len(c.Tracks.Overrides) > 0 {
		overrides := make(map[string]KindOverride, len(c.Tracks.Overrides))
		for kind, override := range c.Tracks.Overrides {
			overrides[strings.ToLower(strings.TrimSpace(kind))] = override
		}
		c.Tracks.Overrides = overrides
	}
}

func (c *Config) normalizeProgress() {
	c.Progress.WebhookURL = strings.TrimSpace(c.Progress.WebhookURL)
	if c.Progress.RequestTimeoutSeconds <= 0 {
		c.Progress.RequestTimeoutSeconds = defaultProgressTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("CUESYNTH_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
