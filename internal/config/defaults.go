package config

import (
	"cuesynth/internal/detection"
	"cuesynth/internal/transcript"
)

// Store backends.
const (
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
)

const (
	defaultConfigPath             = "~/.config/cuesynth/config.toml"
	projectConfigName             = "cuesynth.toml"
	defaultLogDir                 = "~/.local/share/cuesynth/logs"
	defaultStoreRoot              = "~/.local/share/cuesynth/objects"
	defaultSQLitePath             = "~/.local/share/cuesynth/objects.db"
	defaultFetchWorkers           = 4
	defaultEntityWorkers          = 4
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultServerBind             = "127.0.0.1:7489"
	defaultCelebrityDriftMs       = 3000
	defaultCelebrityMinConfidence = 0.6
	defaultCelebrityMinDurationMs = 10000
	defaultTopItems               = 5
	defaultTopPhrases             = 10
	defaultProgressTimeoutSeconds = 10
)

// KnownKinds lists every kind the track runner can process, in default run
// order.
func KnownKinds() []string {
	return []string{
		detection.KindCelebrities,
		detection.KindPersons,
		detection.KindFaces,
		detection.KindFaceMatches,
		detection.KindLabels,
		transcript.Kind,
		detection.KindEntities,
		detection.KindPhrases,
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	timing := transcript.DefaultOptions()
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Store: Store{
			Backend:      BackendFS,
			Root:         defaultStoreRoot,
			SQLitePath:   defaultSQLitePath,
			FetchWorkers: defaultFetchWorkers,
		},
		Tracks: Tracks{
			Kinds:         KnownKinds(),
			EntityWorkers: defaultEntityWorkers,
		},
		Transcript: Transcript{
			PauseSeconds:       timing.PauseSeconds,
			BlockSeconds:       timing.BlockSeconds,
			ForcedBreakSeconds: timing.ForcedBreakSeconds,
		},
		Summary: Summary{
			CelebrityDriftMs:       defaultCelebrityDriftMs,
			CelebrityMinConfidence: defaultCelebrityMinConfidence,
			CelebrityMinDurationMs: defaultCelebrityMinDurationMs,
			TopItems:               defaultTopItems,
			TopPhrases:             defaultTopPhrases,
		},
		Progress: Progress{
			RequestTimeoutSeconds: defaultProgressTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
	}
}

// TranscriptOptions returns the transcript block timing.
func (c *Config) TranscriptOptions() transcript.Options {
	return transcript.Options{
		PauseSeconds:       c.Transcript.PauseSeconds,
		BlockSeconds:       c.Transcript.BlockSeconds,
		ForcedBreakSeconds: c.Transcript.ForcedBreakSeconds,
	}
}
