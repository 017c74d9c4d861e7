package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cuesynth/internal/detection"
	"cuesynth/internal/logging"
	"cuesynth/internal/textutil"
	"cuesynth/internal/transcript"
)

func newTranscriptCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "transcript FILE...",
		Short: "Render local transcription shards as a WebVTT document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			shards := make([]detection.Shard, 0, len(args))
			for _, path := range args {
				body, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read shard: %w", err)
				}
				shards = append(shards, detection.Shard{Index: textutil.ShardIndex(path), Key: path, Body: body})
			}

			dict, err := transcript.LoadDictionary(cfg.Paths.DictionaryFile)
			if err != nil {
				return err
			}
			tokens, shardErrs := transcript.DecodeShards(shards)
			for _, shardErr := range shardErrs {
				logging.WarnWithContext(logger, "skipped transcript shard", logging.EventShardMalformed,
					logging.Error(shardErr),
					logging.String(logging.FieldImpact, "shard tokens excluded from transcript"),
				)
			}
			if len(tokens) == 0 && len(shardErrs) == len(shards) {
				return fmt.Errorf("no readable transcript shards among %d file(s)", len(shards))
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), transcript.Synthesize(tokens, dict, cfg.TranscriptOptions()))
			return err
		},
	}
}
