package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cuesynth/internal/progress"
	"cuesynth/internal/track"
)

func newTracksCommand(ctx *commandContext) *cobra.Command {
	var req track.RunRequest

	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "Generate WebVTT and timeline tracks from detection shards",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, closeStore, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			dispatcher := track.NewDispatcher(cfg, store, logger)
			runner := track.NewRunner(dispatcher, store, progress.NewSink(cfg, logger), logger, cfg.Tracks.Kinds)
			report, err := runner.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			if ctx.wantJSON(cmd) {
				return writeJSON(cmd, report)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTracksReport(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Bucket, "bucket", "", "Bucket holding the detection shards")
	cmd.Flags().StringVar(&req.Prefix, "prefix", "", "Key prefix of the detection shards")
	cmd.Flags().StringSliceVar(&req.Keys, "key", nil, "Explicit shard key (repeatable; skips listing)")
	cmd.Flags().StringVar(&req.DestBucket, "dest-bucket", "", "Bucket receiving the tracks")
	cmd.Flags().StringVar(&req.DestPrefix, "dest-prefix", "", "Key prefix for the tracks")
	cmd.Flags().StringSliceVar(&req.Kinds, "kind", nil, "Kind to process (repeatable; defaults to tracks.kinds)")
	_ = cmd.MarkFlagRequired("bucket")
	_ = cmd.MarkFlagRequired("dest-bucket")
	_ = cmd.MarkFlagRequired("dest-prefix")
	return cmd
}

func renderTracksReport(report track.Report) string {
	rows := make([][]string, 0, len(report.Results))
	for _, result := range report.Results {
		rows = append(rows, []string{
			result.Kind,
			strconv.Itoa(trackCount(result.VttTracks)),
			strconv.Itoa(trackCount(result.MetaTracks)),
			strconv.Itoa(result.SkippedShards),
			strings.Join(result.FailedEntities, ", "),
		})
	}
	title := fmt.Sprintf("Run %s (%s)", report.RunID, report.Duration.Round(time.Millisecond))
	return renderTable(title,
		[]string{"Kind", "VTT", "Meta", "Skipped shards", "Failed entities"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
	)
}

func trackCount(set *track.TrackSet) int {
	if set == nil {
		return 0
	}
	return len(set.Keys)
}
