package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cuesynth/internal/progress"
	"cuesynth/internal/summary"
)

func newSummarizeCommand(ctx *commandContext) *cobra.Command {
	var req summary.Request

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Build the analytics results document from meta tracks",
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

			builder := summary.NewBuilder(cfg, store, logger, summary.WithProgressSink(progress.NewSink(cfg, logger)))
			results, key, err := builder.Build(cmd.Context(), req)
			if err != nil {
				return err
			}

			if ctx.wantJSON(cmd) {
				return writeJSON(cmd, results)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s/%s\n", req.Bucket, key)
			fmt.Fprintln(out, renderResults(results))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Bucket, "bucket", "", "Bucket holding the meta tracks")
	cmd.Flags().StringVar(&req.Prefix, "prefix", "", "Destination prefix used by the tracks run")
	cmd.Flags().StringVar(&req.UUID, "uuid", "", "Asset identifier (generated when empty)")
	cmd.Flags().Uint64Var(&req.DurationMs, "duration", 0, "Asset duration in milliseconds")
	_ = cmd.MarkFlagRequired("bucket")
	_ = cmd.MarkFlagRequired("prefix")
	return cmd
}

func renderResults(results summary.Results) string {
	sections := []struct {
		title    string
		category summary.Category
	}{
		{"Celebrities", results.Celebrities},
		{"Emotions", results.Emotions},
		{"Labels", results.Labels},
		{"Key phrases", results.KeyPhrases},
		{"Locations", results.Locations},
		{"Persons", results.Persons},
	}
	var b strings.Builder
	for _, section := range sections {
		if len(section.category) == 0 {
			continue
		}
		rows := make([][]string, 0, len(section.category))
		for _, entry := range section.category {
			rows = append(rows, []string{
				entry.Name,
				strconv.FormatFloat(entry.Confidence, 'f', 2, 64),
				strconv.Itoa(entry.Count),
				strconv.Itoa(len(entry.Timelines) - 1),
			})
		}
		b.WriteString(renderTable(section.title,
			[]string{"Name", "Confidence", "Count", "Timelines"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
		))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "No category had qualifying entries."
	}
	return strings.TrimSuffix(b.String(), "\n")
}
