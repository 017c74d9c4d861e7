package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cuesynth/internal/api"
	"cuesynth/internal/track"
)

func newKindsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List supported kinds and their parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			table := track.NewTable(cfg.Tracks.Overrides)
			var kinds []api.KindResponse
			for _, kind := range table.Kinds() {
				params, err := table.Lookup(kind)
				if err != nil {
					return err
				}
				kinds = append(kinds, api.FromParams(kind, params))
			}

			if ctx.wantJSON(cmd) {
				return writeJSON(cmd, api.KindsResponse{Kinds: kinds})
			}
			rows := make([][]string, 0, len(kinds))
			for _, k := range kinds {
				rows = append(rows, []string{
					k.Kind,
					k.Style,
					strconv.FormatUint(k.TimeDriftMs, 10),
					strconv.FormatUint(k.TimelineDriftMs, 10),
					strconv.FormatFloat(k.PositionDrift, 'f', 2, 64),
					strconv.FormatFloat(k.MinConfidence, 'f', 2, 64),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable("",
				[]string{"Kind", "Style", "Time drift ms", "Timeline drift ms", "Position drift", "Min confidence"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}
