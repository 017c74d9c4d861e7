package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"cuesynth/internal/api"
	"cuesynth/internal/logging"
	"cuesynth/internal/progress"
	"cuesynth/internal/summary"
	"cuesynth/internal/track"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
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

			if bind == "" {
				bind = cfg.Server.Bind
			}
			sink := progress.NewSink(cfg, logger)
			dispatcher := track.NewDispatcher(cfg, store, logger)
			server := api.NewServer(api.ServerConfig{
				Bind:       bind,
				Store:      store,
				Dispatcher: dispatcher,
				Runner:     track.NewRunner(dispatcher, store, sink, logger, cfg.Tracks.Kinds),
				Summary:    summary.NewBuilder(cfg, store, logger, summary.WithProgressSink(sink)),
				Logger:     logger,
				StartTime:  time.Now(),
			})

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				logger.Warn("server shutdown failed", logging.Error(err))
				return err
			}
			return <-errCh
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (defaults to server.bind)")
	return cmd
}
