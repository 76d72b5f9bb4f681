package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pborges/qelm/internal/config"
	"github.com/pborges/qelm/internal/logging"
	"github.com/pborges/qelm/internal/metrics"
	"github.com/pborges/qelm/internal/server"
)

func newServeCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "serve",
		Short: "Serve the minimizer over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("config")
			loader, err := config.NewLoader(file, cmd.Flags())
			if err != nil {
				return err
			}
			cfg := loader.Config()
			log := logging.NewLogger(cfg.LogLevel)
			defer func() { _ = log.Sync() }()

			loader.Watch(func(c config.Config) {
				log.Infow("configuration reloaded", logging.LabelMethod, c.Method, "passes", c.Passes)
			}, func(err error) {
				log.Errorw("keeping previous configuration", zap.Error(err))
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx = logging.WithLogger(ctx, log)
			return serve(ctx, loader, log, cfg.Addr)
		},
	}
	f := command.Flags()
	f.String("addr", ":8080", "listen address")
	f.String("method", config.MethodAuto, "default method: auto, exact or heuristic")
	f.Int("passes", 5, "default heuristic passes")
	f.Bool("verify", false, "check every cover with a BDD")
	f.Int("workers", 0, "outputs minimized in parallel per request (default one per CPU)")
	return command
}

func serve(ctx context.Context, loader *config.Loader, log *zap.SugaredLogger, addr string) error {
	s := server.New(loader.Config, log, metrics.NewMetrics())
	return s.Run(ctx, addr)
}
