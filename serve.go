package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muhammadolammi/resumeforge/internal/api"
	"github.com/muhammadolammi/resumeforge/internal/queue"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API. Backends without settings are left off and the
endpoints that need them answer 503. When RabbitMQ is configured stored
analyses are queued for the worker, otherwise they run inline.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, requirements{})
		if err != nil {
			return err
		}
		defer a.close()

		deps := a.apiDeps()
		a.logger.Info("backends configured",
			zap.Bool("database", deps.Store != nil),
			zap.Bool("llm", deps.Analyzer != nil),
			zap.Bool("storage", deps.Files != nil),
			zap.Bool("queue", deps.Queue != nil),
		)
		return api.NewServer(a.cfg.Server, deps).Start(ctx)
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume queued analyses from RabbitMQ",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, requirements{database: true, llm: true, queue: true})
		if err != nil {
			return err
		}
		defer a.close()

		q := a.cfg.Queue
		a.logger.Info("Starting consumer worker pool", zap.Int("workers", q.Workers), zap.String("queue", q.Queue))
		return queue.Consume(ctx, q.URL, q.Queue, q.Workers, a.processor().Handle, a.logger)
	},
}
