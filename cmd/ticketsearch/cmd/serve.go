package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eruditedesk/ticketsearch/internal/embed"
	"github.com/eruditedesk/ticketsearch/internal/httpapi"
	"github.com/eruditedesk/ticketsearch/internal/ingest"
	"github.com/eruditedesk/ticketsearch/internal/search"
	"github.com/eruditedesk/ticketsearch/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the search service with the nightly ingestion scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		embedder := embed.NewEmbedder(cfg.Model.Path, cfg.Model.ModelName)
		defer func() { _ = embedder.Close() }()

		source, err := store.OpenPostgres(ctx, cfg.Database.Relational.URL)
		if err != nil {
			return err
		}
		defer func() { _ = source.Close() }()

		index := store.NewQdrantIndex(cfg.Database.Vector, cfg.SeedDate())
		if err := index.Initialize(ctx); err != nil {
			return err
		}

		engine := search.NewEngine(embedder, index, source, cfg.Service.Threshold)
		ingestor := ingest.New(embedder, source, index)
		server := httpapi.NewServer(engine, cfg.Service.Listen)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return server.Start(gctx)
		})
		g.Go(func() error {
			return ingestor.Run(gctx)
		})

		err = g.Wait()
		if errors.Is(err, context.Canceled) {
			slog.Info("service stopped")
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
