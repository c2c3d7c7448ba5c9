package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eruditedesk/ticketsearch/internal/embed"
	"github.com/eruditedesk/ticketsearch/internal/ingest"
	"github.com/eruditedesk/ticketsearch/internal/store"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Run one ingestion pass and exit",
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

		return ingest.New(embedder, source, index).Update(ctx)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
