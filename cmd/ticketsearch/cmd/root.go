// Package cmd implements the ticketsearch CLI.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/eruditedesk/ticketsearch/internal/config"
	"github.com/eruditedesk/ticketsearch/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ticketsearch",
	Short: "Hybrid semantic and lexical search over support tickets",
	Long: `ticketsearch ingests support tickets from the relational store,
embeds them into a vector collection and answers ranked similarity
queries blending cosine similarity with BM25.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")
}

// loadConfig reads the configuration and applies the logging setup.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Setup(logging.Config{Level: cfg.Logging.Level})
	return cfg, nil
}
