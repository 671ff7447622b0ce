package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javelin-media/javelin/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "javelin",
	Short: "Multi-source video catalog metadata resolver",
	Long:  "Resolves metadata for a catalog code by querying several scraper sources concurrently, merging fields by priority, and caching results in SQLite.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
