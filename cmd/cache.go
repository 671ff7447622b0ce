package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cacheInvalidateSource string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the result cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts and hit totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := initCache(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Enabled:      %v\n", stats.Enabled)
		fmt.Printf("Entries:      %d\n", stats.Entries)
		fmt.Printf("Total hits:   %d\n", stats.TotalHits)
		fmt.Printf("Size:         %d bytes\n", stats.SizeBytes)
		fmt.Printf("TTL:          %s\n", stats.TTL)
		return nil
	},
}

var cacheSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := initCache(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		removed, err := store.Sweep(ctx)
		if err != nil {
			return err
		}
		zap.L().Info("cache sweep complete", zap.Int("removed", removed))
		fmt.Printf("Removed %d expired entries\n", removed)
		return nil
	},
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <identifier>",
	Short: "Drop cached entries for an identifier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := initCache(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		removed, err := store.Invalidate(ctx, args[0], cacheInvalidateSource)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d entries\n", removed)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cache entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := initCache(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		removed, err := store.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d entries\n", removed)
		return nil
	},
}

func init() {
	cacheInvalidateCmd.Flags().StringVar(&cacheInvalidateSource, "source", "", "only drop the entry from this source")
	cacheCmd.AddCommand(cacheStatsCmd, cacheSweepCmd, cacheInvalidateCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
