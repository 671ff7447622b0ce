package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javelin-media/javelin/internal/scraper"
)

var sourcesCheck bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List available sources and aliases",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		fmt.Println("Sources:")
		for _, name := range env.Registry.Names() {
			fmt.Printf("  %s\n", name)
		}

		aliases := scraper.Aliases()
		names := make([]string, 0, len(aliases))
		for name := range aliases {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Println("\nAliases:")
		for _, name := range names {
			fmt.Printf("  %-6s -> %s\n", name, strings.Join(aliases[name], ", "))
		}

		if !sourcesCheck {
			return nil
		}

		fmt.Println("\nHealth:")
		for _, status := range scraper.CheckAll(ctx, env.Registry, 30*time.Second) {
			if status.OK {
				fmt.Printf("  %-12s ok    (%s)\n", status.Source, status.Elapsed.Round(time.Millisecond))
			} else {
				fmt.Printf("  %-12s DOWN  %v\n", status.Source, status.Err)
			}
		}
		return nil
	},
}

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesCheck, "check", false, "probe each source with a live lookup")
	rootCmd.AddCommand(sourcesCmd)
}
