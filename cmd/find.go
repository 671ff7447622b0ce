package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javelin-media/javelin/internal/model"
)

var (
	findSources     []string
	findNoAggregate bool
	findJSON        bool
	findNoCache     bool
)

var findCmd = &cobra.Command{
	Use:   "find <identifier> [identifier...]",
	Short: "Resolve metadata for one or more catalog codes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if findNoCache {
			cfg.Cache.Enabled = false
		}

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sources := findSources
		if len(sources) == 0 {
			sources = cfg.Sources.Default
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		var failed int
		for _, id := range args {
			if findNoAggregate {
				records, err := env.Engine.ResolveAll(ctx, id, sources)
				if err != nil {
					return eris.Wrapf(err, "resolve %s", id)
				}
				if err := printPerSource(enc, id, records); err != nil {
					return err
				}
				continue
			}

			result, err := env.Engine.Resolve(ctx, id, sources)
			if err != nil {
				return eris.Wrapf(err, "resolve %s", id)
			}
			if result == nil {
				zap.L().Warn("no source returned data", zap.String("identifier", id))
				fmt.Fprintf(os.Stderr, "%s: not found\n", id)
				failed++
				continue
			}
			if findJSON {
				if err := enc.Encode(result); err != nil {
					return eris.Wrap(err, "encode result")
				}
			} else {
				printMetadata(result)
			}
		}

		if failed == len(args) {
			return eris.New("no results for any identifier")
		}
		return nil
	},
}

func printPerSource(enc *json.Encoder, id string, records map[string]*model.Metadata) error {
	if len(records) == 0 {
		fmt.Fprintf(os.Stderr, "%s: not found\n", id)
		return nil
	}
	if findJSON {
		return enc.Encode(records)
	}
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("--- %s ---\n", name)
		printMetadata(records[name])
	}
	return nil
}

func printMetadata(m *model.Metadata) {
	fmt.Printf("ID:           %s\n", m.ID)
	fmt.Printf("Title:        %s\n", m.Title)
	if m.OriginalTitle != "" {
		fmt.Printf("Original:     %s\n", m.OriginalTitle)
	}
	if !m.ReleaseDate.IsZero() {
		fmt.Printf("Released:     %s\n", m.ReleaseDate.Format("2006-01-02"))
	}
	if m.Runtime > 0 {
		fmt.Printf("Runtime:      %d min\n", m.Runtime)
	}
	if m.Director != "" {
		fmt.Printf("Director:     %s\n", m.Director)
	}
	if m.Maker != "" {
		fmt.Printf("Maker:        %s\n", m.Maker)
	}
	if m.Label != "" {
		fmt.Printf("Label:        %s\n", m.Label)
	}
	if m.Series != "" {
		fmt.Printf("Series:       %s\n", m.Series)
	}
	if len(m.Actresses) > 0 {
		names := make([]string, 0, len(m.Actresses))
		for _, a := range m.Actresses {
			names = append(names, a.FullName())
		}
		fmt.Printf("Actresses:    %s\n", strings.Join(names, ", "))
	}
	if len(m.Genres) > 0 {
		fmt.Printf("Genres:       %s\n", strings.Join(m.Genres, ", "))
	}
	if m.Rating != nil {
		fmt.Printf("Rating:       %.1f (%d votes)\n", m.Rating.Score, m.Rating.Votes)
	}
	if m.CoverURL != "" {
		fmt.Printf("Cover:        %s\n", m.CoverURL)
	}
	fmt.Printf("Source:       %s\n", m.Source)
	fmt.Println()
}

func init() {
	findCmd.Flags().StringSliceVar(&findSources, "source", nil, "sources to query (default from config)")
	findCmd.Flags().BoolVar(&findNoAggregate, "no-aggregate", false, "print per-source records instead of the merged result")
	findCmd.Flags().BoolVar(&findJSON, "json", false, "emit JSON")
	findCmd.Flags().BoolVar(&findNoCache, "no-cache", false, "bypass the result cache")
	rootCmd.AddCommand(findCmd)
}
