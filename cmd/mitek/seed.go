package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bowerhall/mitek/internal/config"
	"github.com/bowerhall/mitek/internal/logger"
	"github.com/bowerhall/mitek/internal/phrase"
)

func seedCmd() *cobra.Command {
	var (
		category string
		file     string
		appendTo bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load phrases from a YAML or JSON file",
		Long: "Load phrases from a file holding a bare list, a {phrases: [...]} mapping, or a mapping keyed by list name.\n" +
			"Each list named in the file is replaced unless --append is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fallback, err := phrase.ParseCategory(category)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), file, fallback, appendTo)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", string(phrase.Filler), "list for files without list names (filler or quotes)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file")
	cmd.Flags().BoolVar(&appendTo, "append", false, "append instead of replacing")
	cmd.MarkFlagRequired("file")

	return cmd
}

func runSeed(ctx context.Context, file string, fallback phrase.Category, appendTo bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	lists, err := phrase.LoadSeedFile(file, fallback)
	if err != nil {
		return err
	}

	store, err := phrase.Open(phrase.Dialect(cfg.Phrases.Driver), cfg.Phrases.DSN)
	if err != nil {
		return fmt.Errorf("open phrase store: %w", err)
	}
	defer store.Close()

	for _, c := range phrase.Categories {
		texts, ok := lists[c]
		if !ok {
			continue
		}

		var n int
		if appendTo {
			n, err = store.Append(ctx, c, texts)
		} else {
			n, err = store.Replace(ctx, c, texts)
		}
		if err != nil {
			return fmt.Errorf("seed %s: %w", c, err)
		}

		logger.Info("phrases seeded", "category", c, "count", n, "append", appendTo)
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("filler: %d, quotes: %d\n", counts[phrase.Filler], counts[phrase.Quotes])

	return nil
}
