package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bowerhall/mitek/internal/backup"
	"github.com/bowerhall/mitek/internal/config"
	"github.com/bowerhall/mitek/internal/phrase"
)

func backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Export all phrases to object storage now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(cmd.Context())
		},
	}
}

func runBackup(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	objects, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	if objects == nil {
		return errors.New("backup needs MINIO_ACCESS_KEY and MINIO_SECRET_KEY")
	}

	store, err := phrase.Open(phrase.Dialect(cfg.Phrases.Driver), cfg.Phrases.DSN)
	if err != nil {
		return fmt.Errorf("open phrase store: %w", err)
	}
	defer store.Close()

	runner := backup.New(backup.Config{
		Exporter: store,
		Store:    objects,
		Keep:     cfg.Backup.Keep,
	})

	key, err := runner.RunOnce(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("backup written to %s/%s\n", objects.Bucket(), key)
	return nil
}
