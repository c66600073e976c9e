package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bowerhall/mitek/internal/alerts"
	"github.com/bowerhall/mitek/internal/app"
	"github.com/bowerhall/mitek/internal/backup"
	"github.com/bowerhall/mitek/internal/bot"
	"github.com/bowerhall/mitek/internal/config"
	"github.com/bowerhall/mitek/internal/logger"
	"github.com/bowerhall/mitek/internal/media"
	"github.com/bowerhall/mitek/internal/phrase"
	"github.com/bowerhall/mitek/internal/session"
	"github.com/bowerhall/mitek/internal/storage"
)

// alertCooldown limits how often the owner hears about the same failure.
const alertCooldown = 30 * time.Minute

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bots (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func openStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client, err := storage.NewClient(storage.Config{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
		Bucket:    cfg.Bucket,
	})
	if err != nil {
		return nil, err
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Init(initCtx); err != nil {
		return nil, fmt.Errorf("init storage bucket: %w", err)
	}

	return client, nil
}

func loadAsset(ctx context.Context, cfg config.MediaConfig, store *storage.Client) (media.Asset, error) {
	if cfg.Object != "" && store != nil {
		return media.LoadObject(ctx, store, cfg.Object)
	}
	return media.LoadFile(cfg.Path)
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	phrases, err := phrase.Open(phrase.Dialect(cfg.Phrases.Driver), cfg.Phrases.DSN)
	if err != nil {
		return fmt.Errorf("open phrase store: %w", err)
	}
	defer phrases.Close()

	counts, err := phrases.Counts(ctx)
	if err != nil {
		return fmt.Errorf("phrase store check: %w", err)
	}
	logger.Debug("health check", "component", "phrases", "status", "ok", "filler", counts[phrase.Filler], "quotes", counts[phrase.Quotes])

	objects, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	asset, err := loadAsset(ctx, cfg.Media, objects)
	if err != nil {
		return err
	}

	var bots []bot.Bot
	for _, inst := range cfg.Bots.Enabled() {
		b, err := bot.New(bot.Config{
			Provider: inst.Provider,
			Token:    inst.Token,
			Rate:     cfg.Send.Rate,
			Burst:    cfg.Send.Burst,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", inst.Provider, err)
		}
		bots = append(bots, b)
	}

	// the owner chat lives on the first platform, Telegram when enabled
	var notify alerts.NotifyFunc
	if cfg.OwnerChatID != 0 {
		owner := bots[0]
		notify = func(message string) error {
			sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_, err := owner.SendText(sendCtx, cfg.OwnerChatID, message)
			return err
		}
	}
	alerter := alerts.New(notify, alertCooldown)

	deps := app.Deps{
		Phrases: phrases,
		Auth:    cfg.AllowedUsers,
		Asset:   asset,
		Caption: cfg.Media.Caption,
		Intro:   cfg.IntroText,
		Defaults: session.Defaults{
			Interval: cfg.Schedule.Interval,
			Weights:  cfg.Schedule.Weights,
		},
		Alerter: alerter,
	}

	g, gctx := errgroup.WithContext(ctx)

	var stacks []*app.Stack
	for _, b := range bots {
		stack := app.NewStack(gctx, b, deps)
		b.SetHandler(stack.Engine)
		stacks = append(stacks, stack)

		g.Go(func() error {
			if err := b.Start(gctx); err != nil {
				return fmt.Errorf("%s: %w", b.Name(), err)
			}
			return nil
		})
	}

	if cfg.Backup.Schedule != "" {
		if objects == nil {
			logger.Warn("backup schedule ignored, storage not configured")
		} else {
			tz, err := time.LoadLocation(cfg.Timezone)
			if err != nil {
				logger.Warn("unknown timezone, using UTC", "tz", cfg.Timezone)
				tz = time.UTC
			}
			runner := backup.New(backup.Config{
				Exporter: phrases,
				Store:    objects,
				Alerter:  alerter,
				Keep:     cfg.Backup.Keep,
				Location: tz,
			})
			g.Go(func() error {
				return runner.Run(gctx, cfg.Backup.Schedule)
			})
		}
	}

	names := make([]string, len(bots))
	for i, b := range bots {
		names[i] = b.Name()
	}
	logger.Info("mitek started",
		"bots", names,
		"phrases", cfg.Phrases.Driver,
		"media", asset.Name,
		"storage", objects != nil,
		"operators", cfg.AllowedUsers.Len(),
	)

	err = g.Wait()

	logger.Info("shutting down")
	for _, s := range stacks {
		s.Shutdown()
	}

	return err
}
