// Package backup exports the phrase store to object storage on a cron
// schedule.
package backup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bowerhall/mitek/internal/logger"
	"github.com/bowerhall/mitek/internal/phrase"
	"github.com/bowerhall/mitek/internal/storage"
)

// Prefix is where backups live in the bucket.
const Prefix = "backups/"

const contentType = "application/yaml"

// cronParser accepts standard 5-field cron expressions
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

type Exporter interface {
	Export(ctx context.Context) (phrase.Snapshot, error)
}

type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

type Alerter interface {
	BackupFailed(err error)
}

type Config struct {
	Exporter Exporter
	Store    ObjectStore
	Alerter  Alerter

	// Keep is how many backups to retain. Zero keeps all.
	Keep     int
	Location *time.Location
}

// Runner takes phrase backups.
type Runner struct {
	exporter Exporter
	store    ObjectStore
	alerter  Alerter
	keep     int
	location *time.Location
	now      func() time.Time
}

func New(cfg Config) *Runner {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	return &Runner{
		exporter: cfg.Exporter,
		store:    cfg.Store,
		alerter:  cfg.Alerter,
		keep:     cfg.Keep,
		location: loc,
		now:      time.Now,
	}
}

// ValidateSchedule reports whether schedule is a usable cron expression.
func ValidateSchedule(schedule string) error {
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}
	return nil
}

// Key returns the object key for a backup taken at t.
func Key(t time.Time) string {
	return Prefix + "phrases-" + t.UTC().Format("20060102-150405") + ".yaml"
}

// RunOnce exports every phrase and uploads the snapshot. It returns the
// object key written.
func (r *Runner) RunOnce(ctx context.Context) (string, error) {
	snap, err := r.exporter.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("export phrases: %w", err)
	}

	data, err := phrase.MarshalSnapshot(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	key := Key(r.now())
	if err := r.store.Upload(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("upload backup: %w", err)
	}

	logger.Info("phrase backup written", "key", key, "filler", len(snap.Filler), "quotes", len(snap.Quotes))

	if r.keep > 0 {
		if err := r.prune(ctx); err != nil {
			logger.Warn("backup prune failed", "error", err)
		}
	}

	return key, nil
}

// prune deletes the oldest backups beyond the retention count.
func (r *Runner) prune(ctx context.Context) error {
	objects, err := r.store.List(ctx, Prefix)
	if err != nil {
		return err
	}

	var backups []storage.ObjectInfo
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, ".yaml") {
			backups = append(backups, obj)
		}
	}

	for len(backups) > r.keep {
		if err := r.store.Delete(ctx, backups[0].Key); err != nil {
			return err
		}
		logger.Debug("old backup deleted", "key", backups[0].Key)
		backups = backups[1:]
	}

	return nil
}

// Run takes a backup on every tick of schedule until ctx is done.
func (r *Runner) Run(ctx context.Context, schedule string) error {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}

	c := cron.New(cron.WithLocation(r.location), cron.WithParser(cronParser))
	c.Schedule(sched, cron.FuncJob(func() {
		if _, err := r.RunOnce(ctx); err != nil {
			logger.Error("scheduled backup failed", "error", err)
			if r.alerter != nil {
				r.alerter.BackupFailed(err)
			}
		}
	}))

	c.Start()
	logger.Info("backup runner started", "schedule", schedule, "next", sched.Next(r.now().In(r.location)))

	<-ctx.Done()

	<-c.Stop().Done()
	logger.Debug("backup runner stopped")

	return nil
}
