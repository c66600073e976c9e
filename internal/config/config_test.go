package config

import (
	"errors"
	"testing"

	"github.com/bowerhall/mitek/internal/auth"
	"github.com/bowerhall/mitek/internal/session"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TZ", "TELEGRAM_TOKEN", "bottoken", "DISCORD_TOKEN", "ALLOWED_USER_IDS", "OWNER_CHAT_ID",
		"PHRASE_DB_DRIVER", "PHRASE_DB_DSN", "MEDIA_PATH", "MEDIA_OBJECT", "MEDIA_CAPTION",
		"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_USE_SSL", "MINIO_BUCKET",
		"BACKUP_SCHEDULE", "BACKUP_KEEP", "INTERVAL_MIN", "INTERVAL_MAX", "DISPATCH_WEIGHTS",
		"INTRO_TEXT", "SEND_RATE", "SEND_BURST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Timezone != "UTC" {
		t.Errorf("expected UTC, got %s", cfg.Timezone)
	}
	if cfg.Phrases.Driver != "sqlite" || cfg.Phrases.DSN != "mitek.db" {
		t.Errorf("unexpected phrase db config %+v", cfg.Phrases)
	}
	if cfg.Media.Path != "marsh.mp3" {
		t.Errorf("unexpected media path %s", cfg.Media.Path)
	}
	if cfg.Storage.Enabled {
		t.Error("storage should be disabled without credentials")
	}
	if cfg.Schedule.Interval != session.DefaultInterval || cfg.Schedule.Weights != session.DefaultWeights {
		t.Errorf("unexpected schedule defaults %+v", cfg.Schedule)
	}
	if cfg.Backup.Keep != 14 || cfg.Backup.Schedule != "" {
		t.Errorf("unexpected backup defaults %+v", cfg.Backup)
	}
	if cfg.Send.Rate != 1 || cfg.Send.Burst != 3 {
		t.Errorf("unexpected send defaults %+v", cfg.Send)
	}

	if err := cfg.ValidateServe(); !errors.Is(err, ErrNoBots) {
		t.Errorf("expected ErrNoBots, got %v", err)
	}
}

func TestLoadFull(t *testing.T) {
	clearEnv(t)
	t.Setenv("bottoken", "legacy-token")
	t.Setenv("ALLOWED_USER_IDS", "1, 2,3")
	t.Setenv("OWNER_CHAT_ID", "-100")
	t.Setenv("PHRASE_DB_DRIVER", "postgres")
	t.Setenv("PHRASE_DB_DSN", "postgres://localhost/mitek")
	t.Setenv("MINIO_ACCESS_KEY", "ak")
	t.Setenv("MINIO_SECRET_KEY", "sk")
	t.Setenv("MEDIA_OBJECT", "media/marsh.mp3")
	t.Setenv("INTERVAL_MIN", "60")
	t.Setenv("INTERVAL_MAX", "120")
	t.Setenv("DISPATCH_WEIGHTS", "0.2, 0.7, 0.1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if !cfg.Bots.Telegram.Enabled || cfg.Bots.Telegram.Token != "legacy-token" {
		t.Errorf("legacy token not picked up: %+v", cfg.Bots.Telegram)
	}
	if cfg.AllowedUsers.Len() != 3 || !cfg.AllowedUsers.IsAllowed(2) {
		t.Errorf("unexpected allowed users, %d loaded", cfg.AllowedUsers.Len())
	}
	if bots := cfg.Bots.Enabled(); len(bots) != 1 || bots[0].Provider != "telegram" {
		t.Errorf("unexpected enabled bots %+v", bots)
	}
	if cfg.OwnerChatID != -100 {
		t.Errorf("unexpected owner chat %d", cfg.OwnerChatID)
	}
	if cfg.Schedule.Interval != (session.Interval{Min: 60, Max: 120}) {
		t.Errorf("unexpected interval %+v", cfg.Schedule.Interval)
	}
	if cfg.Schedule.Weights.Quote != 0.7 {
		t.Errorf("unexpected weights %+v", cfg.Schedule.Weights)
	}
	if err := cfg.ValidateServe(); err != nil {
		t.Errorf("expected valid serve config: %v", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"ALLOWED_USER_IDS", "1,x"},
		{"PHRASE_DB_DRIVER", "mongo"},
		{"INTERVAL_MIN", "soon"},
		{"INTERVAL_MAX", "1"},
		{"INTERVAL_MAX", "9999999999999"},
		{"DISPATCH_WEIGHTS", "0.5,0.5,0.1"},
		{"DISPATCH_WEIGHTS", "1,0"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestPostgresNeedsDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("PHRASE_DB_DRIVER", "postgres")

	if _, err := Load(); err == nil {
		t.Error("expected error for postgres without dsn")
	}
}

func TestValidateServe(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_TOKEN", "d")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.ValidateServe(); !errors.Is(err, ErrNoAllowedUsers) {
		t.Errorf("expected ErrNoAllowedUsers, got %v", err)
	}

	cfg.AllowedUsers = auth.NewAllowList(1)
	cfg.Media.Object = "media/x.mp3"
	if err := cfg.ValidateServe(); err == nil {
		t.Error("expected error for MEDIA_OBJECT without storage")
	}
}

func TestValidateServeChecksBackupSchedule(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_TOKEN", "d")
	t.Setenv("ALLOWED_USER_IDS", "1")
	t.Setenv("BACKUP_SCHEDULE", "every night")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.ValidateServe(); err == nil {
		t.Error("expected error for an unparsable BACKUP_SCHEDULE")
	}

	cfg.Backup.Schedule = "0 3 * * *"
	if err := cfg.ValidateServe(); err != nil {
		t.Errorf("expected valid schedule to pass: %v", err)
	}
}
