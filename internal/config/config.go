package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bowerhall/mitek/internal/auth"
	"github.com/bowerhall/mitek/internal/backup"
	"github.com/bowerhall/mitek/internal/session"
)

var (
	ErrNoBots         = errors.New("set TELEGRAM_TOKEN or DISCORD_TOKEN")
	ErrNoAllowedUsers = errors.New("ALLOWED_USER_IDS not set")
)

func Load() (*Config, error) {
	timezone := os.Getenv("TZ")
	if timezone == "" {
		timezone = "UTC"
	}

	allowed, err := auth.ParseAllowList(os.Getenv("ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ALLOWED_USER_IDS: %w", err)
	}

	var ownerChatID int64
	if id, err := strconv.ParseInt(os.Getenv("OWNER_CHAT_ID"), 10, 64); err == nil {
		ownerChatID = id
	}

	phrases, err := loadPhraseDBConfig()
	if err != nil {
		return nil, err
	}

	schedule, err := loadScheduleConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Timezone:     timezone,
		AllowedUsers: allowed,
		OwnerChatID:  ownerChatID,
		IntroText:    os.Getenv("INTRO_TEXT"),
		Bots:         loadMultiBotConfig(),
		Phrases:      phrases,
		Media:        loadMediaConfig(),
		Storage:      loadStorageConfig(),
		Backup:       loadBackupConfig(),
		Schedule:     schedule,
		Send:         loadSendConfig(),
	}, nil
}

// ValidateServe checks the settings only the bot process needs.
func (c *Config) ValidateServe() error {
	if !c.Bots.Telegram.Enabled && !c.Bots.Discord.Enabled {
		return ErrNoBots
	}
	if c.AllowedUsers.Len() == 0 {
		return ErrNoAllowedUsers
	}
	if c.Media.Object != "" && !c.Storage.Enabled {
		return fmt.Errorf("MEDIA_OBJECT %q needs MinIO credentials", c.Media.Object)
	}
	if c.Backup.Schedule != "" {
		if err := backup.ValidateSchedule(c.Backup.Schedule); err != nil {
			return fmt.Errorf("BACKUP_SCHEDULE: %w", err)
		}
	}
	return nil
}

func loadMultiBotConfig() MultiBot {
	telegramToken := os.Getenv("TELEGRAM_TOKEN")
	if telegramToken == "" {
		// name used by the first deployments
		telegramToken = os.Getenv("bottoken")
	}
	discordToken := os.Getenv("DISCORD_TOKEN")

	return MultiBot{
		Telegram: BotInstance{
			Provider: "telegram",
			Enabled:  telegramToken != "",
			Token:    telegramToken,
		},
		Discord: BotInstance{
			Provider: "discord",
			Enabled:  discordToken != "",
			Token:    discordToken,
		},
	}
}

func loadPhraseDBConfig() (PhraseDBConfig, error) {
	driver := os.Getenv("PHRASE_DB_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}

	dsn := os.Getenv("PHRASE_DB_DSN")

	switch driver {
	case "sqlite":
		if dsn == "" {
			dsn = "mitek.db"
		}
	case "postgres":
		if dsn == "" {
			return PhraseDBConfig{}, fmt.Errorf("PHRASE_DB_DSN not set")
		}
	default:
		return PhraseDBConfig{}, fmt.Errorf("unknown PHRASE_DB_DRIVER: %s", driver)
	}

	return PhraseDBConfig{
		Driver: driver,
		DSN:    dsn,
	}, nil
}

func loadMediaConfig() MediaConfig {
	path := os.Getenv("MEDIA_PATH")
	if path == "" {
		path = "marsh.mp3"
	}

	return MediaConfig{
		Path:    path,
		Object:  os.Getenv("MEDIA_OBJECT"),
		Caption: os.Getenv("MEDIA_CAPTION"),
	}
}

func loadStorageConfig() StorageConfig {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "minio:9000"
	}

	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "mitek"
	}

	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")

	return StorageConfig{
		Enabled:   accessKey != "" && secretKey != "",
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		Bucket:    bucket,
	}
}

func loadBackupConfig() BackupConfig {
	keep := 14
	if n, err := strconv.Atoi(os.Getenv("BACKUP_KEEP")); err == nil && n >= 0 {
		keep = n
	}

	return BackupConfig{
		Schedule: os.Getenv("BACKUP_SCHEDULE"),
		Keep:     keep,
	}
}

func loadScheduleConfig() (ScheduleConfig, error) {
	interval := session.DefaultInterval

	if v := os.Getenv("INTERVAL_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ScheduleConfig{}, fmt.Errorf("INTERVAL_MIN: %w", err)
		}
		interval.Min = n
	}
	if v := os.Getenv("INTERVAL_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ScheduleConfig{}, fmt.Errorf("INTERVAL_MAX: %w", err)
		}
		interval.Max = n
	}
	if err := interval.Validate(); err != nil {
		return ScheduleConfig{}, fmt.Errorf("INTERVAL_MIN/INTERVAL_MAX: %w", err)
	}

	weights := session.DefaultWeights
	if v := os.Getenv("DISPATCH_WEIGHTS"); v != "" {
		w, err := parseWeights(v)
		if err != nil {
			return ScheduleConfig{}, fmt.Errorf("DISPATCH_WEIGHTS: %w", err)
		}
		weights = w
	}

	return ScheduleConfig{
		Interval: interval,
		Weights:  weights,
	}, nil
}

// parseWeights reads "reply,quote,media".
func parseWeights(v string) (session.Weights, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		return session.Weights{}, fmt.Errorf("want reply,quote,media, got %q", v)
	}

	var vals [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return session.Weights{}, err
		}
		vals[i] = f
	}

	w := session.Weights{Reply: vals[0], Quote: vals[1], Media: vals[2]}
	if err := w.Validate(); err != nil {
		return session.Weights{}, err
	}

	return w, nil
}

func loadSendConfig() SendConfig {
	rate := 1.0 // one message per second per platform
	if r, err := strconv.ParseFloat(os.Getenv("SEND_RATE"), 64); err == nil && r > 0 {
		rate = r
	}

	burst := 3
	if b, err := strconv.Atoi(os.Getenv("SEND_BURST")); err == nil && b > 0 {
		burst = b
	}

	return SendConfig{
		Rate:  rate,
		Burst: burst,
	}
}
