package config

import (
	"github.com/bowerhall/mitek/internal/auth"
	"github.com/bowerhall/mitek/internal/session"
)

type Config struct {
	Timezone     string
	AllowedUsers *auth.AllowList
	OwnerChatID  int64
	IntroText    string
	Bots         MultiBot
	Phrases      PhraseDBConfig
	Media        MediaConfig
	Storage      StorageConfig
	Backup       BackupConfig
	Schedule     ScheduleConfig
	Send         SendConfig
}

type BotInstance struct {
	Provider string
	Enabled  bool
	Token    string
}

type MultiBot struct {
	Telegram BotInstance
	Discord  BotInstance
}

// Enabled lists the configured bots, Telegram first.
func (m MultiBot) Enabled() []BotInstance {
	var out []BotInstance
	for _, b := range []BotInstance{m.Telegram, m.Discord} {
		if b.Enabled {
			out = append(out, b)
		}
	}
	return out
}

// PhraseDBConfig selects the phrase store backend.
type PhraseDBConfig struct {
	Driver string // sqlite or postgres
	DSN    string
}

type MediaConfig struct {
	Path    string
	Object  string // object key in the bucket, preferred over Path when set
	Caption string
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type BackupConfig struct {
	Schedule string // empty disables scheduled backups
	Keep     int
}

// ScheduleConfig seeds every new chat session.
type ScheduleConfig struct {
	Interval session.Interval
	Weights  session.Weights
}

// SendConfig paces outgoing messages per platform.
type SendConfig struct {
	Rate  float64 // messages per second
	Burst int
}
