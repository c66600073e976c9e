// Package bot adapts Telegram and Discord to the dialog engine and the
// dispatcher.
package bot

import "fmt"

func New(cfg Config) (Bot, error) {
	switch cfg.Provider {
	case "telegram":
		return NewTelegram(cfg)
	case "discord":
		return NewDiscord(cfg)
	default:
		return nil, fmt.Errorf("unknown bot provider: %s", cfg.Provider)
	}
}

func NewTelegram(cfg Config) (Bot, error) {
	return newTelegram(cfg.Token, newLimiter(cfg.Rate, cfg.Burst))
}

func NewDiscord(cfg Config) (Bot, error) {
	return newDiscord(cfg.Token, newLimiter(cfg.Rate, cfg.Burst))
}
