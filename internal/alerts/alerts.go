// Package alerts forwards operational failures to the owner chat.
package alerts

import (
	"fmt"
	"sync"
	"time"

	"github.com/bowerhall/mitek/internal/logger"
)

type Severity int

const (
	SeverityWarn Severity = iota
	SeverityCritical
)

func (s Severity) prefix() string {
	if s == SeverityCritical {
		return "🚨"
	}
	return "⚠️"
}

// NotifyFunc delivers a rendered alert to the owner.
type NotifyFunc func(message string) error

type Alerter struct {
	mu        sync.Mutex
	notify    NotifyFunc
	cooldowns map[string]time.Time
	inflight  map[string]bool
	cooldown  time.Duration
	now       func() time.Time
}

// New returns an Alerter that suppresses repeats of the same alert for
// cooldown. A nil notify makes every alert a log line only.
func New(notify NotifyFunc, cooldown time.Duration) *Alerter {
	return &Alerter{
		notify:    notify,
		cooldowns: make(map[string]time.Time),
		inflight:  make(map[string]bool),
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Alert reports whether the alert was delivered. Delivery runs without the
// lock held; a second caller with the same key is suppressed while the first
// is in flight.
func (a *Alerter) Alert(severity Severity, component, message string, err error) bool {
	key := fmt.Sprintf("%s:%s", component, message)

	if !a.claim(key) {
		logger.Debug("alert suppressed (cooldown)", "component", component, "message", message)
		return false
	}

	if a.notify == nil {
		a.release(key, false)
		logger.Warn("alert", "component", component, "message", message, "error", err)
		return false
	}

	text := fmt.Sprintf("%s %s: %s", severity.prefix(), component, message)
	if err != nil {
		text += fmt.Sprintf("\n\nError: %v", err)
	}

	if sendErr := a.notify(text); sendErr != nil {
		a.release(key, false)
		logger.Error("alert delivery failed", "component", component, "error", sendErr)
		return false
	}

	a.release(key, true)
	logger.Info("alert sent", "component", component, "severity", severity)

	return true
}

// claim marks key in flight unless it is cooling down or already in flight.
func (a *Alerter) claim(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.inflight[key] {
		return false
	}
	if lastSent, ok := a.cooldowns[key]; ok && a.now().Sub(lastSent) < a.cooldown {
		return false
	}
	a.inflight[key] = true

	return true
}

func (a *Alerter) release(key string, delivered bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.inflight, key)
	if delivered {
		a.cooldowns[key] = a.now()
	}
}

func (a *Alerter) Critical(component, message string, err error) bool {
	return a.Alert(SeverityCritical, component, message, err)
}

func (a *Alerter) Warn(component, message string, err error) bool {
	return a.Alert(SeverityWarn, component, message, err)
}

// LoopFailed reports a failed dispatch in chatID's loop.
func (a *Alerter) LoopFailed(chatID int64, err error) {
	a.Warn("scheduler", fmt.Sprintf("dispatch failed in chat %d", chatID), err)
}

// BackupFailed reports a failed phrase backup.
func (a *Alerter) BackupFailed(err error) {
	a.Critical("backup", "phrase backup failed", err)
}
