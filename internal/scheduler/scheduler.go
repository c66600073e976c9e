// Package scheduler runs one dispatch loop per chat.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/bowerhall/mitek/internal/logger"
	"github.com/bowerhall/mitek/internal/session"
	"github.com/bowerhall/mitek/internal/weighted"
)

// Dispatcher sends one message into a chat.
type Dispatcher interface {
	Dispatch(ctx context.Context, chatID int64) error
}

// Alerter is told about dispatch failures the loop survived.
type Alerter interface {
	LoopFailed(chatID int64, err error)
}

type Option func(*Scheduler)

// WithUnit sets the length of one interval step. Intervals are configured in
// seconds, tests shrink the unit.
func WithUnit(d time.Duration) Option {
	return func(s *Scheduler) { s.unit = d }
}

func WithRand(r weighted.Rand) Option {
	return func(s *Scheduler) { s.rng = r }
}

func WithAlerter(a Alerter) Option {
	return func(s *Scheduler) { s.alerter = a }
}

type Scheduler struct {
	ctx        context.Context
	sessions   *session.Manager
	dispatcher Dispatcher
	unit       time.Duration
	rng        weighted.Rand
	alerter    Alerter
	wg         sync.WaitGroup
}

// loopHandle is what the session stores for a running loop.
type loopHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (h *loopHandle) Cancel() { h.cancel() }

// New returns a Scheduler whose loops all stop when ctx is cancelled.
func New(ctx context.Context, sessions *session.Manager, dispatcher Dispatcher, opts ...Option) *Scheduler {
	s := &Scheduler{
		ctx:        ctx,
		sessions:   sessions,
		dispatcher: dispatcher,
		unit:       time.Second,
		rng:        weighted.Global(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start spawns chatID's loop. It returns false if one is already running.
func (s *Scheduler) Start(chatID int64) bool {
	ctx, cancel := context.WithCancel(s.ctx)
	h := &loopHandle{cancel: cancel, done: make(chan struct{})}

	if !s.sessions.TrySetSchedulerHandle(chatID, h) {
		cancel()
		return false
	}

	s.wg.Add(1)
	go s.run(ctx, chatID, h)

	logger.Info("scheduler started", "chat", chatID)

	return true
}

// Stop cancels chatID's loop. It returns false if none was running. The loop
// may still finish a dispatch that was already past its last cancel check.
func (s *Scheduler) Stop(chatID int64) bool {
	h := s.sessions.TakeSchedulerHandle(chatID)
	if h == nil {
		return false
	}

	h.Cancel()
	logger.Info("scheduler stopped", "chat", chatID)

	return true
}

func (s *Scheduler) Running(chatID int64) bool {
	return s.sessions.SchedulerRunning(chatID)
}

// Shutdown cancels every loop and waits for them to exit.
func (s *Scheduler) Shutdown() {
	handles := s.sessions.TakeAllSchedulerHandles()
	for _, h := range handles {
		h.Cancel()
	}

	s.wg.Wait()
	logger.Info("scheduler shut down", "loops", len(handles))
}

func (s *Scheduler) nextDelay(chatID int64) time.Duration {
	iv := s.sessions.Interval(chatID)
	return time.Duration(weighted.Between(s.rng, iv.Min, iv.Max)) * s.unit
}

func (s *Scheduler) run(ctx context.Context, chatID int64, h *loopHandle) {
	defer s.wg.Done()
	defer close(h.done)
	defer s.sessions.ClearSchedulerHandle(chatID, h)

	log := logger.With("chat", chatID)

	for {
		delay := s.nextDelay(chatID)
		log.Debug("next dispatch scheduled", "in", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if ctx.Err() != nil {
			return
		}

		if err := s.dispatcher.Dispatch(ctx, chatID); err != nil {
			if ctx.Err() != nil {
				return
			}

			log.Error("dispatch failed", "error", err)
			if s.alerter != nil {
				s.alerter.LoopFailed(chatID, err)
			}
		}
	}
}
