// Package app wires one chat platform's sessions, scheduler, dispatcher and
// dialog engine together.
package app

import (
	"context"

	"github.com/bowerhall/mitek/internal/dialog"
	"github.com/bowerhall/mitek/internal/dispatch"
	"github.com/bowerhall/mitek/internal/media"
	"github.com/bowerhall/mitek/internal/phrase"
	"github.com/bowerhall/mitek/internal/scheduler"
	"github.com/bowerhall/mitek/internal/session"
	"github.com/bowerhall/mitek/internal/weighted"
)

// Deps are shared by every platform.
type Deps struct {
	Phrases  phrase.Store
	Auth     dialog.Authorizer
	Asset    media.Asset
	Caption  string
	Intro    string
	Defaults session.Defaults
	Alerter  scheduler.Alerter
	Rand     weighted.Rand
}

// Stack is the runtime for one platform. Chat IDs are only unique within a
// platform, so each platform gets its own.
type Stack struct {
	Sessions  *session.Manager
	Policy    *dispatch.Policy
	Scheduler *scheduler.Scheduler
	Engine    *dialog.Engine
}

func NewStack(ctx context.Context, transport dispatch.Transport, deps Deps, opts ...scheduler.Option) *Stack {
	sessions := session.NewManager(deps.Defaults)

	policy := dispatch.New(dispatch.Config{
		Phrases:   deps.Phrases,
		Sessions:  sessions,
		Transport: transport,
		Asset:     deps.Asset,
		Caption:   deps.Caption,
		Rand:      deps.Rand,
	})

	if deps.Alerter != nil {
		opts = append([]scheduler.Option{scheduler.WithAlerter(deps.Alerter)}, opts...)
	}
	if deps.Rand != nil {
		opts = append([]scheduler.Option{scheduler.WithRand(deps.Rand)}, opts...)
	}
	sched := scheduler.New(ctx, sessions, policy, opts...)

	engine := dialog.NewEngine(dialog.Config{
		Sessions:  sessions,
		Scheduler: sched,
		Phrases:   deps.Phrases,
		Auth:      deps.Auth,
		Intro:     deps.Intro,
	})

	return &Stack{
		Sessions:  sessions,
		Policy:    policy,
		Scheduler: sched,
		Engine:    engine,
	}
}

// Shutdown stops every chat loop of the platform.
func (s *Stack) Shutdown() {
	s.Scheduler.Shutdown()
}
