// Package dialog turns operator commands, text and button presses into
// session changes.
package dialog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bowerhall/mitek/internal/logger"
	"github.com/bowerhall/mitek/internal/phrase"
	"github.com/bowerhall/mitek/internal/session"
)

// Scheduler starts and stops a chat's dispatch loop.
type Scheduler interface {
	Start(chatID int64) bool
	Stop(chatID int64) bool
}

type Authorizer interface {
	IsAllowed(userID int64) bool
}

// Choice is one button offered with a response.
type Choice struct {
	Label string
	Data  string
}

// Response is what the transport should show. An empty Text means stay
// silent.
type Response struct {
	Text    string
	Choices []Choice

	// Notice marks an answer to a button press that must not replace the
	// message carrying the buttons.
	Notice bool
}

type Config struct {
	Sessions  *session.Manager
	Scheduler Scheduler
	Phrases   phrase.Store
	Auth      Authorizer
	Intro     string
}

type Engine struct {
	sessions  *session.Manager
	scheduler Scheduler
	phrases   phrase.Store
	auth      Authorizer
	intro     string

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

func NewEngine(cfg Config) *Engine {
	e := &Engine{
		sessions:  cfg.Sessions,
		scheduler: cfg.Scheduler,
		phrases:   cfg.Phrases,
		auth:      cfg.Auth,
		intro:     cfg.Intro,
		locks:     make(map[int64]*sync.Mutex),
	}

	if e.intro == "" {
		e.intro = DefaultIntro
	}

	return e
}

func (e *Engine) chatLock(chatID int64) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()

	l, ok := e.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[chatID] = l
	}

	return l
}

// Handle runs one event through the dialog. Events for the same chat are
// handled one at a time. On error the chat's state is left as it was.
func (e *Engine) Handle(ctx context.Context, ev Event) (Response, error) {
	l := e.chatLock(ev.ChatID)
	l.Lock()
	defer l.Unlock()

	in := Input{
		State:      e.sessions.State(ev.ChatID),
		Authorized: e.auth.IsAllowed(ev.UserID),
		Event:      ev,
	}
	if p, ok := e.sessions.Pending(ev.ChatID); ok {
		in.PendingToken = p.Token
	}

	step := Transition(in)

	if _, rejected := step.Action.(Reject); rejected {
		logger.Warn("unauthorized", "chat", ev.ChatID, "user", ev.UserID, "command", ev.Command)
	} else if ev.Kind != KindText {
		logger.Debug("dialog step", "chat", ev.ChatID, "from", in.State, "to", step.Next, "action", fmt.Sprintf("%T", step.Action))
	}

	resp, err := e.apply(ctx, ev.ChatID, step.Action)
	if err != nil {
		return Response{}, err
	}

	if ev.Kind == KindCallback {
		switch step.Action.(type) {
		case Reject, Reply:
			resp.Notice = true
		}
	}

	if ev.Kind == KindCommand && in.Authorized {
		e.sessions.ClearPending(ev.ChatID)
	}
	if step.Next != in.State {
		e.sessions.SetState(ev.ChatID, step.Next)
	}

	return resp, nil
}

func (e *Engine) apply(ctx context.Context, chatID int64, a Action) (Response, error) {
	switch a := a.(type) {
	case Reply:
		return Response{Text: a.Text}, nil

	case Reject:
		return Response{Text: MsgUnauthorized}, nil

	case StartLoop:
		if !e.scheduler.Start(chatID) {
			return Response{Text: MsgAlreadyRunning}, nil
		}
		return Response{Text: MsgStarted}, nil

	case StopLoop:
		if !e.scheduler.Stop(chatID) {
			return Response{Text: MsgNotRunning}, nil
		}
		return Response{Text: MsgStopped}, nil

	case InsertPhrase:
		return e.insert(ctx, a.Category, a.Text)

	case StagePhrase:
		token := e.sessions.StagePhrase(chatID, a.Text)
		return Response{Text: MsgChooseAdd, Choices: categoryChoices(addPrefix + token + ":")}, nil

	case CommitPhrase:
		p, ok := e.sessions.Pending(chatID)
		if !ok {
			return Response{Text: MsgExpired}, nil
		}
		return e.insert(ctx, a.Category, p.Text)

	case DeleteRecent:
		return e.deleteRecent(ctx, a.Category)

	case OfferCategories:
		return Response{Text: MsgChooseDelete, Choices: categoryChoices(delPrefix)}, nil

	case SetInterval:
		if err := e.sessions.SetInterval(chatID, a.Interval); err != nil {
			return Response{Text: MsgIntervalInvalid}, nil
		}
		return Response{Text: fmt.Sprintf(MsgIntervalSet, a.Interval.Min, a.Interval.Max)}, nil

	case SetWeights:
		if err := e.sessions.SetWeights(chatID, a.Weights); err != nil {
			return Response{Text: MsgWeightsInvalid}, nil
		}
		w := a.Weights
		return Response{Text: fmt.Sprintf(MsgWeightsSet, w.Reply, w.Quote, w.Media)}, nil

	case Track:
		e.sessions.Track(chatID, a.Message)
		return Response{}, nil

	case Describe:
		return Response{Text: e.intro}, nil

	case Cancel:
		return Response{Text: MsgCancelled}, nil

	default:
		return Response{}, nil
	}
}

func (e *Engine) insert(ctx context.Context, c phrase.Category, text string) (Response, error) {
	p, err := e.phrases.Insert(ctx, c, text)
	if err != nil {
		return Response{}, fmt.Errorf("insert phrase: %w", err)
	}

	logger.Info("phrase added", "category", c, "id", p.ID)

	return Response{Text: fmt.Sprintf(MsgAdded, c, p.Text)}, nil
}

func (e *Engine) deleteRecent(ctx context.Context, c phrase.Category) (Response, error) {
	p, err := e.phrases.MostRecent(ctx, c)
	if err != nil {
		return Response{}, fmt.Errorf("find recent phrase: %w", err)
	}
	if p == nil {
		return Response{Text: fmt.Sprintf(MsgNothingDelete, c)}, nil
	}

	if err := e.phrases.DeleteByID(ctx, p.ID); err != nil {
		return Response{}, fmt.Errorf("delete phrase: %w", err)
	}

	logger.Info("phrase deleted", "category", c, "id", p.ID)

	return Response{Text: fmt.Sprintf(MsgDeleted, c, p.Text)}, nil
}

func categoryChoices(prefix string) []Choice {
	choices := make([]Choice, 0, len(phrase.Categories))
	for _, c := range phrase.Categories {
		label := string(c)
		choices = append(choices, Choice{
			Label: strings.ToUpper(label[:1]) + label[1:],
			Data:  prefix + label,
		})
	}
	return choices
}
