package dispatch

import (
	"context"
	"fmt"

	"github.com/bowerhall/mitek/internal/logger"
	"github.com/bowerhall/mitek/internal/media"
	"github.com/bowerhall/mitek/internal/phrase"
	"github.com/bowerhall/mitek/internal/session"
	"github.com/bowerhall/mitek/internal/weighted"
)

// NothingAvailable is sent when the candidate phrase list is empty.
const NothingAvailable = "Nothing to say..."

// DefaultCaption goes with the media asset when none is configured.
const DefaultCaption = "Play this one"

type Action int

const (
	ActionReply Action = iota
	ActionQuote
	ActionMedia
)

// actions is indexed the same way as session.Weights.Slice.
var actions = []Action{ActionReply, ActionQuote, ActionMedia}

func (a Action) String() string {
	switch a {
	case ActionReply:
		return "reply"
	case ActionQuote:
		return "quote"
	case ActionMedia:
		return "media"
	default:
		return "unknown"
	}
}

// Transport delivers outgoing messages. Message IDs are transport specific.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) (string, error)
	SendReply(ctx context.Context, chatID int64, text, replyTo string) (string, error)
	SendMedia(ctx context.Context, chatID int64, asset media.Asset, caption string) (string, error)
}

type Config struct {
	Phrases   phrase.Store
	Sessions  *session.Manager
	Transport Transport
	Asset     media.Asset
	Caption   string
	Rand      weighted.Rand
}

// Policy decides what a chat's loop says next and says it.
type Policy struct {
	phrases   phrase.Store
	sessions  *session.Manager
	transport Transport
	asset     media.Asset
	caption   string
	rng       weighted.Rand
}

func New(cfg Config) *Policy {
	p := &Policy{
		phrases:   cfg.Phrases,
		sessions:  cfg.Sessions,
		transport: cfg.Transport,
		asset:     cfg.Asset,
		caption:   cfg.Caption,
		rng:       cfg.Rand,
	}

	if p.caption == "" {
		p.caption = DefaultCaption
	}
	if p.rng == nil {
		p.rng = weighted.Global()
	}

	return p
}

// Choose draws an action from the chat's weights.
func (p *Policy) Choose(w session.Weights) (Action, error) {
	idx, err := weighted.Pick(p.rng, w.Slice())
	if err != nil {
		return 0, fmt.Errorf("choose action: %w", err)
	}
	return actions[idx], nil
}

// Dispatch sends one message to chatID. A reply draw with no history falls
// back to a quote for this call only.
func (p *Policy) Dispatch(ctx context.Context, chatID int64) error {
	action, err := p.Choose(p.sessions.Weights(chatID))
	if err != nil {
		return err
	}

	var target session.Message
	if action == ActionReply {
		var ok bool
		target, ok = p.sessions.SampleRecent(chatID, p.rng)
		if !ok {
			logger.Debug("no reply targets, falling back to quote", "chat", chatID)
			action = ActionQuote
		}
	}

	var msgID string
	switch action {
	case ActionReply:
		text, err := p.SelectPhrase(ctx, phrase.Filler)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		msgID, err = p.transport.SendReply(ctx, chatID, text, target.ID)
		if err != nil {
			return fmt.Errorf("send reply: %w", err)
		}

	case ActionQuote:
		text, err := p.SelectPhrase(ctx, phrase.Categories...)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		msgID, err = p.transport.SendText(ctx, chatID, text)
		if err != nil {
			return fmt.Errorf("send quote: %w", err)
		}

	case ActionMedia:
		if err := ctx.Err(); err != nil {
			return err
		}
		msgID, err = p.transport.SendMedia(ctx, chatID, p.asset, p.caption)
		if err != nil {
			return fmt.Errorf("send media: %w", err)
		}
	}

	logger.Info("dispatch sent", "chat", chatID, "action", action, "message", msgID)

	return nil
}

// SelectPhrase draws one phrase from the given categories, concatenated in
// order. Earlier phrases weigh more: position i of n gets weight n-i.
func (p *Policy) SelectPhrase(ctx context.Context, categories ...phrase.Category) (string, error) {
	var candidates []phrase.Phrase
	for _, c := range categories {
		list, err := p.phrases.ListAll(ctx, c)
		if err != nil {
			return "", fmt.Errorf("load %s phrases: %w", c, err)
		}
		candidates = append(candidates, list...)
	}

	if len(candidates) == 0 {
		return NothingAvailable, nil
	}

	weights := make([]float64, len(candidates))
	for i := range candidates {
		weights[i] = float64(len(candidates) - i)
	}

	idx, err := weighted.Pick(p.rng, weights)
	if err != nil {
		return "", err
	}

	return candidates[idx].Text, nil
}
