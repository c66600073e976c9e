package bot

import (
	"context"

	"github.com/bowerhall/mitek/internal/dialog"
	"github.com/bowerhall/mitek/internal/dispatch"
)

// Bot is one chat platform. It delivers the dispatcher's messages and feeds
// inbound events to its Handler.
type Bot interface {
	dispatch.Transport

	Name() string
	Start(ctx context.Context) error
	SetHandler(h Handler)
}

type Handler interface {
	Handle(ctx context.Context, ev dialog.Event) (dialog.Response, error)
}

type Config struct {
	Provider string
	Token    string

	// Rate and Burst pace outgoing sends, in messages per second.
	Rate  float64
	Burst int
}
