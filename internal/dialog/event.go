package dialog

import (
	"strings"
	"time"
)

type Kind int

const (
	KindText Kind = iota
	KindCommand
	KindCallback
)

type Command int

const (
	CmdUnknown Command = iota
	CmdStart
	CmdStop
	CmdAddPhrase
	CmdDeleteRecent
	CmdSetInterval
	CmdSetWeights
	CmdCancel
	CmdIntro
)

// CommandInfo describes a command for platform menus.
type CommandInfo struct {
	Name        string
	Description string
}

// Commands lists the command menu in display order.
var Commands = []CommandInfo{
	{"start", "Start Mitek"},
	{"stop", "Stop Mitek"},
	{"add_phrase", "Add a phrase"},
	{"delete_recent", "Delete the most recent phrase"},
	{"set_interval", "Set the interval between messages"},
	{"set_weights", "Set reply/quote/media odds"},
	{"cancel", "Cancel the current operation"},
	{"intro", "Introduce yourself"},
}

var commandNames = map[string]Command{
	"start":         CmdStart,
	"stop":          CmdStop,
	"add_phrase":    CmdAddPhrase,
	"delete_recent": CmdDeleteRecent,
	"set_interval":  CmdSetInterval,
	"set_weights":   CmdSetWeights,
	"cancel":        CmdCancel,
	"intro":         CmdIntro,

	// legacy Telegram menu names
	"start_mitek":          CmdStart,
	"stop_mitek":           CmdStop,
	"add_phrases":          CmdAddPhrase,
	"delete_recent_phrase": CmdDeleteRecent,
}

// ParseCommand resolves a command name such as "/start@mitek_bot".
func ParseCommand(name string) (Command, bool) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}

	cmd, ok := commandNames[strings.ToLower(name)]
	return cmd, ok
}

func (c Command) String() string {
	switch c {
	case CmdStart:
		return "start"
	case CmdStop:
		return "stop"
	case CmdAddPhrase:
		return "add_phrase"
	case CmdDeleteRecent:
		return "delete_recent"
	case CmdSetInterval:
		return "set_interval"
	case CmdSetWeights:
		return "set_weights"
	case CmdCancel:
		return "cancel"
	case CmdIntro:
		return "intro"
	default:
		return "unknown"
	}
}

// Event is one inbound interaction, already stripped of platform detail.
type Event struct {
	ChatID int64
	UserID int64

	// MultiUser is set for group chats and guild channels.
	MultiUser bool

	Kind      Kind
	Command   Command
	Args      []string
	Text      string
	MessageID string

	// Data is the payload of a pressed choice.
	Data string

	At time.Time
}
