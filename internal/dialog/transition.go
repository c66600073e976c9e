package dialog

import (
	"errors"
	"strconv"
	"strings"

	"github.com/bowerhall/mitek/internal/phrase"
	"github.com/bowerhall/mitek/internal/session"
)

// Action is the side effect a transition asks for. The Engine performs it.
type Action interface {
	action()
}

// Reply answers with fixed text.
type Reply struct{ Text string }

// Reject answers an unauthorized caller.
type Reject struct{}

type StartLoop struct{}

type StopLoop struct{}

// InsertPhrase stores a phrase given inline with the command.
type InsertPhrase struct {
	Category phrase.Category
	Text     string
}

// StagePhrase holds Text and offers the list choice.
type StagePhrase struct{ Text string }

// CommitPhrase stores the staged phrase under Category.
type CommitPhrase struct{ Category phrase.Category }

type DeleteRecent struct{ Category phrase.Category }

// OfferCategories asks which list to delete from.
type OfferCategories struct{}

type SetInterval struct{ Interval session.Interval }

type SetWeights struct{ Weights session.Weights }

// Track records ordinary chat traffic as a reply target.
type Track struct{ Message session.Message }

type Describe struct{}

type Cancel struct{}

type Ignore struct{}

func (Reply) action()           {}
func (Reject) action()          {}
func (StartLoop) action()       {}
func (StopLoop) action()        {}
func (InsertPhrase) action()    {}
func (StagePhrase) action()     {}
func (CommitPhrase) action()    {}
func (DeleteRecent) action()    {}
func (OfferCategories) action() {}
func (SetInterval) action()     {}
func (SetWeights) action()      {}
func (Track) action()           {}
func (Describe) action()        {}
func (Cancel) action()          {}
func (Ignore) action()          {}

// Input is everything a transition may look at.
type Input struct {
	State        session.State
	PendingToken string
	Authorized   bool
	Event        Event
}

type Step struct {
	Next   session.State
	Action Action
}

const (
	addPrefix = "add:"
	delPrefix = "del:"
)

// Transition is the dialog's transition table. It has no side effects.
func Transition(in Input) Step {
	switch in.Event.Kind {
	case KindText:
		return onText(in)
	case KindCallback:
		if !in.Authorized {
			return Step{Next: in.State, Action: Reject{}}
		}
		return onCallback(in)
	case KindCommand:
		if !in.Authorized {
			return Step{Next: in.State, Action: Reject{}}
		}
		return onCommand(in)
	default:
		return Step{Next: in.State, Action: Ignore{}}
	}
}

func track(in Input) Step {
	ev := in.Event
	return Step{
		Next: in.State,
		Action: Track{Message: session.Message{
			ID:     ev.MessageID,
			UserID: ev.UserID,
			Text:   ev.Text,
			At:     ev.At,
		}},
	}
}

func onText(in Input) Step {
	if !in.Authorized {
		return track(in)
	}

	text := strings.TrimSpace(in.Event.Text)

	switch in.State {
	case session.AddingPhrase:
		if text == "" {
			return Step{Next: session.AddingPhrase, Action: Reply{MsgAddPrompt}}
		}
		return Step{Next: session.ChoosingList, Action: StagePhrase{Text: text}}

	case session.SettingInterval:
		iv, msg := parseInterval(text)
		if msg != "" {
			return Step{Next: session.SettingInterval, Action: Reply{msg}}
		}
		return Step{Next: session.Main, Action: SetInterval{Interval: iv}}

	case session.SettingWeights:
		w, msg := parseWeights(text)
		if msg != "" {
			return Step{Next: session.SettingWeights, Action: Reply{msg}}
		}
		return Step{Next: session.Main, Action: SetWeights{Weights: w}}

	default:
		return track(in)
	}
}

func onCallback(in Input) Step {
	data := in.Event.Data

	switch {
	case strings.HasPrefix(data, addPrefix):
		token, name, ok := strings.Cut(strings.TrimPrefix(data, addPrefix), ":")
		if !ok || in.State != session.ChoosingList || token == "" || token != in.PendingToken {
			return Step{Next: in.State, Action: Reply{MsgExpired}}
		}
		c, err := phrase.ParseCategory(name)
		if err != nil {
			return Step{Next: in.State, Action: Reply{MsgUnknownCategory}}
		}
		return Step{Next: session.Main, Action: CommitPhrase{Category: c}}

	case strings.HasPrefix(data, delPrefix):
		c, err := phrase.ParseCategory(strings.TrimPrefix(data, delPrefix))
		if err != nil {
			return Step{Next: in.State, Action: Reply{MsgUnknownCategory}}
		}
		return Step{Next: session.Main, Action: DeleteRecent{Category: c}}

	default:
		return Step{Next: in.State, Action: Ignore{}}
	}
}

func onCommand(in Input) Step {
	ev := in.Event

	switch ev.Command {
	case CmdStart:
		return Step{Next: session.Main, Action: StartLoop{}}

	case CmdStop:
		return Step{Next: session.Main, Action: StopLoop{}}

	case CmdCancel:
		return Step{Next: session.Main, Action: Cancel{}}

	case CmdIntro:
		return Step{Next: session.Main, Action: Describe{}}

	case CmdAddPhrase:
		if !ev.MultiUser || len(ev.Args) == 0 {
			return Step{Next: session.AddingPhrase, Action: Reply{MsgAddPrompt}}
		}
		if len(ev.Args) < 2 {
			return Step{Next: session.Main, Action: Reply{MsgAddUsage}}
		}
		c, err := phrase.ParseCategory(ev.Args[0])
		if err != nil {
			return Step{Next: session.Main, Action: Reply{MsgUnknownCategory}}
		}
		return Step{Next: session.Main, Action: InsertPhrase{Category: c, Text: strings.Join(ev.Args[1:], " ")}}

	case CmdDeleteRecent:
		if !ev.MultiUser || len(ev.Args) == 0 {
			return Step{Next: session.Main, Action: OfferCategories{}}
		}
		c, err := phrase.ParseCategory(ev.Args[0])
		if err != nil {
			return Step{Next: session.Main, Action: Reply{MsgUnknownCategory}}
		}
		return Step{Next: session.Main, Action: DeleteRecent{Category: c}}

	case CmdSetInterval:
		if len(ev.Args) == 0 {
			return Step{Next: session.SettingInterval, Action: Reply{MsgIntervalPrompt}}
		}
		iv, msg := parseInterval(strings.Join(ev.Args, " "))
		if msg != "" {
			return Step{Next: session.SettingInterval, Action: Reply{msg}}
		}
		return Step{Next: session.Main, Action: SetInterval{Interval: iv}}

	case CmdSetWeights:
		if len(ev.Args) == 0 {
			return Step{Next: session.SettingWeights, Action: Reply{MsgWeightsPrompt}}
		}
		w, msg := parseWeights(strings.Join(ev.Args, " "))
		if msg != "" {
			return Step{Next: session.SettingWeights, Action: Reply{msg}}
		}
		return Step{Next: session.Main, Action: SetWeights{Weights: w}}

	default:
		return Step{Next: in.State, Action: Ignore{}}
	}
}

var errFieldCount = errors.New("wrong number of values")

func parseInts(text string, n int) ([]int, error) {
	fields := strings.Fields(text)
	if len(fields) != n {
		return nil, errFieldCount
	}

	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

func parseFloats(text string, n int) ([]float64, error) {
	fields := strings.Fields(text)
	if len(fields) != n {
		return nil, errFieldCount
	}

	out := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

// parseInterval returns a re-prompt message when text is not a valid interval.
func parseInterval(text string) (session.Interval, string) {
	vals, err := parseInts(text, 2)
	if err != nil {
		return session.Interval{}, MsgIntervalNotNumbers
	}

	iv := session.Interval{Min: vals[0], Max: vals[1]}
	if iv.Validate() != nil {
		return session.Interval{}, MsgIntervalInvalid
	}

	return iv, ""
}

// parseWeights returns a re-prompt message when text is not a valid weight
// triple.
func parseWeights(text string) (session.Weights, string) {
	vals, err := parseFloats(text, 3)
	if err != nil {
		return session.Weights{}, MsgWeightsNotNumbers
	}

	w := session.Weights{Reply: vals[0], Quote: vals[1], Media: vals[2]}
	if w.Validate() != nil {
		return session.Weights{}, MsgWeightsInvalid
	}

	return w, ""
}
