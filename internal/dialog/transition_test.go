package dialog

import (
	"reflect"
	"testing"

	"github.com/bowerhall/mitek/internal/phrase"
	"github.com/bowerhall/mitek/internal/session"
)

func cmd(c Command, args ...string) Event {
	return Event{ChatID: 1, UserID: 10, Kind: KindCommand, Command: c, Args: args}
}

func groupCmd(c Command, args ...string) Event {
	ev := cmd(c, args...)
	ev.MultiUser = true
	return ev
}

func text(s string) Event {
	return Event{ChatID: 1, UserID: 10, Kind: KindText, Text: s, MessageID: "m1"}
}

func callback(data string) Event {
	return Event{ChatID: 1, UserID: 10, Kind: KindCallback, Data: data}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name   string
		state  session.State
		token  string
		event  Event
		next   session.State
		action Action
	}{
		{"start from main", session.Main, "", cmd(CmdStart), session.Main, StartLoop{}},
		{"start abandons staging", session.ChoosingList, "tok", cmd(CmdStart), session.Main, StartLoop{}},
		{"stop from setting", session.SettingWeights, "", cmd(CmdStop), session.Main, StopLoop{}},
		{"cancel", session.AddingPhrase, "", cmd(CmdCancel), session.Main, Cancel{}},
		{"intro", session.Main, "", cmd(CmdIntro), session.Main, Describe{}},

		{"add prompts in private chat", session.Main, "", cmd(CmdAddPhrase, "filler", "hi"), session.AddingPhrase, Reply{MsgAddPrompt}},
		{"add prompts in group without args", session.Main, "", groupCmd(CmdAddPhrase), session.AddingPhrase, Reply{MsgAddPrompt}},
		{"add usage with one arg", session.Main, "", groupCmd(CmdAddPhrase, "filler"), session.Main, Reply{MsgAddUsage}},
		{"add inline", session.Main, "", groupCmd(CmdAddPhrase, "Quotes", "to", "be"), session.Main, InsertPhrase{Category: phrase.Quotes, Text: "to be"}},
		{"add inline legacy list", session.Main, "", groupCmd(CmdAddPhrase, "цитаты", "x"), session.Main, InsertPhrase{Category: phrase.Quotes, Text: "x"}},
		{"add inline unknown list", session.Main, "", groupCmd(CmdAddPhrase, "jokes", "x"), session.Main, Reply{MsgUnknownCategory}},

		{"text stages phrase", session.AddingPhrase, "", text(" hello "), session.ChoosingList, StagePhrase{Text: "hello"}},
		{"blank text re-prompts", session.AddingPhrase, "", text("   "), session.AddingPhrase, Reply{MsgAddPrompt}},
		{"choose list commits", session.ChoosingList, "tok", callback("add:tok:filler"), session.Main, CommitPhrase{Category: phrase.Filler}},
		{"stale token", session.ChoosingList, "new", callback("add:old:filler"), session.ChoosingList, Reply{MsgExpired}},
		{"add callback outside choosing", session.Main, "", callback("add:tok:filler"), session.Main, Reply{MsgExpired}},
		{"add callback unknown list", session.ChoosingList, "tok", callback("add:tok:jokes"), session.ChoosingList, Reply{MsgUnknownCategory}},
		{"text while choosing is tracked", session.ChoosingList, "tok", text("chatter"), session.ChoosingList,
			Track{Message: session.Message{ID: "m1", UserID: 10, Text: "chatter"}}},

		{"delete offers lists in private chat", session.Main, "", cmd(CmdDeleteRecent, "filler"), session.Main, OfferCategories{}},
		{"delete offers lists without args", session.Main, "", groupCmd(CmdDeleteRecent), session.Main, OfferCategories{}},
		{"delete inline", session.Main, "", groupCmd(CmdDeleteRecent, "filler"), session.Main, DeleteRecent{Category: phrase.Filler}},
		{"delete inline unknown list", session.Main, "", groupCmd(CmdDeleteRecent, "x"), session.Main, Reply{MsgUnknownCategory}},
		{"delete callback", session.Main, "", callback("del:quotes"), session.Main, DeleteRecent{Category: phrase.Quotes}},
		{"unknown callback ignored", session.SettingInterval, "", callback("zzz"), session.SettingInterval, Ignore{}},

		{"interval prompt", session.Main, "", cmd(CmdSetInterval), session.SettingInterval, Reply{MsgIntervalPrompt}},
		{"interval inline", session.Main, "", cmd(CmdSetInterval, "5", "10"), session.Main, SetInterval{Interval: session.Interval{Min: 5, Max: 10}}},
		{"interval inline rejected", session.Main, "", cmd(CmdSetInterval, "5", "3"), session.SettingInterval, Reply{MsgIntervalInvalid}},
		{"interval text", session.SettingInterval, "", text("60 120"), session.Main, SetInterval{Interval: session.Interval{Min: 60, Max: 120}}},
		{"interval inline too long", session.Main, "", cmd(CmdSetInterval, "1", "9999999999999"), session.SettingInterval, Reply{MsgIntervalInvalid}},
		{"interval text zero min", session.SettingInterval, "", text("0 10"), session.SettingInterval, Reply{MsgIntervalInvalid}},
		{"interval text not numbers", session.SettingInterval, "", text("soon"), session.SettingInterval, Reply{MsgIntervalNotNumbers}},
		{"interval text too many", session.SettingInterval, "", text("1 2 3"), session.SettingInterval, Reply{MsgIntervalNotNumbers}},

		{"weights prompt", session.Main, "", cmd(CmdSetWeights), session.SettingWeights, Reply{MsgWeightsPrompt}},
		{"weights inline", session.Main, "", cmd(CmdSetWeights, "0.45", "0.45", "0.10"), session.Main,
			SetWeights{Weights: session.Weights{Reply: 0.45, Quote: 0.45, Media: 0.10}}},
		{"weights sum too big", session.SettingWeights, "", text("0.5 0.5 0.1"), session.SettingWeights, Reply{MsgWeightsInvalid}},
		{"weights negative", session.SettingWeights, "", text("-0.5 1.5 0"), session.SettingWeights, Reply{MsgWeightsInvalid}},
		{"weights not numbers", session.SettingWeights, "", text("a b c"), session.SettingWeights, Reply{MsgWeightsNotNumbers}},
		{"weights text", session.SettingWeights, "", text("1 0 0"), session.Main, SetWeights{Weights: session.Weights{Reply: 1}}},

		{"main text tracked", session.Main, "", text("hey"), session.Main, Track{Message: session.Message{ID: "m1", UserID: 10, Text: "hey"}}},
		{"unknown command ignored", session.SettingWeights, "", cmd(CmdUnknown), session.SettingWeights, Ignore{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := Transition(Input{State: tt.state, PendingToken: tt.token, Authorized: true, Event: tt.event})

			if step.Next != tt.next {
				t.Errorf("next state: expected %v, got %v", tt.next, step.Next)
			}
			if !reflect.DeepEqual(step.Action, tt.action) {
				t.Errorf("action: expected %#v, got %#v", tt.action, step.Action)
			}
		})
	}
}

func TestTransitionUnauthorized(t *testing.T) {
	events := []Event{
		cmd(CmdStart),
		cmd(CmdStop),
		groupCmd(CmdAddPhrase, "filler", "x"),
		cmd(CmdDeleteRecent),
		cmd(CmdSetInterval, "5", "10"),
		cmd(CmdSetWeights),
		cmd(CmdCancel),
		cmd(CmdIntro),
		callback("del:filler"),
	}

	for _, state := range []session.State{session.Main, session.AddingPhrase, session.SettingInterval} {
		for _, ev := range events {
			step := Transition(Input{State: state, Event: ev})
			if _, ok := step.Action.(Reject); !ok {
				t.Errorf("%v/%v: expected Reject, got %#v", state, ev.Command, step.Action)
			}
			if step.Next != state {
				t.Errorf("%v/%v: state changed to %v", state, ev.Command, step.Next)
			}
		}
	}
}

func TestTransitionUnauthorizedTextIsTracked(t *testing.T) {
	step := Transition(Input{State: session.AddingPhrase, Event: text("not an operator")})

	if _, ok := step.Action.(Track); !ok {
		t.Errorf("expected Track, got %#v", step.Action)
	}
	if step.Next != session.AddingPhrase {
		t.Errorf("expected operator dialog to be kept, got %v", step.Next)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
		ok   bool
	}{
		{"start", CmdStart, true},
		{"/start_mitek", CmdStart, true},
		{"/stop_mitek@mitek_bot", CmdStop, true},
		{"ADD_PHRASES", CmdAddPhrase, true},
		{"delete_recent_phrase", CmdDeleteRecent, true},
		{"/set_interval", CmdSetInterval, true},
		{"set_weights", CmdSetWeights, true},
		{"cancel", CmdCancel, true},
		{"intro", CmdIntro, true},
		{"help", CmdUnknown, false},
	}

	for _, tt := range tests {
		got, ok := ParseCommand(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseCommand(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCommandsMenuResolves(t *testing.T) {
	for _, c := range Commands {
		cmd, ok := ParseCommand(c.Name)
		if !ok {
			t.Errorf("menu command %q does not parse", c.Name)
		}
		if cmd.String() != c.Name {
			t.Errorf("menu command %q round-trips to %q", c.Name, cmd.String())
		}
	}
}
