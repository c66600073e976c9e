package bot

import (
	"reflect"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bowerhall/mitek/internal/dialog"
)

func tgCommand(text string, chatType string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 42,
		From:      &tgbotapi.User{ID: 7, UserName: "op"},
		Chat:      &tgbotapi.Chat{ID: -100, Type: chatType},
		Date:      1700000000,
		Text:      text,
		Entities: []tgbotapi.MessageEntity{{
			Type:   "bot_command",
			Offset: 0,
			Length: len([]rune(text)) - len([]rune(afterCommand(text))),
		}},
	}
}

func afterCommand(text string) string {
	for i, r := range text {
		if r == ' ' {
			return text[i:]
		}
	}
	return ""
}

func TestTelegramEventCommand(t *testing.T) {
	ev, ok := telegramEvent(tgCommand("/add_phrases@mitek_bot filler so it goes", "supergroup"), "mitek_bot")
	if !ok {
		t.Fatal("expected command event")
	}

	if ev.Kind != dialog.KindCommand || ev.Command != dialog.CmdAddPhrase {
		t.Errorf("unexpected command %+v", ev)
	}
	if !reflect.DeepEqual(ev.Args, []string{"filler", "so", "it", "goes"}) {
		t.Errorf("unexpected args %v", ev.Args)
	}
	if !ev.MultiUser {
		t.Error("supergroup should be multi-user")
	}
	if ev.ChatID != -100 || ev.UserID != 7 || ev.MessageID != "42" {
		t.Errorf("unexpected ids %+v", ev)
	}
	if !ev.At.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("unexpected time %v", ev.At)
	}
}

func TestTelegramEventPrivateText(t *testing.T) {
	msg := &tgbotapi.Message{
		MessageID: 3,
		From:      &tgbotapi.User{ID: 7},
		Chat:      &tgbotapi.Chat{ID: 7, Type: "private"},
		Text:      "hello",
	}

	ev, ok := telegramEvent(msg, "mitek_bot")
	if !ok {
		t.Fatal("expected text event")
	}
	if ev.Kind != dialog.KindText || ev.Text != "hello" || ev.MultiUser {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestTelegramEventOtherBotCommand(t *testing.T) {
	if _, ok := telegramEvent(tgCommand("/start@some_other_bot", "group"), "mitek_bot"); ok {
		t.Error("command addressed to another bot should be skipped")
	}

	ev, ok := telegramEvent(tgCommand("/start@Mitek_Bot", "group"), "mitek_bot")
	if !ok || ev.Command != dialog.CmdStart {
		t.Errorf("command addressed to this bot should be handled, got %+v", ev)
	}

	ev, ok = telegramEvent(tgCommand("/stop", "group"), "mitek_bot")
	if !ok || ev.Command != dialog.CmdStop {
		t.Errorf("bare command should be handled, got %+v", ev)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(Config{Provider: "irc", Token: "x"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestTelegramEventSkips(t *testing.T) {
	if _, ok := telegramEvent(tgCommand("/help", "group"), "mitek_bot"); ok {
		t.Error("unknown command should be skipped")
	}

	sticker := &tgbotapi.Message{
		From: &tgbotapi.User{ID: 1},
		Chat: &tgbotapi.Chat{ID: 1, Type: "group"},
	}
	if _, ok := telegramEvent(sticker, "mitek_bot"); ok {
		t.Error("non-text message should be skipped")
	}

	if _, ok := telegramEvent(&tgbotapi.Message{Text: "x"}, "mitek_bot"); ok {
		t.Error("message without sender should be skipped")
	}
}

func TestInlineKeyboard(t *testing.T) {
	kb := inlineKeyboard([]dialog.Choice{{Label: "Filler", Data: "del:filler"}, {Label: "Quotes", Data: "del:quotes"}})

	if len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 2 {
		t.Fatalf("expected one row of two buttons, got %+v", kb.InlineKeyboard)
	}
	btn := kb.InlineKeyboard[0][1]
	if btn.Text != "Quotes" || btn.CallbackData == nil || *btn.CallbackData != "del:quotes" {
		t.Errorf("unexpected button %+v", btn)
	}
}

func TestDiscordEvent(t *testing.T) {
	m := &discordgo.Message{
		ID:        "900",
		ChannelID: "1234567890123",
		GuildID:   "55",
		Content:   "!set_interval 5 10",
		Author:    &discordgo.User{ID: "77"},
	}

	ev, ok := discordEvent(m)
	if !ok {
		t.Fatal("expected command event")
	}
	if ev.Kind != dialog.KindCommand || ev.Command != dialog.CmdSetInterval {
		t.Errorf("unexpected event %+v", ev)
	}
	if !reflect.DeepEqual(ev.Args, []string{"5", "10"}) {
		t.Errorf("unexpected args %v", ev.Args)
	}
	if ev.ChatID != 1234567890123 || ev.UserID != 77 || !ev.MultiUser || ev.MessageID != "900" {
		t.Errorf("unexpected ids %+v", ev)
	}

	m.Content = "just talking"
	m.GuildID = ""
	ev, ok = discordEvent(m)
	if !ok || ev.Kind != dialog.KindText || ev.MultiUser {
		t.Errorf("expected private text event, got %+v", ev)
	}
}

func TestDiscordEventSkips(t *testing.T) {
	tests := []*discordgo.Message{
		{ChannelID: "1", Content: "hi", Author: &discordgo.User{ID: "2", Bot: true}},
		{ChannelID: "1", Content: "hi"},
		{ChannelID: "not-a-number", Content: "hi", Author: &discordgo.User{ID: "2"}},
		{ChannelID: "1", Content: "!unknown", Author: &discordgo.User{ID: "2"}},
		{ChannelID: "1", Content: "", Author: &discordgo.User{ID: "2"}},
	}

	for i, m := range tests {
		if _, ok := discordEvent(m); ok {
			t.Errorf("case %d: expected message to be skipped", i)
		}
	}
}

func TestButtons(t *testing.T) {
	if got := buttons(nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil components, got %#v", got)
	}

	got := buttons([]dialog.Choice{{Label: "Filler", Data: "add:t:filler"}})
	row, ok := got[0].(discordgo.ActionsRow)
	if !ok || len(row.Components) != 1 {
		t.Fatalf("unexpected components %#v", got)
	}
	if btn := row.Components[0].(discordgo.Button); btn.CustomID != "add:t:filler" {
		t.Errorf("unexpected button %+v", btn)
	}
}

func TestSplitCommand(t *testing.T) {
	name, args, ok := splitCommand("  /stop  now ", commandPrefixes...)
	if !ok || name != "stop" || !reflect.DeepEqual(args, []string{"now"}) {
		t.Errorf("unexpected split %q %v %v", name, args, ok)
	}

	if _, _, ok := splitCommand("hello", commandPrefixes...); ok {
		t.Error("plain text is not a command")
	}
	if _, _, ok := splitCommand("!", commandPrefixes...); ok {
		t.Error("bare prefix is not a command")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("привет мир", 6); got != "привет..." {
		t.Errorf("unexpected truncation %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("unexpected truncation %q", got)
	}
}

func TestNewLimiter(t *testing.T) {
	if l := newLimiter(0, 0); !l.Allow() || !l.Allow() {
		t.Error("zero rate should not limit")
	}
	if l := newLimiter(1, 0); l.Burst() != 1 {
		t.Errorf("expected burst floor of 1, got %d", l.Burst())
	}
}
