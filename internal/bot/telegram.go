package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/bowerhall/mitek/internal/dialog"
	"github.com/bowerhall/mitek/internal/logger"
	"github.com/bowerhall/mitek/internal/media"
)

type telegram struct {
	api     *tgbotapi.BotAPI
	handler Handler
	limiter *rate.Limiter
}

func newTelegram(token string, limiter *rate.Limiter) (Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &telegram{api: api, limiter: limiter}, nil
}

func (t *telegram) Name() string { return "telegram" }

func (t *telegram) SetHandler(h Handler) { t.handler = h }

func (t *telegram) Start(ctx context.Context) error {
	if err := t.registerCommands(); err != nil {
		logger.Warn("telegram command menu not set", "error", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.api.GetUpdatesChan(u)

	logger.Info("telegram bot started", "username", t.api.Self.UserName)

	// updates are handled in order so a chat's dialog steps never reorder
	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			switch {
			case update.Message != nil:
				t.handleMessage(ctx, update.Message)
			case update.CallbackQuery != nil:
				t.handleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

func (t *telegram) registerCommands() error {
	cmds := make([]tgbotapi.BotCommand, len(dialog.Commands))
	for i, c := range dialog.Commands {
		cmds[i] = tgbotapi.BotCommand{Command: c.Name, Description: c.Description}
	}

	scopes := []tgbotapi.BotCommandScope{
		tgbotapi.NewBotCommandScopeDefault(),
		tgbotapi.NewBotCommandScopeAllGroupChats(),
	}
	for _, scope := range scopes {
		if _, err := t.api.Request(tgbotapi.NewSetMyCommandsWithScope(scope, cmds...)); err != nil {
			return fmt.Errorf("set commands for %s: %w", scope.Type, err)
		}
	}

	return nil
}

func isGroupChat(c *tgbotapi.Chat) bool {
	return c != nil && (c.IsGroup() || c.IsSuperGroup())
}

// telegramEvent converts a message into a dialog event. Non-text messages,
// unknown commands and commands addressed to another bot are skipped.
func telegramEvent(msg *tgbotapi.Message, self string) (dialog.Event, bool) {
	if msg.From == nil || msg.Chat == nil {
		return dialog.Event{}, false
	}

	ev := dialog.Event{
		ChatID:    msg.Chat.ID,
		UserID:    msg.From.ID,
		MultiUser: isGroupChat(msg.Chat),
		MessageID: strconv.Itoa(msg.MessageID),
		At:        msg.Time(),
	}

	switch {
	case msg.IsCommand():
		name, mention, addressed := strings.Cut(msg.CommandWithAt(), "@")
		if addressed && !strings.EqualFold(mention, self) {
			return dialog.Event{}, false
		}
		cmd, ok := dialog.ParseCommand(name)
		if !ok {
			return dialog.Event{}, false
		}
		ev.Kind = dialog.KindCommand
		ev.Command = cmd
		ev.Args = strings.Fields(msg.CommandArguments())
	case msg.Text != "":
		ev.Kind = dialog.KindText
		ev.Text = msg.Text
	default:
		return dialog.Event{}, false
	}

	return ev, true
}

func (t *telegram) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	ev, ok := telegramEvent(msg, t.api.Self.UserName)
	if !ok {
		return
	}

	logger.Debug("message received", "chat", ev.ChatID, "from", msg.From.UserName, "text", truncate(msg.Text, 50))

	resp, err := t.handler.Handle(ctx, ev)
	if err != nil {
		logger.Error("handle message failed", "chat", ev.ChatID, "error", err)
		resp = dialog.Response{Text: errorReply}
	}
	if resp.Text == "" {
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, resp.Text)
	reply.ReplyToMessageID = msg.MessageID
	if len(resp.Choices) > 0 {
		reply.ReplyMarkup = inlineKeyboard(resp.Choices)
	}

	if _, err := t.send(ctx, reply); err != nil {
		logger.Error("send failed", "chat", ev.ChatID, "error", err)
	}
}

func (t *telegram) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.From == nil || q.Message == nil {
		return
	}

	ev := dialog.Event{
		ChatID:    q.Message.Chat.ID,
		UserID:    q.From.ID,
		MultiUser: isGroupChat(q.Message.Chat),
		Kind:      dialog.KindCallback,
		MessageID: strconv.Itoa(q.Message.MessageID),
		Data:      q.Data,
	}

	resp, err := t.handler.Handle(ctx, ev)
	if err != nil {
		logger.Error("handle callback failed", "chat", ev.ChatID, "error", err)
		resp = dialog.Response{Text: errorReply, Notice: true}
	}

	if resp.Notice {
		if _, err := t.api.Request(tgbotapi.NewCallbackWithAlert(q.ID, resp.Text)); err != nil {
			logger.Error("answer callback failed", "error", err)
		}
		return
	}

	if _, err := t.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		logger.Error("answer callback failed", "error", err)
	}
	if resp.Text == "" {
		return
	}

	edit := tgbotapi.NewEditMessageText(ev.ChatID, q.Message.MessageID, resp.Text)
	if len(resp.Choices) > 0 {
		markup := inlineKeyboard(resp.Choices)
		edit.ReplyMarkup = &markup
	}

	if _, err := t.send(ctx, edit); err != nil {
		logger.Error("edit failed", "chat", ev.ChatID, "error", err)
	}
}

func inlineKeyboard(choices []dialog.Choice) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, len(choices))
	for i, c := range choices {
		row[i] = tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Data)
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func (t *telegram) send(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return tgbotapi.Message{}, err
	}
	return t.api.Send(c)
}

func (t *telegram) SendText(ctx context.Context, chatID int64, text string) (string, error) {
	m, err := t.send(ctx, tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return "", err
	}

	logger.Debug("telegram message sent", "chat", chatID, "text", truncate(text, 50))
	return strconv.Itoa(m.MessageID), nil
}

func (t *telegram) SendReply(ctx context.Context, chatID int64, text, replyTo string) (string, error) {
	target, err := strconv.Atoi(replyTo)
	if err != nil {
		return "", fmt.Errorf("bad reply target %q: %w", replyTo, err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = target
	msg.AllowSendingWithoutReply = true

	m, err := t.send(ctx, msg)
	if err != nil {
		return "", err
	}

	logger.Debug("telegram reply sent", "chat", chatID, "reply_to", target)
	return strconv.Itoa(m.MessageID), nil
}

func (t *telegram) SendMedia(ctx context.Context, chatID int64, asset media.Asset, caption string) (string, error) {
	file := tgbotapi.FileBytes{Name: asset.Name, Bytes: asset.Data}

	var c tgbotapi.Chattable
	switch asset.Kind() {
	case media.KindImage:
		photo := tgbotapi.NewPhoto(chatID, file)
		photo.Caption = caption
		c = photo
	case media.KindVideo:
		video := tgbotapi.NewVideo(chatID, file)
		video.Caption = caption
		c = video
	case media.KindAudio:
		voice := tgbotapi.NewVoice(chatID, file)
		voice.Caption = caption
		c = voice
	default:
		doc := tgbotapi.NewDocument(chatID, file)
		doc.Caption = caption
		c = doc
	}

	m, err := t.send(ctx, c)
	if err != nil {
		return "", err
	}

	logger.Debug("telegram media sent", "chat", chatID, "kind", asset.Kind())
	return strconv.Itoa(m.MessageID), nil
}
