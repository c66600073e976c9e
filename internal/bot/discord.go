package bot

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/bowerhall/mitek/internal/dialog"
	"github.com/bowerhall/mitek/internal/logger"
	"github.com/bowerhall/mitek/internal/media"
)

var commandPrefixes = []string{"!", "/"}

type discord struct {
	session *discordgo.Session
	handler Handler
	limiter *rate.Limiter
	ctx     context.Context
}

func newDiscord(token string, limiter *rate.Limiter) (Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	d := &discord{
		session: session,
		limiter: limiter,
		ctx:     context.Background(),
	}

	session.AddHandler(d.handleMessage)
	session.AddHandler(d.handleInteraction)

	return d, nil
}

func (d *discord) Name() string { return "discord" }

func (d *discord) SetHandler(h Handler) { d.handler = h }

func (d *discord) Start(ctx context.Context) error {
	d.ctx = ctx

	if err := d.session.Open(); err != nil {
		return err
	}
	logger.Info("discord bot started")

	<-ctx.Done()
	return d.session.Close()
}

// parseSnowflake maps Discord's string IDs onto the int64 chat and user IDs
// the rest of the bot uses.
func parseSnowflake(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	return n, err == nil
}

// discordEvent converts a message into a dialog event. Bot authors and
// unknown commands are skipped.
func discordEvent(m *discordgo.Message) (dialog.Event, bool) {
	if m.Author == nil || m.Author.Bot {
		return dialog.Event{}, false
	}

	chatID, ok := parseSnowflake(m.ChannelID)
	if !ok {
		return dialog.Event{}, false
	}
	userID, ok := parseSnowflake(m.Author.ID)
	if !ok {
		return dialog.Event{}, false
	}

	ev := dialog.Event{
		ChatID:    chatID,
		UserID:    userID,
		MultiUser: m.GuildID != "",
		MessageID: m.ID,
		At:        m.Timestamp,
	}

	if name, args, isCmd := splitCommand(m.Content, commandPrefixes...); isCmd {
		cmd, ok := dialog.ParseCommand(name)
		if !ok {
			return dialog.Event{}, false
		}
		ev.Kind = dialog.KindCommand
		ev.Command = cmd
		ev.Args = args
		return ev, true
	}

	if m.Content == "" {
		return dialog.Event{}, false
	}
	ev.Kind = dialog.KindText
	ev.Text = m.Content

	return ev, true
}

func (d *discord) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if s.State != nil && s.State.User != nil && m.Author != nil && m.Author.ID == s.State.User.ID {
		return
	}

	ev, ok := discordEvent(m.Message)
	if !ok {
		return
	}

	logger.Debug("message received", "chat", ev.ChatID, "from", m.Author.Username, "text", truncate(m.Content, 50))

	resp, err := d.handler.Handle(d.ctx, ev)
	if err != nil {
		logger.Error("handle message failed", "chat", ev.ChatID, "error", err)
		resp = dialog.Response{Text: errorReply}
	}
	if resp.Text == "" {
		return
	}

	if err := d.limiter.Wait(d.ctx); err != nil {
		return
	}

	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:    resp.Text,
		Reference:  m.Reference(),
		Components: buttons(resp.Choices),
	}, discordgo.WithContext(d.ctx))
	if err != nil {
		logger.Error("discord reply failed", "chat", ev.ChatID, "error", err)
	}
}

func (d *discord) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	user := i.User
	if i.Member != nil {
		user = i.Member.User
	}
	if user == nil {
		return
	}

	chatID, ok := parseSnowflake(i.ChannelID)
	if !ok {
		return
	}
	userID, ok := parseSnowflake(user.ID)
	if !ok {
		return
	}

	ev := dialog.Event{
		ChatID:    chatID,
		UserID:    userID,
		MultiUser: i.GuildID != "",
		Kind:      dialog.KindCallback,
		Data:      i.MessageComponentData().CustomID,
	}
	if i.Message != nil {
		ev.MessageID = i.Message.ID
	}

	resp, err := d.handler.Handle(d.ctx, ev)
	if err != nil {
		logger.Error("handle interaction failed", "chat", ev.ChatID, "error", err)
		resp = dialog.Response{Text: errorReply, Notice: true}
	}

	answer := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    resp.Text,
			Components: buttons(resp.Choices),
		},
	}
	if resp.Notice {
		answer = &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: resp.Text,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		}
	} else if resp.Text == "" {
		answer = &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate}
	}

	if err := s.InteractionRespond(i.Interaction, answer, discordgo.WithContext(d.ctx)); err != nil {
		logger.Error("discord interaction response failed", "chat", ev.ChatID, "error", err)
	}
}

// buttons renders choices as one row. An empty slice clears existing buttons
// when a message is updated.
func buttons(choices []dialog.Choice) []discordgo.MessageComponent {
	if len(choices) == 0 {
		return []discordgo.MessageComponent{}
	}

	row := make([]discordgo.MessageComponent, len(choices))
	for i, c := range choices {
		row[i] = discordgo.Button{
			Label:    c.Label,
			Style:    discordgo.PrimaryButton,
			CustomID: c.Data,
		}
	}

	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: row}}
}

func (d *discord) SendText(ctx context.Context, chatID int64, text string) (string, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return "", err
	}

	m, err := d.session.ChannelMessageSend(formatID(chatID), text, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}

	logger.Debug("discord message sent", "chat", chatID, "text", truncate(text, 50))
	return m.ID, nil
}

func (d *discord) SendReply(ctx context.Context, chatID int64, text, replyTo string) (string, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return "", err
	}

	channelID := formatID(chatID)
	ref := &discordgo.MessageReference{MessageID: replyTo, ChannelID: channelID}

	m, err := d.session.ChannelMessageSendReply(channelID, text, ref, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}

	logger.Debug("discord reply sent", "chat", chatID, "reply_to", replyTo)
	return m.ID, nil
}

func (d *discord) SendMedia(ctx context.Context, chatID int64, asset media.Asset, caption string) (string, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return "", err
	}

	m, err := d.session.ChannelMessageSendComplex(formatID(chatID), &discordgo.MessageSend{
		Content: caption,
		Files: []*discordgo.File{
			{
				Name:        asset.Name,
				ContentType: asset.ContentType,
				Reader:      bytes.NewReader(asset.Data),
			},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("discord send media: %w", err)
	}

	logger.Debug("discord media sent", "chat", chatID, "kind", asset.Kind())
	return m.ID, nil
}
