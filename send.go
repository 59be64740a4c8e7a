package microgram

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tsundokum/microgram/chunk"
)

// SendMessage is the outgoing message for Bot.SendMessage.
type SendMessage struct {
	ChatID                int64           `json:"chat_id"`
	Text                  string          `json:"text"`
	ParseMode             chunk.ParseMode `json:"parse_mode,omitempty"`
	DisableNotification   bool            `json:"disable_notification,omitempty"`
	DisableWebPagePreview bool            `json:"disable_web_page_preview,omitempty"`
	ReplyToMessageID      int64           `json:"reply_to_message_id,omitempty"`
}

// SendMessage sends m, splitting the text into as many messages as the
// configured limit requires. Chunks go out sequentially; what each one
// replies to is decided by the configured ReplyPolicy. Returns the last
// sent message. Empty text is a no-op.
func (b *Bot) SendMessage(ctx context.Context, m SendMessage) (*Message, error) {
	if m.Text == "" {
		return nil, nil
	}

	seq, err := chunk.Split(m.Text, b.cfg.MessageLimit, m.ParseMode)
	if err != nil {
		return nil, errors.Wrap(err, "could not split message")
	}

	main := m.ReplyToMessageID
	var prev int64
	var last *Message
	for c, err := range seq {
		if err != nil {
			return nil, errors.Wrap(err, "could not split message")
		}

		part := m
		part.Text = c
		part.ReplyToMessageID = b.cfg.ReplyPolicy(main, prev)

		resp, err := b.Post(ctx, "sendMessage", part)
		if err != nil {
			return nil, err
		}
		msg, err := decodeMessage(resp, "sendMessage")
		if err != nil {
			return nil, err
		}

		prev = msg.MessageID
		last = msg
	}
	return last, nil
}

// SendMessageTyping shows a typing indicator for delay before sending.
func (b *Bot) SendMessageTyping(ctx context.Context, delay time.Duration, m SendMessage) (*Message, error) {
	var msg *Message
	err := b.WithChatAction(ctx, m.ChatID, "typing", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		var err error
		msg, err = b.SendMessage(ctx, m)
		return err
	})
	return msg, err
}

// WithChatAction keeps a chat action visible while fn runs, re-sending
// it every few seconds as Telegram expires them.
func (b *Bot) WithChatAction(ctx context.Context, chatID int64, action string, fn func(ctx context.Context) error) error {
	return b.WithChatActionPlaceholder(ctx, chatID, action, "", fn)
}

// WithChatActionPlaceholder works like WithChatAction and additionally
// sends placeholder as a silent message before fn runs, deleting it
// once fn returns. An empty placeholder sends nothing.
func (b *Bot) WithChatActionPlaceholder(ctx context.Context, chatID int64, action, placeholder string, fn func(ctx context.Context) error) error {
	if action == "" {
		action = "typing"
	}

	if placeholder != "" {
		msg, err := b.SendMessage(ctx, SendMessage{
			ChatID:              chatID,
			Text:                placeholder,
			DisableNotification: true,
		})
		if err != nil {
			return errors.Wrap(err, "could not send placeholder")
		}
		defer func() {
			_ = b.DeleteMessage(ctx, chatID, msg.MessageID)
		}()
	}

	actx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		for {
			_ = b.SendChatAction(actx, chatID, action)
			select {
			case <-actx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
	}()

	return fn(ctx)
}
