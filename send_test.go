package microgram

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsundokum/microgram/chunk"
)

func chunkTexts(sent []SendMessage) (texts []string, replies []int64) {
	for _, m := range sent {
		texts = append(texts, m.Text)
		replies = append(replies, m.ReplyToMessageID)
	}
	return
}

func TestSendMessageShort(t *testing.T) {
	b, api := newTestBot(t, Config{})

	msg, err := b.SendMessage(context.Background(), SendMessage{ChatID: 1, Text: "hello"})
	require.NoError(t, err)
	require.NotNil(t, msg)

	texts, _ := chunkTexts(api.sentMessages())
	assert.Equal(t, []string{"hello"}, texts)
}

func TestSendMessageEmpty(t *testing.T) {
	b, api := newTestBot(t, Config{})

	msg, err := b.SendMessage(context.Background(), SendMessage{ChatID: 1})
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Empty(t, api.sentMessages())
}

func TestSendMessageChunkedChain(t *testing.T) {
	b, api := newTestBot(t, Config{MessageLimit: 10})

	msg, err := b.SendMessage(context.Background(), SendMessage{
		ChatID:           1,
		Text:             "hi<b>there</b>world",
		ParseMode:        chunk.ModeHTML,
		ReplyToMessageID: 99,
	})
	require.NoError(t, err)
	require.NotNil(t, msg)

	texts, replies := chunkTexts(api.sentMessages())
	assert.Equal(t, []string{"hi", "<b>the</b>", "<b>re</b>", "world"}, texts)

	// First chunk replies to the requested message, the rest chain.
	assert.Equal(t, []int64{99, 1, 2, 3}, replies)
	assert.Equal(t, int64(4), msg.MessageID)
}

func TestSendMessageReplyPolicies(t *testing.T) {
	cases := []struct {
		name   string
		policy ReplyPolicy
		want   []int64
	}{
		{"none", ReplyNone, []int64{0, 0, 0}},
		{"to main", ReplyToMain, []int64{99, 99, 99}},
		{"first only", ReplyFirstOnly, []int64{99, 0, 0}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, api := newTestBot(t, Config{MessageLimit: 5, ReplyPolicy: c.policy})

			_, err := b.SendMessage(context.Background(), SendMessage{
				ChatID:           1,
				Text:             "aaaa\nbbbb\ncccc",
				ReplyToMessageID: 99,
			})
			require.NoError(t, err)

			texts, replies := chunkTexts(api.sentMessages())
			assert.Equal(t, []string{"aaaa", "bbbb", "cccc"}, texts)
			assert.Equal(t, c.want, replies)
		})
	}
}

func TestSendMessageSplitError(t *testing.T) {
	b, api := newTestBot(t, Config{MessageLimit: 10})

	_, err := b.SendMessage(context.Background(), SendMessage{
		ChatID: 1,
		Text:   strings.Repeat("x", 50),
	})

	var serr *chunk.SegmentationError
	require.ErrorAs(t, err, &serr)
	assert.Empty(t, api.sentMessages())
}

func TestWithChatActionPlaceholder(t *testing.T) {
	b, api := newTestBot(t, Config{})

	err := b.WithChatActionPlaceholder(context.Background(), 9, "typing", "Working on it...",
		func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	sent := api.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Working on it...", sent[0].Text)
	assert.True(t, sent[0].DisableNotification)

	// The placeholder is cleaned up after fn returns.
	assert.Equal(t, []int64{1}, api.deletedMessages())
}

func TestWithChatActionPlaceholderDeletedOnError(t *testing.T) {
	b, api := newTestBot(t, Config{})

	fail := errors.New("boom")
	err := b.WithChatActionPlaceholder(context.Background(), 9, "", "One moment",
		func(ctx context.Context) error { return fail })
	require.ErrorIs(t, err, fail)
	assert.Equal(t, []int64{1}, api.deletedMessages())
}

func TestSendMessageUnsupportedMode(t *testing.T) {
	b, _ := newTestBot(t, Config{MessageLimit: 10})

	_, err := b.SendMessage(context.Background(), SendMessage{
		ChatID:    1,
		Text:      strings.Repeat("x y ", 10),
		ParseMode: "MarkdownV2",
	})

	var uerr *chunk.UnsupportedModeError
	require.ErrorAs(t, err, &uerr)
}
