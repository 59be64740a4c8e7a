package microgram

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollDeliversAndAdvancesOffset(t *testing.T) {
	b, api := newTestBot(t, Config{PollInterval: time.Millisecond, PollTimeout: time.Second})
	api.updates = []json.RawMessage{
		[]byte(`{"ok":true,"result":[{"update_id":5,"message":{"message_id":1,"chat":{"id":9,"type":"private"},"text":"hi"}}]}`),
	}

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Update)

	done := make(chan error, 1)
	go func() { done <- b.poll(ctx, out) }()

	select {
	case u := <-out:
		assert.Equal(t, int64(5), u.UpdateID)
		require.NotNil(t, u.Message)
		assert.Equal(t, "hi", u.Message.Text)
	case <-time.After(5 * time.Second):
		t.Fatal("no update delivered")
	}

	cancel()
	err := <-done
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, int64(6), b.offset)
	assert.Equal(t, int64(1), b.updatesSeen.Load())
}

func TestPollGivesUpAfterErrors(t *testing.T) {
	b, _ := newTestBot(t, Config{
		PollInterval:  time.Millisecond,
		PollTimeout:   time.Second,
		MaxPollErrors: 2,
	})
	// Point at a dead server so every poll fails.
	b.base = "http://127.0.0.1:1"

	err := b.poll(context.Background(), make(chan Update))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up")
}

func TestPollHonorsRetryAfter(t *testing.T) {
	b, api := newTestBot(t, Config{PollInterval: time.Millisecond, PollTimeout: time.Second})
	api.updates = []json.RawMessage{
		[]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests","parameters":{"retry_after":1}}`),
		[]byte(`{"ok":true,"result":[{"update_id":8}]}`),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan Update, 1)

	done := make(chan error, 1)
	go func() { done <- b.poll(ctx, out) }()

	started := time.Now()
	select {
	case u := <-out:
		assert.Equal(t, int64(8), u.UpdateID)
		assert.GreaterOrEqual(t, time.Since(started), time.Second)
	case <-time.After(5 * time.Second):
		t.Fatal("no update delivered after backoff")
	}

	cancel()
	<-done
}
