package microgram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-process Bot API good enough for sendMessage and
// getUpdates.
type fakeAPI struct {
	mu      sync.Mutex
	sent    []SendMessage
	deleted []int64
	actions []string
	nextID  int64
	updates []json.RawMessage // one getUpdates response body per call
	polls   int
}

func (f *fakeAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var m SendMessage
			if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.sent = append(f.sent, m)
			f.nextID++
			fmt.Fprintf(w, `{"ok":true,"result":{"message_id":%d,"chat":{"id":%d,"type":"private"},"text":%q}}`,
				f.nextID, m.ChatID, m.Text)

		case strings.HasSuffix(r.URL.Path, "/deleteMessage"):
			var p struct {
				MessageID int64 `json:"message_id"`
			}
			if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.deleted = append(f.deleted, p.MessageID)
			fmt.Fprint(w, `{"ok":true,"result":true}`)

		case strings.HasSuffix(r.URL.Path, "/sendChatAction"):
			var p struct {
				Action string `json:"action"`
			}
			if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.actions = append(f.actions, p.Action)
			fmt.Fprint(w, `{"ok":true,"result":true}`)

		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			f.polls++
			if len(f.updates) == 0 {
				fmt.Fprint(w, `{"ok":true,"result":[]}`)
				return
			}
			body := f.updates[0]
			f.updates = f.updates[1:]
			w.Write(body)

		default:
			fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found: method not found"}`)
		}
	})
}

func (f *fakeAPI) sentMessages() []SendMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SendMessage(nil), f.sent...)
}

func (f *fakeAPI) deletedMessages() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.deleted...)
}

func newTestBot(t *testing.T, cfg Config) (*Bot, *fakeAPI) {
	t.Helper()

	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	cfg.Token = "123:abc"
	cfg.BaseURL = srv.URL
	b, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	return b, api
}

func TestPost(t *testing.T) {
	b, _ := newTestBot(t, Config{})

	resp, err := b.Post(context.Background(), "sendMessage", SendMessage{ChatID: 1, Text: "hi"})
	require.NoError(t, err)
	assert.True(t, resp.OK)

	msg, err := decodeMessage(resp, "sendMessage")
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Text)
}

func TestPostAPIError(t *testing.T) {
	b, _ := newTestBot(t, Config{})

	resp, err := b.Post(context.Background(), "noSuchMethod", struct{}{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Code)
	assert.NotNil(t, resp)
	assert.False(t, resp.OK)
}
