package microgram

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Response is the Bot API envelope every method returns.
type Response struct {
	OK          bool                `json:"ok"`
	Result      json.RawMessage     `json:"result,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Description string              `json:"description,omitempty"`
	Parameters  *ResponseParameters `json:"parameters,omitempty"`
}

type ResponseParameters struct {
	RetryAfter      int   `json:"retry_after,omitempty"`
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
}

// APIError is a Bot API call that came back with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return "telegram: " + e.Method + " failed: " + e.Description
}

// Post calls a Bot API method with JSON-encoded params. The call and
// its outcome are logged as one JSON line to posts.jl. When the API
// answers ok=false the envelope is returned alongside an *APIError so
// callers can still reach parameters like retry_after.
func (b *Bot) Post(ctx context.Context, method string, params any) (*Response, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, errors.Wrap(err, "could not encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		b.base+"/bot"+b.cfg.Token+"/"+method, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "could not build request")
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	res, err := b.client.Do(req)
	if err != nil {
		b.posts.Error("post", "method", method, "error", err.Error())
		return nil, errors.Wrap(err, "could not call "+method)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "could not read response")
	}

	var resp Response
	response := any(json.RawMessage(raw))
	if err := json.Unmarshal(raw, &resp); err != nil {
		// Not the usual envelope; keep the body for the caller.
		resp = Response{Description: string(raw)}
		response = string(raw)
	}

	b.posts.Info("post",
		"method", method,
		"status", res.StatusCode,
		"request", json.RawMessage(body),
		"response", response,
		"response_time", time.Since(started).Seconds(),
	)

	if !resp.OK {
		return &resp, &APIError{Method: method, Code: resp.ErrorCode, Description: resp.Description}
	}
	return &resp, nil
}

// DeleteMessage deletes a message the bot is allowed to delete.
func (b *Bot) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	_, err := b.Post(ctx, "deleteMessage", map[string]int64{
		"chat_id":    chatID,
		"message_id": messageID,
	})
	return err
}

// EditMessageText replaces the text of an already sent message.
func (b *Bot) EditMessageText(ctx context.Context, chatID, messageID int64, text string) (*Message, error) {
	resp, err := b.Post(ctx, "editMessageText", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	})
	if err != nil {
		return nil, err
	}
	return decodeMessage(resp, "editMessageText")
}

// SendChatAction shows a chat action like "typing" for a few seconds.
func (b *Bot) SendChatAction(ctx context.Context, chatID int64, action string) error {
	_, err := b.Post(ctx, "sendChatAction", map[string]any{
		"chat_id": chatID,
		"action":  action,
	})
	return err
}

func decodeMessage(resp *Response, method string) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(resp.Result, &msg); err != nil {
		return nil, errors.Wrap(err, "could not decode "+method+" result")
	}
	return &msg, nil
}
