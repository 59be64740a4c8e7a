package microgram

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

type getUpdates struct {
	Offset  int64 `json:"offset"`
	Limit   int   `json:"limit"`
	Timeout int   `json:"timeout"`
}

// poll long-polls getUpdates and delivers updates to out in order.
// The offset advances past every delivered update, so delivery is
// at-least-once: an update handed to out before a crash is gone, one
// never handed out is fetched again.
func (b *Bot) poll(ctx context.Context, out chan<- Update) error {
	errCount := 0
	for {
		if errCount > b.cfg.MaxPollErrors {
			return errors.Errorf("giving up after %d consecutive polling errors", errCount)
		}

		resp, err := b.Post(ctx, "getUpdates", getUpdates{
			Offset:  b.offset,
			Limit:   1,
			Timeout: int(b.cfg.PollTimeout / time.Second),
		})

		switch {
		case ctx.Err() != nil:
			return ctx.Err()

		case err != nil:
			// Flood control: the API says how long to back off.
			var apiErr *APIError
			if errors.As(err, &apiErr) && resp != nil && resp.Parameters != nil && resp.Parameters.RetryAfter > 0 {
				if !sleep(ctx, time.Duration(resp.Parameters.RetryAfter)*time.Second) {
					return ctx.Err()
				}
				continue
			}
			errCount++

		default:
			var updates []Update
			if err := json.Unmarshal(resp.Result, &updates); err != nil {
				b.updates.Error("getUpdates", "error", err.Error())
				errCount++
				break
			}

			errCount = 0
			for _, u := range updates {
				b.offset = u.UpdateID + 1
				b.updatesSeen.Add(1)
				b.updates.Info("update", "update", u)

				select {
				case out <- u:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}

		if !sleep(ctx, b.cfg.PollInterval) {
			return ctx.Err()
		}
	}
}

// sleep waits for d unless ctx ends first, reporting whether the full
// duration passed.
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
