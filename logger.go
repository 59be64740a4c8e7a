package microgram

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// newJSONLogger returns a logger appending one JSON object per line to
// path, with a "timestamp" field and an upper-case "level".
func newJSONLogger(path string) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not open log file")
	}

	h := slog.NewJSONHandler(f, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				a.Key = "timestamp"
			case slog.LevelKey:
				a.Value = slog.StringValue(strings.ToUpper(a.Value.String()))
			}
			return a
		},
	})
	return slog.New(h), f, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func logError(u Update, err error) {
	log.Printf("error handling update %d: %v", u.UpdateID, err)
}
