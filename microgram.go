// Package microgram is a small Telegram bot library.
//
// A Bot long-polls getUpdates, fans updates out to a pool of workers
// running registered handlers, and sends messages through the Bot API.
// Outgoing messages longer than the Telegram limit are split with the
// chunk package so that formatting survives the split, and each piece
// can be linked to the previous one with a pluggable reply policy.
package microgram

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"

	"github.com/tsundokum/microgram/chunk"
)

const (
	defaultWorkers       = 10
	defaultPollTimeout   = 5 * time.Second
	defaultPollInterval  = 1500 * time.Millisecond
	defaultMaxPollErrors = 10
	defaultBaseURL       = "https://api.telegram.org"
)

// Config configures a Bot. Only Token is required; zero values for the
// rest select defaults.
type Config struct {
	// Token is the bot token from @BotFather.
	Token string

	// LogDir, when set, receives updates.jl and posts.jl JSON-lines
	// logs of every received update and every API call.
	LogDir string

	// Workers is the number of goroutines handling updates.
	Workers int

	// PollTimeout is the long-poll timeout passed to getUpdates.
	PollTimeout time.Duration

	// PollInterval is the pause between getUpdates calls.
	PollInterval time.Duration

	// MaxPollErrors is how many consecutive transport errors polling
	// tolerates before giving up.
	MaxPollErrors int

	// MessageLimit is the per-message length budget used when
	// splitting outgoing text. Telegram's own limit is the default.
	MessageLimit int

	// BaseURL overrides the Bot API endpoint, mainly for tests.
	BaseURL string

	// HTTPClient overrides http.DefaultClient.
	HTTPClient *http.Client

	// ReplyPolicy decides what each chunk of a split message replies
	// to. ReplyChain is the default.
	ReplyPolicy ReplyPolicy

	// OnError receives handler errors and panics. The default logs
	// them with the standard logger.
	OnError ErrorFunc
}

// Validate reports configuration a Bot cannot run with.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Token, validation.Required),
		validation.Field(&c.Workers, validation.Min(0)),
		validation.Field(&c.MessageLimit, validation.Min(0)),
		validation.Field(&c.MaxPollErrors, validation.Min(0)),
	)
}

// HandlerFunc processes one update. Returning true marks the update
// handled; later handlers are skipped. Errors go to Config.OnError.
type HandlerFunc func(ctx context.Context, u Update) (bool, error)

// ErrorFunc receives errors from handlers and scheduled tasks.
type ErrorFunc func(u Update, err error)

// Bot is a Telegram bot. Create one with New, register handlers with
// Handle, then call Run.
type Bot struct {
	cfg Config

	client *http.Client
	base   string

	updates *slog.Logger
	posts   *slog.Logger
	closers []io.Closer

	handlers []HandlerFunc

	mu     sync.Mutex
	offset int64
	tasks  []task

	started       time.Time
	activeWorkers atomic.Int32
	updatesSeen   atomic.Int64
	lastCheck     atomic.Int64
}

// New validates cfg, applies defaults and opens the log files.
func New(cfg Config) (*Bot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	if cfg.Workers == 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxPollErrors == 0 {
		cfg.MaxPollErrors = defaultMaxPollErrors
	}
	if cfg.MessageLimit == 0 {
		cfg.MessageLimit = chunk.MaxMessageLen
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.ReplyPolicy == nil {
		cfg.ReplyPolicy = ReplyChain
	}
	if cfg.OnError == nil {
		cfg.OnError = logError
	}

	b := &Bot{
		cfg:     cfg,
		client:  cfg.HTTPClient,
		base:    cfg.BaseURL,
		updates: discardLogger(),
		posts:   discardLogger(),
		started: time.Now(),
	}

	if cfg.LogDir != "" {
		var err error
		if b.updates, err = b.openLogger(filepath.Join(cfg.LogDir, "updates.jl")); err != nil {
			return nil, err
		}
		if b.posts, err = b.openLogger(filepath.Join(cfg.LogDir, "posts.jl")); err != nil {
			b.Close()
			return nil, err
		}
	}

	return b, nil
}

func (b *Bot) openLogger(path string) (*slog.Logger, error) {
	logger, closer, err := newJSONLogger(path)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, closer)
	return logger, nil
}

// Handle registers a handler. Handlers run in registration order until
// one reports the update handled. Not safe to call once Run started.
func (b *Bot) Handle(fn HandlerFunc) {
	b.handlers = append(b.handlers, fn)
}

// Close releases the log files. The Bot must not be used afterwards.
func (b *Bot) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}

// Status is a point-in-time snapshot of the bot's background work.
type Status struct {
	ActiveWorkers  int
	PendingTasks   int
	UpdatesSeen    int64
	LastSupervised time.Time
	Started        time.Time
}

// Status reports worker liveness, counters and scheduler backlog.
func (b *Bot) Status() Status {
	b.mu.Lock()
	pending := len(b.tasks)
	b.mu.Unlock()

	return Status{
		ActiveWorkers:  int(b.activeWorkers.Load()),
		PendingTasks:   pending,
		UpdatesSeen:    b.updatesSeen.Load(),
		LastSupervised: time.Unix(0, b.lastCheck.Load()),
		Started:        b.started,
	}
}
