// Package chunk splits outgoing messages into pieces that each fit the
// Telegram message length limit.
//
// Plain text is split on paragraph boundaries. HTML-formatted text is
// parsed into a tree first and split so that every piece is
// independently well-formed: tags spanning a split are re-opened at the
// start of the next piece and closed again at its end. Concatenating
// the visible text of all pieces, in order, gives back the visible text
// of the original message.
//
// All lengths are logical characters (runes), matching how Telegram
// counts message length, never bytes.
package chunk

import (
	"iter"
	"strings"
	"unicode/utf8"
)

// MaxMessageLen is the Telegram Bot API limit for a single message.
const MaxMessageLen = 4096

// ParseMode selects how Split treats the message text.
type ParseMode string

const (
	// ModePlain splits on paragraph boundaries only.
	ModePlain ParseMode = ""

	// ModeHTML parses the restricted HTML dialect and keeps every
	// chunk independently well-formed. Matched case-insensitively.
	ModeHTML ParseMode = "HTML"
)

// Seq is a lazy chunk sequence. Chunks are produced as they are
// consumed and iteration may stop at any element with nothing to clean
// up. A non-nil error is the final element; chunks delivered before it
// are still valid.
type Seq = iter.Seq2[string, error]

// Split breaks text into chunks of at most limit characters each.
//
// Text that already fits is returned unchanged as a single chunk, no
// matter the mode. Otherwise ModePlain splits between paragraphs and
// fails with *SegmentationError when one paragraph alone is over the
// limit; ModeHTML parses the text (*MarkupError on bad markup) and
// splits the tree, preferring newline over space over arbitrary cut
// positions. Any other mode, including Markdown, is
// *UnsupportedModeError.
func Split(text string, limit int, mode ParseMode) (Seq, error) {
	if utf8.RuneCountInString(text) <= limit {
		return one(text), nil
	}

	switch {
	case mode == ModePlain:
		return lazy(func(yield func(string) bool) (bool, error) {
			return emitPlain(limit, text, yield)
		}), nil

	case strings.EqualFold(string(mode), string(ModeHTML)):
		doc, err := Parse(text)
		if err != nil {
			return nil, err
		}
		return lazy(func(yield func(string) bool) (bool, error) {
			return emitMarkup(limit, doc, nil, yield)
		}), nil

	default:
		return nil, &UnsupportedModeError{Mode: mode}
	}
}

// SplitAll is Split with the whole sequence collected into a slice.
func SplitAll(text string, limit int, mode ParseMode) ([]string, error) {
	seq, err := Split(text, limit, mode)
	if err != nil {
		return nil, err
	}
	var chunks []string
	for c, err := range seq {
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func one(text string) Seq {
	return func(yield func(string, error) bool) {
		yield(text, nil)
	}
}

func lazy(emit func(yield func(string) bool) (bool, error)) Seq {
	return func(yield func(string, error) bool) {
		alive, err := emit(func(c string) bool {
			return yield(c, nil)
		})
		if alive && err != nil {
			yield("", err)
		}
	}
}
