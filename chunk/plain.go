package chunk

import (
	"strings"
	"unicode/utf8"
)

// emitPlain splits unformatted text on paragraph boundaries. Paragraphs
// are newline-separated and atomic: a single paragraph longer than the
// limit is a *SegmentationError, never silently broken mid-line.
//
// The final accumulator is always emitted, even when empty, so the
// chunk sequence of non-empty input is never empty. Reports false when
// the consumer stopped early.
func emitPlain(limit int, text string, yield func(string) bool) (bool, error) {
	var acc string
	for _, par := range strings.Split(text, "\n") {
		if utf8.RuneCountInString(par) > limit {
			return true, &SegmentationError{Limit: limit, Unit: "a single paragraph"}
		}

		candidate := strings.TrimLeft(acc+"\n"+par, "\n")
		if utf8.RuneCountInString(candidate) > limit {
			if !yield(acc) {
				return false, nil
			}
			acc = par
		} else {
			acc = candidate
		}
	}
	return yield(acc), nil
}
