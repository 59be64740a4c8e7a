package chunk

import "strings"

// ancestors is the stack of currently open tags around the nodes being
// split, outermost first. It is passed down recursion as-is and only
// extended by copy, never mutated in place.
type ancestors []*Element

// overhead is the character cost of opening and closing every ancestor
// tag around an otherwise empty chunk.
func (a ancestors) overhead() int {
	n := 0
	for _, e := range a {
		n += e.openLen() + e.closeLen()
	}
	return n
}

// wrap renders nodes with every ancestor tag re-opened before and
// re-closed after, innermost closed first, so the chunk is well-formed
// on its own.
func (a ancestors) wrap(nodes Document) string {
	var b strings.Builder
	for _, e := range a {
		e.open(&b)
	}
	for _, n := range nodes {
		n.render(&b)
	}
	for i := len(a) - 1; i >= 0; i-- {
		a[i].close(&b)
	}
	return b.String()
}

// emitMarkup recursively splits a node sequence under the limit.
//
// When the sequence fits in one chunk it is emitted whole. Otherwise a
// single left-to-right pass finds the furthest cut position of each
// kind that still fits; newline cuts beat space cuts beat arbitrary
// cuts. A cut splits a text node in two and recursion continues on the
// remainder with the same ancestor stack. When no cut exists the first
// node must be an element too large to keep atomic: it is pushed onto
// the ancestor stack and entered. Reports false when the consumer
// stopped early.
func emitMarkup(limit int, nodes Document, stack ancestors, yield func(string) bool) (bool, error) {
	if len(nodes) == 0 {
		return true, nil
	}

	outer := stack.overhead()
	if nodes.Len()+outer <= limit {
		return yield(stack.wrap(nodes)), nil
	}

	// Elements are opaque units at this level; only text nodes are
	// scanned character by character.
	type cut struct{ ti, ci int }
	var bestNewline, bestSpace, bestAny *cut

	length := outer
	for ti, n := range nodes {
		if length > limit {
			break
		}
		t, ok := n.(Text)
		if !ok {
			length += n.Len()
			continue
		}
		runes := []rune(string(t))
		for ci, r := range runes {
			if length+ci+1 > limit {
				break
			}
			switch r {
			case '\n':
				bestNewline = &cut{ti, ci}
			case ' ':
				bestSpace = &cut{ti, ci}
			}
			bestAny = &cut{ti, ci}
		}
		length += len(runes)
	}

	best := bestNewline
	if best == nil {
		best = bestSpace
	}
	if best == nil {
		best = bestAny
	}

	if best != nil {
		runes := []rune(string(nodes[best.ti].(Text)))

		left := append(Document{}, nodes[:best.ti]...)
		left = append(left, Text(runes[:best.ci+1]))

		var rest Document
		if tail := string(runes[best.ci+1:]); tail != "" {
			rest = append(rest, Text(tail))
		}
		rest = append(rest, nodes[best.ti+1:]...)

		if !yield(stack.wrap(left)) {
			return false, nil
		}
		return emitMarkup(limit, rest, stack, yield)
	}

	first, ok := nodes[0].(*Element)
	if !ok {
		return true, &SegmentationError{Limit: limit, Unit: "one character plus markup overhead"}
	}

	inside := append(append(ancestors{}, stack...), first)
	if inside.overhead() > limit {
		return true, &SegmentationError{Limit: limit, Unit: "markup overhead of " + string(first.Tag)}
	}
	if alive, err := emitMarkup(limit, Document(first.Nodes), inside, yield); !alive || err != nil {
		return alive, err
	}
	return emitMarkup(limit, nodes[1:], stack, yield)
}
