package chunk

import (
	"strings"
	"unicode/utf8"
)

// TagName is one of the tag spellings Telegram accepts in HTML parse
// mode. The set is closed; the parser rejects everything else.
type TagName string

const (
	TagBold      TagName = "b"
	TagStrong    TagName = "strong"
	TagItalic    TagName = "i"
	TagEm        TagName = "em"
	TagUnderline TagName = "u"
	TagIns       TagName = "ins"
	TagStrike    TagName = "s"
	TagStrikeAlt TagName = "strike"
	TagDel       TagName = "del"
	TagSpan      TagName = "span"
	TagSpoiler   TagName = "tg-spoiler"
	TagLink      TagName = "a"
	TagCode      TagName = "code"
	TagPre       TagName = "pre"
)

var tagNames = map[TagName]struct{}{
	TagBold:      {},
	TagStrong:    {},
	TagItalic:    {},
	TagEm:        {},
	TagUnderline: {},
	TagIns:       {},
	TagStrike:    {},
	TagStrikeAlt: {},
	TagDel:       {},
	TagSpan:      {},
	TagSpoiler:   {},
	TagLink:      {},
	TagCode:      {},
	TagPre:       {},
}

// Node is one piece of parsed message content: a Text run or an
// *Element.
type Node interface {
	// Len is the length of the node's serialized form, counted in
	// characters rather than bytes.
	Len() int

	render(b *strings.Builder)
}

// Text is a raw character run. It never contains '<' or '>'.
type Text string

func (t Text) Len() int { return utf8.RuneCountInString(string(t)) }

func (t Text) render(b *strings.Builder) { b.WriteString(string(t)) }

// Element is a tag with its attributes and nested content. Attributes
// keep the exact key="value" text from the source, so rendering gives
// the source back unchanged.
type Element struct {
	Tag   TagName
	Attrs []string
	Nodes []Node
}

func (e *Element) openLen() int {
	n := 1 + len(e.Tag) + 1
	for _, a := range e.Attrs {
		n += utf8.RuneCountInString(a) + 1
	}
	return n
}

func (e *Element) closeLen() int { return 2 + len(e.Tag) + 1 }

func (e *Element) Len() int {
	n := e.openLen() + e.closeLen()
	for _, c := range e.Nodes {
		n += c.Len()
	}
	return n
}

func (e *Element) open(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(string(e.Tag))
	for _, a := range e.Attrs {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	b.WriteByte('>')
}

func (e *Element) close(b *strings.Builder) {
	b.WriteString("</")
	b.WriteString(string(e.Tag))
	b.WriteByte('>')
}

func (e *Element) render(b *strings.Builder) {
	e.open(b)
	for _, c := range e.Nodes {
		c.render(b)
	}
	e.close(b)
}

// Document is the parsed form of one message: an ordered forest of
// top-level nodes.
type Document []Node

// Len is the character count of the serialized document. It is always
// equal to len([]rune(d.String())) but never builds the string.
func (d Document) Len() int {
	n := 0
	for _, c := range d {
		n += c.Len()
	}
	return n
}

// String serializes the document back to markup text.
func (d Document) String() string {
	var b strings.Builder
	for _, c := range d {
		c.render(&b)
	}
	return b.String()
}

// Text is the visible text of the document with all markup stripped.
func (d Document) Text() string {
	var b strings.Builder
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			switch v := n.(type) {
			case Text:
				b.WriteString(string(v))
			case *Element:
				walk(v.Nodes)
			}
		}
	}
	walk(d)
	return b.String()
}
