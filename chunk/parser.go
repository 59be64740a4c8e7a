package chunk

import "fmt"

// Parse turns message text into a Document. The grammar is the subset
// of HTML Telegram accepts: a repetition of tags and plain runs, where
// a tag is <NAME attrs?>content</NAME> and attributes are
// whitespace-separated key="value" or key='value' pairs. Text without
// '<' or '>' always parses as a single Text node.
//
// Errors are *MarkupError: unknown tag names, mismatched or missing
// closing tags, malformed attributes, and stray '<' or '>'.
func Parse(s string) (Document, error) {
	p := &parser{src: []rune(s)}
	doc, err := p.content()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.src) {
		// content only stops early at a closing tag
		return nil, &MarkupError{p.pos, "closing tag without matching opening tag"}
	}
	return doc, nil
}

// parser scans runes, not bytes, so every position it reports and
// every length downstream code computes is in characters.
type parser struct {
	src []rune
	pos int
}

// content parses (tag | text)* until end of input or until a closing
// tag is next; the enclosing element consumes the closing tag.
func (p *parser) content() (Document, error) {
	var doc Document
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '>':
			return nil, &MarkupError{p.pos, "unexpected '>'"}
		case '<':
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '/' {
				return doc, nil
			}
			el, err := p.element()
			if err != nil {
				return nil, err
			}
			doc = append(doc, el)
		default:
			doc = append(doc, Text(p.text()))
		}
	}
	return doc, nil
}

func (p *parser) text() string {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '<' && p.src[p.pos] != '>' {
		p.pos++
	}
	return string(p.src[start:p.pos])
}

func (p *parser) element() (*Element, error) {
	open := p.pos
	p.pos++ // '<'

	name := p.ident()
	tag := TagName(name)
	if _, ok := tagNames[tag]; !ok {
		return nil, &MarkupError{open, fmt.Sprintf("unknown tag %q", name)}
	}

	attrs, err := p.attributes()
	if err != nil {
		return nil, err
	}
	if p.pos >= len(p.src) || p.src[p.pos] != '>' {
		return nil, &MarkupError{open, fmt.Sprintf("malformed opening tag <%s", name)}
	}
	p.pos++

	children, err := p.content()
	if err != nil {
		return nil, err
	}

	if p.pos+1 >= len(p.src) || p.src[p.pos] != '<' || p.src[p.pos+1] != '/' {
		return nil, &MarkupError{open, fmt.Sprintf("tag <%s> is never closed", name)}
	}
	closePos := p.pos
	p.pos += 2
	if cname := p.ident(); cname != name {
		return nil, &MarkupError{closePos, fmt.Sprintf("closing tag </%s> does not match <%s>", cname, name)}
	}
	if p.pos >= len(p.src) || p.src[p.pos] != '>' {
		return nil, &MarkupError{closePos, fmt.Sprintf("malformed closing tag </%s", name)}
	}
	p.pos++

	return &Element{Tag: tag, Attrs: attrs, Nodes: children}, nil
}

// attributes parses zero or more key="value" pairs. Each attribute is
// kept as the literal source text including quotes; only the
// whitespace between attributes is normalized away.
func (p *parser) attributes() ([]string, error) {
	var attrs []string
	for {
		ws := p.whitespace()
		if p.pos >= len(p.src) || p.src[p.pos] == '>' {
			return attrs, nil
		}
		if ws == 0 {
			return nil, &MarkupError{p.pos, "expected whitespace before attribute"}
		}

		start := p.pos
		if key := p.ident(); key == "" {
			return nil, &MarkupError{start, "malformed attribute: missing name"}
		}
		if p.pos >= len(p.src) || p.src[p.pos] != '=' {
			return nil, &MarkupError{start, "malformed attribute: missing '='"}
		}
		p.pos++

		if p.pos >= len(p.src) || (p.src[p.pos] != '"' && p.src[p.pos] != '\'') {
			return nil, &MarkupError{start, "malformed attribute: missing quote"}
		}
		quote := p.src[p.pos]
		p.pos++
		for p.pos < len(p.src) && p.src[p.pos] != quote {
			p.pos++
		}
		if p.pos >= len(p.src) {
			return nil, &MarkupError{start, "malformed attribute: unterminated quote"}
		}
		p.pos++

		attrs = append(attrs, string(p.src[start:p.pos]))
	}
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && isIdent(p.src[p.pos]) {
		p.pos++
	}
	return string(p.src[start:p.pos])
}

func (p *parser) whitespace() int {
	start := p.pos
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
	return p.pos - start
}

func isIdent(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9' || r == '_' || r == '-'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
