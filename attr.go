package promptml

import "strings"

// parseAttrs scans the tag-header span [start,end) between the tag name
// and the closing '>' for key="value" and key='value' pairs, in source
// order. A backslash immediately before the active quote character keeps
// the value open. Bare words and unquoted values are skipped; an
// unterminated value drops the pair and ends the scan. owner becomes the
// parent of every produced value segment.
func (b *builder) parseAttrs(owner *Node, start, end int) []Attr {
	var attrs []Attr
	pos := start
	for pos < end {
		if !isWordByte(b.input[pos]) {
			pos++
			continue
		}
		keyStart := pos
		for pos < end && isWordByte(b.input[pos]) {
			pos++
		}
		key := b.input[keyStart:pos]
		p := pos
		for p < end && isSpaceByte(b.input[p]) {
			p++
		}
		if p >= end || b.input[p] != '=' {
			continue
		}
		p++
		for p < end && isSpaceByte(b.input[p]) {
			p++
		}
		if p >= end || (b.input[p] != '"' && b.input[p] != '\'') {
			pos = p
			continue
		}
		quote := b.input[p]
		valStart := p + 1
		valEnd := -1
		for q := valStart; q < end; q++ {
			if b.input[q] == '\\' && q+1 < end && b.input[q+1] == quote {
				q++
				continue
			}
			if b.input[q] == quote {
				valEnd = q
				break
			}
		}
		if valEnd < 0 {
			break
		}
		attrs = append(attrs, Attr{Key: key, Value: b.parseValueSegments(owner, valStart, valEnd)})
		pos = valEnd + 1
	}
	return attrs
}

// parseValueSegments splits an attribute value span into ordered Text and
// Template segments. Template expressions inside attribute values are
// always expanded, including on the literal-text element's own tags. Text
// segments keep the raw bytes; quote unescaping happens at render time.
func (b *builder) parseValueSegments(owner *Node, start, end int) []*Node {
	var segs []*Node
	textStart := start
	pos := start
	for pos < end {
		open := b.nextIndex(pos, end, "{{")
		if open < 0 {
			break
		}
		closeAt := b.nextIndex(open+2, end, "}}")
		if closeAt < 0 {
			// unterminated {{ stays literal
			pos = open + 2
			continue
		}
		if open > textStart {
			t := b.newNode(KindText, textStart, open)
			t.Content = b.input[textStart:open]
			t.Parent = owner
			segs = append(segs, t)
		}
		n := b.newNode(KindTemplate, open, closeAt+2)
		n.Expr = strings.TrimSpace(b.input[open+2 : closeAt])
		n.Parent = owner
		segs = append(segs, n)
		textStart = closeAt + 2
		pos = textStart
	}
	if end > textStart {
		t := b.newNode(KindText, textStart, end)
		t.Content = b.input[textStart:end]
		t.Parent = owner
		segs = append(segs, t)
	}
	return segs
}

// isWordByte reports whether c belongs to the attribute-key class:
// letters, digits, hyphen, underscore.
func isWordByte(c byte) bool {
	return isNameByte(c) || c == '_'
}
