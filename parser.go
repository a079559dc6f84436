package promptml

import (
	"strings"
	"time"

	"github.com/promptml/promptml/internal/metrics"
)

// DefaultMaxDepth bounds element nesting. Bodies opened past the limit are
// kept as undecomposed text instead of overflowing the call stack.
const DefaultMaxDepth = 64

// Parser turns prompt-markup source into a node tree. It is stateless
// across calls and safe for concurrent use: the registry is read-only and
// every parse call works on its own cursor state.
type Parser struct {
	reg      *Registry
	maxDepth int
	stats    *metrics.Collector
}

// ParseOption configures a Parser
type ParseOption func(*Parser)

// WithMaxDepth overrides the element nesting bound. Values below one are
// ignored.
func WithMaxDepth(n int) ParseOption {
	return func(p *Parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// WithParseMetrics wires a metrics collector that receives one update per
// completed parse call.
func WithParseMetrics(c *metrics.Collector) ParseOption {
	return func(p *Parser) {
		p.stats = c
	}
}

// NewParser creates a parser recognizing the names in reg. A nil registry
// falls back to the reserved built-in names only.
func NewParser(reg *Registry, opts ...ParseOption) *Parser {
	p := &Parser{reg: reg, maxDepth: DefaultMaxDepth}
	if p.reg == nil {
		p.reg = NewRegistry()
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses input with default limits. Convenience for one-off calls.
func Parse(input string, reg *Registry) *Node {
	return NewParser(reg).Parse(input)
}

// Parse builds the node tree for input. It never fails: malformed markup
// degrades to literal text and the scan always advances, so every input
// yields a tree.
func (p *Parser) Parse(input string) *Node {
	return p.ParseFrom(input, 0)
}

// ParseFrom parses input beginning at byte offset start. Node offsets stay
// absolute into input, so a caller re-parsing a document tail can splice
// the result against the original coordinates.
func (p *Parser) ParseFrom(input string, start int) *Node {
	if start < 0 {
		start = 0
	}
	if start > len(input) {
		start = len(input)
	}
	began := time.Now()
	b := &builder{input: input, reg: p.reg, maxDepth: p.maxDepth}
	root := b.run(start)
	if p.stats != nil {
		p.stats.ParseCompleted(b.nextID, b.rejected, b.depthHits, time.Since(began))
	}
	return root
}

// builder holds the per-call state of one parse: the shared input, the id
// counter, and the counters reported to metrics afterwards.
type builder struct {
	input     string
	reg       *Registry
	maxDepth  int
	nextID    int
	rejected  int
	depthHits int
}

func (b *builder) newNode(kind Kind, start, end int) *Node {
	n := &Node{ID: b.nextID, Kind: kind, Start: start, End: end}
	b.nextID++
	return n
}

func (b *builder) run(start int) *Node {
	end := len(b.input)
	if n, ok := b.wholeTextDocument(start, end); ok {
		return n
	}
	children := b.parseChildren(start, end, 0, true)
	if len(children) == 1 {
		c := children[0]
		if (c.Kind == KindText || c.Kind == KindElement) && c.Start == start && c.End == end {
			return c
		}
	}
	root := b.newNode(KindText, start, end)
	root.Content = b.input[start:end]
	root.Children = children
	for _, c := range children {
		c.Parent = root
	}
	return root
}

// wholeTextDocument implements the whole-document shortcut: a region that
// is, after trimming, one literal-text element end to end stays a single
// undecomposed Text node carrying the region verbatim, tags included.
// It applies only at the public entry points, never to interior recursion.
func (b *builder) wholeTextDocument(start, end int) (*Node, bool) {
	trimmed := strings.TrimSpace(b.input[start:end])
	open := "<" + TagText
	if len(trimmed) <= len(open)+1 || !strings.EqualFold(trimmed[:len(open)], open) {
		return nil, false
	}
	if c := trimmed[len(open)]; c != '>' && !isSpaceByte(c) {
		return nil, false
	}
	if trimmed[len(trimmed)-1] != '>' {
		return nil, false
	}
	q := len(trimmed) - 2
	for q >= 0 && isSpaceByte(trimmed[q]) {
		q--
	}
	nameStart := q - len(TagText) + 1
	if nameStart < len(open)+1 {
		return nil, false
	}
	if !strings.EqualFold(trimmed[nameStart:q+1], TagText) {
		return nil, false
	}
	if trimmed[nameStart-2] != '<' || trimmed[nameStart-1] != '/' {
		return nil, false
	}
	n := b.newNode(KindText, start, end)
	n.Content = b.input[start:end]
	return n, true
}

// parseChildren scans [start,end) and returns the ordered children for
// that region: literal text gaps, recognized elements, meta blocks, and,
// when templates is set, {{...}} template spans. Inside the literal-text
// element templates stays false for the direct body; nested ordinary
// elements decide the flag again by their own name.
func (b *builder) parseChildren(start, end, depth int, templates bool) []*Node {
	var out []*Node
	textStart := start
	pos := start

	flush := func(upTo int) {
		if upTo > textStart {
			t := b.newNode(KindText, textStart, upTo)
			t.Content = b.input[textStart:upTo]
			out = append(out, t)
		}
	}

	for pos < end {
		lt := b.nextIndex(pos, end, "<")
		tpl := -1
		if templates {
			tpl = b.nextIndex(pos, end, "{{")
		}
		if lt < 0 && tpl < 0 {
			break
		}

		if tpl >= 0 && (lt < 0 || tpl < lt) {
			closeAt := b.nextIndex(tpl+2, end, "}}")
			if closeAt < 0 {
				// unterminated {{ stays literal text
				pos = tpl + 2
				continue
			}
			flush(tpl)
			n := b.newNode(KindTemplate, tpl, closeAt+2)
			n.Expr = strings.TrimSpace(b.input[tpl+2 : closeAt])
			out = append(out, n)
			textStart = closeAt + 2
			pos = textStart
			continue
		}

		name := b.tagNameAt(lt, end)
		if name == "" {
			pos = lt + 1
			continue
		}
		if !b.reg.IsRecognized(name) {
			b.rejected++
			pos = lt + 1 + len(name)
			continue
		}
		tagEnd, selfClosing, ok := b.openTagAt(lt, end, name)
		if !ok {
			// candidate without a complete opening tag stays text
			b.rejected++
			pos = lt + 1
			continue
		}
		lower := strings.ToLower(name)
		kind := KindElement
		if lower == TagMeta {
			kind = KindMeta
		}

		if selfClosing {
			flush(lt)
			n := b.newNode(kind, lt, tagEnd)
			n.TagName = lower
			n.Content = b.input[lt:tagEnd]
			n.Attrs = b.parseAttrs(n, lt+1+len(name), tagEnd-2)
			out = append(out, n)
			textStart = tagEnd
			pos = tagEnd
			continue
		}

		var closeStart, closeEnd int
		if kind == KindMeta {
			closeStart, closeEnd = b.findLiteralClose(name, tagEnd, end)
		} else {
			closeStart, closeEnd = b.findMatchingClose(name, tagEnd, end)
		}
		if closeStart < 0 {
			// no matching close before the region ends: reject and resume
			// just past the opening tag's '>'
			b.rejected++
			pos = tagEnd
			continue
		}

		flush(lt)
		n := b.newNode(kind, lt, closeEnd)
		n.TagName = lower
		n.Content = b.input[lt:closeEnd]
		n.Attrs = b.parseAttrs(n, lt+1+len(name), tagEnd-1)
		if kind == KindElement {
			if depth+1 > b.maxDepth {
				b.depthHits++
				if closeStart > tagEnd {
					t := b.newNode(KindText, tagEnd, closeStart)
					t.Content = b.input[tagEnd:closeStart]
					t.Parent = n
					n.Children = []*Node{t}
				}
			} else {
				n.Children = b.parseChildren(tagEnd, closeStart, depth+1, lower != TagText)
				for _, c := range n.Children {
					c.Parent = n
				}
			}
		}
		out = append(out, n)
		textStart = closeEnd
		pos = closeEnd
	}

	flush(end)
	return out
}

// findMatchingClose locates the close tag balancing an already-open
// element of name inside [from,end), counting further same-name opens up
// and closes down; self-closing opens do not deepen. Returns the close
// tag's start and the offset just past its '>', or -1,-1 when the region
// ends first.
func (b *builder) findMatchingClose(name string, from, end int) (int, int) {
	depth := 1
	pos := from
	for pos < end {
		lt := b.nextIndex(pos, end, "<")
		if lt < 0 {
			return -1, -1
		}
		if closeEnd := b.closeTagEnd(lt, end, name); closeEnd > 0 {
			depth--
			if depth == 0 {
				return lt, closeEnd
			}
			pos = closeEnd
			continue
		}
		if tagEnd, selfClosing, ok := b.openTagAt(lt, end, name); ok {
			if !selfClosing {
				depth++
			}
			pos = tagEnd
			continue
		}
		pos = lt + 1
	}
	return -1, -1
}

// findLiteralClose finds the first close tag for name inside [from,end)
// with no depth tracking; the metadata element's body is opaque, so its
// first terminator wins no matter what markup the body contains.
func (b *builder) findLiteralClose(name string, from, end int) (int, int) {
	pos := from
	for pos < end {
		lt := b.nextIndex(pos, end, "<")
		if lt < 0 {
			return -1, -1
		}
		if closeEnd := b.closeTagEnd(lt, end, name); closeEnd > 0 {
			return lt, closeEnd
		}
		pos = lt + 1
	}
	return -1, -1
}

// nextIndex returns the absolute index of the next occurrence of sub in
// [from,end), or -1.
func (b *builder) nextIndex(from, end int, sub string) int {
	if from >= end {
		return -1
	}
	i := strings.Index(b.input[from:end], sub)
	if i < 0 {
		return -1
	}
	return from + i
}

// tagNameAt returns the candidate tag name after the '<' at pos: the
// maximal run of letters, digits, and hyphens with no intervening
// whitespace. Empty when pos is not followed by a name character, which
// also covers "</", "<!", and stray angles.
func (b *builder) tagNameAt(pos, end int) string {
	p := pos + 1
	for p < end && isNameByte(b.input[p]) {
		p++
	}
	return b.input[pos+1 : p]
}

// openTagAt validates that an opening tag for name starts at pos: the
// name must be followed by whitespace, '>', or '/', and the tag's '>'
// must occur before end. Returns the offset just past '>' and whether the
// tag self-closes.
func (b *builder) openTagAt(pos, end int, name string) (tagEnd int, selfClosing bool, ok bool) {
	p := pos + 1 + len(name)
	if p >= end || b.input[pos] != '<' || !strings.EqualFold(b.input[pos+1:p], name) {
		return 0, false, false
	}
	if c := b.input[p]; c != '>' && c != '/' && !isSpaceByte(c) {
		return 0, false, false
	}
	gt := b.nextIndex(p, end, ">")
	if gt < 0 {
		return 0, false, false
	}
	return gt + 1, b.input[gt-1] == '/', true
}

// closeTagEnd returns the offset just past the '>' of a closing tag for
// name starting at pos, tolerating whitespace before '>', or -1 when pos
// does not start one. Name comparison is ASCII case-insensitive.
func (b *builder) closeTagEnd(pos, end int, name string) int {
	p := pos + 2 + len(name)
	if p > end || b.input[pos] != '<' || b.input[pos+1] != '/' || !strings.EqualFold(b.input[pos+2:p], name) {
		return -1
	}
	for p < end && isSpaceByte(b.input[p]) {
		p++
	}
	if p < end && b.input[p] == '>' {
		return p + 1
	}
	return -1
}

// isNameByte reports whether c belongs to the tag-name grammar: letters,
// digits, hyphen. Underscore is deliberately not a name character even
// though it is a word character for the tokenizer.
func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '-'
}

func isSpaceByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
