package promptml

import "fmt"

// Kind discriminates the node variants produced by the tree builder.
// Consumers switch on it exhaustively; no other runtime type test exists.
type Kind uint8

const (
	KindText Kind = iota
	KindElement
	KindMeta
	KindTemplate
)

var kindNames = [...]string{
	KindText:     "text",
	KindElement:  "element",
	KindMeta:     "meta",
	KindTemplate: "template",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// MarshalText renders the kind as its stable name, so JSON output carries
// "element" rather than a bare integer
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText restores a kind from its stable name
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown node kind %q", string(text))
}

// Node is one vertex of a parsed document tree. Start and End are byte
// offsets into the original top-level input, half-open; children reuse the
// same absolute coordinate space as their ancestors. Content holds the
// exact source substring the node represents: the full matched markup for
// Element and Meta, the literal text for Text, and nothing for Template
// (use Expr). ID is unique within one parse call and otherwise opaque.
type Node struct {
	ID       int     `json:"id"`
	Kind     Kind    `json:"kind"`
	Content  string  `json:"content,omitempty"`
	Start    int     `json:"start"`
	End      int     `json:"end"`
	TagName  string  `json:"tagName,omitempty"`
	Attrs    []Attr  `json:"attrs,omitempty"`
	Expr     string  `json:"expr,omitempty"`
	Children []*Node `json:"children,omitempty"`
	Parent   *Node   `json:"-"`
}

// Attr is one key="value" pair from a tag header, in source order. The
// value is a sequence of Text and Template segments, never elements.
// Text segments keep the raw source bytes, escapes included; resolution
// and unescaping happen at render time.
type Attr struct {
	Key   string  `json:"key"`
	Value []*Node `json:"value"`
}

// Walk visits n and its descendants in document order, stopping a branch
// when fn returns false. Attribute value segments are not visited.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Attr returns the named attribute pair and whether it exists. When the
// source repeats a key, the last occurrence wins.
func (n *Node) Attr(key string) (Attr, bool) {
	for i := len(n.Attrs) - 1; i >= 0; i-- {
		if n.Attrs[i].Key == key {
			return n.Attrs[i], true
		}
	}
	return Attr{}, false
}

func (n *Node) String() string {
	switch n.Kind {
	case KindElement, KindMeta:
		return fmt.Sprintf("%s<%s> [%d:%d) children=%d", n.Kind, n.TagName, n.Start, n.End, len(n.Children))
	case KindTemplate:
		return fmt.Sprintf("template{{%s}} [%d:%d)", n.Expr, n.Start, n.End)
	default:
		return fmt.Sprintf("text [%d:%d) children=%d", n.Start, n.End, len(n.Children))
	}
}
