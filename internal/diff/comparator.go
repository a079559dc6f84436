package diff

import (
	"fmt"
	"strings"

	"github.com/promptml/promptml"
)

// ChangeKind classifies the overall shape of a change set
type ChangeKind string

const (
	ChangeNone      ChangeKind = "none"
	ChangeContent   ChangeKind = "content"
	ChangeAttribute ChangeKind = "attribute"
	ChangeStructure ChangeKind = "structure"
	ChangeMixed     ChangeKind = "mixed"
)

// Change records one difference between two trees. Path addresses the
// node in both trees; Field names what differed ("node", "kind", "tag",
// "expr", "content", "attr", "children"); A and B hold the two readings.
type Change struct {
	Path  string `json:"path"`
	Field string `json:"field"`
	A     string `json:"a"`
	B     string `json:"b"`
}

// Compare walks two trees in parallel and returns their structural
// differences in document order. Byte offsets and node ids are ignored;
// only kinds, tag names, expressions, text content, attributes and child
// counts are compared. A nil result means the trees are equivalent.
func Compare(a, b *promptml.Node) []Change {
	if a == nil && b == nil {
		return nil
	}
	ref := a
	if ref == nil {
		ref = b
	}

	var changes []Change
	compareNodes(a, b, label(ref), &changes)
	return changes
}

// compareNodes recursively compares one aligned node pair
func compareNodes(a, b *promptml.Node, path string, changes *[]Change) {
	if a == nil && b == nil {
		return
	}

	if a == nil {
		*changes = append(*changes, Change{Path: path, Field: "node", A: "", B: summarize(b)})
		return
	}
	if b == nil {
		*changes = append(*changes, Change{Path: path, Field: "node", A: summarize(a), B: ""})
		return
	}

	if a.Kind != b.Kind {
		*changes = append(*changes, Change{Path: path, Field: "kind", A: a.Kind.String(), B: b.Kind.String()})
		return
	}

	switch a.Kind {
	case promptml.KindTemplate:
		if a.Expr != b.Expr {
			*changes = append(*changes, Change{Path: path, Field: "expr", A: a.Expr, B: b.Expr})
		}

	case promptml.KindText:
		// a text node with children is a parse root; its content is the
		// whole source and would shadow every other change
		if len(a.Children) == 0 && len(b.Children) == 0 {
			if a.Content != b.Content {
				*changes = append(*changes, Change{Path: path, Field: "content", A: a.Content, B: b.Content})
			}
			return
		}
		compareChildren(a, b, path, changes)

	case promptml.KindMeta:
		// attribute differences surface through the raw block; directives
		// live in the body, not in attributes
		if a.Content != b.Content {
			*changes = append(*changes, Change{Path: path, Field: "content", A: a.Content, B: b.Content})
		}

	case promptml.KindElement:
		if a.TagName != b.TagName {
			*changes = append(*changes, Change{Path: path, Field: "tag", A: a.TagName, B: b.TagName})
			return
		}
		compareAttrs(a, b, path, changes)
		compareChildren(a, b, path, changes)
	}
}

// compareAttrs reports added, changed and removed attributes in source
// order. Repeated keys collapse to their last occurrence, matching
// render-time resolution.
func compareAttrs(a, b *promptml.Node, path string, changes *[]Change) {
	seen := make(map[string]bool)

	for _, attr := range b.Attrs {
		if seen[attr.Key] {
			continue
		}
		seen[attr.Key] = true

		bv := attrSource(mustAttr(b, attr.Key))
		if old, ok := a.Attr(attr.Key); ok {
			if av := attrSource(old); av != bv {
				*changes = append(*changes, Change{Path: path + "/@" + attr.Key, Field: "attr", A: av, B: bv})
			}
		} else {
			*changes = append(*changes, Change{Path: path + "/@" + attr.Key, Field: "attr", A: "", B: bv})
		}
	}

	for _, attr := range a.Attrs {
		if seen[attr.Key] {
			continue
		}
		seen[attr.Key] = true
		if _, ok := b.Attr(attr.Key); !ok {
			*changes = append(*changes, Change{Path: path + "/@" + attr.Key, Field: "attr", A: attrSource(mustAttr(a, attr.Key)), B: ""})
		}
	}
}

// compareChildren pairs children by position and recurses, then reports
// a count mismatch once for the parent
func compareChildren(a, b *promptml.Node, path string, changes *[]Change) {
	maxLen := len(a.Children)
	if len(b.Children) > maxLen {
		maxLen = len(b.Children)
	}

	counts := make(map[string]int)
	for i := 0; i < maxLen; i++ {
		var ca, cb *promptml.Node
		if i < len(a.Children) {
			ca = a.Children[i]
		}
		if i < len(b.Children) {
			cb = b.Children[i]
		}

		ref := ca
		if ref == nil {
			ref = cb
		}
		l := label(ref)
		counts[l]++

		childPath := path + "/" + l
		if n := counts[l]; n > 1 {
			childPath = fmt.Sprintf("%s/%s[%d]", path, l, n)
		}
		compareNodes(ca, cb, childPath, changes)
	}

	if len(a.Children) != len(b.Children) {
		*changes = append(*changes, Change{
			Path:  path,
			Field: "children",
			A:     formatChildCount(len(a.Children)),
			B:     formatChildCount(len(b.Children)),
		})
	}
}

// Classify reduces a change set to its dominant kind
func Classify(changes []Change) ChangeKind {
	if len(changes) == 0 {
		return ChangeNone
	}

	hasContent := false
	hasAttribute := false
	hasStructure := false

	for _, change := range changes {
		switch change.Field {
		case "content", "expr":
			hasContent = true
		case "attr":
			hasAttribute = true
		default:
			hasStructure = true
		}
	}

	if hasStructure {
		if hasContent || hasAttribute {
			return ChangeMixed
		}
		return ChangeStructure
	}
	if hasContent && hasAttribute {
		return ChangeMixed
	}
	if hasAttribute {
		return ChangeAttribute
	}
	return ChangeContent
}

// label names a node for path segments
func label(n *promptml.Node) string {
	switch n.Kind {
	case promptml.KindElement, promptml.KindMeta:
		return n.TagName
	case promptml.KindTemplate:
		return "template()"
	default:
		if len(n.Children) > 0 {
			return "doc"
		}
		return "text()"
	}
}

// summarize renders a node added or removed wholesale as a short string
func summarize(n *promptml.Node) string {
	switch n.Kind {
	case promptml.KindTemplate:
		return "{{" + n.Expr + "}}"
	case promptml.KindElement, promptml.KindMeta:
		var sb strings.Builder
		sb.WriteByte('<')
		sb.WriteString(n.TagName)
		for _, attr := range n.Attrs {
			sb.WriteByte(' ')
			sb.WriteString(attr.Key)
			sb.WriteString(`="`)
			sb.WriteString(attrSource(attr))
			sb.WriteByte('"')
		}
		sb.WriteByte('>')
		return sb.String()
	default:
		return n.Content
	}
}

// attrSource reconstructs an attribute value as written, templates
// included
func attrSource(attr promptml.Attr) string {
	var sb strings.Builder
	for _, seg := range attr.Value {
		if seg.Kind == promptml.KindTemplate {
			sb.WriteString("{{")
			sb.WriteString(seg.Expr)
			sb.WriteString("}}")
		} else {
			sb.WriteString(seg.Content)
		}
	}
	return sb.String()
}

func mustAttr(n *promptml.Node, key string) promptml.Attr {
	attr, _ := n.Attr(key)
	return attr
}

func formatChildCount(count int) string {
	if count == 1 {
		return "1 child"
	}
	return fmt.Sprintf("%d children", count)
}
