package promptml

// ElementRange is one recognized element occurrence reported by
// DetectElements: its tag name and absolute byte span.
type ElementRange struct {
	TagName string `json:"tagName"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// DetectElements flattens a parsed tree into the spans of every Element
// and Meta node in document order, the root included when it is one.
// Editor tooling uses this for highlight ranges without walking the tree
// itself.
func DetectElements(root *Node) []ElementRange {
	var out []ElementRange
	Walk(root, func(n *Node) bool {
		if n.Kind == KindElement || n.Kind == KindMeta {
			out = append(out, ElementRange{TagName: n.TagName, Start: n.Start, End: n.End})
		}
		return true
	})
	return out
}
