package promptml

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/promptml/promptml/internal/metrics"
)

// ComponentFunc renders one recognized element. Implementations receive
// the element node, the variable context, and the renderer for recursing
// into children or resolving attributes.
type ComponentFunc func(el *Node, ctx Context, r *Renderer) (string, error)

// Renderer turns parsed trees back into text: literal nodes verbatim,
// template expressions resolved against a Context, and elements
// dispatched by tag name to registered component functions. Elements
// without a registered function render as their children concatenated.
// Registration is safe for concurrent use with rendering.
type Renderer struct {
	mu     sync.RWMutex
	funcs  map[string]ComponentFunc
	strict bool
	filter func(string) string
	stats  *metrics.Collector
}

// RenderOption configures a Renderer
type RenderOption func(*Renderer)

// WithStrictVars makes unresolved template variables a render error
// instead of passing the placeholder through verbatim.
func WithStrictVars(strict bool) RenderOption {
	return func(r *Renderer) {
		r.strict = strict
	}
}

// WithTextFilter installs a transform applied to literal text and
// resolved template values as they render. Component function output and
// attribute values pass through untouched; renderers emitting markup use
// the filter to escape prose.
func WithTextFilter(fn func(string) string) RenderOption {
	return func(r *Renderer) {
		r.filter = fn
	}
}

// WithRenderMetrics wires a metrics collector that receives one update
// per completed render call.
func WithRenderMetrics(c *metrics.Collector) RenderOption {
	return func(r *Renderer) {
		r.stats = c
	}
}

// NewRenderer creates a renderer with no component functions registered
func NewRenderer(opts ...RenderOption) *Renderer {
	r := &Renderer{funcs: make(map[string]ComponentFunc)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds a component function to a tag name, replacing any
// previous binding. Names are lower-cased to match parsed tag names.
func (r *Renderer) Register(name string, fn ComponentFunc) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || fn == nil {
		return
	}
	r.mu.Lock()
	r.funcs[name] = fn
	r.mu.Unlock()
}

// Components lists the registered component names so a renderer can feed
// BuildRegistry as a live provider.
func (r *Renderer) Components() []ComponentInfo {
	r.mu.RLock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	out := make([]ComponentInfo, len(names))
	for i, name := range names {
		out[i] = ComponentInfo{Name: name}
	}
	return out
}

// Render renders node against ctx and returns the produced text
func (r *Renderer) Render(node *Node, ctx Context) (string, error) {
	began := time.Now()
	out, err := r.render(node, ctx)
	if r.stats != nil {
		r.stats.RenderCompleted(err != nil, time.Since(began))
	}
	return out, err
}

func (r *Renderer) render(n *Node, ctx Context) (string, error) {
	if n == nil {
		return "", fmt.Errorf("render: nil node")
	}
	switch n.Kind {
	case KindText:
		// A text node with children is a container; a leaf carries the
		// literal source.
		if len(n.Children) > 0 {
			return r.renderChildren(n, ctx)
		}
		return r.filtered(n.Content), nil
	case KindTemplate:
		return r.renderTemplate(n, ctx)
	case KindMeta:
		// Directives are consumed via MetaDirectives, never rendered.
		return "", nil
	case KindElement:
		r.mu.RLock()
		fn := r.funcs[n.TagName]
		r.mu.RUnlock()
		if fn == nil {
			return r.renderChildren(n, ctx)
		}
		out, err := fn(n, ctx, r)
		if err != nil {
			return "", fmt.Errorf("component %q: %w", n.TagName, err)
		}
		return out, nil
	}
	return "", fmt.Errorf("render: unknown node kind %d", n.Kind)
}

// RenderChildren renders a node's children in order and concatenates the
// results. Component functions use it to recurse.
func (r *Renderer) RenderChildren(n *Node, ctx Context) (string, error) {
	return r.renderChildren(n, ctx)
}

func (r *Renderer) renderChildren(n *Node, ctx Context) (string, error) {
	var sb strings.Builder
	for _, c := range n.Children {
		out, err := r.render(c, ctx)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

func (r *Renderer) renderTemplate(n *Node, ctx Context) (string, error) {
	v, ok := ctx.Resolve(n.Expr)
	if !ok {
		if r.strict {
			return "", &UnresolvedVariableError{Expr: n.Expr, Offset: n.Start}
		}
		return r.filtered("{{" + n.Expr + "}}"), nil
	}
	return r.filtered(fmt.Sprintf("%v", v)), nil
}

func (r *Renderer) filtered(s string) string {
	if r.filter == nil {
		return s
	}
	return r.filter(s)
}

// ResolveAttrs joins each attribute's segments into a final string value:
// text segments are unescaped, template segments resolved against ctx.
// When the source repeats a key, the last occurrence wins.
func (r *Renderer) ResolveAttrs(el *Node, ctx Context) (map[string]string, error) {
	out := make(map[string]string, len(el.Attrs))
	for _, attr := range el.Attrs {
		var sb strings.Builder
		for _, seg := range attr.Value {
			if seg.Kind == KindTemplate {
				v, ok := ctx.Resolve(seg.Expr)
				if !ok {
					if r.strict {
						return nil, &UnresolvedVariableError{Expr: seg.Expr, Offset: seg.Start}
					}
					sb.WriteString("{{" + seg.Expr + "}}")
					continue
				}
				fmt.Fprintf(&sb, "%v", v)
				continue
			}
			sb.WriteString(unescapeQuotes(seg.Content))
		}
		out[attr.Key] = sb.String()
	}
	return out, nil
}

// MetaDirectives collects every meta block in the tree, parses each body
// as YAML, and merges the resulting maps in document order with later
// keys overwriting earlier ones. Malformed YAML fails with the offending
// block's offset; self-closing and empty meta blocks contribute nothing.
func MetaDirectives(root *Node) (map[string]any, error) {
	merged := make(map[string]any)
	var firstErr error
	Walk(root, func(n *Node) bool {
		if firstErr != nil {
			return false
		}
		if n.Kind != KindMeta {
			return true
		}
		body := metaBody(n.Content)
		if strings.TrimSpace(body) == "" {
			return true
		}
		directives := make(map[string]any)
		if err := yaml.Unmarshal([]byte(body), &directives); err != nil {
			firstErr = fmt.Errorf("meta block at offset %d: %w", n.Start, err)
			return false
		}
		for k, v := range directives {
			merged[k] = v
		}
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return merged, nil
}

// metaBody strips the opening and closing tags from a meta node's matched
// markup. Self-closing metas have no body.
func metaBody(content string) string {
	gt := strings.IndexByte(content, '>')
	closeAt := strings.LastIndex(content, "</")
	if gt < 0 || closeAt <= gt {
		return ""
	}
	return content[gt+1 : closeAt]
}

// unescapeQuotes rewrites backslash-quote pairs to bare quotes; every
// other backslash stays literal.
func unescapeQuotes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\'') {
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
