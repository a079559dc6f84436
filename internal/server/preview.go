package server

import (
	"html"
	"strings"

	"github.com/promptml/promptml"
	"github.com/promptml/promptml/internal/metrics"
)

// newPreviewRenderer builds the renderer behind the preview pages:
// prose and resolved variables are HTML-escaped, recognized components
// emit semantic markup carrying pml-* classes for the preview
// stylesheet.
func newPreviewRenderer(stats *metrics.Collector) *promptml.Renderer {
	r := promptml.NewRenderer(
		promptml.WithTextFilter(html.EscapeString),
		promptml.WithRenderMetrics(stats),
	)

	hint := block("aside", "pml-hint", "Hint")
	document := block("article", "pml-document", "")
	format := block("pre", "pml-format", "")

	r.Register("task", block("section", "pml-task", "Task"))
	r.Register("role", block("section", "pml-role", "Role"))
	r.Register("hint", hint)
	r.Register("example", block("div", "pml-example", "Example"))
	r.Register("examples", block("section", "pml-examples", "Examples"))
	r.Register("document", document)
	r.Register("section", block("section", "pml-section", ""))
	r.Register("table", block("div", "pml-table", ""))
	r.Register("output-format", format)
	r.Register("stylesheet", block("aside", "pml-stylesheet", "Style"))
	r.Register("list", wrap("ul", "pml-list"))
	r.Register("item", wrap("li", "pml-item"))
	r.Register("image", renderImage)
	r.Register("let", renderLet)

	// elements parsed under a catalog alias keep the alias as their tag
	// name, so the alias renders like its target
	r.Register("tip", hint)
	r.Register("doc", document)
	r.Register("format", format)

	return r
}

// block wraps the element body in tag with a heading line. A resolved
// title attribute is appended to the fixed heading, or becomes the
// heading when there is none.
func block(tag, class, heading string) promptml.ComponentFunc {
	return func(el *promptml.Node, ctx promptml.Context, r *promptml.Renderer) (string, error) {
		attrs, err := r.ResolveAttrs(el, ctx)
		if err != nil {
			return "", err
		}
		body, err := r.RenderChildren(el, ctx)
		if err != nil {
			return "", err
		}

		title := heading
		if t := attrs["title"]; t != "" {
			if title != "" {
				title += ": " + t
			} else {
				title = t
			}
		}

		var sb strings.Builder
		sb.WriteString("<")
		sb.WriteString(tag)
		sb.WriteString(` class="`)
		sb.WriteString(class)
		sb.WriteString(`">`)
		if title != "" {
			sb.WriteString(`<h3 class="pml-heading">`)
			sb.WriteString(html.EscapeString(title))
			sb.WriteString("</h3>")
		}
		sb.WriteString(body)
		sb.WriteString("</")
		sb.WriteString(tag)
		sb.WriteString(">")
		return sb.String(), nil
	}
}

// wrap encloses the element body in a bare tag, no heading
func wrap(tag, class string) promptml.ComponentFunc {
	return func(el *promptml.Node, ctx promptml.Context, r *promptml.Renderer) (string, error) {
		body, err := r.RenderChildren(el, ctx)
		if err != nil {
			return "", err
		}
		return `<` + tag + ` class="` + class + `">` + body + `</` + tag + `>`, nil
	}
}

// renderImage emits an img tag from the src and alt attributes; without
// a usable src a placeholder keeps the preview rendering
func renderImage(el *promptml.Node, ctx promptml.Context, r *promptml.Renderer) (string, error) {
	attrs, err := r.ResolveAttrs(el, ctx)
	if err != nil {
		return "", err
	}
	src := attrs["src"]
	if src == "" {
		return `<span class="pml-image-missing">[image]</span>`, nil
	}
	return `<img class="pml-image" src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(attrs["alt"]) + `">`, nil
}

// renderLet assigns a context variable and renders nothing. The
// assignment is visible to everything rendered after the element.
func renderLet(el *promptml.Node, ctx promptml.Context, r *promptml.Renderer) (string, error) {
	attrs, err := r.ResolveAttrs(el, ctx)
	if err != nil {
		return "", err
	}
	if name := attrs["name"]; name != "" && ctx != nil {
		ctx[name] = attrs["value"]
	}
	return "", nil
}
