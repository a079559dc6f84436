package server

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

const nodeIDAttr = "data-node-id"

// annotateHTML stamps a data-node-id attribute on every element of a
// rendered preview fragment that lacks one. The counter follows document
// order over all elements, so stamped ids line up with element positions
// even when some components emit their own. The ids anchor source-range
// highlighting in the preview page.
func annotateHTML(fragment string) (string, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse preview fragment: %w", err)
	}

	body := findBody(doc)
	if body == nil {
		return "", fmt.Errorf("no body element in parsed fragment")
	}

	next := 0
	var stamp func(n *html.Node)
	stamp = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if !hasAttr(n, nodeIDAttr) {
				n.Attr = append(n.Attr, html.Attribute{Key: nodeIDAttr, Val: fmt.Sprintf("n%d", next)})
			}
			next++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			stamp(c)
		}
	}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		stamp(c)
	}

	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("failed to render annotated fragment: %w", err)
		}
	}
	return buf.String(), nil
}

// findBody locates the body element the fragment parser always inserts
func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}
