package server

import (
	"strings"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

var (
	minifier *minify.M
	once     sync.Once
)

// getMinifier returns the shared HTML minifier
func getMinifier() *minify.M {
	once.Do(func() {
		minifier = minify.New()
		minifier.AddFunc("text/html", html.Minify)
	})
	return minifier
}

// minifyHTML compacts a rendered preview fragment. Content without
// markup only has its whitespace collapsed; on minifier errors the
// input is returned unchanged.
func minifyHTML(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return collapseWhitespace(fragment)
	}

	minified, err := getMinifier().String("text/html", fragment)
	if err != nil {
		return fragment
	}
	return minified
}

// collapseWhitespace trims the ends and folds internal runs of
// whitespace to single spaces
func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(text)), " ")
}
