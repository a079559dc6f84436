package server

import (
	"strings"
	"testing"
)

func TestMinifyHTML(t *testing.T) {
	input := "<div class=\"pml-task\">\n  <p>a</p>\n  <p>b</p>\n</div>"
	got := minifyHTML(input)

	if len(got) >= len(input) {
		t.Errorf("minified output not smaller: %d vs %d bytes", len(got), len(input))
	}
	if strings.Contains(got, "\n") {
		t.Errorf("minified output still has newlines: %q", got)
	}
	for _, want := range []string{"<p>a</p>", "<p>b</p>", "pml-task"} {
		if !strings.Contains(got, want) {
			t.Errorf("minified output missing %q: %q", want, got)
		}
	}
}

func TestMinifyHTMLPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "collapses runs", input: "  a \n\t b  ", want: "a b"},
		{name: "already tight", input: "a b", want: "a b"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := minifyHTML(tt.input); got != tt.want {
				t.Errorf("minifyHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
