package server

import (
	"strings"
	"testing"

	"github.com/promptml/promptml"
)

func renderSource(t *testing.T, source string, vars promptml.Context) string {
	t.Helper()
	r := newPreviewRenderer(nil)
	p := promptml.NewParser(promptml.BuildRegistry(r))
	out, err := r.Render(p.Parse(source), vars)
	if err != nil {
		t.Fatalf("failed to render %q: %v", source, err)
	}
	return out
}

func TestPreviewComponents(t *testing.T) {
	tests := []struct {
		name   string
		source string
		vars   promptml.Context
		want   []string
	}{
		{
			name:   "task block with fixed heading",
			source: "<task>do it</task>",
			want:   []string{`<section class="pml-task">`, "<h3 class=\"pml-heading\">Task</h3>", "do it", "</section>"},
		},
		{
			name:   "title attribute joins the heading",
			source: `<task title="Rollout">go</task>`,
			want:   []string{"Task: Rollout", "go"},
		},
		{
			name:   "section heading comes from title alone",
			source: `<section title="Notes">text</section>`,
			want:   []string{`<section class="pml-section">`, ">Notes</h3>", "text"},
		},
		{
			name:   "document without title has no heading",
			source: "<document>body</document>",
			want:   []string{`<article class="pml-document">body</article>`},
		},
		{
			name:   "list and items",
			source: "<list><item>a</item><item>b</item></list>",
			want:   []string{`<ul class="pml-list">`, `<li class="pml-item">a</li>`, `<li class="pml-item">b</li>`, "</ul>"},
		},
		{
			name:   "image with src",
			source: `<image src="http://x/y.png" alt="pic"/>`,
			want:   []string{`<img class="pml-image" src="http://x/y.png" alt="pic">`},
		},
		{
			name:   "image without src renders a placeholder",
			source: "<image/>",
			want:   []string{`<span class="pml-image-missing">[image]</span>`},
		},
		{
			name:   "let feeds later templates",
			source: `pre <let name="who" value="ops"/><task>ping {{who}}</task>`,
			vars:   promptml.Context{},
			want:   []string{"ping ops"},
		},
		{
			name:   "prose is escaped",
			source: "a <b> & c",
			want:   []string{"a &lt;b&gt; &amp; c"},
		},
		{
			name:   "catalog alias renders like its target",
			source: "<tip>breathe</tip>",
			want:   []string{`<aside class="pml-hint">`, ">Hint</h3>", "breathe"},
		},
		{
			name:   "resolved variables are escaped",
			source: "x <task>{{v}}</task>",
			vars:   promptml.Context{"v": "<script>"},
			want:   []string{"&lt;script&gt;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSource(t, tt.source, tt.vars)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("output %q missing %q", got, want)
				}
			}
		})
	}
}

func TestPreviewLetScopedToContext(t *testing.T) {
	vars := promptml.Context{}
	renderSource(t, `pre <let name="who" value="ops"/>`, vars)
	if got := vars["who"]; got != "ops" {
		t.Errorf("let did not write through to the context: %v", got)
	}
}
