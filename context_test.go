package promptml

import (
	"reflect"
	"testing"
)

func TestContextResolve(t *testing.T) {
	type profile struct {
		Name string
		Age  int
		tag  string
	}
	ctx := Context{
		"greeting": "hello",
		"count":    3,
		"user": map[string]any{
			"name": "Ada",
			"prefs": map[string]string{
				"lang": "en",
			},
		},
		"profile": &profile{Name: "Grace", Age: 46, tag: "x"},
		"missing": nil,
	}

	tests := []struct {
		name string
		path string
		want any
		ok   bool
	}{
		{name: "top level key", path: "greeting", want: "hello", ok: true},
		{name: "non-string value", path: "count", want: 3, ok: true},
		{name: "nested map", path: "user.name", want: "Ada", ok: true},
		{name: "doubly nested typed map", path: "user.prefs.lang", want: "en", ok: true},
		{name: "struct field through pointer", path: "profile.Name", want: "Grace", ok: true},
		{name: "leading dot tolerated", path: ".user.name", want: "Ada", ok: true},
		{name: "surrounding space trimmed", path: "  greeting  ", want: "hello", ok: true},
		{name: "unknown key", path: "nope", ok: false},
		{name: "unknown nested key", path: "user.email", ok: false},
		{name: "descend through scalar", path: "greeting.more", ok: false},
		{name: "nil intermediate", path: "missing.x", ok: false},
		{name: "unexported struct field", path: "profile.tag", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ctx.Resolve(tt.path)
			if ok != tt.ok {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestContextResolveWholeContext(t *testing.T) {
	ctx := Context{"a": 1}
	for _, path := range []string{"", ".", "  "} {
		got, ok := ctx.Resolve(path)
		if !ok {
			t.Fatalf("Resolve(%q) not ok", path)
		}
		m, isMap := got.(map[string]any)
		if !isMap || m["a"] != 1 {
			t.Errorf("Resolve(%q) = %v, want the whole context map", path, got)
		}
	}
}
