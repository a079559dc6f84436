package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	cat := Default()
	if cat == nil {
		t.Fatal("Default() returned nil")
	}
	if cat != Default() {
		t.Error("Default() should return the same parsed catalog")
	}

	for _, name := range []string{"task", "role", "hint", "example", "examples",
		"document", "section", "list", "item", "table", "image",
		"output-format", "stylesheet", "let"} {
		if _, ok := cat.Lookup(name); !ok {
			t.Errorf("default catalog missing %q", name)
		}
	}

	// aliases resolve to their component
	comp, ok := cat.Lookup("tip")
	if !ok || comp.Name != "hint" {
		t.Errorf("Lookup(tip) = %v, %v, want the hint component", comp, ok)
	}
	if comp, ok := cat.Lookup("FORMAT"); !ok || comp.Name != "output-format" {
		t.Errorf("Lookup(FORMAT) = %v, %v, want output-format", comp, ok)
	}
}

func TestDefaultCatalogRegistry(t *testing.T) {
	reg := Default().Registry()

	for _, name := range []string{"task", "doc", "format", "text", "meta"} {
		if !reg.IsRecognized(name) {
			t.Errorf("registry does not recognize %q", name)
		}
	}
	if got, ok := reg.Canonical("doc"); !ok || got != "document" {
		t.Errorf("Canonical(doc) = %q, %v, want document", got, ok)
	}
}

func TestLoadBytes(t *testing.T) {
	cat, err := LoadBytes([]byte(`
version: 1
components:
  - name: task
    description: The work to do.
  - name: aside
    aliases: [note]
    description: Side commentary.
`))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if len(cat.Entries) != 2 {
		t.Fatalf("components = %d, want 2", len(cat.Entries))
	}
	if comp, ok := cat.Lookup("note"); !ok || comp.Name != "aside" {
		t.Errorf("Lookup(note) = %v, %v, want aside", comp, ok)
	}
}

func TestLoadBytesInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "malformed yaml",
			yaml: "version: [",
			want: "failed to parse catalog",
		},
		{
			name: "missing version",
			yaml: "components:\n  - name: task\n    description: d\n",
			want: "version",
		},
		{
			name: "no components",
			yaml: "version: 1\ncomponents: []\n",
			want: "components",
		},
		{
			name: "missing description",
			yaml: "version: 1\ncomponents:\n  - name: task\n",
			want: "description",
		},
		{
			name: "bad name grammar",
			yaml: "version: 1\ncomponents:\n  - name: Bad_Name\n    description: d\n",
			want: "lower-case",
		},
		{
			name: "reserved name",
			yaml: "version: 1\ncomponents:\n  - name: text\n    description: d\n",
			want: "reserved",
		},
		{
			name: "duplicate name",
			yaml: "version: 1\ncomponents:\n  - name: task\n    description: a\n  - name: task\n    description: b\n",
			want: "duplicate",
		},
		{
			name: "alias shadows another component",
			yaml: "version: 1\ncomponents:\n  - name: task\n    description: a\n  - name: hint\n    aliases: [task]\n    description: b\n",
			want: "duplicate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.yaml))
			if err == nil {
				t.Fatal("LoadBytes succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadBytesErrorTypes(t *testing.T) {
	_, err := LoadBytes([]byte("version: 1\ncomponents:\n  - name: task\n    description: a\n  - name: task\n    description: b\n"))
	var dup ErrDuplicateName
	if !errors.As(err, &dup) {
		t.Fatalf("error = %T, want ErrDuplicateName", err)
	}
	if dup.Name != "task" {
		t.Errorf("duplicate name = %q, want task", dup.Name)
	}

	_, err = LoadBytes([]byte("version: 1\ncomponents:\n  - name: text\n    description: d\n"))
	var inv ErrInvalidComponent
	if !errors.As(err, &inv) {
		t.Fatalf("error = %T, want ErrInvalidComponent", err)
	}
	if inv.Index == nil || *inv.Index != 0 {
		t.Errorf("invalid component index = %v, want 0", inv.Index)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte("version: 1\ncomponents:\n  - name: task\n    description: d\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := cat.Lookup("task"); !ok {
		t.Error("loaded catalog missing task")
	}

	_, err = Load(filepath.Join(dir, "absent.yaml"))
	if err == nil {
		t.Fatal("Load succeeded on missing file")
	}
	if !strings.Contains(err.Error(), "absent.yaml") {
		t.Errorf("error = %v, want the path included", err)
	}
}

func TestCatalogComponentsProvider(t *testing.T) {
	cat, err := LoadBytes([]byte("version: 1\ncomponents:\n  - name: task\n    aliases: [todo, job]\n    description: d\n"))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}

	infos := cat.Components()
	if len(infos) != 1 || infos[0].Name != "task" || len(infos[0].Aliases) != 2 {
		t.Fatalf("Components() = %v, want task with two aliases", infos)
	}
}

func TestNamesAndAliases(t *testing.T) {
	cat, err := LoadBytes([]byte(`
version: 1
components:
  - name: task
    description: The work to do.
  - name: document
    aliases: [doc]
    description: A source document.
`))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}

	if got := cat.Names(); !reflect.DeepEqual(got, []string{"task", "document"}) {
		t.Errorf("Names = %v, want [task document]", got)
	}
	if got := cat.Aliases(); !reflect.DeepEqual(got, map[string]string{"doc": "document"}) {
		t.Errorf("Aliases = %v, want doc->document", got)
	}
}
