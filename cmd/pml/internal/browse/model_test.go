package browse

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/promptml/promptml/internal/store"
)

func testSnippets() []*store.Snippet {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []*store.Snippet{
		{Name: "deploy-checklist", Source: "<task>ship {{what}}</task>", UpdatedAt: now},
		{Name: "release_notes", Source: "<meta>vars: {v: 1.2}</meta>notes for {{v}}", UpdatedAt: now},
	}
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "deploy-checklist", want: "Deploy Checklist"},
		{in: "release_notes", want: "Release Notes"},
		{in: "plain", want: "Plain"},
	}

	for _, tt := range tests {
		if got := displayName(tt.in); got != tt.want {
			t.Errorf("displayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestModelInitialView(t *testing.T) {
	m := New(testSnippets())
	if got := m.View(); !strings.Contains(got, "Loading") {
		t.Errorf("view before sizing = %q, want loading placeholder", got)
	}

	m = sized(t, m)
	view := m.View()
	for _, want := range []string{"Snippets", "Deploy Checklist", "ship {{what}}"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelSelectionUpdatesPreview(t *testing.T) {
	m := sized(t, New(testSnippets()))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "notes for 1.2") {
		t.Errorf("preview did not follow selection, view:\n%s", view)
	}
}

func TestModelQuitKeys(t *testing.T) {
	m := sized(t, New(testSnippets()))

	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("key %s produced no command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("key %s did not quit", key)
		}
	}
}
