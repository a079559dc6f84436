package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/promptml/promptml"
	"github.com/promptml/promptml/internal/catalog"
	"github.com/promptml/promptml/internal/store"
)

// snippetItem implements list.Item for the snippet list
type snippetItem struct {
	snippet *store.Snippet
}

func (i snippetItem) Title() string { return displayName(i.snippet.Name) }
func (i snippetItem) Description() string {
	return fmt.Sprintf("%d bytes, updated %s",
		len(i.snippet.Source), i.snippet.UpdatedAt.Format("2006-01-02 15:04"))
}
func (i snippetItem) FilterValue() string { return i.snippet.Name }

// displayName turns a stored snippet key like "deploy-checklist" into a
// title-cased label
func displayName(name string) string {
	spaced := strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(spaced)
}

// Model is the Bubbletea model for the snippet browser: a filterable
// list on the left, the rendered preview of the selection on the right
type Model struct {
	width  int
	height int
	ready  bool

	list     list.Model
	viewport viewport.Model

	parser   *promptml.Parser
	renderer *promptml.Renderer

	current string
}

// New creates a browser over the stored snippets
func New(snippets []*store.Snippet) Model {
	items := make([]list.Item, len(snippets))
	for i, snip := range snippets {
		items[i] = snippetItem{snippet: snip}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedItemStyle
	delegate.Styles.SelectedDesc = selectedItemStyle.Bold(false).Foreground(colorMuted)

	snippetList := list.New(items, delegate, 0, 0)
	snippetList.Title = "Snippets"
	snippetList.Styles.Title = titleStyle
	snippetList.SetShowHelp(false)
	snippetList.SetFilteringEnabled(true)

	return Model{
		list:     snippetList,
		parser:   promptml.NewParser(promptml.BuildRegistry(catalog.Default())),
		renderer: promptml.NewRenderer(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// while the list filter is open every key belongs to it
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "pgup", "pgdown", "ctrl+u", "ctrl+d":
				// page keys scroll the preview, arrows move the list
				m.viewport, cmd = m.viewport.Update(msg)
				return m, cmd
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		listWidth := msg.Width / 3
		if listWidth < 28 {
			listWidth = 28
		}
		previewWidth := msg.Width - listWidth - 4
		contentHeight := msg.Height - 2

		m.list.SetSize(listWidth, contentHeight)
		if !m.ready {
			m.viewport = viewport.New(previewWidth, contentHeight-2)
			m.ready = true
		} else {
			m.viewport.Width = previewWidth
			m.viewport.Height = contentHeight - 2
		}
		m.refreshPreview()
	}

	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)

	// selection moves re-render the preview pane
	if item, ok := m.list.SelectedItem().(snippetItem); ok && item.snippet.Name != m.current {
		m.refreshPreview()
	}

	if _, isKey := msg.(tea.KeyMsg); !isKey {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// refreshPreview renders the selected snippet into the viewport
func (m *Model) refreshPreview() {
	item, ok := m.list.SelectedItem().(snippetItem)
	if !ok {
		m.viewport.SetContent("")
		m.current = ""
		return
	}

	m.current = item.snippet.Name
	m.viewport.SetContent(m.renderSnippet(item.snippet))
	m.viewport.GotoTop()
}

// renderSnippet parses and renders one snippet as plain text, variables
// seeded from its meta "vars" directives
func (m *Model) renderSnippet(snip *store.Snippet) string {
	root := m.parser.Parse(snip.Source)

	vars := promptml.Context{}
	directives, err := promptml.MetaDirectives(root)
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("meta error: %v", err))
	}
	if seed, ok := directives["vars"].(map[string]any); ok {
		for k, v := range seed {
			vars[k] = v
		}
	}

	out, err := m.renderer.Render(root, vars)
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("render error: %v", err))
	}

	header := headingStyle.Render(displayName(snip.Name))
	body := lipgloss.NewStyle().Width(m.viewport.Width).Render(out)
	return header + "\n\n" + body
}

// View implements tea.Model
func (m Model) View() string {
	if !m.ready {
		return "\n  Loading snippets..."
	}

	preview := previewBoxStyle.
		Width(m.viewport.Width).
		Height(m.viewport.Height).
		Render(m.viewport.View())

	main := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), preview)
	help := helpStyle.Render("↑/↓ select · / filter · q quit")
	return main + "\n" + help
}
