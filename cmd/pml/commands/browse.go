package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/promptml/promptml/cmd/pml/internal/browse"
	"github.com/promptml/promptml/internal/store"
)

// Browse opens the interactive snippet browser
func Browse(args []string) error {
	db, args := dbPath(args)
	if len(args) > 0 {
		return fmt.Errorf("unknown option: %s", args[0])
	}

	st, err := store.Open(db)
	if err != nil {
		return err
	}
	defer st.Close()

	snippets, err := st.List(context.Background())
	if err != nil {
		return err
	}
	if len(snippets) == 0 {
		return fmt.Errorf("no snippets stored in %s, add one with: pml snippets add <name> <file>", db)
	}

	program := tea.NewProgram(browse.New(snippets), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}
