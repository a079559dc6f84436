package commands

import (
	"context"
	"fmt"

	"github.com/promptml/promptml/internal/store"
)

// Snippets manages the snippet library behind browse and serve
func Snippets(args []string) error {
	db, args := dbPath(args)
	if len(args) < 1 {
		return fmt.Errorf("command required: list, add <name> <file>, show <name>, or rm <name>")
	}

	st, err := store.Open(db)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()

	switch args[0] {
	case "list":
		snippets, err := st.List(ctx)
		if err != nil {
			return err
		}
		if len(snippets) == 0 {
			fmt.Println("No snippets stored. Add one with: pml snippets add <name> <file>")
			return nil
		}
		for _, snip := range snippets {
			fmt.Printf("%-24s %6d bytes  updated %s\n",
				snip.Name, len(snip.Source), snip.UpdatedAt.Format("2006-01-02 15:04"))
		}

	case "add":
		if len(args) < 3 {
			return fmt.Errorf("name and file required: pml snippets add <name> <file>")
		}
		source, err := readSource(args[2])
		if err != nil {
			return err
		}
		snip, err := st.Put(ctx, args[1], source)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Saved %s (%d bytes)\n", snip.Name, len(snip.Source))

	case "show":
		if len(args) < 2 {
			return fmt.Errorf("name required: pml snippets show <name>")
		}
		snip, err := st.Get(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Print(snip.Source)
		if len(snip.Source) > 0 && snip.Source[len(snip.Source)-1] != '\n' {
			fmt.Println()
		}

	case "rm":
		if len(args) < 2 {
			return fmt.Errorf("name required: pml snippets rm <name>")
		}
		if err := st.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Printf("✅ Removed %s\n", args[1])

	default:
		return fmt.Errorf("unknown command: %s (expected: list, add, show, rm)", args[0])
	}

	return nil
}
