package commands

import (
	"fmt"

	"github.com/promptml/promptml/internal/diff"
)

// Diff compares the parsed trees of two documents and prints every
// structural change. Identical trees exit zero, differing trees nonzero.
func Diff(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("two files required: pml diff <file1> <file2>")
	}

	srcA, err := readSource(args[0])
	if err != nil {
		return err
	}
	srcB, err := readSource(args[1])
	if err != nil {
		return err
	}

	p := newParser()
	changes := diff.Compare(p.Parse(srcA), p.Parse(srcB))
	if len(changes) == 0 {
		fmt.Println("trees are identical")
		return nil
	}

	for _, c := range changes {
		fmt.Printf("%s  %s: %q -> %q\n", c.Path, c.Field, c.A, c.B)
	}
	return fmt.Errorf("documents differ: %d %s change(s)", len(changes), diff.Classify(changes))
}
