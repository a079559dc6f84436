package commands

import (
	"encoding/json"
	"fmt"
)

// Parse prints the parsed tree of one document as indented JSON
func Parse(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("file required: pml parse <file>")
	}

	source, err := readSource(args[0])
	if err != nil {
		return err
	}

	root := newParser().Parse(source)
	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}

	fmt.Println(string(out))
	return nil
}
