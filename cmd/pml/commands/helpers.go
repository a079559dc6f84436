package commands

import (
	"fmt"
	"os"

	"github.com/promptml/promptml"
	"github.com/promptml/promptml/internal/catalog"
)

// defaultDB is where snippet commands look when --db is not given
const defaultDB = "pml.db"

// newParser builds a parser over the stock component catalog
func newParser() *promptml.Parser {
	return promptml.NewParser(promptml.BuildRegistry(catalog.Default()))
}

// readSource loads one document argument
func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// dbPath extracts a --db flag, returning the remaining args
func dbPath(args []string) (string, []string) {
	path := defaultDB
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == "--db" && i+1 < len(args) {
			path = args[i+1]
			i++
			continue
		}
		rest = append(rest, args[i])
	}
	return path, rest
}
