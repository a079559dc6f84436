package commands

import (
	"fmt"

	"github.com/promptml/promptml/internal/lexer"
)

// Tokens prints the classified token table of one document
func Tokens(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("file required: pml tokens <file>")
	}

	source, err := readSource(args[0])
	if err != nil {
		return err
	}

	tokens, _ := lexer.Tokenize(source)
	for _, tok := range tokens {
		fmt.Println(tok)
	}
	fmt.Printf("%d tokens, %d bytes\n", len(tokens), len(source))
	return nil
}
