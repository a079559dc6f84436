package commands

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/promptml/promptml"
)

// Render parses one document and prints its rendered text. Variable
// values layer up: meta "vars" directives, then --vars, then --set.
func Render(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("file required: pml render <file> [--vars <file.yaml>] [--set name=value]... [--strict]")
	}

	file := args[0]
	varsFile := ""
	strict := false
	var sets []string

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--vars":
			if i+1 >= len(args) {
				return fmt.Errorf("--vars requires a file argument")
			}
			varsFile = args[i+1]
			i++
		case "--set":
			if i+1 >= len(args) {
				return fmt.Errorf("--set requires a name=value argument")
			}
			sets = append(sets, args[i+1])
			i++
		case "--strict":
			strict = true
		default:
			return fmt.Errorf("unknown option: %s", args[i])
		}
	}

	source, err := readSource(file)
	if err != nil {
		return err
	}
	root := newParser().Parse(source)

	vars := promptml.Context{}

	directives, err := promptml.MetaDirectives(root)
	if err != nil {
		return fmt.Errorf("invalid meta block in %s: %w", file, err)
	}
	if seed, ok := directives["vars"].(map[string]any); ok {
		for k, v := range seed {
			vars[k] = v
		}
	}

	if varsFile != "" {
		loaded, err := loadVarsFile(varsFile)
		if err != nil {
			return err
		}
		for k, v := range loaded {
			vars[k] = v
		}
	}

	for _, pair := range sets {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid --set argument %q, expected name=value", pair)
		}
		vars[name] = value
	}

	out, err := promptml.NewRenderer(promptml.WithStrictVars(strict)).Render(root, vars)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", file, err)
	}

	fmt.Println(out)
	return nil
}

// loadVarsFile reads a YAML mapping of variable values
func loadVarsFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vars file %s: %w", path, err)
	}
	vars := make(map[string]any)
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("invalid vars file %s: %w", path, err)
	}
	return vars, nil
}
