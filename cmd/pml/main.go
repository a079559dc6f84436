package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/promptml/promptml/cmd/pml/commands"
)

// Version information (can be overridden at build time with -ldflags)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error

	switch command {
	case "parse":
		err = commands.Parse(args)
	case "tokens":
		err = commands.Tokens(args)
	case "check":
		err = commands.Check(args)
	case "render":
		err = commands.Render(args)
	case "diff":
		err = commands.Diff(args)
	case "snippets":
		err = commands.Snippets(args)
	case "browse":
		err = commands.Browse(args)
	case "serve":
		err = commands.Serve(args)
	case "version", "--version", "-v":
		printVersion()
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("pml version %s\n", version)

	if info, ok := debug.ReadBuildInfo(); ok {
		var vcsRevision string
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				vcsRevision = setting.Value
			}
		}

		if commit != "unknown" {
			fmt.Printf("commit: %s\n", commit)
		} else if vcsRevision != "" {
			if len(vcsRevision) > 12 {
				vcsRevision = vcsRevision[:12]
			}
			fmt.Printf("commit: %s\n", vcsRevision)
		}

		if date != "unknown" {
			fmt.Printf("built: %s\n", date)
		}

		fmt.Printf("go: %s\n", info.GoVersion)
	}
}

func printUsage() {
	fmt.Println("promptml CLI")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pml parse <file>                          Print the parsed tree as JSON")
	fmt.Println("  pml tokens <file>                         Print the token table")
	fmt.Println("  pml check <file>                          List recognized element ranges")
	fmt.Println("  pml render <file> [options]               Render the document to text")
	fmt.Println("  pml diff <file1> <file2>                  Compare two parsed trees")
	fmt.Println("  pml snippets <command>                    Manage the snippet library")
	fmt.Println("  pml browse [--db <path>]                  Browse snippets interactively")
	fmt.Println("  pml serve [--addr <addr>] [--db <path>]   Start the live preview server")
	fmt.Println("  pml version                               Show version information")
	fmt.Println()
	fmt.Println("Render Options:")
	fmt.Println("  --vars <file.yaml>   Load variable values from a YAML mapping")
	fmt.Println("  --set <name=value>   Set one variable (repeatable, wins over --vars)")
	fmt.Println("  --strict             Fail on unresolved template variables")
	fmt.Println()
	fmt.Println("Snippet Commands:")
	fmt.Println("  pml snippets list                         List stored snippets")
	fmt.Println("  pml snippets add <name> <file>            Add or replace a snippet")
	fmt.Println("  pml snippets show <name>                  Print a snippet's source")
	fmt.Println("  pml snippets rm <name>                    Remove a snippet")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  pml parse prompt.pml")
	fmt.Println("  pml render prompt.pml --set region=eu-west --strict")
	fmt.Println("  pml diff before.pml after.pml")
	fmt.Println("  pml snippets add deploy prompt.pml")
	fmt.Println("  pml serve --addr :8899 --db pml.db")
	fmt.Println()
	fmt.Println("Snippet commands accept --db <path> (default pml.db).")
}
