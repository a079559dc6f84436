package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/promptml/promptml"
)

// Check lists the recognized element ranges of a document with their
// source lines, then a per-line count. Exits nonzero when nothing is
// recognized so scripts can gate on it.
func Check(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("file required: pml check <file>")
	}

	source, err := readSource(args[0])
	if err != nil {
		return err
	}

	ranges := promptml.DetectElements(newParser().Parse(source))
	if len(ranges) == 0 {
		return fmt.Errorf("no recognized elements in %s", args[0])
	}

	perLine := make(map[int]int)
	for _, r := range ranges {
		line := lineOf(source, r.Start)
		perLine[line]++
		fmt.Printf("<%s> [%d:%d) line %d\n", r.TagName, r.Start, r.End, line)
	}

	lines := make([]int, 0, len(perLine))
	for line := range perLine {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	fmt.Println()
	for _, line := range lines {
		fmt.Printf("line %d: %d element(s)\n", line, perLine[line])
	}
	fmt.Printf("%d element(s) total\n", len(ranges))
	return nil
}

// lineOf converts a byte offset into a 1-based line number
func lineOf(source string, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return 1 + strings.Count(source[:offset], "\n")
}
