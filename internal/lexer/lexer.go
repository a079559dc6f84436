package lexer

import (
	"fmt"
	"strings"
)

// Category classifies a token by its structural role in prompt markup
type Category uint8

const (
	Comment Category = iota
	TemplateOpen
	TemplateClose
	TagClosingOpen
	TagSelfClose
	TagOpen
	TagClose
	Equals
	DoubleQuote
	SingleQuote
	Backslash
	Word
	Whitespace
	Other
)

var categoryNames = [...]string{
	Comment:        "comment",
	TemplateOpen:   "template-open",
	TemplateClose:  "template-close",
	TagClosingOpen: "tag-closing-open",
	TagSelfClose:   "tag-self-close",
	TagOpen:        "tag-open",
	TagClose:       "tag-close",
	Equals:         "equals",
	DoubleQuote:    "double-quote",
	SingleQuote:    "single-quote",
	Backslash:      "backslash",
	Word:           "word-run",
	Whitespace:     "whitespace-run",
	Other:          "other-run",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", c)
}

// Token is one classified span of source text. Start and End are byte
// offsets into the original input, half-open. Line is 1-based; Column is
// the 1-based rune count since the last newline.
type Token struct {
	Category Category
	Text     string
	Start    int
	End      int
	Line     int
	Column   int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q [%d:%d) at %d:%d", t.Category, t.Text, t.Start, t.End, t.Line, t.Column)
}

// Tokenize splits input into classified tokens whose spans are contiguous,
// strictly increasing, and cover every byte of the input. It never fails:
// tag soup is a structural concern left to the tree builder, so the error
// list is empty for every input. Callers that only need tokens may ignore it.
func Tokenize(input string) ([]Token, []error) {
	var tokens []Token
	pos := 0
	line, col := 1, 1

	// emit appends the token spanning [pos, end) and advances the cursor
	// and the line/column counters over its text.
	emit := func(cat Category, end int) {
		text := input[pos:end]
		tokens = append(tokens, Token{
			Category: cat,
			Text:     text,
			Start:    pos,
			End:      end,
			Line:     line,
			Column:   col,
		})
		for _, r := range text {
			if r == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		pos = end
	}

	for pos < len(input) {
		rest := input[pos:]
		switch {
		case strings.HasPrefix(rest, "<!--"):
			// Comments run greedily to the first terminator, or to the end
			// of input when unterminated, and are always a single token.
			if i := strings.Index(rest[4:], "-->"); i >= 0 {
				emit(Comment, pos+4+i+3)
			} else {
				emit(Comment, len(input))
			}
		case strings.HasPrefix(rest, "{{"):
			emit(TemplateOpen, pos+2)
		case strings.HasPrefix(rest, "}}"):
			emit(TemplateClose, pos+2)
		case strings.HasPrefix(rest, "</"):
			emit(TagClosingOpen, pos+2)
		case strings.HasPrefix(rest, "/>"):
			emit(TagSelfClose, pos+2)
		case rest[0] == '<':
			emit(TagOpen, pos+1)
		case rest[0] == '>':
			emit(TagClose, pos+1)
		case rest[0] == '=':
			emit(Equals, pos+1)
		case rest[0] == '"':
			emit(DoubleQuote, pos+1)
		case rest[0] == '\'':
			emit(SingleQuote, pos+1)
		case rest[0] == '\\':
			emit(Backslash, pos+1)
		case isSpaceChar(rest[0]):
			end := pos + 1
			for end < len(input) && isSpaceChar(input[end]) {
				end++
			}
			emit(Whitespace, end)
		case isWordChar(rest[0]):
			end := pos + 1
			for end < len(input) && isWordChar(input[end]) {
				end++
			}
			emit(Word, end)
		default:
			// Maximal run of everything else: punctuation, symbols, and
			// non-ASCII scripts. The run keeps going through '>' and '/',
			// so a delimiter immediately following punctuation is absorbed
			// into the run. Known quirk, kept deliberately.
			end := pos + 1
			for end < len(input) && !breaksOtherRun(input[end]) {
				end++
			}
			emit(Other, end)
		}
	}

	return tokens, nil
}

// isWordChar reports whether b belongs to the word-run class: ASCII
// letters, digits, hyphen, underscore.
func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' ||
		b >= 'A' && b <= 'Z' ||
		b >= '0' && b <= '9' ||
		b == '-' || b == '_'
}

// isSpaceChar reports whether b is ASCII whitespace. Unicode spaces fall
// into other-runs along with the rest of the non-ASCII plane.
func isSpaceChar(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// breaksOtherRun reports whether b ends an in-progress other-run. '>' and
// '/' are intentionally absent so they extend the run; at a fresh token
// start they are still matched as their own categories first.
func breaksOtherRun(b byte) bool {
	if isSpaceChar(b) || isWordChar(b) {
		return true
	}
	switch b {
	case '<', '{', '}', '"', '\'', '=', '\\':
		return true
	}
	return false
}
