package tilo

import (
	"strings"
	"unicode"
)

// Highlight classes, one per rendered character.
const (
	hlNormal Class = iota
	hlComment
	hlMLComment
	hlKeyword1
	hlKeyword2
	hlString
	hlNumber
	hlMatch
)

// Class classifies a single rendered character for coloring.
type Class byte

// State is the lexical state carried across line boundaries. Only multi-line
// comments span lines; strings and line comments always end with their line.
type State int

const (
	stateNormal State = iota
	stateInComment
)

// HighlightResult is one line's classification. Spans holds exactly one
// Class per rendered character. Initial records the carry state the line was
// highlighted under; a cached result is valid only while Initial still equals
// the previous line's Ending.
type HighlightResult struct {
	Spans   []Class
	Initial State
	Ending  State
}

// Ruleset is the per-language configuration: which file extensions select
// it and which identifiers are keywords. Immutable once selected.
type Ruleset struct {
	FileExtensions    []string
	PrimaryKeywords   map[string]bool
	SecondaryKeywords map[string]bool
}

// Highlight classifies one line of rendered text, resuming from the carry
// state left by the previous line. Deterministic and side-effect free.
func (rs *Ruleset) Highlight(carry State, line []rune) HighlightResult {
	res := HighlightResult{
		Spans:   make([]Class, 0, len(line)),
		Initial: carry,
		Ending:  stateNormal,
	}

	i := 0
	if carry == stateInComment {
		var closed bool
		i, closed = scanComment(&res, line, 0)
		if !closed {
			res.Ending = stateInComment
			return res
		}
	}

	for i < len(line) {
		c := line[i]
		switch {
		case unicode.IsSpace(c):
			res.Spans = append(res.Spans, hlNormal)
			i++

		case unicode.IsDigit(c):
			res.Spans = append(res.Spans, hlNumber)
			i++

		case c == '.' && i+1 < len(line) && unicode.IsDigit(line[i+1]):
			res.Spans = append(res.Spans, hlNumber)
			i++

		case unicode.IsLetter(c):
			start := i
			for i < len(line) && isWordRune(line[i]) {
				i++
			}
			token := string(line[start:i])
			class := hlNormal
			if rs.PrimaryKeywords[token] {
				class = hlKeyword1
			} else if rs.SecondaryKeywords[token] {
				class = hlKeyword2
			}
			for j := start; j < i; j++ {
				res.Spans = append(res.Spans, class)
			}

		case c == '\'' || c == '"':
			i = scanString(&res, line, i)

		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			for ; i < len(line); i++ {
				res.Spans = append(res.Spans, hlComment)
			}

		case c == '/' && i+1 < len(line) && line[i+1] == '*':
			res.Spans = append(res.Spans, hlMLComment, hlMLComment)
			var closed bool
			i, closed = scanComment(&res, line, i+2)
			if !closed {
				res.Ending = stateInComment
				return res
			}

		default:
			res.Spans = append(res.Spans, hlNormal)
			i++
		}
	}

	return res
}

func isWordRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'
}

// scanComment consumes multi-line comment characters starting at i until the
// two-character terminator is found (consuming it) or the line ends. closed
// reports whether the terminator was seen.
func scanComment(res *HighlightResult, line []rune, i int) (next int, closed bool) {
	for i < len(line) {
		if line[i] == '*' && i+1 < len(line) && line[i+1] == '/' {
			res.Spans = append(res.Spans, hlMLComment, hlMLComment)
			return i + 2, true
		}
		res.Spans = append(res.Spans, hlMLComment)
		i++
	}
	return i, false
}

// scanString consumes a quoted string starting at the opening quote at i.
// A backslash always consumes the following character, so an escaped quote
// cannot terminate the string. Unterminated strings run to end of line.
func scanString(res *HighlightResult, line []rune, i int) int {
	quote := line[i]
	res.Spans = append(res.Spans, hlString)
	i++
	for i < len(line) {
		c := line[i]
		res.Spans = append(res.Spans, hlString)
		i++
		if c == '\\' && i < len(line) {
			res.Spans = append(res.Spans, hlString)
			i++
			continue
		}
		if c == quote {
			break
		}
	}
	return i
}

func colorFor(c Class) int {
	switch c {
	case hlComment, hlMLComment:
		return 36 // cyan
	case hlKeyword1:
		return 33 // yellow
	case hlKeyword2:
		return 32 // green
	case hlString:
		return 35 // magenta
	case hlNumber:
		return 31 // red
	case hlMatch:
		return 34 // blue
	default:
		return 39 // default foreground
	}
}

func stringSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Rulesets is the built-in language database.
var Rulesets = []Ruleset{
	{
		FileExtensions: []string{".rs"},
		PrimaryKeywords: stringSet(
			"as", "break", "const", "continue", "crate", "else",
			"enum", "extern", "false", "fn", "for", "if", "impl",
			"in", "let", "loop", "match", "mod", "move", "mut", "pub",
			"ref", "return", "Self", "self", "static", "struct",
			"trait", "true", "type", "unsafe", "use", "where", "while",
		),
		SecondaryKeywords: stringSet(
			"float", "str", "char", "bool", "f32", "f64",
			"u8", "u16", "u32", "u64", "usize",
			"i8", "i16", "i32", "i64", "isize",
		),
	},
	{
		FileExtensions: []string{".go"},
		PrimaryKeywords: stringSet(
			"break", "case", "chan", "const", "continue", "default", "defer",
			"else", "fallthrough", "for", "func", "go", "goto", "if",
			"import", "interface", "map", "package", "range", "return",
			"select", "struct", "switch", "type", "var",
			"append", "cap", "close", "copy", "delete", "len", "make",
			"new", "panic", "print", "println", "recover",
		),
		SecondaryKeywords: stringSet(
			"bool", "byte", "complex64", "complex128", "error",
			"float32", "float64", "int", "int8", "int16", "int32",
			"int64", "rune", "string", "uint", "uint8", "uint16",
			"uint32", "uint64", "uintptr", "any",
			"true", "false", "nil", "iota",
		),
	},
	{
		FileExtensions: []string{".c", ".h", ".cpp", ".hpp", ".cc"},
		PrimaryKeywords: stringSet(
			"auto", "break", "case", "continue", "default", "do", "else", "enum",
			"extern", "for", "goto", "if", "register", "return", "sizeof", "static",
			"struct", "switch", "typedef", "union", "volatile", "while", "NULL",
			"class", "constexpr", "delete", "explicit", "friend", "inline",
			"namespace", "new", "noexcept", "nullptr", "operator", "private",
			"protected", "public", "template", "this", "throw", "try",
			"typename", "virtual",
		),
		SecondaryKeywords: stringSet(
			"int", "long", "double", "float", "char", "unsigned", "signed",
			"void", "short", "const", "bool",
		),
	},
}

// SelectRuleset picks the syntax scheme for a file name by extension, or nil
// when no scheme matches.
func SelectRuleset(filename string) *Ruleset {
	for i := range Rulesets {
		for _, ext := range Rulesets[i].FileExtensions {
			if strings.HasSuffix(filename, ext) {
				return &Rulesets[i]
			}
		}
	}
	return nil
}
