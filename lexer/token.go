package lexer

import "fmt"

// Kind identifies the type of a token
type Kind int

const (
	EOF Kind = iota
	At
	LParen
	RParen
	Comma
	Slash
	Dash
	Equals
	Colon

	// Keywords. Keep in the same order as keywords below.
	All
	Database
	ExcludeDlls
	Exports
	Generate
	NoGenerate
	Help
	Imports
	IncludeDlls
	Output
	Recurse
	Verbose
	Webscrape
	NoWebscrape

	FileName
)

var kindNames = [...]string{
	EOF:         "EOF",
	At:          "'@'",
	LParen:      "'('",
	RParen:      "')'",
	Comma:       "','",
	Slash:       "'/'",
	Dash:        "'-'",
	Equals:      "'='",
	Colon:       "':'",
	All:         "ALL",
	Database:    "DATABASE",
	ExcludeDlls: "EXCLUDE_DLLS",
	Exports:     "EXPORTS",
	Generate:    "GENERATE",
	NoGenerate:  "NOGENERATE",
	Help:        "HELP",
	Imports:     "IMPORTS",
	IncludeDlls: "INCLUDE_DLLS",
	Output:      "OUTPUT",
	Recurse:     "RECURSE",
	Verbose:     "VERBOSE",
	Webscrape:   "WEBSCRAPE",
	NoWebscrape: "NOWEBSCRAPE",
	FileName:    "FILE_NAME",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsKeyword reports whether k is one of the reserved qualifier words
func (k Kind) IsKeyword() bool {
	return k >= All && k <= NoWebscrape
}

// IsQualChar reports whether k can start a qualifier ('/' or '-')
func (k Kind) IsQualChar() bool {
	return k == Slash || k == Dash
}

// IsAssignChar reports whether k separates a qualifier from its value ('=' or ':')
func (k Kind) IsAssignChar() bool {
	return k == Equals || k == Colon
}

// Keywords returns the keyword kinds in declaration order
func Keywords() []Kind {
	kinds := make([]Kind, 0, NoWebscrape-All+1)
	for k := All; k <= NoWebscrape; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Spelling returns the canonical upper-case spelling of a keyword, or "" for
// non-keyword kinds
func (k Kind) Spelling() string {
	if !k.IsKeyword() {
		return ""
	}
	return kindNames[k]
}

var punctKinds = map[string]Kind{
	"@": At,
	"(": LParen,
	")": RParen,
	",": Comma,
	"/": Slash,
	"-": Dash,
	"=": Equals,
	":": Colon,
}

// Pos is a location in the lexed text. Line and Column are 1-based.
type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is one lexeme of the qualifier language
type Token struct {
	Kind   Kind
	Lexeme string // file names have surrounding quotes removed
	Pos    Pos
	Quoted bool // lexeme came from a "..." file name
}

// Describe renders the token for error messages, e.g. FILE_NAME "a.dll"
func (t Token) Describe() string {
	switch {
	case t.Kind == EOF:
		return "end of input"
	case t.Kind == FileName:
		return fmt.Sprintf("FILE_NAME %q", t.Lexeme)
	case t.Kind.IsKeyword() && t.Lexeme != t.Kind.Spelling():
		return fmt.Sprintf("%s (%q)", t.Kind, t.Lexeme)
	default:
		return t.Kind.String()
	}
}

// LexError reports a character the lexer cannot place in any token
type LexError struct {
	Pos  Pos
	Char rune
}

func (e *LexError) Error() string {
	if e.Char == '"' {
		return fmt.Sprintf("%s: unterminated quoted file name", e.Pos)
	}
	return fmt.Sprintf("%s: unrecognized character %q", e.Pos, e.Char)
}
