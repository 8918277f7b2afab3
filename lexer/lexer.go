package lexer

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	plexer "github.com/alecthomas/participle/v2/lexer"
)

const (
	// DefaultCommentMarker starts a comment that runs to end of line
	DefaultCommentMarker = "!"

	punctuation = "@(),/-=:"
)

// Options fixes the lexical conventions that the grammar leaves open
type Options struct {
	CommentMarker string // default "!"
	CaseSensitive bool   // keywords must be upper case when set
	Abbreviations bool   // unique keyword prefixes are accepted right after a qual char
}

// DefaultOptions returns the conventions of the original tool: "!" comments,
// case-insensitive keywords, abbreviations allowed
func DefaultOptions() Options {
	return Options{
		CommentMarker: DefaultCommentMarker,
		CaseSensitive: false,
		Abbreviations: true,
	}
}

// Lexer turns invocation text into tokens. A Lexer is immutable and safe for
// concurrent use.
type Lexer struct {
	opts   Options
	def    *plexer.StatefulDefinition
	names  map[plexer.TokenType]string
	wordRe *regexp.Regexp
}

// New builds a lexer for the given conventions
func New(opts Options) (*Lexer, error) {
	if err := checkCommentMarker(opts.CommentMarker); err != nil {
		return nil, err
	}

	marker, _ := utf8.DecodeRuneInString(opts.CommentMarker)
	wordClass := fmt.Sprintf(`[^\s\x00-\x1f\x7f@(),/=:"\x{%x}-]`, marker)

	def, err := plexer.NewSimple([]plexer.SimpleRule{
		{Name: "Comment", Pattern: regexp.QuoteMeta(opts.CommentMarker) + `[^\n]*`},
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Quoted", Pattern: `"[^"\n]*"`},
		{Name: "Punct", Pattern: `[@(),/=:-]`},
		{Name: "Word", Pattern: wordClass + `+`},
		{Name: "Invalid", Pattern: `(?s).`},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build lexer: %w", err)
	}

	names := make(map[plexer.TokenType]string)
	for name, tt := range def.Symbols() {
		names[tt] = name
	}

	return &Lexer{
		opts:   opts,
		def:    def,
		names:  names,
		wordRe: regexp.MustCompile(`^` + wordClass + `+$`),
	}, nil
}

func checkCommentMarker(marker string) error {
	if marker == "" {
		return fmt.Errorf("comment marker must not be empty")
	}
	if utf8.RuneCountInString(marker) != 1 {
		return fmt.Errorf("comment marker %q must be a single character", marker)
	}
	for _, r := range marker {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("comment marker %q must not contain whitespace", marker)
		}
	}
	first, _ := utf8.DecodeRuneInString(marker)
	if unicode.IsLetter(first) || unicode.IsDigit(first) || first == '"' || strings.ContainsRune(punctuation, first) {
		return fmt.Errorf("comment marker %q must start with a symbol other than %q and '\"'", marker, punctuation)
	}
	return nil
}

var defaultLexer = sync.OnceValue(func() *Lexer {
	l, err := New(DefaultOptions())
	if err != nil {
		panic(err)
	}
	return l
})

// Default returns the shared lexer built from DefaultOptions
func Default() *Lexer {
	return defaultLexer()
}

// Tokenize lexes text with the default conventions
func Tokenize(text string) ([]Token, error) {
	return Default().Tokenize(text)
}

// Options returns the conventions the lexer was built with
func (l *Lexer) Options() Options {
	return l.opts
}

// Tokenize scans text left to right and returns its tokens, always ending
// with an EOF token. Comments and whitespace are dropped.
func (l *Lexer) Tokenize(text string) ([]Token, error) {
	lex, err := l.def.LexString("", text)
	if err != nil {
		return nil, fmt.Errorf("failed to start lexer: %w", err)
	}

	var (
		toks    []Token
		prev    Kind = EOF
		prevEnd      = -1
	)

	for {
		t, err := lex.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to lex input: %w", err)
		}

		pos := Pos{Offset: t.Pos.Offset, Line: t.Pos.Line, Column: t.Pos.Column}
		if t.EOF() {
			return append(toks, Token{Kind: EOF, Pos: pos}), nil
		}

		var tok Token
		switch l.names[t.Type] {
		case "Comment", "Whitespace":
			continue
		case "Quoted":
			tok = Token{Kind: FileName, Lexeme: t.Value[1 : len(t.Value)-1], Pos: pos, Quoted: true}
		case "Punct":
			tok = Token{Kind: punctKinds[t.Value], Lexeme: t.Value, Pos: pos}
		case "Word":
			afterQual := prev.IsQualChar() && prevEnd == pos.Offset
			tok = Token{Kind: l.classify(t.Value, afterQual), Lexeme: t.Value, Pos: pos}
		default:
			r, _ := utf8.DecodeRuneInString(t.Value)
			return nil, &LexError{Pos: pos, Char: r}
		}

		toks = append(toks, tok)
		prev = tok.Kind
		prevEnd = pos.Offset + len(t.Value)
	}
}

// classify decides between a keyword and FILE_NAME for a maximal word. Only
// whole words match keywords, except that a word glued to a qual char may be
// a unique keyword prefix or "?".
func (l *Lexer) classify(word string, afterQual bool) Kind {
	key := word
	if !l.opts.CaseSensitive {
		key = strings.ToUpper(word)
	}

	for _, k := range Keywords() {
		if key == k.Spelling() {
			return k
		}
	}

	if !afterQual {
		return FileName
	}
	if word == "?" {
		return Help
	}
	if !l.opts.Abbreviations {
		return FileName
	}

	match := FileName
	for _, k := range Keywords() {
		if strings.HasPrefix(k.Spelling(), key) {
			if match != FileName {
				return FileName // ambiguous
			}
			match = k
		}
	}
	return match
}

// Candidates lists the keywords a word glued to a qual char could abbreviate.
// Used to explain an ambiguous abbreviation.
func (l *Lexer) Candidates(word string) []Kind {
	key := word
	if !l.opts.CaseSensitive {
		key = strings.ToUpper(word)
	}
	var kinds []Kind
	for _, k := range Keywords() {
		if strings.HasPrefix(k.Spelling(), key) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Quote renders name so that it lexes back to a single FILE_NAME with the
// same text. Bare names are returned unchanged; anything else is wrapped in
// double quotes.
func (l *Lexer) Quote(name string) (string, error) {
	if strings.ContainsAny(name, "\"\n") {
		return "", fmt.Errorf("file name %q cannot be quoted", name)
	}
	if l.wordRe.MatchString(name) && l.classify(name, false) == FileName {
		return name, nil
	}
	return `"` + name + `"`, nil
}
