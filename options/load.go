package options

import (
	"context"
	"fmt"

	"github.com/fivedir/autogen/lexer"
	"github.com/fivedir/autogen/logger"
	"github.com/fivedir/autogen/parser"
)

// ScriptReader fetches the text of an @file script. Implementations report
// missing or unreadable scripts as a *SemanticError with a ScriptUnreadable
// violation.
type ScriptReader interface {
	ReadScript(ctx context.Context, path string) (string, error)
}

// ScriptError wraps a lex or syntax error found inside a script file and
// keeps the script text so callers can point at the offending line
type ScriptError struct {
	Path   string
	Source string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s: %v", e.Path, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Loader runs the whole pipeline: lex, parse, build, resolve a script
// reference, validate
type Loader struct {
	Lexer  *lexer.Lexer // nil means lexer.Default()
	Reader ScriptReader // required only for @file invocations
	Policy Policy
}

// Result is a validated configuration plus where it came from
type Result struct {
	Config *Configuration
	Script string // script path when the invocation was @file
}

// NewLoader returns a loader with the default lexer and policy
func NewLoader(reader ScriptReader) Loader {
	return Loader{
		Lexer:  lexer.Default(),
		Reader: reader,
		Policy: DefaultPolicy(),
	}
}

func (l Loader) lexer() *lexer.Lexer {
	if l.Lexer == nil {
		return lexer.Default()
	}
	return l.Lexer
}

// Parse lexes, parses and builds text without resolving scripts or
// validating
func (l Loader) Parse(text string) (*Configuration, error) {
	toks, err := l.lexer().Tokenize(text)
	if err != nil {
		return nil, err
	}
	inv, err := parser.Parse(toks)
	if err != nil {
		return nil, err
	}
	return Build(inv), nil
}

// Load turns invocation text into a validated configuration. An @file
// invocation is replaced by the contents of the script.
func (l Loader) Load(ctx context.Context, text string) (*Result, error) {
	cfg, err := l.Parse(text)
	if err != nil {
		return nil, err
	}

	if path, ok := cfg.ScriptPath(); ok {
		logger.Debug("invocation references a script", "script", path)
		return l.LoadScript(ctx, path)
	}

	valid, err := Validate(cfg, l.Policy)
	if err != nil {
		return nil, err
	}
	return &Result{Config: valid}, nil
}

// LoadScript reads a script file through the reader and loads its contents.
// Script contents must use the direct form.
func (l Loader) LoadScript(ctx context.Context, path string) (*Result, error) {
	if l.Reader == nil {
		return nil, &SemanticError{Violations: []Violation{{
			Kind:    ScriptUnreadable,
			Message: fmt.Sprintf("cannot read script %s: no script reader configured", path),
		}}}
	}

	text, err := l.Reader.ReadScript(ctx, path)
	if err != nil {
		return nil, err
	}

	toks, err := l.lexer().Tokenize(text)
	if err != nil {
		return nil, &ScriptError{Path: path, Source: text, Err: err}
	}
	direct, err := parser.ParseDirect(toks)
	if err != nil {
		return nil, &ScriptError{Path: path, Source: text, Err: err}
	}

	cfg := Build(direct)
	logger.Debug("built configuration from script", "script", path,
		"input_files", len(cfg.inputFiles))

	valid, err := Validate(cfg, l.Policy)
	if err != nil {
		return nil, err
	}
	return &Result{Config: valid, Script: path}, nil
}
