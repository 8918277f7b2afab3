package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fivedir/autogen/lexer"
	"github.com/fivedir/autogen/options"
	"github.com/fivedir/autogen/parser"
	"github.com/fivedir/autogen/ui"
)

// report shows a load failure for source and returns the ExitError that
// carries its exit code
func report(source string, lx *lexer.Lexer, err error) error {
	return &ExitError{Code: describe(source, lx, err), Err: err}
}

// describe prints err, pointing into source for positioned errors, and
// returns the matching exit code
func describe(source string, lx *lexer.Lexer, err error) int {
	where := "invocation"
	var scriptErr *options.ScriptError
	if errors.As(err, &scriptErr) {
		source = scriptErr.Source
		where = "script " + scriptErr.Path
	}

	var (
		lexErr *lexer.LexError
		synErr *parser.SyntaxError
		semErr *options.SemanticError
	)
	switch {
	case errors.As(err, &lexErr):
		ui.ErrorMsg(fmt.Sprintf("Invalid character in %s", where), lexErr)
		showCaret(source, lexErr.Pos)
		return ExitSyntax

	case errors.As(err, &synErr):
		ui.ErrorMsg(fmt.Sprintf("Syntax error in %s", where), synErr, syntaxHints(lx, synErr)...)
		showCaret(source, synErr.Pos)
		return ExitSyntax

	case errors.As(err, &semErr):
		title := "Invalid configuration"
		if scriptErr == nil && len(semErr.Violations) == 1 && semErr.Has(options.ScriptUnreadable) {
			title = "Cannot read script"
		}
		ui.ErrorMsg(title, nil)
		for _, v := range semErr.Violations {
			ui.Detail(v.Message)
		}
		return ExitSemantic

	default:
		ui.ErrorMsg("Failed to load invocation", err)
		return ExitFailure
	}
}

func showCaret(source string, pos lexer.Pos) {
	if c := ui.Caret(source, pos.Line, pos.Column); c != "" {
		ui.Println(c)
	}
}

func syntaxHints(lx *lexer.Lexer, e *parser.SyntaxError) []string {
	if e.Found.Kind != lexer.FileName || !strings.HasPrefix(e.Reason, "unknown qualifier") {
		return nil
	}
	if lx == nil {
		lx = lexer.Default()
	}

	candidates := lx.Candidates(e.Found.Lexeme)
	switch {
	case len(candidates) > 1 && lx.Options().Abbreviations:
		names := make([]string, len(candidates))
		for i, k := range candidates {
			names[i] = "/" + k.Spelling()
		}
		return []string{fmt.Sprintf("%q is ambiguous: it could be %s", e.Found.Lexeme, strings.Join(names, ", "))}
	case len(candidates) == 1 && !lx.Options().Abbreviations:
		return []string{fmt.Sprintf("abbreviations are disabled; write /%s", candidates[0].Spelling())}
	default:
		return []string{`run "autogen scan /?" to list the qualifiers`}
	}
}
