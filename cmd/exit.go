package cmd

import (
	"errors"
	"fmt"

	"github.com/fivedir/autogen/lexer"
	"github.com/fivedir/autogen/options"
	"github.com/fivedir/autogen/parser"
)

// Process exit codes
const (
	ExitOK       = 0
	ExitFailure  = 1 // settings, I/O or hand-off failure
	ExitSyntax   = 2 // LexError or SyntaxError
	ExitSemantic = 3 // SemanticError
	ExitHelp     = 4 // HELP was requested and displayed
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE
// handlers. The error has already been shown to the user.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func exitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		exitErr *ExitError
		lexErr  *lexer.LexError
		synErr  *parser.SyntaxError
		semErr  *options.SemanticError
	)
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &lexErr), errors.As(err, &synErr):
		return ExitSyntax
	case errors.As(err, &semErr):
		return ExitSemantic
	default:
		return ExitFailure
	}
}
