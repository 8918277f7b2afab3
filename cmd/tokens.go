package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivedir/autogen/lexer"
	"github.com/fivedir/autogen/ui"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens -- <invocation>...",
	Short: "Show how an invocation is split into tokens",
	RunE:  runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	text := joinArgs(args)

	lx, err := lexer.New(appSettings.LexerOptions())
	if err != nil {
		ui.ErrorMsg("Invalid settings", err)
		return &ExitError{Code: ExitFailure, Err: err}
	}

	toks, err := lx.Tokenize(text)
	if err != nil {
		return report(text, lx, err)
	}

	for _, t := range toks {
		lexeme := t.Lexeme
		if t.Quoted {
			lexeme = fmt.Sprintf("%q", lexeme)
		}
		ui.Printf("%s  %-14s %s\n", ui.Dim.Render(fmt.Sprintf("%-6s", t.Pos)), t.Kind, lexeme)
	}
	return nil
}
