package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivedir/autogen/emitter"
	"github.com/fivedir/autogen/options"
	"github.com/fivedir/autogen/ui"
)

var (
	fmtWrite   string
	fmtResolve bool
	fmtLines   bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] -- <invocation>...",
	Short: "Print an invocation in canonical form or save it as a script",
	Long: `Print an invocation in canonical form: qualifiers first, in alphabetical
order with full names, then the input files. Put the invocation after "--" so
its qualifiers are not read as flags.

With --write the invocation is saved as a script file that can be used as
@file later.`,
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().StringVarP(&fmtWrite, "write", "w", "", "write a script file instead of printing")
	fmtCmd.Flags().BoolVar(&fmtResolve, "resolve", false, "resolve @script references and validate first")
	fmtCmd.Flags().BoolVar(&fmtLines, "lines", false, "print one qualifier or file per line")
}

func runFmt(cmd *cobra.Command, args []string) error {
	text := joinArgs(args)

	loader, err := appSettings.Loader(".")
	if err != nil {
		ui.ErrorMsg("Invalid settings", err)
		return &ExitError{Code: ExitFailure, Err: err}
	}

	var cfg *options.Configuration
	if fmtResolve {
		res, err := loader.Load(cmd.Context(), text)
		if err != nil {
			return report(text, loader.Lexer, err)
		}
		cfg = res.Config
	} else {
		cfg, err = loader.Parse(text)
		if err != nil {
			return report(text, loader.Lexer, err)
		}
	}

	if fmtWrite != "" {
		if err := emitter.WriteScript(fmtWrite, cfg, loader.Lexer); err != nil {
			ui.ErrorMsg("Failed to write script", err)
			return &ExitError{Code: ExitFailure, Err: err}
		}
		ui.SuccessMsg("Wrote " + ui.Primary.Render(fmtWrite))
		return nil
	}

	lines, err := options.CanonicalLines(cfg, loader.Lexer)
	if err != nil {
		ui.ErrorMsg("Failed to format invocation", err)
		return &ExitError{Code: ExitFailure, Err: err}
	}

	sep := " "
	if fmtLines {
		sep = "\n"
	}
	ui.Println(strings.Join(lines, sep))
	return nil
}
