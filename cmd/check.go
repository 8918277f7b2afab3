package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fivedir/autogen/script"
	"github.com/fivedir/autogen/ui"
)

var checkConcurrency int

var checkCmd = &cobra.Command{
	Use:   "check <script>...",
	Short: "Validate script files without running them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().IntVarP(&checkConcurrency, "concurrency", "c", 0, "scripts checked in parallel (default from settings)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := cmd.Context()

	loader, err := appSettings.Loader(".")
	if err != nil {
		ui.ErrorMsg("Invalid settings", err)
		return &ExitError{Code: ExitFailure, Err: err}
	}

	concurrency := checkConcurrency
	if concurrency <= 0 {
		concurrency = appSettings.Concurrency
	}

	var outcomes []script.Outcome
	err = ui.RunWithSpinner(fmt.Sprintf("Checking %d script(s)...", len(args)), func() error {
		var checkErr error
		outcomes, checkErr = script.CheckAll(ctx, loader, args, concurrency)
		return checkErr
	})
	if err != nil {
		ui.ErrorMsg("Check interrupted", err)
		return &ExitError{Code: ExitFailure, Err: err}
	}

	code := ExitOK
	for _, o := range outcomes {
		if o.OK() {
			ui.SuccessMsg(o.Path)
			continue
		}
		// script errors carry their own source text
		if c := describe("", loader.Lexer, o.Err); c > code {
			code = c
		}
	}

	ui.Println()
	failed := script.Failed(outcomes)
	summary := fmt.Sprintf("%d of %d script(s) valid (%s)", len(outcomes)-failed, len(outcomes), ui.FormatDuration(time.Since(start)))
	if failed > 0 {
		ui.WarnMsg(summary)
		return &ExitError{Code: code}
	}
	ui.SuccessMsg(summary)
	return nil
}
