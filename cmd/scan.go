package cmd

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/fivedir/autogen/handoff"
	"github.com/fivedir/autogen/options"
	"github.com/fivedir/autogen/ui"
)

var scanCmd = &cobra.Command{
	Use:     "scan [qualifiers] file... | @script",
	Aliases: []string{"run"},
	Short:   "Resolve an invocation or script and hand it to the scanner",
	Long: `Resolve an AutoGen invocation or @script, print the resulting configuration
and pipe it to the configured hand-off command.

Everything after "scan" belongs to the invocation, so qualifiers such as
-OUTPUT=x.cpp are not treated as flags. Only --config, --verbose and --help are
recognised, and only in front of the invocation; "--" ends them. Settings also
come from AUTOGEN_* environment variables.`,
	DisableFlagParsing: true,
	RunE:               runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := cmd.Context()

	flags, args, help := rootFlags(args)
	if help {
		return cmd.Help()
	}
	if len(flags) > 0 {
		if err := cmd.Root().PersistentFlags().Parse(flags); err != nil {
			ui.ErrorMsg("Invalid flags", err)
			return &ExitError{Code: ExitFailure, Err: err}
		}
		if err := loadSettings(cmd, nil); err != nil {
			return err
		}
	}

	text := joinArgs(args)
	ui.Verbosef("invocation: %s", text)

	loader, err := appSettings.Loader(".")
	if err != nil {
		ui.ErrorMsg("Invalid settings", err)
		return &ExitError{Code: ExitFailure, Err: err}
	}

	res, err := loader.Load(ctx, text)
	if err != nil {
		return report(text, loader.Lexer, err)
	}
	cfg := res.Config

	if cfg.HelpRequested() {
		showHelp()
		return &ExitError{Code: ExitHelp}
	}
	if cfg.Verbose() {
		ui.SetVerbose(true)
	}

	payload := handoff.NewPayload(res, handoff.Defaults{
		Database: appSettings.DefaultDatabase,
		Output:   appSettings.DefaultOutput,
	})
	printConfiguration(res, payload)

	if ui.IsVerbose() {
		if canonical, err := options.Canonical(cfg, loader.Lexer); err == nil {
			ui.Verbosef("canonical form: %s", canonical)
		}
	}

	if len(appSettings.Handoff) == 0 {
		ui.Verbosef("no hand-off command configured")
		return nil
	}

	var out []byte
	err = ui.RunWithSpinner("Handing off to "+appSettings.Handoff[0]+"...", func() error {
		var dispatchErr error
		out, dispatchErr = handoff.Dispatch(ctx, payload, appSettings.Handoff)
		return dispatchErr
	})
	if err != nil {
		ui.ErrorMsg("Hand-off failed", err, "Check the handoff command in your settings")
		return &ExitError{Code: ExitFailure, Err: err}
	}
	if len(out) > 0 {
		ui.Printf("%s", out)
	}

	ui.SuccessMsg(fmt.Sprintf("Hand-off complete (%s)", ui.FormatDuration(time.Since(start))))
	return nil
}

func printConfiguration(res *options.Result, p handoff.Payload) {
	cfg := res.Config

	title := "Configuration resolved"
	if res.Script != "" {
		title += " from " + ui.Primary.Render(res.Script)
	}
	ui.SuccessMsg(title)

	ui.Field("Input files", list(cfg.InputFiles()))
	ui.Field("Exports", yesNo(cfg.Exports()))
	ui.Field("Imports", yesNo(cfg.Imports()))
	ui.Field("Include DLLs", list(cfg.IncludeDlls()))
	ui.Field("Exclude DLLs", list(cfg.ExcludeDlls()))
	ui.Field("All DLLs", yesNo(cfg.All()))
	ui.Field("Recurse", yesNo(cfg.Recurse()))
	ui.Field("Database", withSource(p.Effective.Database, cfg.Database))
	if p.Effective.Generates {
		ui.Field("Output", withSource(p.Effective.Output, cfg.Output))
	} else {
		ui.Field("Output", "(not generated)")
	}
	ui.Field("Web lookups", yesNo(p.Effective.Webscrapes))
	ui.Field("Verbose", yesNo(cfg.Verbose()))
}

func withSource(value string, given func() (string, bool)) string {
	if _, ok := given(); ok {
		return value
	}
	return value + ui.Dim.Render(" (default)")
}

func list(items []string) string {
	if len(items) == 0 {
		return ui.Dim.Render("(none)")
	}
	return strings.Join(items, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// rootFlags takes the root command's long flags off the front of a scan
// invocation. Cobra hands them over untouched because flag parsing is
// disabled for scan.
func rootFlags(args []string) (flags, rest []string, help bool) {
	for len(args) > 0 {
		arg := args[0]
		switch {
		case arg == "--":
			return flags, args[1:], help
		case arg == "--help":
			help = true
		case arg == "--verbose", strings.HasPrefix(arg, "--config="):
			flags = append(flags, arg)
		case arg == "--config" && len(args) > 1:
			flags = append(flags, arg, args[1])
			args = args[1:]
		default:
			return flags, args, help
		}
		args = args[1:]
	}
	return flags, args, help
}

// joinArgs rebuilds invocation text from shell arguments. The shell has
// already removed any quotes, so file names and qualifier values that contain
// whitespace or grammar punctuation are quoted again. The pieces of a DLL list
// split by the shell, such as "(a.dll," and "b.dll)", pass through as they are.
func joinArgs(args []string) string {
	parts := make([]string, len(args))
	inList := false
	for i, arg := range args {
		if inList || strings.HasPrefix(arg, "(") {
			parts[i] = arg
			inList = !strings.Contains(arg, ")")
			continue
		}
		parts[i] = requote(arg)
		if loc := qualifierArg.FindStringIndex(arg); loc != nil && strings.HasPrefix(arg[loc[1]:], "(") {
			inList = !strings.Contains(arg, ")")
		}
	}
	return strings.Join(parts, " ")
}

var qualifierArg = regexp.MustCompile(`^[/-][A-Za-z_?]+(?:[=:]|$)`)

func requote(arg string) string {
	if arg == "" || strings.Contains(arg, `"`) || strings.HasPrefix(arg, "--") || strings.Trim(arg, "@(),/-=:") == "" {
		return arg
	}

	if loc := qualifierArg.FindStringIndex(arg); loc != nil {
		name, value := arg[:loc[1]], arg[loc[1]:]
		if value == "" || strings.HasPrefix(value, "(") || !strings.ContainsFunc(value, special) {
			return arg
		}
		return name + `"` + value + `"`
	}

	if path, ok := strings.CutPrefix(arg, "@"); ok {
		if strings.ContainsFunc(path, special) {
			return `@"` + path + `"`
		}
		return arg
	}

	if strings.ContainsFunc(arg, special) {
		return `"` + arg + `"`
	}
	return arg
}

func special(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune("@(),/-=:", r)
}
