package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/fivedir/autogen/logger"
	"github.com/fivedir/autogen/settings"
	"github.com/fivedir/autogen/ui"
)

// Version information set by goreleaser
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	verbose bool

	appSettings  = settings.Default()
	settingsPath string
)

var rootCmd = &cobra.Command{
	Use:   "autogen",
	Short: "Resolve AutoGen command lines and scripts into scanner configurations",
	Long: `autogen reads an AutoGen invocation such as

  autogen scan /IMPORTS /INCLUDE_DLLS=(kernel32.dll) /OUTPUT=taskmgr.cpp taskmgr.exe

or a script reference like "autogen scan @build.txt", checks it, and prints
the resulting configuration. Run "autogen scan /?" for the qualifier list.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

func Execute(ctx context.Context) {
	if err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default is ./"+settings.LocalFileName+" or ~/.config/autogen/"+settings.UserFileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show verbose output")
}

func versionString() string {
	if version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}

// errorHandler leaves ExitErrors alone, they were reported where they happened
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

func loadSettings(cmd *cobra.Command, args []string) error {
	s, path, err := settings.Load(cmd.Context(), settings.LoadOptions{Path: cfgFile})
	if err != nil {
		ui.ErrorMsg("Failed to load settings", err)
		return &ExitError{Code: ExitFailure, Err: err}
	}
	appSettings, settingsPath = s, path

	if verbose || s.Verbose {
		ui.SetVerbose(true)
		logger.SetLogger(logger.New(true))
	}
	if path != "" {
		ui.Verbosef("settings loaded from %s", path)
	}
	return nil
}
