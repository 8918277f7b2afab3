package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/fivedir/autogen/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	data, err := json.MarshalIndent(appSettings, "", "  ")
	if err != nil {
		return err
	}

	if settingsPath != "" {
		ui.Verbosef("settings file: %s", settingsPath)
	} else {
		ui.Verbosef("no settings file found, using defaults")
	}
	ui.Println(string(data))
	return nil
}
