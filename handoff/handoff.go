// Package handoff passes a resolved configuration to the external scanner
// process as JSON on its stdin.
package handoff

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/fivedir/autogen/logger"
	"github.com/fivedir/autogen/options"
	"github.com/fivedir/autogen/ui"
)

// PayloadVersion is bumped when the payload layout changes
const PayloadVersion = 1

// ErrNoCommand is returned when no hand-off command is configured
var ErrNoCommand = errors.New("no hand-off command configured")

// Effective holds values after tool defaults are applied
type Effective struct {
	Database   string `json:"databasePath"`
	Output     string `json:"outputPath,omitempty"` // empty when nothing is generated
	Generates  bool   `json:"generates"`
	Webscrapes bool   `json:"webscrapes"`
}

// Payload is what the collaborator receives on stdin
type Payload struct {
	Version       int          `json:"version"`
	Configuration options.View `json:"configuration"`
	Effective     Effective    `json:"effective"`
	Script        string       `json:"script,omitempty"`
}

// Defaults are the paths used when the invocation does not name them
type Defaults struct {
	Database string
	Output   string
}

// NewPayload builds the hand-off payload for a loaded invocation
func NewPayload(res *options.Result, d Defaults) Payload {
	cfg := res.Config

	eff := Effective{
		Database:   d.Database,
		Generates:  cfg.Generates(),
		Webscrapes: cfg.Webscrapes(),
	}
	if db, ok := cfg.Database(); ok {
		eff.Database = withDefaultName(db, d.Database)
	}
	if eff.Generates {
		eff.Output = d.Output
		if out, ok := cfg.Output(); ok {
			eff.Output = withDefaultName(out, d.Output)
		}
	}

	return Payload{
		Version:       PayloadVersion,
		Configuration: cfg.View(),
		Effective:     eff,
		Script:        res.Script,
	}
}

// withDefaultName completes a value that names only a directory
func withDefaultName(value, def string) string {
	if strings.HasSuffix(value, "/") || strings.HasSuffix(value, `\`) {
		return value + def
	}
	return value
}

// Dispatch runs argv with the payload as JSON on stdin and returns what the
// command wrote to stdout
func Dispatch(ctx context.Context, p Payload, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, ErrNoCommand
	}

	runner := argv[0]
	if _, err := exec.LookPath(runner); err != nil {
		return nil, fmt.Errorf("%s not found: %w", runner, err)
	}

	stdinData, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}

	ui.Verbosef("handing off configuration: command=%v, bytes=%d", argv, len(stdinData))

	cmd := exec.CommandContext(ctx, runner, argv[1:]...)
	cmd.Stdin = bytes.NewReader(stdinData)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logger.Error("hand-off command failed", "command", runner, "err", err)
		return nil, fmt.Errorf("hand-off command %s failed: %w\n%s", runner, err, stderr.String())
	}

	return stdout.Bytes(), nil
}
