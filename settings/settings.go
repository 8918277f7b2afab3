// Package settings loads tool-level defaults: lexical conventions, validation
// policy, script limits and the hand-off command.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/tailscale/hujson"

	"github.com/fivedir/autogen/lexer"
	"github.com/fivedir/autogen/logger"
	"github.com/fivedir/autogen/options"
	"github.com/fivedir/autogen/script"
)

const (
	// AppName is used for the config directory and the env prefix
	AppName = "autogen"
	// LocalFileName is looked up in the working directory
	LocalFileName = ".autogen.jsonc"
	// UserFileName is looked up in the user config directory
	UserFileName = "config.jsonc"

	DefaultDatabase = "Win32API.accdb"
	DefaultOutput   = "TraceAPI.cpp"
)

// Settings are the tool defaults that apply to every invocation
type Settings struct {
	CommentMarker     string   `json:"comment_marker" mapstructure:"comment_marker"`
	CaseSensitive     bool     `json:"case_sensitive" mapstructure:"case_sensitive"`
	Abbreviations     bool     `json:"abbreviations" mapstructure:"abbreviations"`
	RequireInputFiles bool     `json:"require_input_files" mapstructure:"require_input_files"`
	RequireScanMode   bool     `json:"require_scan_mode" mapstructure:"require_scan_mode"`
	DefaultDatabase   string   `json:"default_database" mapstructure:"default_database"`
	DefaultOutput     string   `json:"default_output" mapstructure:"default_output"`
	Concurrency       int      `json:"concurrency" mapstructure:"concurrency"`
	MaxScriptSize     int64    `json:"max_script_size" mapstructure:"max_script_size"`
	Verbose           bool     `json:"verbose" mapstructure:"verbose"`
	Handoff           []string `json:"handoff" mapstructure:"handoff"`
}

// Default returns the settings used when no file or environment overrides exist
func Default() *Settings {
	lx := lexer.DefaultOptions()
	policy := options.DefaultPolicy()
	so := script.DefaultOptions()
	return &Settings{
		CommentMarker:     lx.CommentMarker,
		CaseSensitive:     lx.CaseSensitive,
		Abbreviations:     lx.Abbreviations,
		RequireInputFiles: policy.RequireInputFiles,
		RequireScanMode:   policy.RequireScanMode,
		DefaultDatabase:   DefaultDatabase,
		DefaultOutput:     DefaultOutput,
		Concurrency:       so.Concurrency,
		MaxScriptSize:     so.MaxSize,
	}
}

// LexerOptions returns the lexical conventions
func (s *Settings) LexerOptions() lexer.Options {
	return lexer.Options{
		CommentMarker: s.CommentMarker,
		CaseSensitive: s.CaseSensitive,
		Abbreviations: s.Abbreviations,
	}
}

// Policy returns the validation policy
func (s *Settings) Policy() options.Policy {
	return options.Policy{
		RequireInputFiles: s.RequireInputFiles,
		RequireScanMode:   s.RequireScanMode,
	}
}

// ScriptOptions returns reader options rooted at baseDir
func (s *Settings) ScriptOptions(baseDir string) script.Options {
	return script.Options{
		BaseDir:     baseDir,
		MaxSize:     s.MaxScriptSize,
		Concurrency: s.Concurrency,
	}
}

// Loader wires a lexer, a script reader and the policy together
func (s *Settings) Loader(baseDir string) (options.Loader, error) {
	lx, err := lexer.New(s.LexerOptions())
	if err != nil {
		return options.Loader{}, err
	}
	return options.Loader{
		Lexer:  lx,
		Reader: script.NewReader(s.ScriptOptions(baseDir)),
		Policy: s.Policy(),
	}, nil
}

// Validate reports settings that cannot be used
func (s *Settings) Validate() error {
	if _, err := lexer.New(s.LexerOptions()); err != nil {
		return fmt.Errorf("invalid comment_marker: %w", err)
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", s.Concurrency)
	}
	if s.MaxScriptSize < 0 {
		return fmt.Errorf("max_script_size must not be negative, got %d", s.MaxScriptSize)
	}
	return nil
}

// LoadOptions controls where Load looks for a settings file
type LoadOptions struct {
	Path    string // explicit file; must exist when set
	WorkDir string // directory searched for LocalFileName; empty means "."
	HomeDir string // overrides the user home directory
}

// Load resolves settings from defaults, the first settings file found and
// AUTOGEN_* environment variables, in increasing priority. It returns the
// file that was used, or "" when none was found.
func Load(ctx context.Context, opts LoadOptions) (*Settings, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load settings canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := Default()
	v.SetDefault("comment_marker", defaults.CommentMarker)
	v.SetDefault("case_sensitive", defaults.CaseSensitive)
	v.SetDefault("abbreviations", defaults.Abbreviations)
	v.SetDefault("require_input_files", defaults.RequireInputFiles)
	v.SetDefault("require_scan_mode", defaults.RequireScanMode)
	v.SetDefault("default_database", defaults.DefaultDatabase)
	v.SetDefault("default_output", defaults.DefaultOutput)
	v.SetDefault("concurrency", defaults.Concurrency)
	v.SetDefault("max_script_size", defaults.MaxScriptSize)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("handoff", defaults.Handoff)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.AutomaticEnv()

	path, err := findFile(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		logger.Debug("loading settings file", "path", path)
		if err := loadJSONCIntoViper(v, path); err != nil {
			return nil, "", err
		}
	} else {
		logger.Info("no settings file found, using defaults")
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, "", fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		if path != "" {
			return nil, "", fmt.Errorf("%s: %w", path, err)
		}
		return nil, "", err
	}

	return &s, path, nil
}

func findFile(opts LoadOptions) (string, error) {
	if opts.Path != "" {
		if !fileExists(opts.Path) {
			return "", fmt.Errorf("settings file not found: %s", opts.Path)
		}
		return opts.Path, nil
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}
	if local := filepath.Join(workDir, LocalFileName); fileExists(local) {
		return local, nil
	}

	home := opts.HomeDir
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			logger.Warn("skipping user settings", "err", err)
			return "", nil
		}
	}
	if user := filepath.Join(home, ".config", AppName, UserFileName); fileExists(user) {
		return user, nil
	}

	return "", nil
}

// loadJSONCIntoViper reads a JSON-with-comments file and merges it over the
// defaults, leaving env overrides in place
func loadJSONCIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var m map[string]any
	if err := json.Unmarshal(std, &m); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := v.MergeConfigMap(m); err != nil {
		return fmt.Errorf("failed to merge %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
