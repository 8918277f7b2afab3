// Package options turns a parsed invocation into the Configuration handed to
// the scanner, database writer, web lookup and report writer.
package options

import (
	"fmt"
	"slices"

	"github.com/fivedir/autogen/parser"
)

// Choice is the resolved state of a GENERATE/NOGENERATE or
// WEBSCRAPE/NOWEBSCRAPE pair
type Choice int

const (
	Unset Choice = iota
	Enabled
	Disabled
)

func (c Choice) String() string {
	switch c {
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	default:
		return "unset"
	}
}

func (c Choice) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Choice) UnmarshalText(text []byte) error {
	switch string(text) {
	case "enabled":
		*c = Enabled
	case "disabled":
		*c = Disabled
	case "unset", "":
		*c = Unset
	default:
		return fmt.Errorf("invalid choice %q", text)
	}
	return nil
}

// Configuration is the resolved, immutable result of one invocation. The
// zero value is the configuration of an empty command line.
type Configuration struct {
	all         bool
	database    string
	excludeDlls []string
	exports     bool
	generate    Choice
	help        bool
	imports     bool
	includeDlls []string
	output      string
	recurse     bool
	verbose     bool
	webscrape   Choice
	inputFiles  []string
	scriptPath  string

	// set by Validate
	validated bool
}

// Build folds a parsed invocation into a Configuration. Repeated qualifiers
// resolve to the last occurrence; a repeated INCLUDE_DLLS or EXCLUDE_DLLS
// replaces the earlier set.
func Build(inv parser.Invocation) *Configuration {
	c := &Configuration{}

	switch inv := inv.(type) {
	case *parser.ScriptRef:
		c.scriptPath = inv.File.Name
	case *parser.Direct:
		for _, q := range inv.Qualifiers() {
			c.apply(q)
		}
		for _, f := range inv.Files {
			c.inputFiles = append(c.inputFiles, f.Name)
		}
	}

	return c
}

func (c *Configuration) apply(q parser.Qualifier) {
	switch q.Kind {
	case parser.QualAll:
		c.all = true
	case parser.QualDatabase:
		c.database = q.Value.Files[0].Name
	case parser.QualExcludeDlls:
		c.excludeDlls = q.Value.Names()
	case parser.QualExports:
		c.exports = true
	case parser.QualGenerate:
		c.generate = choiceOf(q.Toggle)
	case parser.QualHelp:
		c.help = true
	case parser.QualImports:
		c.imports = true
	case parser.QualIncludeDlls:
		c.includeDlls = q.Value.Names()
	case parser.QualOutput:
		c.output = q.Value.Files[0].Name
	case parser.QualRecurse:
		c.recurse = true
	case parser.QualVerbose:
		c.verbose = true
	case parser.QualWebscrape:
		c.webscrape = choiceOf(q.Toggle)
	}
}

func choiceOf(t parser.Toggle) Choice {
	if t == parser.Off {
		return Disabled
	}
	return Enabled
}

func (c *Configuration) All() bool     { return c.all }
func (c *Configuration) Exports() bool { return c.exports }
func (c *Configuration) Imports() bool { return c.imports }
func (c *Configuration) Recurse() bool { return c.recurse }
func (c *Configuration) Verbose() bool { return c.verbose }

// HelpRequested reports whether HELP was given. Downstream consumers stop
// after printing help; the other fields are still populated.
func (c *Configuration) HelpRequested() bool { return c.help }

// Database returns the DATABASE path and whether it was given
func (c *Configuration) Database() (string, bool) { return c.database, c.database != "" }

// Output returns the OUTPUT path and whether it was given
func (c *Configuration) Output() (string, bool) { return c.output, c.output != "" }

// ScriptPath returns the @file reference of an unresolved script invocation
func (c *Configuration) ScriptPath() (string, bool) { return c.scriptPath, c.scriptPath != "" }

// IsScript reports whether the configuration is an unresolved @file reference
func (c *Configuration) IsScript() bool { return c.scriptPath != "" }

func (c *Configuration) GenerateChoice() Choice  { return c.generate }
func (c *Configuration) WebscrapeChoice() Choice { return c.webscrape }

// Generates reports whether an output file is generated; true unless
// NOGENERATE was the last of the pair
func (c *Configuration) Generates() bool { return c.generate != Disabled }

// Webscrapes reports whether web lookups are allowed; true unless
// NOWEBSCRAPE was the last of the pair
func (c *Configuration) Webscrapes() bool { return c.webscrape != Disabled }

func (c *Configuration) IncludeDlls() []string { return slices.Clone(c.includeDlls) }
func (c *Configuration) ExcludeDlls() []string { return slices.Clone(c.excludeDlls) }
func (c *Configuration) InputFiles() []string  { return slices.Clone(c.inputFiles) }

// Validated reports whether the configuration came out of Validate
func (c *Configuration) Validated() bool { return c.validated }

// View is a detached, serializable copy of a Configuration
type View struct {
	All         bool     `json:"all"`
	Database    string   `json:"databasePath,omitempty"`
	ExcludeDlls []string `json:"excludeDlls,omitempty"`
	Exports     bool     `json:"exports"`
	Generate    Choice   `json:"generate"`
	Help        bool     `json:"help"`
	Imports     bool     `json:"imports"`
	IncludeDlls []string `json:"includeDlls,omitempty"`
	Output      string   `json:"outputPath,omitempty"`
	Recurse     bool     `json:"recurse"`
	Verbose     bool     `json:"verbose"`
	Webscrape   Choice   `json:"webscrape"`
	InputFiles  []string `json:"inputFiles"`
	ScriptPath  string   `json:"scriptPath,omitempty"`
}

// View copies the configuration into an exported struct
func (c *Configuration) View() View {
	return View{
		All:         c.all,
		Database:    c.database,
		ExcludeDlls: c.ExcludeDlls(),
		Exports:     c.exports,
		Generate:    c.generate,
		Help:        c.help,
		Imports:     c.imports,
		IncludeDlls: c.IncludeDlls(),
		Output:      c.output,
		Recurse:     c.recurse,
		Verbose:     c.verbose,
		Webscrape:   c.webscrape,
		InputFiles:  c.InputFiles(),
		ScriptPath:  c.scriptPath,
	}
}

// Equal reports whether two configurations describe the same invocation
func (c *Configuration) Equal(o *Configuration) bool {
	a, b := c.View(), o.View()
	return a.All == b.All &&
		a.Database == b.Database &&
		slices.Equal(a.ExcludeDlls, b.ExcludeDlls) &&
		a.Exports == b.Exports &&
		a.Generate == b.Generate &&
		a.Help == b.Help &&
		a.Imports == b.Imports &&
		slices.Equal(a.IncludeDlls, b.IncludeDlls) &&
		a.Output == b.Output &&
		a.Recurse == b.Recurse &&
		a.Verbose == b.Verbose &&
		a.Webscrape == b.Webscrape &&
		slices.Equal(a.InputFiles, b.InputFiles) &&
		a.ScriptPath == b.ScriptPath
}

func (c *Configuration) clone() *Configuration {
	cp := *c
	cp.excludeDlls = slices.Clone(c.excludeDlls)
	cp.includeDlls = slices.Clone(c.includeDlls)
	cp.inputFiles = slices.Clone(c.inputFiles)
	return &cp
}
