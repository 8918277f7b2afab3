package options

import (
	"fmt"
	"strings"
)

// ViolationKind classifies a semantic problem
type ViolationKind int

const (
	ConflictingDllFilters ViolationKind = iota + 1
	UnresolvedScript
	ScriptUnreadable
	MissingInputFiles
	MissingScanMode
	OutputWithoutGenerate
	PathInDllFilter
)

var violationNames = map[ViolationKind]string{
	ConflictingDllFilters: "ConflictingDllFilters",
	UnresolvedScript:      "UnresolvedScript",
	ScriptUnreadable:      "ScriptUnreadable",
	MissingInputFiles:     "MissingInputFiles",
	MissingScanMode:       "MissingScanMode",
	OutputWithoutGenerate: "OutputWithoutGenerate",
	PathInDllFilter:       "PathInDllFilter",
}

func (k ViolationKind) String() string {
	if name, ok := violationNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ViolationKind(%d)", int(k))
}

// Violation is one semantic problem found in a configuration
type Violation struct {
	Kind    ViolationKind
	Message string
	Err     error // underlying cause, if any
}

// SemanticError carries every violation found, in rule order
type SemanticError struct {
	Violations []Violation
}

func (e *SemanticError) Error() string {
	if len(e.Violations) == 1 {
		return e.Violations[0].Message
	}
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return fmt.Sprintf("%d problems: %s", len(e.Violations), strings.Join(msgs, "; "))
}

// Unwrap exposes the causes so errors.Is works through a SemanticError
func (e *SemanticError) Unwrap() []error {
	var errs []error
	for _, v := range e.Violations {
		if v.Err != nil {
			errs = append(errs, v.Err)
		}
	}
	return errs
}

// Has reports whether any violation is of the given kind
func (e *SemanticError) Has(kind ViolationKind) bool {
	for _, v := range e.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// Policy switches the rules that depend on how the tool is used
type Policy struct {
	RequireInputFiles bool
	RequireScanMode   bool // EXPORTS or IMPORTS must be given
}

// DefaultPolicy enables every rule
func DefaultPolicy() Policy {
	return Policy{
		RequireInputFiles: true,
		RequireScanMode:   true,
	}
}

// Validate checks cross-qualifier rules and returns a validated copy of c,
// or a *SemanticError listing every violation. When HELP is present the
// policy rules are skipped, since consumers stop after printing help.
func Validate(c *Configuration, p Policy) (*Configuration, error) {
	var vs []Violation
	add := func(kind ViolationKind, format string, a ...any) {
		vs = append(vs, Violation{Kind: kind, Message: fmt.Sprintf(format, a...)})
	}

	if path, ok := c.ScriptPath(); ok {
		add(UnresolvedScript, "script reference @%s was not resolved", path)
	}

	if len(c.includeDlls) > 0 && len(c.excludeDlls) > 0 {
		add(ConflictingDllFilters, "/INCLUDE_DLLS and /EXCLUDE_DLLS are mutually exclusive")
	}

	for _, name := range c.includeDlls {
		if hasPath(name) {
			add(PathInDllFilter, "path not allowed on /INCLUDE_DLLS file name %s", name)
		}
	}
	for _, name := range c.excludeDlls {
		if hasPath(name) {
			add(PathInDllFilter, "path not allowed on /EXCLUDE_DLLS file name %s", name)
		}
	}

	if c.output != "" && c.generate == Disabled {
		add(OutputWithoutGenerate, "/OUTPUT cannot be combined with /NOGENERATE")
	}

	if !c.help && !c.IsScript() {
		if p.RequireInputFiles && len(c.inputFiles) == 0 {
			add(MissingInputFiles, "input file(s) not specified")
		}
		if p.RequireScanMode && !c.exports && !c.imports {
			add(MissingScanMode, "/EXPORTS or /IMPORTS (or both) must be specified")
		}
	}

	if len(vs) > 0 {
		return nil, &SemanticError{Violations: vs}
	}

	out := c.clone()
	out.validated = true
	return out, nil
}

// hasPath reports whether a DLL filter name carries directory information.
// DLL imports never include a path, so a filter with one can never match.
func hasPath(name string) bool {
	return strings.ContainsAny(name, `/\:`)
}
