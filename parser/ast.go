package parser

import "github.com/fivedir/autogen/lexer"

// QualifierKind names one of the twelve qualifiers
type QualifierKind int

const (
	QualAll QualifierKind = iota
	QualDatabase
	QualExcludeDlls
	QualExports
	QualGenerate // GENERATE or NOGENERATE
	QualHelp
	QualImports
	QualIncludeDlls
	QualOutput
	QualRecurse
	QualVerbose
	QualWebscrape // WEBSCRAPE or NOWEBSCRAPE
)

var qualifierNames = [...]string{
	QualAll:         "ALL",
	QualDatabase:    "DATABASE",
	QualExcludeDlls: "EXCLUDE_DLLS",
	QualExports:     "EXPORTS",
	QualGenerate:    "GENERATE",
	QualHelp:        "HELP",
	QualImports:     "IMPORTS",
	QualIncludeDlls: "INCLUDE_DLLS",
	QualOutput:      "OUTPUT",
	QualRecurse:     "RECURSE",
	QualVerbose:     "VERBOSE",
	QualWebscrape:   "WEBSCRAPE",
}

func (k QualifierKind) String() string {
	return qualifierNames[k]
}

// Toggle is the two-state choice carried by the GENERATE and WEBSCRAPE pairs
type Toggle int

const (
	On Toggle = iota + 1
	Off
)

// FileRef is a file name as written, quotes removed. No path handling.
type FileRef struct {
	Name string
	Pos  lexer.Pos
}

// FileValue is the value of a qualifier that takes files. Listed is set for
// the parenthesized form, even when the list holds one name.
type FileValue struct {
	Files  []FileRef
	Listed bool
}

// Names returns the file names in source order
func (v *FileValue) Names() []string {
	if v == nil {
		return nil
	}
	names := make([]string, len(v.Files))
	for i, f := range v.Files {
		names[i] = f.Name
	}
	return names
}

// Qualifier is one parsed qualifier occurrence
type Qualifier struct {
	Kind   QualifierKind
	Pos    lexer.Pos  // position of the qual char
	Toggle Toggle     // QualGenerate and QualWebscrape only
	Value  *FileValue // QualDatabase, QualOutput, QualIncludeDlls, QualExcludeDlls only
}

// Invocation is either a *ScriptRef or a *Direct
type Invocation interface {
	invocation()
}

// ScriptRef is the "@file" form: all qualifiers and input files come from
// the referenced script
type ScriptRef struct {
	File FileRef
}

// Direct is the qualifier* FILE_NAME* qualifier* form
type Direct struct {
	Before []Qualifier
	Files  []FileRef
	After  []Qualifier
}

func (*ScriptRef) invocation() {}
func (*Direct) invocation()    {}

// Qualifiers returns every qualifier in source order
func (d *Direct) Qualifiers() []Qualifier {
	quals := make([]Qualifier, 0, len(d.Before)+len(d.After))
	quals = append(quals, d.Before...)
	return append(quals, d.After...)
}
