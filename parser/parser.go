package parser

import (
	"fmt"
	"strings"

	"github.com/fivedir/autogen/lexer"
)

// SyntaxError reports the first token that does not fit the grammar
type SyntaxError struct {
	Expected []string // tokens that would have been valid
	Found    lexer.Token
	Pos      lexer.Pos
	Reason   string // optional detail, e.g. "unknown qualifier"
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: ", e.Pos)
	if e.Reason != "" {
		fmt.Fprintf(&b, "%s: ", e.Reason)
	}
	switch len(e.Expected) {
	case 0:
		fmt.Fprintf(&b, "unexpected %s", e.Found.Describe())
	case 1:
		fmt.Fprintf(&b, "expected %s, found %s", e.Expected[0], e.Found.Describe())
	default:
		fmt.Fprintf(&b, "expected one of %s, found %s", strings.Join(e.Expected, ", "), e.Found.Describe())
	}
	return b.String()
}

var (
	qualChars   = []string{lexer.Slash.String(), lexer.Dash.String()}
	assignChars = []string{lexer.Equals.String(), lexer.Colon.String()}
)

type keywordInfo struct {
	kind   QualifierKind
	toggle Toggle
}

var keywordQualifiers = map[lexer.Kind]keywordInfo{
	lexer.All:         {kind: QualAll},
	lexer.Database:    {kind: QualDatabase},
	lexer.ExcludeDlls: {kind: QualExcludeDlls},
	lexer.Exports:     {kind: QualExports},
	lexer.Generate:    {kind: QualGenerate, toggle: On},
	lexer.NoGenerate:  {kind: QualGenerate, toggle: Off},
	lexer.Help:        {kind: QualHelp},
	lexer.Imports:     {kind: QualImports},
	lexer.IncludeDlls: {kind: QualIncludeDlls},
	lexer.Output:      {kind: QualOutput},
	lexer.Recurse:     {kind: QualRecurse},
	lexer.Verbose:     {kind: QualVerbose},
	lexer.Webscrape:   {kind: QualWebscrape, toggle: On},
	lexer.NoWebscrape: {kind: QualWebscrape, toggle: Off},
}

func keywordNames() []string {
	names := make([]string, 0, len(keywordQualifiers))
	for _, k := range lexer.Keywords() {
		names = append(names, k.String())
	}
	return names
}

// Parse recognizes a whole invocation. A leading '@' selects the script
// form; anything else is the direct form.
func Parse(toks []lexer.Token) (Invocation, error) {
	p := &parser{toks: toks}
	if p.peek().Kind == lexer.At {
		return p.script()
	}
	return p.direct()
}

// ParseDirect recognizes the contents of a script file, which may only use
// the direct form.
func ParseDirect(toks []lexer.Token) (*Direct, error) {
	p := &parser{toks: toks}
	if t := p.peek(); t.Kind == lexer.At {
		return nil, &SyntaxError{
			Expected: append(append([]string{}, qualChars...), lexer.FileName.String(), lexer.EOF.String()),
			Found:    t,
			Pos:      t.Pos,
			Reason:   "script files may not reference another script",
		}
	}
	return p.direct()
}

type parser struct {
	toks []lexer.Token
	pos  int
}

func (p *parser) peek() lexer.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	var end lexer.Pos
	if n := len(p.toks); n > 0 {
		end = p.toks[n-1].Pos
	}
	return lexer.Token{Kind: lexer.EOF, Pos: end}
}

func (p *parser) next() lexer.Token {
	t := p.peek()
	if t.Kind != lexer.EOF {
		p.pos++
	}
	return t
}

func (p *parser) fail(t lexer.Token, reason string, expected ...string) error {
	return &SyntaxError{Expected: expected, Found: t, Pos: t.Pos, Reason: reason}
}

// script := '@' FILE_NAME EOF
func (p *parser) script() (*ScriptRef, error) {
	p.next()

	f, err := p.file()
	if err != nil {
		return nil, err
	}

	if end := p.peek(); end.Kind != lexer.EOF {
		return nil, p.fail(end, "nothing may follow a script reference", lexer.EOF.String())
	}

	return &ScriptRef{File: f}, nil
}

// direct := qualifier* FILE_NAME* qualifier* EOF
func (p *parser) direct() (*Direct, error) {
	d := &Direct{}

	var err error
	if d.Before, err = p.qualifiers(); err != nil {
		return nil, err
	}

	for p.peek().Kind == lexer.FileName {
		f, err := p.file()
		if err != nil {
			return nil, err
		}
		d.Files = append(d.Files, f)
	}

	if d.After, err = p.qualifiers(); err != nil {
		return nil, err
	}

	if t := p.peek(); t.Kind != lexer.EOF {
		expected := append([]string{}, qualChars...)
		if len(d.After) == 0 {
			expected = append(expected, lexer.FileName.String())
		}
		return nil, p.fail(t, "", append(expected, lexer.EOF.String())...)
	}

	return d, nil
}

func (p *parser) qualifiers() ([]Qualifier, error) {
	var quals []Qualifier
	for p.peek().Kind.IsQualChar() {
		q, err := p.qualifier()
		if err != nil {
			return nil, err
		}
		quals = append(quals, q)
	}
	return quals, nil
}

// qualifier := qual_char KEYWORD [assign_char value]
func (p *parser) qualifier() (Qualifier, error) {
	qc := p.next()

	kw := p.peek()
	if !kw.Kind.IsKeyword() {
		reason := ""
		if kw.Kind == lexer.FileName {
			reason = fmt.Sprintf("unknown qualifier %q", kw.Lexeme)
		}
		return Qualifier{}, p.fail(kw, reason, keywordNames()...)
	}
	if kw.Pos.Offset != qc.Pos.Offset+len(qc.Lexeme) {
		return Qualifier{}, p.fail(kw, fmt.Sprintf("qualifier name must immediately follow %s", qc.Kind))
	}
	p.next()

	info := keywordQualifiers[kw.Kind]
	q := Qualifier{Kind: info.kind, Pos: qc.Pos, Toggle: info.toggle}

	var err error
	switch q.Kind {
	case QualDatabase, QualOutput:
		q.Value, err = p.assignedFile()
	case QualExcludeDlls, QualIncludeDlls:
		q.Value, err = p.assignedFiles()
	}
	if err != nil {
		return Qualifier{}, err
	}

	return q, nil
}

func (p *parser) assign() error {
	if t := p.peek(); !t.Kind.IsAssignChar() {
		return p.fail(t, "", assignChars...)
	}
	p.next()
	return nil
}

func (p *parser) file() (FileRef, error) {
	t := p.peek()
	if t.Kind != lexer.FileName {
		return FileRef{}, p.fail(t, "", lexer.FileName.String())
	}
	if t.Lexeme == "" {
		return FileRef{}, p.fail(t, "empty file name")
	}
	p.next()
	return FileRef{Name: t.Lexeme, Pos: t.Pos}, nil
}

// assign_char file
func (p *parser) assignedFile() (*FileValue, error) {
	if err := p.assign(); err != nil {
		return nil, err
	}
	f, err := p.file()
	if err != nil {
		return nil, err
	}
	return &FileValue{Files: []FileRef{f}}, nil
}

// assign_char (file | '(' file_list ')')
func (p *parser) assignedFiles() (*FileValue, error) {
	if err := p.assign(); err != nil {
		return nil, err
	}

	switch t := p.peek(); t.Kind {
	case lexer.FileName:
		f, err := p.file()
		if err != nil {
			return nil, err
		}
		return &FileValue{Files: []FileRef{f}}, nil
	case lexer.LParen:
		p.next()
	default:
		return nil, p.fail(t, "", lexer.FileName.String(), lexer.LParen.String())
	}

	v := &FileValue{Listed: true}
	for {
		f, err := p.file()
		if err != nil {
			return nil, err
		}
		v.Files = append(v.Files, f)

		switch t := p.peek(); t.Kind {
		case lexer.Comma:
			p.next()
		case lexer.RParen:
			p.next()
			return v, nil
		default:
			return nil, p.fail(t, "", lexer.Comma.String(), lexer.RParen.String())
		}
	}
}
