package options

import (
	"fmt"
	"strings"

	"github.com/fivedir/autogen/lexer"
)

// Canonical renders c as invocation text that parses back to an equal
// Configuration. Qualifiers come first in a fixed order, then the input
// files. A nil lexer means the default conventions.
func Canonical(c *Configuration, lx *lexer.Lexer) (string, error) {
	parts, err := CanonicalLines(c, lx)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, " "), nil
}

// CanonicalLines is Canonical split into one element per qualifier and per
// input file
func CanonicalLines(c *Configuration, lx *lexer.Lexer) ([]string, error) {
	if lx == nil {
		lx = lexer.Default()
	}

	if path, ok := c.ScriptPath(); ok {
		q, err := lx.Quote(path)
		if err != nil {
			return nil, err
		}
		return []string{"@" + q}, nil
	}

	w := &canonicalWriter{lx: lx}

	w.flag(c.all, lexer.All)
	w.file(lexer.Database, c.database)
	w.files(lexer.ExcludeDlls, c.excludeDlls)
	w.flag(c.exports, lexer.Exports)
	w.choice(c.generate, lexer.Generate, lexer.NoGenerate)
	w.flag(c.help, lexer.Help)
	w.flag(c.imports, lexer.Imports)
	w.files(lexer.IncludeDlls, c.includeDlls)
	w.file(lexer.Output, c.output)
	w.flag(c.recurse, lexer.Recurse)
	w.flag(c.verbose, lexer.Verbose)
	w.choice(c.webscrape, lexer.Webscrape, lexer.NoWebscrape)

	for _, f := range c.inputFiles {
		w.parts = append(w.parts, w.quote(f))
	}

	if w.err != nil {
		return nil, w.err
	}
	return w.parts, nil
}

type canonicalWriter struct {
	lx    *lexer.Lexer
	parts []string
	err   error
}

func (w *canonicalWriter) quote(name string) string {
	q, err := w.lx.Quote(name)
	if err != nil && w.err == nil {
		w.err = fmt.Errorf("cannot render configuration: %w", err)
	}
	return q
}

func (w *canonicalWriter) flag(set bool, kw lexer.Kind) {
	if set {
		w.parts = append(w.parts, "/"+kw.Spelling())
	}
}

func (w *canonicalWriter) choice(c Choice, on, off lexer.Kind) {
	switch c {
	case Enabled:
		w.parts = append(w.parts, "/"+on.Spelling())
	case Disabled:
		w.parts = append(w.parts, "/"+off.Spelling())
	}
}

func (w *canonicalWriter) file(kw lexer.Kind, name string) {
	if name != "" {
		w.parts = append(w.parts, "/"+kw.Spelling()+"="+w.quote(name))
	}
}

func (w *canonicalWriter) files(kw lexer.Kind, names []string) {
	switch len(names) {
	case 0:
		return
	case 1:
		w.file(kw, names[0])
	default:
		quoted := make([]string, len(names))
		for i, n := range names {
			quoted[i] = w.quote(n)
		}
		w.parts = append(w.parts, "/"+kw.Spelling()+"=("+strings.Join(quoted, ",")+")")
	}
}
