// Package emitter writes a Configuration out as a script file that loads
// back through @file.
package emitter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/fivedir/autogen/lexer"
	"github.com/fivedir/autogen/options"
	"github.com/fivedir/autogen/ui"
)

// ErrScriptReference is returned for an unresolved @file configuration,
// which a script file cannot contain
var ErrScriptReference = errors.New("cannot write a script reference into a script file")

const scriptTemplate = `{{.Marker}} autogen script
{{- range .Header}}
{{$.Marker}} {{.}}
{{- end}}
{{- if .Qualifiers}}
{{range .Qualifiers}}
{{.}}
{{- end}}
{{- end}}
{{- if .Files}}
{{range .Files}}
{{.}}
{{- end}}
{{- end}}
`

var tmpl = template.Must(template.New("script").Parse(scriptTemplate))

// TemplateData is passed to the script template
type TemplateData struct {
	Marker     string
	Header     []string // extra comment lines
	Qualifiers []string // one canonical qualifier per line
	Files      []string // quoted input files
}

// Render produces script text for cfg using the conventions of lx. A nil
// lexer means the default conventions.
func Render(cfg *options.Configuration, lx *lexer.Lexer, header ...string) ([]byte, error) {
	if cfg.IsScript() {
		return nil, ErrScriptReference
	}
	if lx == nil {
		lx = lexer.Default()
	}

	lines, err := options.CanonicalLines(cfg, lx)
	if err != nil {
		return nil, err
	}

	// qualifiers come first in canonical output
	nfiles := len(cfg.InputFiles())
	split := len(lines) - nfiles

	data := TemplateData{
		Marker:     lx.Options().CommentMarker,
		Header:     header,
		Qualifiers: lines[:split],
		Files:      lines[split:],
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteScript renders cfg and writes it to path, creating parent directories
func WriteScript(path string, cfg *options.Configuration, lx *lexer.Lexer, header ...string) error {
	data, err := Render(cfg, lx, header...)
	if err != nil {
		return err
	}

	ui.Verbosef("writing script: path=%s, bytes=%d", path, len(data))

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write script file: %w", err)
	}
	return nil
}
