package emitter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fivedir/autogen/lexer"
	"github.com/fivedir/autogen/options"
	"github.com/fivedir/autogen/script"
)

func parse(t *testing.T, lx *lexer.Lexer, input string) *options.Configuration {
	t.Helper()
	cfg, err := options.Loader{Lexer: lx}.Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return cfg
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		header []string
		want   string
	}{
		{
			name:  "qualifiers and files",
			input: "a.exe /verbose /imp",
			want:  "! autogen script\n\n/IMPORTS\n/VERBOSE\n\na.exe\n",
		},
		{
			name:   "header",
			input:  "/ALL",
			header: []string{"nightly build"},
			want:   "! autogen script\n! nightly build\n\n/ALL\n",
		},
		{
			name:  "files only",
			input: `a.dll "b c.dll"`,
			want:  "! autogen script\n\na.dll\n\"b c.dll\"\n",
		},
		{
			name:  "empty",
			input: "",
			want:  "! autogen script\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(parse(t, nil, tt.input), nil, tt.header...)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("expected:\n%q\ngot:\n%q", tt.want, got)
			}
		})
	}
}

func TestRenderScriptReference(t *testing.T) {
	_, err := Render(parse(t, nil, "@build.txt"), nil)
	if !errors.Is(err, ErrScriptReference) {
		t.Errorf("expected ErrScriptReference, got %v", err)
	}
}

func TestWriteScriptRoundTrip(t *testing.T) {
	lx, err := lexer.New(lexer.Options{CommentMarker: "#", Abbreviations: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "out", "build.txt")
	cfg := parse(t, lx, `/IMPORTS /INCLUDE_DLLS=(kernel32.dll,"my lib.dll") /NOWEBSCRAPE /OUTPUT:out.cpp taskmgr.exe`)

	if err := WriteScript(path, cfg, lx, "written by a test"); err != nil {
		t.Fatalf("WriteScript: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if data[0] != '#' {
		t.Errorf("expected header with custom marker, got %q", data)
	}

	loader := options.Loader{
		Lexer:  lx,
		Reader: script.NewReader(script.Options{BaseDir: filepath.Dir(path)}),
		Policy: options.DefaultPolicy(),
	}
	res, err := loader.Load(context.Background(), "@build.txt")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !res.Config.Equal(cfg) {
		t.Errorf("configuration changed through script:\n  want %+v\n  got  %+v", cfg.View(), res.Config.View())
	}
}
