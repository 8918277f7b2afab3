package options

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fivedir/autogen/lexer"
	"github.com/fivedir/autogen/parser"
)

func build(t *testing.T, input string) *Configuration {
	t.Helper()

	cfg, err := Loader{}.Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return cfg
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  View
	}{
		{
			name:  "all only",
			input: "/ALL",
			want:  View{All: true},
		},
		{
			name:  "output with equals",
			input: "/OUTPUT=x.cpp",
			want:  View{Output: "x.cpp"},
		},
		{
			name:  "output with colon",
			input: "-OUTPUT:x.cpp",
			want:  View{Output: "x.cpp"},
		},
		{
			name:  "exclude list keeps order",
			input: "-EXCLUDE_DLLS=(c.dll,a.dll,b.dll)",
			want:  View{ExcludeDlls: []string{"c.dll", "a.dll", "b.dll"}},
		},
		{
			name:  "files then trailing qualifier",
			input: "a.dll b.dll -VERBOSE",
			want:  View{Verbose: true, InputFiles: []string{"a.dll", "b.dll"}},
		},
		{
			name:  "last toggle wins",
			input: "-GENERATE -NOGENERATE",
			want:  View{Generate: Disabled},
		},
		{
			name:  "last database wins",
			input: "/DATABASE=a.accdb /DATABASE=b.accdb",
			want:  View{Database: "b.accdb"},
		},
		{
			name:  "repeated include replaces",
			input: "/INCLUDE_DLLS=(a.dll,b.dll) /INCLUDE_DLLS=c.dll",
			want:  View{IncludeDlls: []string{"c.dll"}},
		},
		{
			name:  "script reference",
			input: "@build.txt",
			want:  View{ScriptPath: "build.txt"},
		},
		{
			name:  "full invocation",
			input: "/imp /inc=kernel*.dll /out=taskmgr.cpp taskmgr.exe /nowebscrape",
			want: View{
				Imports:     true,
				IncludeDlls: []string{"kernel*.dll"},
				Output:      "taskmgr.cpp",
				Webscrape:   Disabled,
				InputFiles:  []string{"taskmgr.exe"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := build(t, tt.input).View()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("View mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEffectiveDefaults(t *testing.T) {
	cfg := build(t, "a.exe")
	if !cfg.Generates() {
		t.Error("Generates should default to true")
	}
	if !cfg.Webscrapes() {
		t.Error("Webscrapes should default to true")
	}
	if cfg.GenerateChoice() != Unset || cfg.WebscrapeChoice() != Unset {
		t.Errorf("choices should stay unset, got %v/%v", cfg.GenerateChoice(), cfg.WebscrapeChoice())
	}
	if _, ok := cfg.Database(); ok {
		t.Error("Database should be absent")
	}

	off := build(t, "-GENERATE -NOGENERATE /WEBSCRAPE")
	if off.Generates() {
		t.Error("Generates should be false after NOGENERATE")
	}
	if !off.Webscrapes() {
		t.Error("Webscrapes should be true after WEBSCRAPE")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	cfg := build(t, "/INCLUDE_DLLS=(a.dll,b.dll) x.exe")

	inc := cfg.IncludeDlls()
	inc[0] = "changed.dll"
	files := cfg.InputFiles()
	files[0] = "changed.exe"

	if got := cfg.IncludeDlls()[0]; got != "a.dll" {
		t.Errorf("IncludeDlls was mutated through a returned slice: %q", got)
	}
	if got := cfg.InputFiles()[0]; got != "x.exe" {
		t.Errorf("InputFiles was mutated through a returned slice: %q", got)
	}
}

func TestBuildDirectAST(t *testing.T) {
	// Build works on hand-made trees as well as parsed ones
	d := &parser.Direct{
		Before: []parser.Qualifier{
			{Kind: parser.QualRecurse},
			{Kind: parser.QualGenerate, Toggle: parser.On},
		},
		Files: []parser.FileRef{{Name: "x.dll"}},
	}
	cfg := Build(d)
	if !cfg.Recurse() || cfg.GenerateChoice() != Enabled {
		t.Errorf("unexpected configuration: %+v", cfg.View())
	}
	if diff := cmp.Diff([]string{"x.dll"}, cfg.InputFiles()); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestChoiceText(t *testing.T) {
	for _, c := range []Choice{Unset, Enabled, Disabled} {
		text, err := c.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", c, err)
		}
		var back Choice
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != c {
			t.Errorf("expected %v, got %v", c, back)
		}
	}

	var c Choice
	if err := c.UnmarshalText([]byte("maybe")); err == nil {
		t.Error("expected error for invalid choice")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		policy Policy
		want   []ViolationKind
	}{
		{
			name:   "valid",
			input:  "/EXPORTS a.dll",
			policy: DefaultPolicy(),
		},
		{
			name:   "conflicting filters",
			input:  "/IMPORTS /INCLUDE_DLLS=a.dll /EXCLUDE_DLLS=b.dll x.exe",
			policy: DefaultPolicy(),
			want:   []ViolationKind{ConflictingDllFilters},
		},
		{
			name:   "path in filter",
			input:  `/IMPORTS /EXCLUDE_DLLS=("C:\Windows\a.dll",b.dll) x.exe`,
			policy: DefaultPolicy(),
			want:   []ViolationKind{PathInDllFilter},
		},
		{
			name:   "output without generate",
			input:  "/IMPORTS /OUTPUT=x.cpp /NOGENERATE x.exe",
			policy: DefaultPolicy(),
			want:   []ViolationKind{OutputWithoutGenerate},
		},
		{
			name:   "missing everything",
			input:  "/VERBOSE",
			policy: DefaultPolicy(),
			want:   []ViolationKind{MissingInputFiles, MissingScanMode},
		},
		{
			name:   "relaxed policy",
			input:  "/VERBOSE",
			policy: Policy{},
		},
		{
			name:   "help skips policy rules",
			input:  "/?",
			policy: DefaultPolicy(),
		},
		{
			name:   "help keeps structural rules",
			input:  "/HELP /INCLUDE_DLLS=a.dll /EXCLUDE_DLLS=b.dll",
			policy: DefaultPolicy(),
			want:   []ViolationKind{ConflictingDllFilters},
		},
		{
			name:   "unresolved script",
			input:  "@build.txt",
			policy: DefaultPolicy(),
			want:   []ViolationKind{UnresolvedScript},
		},
		{
			name:   "violations aggregate",
			input:  "/INCLUDE_DLLS=a.dll /EXCLUDE_DLLS=b.dll /OUTPUT=o.cpp /NOGENERATE",
			policy: DefaultPolicy(),
			want:   []ViolationKind{ConflictingDllFilters, OutputWithoutGenerate, MissingInputFiles, MissingScanMode},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := build(t, tt.input)
			got, err := Validate(cfg, tt.policy)

			if len(tt.want) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !got.Validated() {
					t.Error("result should be marked validated")
				}
				if cfg.Validated() {
					t.Error("input configuration must not be modified")
				}
				if !got.Equal(cfg) {
					t.Error("validated copy should equal the input")
				}
				return
			}

			var semErr *SemanticError
			if !errors.As(err, &semErr) {
				t.Fatalf("expected SemanticError, got %v", err)
			}
			var kinds []ViolationKind
			for _, v := range semErr.Violations {
				kinds = append(kinds, v.Kind)
			}
			if diff := cmp.Diff(tt.want, kinds); diff != "" {
				t.Errorf("violations mismatch (-want +got):\n%s", diff)
			}
			for _, k := range tt.want {
				if !semErr.Has(k) {
					t.Errorf("Has(%v) = false", k)
				}
			}
		})
	}
}

func TestHelpKeepsFields(t *testing.T) {
	cfg, err := Validate(build(t, "/HELP /VERBOSE /OUTPUT=x.cpp"), DefaultPolicy())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !cfg.HelpRequested() || !cfg.Verbose() {
		t.Errorf("fields dropped: %+v", cfg.View())
	}
	if out, _ := cfg.Output(); out != "x.cpp" {
		t.Errorf("expected output x.cpp, got %q", out)
	}
}

func TestSemanticErrorMessage(t *testing.T) {
	cause := os.ErrNotExist
	err := &SemanticError{Violations: []Violation{
		{Kind: ScriptUnreadable, Message: "cannot read script a.txt", Err: cause},
		{Kind: MissingScanMode, Message: "no scan mode"},
	}}

	if !errors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is should see the wrapped cause")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "2 problems:") || !strings.Contains(msg, "no scan mode") {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/ALL", "/ALL"},
		{"a.exe -verbose /imp", "/IMPORTS /VERBOSE a.exe"},
		{"-OUTPUT:x.cpp /GENERATE", "/GENERATE /OUTPUT=x.cpp"},
		{"/EXCLUDE_DLLS=(a.dll)", "/EXCLUDE_DLLS=a.dll"},
		{"/EXCLUDE_DLLS=(b.dll, a.dll)", "/EXCLUDE_DLLS=(b.dll,a.dll)"},
		{`"my app.exe" "all"`, `"my app.exe" "all"`},
		{"@build.txt", "@build.txt"},
		{`@"my script.txt"`, `@"my script.txt"`},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Canonical(build(t, tt.input), nil)
			if err != nil {
				t.Fatalf("Canonical: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCanonicalRoundTrip(t *testing.T) {
	inputs := []string{
		"/ALL",
		"/IMPORTS /EXPORTS /RECURSE /VERBOSE /ALL a.dll b.dll",
		"-DATABASE=api.accdb -OUTPUT:out.cpp -NOGENERATE -NOWEBSCRAPE x.exe",
		"/INCLUDE_DLLS=(kernel32.dll, user32.dll) /WEBSCRAPE /GENERATE x.exe",
		`"program files.exe" "exports" /EXCLUDE_DLLS="odd name.dll"`,
		"/HELP",
		"@build.txt",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first := build(t, input)
			text, err := Canonical(first, nil)
			if err != nil {
				t.Fatalf("Canonical: %v", err)
			}
			second := build(t, text)
			if !first.Equal(second) {
				t.Errorf("round trip changed configuration:\n  first:  %+v\n  second: %+v\n  text:   %s",
					first.View(), second.View(), text)
			}
			again, err := Canonical(second, nil)
			if err != nil {
				t.Fatalf("Canonical: %v", err)
			}
			if again != text {
				t.Errorf("canonical form is not stable: %q then %q", text, again)
			}
		})
	}
}

func TestCanonicalCustomLexer(t *testing.T) {
	lx, err := lexer.New(lexer.Options{CommentMarker: "#", CaseSensitive: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	loader := Loader{Lexer: lx}

	cfg, err := loader.Parse("/IMPORTS exports # trailing")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// lower case is a file name under case-sensitive rules, and stays bare
	text, err := Canonical(cfg, lx)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if text != "/IMPORTS exports" {
		t.Errorf("unexpected canonical text %q", text)
	}
}

func TestCanonicalLines(t *testing.T) {
	lines, err := CanonicalLines(build(t, "/IMPORTS /VERBOSE a.exe b.exe"), nil)
	if err != nil {
		t.Fatalf("CanonicalLines: %v", err)
	}
	want := []string{"/IMPORTS", "/VERBOSE", "a.exe", "b.exe"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

// fakeReader serves scripts from memory
type fakeReader struct {
	scripts map[string]string
	reads   []string
}

func (f *fakeReader) ReadScript(ctx context.Context, path string) (string, error) {
	f.reads = append(f.reads, path)
	text, ok := f.scripts[path]
	if !ok {
		return "", &SemanticError{Violations: []Violation{{
			Kind:    ScriptUnreadable,
			Message: "cannot read script " + path,
			Err:     os.ErrNotExist,
		}}}
	}
	return text, nil
}

func TestLoad(t *testing.T) {
	reader := &fakeReader{scripts: map[string]string{
		"build.txt":    "! nightly build\n/IMPORTS /VERBOSE\ntaskmgr.exe ! main binary\nhh.exe\n",
		"nested.txt":   "@other.txt\n",
		"bad.txt":      "/IMPORTS\n/OUTPUT x.cpp\n",
		"conflict.txt": "/IMPORTS /INCLUDE_DLLS=a.dll /EXCLUDE_DLLS=b.dll x.exe",
	}}
	loader := NewLoader(reader)
	ctx := context.Background()

	t.Run("direct", func(t *testing.T) {
		res, err := loader.Load(ctx, "/EXPORTS a.dll")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if res.Script != "" {
			t.Errorf("direct invocation should have no script, got %q", res.Script)
		}
		if !res.Config.Validated() || !res.Config.Exports() {
			t.Errorf("unexpected configuration: %+v", res.Config.View())
		}
	})

	t.Run("script", func(t *testing.T) {
		res, err := loader.Load(ctx, "@build.txt")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if res.Script != "build.txt" {
			t.Errorf("expected provenance build.txt, got %q", res.Script)
		}
		want := View{Imports: true, Verbose: true, InputFiles: []string{"taskmgr.exe", "hh.exe"}}
		if diff := cmp.Diff(want, res.Config.View()); diff != "" {
			t.Errorf("View mismatch (-want +got):\n%s", diff)
		}
		if res.Config.IsScript() {
			t.Error("resolved configuration must not be a script reference")
		}
	})

	t.Run("missing script", func(t *testing.T) {
		_, err := loader.Load(ctx, "@missing.txt")
		var semErr *SemanticError
		if !errors.As(err, &semErr) || !semErr.Has(ScriptUnreadable) {
			t.Fatalf("expected ScriptUnreadable, got %v", err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Error("cause should be preserved")
		}
	})

	t.Run("nested script", func(t *testing.T) {
		_, err := loader.Load(ctx, "@nested.txt")
		var synErr *parser.SyntaxError
		if !errors.As(err, &synErr) {
			t.Fatalf("expected SyntaxError, got %v", err)
		}
		var scriptErr *ScriptError
		if !errors.As(err, &scriptErr) || scriptErr.Path != "nested.txt" {
			t.Errorf("error should name the script: %v", err)
		}
		if !strings.Contains(err.Error(), "nested.txt") {
			t.Errorf("message should name the script: %v", err)
		}
	})

	t.Run("syntax error in script", func(t *testing.T) {
		_, err := loader.Load(ctx, "@bad.txt")
		var synErr *parser.SyntaxError
		if !errors.As(err, &synErr) {
			t.Fatalf("expected SyntaxError, got %v", err)
		}
		if synErr.Pos.Line != 2 || synErr.Pos.Column != 9 {
			t.Errorf("expected error at 2:9, got %s", synErr.Pos)
		}
	})

	t.Run("semantic error in script", func(t *testing.T) {
		_, err := loader.Load(ctx, "@conflict.txt")
		var semErr *SemanticError
		if !errors.As(err, &semErr) || !semErr.Has(ConflictingDllFilters) {
			t.Fatalf("expected ConflictingDllFilters, got %v", err)
		}
	})

	t.Run("lex error", func(t *testing.T) {
		_, err := loader.Load(ctx, "/IMPORTS a.exe\x01")
		var lexErr *lexer.LexError
		if !errors.As(err, &lexErr) {
			t.Fatalf("expected LexError, got %v", err)
		}
	})
}

func TestLoadWithoutReader(t *testing.T) {
	_, err := Loader{Policy: DefaultPolicy()}.Load(context.Background(), "@build.txt")
	var semErr *SemanticError
	if !errors.As(err, &semErr) || !semErr.Has(ScriptUnreadable) {
		t.Fatalf("expected ScriptUnreadable, got %v", err)
	}
}
