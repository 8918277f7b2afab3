package lexer

import (
	"errors"
	"testing"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func assertKinds(t *testing.T, got []Token, want ...Kind) {
	t.Helper()

	gotKinds := kinds(got)
	if len(gotKinds) != len(want) {
		t.Fatalf("expected %d tokens %v, got %d %v", len(want), want, len(gotKinds), gotKinds)
	}
	for i := range want {
		if gotKinds[i] != want[i] {
			t.Errorf("token[%d]: expected %s, got %s (%q)", i, want[i], gotKinds[i], got[i].Lexeme)
		}
	}
}

func TestTokenizePunctuationAndKeywords(t *testing.T) {
	toks, err := Tokenize("/ALL -OUTPUT=out.txt /EXCLUDE_DLLS:(a.dll,b.dll) @x")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	assertKinds(t, toks,
		Slash, All,
		Dash, Output, Equals, FileName,
		Slash, ExcludeDlls, Colon, LParen, FileName, Comma, FileName, RParen,
		At, FileName,
		EOF,
	)

	if toks[5].Lexeme != "out.txt" {
		t.Errorf("expected lexeme out.txt, got %q", toks[5].Lexeme)
	}
}

func TestTokenizeAllKeywords(t *testing.T) {
	for _, k := range Keywords() {
		t.Run(k.String(), func(t *testing.T) {
			toks, err := Tokenize("/" + k.Spelling())
			if err != nil {
				t.Fatalf("Tokenize: %v", err)
			}
			assertKinds(t, toks, Slash, k, EOF)
		})
	}
}

func TestTokenizeDropsCommentsAndWhitespace(t *testing.T) {
	input := "! leading comment\n  /IMPORTS   ! trailing\n\ta.exe\r\n"
	toks, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	assertKinds(t, toks, Slash, Imports, FileName, EOF)

	if toks[2].Pos.Line != 3 || toks[2].Pos.Column != 2 {
		t.Errorf("expected a.exe at 3:2, got %s", toks[2].Pos)
	}
}

func TestTokenizeCaseInsensitiveByDefault(t *testing.T) {
	toks, err := Tokenize("/all /Verbose -nowebscrape")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	assertKinds(t, toks, Slash, All, Slash, Verbose, Dash, NoWebscrape, EOF)
	if toks[1].Lexeme != "all" {
		t.Errorf("lexeme should keep the source spelling, got %q", toks[1].Lexeme)
	}
}

func TestTokenizeAbbreviations(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Kind
	}{
		{"unique prefix", "/imp", Imports},
		{"single letter", "/v", Verbose},
		{"nogen", "-nog", NoGenerate},
		{"question mark", "/?", Help},
		{"ambiguous", "/e", FileName},
		{"ambiguous no", "/no", FileName},
		{"not a prefix", "/FOO", FileName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize: %v", err)
			}
			if len(toks) != 3 {
				t.Fatalf("expected 3 tokens, got %v", kinds(toks))
			}
			if toks[1].Kind != tt.want {
				t.Errorf("expected %s, got %s", tt.want, toks[1].Kind)
			}
		})
	}
}

func TestAbbreviationsOnlyAfterQualChar(t *testing.T) {
	// "v" and "a" are unique prefixes but stand alone here, so they stay file names
	toks, err := Tokenize("v a all")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	assertKinds(t, toks, FileName, FileName, All, EOF)

	// whitespace between qual char and word breaks the abbreviation too
	toks, err = Tokenize("/ imp")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	assertKinds(t, toks, Slash, FileName, EOF)
}

func TestTokenizeQuotedFileNames(t *testing.T) {
	toks, err := Tokenize(`"api-ms-win-core.dll" "ALL" "a file.exe"`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	assertKinds(t, toks, FileName, FileName, FileName, EOF)

	want := []string{"api-ms-win-core.dll", "ALL", "a file.exe"}
	for i, w := range want {
		if toks[i].Lexeme != w {
			t.Errorf("token[%d]: expected %q, got %q", i, w, toks[i].Lexeme)
		}
		if !toks[i].Quoted {
			t.Errorf("token[%d]: expected Quoted", i)
		}
	}
}

func TestTokenizeHyphenSplitsBareNames(t *testing.T) {
	toks, err := Tokenize("api-ms.dll")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	assertKinds(t, toks, FileName, Dash, FileName, EOF)
}

func TestTokenizeLexErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		char   rune
		column int
	}{
		{"unterminated quote", `/OUTPUT="abc`, '"', 9},
		{"quote across newline", "\"abc\ndef\"", '"', 1},
		{"control character", "a.dll \x01", '\x01', 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("expected LexError, got %v", err)
			}
			if lexErr.Char != tt.char {
				t.Errorf("expected char %q, got %q", tt.char, lexErr.Char)
			}
			if lexErr.Pos.Column != tt.column {
				t.Errorf("expected column %d, got %d", tt.column, lexErr.Pos.Column)
			}
		})
	}
}

func TestCustomCommentMarker(t *testing.T) {
	l, err := New(Options{CommentMarker: "#", Abbreviations: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	toks, err := l.Tokenize("a!b.dll # comment /ALL\n/VERBOSE")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	assertKinds(t, toks, FileName, Slash, Verbose, EOF)
	if toks[0].Lexeme != "a!b.dll" {
		t.Errorf("expected a!b.dll, got %q", toks[0].Lexeme)
	}
}

func TestCaseSensitiveOption(t *testing.T) {
	l, err := New(Options{CommentMarker: "!", CaseSensitive: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	toks, err := l.Tokenize("/all /ALL /imp")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	assertKinds(t, toks, Slash, FileName, Slash, All, Slash, FileName, EOF)
}

func TestNewRejectsBadCommentMarkers(t *testing.T) {
	for _, marker := range []string{"", "-", "/", "a", "\"", "# x", "#!", "!!"} {
		if _, err := New(Options{CommentMarker: marker}); err == nil {
			t.Errorf("marker %q: expected error", marker)
		}
	}
}

func TestQuote(t *testing.T) {
	l := Default()

	tests := []struct {
		name string
		want string
	}{
		{"a.dll", "a.dll"},
		{"kernel*.dll", "kernel*.dll"},
		{"api-ms.dll", `"api-ms.dll"`},
		{"all", `"all"`},
		{"a file.exe", `"a file.exe"`},
		{"C:\\Windows\\x.dll", `"C:\Windows\x.dll"`},
		{"", `""`},
	}

	for _, tt := range tests {
		got, err := l.Quote(tt.name)
		if err != nil {
			t.Fatalf("Quote(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("Quote(%q) = %q, want %q", tt.name, got, tt.want)
		}

		toks, err := l.Tokenize(got)
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", got, err)
		}
		if toks[0].Kind != FileName || toks[0].Lexeme != tt.name {
			t.Errorf("Quote(%q) does not lex back: %s %q", tt.name, toks[0].Kind, toks[0].Lexeme)
		}
	}

	if _, err := l.Quote(`a"b`); err == nil {
		t.Error("expected error quoting a name with a double quote")
	}
}

func TestCandidates(t *testing.T) {
	got := Default().Candidates("e")
	if len(got) != 2 || got[0] != ExcludeDlls || got[1] != Exports {
		t.Errorf("expected [EXCLUDE_DLLS EXPORTS], got %v", got)
	}
}
