package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	isTTY   bool
	verbose bool

	out io.Writer = os.Stdout

	cyan   = lipgloss.Color("6")
	green  = lipgloss.Color("2")
	red    = lipgloss.Color("1")
	yellow = lipgloss.Color("3")
	dim    = lipgloss.Color("8")

	// Styles - exported for use in other packages
	Primary = lipgloss.NewStyle().Foreground(cyan)
	Success = lipgloss.NewStyle().Foreground(green)
	Error   = lipgloss.NewStyle().Foreground(red)
	Warning = lipgloss.NewStyle().Foreground(yellow)
	Dim     = lipgloss.NewStyle().Foreground(dim)
	Bold    = lipgloss.NewStyle().Bold(true)
)

func init() {
	isTTY = term.IsTerminal(int(os.Stdout.Fd()))
	if !isTTY {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// SetOutput redirects everything ui prints; it returns the previous writer
func SetOutput(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// SetVerbose enables/disables verbose mode
func SetVerbose(v bool) {
	verbose = v
}

// IsVerbose returns whether verbose mode is enabled
func IsVerbose() bool {
	return verbose
}

// IsTTY returns whether stdout is a terminal
func IsTTY() bool {
	return isTTY
}

// Width returns the terminal width, or 80 when unknown
func Width() int {
	if !isTTY {
		return 80
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// Detail prints indented secondary info with arrow
func Detail(msg string) {
	fmt.Fprintf(out, "  %s %s\n", Dim.Render("→"), msg)
}

// Field prints an aligned "label: value" row
func Field(label string, value any) {
	fmt.Fprintf(out, "  %s %v\n", Dim.Render(fmt.Sprintf("%-22s", label+":")), value)
}

// Verbosef prints a formatted message only in verbose mode
func Verbosef(format string, a ...any) {
	if verbose {
		fmt.Fprintf(out, "  %s %s\n", Dim.Render("→"), Dim.Render(fmt.Sprintf(format, a...)))
	}
}

// SuccessMsg prints a success message with checkmark
func SuccessMsg(msg string) {
	fmt.Fprintf(out, "%s %s\n", Success.Render("✓"), msg)
}

// ErrorMsg prints an error with formatting and optional hints
func ErrorMsg(title string, err error, hints ...string) {
	fmt.Fprintf(out, "%s %s\n", Error.Render("✗"), title)
	if err != nil {
		fmt.Fprintf(out, "  %s\n", Dim.Render(err.Error()))
	}
	for _, hint := range hints {
		fmt.Fprintf(out, "  %s %s\n", Dim.Render("Hint:"), hint)
	}
}

// WarnMsg prints a warning message
func WarnMsg(msg string) {
	fmt.Fprintf(out, "%s %s\n", Warning.Render("!"), msg)
}

// Caret returns the given 1-based line of source with a marker under
// column. Tabs before the column are kept so the marker lines up.
func Caret(source string, line, column int) string {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	text := strings.TrimRight(lines[line-1], "\r")

	var pad strings.Builder
	for i, r := range []rune(text) {
		if i >= column-1 {
			break
		}
		if r == '\t' {
			pad.WriteRune('\t')
		} else {
			pad.WriteRune(' ')
		}
	}
	if n := column - 1 - len([]rune(text)); n > 0 {
		pad.WriteString(strings.Repeat(" ", n))
	}

	return "  " + text + "\n  " + pad.String() + Error.Render("^")
}

// FormatDuration formats duration nicely (e.g., "234ms" or "1.2s")
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// Println is a simple wrapper for fmt.Println
func Println(a ...any) {
	fmt.Fprintln(out, a...)
}

// Printf is a simple wrapper for fmt.Printf
func Printf(format string, a ...any) {
	fmt.Fprintf(out, format, a...)
}
