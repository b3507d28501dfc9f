// Package output provides rendering for csvgroup CLI commands.
//
// A Renderer adapts command output to its environment: styled text on a
// terminal, plain markdown when piped (agent-friendly), or JSON on request.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects the output format.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// ValidModes lists the accepted values for the --output flag.
var ValidModes = []string{string(ModeAuto), string(ModeText), string(ModeMarkdown), string(ModeJSON)}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Renderer writes command output in a single effective mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styled bool
}

// NewRenderer creates a renderer, resolving ModeAuto from whether out is a
// terminal: TTY gets styled text, anything else gets markdown.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state. Used by
// tests to pin the auto-detection result.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	effective := mode
	if effective == "" || effective == ModeAuto {
		if isTTY {
			effective = ModeText
		} else {
			effective = ModeMarkdown
		}
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   effective,
		styled: effective == ModeText && isTTY && !termenv.EnvNoColor(),
	}
}

// EffectiveMode returns the resolved mode (never ModeAuto).
func (r *Renderer) EffectiveMode() Mode { return r.mode }

// Writer returns the underlying output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// Println writes a line to the output writer.
func (r *Renderer) Println(s string) {
	fmt.Fprintln(r.out, s)
}

// Printf writes formatted output to the output writer.
func (r *Renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Header writes a section header, styled on a TTY and as a markdown
// heading otherwise.
func (r *Renderer) Header(level int, s string) {
	if r.styled {
		fmt.Fprintln(r.out, headerStyle.Render(s))
		return
	}
	fmt.Fprintln(r.out, FormatHeader(level, s))
}

// Success writes a success line.
func (r *Renderer) Success(s string) {
	if r.styled {
		fmt.Fprintln(r.out, successStyle.Render("✓ ")+s)
		return
	}
	fmt.Fprintln(r.out, s)
}

// Warn writes a warning line to the error writer.
func (r *Renderer) Warn(s string) {
	if r.styled {
		fmt.Fprintln(r.errOut, warnStyle.Render("! ")+s)
		return
	}
	fmt.Fprintln(r.errOut, s)
}

// Muted writes a de-emphasized line.
func (r *Renderer) Muted(s string) {
	if r.styled {
		fmt.Fprintln(r.out, mutedStyle.Render(s))
		return
	}
	fmt.Fprintln(r.out, s)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatHeader renders a markdown heading.
func FormatHeader(level int, s string) string {
	return strings.Repeat("#", level) + " " + s
}

// FormatKeyValue renders a markdown bolded key-value line.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("**%s:** %s", key, value)
}
