// Package output renders command results for terminals, markdown consumers
// and machines.
//
// ModeAuto resolves to text on a TTY and markdown otherwise, so piping a
// command into a file or another tool never produces ANSI escapes.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
)

// OutputMode selects how a Renderer formats output.
type OutputMode string //nolint:revive

// Mode is shorthand for OutputMode.
type Mode = OutputMode

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
)

// ParseMode validates a mode string. The empty string is ModeAuto.
func ParseMode(s string) (OutputMode, error) {
	switch m := OutputMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeText, ModeMarkdown, ModeJSON:
		return m, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (want auto, text, markdown or json)", s)
	}
}

// Styles holds the lipgloss styles used in text mode.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style
	Key     lipgloss.Style
}

// DefaultStyles returns the text-mode palette.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Key:     lipgloss.NewStyle().Bold(true),
	}
}

// Renderer writes formatted output to a pair of streams.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   OutputMode
	isTTY  bool
	styles Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with explicit TTY state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: DefaultStyles(),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// EffectiveMode resolves ModeAuto against the TTY state.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Writer returns the primary output stream.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the diagnostic stream.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Styles returns the text-mode styles.
func (r *Renderer) Styles() Styles { return r.styles }

func (r *Renderer) styled() bool {
	return r.EffectiveMode() == ModeText && r.isTTY
}

func (r *Renderer) render(s lipgloss.Style, text string) string {
	if !r.styled() {
		return text
	}
	return s.Render(text)
}

// Println writes a line to the output stream.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the output stream.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a section header. level is the markdown heading depth.
func (r *Renderer) Header(level int, text string) {
	switch r.EffectiveMode() {
	case ModeMarkdown:
		r.Println(FormatHeader(level, text))
		r.Println()
	default:
		r.Println(r.render(r.styles.Header, text))
	}
}

// Success writes a success line.
func (r *Renderer) Success(msg string) {
	r.Println(r.prefix("✓", "**OK**", r.styles.Success) + msg)
}

// Warning writes a warning line to the diagnostic stream.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.prefix("!", "**Warning:**", r.styles.Warning)+msg)
}

// Error writes an error line to the diagnostic stream.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.prefix("✗", "**Error:**", r.styles.Error)+msg)
}

// Muted writes a de-emphasized line.
func (r *Renderer) Muted(msg string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println("_" + msg + "_")
		return
	}
	r.Println(r.render(r.styles.Muted, msg))
}

func (r *Renderer) prefix(symbol, markdown string, s lipgloss.Style) string {
	if r.EffectiveMode() == ModeMarkdown {
		return markdown + " "
	}
	return r.render(s, symbol) + " "
}

// StatusLine writes "name status detail" aligned for text mode, or a list
// item in markdown.
func (r *Renderer) StatusLine(name, status, detail string) {
	if r.EffectiveMode() == ModeMarkdown {
		line := fmt.Sprintf("- `%s` **%s**", name, status)
		if detail != "" {
			line += " " + detail
		}
		r.Println(line)
		return
	}

	style := r.styles.Info
	switch strings.ToLower(status) {
	case "pass", "ok", "passed":
		style = r.styles.Success
	case "fail", "failed", "error":
		style = r.styles.Error
	case "skip", "skipped", "excluded":
		style = r.styles.Muted
	}
	line := fmt.Sprintf("%-40s %s", name, r.render(style, status))
	if detail != "" {
		line += "  " + r.render(r.styles.Muted, detail)
	}
	r.Println(line)
}

// KeyValue writes a single key/value line.
func (r *Renderer) KeyValue(key, value string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatKeyValue(key, value))
		return
	}
	r.Println(r.render(r.styles.Key, key+":") + " " + value)
}

// Table writes rows under header. Text mode uses a light box style and
// markdown mode a pipe table.
func (r *Renderer) Table(header []string, rows [][]string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(r.out)

	hdr := make(table.Row, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	tw.AppendHeader(hdr)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, c := range row {
			tr[i] = c
		}
		tw.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeMarkdown {
		tw.RenderMarkdown()
		r.Println()
		return
	}
	tw.SetStyle(table.StyleLight)
	tw.Render()
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// FormatHeader returns a markdown heading of the given level (1-6).
func FormatHeader(level int, text string) string {
	level = max(1, min(level, 6))
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns a markdown list item for key and value.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s:** %s", key, value)
}
