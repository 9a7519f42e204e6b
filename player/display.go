package player

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TextDisplay writes scenario output as plain text. Linebreaks end the
// line, page breaks leave one blank line and speakers prefix the line
// with their name.
type TextDisplay struct {
	w       io.Writer
	speaker lipgloss.Style
	styled  bool
	fresh   bool
	err     error
}

// DisplayOption configures a [TextDisplay].
type DisplayOption func(*TextDisplay)

// WithSpeakerStyle renders speaker names with style.
func WithSpeakerStyle(style lipgloss.Style) DisplayOption {
	return func(d *TextDisplay) {
		d.speaker = style
		d.styled = true
	}
}

// NewTextDisplay returns a display writing to w.
func NewTextDisplay(w io.Writer, opts ...DisplayOption) *TextDisplay {
	d := &TextDisplay{w: w, fresh: true}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// DefaultSpeakerStyle is the speaker style used on terminals.
func DefaultSpeakerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
}

func (d *TextDisplay) write(s string) {
	if d.err != nil || s == "" {
		return
	}

	_, d.err = io.WriteString(d.w, s)
	d.fresh = strings.HasSuffix(s, "\n")
}

// Text writes text.
func (d *TextDisplay) Text(_ context.Context, text string) { d.write(text) }

// Linebreak ends the current line.
func (d *TextDisplay) Linebreak(context.Context) { d.write("\n") }

// PageBreak ends the current line, if any, and writes a blank line.
func (d *TextDisplay) PageBreak(context.Context) {
	if !d.fresh {
		d.write("\n")
	}

	d.write("\n")
}

// Speaker starts a line attributed to name.
func (d *TextDisplay) Speaker(_ context.Context, name string) {
	if !d.fresh {
		d.write("\n")
	}

	if d.styled {
		name = d.speaker.Render(name)
	}

	d.write(name + ": ")
}

// Err returns the first write error.
func (d *TextDisplay) Err() error { return d.err }
