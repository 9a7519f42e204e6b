package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	msgStyle   = lipgloss.NewStyle().Bold(true)
	levelStyle = map[Level]lipgloss.Style{
		LevelTrace: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

// prettyHandler writes colored records for terminals: one line per record
// in text format, or indented objects in JSON format. Group names are
// flattened into dotted keys.
type prettyHandler struct {
	w      io.Writer
	mu     *sync.Mutex
	format Format
	opts   slog.HandlerOptions
	attrs  []slog.Attr
	groups []string
}

func newPrettyHandler(w io.Writer, format Format, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{w: w, mu: &sync.Mutex{}, format: format, opts: *opts}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.flatten(attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &c
}

// flatten resolves attrs, applies ReplaceAttr and prefixes keys with the
// open groups.
func (h *prettyHandler) flatten(attrs []slog.Attr) []slog.Attr {
	var out []slog.Attr

	var walk func(groups []string, a slog.Attr)

	walk = func(groups []string, a slog.Attr) {
		a.Value = a.Value.Resolve()

		if a.Value.Kind() == slog.KindGroup {
			sub := groups
			if a.Key != "" {
				sub = append(groups[:len(groups):len(groups)], a.Key)
			}

			for _, ga := range a.Value.Group() {
				walk(sub, ga)
			}

			return
		}

		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(groups, a)
		}

		if a.Key == "" {
			return
		}

		a.Key = strings.Join(append(groups[:len(groups):len(groups)], a.Key), ".")
		out = append(out, a)
	}

	for _, a := range attrs {
		walk(h.groups, a)
	}

	return out
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var head []slog.Attr

	for _, a := range []slog.Attr{
		slog.Time(slog.TimeKey, r.Time),
		slog.Any(slog.LevelKey, r.Level),
	} {
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		head = append(head, a)
	}

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			head = append(head, slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	attrs := h.attrs

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.flatten([]slog.Attr{a})...)

		return true
	})

	var buf bytes.Buffer

	if h.format == FormatJSON {
		h.writeJSON(&buf, Level(r.Level), head, r.Message, attrs)
	} else {
		h.writeText(&buf, Level(r.Level), head, r.Message, attrs)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeText(
	buf *bytes.Buffer,
	level Level,
	head []slog.Attr,
	msg string,
	attrs []slog.Attr,
) {
	for _, a := range head {
		switch a.Key {
		case "":
			continue
		case slog.TimeKey:
			buf.WriteString(timeStyle.Render(a.Value.String()))
		case slog.LevelKey:
			buf.WriteString(levelStyle[level].Render(fmt.Sprintf("%-5s", a.Value.String())))
		default:
			buf.WriteString(keyStyle.Render(a.Value.String()))
		}

		buf.WriteByte(' ')
	}

	buf.WriteString(msgStyle.Render(msg))

	for _, a := range attrs {
		buf.WriteByte(' ')
		buf.WriteString(keyStyle.Render(a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeJSON(
	buf *bytes.Buffer,
	level Level,
	head []slog.Attr,
	msg string,
	attrs []slog.Attr,
) {
	fields := make([]slog.Attr, 0, len(head)+len(attrs)+1)

	for _, a := range head {
		if a.Key != "" {
			fields = append(fields, a)
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, msg))
	fields = append(fields, attrs...)

	buf.WriteString("{\n")

	for i, a := range fields {
		value, err := jsonValue(a.Value)
		if err != nil {
			value, _ = json.Marshal(a.Value.String())
		}

		key, _ := json.Marshal(a.Key)

		buf.WriteString("  ")
		buf.WriteString(keyStyle.Render(string(key)))
		buf.WriteString(": ")

		if a.Key == slog.LevelKey {
			buf.WriteString(levelStyle[level].Render(string(value)))
		} else {
			buf.Write(value)
		}

		if i < len(fields)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
}

func jsonValue(v slog.Value) ([]byte, error) {
	if err, ok := v.Any().(error); ok {
		return json.Marshal(err.Error())
	}

	return json.Marshal(v.Any())
}
