package normalize

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/rosetto/lang"
	"github.com/ardnew/rosetto/log"
)

// Canonical tags produced or recognized by the normalizer.
const (
	LabelTag     = "label"
	PageBreakTag = "pb"
	BreakTag     = "br"
	SpeakerTag   = "speaker"
)

// DefaultInterpolation is the function [%=expr%] spans are evaluated with.
const DefaultInterpolation = "math.calc"

// CommentMarker starts a trailing comment.
const CommentMarker = ';'

// Normalizer rewrites author-facing script lines into canonical text.
type Normalizer struct {
	designators []Designator
	logger      log.Logger
	autoBreak   bool
}

// Option configures a [Normalizer].
type Option func(*Normalizer)

// WithDesignator adds a rewrite rule. Rules at the same position run in
// the order they were added, after the built-in rules.
func WithDesignator(d Designator) Option {
	return func(n *Normalizer) { n.designators = append(n.designators, d) }
}

// WithReplacement adds a literal replacement of from with to.
func WithReplacement(from, to string) Option {
	return WithDesignator(Replace(from, to))
}

// WithAutoBreak controls whether a linebreak tag is appended to lines that
// end in prose. It is enabled by default.
func WithAutoBreak(enable bool) Option {
	return func(n *Normalizer) { n.autoBreak = enable }
}

// WithLogger sets the logger. If not provided, logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(n *Normalizer) { n.logger = logger }
}

// New returns a normalizer with the built-in rules, in priority order:
//
//   - tag: "[[" escape, [%=expr%] interpolation, [%script%] inline script
//   - middle: ";" comments, tab replacement
//   - head: *label, ----, @speaker, #package call, !actor! call
//   - tail: "\" continues the line, "^" forces a break
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		designators: []Designator{
			Escape(),
			Interpolation(DefaultInterpolation),
			InlineScript(),
			Comment(CommentMarker),
			Replace("\t", " "),
			Label(),
			PageBreak(),
			Speaker(),
			PackageCall(),
			ActorCall(),
			Continue(),
			Break(),
		},
		autoBreak: true,
	}

	for _, opt := range opts {
		opt(n)
	}

	slices.SortStableFunc(n.designators, func(a, b Designator) int {
		return int(a.Position()) - int(b.Position())
	})

	return n
}

// Normalize converts lines to canonical form. Lines that are empty after
// comments are stripped are dropped, and a line with an unclosed tag is
// joined with the lines that follow until the tag is closed.
func (n *Normalizer) Normalize(ctx context.Context, lines []string) ([]string, error) {
	var (
		out     []*Line
		pending string
		start   int
	)

	for i, raw := range lines {
		if pending != "" {
			raw = pending + " " + strings.TrimSpace(raw)
		} else {
			start = i
		}

		l, open := n.rewrite(raw)
		if open {
			pending = raw

			continue
		}

		pending = ""

		if l == nil {
			n.logger.TraceContext(ctx, "line dropped", slog.Int("line", i+1))

			continue
		}

		out = append(out, l)
	}

	if pending != "" {
		return nil, lang.ErrUnbalanced.With(
			slog.Int("line", start+1),
			slog.String("text", pending),
		)
	}

	result := n.finish(out)

	n.logger.DebugContext(ctx, "normalized",
		slog.Int("lines_in", len(lines)),
		slog.Int("lines_out", len(result)),
	)

	return result, nil
}

// NormalizeString splits text into lines and normalizes them.
func (n *Normalizer) NormalizeString(ctx context.Context, text string) ([]string, error) {
	return n.Normalize(ctx, strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"))
}

// rewrite applies the designators to one logical line. It returns a nil
// line if nothing is left, and open if the line has an unclosed tag.
func (n *Normalizer) rewrite(raw string) (l *Line, open bool) {
	l = &Line{Text: raw}

	pos, head := PositionTag, false

	for _, d := range n.designators {
		if d.Position() > PositionMiddle && pos <= PositionMiddle {
			if unclosed(l.Text) {
				return nil, true
			}

			l.Text = strings.TrimSpace(l.Text)
			if l.Text == "" {
				return nil, false
			}
		}

		pos = d.Position()

		if pos == PositionHead {
			if head {
				continue
			}

			head = d.Apply(l)

			continue
		}

		d.Apply(l)
	}

	if pos <= PositionMiddle && unclosed(l.Text) {
		return nil, true
	}

	l.Text = strings.TrimSpace(l.restore())
	if l.Text == "" {
		return nil, false
	}

	if l.Spaced {
		l.Text += " "
	}

	return l, false
}

// finish drops redundant page breaks and appends automatic linebreaks.
func (n *Normalizer) finish(lines []*Line) []string {
	out := make([]string, 0, len(lines))

	for i, l := range lines {
		if l.Text == pageBreak && len(out) > 0 {
			prev := lastTag(out[len(out)-1])
			if prev == PageBreakTag || prev == SpeakerTag {
				continue
			}
		}

		text := l.Text

		if n.autoBreak && n.wantsBreak(l, next(lines, i)) {
			text += lineBreak
		}

		out = append(out, text)
	}

	return out
}

func (n *Normalizer) wantsBreak(l, following *Line) bool {
	if l.NoBreak || lastTag(l.Text) == BreakTag {
		return false
	}

	if l.ForceBreak {
		return true
	}

	if tagOnly(l.Text) {
		return false
	}

	return following == nil || following.Text != pageBreak
}

var (
	pageBreak = "[" + PageBreakTag + "]"
	lineBreak = "[" + BreakTag + "]"
)

func next(lines []*Line, i int) *Line {
	if i+1 < len(lines) {
		return lines[i+1]
	}

	return nil
}

// unclosed reports whether s has an open bracket without its match.
func unclosed(s string) bool {
	depth, quoted := 0, false

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && quoted:
			i++
		case c == '"' && depth > 0:
			quoted = !quoted
		case quoted:
		case c == '[':
			depth++
		case c == ']':
			depth--
		}
	}

	return depth > 0
}

// tagOnly reports whether s consists of tags and whitespace only.
func tagOnly(s string) bool {
	depth, quoted := 0, false

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && quoted:
			i++
		case c == '"' && depth > 0:
			quoted = !quoted
		case quoted:
		case c == '[':
			depth++
		case c == ']':
			depth--
		case depth == 0 && c != ' ' && c != '\t':
			return false
		}
	}

	return true
}

// lastTag returns the name of the tag that ends s, or "" if s ends in text.
func lastTag(s string) string {
	s = strings.TrimRight(s, " ")
	if !strings.HasSuffix(s, "]") {
		return ""
	}

	depth, quoted := 0, false

	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]

		switch {
		case c == '"' && depth > 0 && (i == 0 || s[i-1] != '\\'):
			quoted = !quoted
		case quoted:
		case c == ']':
			depth++
		case c == '[':
			depth--
			if depth == 0 {
				name, _, _ := strings.Cut(strings.TrimSpace(s[i+1:len(s)-1]), " ")

				return name
			}
		}
	}

	return ""
}
