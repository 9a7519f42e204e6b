package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Position orders designators. Rules run in ascending position: tag rules
// capture delimited content first, then middle, head and tail rules see
// the rest of the line.
type Position int

const (
	PositionTag Position = iota
	PositionMiddle
	PositionHead
	PositionTail
)

func (p Position) String() string {
	switch p {
	case PositionTag:
		return "tag"
	case PositionMiddle:
		return "middle"
	case PositionHead:
		return "head"
	case PositionTail:
		return "tail"
	default:
		return "unknown"
	}
}

// Designator is one rewrite rule.
type Designator interface {
	Position() Position
	Name() string
	// Apply rewrites l in place and reports whether the rule matched.
	Apply(l *Line) bool
}

// Line is one logical line while it is being normalized.
type Line struct {
	Text string
	// NoBreak suppresses the automatic trailing linebreak.
	NoBreak bool
	// ForceBreak appends a linebreak even where none would be added.
	ForceBreak bool
	// Spaced keeps one space after the text, separating it from the line
	// that follows.
	Spaced bool

	saved []string
}

const (
	protectOpen  = '\uE000'
	protectClose = '\uE001'
)

// Protect stores s and returns a placeholder that later rules cannot
// match. The placeholder is replaced by s when normalization finishes.
func (l *Line) Protect(s string) string {
	l.saved = append(l.saved, s)

	return string(protectOpen) + strconv.Itoa(len(l.saved)-1) + string(protectClose)
}

// restore replaces every placeholder with its protected text.
func (l *Line) restore() string {
	if len(l.saved) == 0 {
		return l.Text
	}

	var sb strings.Builder

	rest := l.Text

	for {
		i := strings.IndexRune(rest, protectOpen)
		if i < 0 {
			break
		}

		j := strings.IndexRune(rest[i:], protectClose)
		if j < 0 {
			break
		}

		sb.WriteString(rest[:i])

		n, err := strconv.Atoi(rest[i+len(string(protectOpen)) : i+j])
		if err != nil || n < 0 || n >= len(l.saved) {
			sb.WriteString(rest[i : i+j+len(string(protectClose))])
		} else {
			sb.WriteString(l.saved[n])
		}

		rest = rest[i+j+len(string(protectClose)):]
	}

	sb.WriteString(rest)

	return sb.String()
}

type designator struct {
	pos   Position
	name  string
	apply func(l *Line) bool
}

func (d designator) Position() Position { return d.pos }
func (d designator) Name() string       { return d.name }
func (d designator) Apply(l *Line) bool { return d.apply(l) }

// NewDesignator returns a designator that runs apply at position pos.
func NewDesignator(pos Position, name string, apply func(l *Line) bool) Designator {
	return designator{pos: pos, name: name, apply: apply}
}

// Escape rewrites a literal "[[" in prose to the [lbr] tag, which renders
// one open bracket. Inside a tag "[[" opens nested calls and is left alone.
// It runs before every other rule.
func Escape() Designator {
	return NewDesignator(PositionTag, "escape", func(l *Line) bool {
		if !strings.Contains(l.Text, "[[") {
			return false
		}

		var (
			sb      strings.Builder
			depth   int
			quoted  bool
			matched bool
		)

		text := l.Text

		for i := 0; i < len(text); i++ {
			c := text[i]

			switch {
			case quoted && c == '\\' && i+1 < len(text):
				sb.WriteByte(c)
				i++
				c = text[i]
			case depth > 0 && c == '"':
				quoted = !quoted
			case quoted:
			case depth == 0 && strings.HasPrefix(text[i:], "[["):
				sb.WriteString(l.Protect("[lbr]"))
				i++
				matched = true

				continue
			case c == '[':
				depth++
			case c == ']' && depth > 0:
				depth--
			}

			sb.WriteByte(c)
		}

		l.Text = sb.String()

		return matched
	})
}

// Delimited captures the content between open and close and replaces the
// whole span with the tag wrap builds from the trimmed content.
func Delimited(name, lo, hi string, wrap func(content string) string) Designator {
	return NewDesignator(PositionTag, name, func(l *Line) bool {
		matched := false

		for {
			i := strings.Index(l.Text, lo)
			if i < 0 {
				return matched
			}

			j := strings.Index(l.Text[i+len(lo):], hi)
			if j < 0 {
				return matched
			}

			content := l.Text[i+len(lo) : i+len(lo)+j]
			span := l.Protect(wrap(strings.TrimSpace(content)))
			l.Text = l.Text[:i] + span + l.Text[i+len(lo)+j+len(hi):]
			matched = true
		}
	})
}

// Interpolation rewrites [%=expr%] to [print [call "expr"]].
func Interpolation(call string) Designator {
	return Delimited("interpolation", "[%=", "%]", func(expr string) string {
		return "[print [" + call + " " + quote(expr) + "]]"
	})
}

// InlineScript rewrites [%script%] to [script "script"]. The script is
// code: content that does not open with a tag is taken as a single call,
// so [% set x 5 %] runs [set x 5]. Empty content is dropped.
func InlineScript() Designator {
	return Delimited("script", "[%", "%]", func(code string) string {
		if code == "" {
			return ""
		}

		if !strings.HasPrefix(code, "[") {
			code = "[" + code + "]"
		}

		return "[script " + quote(code) + "]"
	})
}

// Comment strips a trailing comment starting with marker outside of any
// tag.
func Comment(marker byte) Designator {
	return NewDesignator(PositionMiddle, "comment", func(l *Line) bool {
		depth, quoted := 0, false

		for i := 0; i < len(l.Text); i++ {
			c := l.Text[i]

			switch {
			case depth > 0 && c == '"':
				quoted = !quoted
			case quoted:
			case c == '[':
				depth++
			case c == ']':
				depth--
			case c == marker && depth <= 0:
				l.Text = strings.TrimRight(l.Text[:i], " \t")

				return true
			}
		}

		return false
	})
}

// Replace substitutes every occurrence of from with to.
func Replace(from, to string) Designator {
	return NewDesignator(PositionMiddle, "replace", func(l *Line) bool {
		if !strings.Contains(l.Text, from) {
			return false
		}

		l.Text = strings.ReplaceAll(l.Text, from, to)

		return true
	})
}

// Head returns a designator for lines starting with a match of pattern.
// The match is replaced by the text build returns for its submatches.
func Head(name, pattern string, build func(sub []string) string) Designator {
	re := regexp.MustCompile(`^` + pattern)

	return NewDesignator(PositionHead, name, func(l *Line) bool {
		m := re.FindStringSubmatchIndex(l.Text)
		if m == nil {
			return false
		}

		sub := make([]string, len(m)/2)
		for i := range sub {
			if m[2*i] >= 0 {
				sub[i] = l.Text[m[2*i]:m[2*i+1]]
			}
		}

		l.Text = build(sub) + l.Text[m[1]:]

		return true
	})
}

// Label rewrites "*name rest" to "[label name]rest".
func Label() Designator {
	return Head("label", `\*([^\s\[\]*]+)\s*`, func(sub []string) string {
		return tag(LabelTag, sub[1])
	})
}

// PageBreak rewrites a line of dashes to [pb].
func PageBreak() Designator {
	return Head("pagebreak", `-+\s*$`, func([]string) string {
		return tag(PageBreakTag)
	})
}

// Speaker rewrites "@name text" to "[speaker name]text".
func Speaker() Designator {
	return Head("speaker", `@([^\s\[\]]+)\s*`, func(sub []string) string {
		return tag(SpeakerTag, sub[1])
	})
}

// PackageCall rewrites "#pkg.fn args" to "[pkg.fn args]".
func PackageCall() Designator {
	return Head("package", `#(\S+)\s*(.*?)\s*$`, func(sub []string) string {
		return tag(sub[1], sub[2])
	})
}

// ActorCall rewrites "!actor! fn args" to "[actor.fn target=actor args]".
func ActorCall() Designator {
	return Head("actor", `!([^!\s]+)!\s*(\S+)\s*(.*?)\s*$`, func(sub []string) string {
		return tag(sub[1]+"."+sub[2], "target="+sub[1], sub[3])
	})
}

// tag joins the non-empty parts into a canonical tag.
func tag(parts ...string) string {
	nonEmpty := parts[:0:0]

	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}

	return "[" + strings.Join(nonEmpty, " ") + "]"
}

// Tail returns a designator that strips suffix from the end of a line and
// then calls set.
func Tail(name, suffix string, set func(l *Line)) Designator {
	return NewDesignator(PositionTail, name, func(l *Line) bool {
		if !strings.HasSuffix(l.Text, suffix) {
			return false
		}

		l.Text = strings.TrimRight(strings.TrimSuffix(l.Text, suffix), " \t")
		set(l)

		return true
	})
}

// Continue suppresses the automatic linebreak of a line ending in "\".
// Blanks before the marker collapse to one space that separates the line
// from the text that follows.
func Continue() Designator {
	return NewDesignator(PositionTail, "continue", func(l *Line) bool {
		text, ok := strings.CutSuffix(l.Text, `\`)
		if !ok {
			return false
		}

		l.Text = strings.TrimRight(text, " \t")
		l.Spaced = l.Text != "" && len(l.Text) < len(text)

		l.NoBreak = true

		return true
	})
}

// Break forces a linebreak after a line ending in "^".
func Break() Designator {
	return Tail("break", "^", func(l *Line) { l.ForceBreak = true })
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
