package lang

import (
	"context"
	"log/slog"
	"strings"
)

// Parser turns canonical script text into a [Scenario].
type Parser interface {
	ParseScript(ctx context.Context, name, source string) (*Scenario, error)
}

// ParserFunc adapts a function to the [Parser] interface.
type ParserFunc func(ctx context.Context, name, source string) (*Scenario, error)

// ParseScript calls f.
func (f ParserFunc) ParseScript(
	ctx context.Context,
	name, source string,
) (*Scenario, error) {
	return f(ctx, name, source)
}

// CanonicalParser parses text that is already in canonical form.
var CanonicalParser Parser = ParserFunc(ParseScenario)

// ParseScenario splits canonical source into units and returns them as a
// [ScenarioNormal] scenario.
func ParseScenario(_ context.Context, name, source string) (*Scenario, error) {
	raw, err := SplitScript(source)
	if err != nil {
		return nil, WrapError(err).With(slog.String("script", name))
	}

	units := make([]Unit, 0, len(raw))

	for _, s := range raw {
		u, err := CreateUnit(s)
		if err != nil {
			return nil, WrapError(err).With(slog.String("script", name))
		}

		units = append(units, u)
	}

	return NewScenario(name, ScenarioNormal, units), nil
}

// SplitScript splits canonical text into unit strings. Each unit is the
// literal text up to and including one top-level tag; text after the last
// tag forms a final unit of its own. Line breaks in literal text are
// dropped since canonical text marks them with tags.
//
// Double quotes are significant only inside a tag, so prose may contain
// unmatched quotes.
func SplitScript(text string) ([]string, error) {
	text = stripNewlines(text)

	var (
		units   []string
		start   int
		depth   int
		quoted  bool
		escaped bool
	)

	for i := 0; i < len(text); i++ {
		c := text[i]

		if depth > 0 {
			switch {
			case escaped:
				escaped = false

				continue
			case quoted:
				switch c {
				case '\\':
					escaped = true
				case '"':
					quoted = false
				}

				continue
			case c == '"':
				quoted = true

				continue
			}
		}

		switch c {
		case '[':
			depth++
		case ']':
			depth--

			switch {
			case depth < 0:
				return nil, ErrUnbalanced.With(slog.Int("offset", i))
			case depth == 0:
				units = append(units, text[start:i+1])
				start = i + 1
			}
		}
	}

	if depth != 0 || quoted {
		return nil, ErrUnbalanced.With(slog.Int("depth", depth))
	}

	if start < len(text) {
		units = append(units, text[start:])
	}

	return units, nil
}

// CreateUnit splits a unit string at its first bracket into literal text
// and a call. A unit without a tag gets an implicit [pass] call.
func CreateUnit(s string) (Unit, error) {
	i := strings.IndexByte(s, '[')
	if i < 0 {
		return Unit{Text: s, Call: NewCall("pass")}, nil
	}

	tag := s[i:]
	if !isWrapped(tag, '[', ']') {
		return Unit{}, ErrUnbalanced.With(slog.String("unit", s))
	}

	call, err := ParseCall(tag[1 : len(tag)-1])
	if err != nil {
		return Unit{}, err
	}

	return Unit{Text: s[:i], Call: call}, nil
}

func stripNewlines(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}

	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}
