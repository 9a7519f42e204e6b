package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/rosetto/lang"
)

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// actionCall is the innermost action tag enclosing the cursor.
type actionCall struct {
	name string
	// argIndex is the 0-based positional argument under the cursor.
	argIndex int
	// keyword is set when the cursor is inside a "key=value" argument.
	keyword string
	inCall  bool
}

// detectCall finds the innermost unclosed '[' before cursor and reports
// the action name and which argument the cursor is on. Brackets inside
// quoted strings are ignored.
func detectCall(input string, cursor int) actionCall {
	cursor = min(cursor, len(input))

	var (
		opens  []int
		quoted bool
	)

	for i := 0; i < cursor; {
		r, size := utf8.DecodeRuneInString(input[i:])

		switch {
		case r == '\\' && quoted:
			i += size
			if i < cursor {
				_, size = utf8.DecodeRuneInString(input[i:])
			}
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			opens = append(opens, i)
		case r == ']':
			if len(opens) > 0 {
				opens = opens[:len(opens)-1]
			}
		}

		i += size
	}

	if len(opens) == 0 {
		return actionCall{}
	}

	body := input[opens[len(opens)-1]+1 : cursor]

	fields, trailing := splitArgs(body)
	if len(fields) == 0 || (len(fields) == 1 && !trailing) {
		// Still typing the action name.
		return actionCall{}
	}

	call := actionCall{name: fields[0], inCall: true}

	args := fields[1:]
	if !trailing && len(args) > 0 {
		current := args[len(args)-1]
		args = args[:len(args)-1]

		if key, _, ok := strings.Cut(current, "="); ok && key != "" {
			call.keyword = key
		}
	}

	for _, a := range args {
		if key, _, ok := strings.Cut(a, "="); ok && key != "" {
			continue
		}

		call.argIndex++
	}

	return call
}

// splitArgs splits an action body on top-level whitespace, keeping nested
// tags, lists and quoted strings whole. trailing reports whether body ends
// in whitespace outside of any nesting, meaning a new argument has begun.
func splitArgs(body string) (fields []string, trailing bool) {
	var (
		depth  int
		quoted bool
		start  = -1
	)

	for i, r := range body {
		switch {
		case quoted:
			if r == '"' && (i == 0 || body[i-1] != '\\') {
				quoted = false
			}
		case r == '"':
			quoted = true
		case r == '[' || r == '(':
			depth++
		case r == ']' || r == ')':
			depth--
		case unicode.IsSpace(r) && depth == 0:
			if start >= 0 {
				fields = append(fields, body[start:i])
				start = -1
			}

			continue
		}

		if start < 0 {
			start = i
		}
	}

	if start >= 0 {
		return append(fields, body[start:]), false
	}

	return fields, len(fields) > 0
}

// lookupParams resolves name to a callable and returns its parameters.
func lookupParams(rt *lang.Runtime, name string) ([]lang.Param, bool) {
	v, ok := rt.Resolve(name, rt.Global())
	if !ok {
		return nil, false
	}

	switch fn := v.(type) {
	case *lang.Function:
		return fn.Params, true
	case *lang.Script:
		return fn.Params, true
	default:
		return nil, false
	}
}

// renderSignatureHint renders "[name params...]" with the parameter the
// cursor is on highlighted. A variadic parameter absorbs every positional
// argument past the declared ones.
func renderSignatureHint(name string, params []lang.Param, call actionCall) string {
	var b strings.Builder

	b.WriteString(signatureStyle.Render("["))
	b.WriteString(signatureNameStyle.Render(name))

	current := currentParam(params, call)

	for i, p := range params {
		b.WriteString(signatureStyle.Render(" "))

		if i == current {
			b.WriteString(currentParamStyle.Render(p.String()))
		} else {
			b.WriteString(signatureStyle.Render(p.String()))
		}
	}

	b.WriteString(signatureStyle.Render("]"))

	return b.String()
}

// currentParam returns the index of the parameter that binds the argument
// under the cursor, or -1 if none does.
func currentParam(params []lang.Param, call actionCall) int {
	if call.keyword != "" {
		for i, p := range params {
			if p.Name == call.keyword {
				return i
			}
		}

		return -1
	}

	pos := 0

	for i, p := range params {
		if p.Variadic {
			if call.argIndex >= pos {
				return i
			}

			continue
		}

		if pos == call.argIndex {
			return i
		}

		pos++
	}

	return -1
}
