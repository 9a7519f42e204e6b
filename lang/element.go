package lang

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

// SplitElements splits s on whitespace. Brackets, parentheses and double
// quotes suppress the split until they are balanced, so a nested call, a
// list literal or a quoted string is always returned as one element.
func SplitElements(s string) ([]string, error) {
	var (
		elems   []string
		start   = -1
		depth   int
		quoted  bool
		escaped bool
	)

	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case quoted:
			switch r {
			case '\\':
				escaped = true
			case '"':
				quoted = false
			}
		case r == '"':
			quoted = true
		case r == '[' || r == '(':
			depth++
		case r == ']' || r == ')':
			depth--
			if depth < 0 {
				return nil, ErrUnbalanced.With(
					slog.String("text", s), slog.Int("offset", i),
				)
			}
		case unicode.IsSpace(r) && depth == 0:
			if start >= 0 {
				elems = append(elems, s[start:i])
				start = -1
			}

			continue
		}

		if start < 0 {
			start = i
		}
	}

	switch {
	case quoted:
		return nil, ErrUnterminatedQuote.With(slog.String("text", s))
	case depth != 0:
		return nil, ErrUnbalanced.With(slog.String("text", s))
	}

	if start >= 0 {
		elems = append(elems, s[start:])
	}

	return elems, nil
}

// ParseElement converts one token into a typed value. Token shapes are
// tried in order:
//
//  1. "quoted" is a String with the quotes removed
//  2. [name args] is a Call
//  3. (a b k=v) is a List
//  4. @name reads a local variable: [getlocal name]
//  5. $name reads a global variable: [getglobal name]
//  6. a number is an Int, or a Double if it has a decimal point
//  7. true and false are Bool, null is Null
//  8. anything else is a String
func ParseElement(token string) (Value, error) {
	switch {
	case isQuoted(token):
		return String(unquote(token[1 : len(token)-1])), nil

	case isWrapped(token, '[', ']'):
		return ParseCall(token[1 : len(token)-1])

	case isWrapped(token, '(', ')'):
		return ParseList(token[1 : len(token)-1])

	case len(token) > 1 && token[0] == '@':
		return NewCall("getlocal", String(token[1:])), nil

	case len(token) > 1 && token[0] == '$':
		return NewCall("getglobal", String(token[1:])), nil
	}

	return parseScalar(token), nil
}

// parseScalar parses numeric, boolean and null literals, falling back to
// String. Numbers are plain decimals: an optional minus sign, digits, and
// for a Double a fraction with digits on both sides of the point.
func parseScalar(token string) Value {
	switch digits, point := decimal(token); {
	case digits && !point:
		if i, err := strconv.ParseInt(token, 10, 64); err == nil {
			return Int(i)
		}
	case digits:
		if f, err := strconv.ParseFloat(token, 64); err == nil {
			return Double(f)
		}
	}

	switch token {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	case "null":
		return Null
	}

	return String(token)
}

// decimal reports whether s matches -?[0-9]+(\.[0-9]+)? and whether it has
// the fraction.
func decimal(s string) (ok, point bool) {
	s = strings.TrimPrefix(s, "-")

	whole, frac, point := strings.Cut(s, ".")

	return digitsOnly(whole) && (!point || digitsOnly(frac)), point
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// ParseList parses space-separated elements into a List. Elements of the
// form key=value become keyword entries.
func ParseList(raw string) (*List, error) {
	elems, err := SplitElements(raw)
	if err != nil {
		return nil, err
	}

	l := &List{raw: raw}

	for _, elem := range elems {
		if key, rawVal, ok := splitKeyword(elem); ok {
			val, err := ParseElement(rawVal)
			if err != nil {
				return nil, err
			}

			l.setKeyword(key, val)

			continue
		}

		val, err := ParseElement(elem)
		if err != nil {
			return nil, err
		}

		l.items = append(l.items, val)
	}

	return l, nil
}

// ParseCall parses the inside of a tag, "name arg1 key=val", into a Call.
func ParseCall(inner string) (*Call, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return nil, ErrEmptyTag
	}

	name, rest := inner, ""
	if i := strings.IndexFunc(inner, unicode.IsSpace); i >= 0 {
		name, rest = inner[:i], inner[i+1:]
	}

	if strings.ContainsAny(name, "[]()\"") {
		return nil, ErrUnbalanced.With(slog.String("tag", inner))
	}

	args, err := ParseList(rest)
	if err != nil {
		return nil, err
	}

	return &Call{Name: name, Args: args}, nil
}

// splitKeyword reports whether elem is a key=value element: it contains an
// equals sign before any quote and does not open a call or list.
func splitKeyword(elem string) (key, val string, ok bool) {
	if elem == "" || strings.ContainsRune("[(\"", rune(elem[0])) {
		return "", "", false
	}

	eq := strings.IndexByte(elem, '=')
	if eq <= 0 {
		return "", "", false
	}

	if q := strings.IndexByte(elem, '"'); q >= 0 && q < eq {
		return "", "", false
	}

	if strings.ContainsAny(elem[:eq], "[(") {
		return "", "", false
	}

	return elem[:eq], elem[eq+1:], true
}

func isQuoted(token string) bool {
	if len(token) < 2 || token[0] != '"' || token[len(token)-1] != '"' {
		return false
	}

	// The closing quote must not be escaped.
	n := 0
	for i := len(token) - 2; i > 0 && token[i] == '\\'; i-- {
		n++
	}

	return n%2 == 0
}

func isWrapped(token string, lo, hi byte) bool {
	return len(token) >= 2 && token[0] == lo && token[len(token)-1] == hi
}

func unquote(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s))

	escaped := false

	for _, r := range s {
		if !escaped && r == '\\' {
			escaped = true

			continue
		}

		escaped = false

		sb.WriteRune(r)
	}

	return sb.String()
}
