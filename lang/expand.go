package lang

import (
	"strconv"
	"strings"
)

// SpliceToken is the placeholder replaced by all remaining caller
// arguments.
const SpliceToken = "*"

// PlaceholderPrefix starts a named placeholder: %name or %name|default.
const PlaceholderPrefix = "%"

// Expansion holds the caller arguments visible to the placeholders of a
// macro body.
type Expansion struct {
	// Values maps placeholder names to caller values. Positional caller
	// values are also available by index: %0, %1, ...
	Values map[string]Value
	// Rest holds the caller arguments no declared parameter consumed. It is
	// spliced wherever the body has a bare *.
	Rest *List
}

// NewExpansion builds the expansion of a macro call with the given caller
// arguments and declared parameters.
func NewExpansion(args *List, params []Param) (Expansion, error) {
	b, err := bind(args, params)
	if err != nil {
		return Expansion{}, err
	}

	values := make(map[string]Value, len(b.values)+args.Len()+args.Size())

	for i, v := range args.All() {
		values[strconv.Itoa(i)] = v
	}

	for key, v := range args.Keywords() {
		values[key] = v
	}

	for key, v := range b.values {
		values[key] = v
	}

	rest := NewListKeywords(b.extra, b.unknown)

	// A macro without a variadic parameter splices its unbound arguments;
	// one with a variadic parameter splices the collected list instead.
	for _, p := range params {
		if p.Variadic {
			if l, ok := b.values[p.Name].(*List); ok {
				rest = NewListKeywords(l.Items(), b.unknown)
			}
		}
	}

	return Expansion{Values: values, Rest: rest}, nil
}

// Expand rewrites the placeholders in args using ex. Placeholders are whole
// elements: %name, %name|default and *. A placeholder with neither a caller
// value nor a default is dropped. Nested calls and lists are expanded too.
//
// A caller keyword that a %name placeholder already consumed is not
// spliced again by *.
//
// If args contains no placeholder, args itself is returned.
func Expand(args *List, ex Expansion) *List {
	if !expandable(args) {
		return args
	}

	ex.Rest = ex.unused(args)

	return expand(args, ex)
}

func expand(args *List, ex Expansion) *List {
	if !expandable(args) {
		return args
	}

	out := &List{}
	splice := false

	for _, v := range args.items {
		if s, ok := v.(String); ok && string(s) == SpliceToken {
			splice = true

			out.items = append(out.items, ex.Rest.Items()...)

			continue
		}

		if x, ok := expandValue(v, ex); ok {
			out.items = append(out.items, x)
		}
	}

	if splice {
		for key, v := range ex.Rest.Keywords() {
			if _, ok := args.Keyword(key); !ok {
				out.setKeyword(key, v)
			}
		}
	}

	for key, v := range args.Keywords() {
		if x, ok := expandValue(v, ex); ok {
			out.setKeyword(key, x)
		}
	}

	return out
}

func expandValue(v Value, ex Expansion) (Value, bool) {
	switch v := v.(type) {
	case String:
		name, def, hasDefault, ok := placeholder(string(v))
		if !ok {
			return v, true
		}

		if x, found := ex.Values[name]; found {
			return x, true
		}

		if hasDefault {
			x, err := ParseElement(def)
			if err != nil {
				return String(def), true
			}

			return x, true
		}

		return nil, false

	case *Call:
		args := expand(v.Args, ex)
		if args == v.Args {
			return v, true
		}

		return &Call{Name: v.Name, Args: args}, true

	case *List:
		return expand(v, ex), true

	default:
		return v, true
	}
}

// unused returns the splice without the keywords that a placeholder in args
// resolves to.
func (ex Expansion) unused(args *List) *List {
	if ex.Rest.Size() == 0 {
		return ex.Rest
	}

	used := make(map[string]bool)
	placeholders(args, used)

	keywords := make(map[string]Value, ex.Rest.Size())
	dropped := false

	for key, v := range ex.Rest.Keywords() {
		if _, found := ex.Values[key]; found && used[key] {
			dropped = true

			continue
		}

		keywords[key] = v
	}

	if !dropped {
		return ex.Rest
	}

	return NewListKeywords(ex.Rest.Items(), keywords)
}

// placeholders records the names of all placeholders in l.
func placeholders(l *List, names map[string]bool) {
	if l == nil {
		return
	}

	visit := func(v Value) {
		switch v := v.(type) {
		case String:
			if name, _, _, ok := placeholder(string(v)); ok {
				names[name] = true
			}
		case *Call:
			placeholders(v.Args, names)
		case *List:
			placeholders(v, names)
		}
	}

	for _, v := range l.items {
		visit(v)
	}

	for _, v := range l.Keywords() {
		visit(v)
	}
}

func expandable(l *List) bool {
	if l == nil {
		return false
	}

	check := func(v Value) bool {
		switch v := v.(type) {
		case String:
			if string(v) == SpliceToken {
				return true
			}

			_, _, _, ok := placeholder(string(v))

			return ok
		case *Call:
			return expandable(v.Args)
		case *List:
			return expandable(v)
		default:
			return false
		}
	}

	for _, v := range l.items {
		if check(v) {
			return true
		}
	}

	for _, v := range l.Keywords() {
		if check(v) {
			return true
		}
	}

	return false
}

// placeholder parses %name or %name|default.
func placeholder(s string) (name, def string, hasDefault, ok bool) {
	if len(s) < 2 || !strings.HasPrefix(s, PlaceholderPrefix) {
		return "", "", false, false
	}

	name, def, hasDefault = strings.Cut(s[len(PlaceholderPrefix):], "|")
	if name == "" {
		return "", "", false, false
	}

	return name, def, hasDefault, true
}
