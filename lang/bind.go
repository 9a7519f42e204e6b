package lang

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// Param is one declared parameter of a function or macro.
type Param struct {
	Name string
	// Default is bound when no argument is given. Nil means required.
	Default Value
	// Variadic collects all positional arguments not bound otherwise.
	Variadic bool
}

// String returns the declaration form: "name", "name=default" or "*name".
func (p Param) String() string {
	switch {
	case p.Variadic:
		return "*" + p.Name
	case p.Default != nil:
		return p.Name + "=" + formatElement(p.Default)
	default:
		return p.Name
	}
}

// FormatParams returns the declaration text of params.
func FormatParams(params []Param) string {
	part := make([]string, len(params))
	for i, p := range params {
		part[i] = p.String()
	}

	return strings.Join(part, " ")
}

// ParseParams parses parameter declarations. At most one may be variadic.
func ParseParams(specs ...string) ([]Param, error) {
	params := make([]Param, 0, len(specs))
	variadic := ""

	for _, spec := range specs {
		var p Param

		switch {
		case strings.HasPrefix(spec, "*"):
			p = Param{Name: spec[1:], Variadic: true}

			if variadic != "" {
				return nil, ErrMultipleVariadic.With(
					slog.String("first", variadic),
					slog.String("second", p.Name),
				)
			}

			variadic = p.Name

		default:
			name, def, hasDefault := strings.Cut(spec, "=")

			p = Param{Name: name}

			if hasDefault {
				val, err := ParseElement(def)
				if err != nil {
					return nil, err
				}

				p.Default = val
			}
		}

		if p.Name == "" || strings.ContainsAny(p.Name, " []()\"*") {
			return nil, ErrInvalidParameter.With(slog.String("param", spec))
		}

		params = append(params, p)
	}

	return params, nil
}

// MustParseParams is like [ParseParams] but panics on error. It is intended
// for native function tables.
func MustParseParams(decl string) []Param {
	params, err := ParseParams(strings.Fields(decl)...)
	if err != nil {
		panic(err)
	}

	return params
}

// ParamsOf reads parameter declarations from a value: a list literal such
// as (a b=1 *rest), or a string such as "a b=1 *rest".
func ParamsOf(v Value) ([]Param, error) {
	switch v := v.(type) {
	case nil, void, null:
		return nil, nil

	case *List:
		if raw := v.Raw(); raw != "" {
			return parseParamString(raw)
		}

		specs := make([]string, 0, v.Len()+v.Size())
		for _, item := range v.items {
			specs = append(specs, item.String())
		}

		for key, val := range v.Keywords() {
			specs = append(specs, key+"="+formatElement(val))
		}

		return ParseParams(specs...)

	default:
		return parseParamString(v.String())
	}
}

func parseParamString(s string) ([]Param, error) {
	specs, err := SplitElements(s)
	if err != nil {
		return nil, err
	}

	return ParseParams(specs...)
}

// binding is the result of matching a container against parameters.
type binding struct {
	values map[string]Value
	// extra holds positional values no parameter accepted.
	extra []Value
	// unknown holds keyword entries that name no parameter.
	unknown map[string]Value
}

// Bind matches the arguments in args against params and returns the value
// bound to each parameter name.
//
// Keyword entries are matched by name first. Positional values then fill
// the remaining non-variadic parameters in declaration order, including
// parameters that have defaults. Positional values left over are collected
// into a List bound to the variadic parameter, if one is declared.
func Bind(args *List, params []Param) (map[string]Value, error) {
	b, err := bind(args, params)
	if err != nil {
		return nil, err
	}

	if len(b.unknown) > 0 {
		keys := slices.Sorted(maps.Keys(b.unknown))

		return nil, ErrUnknownKeyword.With(
			slog.String("keywords", strings.Join(keys, ",")),
		)
	}

	if len(b.extra) > 0 {
		return nil, ErrTooManyArguments.With(
			slog.Int("expected", len(params)),
			slog.Int("extra", len(b.extra)),
		)
	}

	return b.values, nil
}

// bind matches leniently: unknown keywords and extra positional values are
// returned to the caller instead of failing. Missing required parameters
// still fail.
func bind(args *List, params []Param) (binding, error) {
	b := binding{values: make(map[string]Value, len(params))}

	var (
		queue    []Param
		variadic *Param
	)

	for i := range params {
		p := params[i]
		if p.Variadic {
			variadic = &params[i]

			continue
		}

		if p.Default != nil {
			b.values[p.Name] = p.Default
		}

		queue = append(queue, p)
	}

	varSet := false

	for key, val := range args.Keywords() {
		if variadic != nil && key == variadic.Name {
			b.values[key] = val
			varSet = true

			continue
		}

		i := indexParam(queue, key)
		if i < 0 {
			if b.unknown == nil {
				b.unknown = make(map[string]Value)
			}

			b.unknown[key] = val

			continue
		}

		b.values[key] = val
		queue = append(queue[:i], queue[i+1:]...)
	}

	for _, val := range args.items {
		if len(queue) > 0 {
			b.values[queue[0].Name] = val
			queue = queue[1:]

			continue
		}

		b.extra = append(b.extra, val)
	}

	if variadic != nil && !varSet {
		b.values[variadic.Name] = NewList(b.extra...)
		b.extra = nil
	}

	var missing []string

	for _, p := range queue {
		if p.Default == nil {
			missing = append(missing, p.Name)
		}
	}

	if len(missing) > 0 {
		return b, ErrTooFewArguments.With(
			slog.String("missing", strings.Join(missing, ",")),
		)
	}

	return b, nil
}

func indexParam(params []Param, name string) int {
	for i, p := range params {
		if p.Name == name {
			return i
		}
	}

	return -1
}
