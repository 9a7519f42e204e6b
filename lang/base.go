package lang

import (
	"context"
	"log/slog"
	"strings"
)

// basePackage returns the built-in functions that canonical script text
// desugars to, plus the definition, control and sequence forms.
func basePackage() *FunctionPackage {
	return NewPackage(BasePackage,
		// Presentation.
		NativeVoid("pass", "", nop),
		NativeVoid(LabelCall, "name", nop),
		NativeVoid("br", "", func(ctx context.Context, f *Frame) (Value, error) {
			f.Display().Linebreak(ctx)

			return Void, nil
		}),
		NativeVoid("pb", "", func(ctx context.Context, f *Frame) (Value, error) {
			f.Display().PageBreak(ctx)

			return Void, nil
		}),
		NativeVoid("lbr", "", func(ctx context.Context, f *Frame) (Value, error) {
			f.Display().Text(ctx, "[")

			return Void, nil
		}),
		NativeVoid("speaker", "name", func(ctx context.Context, f *Frame) (Value, error) {
			f.Display().Speaker(ctx, f.Arg("name").String())

			return Void, nil
		}),
		NativeVoid("print", "*values", func(ctx context.Context, f *Frame) (Value, error) {
			f.Display().Text(ctx, joinValues(f.Rest("values"), " "))

			return Void, nil
		}),

		// Variables.
		Native("getlocal", "name", func(_ context.Context, f *Frame) (Value, error) {
			return f.Caller.Get(f.Arg("name").String()), nil
		}),
		Native("getglobal", "name", func(_ context.Context, f *Frame) (Value, error) {
			return f.Runtime.registry.Root().Get(f.Arg("name").String()), nil
		}),
		NativeVoid("setlocal", "name value", func(_ context.Context, f *Frame) (Value, error) {
			f.Caller.Set(f.Arg("name").String(), f.Arg("value"))

			return Void, nil
		}),
		NativeVoid("set", "name value", func(_ context.Context, f *Frame) (Value, error) {
			return Void, f.Runtime.Define(f.Arg("name").String(), f.Arg("value"))
		}),
		NativeVoid("unset", "name", func(_ context.Context, f *Frame) (Value, error) {
			name := f.Arg("name").String()
			if _, ok := f.Caller.Local(name); ok {
				f.Caller.Delete(name)

				return Void, nil
			}

			return Void, f.Runtime.registry.Root().Delete(name)
		}),
		Native("defined", "name", func(_ context.Context, f *Frame) (Value, error) {
			_, ok := f.Runtime.Resolve(f.Arg("name").String(), f.Caller)

			return Bool(ok), nil
		}),
		NativeVoid("seal", "name", func(_ context.Context, f *Frame) (Value, error) {
			f.Runtime.registry.Root().Seal(f.Arg("name").String())

			return Void, nil
		}),
		NativeVoid("unseal", "name", func(_ context.Context, f *Frame) (Value, error) {
			f.Runtime.registry.Root().Unseal(f.Arg("name").String())

			return Void, nil
		}),
		NativeVoid("use", "package", func(ctx context.Context, f *Frame) (Value, error) {
			return Void, f.Runtime.registry.UsePackage(ctx, f.Arg("package").String())
		}),

		// Definitions.
		Lazy(NativeVoid("def", "name *spec", defineFunction)),
		Lazy(Native("lambda", "*spec", makeLambda)),
		Lazy(NativeVoid("macro", "name *spec", defineMacro)),
		Native("script", "body", runScript),

		// Control.
		Native("do", "*values", func(_ context.Context, f *Frame) (Value, error) {
			values := f.Rest("values")
			if len(values) == 0 {
				return Void, nil
			}

			return values[len(values)-1], nil
		}),
		Lazy(Native("if", "cond then else=null", branch)),
		Lazy(NativeVoid("when", "cond *body", when)),

		// Sequences.
		Native("list", "*items", func(_ context.Context, f *Frame) (Value, error) {
			return NewList(f.Rest("items")...), nil
		}),
		Native("first", "seq", func(_ context.Context, f *Frame) (Value, error) {
			return First(f.Arg("seq")), nil
		}),
		Native("rest", "seq", func(_ context.Context, f *Frame) (Value, error) {
			return Rest(f.Arg("seq")), nil
		}),
		Native("nth", "seq index", func(_ context.Context, f *Frame) (Value, error) {
			i, err := AsInt(f.Arg("index"))
			if err != nil {
				return Void, err
			}

			return At(f.Arg("seq"), int(i)), nil
		}),
		Native("size", "seq", func(_ context.Context, f *Frame) (Value, error) {
			return Int(Size(f.Arg("seq"))), nil
		}),
		Native("cons", "head seq", func(_ context.Context, f *Frame) (Value, error) {
			return Cons(f.Arg("head"), f.Arg("seq")), nil
		}),
		Native("concat", "*values", func(_ context.Context, f *Frame) (Value, error) {
			return String(joinValues(f.Rest("values"), "")), nil
		}),

		// Logic.
		Native("eq", "a b", func(_ context.Context, f *Frame) (Value, error) {
			return Bool(Equal(f.Arg("a"), f.Arg("b"))), nil
		}),
		Native("not", "value", func(_ context.Context, f *Frame) (Value, error) {
			return Bool(!Truthy(f.Arg("value"))), nil
		}),
		Lazy(Native("and", "*values", logic(false))),
		Lazy(Native("or", "*values", logic(true))),
	)
}

func nop(context.Context, *Frame) (Value, error) { return Void, nil }

// logic evaluates values in order and stops at the first whose truth is
// decisive: true for or, false for and. The values after it are never
// evaluated.
func logic(decisive bool) NativeFunc {
	return func(ctx context.Context, f *Frame) (Value, error) {
		for _, v := range f.Rest("values") {
			x, err := f.Eval(ctx, v)
			if err != nil {
				return Void, err
			}

			if Truthy(x) == decisive {
				return Bool(decisive), nil
			}
		}

		return Bool(!decisive), nil
	}
}

func joinValues(values []Value, sep string) string {
	part := make([]string, len(values))
	for i, v := range values {
		part[i] = v.String()
	}

	return strings.Join(part, sep)
}

// splitSpec separates the optional parameter list from the body of a
// definition: a single value is the body, two values are params and body.
func splitSpec(f *Frame) ([]Param, Value, error) {
	spec := f.Rest("spec")

	switch len(spec) {
	case 1:
		return nil, spec[0], nil
	case 2:
		params, err := ParamsOf(spec[0])
		if err != nil {
			return nil, nil, err
		}

		return params, spec[1], nil
	default:
		return nil, nil, ErrInvalidDefinition.With(
			slog.String("function", f.Name),
			slog.Int("values", len(spec)),
		)
	}
}

func defineFunction(ctx context.Context, f *Frame) (Value, error) {
	name, err := f.Eval(ctx, f.Arg("name"))
	if err != nil {
		return Void, err
	}

	params, body, err := splitSpec(f)
	if err != nil {
		return Void, err
	}

	return Void, f.Runtime.Define(name.String(), &Function{
		Name:   name.String(),
		Params: params,
		Body:   body,
	})
}

func makeLambda(_ context.Context, f *Frame) (Value, error) {
	params, body, err := splitSpec(f)
	if err != nil {
		return Void, err
	}

	return &Function{Name: "lambda", Params: params, Body: body}, nil
}

func defineMacro(ctx context.Context, f *Frame) (Value, error) {
	name, err := f.Eval(ctx, f.Arg("name"))
	if err != nil {
		return Void, err
	}

	params, body, err := splitSpec(f)
	if err != nil {
		return Void, err
	}

	return Void, f.Runtime.Define(name.String(), &Script{
		Name:   name.String(),
		Source: body.String(),
		Params: params,
	})
}

func runScript(ctx context.Context, f *Frame) (Value, error) {
	s := &Script{Name: f.Name, Source: f.Arg("body").String()}

	return f.Runtime.Invoke(ctx, s, NewList(), f.Caller)
}

func branch(ctx context.Context, f *Frame) (Value, error) {
	cond, err := f.Eval(ctx, f.Arg("cond"))
	if err != nil {
		return Void, err
	}

	if Truthy(cond) {
		return f.Eval(ctx, f.Arg("then"))
	}

	return f.Eval(ctx, f.Arg("else"))
}

// when schedules its body as an IF scenario if the condition holds. A
// single string body is parsed as script text; otherwise each body value
// must be a call and becomes one unit.
func when(ctx context.Context, f *Frame) (Value, error) {
	cond, err := f.Eval(ctx, f.Arg("cond"))
	if err != nil {
		return Void, err
	}

	if !Truthy(cond) {
		return Void, nil
	}

	body := f.Rest("body")

	var units []Unit

	if len(body) == 1 {
		if s, ok := body[0].(String); ok {
			sc, err := f.Runtime.parser.ParseScript(ctx, f.Name, string(s))
			if err != nil {
				return Void, err
			}

			units = sc.Units
		}
	}

	if units == nil {
		for _, v := range body {
			c, ok := v.(*Call)
			if !ok {
				return Void, ErrNotCallable.With(
					slog.String("function", f.Name),
					slog.String("kind", v.Kind().String()),
				)
			}

			units = append(units, Unit{Call: c})
		}
	}

	sc := NewScenario(f.Name, ScenarioIf, units)

	return Void, f.Runtime.Schedule(ctx, sc, NewScope(f.Caller))
}
