package math

import (
	"context"
	"log/slog"
	stdmath "math"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/rosetto/lang"
)

// programs caches compiled expressions by the xxh3 hash of their source.
var programs sync.Map

type compiled struct {
	program *vm.Program
	err     error
	source  string
	once    sync.Once
}

func compile(source string) (*vm.Program, error) {
	value, _ := programs.LoadOrStore(xxh3.HashString(source), &compiled{source: source})

	entry, ok := value.(*compiled)
	if !ok {
		return nil, ErrExpression.With(slog.String("issue", "invalid cache entry"))
	}

	if entry.source != source {
		return expr.Compile(source)
	}

	entry.once.Do(func() {
		entry.program, entry.err = expr.Compile(source)
	})

	return entry.program, entry.err
}

// calc evaluates an expr-lang expression. Identifiers resolve to the
// caller's local variables, then to global variables.
func calc(ctx context.Context, f *lang.Frame) (lang.Value, error) {
	source := f.Arg("expression").String()
	if source == "" {
		return lang.Null, nil
	}

	program, err := compile(source)
	if err != nil {
		return lang.Void, ErrExpression.Wrap(err).With(slog.String("expression", source))
	}

	result, err := expr.Run(program, environment(f))
	if err != nil {
		return lang.Void, ErrExpression.Wrap(err).With(slog.String("expression", source))
	}

	v, err := lang.FromAny(result)
	if err != nil {
		return lang.Void, ErrExpression.Wrap(err).With(slog.String("expression", source))
	}

	f.Runtime.Logger().TraceContext(ctx, "calc",
		slog.String("expression", source),
		slog.String("result", v.String()),
	)

	return v, nil
}

// environment collects the data values visible from the caller. Locals
// shadow globals.
func environment(f *lang.Frame) map[string]any {
	env := map[string]any{
		"pi": stdmath.Pi,
		"e":  stdmath.E,
	}

	root := f.Runtime.Registry().Root()
	for _, key := range root.Keys() {
		if x, ok := lang.ToAny(root.Get(key)); ok {
			env[key] = x
		}
	}

	if f.Caller != nil {
		for _, key := range f.Caller.Visible() {
			if x, ok := lang.ToAny(f.Caller.Get(key)); ok {
				env[key] = x
			}
		}
	}

	return env
}
