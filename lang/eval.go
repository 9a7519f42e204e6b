package lang

import (
	"context"
	"errors"
	"log/slog"
)

// Resolve looks name up in the scope chain, then the active namespace,
// then the root namespace.
func (rt *Runtime) Resolve(name string, scope *Scope) (Value, bool) {
	if scope != nil {
		if v, ok := scope.Lookup(name); ok {
			return v, true
		}
	}

	if v, ok := rt.registry.Active().Lookup(name); ok {
		return v, true
	}

	if v, ok := rt.registry.Root().Lookup(name); ok {
		return v, true
	}

	return Null, false
}

// Evaluate dispatches c and never fails: a call that cannot be resolved,
// bound or run is logged and yields [Void].
func (rt *Runtime) Evaluate(ctx context.Context, c *Call, scope *Scope) Value {
	v, err := rt.Call(ctx, c, scope)
	if err != nil {
		rt.logFailure(ctx, c, err)

		return Void
	}

	return v
}

// Call resolves and dispatches c in scope, which defaults to the global
// scope. Functions are bound and run; macros are expanded and handed to
// the player and yield [Void].
func (rt *Runtime) Call(ctx context.Context, c *Call, scope *Scope) (Value, error) {
	if scope == nil {
		scope = rt.global
	}

	if rt.depth >= rt.maxDepth {
		return Void, ErrMaxDepthExceeded.With(
			slog.String("call", c.Name),
			slog.Int("max_depth", rt.maxDepth),
		)
	}

	rt.depth++
	defer func() { rt.depth-- }()

	callee, ok := rt.Resolve(c.Name, scope)
	if !ok {
		return Void, ErrUnresolved.With(slog.String("name", c.Name))
	}

	rt.logger.TraceContext(ctx, "dispatch",
		slog.String("name", c.Name),
		slog.String("kind", callee.Kind().String()),
		slog.Int("depth", rt.depth),
	)

	switch fn := callee.(type) {
	case *Function:
		return rt.callFunction(ctx, c.Name, fn, c.Args, scope)

	case *Script:
		return rt.callScript(ctx, c.Name, fn, c.Args, scope)

	case null:
		return Void, ErrUnresolved.With(slog.String("name", c.Name))

	default:
		return Void, ErrNotCallable.With(
			slog.String("name", c.Name),
			slog.String("kind", callee.Kind().String()),
		)
	}
}

// Eval evaluates v in scope: calls are dispatched and every other value
// evaluates to itself.
func (rt *Runtime) Eval(ctx context.Context, v Value, scope *Scope) (Value, error) {
	c, ok := v.(*Call)
	if !ok {
		if v == nil {
			return Null, nil
		}

		return v, nil
	}

	return rt.Call(ctx, c, scope)
}

// Invoke calls a callable value directly with arguments.
func (rt *Runtime) Invoke(
	ctx context.Context,
	callee Value,
	args *List,
	scope *Scope,
) (Value, error) {
	if scope == nil {
		scope = rt.global
	}

	switch fn := callee.(type) {
	case *Function:
		return rt.callFunction(ctx, fn.Name, fn, args, scope)
	case *Script:
		return rt.callScript(ctx, fn.Name, fn, args, scope)
	default:
		return Void, ErrNotCallable.With(slog.String("kind", callee.Kind().String()))
	}
}

func (rt *Runtime) callFunction(
	ctx context.Context,
	name string,
	fn *Function,
	args *List,
	caller *Scope,
) (result Value, err error) {
	defer func() { rt.notify(ctx, EventFunction, name, args, result, err) }()

	makeScope := fn.MakeScope
	if makeScope == nil {
		makeScope = EagerScope
	}

	scope, err := makeScope(ctx, rt, fn, args, caller)
	if err != nil {
		return Void, WrapError(err).With(slog.String("function", name))
	}

	if fn.Native != nil {
		result, err = fn.Native(ctx, &Frame{
			Runtime:  rt,
			Function: fn,
			Name:     name,
			Args:     args,
			Scope:    scope,
			Caller:   caller,
		})
		if err != nil {
			return Void, WrapError(err).With(slog.String("function", name))
		}
	} else {
		result, err = rt.Eval(ctx, fn.Body, scope)
		if err != nil {
			return Void, err
		}
	}

	if fn.Void || result == nil {
		result = Void
	}

	return result, nil
}

func (rt *Runtime) callScript(
	ctx context.Context,
	name string,
	s *Script,
	args *List,
	caller *Scope,
) (result Value, err error) {
	defer func() { rt.notify(ctx, EventMacro, name, args, Void, err) }()

	args, err = rt.evalArgs(ctx, args, caller)
	if err != nil {
		return Void, err
	}

	ex, err := NewExpansion(args, s.Params)
	if err != nil {
		return Void, WrapError(err).With(slog.String("macro", name))
	}

	body, err := rt.scripts.parse(ctx, rt.parser, s)
	if err != nil {
		return Void, err
	}

	calls := make([]Value, len(body.Units))
	for i, u := range body.Units {
		calls[i] = u.Call
	}

	// A keyword used by a placeholder anywhere in the body is not spliced.
	ex.Rest = ex.unused(NewListKeywords(calls, nil))

	units := make([]Unit, len(body.Units))
	for i, u := range body.Units {
		units[i] = Unit{
			Text: u.Text,
			Call: &Call{Name: u.Call.Name, Args: expand(u.Call.Args, ex)},
		}
	}

	sc := NewScenario(s.Name, ScenarioMacro, units)

	scope := NewScope(caller)
	for _, p := range s.Params {
		scope.Set(p.Name, ex.Values[p.Name])
	}

	return Void, rt.Schedule(ctx, sc, scope)
}

// Schedule hands sc to the player, or runs it to completion if the
// runtime has none.
func (rt *Runtime) Schedule(ctx context.Context, sc *Scenario, scope *Scope) error {
	if rt.player != nil {
		return rt.player.PushScenario(ctx, sc, scope)
	}

	return rt.RunScenario(ctx, sc, scope)
}

// RunScenario runs every unit of sc in order. It stops early only if ctx
// is canceled.
func (rt *Runtime) RunScenario(ctx context.Context, sc *Scenario, scope *Scope) error {
	for _, u := range sc.Units {
		if err := ctx.Err(); err != nil {
			return err
		}

		rt.RunUnit(ctx, u, scope)
	}

	return nil
}

// RunUnit shows the text of u and evaluates its call.
func (rt *Runtime) RunUnit(ctx context.Context, u Unit, scope *Scope) Value {
	if u.Text != "" {
		rt.display.Text(ctx, u.Text)
	}

	if u.Call == nil {
		return Void
	}

	return rt.Evaluate(ctx, u.Call, scope)
}

// EagerScope is the default [ScopeFunc]. Calls among the arguments are
// evaluated in the caller's scope, positional values left to right and
// then keyword values in key order, before binding.
func EagerScope(
	ctx context.Context,
	rt *Runtime,
	fn *Function,
	args *List,
	caller *Scope,
) (*Scope, error) {
	evaluated, err := rt.evalArgs(ctx, args, caller)
	if err != nil {
		return nil, err
	}

	bound, err := Bind(evaluated, fn.Params)
	if err != nil {
		return nil, err
	}

	return NewScopeFrom(caller, bound), nil
}

// LazyScope binds the arguments without evaluating them.
func LazyScope(
	_ context.Context,
	_ *Runtime,
	fn *Function,
	args *List,
	caller *Scope,
) (*Scope, error) {
	bound, err := Bind(args, fn.Params)
	if err != nil {
		return nil, err
	}

	return NewScopeFrom(caller, bound), nil
}

func (rt *Runtime) evalArgs(ctx context.Context, args *List, scope *Scope) (*List, error) {
	if !hasCalls(args) {
		return args, nil
	}

	out := &List{items: make([]Value, args.Len())}

	for i, v := range args.All() {
		x, err := rt.evalArg(ctx, v, scope)
		if err != nil {
			return nil, err
		}

		out.items[i] = x
	}

	for key, v := range args.Keywords() {
		x, err := rt.evalArg(ctx, v, scope)
		if err != nil {
			return nil, err
		}

		out.setKeyword(key, x)
	}

	return out, nil
}

// evalArg evaluates one argument. A nested call that cannot be resolved
// yields Void like a top-level one; other failures abort the outer call.
func (rt *Runtime) evalArg(ctx context.Context, v Value, scope *Scope) (Value, error) {
	c, ok := v.(*Call)
	if !ok {
		return v, nil
	}

	x, err := rt.Call(ctx, c, scope)
	if err != nil && nonFatal(err) {
		rt.logFailure(ctx, c, err)

		return Void, nil
	}

	return x, err
}

func nonFatal(err error) bool {
	return errors.Is(err, ErrUnresolved) || errors.Is(err, ErrSealed) ||
		errors.Is(err, ErrNotCallable)
}

func hasCalls(l *List) bool {
	for _, v := range l.All() {
		if _, ok := v.(*Call); ok {
			return true
		}
	}

	for _, v := range l.Keywords() {
		if _, ok := v.(*Call); ok {
			return true
		}
	}

	return false
}

func (rt *Runtime) notify(
	ctx context.Context,
	kind EventKind,
	name string,
	args *List,
	result Value,
	err error,
) {
	if len(rt.observers) == 0 {
		return
	}

	e := Event{Kind: kind, Name: name, Args: args, Result: result, Err: err}
	for _, o := range rt.observers {
		o(ctx, e)
	}
}

func (rt *Runtime) logFailure(ctx context.Context, c *Call, err error) {
	attrs := []slog.Attr{
		slog.String("call", c.String()),
		slog.Any("error", err),
	}

	if nonFatal(err) {
		rt.logger.WarnContext(ctx, "call skipped", attrs...)

		return
	}

	rt.logger.ErrorContext(ctx, "call failed", attrs...)
}
