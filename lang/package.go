package lang

import "context"

// NativeFunc implements a native function. Its arguments are bound in
// f.Scope.
type NativeFunc func(ctx context.Context, f *Frame) (Value, error)

// ScopeFunc builds the scope a function body runs in from the caller's
// unevaluated arguments.
type ScopeFunc func(
	ctx context.Context,
	rt *Runtime,
	fn *Function,
	args *List,
	caller *Scope,
) (*Scope, error)

// FunctionPackage is a named set of native functions registered with
// [Registry.ImportPackage].
type FunctionPackage struct {
	Name      string
	Functions []*Function
}

// NewPackage returns a package of the given functions.
func NewPackage(name string, fns ...*Function) *FunctionPackage {
	return &FunctionPackage{Name: name, Functions: fns}
}

// Native returns a native function with parameters declared as in
// "a b=default *rest". It panics if the declaration is invalid.
func Native(name, params string, fn NativeFunc) *Function {
	return &Function{Name: name, Params: MustParseParams(params), Native: fn}
}

// NativeVoid is like [Native] for a function that always returns [Void].
func NativeVoid(name, params string, fn NativeFunc) *Function {
	f := Native(name, params, fn)
	f.Void = true

	return f
}

// Lazy marks fn to receive its arguments unevaluated and returns it.
func Lazy(fn *Function) *Function {
	fn.MakeScope = LazyScope

	return fn
}

// Frame is the invocation state passed to a native function.
type Frame struct {
	Runtime  *Runtime
	Function *Function
	// Name is the name the function was called by.
	Name string
	// Args is the caller's argument container, before evaluation.
	Args *List
	// Scope holds the bound arguments; its parent is Caller.
	Scope  *Scope
	Caller *Scope
}

// Arg returns the value bound to parameter name, or [Null].
func (f *Frame) Arg(name string) Value {
	v, _ := f.Scope.Local(name)

	return v
}

// Rest returns the items of the variadic parameter name.
func (f *Frame) Rest(name string) []Value {
	if l, ok := f.Arg(name).(*List); ok {
		return l.Items()
	}

	return nil
}

// Eval evaluates v in the caller's scope. Lazy functions use it to
// evaluate the arguments they choose to.
func (f *Frame) Eval(ctx context.Context, v Value) (Value, error) {
	return f.Runtime.Eval(ctx, v, f.Caller)
}

// Display returns the runtime's display.
func (f *Frame) Display() Display { return f.Runtime.display }
