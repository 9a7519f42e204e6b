package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// recorder is a Display that renders output as plain text.
type recorder struct {
	strings.Builder
}

func (r *recorder) Text(_ context.Context, s string)        { r.WriteString(s) }
func (r *recorder) Linebreak(context.Context)               { r.WriteString("\n") }
func (r *recorder) PageBreak(context.Context)               { r.WriteString("\f") }
func (r *recorder) Speaker(_ context.Context, name string) { r.WriteString(name + ": ") }

// queue is a Player that records the scenarios pushed to it.
type queue struct {
	scenarios []*Scenario
	scopes    []*Scope
}

func (q *queue) PushScenario(_ context.Context, sc *Scenario, scope *Scope) error {
	q.scenarios = append(q.scenarios, sc)
	q.scopes = append(q.scopes, scope)

	return nil
}

func run(t *testing.T, rt *Runtime, src string) {
	t.Helper()

	sc, err := ParseScenario(t.Context(), t.Name(), src)
	if err != nil {
		t.Fatalf("ParseScenario(%q): %v", src, err)
	}

	if err := rt.RunScenario(t.Context(), sc, rt.Global()); err != nil {
		t.Fatalf("RunScenario: %v", err)
	}
}

func TestEvaluate_Unresolved(t *testing.T) {
	rt := New()

	if got := rt.Evaluate(t.Context(), NewCall("nosuch", Int(1)), nil); got != Void {
		t.Errorf("Evaluate(unresolved) = %v, want void", got)
	}

	if _, err := rt.Call(t.Context(), NewCall("nosuch"), nil); !errors.Is(err, ErrUnresolved) {
		t.Errorf("Call(unresolved) error = %v", err)
	}

	_ = rt.Define("data", Int(3))

	if _, err := rt.Call(t.Context(), NewCall("data"), nil); !errors.Is(err, ErrNotCallable) {
		t.Errorf("Call(data) error = %v", err)
	}
}

func TestRunScenario_Display(t *testing.T) {
	var rec recorder

	rt := New(WithDisplay(&rec))
	run(t, rt, "Hello, [print World][br][speaker ann]Hi[lbr]x[pb]")

	if got, want := rec.String(), "Hello, World\nann: Hi[x\f"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDispatch_UserFunction(t *testing.T) {
	var rec recorder

	rt := New(WithDisplay(&rec))
	run(t, rt, "[def greet (name greeting=Hello) [print @greeting @name]]"+
		"[greet World][br][greet Bob greeting=Hi]")

	if got, want := rec.String(), "Hello World\nHi Bob"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	// A binding error is fatal to the call only.
	if got := rt.Evaluate(t.Context(), NewCall("greet"), nil); got != Void {
		t.Errorf("Evaluate(greet) with no args = %v", got)
	}

	_, err := rt.Call(t.Context(), NewCall("greet"), nil)
	if !errors.Is(err, ErrTooFewArguments) {
		t.Errorf("Call(greet) error = %v", err)
	}
}

func TestDispatch_SealedRedefinition(t *testing.T) {
	rt := New()

	got := rt.Evaluate(t.Context(), NewCall("set", String("pass"), String("x")), nil)
	if got != Void {
		t.Errorf("Evaluate(set pass) = %v", got)
	}

	if _, ok := rt.Registry().Root().Get("pass").(*Function); !ok {
		t.Error("sealed built-in was replaced")
	}
}

func TestDispatch_SetLocal(t *testing.T) {
	rt := New()
	child := NewScope(rt.Global())

	rt.Evaluate(t.Context(), NewCall("setlocal", String("x"), Int(1)), child)

	if got := child.Get("x"); got != Int(1) {
		t.Errorf("local x = %v", got)
	}

	if _, ok := rt.Global().Lookup("x"); ok {
		t.Error("setlocal wrote to the parent scope")
	}
}

func TestDispatch_Globals(t *testing.T) {
	var rec recorder

	rt := New(WithDisplay(&rec))
	run(t, rt, "[set x 5][print $x [getglobal x] [defined x] [defined y]]")

	if got, want := rec.String(), "5 5 true false"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDispatch_LateBinding(t *testing.T) {
	rt := New()
	c := NewCall("f")

	constant := func(v Value) NativeFunc {
		return func(context.Context, *Frame) (Value, error) { return v, nil }
	}

	_ = rt.Define("f", Native("f", "", constant(Int(1))))

	if got := rt.Evaluate(t.Context(), c, nil); got != Int(1) {
		t.Errorf("first = %v", got)
	}

	_ = rt.Define("f", Native("f", "", constant(Int(2))))

	if got := rt.Evaluate(t.Context(), c, nil); got != Int(2) {
		t.Errorf("after redefinition = %v", got)
	}
}

func TestDispatch_MacroPushedToPlayer(t *testing.T) {
	var q queue

	rt := New(WithPlayer(&q))
	_ = rt.Define("greet", &Script{
		Name:   "greet",
		Source: "Hi [print %who %mood|fine][br]",
		Params: MustParseParams("who"),
	})

	got, err := rt.Call(t.Context(), NewCall("greet", String("Ann")), nil)
	if err != nil || got != Void {
		t.Fatalf("Call(greet) = %v, %v; want void", got, err)
	}

	if len(q.scenarios) != 1 {
		t.Fatalf("pushed %d scenarios, want 1", len(q.scenarios))
	}

	sc := q.scenarios[0]

	if sc.Kind != ScenarioMacro {
		t.Errorf("Kind = %v, want macro", sc.Kind)
	}

	if sc.Units[0].Text != "Hi " || sc.Units[0].Call.String() != "[print Ann fine]" {
		t.Errorf("unit 0 = %q %s", sc.Units[0].Text, sc.Units[0].Call)
	}

	if got := q.scopes[0].Get("who"); got != String("Ann") {
		t.Errorf("macro scope who = %v", got)
	}
}

func TestDispatch_MacroSynchronous(t *testing.T) {
	var rec recorder

	rt := New(WithDisplay(&rec))
	run(t, rt, `[macro m (x) "[print %x]"][m hey][macro n "<[print %0|none]>"][n]`)

	if got, want := rec.String(), "hey<none>"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	if n := rt.scripts.Len(); n != 2 {
		t.Errorf("cached %d macro bodies, want 2", n)
	}
}

func TestDispatch_Observers(t *testing.T) {
	var events []Event

	rt := New(WithObserver(func(_ context.Context, e Event) {
		events = append(events, e)
	}))

	rt.Evaluate(t.Context(), NewCall("pass"), nil)
	rt.Evaluate(t.Context(), NewCall("script", String("")), nil)

	if len(events) != 3 {
		t.Fatalf("observed %d events, want 3", len(events))
	}

	if events[0].Kind != EventFunction || events[0].Name != "pass" {
		t.Errorf("event 0 = %+v", events[0])
	}

	// The anonymous macro completes before the script function returns.
	if events[1].Kind != EventMacro || events[2].Name != "script" {
		t.Errorf("events = %+v", events[1:])
	}
}

func TestDispatch_MaxDepth(t *testing.T) {
	rt := New(WithMaxDepth(8))
	_ = rt.Define("f", &Function{Name: "f", Body: NewCall("f")})

	_, err := rt.Call(t.Context(), NewCall("f"), nil)
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("error = %v, want ErrMaxDepthExceeded", err)
	}
}

func TestDispatch_Control(t *testing.T) {
	var rec recorder

	rt := New(WithDisplay(&rec))
	run(t, rt, "[print [if [eq 1 1] yes no] [if false [set hit 1] ok] [if 0 x]]")

	if got, want := rec.String(), "yes ok null"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	if got := rt.Registry().Root().Get("hit"); got != Null {
		t.Errorf("untaken branch was evaluated: hit = %v", got)
	}
}

func TestDispatch_When(t *testing.T) {
	var q queue

	rt := New(WithPlayer(&q))
	run(t, rt, `[when true "[print yes]"][when false [print no]][when 1 [print a] [br]]`)

	if len(q.scenarios) != 2 {
		t.Fatalf("pushed %d scenarios, want 2", len(q.scenarios))
	}

	for _, sc := range q.scenarios {
		if sc.Kind != ScenarioIf {
			t.Errorf("Kind = %v, want if", sc.Kind)
		}
	}

	if got := q.scenarios[1].String(); got != "[print a][br]" {
		t.Errorf("body = %q", got)
	}
}

func TestDispatch_Sequences(t *testing.T) {
	var rec recorder

	rt := New(WithDisplay(&rec))
	run(t, rt, "[print [first (a b c)] [size (a b)] [nth (a b c) 2] "+
		"[rest (a b c)] [cons z (a)] [concat a b 1] [list 1 2]]")

	if got, want := rec.String(), "a 2 c (b c) (z a) ab1 (1 2)"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDispatch_Logic(t *testing.T) {
	var rec recorder

	rt := New(WithDisplay(&rec))
	run(t, rt, "[print [and 1 true x] [and 1 0] [or 0 null] [or 0 a] [not 0]]")

	if got, want := rec.String(), "true false false true true"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDispatch_LogicShortCircuit(t *testing.T) {
	var rec recorder

	rt := New(WithDisplay(&rec))
	run(t, rt, "[and false [print SIDE]][or 1 [print SIDE]][print [and 1 [concat x]] [or 0 [concat y]]]")

	if got, want := rec.String(), "true true"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDispatch_Lambda(t *testing.T) {
	var rec recorder

	rt := New(WithDisplay(&rec))
	run(t, rt, "[setlocal sq [lambda (n) [list @n @n]]][print [sq 3]][do [print a] [print b]]")

	if got, want := rec.String(), "(3 3)ab"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDispatch_NestedUnresolved(t *testing.T) {
	var rec recorder

	rt := New(WithDisplay(&rec))
	run(t, rt, "[print a [nosuch] b]")

	if got, want := rec.String(), "a  b"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPackages(t *testing.T) {
	pkg := NewPackage("util", Native("twice", "v", func(_ context.Context, f *Frame) (Value, error) {
		return NewList(f.Arg("v"), f.Arg("v")), nil
	}))

	rt := New(WithPackages(pkg))

	for _, name := range []string{"twice", "util.twice"} {
		got := rt.Evaluate(t.Context(), NewCall(name, Int(4)), nil)
		if got.String() != "(4 4)" {
			t.Errorf("%s = %v", name, got)
		}
	}

	bare := New(WithoutBase())
	if _, ok := bare.Registry().Root().Lookup("pass"); ok {
		t.Error("WithoutBase still defines pass")
	}
}
