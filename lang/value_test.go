package lang

import (
	"errors"
	"testing"
)

func TestSequence_Scalars(t *testing.T) {
	scalars := []Value{
		Bool(true),
		Int(7),
		Double(1.5),
		String("x"),
		NewCall("pass"),
		&Function{Name: "f"},
		&Script{Name: "m"},
	}

	for _, v := range scalars {
		t.Run(v.Kind().String(), func(t *testing.T) {
			if got := First(v); got != v {
				t.Errorf("First(%v) = %v, want itself", v, got)
			}

			if got := Rest(v); got != Null {
				t.Errorf("Rest(%v) = %v, want null", v, got)
			}

			if got := Size(v); got != 1 {
				t.Errorf("Size(%v) = %d, want 1", v, got)
			}

			if got := At(v, 0); got != v {
				t.Errorf("At(%v, 0) = %v, want itself", v, got)
			}

			if got := At(v, 1); got != Null {
				t.Errorf("At(%v, 1) = %v, want null", v, got)
			}
		})
	}
}

func TestSequence_Empty(t *testing.T) {
	for _, v := range []Value{Void, Null} {
		if Size(v) != 0 {
			t.Errorf("Size(%v) = %d, want 0", v.Kind(), Size(v))
		}

		if First(v) != Null {
			t.Errorf("First(%v) = %v, want null", v.Kind(), First(v))
		}

		if got := Cons(Int(1), v).String(); got != "(1)" {
			t.Errorf("Cons(1, %v) = %s, want (1)", v.Kind(), got)
		}
	}
}

func TestSequence_List(t *testing.T) {
	l := NewList(String("a"), String("b"), String("c"))

	if First(l) != String("a") {
		t.Errorf("First = %v", First(l))
	}

	if got := Rest(l).String(); got != "(b c)" {
		t.Errorf("Rest = %s, want (b c)", got)
	}

	if got := Cons(String("z"), l).String(); got != "(z a b c)" {
		t.Errorf("Cons = %s", got)
	}

	if got := Cons(Int(1), Int(2)).String(); got != "(1 2)" {
		t.Errorf("Cons scalar = %s", got)
	}

	if Size(l) != 3 || At(l, 5) != Null {
		t.Errorf("Size = %d, At(5) = %v", Size(l), At(l, 5))
	}

	if got := Rest(NewList(Int(1))).String(); got != "()" {
		t.Errorf("Rest of singleton = %s, want ()", got)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []string{
		"100",
		"1.234",
		"true",
		"(1 2 3)",
		"(foo bar baz)",
		"-3",
		"2.0",
		"null",
		"(a (b c) k=v)",
		`("two words" x)`,
		`("42" 42)`,
		"[print hello name=x]",
		"[f [g 1] (x y)]",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			v, err := ParseElement(src)
			if err != nil {
				t.Fatalf("ParseElement(%q): %v", src, err)
			}

			if got := v.String(); got != src {
				t.Errorf("round trip of %q = %q", src, got)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	parsed, err := ParseElement("2")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		a, b Value
		want bool
	}{
		{Int(2), parsed, true},
		{Int(2), String("2"), true},
		{Int(2), Double(2), false},
		{Bool(true), String("true"), true},
		{NewList(Int(1)), NewList(Int(1)), true},
		{Null, Void, false},
	}

	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDouble_String(t *testing.T) {
	tests := map[Double]string{
		1.5:    "1.5",
		2:      "2.0",
		-0.25:  "-0.25",
		1e21:   "1000000000000000000000.0",
		0.0001: "0.0001",
	}

	for d, want := range tests {
		if got := d.String(); got != want {
			t.Errorf("Double(%v).String() = %q, want %q", float64(d), got, want)
		}
	}
}

func TestConversion_Strict(t *testing.T) {
	t.Run("int", func(t *testing.T) {
		tests := []struct {
			in   Value
			want int64
			fail bool
		}{
			{Int(5), 5, false},
			{Double(3.9), 3, false},
			{String("42"), 42, false},
			{String(" 7 "), 7, false},
			{String("2.5"), 2, false},
			{NewList(Int(4)), 4, false},
			{Bool(true), 0, true},
			{String("x"), 0, true},
			{NewList(Int(1), Int(2)), 0, true},
			{Null, 0, true},
			{Void, 0, true},
			{NewCall("f"), 0, true},
		}

		for _, tt := range tests {
			got, err := AsInt(tt.in)
			if tt.fail {
				if !errors.Is(err, ErrConversion) {
					t.Errorf("AsInt(%v) error = %v, want ErrConversion", tt.in, err)
				}

				continue
			}

			if err != nil || got != tt.want {
				t.Errorf("AsInt(%v) = %d, %v; want %d", tt.in, got, err, tt.want)
			}
		}
	})

	t.Run("bool", func(t *testing.T) {
		tests := []struct {
			in   Value
			want bool
			fail bool
		}{
			{Bool(true), true, false},
			{Int(0), false, false},
			{Double(0.1), true, false},
			{String("TRUE"), true, false},
			{String("0"), false, false},
			{String("yes"), false, true},
			{Null, false, true},
		}

		for _, tt := range tests {
			got, err := AsBool(tt.in)
			if tt.fail {
				if !errors.Is(err, ErrConversion) {
					t.Errorf("AsBool(%v) error = %v, want ErrConversion", tt.in, err)
				}

				continue
			}

			if err != nil || got != tt.want {
				t.Errorf("AsBool(%v) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		}
	})

	t.Run("double", func(t *testing.T) {
		if f, err := AsDouble(Int(2)); err != nil || f != 2 {
			t.Errorf("AsDouble(2) = %v, %v", f, err)
		}

		if _, err := AsDouble(Bool(false)); !errors.Is(err, ErrConversion) {
			t.Errorf("AsDouble(false) error = %v", err)
		}
	})

	t.Run("string", func(t *testing.T) {
		if s, err := AsString(Null); err != nil || s != "null" {
			t.Errorf("AsString(null) = %q, %v", s, err)
		}

		if _, err := AsString(Void); !errors.Is(err, ErrConversion) {
			t.Errorf("AsString(void) error = %v", err)
		}
	})
}

func TestConversion_Defaulting(t *testing.T) {
	if got := IntOr(String("x"), 5); got != 5 {
		t.Errorf("IntOr = %d", got)
	}

	if got := IntOr(String("9"), 5); got != 9 {
		t.Errorf("IntOr = %d", got)
	}

	if got := DoubleOr(Null, 1.5); got != 1.5 {
		t.Errorf("DoubleOr = %v", got)
	}

	if got := BoolOr(String("maybe"), true); !got {
		t.Errorf("BoolOr = %v", got)
	}

	if got := StringOr(Void, "dflt"); got != "dflt" {
		t.Errorf("StringOr = %q", got)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		in   Value
		want bool
	}{
		{Void, false},
		{Null, false},
		{Bool(false), false},
		{Int(0), false},
		{String(""), false},
		{NewList(), false},
		{Int(-1), true},
		{String("x"), true},
		{NewList(Null), true},
		{NewCall("f"), true},
	}

	for _, tt := range tests {
		if got := Truthy(tt.in); got != tt.want {
			t.Errorf("Truthy(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
