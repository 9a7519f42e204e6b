// Package math provides arithmetic and comparison functions, and the calc
// function that evaluates infix expressions with expr-lang.
package math

import (
	"context"
	"log/slog"
	stdmath "math"

	"github.com/ardnew/rosetto/lang"
)

// Name is the namespace the package is imported into.
const Name = "math"

var (
	ErrDivisionByZero = lang.NewError("division by zero")
	ErrNotNumber      = lang.NewError("not a number")
	ErrExpression     = lang.NewError("expression failed")
)

// Package returns the math function package.
func Package() *lang.FunctionPackage {
	return lang.NewPackage(Name,
		lang.Native("add", "*values", fold(0, addInt, addDouble)),
		lang.Native("mul", "*values", fold(1, mulInt, mulDouble)),
		lang.Native("sub", "a b", binary(subInt, subDouble)),
		lang.Native("div", "a b", div),
		lang.Native("mod", "a b", mod),
		lang.Native("neg", "a", func(_ context.Context, f *lang.Frame) (lang.Value, error) {
			n, err := number(f.Arg("a"))
			if err != nil {
				return lang.Void, err
			}

			if i, ok := n.(lang.Int); ok {
				return -i, nil
			}

			return -n.(lang.Double), nil
		}),
		lang.Native("lt", "a b", compare(func(c int) bool { return c < 0 })),
		lang.Native("le", "a b", compare(func(c int) bool { return c <= 0 })),
		lang.Native("gt", "a b", compare(func(c int) bool { return c > 0 })),
		lang.Native("ge", "a b", compare(func(c int) bool { return c >= 0 })),
		lang.Native("min", "first *values", extreme(-1)),
		lang.Native("max", "first *values", extreme(1)),
		lang.Native("calc", "expression", calc),
	)
}

// number returns v as an Int or a Double.
func number(v lang.Value) (lang.Value, error) {
	switch v := v.(type) {
	case lang.Int, lang.Double:
		return v, nil
	}

	if i, err := lang.AsInt(v); err == nil {
		if d, err := lang.AsDouble(v); err == nil && d != float64(i) {
			return lang.Double(d), nil
		}

		return lang.Int(i), nil
	}

	if d, err := lang.AsDouble(v); err == nil {
		return lang.Double(d), nil
	}

	return nil, ErrNotNumber.With(slog.String("value", v.String()))
}

// operands converts a and b to numbers and reports whether both are Int.
func operands(a, b lang.Value) (lang.Value, lang.Value, bool, error) {
	x, err := number(a)
	if err != nil {
		return nil, nil, false, err
	}

	y, err := number(b)
	if err != nil {
		return nil, nil, false, err
	}

	_, xi := x.(lang.Int)
	_, yi := y.(lang.Int)

	return x, y, xi && yi, nil
}

func double(v lang.Value) float64 {
	if i, ok := v.(lang.Int); ok {
		return float64(i)
	}

	return float64(v.(lang.Double))
}

type (
	intOp    func(a, b lang.Int) lang.Int
	doubleOp func(a, b float64) float64
)

func addInt(a, b lang.Int) lang.Int { return a + b }
func addDouble(a, b float64) float64 { return a + b }
func mulInt(a, b lang.Int) lang.Int { return a * b }
func mulDouble(a, b float64) float64 { return a * b }
func subInt(a, b lang.Int) lang.Int { return a - b }
func subDouble(a, b float64) float64 { return a - b }

func apply(x, y lang.Value, i intOp, d doubleOp, ints bool) lang.Value {
	if ints {
		return i(x.(lang.Int), y.(lang.Int))
	}

	return lang.Double(d(double(x), double(y)))
}

// fold combines the variadic values left to right, starting at unit.
func fold(unit lang.Int, i intOp, d doubleOp) lang.NativeFunc {
	return func(_ context.Context, f *lang.Frame) (lang.Value, error) {
		var acc lang.Value = unit

		for _, v := range f.Rest("values") {
			x, y, ints, err := operands(acc, v)
			if err != nil {
				return lang.Void, err
			}

			acc = apply(x, y, i, d, ints)
		}

		return acc, nil
	}
}

func binary(i intOp, d doubleOp) lang.NativeFunc {
	return func(_ context.Context, f *lang.Frame) (lang.Value, error) {
		x, y, ints, err := operands(f.Arg("a"), f.Arg("b"))
		if err != nil {
			return lang.Void, err
		}

		return apply(x, y, i, d, ints), nil
	}
}

// div returns an Int when both operands are Int and the division is exact.
func div(_ context.Context, f *lang.Frame) (lang.Value, error) {
	x, y, ints, err := operands(f.Arg("a"), f.Arg("b"))
	if err != nil {
		return lang.Void, err
	}

	if double(y) == 0 {
		return lang.Void, ErrDivisionByZero.With(slog.String("dividend", x.String()))
	}

	if ints && x.(lang.Int)%y.(lang.Int) == 0 {
		return x.(lang.Int) / y.(lang.Int), nil
	}

	return lang.Double(double(x) / double(y)), nil
}

func mod(_ context.Context, f *lang.Frame) (lang.Value, error) {
	x, y, ints, err := operands(f.Arg("a"), f.Arg("b"))
	if err != nil {
		return lang.Void, err
	}

	if double(y) == 0 {
		return lang.Void, ErrDivisionByZero.With(slog.String("dividend", x.String()))
	}

	if ints {
		return x.(lang.Int) % y.(lang.Int), nil
	}

	return lang.Double(stdmath.Mod(double(x), double(y))), nil
}

func cmp(x, y lang.Value, ints bool) int {
	if ints {
		a, b := x.(lang.Int), y.(lang.Int)

		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}

		return 0
	}

	a, b := double(x), double(y)

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}

	return 0
}

func compare(test func(int) bool) lang.NativeFunc {
	return func(_ context.Context, f *lang.Frame) (lang.Value, error) {
		x, y, ints, err := operands(f.Arg("a"), f.Arg("b"))
		if err != nil {
			return lang.Void, err
		}

		return lang.Bool(test(cmp(x, y, ints))), nil
	}
}

// extreme returns the least (sign -1) or greatest (sign 1) argument.
func extreme(sign int) lang.NativeFunc {
	return func(_ context.Context, f *lang.Frame) (lang.Value, error) {
		best, err := number(f.Arg("first"))
		if err != nil {
			return lang.Void, err
		}

		for _, v := range f.Rest("values") {
			x, y, ints, err := operands(v, best)
			if err != nil {
				return lang.Void, err
			}

			if cmp(x, y, ints) == sign {
				best = x
			}
		}

		return best, nil
	}
}
