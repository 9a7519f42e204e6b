// Package text provides string functions.
package text

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/rosetto/lang"
)

// Name is the namespace the package is imported into.
const Name = "text"

var ErrNegativeCount = lang.NewError("negative count")

// Package returns the text function package.
func Package() *lang.FunctionPackage {
	return lang.NewPackage(Name,
		unary("upper", strings.ToUpper),
		unary("lower", strings.ToLower),
		lang.Native("trim", "s cutset=null", func(_ context.Context, f *lang.Frame) (lang.Value, error) {
			s := f.Arg("s").String()
			if cutset, ok := f.Arg("cutset").(lang.String); ok {
				return lang.String(strings.Trim(s, string(cutset))), nil
			}

			return lang.String(strings.TrimSpace(s)), nil
		}),
		lang.Native("join", "sep *values", func(_ context.Context, f *lang.Frame) (lang.Value, error) {
			values := f.Rest("values")
			if len(values) == 1 {
				if l, ok := values[0].(*lang.List); ok {
					values = l.Items()
				}
			}

			parts := make([]string, len(values))
			for i, v := range values {
				parts[i] = v.String()
			}

			return lang.String(strings.Join(parts, f.Arg("sep").String())), nil
		}),
		lang.Native("split", "s sep=null", func(_ context.Context, f *lang.Frame) (lang.Value, error) {
			var parts []string

			if sep, ok := f.Arg("sep").(lang.String); ok && sep != "" {
				parts = strings.Split(f.Arg("s").String(), string(sep))
			} else {
				parts = strings.Fields(f.Arg("s").String())
			}

			items := make([]lang.Value, len(parts))
			for i, p := range parts {
				items[i] = lang.String(p)
			}

			return lang.NewList(items...), nil
		}),
		lang.Native("replace", "s old new", func(_ context.Context, f *lang.Frame) (lang.Value, error) {
			return lang.String(strings.ReplaceAll(
				f.Arg("s").String(), f.Arg("old").String(), f.Arg("new").String(),
			)), nil
		}),
		lang.Native("length", "s", func(_ context.Context, f *lang.Frame) (lang.Value, error) {
			return lang.Int(utf8.RuneCountInString(f.Arg("s").String())), nil
		}),
		predicate("contains", "s sub", strings.Contains),
		predicate("prefix", "s prefix", strings.HasPrefix),
		predicate("suffix", "s suffix", strings.HasSuffix),
		lang.Native("substr", "s start end=null", substr),
		lang.Native("repeat", "s count", func(_ context.Context, f *lang.Frame) (lang.Value, error) {
			n, err := lang.AsInt(f.Arg("count"))
			if err != nil {
				return lang.Void, err
			}

			if n < 0 {
				return lang.Void, ErrNegativeCount.With(slog.Int64("count", n))
			}

			return lang.String(strings.Repeat(f.Arg("s").String(), int(n))), nil
		}),
	)
}

func unary(name string, fn func(string) string) *lang.Function {
	return lang.Native(name, "s", func(_ context.Context, f *lang.Frame) (lang.Value, error) {
		return lang.String(fn(f.Arg("s").String())), nil
	})
}

func predicate(name, params string, fn func(s, sub string) bool) *lang.Function {
	p := lang.MustParseParams(params)

	return lang.Native(name, params, func(_ context.Context, f *lang.Frame) (lang.Value, error) {
		return lang.Bool(fn(f.Arg(p[0].Name).String(), f.Arg(p[1].Name).String())), nil
	})
}

// substr returns the runes of s in [start, end). Negative indices count
// from the end and out of range indices are clamped.
func substr(_ context.Context, f *lang.Frame) (lang.Value, error) {
	runes := []rune(f.Arg("s").String())

	start, err := lang.AsInt(f.Arg("start"))
	if err != nil {
		return lang.Void, err
	}

	end := int64(len(runes))
	if v := f.Arg("end"); v != lang.Null {
		if end, err = lang.AsInt(v); err != nil {
			return lang.Void, err
		}
	}

	lo, hi := clamp(start, len(runes)), clamp(end, len(runes))
	if lo >= hi {
		return lang.String(""), nil
	}

	return lang.String(runes[lo:hi]), nil
}

func clamp(i int64, n int) int {
	if i < 0 {
		i += int64(n)
	}

	return int(max(0, min(i, int64(n))))
}
