package lang

import (
	"errors"
	"testing"
)

func mustList(t *testing.T, raw string) *List {
	t.Helper()

	l, err := ParseList(raw)
	if err != nil {
		t.Fatalf("ParseList(%q): %v", raw, err)
	}

	return l
}

func mustParams(t *testing.T, specs ...string) []Param {
	t.Helper()

	params, err := ParseParams(specs...)
	if err != nil {
		t.Fatalf("ParseParams(%q): %v", specs, err)
	}

	return params
}

func TestBind(t *testing.T) {
	tests := []struct {
		name   string
		args   string
		params []string
		want   map[string]string
		err    error
	}{
		{
			name:   "required",
			args:   "A B C",
			params: []string{"a", "b", "c"},
			want:   map[string]string{"a": "A", "b": "B", "c": "C"},
		},
		{
			name:   "too few",
			args:   "A B",
			params: []string{"a", "b", "c"},
			err:    ErrTooFewArguments,
		},
		{
			name:   "too many",
			args:   "A B C D",
			params: []string{"a", "b", "c"},
			err:    ErrTooManyArguments,
		},
		{
			name:   "variadic",
			args:   "A B C D E F",
			params: []string{"a", "b", "*rest"},
			want:   map[string]string{"a": "A", "b": "B", "rest": "(C D E F)"},
		},
		{
			name:   "variadic empty",
			args:   "A",
			params: []string{"a", "*rest"},
			want:   map[string]string{"a": "A", "rest": "()"},
		},
		{
			name:   "defaults",
			args:   "v1 v2",
			params: []string{"arg1", "arg2=dummy", "arg3=v3"},
			want:   map[string]string{"arg1": "v1", "arg2": "v2", "arg3": "v3"},
		},
		{
			name:   "keyword first",
			args:   "b=2 1",
			params: []string{"a", "b", "c=3"},
			want:   map[string]string{"a": "1", "b": "2", "c": "3"},
		},
		{
			name:   "keyword only",
			args:   "c=x a=y b=z",
			params: []string{"a", "b", "c"},
			want:   map[string]string{"a": "y", "b": "z", "c": "x"},
		},
		{
			name:   "unknown keyword",
			args:   "x=1",
			params: []string{"a=0"},
			err:    ErrUnknownKeyword,
		},
		{
			name:   "no params",
			args:   "",
			params: nil,
			want:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Bind(mustList(t, tt.args), mustParams(t, tt.params...))
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Bind error = %v, want %v", err, tt.err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Bind: %v", err)
			}

			if len(got) != len(tt.want) {
				t.Errorf("Bind bound %d names, want %d: %v", len(got), len(tt.want), got)
			}

			for name, want := range tt.want {
				if v, ok := got[name]; !ok || v.String() != want {
					t.Errorf("%s = %v, want %s", name, v, want)
				}
			}
		})
	}
}

func TestParseParams(t *testing.T) {
	params := mustParams(t, "a", "b=(1 2)", "*rest")

	if params[0].Default != nil || params[0].Variadic {
		t.Errorf("a = %+v", params[0])
	}

	if l, ok := params[1].Default.(*List); !ok || l.Len() != 2 {
		t.Errorf("b default = %v", params[1].Default)
	}

	if !params[2].Variadic || params[2].Name != "rest" {
		t.Errorf("rest = %+v", params[2])
	}

	if got := FormatParams(params); got != "a b=(1 2) *rest" {
		t.Errorf("FormatParams = %q", got)
	}

	if _, err := ParseParams("*a", "*b"); !errors.Is(err, ErrMultipleVariadic) {
		t.Errorf("multiple variadic error = %v", err)
	}

	if _, err := ParseParams("=x"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("empty name error = %v", err)
	}
}

func TestParamsOf(t *testing.T) {
	v, err := ParseElement("(name greeting=Hello *rest)")
	if err != nil {
		t.Fatal(err)
	}

	params, err := ParamsOf(v)
	if err != nil {
		t.Fatal(err)
	}

	if got := FormatParams(params); got != "name greeting=Hello *rest" {
		t.Errorf("ParamsOf = %q, want declaration order kept", got)
	}

	params, err = ParamsOf(String("a b=2"))
	if err != nil || len(params) != 2 {
		t.Errorf("ParamsOf string = %v, %v", params, err)
	}

	if params, err := ParamsOf(Null); err != nil || params != nil {
		t.Errorf("ParamsOf null = %v, %v", params, err)
	}
}
