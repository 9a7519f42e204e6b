package text

import (
	"errors"
	"testing"

	"github.com/ardnew/rosetto/lang"
)

func TestPackage(t *testing.T) {
	rt := lang.New(lang.WithPackages(Package()))

	tests := []struct {
		src  string
		want string
	}{
		{"[upper abc]", "ABC"},
		{"[text.lower ABC]", "abc"},
		{`[trim "  a b  "]`, "a b"},
		{`[trim xxaxx cutset=x]`, "a"},
		{"[join - a b c]", "a-b-c"},
		{`[join ", " (1 2 3)]`, "1, 2, 3"},
		{`[split "a b  c"]`, "(a b c)"},
		{"[split a,b,c ,]", "(a b c)"},
		{"[replace banana a o]", "bonono"},
		{"[length héllo]", "5"},
		{"[contains haystack st]", "true"},
		{"[prefix haystack hay]", "true"},
		{"[suffix haystack hay]", "false"},
		{"[substr hello 1 3]", "el"},
		{"[substr hello -3]", "llo"},
		{"[substr hello 2 99]", "llo"},
		{"[substr hello 4 1]", ""},
		{"[repeat ab 3]", "ababab"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v, err := lang.ParseElement(tt.src)
			if err != nil {
				t.Fatalf("ParseElement: %v", err)
			}

			got, err := rt.Call(t.Context(), v.(*lang.Call), rt.Global())
			if err != nil {
				t.Fatalf("Call(%s) error: %v", tt.src, err)
			}

			if got.String() != tt.want {
				t.Errorf("Call(%s) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestRepeat_Negative(t *testing.T) {
	rt := lang.New(lang.WithPackages(Package()))

	_, err := rt.Call(t.Context(), lang.NewCall("repeat", lang.String("x"), lang.Int(-1)), rt.Global())
	if !errors.Is(err, ErrNegativeCount) {
		t.Errorf("repeat error = %v, want %v", err, ErrNegativeCount)
	}
}
