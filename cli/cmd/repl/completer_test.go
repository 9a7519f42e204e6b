package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/rosetto/lang"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name, input string
		cursor      int
		word        string
		start, end  int
	}{
		{"empty", "", 0, "", 0, 0},
		{"bare", "print", 5, "print", 0, 5},
		{"tag", "[print", 6, "print", 1, 6},
		{"dotted", "[math.ad", 8, "ad", 6, 8},
		{"middle", "[math.add 1]", 7, "add", 6, 9},
		{"global", "[print $her", 11, "her", 8, 11},
		{"boundary", "[print ", 7, "", 7, 7},
		{"past end", "abc", 10, "abc", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.word || start != tt.start || end != tt.end {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end, tt.word, tt.start, tt.end)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		input     string
		wordStart int
		want      string
	}{
		{"[math.ad", 6, "math"},
		{"[a.b.c", 5, "a.b"},
		{"[print [story.", 14, "story"},
		{"[add", 1, ""},
		{"", 0, ""},
	}

	for _, tt := range tests {
		if got := parentPath(tt.input, tt.wordStart); got != tt.want {
			t.Errorf("parentPath(%q, %d) = %q, want %q", tt.input, tt.wordStart, got, tt.want)
		}
	}
}

func TestChildCandidates(t *testing.T) {
	rt := lang.New()
	reg := rt.Registry()

	if err := reg.Namespace("a.b").Define("c", lang.Int(1)); err != nil {
		t.Fatalf("Define: %v", err)
	}

	if err := reg.Namespace("a").Define("d", lang.Int(2)); err != nil {
		t.Fatalf("Define: %v", err)
	}

	if got, want := childCandidates(reg, nil, "a"), []string{"b", "d"}; !slices.Equal(got, want) {
		t.Errorf("childCandidates(a) = %v, want %v", got, want)
	}

	if got, want := childCandidates(reg, nil, "a.b"), []string{"c"}; !slices.Equal(got, want) {
		t.Errorf("childCandidates(a.b) = %v, want %v", got, want)
	}

	if got := childCandidates(reg, nil, "missing"); len(got) != 0 {
		t.Errorf("childCandidates(missing) = %v, want none", got)
	}

	rt.Global().Set("hero", lang.String("Mio"))

	top := childCandidates(reg, rt.Global(), "")
	for _, want := range []string{"a", "base", "hero", "set"} {
		if !slices.Contains(top, want) {
			t.Errorf("top-level candidates missing %q: %v", want, top)
		}
	}

	if !slices.IsSorted(top) {
		t.Errorf("top-level candidates not sorted: %v", top)
	}
}

func TestRenderCandidateBar(t *testing.T) {
	var matches fuzzy.Matches
	for _, s := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		matches = append(matches, fuzzy.Match{Str: s})
	}

	if got := renderCandidateBar(nil, -1, false, 80); got != "" {
		t.Errorf("no matches = %q, want empty", got)
	}

	if got := renderCandidateBar(matches, -1, false, 0); got != "" {
		t.Errorf("zero width = %q, want empty", got)
	}

	full := renderCandidateBar(matches, -1, false, 80)
	for _, m := range matches {
		if !strings.Contains(full, m.Str) {
			t.Errorf("bar %q missing %q", full, m.Str)
		}
	}

	short := renderCandidateBar(matches, -1, false, 20)
	if !strings.HasSuffix(short, "...") {
		t.Errorf("narrow bar %q not ellipsized", short)
	}

	if strings.Contains(short, "echo") {
		t.Errorf("narrow bar %q shows trailing candidate", short)
	}
}

func TestPreview(t *testing.T) {
	long := lang.String(strings.Repeat("x", 100))

	tests := []struct {
		v    lang.Value
		want string
	}{
		{lang.Int(3), "3"},
		{lang.String("one\ntwo"), "one..."},
		{lang.Null, "null"},
	}

	for _, tt := range tests {
		if got := preview(tt.v); got != tt.want {
			t.Errorf("preview(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}

	if got := preview(long); len(got) != 48 || !strings.HasSuffix(got, "...") {
		t.Errorf("preview(long) = %q", got)
	}
}
