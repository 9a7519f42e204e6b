package lang

import "testing"

func mustExpansion(t *testing.T, caller string, params ...string) Expansion {
	t.Helper()

	ex, err := NewExpansion(mustList(t, caller), mustParams(t, params...))
	if err != nil {
		t.Fatalf("NewExpansion(%q): %v", caller, err)
	}

	return ex
}

func TestExpand_Unchanged(t *testing.T) {
	args := mustList(t, "hello world k=v [f x]")
	ex := mustExpansion(t, "Alice", "name")

	if got := Expand(args, ex); got != args {
		t.Errorf("Expand returned a copy of a container with no placeholders")
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		caller string
		params []string
		want   string
	}{
		{
			name:   "named",
			body:   "%name",
			caller: "Alice",
			params: []string{"name"},
			want:   "(Alice)",
		},
		{
			name:   "default used",
			body:   "%greet|Hi %name",
			caller: "Alice",
			params: []string{"name"},
			want:   "(Hi Alice)",
		},
		{
			name:   "default ignored",
			body:   "%greet|Hi",
			caller: "greet=Yo",
			want:   "(Yo)",
		},
		{
			name:   "unresolved dropped",
			body:   "%missing keep k=%missing",
			caller: "",
			want:   "(keep)",
		},
		{
			name:   "positional index",
			body:   "%1 %0",
			caller: "a b",
			want:   "(b a)",
		},
		{
			name:   "keyword value",
			body:   "to=%who",
			caller: "who=Bob",
			want:   "(to=Bob)",
		},
		{
			name:   "splice remaining",
			body:   "first *",
			caller: "x y k=v",
			params: []string{"a"},
			want:   "(first y k=v)",
		},
		{
			name:   "splice keeps body keywords",
			body:   "* k=mine",
			caller: "k=theirs j=1",
			want:   "(j=1 k=mine)",
		},
		{
			name:   "splice skips used keywords",
			body:   "[print hello %who *]",
			caller: "who=bob size=3",
			want:   "([print hello bob size=3])",
		},
		{
			name:   "splice skips keywords used in keyword values",
			body:   "* to=%who",
			caller: "x who=bob",
			want:   "(x to=bob)",
		},
		{
			name:   "splice variadic",
			body:   "*",
			caller: "a b c",
			params: []string{"head", "*tail"},
			want:   "(b c)",
		},
		{
			name:   "nested call",
			body:   "[print %name] (%name x)",
			caller: "Ann",
			params: []string{"name"},
			want:   "([print Ann] (Ann x))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := mustExpansion(t, tt.caller, tt.params...)

			if got := Expand(mustList(t, tt.body), ex).String(); got != tt.want {
				t.Errorf("Expand(%q) = %s, want %s", tt.body, got, tt.want)
			}
		})
	}
}

func TestExpand_DoesNotModifyBody(t *testing.T) {
	body := mustList(t, "[print %name] *")
	ex := mustExpansion(t, "Ann extra", "name")
	want := body.String()

	_ = Expand(body, ex)

	if got := body.String(); got != want {
		t.Errorf("body changed from %s to %s", want, got)
	}
}
