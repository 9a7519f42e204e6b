package player

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/rosetto/lang"
	"github.com/ardnew/rosetto/lang/normalize"
)

func setup(t *testing.T, src string) (*Player, *strings.Builder) {
	t.Helper()

	var out strings.Builder

	rt := lang.New(lang.WithDisplay(NewTextDisplay(&out)))
	p := New(rt)

	if err := p.Install(t.Context()); err != nil {
		t.Fatalf("Install: %v", err)
	}

	sc, err := lang.ParseScenario(t.Context(), t.Name(), src)
	if err != nil {
		t.Fatalf("ParseScenario(%q): %v", src, err)
	}

	p.Load(t.Context(), sc)

	return p, &out
}

func TestPlayer_Run(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"text", "Hello[br]World[br]", "Hello\nWorld\n"},
		{"macro before rest", `[macro m (x) "<[print %x]>"]A[m hey]B[br]`, "A<hey>B\n"},
		{"nested macros", `[macro a "a[b]"][macro b "b"][a][a]`, "abab"},
		{"jump", "[story.jump end]skipped[label end]done[br]", "done\n"},
		{"call", "[story.call sub]after[story.end][label sub]in sub [label next]never", "in sub after"},
		{"unknown jump", "[story.jump nowhere]ok", "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out := setup(t, tt.src)

			if err := p.Run(t.Context()); err != nil {
				t.Fatalf("Run: %v", err)
			}

			if got := out.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}

			if !p.Done() {
				t.Error("Done() = false after Run")
			}
		})
	}
}

func TestPlayer_Wait(t *testing.T) {
	p, out := setup(t, "one[story.wait]two")

	if err := p.Run(t.Context()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !p.Waiting() || p.Done() || out.String() != "one" {
		t.Fatalf("after first Run: waiting=%v done=%v output=%q", p.Waiting(), p.Done(), out)
	}

	if err := p.Run(t.Context()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if p.Waiting() || !p.Done() || out.String() != "onetwo" {
		t.Errorf("after second Run: waiting=%v done=%v output=%q", p.Waiting(), p.Done(), out)
	}
}

func TestPlayer_Step(t *testing.T) {
	p, out := setup(t, "a[br]b[br]")

	more, err := p.Step(t.Context())
	if err != nil || !more {
		t.Fatalf("Step() = %v, %v; want true, nil", more, err)
	}

	if out.String() != "a\n" {
		t.Errorf("output = %q after one step", out)
	}

	more, _ = p.Step(t.Context())
	if more || p.Steps() != 2 {
		t.Errorf("Step() = %v with %d steps; want false with 2", more, p.Steps())
	}
}

func TestPlayer_Jump(t *testing.T) {
	rt := lang.New()
	p := New(rt)

	if err := p.Jump(t.Context(), "x"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Jump before Load = %v, want %v", err, ErrNotLoaded)
	}

	sc, err := normalize.ParseSource(t.Context(), "jump", "*top\nline\n*bottom\nend")
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}

	p.Load(t.Context(), sc)

	if err := p.Jump(t.Context(), "missing"); !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("Jump(missing) = %v, want %v", err, ErrUnknownLabel)
	}

	if err := p.Jump(t.Context(), "bottom"); err != nil {
		t.Fatalf("Jump(bottom): %v", err)
	}

	if err := p.Run(t.Context()); err != nil || p.Steps() != 1 {
		t.Errorf("Run after jump = %v with %d steps, want 1 step", err, p.Steps())
	}
}

func TestPlayer_Canceled(t *testing.T) {
	p, _ := setup(t, "a[br]b[br]")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want %v", err, context.Canceled)
	}
}

func TestTextDisplay(t *testing.T) {
	var out strings.Builder

	d := NewTextDisplay(&out)
	ctx := t.Context()

	d.Speaker(ctx, "ann")
	d.Text(ctx, "Hi")
	d.Speaker(ctx, "bob")
	d.Text(ctx, "Yo")
	d.PageBreak(ctx)
	d.Text(ctx, "end")
	d.Linebreak(ctx)
	d.PageBreak(ctx)

	want := "ann: Hi\nbob: Yo\n\nend\n\n"
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	if d.Err() != nil {
		t.Errorf("Err() = %v", d.Err())
	}
}

func TestTextDisplay_Style(t *testing.T) {
	var out strings.Builder

	d := NewTextDisplay(&out, WithSpeakerStyle(DefaultSpeakerStyle()))
	d.Speaker(t.Context(), "ann")

	if got := out.String(); !strings.Contains(got, "ann") || !strings.HasSuffix(got, ": ") {
		t.Errorf("output = %q", got)
	}
}
