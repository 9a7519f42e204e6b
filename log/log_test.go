package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_Zero(t *testing.T) {
	var l Logger

	l.Info("discarded")
	l.With(slog.Int("n", 1)).ErrorContext(t.Context(), "discarded")

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Errorf("zero Logger level=%v format=%v", l.Level(), l.Format())
	}

	if l.Active(t.Context(), LevelError) {
		t.Error("zero Logger is active")
	}
}

func TestLogger_Level(t *testing.T) {
	tests := []struct {
		level  Level
		logged []string
	}{
		{LevelTrace, []string{"trace", "debug", "info", "warn", "error"}},
		{LevelInfo, []string{"info", "warn", "error"}},
		{LevelError, []string{"error"}},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer

			l := Make(&buf, WithLevel(tt.level), WithTimeLayout("none"))
			l.Trace("trace")
			l.Debug("debug")
			l.Info("info")
			l.Warn("warn")
			l.Error("error")

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if len(lines) != len(tt.logged) {
				t.Fatalf("logged %d lines, want %d:\n%s", len(lines), len(tt.logged), buf.String())
			}

			for i, msg := range tt.logged {
				want := "level=" + strings.ToUpper(msg) + " msg=" + msg
				if lines[i] != want {
					t.Errorf("line %d = %q, want %q", i, lines[i], want)
				}
			}
		})
	}
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatJSON), WithLevel(LevelTrace))
	l.Named("player").TraceContext(t.Context(), "step", slog.Int("unit", 3))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	for key, want := range map[string]any{
		"level":     "TRACE",
		"msg":       "step",
		"component": "player",
		"unit":      float64(3),
	} {
		if rec[key] != want {
			t.Errorf("%s = %v, want %v", key, rec[key], want)
		}
	}

	if _, ok := rec["time"]; !ok {
		t.Error("time missing")
	}
}

func TestLogger_Wrap(t *testing.T) {
	var a, b bytes.Buffer

	l := Make(&a, WithLevel(LevelWarn))
	w := l.Wrap(WithOutput(&b), WithLevel(LevelDebug))

	l.Debug("hidden")
	w.Debug("shown")

	if a.Len() != 0 {
		t.Errorf("original logger wrote %q", a.String())
	}

	if !strings.Contains(b.String(), "shown") || w.Level() != LevelDebug {
		t.Errorf("wrapped logger wrote %q at %v", b.String(), w.Level())
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true)).Info("here")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("caller missing from %q", buf.String())
	}
}

func TestLogger_Pretty(t *testing.T) {
	for _, format := range []Format{FormatText, FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer

			l := Make(&buf, WithPretty(true), WithFormat(format), WithTimeLayout(""))
			l.With(slog.String("scope", "test")).
				WithGroup("call").
				Warn("failed", slog.String("name", "greet"), slog.Any("error", errors.New("boom")))

			out := buf.String()
			for _, want := range []string{"WARN", "failed", "scope", "call.name", "greet", "boom"} {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %q", out, want)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"Warn", LevelWarn},
		{"error", LevelError},
		{"info+2", Level(slog.LevelInfo + 2)},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, " TEXT ": FormatText, "xml": DefaultFormat} {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevels(t *testing.T) {
	var names []string
	for name := range Levels() {
		names = append(names, name)
	}

	if got := strings.Join(names, ","); got != "trace,debug,info,warn,error" {
		t.Errorf("Levels() = %s", got)
	}
}
