package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPackageFunctions(t *testing.T) {
	original := defaultLog
	defer func() { defaultLog = original }()

	var buf bytes.Buffer

	defaultLog = Make(&buf)
	Config(WithLevel(LevelTrace), WithFormat(FormatJSON))

	tests := []struct {
		fn    func(string, ...slog.Attr)
		level string
	}{
		{Trace, "TRACE"},
		{Debug, "DEBUG"},
		{Info, "INFO"},
		{Warn, "WARN"},
		{Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			out := buf.String()
			for _, want := range []string{`"level":"` + tt.level + `"`, `"msg":"message"`, `"key":"value"`} {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %s", out, want)
				}
			}
		})
	}

	if Default().Format() != FormatJSON {
		t.Errorf("Default().Format() = %v, want json", Default().Format())
	}
}
