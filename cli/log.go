package cli

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"golang.org/x/term"

	"github.com/ardnew/rosetto/log"
)

// logFormat is a custom type that configures the logger format as a side
// effect of parsing via encoding.TextUnmarshaler.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
// As Kong parses the --log-format flag, this method is called, allowing us
// to configure the logger early enough to affect error messages during parsing.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel is a custom type that configures the logger level as a side
// effect of parsing via encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"         enum:"${logLevelEnum}"  help:"Set log level (${enum})."`
	Format     logFormat `default:"text"         enum:"${logFormatEnum}" help:"Set log format (${enum})."`
	TimeLayout string    `default:"RFC3339"                              help:"Set timestamp format, or none to omit it."`
	Caller     bool      `default:"false"                                help:"Include caller information."               negatable:""`
	Pretty     bool      `default:"${logPretty}"                         help:"Enable colorized pretty printing."         negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
		"logPretty":     strconv.FormatBool(term.IsTerminal(int(os.Stderr.Fd()))),
	}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan performs an early pass over command-line arguments to extract and
// apply logger configuration before Kong begins parsing. This ensures the
// logger is configured properly regardless of flag position on the command
// line.
//
// While logFormat and logLevel implement encoding.TextUnmarshaler, boolean
// flags like --log-pretty don't go through that interface.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			return
		}

		name, value, assigned := strings.Cut(args[i], "=")

		key, ok := strings.CutPrefix(name, "--")
		if !ok {
			continue
		}

		key, negated := strings.CutPrefix(key, "no-")

		key, ok = strings.CutPrefix(key, "log-")
		if !ok {
			continue
		}

		switch key {
		case "level", "format":
			if negated {
				continue
			}

			// Non-boolean flag: consume next arg as value if not assigned
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				value = args[i]
			}

			if key == "level" {
				_ = f.Level.UnmarshalText([]byte(value))
			} else {
				_ = f.Format.UnmarshalText([]byte(value))
			}

		case "pretty", "caller":
			// Boolean flag: only parse value if explicitly assigned with =
			enable := true

			if assigned {
				v, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}

				enable = v
			}

			if negated {
				enable = !enable
			}

			if key == "pretty" {
				f.Pretty = enable
				log.Config(log.WithPretty(enable))
			} else {
				f.Caller = enable
				log.Config(log.WithCaller(enable))
			}
		}
	}
}
