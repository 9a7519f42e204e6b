package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"golang.org/x/term"
)

// Streams are the standard streams a command reads from and writes to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process's standard streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Interactive reports whether both In and Out are terminals.
func (s Streams) Interactive() bool { return isTerminal(s.In) && isTerminal(s.Out) }

func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })

	return ok && term.IsTerminal(int(f.Fd()))
}

type (
	contextKey    struct{}
	searchPathKey struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// WithSearchPath returns a new context.Context carrying the directories
// searched for script files.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, dirs)
}

// SearchPathFrom returns the directories stored by [WithSearchPath].
func SearchPathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(searchPathKey{}).([]string)

	return dirs
}
