//go:build !pprof

package cli

import (
	"context"

	"github.com/alecthomas/kong"
)

// pprofConfig is empty when built without pprof tag.
type pprofConfig struct{}

func (pprofConfig) vars(string) kong.Vars { return kong.Vars{} }

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start is a no-op when built without pprof tag.
func (pprofConfig) start(context.Context) (stop func()) { return func() {} }
