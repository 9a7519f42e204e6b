package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/ardnew/rosetto/lang/normalize"
	"github.com/ardnew/rosetto/log"
)

// Norm prints the canonical form of one or more script files.
type Norm struct {
	Files     []string `arg:"" help:"Script file(s) or '-' for stdin" name:"file"`
	AutoBreak bool     `default:"true" help:"End prose lines with a line break." negatable:""`
}

// Run executes the norm command.
func (n *Norm) Run(ctx context.Context, io Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := ResolveSource(ctx, n.Files)
	if err != nil {
		return err
	}

	text, err := src.Read(io.In)
	if err != nil {
		return err
	}

	lines, err := normalize.New(
		normalize.WithAutoBreak(n.AutoBreak),
		normalize.WithLogger(log.Default().Named("norm")),
	).NormalizeString(ctx, text)
	if err != nil {
		return err
	}

	if len(lines) > 0 {
		_, err = fmt.Fprintln(io.Out, strings.Join(lines, "\n"))
	}

	return err
}
