package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/rosetto/lang"
	"github.com/ardnew/rosetto/log"
)

// Eval evaluates canonical text and prints the result.
type Eval struct {
	Expr []string `arg:"" help:"Canonical text such as '[math.add 1 2]'; a bare call may omit the brackets" name:"expr"`
	Load []string `help:"Script file(s) to play before evaluating" short:"l"`
}

// Canonical returns the expression as canonical text.
func (e *Eval) Canonical() string { return Canonical(strings.Join(e.Expr, " ")) }

// Canonical returns expr as canonical text. Input without any tag is taken
// as a single call.
func Canonical(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr != "" && !strings.Contains(expr, "[") {
		expr = "[" + expr + "]"
	}

	return expr
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context, io Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default().Named("eval")

	eng, err := NewEngine(ctx, io.Out, logger)
	if err != nil {
		return err
	}

	if len(e.Load) > 0 {
		src, err := ResolveSource(ctx, e.Load)
		if err != nil {
			return err
		}

		text, err := src.Read(io.In)
		if err != nil {
			return err
		}

		if err := eng.Play(ctx, src.Name(), text, func(context.Context) bool { return true }); err != nil {
			return err
		}
	}

	result, err := eng.Eval(ctx, e.Canonical())
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "eval"))
	}

	if result.Kind() != lang.KindVoid {
		_, err = fmt.Fprintln(io.Out, result.String())
	}

	return err
}
