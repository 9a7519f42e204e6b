package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/rosetto/lang"
	"github.com/ardnew/rosetto/lang/ext/math"
	"github.com/ardnew/rosetto/lang/ext/text"
	"github.com/ardnew/rosetto/lang/normalize"
	"github.com/ardnew/rosetto/log"
	"github.com/ardnew/rosetto/player"
)

// Engine is a runtime wired to a player and a text display, with the
// standard packages installed.
type Engine struct {
	Runtime *lang.Runtime
	Player  *player.Player
	Display *player.TextDisplay
	Parser  *normalize.Parser
}

// NewEngine returns an engine writing to out. The math and text packages
// are usable unqualified; playback control is installed as story. Speaker
// names are styled when out is a terminal.
func NewEngine(
	ctx context.Context,
	out io.Writer,
	logger log.Logger,
	opts ...normalize.Option,
) (*Engine, error) {
	var style []player.DisplayOption
	if isTerminal(out) {
		style = append(style, player.WithSpeakerStyle(player.DefaultSpeakerStyle()))
	}

	display := player.NewTextDisplay(out, style...)

	rt := lang.New(
		lang.WithLogger(logger),
		lang.WithDisplay(display),
		lang.WithPackages(math.Package(), text.Package()),
	)

	p := player.New(rt, player.WithLogger(logger))
	if err := p.Install(ctx); err != nil {
		return nil, err
	}

	return &Engine{
		Runtime: rt,
		Player:  p,
		Display: display,
		Parser:  normalize.NewParser(append(opts, normalize.WithLogger(logger))...),
	}, nil
}

// Play parses source and plays it to the end. Each time the script waits,
// pause is called before playback resumes; playback ends early if pause
// returns false.
func (e *Engine) Play(
	ctx context.Context,
	name, source string,
	pause func(context.Context) bool,
) error {
	sc, err := e.Parser.ParseScript(ctx, name, source)
	if err != nil {
		return err
	}

	e.Runtime.Logger().DebugContext(ctx, "scenario parsed",
		slog.String("script", name),
		slog.Int("units", sc.Len()),
	)

	e.Player.Load(ctx, sc)

	for {
		if err := e.Player.Run(ctx); err != nil {
			return err
		}

		if !e.Player.Waiting() || !pause(ctx) {
			break
		}
	}

	return e.Display.Err()
}

// Eval parses canonical text and runs it synchronously, returning the
// result of the last call that produced a value.
func (e *Engine) Eval(ctx context.Context, canonical string) (lang.Value, error) {
	sc, err := lang.ParseScenario(ctx, "eval", canonical)
	if err != nil {
		return nil, err
	}

	var result lang.Value = lang.Void

	for _, u := range sc.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if v := e.Runtime.RunUnit(ctx, u, e.Runtime.Global()); v != nil && v.Kind() != lang.KindVoid {
			result = v
		}
	}

	// Macros queued by the units above play before returning.
	if err := e.Player.Run(ctx); err != nil {
		return nil, err
	}

	return result, e.Display.Err()
}
