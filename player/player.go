package player

import (
	"context"
	"log/slog"

	"github.com/ardnew/rosetto/lang"
	"github.com/ardnew/rosetto/log"
)

var (
	ErrUnknownLabel = lang.NewError("unknown label")
	ErrNotLoaded    = lang.NewError("no scenario loaded")
)

// frame is one scenario being played. Units in [pc, stop) remain.
type frame struct {
	sc    *lang.Scenario
	scope *lang.Scope
	pc    int
	stop  int
}

func (f *frame) done() bool { return f.pc >= f.stop }

// Player steps through scenarios one unit at a time. Scenarios pushed
// while a unit runs, such as expanded macros, play before the rest of
// the scenario that pushed them.
//
// A Player is not safe for concurrent use.
type Player struct {
	rt      *lang.Runtime
	frames  []*frame
	waiting bool
	steps   int
	logger  log.Logger
}

// Option configures a [Player].
type Option func(*Player)

// WithLogger sets the logger. If not provided, the runtime's logger is
// used.
func WithLogger(logger log.Logger) Option {
	return func(p *Player) { p.logger = logger }
}

// New returns a player that evaluates units with rt and installs itself
// as the runtime's player.
func New(rt *lang.Runtime, opts ...Option) *Player {
	p := &Player{rt: rt, logger: rt.Logger()}

	for _, opt := range opts {
		opt(p)
	}

	rt.SetPlayer(p)

	return p
}

// Load discards any queued scenarios and queues sc in the global scope.
func (p *Player) Load(ctx context.Context, sc *lang.Scenario) {
	p.frames = p.frames[:0]
	p.waiting = false

	_ = p.PushScenario(ctx, sc, p.rt.Global())
}

// PushScenario queues sc to play next in scope.
func (p *Player) PushScenario(ctx context.Context, sc *lang.Scenario, scope *lang.Scope) error {
	p.push(ctx, sc, scope, 0, sc.Len())

	return nil
}

func (p *Player) push(ctx context.Context, sc *lang.Scenario, scope *lang.Scope, pc, stop int) {
	p.frames = append(p.frames, &frame{sc: sc, scope: scope, pc: pc, stop: stop})

	p.logger.TraceContext(ctx, "scenario pushed",
		slog.String("scenario", sc.Name),
		slog.String("kind", sc.Kind.String()),
		slog.Int("from", pc),
		slog.Int("depth", len(p.frames)),
	)
}

// top drops finished frames and returns the frame to play next.
func (p *Player) top() *frame {
	for len(p.frames) > 0 {
		f := p.frames[len(p.frames)-1]
		if !f.done() {
			return f
		}

		p.frames = p.frames[:len(p.frames)-1]
	}

	return nil
}

// Done reports whether every queued unit has played.
func (p *Player) Done() bool { return p.top() == nil }

// Waiting reports whether playback is paused by story.wait.
func (p *Player) Waiting() bool { return p.waiting }

// Steps returns the number of units played.
func (p *Player) Steps() int { return p.steps }

// Step plays one unit. It reports whether any units remain.
func (p *Player) Step(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	f := p.top()
	if f == nil {
		return false, nil
	}

	u := f.sc.Units[f.pc]
	f.pc++
	p.steps++

	p.rt.RunUnit(ctx, u, f.scope)

	return !p.Done(), nil
}

// Run plays units until none remain or a unit asks to wait. Calling Run
// again resumes after a wait.
func (p *Player) Run(ctx context.Context) error {
	p.waiting = false

	for !p.waiting {
		more, err := p.Step(ctx)
		if err != nil {
			return err
		}

		if !more {
			p.logger.DebugContext(ctx, "playback finished", slog.Int("steps", p.steps))

			return nil
		}
	}

	p.logger.DebugContext(ctx, "playback waiting", slog.Int("steps", p.steps))

	return nil
}

// Jump continues playback at label. The innermost queued scenario that
// defines label is resumed there; scenarios queued above it are dropped.
func (p *Player) Jump(ctx context.Context, label string) error {
	for i := len(p.frames) - 1; i >= 0; i-- {
		f := p.frames[i]

		at, ok := f.sc.Label(label)
		if !ok {
			continue
		}

		f.pc, f.stop = at, f.sc.Len()
		p.frames = p.frames[:i+1]

		p.logger.DebugContext(ctx, "jump",
			slog.String("label", label),
			slog.String("scenario", f.sc.Name),
			slog.Int("unit", at),
		)

		return nil
	}

	if len(p.frames) == 0 {
		return ErrNotLoaded.With(slog.String("label", label))
	}

	return ErrUnknownLabel.With(slog.String("label", label))
}

// Call plays the section of the innermost scenario that starts at label
// and ends at the next label, then resumes after the calling unit.
func (p *Player) Call(ctx context.Context, label string, scope *lang.Scope) error {
	for i := len(p.frames) - 1; i >= 0; i-- {
		sc := p.frames[i].sc

		at, ok := sc.Label(label)
		if !ok {
			continue
		}

		p.push(ctx, sc, scope, at, sectionEnd(sc, at))

		return nil
	}

	return ErrUnknownLabel.With(slog.String("label", label))
}

// Stop drops every queued scenario.
func (p *Player) Stop(ctx context.Context) {
	p.frames = p.frames[:0]

	p.logger.DebugContext(ctx, "playback stopped", slog.Int("steps", p.steps))
}

// sectionEnd returns the end of the section starting at from: just past
// the unit holding the next label, or the scenario length.
func sectionEnd(sc *lang.Scenario, from int) int {
	end := sc.Len()

	for _, at := range sc.Labels() {
		if at > from && at < end {
			end = at
		}
	}

	return end
}
