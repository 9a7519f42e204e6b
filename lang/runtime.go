package lang

import (
	"context"
	"log/slog"

	"github.com/ardnew/rosetto/log"
)

// Player queues scenarios for paced execution. Macro invocations hand
// their expanded scenario to the player instead of running it.
type Player interface {
	PushScenario(ctx context.Context, sc *Scenario, scope *Scope) error
}

// Display receives the visible output of a running scenario.
type Display interface {
	Text(ctx context.Context, text string)
	Linebreak(ctx context.Context)
	PageBreak(ctx context.Context)
	Speaker(ctx context.Context, name string)
}

type discardDisplay struct{}

func (discardDisplay) Text(context.Context, string)    {}
func (discardDisplay) Linebreak(context.Context)       {}
func (discardDisplay) PageBreak(context.Context)       {}
func (discardDisplay) Speaker(context.Context, string) {}

// EventKind identifies what an [Event] reports.
type EventKind int

const (
	EventFunction EventKind = iota
	EventMacro
)

func (k EventKind) String() string {
	switch k {
	case EventFunction:
		return "function"
	case EventMacro:
		return "macro"
	default:
		return "unknown"
	}
}

// Event describes one completed dispatch.
type Event struct {
	Kind   EventKind
	Name   string
	Args   *List
	Result Value
	Err    error
}

// Observer is notified after every function and macro dispatch.
type Observer func(ctx context.Context, e Event)

// DefaultMaxDepth is the default limit on nested calls.
const DefaultMaxDepth = 256

// BasePackage is the name of the namespace holding the built-in functions.
const BasePackage = "base"

// Runtime owns the state of one running script: the namespace registry,
// the global scope and the injected collaborators.
//
// A Runtime is not safe for concurrent use.
type Runtime struct {
	registry  *Registry
	global    *Scope
	parser    Parser
	player    Player
	display   Display
	logger    log.Logger
	observers []Observer
	maxDepth  int
	depth     int
	scripts   *scriptCache
	packages  []*FunctionPackage
	base      bool
}

// Option configures a [Runtime].
type Option func(*Runtime)

// WithParser sets the parser used for macro bodies. The default parses
// canonical text.
func WithParser(p Parser) Option {
	return func(rt *Runtime) { rt.parser = p }
}

// WithPlayer sets the scenario player macros are pushed to. Without one,
// macro scenarios run synchronously.
func WithPlayer(p Player) Option {
	return func(rt *Runtime) { rt.player = p }
}

// WithDisplay sets the display that receives text and breaks.
func WithDisplay(d Display) Option {
	return func(rt *Runtime) { rt.display = d }
}

// WithLogger sets the logger. If not provided, logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(rt *Runtime) { rt.logger = logger }
}

// WithObserver adds an observer notified after every dispatch.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) { rt.observers = append(rt.observers, o) }
}

// WithMaxDepth limits the nesting of calls.
func WithMaxDepth(depth int) Option {
	return func(rt *Runtime) {
		if depth > 0 {
			rt.maxDepth = depth
		}
	}
}

// WithoutBase leaves the built-in functions out of the root namespace.
func WithoutBase() Option {
	return func(rt *Runtime) { rt.base = false }
}

// WithPackages imports and uses each package so its functions resolve
// both qualified and unqualified.
func WithPackages(pkgs ...*FunctionPackage) Option {
	return func(rt *Runtime) { rt.packages = append(rt.packages, pkgs...) }
}

// New returns a runtime configured by opts.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		parser:   CanonicalParser,
		display:  discardDisplay{},
		maxDepth: DefaultMaxDepth,
		scripts:  newScriptCache(),
		base:     true,
	}

	for _, opt := range opts {
		opt(rt)
	}

	rt.registry = NewRegistry(rt.logger)
	rt.global = NewScope(nil)

	ctx := context.Background()

	if rt.base {
		_ = rt.Use(ctx, basePackage())
	}

	for _, pkg := range rt.packages {
		if err := rt.Use(ctx, pkg); err != nil {
			rt.logger.WarnContext(ctx, "package not loaded",
				slog.String("package", pkg.Name),
				slog.Any("error", err),
			)
		}
	}

	return rt
}

// Registry returns the namespace registry.
func (rt *Runtime) Registry() *Registry { return rt.registry }

// Global returns the outermost scope.
func (rt *Runtime) Global() *Scope { return rt.global }

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() log.Logger { return rt.logger }

// Player returns the injected scenario player, or nil.
func (rt *Runtime) Player() Player { return rt.player }

// SetPlayer replaces the scenario player. Hosts whose player needs the
// runtime call it after [New].
func (rt *Runtime) SetPlayer(p Player) { rt.player = p }

// SetDisplay replaces the display.
func (rt *Runtime) SetDisplay(d Display) {
	if d == nil {
		d = discardDisplay{}
	}

	rt.display = d
}

// Import registers pkg under its own name.
func (rt *Runtime) Import(ctx context.Context, pkg *FunctionPackage) error {
	_, err := rt.registry.ImportPackage(ctx, pkg, pkg.Name)

	return err
}

// Use imports pkg and flattens it into the active namespace.
func (rt *Runtime) Use(ctx context.Context, pkg *FunctionPackage) error {
	if err := rt.Import(ctx, pkg); err != nil {
		return err
	}

	return rt.registry.UsePackage(ctx, pkg.Name)
}

// Define binds key in the registry's root namespace.
func (rt *Runtime) Define(key string, v Value) error {
	return rt.registry.Root().Define(key, v)
}

// ClearCache drops all parsed macro bodies.
func (rt *Runtime) ClearCache() { rt.scripts = newScriptCache() }
