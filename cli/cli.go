package cli

import (
	"context"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/ardnew/rosetto/cli/cmd"
	"github.com/ardnew/rosetto/cli/cmd/repl"
	"github.com/ardnew/rosetto/pkg"
)

// CLI is the top-level command-line interface for rosetto.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Include []string         `help:"Directories searched for script files, before ${pathEnv}" short:"I" type:"path"`
	Version kong.VersionFlag `help:"Print version and exit"                                    short:"V"`

	Run   cmd.Run      `cmd:"" help:"Play script files"`
	Norm  cmd.Norm     `cmd:"" help:"Print the canonical form of script files"`
	Parse cmd.Parse    `cmd:"" help:"Print the scenario parsed from script files"`
	Eval  cmd.Eval     `cmd:"" help:"Evaluate canonical text"`
	Repl  repl.Command `cmd:"" help:"Start an interactive session"`
	Init  cmd.Init     `cmd:"" help:"Write the configuration file"`
}

// environment holds the process state a CLI invocation depends on.
type environment struct {
	streams  cmd.Streams
	config   string
	cacheDir string
}

func defaultEnvironment() (environment, error) {
	if err := pkg.MkdirAll(); err != nil {
		return environment{}, err
	}

	return environment{
		streams:  cmd.StdStreams(),
		config:   pkg.ConfigPath(),
		cacheDir: pkg.CacheDir(),
	}, nil
}

// Run executes the rosetto CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	env, err := defaultEnvironment()
	if err != nil {
		return err
	}

	return run(ctx, env, exit, args...)
}

func run(
	ctx context.Context,
	env environment,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	vars := kong.Vars{
		cmd.ConfigIdentifier: env.config,
		cmd.CacheIdentifier:  env.cacheDir,
		"version":            pkg.Name + " " + pkg.Version(),
		"pathEnv":            pkg.PathEnv(),
		"historyFile":        filepath.Join(env.cacheDir, repl.HistoryFile),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars(env.cacheDir))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so that messages logged while parsing use
	// the requested level and format regardless of flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(env.streams.Out, env.streams.Err),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.Bind(env.streams),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolve, env.config),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSearchPath(ctx, pkg.SearchPath(cli.Include...))

	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
