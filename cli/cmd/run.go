package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/rosetto/lang/normalize"
	"github.com/ardnew/rosetto/log"
	"github.com/ardnew/rosetto/store"
)

var pauseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

// Run plays one or more script files.
type Run struct {
	Files     []string `arg:"" help:"Script file(s) or '-' for stdin"                                 name:"file"`
	Watch     bool     `help:"Play again whenever a script file changes"                               short:"w"`
	Restore   string   `help:"Load global values from a snapshot before playing"                       short:"r" type:"existingfile"`
	Snapshot  string   `help:"Save global values to a snapshot at exit (.yaml, .yaml.lz4 or .yaml.xz)" short:"s" type:"path"`
	AutoBreak bool     `default:"true"                                                                 help:"End prose lines with a line break." negatable:""`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context, io Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default().Named("run")

	src, err := ResolveSource(ctx, r.Files)
	if err != nil {
		return err
	}

	if err := r.play(ctx, io, src, logger); err != nil || !r.Watch {
		return err
	}

	return r.watch(ctx, io, src, logger)
}

// play builds a fresh engine and plays src once.
func (r *Run) play(ctx context.Context, io Streams, src *Source, logger log.Logger) error {
	text, err := src.Read(io.In)
	if err != nil {
		return err
	}

	eng, err := NewEngine(ctx, io.Out, logger, normalize.WithAutoBreak(r.AutoBreak))
	if err != nil {
		return err
	}

	snaps := store.New(store.WithLogger(logger))

	if r.Restore != "" {
		if _, err := snaps.Load(ctx, r.Restore, eng.Runtime.Registry()); err != nil {
			return err
		}
	}

	if err := eng.Play(ctx, src.Name(), text, r.pause(io)); err != nil {
		return err
	}

	if r.Snapshot != "" {
		if _, err := snaps.Save(ctx, r.Snapshot, eng.Runtime.Registry()); err != nil {
			return err
		}
	}

	return nil
}

// pause returns the function called when a script waits. On a terminal it
// blocks until a line is entered; otherwise playback continues at once.
func (r *Run) pause(io Streams) func(context.Context) bool {
	if !io.Interactive() {
		return func(context.Context) bool { return true }
	}

	in := bufio.NewReader(io.In)

	return func(ctx context.Context) bool {
		fmt.Fprint(io.Out, pauseStyle.Render(" ▼"))

		_, err := in.ReadString('\n')

		return err == nil && ctx.Err() == nil
	}
}

// watch plays src again after any of its files change, until ctx ends.
func (r *Run) watch(ctx context.Context, io Streams, src *Source, logger log.Logger) error {
	if len(src.Paths) == 0 {
		return ErrWatchStdin
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer watcher.Close()

	// Editors often replace files on save, so watch the directories.
	dirs := make([]string, 0, len(src.Paths))
	for _, path := range src.Paths {
		dirs = append(dirs, filepath.Dir(path))
	}

	slices.Sort(dirs)

	for _, dir := range slices.Compact(dirs) {
		if err := watcher.Add(dir); err != nil {
			return ErrWatch.With(slog.String("dir", dir)).Wrap(err)
		}
	}

	changed := make(chan string, 1)

	go forward(ctx, watcher, src.Paths, changed, logger)

	for {
		select {
		case <-ctx.Done():
			return nil

		case path := <-changed:
			logger.InfoContext(ctx, "script changed", slog.String("file", path))

			if err := r.play(ctx, io, src, logger); err != nil {
				logger.ErrorContext(ctx, "playback failed", slog.Any("error", err))
			}
		}
	}
}

// forward sends the name of each changed file among paths to changed.
// Changes arriving while a previous one is pending are coalesced.
func forward(
	ctx context.Context,
	watcher *fsnotify.Watcher,
	paths []string,
	changed chan<- string,
	logger log.Logger,
) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}

			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}

			if !slices.Contains(paths, filepath.Clean(ev.Name)) {
				continue
			}

			select {
			case changed <- ev.Name:
			default:
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}

			logger.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}
