// Package log provides leveled, structured logging on top of [log/slog].
//
// A [Logger] is a value. Its configuration is fixed when it is made with
// [Make] and functional options, and [Logger.Wrap] and [Logger.With]
// return modified copies. The zero Logger discards every message, so
// packages that accept a Logger through an option need no nil checks:
//
//	rt := lang.New(lang.WithLogger(log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//	)))
//
// Every level has a method taking a context and one using
// [DefaultContextProvider]. Attributes are always [slog.Attr] values:
//
//	logger.WarnContext(ctx, "unresolved call", slog.String("name", name))
//
// [LevelTrace] sits below [LevelDebug] and reports every dispatch made by
// the evaluator.
//
// The package-level functions log through a default logger writing to
// standard error, which [Config] reconfigures.
package log
