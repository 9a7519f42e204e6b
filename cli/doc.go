// Package cli contains the command line interface for rosetto.
//
// # Usage
//
//	rosetto run intro.rst             play a script
//	rosetto run -w -s save.yaml.xz intro.rst
//	rosetto norm intro.rst            print canonical text
//	rosetto parse -o yaml intro.rst   print the parsed scenario
//	rosetto eval math.add 1 2         evaluate one call
//	rosetto repl                      interactive session
//	rosetto init                      write the configuration file
//
// Script files named on the command line are looked up as given, then in
// each --include directory, then in the directories listed in
// ROSETTO_PATH.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory (see [github.com/ardnew/rosetto/pkg.ConfigDir]). rosetto init
// writes the current global flag values there:
//
//	log-level: debug
//	log:
//	  pretty: false
//	include:
//	  - ~/stories
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output (default when stderr is a terminal)
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
package cli
