// Package cmd implements the rosetto subcommands: run, norm, parse, eval
// and init. The repl subcommand lives in package repl.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// to the YAML configuration file.
	ConfigIdentifier = "config"
)
