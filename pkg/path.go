package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// DirMode is the permission mode for directories created by [MkdirAll].
const DirMode os.FileMode = 0o700

// ConfigFile is the base name of the YAML configuration file.
const ConfigFile = "config.yaml"

// Prefix returns the base prefix string used to construct the path to the
// configuration directory and the prefix for environment variable identifiers.
//
// By default, Prefix is the base name of the executable file unless it matches
// one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with Name
//   - "^\.+" (dot-prefixed names): remove the dot prefix
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		exe, err := os.Executable()
		if err == nil {
			id = exe
		}

		ext := filepath.Ext(filepath.Base(id))
		id = strings.TrimSuffix(filepath.Base(id), ext)

		for rex, rep := range map[*regexp.Regexp]string{
			regexp.MustCompile(`^__debug_bin\d+$`): Name, // default output from dlv
			regexp.MustCompile(`^\.+`):             "",   // remove leading dot(s)
		} {
			id = rex.ReplaceAllString(id, rep)
		}

		if id == "" {
			id = Name
		}

		return id
	},
)

// ConfigDir returns the configuration directory path.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string { return userDir(os.UserConfigDir, ".config") },
)

// CacheDir returns the cache directory path used for transient files such
// as REPL history and profiles.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string { return userDir(os.UserCacheDir, ".cache") },
)

func userDir(base func() (string, error), fallback string) string {
	dir, err := base()
	if err != nil {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}

// ConfigPath returns the path of the YAML configuration file.
func ConfigPath() string { return filepath.Join(ConfigDir(), ConfigFile) }

// MkdirAll creates the configuration and cache directories.
func MkdirAll() error {
	for _, dir := range []string{ConfigDir(), CacheDir()} {
		if err := os.MkdirAll(dir, DirMode); err != nil {
			return err
		}
	}

	return nil
}

// PathEnv returns the name of the environment variable holding the script
// search path, such as ROSETTO_PATH.
func PathEnv() string {
	return strings.ToUpper(strings.ReplaceAll(Prefix(), "-", "_")) + "_PATH"
}

// SearchPath returns the directories searched for script files: each of
// include in order, followed by the directories listed in [PathEnv].
// Entries that are not existing directories are dropped.
func SearchPath(include ...string) []string {
	// mung emits prefixes last to first.
	prefix := slices.Clone(include)
	slices.Reverse(prefix)

	joined := mung.Make(
		mung.WithSubjectItems(os.Getenv(PathEnv())),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(isDir),
	).String()

	if joined == "" {
		return nil
	}

	return filepath.SplitList(joined)
}

// Find returns the path of name. Absolute names and names relative to the
// working directory are returned as-is if they exist; otherwise each
// directory of dirs is tried in order.
func Find(name string, dirs []string) (string, bool) {
	if _, err := os.Stat(name); err == nil || filepath.IsAbs(name) {
		return name, err == nil
	}

	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}

	return name, false
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
