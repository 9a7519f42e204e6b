package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/klauspost/readahead"

	"github.com/ardnew/rosetto/pkg"
)

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// Source names the script files a command reads, in order.
type Source struct {
	// Paths are the resolved regular files, without duplicates.
	Paths []string
	// Stdin is set if "-" was named. Stdin is read after all Paths.
	Stdin bool
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// ResolveSource finds each of names, first as given and then in each
// directory of the search path stored in ctx.
//
// Files reached through different paths or symlinks are read once. All
// occurrences of "-" collapse to a single read of stdin, placed last.
func ResolveSource(ctx context.Context, names []string) (*Source, error) {
	var (
		src  Source
		seen = make(map[any]struct{})
		dirs = SearchPathFrom(ctx)
	)

	for _, name := range names {
		if name == stdinSource {
			src.Stdin = true

			continue
		}

		path, ok := pkg.Find(name, dirs)
		if !ok {
			return nil, ErrNoSource.With(
				slog.String("file", name),
				slog.Any("search", dirs),
			)
		}

		path, key, err := identify(path)
		if err != nil {
			return nil, ErrReadSource.With(slog.String("file", name)).Wrap(err)
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		src.Paths = append(src.Paths, path)
	}

	if len(src.Paths) == 0 && !src.Stdin {
		return nil, ErrNoSource
	}

	return &src, nil
}

// Name returns a display name for the source: the base name of the first
// file, or "-" for stdin alone.
func (s *Source) Name() string {
	if len(s.Paths) == 0 {
		return stdinSource
	}

	return strings.TrimSuffix(filepath.Base(s.Paths[0]), filepath.Ext(s.Paths[0]))
}

// Read returns the contents of every file in order, followed by stdin if
// it was named. Each file is read fresh, so Read may be called again after
// the files change.
func (s *Source) Read(stdin io.Reader) (string, error) {
	var sb strings.Builder

	for _, path := range s.Paths {
		buf, err := readFile(path)
		if err != nil {
			return "", ErrReadSource.With(slog.String("file", path)).Wrap(err)
		}

		sb.Write(buf)

		if len(buf) > 0 && buf[len(buf)-1] != '\n' {
			sb.WriteByte('\n')
		}
	}

	if s.Stdin && stdin != nil {
		buf, err := readAll(stdin)
		if err != nil {
			return "", ErrReadSource.With(slog.String("file", stdinSource)).Wrap(err)
		}

		sb.Write(buf)
	}

	return sb.String(), nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readAll(f)
}

// readAll reads r to EOF with asynchronous read-ahead.
func readAll(r io.Reader) ([]byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	return io.ReadAll(ra)
}

// identify resolves path to an absolute path with symlinks evaluated and
// returns a key identifying the file: its device/inode pair where the
// platform provides one, otherwise the resolved path.
func identify(path string) (string, any, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", nil, err
	}

	if key, ok := makeFileKey(info); ok {
		return resolved, key, nil
	}

	return resolved, resolved, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}
