package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatal(err)
	}

	return resolved
}

func TestResolveSource(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.rst", "first")
	second := writeFile(t, dir, "second.rst", "second")

	link := filepath.Join(dir, "link.rst")
	if err := os.Symlink(first, link); err != nil {
		t.Skipf("symlink: %v", err)
	}

	t.Chdir(dir)

	tests := []struct {
		name      string
		files     []string
		wantPaths []string
		wantStdin bool
	}{
		{"single", []string{first}, []string{first}, false},
		{"ordered", []string{second, first}, []string{second, first}, false},
		{"duplicate path", []string{first, first}, []string{first}, false},
		{"relative and absolute", []string{"first.rst", first}, []string{first}, false},
		{"symlink", []string{link, first}, []string{first}, false},
		{"stdin last", []string{"-", first}, []string{first}, true},
		{"stdin collapsed", []string{"-", "-"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := ResolveSource(t.Context(), tt.files)
			if err != nil {
				t.Fatalf("ResolveSource(%q): %v", tt.files, err)
			}

			if !slices.Equal(src.Paths, tt.wantPaths) {
				t.Errorf("Paths = %q, want %q", src.Paths, tt.wantPaths)
			}

			if src.Stdin != tt.wantStdin {
				t.Errorf("Stdin = %v, want %v", src.Stdin, tt.wantStdin)
			}
		})
	}
}

func TestResolveSource_SearchPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "chapter.rst", "text")

	ctx := WithSearchPath(t.Context(), []string{t.TempDir(), dir})

	src, err := ResolveSource(ctx, []string{"chapter.rst"})
	if err != nil {
		t.Fatalf("ResolveSource: %v", err)
	}

	if !slices.Equal(src.Paths, []string{path}) {
		t.Errorf("Paths = %q, want %q", src.Paths, []string{path})
	}

	if got := src.Name(); got != "chapter" {
		t.Errorf("Name() = %q, want %q", got, "chapter")
	}
}

func TestResolveSource_Missing(t *testing.T) {
	tests := []struct {
		name  string
		files []string
	}{
		{"nonexistent", []string{filepath.Join(t.TempDir(), "missing.rst")}},
		{"none", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveSource(t.Context(), tt.files)
			if !errors.Is(err, ErrNoSource) {
				t.Errorf("ResolveSource(%q) error = %v, want %v", tt.files, err, ErrNoSource)
			}
		})
	}
}

func TestSource_Read(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.rst", "one")
	second := writeFile(t, dir, "b.rst", "two\n")

	src := &Source{Paths: []string{first, second}, Stdin: true}

	got, err := src.Read(strings.NewReader("three\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if want := "one\ntwo\nthree\n"; got != want {
		t.Errorf("Read() = %q, want %q", got, want)
	}

	if name := (&Source{Stdin: true}).Name(); name != "-" {
		t.Errorf("Name() = %q, want %q", name, "-")
	}
}

func TestSource_ReadLarge(t *testing.T) {
	dir := t.TempDir()
	body := strings.Repeat("[print line]\n", 1<<18)
	path := writeFile(t, dir, "big.rst", body)

	got, err := (&Source{Paths: []string{path}}).Read(nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got != body {
		t.Errorf("Read() returned %d bytes, want %d", len(got), len(body))
	}
}

func TestSource_ReadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.rst")

	_, err := (&Source{Paths: []string{path}}).Read(nil)
	if !errors.Is(err, ErrReadSource) {
		t.Errorf("Read() error = %v, want %v", err, ErrReadSource)
	}

	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Read() error = %v, want it to wrap %v", err, os.ErrNotExist)
	}
}

func TestError(t *testing.T) {
	err := ErrReadSource.Wrap(os.ErrNotExist)

	if !errors.Is(err, ErrReadSource) {
		t.Errorf("errors.Is(%v, ErrReadSource) = false", err)
	}

	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("errors.Is(%v, os.ErrNotExist) = false", err)
	}

	if errors.Is(err, ErrNoSource) {
		t.Errorf("errors.Is(%v, ErrNoSource) = true", err)
	}

	if got := err.Error(); got != "read script: "+os.ErrNotExist.Error() {
		t.Errorf("Error() = %q", got)
	}
}
