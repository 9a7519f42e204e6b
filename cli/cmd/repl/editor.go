package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/rosetto/lang"
	"github.com/ardnew/rosetto/log"
)

const defaultEditor = "vi"

// editScriptCommand implements [tea.ExecCommand] for the edit-parse-retry
// loop. It writes the draft script to a temp file, opens the user's editor
// and parses the result. On parse error the user is prompted to re-edit;
// declining exits the program.
type editScriptCommand struct {
	content string
	parser  lang.Parser
	ctxFunc func() context.Context
	source  string
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editScriptCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editScriptCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editScriptCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-parse-retry loop. A script that parses is kept in
// source. If the user declines to re-edit, it returns [ErrEditDeclined].
func (c *editScriptCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "rosetto-*.rst")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	content := c.content

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		// An empty file cancels the edit.
		if strings.TrimSpace(data) == "" {
			return nil
		}

		_, parseErr := c.parser.ParseScript(ctx, "edit", data)
		c.logger.TraceContext(ctx, "editor parse attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", parseErr == nil),
		)

		if parseErr == nil {
			c.source = data

			return nil
		}

		fmt.Fprintf(c.stderr, "\nParse error: %s\n", parseErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = data
	}
}

// runEditor launches the user's editor on the given file path and returns
// the edited file content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
