package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/rosetto/cli/cmd"
	"github.com/ardnew/rosetto/lang"
	"github.com/ardnew/rosetto/lang/normalize"
	"github.com/ardnew/rosetto/log"
)

// editMsg is sent when script editing completes successfully.
type editMsg struct{ source string }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help         Print this cruft
  list [NS]    List names defined in namespace NS (default: root)
  load FILE    Play a script file
  edit         Write a script in external $EDITOR and play it
  clear        Clear screen
  quit         Exit REPL

Usage:
  Type canonical text to evaluate it, such as [math.add 1 2]
  A bare call may omit the brackets: math.add 1 2
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	outputStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true).Underline(true)
)

// formatCommand formats the command echo line with prompt and input styled.
func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the control command echo line with prompt and
// input styled.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// Command starts an interactive session.
type Command struct {
	Files     []string `arg:"" help:"Script file(s) to play before the prompt" name:"file" optional:""`
	History   string   `default:"${historyFile}" help:"History file (empty to disable)" type:"path"`
	AutoBreak bool     `default:"true" help:"End prose lines with a line break." negatable:""`
}

// Run executes the repl command.
func (c *Command) Run(ctx context.Context, io cmd.Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default().Named("repl")

	out := new(strings.Builder)

	eng, err := cmd.NewEngine(ctx, out, logger, normalize.WithAutoBreak(c.AutoBreak))
	if err != nil {
		return err
	}

	if len(c.Files) > 0 {
		if err := play(ctx, eng, c.Files, io); err != nil {
			return err
		}
	}

	history := NewHistory(c.History)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", c.History),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(ctx, "repl start",
		slog.Int("history", history.Len()),
		slog.Int("files", len(c.Files)),
	)

	m := newModel(ctx, eng, out, history, logger)
	if preface := out.String(); preface != "" {
		out.Reset()
		fmt.Fprint(io.Out, preface)
	}

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(io.In),
		tea.WithOutput(io.Out),
	)
	_, err = p.Run()

	return err
}

// play resolves names and plays them to the end without pausing.
func play(ctx context.Context, eng *cmd.Engine, names []string, io cmd.Streams) error {
	src, err := cmd.ResolveSource(ctx, names)
	if err != nil {
		return err
	}

	text, err := src.Read(io.In)
	if err != nil {
		return err
	}

	return eng.Play(ctx, src.Name(), text, func(context.Context) bool { return true })
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	engine       *cmd.Engine
	out          *strings.Builder // display output not yet printed
	draft        string           // last script written with edit
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	eng *cmd.Engine,
	out *strings.Builder,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		engine:     eng,
		out:        out,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editMsg:
		m.draft = msg.source

		err := m.engine.Play(m.ctxFunc(), "edit", msg.source,
			func(context.Context) bool { return true })

		return m, m.report(nil, err)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var teaCmd tea.Cmd

	m.input, teaCmd = m.input.Update(msg)

	return m, teaCmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hintLine())
	b.WriteString("\n")

	return b.String()
}

// hintLine returns the line shown below the input: the history position,
// a usage hint, the signature of the enclosing call or the completion bar.
func (m model) hintLine() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		pos := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx + 1))

		return hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type canonical text or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")
	}

	if m.mode == modeEval && !m.tabActive {
		call := detectCall(input, m.input.Position())
		if call.inCall {
			if params, ok := lookupParams(m.engine.Runtime, call.name); ok {
				return renderSignatureHint(call.name, params, call)
			}
		}
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1)

	case tea.KeyShiftTab:
		return m.cycle(-1)

	case tea.KeyUp:
		return m.historyMove(-1, false)

	case tea.KeyDown:
		return m.historyMove(1, false)

	case tea.KeyShiftUp:
		return m.historyMove(-1, true)

	case tea.KeyShiftDown:
		return m.historyMove(1, true)

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		return m.toggleMode()

	case tea.KeyRunes, tea.KeySpace:
		// Space breaks out of tab-cycling, keeping the candidate.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var teaCmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, teaCmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, teaCmd
	}

	// Any other key (backspace, delete, arrows) edits without
	// auto-confirming a completion.
	var teaCmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, teaCmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, teaCmd
}

// cycle moves the tab selection by step, wrapping at either end. A single
// candidate is completed and confirmed immediately.
func (m model) cycle(step int) (model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}

	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m, nil
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m, nil
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals it.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", input))

	result, err := m.engine.Eval(m.ctxFunc(), cmd.Canonical(input))

	return m, tea.Sequence(tea.Println(formatCommand(input)), m.report(result, err))
}

// report prints pending display output followed by result or err.
func (m model) report(result lang.Value, err error) tea.Cmd {
	var lines []string

	if s := strings.TrimSuffix(m.out.String(), "\n"); s != "" {
		lines = append(lines, outputStyle.Render(s))
	}

	m.out.Reset()

	switch {
	case err != nil:
		lines = append(lines, errorStyle.Render("error: "+err.Error()))
	case result != nil && result.Kind() != lang.KindVoid:
		lines = append(lines, resultStyle.Render(result.String()))
	}

	if len(lines) == 0 {
		return nil
	}

	return tea.Println(strings.Join(lines, "\n"))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echoCmd := tea.Println(formatCtrlCommand(input))

	name, args := parts[0], parts[1:]

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", name),
		slog.Any("args", args),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage()))

	case "l", "list":
		ns := ""
		if len(args) > 0 {
			ns = args[0]
		}

		return m, tea.Sequence(echoCmd, tea.Println(m.listNames(ns)))

	case "load":
		if len(args) == 0 {
			return m, tea.Sequence(echoCmd, tea.Println(errorStyle.Render("usage: load FILE...")))
		}

		err := play(m.ctxFunc(), m.engine, args, cmd.Streams{})

		return m, tea.Sequence(echoCmd, m.report(nil, err))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echoCmd, m.handleEdit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + name + " (try 'help')"),
		)
	}
}

func (m model) handleEdit() tea.Cmd {
	c := &editScriptCommand{
		content: m.draft,
		parser:  m.engine.Parser,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(c, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if c.source == "" {
			return editCancelledMsg{}
		}

		return editMsg{source: c.source}
	})
}

// historyMove steps through history by step. With sameMode set, entries of
// the other mode are skipped; otherwise the mode follows the entry. Moving
// past the newest entry clears the input.
func (m model) historyMove(step int, sameMode bool) (model, tea.Cmd) {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil || (sameMode && entry.Mode != m.mode) {
			continue
		}

		if m.mode != entry.Mode {
			m, _ = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m, nil
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m, nil
}

// listNames lists the entries of namespace ns, its nested namespaces and,
// at the root, the global variables.
func (m model) listNames(ns string) string {
	rt := m.engine.Runtime

	space, ok := rt.Registry().Lookup(ns)
	if !ok {
		return errorStyle.Render("no such namespace: " + ns)
	}

	var b strings.Builder

	for _, key := range space.Keys() {
		fmt.Fprintf(&b, "  %s %s\n", key, hintStyle.Render(preview(space.Get(key))))
	}

	for _, child := range childCandidates(rt.Registry(), nil, ns) {
		if _, ok := rt.Registry().Lookup(join(ns, child)); ok {
			fmt.Fprintf(&b, "  %s%s\n", child, hintStyle.Render(lang.Separator))
		}
	}

	if ns == "" {
		global := rt.Global()
		for _, key := range global.Keys() {
			fmt.Fprintf(&b, "  $%s %s\n", key, hintStyle.Render(preview(global.Get(key))))
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func join(ns, key string) string {
	if ns == "" {
		return key
	}

	return ns + lang.Separator + key
}

// toggleMode switches between eval and control modes, preserving input
// state.
func (m model) toggleMode() (model, tea.Cmd) {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode switches to the specified mode, preserving input state.
func (m model) switchToMode(mode inputMode) (model, tea.Cmd) {
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.evalCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m, nil
}
