package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/rosetto/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "load", "edit", "clear", "quit"}

// isWordBoundary returns true if the rune delimits a name for completion
// purposes: whitespace, the namespace separator, tag and list brackets,
// quotes, keyword assignment and the local and global sigils.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'[', ']', '(', ')',
		'"', '=', '@', '$', '%', '*':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. Returns an empty word when the cursor sits on a
// boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the dotted namespace path leading up to the current
// word. For input "[print [math.ad" with the word "ad", the parent path is
// "math". Returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]

	if !strings.HasSuffix(prefix, lang.Separator) {
		return ""
	}

	prefix = strings.TrimRight(prefix, lang.Separator)
	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return prefix[pos:]
}

// childCandidates returns the names that complete a word under parent: the
// keys of that namespace and the names of namespaces nested directly in it.
// At the top level, names bound in scope are included too.
func childCandidates(reg *lang.Registry, scope *lang.Scope, parent string) []string {
	var names []string

	if ns, ok := reg.Lookup(parent); ok {
		names = append(names, ns.Keys()...)
	}

	prefix := parent
	if prefix != "" {
		prefix += lang.Separator
	}

	for _, path := range reg.Names() {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok || rest == "" {
			continue
		}

		child, _, _ := strings.Cut(rest, lang.Separator)
		names = append(names, child)
	}

	if parent == "" && scope != nil {
		names = append(names, scope.Visible()...)
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. After a separator, every child is offered even before anything
// is typed.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	var (
		candidates []string
		parent     string
	)

	if m.mode == modeCtrl {
		candidates = ctrlCommands
	} else {
		parent = parentPath(input, wordStart)
		candidates = childCandidates(m.engine.Runtime.Registry(), m.engine.Runtime.Global(), parent)
	}

	if len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	if word == "" {
		if parent == "" {
			return nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit within width. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		last := i == len(matches)-1

		if i > 0 && used+entryWidth+ellipsisWidth > width && !(last && used+entryWidth <= width) {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}

// preview returns a one-line summary of v for the list command.
func preview(v lang.Value) string {
	const limit = 48

	s := v.String()
	if s == "" {
		s = v.Kind().String()
	}

	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + "..."
	}

	if utf8.RuneCountInString(s) > limit {
		s = string([]rune(s)[:limit-3]) + "..."
	}

	return s
}
