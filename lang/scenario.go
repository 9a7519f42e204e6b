package lang

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// ScenarioKind records where a scenario came from.
type ScenarioKind int

const (
	// ScenarioNormal is parsed from a script file or string.
	ScenarioNormal ScenarioKind = iota
	// ScenarioMacro is the expanded body of a macro invocation.
	ScenarioMacro
	// ScenarioIf is the body of a conditional branch.
	ScenarioIf
)

func (k ScenarioKind) String() string {
	switch k {
	case ScenarioNormal:
		return "normal"
	case ScenarioMacro:
		return "macro"
	case ScenarioIf:
		return "if"
	default:
		return "unknown"
	}
}

// Unit is literal text followed by the call that comes after it.
type Unit struct {
	Text string
	Call *Call
}

// String returns the canonical text of the unit.
func (u Unit) String() string {
	if u.Call == nil {
		return u.Text
	}

	return u.Text + u.Call.String()
}

// LabelCall is the name of the call that marks a jump target.
const LabelCall = "label"

// Scenario is an ordered sequence of units with an index of the labels
// marking jump targets.
type Scenario struct {
	Name  string
	Kind  ScenarioKind
	Units []Unit

	labels map[string]int
	marks  []string
}

// NewScenario returns a scenario of units and indexes its labels.
func NewScenario(name string, kind ScenarioKind, units []Unit) *Scenario {
	s := &Scenario{
		Name:   name,
		Kind:   kind,
		Units:  units,
		labels: make(map[string]int),
		marks:  make([]string, len(units)),
	}

	current := ""

	for i, u := range units {
		s.marks[i] = current

		if label, ok := labelOf(u.Call); ok {
			if _, dup := s.labels[label]; !dup {
				s.labels[label] = i + 1
			}

			current = label
		}
	}

	return s
}

// Len returns the number of units.
func (s *Scenario) Len() int { return len(s.Units) }

// LabelAt returns the most recent label defined before unit i, or the empty
// string if there is none.
func (s *Scenario) LabelAt(i int) string {
	if i < 0 || i >= len(s.marks) {
		return ""
	}

	return s.marks[i]
}

// Label returns the index of the first unit after the label name.
func (s *Scenario) Label(name string) (int, bool) {
	i, ok := s.labels[name]

	return i, ok
}

// Labels iterates label names in ascending order with their unit indices.
func (s *Scenario) Labels() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		for _, name := range slices.Sorted(maps.Keys(s.labels)) {
			if !yield(name, s.labels[name]) {
				return
			}
		}
	}
}

// String returns the canonical text of the scenario.
func (s *Scenario) String() string {
	var sb strings.Builder

	for _, u := range s.Units {
		sb.WriteString(u.String())
	}

	return sb.String()
}

func labelOf(c *Call) (string, bool) {
	if c == nil || c.Name != LabelCall || c.Args.Len() == 0 {
		return "", false
	}

	return c.Args.At(0).String(), true
}
