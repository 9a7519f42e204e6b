package lang

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant of a [Value].
type Kind int

const (
	KindVoid Kind = iota
	KindNull
	KindBool
	KindInt
	KindDouble
	KindString
	KindList
	KindCall
	KindFunction
	KindScript
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindCall:
		return "call"
	case KindFunction:
		return "function"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

// Value is the closed set of runtime values. Only types declared in this
// package implement it:
//
//   - [Void] is the result of a void function and of a failed dispatch.
//   - [Null] is the absence of a value, such as a lookup miss.
//   - [Bool], [Int], [Double] and [String] are scalars.
//   - [*List] is an ordered sequence with optional keyword entries.
//   - [*Call] is an unevaluated action call.
//   - [*Function] is a native or user-defined callable.
//   - [*Script] is an unparsed script fragment run as a macro.
//
// Values are immutable and may be shared freely.
type Value interface {
	Kind() Kind
	String() string
	value()
}

type (
	void struct{}
	null struct{}
)

var (
	// Void is the value returned by void functions and unresolved calls.
	Void Value = void{}
	// Null is returned for lookup misses and empty sequences.
	Null Value = null{}
)

func (void) Kind() Kind     { return KindVoid }
func (void) String() string { return "" }
func (void) value()         {}

func (null) Kind() Kind     { return KindNull }
func (null) String() string { return "null" }
func (null) value()         {}

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) value()     {}

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// Int is a 64-bit signed integer value.
type Int int64

func (Int) Kind() Kind { return KindInt }
func (Int) value()     {}

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Double is a 64-bit floating point value.
type Double float64

func (Double) Kind() Kind { return KindDouble }
func (Double) value()     {}

// String formats d with the fewest digits that round-trip, always keeping a
// decimal point so the text parses back as a Double.
func (d Double) String() string {
	f := float64(d)
	s := strconv.FormatFloat(f, 'f', -1, 64)

	if math.IsInf(f, 0) || math.IsNaN(f) || strings.ContainsRune(s, '.') {
		return s
	}

	return s + ".0"
}

// String is a text value.
type String string

func (String) Kind() Kind { return KindString }
func (String) value()     {}

func (s String) String() string { return string(s) }

// Call is an unevaluated action call: a callee name and its arguments.
// The callee is resolved again on every evaluation.
type Call struct {
	Name string
	Args *List
}

// NewCall returns a Call of name with the given positional arguments.
func NewCall(name string, args ...Value) *Call {
	return &Call{Name: name, Args: NewList(args...)}
}

func (*Call) Kind() Kind { return KindCall }
func (*Call) value()     {}

// String returns the canonical tag text, e.g. "[print hello name=x]".
func (c *Call) String() string {
	var sb strings.Builder

	sb.WriteByte('[')
	sb.WriteString(c.Name)

	if body := c.Args.body(); body != "" {
		sb.WriteByte(' ')
		sb.WriteString(body)
	}

	sb.WriteByte(']')

	return sb.String()
}

// Function is a native or user-defined callable.
//
// A native function has Native set; a user-defined function evaluates Body
// in the scope created from its bound arguments.
type Function struct {
	Name   string
	Params []Param
	Native NativeFunc
	Body   Value
	// Void functions always return [Void] regardless of their body.
	Void bool
	// MakeScope, if set, replaces the default eager argument binding.
	MakeScope ScopeFunc
	Doc       string
}

func (*Function) Kind() Kind { return KindFunction }
func (*Function) value()     {}

func (f *Function) String() string {
	return "<function " + f.Name + "(" + FormatParams(f.Params) + ")>"
}

// Script is an unparsed script fragment. Invoking it parses Source as a
// macro scenario and hands it to the scenario player.
type Script struct {
	Name   string
	Source string
	Params []Param
}

func (*Script) Kind() Kind { return KindScript }
func (*Script) value()     {}

func (s *Script) String() string { return "<macro " + s.Name + ">" }

// Equal reports whether a and b have the same canonical string form.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.String() == b.String()
}

// Truthy reports whether v counts as true in a condition. Void, Null,
// false, zero numbers, empty strings and empty lists are false.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nil, void, null:
		return false
	case Bool:
		return bool(v)
	case Int:
		return v != 0
	case Double:
		return v != 0
	case String:
		return v != ""
	case *List:
		return v.Len() > 0 || v.Size() > 0
	default:
		return true
	}
}

// formatElement renders v as it must appear inside a tag or list literal so
// that parsing the text yields an equal value.
func formatElement(v Value) string {
	s, ok := v.(String)
	if !ok {
		if v == nil {
			return Null.String()
		}

		return v.String()
	}

	if !needsQuote(string(s)) {
		return string(s)
	}

	return quote(string(s))
}

func needsQuote(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n[]()\"=") {
		return true
	}

	switch s[0] {
	case '@', '$', '%':
		return true
	}

	_, isString := parseScalar(s).(String)

	return !isString
}

func quote(s string) string {
	var sb strings.Builder

	sb.Grow(len(s) + 2)
	sb.WriteByte('"')

	for _, r := range s {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}

		sb.WriteRune(r)
	}

	sb.WriteByte('"')

	return sb.String()
}
