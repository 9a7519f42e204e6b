package lang

import (
	"iter"
	"strings"

	"github.com/google/btree"
)

// List is an immutable sequence of positional values plus keyword entries.
// It is both the list value and the argument container of a [Call].
//
// Keyword entries iterate in ascending key order.
type List struct {
	items    []Value
	keywords *btree.BTreeG[keyword]
	raw      string
}

type keyword struct {
	key string
	val Value
}

const keywordDegree = 8

func keywordLess(a, b keyword) bool { return a.key < b.key }

func newKeywords() *btree.BTreeG[keyword] {
	return btree.NewG(keywordDegree, keywordLess)
}

// NewList returns a List of the given positional values.
func NewList(items ...Value) *List {
	return &List{items: items}
}

// NewListKeywords returns a List of positional values and keyword entries.
func NewListKeywords(items []Value, keywords map[string]Value) *List {
	l := &List{items: items}

	for key, val := range keywords {
		l.setKeyword(key, val)
	}

	return l
}

func (*List) Kind() Kind { return KindList }
func (*List) value()     {}

// String returns the canonical list literal, e.g. "(1 2 key=3)".
func (l *List) String() string { return "(" + l.body() + ")" }

// body renders the elements without enclosing parentheses.
func (l *List) body() string {
	if l == nil {
		return ""
	}

	part := make([]string, 0, l.Len()+l.Size())

	for _, v := range l.items {
		part = append(part, formatElement(v))
	}

	for key, val := range l.Keywords() {
		part = append(part, key+"="+formatElement(val))
	}

	return strings.Join(part, " ")
}

// Len returns the number of positional values.
func (l *List) Len() int {
	if l == nil {
		return 0
	}

	return len(l.items)
}

// Size returns the number of keyword entries.
func (l *List) Size() int {
	if l == nil || l.keywords == nil {
		return 0
	}

	return l.keywords.Len()
}

// Raw returns the source text the list was parsed from, or the empty string
// if it was built from values or derived from another list.
func (l *List) Raw() string {
	if l == nil {
		return ""
	}

	return l.raw
}

// Empty reports whether l has neither positional nor keyword entries.
func (l *List) Empty() bool { return l.Len() == 0 && l.Size() == 0 }

// At returns the positional value at index i, or [Null] if out of range.
func (l *List) At(i int) Value {
	if i < 0 || i >= l.Len() {
		return Null
	}

	return l.items[i]
}

// Items returns a copy of the positional values.
func (l *List) Items() []Value {
	if l == nil {
		return nil
	}

	return append([]Value(nil), l.items...)
}

// All iterates the positional values with their indices.
func (l *List) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		for i := range l.Len() {
			if !yield(i, l.items[i]) {
				return
			}
		}
	}
}

// Keyword returns the value of the keyword entry key.
func (l *List) Keyword(key string) (Value, bool) {
	if l == nil || l.keywords == nil {
		return Null, false
	}

	kw, ok := l.keywords.Get(keyword{key: key})
	if !ok {
		return Null, false
	}

	return kw.val, true
}

// Keywords iterates the keyword entries in ascending key order.
func (l *List) Keywords() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if l == nil || l.keywords == nil {
			return
		}

		l.keywords.Ascend(func(kw keyword) bool {
			return yield(kw.key, kw.val)
		})
	}
}

// Keys returns the keyword keys in ascending order.
func (l *List) Keys() []string {
	keys := make([]string, 0, l.Size())
	for key := range l.Keywords() {
		keys = append(keys, key)
	}

	return keys
}

// WithKeyword returns a copy of l with keyword key set to val.
func (l *List) WithKeyword(key string, val Value) *List {
	c := l.clone()
	c.setKeyword(key, val)

	return c
}

// Prepend returns a copy of l with head inserted before the first
// positional value.
func (l *List) Prepend(head Value) *List {
	c := l.clone()
	c.items = append([]Value{head}, c.items...)

	return c
}

// Slice returns a list of the positional values in [from, len) with the
// keyword entries dropped.
func (l *List) Slice(from int) *List {
	if from >= l.Len() {
		return NewList()
	}

	return NewList(append([]Value(nil), l.items[from:]...)...)
}

func (l *List) clone() *List {
	if l == nil {
		return &List{}
	}

	c := &List{items: append([]Value(nil), l.items...)}
	if l.keywords != nil {
		c.keywords = l.keywords.Clone()
	}

	return c
}

func (l *List) setKeyword(key string, val Value) {
	if l.keywords == nil {
		l.keywords = newKeywords()
	}

	l.keywords.ReplaceOrInsert(keyword{key: key, val: val})
}
