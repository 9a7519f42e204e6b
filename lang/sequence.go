package lang

// The sequence protocol treats every value as a sequence. Lists are
// sequences of their positional values, Void and Null are empty, and every
// other value is a sequence of exactly one element: itself.

// First returns the first element of v, or [Null] if v is empty.
func First(v Value) Value {
	switch v := v.(type) {
	case nil, void, null:
		return Null
	case *List:
		return v.At(0)
	default:
		return v
	}
}

// Rest returns all elements of v after the first. The rest of a scalar is
// [Null]; the rest of a list is a (possibly empty) list.
func Rest(v Value) Value {
	switch v := v.(type) {
	case *List:
		return v.Slice(1)
	default:
		return Null
	}
}

// At returns the element of v at index i, or [Null] if out of range.
func At(v Value, i int) Value {
	switch v := v.(type) {
	case nil, void, null:
		return Null
	case *List:
		return v.At(i)
	default:
		if i == 0 {
			return v
		}

		return Null
	}
}

// Size returns the number of elements of v. For a list this is the number
// of positional values; see [List.Size] for the keyword count.
func Size(v Value) int {
	switch v := v.(type) {
	case nil, void, null:
		return 0
	case *List:
		return v.Len()
	default:
		return 1
	}
}

// Cons returns a list with head followed by the elements of v.
func Cons(head Value, v Value) *List {
	switch v := v.(type) {
	case nil, void, null:
		return NewList(head)
	case *List:
		return v.Prepend(head)
	default:
		return NewList(head, v)
	}
}
