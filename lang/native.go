package lang

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
)

// ToAny converts a data value to a plain Go value: nil, bool, int64,
// float64, string, []any or map[string]any. A list with keywords becomes a
// map whose positional items are keyed "0", "1", and so on. It reports
// false for values that carry no data, such as functions and calls.
func ToAny(v Value) (any, bool) {
	switch v := v.(type) {
	case null:
		return nil, true
	case Bool:
		return bool(v), true
	case Int:
		return int64(v), true
	case Double:
		return float64(v), true
	case String:
		return string(v), true
	case *List:
		return listToAny(v)
	default:
		return nil, false
	}
}

func listToAny(l *List) (any, bool) {
	if l.Size() == 0 {
		items := make([]any, 0, l.Len())

		for _, it := range l.Items() {
			x, ok := ToAny(it)
			if !ok {
				return nil, false
			}

			items = append(items, x)
		}

		return items, true
	}

	m := make(map[string]any, l.Len()+l.Size())

	for i, it := range l.All() {
		x, ok := ToAny(it)
		if !ok {
			return nil, false
		}

		m[strconv.Itoa(i)] = x
	}

	for k, kv := range l.Keywords() {
		x, ok := ToAny(kv)
		if !ok {
			return nil, false
		}

		m[k] = x
	}

	return m, true
}

// FromAny converts a plain Go value, such as one decoded from YAML or
// returned by an expression, to a Value. It is the inverse of [ToAny].
func FromAny(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Null, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(x), nil
	case int8:
		return Int(x), nil
	case int16:
		return Int(x), nil
	case int32:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case uint:
		return Int(x), nil
	case uint8:
		return Int(x), nil
	case uint16:
		return Int(x), nil
	case uint32:
		return Int(x), nil
	case uint64:
		return Int(x), nil
	case float32:
		return Double(x), nil
	case float64:
		return Double(x), nil
	case string:
		return String(x), nil
	case []any:
		items := make([]Value, 0, len(x))

		for _, it := range x {
			v, err := FromAny(it)
			if err != nil {
				return nil, err
			}

			items = append(items, v)
		}

		return NewList(items...), nil
	case map[string]any:
		return mapFromAny(x)
	default:
		return nil, ErrConversion.With(slog.String("from", fmt.Sprintf("%T", x)))
	}
}

func mapFromAny(m map[string]any) (Value, error) {
	var (
		items    []Value
		keywords = make(map[string]Value, len(m))
	)

	for i := 0; ; i++ {
		x, ok := m[strconv.Itoa(i)]
		if !ok {
			break
		}

		v, err := FromAny(x)
		if err != nil {
			return nil, err
		}

		items = append(items, v)
	}

	for _, k := range slices.Sorted(maps.Keys(m)) {
		if n, err := strconv.Atoi(k); err == nil && n >= 0 && n < len(items) {
			continue
		}

		v, err := FromAny(m[k])
		if err != nil {
			return nil, err
		}

		keywords[k] = v
	}

	return NewListKeywords(items, keywords), nil
}
