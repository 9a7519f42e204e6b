package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// Strict conversions return [ErrConversion] when v cannot represent the
// target type. The *Or forms return a fallback instead and never fail.

// AsInt converts v to an integer. Doubles truncate toward zero and strings
// are parsed as decimal numbers.
func AsInt(v Value) (int64, error) {
	switch v := v.(type) {
	case Int:
		return int64(v), nil
	case Double:
		return int64(v), nil
	case String:
		s := strings.TrimSpace(string(v))
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}

		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), nil
		}
	case *List:
		if single, ok := singleton(v); ok {
			return AsInt(single)
		}
	}

	return 0, conversionError(v, KindInt)
}

// AsDouble converts v to a floating point number.
func AsDouble(v Value) (float64, error) {
	switch v := v.(type) {
	case Int:
		return float64(v), nil
	case Double:
		return float64(v), nil
	case String:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err == nil {
			return f, nil
		}
	case *List:
		if single, ok := singleton(v); ok {
			return AsDouble(single)
		}
	}

	return 0, conversionError(v, KindDouble)
}

// AsBool converts v to a boolean. Numbers are true when nonzero; strings
// accept true, false, 1 and 0 in any case.
func AsBool(v Value) (bool, error) {
	switch v := v.(type) {
	case Bool:
		return bool(v), nil
	case Int:
		return v != 0, nil
	case Double:
		return v != 0, nil
	case String:
		switch strings.ToLower(strings.TrimSpace(string(v))) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	case *List:
		if single, ok := singleton(v); ok {
			return AsBool(single)
		}
	}

	return false, conversionError(v, KindBool)
}

// AsString returns the canonical string form of v. Only [Void] fails.
func AsString(v Value) (string, error) {
	switch v.(type) {
	case nil, void:
		return "", conversionError(v, KindString)
	default:
		return v.String(), nil
	}
}

// IntOr converts v to an integer or returns def.
func IntOr(v Value, def int64) int64 {
	if i, err := AsInt(v); err == nil {
		return i
	}

	return def
}

// DoubleOr converts v to a floating point number or returns def.
func DoubleOr(v Value, def float64) float64 {
	if f, err := AsDouble(v); err == nil {
		return f
	}

	return def
}

// BoolOr converts v to a boolean or returns def.
func BoolOr(v Value, def bool) bool {
	if b, err := AsBool(v); err == nil {
		return b
	}

	return def
}

// StringOr converts v to a string or returns def.
func StringOr(v Value, def string) string {
	if s, err := AsString(v); err == nil {
		return s
	}

	return def
}

func singleton(l *List) (Value, bool) {
	if l.Len() != 1 || l.Size() != 0 {
		return nil, false
	}

	return l.At(0), true
}

func conversionError(v Value, target Kind) error {
	from := "nil"
	if v != nil {
		from = v.Kind().String()
	}

	return ErrConversion.With(
		slog.String("from", from),
		slog.String("to", target.String()),
	)
}
