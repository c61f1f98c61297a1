package metadata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the type held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindNumber
	KindBool
	KindTime
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "invalid"
	}
}

// Value is a single metadata value.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	t    time.Time
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Time returns a timestamp value.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// ValueOf converts a Go value into a metadata Value.
// Supported inputs are strings, booleans, integer and float types, json.Number and time.Time.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case Value:
		return v, nil
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case float64:
		return Number(v), nil
	case float32:
		return Number(float64(v)), nil
	case int:
		return Number(float64(v)), nil
	case int64:
		return Number(float64(v)), nil
	case int32:
		return Number(float64(v)), nil
	case int16:
		return Number(float64(v)), nil
	case int8:
		return Number(float64(v)), nil
	case uint:
		return Number(float64(v)), nil
	case uint64:
		return Number(float64(v)), nil
	case uint32:
		return Number(float64(v)), nil
	case uint16:
		return Number(float64(v)), nil
	case uint8:
		return Number(float64(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", v.String(), err)
		}
		return Number(f), nil
	case time.Time:
		return Time(v), nil
	default:
		return Value{}, fmt.Errorf("unsupported metadata value of type %T", x)
	}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// Text returns the string held by a KindString value.
func (v Value) Text() string { return v.str }

// Float returns the number held by a KindNumber value.
func (v Value) Float() float64 { return v.num }

// Time returns the timestamp held by a KindTime value.
func (v Value) Time() time.Time { return v.t }

// Interface returns the value as a plain Go value (string, float64, bool or time.Time).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	default:
		return nil
	}
}

// Equal reports whether both values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return true
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// MarshalJSON encodes timestamps as RFC 3339 strings and everything else natively.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindTime:
		return json.Marshal(v.t.Format(time.RFC3339Nano))
	case KindInvalid:
		return []byte("null"), nil
	default:
		return json.Marshal(v.Interface())
	}
}
