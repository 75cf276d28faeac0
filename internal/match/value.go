package match

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind discriminates the variants a criterion value or resolved attribute can
// take. Policy criteria are authored as loosely-typed JSON; modeling them as a
// tagged variant keeps every comparison total and panic-free.
type Kind int

const (
	KindAbsent Kind = iota
	KindNumber
	KindString
	KindBool
	KindList
)

// Value is an immutable tagged variant: number, string, boolean, list, or
// absent. The zero Value is absent, so map lookups of unknown attribute keys
// naturally resolve to a value that fails every rule.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	list []Value
}

func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }
func StringValue(s string) Value  { return Value{kind: KindString, str: s} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }

func ListValue(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the value carries no data.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Number returns the numeric payload if this is a number value.
func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// Str returns the string payload if this is a string value.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Bool returns the boolean payload if this is a boolean value.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// List returns the element slice if this is a list value. Callers must not
// mutate the returned slice.
func (v Value) List() ([]Value, bool) { return v.list, v.kind == KindList }

// Equal implements equality across values. Values of different kinds are
// never equal; lists compare element-wise.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == other.num
	case KindString:
		return v.str == other.str
	case KindBool:
		return v.b == other.b
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindAbsent:
		return true
	}
	return false
}

// String renders the value for rejection-reason messages: numbers without a
// trailing ".0" for whole values, lists as JSON.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		raw, err := json.Marshal(v)
		if err != nil {
			return "[]"
		}
		return string(raw)
	default:
		return "null"
	}
}

// MarshalJSON renders the value as the underlying JSON type.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		items := v.list
		if items == nil {
			items = []Value{}
		}
		return json.Marshal(items)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON scalar or array. JSON objects and null decode
// to absent.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// UnmarshalYAML accepts the same shapes from YAML catalog files.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// FromAny converts a dynamically-typed decode result into a Value. Integer
// types fold into the number variant; unsupported shapes become absent.
func FromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Value{}
	case float64:
		return NumberValue(t)
	case float32:
		return NumberValue(float64(t))
	case int:
		return NumberValue(float64(t))
	case int64:
		return NumberValue(float64(t))
	case string:
		return StringValue(t)
	case bool:
		return BoolValue(t)
	case []any:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, FromAny(item))
		}
		return ListValue(items...)
	default:
		return Value{}
	}
}

// ParseNumber attempts the numeric reading of a string value body.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

var _ fmt.Stringer = Value{}
