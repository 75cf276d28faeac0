package match

import (
	"encoding/json"
	"strings"
)

// Supported criterion operators. Anything else fails the rule rather than
// erroring, so a mistyped catalog entry degrades to "not eligible" instead of
// taking down an evaluation run.
const (
	OpGreater      = ">"
	OpGreaterEqual = ">="
	OpLess         = "<"
	OpLessEqual    = "<="
	OpEqual        = "=="
	OpNotEqual     = "!="
	OpIn           = "in"
	OpNotIn        = "not in"
)

// KnownOperator reports whether op is one the evaluator understands. The
// admin API uses it to reject typos at authoring time; the evaluator itself
// stays fail-closed regardless.
func KnownOperator(op string) bool {
	switch op {
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpEqual, OpNotEqual, OpIn, OpNotIn:
		return true
	}
	return false
}

// CheckRule evaluates a single criterion: resolved <op> target.
//
// Missing data fails closed: an absent resolved value never satisfies any
// rule. Targets are reconciled to the resolved value's type best-effort
// before comparison; a comparison that remains impossible after coercion
// (ordering across kinds, membership in a non-container) fails the rule.
func CheckRule(resolved Value, operator string, target Value) bool {
	if resolved.IsAbsent() {
		return false
	}
	target = coerceTarget(resolved, operator, target)

	switch operator {
	case OpGreater:
		cmp, ok := compareValues(resolved, target)
		return ok && cmp > 0
	case OpGreaterEqual:
		cmp, ok := compareValues(resolved, target)
		return ok && cmp >= 0
	case OpLess:
		cmp, ok := compareValues(resolved, target)
		return ok && cmp < 0
	case OpLessEqual:
		cmp, ok := compareValues(resolved, target)
		return ok && cmp <= 0
	case OpEqual:
		return resolved.Equal(target)
	case OpNotEqual:
		return !resolved.Equal(target)
	case OpIn:
		found, ok := membership(resolved, target)
		return ok && found
	case OpNotIn:
		found, ok := membership(resolved, target)
		return ok && !found
	default:
		return false
	}
}

// coerceTarget reconciles the target with the resolved value's type.
// Failures keep the original target; the comparison then decides.
func coerceTarget(resolved Value, operator string, target Value) Value {
	if s, isStr := target.Str(); isStr {
		switch resolved.Kind() {
		case KindNumber:
			if f, ok := parseNumber(s); ok {
				target = NumberValue(f)
			}
		case KindBool:
			switch strings.ToLower(s) {
			case "true":
				target = BoolValue(true)
			case "false":
				target = BoolValue(false)
			}
		}
	}

	// Membership targets authored as strings are often serialized lists.
	if operator == OpIn || operator == OpNotIn {
		if s, isStr := target.Str(); isStr {
			var raw any
			if err := json.Unmarshal([]byte(s), &raw); err == nil {
				target = FromAny(raw)
			}
		}
	}
	return target
}

// compareValues orders two values. Only number/number and string/string pairs
// are orderable; everything else reports not-ok.
func compareValues(a, b Value) (int, bool) {
	if an, ok := a.Number(); ok {
		if bn, ok := b.Number(); ok {
			switch {
			case an < bn:
				return -1, true
			case an > bn:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	if as, ok := a.Str(); ok {
		if bs, ok := b.Str(); ok {
			return strings.Compare(as, bs), true
		}
	}
	return 0, false
}

// membership tests v ∈ container. List containers test element equality;
// string containers test substring containment when v is itself a string.
// That raw-string fallback mirrors how serialized criteria behaved before
// structured values and is kept for catalog compatibility.
func membership(v Value, container Value) (found, ok bool) {
	if items, isList := container.List(); isList {
		for _, item := range items {
			if v.Equal(item) {
				return true, true
			}
		}
		return false, true
	}
	if haystack, isStr := container.Str(); isStr {
		if needle, vIsStr := v.Str(); vIsStr {
			return strings.Contains(haystack, needle), true
		}
	}
	return false, false
}
