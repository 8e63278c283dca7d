// Package engine implements the rule matching and destination resolution
// core: evaluating conditions against file metadata, selecting the first
// matching rule, expanding destination templates, and resolving naming
// conflicts. The engine is stateless between invocations, performs no writes,
// and is safe to call concurrently as long as commits to the same destination
// path are serialized by the caller.
package engine

import (
	"strings"

	"github.com/shiwake/shiwake/pkg/shiwake/metadata"
	"github.com/shiwake/shiwake/pkg/shiwake/rules"
)

// Evaluate reports whether a single condition holds for the given metadata.
// It is total for conditions from a validated rule set: a missing field or an
// incompatible value type never fails evaluation, it resolves to the
// operator's defined absent value (false for everything except not_exists,
// not_equals, and not_in).
func Evaluate(c *rules.Condition, md metadata.FileMetadata) bool {
	v, present := md.Get(c.Field)

	switch c.Operator {
	case rules.OpExists:
		return present
	case rules.OpNotExists:
		return !present
	}

	if !present {
		// Absence never equals any concrete value and is never a member of
		// any set, so only the negated operators hold.
		return c.Operator == rules.OpNotEquals || c.Operator == rules.OpNotIn
	}

	switch c.Operator {
	case rules.OpEquals:
		return equals(c, v)
	case rules.OpNotEquals:
		return !equals(c, v)
	case rules.OpIn:
		return member(c, v)
	case rules.OpNotIn:
		return !member(c, v)
	case rules.OpGreaterThan:
		cmp, ok := compare(c, v)
		return ok && cmp > 0
	case rules.OpLessThan:
		cmp, ok := compare(c, v)
		return ok && cmp < 0
	case rules.OpContains:
		return contains(c, v)
	case rules.OpMatchesPattern:
		s, ok := v.AsString()
		return ok && c.Pattern() != nil && c.Pattern().Match(s)
	default:
		return false
	}
}

// equals tests scalar equality between the metadata value and the condition
// payload. String comparison is case-insensitive.
func equals(c *rules.Condition, v metadata.Value) bool {
	switch c.ValueKind() {
	case rules.ValueString:
		return strings.EqualFold(v.Display(), c.StrValue())
	case rules.ValueNumber:
		n, ok := v.AsInt()
		return ok && float64(n) == c.NumValue()
	case rules.ValueTime:
		if t, ok := v.AsTime(); ok {
			return t.Equal(c.TimeValue())
		}
		// Date-looking payloads compare as plain strings against text
		// fields, matching the string semantics of equals.
		return strings.EqualFold(v.Display(), c.StrValue())
	default:
		return false
	}
}

// member tests set membership using the lowercased string form of the value.
func member(c *rules.Condition, v metadata.Value) bool {
	needle := strings.ToLower(v.Display())
	for _, item := range c.SetValue() {
		if item == needle {
			return true
		}
	}
	return false
}

// compare orders the metadata value against a numeric or date payload.
// ok is false when the types are incompatible, which makes both greater_than
// and less_than evaluate to false.
func compare(c *rules.Condition, v metadata.Value) (int, bool) {
	switch c.ValueKind() {
	case rules.ValueNumber:
		n, ok := v.AsInt()
		if !ok {
			return 0, false
		}
		switch {
		case float64(n) < c.NumValue():
			return -1, true
		case float64(n) > c.NumValue():
			return 1, true
		default:
			return 0, true
		}
	case rules.ValueTime:
		t, ok := v.AsTime()
		if !ok {
			return 0, false
		}
		return t.Compare(c.TimeValue()), true
	default:
		return 0, false
	}
}

// contains is a substring test for text values and a membership test for
// sequence values. Unlike equality it is case-sensitive.
func contains(c *rules.Condition, v metadata.Value) bool {
	if items, ok := v.AsStrings(); ok {
		for _, item := range items {
			if item == c.StrValue() {
				return true
			}
		}
		return false
	}
	if s, ok := v.AsString(); ok {
		return strings.Contains(s, c.StrValue())
	}
	return false
}
