package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// ValidationError describes one problem found while loading a rule set.
type ValidationError struct {
	// RuleID identifies the offending rule ("#n" when the rule has no id).
	RuleID string
	// Index is the condition index within the rule, or -1 for a rule-level
	// problem.
	Index int
	// Field is the metadata field the condition references, if any.
	Field string
	// Reason is a human-readable description of the problem.
	Reason string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("rule %s: %s", e.RuleID, e.Reason)
	}
	return fmt.Sprintf("rule %s, condition %d (%s): %s", e.RuleID, e.Index, e.Field, e.Reason)
}

// ConfigurationError aggregates every validation failure found in a rule set.
// Loading is all-or-nothing: one bad rule rejects the whole set before any
// file is processed.
type ConfigurationError struct {
	Problems []ValidationError
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid rule configuration: " + e.Problems[0].Error()
	}
	return fmt.Sprintf("invalid rule configuration: %d problems, first: %s",
		len(e.Problems), e.Problems[0].Error())
}

// Date layouts accepted for condition payloads.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// compile validates the condition's operator/value pairing and normalizes the
// raw payload into its typed form. It is called once at rule set construction.
func (c *Condition) compile() error {
	if c.Field == "" {
		return errors.New("field is empty")
	}
	if _, ok := operatorNames[c.Operator]; !ok {
		return fmt.Errorf("%w: %d", ErrInvalidOperator, int(c.Operator))
	}

	switch c.Operator {
	case OpExists, OpNotExists:
		if c.Value != nil {
			return fmt.Errorf("operator %s takes no value", c.Operator)
		}
		c.valueKind = ValueNone
		return nil

	case OpIn, OpNotIn:
		items, ok := c.Value.([]any)
		if !ok || len(items) == 0 {
			return fmt.Errorf("operator %s requires a non-empty sequence value", c.Operator)
		}
		set := make([]string, 0, len(items))
		for _, item := range items {
			s, err := scalarString(item)
			if err != nil {
				return fmt.Errorf("operator %s: %w", c.Operator, err)
			}
			set = append(set, strings.ToLower(s))
		}
		c.valueKind = ValueSet
		c.setValue = set
		return nil

	case OpGreaterThan, OpLessThan:
		switch v := c.Value.(type) {
		case float64:
			c.valueKind = ValueNumber
			c.numValue = v
		case int:
			c.valueKind = ValueNumber
			c.numValue = float64(v)
		case int64:
			c.valueKind = ValueNumber
			c.numValue = float64(v)
		case string:
			t, err := parseDate(v)
			if err != nil {
				return fmt.Errorf("operator %s requires a number or a date, got %q", c.Operator, v)
			}
			c.valueKind = ValueTime
			c.timeValue = t
		default:
			return fmt.Errorf("operator %s requires a number or a date", c.Operator)
		}
		return nil

	case OpContains:
		s, ok := c.Value.(string)
		if !ok || s == "" {
			return fmt.Errorf("operator %s requires a non-empty string value", c.Operator)
		}
		c.valueKind = ValueString
		c.strValue = s
		return nil

	case OpMatchesPattern:
		s, ok := c.Value.(string)
		if !ok || s == "" {
			return fmt.Errorf("operator %s requires a non-empty string value", c.Operator)
		}
		g, err := glob.Compile(s, '/')
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %v", s, err)
		}
		c.valueKind = ValuePattern
		c.strValue = s
		c.pattern = g
		return nil

	case OpEquals, OpNotEquals:
		switch v := c.Value.(type) {
		case string:
			// A date-looking payload keeps its string form too, so it can
			// still compare against text fields like filename.
			if t, err := parseDate(v); err == nil {
				c.valueKind = ValueTime
				c.timeValue = t
			} else {
				c.valueKind = ValueString
			}
			c.strValue = v
		case float64:
			c.valueKind = ValueNumber
			c.numValue = v
		case int:
			c.valueKind = ValueNumber
			c.numValue = float64(v)
		case int64:
			c.valueKind = ValueNumber
			c.numValue = float64(v)
		case bool:
			c.valueKind = ValueString
			c.strValue = strconv.FormatBool(v)
		case nil:
			return fmt.Errorf("operator %s requires a value", c.Operator)
		default:
			return fmt.Errorf("operator %s requires a scalar value", c.Operator)
		}
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrInvalidOperator, c.Operator)
	}
}

// scalarString converts a JSON scalar to its string form for set membership.
func scalarString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(s), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	case bool:
		return strconv.FormatBool(s), nil
	default:
		return "", fmt.Errorf("sequence items must be scalars, got %T", v)
	}
}

// parseDate parses a date payload in one of the accepted layouts.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
