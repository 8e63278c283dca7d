// Package rules defines the rule model for file organization: conditions over
// file metadata, rules pairing conditions with a destination template, and
// ordered rule sets. All type checking happens at load time so that matching
// itself can never fail; see the validation in NewRuleSet.
package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// Operator is a closed enumeration of condition operators. Each operator
// accepts a specific payload type, enforced when the rule set is loaded.
type Operator int

const (
	// OpEquals tests scalar equality; string comparison is case-insensitive.
	OpEquals Operator = iota
	// OpNotEquals is the negation of OpEquals. An absent field is not equal
	// to any concrete value, so OpNotEquals holds for absent fields.
	OpNotEquals
	// OpIn tests set membership; the payload must be a sequence.
	OpIn
	// OpNotIn is the negation of OpIn.
	OpNotIn
	// OpExists holds iff the field is present, independent of value.
	OpExists
	// OpNotExists holds iff the field is absent.
	OpNotExists
	// OpGreaterThan compares numbers or dates.
	OpGreaterThan
	// OpLessThan compares numbers or dates.
	OpLessThan
	// OpContains tests substring presence for text fields and membership for
	// sequence fields.
	OpContains
	// OpMatchesPattern tests a glob pattern against a text field. The pattern
	// is compiled at load time; an invalid pattern is a configuration error.
	OpMatchesPattern
)

var operatorNames = map[Operator]string{
	OpEquals:         "equals",
	OpNotEquals:      "not_equals",
	OpIn:             "in",
	OpNotIn:          "not_in",
	OpExists:         "exists",
	OpNotExists:      "not_exists",
	OpGreaterThan:    "greater_than",
	OpLessThan:       "less_than",
	OpContains:       "contains",
	OpMatchesPattern: "matches_pattern",
}

// String returns the wire name of the operator.
func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operator(%d)", int(o))
}

// ErrInvalidOperator indicates an unrecognized operator name.
var ErrInvalidOperator = errors.New("invalid operator")

// ParseOperator parses a wire name into an Operator.
func ParseOperator(s string) (Operator, error) {
	for op, name := range operatorNames {
		if name == s {
			return op, nil
		}
	}
	return OpEquals, fmt.Errorf("%w: %q", ErrInvalidOperator, s)
}

// MarshalJSON implements json.Marshaler.
func (o Operator) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Operator) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	op, err := ParseOperator(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Operation is what happens to a file once a rule matches.
type Operation int

const (
	// Move relocates the file to the destination.
	Move Operation = iota
	// Copy duplicates the file at the destination.
	Copy
)

// String returns the wire name of the operation.
func (o Operation) String() string {
	if o == Copy {
		return "copy"
	}
	return "move"
}

// ErrInvalidOperation indicates an unrecognized operation name.
var ErrInvalidOperation = errors.New("invalid operation")

// ParseOperation parses a wire name into an Operation.
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "move":
		return Move, nil
	case "copy":
		return Copy, nil
	default:
		return Move, fmt.Errorf("%w: %q", ErrInvalidOperation, s)
	}
}

// MarshalJSON implements json.Marshaler.
func (o Operation) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	op, err := ParseOperation(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// ValueKind describes the normalized payload a compiled condition carries.
type ValueKind int

const (
	// ValueNone means the operator takes no payload (exists / not_exists).
	ValueNone ValueKind = iota
	// ValueString is a text payload.
	ValueString
	// ValueNumber is a numeric payload.
	ValueNumber
	// ValueTime is a date payload, given as RFC 3339 or "2006-01-02".
	ValueTime
	// ValueSet is a sequence payload, normalized to lowercase strings.
	ValueSet
	// ValuePattern is a compiled glob payload.
	ValuePattern
)

// Condition is a single field/operator/value test against file metadata.
// The Value field holds the raw payload as decoded from JSON; compile
// normalizes it into typed form during rule set construction.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`

	valueKind ValueKind
	strValue  string
	numValue  float64
	timeValue time.Time
	setValue  []string
	pattern   glob.Glob
}

// ValueKind returns the normalized payload kind. Only valid after the
// condition's rule set has been built.
func (c *Condition) ValueKind() ValueKind { return c.valueKind }

// StrValue returns the text payload.
func (c *Condition) StrValue() string { return c.strValue }

// NumValue returns the numeric payload.
func (c *Condition) NumValue() float64 { return c.numValue }

// TimeValue returns the date payload.
func (c *Condition) TimeValue() time.Time { return c.timeValue }

// SetValue returns the normalized (lowercased) sequence payload.
func (c *Condition) SetValue() []string { return c.setValue }

// Pattern returns the compiled glob payload.
func (c *Condition) Pattern() glob.Glob { return c.pattern }

// Rule is a named, prioritized condition set plus a destination template and
// operation. A rule with no conditions matches every file and acts as a
// catch-all; it should carry the highest priority number so it is tried last.
type Rule struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Priority           int         `json:"priority"`
	Operation          Operation   `json:"operation"`
	DestinationPattern string      `json:"destination_pattern"`
	Conditions         []Condition `json:"conditions"`
}

// RuleSet is an ordered sequence of rules, sorted by (priority, declaration
// index) with lower priority numbers evaluated first. A RuleSet is built once
// by NewRuleSet, is immutable afterwards, and is safe for concurrent reads.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet validates and compiles the given rules and returns them as an
// ordered set. All problems are collected and reported together as a single
// *ConfigurationError; a rule set with any invalid rule is rejected whole.
func NewRuleSet(src []Rule) (*RuleSet, error) {
	// Deep-copy so compile() never writes into the caller's conditions.
	rules := make([]Rule, len(src))
	copy(rules, src)
	for i := range rules {
		conds := make([]Condition, len(rules[i].Conditions))
		copy(conds, rules[i].Conditions)
		rules[i].Conditions = conds
	}

	var problems []ValidationError

	seen := make(map[string]bool, len(rules))
	for i := range rules {
		r := &rules[i]
		if r.ID == "" {
			problems = append(problems, ValidationError{
				RuleID: fmt.Sprintf("#%d", i), Index: -1, Reason: "rule id is empty",
			})
		} else if seen[r.ID] {
			problems = append(problems, ValidationError{
				RuleID: r.ID, Index: -1, Reason: "duplicate rule id",
			})
		}
		seen[r.ID] = true

		if r.DestinationPattern == "" {
			problems = append(problems, ValidationError{
				RuleID: r.ID, Index: -1, Reason: "destination_pattern is empty",
			})
		}
		// Patterns authored on Windows use backslashes; normalize once here.
		r.DestinationPattern = strings.ReplaceAll(r.DestinationPattern, "\\", "/")

		for j := range r.Conditions {
			if err := r.Conditions[j].compile(); err != nil {
				problems = append(problems, ValidationError{
					RuleID: r.ID, Index: j, Field: r.Conditions[j].Field, Reason: err.Error(),
				})
			}
		}
	}

	if len(problems) > 0 {
		return nil, &ConfigurationError{Problems: problems}
	}

	// Stable sort preserves declaration order within equal priorities.
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})

	return &RuleSet{rules: rules}, nil
}

// Rules returns the rules in evaluation order. The returned slice is owned by
// the set and must not be modified.
func (rs *RuleSet) Rules() []Rule {
	return rs.rules
}

// Len returns the number of rules in the set.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Find returns the rule with the given id.
func (rs *RuleSet) Find(id string) (*Rule, bool) {
	for i := range rs.rules {
		if rs.rules[i].ID == id {
			return &rs.rules[i], true
		}
	}
	return nil, false
}
