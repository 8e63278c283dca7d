package engine

import (
	"testing"

	"github.com/shiwake/shiwake/pkg/shiwake/metadata"
	"github.com/shiwake/shiwake/pkg/shiwake/rules"
)

func mustRuleSet(t *testing.T, src []rules.Rule) *rules.RuleSet {
	t.Helper()
	rs, err := rules.NewRuleSet(src)
	if err != nil {
		t.Fatalf("NewRuleSet() error = %v", err)
	}
	return rs
}

func TestMatchesAllConditions(t *testing.T) {
	rs := mustRuleSet(t, []rules.Rule{{
		ID:                 "jpg-big",
		DestinationPattern: "x",
		Conditions: []rules.Condition{
			{Field: "extension", Operator: rules.OpEquals, Value: ".jpg"},
			{Field: "size", Operator: rules.OpGreaterThan, Value: 100.0},
		},
	}})
	rule := &rs.Rules()[0]

	both := metadata.New(map[string]metadata.Value{
		metadata.FieldExtension: metadata.String(".jpg"),
		metadata.FieldSize:      metadata.Int(200),
	})
	if !Matches(rule, both) {
		t.Error("rule should match when every condition holds")
	}

	oneOnly := metadata.New(map[string]metadata.Value{
		metadata.FieldExtension: metadata.String(".jpg"),
		metadata.FieldSize:      metadata.Int(50),
	})
	if Matches(rule, oneOnly) {
		t.Error("rule should not match when any condition fails")
	}
}

func TestMatchesEmptyConditionsIsCatchAll(t *testing.T) {
	rs := mustRuleSet(t, []rules.Rule{{ID: "all", DestinationPattern: "x"}})
	if !Matches(&rs.Rules()[0], metadata.New(nil)) {
		t.Error("a rule with no conditions should match everything")
	}
}

func TestFindMatchPriorityOrder(t *testing.T) {
	rs := mustRuleSet(t, []rules.Rule{
		{ID: "broad", Priority: 20, DestinationPattern: "b", Conditions: []rules.Condition{
			{Field: "extension", Operator: rules.OpEquals, Value: ".jpg"},
		}},
		{ID: "specific", Priority: 10, DestinationPattern: "a", Conditions: []rules.Condition{
			{Field: "extension", Operator: rules.OpEquals, Value: ".jpg"},
		}},
	})

	md := metadata.New(map[string]metadata.Value{
		metadata.FieldExtension: metadata.String(".jpg"),
	})

	rule, ok := FindMatch(rs, md)
	if !ok {
		t.Fatal("FindMatch() found no rule")
	}
	if rule.ID != "specific" {
		t.Errorf("matched rule = %s, want specific (lower priority number wins)", rule.ID)
	}
}

func TestFindMatchDeclarationOrderBreaksTies(t *testing.T) {
	rs := mustRuleSet(t, []rules.Rule{
		{ID: "declared-first", Priority: 10, DestinationPattern: "a"},
		{ID: "declared-second", Priority: 10, DestinationPattern: "b"},
	})

	rule, ok := FindMatch(rs, metadata.New(nil))
	if !ok {
		t.Fatal("FindMatch() found no rule")
	}
	if rule.ID != "declared-first" {
		t.Errorf("matched rule = %s, want declared-first", rule.ID)
	}
}

func TestFindMatchNoMatch(t *testing.T) {
	rs := mustRuleSet(t, []rules.Rule{
		{ID: "pdf", Priority: 1, DestinationPattern: "a", Conditions: []rules.Condition{
			{Field: "extension", Operator: rules.OpEquals, Value: ".pdf"},
		}},
	})

	md := metadata.New(map[string]metadata.Value{
		metadata.FieldExtension: metadata.String(".jpg"),
	})
	if _, ok := FindMatch(rs, md); ok {
		t.Error("FindMatch() should find nothing")
	}
}

func TestFindMatchIsDeterministic(t *testing.T) {
	rs := mustRuleSet(t, []rules.Rule{
		{ID: "a", Priority: 10, DestinationPattern: "x"},
		{ID: "b", Priority: 10, DestinationPattern: "y"},
		{ID: "c", Priority: 5, DestinationPattern: "z"},
	})
	md := metadata.New(nil)

	first, _ := FindMatch(rs, md)
	for i := 0; i < 100; i++ {
		again, _ := FindMatch(rs, md)
		if again.ID != first.ID {
			t.Fatalf("FindMatch() flipped from %s to %s", first.ID, again.ID)
		}
	}
}
