package engine

import (
	"github.com/shiwake/shiwake/pkg/shiwake/metadata"
	"github.com/shiwake/shiwake/pkg/shiwake/rules"
)

// Matches reports whether every condition of the rule holds for the metadata.
// A rule with no conditions matches every file.
func Matches(r *rules.Rule, md metadata.FileMetadata) bool {
	for i := range r.Conditions {
		if !Evaluate(&r.Conditions[i], md) {
			return false
		}
	}
	return true
}

// FindMatch returns the first rule in the set whose conditions all hold.
// The set is already ordered by (priority, declaration index), so ties at
// equal priority go to the rule declared first, never to a "best match"
// score; authoring rules most-specific-first is the rule author's job.
// ok is false when no rule matches.
func FindMatch(rs *rules.RuleSet, md metadata.FileMetadata) (*rules.Rule, bool) {
	ordered := rs.Rules()
	for i := range ordered {
		if Matches(&ordered[i], md) {
			return &ordered[i], true
		}
	}
	return nil, false
}
