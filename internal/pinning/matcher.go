package pinning

import (
	"strings"

	"github.com/arielkaplan/pinengine/model"
)

// Match returns every rule in store whose conditions all match query, in
// store iteration order (insertion order). If query is absent, empty, or
// whitespace-only, it returns nil without consulting the store — pinning
// only applies to explicit queries. Match is pure: it never mutates store.
func Match(store *Store, query string) []model.PinRule {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil
	}
	normalizedQuery := strings.ToLower(trimmed)

	rules := store.GetAllRules()
	matched := make([]model.PinRule, 0, len(rules))
	for _, rule := range rules {
		if conditionsMatch(rule.Conditions, normalizedQuery) {
			matched = append(matched, rule)
		}
	}
	return matched
}

// GetMatchingRules is Match exposed as a method on *Store, so that Store
// satisfies a capability interface (addRule/updateRule/.../getMatchingRules)
// a caller can depend on without importing this package's free function.
func (s *Store) GetMatchingRules(query string) []model.PinRule {
	return Match(s, query)
}

// conditionsMatch reports whether every condition holds against an
// already-lowercased query (conjunction).
func conditionsMatch(conditions []model.Condition, normalizedQuery string) bool {
	for _, cond := range conditions {
		if !conditionMatches(cond, normalizedQuery) {
			return false
		}
	}
	return true
}

func conditionMatches(cond model.Condition, normalizedQuery string) bool {
	pattern := strings.ToLower(strings.TrimSpace(cond.Pattern))

	switch cond.Anchoring {
	case model.AnchoringIs:
		return normalizedQuery == pattern
	case model.AnchoringStartsWith:
		return strings.HasPrefix(normalizedQuery, pattern)
	case model.AnchoringEndsWith:
		return strings.HasSuffix(normalizedQuery, pattern)
	case model.AnchoringContains:
		return strings.Contains(normalizedQuery, pattern)
	default:
		return false
	}
}
