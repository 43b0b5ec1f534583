// Package pinning implements the pinning subsystem's core: a rule store,
// a pure query-to-rule matcher, and the result splicer that fuses pinned
// documents into an organic, score-ranked result list.
package pinning

import (
	"strconv"
	"strings"
	"sync"

	pinerrors "github.com/arielkaplan/pinengine/internal/errors"
	"github.com/arielkaplan/pinengine/model"
	"github.com/google/uuid"
)

// Store is an in-memory, concurrency-safe container of PinRules keyed by
// rule id. A single writer (the control plane) and many concurrent readers
// (the search hot path, via Match) are expected; every mutation and every
// read iteration is guarded by a brief RWMutex hold so that no reader ever
// observes a torn rule.
type Store struct {
	mu    sync.RWMutex
	rules map[string]model.PinRule
	// order preserves insertion order so that GetAllRules and Match produce
	// reproducible output across runs of the same process, even though the
	// spec does not require it for correctness.
	order []string
}

// NewStore creates an empty rule store.
func NewStore() *Store {
	return &Store{
		rules: make(map[string]model.PinRule),
	}
}

// AddRule inserts a new rule. If rule.ID is empty, a uuid is generated.
// Fails with a *errors.DuplicateRuleIDError if the id already exists, or a
// *errors.InvalidRuleError if the rule fails structural validation. The
// store is left untouched on failure.
func (s *Store) AddRule(rule model.PinRule) (model.PinRule, error) {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	if err := validateRule(rule); err != nil {
		return model.PinRule{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[rule.ID]; exists {
		return model.PinRule{}, pinerrors.NewDuplicateRuleIDError(rule.ID)
	}

	s.rules[rule.ID] = rule
	s.order = append(s.order, rule.ID)
	return rule, nil
}

// UpdateRule replaces an existing rule in full, by id. Fails with a
// *errors.RuleNotFoundError if the id is absent, or a
// *errors.InvalidRuleError if the replacement fails structural validation.
// The store is left untouched on failure.
func (s *Store) UpdateRule(rule model.PinRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[rule.ID]; !exists {
		return pinerrors.NewRuleNotFoundError(rule.ID)
	}

	s.rules[rule.ID] = rule
	return nil
}

// RemoveRule deletes a rule by id. It never fails: it reports whether a
// rule was actually removed.
func (s *Store) RemoveRule(ruleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[ruleID]; !exists {
		return false
	}

	delete(s.rules, ruleID)
	for i, id := range s.order {
		if id == ruleID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// GetRule looks up a rule by id. It never fails: absence is reported via
// the boolean return, not an error.
func (s *Store) GetRule(ruleID string) (model.PinRule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, ok := s.rules[ruleID]
	return rule, ok
}

// GetAllRules returns every rule currently in the store, in insertion order.
func (s *Store) GetAllRules() []model.PinRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.PinRule, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rules[id])
	}
	return out
}

// validateRule enforces the structural invariants from the data model:
// non-empty conditions, non-empty promotions, non-empty (after trim)
// condition patterns, and distinct positions across a rule's promotions.
func validateRule(rule model.PinRule) error {
	if len(rule.Conditions) == 0 {
		return pinerrors.NewInvalidRuleError(rule.ID, "conditions", "must have at least one condition")
	}

	for i, cond := range rule.Conditions {
		switch cond.Anchoring {
		case model.AnchoringIs, model.AnchoringStartsWith, model.AnchoringEndsWith, model.AnchoringContains:
		default:
			return pinerrors.NewInvalidRuleError(rule.ID, "conditions",
				"condition "+strconv.Itoa(i)+" has invalid anchoring '"+string(cond.Anchoring)+"'")
		}
		if strings.TrimSpace(cond.Pattern) == "" {
			return pinerrors.NewInvalidRuleError(rule.ID, "conditions",
				"condition "+strconv.Itoa(i)+" has an empty pattern")
		}
	}

	if len(rule.Consequence.Promote) == 0 {
		return pinerrors.NewInvalidRuleError(rule.ID, "consequence.promote", "must have at least one promotion")
	}

	seenPositions := make(map[int]bool, len(rule.Consequence.Promote))
	for i, promo := range rule.Consequence.Promote {
		if promo.Position < 0 {
			return pinerrors.NewInvalidRuleError(rule.ID, "consequence.promote",
				"promotion "+strconv.Itoa(i)+" has a negative position")
		}
		if strings.TrimSpace(promo.DocID) == "" {
			return pinerrors.NewInvalidRuleError(rule.ID, "consequence.promote",
				"promotion "+strconv.Itoa(i)+" has an empty doc_id")
		}
		if seenPositions[promo.Position] {
			return pinerrors.NewInvalidRuleError(rule.ID, "consequence.promote",
				"duplicate position within rule")
		}
		seenPositions[promo.Position] = true
	}

	return nil
}
