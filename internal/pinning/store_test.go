package pinning

import (
	"errors"
	"testing"

	pinerrors "github.com/arielkaplan/pinengine/internal/errors"
	"github.com/arielkaplan/pinengine/model"
)

func sampleRule(id string, pos int) model.PinRule {
	return model.PinRule{
		ID: id,
		Conditions: []model.Condition{
			{Anchoring: model.AnchoringContains, Pattern: "feat"},
		},
		Consequence: model.Consequence{
			Promote: []model.Promotion{
				{DocID: "doc-1", Position: pos},
			},
		},
	}
}

func TestStore_AddRule_GeneratesIDWhenEmpty(t *testing.T) {
	store := NewStore()

	rule := sampleRule("", 0)
	created, err := store.AddRule(rule)
	if err != nil {
		t.Fatalf("AddRule returned unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a generated rule id, got empty string")
	}

	got, ok := store.GetRule(created.ID)
	if !ok {
		t.Fatal("expected GetRule to find the inserted rule")
	}
	if got.ID != created.ID {
		t.Errorf("expected id %q, got %q", created.ID, got.ID)
	}
}

func TestStore_AddRule_DuplicateID(t *testing.T) {
	store := NewStore()

	if _, err := store.AddRule(sampleRule("r1", 0)); err != nil {
		t.Fatalf("unexpected error on first insert: %v", err)
	}

	_, err := store.AddRule(sampleRule("r1", 1))
	if err == nil {
		t.Fatal("expected an error inserting a duplicate rule id")
	}
	if !errors.Is(err, pinerrors.ErrDuplicateRuleID) {
		t.Errorf("expected ErrDuplicateRuleID, got %v", err)
	}

	// The store must be untouched: the original rule's promotion survives.
	got, _ := store.GetRule("r1")
	if got.Consequence.Promote[0].Position != 0 {
		t.Errorf("expected first rule to remain unchanged, got position %d", got.Consequence.Promote[0].Position)
	}
}

func TestStore_AddRule_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		rule model.PinRule
	}{
		{
			name: "no conditions",
			rule: model.PinRule{
				Consequence: model.Consequence{Promote: []model.Promotion{{DocID: "d", Position: 0}}},
			},
		},
		{
			name: "empty pattern after trim",
			rule: model.PinRule{
				Conditions:  []model.Condition{{Anchoring: model.AnchoringIs, Pattern: "   "}},
				Consequence: model.Consequence{Promote: []model.Promotion{{DocID: "d", Position: 0}}},
			},
		},
		{
			name: "invalid anchoring",
			rule: model.PinRule{
				Conditions:  []model.Condition{{Anchoring: "fuzzy", Pattern: "x"}},
				Consequence: model.Consequence{Promote: []model.Promotion{{DocID: "d", Position: 0}}},
			},
		},
		{
			name: "no promotions",
			rule: model.PinRule{
				Conditions: []model.Condition{{Anchoring: model.AnchoringIs, Pattern: "x"}},
			},
		},
		{
			name: "duplicate positions within rule",
			rule: model.PinRule{
				Conditions: []model.Condition{{Anchoring: model.AnchoringIs, Pattern: "x"}},
				Consequence: model.Consequence{Promote: []model.Promotion{
					{DocID: "d1", Position: 0},
					{DocID: "d2", Position: 0},
				}},
			},
		},
		{
			name: "negative position",
			rule: model.PinRule{
				Conditions:  []model.Condition{{Anchoring: model.AnchoringIs, Pattern: "x"}},
				Consequence: model.Consequence{Promote: []model.Promotion{{DocID: "d", Position: -1}}},
			},
		},
		{
			name: "empty doc id",
			rule: model.PinRule{
				Conditions:  []model.Condition{{Anchoring: model.AnchoringIs, Pattern: "x"}},
				Consequence: model.Consequence{Promote: []model.Promotion{{DocID: "  ", Position: 0}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			_, err := store.AddRule(tt.rule)
			if err == nil {
				t.Fatal("expected a validation error, got nil")
			}
			if !errors.Is(err, pinerrors.ErrInvalidRule) {
				t.Errorf("expected ErrInvalidRule, got %v", err)
			}
			if len(store.GetAllRules()) != 0 {
				t.Error("expected the store to remain empty after a failed insert")
			}
		})
	}
}

func TestStore_UpdateRule(t *testing.T) {
	store := NewStore()
	if _, err := store.AddRule(sampleRule("r1", 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	replacement := sampleRule("r1", 5)
	if err := store.UpdateRule(replacement); err != nil {
		t.Fatalf("unexpected error updating rule: %v", err)
	}

	got, ok := store.GetRule("r1")
	if !ok {
		t.Fatal("expected rule to still exist after update")
	}
	if got.Consequence.Promote[0].Position != 5 {
		t.Errorf("expected updated position 5, got %d", got.Consequence.Promote[0].Position)
	}
}

func TestStore_UpdateRule_NotFound(t *testing.T) {
	store := NewStore()

	err := store.UpdateRule(sampleRule("missing", 0))
	if err == nil {
		t.Fatal("expected an error updating a nonexistent rule")
	}
	if !errors.Is(err, pinerrors.ErrRuleNotFound) {
		t.Errorf("expected ErrRuleNotFound, got %v", err)
	}
}

func TestStore_RemoveRule(t *testing.T) {
	store := NewStore()
	if _, err := store.AddRule(sampleRule("r1", 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if removed := store.RemoveRule("r1"); !removed {
		t.Fatal("expected RemoveRule to report true for an existing rule")
	}
	if removed := store.RemoveRule("r1"); removed {
		t.Fatal("expected RemoveRule to report false the second time")
	}

	if _, ok := store.GetRule("r1"); ok {
		t.Error("expected rule to be absent after deletion")
	}
}

func TestStore_GetAllRules_InsertionOrder(t *testing.T) {
	store := NewStore()
	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		if _, err := store.AddRule(sampleRule(id, 0)); err != nil {
			t.Fatalf("unexpected error inserting %q: %v", id, err)
		}
	}

	all := store.GetAllRules()
	if len(all) != len(ids) {
		t.Fatalf("expected %d rules, got %d", len(ids), len(all))
	}
	for i, rule := range all {
		if rule.ID != ids[i] {
			t.Errorf("expected rule at index %d to be %q, got %q", i, ids[i], rule.ID)
		}
	}
}
