package engine

import (
	"testing"

	"github.com/arielkaplan/pinengine/config"
	"github.com/arielkaplan/pinengine/internal/pinning"
	"github.com/arielkaplan/pinengine/model"
)

// stubRanker returns hits in ascending internal-id order with a fixed
// descending score, so assertions can rely on a deterministic organic
// ordering without a real text ranker.
type stubRanker struct{}

func (stubRanker) Rank(query string, docs map[uint32]model.Document) []pinning.Hit {
	ids := make([]uint32, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	// simple insertion sort keeps this deterministic without pulling in sort
	// for such a small, test-only helper.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	hits := make([]pinning.Hit, len(ids))
	for i, id := range ids {
		hits[i] = pinning.Hit{DocID: id, Score: float64(100 - i)}
	}
	return hits
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := &config.PinningConfig{BasePinScore: pinning.DefaultBasePinScore, MetricsEnabled: false}
	return New(t.TempDir(), stubRanker{}, cfg, nil)
}

func TestEngine_SearchWithoutPinsReturnsOrganicPage(t *testing.T) {
	e := newTestEngine(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := e.InsertDocument(id, model.Document{"documentID": id}); err != nil {
			t.Fatalf("InsertDocument(%q) failed: %v", id, err)
		}
	}

	got, err := e.Search("anything", 1, 10)
	if err != nil {
		t.Fatalf("Search returned unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
}

func TestEngine_SearchAppliesPinning(t *testing.T) {
	e := newTestEngine(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := e.InsertDocument(id, model.Document{"documentID": id}); err != nil {
			t.Fatalf("InsertDocument(%q) failed: %v", id, err)
		}
	}

	rule := model.PinRule{
		Conditions: []model.Condition{{Anchoring: model.AnchoringContains, Pattern: "feat"}},
		Consequence: model.Consequence{
			Promote: []model.Promotion{{DocID: "c", Position: 0}},
		},
	}
	if _, err := e.InsertPin(rule); err != nil {
		t.Fatalf("InsertPin failed: %v", err)
	}

	got, err := e.Search("featured item", 1, 10)
	if err != nil {
		t.Fatalf("Search returned unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if id, _ := got[0].GetDocumentID(); id != "c" {
		t.Errorf("expected pinned document 'c' first, got %q", id)
	}
}

func TestEngine_SearchPaginatesAfterPinning(t *testing.T) {
	e := newTestEngine(t)
	for _, id := range []string{"a", "b", "c", "d"} {
		if err := e.InsertDocument(id, model.Document{"documentID": id}); err != nil {
			t.Fatalf("InsertDocument(%q) failed: %v", id, err)
		}
	}

	rule := model.PinRule{
		Conditions: []model.Condition{{Anchoring: model.AnchoringContains, Pattern: "feat"}},
		Consequence: model.Consequence{
			Promote: []model.Promotion{{DocID: "d", Position: 0}},
		},
	}
	if _, err := e.InsertPin(rule); err != nil {
		t.Fatalf("InsertPin failed: %v", err)
	}

	page1, err := e.Search("featured", 1, 2)
	if err != nil {
		t.Fatalf("Search page 1 returned unexpected error: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("expected 2 results on page 1, got %d", len(page1))
	}
	if id, _ := page1[0].GetDocumentID(); id != "d" {
		t.Errorf("expected pinned document 'd' to land on page 1, got %q", id)
	}

	page2, err := e.Search("featured", 2, 2)
	if err != nil {
		t.Fatalf("Search page 2 returned unexpected error: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("expected 2 results on page 2, got %d", len(page2))
	}
}

func TestEngine_DeletePinNotFound(t *testing.T) {
	e := newTestEngine(t)
	if err := e.DeletePin("missing"); err == nil {
		t.Fatal("expected an error deleting a nonexistent pin rule")
	}
}

func TestEngine_SearchRejectsNonPositivePageSize(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Search("q", 1, 0); err == nil {
		t.Fatal("expected an error for pageSize <= 0")
	}
}
