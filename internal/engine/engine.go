// Package engine wires the pinning subsystem into a minimal document store
// and organic ranker, the way the original multi-index search engine wired
// its indexer and searcher services together. It is deliberately
// single-index: the full search engine (tokenization, inverted index,
// typo-tolerant matching, ranking) is a collaborator outside this module's
// scope, represented here only by the Ranker interface.
package engine

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/arielkaplan/pinengine/config"
	"github.com/arielkaplan/pinengine/internal/persistence"
	"github.com/arielkaplan/pinengine/internal/pinning"
	"github.com/arielkaplan/pinengine/model"
	"github.com/arielkaplan/pinengine/store"
)

const (
	dataDirPerm   = 0750
	pinRulesFile  = "pin_rules.gob"
	documentsFile = "documents.gob"
)

// Ranker produces the organic, unpinned result list for a query. It stands
// in for the actual search engine (tokenizing, inverted-index lookups,
// typo tolerance, field-weighted scoring) this module does not implement.
type Ranker interface {
	Rank(query string, docs map[uint32]model.Document) []pinning.Hit
}

// PinningCapability is the fixed-field trait the engine record carries for
// pinning: CRUD over rules plus query-to-rule matching. *pinning.Store
// satisfies it structurally; Engine holds the concrete type (the splicer
// needs the concrete Store for its snapshot-under-lock guarantees) but this
// interface documents the capability's shape for any caller that only
// needs that surface.
type PinningCapability interface {
	AddRule(rule model.PinRule) (model.PinRule, error)
	UpdateRule(rule model.PinRule) error
	RemoveRule(ruleID string) bool
	GetRule(ruleID string) (model.PinRule, bool)
	GetAllRules() []model.PinRule
	GetMatchingRules(query string) []model.PinRule
}

var _ PinningCapability = (*pinning.Store)(nil)

// Engine combines a document store, a pin rule store, and an organic
// Ranker into a single searchable unit, applying pinning rules after
// ranking and before pagination. Engine is safe for concurrent use: the
// document store and pin rule store each guard their own state, and
// Search only ever reads from both.
type Engine struct {
	dataDir string
	docs    *store.DocumentStore
	pins    *pinning.Store
	ranker  Ranker
	cfg     *config.PinningConfig
	metrics *pinning.Metrics
}

// New creates an Engine persisting to dataDir, loading any documents and
// pin rules previously saved there (both stores start empty when dataDir
// holds no saved state). If ranker is nil, organic ranking is
// a no-op (every document scores 0 in insertion order) — useful for
// exercising the pinning hook in isolation.
func New(dataDir string, ranker Ranker, cfg *config.PinningConfig, metrics *pinning.Metrics) *Engine {
	if err := os.MkdirAll(dataDir, dataDirPerm); err != nil {
		log.Printf("Warning: could not create data directory %s: %v. Proceeding without persistence.", dataDir, err)
	}

	e := &Engine{
		dataDir: dataDir,
		docs:    store.NewDocumentStore(),
		pins:    pinning.NewStore(),
		ranker:  ranker,
		cfg:     cfg,
		metrics: metrics,
	}
	e.loadFromDisk()
	return e
}

func (e *Engine) loadFromDisk() {
	docsPath := filepath.Join(e.dataDir, documentsFile)
	if err := persistence.LoadGob(docsPath, e.docs); err != nil && err != os.ErrNotExist {
		log.Printf("Warning: failed to load document store from %s: %v. Starting empty.", docsPath, err)
	}

	rulesPath := filepath.Join(e.dataDir, pinRulesFile)
	var rules []model.PinRule
	if err := persistence.LoadGob(rulesPath, &rules); err != nil {
		if err != os.ErrNotExist {
			log.Printf("Warning: failed to load pin rules from %s: %v. Starting empty.", rulesPath, err)
		}
		return
	}
	for _, rule := range rules {
		if _, err := e.pins.AddRule(rule); err != nil {
			log.Printf("Warning: dropping pin rule %q loaded from disk: %v", rule.ID, err)
		}
	}
}

func (e *Engine) persistPinRules() error {
	return persistence.SaveGob(filepath.Join(e.dataDir, pinRulesFile), e.pins.GetAllRules())
}

// InsertDocument adds or replaces a document and persists the store.
func (e *Engine) InsertDocument(externalID string, doc model.Document) error {
	e.docs.Put(externalID, doc)
	return persistence.SaveGob(filepath.Join(e.dataDir, documentsFile), e.docs)
}

// DeleteDocument removes a document and persists the store.
func (e *Engine) DeleteDocument(externalID string) error {
	e.docs.Delete(externalID)
	return persistence.SaveGob(filepath.Join(e.dataDir, documentsFile), e.docs)
}

// InsertPin adds a pin rule and persists the rule store.
func (e *Engine) InsertPin(rule model.PinRule) (model.PinRule, error) {
	created, err := e.pins.AddRule(rule)
	if err != nil {
		return model.PinRule{}, err
	}
	if err := e.persistPinRules(); err != nil {
		return model.PinRule{}, fmt.Errorf("pin rule %q saved in memory but failed to persist: %w", created.ID, err)
	}
	return created, nil
}

// UpdatePin replaces an existing pin rule and persists the rule store.
func (e *Engine) UpdatePin(rule model.PinRule) error {
	if err := e.pins.UpdateRule(rule); err != nil {
		return err
	}
	return e.persistPinRules()
}

// DeletePin removes a pin rule by id and persists the rule store.
func (e *Engine) DeletePin(ruleID string) error {
	if !e.pins.RemoveRule(ruleID) {
		return fmt.Errorf("pin rule %q not found", ruleID)
	}
	return e.persistPinRules()
}

// GetPin retrieves a single pin rule by id.
func (e *Engine) GetPin(ruleID string) (model.PinRule, bool) {
	return e.pins.GetRule(ruleID)
}

// GetAllPins returns every pin rule, in insertion order.
func (e *Engine) GetAllPins() []model.PinRule {
	return e.pins.GetAllRules()
}

// Search ranks query against the document store, splices in pinned
// documents, and returns the requested page. Pinning is applied after
// ranking and before pagination, so a pinned document always counts
// toward the page it lands on rather than competing with it.
func (e *Engine) Search(query string, page, pageSize int) ([]model.Document, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("pageSize must be positive, got %d", pageSize)
	}

	e.docs.Mu.RLock()
	docsSnapshot := make(map[uint32]model.Document, len(e.docs.Docs))
	for id, doc := range e.docs.Docs {
		docsSnapshot[id] = doc
	}
	e.docs.Mu.RUnlock()

	organic := e.rank(query, docsSnapshot)

	basePinScore := pinning.DefaultBasePinScore
	if e.cfg != nil {
		basePinScore = e.cfg.BasePinScore
	}
	var metrics *pinning.Metrics
	if e.cfg == nil || e.cfg.MetricsEnabled {
		metrics = e.metrics
	}

	spliced := pinning.ApplyPinningRules(e.pins, e.docs, organic, query, basePinScore, metrics)

	start := (page - 1) * pageSize
	if start >= len(spliced) {
		return []model.Document{}, nil
	}
	end := start + pageSize
	if end > len(spliced) {
		end = len(spliced)
	}

	results := make([]model.Document, 0, end-start)
	for _, hit := range spliced[start:end] {
		if doc, ok := docsSnapshot[hit.DocID]; ok {
			results = append(results, doc)
		}
	}
	return results, nil
}

func (e *Engine) rank(query string, docs map[uint32]model.Document) []pinning.Hit {
	if e.ranker != nil {
		return e.ranker.Rank(query, docs)
	}
	ids := make([]uint32, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	hits := make([]pinning.Hit, len(ids))
	for i, id := range ids {
		hits[i] = pinning.Hit{DocID: id, Score: 0}
	}
	return hits
}
