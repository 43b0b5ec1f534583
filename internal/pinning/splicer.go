package pinning

import (
	"sort"
	"time"

	"github.com/arielkaplan/pinengine/model"
)

// DefaultBasePinScore is the sentinel score assigned to a pinned document
// that was already present in the organic list, minus its claimed
// position. It is large enough that no realistic organic score collides
// with it; callers whose scores can approach it should raise it via
// config.PinningConfig.BasePinScore instead of hardcoding a new one here.
const DefaultBasePinScore = 1_000_000.0

// Hit is an (internal document id, score) pair — the unit the organic
// ranker produces and the splicer rearranges. It carries nothing about the
// document itself: field matches, snippets, and the like live one layer up,
// outside this subsystem.
type Hit struct {
	DocID uint32
	Score float64
}

// Resolver is the pair of oracle capabilities the splicer needs from its
// document-store collaborator: translating an external document id into an
// internal one, and checking whether an internal id still refers to a live
// document. Both must be synchronous, non-blocking map lookups — the
// splicer never suspends.
type Resolver interface {
	ToInternalID(externalID string) (uint32, bool)
	DocExists(internalID uint32) bool
}

// ApplyPinningRules is the data-plane entry point: it matches store's rules
// against query, resolves promotion conflicts with a first-wins policy, and
// fuses the result into organic, preserving organic's relative order among
// unpinned documents. If no rule matches, it returns organic unchanged
// (the same slice, not a copy) per the identity short-circuit.
//
// Callers invoke this after scoring and deduplication but before
// pagination, so that pinned documents count toward the first page.
func ApplyPinningRules(store *Store, resolver Resolver, organic []Hit, query string, basePinScore float64, metrics *Metrics) []Hit {
	start := time.Now()
	if metrics != nil {
		defer func() { metrics.SpliceDuration.Observe(time.Since(start).Seconds()) }()
	}

	matched := Match(store, query)
	if len(matched) == 0 {
		return organic
	}
	if metrics != nil {
		metrics.MatchedRulesTotal.Add(float64(len(matched)))
	}

	placedPos, taken := resolveConflicts(matched, resolver, metrics)

	originalScore := make(map[uint32]float64, len(organic))
	for _, hit := range organic {
		originalScore[hit.DocID] = hit.Score
	}

	unpinned := make([]Hit, 0, len(organic))
	for _, hit := range organic {
		if _, isPinned := placedPos[hit.DocID]; !isPinned {
			unpinned = append(unpinned, hit)
		}
	}

	pins := assignPinScores(placedPos, taken, originalScore, resolver, basePinScore)

	return interleave(unpinned, pins)
}

// resolveConflicts walks every promotion from every matched rule, in
// rule-iteration then intra-rule declaration order, applying the spec's
// first-wins policy: the first promotion to claim a position keeps it
// unless a later promotion of the *same* document asks for a strictly
// smaller position that is itself unclaimed.
func resolveConflicts(matched []model.PinRule, resolver Resolver, metrics *Metrics) (placedPos map[uint32]int, taken map[int]uint32) {
	placedPos = make(map[uint32]int)
	taken = make(map[int]uint32)
	seen := make(map[uint32]bool)

	for _, rule := range matched {
		for _, promo := range rule.Consequence.Promote {
			if metrics != nil {
				metrics.PromotionsConsideredTotal.Inc()
			}

			internalID, ok := resolver.ToInternalID(promo.DocID)
			if !ok {
				if metrics != nil {
					metrics.MissingDocumentTotal.Inc()
				}
				continue
			}

			if seen[internalID] {
				oldPos := placedPos[internalID]
				if promo.Position < oldPos {
					if owner, occupied := taken[promo.Position]; !occupied || owner == internalID {
						delete(taken, oldPos)
						taken[promo.Position] = internalID
						placedPos[internalID] = promo.Position
					}
				}
				continue
			}

			if _, occupied := taken[promo.Position]; occupied {
				if metrics != nil {
					metrics.PositionConflictTotal.Inc()
				}
				continue
			}

			placedPos[internalID] = promo.Position
			taken[promo.Position] = internalID
			seen[internalID] = true
		}
	}

	return placedPos, taken
}

// assignPinScores turns the placed-position map into concrete Hits,
// dropping any pin whose document was never in the organic list and no
// longer exists in the document store.
func assignPinScores(placedPos map[uint32]int, taken map[int]uint32, originalScore map[uint32]float64, resolver Resolver, basePinScore float64) map[int]Hit {
	pins := make(map[int]Hit, len(placedPos))

	for docID, pos := range placedPos {
		if _, wasOrganic := originalScore[docID]; wasOrganic {
			pins[pos] = Hit{DocID: docID, Score: basePinScore - float64(pos)}
			continue
		}
		if !resolver.DocExists(docID) {
			delete(taken, pos)
			continue
		}
		pins[pos] = Hit{DocID: docID, Score: 0}
	}

	return pins
}

// interleave walks positions 0, 1, 2, ... emitting a pin where one claims
// the slot and the next unpinned document otherwise, stopping at the first
// slot that has no pin once the unpinned documents have run out. Any pins
// whose position was never reached (sparse assignments) are appended
// afterward in ascending position order.
func interleave(unpinned []Hit, pins map[int]Hit) []Hit {
	result := make([]Hit, 0, len(unpinned)+len(pins))

	i, u := 0, 0
	for {
		if hit, ok := pins[i]; ok {
			result = append(result, hit)
			delete(pins, i)
			i++
			continue
		}
		if u < len(unpinned) {
			result = append(result, unpinned[u])
			u++
			i++
			continue
		}
		break
	}

	if len(pins) > 0 {
		leftover := make([]int, 0, len(pins))
		for pos := range pins {
			leftover = append(leftover, pos)
		}
		sort.Ints(leftover)
		for _, pos := range leftover {
			result = append(result, pins[pos])
		}
	}

	return result
}
