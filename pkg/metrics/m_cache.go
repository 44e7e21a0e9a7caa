package metrics

import (
	"encoding/json"

	"github.com/recipescope/recipescope/pkg/report"
)

// PremirrorCacheEvaluator measures the premirror hit rate: every lookup
// counts, hits form the numerator.
type PremirrorCacheEvaluator struct {
	Evaluator
}

func NewPremirrorCacheEvaluator(criteria Criteria) *PremirrorCacheEvaluator {
	return &PremirrorCacheEvaluator{Evaluator: newEvaluator(Positive, criteria.Cache)}
}

func (e *PremirrorCacheEvaluator) Category() Category { return CategoryCache }

func (e *PremirrorCacheEvaluator) Parse(c report.Container) {
	e.reset()
	if !c.Has(report.KindPremirrorCache) {
		return
	}
	e.available = true
	for _, r := range c.PremirrorCaches() {
		if r.Found {
			e.Increment(1, 1)
		} else {
			e.Increment(1, 0)
		}
	}
}

// SharedStateCacheEvaluator measures the shared-state hit rate over distinct
// signatures. A signature looked up by several recipes counts once, and is a
// hit if any of its lookups was.
type SharedStateCacheEvaluator struct {
	Evaluator
}

func NewSharedStateCacheEvaluator(criteria Criteria) *SharedStateCacheEvaluator {
	return &SharedStateCacheEvaluator{Evaluator: newEvaluator(Positive, criteria.Cache)}
}

func (e *SharedStateCacheEvaluator) Category() Category { return CategoryCache }

func (e *SharedStateCacheEvaluator) Parse(c report.Container) {
	e.reset()
	if !c.Has(report.KindSharedStateCache) {
		return
	}
	e.available = true

	found := make(map[string]bool)
	for _, r := range c.SharedStateCaches() {
		found[r.Signature] = found[r.Signature] || r.Found
	}
	for _, hit := range found {
		if hit {
			e.Increment(1, 1)
		} else {
			e.Increment(1, 0)
		}
	}
}

// CacheEvaluator combines the premirror and shared-state caches by summing
// their counts. It is available when either cache reported.
type CacheEvaluator struct {
	Evaluator
	premirror   *PremirrorCacheEvaluator
	sharedState *SharedStateCacheEvaluator
}

func NewCacheEvaluator(criteria Criteria) *CacheEvaluator {
	return &CacheEvaluator{
		Evaluator:   newEvaluator(Positive, criteria.Cache),
		premirror:   NewPremirrorCacheEvaluator(criteria),
		sharedState: NewSharedStateCacheEvaluator(criteria),
	}
}

func (e *CacheEvaluator) Category() Category { return CategoryCache }

func (e *CacheEvaluator) Premirror() *PremirrorCacheEvaluator     { return e.premirror }
func (e *CacheEvaluator) SharedState() *SharedStateCacheEvaluator { return e.sharedState }

func (e *CacheEvaluator) Parse(c report.Container) {
	e.reset()
	e.premirror.Parse(c)
	e.sharedState.Parse(c)

	e.Add(e.premirror.Counter)
	e.Add(e.sharedState.Counter)
	e.available = e.premirror.Available() || e.sharedState.Available()
}

func (e *CacheEvaluator) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		evaluatorJSON
		Premirror   *PremirrorCacheEvaluator   `json:"premirror"`
		SharedState *SharedStateCacheEvaluator `json:"shared_state"`
	}{e.toJSON(), e.premirror, e.sharedState})
}
