package research

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Alias1177/Forecaster/models"
)

// Cached memoizes facts per question id so repeated runs over the same
// question set (or the single-question pipeline invoked twice) do not re-pay
// the research call. Correctness never depends on the cache: a miss is just
// a call through.
type Cached struct {
	inner models.ResearchProvider
	cache *lru.Cache[string, []string]
}

// NewCached wraps a provider with an LRU of the given size.
func NewCached(inner models.ResearchProvider, size int) (*Cached, error) {
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, []string](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Facts returns cached facts when present, otherwise delegates. Failed
// lookups are not cached.
func (c *Cached) Facts(ctx context.Context, q *models.Question) ([]string, error) {
	if facts, ok := c.cache.Get(q.ID); ok {
		return facts, nil
	}
	facts, err := c.inner.Facts(ctx, q)
	if err != nil {
		return nil, err
	}
	c.cache.Add(q.ID, facts)
	return facts, nil
}
