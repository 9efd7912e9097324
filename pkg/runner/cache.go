package runner

import (
	"context"

	"github.com/Sumatoshi-tech/gitstats/pkg/alg/lru"
	"github.com/Sumatoshi-tech/gitstats/pkg/collect"
	"github.com/Sumatoshi-tech/gitstats/pkg/commits"
)

// detailKey identifies a commit detail. The backend is part of the key since
// the two backends may count a rename differently.
type detailKey struct {
	backend string
	path    string
	hash    commits.CommitHash
}

// DetailCache is an LRU of extracted commit details shared by the runs of a
// long-lived process. A commit's detail never changes, so entries need no
// invalidation.
type DetailCache struct {
	cache *lru.Cache[detailKey, commits.CommitDetail]
}

// NewDetailCache returns a cache holding up to maxEntries commits, or nil
// when maxEntries is not positive.
func NewDetailCache(maxEntries int) *DetailCache {
	if maxEntries <= 0 {
		return nil
	}

	return &DetailCache{cache: lru.New(lru.WithMaxEntries[detailKey, commits.CommitDetail](maxEntries))}
}

// Stats returns the cache counters. A nil cache reports zeros.
func (c *DetailCache) Stats() lru.Stats {
	if c == nil {
		return lru.Stats{}
	}

	return c.cache.Stats()
}

func (c *DetailCache) wrap(repo Repository, backend string) collect.Source {
	if c == nil {
		return repo
	}

	return cachedSource{Repository: repo, backend: backend, cache: c.cache}
}

// cachedSource serves CommitDetail from the cache before asking the backend.
type cachedSource struct {
	Repository

	backend string
	cache   *lru.Cache[detailKey, commits.CommitDetail]
}

func (s cachedSource) CommitDetail(ctx context.Context, hash commits.CommitHash) (commits.CommitDetail, error) {
	key := detailKey{backend: s.backend, path: s.Path(), hash: hash}

	if detail, ok := s.cache.Get(key); ok {
		return detail, nil
	}

	detail, err := s.Repository.CommitDetail(ctx, hash)
	if err != nil {
		return commits.CommitDetail{}, err
	}

	s.cache.Put(key, detail)

	return detail, nil
}
