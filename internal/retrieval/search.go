package retrieval

import (
	"context"
	"fmt"
)

// DefaultPoolSize is the per-expansion candidate pool queried from the
// store before re-ranking.
const DefaultPoolSize = 20

// Searcher runs the full retrieval pipeline: query expansion, candidate
// pooling, id-deduplication and MMR selection.
type Searcher struct {
	store  Store
	embed  Embedder
	lambda float64
}

// NewSearcher constructs a Searcher.  A non-positive lambda falls back to
// DefaultLambda.
func NewSearcher(store Store, embed Embedder, lambda float64) *Searcher {
	if lambda <= 0 {
		lambda = DefaultLambda
	}
	return &Searcher{store: store, embed: embed, lambda: lambda}
}

// Search returns up to k candidates for query, diversified with MMR.  An
// empty merged pool is a valid outcome and returns an empty, nil-error
// result.
func (s *Searcher) Search(ctx context.Context, query string, poolSize, k int) ([]Candidate, error) {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}

	// Pool candidates across expansions; first occurrence of an id wins.
	seen := make(map[string]bool)
	var pool []Candidate
	for _, q := range ExpandQuery(query) {
		hits, err := s.store.Query(ctx, q, poolSize)
		if err != nil {
			return nil, fmt.Errorf("vector query: %w", err)
		}
		for _, h := range hits {
			if seen[h.ID] {
				continue
			}
			seen[h.ID] = true
			pool = append(pool, h)
		}
	}
	if len(pool) == 0 {
		return nil, nil
	}

	// MMR over the pool against a fresh embedding of the original query.
	qvecs, err := s.embed.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	vecs := make([][]float32, len(pool))
	for i, c := range pool {
		vecs[i] = c.Embedding
	}
	selected := make([]Candidate, 0, k)
	for _, idx := range MMRSelect(qvecs[0], vecs, k, s.lambda) {
		selected = append(selected, pool[idx])
	}
	return selected, nil
}
