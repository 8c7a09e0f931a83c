// Package retrieval pools candidates from a vector store across query
// expansions and re-ranks them with Maximal Marginal Relevance.
package retrieval

import "context"

// Candidate is one retrievable document chunk.  Metadata values are scalar
// strings; list-valued fields such as tags are comma-joined.
type Candidate struct {
	ID        string
	Text      string
	Metadata  map[string]string
	Embedding []float32
}

// Store is the vector-similarity capability.  Query returns up to limit
// nearest neighbours for the query text, including stored embeddings so the
// caller can re-rank locally.
type Store interface {
	Query(ctx context.Context, query string, limit int) ([]Candidate, error)
	Add(ctx context.Context, docs []Candidate) error
}

// Embedder turns texts into vectors with the same model used at ingest.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Categories derives category tags from the selected candidates' metadata:
// the comma-separated "tags" field plus the optional "topic" field,
// deduplicated and lowercased, in order of first appearance, capped at
// limit.
func Categories(docs []Candidate, limit int) []string {
	var cats []string
	seen := make(map[string]bool)
	add := func(tag string) {
		tag = normalizeTag(tag)
		if tag == "" || seen[tag] || len(cats) >= limit {
			return
		}
		seen[tag] = true
		cats = append(cats, tag)
	}
	for _, d := range docs {
		for _, t := range splitTags(d.Metadata["tags"]) {
			add(t)
		}
		add(d.Metadata["topic"])
	}
	return cats
}
