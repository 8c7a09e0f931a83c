package retrieval

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS carepaths (
    id        TEXT PRIMARY KEY,
    text      TEXT NOT NULL,
    metadata  TEXT NOT NULL DEFAULT '{}',
    embedding TEXT NOT NULL
);`

// SQLiteStore is the default local vector store: chunks live in a single
// sqlite file with JSON-encoded embeddings, ranked by an in-process cosine
// scan.  Suitable for the care-path corpus, which is small.
type SQLiteStore struct {
	db    *sql.DB
	embed Embedder
}

// OpenSQLite opens (creating if needed) the index at path and applies the
// schema.
func OpenSQLite(ctx context.Context, path string, embed Embedder) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate index: %w", err)
	}
	return &SQLiteStore{db: db, embed: embed}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Add upserts document chunks with their embeddings.
func (s *SQLiteStore) Add(ctx context.Context, docs []Candidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, d := range docs {
		meta, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", d.ID, err)
		}
		vec, err := json.Marshal(d.Embedding)
		if err != nil {
			return fmt.Errorf("encode embedding for %s: %w", d.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO carepaths (id, text, metadata, embedding)
             VALUES (?, ?, ?, ?)
             ON CONFLICT(id) DO UPDATE SET text=excluded.text,
                 metadata=excluded.metadata, embedding=excluded.embedding`,
			d.ID, d.Text, string(meta), string(vec),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Query embeds the query text and returns the limit nearest chunks by
// cosine similarity, embeddings included.
func (s *SQLiteStore) Query(ctx context.Context, query string, limit int) ([]Candidate, error) {
	vecs, err := s.embed.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, metadata, embedding FROM carepaths`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []Candidate
	for rows.Next() {
		var (
			c        Candidate
			metaJSON string
			vecJSON  string
		)
		if err := rows.Scan(&c.ID, &c.Text, &metaJSON, &vecJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(metaJSON), &c.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", c.ID, err)
		}
		if err := json.Unmarshal([]byte(vecJSON), &c.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding for %s: %w", c.ID, err)
		}
		all = append(all, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nearest(all, vecs[0], limit), nil
}

// DeleteAll drops every chunk; used by the ingest job's rebuild mode.
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM carepaths`)
	return err
}

// nearest sorts candidates by descending cosine similarity to qvec, stably,
// and keeps the top limit.
func nearest(all []Candidate, qvec []float32, limit int) []Candidate {
	type scored struct {
		c   Candidate
		sim float64
	}
	ranked := make([]scored, len(all))
	for i, c := range all {
		ranked[i] = scored{c, Cosine(qvec, c.Embedding)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].sim > ranked[j].sim })
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	out := make([]Candidate, len(ranked))
	for i, r := range ranked {
		out[i] = r.c
	}
	return out
}
