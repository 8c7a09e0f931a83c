package retrieval

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS carepaths (
    id        TEXT PRIMARY KEY,
    text      TEXT NOT NULL,
    metadata  JSONB NOT NULL DEFAULT '{}',
    embedding JSONB NOT NULL
);`

// PostgresStore is the shared-database variant of the vector store,
// selected when DATABASE_URL is set.  Ranking is the same in-process cosine
// scan as the sqlite store; only the persistence differs.
type PostgresStore struct {
	db    *sql.DB
	embed Embedder
}

// OpenPostgres connects to url, verifies the connection and applies the
// schema.
func OpenPostgres(ctx context.Context, url string, embed Embedder) (*PostgresStore, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate index: %w", err)
	}
	return &PostgresStore{db: db, embed: embed}, nil
}

// Close releases the underlying database handle.
func (s *PostgresStore) Close() error { return s.db.Close() }

// Add upserts document chunks with their embeddings.
func (s *PostgresStore) Add(ctx context.Context, docs []Candidate) error {
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
             VALUES ($1, $2, $3, $4)
             ON CONFLICT (id) DO UPDATE SET text = EXCLUDED.text,
                 metadata = EXCLUDED.metadata, embedding = EXCLUDED.embedding`,
			d.ID, d.Text, string(meta), string(vec),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Query embeds the query text and returns the limit nearest chunks by
// cosine similarity, embeddings included.
func (s *PostgresStore) Query(ctx context.Context, query string, limit int) ([]Candidate, error) {
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
			metaJSON []byte
			vecJSON  []byte
		)
		if err := rows.Scan(&c.ID, &c.Text, &metaJSON, &vecJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metaJSON, &c.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", c.ID, err)
		}
		if err := json.Unmarshal(vecJSON, &c.Embedding); err != nil {
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
func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM carepaths`)
	return err
}
