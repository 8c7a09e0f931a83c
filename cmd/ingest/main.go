// Command ingest loads care_paths/*.md into the retrieval index:
// markdown -> sentence-packed chunks -> embeddings -> vector store.
//
// Usage:
//
//	ingest --rebuild
//	ingest --dry-run
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"triage-assistant/internal/config"
	"triage-assistant/internal/retrieval"
)

// topicTags maps a care-path topic to its comma-joined tag string.
// Metadata values must stay scalar, so tags are never a list.
var topicTags = map[string]string{
	"cough":            "cough,upper_respiratory,self_care",
	"sore_throat":      "sore_throat,upper_respiratory,self_care",
	"headache":         "headache,neurologic,self_care",
	"abdominal_pain":   "abdominal,gi,triage",
	"urinary_symptoms": "urinary,dysuria,uti",
}

const (
	maxChunkChars = 700
	embedBatch    = 64
)

type chunk struct {
	id     string
	text   string
	source string
	topic  string
	index  int
	tags   string
}

func main() {
	rebuild := flag.Bool("rebuild", false, "drop and rebuild the index")
	dryRun := flag.Bool("dry-run", false, "show planned chunks and exit")
	dir := flag.String("dir", "care_paths", "directory of care-path markdown files")
	flag.Parse()

	chunks, err := buildChunks(*dir)
	if err != nil {
		log.Fatalf("failed to build chunks: %v", err)
	}
	fmt.Printf("Found %d chunks from %s\n", len(chunks), *dir)

	if *dryRun {
		for i, c := range chunks {
			if i >= 6 {
				fmt.Printf("... %d more\n", len(chunks)-6)
				break
			}
			fmt.Printf("- %s [%s] tags=%s :: %q...\n", c.id, c.topic, c.tags, previewText(c.text, 90))
		}
		return
	}

	cfg := config.Load()
	if cfg.OpenAIKey == "" {
		log.Fatal("OPENAI_API_KEY must be set to embed chunks")
	}
	embedder := retrieval.NewOpenAIEmbedder(openai.NewClient(cfg.OpenAIKey), cfg.EmbedModel)

	ctx := context.Background()
	store, cleanup, err := openStore(ctx, cfg, embedder)
	if err != nil {
		log.Fatalf("failed to open index: %v", err)
	}
	defer cleanup()

	if *rebuild {
		if err := store.DeleteAll(ctx); err != nil {
			log.Fatalf("failed to clear index: %v", err)
		}
		fmt.Println("Cleared existing index")
	}

	if err := ingest(ctx, store, embedder, chunks); err != nil {
		log.Fatalf("ingest failed: %v", err)
	}
	fmt.Printf("Ingested %d chunks\n", len(chunks))
}

// rebuildable is the store surface the ingest job needs.
type rebuildable interface {
	retrieval.Store
	DeleteAll(ctx context.Context) error
}

func openStore(ctx context.Context, cfg config.Config, embedder retrieval.Embedder) (rebuildable, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := retrieval.OpenPostgres(ctx, cfg.DatabaseURL, embedder)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { pg.Close() }, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.IndexPath), 0o755); err != nil {
		return nil, nil, err
	}
	lite, err := retrieval.OpenSQLite(ctx, cfg.IndexPath, embedder)
	if err != nil {
		return nil, nil, err
	}
	return lite, func() { lite.Close() }, nil
}

// ingest embeds chunks in batches and upserts them with their metadata.
func ingest(ctx context.Context, store retrieval.Store, embedder retrieval.Embedder, chunks []chunk) error {
	for from := 0; from < len(chunks); from += embedBatch {
		to := from + embedBatch
		if to > len(chunks) {
			to = len(chunks)
		}
		batch := chunks[from:to]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.text
		}
		vecs, err := embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}

		docs := make([]retrieval.Candidate, len(batch))
		for i, c := range batch {
			docs[i] = retrieval.Candidate{
				ID:   c.id,
				Text: c.text,
				Metadata: map[string]string{
					"topic":       c.topic,
					"source":      c.source,
					"chunk_index": fmt.Sprintf("%d", c.index),
					"tags":        c.tags,
				},
				Embedding: vecs[i],
			}
		}
		if err := store.Add(ctx, docs); err != nil {
			return fmt.Errorf("store batch: %w", err)
		}
	}
	return nil
}

// buildChunks reads every markdown file under dir and chunks it with
// deterministic ids <topic>-NNN.
func buildChunks(dir string) ([]chunk, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var chunks []chunk
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		topic := strings.ToLower(strings.TrimSuffix(filepath.Base(path), ".md"))
		tags, ok := topicTags[topic]
		if !ok {
			tags = topic
		}
		for i, text := range chunkMarkdown(string(data)) {
			chunks = append(chunks, chunk{
				id:     fmt.Sprintf("%s-%03d", topic, i),
				text:   text,
				source: path,
				topic:  topic,
				index:  i,
				tags:   tags,
			})
		}
	}
	return chunks, nil
}

var (
	blockSplitRe    = regexp.MustCompile(`\n\s*\n`)
	sentenceSplitRe = regexp.MustCompile(`(?:[.!?])\s+`)
)

// chunkMarkdown splits the document into blank-line blocks, packs each
// block's sentences into ~maxChunkChars chunks and drops trivial repeats.
func chunkMarkdown(md string) []string {
	var all []string
	for _, block := range blockSplitRe.Split(strings.TrimSpace(md), -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		all = append(all, packSentences(block)...)
	}
	seen := make(map[string]bool, len(all))
	uniq := all[:0]
	for _, c := range all {
		if seen[c] {
			continue
		}
		seen[c] = true
		uniq = append(uniq, c)
	}
	return uniq
}

// previewText cuts s to at most n bytes without splitting a rune.
func previewText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// packSentences joins consecutive sentences until the next one would push a
// chunk past maxChunkChars.
func packSentences(text string) []string {
	var sents []string
	rest := text
	for {
		loc := sentenceSplitRe.FindStringIndex(rest)
		if loc == nil {
			if s := strings.TrimSpace(rest); s != "" {
				sents = append(sents, s)
			}
			break
		}
		if s := strings.TrimSpace(rest[:loc[0]+1]); s != "" {
			sents = append(sents, s)
		}
		rest = rest[loc[1]:]
	}

	var chunks []string
	var buf string
	for _, s := range sents {
		switch {
		case buf == "":
			buf = s
		case len(buf)+1+len(s) <= maxChunkChars:
			buf = buf + " " + s
		default:
			chunks = append(chunks, buf)
			buf = s
		}
	}
	if buf != "" {
		chunks = append(chunks, buf)
	}
	return chunks
}
