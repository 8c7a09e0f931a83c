package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestChunkMarkdown(t *testing.T) {
	md := "# Cough\n\nMost coughs are viral. They settle on their own.\n\nSeek review if it lasts three weeks.\n"
	got := chunkMarkdown(md)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3: %v", len(got), got)
	}
	if got[0] != "# Cough" {
		t.Errorf("chunk 0 = %q", got[0])
	}
	if got[1] != "Most coughs are viral. They settle on their own." {
		t.Errorf("chunk 1 = %q", got[1])
	}
}

func TestChunkMarkdown_DropsRepeats(t *testing.T) {
	md := "Same line.\n\nSame line.\n\nDifferent line."
	got := chunkMarkdown(md)
	if len(got) != 2 {
		t.Errorf("len = %d, want 2: %v", len(got), got)
	}
}

func TestPackSentences_SplitsAtLimit(t *testing.T) {
	long := strings.Repeat("word ", 80) + "end."
	text := long + " " + long
	got := packSentences(text)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, c := range got {
		if len(c) > maxChunkChars {
			t.Errorf("chunk exceeds limit: %d chars", len(c))
		}
	}
}

func TestPreviewText(t *testing.T) {
	if got := previewText("short", 90); got != "short" {
		t.Errorf("got %q", got)
	}
	long := strings.Repeat("é", 60)
	got := previewText(long, 91)
	if len(got) != 90 {
		t.Errorf("len = %d, want 90 (rune boundary below the limit)", len(got))
	}
	if !strings.HasPrefix(long, got) {
		t.Errorf("preview %q is not a prefix of the input", got)
	}
}

func TestBuildChunks_IDsAndTags(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("cough.md", "First block.\n\nSecond block.")
	write("unknown_topic.md", "Only block.")

	chunks, err := buildChunks(dir)
	if err != nil {
		t.Fatalf("buildChunks failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("len = %d, want 3", len(chunks))
	}
	if chunks[0].id != "cough-000" || chunks[1].id != "cough-001" {
		t.Errorf("ids = %q, %q", chunks[0].id, chunks[1].id)
	}
	if chunks[0].tags != "cough,upper_respiratory,self_care" {
		t.Errorf("tags = %q", chunks[0].tags)
	}
	// Unknown topics fall back to the topic itself as the only tag.
	if chunks[2].topic != "unknown_topic" || chunks[2].tags != "unknown_topic" {
		t.Errorf("fallback chunk = %+v", chunks[2])
	}
}
