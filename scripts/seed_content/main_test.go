package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fieldnotes/internal/content"
)

func TestWriteSampleContentProducesValidDocuments(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	if err := writeSampleContent(root, now); err != nil {
		t.Fatalf("writeSampleContent failed: %v", err)
	}

	docs, err := content.Scan(root)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(docs) != 5 {
		t.Fatalf("expected 5 sample documents, got %d", len(docs))
	}
	for _, doc := range docs {
		if !doc.Valid() {
			t.Fatalf("sample %s is invalid: %v", doc.Path, doc.Problems)
		}
	}
}

func TestWriteSampleContentSkipsExistingFiles(t *testing.T) {
	root := t.TempDir()
	custom := "---\nlayout: page\ntitle: Mine\npermalink: /about/\n---\n手写的内容。\n"
	if err := os.WriteFile(filepath.Join(root, "about.md"), []byte(custom), 0o644); err != nil {
		t.Fatalf("failed to write existing file: %v", err)
	}

	if err := writeSampleContent(root, time.Now()); err != nil {
		t.Fatalf("writeSampleContent failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(root, "about.md"))
	if err != nil {
		t.Fatalf("failed to read about.md: %v", err)
	}
	if !strings.Contains(string(raw), "手写的内容") {
		t.Fatal("expected existing file to be left untouched")
	}
}
