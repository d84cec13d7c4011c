package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxLineBytes bounds a single JSONL record. Document texts are chunk-sized
// inputs, not whole books, so 16MiB is generous.
const maxLineBytes = 16 << 20

// ReadDocuments reads a JSONL file with one document object per line. Blank
// lines are skipped; malformed JSON fails with the offending line number.
// Records with an empty doc_id are rejected since every derived chunk ID
// would collide.
func ReadDocuments(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open documents file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var docs []Document
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var doc Document
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d of %s: %w", lineNo, path, err)
		}
		if doc.DocID == "" {
			return nil, fmt.Errorf("missing doc_id on line %d of %s", lineNo, path)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read documents file: %w", err)
	}

	return docs, nil
}

// WriteDocuments writes documents as JSONL, one object per line, creating
// parent directories as needed.
func WriteDocuments(path string, docs []Document) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create documents file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode document %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush documents file: %w", err)
	}
	return f.Close()
}
