// Package ingest produces the normalized documents the indexing pipeline
// consumes. Documents arrive either as a JSONL dump (one JSON object per
// line) or from a directory of markdown files. The pipeline requires doc IDs
// to be unique; sources here derive IDs that satisfy that precondition but
// the core never enforces it globally.
package ingest

import "strings"

// Document is a normalized input record. Immutable once created and
// identified by DocID.
type Document struct {
	DocID  string `json:"doc_id"`
	Title  string `json:"title"`
	Source string `json:"source"`
	Text   string `json:"text"`
	URL    string `json:"url,omitempty"`
}

// PreviewMaxChars is the default truncation length for one-line previews.
const PreviewMaxChars = 240

// SafePreview renders text as a single truncated line for terminal output.
// Newlines are escaped so long multi-line chunks stay on one line.
func SafePreview(text string, maxChars int) string {
	s := strings.ReplaceAll(text, "\n", "\\n")
	if len(s) <= maxChars {
		return s
	}
	return s[:maxChars] + "..."
}
