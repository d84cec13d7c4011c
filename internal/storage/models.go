package storage

import (
	"fmt"
	"strconv"
)

// Chunk is one row of the metadata table: the projection of a document window
// retained for display and filtering at query time. Rows are identified by
// their position, which must equal the position of the matching vector in the
// flat index.
type Chunk struct {
	ChunkID    string // Derived: "<doc_id>_c<chunk_index>"
	DocID      string // Foreign key to the source document
	Source     string // Dataset/source label, e.g. "markdown"
	Title      string // Document title carried for display
	ChunkIndex int    // Window order within the document (0, 1, 2...)
	CharStart  int    // Start offset in the trimmed document text
	CharEnd    int    // End offset in the trimmed document text
	Text       string // The window content itself
}

// ChunkID derives the deterministic chunk identifier for a document window.
// Uniqueness follows from doc ID uniqueness plus window order.
func ChunkID(docID string, index int) string {
	return fmt.Sprintf("%s_c%d", docID, index)
}

// metaColumns is the closed metadata schema. Dedupe fields are validated
// against this list rather than resolved by reflection.
var metaColumns = []string{
	"chunk_id",
	"doc_id",
	"source",
	"title",
	"chunk_index",
	"char_start",
	"char_end",
	"text",
}

// Field returns the string form of the named column. Unknown column names
// return the empty string; callers validate against Columns first.
func (c Chunk) Field(name string) string {
	switch name {
	case "chunk_id":
		return c.ChunkID
	case "doc_id":
		return c.DocID
	case "source":
		return c.Source
	case "title":
		return c.Title
	case "chunk_index":
		return strconv.Itoa(c.ChunkIndex)
	case "char_start":
		return strconv.Itoa(c.CharStart)
	case "char_end":
		return strconv.Itoa(c.CharEnd)
	case "text":
		return c.Text
	default:
		return ""
	}
}
