// Package indexer orchestrates the build of a searchable corpus: documents
// are windowed by the chunker, embedded, and appended to the combined store
// one document at a time so the row-alignment invariant never spans a
// partially processed document.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bull/corpus-search/internal/chunker"
	"github.com/bull/corpus-search/internal/ingest"
	"github.com/bull/corpus-search/internal/storage"
)

// Embedder turns texts into fixed-dimension unit vectors, one per input text.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// IndexResult contains statistics about an indexing run.
type IndexResult struct {
	TotalDocs     int
	IndexedDocs   int
	TotalChunks   int
	AvgChunkChars float64
	Duration      time.Duration
	SkippedDocs   []SkippedDoc
}

// SkippedDoc records a document the pipeline could not index.
type SkippedDoc struct {
	DocID  string
	Reason string
}

// Pipeline builds the vector index and metadata table from documents.
type Pipeline struct {
	chunker  *chunker.Chunker
	embedder Embedder
	store    *storage.Store
	logger   *slog.Logger
}

// NewPipeline creates an indexing pipeline writing into store.
func NewPipeline(c *chunker.Chunker, embedder Embedder, store *storage.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		chunker:  c,
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// IndexAll chunks, embeds, and stores every document. Documents that fail to
// embed are skipped and reported, not fatal. Duplicate doc IDs violate the
// ingestion precondition; later occurrences are skipped with a warning so
// chunk IDs stay unique.
func (p *Pipeline) IndexAll(ctx context.Context, docs []ingest.Document) (*IndexResult, error) {
	start := time.Now()
	result := &IndexResult{TotalDocs: len(docs)}
	p.logger.Info("starting indexing",
		"docs", len(docs),
		"chunk_size", p.chunker.ChunkSize(),
		"overlap", p.chunker.Overlap(),
	)

	seen := make(map[string]struct{}, len(docs))
	var totalChars int

	for _, doc := range docs {
		if _, dup := seen[doc.DocID]; dup {
			p.logger.Warn("duplicate doc_id, skipping", "doc_id", doc.DocID)
			result.SkippedDocs = append(result.SkippedDocs, SkippedDoc{
				DocID:  doc.DocID,
				Reason: "duplicate doc_id",
			})
			continue
		}
		seen[doc.DocID] = struct{}{}

		chars, chunks, err := p.indexDocument(ctx, doc)
		if err != nil {
			p.logger.Warn("failed to index document", "doc_id", doc.DocID, "error", err)
			result.SkippedDocs = append(result.SkippedDocs, SkippedDoc{
				DocID:  doc.DocID,
				Reason: err.Error(),
			})
			continue
		}
		result.IndexedDocs++
		result.TotalChunks += chunks
		totalChars += chars
	}

	if result.TotalChunks > 0 {
		result.AvgChunkChars = float64(totalChars) / float64(result.TotalChunks)
	}
	result.Duration = time.Since(start)
	p.logger.Info("indexing complete",
		"indexed", result.IndexedDocs,
		"skipped", len(result.SkippedDocs),
		"chunks", result.TotalChunks,
		"duration", result.Duration,
	)

	return result, nil
}

// indexDocument windows one document and appends its rows and vectors to the
// store in a single combined operation. Returns the total window characters
// and window count.
func (p *Pipeline) indexDocument(ctx context.Context, doc ingest.Document) (chars, chunks int, err error) {
	windows := p.chunker.Chunk(doc.Text)
	if len(windows) == 0 {
		// A document whose trimmed text is empty yields zero chunks. Valid,
		// just nothing to index.
		p.logger.Debug("document produced no chunks", "doc_id", doc.DocID)
		return 0, 0, nil
	}

	texts := make([]string, len(windows))
	for i, w := range windows {
		texts[i] = w.Text
	}

	vectors, err := p.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return 0, 0, fmt.Errorf("embeddings: %w", err)
	}
	if len(vectors) != len(windows) {
		return 0, 0, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(windows))
	}

	rows := make([]storage.Chunk, len(windows))
	for i, w := range windows {
		rows[i] = storage.Chunk{
			ChunkID:    storage.ChunkID(doc.DocID, i),
			DocID:      doc.DocID,
			Source:     doc.Source,
			Title:      doc.Title,
			ChunkIndex: i,
			CharStart:  w.Start,
			CharEnd:    w.End,
			Text:       w.Text,
		}
		chars += len(w.Text)
	}

	if err := p.store.Append(rows, vectors); err != nil {
		return 0, 0, fmt.Errorf("store chunks: %w", err)
	}

	p.logger.Debug("indexed document", "doc_id", doc.DocID, "chunks", len(windows))
	return chars, len(windows), nil
}
