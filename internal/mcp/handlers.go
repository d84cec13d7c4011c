package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/corpus-search/internal/retriever"
	"github.com/bull/corpus-search/internal/storage"
)

// makeSearchHandler creates the search_corpus tool handler. It wraps
// Retriever.Retrieve directly: embed the query, over-fetch candidates, walk
// them in rank order applying the dedupe rule, return up to k results.
func makeSearchHandler(r *retriever.Retriever) func(
	context.Context, *mcp.CallToolRequest, SearchCorpusInput,
) (*mcp.CallToolResult, SearchCorpusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchCorpusInput) (
		*mcp.CallToolResult, SearchCorpusOutput, error,
	) {
		queryID := uuid.NewString()
		slog.Info("search_corpus",
			"query_id", queryID,
			"k", input.K,
			"dedupe_field", input.DedupeField,
		)

		got, err := r.Retrieve(ctx, input.Query, retriever.Options{
			K:                   input.K,
			DedupeField:         input.DedupeField,
			CandidateMultiplier: input.CandidateMultiplier,
		})
		if err != nil {
			// Caller mistakes come back as tool output rather than protocol
			// failures so the client sees an actionable message.
			if errors.Is(err, retriever.ErrUnknownField) || errors.Is(err, retriever.ErrMissingIndex) {
				return nil, SearchCorpusOutput{
					Results: []SearchResult{},
					Message: err.Error(),
				}, nil
			}
			return nil, SearchCorpusOutput{}, fmt.Errorf("search failed: %w", err)
		}

		results := make([]SearchResult, 0, len(got.Results))
		for _, res := range got.Results {
			results = append(results, SearchResult{
				Rank:      res.Rank,
				Score:     res.Score,
				ChunkID:   res.Chunk.ChunkID,
				DocID:     res.Chunk.DocID,
				Title:     res.Chunk.Title,
				Source:    res.Chunk.Source,
				DedupeKey: res.Chunk.Field(got.DedupeField),
				Text:      res.Chunk.Text,
			})
		}

		output := SearchCorpusOutput{
			Results:   results,
			Shortfall: got.Shortfall,
		}
		if got.Shortfall > 0 {
			output.Message = fmt.Sprintf(
				"Returned %d of %d requested results: the top %d candidates held only %d distinct %q values. Increase candidate_multiplier for more diversity.",
				len(results), len(results)+got.Shortfall, got.Candidates, len(results), got.DedupeField)
		}

		slog.Info("search_corpus done",
			"query_id", queryID,
			"results", len(results),
			"shortfall", got.Shortfall,
		)
		return nil, output, nil
	}
}

// makeStatusHandler creates the corpus_status tool handler.
func makeStatusHandler(store *storage.Store) func(
	context.Context, *mcp.CallToolRequest, CorpusStatusInput,
) (*mcp.CallToolResult, CorpusStatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CorpusStatusInput) (
		*mcp.CallToolResult, CorpusStatusOutput, error,
	) {
		return nil, CorpusStatusOutput{
			TotalChunks: store.Len(),
			Dimension:   store.Dimension(),
			Columns:     store.Columns(),
		}, nil
	}
}
