// Package retriever answers nearest-neighbor queries with a diversity
// constraint: at most one result per distinct value of a chosen metadata
// field. Diversity is enforced by over-fetching candidates from the exact
// index and filtering them in rank order; the filter only ever removes
// candidates, it never re-ranks them.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bull/corpus-search/internal/storage"
)

var (
	// ErrMissingIndex indicates a query issued before any index exists.
	ErrMissingIndex = errors.New("no index loaded")

	// ErrUnknownField indicates a dedupe field absent from the metadata schema.
	ErrUnknownField = errors.New("unknown dedupe field")
)

// Query defaults, matching the sync CLI's flag defaults.
const (
	DefaultK                   = 5
	DefaultDedupeField         = "doc_id"
	DefaultCandidateMultiplier = 5
)

// Embedder turns texts into fixed-dimension unit vectors. Normalization is
// the provider's contract and is not re-verified here.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Options control a single retrieval. Zero values select the defaults.
type Options struct {
	// K is the number of results wanted after deduplication.
	K int
	// DedupeField is the metadata column whose values must be pairwise
	// distinct across the returned results.
	DedupeField string
	// CandidateMultiplier is the over-fetch factor: K*CandidateMultiplier
	// candidates are pulled from the index before deduplication.
	CandidateMultiplier int
}

// withDefaults fills in zero-valued options.
func (o Options) withDefaults() Options {
	if o.K <= 0 {
		o.K = DefaultK
	}
	if o.DedupeField == "" {
		o.DedupeField = DefaultDedupeField
	}
	if o.CandidateMultiplier <= 0 {
		o.CandidateMultiplier = DefaultCandidateMultiplier
	}
	return o
}

// Result is one accepted retrieval result.
type Result struct {
	Rank  int     // 1-based position in the final ranking
	Row   int     // positional row id in the store
	Score float32 // exact inner product with the query vector
	Chunk storage.Chunk
}

// Retrieval is the outcome of one query. Fewer than K results is a reported
// shortfall, not an error: it means the candidate pool did not contain K
// distinct dedupe keys.
type Retrieval struct {
	Query       string
	DedupeField string
	Candidates  int // candidates requested from the index
	Shortfall   int // how many results short of K the answer is
	Results     []Result
}

// Retriever composes the embedding provider with the combined store. It holds
// read-only access to the store; queries never mutate it.
type Retriever struct {
	store    *storage.Store
	embedder Embedder
	logger   *slog.Logger
}

// New creates a Retriever over store.
func New(store *storage.Store, embedder Embedder, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// Retrieve embeds queryText, over-fetches candidates, and accepts them in
// rank order subject to the diversity constraint. The returned results are in
// acceptance order, which is exactly the index's rank order.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, opts Options) (*Retrieval, error) {
	opts = opts.withDefaults()

	if r.store == nil || r.store.Len() == 0 {
		return nil, fmt.Errorf("%w: build or load an index before querying", ErrMissingIndex)
	}
	if !r.store.HasColumn(opts.DedupeField) {
		return nil, fmt.Errorf("%w: %q not in metadata columns (%s)",
			ErrUnknownField, opts.DedupeField, strings.Join(r.store.Columns(), ", "))
	}

	vectors, err := r.embedder.GenerateEmbeddings(ctx, []string{queryText})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVec := vectors[0]

	kCandidates := opts.K * opts.CandidateMultiplier
	if kCandidates < opts.K {
		kCandidates = opts.K
	}

	hits, err := r.store.Search(queryVec, kCandidates)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	retrieval := &Retrieval{
		Query:       queryText,
		DedupeField: opts.DedupeField,
		Candidates:  kCandidates,
	}

	// Walk hits in the order returned. Rank order is the tie-break
	// authority; re-sorting here would break reproducibility.
	seen := make(map[string]struct{}, opts.K)
	for _, hit := range hits {
		if hit.Row < 0 {
			// Sentinel "no neighbor" marker from an underfilled index.
			continue
		}

		chunk, err := r.store.Row(hit.Row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", hit.Row, err)
		}

		key := chunk.Field(opts.DedupeField)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		retrieval.Results = append(retrieval.Results, Result{
			Rank:  len(retrieval.Results) + 1,
			Row:   hit.Row,
			Score: hit.Score,
			Chunk: chunk,
		})
		if len(retrieval.Results) >= opts.K {
			break
		}
	}

	if len(retrieval.Results) < opts.K {
		retrieval.Shortfall = opts.K - len(retrieval.Results)
	}

	r.logger.Debug("retrieval complete",
		"dedupe_field", opts.DedupeField,
		"candidates", kCandidates,
		"results", len(retrieval.Results),
		"shortfall", retrieval.Shortfall,
	)

	return retrieval, nil
}
