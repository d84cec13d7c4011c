// Package mcp exposes corpus retrieval over the Model Context Protocol.
package mcp

// SearchCorpusInput defines the input parameters for the search_corpus tool.
type SearchCorpusInput struct {
	// Query is the text to embed and search for.
	Query string `json:"query" jsonschema:"required,description=The query text to search the corpus with"`
	// K is the number of results wanted after deduplication.
	K int `json:"k,omitempty" jsonschema:"minimum=1,maximum=50,default=5,description=Number of results to return after deduplication"`
	// DedupeField is the metadata column enforcing result diversity.
	DedupeField string `json:"dedupe_field,omitempty" jsonschema:"default=doc_id,description=Metadata column used for deduplication (e.g. doc_id or title)"`
	// CandidateMultiplier is the over-fetch factor applied before deduplication.
	CandidateMultiplier int `json:"candidate_multiplier,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Fetch k*multiplier candidates before deduplication"`
}

// SearchCorpusOutput contains the deduplicated search results.
type SearchCorpusOutput struct {
	// Results is the ranked result list; dedupe-field values are pairwise distinct.
	Results []SearchResult `json:"results"`
	// Shortfall is how many results short of k the answer is. Non-zero when
	// the candidate pool did not contain k distinct dedupe keys.
	Shortfall int `json:"shortfall,omitempty"`
	// Message provides informational context (e.g. shortfall explanation).
	Message string `json:"message,omitempty"`
}

// SearchResult is a single retrieval result.
type SearchResult struct {
	// Rank is the 1-based position in the final ranking.
	Rank int `json:"rank"`
	// Score is the exact inner product between query and chunk embeddings.
	Score float32 `json:"score"`
	// ChunkID identifies the chunk, e.g. "guides/install_c2".
	ChunkID string `json:"chunk_id"`
	// DocID identifies the source document.
	DocID string `json:"doc_id"`
	// Title is the source document title.
	Title string `json:"title"`
	// Source is the dataset/source label.
	Source string `json:"source"`
	// DedupeKey is the value of the dedupe field for this result.
	DedupeKey string `json:"dedupe_key"`
	// Text is the chunk content.
	Text string `json:"text"`
}

// CorpusStatusInput defines the input for the corpus_status tool.
// The tool takes no parameters.
type CorpusStatusInput struct{}

// CorpusStatusOutput describes the loaded index.
type CorpusStatusOutput struct {
	// TotalChunks is the number of rows in the index/metadata pair.
	TotalChunks int `json:"total_chunks"`
	// Dimension is the embedding vector size.
	Dimension int `json:"dimension"`
	// Columns is the metadata schema; any of these can be a dedupe field.
	Columns []string `json:"columns"`
}
