package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/corpus-search/internal/retriever"
	"github.com/bull/corpus-search/internal/storage"
)

type fixedEmbedder struct {
	vector []float32
}

func (f *fixedEmbedder) GenerateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = f.vector
	}
	return vectors, nil
}

func testStore(t *testing.T) *storage.Store {
	t.Helper()
	store := storage.NewStore()
	chunks := []storage.Chunk{
		{ChunkID: "d1_c0", DocID: "d1", Source: "test", Title: "Alpha", Text: "alpha text", CharEnd: 10},
		{ChunkID: "d1_c1", DocID: "d1", Source: "test", Title: "Alpha", ChunkIndex: 1, CharStart: 8, CharEnd: 18, Text: "more alpha"},
		{ChunkID: "d2_c0", DocID: "d2", Source: "test", Title: "Beta", Text: "beta text", CharEnd: 9},
	}
	vectors := [][]float32{
		{0.9, 0},
		{0.8, 0},
		{0.7, 0},
	}
	require.NoError(t, store.Append(chunks, vectors))
	return store
}

func TestSearchHandler_DedupedResults(t *testing.T) {
	store := testStore(t)
	r := retriever.New(store, &fixedEmbedder{vector: []float32{1, 0}}, nil)
	handler := makeSearchHandler(r)

	_, output, err := handler(context.Background(), nil, SearchCorpusInput{
		Query: "anything",
		K:     2,
	})
	require.NoError(t, err)

	require.Len(t, output.Results, 2)
	assert.Equal(t, "d1_c0", output.Results[0].ChunkID)
	assert.Equal(t, "d2_c0", output.Results[1].ChunkID)
	assert.Equal(t, "d1", output.Results[0].DedupeKey)
	assert.Zero(t, output.Shortfall)
}

func TestSearchHandler_ShortfallMessage(t *testing.T) {
	store := testStore(t)
	r := retriever.New(store, &fixedEmbedder{vector: []float32{1, 0}}, nil)
	handler := makeSearchHandler(r)

	_, output, err := handler(context.Background(), nil, SearchCorpusInput{
		Query: "anything",
		K:     5,
	})
	require.NoError(t, err)

	assert.Len(t, output.Results, 2, "only two distinct doc_ids exist")
	assert.Equal(t, 3, output.Shortfall)
	assert.NotEmpty(t, output.Message)
}

func TestSearchHandler_UnknownFieldIsToolOutput(t *testing.T) {
	store := testStore(t)
	r := retriever.New(store, &fixedEmbedder{vector: []float32{1, 0}}, nil)
	handler := makeSearchHandler(r)

	_, output, err := handler(context.Background(), nil, SearchCorpusInput{
		Query:       "anything",
		DedupeField: "bogus_column",
	})
	require.NoError(t, err, "caller mistakes surface as messages, not protocol errors")
	assert.Empty(t, output.Results)
	assert.Contains(t, output.Message, "bogus_column")
}

func TestStatusHandler(t *testing.T) {
	store := testStore(t)
	handler := makeStatusHandler(store)

	_, output, err := handler(context.Background(), nil, CorpusStatusInput{})
	require.NoError(t, err)

	assert.Equal(t, 3, output.TotalChunks)
	assert.Equal(t, 2, output.Dimension)
	assert.Contains(t, output.Columns, "doc_id")
	assert.Contains(t, output.Columns, "title")
}

func TestHealthHandler(t *testing.T) {
	empty := storage.NewStore()
	handler := NewHealthHandler(empty)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "empty", resp.Index)

	loaded := testStore(t)
	handler = NewHealthHandler(loaded)
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 3, resp.Rows)
}
