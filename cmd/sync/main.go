// Package main provides the corpus-sync CLI: ingest documents, inspect a
// documents file, build the vector index, and run ad-hoc queries against it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bull/corpus-search/internal/chunker"
	"github.com/bull/corpus-search/internal/embedding"
	"github.com/bull/corpus-search/internal/indexer"
	"github.com/bull/corpus-search/internal/ingest"
	"github.com/bull/corpus-search/internal/retriever"
	"github.com/bull/corpus-search/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "corpus-sync",
	Short: "Corpus indexing and retrieval tool",
	Long: `CLI for building and querying a deduplicated semantic search index.

Pipeline: ingest documents -> chunk into overlapping character windows ->
embed -> append vectors and metadata as aligned rows -> query with a
diversity constraint (at most one result per dedupe-field value).

Environment variables:
  OPENAI_API_KEY   OpenAI API key for embeddings (index and query commands)
  CORPUS_INDEX_DIR Default index directory (default: data/index)`,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Normalize a markdown directory into a JSONL documents file",
	RunE:  runIngest,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Sanity-check a JSONL documents file",
	RunE:  runInspect,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Chunk, embed, and index a JSONL documents file",
	RunE:  runIndex,
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Retrieve top-k deduplicated results for a query",
	RunE:  runQuery,
}

func init() {
	ingestCmd.Flags().String("markdown-dir", "", "directory of markdown files to ingest (required)")
	ingestCmd.Flags().String("out", "data/processed/docs.jsonl", "output JSONL path")
	_ = ingestCmd.MarkFlagRequired("markdown-dir")

	inspectCmd.Flags().String("path", "data/processed/docs.jsonl", "JSONL file to inspect")
	inspectCmd.Flags().Int("preview", ingest.DefaultInspectPreview, "number of records to preview")
	inspectCmd.Flags().Int("sample", ingest.DefaultInspectSample, "records sampled for key/length stats")

	indexCmd.Flags().String("docs", "data/processed/docs.jsonl", "input JSONL documents file")
	indexCmd.Flags().String("out", defaultIndexDir(), "output index directory")
	indexCmd.Flags().Int("chunk-size", chunker.DefaultChunkSize, "characters per chunk window")
	indexCmd.Flags().Int("overlap", chunker.DefaultOverlap, "characters of overlap between windows")
	indexCmd.Flags().Int("batch-size", embedding.DefaultBatchSize, "texts per embedding request")
	indexCmd.Flags().Int("limit", 0, "index at most this many documents (0 = all)")

	queryCmd.Flags().String("index", defaultIndexDir(), "index directory to load")
	queryCmd.Flags().String("query", "", "query text (required)")
	queryCmd.Flags().Int("k", retriever.DefaultK, "results to return after deduplication")
	queryCmd.Flags().String("dedupe-field", retriever.DefaultDedupeField, "metadata column enforcing diversity")
	queryCmd.Flags().Int("candidate-multiplier", retriever.DefaultCandidateMultiplier, "fetch k*multiplier candidates before dedupe")
	_ = queryCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(ingestCmd, inspectCmd, indexCmd, queryCmd)
}

func main() {
	// Load .env if present (local development), ignore if missing.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("markdown-dir")
	out, _ := cmd.Flags().GetString("out")

	docs, err := ingest.LoadMarkdownDir(dir)
	if err != nil {
		return fmt.Errorf("load markdown: %w", err)
	}
	if err := ingest.WriteDocuments(out, docs); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}

	var total, minLen, maxLen int
	for i, doc := range docs {
		n := len(doc.Text)
		total += n
		if i == 0 || n < minLen {
			minLen = n
		}
		if n > maxLen {
			maxLen = n
		}
	}
	fmt.Printf("Wrote %d docs -> %s\n", len(docs), out)
	if len(docs) > 0 {
		fmt.Printf("Chars: avg=%.1f, min=%d, max=%d\n",
			float64(total)/float64(len(docs)), minLen, maxLen)
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("path")
	previewN, _ := cmd.Flags().GetInt("preview")
	sampleN, _ := cmd.Flags().GetInt("sample")

	report, err := ingest.Inspect(path, sampleN, previewN)
	if err != nil {
		return err
	}

	fmt.Printf("JSONL path: %s\n", report.Path)
	fmt.Printf("Total records: %d\n", report.Records)
	fmt.Println("Keys found (sampled):")
	for _, k := range report.Keys {
		fmt.Printf("  - %s\n", k)
	}
	if report.TextSeen > 0 {
		fmt.Printf("Text length (sampled %d records): avg=%.1f min=%d max=%d\n",
			report.TextSeen, report.AvgChars, report.MinChars, report.MaxChars)
	} else {
		fmt.Println("Text length: no 'text' field found in sampled records")
	}
	if len(report.Previews) > 0 {
		fmt.Println("Previews:")
		for i, p := range report.Previews {
			fmt.Printf("  [%d] %s\n", i+1, p)
		}
	}
	return nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	docsPath, _ := cmd.Flags().GetString("docs")
	outDir, _ := cmd.Flags().GetString("out")
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	overlap, _ := cmd.Flags().GetInt("overlap")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	limit, _ := cmd.Flags().GetInt("limit")

	start := time.Now()

	docs, err := ingest.ReadDocuments(docsPath)
	if err != nil {
		return err
	}
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	fmt.Printf("Loaded %d docs from %s\n", len(docs), docsPath)

	c, err := chunker.New(chunkSize, overlap)
	if err != nil {
		return err
	}

	client, err := embedding.NewClient()
	if err != nil {
		return fmt.Errorf("create embedding client: %w", err)
	}
	embedder := embedding.NewEmbedder(client, batchSize)

	store := storage.NewStore()
	pipeline := indexer.NewPipeline(c, embedder, store, slog.Default())

	result, err := pipeline.IndexAll(context.Background(), docs)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if err := store.Save(outDir); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	fmt.Println()
	fmt.Println("Index built!")
	fmt.Printf("  Documents: %d/%d\n", result.IndexedDocs, result.TotalDocs)
	fmt.Printf("  Chunks: %d\n", result.TotalChunks)
	fmt.Printf("  Avg chunk chars: %.1f\n", result.AvgChunkChars)
	fmt.Printf("  Dimension: %d\n", store.Dimension())
	fmt.Printf("  Saved to: %s\n", outDir)
	fmt.Printf("  Duration: %s\n", time.Since(start).Round(time.Second))

	if len(result.SkippedDocs) > 0 {
		fmt.Println()
		fmt.Println("Skipped documents:")
		for _, skipped := range result.SkippedDocs {
			fmt.Printf("  - %s: %s\n", skipped.DocID, skipped.Reason)
		}
	}
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	indexDir, _ := cmd.Flags().GetString("index")
	query, _ := cmd.Flags().GetString("query")
	k, _ := cmd.Flags().GetInt("k")
	dedupeField, _ := cmd.Flags().GetString("dedupe-field")
	multiplier, _ := cmd.Flags().GetInt("candidate-multiplier")

	store, err := storage.Load(indexDir)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	client, err := embedding.NewClient()
	if err != nil {
		return fmt.Errorf("create embedding client: %w", err)
	}
	embedder := embedding.NewEmbedder(client, 0)

	r := retriever.New(store, embedder, slog.Default())
	got, err := r.Retrieve(context.Background(), query, retriever.Options{
		K:                   k,
		DedupeField:         dedupeField,
		CandidateMultiplier: multiplier,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Query: %s\n", got.Query)
	fmt.Printf("Dedupe field: %s\n", got.DedupeField)
	fmt.Printf("Candidates fetched: %d\n", got.Candidates)
	fmt.Printf("Results after dedupe: %d\n", len(got.Results))
	fmt.Println("----")

	for _, res := range got.Results {
		fmt.Printf("[%d] score=%.4f chunk_id=%s doc_id=%s\n",
			res.Rank, res.Score, res.Chunk.ChunkID, res.Chunk.DocID)
		fmt.Printf("     title=%s\n", res.Chunk.Title)
		fmt.Printf("     dedupe_key(%s)=%s\n", got.DedupeField, res.Chunk.Field(got.DedupeField))
		fmt.Printf("     text=%s\n", ingest.SafePreview(res.Chunk.Text, ingest.PreviewMaxChars))
	}

	if got.Shortfall > 0 {
		fmt.Println("----")
		fmt.Printf("Note: %d fewer results than requested. The top %d candidates held only %d distinct %q values; raise --candidate-multiplier for more diversity.\n",
			got.Shortfall, got.Candidates, len(got.Results), got.DedupeField)
	}
	return nil
}

func defaultIndexDir() string {
	return getEnv("CORPUS_INDEX_DIR", "data/index")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
