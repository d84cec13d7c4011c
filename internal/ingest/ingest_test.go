package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocuments_WriteReadRoundTrip(t *testing.T) {
	docs := []Document{
		{DocID: "d1", Title: "First", Source: "test", Text: "Question: a?\nAnswer: b"},
		{DocID: "d2", Title: "Second", Source: "test", Text: "plain text", URL: "https://example.com/d2"},
	}

	path := filepath.Join(t.TempDir(), "docs.jsonl")
	require.NoError(t, WriteDocuments(path, docs))

	loaded, err := ReadDocuments(path)
	require.NoError(t, err)
	assert.Equal(t, docs, loaded)
}

func TestReadDocuments_MalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	content := `{"doc_id":"d1","title":"ok","source":"test","text":"fine"}
{not json}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ReadDocuments(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadDocuments_MissingDocID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	content := `{"title":"no id","source":"test","text":"x"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ReadDocuments(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doc_id")
}

func TestReadDocuments_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	content := "\n" + `{"doc_id":"d1","title":"t","source":"s","text":"x"}` + "\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	docs, err := ReadDocuments(path)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLoadMarkdownDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "guides"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guides", "install.md"),
		[]byte("# Installation Guide\n\nSteps here.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"),
		[]byte("No heading, just text.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"),
		[]byte("not markdown"), 0o644))

	docs, err := LoadMarkdownDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Walk order is lexical: guides/install before notes.
	assert.Equal(t, "guides/install", docs[0].DocID)
	assert.Equal(t, "Installation Guide", docs[0].Title, "title from first H1")
	assert.Equal(t, "markdown", docs[0].Source)

	assert.Equal(t, "notes", docs[1].DocID)
	assert.Equal(t, "notes", docs[1].Title, "filename fallback when no H1")
}

func TestInspect(t *testing.T) {
	docs := []Document{
		{DocID: "d1", Title: "First", Source: "test", Text: "0123456789"},
		{DocID: "d2", Title: "Second", Source: "test", Text: "01234"},
		{DocID: "d3", Title: "Third", Source: "test", Text: "012345678901234"},
	}
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	require.NoError(t, WriteDocuments(path, docs))

	report, err := Inspect(path, 0, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Records)
	assert.Equal(t, []string{"doc_id", "source", "text", "title"}, report.Keys)
	assert.Equal(t, 3, report.TextSeen)
	assert.Equal(t, 5, report.MinChars)
	assert.Equal(t, 15, report.MaxChars)
	assert.InDelta(t, 10.0, report.AvgChars, 0.001)
	assert.Len(t, report.Previews, 2)
}

func TestSafePreview(t *testing.T) {
	assert.Equal(t, "short", SafePreview("short", 10))
	assert.Equal(t, "one\\ntwo", SafePreview("one\ntwo", 10))

	long := SafePreview("aaaaaaaaaaaa", 5)
	assert.Equal(t, "aaaaa...", long)
}
