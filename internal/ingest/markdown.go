package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// markdownSource is the source label attached to documents loaded from disk.
const markdownSource = "markdown"

// LoadMarkdownDir walks dir and returns one document per markdown file.
// Doc IDs are the slash-separated relative paths without the .md suffix,
// which are unique within the tree. Walk order is lexical, so output order
// is deterministic.
func LoadMarkdownDir(dir string) ([]Document, error) {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	var docs []Document
	fsys := os.DirFS(dir)
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}

		source, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		title := documentTitle(md, source)
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), ".md")
		}

		docs = append(docs, Document{
			DocID:  strings.TrimSuffix(path, ".md"),
			Title:  title,
			Source: markdownSource,
			Text:   string(source),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	return docs, nil
}

// documentTitle extracts the first top-level heading from markdown source.
// Returns "" when the document has no H1.
func documentTitle(md goldmark.Markdown, source []byte) string {
	doc := md.Parser().Parse(text.NewReader(source))

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(1),
		toc.Compact(true),
	)
	if err != nil || len(tree.Items) == 0 {
		return ""
	}

	return string(tree.Items[0].Title)
}
