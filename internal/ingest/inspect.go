package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Default sampling parameters for Inspect.
const (
	DefaultInspectSample  = 200
	DefaultInspectPreview = 3
)

// Report summarizes a JSONL documents file: total record count, the union of
// keys seen in a sampled prefix, text-length statistics, and one-line
// previews of the first records.
type Report struct {
	Path     string
	Records  int
	Keys     []string // sorted key union over the sampled prefix
	TextSeen int      // sampled records that carried a "text" field
	AvgChars float64
	MinChars int
	MaxChars int
	Previews []string
}

// Inspect scans a JSONL file and builds a sanity-check report. Key and
// length statistics come from the first sampleForKeys records to keep large
// files cheap; the record count always covers the whole file.
func Inspect(path string, sampleForKeys, previewN int) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open documents file: %w", err)
	}
	defer f.Close()

	if sampleForKeys <= 0 {
		sampleForKeys = DefaultInspectSample
	}
	if previewN < 0 {
		previewN = 0
	}

	report := &Report{Path: path}
	keys := make(map[string]struct{})
	var totalChars int

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		report.Records++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if len(report.Previews) < previewN {
			report.Previews = append(report.Previews, SafePreview(line, PreviewMaxChars))
		}
		if lineNo > sampleForKeys {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d of %s: %w", lineNo, path, err)
		}
		for k := range obj {
			keys[k] = struct{}{}
		}
		if text, ok := obj["text"].(string); ok && text != "" {
			n := len(text)
			totalChars += n
			if report.TextSeen == 0 || n < report.MinChars {
				report.MinChars = n
			}
			if n > report.MaxChars {
				report.MaxChars = n
			}
			report.TextSeen++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read documents file: %w", err)
	}

	for k := range keys {
		report.Keys = append(report.Keys, k)
	}
	sort.Strings(report.Keys)
	if report.TextSeen > 0 {
		report.AvgChars = float64(totalChars) / float64(report.TextSeen)
	}

	return report, nil
}
