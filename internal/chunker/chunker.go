// Package chunker splits document text into overlapping fixed-size character windows.
package chunker

import (
	"errors"
	"fmt"
	"strings"
)

// Default chunking parameters. Chunking is character-based to keep boundaries
// deterministic across runs; chunk identifiers are derived from window order.
const (
	// DefaultChunkSize is the target number of characters per window.
	DefaultChunkSize = 800

	// DefaultOverlap is the number of characters repeated between consecutive
	// windows to preserve context across boundaries.
	DefaultOverlap = 150
)

// ErrInvalidConfig indicates a size/overlap combination the chunker rejects.
var ErrInvalidConfig = errors.New("invalid chunker configuration")

// Window is one contiguous character window into the trimmed document text.
// Start and End are offsets relative to the trimmed text, with Text == trimmed[Start:End].
type Window struct {
	Start int
	End   int
	Text  string
}

// Chunker produces overlapping character windows with fixed parameters.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a Chunker. An overlap greater than or equal to the chunk size
// would make zero or negative forward progress on every step, so that
// configuration is rejected here rather than looping forever later.
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", ErrInvalidConfig, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidConfig, overlap, chunkSize)
	}
	return &Chunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}, nil
}

// ChunkSize returns the configured window size in characters.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the configured overlap in characters.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits text into ordered windows. Leading and trailing whitespace is
// trimmed first and all offsets are relative to the trimmed text. Empty text
// after trimming yields no windows. The final window may be shorter than the
// chunk size; no padding is applied.
//
// For a fixed input the output is byte-for-byte identical on every call.
func (c *Chunker) Chunk(text string) []Window {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	n := len(text)
	// Pre-size for the common case; the last window adds at most one entry.
	windows := make([]Window, 0, n/(c.chunkSize-c.overlap)+1)

	start := 0
	for start < n {
		end := start + c.chunkSize
		if end > n {
			end = n
		}

		windows = append(windows, Window{
			Start: start,
			End:   end,
			Text:  text[start:end],
		})

		if end == n {
			break
		}

		start = end - c.overlap
		if start < 0 {
			start = 0
		}
	}

	return windows
}
