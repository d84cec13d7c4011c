package chunker

import (
	"errors"
	"strings"
	"testing"
)

// TestNew_RejectsBadConfig verifies configurations that cannot make forward
// progress are rejected at construction time.
func TestNew_RejectsBadConfig(t *testing.T) {
	cases := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.chunkSize, tc.overlap)
			if err == nil {
				t.Fatalf("New(%d, %d): expected error, got nil", tc.chunkSize, tc.overlap)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

// TestChunk_WindowBoundaries verifies the documented boundary arithmetic:
// chunk_size=800, overlap=150 over 2000 characters yields starts 0, 650, 1300
// and a final window ending exactly at the text length.
func TestChunk_WindowBoundaries(t *testing.T) {
	c, err := New(800, 150)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	text := strings.Repeat("x", 2000)
	windows := c.Chunk(text)

	expectedStarts := []int{0, 650, 1300}
	if len(windows) != len(expectedStarts) {
		t.Fatalf("expected %d windows, got %d", len(expectedStarts), len(windows))
	}
	for i, start := range expectedStarts {
		if windows[i].Start != start {
			t.Errorf("window %d start: expected %d, got %d", i, start, windows[i].Start)
		}
	}
	last := windows[len(windows)-1]
	if last.End != 2000 {
		t.Errorf("final window end: expected 2000, got %d", last.End)
	}
}

// TestChunk_ShortDocument verifies the worked example from the indexing
// pipeline: "abcdefghij" with chunk_size=5, overlap=2.
func TestChunk_ShortDocument(t *testing.T) {
	c, err := New(5, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	windows := c.Chunk("abcdefghij")

	expected := []Window{
		{Start: 0, End: 5, Text: "abcde"},
		{Start: 3, End: 8, Text: "defgh"},
		{Start: 6, End: 10, Text: "ghij"},
	}
	if len(windows) != len(expected) {
		t.Fatalf("expected %d windows, got %d", len(expected), len(windows))
	}
	for i, want := range expected {
		if windows[i] != want {
			t.Errorf("window %d: expected %+v, got %+v", i, want, windows[i])
		}
	}
}

// TestChunk_Determinism verifies two calls over the same input produce
// identical windows. Chunk identifiers are derived from window order, so this
// property is load-bearing.
func TestChunk_Determinism(t *testing.T) {
	c, err := New(64, 16)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 40)
	first := c.Chunk(text)
	second := c.Chunk(text)

	if len(first) != len(second) {
		t.Fatalf("window counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("window %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// TestChunk_Coverage verifies windows cover the trimmed text with exactly the
// configured overlap between consecutive windows (except possibly the last).
func TestChunk_Coverage(t *testing.T) {
	const (
		chunkSize = 100
		overlap   = 30
	)
	c, err := New(chunkSize, overlap)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	text := strings.Repeat("abcdefghij", 77) // 770 chars, not a multiple of the stride
	windows := c.Chunk(text)

	if windows[0].Start != 0 {
		t.Errorf("first window must start at 0, got %d", windows[0].Start)
	}
	if windows[len(windows)-1].End != len(text) {
		t.Errorf("last window must end at %d, got %d", len(text), windows[len(windows)-1].End)
	}
	for i := 1; i < len(windows); i++ {
		prev, cur := windows[i-1], windows[i]
		if got := prev.End - cur.Start; got != overlap {
			t.Errorf("windows %d/%d overlap: expected %d, got %d", i-1, i, overlap, got)
		}
		if cur.Text != text[cur.Start:cur.End] {
			t.Errorf("window %d text does not match its offsets", i)
		}
	}
}

// TestChunk_TrimsWhitespace verifies offsets are relative to the trimmed text.
func TestChunk_TrimsWhitespace(t *testing.T) {
	c, err := New(5, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	windows := c.Chunk("   abcdefghij \n\t")
	if len(windows) == 0 {
		t.Fatal("expected windows for non-empty trimmed text")
	}
	if windows[0].Start != 0 || windows[0].Text != "abcde" {
		t.Errorf("expected first window [0,5)=abcde, got [%d,%d)=%q",
			windows[0].Start, windows[0].End, windows[0].Text)
	}
}

// TestChunk_EmptyText verifies whitespace-only input yields no windows.
func TestChunk_EmptyText(t *testing.T) {
	c, err := New(800, 150)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for _, text := range []string{"", "   ", "\n\t \n"} {
		if windows := c.Chunk(text); len(windows) != 0 {
			t.Errorf("Chunk(%q): expected no windows, got %d", text, len(windows))
		}
	}
}

// TestChunk_SingleWindow verifies text shorter than the chunk size produces
// one unpadded window.
func TestChunk_SingleWindow(t *testing.T) {
	c, err := New(800, 150)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	windows := c.Chunk("short text")
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0].Start != 0 || windows[0].End != len("short text") {
		t.Errorf("unexpected window bounds [%d,%d)", windows[0].Start, windows[0].End)
	}
}
