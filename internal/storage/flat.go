package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

// Flat index file format constants. The layout is a fixed header followed by
// row-major float32 vector data, all little-endian. Row id is positional and
// never stored explicitly, so row order in the file is load-bearing.
const (
	flatMagic   = "CSIX"
	flatVersion = uint32(1)
)

// Hit is a single search result: a positional row id and its exact inner
// product with the query.
type Hit struct {
	Row   int
	Score float32
}

// FlatIndex is an append-only, exact (brute-force) inner-product index over
// fixed-dimension vectors. For unit-normalized inputs inner product ranks by
// cosine similarity. The structure is not safe for concurrent use; Store
// provides the locking discipline.
//
// Exact search is deliberate: the retriever's tie-break guarantee depends on
// totally ordered, reproducible scores.
type FlatIndex struct {
	dim     int
	vectors [][]float32
}

// NewFlatIndex creates an empty index. The dimension is fixed by the first
// Add call.
func NewFlatIndex() *FlatIndex {
	return &FlatIndex{}
}

// Len returns the number of vectors in the index.
func (ix *FlatIndex) Len() int {
	return len(ix.vectors)
}

// Dimension returns the established vector dimension, or 0 before the first Add.
func (ix *FlatIndex) Dimension() int {
	return ix.dim
}

// Add appends vectors in order, assigning each the row id equal to the
// pre-append row count. All vectors are validated before any is appended, so
// a dimension error leaves the index unchanged.
func (ix *FlatIndex) Add(vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	dim := ix.dim
	if dim == 0 {
		dim = len(vectors[0])
		if dim == 0 {
			return fmt.Errorf("%w: empty vector", ErrDimensionMismatch)
		}
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(v), dim)
		}
	}

	ix.dim = dim
	ix.vectors = append(ix.vectors, vectors...)
	return nil
}

// Search returns up to min(k, rows) hits ranked by descending inner product
// with the query. Ties break by ascending row id so rankings are reproducible.
func (ix *FlatIndex) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("search k must be positive, got %d", k)
	}
	if len(ix.vectors) == 0 {
		return nil, nil
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(query), ix.dim)
	}

	hits := make([]Hit, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = Hit{Row: i, Score: dot(query, v)}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Row < hits[j].Row
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// dot computes the exact inner product of two equal-length vectors.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Save writes the index to path. The on-disk row order is exactly the
// in-memory row order.
func (ix *FlatIndex) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(flatMagic); err != nil {
		return fmt.Errorf("write index header: %w", err)
	}
	header := []uint32{flatVersion, uint32(ix.dim), uint32(len(ix.vectors))}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("write index header: %w", err)
		}
	}
	for _, vec := range ix.vectors {
		if err := binary.Write(w, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("write index vectors: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush index file: %w", err)
	}
	return f.Close()
}

// LoadFlatIndex reads an index previously written by Save, preserving row
// order exactly.
func LoadFlatIndex(path string) (*FlatIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	magic := make([]byte, len(flatMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("%w: short header", ErrCorruptIndex)
	}
	if string(magic) != flatMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorruptIndex, magic)
	}

	var version, dim, count uint32
	for _, dst := range []*uint32{&version, &dim, &count} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, fmt.Errorf("%w: short header", ErrCorruptIndex)
		}
	}
	if version != flatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptIndex, version)
	}
	if count > 0 && dim == 0 {
		return nil, fmt.Errorf("%w: zero dimension with %d rows", ErrCorruptIndex, count)
	}

	ix := &FlatIndex{dim: int(dim)}
	ix.vectors = make([][]float32, 0, count)
	for i := uint32(0); i < count; i++ {
		vec := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: truncated at row %d", ErrCorruptIndex, i)
			}
			return nil, fmt.Errorf("read index vectors: %w", err)
		}
		ix.vectors = append(ix.vectors, vec)
	}

	return ix, nil
}
