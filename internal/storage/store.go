// Package storage provides the paired vector index and metadata table that
// back retrieval. The two structures share positional row ids: row i of the
// flat index and row i of the metadata table always describe the same chunk.
// Store owns that invariant by exposing a single combined append operation
// and by persisting and loading the two files strictly as a pair.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Persisted file names inside an index directory. The pair must always be
// distributed and loaded together.
const (
	IndexFileName = "flat.index"
	MetaFileName  = "chunks_meta.db"
)

// Store combines the flat vector index with its row-aligned metadata table.
// Appends take the write lock; searches and row lookups take the read lock,
// so queries may run concurrently with each other but never with an
// in-progress append.
type Store struct {
	mu    sync.RWMutex
	index *FlatIndex
	meta  *MetaTable
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		index: NewFlatIndex(),
		meta:  NewMetaTable(),
	}
}

// Append extends the index and the metadata table together. The chunk at
// position i of chunks is described by the vector at position i of vectors;
// both receive the same new row id. A failed append leaves the store
// unchanged.
func (s *Store) Append(chunks []Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks, %d vectors", ErrRowCountMismatch, len(chunks), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Add validates every vector before appending any, so the index and the
	// table stay aligned even on error.
	if err := s.index.Add(vectors); err != nil {
		return err
	}
	s.meta.Append(chunks)
	return nil
}

// Len returns the number of rows in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Len()
}

// Dimension returns the established vector dimension, or 0 for an empty store.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Dimension()
}

// Columns returns the metadata schema.
func (s *Store) Columns() []string {
	return s.meta.Columns()
}

// HasColumn reports whether name is a metadata column.
func (s *Store) HasColumn(name string) bool {
	return s.meta.HasColumn(name)
}

// Search returns up to min(k, rows) hits ranked by descending inner product,
// ties broken by ascending row id.
func (s *Store) Search(query []float32, k int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Search(query, k)
}

// Row returns the metadata row for a search hit.
func (s *Store) Row(id int) (Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta.Get(id)
}

// Save persists the store into dir as an index file and a metadata file.
// The directory is created if needed.
func (s *Store) Save(dir string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	if err := s.index.Save(filepath.Join(dir, IndexFileName)); err != nil {
		return err
	}
	if err := s.meta.Save(filepath.Join(dir, MetaFileName)); err != nil {
		return err
	}
	return nil
}

// Load restores a store from dir. Loading one file without its matching pair
// corrupts retrieval silently, so the row counts of the two files are checked
// here and a mismatch fails with ErrAlignmentMismatch.
func Load(dir string) (*Store, error) {
	index, err := LoadFlatIndex(filepath.Join(dir, IndexFileName))
	if err != nil {
		return nil, err
	}
	meta, err := LoadMetaTable(filepath.Join(dir, MetaFileName))
	if err != nil {
		return nil, err
	}

	if index.Len() != meta.Len() {
		return nil, fmt.Errorf("%w: index has %d rows, metadata has %d rows",
			ErrAlignmentMismatch, index.Len(), meta.Len())
	}

	return &Store{index: index, meta: meta}, nil
}
