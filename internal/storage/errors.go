package storage

import "errors"

var (
	// ErrDimensionMismatch indicates a vector whose length differs from the
	// dimension established by the first vector added to the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrOutOfRange indicates a metadata row lookup beyond the table bounds.
	ErrOutOfRange = errors.New("row id out of range")

	// ErrRowCountMismatch indicates an append where the number of metadata
	// rows and the number of vectors disagree.
	ErrRowCountMismatch = errors.New("chunk and vector counts differ")

	// ErrAlignmentMismatch indicates persisted index and metadata files whose
	// row counts disagree. The two files are only valid as a pair.
	ErrAlignmentMismatch = errors.New("index and metadata row counts differ")

	// ErrCorruptIndex indicates an index file that fails format validation.
	ErrCorruptIndex = errors.New("corrupt index file")
)
