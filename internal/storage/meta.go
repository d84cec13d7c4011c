package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

// MetaTable is an append-only table of chunk metadata keyed by row position.
// It carries no row ids of its own: row i describes the same chunk as row i
// of the flat index. Not safe for concurrent use; Store provides locking.
type MetaTable struct {
	rows []Chunk
}

// NewMetaTable creates an empty metadata table.
func NewMetaTable() *MetaTable {
	return &MetaTable{}
}

// Len returns the number of rows in the table.
func (t *MetaTable) Len() int {
	return len(t.rows)
}

// Append adds rows in order. Matching vectors must be appended to the flat
// index in the same call path; Store.Append enforces the pairing.
func (t *MetaTable) Append(rows []Chunk) {
	t.rows = append(t.rows, rows...)
}

// Get returns the row at the given position.
func (t *MetaTable) Get(row int) (Chunk, error) {
	if row < 0 || row >= len(t.rows) {
		return Chunk{}, fmt.Errorf("%w: row %d, table has %d rows", ErrOutOfRange, row, len(t.rows))
	}
	return t.rows[row], nil
}

// Columns returns the closed metadata schema, in declaration order.
func (t *MetaTable) Columns() []string {
	cols := make([]string, len(metaColumns))
	copy(cols, metaColumns)
	return cols
}

// HasColumn reports whether name is part of the metadata schema.
func (t *MetaTable) HasColumn(name string) bool {
	for _, col := range metaColumns {
		if col == name {
			return true
		}
	}
	return false
}

const metaSchema = `
CREATE TABLE IF NOT EXISTS chunks (
	chunk_id    TEXT NOT NULL,
	doc_id      TEXT NOT NULL,
	source      TEXT NOT NULL,
	title       TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	char_start  INTEGER NOT NULL,
	char_end    INTEGER NOT NULL,
	text        TEXT NOT NULL
);
`

// Save writes the table to a SQLite file at path, replacing any previous
// contents. Rows are inserted in order so that rowid order reproduces row
// position on load.
func (t *MetaTable) Save(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open metadata file: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(metaSchema); err != nil {
		return fmt.Errorf("create metadata schema: %w", err)
	}
	if _, err := db.Exec("DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clear metadata table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin metadata write: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO chunks
		(chunk_id, doc_id, source, title, chunk_index, char_start, char_end, text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare metadata insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range t.rows {
		_, err := stmt.Exec(row.ChunkID, row.DocID, row.Source, row.Title,
			row.ChunkIndex, row.CharStart, row.CharEnd, row.Text)
		if err != nil {
			return fmt.Errorf("insert metadata row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit metadata write: %w", err)
	}
	return nil
}

// LoadMetaTable reads a table previously written by Save. Rows are read in
// rowid order, which reproduces the original row positions.
func LoadMetaTable(path string) (*MetaTable, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open metadata file: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT chunk_id, doc_id, source, title,
		chunk_index, char_start, char_end, text
		FROM chunks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("read metadata rows: %w", err)
	}
	defer rows.Close()

	t := NewMetaTable()
	for rows.Next() {
		var c Chunk
		err := rows.Scan(&c.ChunkID, &c.DocID, &c.Source, &c.Title,
			&c.ChunkIndex, &c.CharStart, &c.CharEnd, &c.Text)
		if err != nil {
			return nil, fmt.Errorf("scan metadata row %d: %w", len(t.rows), err)
		}
		t.rows = append(t.rows, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read metadata rows: %w", err)
	}

	return t, nil
}
