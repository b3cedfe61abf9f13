// Package rowstore provides the row-store capability the intake pipeline
// persists into: logical tables of string rows with read, append and
// in-place update operations. Every call is fallible and callers must be
// prepared to degrade; the store offers no transactional isolation and
// concurrent read-then-append sequences can race (last write wins).
package rowstore

import (
	"context"
	"errors"
)

// ErrRowNotFound is returned by Update when the row index does not exist.
var ErrRowNotFound = errors.New("rowstore: row not found")

// Store is the row-store collaborator contract. Row indices are 1-based,
// matching spreadsheet row numbering.
type Store interface {
	// Rows returns all rows of the given logical table.
	Rows(ctx context.Context, table string) ([][]string, error)

	// Append adds one row at the end of the table.
	Append(ctx context.Context, table string, row []string) error

	// Update overwrites the row at the given 1-based index.
	Update(ctx context.Context, table string, rowIndex int, row []string) error
}
