package rowstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresStore persists rows in a single relational table, keeping the
// rows-of-strings contract: each logical table is a partition keyed by name
// and each row is a text[] of cells. Row indices follow insertion order.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects to the given database URL and ensures the
// backing table exists.
func NewPostgresStore(url string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("rowstore: connect postgres: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStoreWithDB wraps an existing connection. Used by tests.
func NewPostgresStoreWithDB(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) migrate() error {
	schema := `CREATE TABLE IF NOT EXISTS row_cells (
		table_name TEXT NOT NULL,
		row_idx    INTEGER NOT NULL,
		cells      TEXT[] NOT NULL,
		PRIMARY KEY (table_name, row_idx)
	)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("rowstore: migrate: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Rows returns all rows of the logical table in index order
func (s *PostgresStore) Rows(ctx context.Context, table string) ([][]string, error) {
	query := `SELECT cells FROM row_cells WHERE table_name = $1 ORDER BY row_idx`

	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("rowstore: query rows: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var cells pq.StringArray
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("rowstore: scan row: %w", err)
		}
		out = append(out, []string(cells))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rowstore: iterate rows: %w", err)
	}
	return out, nil
}

// Append inserts the row with the next index for the table
func (s *PostgresStore) Append(ctx context.Context, table string, row []string) error {
	query := `INSERT INTO row_cells (table_name, row_idx, cells)
		SELECT $1, COALESCE(MAX(row_idx), 0) + 1, $2 FROM row_cells WHERE table_name = $1`

	if _, err := s.db.ExecContext(ctx, query, table, pq.Array(row)); err != nil {
		return fmt.Errorf("rowstore: append row: %w", err)
	}
	return nil
}

// Update overwrites the row at the given 1-based index
func (s *PostgresStore) Update(ctx context.Context, table string, rowIndex int, row []string) error {
	query := `UPDATE row_cells SET cells = $3 WHERE table_name = $1 AND row_idx = $2`

	res, err := s.db.ExecContext(ctx, query, table, rowIndex, pq.Array(row))
	if err != nil {
		return fmt.Errorf("rowstore: update row: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rowstore: update row: %w", err)
	}
	if affected == 0 {
		return ErrRowNotFound
	}
	return nil
}
