package rowstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory row store. It backs development setups and
// tests; rows live only for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][][]string

	// FailAppend and FailRead force the next calls to return the given
	// error. Used by tests to exercise degraded paths.
	FailAppend error
	FailRead   error
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][][]string)}
}

// Rows returns a copy of all rows of the table
func (s *MemoryStore) Rows(_ context.Context, table string) ([][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.FailRead != nil {
		return nil, s.FailRead
	}

	src := s.tables[table]
	out := make([][]string, len(src))
	for i, row := range src {
		cp := make([]string, len(row))
		copy(cp, row)
		out[i] = cp
	}
	return out, nil
}

// Append adds a row at the end of the table
func (s *MemoryStore) Append(_ context.Context, table string, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAppend != nil {
		return s.FailAppend
	}

	cp := make([]string, len(row))
	copy(cp, row)
	s.tables[table] = append(s.tables[table], cp)
	return nil
}

// Update overwrites the row at the given 1-based index
func (s *MemoryStore) Update(_ context.Context, table string, rowIndex int, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[table]
	if rowIndex < 1 || rowIndex > len(rows) {
		return ErrRowNotFound
	}

	cp := make([]string, len(row))
	copy(cp, row)
	rows[rowIndex-1] = cp
	return nil
}
