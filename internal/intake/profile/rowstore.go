package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/pkg/rowstore"
)

// Column layout of the profiles table
const (
	colKey = iota
	colName
	colArea
	colRole
	colAccess
	colEmail
	colPhone
	profileColumns
)

// RowStoreDirectory resolves requesters from the profiles table of the row
// store. Used in deployments without a standalone directory service.
type RowStoreDirectory struct {
	store rowstore.Store
	table string
}

// NewRowStoreDirectory creates a directory over the given profiles table.
func NewRowStoreDirectory(store rowstore.Store, table string) *RowStoreDirectory {
	return &RowStoreDirectory{store: store, table: table}
}

// Lookup scans the profiles table for the requester key. The first row is
// treated as a header when its key cell says so.
func (d *RowStoreDirectory) Lookup(ctx context.Context, key string) (*domain.RequesterProfile, error) {
	rows, err := d.store.Rows(ctx, d.table)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles table: %w", err)
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if i == 0 && strings.EqualFold(row[colKey], "key") {
			continue
		}
		if row[colKey] != key {
			continue
		}
		return profileFromRow(key, row), nil
	}
	return nil, ErrProfileNotFound
}

func profileFromRow(key string, row []string) *domain.RequesterProfile {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	return &domain.RequesterProfile{
		Key:    key,
		Name:   cell(colName),
		Area:   cell(colArea),
		Role:   cell(colRole),
		Access: parseAccess(cell(colAccess)),
		Email:  cell(colEmail),
		Phone:  cell(colPhone),
	}
}

// parseAccess tolerates unknown labels by treating them as regular users
func parseAccess(s string) domain.AccessLevel {
	switch domain.AccessLevel(strings.ToLower(s)) {
	case domain.AccessGuest:
		return domain.AccessGuest
	case domain.AccessAdmin:
		return domain.AccessAdmin
	case domain.AccessSuper:
		return domain.AccessSuper
	default:
		return domain.AccessUser
	}
}
