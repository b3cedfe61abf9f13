package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
	apperrors "github.com/munidigital/tramite-backend/pkg/errors"
	"github.com/munidigital/tramite-backend/pkg/logger"
	"github.com/munidigital/tramite-backend/pkg/rowstore"
)

// CaseRepository stores and queries case records in the cases table
type CaseRepository struct {
	store  rowstore.Store
	table  string
	logger *logger.Logger
	now    func() time.Time
}

// NewCaseRepository creates a repository over the given cases table.
func NewCaseRepository(store rowstore.Store, table string, log *logger.Logger) *CaseRepository {
	return &CaseRepository{
		store:  store,
		table:  table,
		logger: log.WithComponent("case_repository"),
		now:    time.Now,
	}
}

// Append persists a new case record at the end of the table.
func (r *CaseRepository) Append(ctx context.Context, rec *domain.CaseRecord) error {
	if err := r.store.Append(ctx, r.table, rowFromRecord(rec)); err != nil {
		return fmt.Errorf("failed to append case row: %w", err)
	}
	return nil
}

// NextSequence returns the 1-based sequence number for the next case: the
// current row count plus one. A failed read degrades to 1 so registration
// can still proceed; the sequence is informational, the case ID is the key.
func (r *CaseRepository) NextSequence(ctx context.Context) int {
	rows, err := r.store.Rows(ctx, r.table)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to count case rows, using sequence 1")
		return 1
	}
	return len(rows) + 1
}

// FindByID locates a case by scanning every cell for the case ID as a
// substring, matching how IDs get pasted into hand-edited sheets. Returns
// the record and its 1-based row index.
func (r *CaseRepository) FindByID(ctx context.Context, caseID string) (*domain.CaseRecord, int, error) {
	rows, err := r.store.Rows(ctx, r.table)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "STORE_UNAVAILABLE", "case store unreachable", 503)
	}

	for i, row := range rows {
		for _, cell := range row {
			if strings.Contains(cell, caseID) {
				rec := recordFromRow(row)
				if rec.CaseID == "" {
					rec.CaseID = caseID
				}
				return rec, i + 1, nil
			}
		}
	}
	return nil, 0, apperrors.NotFound("case " + caseID)
}

// ListByStatus returns all cases whose status matches exactly. Read
// failures degrade to an empty list.
func (r *CaseRepository) ListByStatus(ctx context.Context, status domain.CaseStatus) []*domain.CaseRecord {
	return r.scan(ctx, func(rec *domain.CaseRecord) bool {
		return rec.Status == status
	})
}

// ListByArea returns cases whose originator or referred area contains the
// given text, case-insensitively.
func (r *CaseRepository) ListByArea(ctx context.Context, area string) []*domain.CaseRecord {
	needle := strings.ToLower(area)
	return r.scan(ctx, func(rec *domain.CaseRecord) bool {
		return strings.Contains(strings.ToLower(rec.OriginatorArea), needle) ||
			strings.Contains(strings.ToLower(rec.ReferredArea), needle)
	})
}

// List returns every case in the table.
func (r *CaseRepository) List(ctx context.Context) []*domain.CaseRecord {
	return r.scan(ctx, func(*domain.CaseRecord) bool { return true })
}

func (r *CaseRepository) scan(ctx context.Context, keep func(*domain.CaseRecord) bool) []*domain.CaseRecord {
	rows, err := r.store.Rows(ctx, r.table)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to read case rows, returning empty list")
		return nil
	}

	var out []*domain.CaseRecord
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		rec := recordFromRow(row)
		if rec.CaseID == "" {
			continue
		}
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// UpdateStatus sets the status of a case, optionally appending a note.
func (r *CaseRepository) UpdateStatus(ctx context.Context, caseID string, status domain.CaseStatus, note string) (*domain.CaseRecord, error) {
	rec, rowIndex, err := r.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	rec.Status = status
	if note != "" {
		if rec.Note != "" {
			rec.Note += " | "
		}
		rec.Note += note
	}

	if err := r.store.Update(ctx, r.table, rowIndex, rowFromRecord(rec)); err != nil {
		return nil, fmt.Errorf("failed to update case %s: %w", caseID, err)
	}
	return rec, nil
}

// Refer routes a case to another area, marking it as referred.
func (r *CaseRepository) Refer(ctx context.Context, caseID, area, owner, referralType string) (*domain.CaseRecord, error) {
	rec, rowIndex, err := r.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	rec.Status = domain.StatusReferred
	rec.ReferredArea = area
	rec.ReferredOwner = owner
	if referralType != "" {
		rec.ReferralType = referralType
	}

	if err := r.store.Update(ctx, r.table, rowIndex, rowFromRecord(rec)); err != nil {
		return nil, fmt.Errorf("failed to refer case %s: %w", caseID, err)
	}
	return rec, nil
}

// Stats aggregates the whole table in a single scan.
func (r *CaseRepository) Stats(ctx context.Context) *domain.CaseStats {
	stats := &domain.CaseStats{
		ByStatus:   make(map[domain.CaseStatus]int),
		ByPriority: make(map[domain.Priority]int),
		ByCategory: make(map[domain.CaseCategory]int),
	}

	today := r.now().Format(domain.DateLayout)
	for _, rec := range r.List(ctx) {
		stats.Total++
		if strings.HasPrefix(rec.ReceivedAt, today) {
			stats.Today++
		}
		stats.ByStatus[rec.Status]++
		stats.ByPriority[rec.Priority]++
		stats.ByCategory[rec.Category]++
	}
	return stats
}
