package service

import (
	"context"
	"strings"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/internal/intake/repository"
	apperrors "github.com/munidigital/tramite-backend/pkg/errors"
	"github.com/munidigital/tramite-backend/pkg/logger"
)

var validStatuses = map[domain.CaseStatus]bool{
	domain.StatusReceived:     true,
	domain.StatusReferred:     true,
	domain.StatusPending:      true,
	domain.StatusResolved:     true,
	domain.StatusInProgress:   true,
	domain.StatusFlagged:      true,
	domain.StatusReceivedTemp: true,
}

// DirectoryService exposes the registered cases: lookup, listing, status
// updates and referrals.
type DirectoryService struct {
	repo   *repository.CaseRepository
	events CaseEvents
	logger *logger.Logger
}

// NewDirectoryService creates the case directory service.
func NewDirectoryService(repo *repository.CaseRepository, ev CaseEvents, log *logger.Logger) *DirectoryService {
	return &DirectoryService{
		repo:   repo,
		events: ev,
		logger: log.WithComponent("case_directory"),
	}
}

// Get returns one case by its ID.
func (s *DirectoryService) Get(ctx context.Context, caseID string) (*domain.CaseRecord, error) {
	if !domain.CaseIDPattern.MatchString(caseID) {
		return nil, apperrors.BadRequest("invalid case id format")
	}
	rec, _, err := s.repo.FindByID(ctx, caseID)
	return rec, err
}

// List returns cases, optionally filtered by exact status and by area
// substring. Both filters empty lists everything.
func (s *DirectoryService) List(ctx context.Context, status, area string) []*domain.CaseRecord {
	switch {
	case status != "":
		return s.repo.ListByStatus(ctx, domain.CaseStatus(status))
	case area != "":
		return s.repo.ListByArea(ctx, area)
	default:
		return s.repo.List(ctx)
	}
}

// UpdateStatus sets a case's status and publishes the change.
func (s *DirectoryService) UpdateStatus(ctx context.Context, caseID string, status domain.CaseStatus, note string) (*domain.CaseRecord, error) {
	if !validStatuses[status] {
		return nil, apperrors.BadRequest("unknown case status: " + string(status))
	}

	rec, err := s.repo.UpdateStatus(ctx, caseID, status, note)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("case_id", caseID).
		Str("status", string(status)).
		Msg("case status updated")
	s.events.CaseStatusChanged(ctx, rec)
	return rec, nil
}

// Refer routes a case to another area and publishes the referral. The area
// must be one of the routable areas; matching is case-insensitive and the
// canonical spelling is persisted.
func (s *DirectoryService) Refer(ctx context.Context, caseID, area, owner, referralType string) (*domain.CaseRecord, error) {
	canonical, ok := canonicalArea(area)
	if !ok {
		return nil, apperrors.BadRequest("unknown area: " + area)
	}

	rec, err := s.repo.Refer(ctx, caseID, canonical, owner, referralType)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("case_id", caseID).
		Str("area", canonical).
		Msg("case referred")
	s.events.CaseReferred(ctx, rec)
	return rec, nil
}

// Stats aggregates the case table.
func (s *DirectoryService) Stats(ctx context.Context) *domain.CaseStats {
	return s.repo.Stats(ctx)
}

func canonicalArea(area string) (string, bool) {
	trimmed := strings.TrimSpace(area)
	for _, a := range domain.RoutableAreas() {
		if strings.EqualFold(a, trimmed) {
			return a, true
		}
	}
	return "", false
}
