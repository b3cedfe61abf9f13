// Package registrar turns a classification decision into a persisted case.
// Registration never fails from the requester's point of view: when the row
// store is unreachable the case is kept as a temporary record and flagged
// for later synchronization.
package registrar

import (
	"context"
	"fmt"
	"time"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/internal/intake/repository"
	"github.com/munidigital/tramite-backend/internal/observability/metrics"
	"github.com/munidigital/tramite-backend/pkg/logger"
)

// pendingSyncNote marks degraded records so a later pass can find them
const pendingSyncNote = "Registro temporal, pendiente de sincronización"

// Registration is the outcome of registering one case
type Registration struct {
	Record   *domain.CaseRecord
	Degraded bool
}

// Registrar assigns case identities and persists records
type Registrar struct {
	repo   *repository.CaseRepository
	logger *logger.Logger
	now    func() time.Time
}

// New creates a registrar over the case repository.
func New(repo *repository.CaseRepository, log *logger.Logger) *Registrar {
	return &Registrar{
		repo:   repo,
		logger: log.WithComponent("registrar"),
		now:    time.Now,
	}
}

// Register assembles and persists the case record. requesterNote is the
// optional free-text message sent alongside the file. The returned
// registration always carries a usable record with its case ID; Degraded
// reports whether it actually reached the row store.
func (r *Registrar) Register(ctx context.Context, file domain.FileDescriptor, requester *domain.RequesterProfile, decision *domain.ClassificationDecision, requesterNote string) *Registration {
	now := r.now()
	rec := r.buildRecord(ctx, now, file, requester, decision, requesterNote)

	if err := r.repo.Append(ctx, rec); err != nil {
		r.logger.Error().
			Err(err).
			Str("case_id", rec.CaseID).
			Msg("case store unreachable, keeping temporary record")
		metrics.DegradedRegistrationsTotal.Inc()

		rec.Status = domain.StatusReceivedTemp
		if rec.Note != "" {
			rec.Note += " | "
		}
		rec.Note += pendingSyncNote
		return &Registration{Record: rec, Degraded: true}
	}

	r.logger.Info().
		Str("case_id", rec.CaseID).
		Str("code", rec.Code).
		Str("area", decision.Area).
		Str("priority", string(decision.Priority)).
		Msg("case registered")
	return &Registration{Record: rec}
}

func (r *Registrar) buildRecord(ctx context.Context, now time.Time, file domain.FileDescriptor, requester *domain.RequesterProfile, decision *domain.ClassificationDecision, requesterNote string) *domain.CaseRecord {
	seq := r.repo.NextSequence(ctx)

	// document codes prefix E for external cases and C for internal ones
	category := domain.CaseExternal
	codePrefix := "E"
	if requester.IsInternal() {
		category = domain.CaseInternal
		codePrefix = "C"
	}

	// the referred area is pre-filled only when the case leaves the
	// requester's own area; same-area cases wait for an explicit referral
	referredArea := ""
	if decision.Area != requester.Area {
		referredArea = decision.Area
	}

	note := requesterNote
	if decision.Observations != "" {
		if note != "" {
			note += " | "
		}
		note += decision.Observations
	}
	if decision.ManualReview {
		if note != "" {
			note += " | "
		}
		note += "Requiere revisión manual"
	}

	return &domain.CaseRecord{
		CaseID:           now.Format(domain.CaseIDLayout),
		Category:         category,
		Number:           seq,
		Code:             fmt.Sprintf("%s-%d", codePrefix, seq),
		Folios:           1,
		ReceivedAt:       now.Format(domain.DateTimeLayout),
		EmissionDate:     now.Format(domain.DateLayout),
		DocumentType:     decision.DocumentType,
		Originator:       requester.Name,
		OriginatorArea:   requester.Area,
		Subject:          decision.Subject,
		Priority:         decision.Priority,
		Status:           domain.StatusReceived,
		ReferredArea:     referredArea,
		OriginalFileName: file.FileName,
		Note:             note,
	}
}
