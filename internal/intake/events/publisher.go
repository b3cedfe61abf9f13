// Package events publishes case lifecycle events to the message broker.
// Publishing is best-effort: a broker outage is logged and the pipeline
// carries on.
package events

import (
	"context"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/pkg/logger"
	"github.com/munidigital/tramite-backend/pkg/messaging"
)

// publisher is the slice of messaging.Publisher the case publisher needs
type publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// CasePublisher emits case lifecycle events. A nil inner publisher disables
// publishing, which is how deployments without a broker run.
type CasePublisher struct {
	pub    publisher
	logger *logger.Logger
}

// NewCasePublisher wraps a messaging publisher. pub may be nil.
func NewCasePublisher(pub *messaging.Publisher, log *logger.Logger) *CasePublisher {
	cp := &CasePublisher{logger: log.WithComponent("case_events")}
	if pub != nil {
		cp.pub = pub
	}
	return cp
}

// CaseRegistered announces a newly registered case.
func (p *CasePublisher) CaseRegistered(ctx context.Context, rec *domain.CaseRecord, decision *domain.ClassificationDecision, degraded bool) {
	p.publish(ctx, messaging.EventCaseRegistered, messaging.CaseRegisteredEvent{
		CaseID:       rec.CaseID,
		CaseNumber:   rec.Number,
		DocumentCode: rec.Code,
		Category:     string(rec.Category),
		DocumentType: rec.DocumentType,
		Area:         decision.Area,
		Priority:     string(rec.Priority),
		Originator:   rec.Originator,
		Confidence:   decision.Confidence,
		ManualReview: decision.ManualReview,
		Degraded:     degraded,
	})
}

// CaseReferred announces a referral to another area.
func (p *CasePublisher) CaseReferred(ctx context.Context, rec *domain.CaseRecord) {
	p.publish(ctx, messaging.EventCaseReferred, messaging.CaseReferredEvent{
		CaseID:       rec.CaseID,
		Area:         rec.ReferredArea,
		Owner:        rec.ReferredOwner,
		ReferralType: rec.ReferralType,
	})
}

// CaseStatusChanged announces a status update.
func (p *CasePublisher) CaseStatusChanged(ctx context.Context, rec *domain.CaseRecord) {
	p.publish(ctx, messaging.EventCaseStatusChanged, messaging.CaseStatusChangedEvent{
		CaseID:    rec.CaseID,
		NewStatus: string(rec.Status),
	})
}

func (p *CasePublisher) publish(ctx context.Context, eventType string, data interface{}) {
	if p.pub == nil {
		p.logger.Debug().Str("event_type", eventType).Msg("event publishing disabled, skipping")
		return
	}
	if err := p.pub.Publish(ctx, eventType, data); err != nil {
		p.logger.Warn().
			Err(err).
			Str("event_type", eventType).
			Msg("failed to publish case event")
	}
}
