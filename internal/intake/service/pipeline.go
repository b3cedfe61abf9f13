// Package service orchestrates the intake pipeline: resolve the requester,
// normalize the file, classify it, register the case and answer back.
package service

import (
	"context"
	"time"

	"github.com/munidigital/tramite-backend/internal/intake/classifier"
	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/internal/intake/normalizer"
	"github.com/munidigital/tramite-backend/internal/intake/registrar"
	"github.com/munidigital/tramite-backend/internal/intake/transport"
	"github.com/munidigital/tramite-backend/internal/observability/metrics"
	apperrors "github.com/munidigital/tramite-backend/pkg/errors"
	"github.com/munidigital/tramite-backend/pkg/logger"
)

// Classifier produces a routing decision; the chain guarantees one
type Classifier interface {
	Classify(ctx context.Context, in classifier.Input) *domain.ClassificationDecision
}

// ProfileResolver resolves requester identities, never returning nil
type ProfileResolver interface {
	Resolve(ctx context.Context, key string) *domain.RequesterProfile
}

// CaseRegistrar persists cases, degrading instead of failing
type CaseRegistrar interface {
	Register(ctx context.Context, file domain.FileDescriptor, requester *domain.RequesterProfile, decision *domain.ClassificationDecision, note string) *registrar.Registration
}

// CaseEvents announces case lifecycle changes, best-effort
type CaseEvents interface {
	CaseRegistered(ctx context.Context, rec *domain.CaseRecord, decision *domain.ClassificationDecision, degraded bool)
	CaseReferred(ctx context.Context, rec *domain.CaseRecord)
	CaseStatusChanged(ctx context.Context, rec *domain.CaseRecord)
}

// Submission is one inbound document from the conversational channel
type Submission struct {
	RequesterKey string
	Attachment   domain.Attachment
	Kind         domain.MessageKind
	Note         string
}

// Result is the outcome of a successful submission
type Result struct {
	Record   *domain.CaseRecord            `json:"record"`
	Decision *domain.ClassificationDecision `json:"decision"`
	Degraded bool                          `json:"degraded"`
	Notices  []string                      `json:"notices"`
}

// Pipeline wires the intake stages together
type Pipeline struct {
	profiles    ProfileResolver
	normalizer  *normalizer.Normalizer
	classifier  Classifier
	registrar   CaseRegistrar
	events      CaseEvents
	messenger   transport.Messenger
	noticeDelay time.Duration
	logger      *logger.Logger
}

// NewPipeline creates the intake pipeline.
func NewPipeline(
	profiles ProfileResolver,
	norm *normalizer.Normalizer,
	cls Classifier,
	reg CaseRegistrar,
	ev CaseEvents,
	messenger transport.Messenger,
	noticeDelay time.Duration,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		profiles:    profiles,
		normalizer:  norm,
		classifier:  cls,
		registrar:   reg,
		events:      ev,
		messenger:   messenger,
		noticeDelay: noticeDelay,
		logger:      log.WithComponent("intake_pipeline"),
	}
}

// Submit runs one document through the pipeline. Unsupported files return an
// error the handler maps to 422; everything past that point degrades rather
// than fails, so a non-nil result always carries a case ID.
func (p *Pipeline) Submit(ctx context.Context, sub Submission) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Interface("panic", r).
				Str("requester_key", sub.RequesterKey).
				Msg("intake pipeline panicked")
			metrics.SubmissionsTotal.WithLabelValues("error").Inc()
			res = nil
			err = apperrors.Internal("document intake failed")
		}
	}()

	requester := p.profiles.Resolve(ctx, sub.RequesterKey)
	p.messenger.SendTyping(ctx, sub.RequesterKey)

	desc := p.normalizer.Normalize(sub.Attachment, sub.Kind)
	if !desc.Processable {
		reason := p.normalizer.RejectReason(desc)
		p.logger.Info().
			Str("requester_key", sub.RequesterKey).
			Str("file_name", desc.FileName).
			Str("reason", reason).
			Msg("submission rejected")
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		p.deliverNotices(sub.RequesterKey, []string{reason})
		return nil, apperrors.Unsupported(reason)
	}

	decision := p.classifier.Classify(ctx, classifier.Input{
		File:      desc,
		Requester: requester,
		Kind:      sub.Kind,
	})

	reg := p.registrar.Register(ctx, desc, requester, decision, sub.Note)
	p.events.CaseRegistered(ctx, reg.Record, decision, reg.Degraded)
	metrics.SubmissionsTotal.WithLabelValues("registered").Inc()

	notices := buildNotices(reg, decision, requester, desc)
	p.deliverNotices(sub.RequesterKey, notices)

	return &Result{
		Record:   reg.Record,
		Decision: decision,
		Degraded: reg.Degraded,
		Notices:  notices,
	}, nil
}

// deliverNotices sends the replies in order from a goroutine, pacing them so
// the conversation reads naturally. Delivery must not block the response.
func (p *Pipeline) deliverNotices(recipientKey string, notices []string) {
	go func() {
		for i, text := range notices {
			if i > 0 && p.noticeDelay > 0 {
				time.Sleep(p.noticeDelay)
			}
			if err := p.messenger.SendMessage(context.Background(), recipientKey, text); err != nil {
				p.logger.Warn().
					Err(err).
					Str("recipient", recipientKey).
					Msg("failed to deliver notice")
			}
		}
	}()
}
