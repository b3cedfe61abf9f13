// Package classifier decides how an inbound document is routed: its document
// type, responsible area, priority and turnaround. Strategies are tried in
// registration order and the first one to produce a decision wins; the last
// registered strategy must be infallible so classification as a whole never
// fails.
package classifier

import (
	"context"
	"fmt"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/internal/observability/metrics"
	"github.com/munidigital/tramite-backend/pkg/logger"
)

// Input carries everything a strategy may consult. Strategies must not
// mutate it.
type Input struct {
	File      domain.FileDescriptor
	Requester *domain.RequesterProfile
	Kind      domain.MessageKind
}

// Strategy produces a classification decision for one file, or an error to
// hand the input to the next strategy in the chain.
type Strategy interface {
	Name() string
	Classify(ctx context.Context, in Input) (*domain.ClassificationDecision, error)
}

// Chain runs strategies in order until one succeeds
type Chain struct {
	strategies []Strategy
	logger     *logger.Logger
}

// NewChain creates a chain over the given strategies. The caller is expected
// to register an infallible strategy last.
func NewChain(log *logger.Logger, strategies ...Strategy) *Chain {
	return &Chain{
		strategies: strategies,
		logger:     log.WithComponent("classifier"),
	}
}

// Classify runs the chain. Every failure is logged with its cause before the
// next strategy is tried. If all strategies fail the minimal decision is
// synthesized inline, so the returned decision is never nil.
func (c *Chain) Classify(ctx context.Context, in Input) *domain.ClassificationDecision {
	for _, s := range c.strategies {
		decision, err := c.tryStrategy(ctx, s, in)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Str("strategy", s.Name()).
				Str("file_name", in.File.FileName).
				Msg("classification strategy failed, trying next")
			continue
		}

		c.logger.Info().
			Str("strategy", s.Name()).
			Str("area", decision.Area).
			Str("priority", string(decision.Priority)).
			Float64("confidence", decision.Confidence).
			Bool("manual_review", decision.ManualReview).
			Msg("document classified")
		metrics.ClassificationsTotal.WithLabelValues(s.Name()).Inc()
		return decision
	}

	c.logger.Error().
		Str("file_name", in.File.FileName).
		Msg("all classification strategies failed, using minimal decision")
	metrics.ClassificationsTotal.WithLabelValues("minimal").Inc()
	return minimalDecision(in)
}

// tryStrategy isolates one strategy, converting panics into errors so a
// faulty strategy cannot take down the chain.
func (c *Chain) tryStrategy(ctx context.Context, s Strategy, in Input) (decision *domain.ClassificationDecision, err error) {
	defer func() {
		if r := recover(); r != nil {
			decision = nil
			err = fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()

	decision, err = s.Classify(ctx, in)
	if err != nil {
		return nil, err
	}
	if decision == nil {
		return nil, fmt.Errorf("strategy %s returned no decision", s.Name())
	}
	return decision, nil
}
