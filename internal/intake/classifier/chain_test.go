package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/pkg/logger"
)

type stubStrategy struct {
	name     string
	decision *domain.ClassificationDecision
	err      error
	panics   bool
	calls    int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Classify(_ context.Context, _ Input) (*domain.ClassificationDecision, error) {
	s.calls++
	if s.panics {
		panic("strategy exploded")
	}
	return s.decision, s.err
}

func TestChain_FirstSuccessWins(t *testing.T) {
	want := &domain.ClassificationDecision{Area: domain.AreaObras, Priority: domain.PriorityMedium}
	first := &stubStrategy{name: "enhanced", decision: want}
	second := &stubStrategy{name: "rules", decision: &domain.ClassificationDecision{}}
	chain := NewChain(logger.Nop(), first, second)

	got := chain.Classify(context.Background(), pdfInput("x.pdf", domain.GuestProfile("c1")))

	assert.Equal(t, want, got)
	assert.Zero(t, second.calls, "later strategies must not run after a success")
}

func TestChain_FallsThroughOnError(t *testing.T) {
	want := &domain.ClassificationDecision{Area: domain.AreaMesaDePartes, Priority: domain.PriorityMedium}
	failing := &stubStrategy{name: "enhanced", err: errors.New("service unreachable")}
	chain := NewChain(logger.Nop(), failing, &stubStrategy{name: "rules", decision: want})

	got := chain.Classify(context.Background(), pdfInput("x.pdf", domain.GuestProfile("c1")))

	assert.Equal(t, want, got)
	assert.Equal(t, 1, failing.calls)
}

func TestChain_RecoversFromPanic(t *testing.T) {
	want := &domain.ClassificationDecision{Area: domain.AreaTesoreria, Priority: domain.PriorityHigh}
	chain := NewChain(logger.Nop(),
		&stubStrategy{name: "enhanced", panics: true},
		&stubStrategy{name: "rules", decision: want},
	)

	got := chain.Classify(context.Background(), pdfInput("x.pdf", domain.GuestProfile("c1")))

	assert.Equal(t, want, got)
}

func TestChain_NilDecisionTreatedAsFailure(t *testing.T) {
	want := &domain.ClassificationDecision{Area: domain.AreaObras}
	chain := NewChain(logger.Nop(),
		&stubStrategy{name: "enhanced"},
		&stubStrategy{name: "rules", decision: want},
	)

	got := chain.Classify(context.Background(), pdfInput("x.pdf", domain.GuestProfile("c1")))

	assert.Equal(t, want, got)
}

func TestChain_AllFailuresYieldMinimalDecision(t *testing.T) {
	chain := NewChain(logger.Nop(),
		&stubStrategy{name: "enhanced", err: errors.New("down")},
		&stubStrategy{name: "rules", panics: true},
	)

	got := chain.Classify(context.Background(), pdfInput("oficio.pdf", domain.GuestProfile("c1")))

	assert.NotNil(t, got)
	assert.True(t, got.ManualReview)
	assert.Equal(t, domain.PriorityMedium, got.Priority)
	assert.Equal(t, 0.3, got.Confidence)
}

func TestChain_RealStrategies_LLMFailureFallsBackToRules(t *testing.T) {
	enhanced := NewEnhanced(failingReasoner{}, domain.AreaMesaDePartes, logger.Nop())
	chain := NewChain(logger.Nop(),
		enhanced,
		NewRuleBased(domain.AreaMesaDePartes),
		NewMinimal(domain.AreaMesaDePartes),
	)

	got := chain.Classify(context.Background(), pdfInput("informe_mensual.pdf", internalRequester(domain.AreaObras)))

	assert.Equal(t, "Informe", got.DocumentType)
	assert.Equal(t, domain.AreaSecretariaGeneral, got.Area)
}

type failingReasoner struct{}

func (failingReasoner) Generate(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}
