package classifier

import (
	"context"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
)

// Minimal is the last-resort strategy. It cannot fail; register it at the
// end of every chain.
type Minimal struct {
	defaultArea string
}

// NewMinimal creates the last-resort strategy routing to the given area.
func NewMinimal(defaultArea string) *Minimal {
	if defaultArea == "" {
		defaultArea = domain.AreaMesaDePartes
	}
	return &Minimal{defaultArea: defaultArea}
}

func (m *Minimal) Name() string { return "minimal" }

func (m *Minimal) Classify(_ context.Context, in Input) (*domain.ClassificationDecision, error) {
	d := minimalDecision(in)
	d.Area = m.defaultArea
	return d, nil
}

// minimalDecision builds the safe placeholder decision: medium priority,
// intake desk, flagged for manual review.
func minimalDecision(in Input) *domain.ClassificationDecision {
	subject := "Documento recibido"
	if in.File.FileName != "" {
		subject = "Documento recibido: " + in.File.FileName
	}
	return &domain.ClassificationDecision{
		DocumentType: "Documento",
		Area:         domain.AreaMesaDePartes,
		Priority:     domain.PriorityMedium,
		Turnaround:   TurnaroundFor(domain.PriorityMedium),
		Subject:      subject,
		Observations: "Clasificación mínima aplicada. Requiere revisión de Mesa de Partes.",
		ManualReview: true,
		Confidence:   0.3,
	}
}
