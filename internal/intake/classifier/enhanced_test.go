package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/pkg/logger"
)

type fakeReasoner struct {
	output string
	err    error
	prompt string
}

func (f *fakeReasoner) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.output, f.err
}

func TestEnhanced_ParsesProseWrappedJSON(t *testing.T) {
	reasoner := &fakeReasoner{output: `Claro, aquí está la clasificación:
{"area_responsible": "Subgerencia de Obras e Infraestructura", "priority": "Alta", "subject_detected": "Reclamo por pista deteriorada", "observations": "Documento externo sobre obras viales", "confidence": 0.92}
Espero que sea útil.`}
	e := NewEnhanced(reasoner, domain.AreaMesaDePartes, logger.Nop())

	d, err := e.Classify(context.Background(), pdfInput("reclamo_pista.pdf", internalRequester(domain.AreaObras)))

	require.NoError(t, err)
	assert.Equal(t, domain.AreaObras, d.Area)
	assert.Equal(t, domain.PriorityHigh, d.Priority)
	assert.Equal(t, "Reclamo por pista deteriorada", d.Subject)
	assert.Equal(t, 0.92, d.Confidence)
	assert.False(t, d.ManualReview)
}

func TestEnhanced_UnknownAreaFallsBackToDefault(t *testing.T) {
	reasoner := &fakeReasoner{output: `{"area_responsible": "Departamento de Marte", "priority": "Media", "subject_detected": "Consulta", "observations": "", "confidence": 0.9}`}
	e := NewEnhanced(reasoner, domain.AreaMesaDePartes, logger.Nop())

	d, err := e.Classify(context.Background(), pdfInput("consulta.pdf", internalRequester(domain.AreaObras)))

	require.NoError(t, err)
	assert.Equal(t, domain.AreaMesaDePartes, d.Area)
}

func TestEnhanced_AreaMatchedCaseInsensitively(t *testing.T) {
	reasoner := &fakeReasoner{output: `{"area_responsible": "tesorería", "priority": "Media", "subject_detected": "Consulta tributaria", "observations": "", "confidence": 0.85}`}
	e := NewEnhanced(reasoner, domain.AreaMesaDePartes, logger.Nop())

	d, err := e.Classify(context.Background(), pdfInput("consulta_tributaria.pdf", internalRequester(domain.AreaObras)))

	require.NoError(t, err)
	assert.Equal(t, domain.AreaTesoreria, d.Area)
}

func TestEnhanced_InvalidPriorityDefaultsToMedium(t *testing.T) {
	reasoner := &fakeReasoner{output: `{"area_responsible": "Tesorería", "priority": "Altísima", "subject_detected": "Pago", "observations": "", "confidence": 0.9}`}
	e := NewEnhanced(reasoner, domain.AreaMesaDePartes, logger.Nop())

	d, err := e.Classify(context.Background(), pdfInput("pago.pdf", internalRequester(domain.AreaObras)))

	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, d.Priority)
	assert.Equal(t, "3-5 días hábiles", d.Turnaround)
}

func TestEnhanced_ConfidenceClamped(t *testing.T) {
	reasoner := &fakeReasoner{output: `{"area_responsible": "Tesorería", "priority": "Media", "subject_detected": "Pago", "observations": "", "confidence": 7.5}`}
	e := NewEnhanced(reasoner, domain.AreaMesaDePartes, logger.Nop())

	d, err := e.Classify(context.Background(), pdfInput("pago_tributo.pdf", internalRequester(domain.AreaObras)))

	require.NoError(t, err)
	assert.Equal(t, 1.0, d.Confidence)
}

func TestEnhanced_LowConfidenceFlagsReview(t *testing.T) {
	reasoner := &fakeReasoner{output: `{"area_responsible": "Tesorería", "priority": "Media", "subject_detected": "Pago", "observations": "", "confidence": 0.5}`}
	e := NewEnhanced(reasoner, domain.AreaMesaDePartes, logger.Nop())

	d, err := e.Classify(context.Background(), pdfInput("pago.pdf", internalRequester(domain.AreaObras)))

	require.NoError(t, err)
	assert.True(t, d.ManualReview)
}

func TestEnhanced_ExternalRequesterAlwaysReviewed(t *testing.T) {
	reasoner := &fakeReasoner{output: `{"area_responsible": "Tesorería", "priority": "Media", "subject_detected": "Pago predial", "observations": "", "confidence": 0.95}`}
	e := NewEnhanced(reasoner, domain.AreaMesaDePartes, logger.Nop())

	d, err := e.Classify(context.Background(), pdfInput("pago_predial.pdf", domain.GuestProfile("c1")))

	require.NoError(t, err)
	assert.True(t, d.ManualReview)
}

func TestEnhanced_NoJSONInOutput(t *testing.T) {
	reasoner := &fakeReasoner{output: "No puedo clasificar este documento."}
	e := NewEnhanced(reasoner, domain.AreaMesaDePartes, logger.Nop())

	_, err := e.Classify(context.Background(), pdfInput("x.pdf", internalRequester(domain.AreaObras)))

	assert.Error(t, err)
}

func TestEnhanced_GenerateErrorPropagates(t *testing.T) {
	reasoner := &fakeReasoner{err: assert.AnError}
	e := NewEnhanced(reasoner, domain.AreaMesaDePartes, logger.Nop())

	_, err := e.Classify(context.Background(), pdfInput("x.pdf", internalRequester(domain.AreaObras)))

	assert.ErrorIs(t, err, assert.AnError)
}

func TestEnhanced_PromptListsAreasAndPriorities(t *testing.T) {
	reasoner := &fakeReasoner{output: `{"area_responsible": "Tesorería", "priority": "Media", "subject_detected": "Pago", "observations": "", "confidence": 0.9}`}
	e := NewEnhanced(reasoner, domain.AreaMesaDePartes, logger.Nop())

	_, err := e.Classify(context.Background(), pdfInput("pago.pdf", internalRequester(domain.AreaObras)))

	require.NoError(t, err)
	for _, area := range domain.RoutableAreas() {
		assert.Contains(t, reasoner.prompt, area)
	}
	for _, p := range domain.Priorities() {
		assert.Contains(t, reasoner.prompt, string(p))
	}
	assert.Contains(t, reasoner.prompt, "area_responsible")
}

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"prose wrapped", "answer:\n{\"a\":1}\nthanks", `{"a":1}`},
		{"nested", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"brace in string", `{"a":"x}y"}`, `{"a":"x}y"}`},
		{"no object", "nothing here", ""},
		{"unbalanced", `{"a":1`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractJSONObject(tc.in))
		})
	}
}
