package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/pkg/logger"
)

// ReasoningService generates free-form text for a prompt. Implemented by
// ReasoningClient; faked in tests.
type ReasoningService interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// manualReviewConfidenceFloor: enhanced decisions below this confidence are
// flagged for a human.
const manualReviewConfidenceFloor = 0.8

// Enhanced asks the reasoning service to classify the document. Any failure
// (transport, malformed output) is returned as an error so the chain falls
// through to the rule strategy.
type Enhanced struct {
	client      ReasoningService
	defaultArea string
	logger      *logger.Logger
}

// NewEnhanced creates the reasoning-backed strategy.
func NewEnhanced(client ReasoningService, defaultArea string, log *logger.Logger) *Enhanced {
	if defaultArea == "" {
		defaultArea = domain.AreaMesaDePartes
	}
	return &Enhanced{
		client:      client,
		defaultArea: defaultArea,
		logger:      log.WithComponent("classifier_enhanced"),
	}
}

func (e *Enhanced) Name() string { return "enhanced" }

// reasoningResult mirrors the JSON contract spelled out in the prompt
type reasoningResult struct {
	AreaResponsible string  `json:"area_responsible"`
	Priority        string  `json:"priority"`
	SubjectDetected string  `json:"subject_detected"`
	Observations    string  `json:"observations"`
	Confidence      float64 `json:"confidence"`
}

func (e *Enhanced) Classify(ctx context.Context, in Input) (*domain.ClassificationDecision, error) {
	raw, err := e.client.Generate(ctx, buildPrompt(in))
	if err != nil {
		return nil, err
	}

	payload := extractJSONObject(raw)
	if payload == "" {
		return nil, fmt.Errorf("reasoning output contains no JSON object")
	}

	var res reasoningResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, fmt.Errorf("failed to parse reasoning output: %w", err)
	}
	if res.AreaResponsible == "" && res.SubjectDetected == "" {
		return nil, fmt.Errorf("reasoning output missing required fields")
	}

	area, known := e.validateArea(res.AreaResponsible)
	if !known {
		e.logger.Warn().
			Str("raw_area", res.AreaResponsible).
			Str("fallback", area).
			Msg("reasoning service suggested an unknown area")
	}
	priority := validatePriority(res.Priority)
	confidence := clampConfidence(res.Confidence)

	subject := strings.TrimSpace(res.SubjectDetected)
	if subject == "" {
		subject = "Documento recibido: " + in.File.FileName
	}

	lower := strings.ToLower(in.File.FileName)
	return &domain.ClassificationDecision{
		DocumentType: detectDocumentType(lower, in.File, in.Kind),
		Area:         area,
		Priority:     priority,
		Turnaround:   TurnaroundFor(priority),
		Subject:      subject,
		Observations: strings.TrimSpace(res.Observations),
		ManualReview: confidence < manualReviewConfidenceFloor || !in.Requester.IsInternal(),
		Confidence:   confidence,
	}, nil
}

// validateArea matches the suggested area against the routing allow-list,
// case-insensitively. Unknown areas fall back to the intake desk.
func (e *Enhanced) validateArea(suggested string) (string, bool) {
	trimmed := strings.TrimSpace(suggested)
	for _, area := range domain.RoutableAreas() {
		if strings.EqualFold(area, trimmed) {
			return area, true
		}
	}
	return e.defaultArea, false
}

func validatePriority(suggested string) domain.Priority {
	trimmed := strings.TrimSpace(suggested)
	for _, p := range domain.Priorities() {
		if strings.EqualFold(string(p), trimmed) {
			return p
		}
	}
	return domain.PriorityMedium
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

// extractJSONObject returns the first brace-balanced JSON object embedded in
// s, tolerating models that wrap their answer in prose or code fences.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
