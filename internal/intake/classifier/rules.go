package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
)

// documentTypeKeywords is scanned in order; the first keyword found in the
// lowercased filename decides the document type.
var documentTypeKeywords = []struct {
	keyword string
	label   string
}{
	{"oficio", "Oficio"},
	{"informe", "Informe"},
	{"solicitud", "Solicitud"},
	{"memorando", "Memorando"},
	{"carta", "Carta"},
	{"constancia", "Constancia"},
	{"certificado", "Certificado"},
	{"resolucion", "Resolución"},
	{"decreto", "Decreto"},
	{"ordenanza", "Ordenanza"},
}

// topicAreas routes external documents by topic keywords, scanned in order.
var topicAreas = []struct {
	keywords []string
	area     string
}{
	{[]string{"obra", "construccion", "infraestructura", "pista", "vereda"}, domain.AreaObras},
	{[]string{"social", "educacion", "salud", "apoyo", "subsidio"}, domain.AreaDesarrolloSocial},
	{[]string{"ambient", "comercio", "turismo", "licencia"}, domain.AreaDesarrolloEconomico},
	{[]string{"logistica", "personal", "rrhh", "almacen"}, domain.AreaLogisticaRRHH},
	{[]string{"tesoreria", "tributo", "impuesto", "pago"}, domain.AreaTesoreria},
}

var urgentKeywords = []string{"urgente", "inmediato", "emergencia", "critico"}
var highKeywords = []string{"importante", "prioridad", "rapido"}
var lowKeywords = []string{"saludo", "felicitacion"}

// genericWords are filename stems too vague to trust as a subject
var genericWords = []string{"documento", "document", "archivo", "file"}

const largeFileThreshold = 5 << 20

// manualReviewSizeThreshold: anything above this always goes to a human
const manualReviewSizeThreshold = 10 << 20

// RuleBased is the deterministic keyword classifier. It never fails and is
// the normal workhorse when no reasoning service is configured.
type RuleBased struct {
	defaultArea string
}

// NewRuleBased creates the rule strategy routing unmatched external
// documents to the given intake area.
func NewRuleBased(defaultArea string) *RuleBased {
	if defaultArea == "" {
		defaultArea = domain.AreaMesaDePartes
	}
	return &RuleBased{defaultArea: defaultArea}
}

func (r *RuleBased) Name() string { return "rules" }

// Classify applies the keyword tables. Deterministic: equal inputs always
// produce equal decisions.
func (r *RuleBased) Classify(_ context.Context, in Input) (*domain.ClassificationDecision, error) {
	lower := strings.ToLower(in.File.FileName)
	internal := in.Requester.IsInternal()

	docType := detectDocumentType(lower, in.File, in.Kind)
	area := r.resolveArea(lower, docType, in.Requester)
	priority := resolvePriority(lower, in.Requester)

	return &domain.ClassificationDecision{
		DocumentType: docType,
		Area:         area,
		Priority:     priority,
		Turnaround:   TurnaroundFor(priority),
		Subject:      resolveSubject(in.File.FileName, docType, in.Kind),
		Observations: buildObservations(in),
		ManualReview: needsManualReview(lower, in.File, internal),
		Confidence:   confidenceScore(in.File, internal),
	}, nil
}

// detectDocumentType resolves the human-readable document type from the
// filename, falling back to the capture kind and file category.
func detectDocumentType(lower string, file domain.FileDescriptor, kind domain.MessageKind) string {
	for _, e := range documentTypeKeywords {
		if strings.Contains(lower, e.keyword) {
			return e.label
		}
	}
	switch {
	case kind == domain.KindPhoto:
		return "Documento fotografiado"
	case file.Category == domain.CategoryPDF:
		return "Documento PDF"
	case file.Category == domain.CategoryImage:
		return "Imagen escaneada"
	default:
		return "Documento"
	}
}

// resolveArea routes the document. Internal formal documents go to the
// General Secretariat; other internal documents stay with the requester's
// own area. External documents route by topic, defaulting to the intake
// desk.
func (r *RuleBased) resolveArea(lower, docType string, requester *domain.RequesterProfile) string {
	if requester.IsInternal() {
		switch docType {
		case "Informe", "Oficio", "Resolución", "Decreto", "Ordenanza":
			return domain.AreaSecretariaGeneral
		default:
			return requester.Area
		}
	}

	for _, t := range topicAreas {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return t.area
			}
		}
	}
	return r.defaultArea
}

func resolvePriority(lower string, requester *domain.RequesterProfile) domain.Priority {
	if containsAny(lower, urgentKeywords) {
		return domain.PriorityUrgent
	}
	if containsAny(lower, highKeywords) || requester.IsAdmin() {
		return domain.PriorityHigh
	}
	if containsAny(lower, lowKeywords) {
		return domain.PriorityLow
	}
	return domain.PriorityMedium
}

// TurnaroundFor maps a priority to its expected handling time.
func TurnaroundFor(p domain.Priority) string {
	switch p {
	case domain.PriorityUrgent:
		return "24 horas"
	case domain.PriorityHigh:
		return "1-2 días hábiles"
	case domain.PriorityMedium:
		return "3-5 días hábiles"
	default:
		return "5-7 días hábiles"
	}
}

// resolveSubject uses the filename stem verbatim when it looks descriptive,
// otherwise synthesizes a subject from the document type.
func resolveSubject(name, docType string, kind domain.MessageKind) string {
	stem := name
	if idx := strings.LastIndex(stem, "."); idx > 0 {
		stem = stem[:idx]
	}
	lowerStem := strings.ToLower(stem)

	if len(stem) > 20 && !strings.Contains(stem, "_") && !containsGenericWord(lowerStem) {
		return stem
	}
	if kind == domain.KindPhoto {
		return "Documento capturado con cámara"
	}
	return fmt.Sprintf("%s recibido", docType)
}

func buildObservations(in Input) string {
	parts := []string{
		fmt.Sprintf("Enviado por %s de %s", in.Requester.Role, in.Requester.Area),
	}
	if in.Kind == domain.KindPhoto {
		parts = append(parts, "Fotografiado desde dispositivo móvil")
	}
	if in.File.Size > largeFileThreshold {
		parts = append(parts, fmt.Sprintf("Archivo de gran tamaño (%.1f MB)", float64(in.File.Size)/(1<<20)))
	}
	if in.File.Category == domain.CategoryPDF {
		parts = append(parts, "Documento PDF adjunto")
	}
	return strings.Join(parts, ". ") + "."
}

// needsManualReview flags every external submission plus internal ones that
// are oversized, generically named or of unrecognized type.
func needsManualReview(lower string, file domain.FileDescriptor, internal bool) bool {
	if !internal {
		return true
	}
	if file.Size > manualReviewSizeThreshold {
		return true
	}
	if containsGenericWord(lower) {
		return true
	}
	return file.Category == domain.CategoryUnknown
}

// confidenceScore is accumulated in integer hundredths so the maximum lands
// on exactly 1.0.
func confidenceScore(file domain.FileDescriptor, internal bool) float64 {
	score := 70
	if internal {
		score += 10
	}
	if file.Category != domain.CategoryUnknown {
		score += 10
	}
	if len(file.FileName) > 10 {
		score += 5
	}
	if file.Category == domain.CategoryPDF || file.Category == domain.CategoryImage {
		score += 5
	}
	if score > 100 {
		score = 100
	}
	return float64(score) / 100
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func containsGenericWord(s string) bool {
	return containsAny(s, genericWords)
}
