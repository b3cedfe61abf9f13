package service

import (
	"fmt"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/internal/intake/registrar"
)

// buildNotices renders the conversational replies for a registered case, in
// delivery order: confirmation first, then the classification summary, then
// the secondary notices (urgent priority, manual review or follow-up
// guidance, image caveat).
func buildNotices(reg *registrar.Registration, decision *domain.ClassificationDecision, requester *domain.RequesterProfile, file domain.FileDescriptor) []string {
	rec := reg.Record

	var notices []string
	if reg.Degraded {
		notices = append(notices, fmt.Sprintf(
			"⚠️ Documento recibido. Su expediente temporal es %s. El registro definitivo se completará cuando el sistema esté disponible.",
			rec.CaseID))
	} else {
		notices = append(notices, fmt.Sprintf(
			"✅ Documento recibido y registrado.\nExpediente: %s\nCódigo: %s",
			rec.CaseID, rec.Code))
	}

	notices = append(notices, fmt.Sprintf(
		"📋 Tipo: %s\nÁrea responsable: %s\nPrioridad: %s\nTiempo estimado de atención: %s",
		decision.DocumentType, decision.Area, decision.Priority, decision.Turnaround))

	if decision.Priority == domain.PriorityUrgent {
		notices = append(notices, fmt.Sprintf(
			"🔴 Su documento fue marcado como Muy Urgente y será atendido en un plazo de %s.",
			decision.Turnaround))
	}

	switch {
	case decision.ManualReview:
		notices = append(notices,
			"Su documento será revisado por Mesa de Partes antes de su derivación. Conserve el número de expediente para el seguimiento.")
	case requester.IsInternal() && rec.ReferredArea != "":
		notices = append(notices, fmt.Sprintf(
			"Su documento fue derivado a %s.", rec.ReferredArea))
	default:
		notices = append(notices,
			"Conserve el número de expediente para consultar el estado de su trámite.")
	}

	if file.Category == domain.CategoryImage {
		notices = append(notices,
			"📷 La imagen se registró tal como fue recibida. Si el documento no es legible, envíelo nuevamente en mejor calidad o en formato PDF.")
	}

	return notices
}
