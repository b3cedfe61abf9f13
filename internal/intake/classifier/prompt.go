package classifier

import (
	"fmt"
	"strings"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
)

// buildPrompt renders the classification request for the reasoning service.
// The response contract (JSON keys and allowed values) is spelled out in the
// prompt itself; the caller validates whatever comes back.
func buildPrompt(in Input) string {
	var b strings.Builder

	b.WriteString("Eres el asistente de Mesa de Partes de una municipalidad. ")
	b.WriteString("Clasifica el siguiente documento entrante y responde ÚNICAMENTE con un objeto JSON, sin texto adicional.\n\n")

	fmt.Fprintf(&b, "Documento:\n")
	fmt.Fprintf(&b, "- Nombre de archivo: %s\n", in.File.FileName)
	fmt.Fprintf(&b, "- Tipo MIME: %s\n", in.File.MimeType)
	fmt.Fprintf(&b, "- Tamaño: %d bytes\n", in.File.Size)
	fmt.Fprintf(&b, "- Forma de envío: %s\n\n", in.Kind)

	fmt.Fprintf(&b, "Remitente:\n")
	fmt.Fprintf(&b, "- Nombre: %s\n", in.Requester.Name)
	fmt.Fprintf(&b, "- Cargo: %s\n", in.Requester.Role)
	fmt.Fprintf(&b, "- Área: %s\n\n", in.Requester.Area)

	b.WriteString("Áreas válidas (usa una exactamente como está escrita):\n")
	for _, area := range domain.RoutableAreas() {
		fmt.Fprintf(&b, "- %s\n", area)
	}

	b.WriteString("\nPrioridades válidas:\n")
	for _, p := range domain.Priorities() {
		fmt.Fprintf(&b, "- %s\n", p)
	}

	b.WriteString("\nFormato de respuesta:\n")
	b.WriteString(`{"area_responsible": "...", "priority": "...", "subject_detected": "...", "observations": "...", "confidence": 0.0}`)
	b.WriteString("\nconfidence es un número entre 0 y 1.\n")

	return b.String()
}
