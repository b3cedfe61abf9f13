package domain

import "regexp"

// FileCategory is the coarse category of an inbound attachment
type FileCategory string

const (
	CategoryPDF      FileCategory = "pdf"
	CategoryImage    FileCategory = "image"
	CategoryDocument FileCategory = "document"
	CategoryUnknown  FileCategory = "unknown"
)

// FileDescriptor is the normalized view of a platform attachment.
// Immutable; built once per inbound file.
type FileDescriptor struct {
	FileID      string       `json:"file_id"`
	FileName    string       `json:"file_name"`
	Size        int64        `json:"size"`
	MimeType    string       `json:"mime_type"`
	Extension   string       `json:"extension"`
	Category    FileCategory `json:"category"`
	Processable bool         `json:"processable"`
}

// MessageKind is the platform's hint about how a file arrived
type MessageKind string

const (
	KindPhoto    MessageKind = "photo"
	KindVideo    MessageKind = "video"
	KindAudio    MessageKind = "audio"
	KindVoice    MessageKind = "voice"
	KindDocument MessageKind = "document"
)

// Attachment is the raw platform attachment record before normalization.
// Camera photos typically carry a MIME type but no filename.
type Attachment struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size"`
}

// AccessLevel is the coarse permission level of a requester
type AccessLevel string

const (
	AccessGuest AccessLevel = "guest"
	AccessUser  AccessLevel = "user"
	AccessAdmin AccessLevel = "admin"
	AccessSuper AccessLevel = "super"
)

var accessRank = map[AccessLevel]int{
	AccessGuest: 0,
	AccessUser:  1,
	AccessAdmin: 2,
	AccessSuper: 3,
}

// AtLeast reports whether the level is at or above the given one.
// Unknown levels rank as guest.
func (a AccessLevel) AtLeast(min AccessLevel) bool {
	return accessRank[a] >= accessRank[min]
}

// Sentinel area values marking requesters outside the organization
const (
	AreaExterno   = "Externo"
	AreaCiudadano = "Ciudadano"
)

// Municipal areas a case can be routed to
const (
	AreaMesaDePartes        = "Mesa de Partes"
	AreaSecretariaGeneral   = "Secretaría General"
	AreaObras               = "Subgerencia de Obras e Infraestructura"
	AreaDesarrolloSocial    = "Subgerencia de Desarrollo Social"
	AreaDesarrolloEconomico = "Subgerencia de Desarrollo Económico"
	AreaLogisticaRRHH       = "Oficina de Logística y Recursos Humanos"
	AreaTesoreria           = "Tesorería"
)

// RoutableAreas returns the areas a classification decision may target.
func RoutableAreas() []string {
	return []string{
		AreaMesaDePartes,
		AreaSecretariaGeneral,
		AreaObras,
		AreaDesarrolloSocial,
		AreaDesarrolloEconomico,
		AreaLogisticaRRHH,
		AreaTesoreria,
	}
}

// RequesterProfile identifies the sender of an inbound message.
// Replaced, never mutated: lookups return a fresh or cached copy.
type RequesterProfile struct {
	Key    string      `json:"key"`
	Name   string      `json:"name"`
	Area   string      `json:"area"`
	Role   string      `json:"role"`
	Access AccessLevel `json:"access"`
	Email  string      `json:"email,omitempty"`
	Phone  string      `json:"phone,omitempty"`
}

// IsInternal reports whether the requester belongs to the organization.
func (p *RequesterProfile) IsInternal() bool {
	return p.Area != "" && p.Area != AreaExterno && p.Area != AreaCiudadano
}

// IsAdmin reports whether the requester has an administrative level.
func (p *RequesterProfile) IsAdmin() bool {
	return p.Access.AtLeast(AccessAdmin)
}

// GuestProfile synthesizes the citizen fallback used when the directory is
// unreachable or the identity is unknown.
func GuestProfile(key string) *RequesterProfile {
	return &RequesterProfile{
		Key:    key,
		Name:   "Ciudadano",
		Area:   AreaCiudadano,
		Role:   "Ciudadano",
		Access: AccessGuest,
	}
}

// Priority is the urgency level assigned to a case
type Priority string

const (
	PriorityLow    Priority = "Baja"
	PriorityMedium Priority = "Media"
	PriorityHigh   Priority = "Alta"
	PriorityUrgent Priority = "Muy Urgente"
)

// Priorities returns all valid priority labels in ascending order.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// ClassificationDecision is the classifier's routing output for one file
type ClassificationDecision struct {
	DocumentType string   `json:"document_type"`
	Area         string   `json:"area"`
	Priority     Priority `json:"priority"`
	Turnaround   string   `json:"turnaround"`
	Subject      string   `json:"subject"`
	Observations string   `json:"observations"`
	ManualReview bool     `json:"manual_review"`
	Confidence   float64  `json:"confidence"`
}

// CaseCategory distinguishes internal from external cases
type CaseCategory string

const (
	CaseInternal CaseCategory = "Interno"
	CaseExternal CaseCategory = "Externo"
)

// CaseStatus is the lifecycle state of a registered case
type CaseStatus string

const (
	StatusReceived   CaseStatus = "Recibido"
	StatusReferred   CaseStatus = "Derivado"
	StatusPending    CaseStatus = "Pendiente de Acción"
	StatusResolved   CaseStatus = "Resuelto"
	StatusInProgress CaseStatus = "En Proceso"
	StatusFlagged    CaseStatus = "Observado"

	// StatusReceivedTemp marks records synthesized while the row store was
	// unreachable; they are pending synchronization.
	StatusReceivedTemp CaseStatus = "Recibido (temporal)"
)

// Date layouts used for persisted case fields
const (
	DateTimeLayout = "02/01/2006 15:04"
	DateLayout     = "02/01/2006"
)

// CaseIDLayout formats a timestamp as a case identifier (YYYY-MMDDHHMMSS)
const CaseIDLayout = "2006-0102150405"

// CaseIDPattern matches case identifiers embedded in free text
var CaseIDPattern = regexp.MustCompile(`\d{4}-\d{10}`)

// CaseRecord is one registered case. Mutated only by status updates and
// referrals through the case directory; never deleted.
type CaseRecord struct {
	CaseID            string       `json:"case_id"`
	Category          CaseCategory `json:"category"`
	Number            int          `json:"number"`
	Code              string       `json:"code"`
	Folios            int          `json:"folios"`
	ReceivedAt        string       `json:"received_at"`
	EmissionDate      string       `json:"emission_date"`
	DocumentType      string       `json:"document_type"`
	ExternalDocNumber string       `json:"external_doc_number,omitempty"`
	Originator        string       `json:"originator"`
	OriginatorArea    string       `json:"originator_area"`
	Subject           string       `json:"subject"`
	Reference         string       `json:"reference,omitempty"`
	Priority          Priority     `json:"priority"`
	Status            CaseStatus   `json:"status"`
	ReferredArea      string       `json:"referred_area,omitempty"`
	ReferredOwner     string       `json:"referred_owner,omitempty"`
	ReferralType      string       `json:"referral_type,omitempty"`
	OriginalFileName  string       `json:"original_file_name,omitempty"`
	Note              string       `json:"note,omitempty"`
}

// CaseStats aggregates the case table for reporting
type CaseStats struct {
	Total      int                  `json:"total"`
	Today      int                  `json:"today"`
	ByStatus   map[CaseStatus]int   `json:"by_status"`
	ByPriority map[Priority]int     `json:"by_priority"`
	ByCategory map[CaseCategory]int `json:"by_category"`
}
