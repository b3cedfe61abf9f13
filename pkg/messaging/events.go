package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventCaseRegistered    = "case.registered"
	EventCaseReferred      = "case.referred"
	EventCaseStatusChanged = "case.status.changed"
)

// Exchange names
const (
	ExchangeIntakeEvents = "intake.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// CaseRegisteredEvent is published when a case is registered
type CaseRegisteredEvent struct {
	CaseID       string  `json:"case_id"`
	CaseNumber   int     `json:"case_number"`
	DocumentCode string  `json:"document_code"`
	Category     string  `json:"category"`
	DocumentType string  `json:"document_type"`
	Area         string  `json:"area"`
	Priority     string  `json:"priority"`
	Originator   string  `json:"originator"`
	Confidence   float64 `json:"confidence"`
	ManualReview bool    `json:"manual_review"`
	Degraded     bool    `json:"degraded"`
}

// CaseReferredEvent is published when a case is referred to another area
type CaseReferredEvent struct {
	CaseID       string `json:"case_id"`
	Area         string `json:"area"`
	Owner        string `json:"owner,omitempty"`
	ReferralType string `json:"referral_type,omitempty"`
}

// CaseStatusChangedEvent is published when a case status is updated
type CaseStatusChangedEvent struct {
	CaseID    string `json:"case_id"`
	NewStatus string `json:"new_status"`
}
