package events

import (
	"time"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCaseRegistered   EventType = "case_registered"
	EventCaseClassified   EventType = "case_classified"
	EventCaseStageChanged EventType = "case_stage_changed"
	EventCaseReassigned   EventType = "case_reassigned"
	EventCaseVerdict      EventType = "case_verdict_recorded"
	EventCaseOverdue      EventType = "case_overdue"
)

// AllEventTypes lists every event the service emits.
var AllEventTypes = []EventType{
	EventCaseRegistered,
	EventCaseClassified,
	EventCaseStageChanged,
	EventCaseReassigned,
	EventCaseVerdict,
	EventCaseOverdue,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Name   string      `json:"name,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by the workflow engine.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CaseID    string      `json:"case_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CaseRegisteredPayload payload.
type CaseRegisteredPayload struct {
	Subject         string  `json:"subject"`
	EntityID        string  `json:"entity_id"`
	RadicadoEntrada *string `json:"radicado_entrada,omitempty"`
}

// CaseClassifiedPayload payload.
type CaseClassifiedPayload struct {
	DeadlineDays  int            `json:"deadline_days"`
	Urgency       domain.Urgency `json:"urgency"`
	RequestTypeID *string        `json:"request_type_id,omitempty"`
}

// StageChangedPayload payload.
type StageChangedPayload struct {
	Action     domain.Action     `json:"action"`
	FromStage  domain.Stage      `json:"from_stage"`
	ToStage    domain.Stage      `json:"to_stage"`
	BackEdge   bool              `json:"back_edge"`
	AssigneeID *string           `json:"assignee_id,omitempty"`
	Status     domain.CaseStatus `json:"status"`
	Comment    string            `json:"comment,omitempty"`
}

// ReassignedPayload payload.
type ReassignedPayload struct {
	Stage         domain.Stage `json:"stage"`
	OldAssigneeID *string      `json:"old_assignee_id,omitempty"`
	NewAssigneeID *string      `json:"new_assignee_id,omitempty"`
}

// VerdictPayload payload.
type VerdictPayload struct {
	Action  domain.Action  `json:"action"`
	Stage   domain.Stage   `json:"stage"`
	Verdict domain.Verdict `json:"verdict"`
}

// OverduePayload payload.
type OverduePayload struct {
	Stage         domain.Stage `json:"stage"`
	DaysUsed      int          `json:"days_used"`
	DaysRemaining int          `json:"days_remaining"`
	GestorID      *string      `json:"gestor_id,omitempty"`
}
