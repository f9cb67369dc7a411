package dto

import (
	"time"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

// CreateCaseRequest payload sent by mail ingestion.
type CreateCaseRequest struct {
	Subject         string         `json:"subject"`
	SenderAccountID string         `json:"sender_account_id"`
	EntityID        string         `json:"entity_id"`
	RequestTypeID   *string        `json:"request_type_id"`
	Urgency         domain.Urgency `json:"urgency"`
	ReceivedAt      *time.Time     `json:"received_at"`
	RadicadoEntrada *string        `json:"radicado_entrada"`
}

// AssigneeRequest identifies the user a stage is handed to.
type AssigneeRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ClassificationRequest carries classify fields.
type ClassificationRequest struct {
	DeadlineDays  int            `json:"deadline_days"`
	RequestTypeID *string        `json:"request_type_id"`
	Urgency       domain.Urgency `json:"urgency"`
	EntityID      *string        `json:"entity_id"`
}

// CaseActionRequest payload. The acting role comes from the bearer token.
type CaseActionRequest struct {
	Action          domain.Action          `json:"action"`
	Assignee        *AssigneeRequest       `json:"assignee"`
	Classification  *ClassificationRequest `json:"classification"`
	RadicadoSalida  *string                `json:"radicado_salida"`
	ExpectedVersion *int64                 `json:"expected_version"`
	Comment         string                 `json:"comment"`
}

// DeadlineResponse exposes the calculator figures.
type DeadlineResponse struct {
	DaysUsed      int   `json:"days_used"`
	DaysRemaining *int  `json:"days_remaining"`
	IsOverdue     *bool `json:"is_overdue"`
}

// StageResponse represents one stage record.
type StageResponse struct {
	ID           string         `json:"id"`
	Stage        domain.Stage   `json:"stage"`
	Etapa        domain.Etapa   `json:"etapa"`
	AssigneeID   *string        `json:"assignee_id"`
	AssigneeName *string        `json:"assignee_name"`
	Verdict      domain.Verdict `json:"verdict,omitempty"`
	AssignedAt   time.Time      `json:"assigned_at"`
	FinalizedAt  *time.Time     `json:"finalized_at"`
	Active       bool           `json:"active"`
}

// CaseResponse is the case snapshot.
type CaseResponse struct {
	ID               string            `json:"id"`
	Subject          string            `json:"subject"`
	SenderAccountID  string            `json:"sender_account_id"`
	EntityID         string            `json:"entity_id"`
	RequestTypeID    *string           `json:"request_type_id"`
	Urgency          domain.Urgency    `json:"urgency"`
	ReceivedAt       time.Time         `json:"received_at"`
	DeadlineDays     *int              `json:"deadline_days"`
	RadicadoEntrada  *string           `json:"radicado_entrada"`
	RadicadoSalida   *string           `json:"radicado_salida"`
	Stage            domain.Stage      `json:"stage"`
	Etapa            domain.Etapa      `json:"etapa"`
	Status           domain.CaseStatus `json:"status"`
	GestorID         *string           `json:"gestor_id"`
	GestorName       *string           `json:"gestor_name"`
	Version          int64             `json:"version"`
	Deadline         DeadlineResponse  `json:"deadline"`
	ActiveStage      *StageResponse    `json:"active_stage,omitempty"`
	History          []StageResponse   `json:"history,omitempty"`
	AvailableActions []domain.Action   `json:"available_actions,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	ClosedAt         *time.Time        `json:"closed_at"`
}

// CaseActionResponse wraps the snapshot and the emitted event id.
type CaseActionResponse struct {
	Case    CaseResponse `json:"case"`
	EventID string       `json:"event_id"`
}
