package domain

import "time"

// Stage enumerates the workflow states a case moves through.
type Stage string

const (
	StageUnassigned   Stage = "UNASSIGNED"
	StageAssigned     Stage = "ASSIGNED"
	StageInRedaction  Stage = "IN_REDACTION"
	StageInReview     Stage = "IN_REVIEW"
	StageInApproval   Stage = "IN_APPROVAL"
	StageSigned       Stage = "SIGNED"
	StageInOutbox     Stage = "IN_OUTBOX"
	StageDispatched   Stage = "DISPATCHED"
	StageAcknowledged Stage = "ACKNOWLEDGED"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{
	StageUnassigned,
	StageAssigned,
	StageInRedaction,
	StageInReview,
	StageInApproval,
	StageSigned,
	StageInOutbox,
	StageDispatched,
	StageAcknowledged,
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	for _, candidate := range Stages {
		if candidate == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no stage record stays open once the case reaches s.
func (s Stage) Terminal() bool {
	return s == StageAcknowledged
}

// Dispatched reports whether the response has left the entity.
func (s Stage) Dispatched() bool {
	return s == StageDispatched || s == StageAcknowledged
}

// HasActiveRecord reports whether a case in stage s owns exactly one open record.
func (s Stage) HasActiveRecord() bool {
	return s != StageUnassigned && s != StageAcknowledged
}

// Etapa is the legacy stage vocabulary shown to users.
type Etapa string

const (
	EtapaRecepcion   Etapa = "RECEPCION"
	EtapaElaboracion Etapa = "ELABORACION"
	EtapaRevision    Etapa = "REVISION"
	EtapaAprobacion  Etapa = "APROBACION"
	EtapaFirma       Etapa = "FIRMA"
	EtapaSalida      Etapa = "SALIDA"
	EtapaEnvio       Etapa = "ENVIO"
	EtapaAcuse       Etapa = "ACUSE"
)

var stageEtapas = map[Stage]Etapa{
	StageUnassigned:   EtapaRecepcion,
	StageAssigned:     EtapaRecepcion,
	StageInRedaction:  EtapaElaboracion,
	StageInReview:     EtapaRevision,
	StageInApproval:   EtapaAprobacion,
	StageSigned:       EtapaFirma,
	StageInOutbox:     EtapaSalida,
	StageDispatched:   EtapaEnvio,
	StageAcknowledged: EtapaAcuse,
}

// Etapa maps the stage onto the legacy vocabulary.
func (s Stage) Etapa() Etapa {
	return stageEtapas[s]
}

// Verdict is the decision a reviewer or approver records on an open stage.
type Verdict string

const (
	VerdictNone     Verdict = ""
	VerdictApproved Verdict = "APPROVED"
)

// FlujoCorreo is one assignment of a case to a workflow stage and an actor.
type FlujoCorreo struct {
	ID           string
	CorreoID     string
	AssigneeID   *string
	AssigneeName *string
	Stage        Stage
	Verdict      Verdict
	AssignedAt   time.Time
	FinalizedAt  *time.Time
}

// Active reports whether the record is the open stage of its case.
func (f *FlujoCorreo) Active() bool {
	return f.FinalizedAt == nil
}

// Close sets the finalization timestamp, never earlier than the assignment.
func (f *FlujoCorreo) Close(at time.Time) {
	if at.Before(f.AssignedAt) {
		at = f.AssignedAt
	}
	f.FinalizedAt = &at
}

// Clone returns a deep copy of the record.
func (f *FlujoCorreo) Clone() *FlujoCorreo {
	if f == nil {
		return nil
	}
	cp := *f
	cp.AssigneeID = cloneString(f.AssigneeID)
	cp.AssigneeName = cloneString(f.AssigneeName)
	if f.FinalizedAt != nil {
		finalized := *f.FinalizedAt
		cp.FinalizedAt = &finalized
	}
	return &cp
}
