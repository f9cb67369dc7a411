package domain

import "time"

// Urgency enumerates response urgency assigned at classification.
type Urgency string

const (
	UrgencyAlta  Urgency = "ALTA"
	UrgencyMedia Urgency = "MEDIA"
	UrgencyBaja  Urgency = "BAJA"
)

// Valid reports whether the urgency is one of the known values.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyAlta, UrgencyMedia, UrgencyBaja:
		return true
	}
	return false
}

// CaseStatus is the case-level status. It is always derived from the stage and
// deadline figures, never set directly by callers.
type CaseStatus string

const (
	CaseStatusPendiente  CaseStatus = "PENDIENTE"
	CaseStatusRespondido CaseStatus = "RESPONDIDO"
	CaseStatusVencido    CaseStatus = "VENCIDO"
)

// Correo is one inbound correspondence item requiring a tracked response.
type Correo struct {
	ID              string
	Subject         string
	SenderAccountID string
	EntityID        string
	RequestTypeID   *string
	Urgency         Urgency
	ReceivedAt      time.Time
	DeadlineDays    *int
	RadicadoEntrada *string
	RadicadoSalida  *string
	Stage           Stage
	Status          CaseStatus
	GestorID        *string
	GestorName      *string
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ClosedAt        *time.Time
}

// Classified reports whether response deadline semantics apply to the case.
func (c *Correo) Classified() bool {
	return c.DeadlineDays != nil
}

// Clone returns a deep copy so callers can mutate without touching stored state.
func (c *Correo) Clone() *Correo {
	if c == nil {
		return nil
	}
	cp := *c
	cp.RequestTypeID = cloneString(c.RequestTypeID)
	cp.RadicadoEntrada = cloneString(c.RadicadoEntrada)
	cp.RadicadoSalida = cloneString(c.RadicadoSalida)
	cp.GestorID = cloneString(c.GestorID)
	cp.GestorName = cloneString(c.GestorName)
	if c.DeadlineDays != nil {
		days := *c.DeadlineDays
		cp.DeadlineDays = &days
	}
	if c.ClosedAt != nil {
		closed := *c.ClosedAt
		cp.ClosedAt = &closed
	}
	return &cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
