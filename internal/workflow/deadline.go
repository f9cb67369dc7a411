package workflow

import (
	"time"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

// Deadline holds the day figures for one case at one instant. DaysRemaining
// and IsOverdue are nil until the case is classified.
type Deadline struct {
	DaysUsed      int
	DaysRemaining *int
	IsOverdue     *bool
}

// Configured reports whether a response deadline applies.
func (d Deadline) Configured() bool {
	return d.DaysRemaining != nil
}

// Overdue returns the overdue flag, or ErrDeadlineNotConfigured before
// classification.
func (d Deadline) Overdue() (bool, error) {
	if d.IsOverdue == nil {
		return false, ErrDeadlineNotConfigured
	}
	return *d.IsOverdue, nil
}

// Calculator derives deadline figures using calendar-day truncation in a
// fixed location. It holds no mutable state.
type Calculator struct {
	loc *time.Location
}

// NewCalculator builds a calculator; a nil location means UTC.
func NewCalculator(loc *time.Location) Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return Calculator{loc: loc}
}

// Location returns the zone used for day boundaries.
func (c Calculator) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Compute returns days used, days remaining and the overdue flag
// (daysRemaining < 0).
func (c Calculator) Compute(receivedAt time.Time, deadlineDays *int, now time.Time) Deadline {
	used := c.daysBetween(receivedAt, now)
	result := Deadline{DaysUsed: used}
	if deadlineDays == nil {
		return result
	}
	remaining := *deadlineDays - used
	overdue := remaining < 0
	result.DaysRemaining = &remaining
	result.IsOverdue = &overdue
	return result
}

// ForCase computes the figures for a case; a dispatched case is never overdue.
func (c Calculator) ForCase(correo *domain.Correo, now time.Time) Deadline {
	result := c.Compute(correo.ReceivedAt, correo.DeadlineDays, now)
	if result.IsOverdue != nil && correo.Stage.Dispatched() {
		overdue := false
		result.IsOverdue = &overdue
	}
	return result
}

// Status derives the case-level status for a case at now.
func (c Calculator) Status(correo *domain.Correo, now time.Time) domain.CaseStatus {
	return DeriveStatus(correo.Stage, c.ForCase(correo, now))
}

// DeriveStatus is the single authority for PENDIENTE / RESPONDIDO / VENCIDO.
func DeriveStatus(stage domain.Stage, deadline Deadline) domain.CaseStatus {
	if stage.Dispatched() {
		return domain.CaseStatusRespondido
	}
	if overdue, err := deadline.Overdue(); err == nil && overdue {
		return domain.CaseStatusVencido
	}
	return domain.CaseStatusPendiente
}

func (c Calculator) daysBetween(from, to time.Time) int {
	loc := c.Location()
	start := calendarDay(from.In(loc))
	end := calendarDay(to.In(loc))
	days := int(end.Sub(start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// calendarDay drops the wall-clock part; UTC midnight avoids DST-length days.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
