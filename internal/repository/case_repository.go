package repository

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

var (
	// ErrCaseNotFound is returned when no case matches the id.
	ErrCaseNotFound = errors.New("case not found")
	// ErrVersionConflict is returned when the stored case or its active stage
	// changed since it was loaded.
	ErrVersionConflict = errors.New("case version conflict")
	// ErrDuplicateCase is returned when creating a case whose id exists.
	ErrDuplicateCase = errors.New("case already exists")
)

// SearchField selects the column a free-text search applies to.
type SearchField string

const (
	SearchSubject         SearchField = "subject"
	SearchSender          SearchField = "sender"
	SearchRadicadoEntrada SearchField = "radicado_entrada"
	SearchRadicadoSalida  SearchField = "radicado_salida"
	SearchID              SearchField = "id"
)

// Valid reports whether f is a searchable field.
func (f SearchField) Valid() bool {
	switch f {
	case SearchSubject, SearchSender, SearchRadicadoEntrada, SearchRadicadoSalida, SearchID:
		return true
	}
	return false
}

// CaseFilter narrows case listings. Status is not part of the filter: it is
// time-derived and evaluated by the caller.
type CaseFilter struct {
	EntityID      *string
	Urgencies     []domain.Urgency
	RequestTypeID *string
	// AssigneeID matches the assignee of the open stage record, so cases
	// without one never match.
	AssigneeID   *string
	Stages       []domain.Stage
	SearchField  SearchField
	SearchValue  string
	ReceivedFrom *time.Time
	ReceivedTo   *time.Time
	// Limit <= 0 returns every match.
	Limit  int
	Offset int
}

// CaseRepository owns persisted cases and their stage records.
type CaseRepository interface {
	// Create stores a new case with no stage records.
	Create(ctx context.Context, correo *domain.Correo) error

	// LoadCase returns ErrCaseNotFound when the id is unknown.
	LoadCase(ctx context.Context, id string) (*domain.Correo, error)

	// LoadActiveStage returns the open record, or nil when the case has none.
	LoadActiveStage(ctx context.Context, caseID string) (*domain.FlujoCorreo, error)

	// ListStages returns every record of the case ordered by assignment time.
	ListStages(ctx context.Context, caseID string) ([]domain.FlujoCorreo, error)

	// SaveCaseAndStage writes the case, closes closed and opens opened in a
	// single transaction. correo.Version must equal the stored version; on
	// success it is incremented. Either stage may be nil.
	SaveCaseAndStage(ctx context.Context, correo *domain.Correo, closed, opened *domain.FlujoCorreo) error

	// UpdateActiveStage rewrites assignee and verdict of the open record
	// together with the case, under the same version check.
	UpdateActiveStage(ctx context.Context, correo *domain.Correo, active *domain.FlujoCorreo) error

	// ListCases returns cases ordered by reception time, newest first.
	ListCases(ctx context.Context, filter CaseFilter) ([]domain.Correo, error)
}
