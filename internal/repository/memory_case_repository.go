package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

// MemoryCaseRepository is an in-memory CaseRepository used in tests and
// when no database is configured.
type MemoryCaseRepository struct {
	mu     sync.RWMutex
	cases  map[string]*domain.Correo
	stages map[string][]*domain.FlujoCorreo // key: case ID
}

// NewMemoryCaseRepository creates an empty repository.
func NewMemoryCaseRepository() *MemoryCaseRepository {
	return &MemoryCaseRepository{
		cases:  make(map[string]*domain.Correo),
		stages: make(map[string][]*domain.FlujoCorreo),
	}
}

func (r *MemoryCaseRepository) Create(_ context.Context, correo *domain.Correo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cases[correo.ID]; exists {
		return ErrDuplicateCase
	}
	if correo.Version == 0 {
		correo.Version = 1
	}
	r.cases[correo.ID] = correo.Clone()
	return nil
}

func (r *MemoryCaseRepository) LoadCase(_ context.Context, id string) (*domain.Correo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.cases[id]
	if !ok {
		return nil, ErrCaseNotFound
	}
	return stored.Clone(), nil
}

func (r *MemoryCaseRepository) LoadActiveStage(_ context.Context, caseID string) (*domain.FlujoCorreo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.cases[caseID]; !ok {
		return nil, ErrCaseNotFound
	}
	return r.activeLocked(caseID).Clone(), nil
}

func (r *MemoryCaseRepository) ListStages(_ context.Context, caseID string) ([]domain.FlujoCorreo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.cases[caseID]; !ok {
		return nil, ErrCaseNotFound
	}
	records := r.stages[caseID]
	result := make([]domain.FlujoCorreo, 0, len(records))
	for _, record := range records {
		result = append(result, *record.Clone())
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].AssignedAt.Before(result[j].AssignedAt)
	})
	return result, nil
}

func (r *MemoryCaseRepository) SaveCaseAndStage(_ context.Context, correo *domain.Correo, closed, opened *domain.FlujoCorreo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkVersionLocked(correo); err != nil {
		return err
	}

	// Validate the whole write before touching anything.
	active := r.activeLocked(correo.ID)
	if closed != nil {
		if active == nil || active.ID != closed.ID || closed.FinalizedAt == nil {
			return ErrVersionConflict
		}
	}
	if opened != nil {
		if active != nil && closed == nil {
			return ErrVersionConflict
		}
		if opened.FinalizedAt != nil {
			return ErrVersionConflict
		}
	}

	if closed != nil {
		finalized := *closed.FinalizedAt
		active.FinalizedAt = &finalized
		active.Verdict = closed.Verdict
	}
	if opened != nil {
		r.stages[correo.ID] = append(r.stages[correo.ID], opened.Clone())
	}
	r.commitCaseLocked(correo)
	return nil
}

func (r *MemoryCaseRepository) UpdateActiveStage(_ context.Context, correo *domain.Correo, updated *domain.FlujoCorreo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkVersionLocked(correo); err != nil {
		return err
	}
	active := r.activeLocked(correo.ID)
	if active == nil || updated == nil || active.ID != updated.ID {
		return ErrVersionConflict
	}
	active.AssigneeID = updated.AssigneeID
	active.AssigneeName = updated.AssigneeName
	active.Verdict = updated.Verdict
	r.commitCaseLocked(correo)
	return nil
}

func (r *MemoryCaseRepository) ListCases(_ context.Context, filter CaseFilter) ([]domain.Correo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Correo
	for _, stored := range r.cases {
		if !matchesFilter(stored, r.activeLocked(stored.ID), filter) {
			continue
		}
		result = append(result, *stored.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ReceivedAt.Equal(result[j].ReceivedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].ReceivedAt.After(result[j].ReceivedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []domain.Correo{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

// ActiveCount returns how many open records a case has. For tests.
func (r *MemoryCaseRepository) ActiveCount(caseID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, record := range r.stages[caseID] {
		if record.Active() {
			count++
		}
	}
	return count
}

func (r *MemoryCaseRepository) checkVersionLocked(correo *domain.Correo) error {
	stored, ok := r.cases[correo.ID]
	if !ok {
		return ErrCaseNotFound
	}
	if stored.Version != correo.Version {
		return ErrVersionConflict
	}
	return nil
}

func (r *MemoryCaseRepository) commitCaseLocked(correo *domain.Correo) {
	correo.Version++
	r.cases[correo.ID] = correo.Clone()
}

func (r *MemoryCaseRepository) activeLocked(caseID string) *domain.FlujoCorreo {
	records := r.stages[caseID]
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Active() {
			return records[i]
		}
	}
	return nil
}

func matchesFilter(c *domain.Correo, active *domain.FlujoCorreo, filter CaseFilter) bool {
	if filter.EntityID != nil && c.EntityID != *filter.EntityID {
		return false
	}
	if filter.RequestTypeID != nil && (c.RequestTypeID == nil || *c.RequestTypeID != *filter.RequestTypeID) {
		return false
	}
	if filter.AssigneeID != nil && (active == nil || active.AssigneeID == nil || *active.AssigneeID != *filter.AssigneeID) {
		return false
	}
	if len(filter.Urgencies) > 0 && !containsUrgency(filter.Urgencies, c.Urgency) {
		return false
	}
	if len(filter.Stages) > 0 && !containsStage(filter.Stages, c.Stage) {
		return false
	}
	if filter.ReceivedFrom != nil && c.ReceivedAt.Before(*filter.ReceivedFrom) {
		return false
	}
	if filter.ReceivedTo != nil && c.ReceivedAt.After(*filter.ReceivedTo) {
		return false
	}
	if value := strings.ToLower(strings.TrimSpace(filter.SearchValue)); value != "" {
		if !strings.Contains(strings.ToLower(searchTarget(c, filter.SearchField)), value) {
			return false
		}
	}
	return true
}

func searchTarget(c *domain.Correo, field SearchField) string {
	switch field {
	case SearchSender:
		return c.SenderAccountID
	case SearchRadicadoEntrada:
		return deref(c.RadicadoEntrada)
	case SearchRadicadoSalida:
		return deref(c.RadicadoSalida)
	case SearchID:
		return c.ID
	default:
		return c.Subject
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func containsUrgency(list []domain.Urgency, u domain.Urgency) bool {
	for _, candidate := range list {
		if candidate == u {
			return true
		}
	}
	return false
}

func containsStage(list []domain.Stage, s domain.Stage) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}
