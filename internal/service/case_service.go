package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/correspondence-service/internal/domain"
	"github.com/spec-kit/correspondence-service/internal/events"
	"github.com/spec-kit/correspondence-service/internal/lock"
	"github.com/spec-kit/correspondence-service/internal/observability"
	"github.com/spec-kit/correspondence-service/internal/repository"
	"github.com/spec-kit/correspondence-service/internal/workflow"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// errMissingActiveStage signals stored data that breaks the one-open-record rule.
var errMissingActiveStage = errors.New("case has no active stage record")

// CaseService is the single mutation entry point for correspondence cases.
type CaseService struct {
	cases      repository.CaseRepository
	locker     lock.CaseLocker
	validator  *workflow.Validator
	calc       workflow.Calculator
	dispatcher events.Dispatcher
	clock      workflow.Clock
	logger     *zap.Logger
	metrics    *observability.Metrics

	pending sync.WaitGroup
}

// CaseDependencies bundles collaborators for the case service.
type CaseDependencies struct {
	CaseRepo   repository.CaseRepository
	Locker     lock.CaseLocker
	Validator  *workflow.Validator
	Calculator workflow.Calculator
	Dispatcher events.Dispatcher
	Clock      workflow.Clock
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// CaseSnapshot is the read projection of a case at one instant.
type CaseSnapshot struct {
	Case        domain.Correo
	Etapa       domain.Etapa
	Status      domain.CaseStatus
	Deadline    workflow.Deadline
	ActiveStage *domain.FlujoCorreo
	// History holds every stage record ordered by assignment time. It is
	// left empty in list results.
	History          []domain.FlujoCorreo
	AvailableActions []domain.Action
}

// ActionResult is returned by ApplyAction.
type ActionResult struct {
	Snapshot *CaseSnapshot
	Event    events.Event
}

// RegisterCaseInput describes an inbound item handed over by mail ingestion.
type RegisterCaseInput struct {
	Subject         string
	SenderAccountID string
	EntityID        string
	RequestTypeID   *string
	Urgency         domain.Urgency
	ReceivedAt      time.Time
	RadicadoEntrada *string
}

// CaseListFilter mirrors the dashboard filters. Statuses are evaluated
// through the deadline calculator.
type CaseListFilter struct {
	EntityID      *string
	Statuses      []domain.CaseStatus
	Urgencies     []domain.Urgency
	RequestTypeID *string
	AssigneeID    *string
	Stages        []domain.Stage
	SearchField   repository.SearchField
	SearchValue   string
	ReceivedFrom  *time.Time
	ReceivedTo    *time.Time
	Limit         int
	Offset        int
}

// NewCaseService constructs the service.
func NewCaseService(deps CaseDependencies) *CaseService {
	svc := &CaseService{
		cases:      deps.CaseRepo,
		locker:     deps.Locker,
		validator:  deps.Validator,
		calc:       deps.Calculator,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
	if svc.locker == nil {
		svc.locker = lock.NewMemoryLocker()
	}
	if svc.validator == nil {
		svc.validator = workflow.NewValidator()
	}
	if svc.clock == nil {
		svc.clock = workflow.SystemClock
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// ApplyAction validates and commits one action. Business-rule rejections are
// returned as *workflow.Error and leave stored state untouched. A zero now
// means the service clock.
func (s *CaseService) ApplyAction(ctx context.Context, caseID string, req domain.ActionRequest, now time.Time) (*ActionResult, error) {
	if now.IsZero() {
		now = s.clock.Now()
	}

	unlock, err := s.locker.TryLock(ctx, caseID)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			s.recordOutcome(req.Action, string(workflow.CodeConflict))
			return nil, workflow.NewConflict(caseID, "case is being modified by another request")
		}
		return nil, fmt.Errorf("acquire case lock: %w", err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to release case lock", zap.String("case_id", caseID), zap.Error(err))
		}
	}()

	correo, err := s.cases.LoadCase(ctx, caseID)
	if err != nil {
		return nil, s.repoError(caseID, "load case", err)
	}
	active, err := s.cases.LoadActiveStage(ctx, caseID)
	if err != nil {
		return nil, s.repoError(caseID, "load active stage", err)
	}

	if req.ExpectedVersion != nil && *req.ExpectedVersion != correo.Version {
		s.recordOutcome(req.Action, string(workflow.CodeConflict))
		return nil, workflow.NewConflict(caseID, fmt.Sprintf("expected version %d, found %d", *req.ExpectedVersion, correo.Version))
	}

	decision, err := s.validator.Validate(s.stateOf(correo, active, now), req.Action, req.Role)
	if err != nil {
		return nil, s.reject(caseID, req, err)
	}

	m, err := s.plan(correo, active, decision, req, now)
	if err != nil {
		return nil, s.reject(caseID, req, err)
	}

	correo.Status = s.calc.Status(correo, now)
	correo.UpdatedAt = now

	// Abort point: nothing has been written yet.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if m.updated != nil {
		err = s.cases.UpdateActiveStage(ctx, correo, m.updated)
	} else {
		err = s.cases.SaveCaseAndStage(ctx, correo, m.closed, m.opened)
	}
	if err != nil {
		mapped := s.repoError(caseID, "save case", err)
		if workflow.IsWorkflowError(mapped) {
			s.recordOutcome(req.Action, string(workflow.CodeConflict))
		} else {
			s.logger.Error("failed to persist case action",
				zap.String("case_id", caseID),
				zap.String("action", string(req.Action)),
				zap.Error(err))
		}
		return nil, mapped
	}

	s.recordOutcome(req.Action, "ok")
	s.logAccepted(correo, decision, req, m)

	snapshot, err := s.buildSnapshot(ctx, correo, req.Role, now)
	if err != nil {
		return nil, err
	}

	event := m.event
	event.ID = uuid.NewString()
	event.CaseID = correo.ID
	event.Actor = actorOf(req)
	event.Timestamp = now
	s.publishAsync(ctx, event)

	return &ActionResult{Snapshot: snapshot, Event: event}, nil
}

// GetCaseSnapshot returns the current projection of a case. viewer selects
// which available actions are listed; an empty role lists none.
func (s *CaseService) GetCaseSnapshot(ctx context.Context, caseID string, viewer domain.Role) (*CaseSnapshot, error) {
	correo, err := s.cases.LoadCase(ctx, caseID)
	if err != nil {
		return nil, s.repoError(caseID, "load case", err)
	}
	return s.buildSnapshot(ctx, correo, viewer, s.clock.Now())
}

// ListCases returns snapshots matching filter, newest reception first.
func (s *CaseService) ListCases(ctx context.Context, filter CaseListFilter) ([]CaseSnapshot, error) {
	if filter.SearchValue != "" && filter.SearchField != "" && !filter.SearchField.Valid() {
		return nil, workflow.NewInvalidRequest("", "unknown search field "+string(filter.SearchField))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	repoFilter := repository.CaseFilter{
		EntityID:      filter.EntityID,
		Urgencies:     filter.Urgencies,
		RequestTypeID: filter.RequestTypeID,
		AssigneeID:    filter.AssigneeID,
		Stages:        filter.Stages,
		SearchField:   filter.SearchField,
		SearchValue:   filter.SearchValue,
		ReceivedFrom:  filter.ReceivedFrom,
		ReceivedTo:    filter.ReceivedTo,
	}
	// Status depends on the current time, so pagination happens after it is
	// evaluated whenever the caller filters on it.
	if len(filter.Statuses) == 0 {
		repoFilter.Limit = limit
		repoFilter.Offset = offset
	}

	found, err := s.cases.ListCases(ctx, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}

	now := s.clock.Now()
	snapshots := make([]CaseSnapshot, 0, len(found))
	for i := range found {
		snapshot := s.project(&found[i], now)
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, snapshot.Status) {
			continue
		}
		snapshots = append(snapshots, *snapshot)
	}

	if len(filter.Statuses) > 0 {
		if offset >= len(snapshots) {
			return []CaseSnapshot{}, nil
		}
		snapshots = snapshots[offset:]
		if len(snapshots) > limit {
			snapshots = snapshots[:limit]
		}
	}
	return snapshots, nil
}

// RegisterCase stores a new unassigned case with no stage records.
func (s *CaseService) RegisterCase(ctx context.Context, input RegisterCaseInput, actor events.Actor) (*CaseSnapshot, error) {
	subject := strings.TrimSpace(input.Subject)
	sender := strings.TrimSpace(input.SenderAccountID)
	entity := strings.TrimSpace(input.EntityID)
	switch {
	case subject == "":
		return nil, workflow.NewInvalidRequest("", "subject is required")
	case sender == "":
		return nil, workflow.NewInvalidRequest("", "sender account is required")
	case entity == "":
		return nil, workflow.NewInvalidRequest("", "entity is required")
	}
	urgency := input.Urgency
	if urgency == "" {
		urgency = domain.UrgencyMedia
	}
	if !urgency.Valid() {
		return nil, workflow.NewInvalidRequest("", "unknown urgency "+string(urgency))
	}

	now := s.clock.Now()
	received := input.ReceivedAt
	if received.IsZero() {
		received = now
	}

	correo := &domain.Correo{
		ID:              caseIDFor(input.RadicadoEntrada),
		Subject:         subject,
		SenderAccountID: sender,
		EntityID:        entity,
		RequestTypeID:   nonEmpty(input.RequestTypeID),
		Urgency:         urgency,
		ReceivedAt:      received,
		RadicadoEntrada: nonEmpty(input.RadicadoEntrada),
		Stage:           domain.StageUnassigned,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	correo.Status = s.calc.Status(correo, now)

	if err := s.cases.Create(ctx, correo); err != nil {
		return nil, s.repoError(correo.ID, "create case", err)
	}
	s.logger.Info("case registered", zap.String("case_id", correo.ID), zap.String("entity_id", correo.EntityID))

	s.publishAsync(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventCaseRegistered,
		CaseID:    correo.ID,
		Actor:     actor,
		Timestamp: now,
		Payload: events.CaseRegisteredPayload{
			Subject:         correo.Subject,
			EntityID:        correo.EntityID,
			RadicadoEntrada: correo.RadicadoEntrada,
		},
	})
	return s.buildSnapshot(ctx, correo, actor.Role, now)
}

// NotifyOverdue publishes case_overdue for every undispatched case whose
// deadline has passed at now, and returns how many were published.
func (s *CaseService) NotifyOverdue(ctx context.Context, now time.Time) (int, error) {
	found, err := s.cases.ListCases(ctx, repository.CaseFilter{Stages: pendingStages()})
	if err != nil {
		return 0, fmt.Errorf("list pending cases: %w", err)
	}

	published := 0
	for i := range found {
		correo := &found[i]
		deadline := s.calc.ForCase(correo, now)
		overdue, err := deadline.Overdue()
		if err != nil || !overdue {
			continue
		}
		s.publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventCaseOverdue,
			CaseID:    correo.ID,
			Actor:     events.Actor{Name: "deadline-sweeper"},
			Timestamp: now,
			Payload: events.OverduePayload{
				Stage:         correo.Stage,
				DaysUsed:      deadline.DaysUsed,
				DaysRemaining: *deadline.DaysRemaining,
				GestorID:      correo.GestorID,
			},
		})
		published++
	}
	return published, nil
}

// Wait blocks until events published asynchronously have been delivered.
func (s *CaseService) Wait() {
	s.pending.Wait()
}

// mutation is the write an accepted action produces. Exactly one of
// updated or (closed, opened) is used.
type mutation struct {
	closed  *domain.FlujoCorreo
	opened  *domain.FlujoCorreo
	updated *domain.FlujoCorreo
	event   events.Event
}

func (s *CaseService) plan(correo *domain.Correo, active *domain.FlujoCorreo, decision workflow.Decision, req domain.ActionRequest, now time.Time) (*mutation, error) {
	switch decision.Kind {
	case workflow.KindCaseUpdate:
		return s.planClassification(correo, req)
	case workflow.KindStageUpdate:
		if active == nil {
			return nil, fmt.Errorf("%w: %s", errMissingActiveStage, correo.ID)
		}
		if decision.Verdict != domain.VerdictNone {
			updated := active.Clone()
			updated.Verdict = decision.Verdict
			return &mutation{
				updated: updated,
				event: events.Event{
					Type: events.EventCaseVerdict,
					Payload: events.VerdictPayload{
						Action:  decision.Action,
						Stage:   active.Stage,
						Verdict: decision.Verdict,
					},
				},
			}, nil
		}
		return s.planReassignment(correo, active, req)
	case workflow.KindTransition:
		return s.planTransition(correo, active, decision, req, now)
	}
	return nil, workflow.NewInvalidRequest(req.Action, "unsupported action kind "+decision.Kind.String())
}

func (s *CaseService) planClassification(correo *domain.Correo, req domain.ActionRequest) (*mutation, error) {
	c := req.Classification
	if c == nil {
		return nil, workflow.NewInvalidRequest(req.Action, "classification is required")
	}
	if c.DeadlineDays <= 0 {
		return nil, workflow.NewInvalidRequest(req.Action, "deadline days must be positive")
	}
	if c.Urgency != "" && !c.Urgency.Valid() {
		return nil, workflow.NewInvalidRequest(req.Action, "unknown urgency "+string(c.Urgency))
	}

	days := c.DeadlineDays
	correo.DeadlineDays = &days
	if c.Urgency != "" {
		correo.Urgency = c.Urgency
	}
	if id := nonEmpty(c.RequestTypeID); id != nil {
		correo.RequestTypeID = id
	}
	if id := nonEmpty(c.EntityID); id != nil {
		correo.EntityID = *id
	}
	return &mutation{
		event: events.Event{
			Type: events.EventCaseClassified,
			Payload: events.CaseClassifiedPayload{
				DeadlineDays:  days,
				Urgency:       correo.Urgency,
				RequestTypeID: correo.RequestTypeID,
			},
		},
	}, nil
}

func (s *CaseService) planReassignment(correo *domain.Correo, active *domain.FlujoCorreo, req domain.ActionRequest) (*mutation, error) {
	if req.Assignee == nil || strings.TrimSpace(req.Assignee.ID) == "" {
		return nil, workflow.NewInvalidRequest(req.Action, "assignee is required")
	}
	id, name := assigneeFields(req.Assignee)

	updated := active.Clone()
	updated.AssigneeID = id
	updated.AssigneeName = name
	if gestorOwned(active.Stage) {
		correo.GestorID = cloneStr(id)
		correo.GestorName = cloneStr(name)
	}
	return &mutation{
		updated: updated,
		event: events.Event{
			Type: events.EventCaseReassigned,
			Payload: events.ReassignedPayload{
				Stage:         active.Stage,
				OldAssigneeID: active.AssigneeID,
				NewAssigneeID: id,
			},
		},
	}, nil
}

func (s *CaseService) planTransition(correo *domain.Correo, active *domain.FlujoCorreo, decision workflow.Decision, req domain.ActionRequest, now time.Time) (*mutation, error) {
	if decision.Action == domain.ActionAssign {
		if req.Assignee == nil || strings.TrimSpace(req.Assignee.ID) == "" {
			return nil, workflow.NewInvalidRequest(req.Action, "assignee is required")
		}
		if !correo.Classified() {
			return nil, workflow.ErrDeadlineNotConfigured.WithCase(correo.ID)
		}
		correo.GestorID, correo.GestorName = assigneeFields(req.Assignee)
	}
	// Ownership changes only through assign and reassign, whose roles the
	// matrix restricts.
	if decision.Action != domain.ActionAssign && req.Assignee != nil {
		return nil, workflow.NewInvalidRequest(req.Action, "assignee is only accepted by assign and reassign")
	}
	if decision.Action == domain.ActionDispatch {
		if rad := nonEmpty(req.RadicadoSalida); rad != nil {
			correo.RadicadoSalida = rad
		}
	}

	m := &mutation{}
	if active != nil {
		m.closed = active.Clone()
		m.closed.Close(now)
	} else if decision.From.HasActiveRecord() {
		return nil, fmt.Errorf("%w: %s", errMissingActiveStage, correo.ID)
	}

	if decision.To.HasActiveRecord() {
		assignedAt := now
		// Keep the history ordered even when the caller's clock lags.
		if m.closed != nil && m.closed.FinalizedAt.After(assignedAt) {
			assignedAt = *m.closed.FinalizedAt
		}
		id, name := s.nextAssignee(correo, decision, req)
		m.opened = &domain.FlujoCorreo{
			ID:           uuid.NewString(),
			CorreoID:     correo.ID,
			AssigneeID:   id,
			AssigneeName: name,
			Stage:        decision.To,
			AssignedAt:   assignedAt,
		}
	}

	correo.Stage = decision.To
	if decision.To.Terminal() {
		closedAt := now
		correo.ClosedAt = &closedAt
	}

	var assigneeID *string
	if m.opened != nil {
		assigneeID = m.opened.AssigneeID
	}
	m.event = events.Event{
		Type: events.EventCaseStageChanged,
		Payload: events.StageChangedPayload{
			Action:     decision.Action,
			FromStage:  decision.From,
			ToStage:    decision.To,
			BackEdge:   decision.BackEdge,
			AssigneeID: assigneeID,
			Status:     s.calc.Status(correo, now),
			Comment:    req.Comment,
		},
	}
	return m, nil
}

// nextAssignee picks the owner of a newly opened record: the case Gestor for
// Gestor stages and back-edges (set by assign just before), the dispatching
// actor for DISPATCHED, and nobody otherwise.
func (s *CaseService) nextAssignee(correo *domain.Correo, decision workflow.Decision, req domain.ActionRequest) (*string, *string) {
	switch {
	case decision.BackEdge, gestorOwned(decision.To):
		return cloneStr(correo.GestorID), cloneStr(correo.GestorName)
	case decision.To == domain.StageDispatched && req.ActorID != "":
		return assigneeFields(&domain.Assignee{ID: req.ActorID, Name: req.ActorName})
	}
	return nil, nil
}

func (s *CaseService) stateOf(correo *domain.Correo, active *domain.FlujoCorreo, now time.Time) workflow.State {
	state := workflow.State{
		Stage:  correo.Stage,
		Status: s.calc.Status(correo, now),
	}
	if active != nil {
		state.Verdict = active.Verdict
	}
	return state
}

func (s *CaseService) buildSnapshot(ctx context.Context, correo *domain.Correo, viewer domain.Role, now time.Time) (*CaseSnapshot, error) {
	snapshot := s.project(correo, now)
	history, err := s.cases.ListStages(ctx, correo.ID)
	if err != nil {
		return nil, s.repoError(correo.ID, "list stages", err)
	}
	snapshot.History = history
	for i := range history {
		if history[i].Active() {
			snapshot.ActiveStage = history[i].Clone()
		}
	}
	if viewer != "" {
		state := workflow.State{Stage: correo.Stage, Status: snapshot.Status}
		if snapshot.ActiveStage != nil {
			state.Verdict = snapshot.ActiveStage.Verdict
		}
		snapshot.AvailableActions = s.validator.AvailableActions(state, viewer)
	}
	return snapshot, nil
}

func (s *CaseService) project(correo *domain.Correo, now time.Time) *CaseSnapshot {
	deadline := s.calc.ForCase(correo, now)
	status := workflow.DeriveStatus(correo.Stage, deadline)
	c := correo.Clone()
	c.Status = status
	return &CaseSnapshot{
		Case:     *c,
		Etapa:    c.Stage.Etapa(),
		Status:   status,
		Deadline: deadline,
	}
}

func (s *CaseService) reject(caseID string, req domain.ActionRequest, err error) error {
	wfErr, ok := workflow.AsError(err)
	if !ok {
		s.logger.Error("case action failed",
			zap.String("case_id", caseID),
			zap.String("action", string(req.Action)),
			zap.Error(err))
		return err
	}
	wfErr = wfErr.WithCase(caseID)
	s.recordOutcome(req.Action, string(wfErr.Code))
	s.logger.Info("case action rejected",
		zap.String("case_id", caseID),
		zap.String("action", string(req.Action)),
		zap.String("role", string(req.Role)),
		zap.String("actor_id", req.ActorID),
		zap.String("code", string(wfErr.Code)),
		zap.String("reason", wfErr.Message))
	return wfErr
}

func (s *CaseService) repoError(caseID, op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrCaseNotFound):
		return workflow.NewCaseNotFound(caseID)
	case errors.Is(err, repository.ErrVersionConflict):
		return workflow.NewConflict(caseID, "case changed since it was loaded; reload and retry")
	case errors.Is(err, repository.ErrDuplicateCase):
		return workflow.NewConflict(caseID, "case already registered")
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *CaseService) logAccepted(correo *domain.Correo, decision workflow.Decision, req domain.ActionRequest, m *mutation) {
	fields := []zap.Field{
		zap.String("case_id", correo.ID),
		zap.String("action", string(decision.Action)),
		zap.String("from", string(decision.From)),
		zap.String("to", string(decision.To)),
		zap.String("actor_id", req.ActorID),
		zap.String("role", string(req.Role)),
		zap.Int64("version", correo.Version),
	}
	if decision.Action == domain.ActionReassign && m.updated != nil {
		fields = append(fields, zap.Stringp("assignee_id", m.updated.AssigneeID))
		s.logger.Info("case reassigned", fields...)
		return
	}
	s.logger.Info("case action applied", fields...)
}

func (s *CaseService) recordOutcome(action domain.Action, outcome string) {
	s.metrics.RecordTransition(string(action), outcome)
}

// publishAsync hands the event to the dispatcher without waiting for it.
func (s *CaseService) publishAsync(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.publish(detached, event)
	}()
}

func (s *CaseService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("case_id", event.CaseID),
			zap.Error(err))
	}
}

func actorOf(req domain.ActionRequest) events.Actor {
	return events.Actor{UserID: req.ActorID, Name: req.ActorName, Role: req.Role}
}

// gestorOwned reports whether the case Gestor works the stage.
func gestorOwned(stage domain.Stage) bool {
	switch stage {
	case domain.StageAssigned, domain.StageInRedaction, domain.StageSigned, domain.StageInOutbox:
		return true
	}
	return false
}

func pendingStages() []domain.Stage {
	stages := make([]domain.Stage, 0, len(domain.Stages))
	for _, stage := range domain.Stages {
		if !stage.Dispatched() {
			stages = append(stages, stage)
		}
	}
	return stages
}

func caseIDFor(radicado *string) string {
	rad := nonEmpty(radicado)
	if rad == nil {
		return uuid.NewString()
	}
	number := strings.ToUpper(*rad)
	number = strings.TrimPrefix(number, "RAD-")
	return "RAD-" + number
}

func assigneeFields(a *domain.Assignee) (*string, *string) {
	id := strings.TrimSpace(a.ID)
	var name *string
	if n := strings.TrimSpace(a.Name); n != "" {
		name = &n
	}
	return &id, name
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func containsStatus(list []domain.CaseStatus, status domain.CaseStatus) bool {
	for _, candidate := range list {
		if candidate == status {
			return true
		}
	}
	return false
}
