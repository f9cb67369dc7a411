package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/correspondence-service/internal/domain"
	"github.com/spec-kit/correspondence-service/internal/events"
	"github.com/spec-kit/correspondence-service/internal/lock"
	"github.com/spec-kit/correspondence-service/internal/observability"
	"github.com/spec-kit/correspondence-service/internal/repository"
	"github.com/spec-kit/correspondence-service/internal/workflow"
)

var bogota = time.FixedZone("COT", -5*3600)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc     *CaseService
	repo    *repository.MemoryCaseRepository
	clock   *testClock
	metrics *observability.Metrics

	mu     sync.Mutex
	events []events.Event
}

func newFixture(t *testing.T, opts ...func(*CaseDependencies)) *fixture {
	t.Helper()
	f := &fixture{
		repo:    repository.NewMemoryCaseRepository(),
		clock:   &testClock{now: time.Date(2024, 3, 4, 9, 0, 0, 0, bogota)},
		metrics: observability.NewMetrics(),
	}
	dispatcher := events.NewInMemoryDispatcher()
	events.SubscribeAll(dispatcher, func(_ context.Context, e events.Event) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.events = append(f.events, e)
		return nil
	})

	deps := CaseDependencies{
		CaseRepo:   f.repo,
		Locker:     lock.NewMemoryLocker(),
		Validator:  workflow.NewValidator(),
		Calculator: workflow.NewCalculator(bogota),
		Dispatcher: dispatcher,
		Clock:      f.clock,
		Logger:     zap.NewNop(),
		Metrics:    f.metrics,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.svc = NewCaseService(deps)
	return f
}

func (f *fixture) publishedTypes() []events.EventType {
	f.svc.Wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]events.EventType, 0, len(f.events))
	for _, e := range f.events {
		types = append(types, e.Type)
	}
	return types
}

func (f *fixture) register(t *testing.T) string {
	t.Helper()
	snapshot, err := f.svc.RegisterCase(context.Background(), RegisterCaseInput{
		Subject:         "Solicitud de información pública",
		SenderAccountID: "ciudadano@example.com",
		EntityID:        "entidad-1",
	}, events.Actor{Name: "ingesta"})
	require.NoError(t, err)
	return snapshot.Case.ID
}

func (f *fixture) apply(t *testing.T, caseID string, req domain.ActionRequest) *ActionResult {
	t.Helper()
	result, err := f.svc.ApplyAction(context.Background(), caseID, req, time.Time{})
	require.NoError(t, err, "action %s", req.Action)
	return result
}

func request(action domain.Action, role domain.Role, actorID string) domain.ActionRequest {
	return domain.ActionRequest{Action: action, Role: role, ActorID: actorID, ActorName: actorID}
}

func classifyRequest(days int) domain.ActionRequest {
	req := request(domain.ActionClassify, domain.RoleIntegrador, "integrador-1")
	req.Classification = &domain.Classification{DeadlineDays: days, Urgency: domain.UrgencyAlta}
	return req
}

func assignRequest(gestorID string) domain.ActionRequest {
	req := request(domain.ActionAssign, domain.RoleIntegrador, "integrador-1")
	req.Assignee = &domain.Assignee{ID: gestorID, Name: "Gestor " + gestorID}
	return req
}

// pipeline drives a case from reception to acknowledgment.
func pipeline() []domain.ActionRequest {
	return []domain.ActionRequest{
		classifyRequest(10),
		assignRequest("gestor-1"),
		request(domain.ActionStartRedaction, domain.RoleGestor, "gestor-1"),
		request(domain.ActionSendToReview, domain.RoleGestor, "gestor-1"),
		request(domain.ActionApproveReview, domain.RoleRevisor, "revisor-1"),
		request(domain.ActionApprove, domain.RoleAprobador, "aprobador-1"),
		request(domain.ActionAttachLegalSignature, domain.RoleGestor, "gestor-1"),
		request(domain.ActionSendToOutbox, domain.RoleGestor, "gestor-1"),
		request(domain.ActionDispatch, domain.RoleIntegrador, "integrador-1"),
		request(domain.ActionAcknowledge, domain.RoleIntegrador, "integrador-1"),
	}
}

func (f *fixture) advanceTo(t *testing.T, caseID string, stage domain.Stage) {
	t.Helper()
	for _, req := range pipeline() {
		snapshot, err := f.svc.GetCaseSnapshot(context.Background(), caseID, "")
		require.NoError(t, err)
		if snapshot.Case.Stage == stage && req.Action != domain.ActionClassify {
			return
		}
		f.apply(t, caseID, req)
	}
}

func requireCode(t *testing.T, err error, code workflow.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	wfErr, ok := workflow.AsError(err)
	require.True(t, ok, "expected workflow error, got %v", err)
	assert.Equal(t, code, wfErr.Code, wfErr.Message)
}

func TestCaseService_RegisterCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rad := "2024-000123"

	snapshot, err := f.svc.RegisterCase(ctx, RegisterCaseInput{
		Subject:         "Derecho de petición",
		SenderAccountID: "ciudadano@example.com",
		EntityID:        "entidad-1",
		RadicadoEntrada: &rad,
	}, events.Actor{Name: "ingesta"})
	require.NoError(t, err)
	assert.Equal(t, "RAD-2024-000123", snapshot.Case.ID)
	assert.Equal(t, domain.StageUnassigned, snapshot.Case.Stage)
	assert.Equal(t, domain.CaseStatusPendiente, snapshot.Status)
	assert.Equal(t, domain.UrgencyMedia, snapshot.Case.Urgency)
	assert.Empty(t, snapshot.History)
	assert.Nil(t, snapshot.ActiveStage)
	assert.False(t, snapshot.Deadline.Configured())

	_, err = f.svc.RegisterCase(ctx, RegisterCaseInput{
		Subject:         "otra",
		SenderAccountID: "x@example.com",
		EntityID:        "entidad-1",
		RadicadoEntrada: &rad,
	}, events.Actor{})
	requireCode(t, err, workflow.CodeConflict)

	_, err = f.svc.RegisterCase(ctx, RegisterCaseInput{SenderAccountID: "x@example.com", EntityID: "e"}, events.Actor{})
	requireCode(t, err, workflow.CodeInvalidRequest)

	assert.Equal(t, []events.EventType{events.EventCaseRegistered}, f.publishedTypes())
}

func TestCaseService_FullPipelineEndsRespondido(t *testing.T) {
	f := newFixture(t)
	caseID := f.register(t)

	for _, req := range pipeline() {
		before, err := f.svc.GetCaseSnapshot(context.Background(), caseID, "")
		require.NoError(t, err)

		result := f.apply(t, caseID, req)
		after := result.Snapshot

		assert.LessOrEqual(t, f.repo.ActiveCount(caseID), 1, "after %s", req.Action)
		if result.Event.Type == events.EventCaseStageChanged {
			wantLen := len(before.History)
			if after.Case.Stage.HasActiveRecord() {
				wantLen++
			}
			assert.Len(t, after.History, wantLen, "history after %s", req.Action)
			assert.Equal(t, countClosed(before.History)+boolToInt(before.ActiveStage != nil), countClosed(after.History), "closed after %s", req.Action)
		} else {
			assert.Len(t, after.History, len(before.History), "history after %s", req.Action)
		}
	}

	final, err := f.svc.GetCaseSnapshot(context.Background(), caseID, domain.RoleIntegrador)
	require.NoError(t, err)
	assert.Equal(t, domain.StageAcknowledged, final.Case.Stage)
	assert.Equal(t, domain.EtapaAcuse, final.Etapa)
	assert.Equal(t, domain.CaseStatusRespondido, final.Status)
	assert.Nil(t, final.ActiveStage)
	assert.Len(t, final.History, 7)
	assert.NotNil(t, final.Case.ClosedAt)
	assert.Empty(t, final.AvailableActions)
	assert.Zero(t, f.repo.ActiveCount(caseID))

	for i := 1; i < len(final.History); i++ {
		prev := final.History[i-1]
		require.NotNil(t, prev.FinalizedAt)
		assert.False(t, final.History[i].AssignedAt.Before(*prev.FinalizedAt))
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TransitionsTotal.WithLabelValues(string(domain.ActionAcknowledge), "ok")))
}

func TestCaseService_ScenarioA_OverdueAfterDeadline(t *testing.T) {
	f := newFixture(t)
	caseID := f.register(t)
	f.apply(t, caseID, classifyRequest(10))
	f.apply(t, caseID, assignRequest("gestor-1"))

	f.clock.Advance(11 * 24 * time.Hour)

	snapshot, err := f.svc.GetCaseSnapshot(context.Background(), caseID, "")
	require.NoError(t, err)
	require.NotNil(t, snapshot.Deadline.IsOverdue)
	assert.True(t, *snapshot.Deadline.IsOverdue)
	require.NotNil(t, snapshot.Deadline.DaysRemaining)
	assert.Equal(t, -1, *snapshot.Deadline.DaysRemaining)
	assert.Equal(t, 11, snapshot.Deadline.DaysUsed)
	assert.Equal(t, domain.CaseStatusVencido, snapshot.Status)
}

func TestCaseService_ScenarioB_IllegalTransitionLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	caseID := f.register(t)
	f.advanceTo(t, caseID, domain.StageAssigned)

	before, err := f.svc.GetCaseSnapshot(context.Background(), caseID, "")
	require.NoError(t, err)

	_, err = f.svc.ApplyAction(context.Background(), caseID, request(domain.ActionSendToReview, domain.RoleGestor, "gestor-1"), time.Time{})
	requireCode(t, err, workflow.CodeIllegalStageTransition)

	after, err := f.svc.GetCaseSnapshot(context.Background(), caseID, "")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCaseService_ScenarioC_ReviewRejectionReturnsToGestor(t *testing.T) {
	f := newFixture(t)
	caseID := f.register(t)
	f.advanceTo(t, caseID, domain.StageInReview)

	result := f.apply(t, caseID, request(domain.ActionRejectReview, domain.RoleRevisor, "revisor-1"))
	snapshot := result.Snapshot

	assert.Equal(t, domain.StageInRedaction, snapshot.Case.Stage)
	assert.Equal(t, domain.CaseStatusPendiente, snapshot.Status)
	require.NotNil(t, snapshot.ActiveStage)
	assert.Equal(t, domain.StageInRedaction, snapshot.ActiveStage.Stage)
	require.NotNil(t, snapshot.ActiveStage.AssigneeID)
	assert.Equal(t, "gestor-1", *snapshot.ActiveStage.AssigneeID)

	payload, ok := result.Event.Payload.(events.StageChangedPayload)
	require.True(t, ok)
	assert.True(t, payload.BackEdge)
	assert.Equal(t, domain.StageInReview, payload.FromStage)
}

func TestCaseService_TransitionsIgnoreCallerChosenOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caseID := f.register(t)
	f.advanceTo(t, caseID, domain.StageInReview)

	before, err := f.svc.GetCaseSnapshot(ctx, caseID, "")
	require.NoError(t, err)

	req := request(domain.ActionRejectReview, domain.RoleRevisor, "revisor-1")
	req.Assignee = &domain.Assignee{ID: "intruder"}
	_, err = f.svc.ApplyAction(ctx, caseID, req, time.Time{})
	requireCode(t, err, workflow.CodeInvalidRequest)

	after, err := f.svc.GetCaseSnapshot(ctx, caseID, "")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	result := f.apply(t, caseID, request(domain.ActionRejectReview, domain.RoleRevisor, "revisor-1"))
	require.NotNil(t, result.Snapshot.ActiveStage.AssigneeID)
	assert.Equal(t, "gestor-1", *result.Snapshot.ActiveStage.AssigneeID)
	assert.Equal(t, "gestor-1", *result.Snapshot.Case.GestorID)

	f.apply(t, caseID, request(domain.ActionSendToReview, domain.RoleGestor, "gestor-1"))
	f.apply(t, caseID, request(domain.ActionApproveReview, domain.RoleRevisor, "revisor-1"))
	reject := request(domain.ActionReject, domain.RoleAprobador, "aprobador-1")
	reject.Assignee = &domain.Assignee{ID: "intruder"}
	_, err = f.svc.ApplyAction(ctx, caseID, reject, time.Time{})
	requireCode(t, err, workflow.CodeInvalidRequest)
}

func TestCaseService_RegisterCaseNormalizesRadicado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, rad := range []string{"rad-abc", "abc", "RAD-abc", " Abc "} {
		rad := rad
		snapshot, err := f.svc.RegisterCase(ctx, RegisterCaseInput{
			Subject:         "Queja",
			SenderAccountID: "ciudadano@example.com",
			EntityID:        "entidad-1",
			RadicadoEntrada: &rad,
		}, events.Actor{})
		if i == 0 {
			require.NoError(t, err)
			assert.Equal(t, "RAD-ABC", snapshot.Case.ID)
			continue
		}
		requireCode(t, err, workflow.CodeConflict)
	}
}

// pausingRepository blocks the first SaveCaseAndStage until released.
type pausingRepository struct {
	repository.CaseRepository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newPausingRepository(inner repository.CaseRepository) *pausingRepository {
	return &pausingRepository{
		CaseRepository: inner,
		entered:        make(chan struct{}),
		release:        make(chan struct{}),
	}
}

func (r *pausingRepository) SaveCaseAndStage(ctx context.Context, correo *domain.Correo, closed, opened *domain.FlujoCorreo) error {
	r.once.Do(func() {
		close(r.entered)
		<-r.release
	})
	return r.CaseRepository.SaveCaseAndStage(ctx, correo, closed, opened)
}

func TestCaseService_ScenarioD_ConcurrentActionsOneWins(t *testing.T) {
	f := newFixture(t)
	caseID := f.register(t)
	f.advanceTo(t, caseID, domain.StageAssigned)

	paused := newPausingRepository(f.repo)
	svc := NewCaseService(CaseDependencies{
		CaseRepo:   paused,
		Locker:     lock.NewMemoryLocker(),
		Calculator: workflow.NewCalculator(bogota),
		Clock:      f.clock,
	})

	type outcome struct {
		result *ActionResult
		err    error
	}
	first := make(chan outcome, 1)
	go func() {
		result, err := svc.ApplyAction(context.Background(), caseID, request(domain.ActionStartRedaction, domain.RoleGestor, "gestor-1"), time.Time{})
		first <- outcome{result, err}
	}()

	<-paused.entered
	_, err := svc.ApplyAction(context.Background(), caseID, request(domain.ActionStartRedaction, domain.RoleGestor, "gestor-1"), time.Time{})
	requireCode(t, err, workflow.CodeConflict)

	close(paused.release)
	won := <-first
	require.NoError(t, won.err)
	assert.Equal(t, domain.StageInRedaction, won.result.Snapshot.Case.Stage)
	assert.Equal(t, 1, f.repo.ActiveCount(caseID))
}

func TestCaseService_ConcurrentReplicasResolvedByVersion(t *testing.T) {
	f := newFixture(t)
	caseID := f.register(t)
	f.advanceTo(t, caseID, domain.StageAssigned)

	// Two replicas that do not share a lock still cannot both commit.
	paused := newPausingRepository(f.repo)
	replicaA := NewCaseService(CaseDependencies{CaseRepo: paused, Calculator: workflow.NewCalculator(bogota), Clock: f.clock})
	replicaB := NewCaseService(CaseDependencies{CaseRepo: f.repo, Calculator: workflow.NewCalculator(bogota), Clock: f.clock})

	errA := make(chan error, 1)
	go func() {
		_, err := replicaA.ApplyAction(context.Background(), caseID, request(domain.ActionStartRedaction, domain.RoleGestor, "gestor-1"), time.Time{})
		errA <- err
	}()

	<-paused.entered
	_, err := replicaB.ApplyAction(context.Background(), caseID, request(domain.ActionStartRedaction, domain.RoleGestor, "gestor-1"), time.Time{})
	require.NoError(t, err)

	close(paused.release)
	requireCode(t, <-errA, workflow.CodeConflict)
	assert.Equal(t, 1, f.repo.ActiveCount(caseID))
}

func TestCaseService_ExpectedVersionMismatch(t *testing.T) {
	f := newFixture(t)
	caseID := f.register(t)
	snapshot, err := f.svc.GetCaseSnapshot(context.Background(), caseID, "")
	require.NoError(t, err)

	stale := snapshot.Case.Version
	f.apply(t, caseID, classifyRequest(15))

	req := assignRequest("gestor-1")
	req.ExpectedVersion = &stale
	_, err = f.svc.ApplyAction(context.Background(), caseID, req, time.Time{})
	requireCode(t, err, workflow.CodeConflict)
}

func TestCaseService_Rejections(t *testing.T) {
	f := newFixture(t)
	caseID := f.register(t)
	ctx := context.Background()

	_, err := f.svc.ApplyAction(ctx, caseID, assignRequest("gestor-1"), time.Time{})
	requireCode(t, err, workflow.CodeDeadlineNotConfigured)

	_, err = f.svc.ApplyAction(ctx, caseID, classifyRequest(0), time.Time{})
	requireCode(t, err, workflow.CodeInvalidRequest)

	f.apply(t, caseID, classifyRequest(10))

	_, err = f.svc.ApplyAction(ctx, caseID, request(domain.ActionAssign, domain.RoleIntegrador, "integrador-1"), time.Time{})
	requireCode(t, err, workflow.CodeInvalidRequest)

	_, err = f.svc.ApplyAction(ctx, caseID, request(domain.ActionReassign, domain.RoleSeguimiento, "auditor-1"), time.Time{})
	requireCode(t, err, workflow.CodeRoleNotPermitted)

	_, err = f.svc.ApplyAction(ctx, "missing", assignRequest("gestor-1"), time.Time{})
	requireCode(t, err, workflow.CodeCaseNotFound)

	assert.Equal(t, 0, f.repo.ActiveCount(caseID))
}

func TestCaseService_IllegalActionsNeverMutate(t *testing.T) {
	f := newFixture(t)
	caseID := f.register(t)
	f.advanceTo(t, caseID, domain.StageInReview)
	ctx := context.Background()

	for _, action := range []domain.Action{
		domain.ActionClassify,
		domain.ActionAssign,
		domain.ActionStartRedaction,
		domain.ActionSendToReview,
		domain.ActionSendToApproval,
		domain.ActionApprove,
		domain.ActionReject,
		domain.ActionAttachLegalSignature,
		domain.ActionSendToOutbox,
		domain.ActionDispatch,
		domain.ActionAcknowledge,
	} {
		for _, role := range domain.Roles {
			before, err := f.svc.GetCaseSnapshot(ctx, caseID, "")
			require.NoError(t, err)

			_, err = f.svc.ApplyAction(ctx, caseID, request(action, role, "actor"), time.Time{})
			require.Error(t, err, "%s by %s", action, role)
			assert.True(t, workflow.IsWorkflowError(err))

			after, err := f.svc.GetCaseSnapshot(ctx, caseID, "")
			require.NoError(t, err)
			assert.Equal(t, before, after, "%s by %s", action, role)
		}
	}
}

func TestCaseService_Reassign(t *testing.T) {
	f := newFixture(t)
	caseID := f.register(t)
	f.advanceTo(t, caseID, domain.StageInRedaction)

	req := request(domain.ActionReassign, domain.RoleAdministrador, "admin-1")
	req.Assignee = &domain.Assignee{ID: "gestor-2", Name: "Gestor dos"}
	result := f.apply(t, caseID, req)

	require.NotNil(t, result.Snapshot.ActiveStage)
	assert.Equal(t, "gestor-2", *result.Snapshot.ActiveStage.AssigneeID)
	assert.Equal(t, "gestor-2", *result.Snapshot.Case.GestorID)
	assert.Len(t, result.Snapshot.History, 2)
	assert.Equal(t, events.EventCaseReassigned, result.Event.Type)

	// Later Gestor stages follow the new Gestor.
	f.apply(t, caseID, request(domain.ActionSendToReview, domain.RoleGestor, "gestor-2"))
	back := f.apply(t, caseID, request(domain.ActionRejectReview, domain.RoleRevisor, "revisor-1"))
	assert.Equal(t, "gestor-2", *back.Snapshot.ActiveStage.AssigneeID)
}

func TestCaseService_DispatchRecordsRadicadoAndActor(t *testing.T) {
	f := newFixture(t)
	caseID := f.register(t)
	f.advanceTo(t, caseID, domain.StageInOutbox)

	req := request(domain.ActionDispatch, domain.RoleIntegrador, "integrador-9")
	rad := "SAL-2024-77"
	req.RadicadoSalida = &rad
	result := f.apply(t, caseID, req)

	assert.Equal(t, domain.CaseStatusRespondido, result.Snapshot.Status)
	require.NotNil(t, result.Snapshot.Case.RadicadoSalida)
	assert.Equal(t, rad, *result.Snapshot.Case.RadicadoSalida)
	assert.Equal(t, "integrador-9", *result.Snapshot.ActiveStage.AssigneeID)

	// A dispatched case is never overdue, whatever the calendar says.
	f.clock.Advance(60 * 24 * time.Hour)
	snapshot, err := f.svc.GetCaseSnapshot(context.Background(), caseID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStatusRespondido, snapshot.Status)
	assert.False(t, *snapshot.Deadline.IsOverdue)
}

func TestCaseService_ReviewHandoff(t *testing.T) {
	f := newFixture(t, func(deps *CaseDependencies) {
		deps.Validator = workflow.NewValidator(workflow.WithReviewHandoff(true))
	})
	caseID := f.register(t)
	f.advanceTo(t, caseID, domain.StageInReview)

	_, err := f.svc.ApplyAction(context.Background(), caseID, request(domain.ActionSendToApproval, domain.RoleGestor, "gestor-1"), time.Time{})
	requireCode(t, err, workflow.CodeIllegalStageTransition)

	verdict := f.apply(t, caseID, request(domain.ActionApproveReview, domain.RoleRevisor, "revisor-1"))
	assert.Equal(t, domain.StageInReview, verdict.Snapshot.Case.Stage)
	assert.Equal(t, domain.VerdictApproved, verdict.Snapshot.ActiveStage.Verdict)

	moved := f.apply(t, caseID, request(domain.ActionSendToApproval, domain.RoleGestor, "gestor-1"))
	assert.Equal(t, domain.StageInApproval, moved.Snapshot.Case.Stage)
	assert.Equal(t, domain.VerdictNone, moved.Snapshot.ActiveStage.Verdict)
}

func TestCaseService_CancelledBeforeCommit(t *testing.T) {
	f := newFixture(t)
	caseID := f.register(t)
	f.apply(t, caseID, classifyRequest(10))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.svc.ApplyAction(ctx, caseID, assignRequest("gestor-1"), time.Time{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, workflow.IsWorkflowError(err))

	snapshot, err := f.svc.GetCaseSnapshot(context.Background(), caseID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StageUnassigned, snapshot.Case.Stage)
	assert.Empty(t, snapshot.History)
}

func TestCaseService_ListCasesByStatus(t *testing.T) {
	f := newFixture(t)
	late := f.register(t)
	f.apply(t, late, classifyRequest(2))
	f.clock.Advance(24 * time.Hour)
	onTime := f.register(t)
	f.apply(t, onTime, classifyRequest(30))
	f.clock.Advance(5 * 24 * time.Hour)

	overdue, err := f.svc.ListCases(context.Background(), CaseListFilter{Statuses: []domain.CaseStatus{domain.CaseStatusVencido}})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late, overdue[0].Case.ID)
	assert.Equal(t, domain.CaseStatusVencido, overdue[0].Case.Status)

	all, err := f.svc.ListCases(context.Background(), CaseListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, onTime, all[0].Case.ID)

	_, err = f.svc.ListCases(context.Background(), CaseListFilter{SearchField: "body", SearchValue: "x"})
	requireCode(t, err, workflow.CodeInvalidRequest)
}

func TestCaseService_NotifyOverdue(t *testing.T) {
	f := newFixture(t)
	late := f.register(t)
	f.apply(t, late, classifyRequest(1))
	f.register(t)
	f.clock.Advance(3 * 24 * time.Hour)

	count, err := f.svc.NotifyOverdue(context.Background(), f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, f.publishedTypes(), events.EventCaseOverdue)
}

func countClosed(records []domain.FlujoCorreo) int {
	n := 0
	for _, r := range records {
		if !r.Active() {
			n++
		}
	}
	return n
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
