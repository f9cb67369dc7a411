package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/correspondence-service/internal/api/dto"
	"github.com/spec-kit/correspondence-service/internal/auth"
	"github.com/spec-kit/correspondence-service/internal/domain"
	"github.com/spec-kit/correspondence-service/internal/repository"
	"github.com/spec-kit/correspondence-service/internal/service"
	apperrors "github.com/spec-kit/correspondence-service/pkg/errorutil"
)

// CasesHandler exposes the correspondence workflow.
type CasesHandler struct {
	service *service.CaseService
}

// NewCasesHandler constructs handler.
func NewCasesHandler(caseService *service.CaseService) *CasesHandler {
	return &CasesHandler{service: caseService}
}

// CreateCase POST /cases.
func (h *CasesHandler) CreateCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.RegisterCaseInput{
		Subject:         req.Subject,
		SenderAccountID: req.SenderAccountID,
		EntityID:        req.EntityID,
		RequestTypeID:   req.RequestTypeID,
		Urgency:         req.Urgency,
		RadicadoEntrada: req.RadicadoEntrada,
	}
	if req.ReceivedAt != nil {
		input.ReceivedAt = *req.ReceivedAt
	}
	snapshot, err := h.service.RegisterCase(c.UserContext(), input, principal.Actor())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": caseResponse(snapshot)})
}

// ListCases GET /cases.
func (h *CasesHandler) ListCases(c *fiber.Ctx) error {
	filter := parseCaseQuery(c)
	snapshots, err := h.service.ListCases(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.CaseResponse, 0, len(snapshots))
	for i := range snapshots {
		items = append(items, caseResponse(&snapshots[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetCase GET /cases/:id.
func (h *CasesHandler) GetCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	snapshot, err := h.service.GetCaseSnapshot(c.UserContext(), c.Params("id"), principal.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseResponse(snapshot)})
}

// ApplyAction POST /cases/:id/actions.
func (h *CasesHandler) ApplyAction(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CaseActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(string(req.Action)) == "" {
		return apperrors.NewValidationError("action required", nil)
	}

	action := domain.ActionRequest{
		Action:          req.Action,
		Role:            principal.Role,
		ActorID:         principal.UserID,
		ActorName:       principal.Name,
		RadicadoSalida:  req.RadicadoSalida,
		ExpectedVersion: req.ExpectedVersion,
		Comment:         req.Comment,
	}
	if req.Assignee != nil {
		action.Assignee = &domain.Assignee{ID: req.Assignee.ID, Name: req.Assignee.Name}
	}
	if req.Classification != nil {
		action.Classification = &domain.Classification{
			DeadlineDays:  req.Classification.DeadlineDays,
			RequestTypeID: req.Classification.RequestTypeID,
			Urgency:       req.Classification.Urgency,
			EntityID:      req.Classification.EntityID,
		}
	}

	result, err := h.service.ApplyAction(c.UserContext(), c.Params("id"), action, time.Time{})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CaseActionResponse{
		Case:    caseResponse(result.Snapshot),
		EventID: result.Event.ID,
	}})
}

func parseCaseQuery(c *fiber.Ctx) service.CaseListFilter {
	filter := service.CaseListFilter{
		EntityID:      optionalQuery(c, "entity_id"),
		RequestTypeID: optionalQuery(c, "request_type_id"),
		AssigneeID:    optionalQuery(c, "assignee_id"),
		SearchField:   repository.SearchField(c.Query("search_field")),
		SearchValue:   c.Query("search_value"),
		ReceivedFrom:  parseTime(c.Query("received_from")),
		ReceivedTo:    parseTime(c.Query("received_to")),
	}
	for _, part := range splitList(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.CaseStatus(strings.ToUpper(part)))
	}
	for _, part := range splitList(c.Query("urgency")) {
		filter.Urgencies = append(filter.Urgencies, domain.Urgency(strings.ToUpper(part)))
	}
	for _, part := range splitList(c.Query("stage")) {
		filter.Stages = append(filter.Stages, domain.Stage(strings.ToUpper(part)))
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil
	}
	return &val
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func caseResponse(snapshot *service.CaseSnapshot) dto.CaseResponse {
	c := snapshot.Case
	resp := dto.CaseResponse{
		ID:              c.ID,
		Subject:         c.Subject,
		SenderAccountID: c.SenderAccountID,
		EntityID:        c.EntityID,
		RequestTypeID:   c.RequestTypeID,
		Urgency:         c.Urgency,
		ReceivedAt:      c.ReceivedAt,
		DeadlineDays:    c.DeadlineDays,
		RadicadoEntrada: c.RadicadoEntrada,
		RadicadoSalida:  c.RadicadoSalida,
		Stage:           c.Stage,
		Etapa:           snapshot.Etapa,
		Status:          snapshot.Status,
		GestorID:        c.GestorID,
		GestorName:      c.GestorName,
		Version:         c.Version,
		Deadline: dto.DeadlineResponse{
			DaysUsed:      snapshot.Deadline.DaysUsed,
			DaysRemaining: snapshot.Deadline.DaysRemaining,
			IsOverdue:     snapshot.Deadline.IsOverdue,
		},
		AvailableActions: snapshot.AvailableActions,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
		ClosedAt:         c.ClosedAt,
	}
	if snapshot.ActiveStage != nil {
		active := stageResponse(snapshot.ActiveStage)
		resp.ActiveStage = &active
	}
	for i := range snapshot.History {
		resp.History = append(resp.History, stageResponse(&snapshot.History[i]))
	}
	return resp
}

func stageResponse(record *domain.FlujoCorreo) dto.StageResponse {
	return dto.StageResponse{
		ID:           record.ID,
		Stage:        record.Stage,
		Etapa:        record.Stage.Etapa(),
		AssigneeID:   record.AssigneeID,
		AssigneeName: record.AssigneeName,
		Verdict:      record.Verdict,
		AssignedAt:   record.AssignedAt,
		FinalizedAt:  record.FinalizedAt,
		Active:       record.Active(),
	}
}
