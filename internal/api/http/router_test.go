package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/correspondence-service/internal/api/http/handlers"
	"github.com/spec-kit/correspondence-service/internal/auth"
	"github.com/spec-kit/correspondence-service/internal/domain"
	"github.com/spec-kit/correspondence-service/internal/observability"
	"github.com/spec-kit/correspondence-service/internal/repository"
	"github.com/spec-kit/correspondence-service/internal/service"
	"github.com/spec-kit/correspondence-service/internal/workflow"
)

type testServer struct {
	app     *fiber.App
	tokens  *auth.TokenManager
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	tokens := auth.NewTokenManager("test-secret", 10)

	caseService := service.NewCaseService(service.CaseDependencies{
		CaseRepo:   repository.NewMemoryCaseRepository(),
		Calculator: workflow.NewCalculator(time.UTC),
		Logger:     logger,
		Metrics:    metrics,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("correspondence-service", "test", nil, nil),
		Cases:          handlers.NewCasesHandler(caseService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Metrics:        metrics.Handler(),
	})
	return &testServer{app: app, tokens: tokens, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path string, role domain.Role, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, _, err := s.tokens.GenerateToken("user-"+string(role), string(role)+" user", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestRoutes_Health(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
}

func TestRoutes_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, status)
	status, body := s.do(t, http.MethodPost, "/cases", domain.RoleIntegrador, map[string]any{
		"subject":           "Derecho de peticion",
		"sender_account_id": "b@example.com",
		"entity_id":         "entidad-1",
		"radicado_entrada":  "8",
	})
	require.Equal(t, http.StatusCreated, status, body)
	status, _ = s.do(t, http.MethodPost, "/cases/RAD-8/actions", domain.RoleGestor, map[string]any{"action": "send_to_review"})
	require.Equal(t, http.StatusUnprocessableEntity, status)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	exposed := string(raw)
	assert.Contains(t, exposed, `correspondence_http_requests_total{method="GET",path_pattern="/health/live",status="200"} 1`)
	assert.Contains(t, exposed, `correspondence_workflow_transitions_total{action="send_to_review",outcome="ILLEGAL_STAGE_TRANSITION"} 1`)
}

func TestRoutes_CaseLifecycle(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/cases", domain.RoleIntegrador, map[string]any{
		"subject":           "Derecho de petición",
		"sender_account_id": "ciudadano@example.com",
		"entity_id":         "entidad-1",
		"radicado_entrada":  "2024-55",
	})
	require.Equal(t, http.StatusCreated, status, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "RAD-2024-55", data["id"])
	assert.Equal(t, "UNASSIGNED", data["stage"])

	status, body = s.do(t, http.MethodPost, "/cases/RAD-2024-55/actions", domain.RoleIntegrador, map[string]any{
		"action":         "classify",
		"classification": map[string]any{"deadline_days": 15, "urgency": "ALTA"},
	})
	require.Equal(t, http.StatusOK, status, body)

	status, body = s.do(t, http.MethodPost, "/cases/RAD-2024-55/actions", domain.RoleIntegrador, map[string]any{
		"action":   "assign",
		"assignee": map[string]any{"id": "user-Gestor", "name": "Gestor user"},
	})
	require.Equal(t, http.StatusOK, status, body)
	caseData := body["data"].(map[string]any)["case"].(map[string]any)
	assert.Equal(t, "ASSIGNED", caseData["stage"])
	assert.Equal(t, "RECEPCION", caseData["etapa"])
	assert.NotEmpty(t, body["data"].(map[string]any)["event_id"])

	status, body = s.do(t, http.MethodGet, "/cases/RAD-2024-55", domain.RoleGestor, nil)
	require.Equal(t, http.StatusOK, status)
	data = body["data"].(map[string]any)
	assert.Equal(t, []any{"start_redaction", "reassign"}, data["available_actions"])
	assert.Len(t, data["history"], 1)

	status, body = s.do(t, http.MethodGet, "/cases?status=PENDIENTE&urgency=alta", domain.RoleSeguimiento, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
}

func TestRoutes_ErrorMapping(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/cases", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := s.do(t, http.MethodPost, "/cases", domain.RoleGestor, map[string]any{"subject": "x"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = s.do(t, http.MethodGet, "/cases/missing", domain.RoleGestor, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "CASE_NOT_FOUND", errorCode(body))

	status, body = s.do(t, http.MethodPost, "/cases", domain.RoleIntegrador, map[string]any{
		"subject":           "Queja",
		"sender_account_id": "a@example.com",
		"entity_id":         "entidad-1",
		"radicado_entrada":  "7",
	})
	require.Equal(t, http.StatusCreated, status, body)

	status, body = s.do(t, http.MethodPost, "/cases/RAD-7/actions", domain.RoleSeguimiento, map[string]any{"action": "classify"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "ROLE_NOT_PERMITTED", errorCode(body))

	status, body = s.do(t, http.MethodPost, "/cases/RAD-7/actions", domain.RoleGestor, map[string]any{"action": "send_to_review"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "ILLEGAL_STAGE_TRANSITION", errorCode(body))

	status, body = s.do(t, http.MethodPost, "/cases/RAD-7/actions", domain.RoleIntegrador, map[string]any{
		"action":   "assign",
		"assignee": map[string]any{"id": "gestor-1"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "DEADLINE_NOT_CONFIGURED", errorCode(body))

	status, body = s.do(t, http.MethodPost, "/cases/RAD-7/actions", domain.RoleIntegrador, map[string]any{
		"action":           "classify",
		"classification":   map[string]any{"deadline_days": 5},
		"expected_version": 99,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/cases/:id/actions", "409")))
}

func TestRoutes_RequestID(t *testing.T) {
	s := newTestServer(t)

	incoming := "0b7c5f0e-4a3e-4d7b-9d5e-2f1f3c9a6a10"
	req := httptest.NewRequest(http.MethodGet, "/cases", nil)
	req.Header.Set("X-Request-ID", incoming)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, incoming, resp.Header.Get("X-Request-ID"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	errBody, _ := body["error"].(map[string]any)
	assert.Equal(t, incoming, errBody["request_id"])

	req = httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	resp, err = s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get("X-Request-ID"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
