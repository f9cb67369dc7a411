package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/correspondence-service/internal/workflow"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewServiceUnavailable(message string) error {
	return NewDomainError("SERVICE_UNAVAILABLE", message, http.StatusServiceUnavailable, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

var workflowStatus = map[workflow.ErrorCode]int{
	workflow.CodeRoleNotPermitted:       http.StatusForbidden,
	workflow.CodeIllegalStageTransition: http.StatusUnprocessableEntity,
	workflow.CodeCaseNotFound:           http.StatusNotFound,
	workflow.CodeConflict:               http.StatusConflict,
	workflow.CodeDeadlineNotConfigured:  http.StatusUnprocessableEntity,
	workflow.CodeInvalidRequest:         http.StatusBadRequest,
}

// FromWorkflowError renders a business-rule rejection for transport.
func FromWorkflowError(wfErr *workflow.Error) *DomainError {
	status, ok := workflowStatus[wfErr.Code]
	if !ok {
		status = http.StatusUnprocessableEntity
	}
	details := map[string]any{}
	if wfErr.CaseID != "" {
		details["case_id"] = wfErr.CaseID
	}
	if wfErr.Action != "" {
		details["action"] = wfErr.Action
	}
	if wfErr.Role != "" {
		details["role"] = wfErr.Role
	}
	if wfErr.Stage != "" {
		details["stage"] = wfErr.Stage
	}
	return &DomainError{
		Code:       string(wfErr.Code),
		Message:    wfErr.Message,
		HTTPStatus: status,
		Details:    details,
		Err:        wfErr,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if wfErr, ok := workflow.AsError(err); ok {
		return FromWorkflowError(wfErr)
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := strings.ToUpper(strings.ReplaceAll(http.StatusText(fiberErr.Code), " ", "_"))
		return NewDomainError(code, fiberErr.Message, fiberErr.Code, nil)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewDomainError("TIMEOUT", "request timed out", http.StatusGatewayTimeout, nil)
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts err to a DomainError.
func MapError(err error) error {
	return ToDomainError(err)
}
