package workflow

import (
	"errors"
	"fmt"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

// ErrorCode classifies a business-rule rejection.
type ErrorCode string

const (
	CodeRoleNotPermitted       ErrorCode = "ROLE_NOT_PERMITTED"
	CodeIllegalStageTransition ErrorCode = "ILLEGAL_STAGE_TRANSITION"
	CodeCaseNotFound           ErrorCode = "CASE_NOT_FOUND"
	CodeConflict               ErrorCode = "CONFLICT"
	CodeDeadlineNotConfigured  ErrorCode = "DEADLINE_NOT_CONFIGURED"
	CodeInvalidRequest         ErrorCode = "INVALID_REQUEST"
)

// Error is the typed value returned for every business-rule violation. All
// codes are recoverable by the caller; storage failures are never reported
// through this type.
type Error struct {
	Code    ErrorCode
	Message string
	CaseID  string
	Action  domain.Action
	Role    domain.Role
	Stage   domain.Stage
}

func (e *Error) Error() string {
	if e.CaseID != "" {
		return fmt.Sprintf("%s: %s (case %s)", e.Code, e.Message, e.CaseID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithCase returns a copy of e bound to the given case id.
func (e *Error) WithCase(caseID string) *Error {
	cp := *e
	cp.CaseID = caseID
	return &cp
}

// AsError extracts a workflow error from err.
func AsError(err error) (*Error, bool) {
	var wfErr *Error
	if errors.As(err, &wfErr) {
		return wfErr, true
	}
	return nil, false
}

// HasCode reports whether err is a workflow error with the given code.
func HasCode(err error, code ErrorCode) bool {
	wfErr, ok := AsError(err)
	return ok && wfErr.Code == code
}

// IsWorkflowError reports whether err is a business-rule rejection rather
// than an infrastructure failure.
func IsWorkflowError(err error) bool {
	_, ok := AsError(err)
	return ok
}

func errRoleNotPermitted(role domain.Role, action domain.Action) *Error {
	return &Error{
		Code:    CodeRoleNotPermitted,
		Message: fmt.Sprintf("role %q may not perform %q", role, action),
		Action:  action,
		Role:    role,
	}
}

func errIllegalStage(action domain.Action, stage domain.Stage, reason string) *Error {
	msg := fmt.Sprintf("%q is not allowed from stage %s", action, stage)
	if reason != "" {
		msg += ": " + reason
	}
	return &Error{
		Code:    CodeIllegalStageTransition,
		Message: msg,
		Action:  action,
		Stage:   stage,
	}
}

// NewInvalidRequest reports a malformed action payload.
func NewInvalidRequest(action domain.Action, message string) *Error {
	return &Error{Code: CodeInvalidRequest, Message: message, Action: action}
}

// NewCaseNotFound reports a missing case.
func NewCaseNotFound(caseID string) *Error {
	return &Error{Code: CodeCaseNotFound, Message: "case not found", CaseID: caseID}
}

// NewConflict reports a concurrent mutation of the same case.
func NewConflict(caseID, message string) *Error {
	return &Error{Code: CodeConflict, Message: message, CaseID: caseID}
}

// ErrDeadlineNotConfigured is returned when overdue status is requested
// before the case was classified.
var ErrDeadlineNotConfigured = &Error{
	Code:    CodeDeadlineNotConfigured,
	Message: "response deadline not configured; classify the case first",
}
