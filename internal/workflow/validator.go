package workflow

import (
	"sort"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

// Kind describes what an accepted action does to a case.
type Kind int

const (
	// KindTransition closes the active record and opens one for the next stage.
	KindTransition Kind = iota + 1
	// KindCaseUpdate changes case metadata only.
	KindCaseUpdate
	// KindStageUpdate changes the active record in place (verdict, assignee).
	KindStageUpdate
)

func (k Kind) String() string {
	switch k {
	case KindTransition:
		return "transition"
	case KindCaseUpdate:
		return "case_update"
	case KindStageUpdate:
		return "stage_update"
	}
	return "unknown"
}

// State is what the validator needs to know about a case.
type State struct {
	Stage   domain.Stage
	Status  domain.CaseStatus
	Verdict domain.Verdict
}

// Guard is an extra precondition evaluated once role and stage match. It
// returns an empty string when satisfied, otherwise the rejection reason.
type Guard func(State) string

// Rule is one row of the permission matrix.
type Rule struct {
	Roles []domain.Role
	From  []domain.Stage
	To    domain.Stage
	Kind  Kind

	// Verdict is recorded on the active record by KindStageUpdate rules.
	Verdict domain.Verdict
	Guard   Guard
}

// Decision is the outcome of an accepted validation.
type Decision struct {
	Action   domain.Action
	Kind     Kind
	From     domain.Stage
	To       domain.Stage
	Verdict  domain.Verdict
	BackEdge bool
}

var activeStages = []domain.Stage{
	domain.StageAssigned,
	domain.StageInRedaction,
	domain.StageInReview,
	domain.StageInApproval,
	domain.StageSigned,
	domain.StageInOutbox,
	domain.StageDispatched,
}

func requireVerdict(reason string) Guard {
	return func(s State) string {
		if s.Verdict != domain.VerdictApproved {
			return reason
		}
		return ""
	}
}

func requireNoVerdict(s State) string {
	if s.Verdict != domain.VerdictNone {
		return "verdict already recorded"
	}
	return ""
}

// DefaultRules is the permission matrix. Adding a role or action is a change
// to this table only.
func DefaultRules() map[domain.Action]Rule {
	return map[domain.Action]Rule{
		domain.ActionClassify: {
			Roles: []domain.Role{domain.RoleIntegrador, domain.RoleAdministrador},
			From:  []domain.Stage{domain.StageUnassigned},
			Kind:  KindCaseUpdate,
		},
		domain.ActionAssign: {
			Roles: []domain.Role{domain.RoleIntegrador, domain.RoleAdministrador},
			From:  []domain.Stage{domain.StageUnassigned},
			To:    domain.StageAssigned,
			Kind:  KindTransition,
		},
		domain.ActionStartRedaction: {
			Roles: []domain.Role{domain.RoleGestor},
			From:  []domain.Stage{domain.StageAssigned},
			To:    domain.StageInRedaction,
			Kind:  KindTransition,
		},
		domain.ActionSendToReview: {
			Roles: []domain.Role{domain.RoleGestor},
			From:  []domain.Stage{domain.StageInRedaction},
			To:    domain.StageInReview,
			Kind:  KindTransition,
		},
		domain.ActionApproveReview: {
			Roles: []domain.Role{domain.RoleRevisor},
			From:  []domain.Stage{domain.StageInReview},
			To:    domain.StageInApproval,
			Kind:  KindTransition,
		},
		domain.ActionRejectReview: {
			Roles: []domain.Role{domain.RoleRevisor},
			From:  []domain.Stage{domain.StageInReview},
			To:    domain.StageInRedaction,
			Kind:  KindTransition,
		},
		domain.ActionSendToApproval: {
			Roles: []domain.Role{domain.RoleGestor},
			From:  []domain.Stage{domain.StageInReview},
			To:    domain.StageInApproval,
			Kind:  KindTransition,
			Guard: requireVerdict("review not approved"),
		},
		domain.ActionApprove: {
			Roles:   []domain.Role{domain.RoleAprobador},
			From:    []domain.Stage{domain.StageInApproval},
			Kind:    KindStageUpdate,
			Verdict: domain.VerdictApproved,
			Guard:   requireNoVerdict,
		},
		domain.ActionReject: {
			Roles: []domain.Role{domain.RoleAprobador},
			From:  []domain.Stage{domain.StageInApproval},
			To:    domain.StageInRedaction,
			Kind:  KindTransition,
		},
		domain.ActionAttachLegalSignature: {
			Roles: []domain.Role{domain.RoleGestor},
			From:  []domain.Stage{domain.StageInApproval},
			To:    domain.StageSigned,
			Kind:  KindTransition,
			Guard: requireVerdict("approval pending"),
		},
		domain.ActionSendToOutbox: {
			Roles: []domain.Role{domain.RoleGestor},
			From:  []domain.Stage{domain.StageSigned},
			To:    domain.StageInOutbox,
			Kind:  KindTransition,
		},
		domain.ActionDispatch: {
			Roles: []domain.Role{domain.RoleIntegrador},
			From:  []domain.Stage{domain.StageInOutbox},
			To:    domain.StageDispatched,
			Kind:  KindTransition,
		},
		domain.ActionAcknowledge: {
			Roles: []domain.Role{domain.RoleIntegrador},
			From:  []domain.Stage{domain.StageDispatched},
			To:    domain.StageAcknowledged,
			Kind:  KindTransition,
		},
		domain.ActionReassign: {
			Roles: []domain.Role{domain.RoleGestor, domain.RoleAdministrador},
			From:  activeStages,
			Kind:  KindStageUpdate,
		},
	}
}

// reviewHandoffRule makes approve_review record the verdict and leave the
// hand-off to approval to the Gestor (send_to_approval).
var reviewHandoffRule = Rule{
	Roles:   []domain.Role{domain.RoleRevisor},
	From:    []domain.Stage{domain.StageInReview},
	Kind:    KindStageUpdate,
	Verdict: domain.VerdictApproved,
	Guard:   requireNoVerdict,
}

// Validator decides whether an action is legal for a case state and role.
type Validator struct {
	rules map[domain.Action]Rule
}

// Option customizes a Validator.
type Option func(map[domain.Action]Rule)

// WithReviewHandoff switches approve_review between advancing to approval
// directly (false) and recording the verdict for the Gestor (true).
func WithReviewHandoff(enabled bool) Option {
	return func(rules map[domain.Action]Rule) {
		if enabled {
			rules[domain.ActionApproveReview] = reviewHandoffRule
		}
	}
}

// WithRule adds or replaces one row of the matrix.
func WithRule(action domain.Action, rule Rule) Option {
	return func(rules map[domain.Action]Rule) {
		rules[action] = rule
	}
}

// NewValidator builds a validator over DefaultRules.
func NewValidator(opts ...Option) *Validator {
	rules := DefaultRules()
	for _, opt := range opts {
		opt(rules)
	}
	return &Validator{rules: rules}
}

// Validate checks, in order, that the action exists, that the role may
// perform it at all, and that the case stage (plus guard) allows it.
func (v *Validator) Validate(state State, action domain.Action, role domain.Role) (Decision, error) {
	rule, ok := v.rules[action]
	if !ok {
		return Decision{}, NewInvalidRequest(action, "unknown action "+string(action))
	}
	if !containsRole(rule.Roles, role) {
		return Decision{}, errRoleNotPermitted(role, action)
	}
	if !containsStage(rule.From, state.Stage) {
		wfErr := errIllegalStage(action, state.Stage, "")
		wfErr.Role = role
		return Decision{}, wfErr
	}
	if rule.Guard != nil {
		if reason := rule.Guard(state); reason != "" {
			wfErr := errIllegalStage(action, state.Stage, reason)
			wfErr.Role = role
			return Decision{}, wfErr
		}
	}

	decision := Decision{
		Action:  action,
		Kind:    rule.Kind,
		From:    state.Stage,
		To:      state.Stage,
		Verdict: rule.Verdict,
	}
	if rule.Kind == KindTransition {
		decision.To = rule.To
		decision.BackEdge = stageIndex(rule.To) < stageIndex(state.Stage)
	}
	return decision, nil
}

// AvailableActions lists the actions role can take right now, in a stable order.
func (v *Validator) AvailableActions(state State, role domain.Role) []domain.Action {
	actions := make([]domain.Action, 0)
	for _, action := range actionOrder {
		if _, err := v.Validate(state, action, role); err == nil {
			actions = append(actions, action)
		}
	}
	extra := make([]domain.Action, 0)
	for action := range v.rules {
		if containsAction(actionOrder, action) {
			continue
		}
		if _, err := v.Validate(state, action, role); err == nil {
			extra = append(extra, action)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(actions, extra...)
}

// Permits reports whether role appears in the matrix row for action.
func (v *Validator) Permits(role domain.Role, action domain.Action) bool {
	rule, ok := v.rules[action]
	return ok && containsRole(rule.Roles, role)
}

var actionOrder = []domain.Action{
	domain.ActionClassify,
	domain.ActionAssign,
	domain.ActionStartRedaction,
	domain.ActionSendToReview,
	domain.ActionApproveReview,
	domain.ActionRejectReview,
	domain.ActionSendToApproval,
	domain.ActionApprove,
	domain.ActionReject,
	domain.ActionAttachLegalSignature,
	domain.ActionSendToOutbox,
	domain.ActionDispatch,
	domain.ActionAcknowledge,
	domain.ActionReassign,
}

func stageIndex(stage domain.Stage) int {
	for i, candidate := range domain.Stages {
		if candidate == stage {
			return i
		}
	}
	return -1
}

func containsRole(roles []domain.Role, role domain.Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}

func containsStage(stages []domain.Stage, stage domain.Stage) bool {
	for _, candidate := range stages {
		if candidate == stage {
			return true
		}
	}
	return false
}

func containsAction(actions []domain.Action, action domain.Action) bool {
	for _, candidate := range actions {
		if candidate == action {
			return true
		}
	}
	return false
}
