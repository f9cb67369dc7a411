package domain

// Action names a request an actor can make against a case.
type Action string

const (
	ActionClassify             Action = "classify"
	ActionAssign               Action = "assign"
	ActionStartRedaction       Action = "start_redaction"
	ActionSendToReview         Action = "send_to_review"
	ActionApproveReview        Action = "approve_review"
	ActionRejectReview         Action = "reject_review"
	ActionSendToApproval       Action = "send_to_approval"
	ActionApprove              Action = "approve"
	ActionReject               Action = "reject"
	ActionAttachLegalSignature Action = "attach_legal_signature"
	ActionSendToOutbox         Action = "send_to_outbox"
	ActionDispatch             Action = "dispatch"
	ActionAcknowledge          Action = "acknowledge"
	ActionReassign             Action = "reassign"
)

// Assignee identifies the user a stage record is handed to.
type Assignee struct {
	ID   string
	Name string
}

// Classification carries the fields set when an Integrador classifies a case.
type Classification struct {
	DeadlineDays  int
	RequestTypeID *string
	Urgency       Urgency
	EntityID      *string
}

// ActionRequest is a tagged request: Action selects which optional payload applies.
type ActionRequest struct {
	Action          Action
	Role            Role
	ActorID         string
	ActorName       string
	Assignee        *Assignee
	Classification  *Classification
	RadicadoSalida  *string
	ExpectedVersion *int64
	Comment         string
}
