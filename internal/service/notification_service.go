package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/correspondence-service/internal/config"
	"github.com/spec-kit/correspondence-service/internal/events"
)

// NotificationService handles emitting notifications for case events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCaseRegistered, n.handleCaseRegistered)
	n.dispatcher.Subscribe(events.EventCaseStageChanged, n.handleStageChanged)
	n.dispatcher.Subscribe(events.EventCaseReassigned, n.handleReassigned)
	n.dispatcher.Subscribe(events.EventCaseOverdue, n.handleOverdue)
}

func (n *NotificationService) handleCaseRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("CaseRegistered", zap.String("case_id", event.CaseID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleStageChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("CaseStageChanged", zap.String("case_id", event.CaseID), zap.Any("payload", event.Payload))
	// The new assignee learns about the work by email.
	if payload, ok := event.Payload.(events.StageChangedPayload); ok && payload.AssigneeID != nil {
		n.sendEmailNotificationStub(ctx, event, *payload.AssigneeID)
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleReassigned(ctx context.Context, event events.Event) error {
	n.logger.Info("CaseReassigned", zap.String("case_id", event.CaseID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.ReassignedPayload); ok && payload.NewAssigneeID != nil {
		n.sendEmailNotificationStub(ctx, event, *payload.NewAssigneeID)
	}
	return nil
}

func (n *NotificationService) handleOverdue(ctx context.Context, event events.Event) error {
	n.logger.Warn("CaseOverdue", zap.String("case_id", event.CaseID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.OverduePayload); ok && payload.GestorID != nil {
		n.sendEmailNotificationStub(ctx, event, *payload.GestorID)
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event, recipientID string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("recipient_id", recipientID),
		zap.String("case_id", event.CaseID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("case_id", event.CaseID),
		zap.String("event_type", string(event.Type)))
}
