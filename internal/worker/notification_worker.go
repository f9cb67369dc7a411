package worker

import (
	"github.com/spec-kit/correspondence-service/internal/events"
	"github.com/spec-kit/correspondence-service/internal/service"
)

// StartNotificationWorker registers notification handlers and, when a bridge
// is given, forwards every event to the external dispatcher.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, bridge *events.RedisBridge) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if bridge != nil && dispatcher != nil {
		bridge.Attach(dispatcher)
	}
}
