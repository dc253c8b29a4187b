package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to the event
// dispatcher. Dispatch is synchronous, so registration is all the startup
// there is.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger) {
	dispatcher.Subscribe(events.EventTicketCreated, notifications.HandleTicketCreated)
	dispatcher.Subscribe(events.EventTicketStatusChanged, notifications.HandleStatusChanged)
	dispatcher.Subscribe(events.EventTicketAssigned, notifications.HandleAssigned)
	dispatcher.Subscribe(events.EventTicketEscalated, notifications.HandleEscalated)
	dispatcher.Subscribe(events.EventCommentAdded, notifications.HandleCommentAdded)

	if logger != nil {
		logger.Info("notification worker registered")
	}
}
