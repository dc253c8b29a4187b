package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
)

// NotificationService turns domain events into outbound notifications. The
// email and webhook channels are stubs that log the message they would send;
// delivery failures never propagate to the triggering operation.
type NotificationService struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{cfg: cfg, logger: logger}
}

// HandleTicketCreated acknowledges a new ticket to its requester.
func (s *NotificationService) HandleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	s.sendEmail(event.TicketID, fmt.Sprintf("ticket %s opened: %s", payload.TicketNumber, payload.Title))
	return nil
}

// HandleStatusChanged notifies on every status change and additionally fires
// the webhook when the ticket reaches a terminal state.
func (s *NotificationService) HandleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	s.sendEmail(event.TicketID, fmt.Sprintf("status changed %s to %s", payload.OldStatus, payload.NewStatus))
	if payload.NewStatus.IsTerminal() || payload.NewStatus == domain.TicketStatusResolved {
		s.sendWebhook(event.TicketID, string(payload.NewStatus))
	}
	return nil
}

// HandleAssigned notifies the assignee side.
func (s *NotificationService) HandleAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	target := "department"
	if payload.AssignedAgentID != nil {
		target = "agent"
	}
	s.sendEmail(event.TicketID, fmt.Sprintf("ticket assigned to %s", target))
	return nil
}

// HandleEscalated alerts management about the priority bump.
func (s *NotificationService) HandleEscalated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketEscalatedPayload)
	if !ok {
		return nil
	}
	s.sendEmail(event.TicketID, fmt.Sprintf("escalated %s to %s: %s", payload.OldPriority, payload.NewPriority, payload.Reason))
	s.sendWebhook(event.TicketID, "ESCALATED")
	return nil
}

// HandleCommentAdded notifies the other side of the conversation. Internal
// notes stay internal.
func (s *NotificationService) HandleCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentAddedPayload)
	if !ok {
		return nil
	}
	if payload.Visibility != domain.CommentVisibilityPublic {
		return nil
	}
	s.sendEmail(event.TicketID, "new comment posted")
	return nil
}

func (s *NotificationService) sendEmail(ticketID, message string) {
	if s.logger == nil {
		return
	}
	s.logger.Info("email notification",
		zap.String("from", s.cfg.EmailFrom),
		zap.String("ticket_id", ticketID),
		zap.String("message", message),
	)
}

func (s *NotificationService) sendWebhook(ticketID, status string) {
	if s.logger == nil || s.cfg.WebhookURL == "" {
		return
	}
	s.logger.Info("webhook notification",
		zap.String("url", s.cfg.WebhookURL),
		zap.String("ticket_id", ticketID),
		zap.String("status", status),
	)
}
