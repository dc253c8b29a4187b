package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/repository"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// EscalationService raises ticket priority one level and notifies management.
// Escalation never touches status.
type EscalationService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// NewEscalationService creates the service.
func NewEscalationService(tickets repository.TicketRepository, dispatcher events.Dispatcher) *EscalationService {
	return &EscalationService{tickets: tickets, dispatcher: dispatcher}
}

// Escalate bumps priority (capped at CRITICAL) on any non-terminal ticket.
// An already-CRITICAL ticket keeps its priority but the escalation is still
// recorded in the activity log.
func (s *EscalationService) Escalate(ctx context.Context, actor Actor, ticketID, reason, notes string) (*domain.Ticket, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("escalation reason required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.Status.IsTerminal() {
		return nil, apperrors.NewPrecheckFailed("cannot escalate a closed ticket",
			map[string]any{"status": ticket.Status})
	}

	oldPriority := ticket.Priority
	ticket.Priority = domain.NextPriority(oldPriority)

	entryNotes := fmt.Sprintf("reason: %s", strings.TrimSpace(reason))
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		entryNotes += "; " + trimmed
	}
	entry := &domain.ActivityEntry{
		TicketID: ticket.ID,
		Action:   domain.ActionEscalated,
		OldValue: strPtr(string(oldPriority)),
		NewValue: strPtr(string(ticket.Priority)),
		Notes:    &entryNotes,
	}
	if actor.ID != "" {
		performedBy := actor.ID
		entry.PerformedBy = &performedBy
	}

	if err := s.tickets.UpdateWithActivity(ctx, ticket, entry); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperrors.NewConflict("ticket was modified concurrently, retry with fresh state",
				map[string]any{"ticket_id": ticket.ID})
		}
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketEscalated,
			TicketID:  ticket.ID,
			Timestamp: time.Now(),
			Payload: events.TicketEscalatedPayload{
				OldPriority: oldPriority,
				NewPriority: ticket.Priority,
				Reason:      reason,
			},
		}
		if actor.ID != "" {
			actorID := actor.ID
			event.ActorID = &actorID
		}
		_ = s.dispatcher.Publish(ctx, event)
	}
	return ticket, nil
}
