package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/repository"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// Actor identifies the authenticated caller applying an operation.
type Actor struct {
	ID   string
	Role domain.Role
}

// SystemActor marks transitions the service applies on its own behalf, such
// as routing a newly created ticket into approval.
func SystemActor() Actor {
	return Actor{Role: domain.RoleSystem}
}

// TransitionInput carries the target status and any fields it requires.
type TransitionInput struct {
	To              domain.TicketStatus
	Notes           string
	ResolutionNotes string
	RejectionReason string
}

type transitionKey struct {
	from domain.TicketStatus
	to   domain.TicketStatus
}

// transitionTable is the single source of truth for the ticket lifecycle:
// which status changes exist at all, and which roles may apply each one.
// Requester-bound transitions additionally require ticket ownership.
var transitionTable = map[transitionKey][]domain.Role{
	{domain.TicketStatusNew, domain.TicketStatusPendingApproval}: {domain.RoleSystem},
	{domain.TicketStatusNew, domain.TicketStatusAssigned}:        {domain.RoleAdmin, domain.RoleDepartmentStaff},
	{domain.TicketStatusNew, domain.TicketStatusCancelled}:       {domain.RoleEndUser},

	{domain.TicketStatusPendingApproval, domain.TicketStatusApproved}:  {domain.RoleApprover},
	{domain.TicketStatusPendingApproval, domain.TicketStatusRejected}:  {domain.RoleApprover},
	{domain.TicketStatusPendingApproval, domain.TicketStatusCancelled}: {domain.RoleEndUser},

	{domain.TicketStatusApproved, domain.TicketStatusAssigned}: {domain.RoleAdmin, domain.RoleDepartmentStaff},

	{domain.TicketStatusAssigned, domain.TicketStatusInProgress}:     {domain.RoleAgent, domain.RoleDepartmentStaff},
	{domain.TicketStatusAssigned, domain.TicketStatusWaitingForUser}: {domain.RoleAgent, domain.RoleDepartmentStaff},
	{domain.TicketStatusAssigned, domain.TicketStatusCancelled}:      {domain.RoleEndUser},

	{domain.TicketStatusInProgress, domain.TicketStatusWaitingForUser}: {domain.RoleAgent, domain.RoleDepartmentStaff},
	{domain.TicketStatusInProgress, domain.TicketStatusResolved}:       {domain.RoleAgent, domain.RoleDepartmentStaff},

	{domain.TicketStatusWaitingForUser, domain.TicketStatusInProgress}: {domain.RoleAgent, domain.RoleDepartmentStaff},

	{domain.TicketStatusResolved, domain.TicketStatusClosed}: {domain.RoleEndUser, domain.RoleAdmin},
}

// WorkflowService owns every ticket status change. No other code path writes
// Ticket.Status, so any status a ticket reaches is reachable in the table.
type WorkflowService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewWorkflowService constructs the service.
func NewWorkflowService(tickets repository.TicketRepository, dispatcher events.Dispatcher, logger *zap.Logger) *WorkflowService {
	return &WorkflowService{tickets: tickets, dispatcher: dispatcher, logger: logger}
}

// Transition validates and applies a status change. The status write and its
// activity entry commit in one transaction; a concurrent writer loses with a
// CONFLICT error and must retry after re-reading.
func (s *WorkflowService) Transition(ctx context.Context, actor Actor, ticketID string, input TransitionInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return s.apply(ctx, actor, ticket, input)
}

// apply runs the transition against an already loaded ticket. The caller is
// responsible for having read a fresh copy; stale versions surface as CONFLICT.
func (s *WorkflowService) apply(ctx context.Context, actor Actor, ticket *domain.Ticket, input TransitionInput) (*domain.Ticket, error) {
	from := ticket.Status
	to := input.To

	allowed, ok := transitionTable[transitionKey{from: from, to: to}]
	if !ok {
		return nil, apperrors.NewInvalidTransition(string(from), string(to))
	}
	if !roleAllowed(allowed, actor.Role) {
		return nil, apperrors.NewForbiddenTransition(string(actor.Role), string(from), string(to))
	}
	if actor.Role == domain.RoleEndUser && ticket.RequesterID != actor.ID {
		return nil, apperrors.NewForbidden("only the requester may perform this transition")
	}

	now := time.Now()
	switch to {
	case domain.TicketStatusResolved:
		notes := strings.TrimSpace(input.ResolutionNotes)
		if notes == "" {
			return nil, apperrors.NewValidationError("resolution notes required to resolve", nil)
		}
		ticket.ResolutionNotes = &notes
		ticket.ResolvedAt = &now
	case domain.TicketStatusRejected:
		reason := strings.TrimSpace(input.RejectionReason)
		if reason == "" {
			return nil, apperrors.NewValidationError("rejection reason required to reject", nil)
		}
		ticket.RejectionReason = &reason
	case domain.TicketStatusClosed, domain.TicketStatusCancelled:
		ticket.ClosedAt = &now
	}
	ticket.Status = to

	entry := &domain.ActivityEntry{
		TicketID: ticket.ID,
		Action:   domain.ActionStatusChanged,
		OldValue: strPtr(string(from)),
		NewValue: strPtr(string(to)),
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		entry.Notes = &notes
	}
	if actor.ID != "" {
		performedBy := actor.ID
		entry.PerformedBy = &performedBy
	}

	if err := s.tickets.UpdateWithActivity(ctx, ticket, entry); err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, apperrors.NewConflict("ticket was modified concurrently, retry with fresh state",
				map[string]any{"ticket_id": ticket.ID})
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticket.ID})
		default:
			return nil, apperrors.MapError(err)
		}
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  entry.PerformedBy,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: from,
			NewStatus: to,
			Notes:     input.Notes,
		},
	})
	return ticket, nil
}

// CanTransition reports whether the table contains the status change, role
// aside. Handlers use it to render available actions.
func CanTransition(from, to domain.TicketStatus) bool {
	_, ok := transitionTable[transitionKey{from: from, to: to}]
	return ok
}

func roleAllowed(allowed []domain.Role, role domain.Role) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}

func (s *WorkflowService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("event publish failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func strPtr(v string) *string {
	return &v
}
