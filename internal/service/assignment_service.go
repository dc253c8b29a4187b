package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/repository"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// AssignmentService routes tickets to departments and agents. Department
// comes first: an agent can only be assigned once the ticket has a department
// and the agent belongs to it.
type AssignmentService struct {
	tickets     repository.TicketRepository
	departments repository.DepartmentRepository
	users       repository.UserRepository
	workflow    *WorkflowService
	dispatcher  events.Dispatcher
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	TicketRepo     repository.TicketRepository
	DepartmentRepo repository.DepartmentRepository
	UserRepo       repository.UserRepository
	Workflow       *WorkflowService
	Dispatcher     events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:     deps.TicketRepo,
		departments: deps.DepartmentRepo,
		users:       deps.UserRepo,
		workflow:    deps.Workflow,
		dispatcher:  deps.Dispatcher,
	}
}

// departmentAssignable lists statuses a department may still be picked in.
var departmentAssignable = []domain.TicketStatus{
	domain.TicketStatusNew,
	domain.TicketStatusApproved,
}

// agentAssignable lists statuses an agent may be picked in.
var agentAssignable = []domain.TicketStatus{
	domain.TicketStatusApproved,
	domain.TicketStatusAssigned,
}

// AssignDepartment routes the ticket to an active department.
func (s *AssignmentService) AssignDepartment(ctx context.Context, actor Actor, ticketID, departmentID, notes string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !statusIn(ticket.Status, departmentAssignable) {
		return nil, apperrors.NewPrecheckFailed("department can only be assigned while the ticket is NEW or APPROVED",
			map[string]any{"status": ticket.Status})
	}

	dept, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewPrecheckFailed("department not found", map[string]any{"department_id": departmentID})
		}
		return nil, apperrors.MapError(err)
	}
	if !dept.IsActive {
		return nil, apperrors.NewPrecheckFailed("department is inactive", map[string]any{"department_id": departmentID})
	}

	var oldValue *string
	if ticket.DepartmentID != nil {
		oldValue = strPtr(*ticket.DepartmentID)
	}
	ticket.DepartmentID = &dept.ID

	entry := &domain.ActivityEntry{
		TicketID: ticket.ID,
		Action:   domain.ActionAssignedDepartment,
		OldValue: oldValue,
		NewValue: strPtr(dept.ID),
	}
	applyActorNotes(entry, actor, notes)

	if err := s.updateWithActivity(ctx, ticket, entry); err != nil {
		return nil, err
	}

	s.publishAssigned(ctx, actor, ticket)
	return ticket, nil
}

// AssignAgent hands the ticket to an agent of its department. Approved
// tickets move to ASSIGNED through the workflow engine as part of the call.
func (s *AssignmentService) AssignAgent(ctx context.Context, actor Actor, ticketID, agentID, notes string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.DepartmentID == nil {
		return nil, apperrors.NewPrecheckFailed("ticket has no department; assign a department first",
			map[string]any{"ticket_id": ticketID})
	}
	if !statusIn(ticket.Status, agentAssignable) {
		return nil, apperrors.NewPrecheckFailed("agent can only be assigned while the ticket is APPROVED or ASSIGNED",
			map[string]any{"status": ticket.Status})
	}

	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewPrecheckFailed("agent not found", map[string]any{"agent_id": agentID})
		}
		return nil, apperrors.MapError(err)
	}
	if agent.Role != domain.RoleAgent || !agent.Active {
		return nil, apperrors.NewPrecheckFailed("user is not an active agent", map[string]any{"agent_id": agentID})
	}
	if agent.DepartmentID == nil || *agent.DepartmentID != *ticket.DepartmentID {
		return nil, apperrors.NewPrecheckFailed("agent does not belong to the ticket's department",
			map[string]any{"agent_id": agentID, "department_id": *ticket.DepartmentID})
	}

	var oldValue *string
	if ticket.AssignedAgentID != nil {
		oldValue = strPtr(*ticket.AssignedAgentID)
	}
	ticket.AssignedAgentID = &agent.ID

	entry := &domain.ActivityEntry{
		TicketID: ticket.ID,
		Action:   domain.ActionAssignedAgent,
		OldValue: oldValue,
		NewValue: strPtr(agent.ID),
	}
	applyActorNotes(entry, actor, notes)

	if err := s.updateWithActivity(ctx, ticket, entry); err != nil {
		return nil, err
	}

	if ticket.Status == domain.TicketStatusApproved {
		ticket, err = s.workflow.apply(ctx, actor, ticket, TransitionInput{
			To:    domain.TicketStatusAssigned,
			Notes: "agent assigned",
		})
		if err != nil {
			return nil, err
		}
	}

	s.publishAssigned(ctx, actor, ticket)
	return ticket, nil
}

func (s *AssignmentService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *AssignmentService) updateWithActivity(ctx context.Context, ticket *domain.Ticket, entry *domain.ActivityEntry) error {
	if err := s.tickets.UpdateWithActivity(ctx, ticket, entry); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return apperrors.NewConflict("ticket was modified concurrently, retry with fresh state",
				map[string]any{"ticket_id": ticket.ID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AssignmentService) publishAssigned(ctx context.Context, actor Actor, ticket *domain.Ticket) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		TicketID:  ticket.ID,
		Timestamp: time.Now(),
		Payload: events.TicketAssignedPayload{
			DepartmentID:    ticket.DepartmentID,
			AssignedAgentID: ticket.AssignedAgentID,
		},
	}
	if actor.ID != "" {
		actorID := actor.ID
		event.ActorID = &actorID
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func applyActorNotes(entry *domain.ActivityEntry, actor Actor, notes string) {
	if actor.ID != "" {
		performedBy := actor.ID
		entry.PerformedBy = &performedBy
	}
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		entry.Notes = &trimmed
	}
}

func statusIn(status domain.TicketStatus, candidates []domain.TicketStatus) bool {
	for _, candidate := range candidates {
		if candidate == status {
			return true
		}
	}
	return false
}
