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

// TicketService coordinates ticket creation, lookup, comments and the
// requester-facing lifecycle actions. Status changes are delegated to the
// workflow engine without exception.
type TicketService struct {
	tickets    repository.TicketRepository
	activity   repository.ActivityLogRepository
	comments   repository.CommentRepository
	catalog    *CatalogService
	workflow   *WorkflowService
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	ActivityRepo repository.ActivityLogRepository
	CommentRepo  repository.CommentRepository
	Catalog      *CatalogService
	Workflow     *WorkflowService
	Dispatcher   events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	ServiceID   string
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// TicketListInput describes listing filters for staff views.
type TicketListInput struct {
	RequesterID     *string
	DepartmentID    *string
	AssignedAgentID *string
	CategoryID      *string
	Statuses        []domain.TicketStatus
	Priorities      []domain.TicketPriority
	SearchTerm      *string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	Page            int
	PageSize        int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		activity:   deps.ActivityRepo,
		comments:   deps.CommentRepo,
		catalog:    deps.Catalog,
		workflow:   deps.Workflow,
		dispatcher: deps.Dispatcher,
	}
}

// Create opens a new ticket for the requester. Defaults come from the
// catalog entry; services flagged requires_approval are routed straight into
// the approval gate.
func (s *TicketService) Create(ctx context.Context, requester *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" || input.ServiceID == "" {
		return nil, apperrors.NewValidationError("title, description and service_id are required", nil)
	}

	svc, err := s.catalog.GetService(ctx, input.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, apperrors.NewValidationError("service is not orderable", map[string]any{"service_id": svc.ID})
	}

	priority := input.Priority
	if priority == "" {
		priority = svc.DefaultPriority
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	ticket := &domain.Ticket{
		TicketNumber: generateTicketNumber(),
		RequesterID:  requester.ID,
		CategoryID:   svc.CategoryID,
		ServiceID:    svc.ID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Status:       domain.TicketStatusNew,
		Priority:     priority,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	performedBy := requester.ID
	created := &domain.ActivityEntry{
		TicketID:    ticket.ID,
		Action:      domain.ActionCreated,
		NewValue:    strPtr(string(domain.TicketStatusNew)),
		PerformedBy: &performedBy,
	}
	if err := s.activity.Append(ctx, created); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  &performedBy,
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			ServiceID:    ticket.ServiceID,
			Priority:     ticket.Priority,
			Title:        ticket.Title,
		},
	})

	if svc.RequiresApproval {
		ticket, err = s.workflow.apply(ctx, SystemActor(), ticket, TransitionInput{
			To:    domain.TicketStatusPendingApproval,
			Notes: "service requires approval",
		})
		if err != nil {
			return nil, err
		}
	}
	return ticket, nil
}

// GetForRequester fetches a ticket ensuring ownership.
func (s *TicketService) GetForRequester(ctx context.Context, requesterID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.RequesterID != requesterID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// GetForStaff fetches a ticket for staff roles.
func (s *TicketService) GetForStaff(ctx context.Context, staff *domain.User, ticketID string) (*domain.Ticket, error) {
	if !staff.IsStaff() {
		return nil, apperrors.NewForbidden("staff role required")
	}
	ticket, err := s.get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if staff.Role == domain.RoleDepartmentStaff || staff.Role == domain.RoleAgent {
		if staff.DepartmentID == nil || ticket.DepartmentID == nil || *staff.DepartmentID != *ticket.DepartmentID {
			return nil, apperrors.NewForbidden("ticket outside your department")
		}
	}
	return ticket, nil
}

// GetByNumberForStaff resolves a ticket by its human-readable number,
// with the same department scoping as GetForStaff.
func (s *TicketService) GetByNumberForStaff(ctx context.Context, staff *domain.User, number string) (*domain.Ticket, error) {
	if !staff.IsStaff() {
		return nil, apperrors.NewForbidden("staff role required")
	}
	ticket, err := s.tickets.GetByTicketNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_number": number})
		}
		return nil, apperrors.MapError(err)
	}
	if staff.Role == domain.RoleDepartmentStaff || staff.Role == domain.RoleAgent {
		if staff.DepartmentID == nil || ticket.DepartmentID == nil || *staff.DepartmentID != *ticket.DepartmentID {
			return nil, apperrors.NewForbidden("ticket outside your department")
		}
	}
	return ticket, nil
}

// ListForRequester returns the requester's tickets, newest first.
func (s *TicketService) ListForRequester(ctx context.Context, requesterID string, input TicketListInput) ([]domain.Ticket, int64, error) {
	input.RequesterID = &requesterID
	return s.list(ctx, input)
}

// ListForStaff returns tickets scoped to the staff member's department,
// admins and approvers see everything.
func (s *TicketService) ListForStaff(ctx context.Context, staff *domain.User, input TicketListInput) ([]domain.Ticket, int64, error) {
	if !staff.IsStaff() {
		return nil, 0, apperrors.NewForbidden("staff role required")
	}
	if staff.Role == domain.RoleDepartmentStaff || staff.Role == domain.RoleAgent {
		input.DepartmentID = staff.DepartmentID
		if staff.DepartmentID == nil {
			return []domain.Ticket{}, 0, nil
		}
	}
	return s.list(ctx, input)
}

// Cancel abandons a ticket before work starts, requester only.
func (s *TicketService) Cancel(ctx context.Context, requester *domain.User, ticketID, notes string) (*domain.Ticket, error) {
	return s.workflow.Transition(ctx, Actor{ID: requester.ID, Role: domain.RoleEndUser}, ticketID, TransitionInput{
		To:    domain.TicketStatusCancelled,
		Notes: notes,
	})
}

// Close confirms a resolved ticket, requester or admin.
func (s *TicketService) Close(ctx context.Context, caller *domain.User, ticketID, notes string) (*domain.Ticket, error) {
	role := domain.RoleEndUser
	if caller.Role == domain.RoleAdmin {
		role = domain.RoleAdmin
	}
	return s.workflow.Transition(ctx, Actor{ID: caller.ID, Role: role}, ticketID, TransitionInput{
		To:    domain.TicketStatusClosed,
		Notes: notes,
	})
}

// ChangePriority lets an admin override priority outside the escalation path.
func (s *TicketService) ChangePriority(ctx context.Context, actor Actor, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if !domain.ValidPriority(newPriority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": newPriority})
	}
	ticket, err := s.get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status.IsTerminal() {
		return nil, apperrors.NewPrecheckFailed("cannot change priority on a closed ticket",
			map[string]any{"status": ticket.Status})
	}

	oldPriority := ticket.Priority
	ticket.Priority = newPriority

	performedBy := actor.ID
	entry := &domain.ActivityEntry{
		TicketID:    ticket.ID,
		Action:      domain.ActionPriorityChanged,
		OldValue:    strPtr(string(oldPriority)),
		NewValue:    strPtr(string(newPriority)),
		PerformedBy: &performedBy,
	}
	if err := s.tickets.UpdateWithActivity(ctx, ticket, entry); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, apperrors.NewConflict("ticket was modified concurrently, retry with fresh state",
				map[string]any{"ticket_id": ticket.ID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// Timeline returns the full activity log for a ticket, oldest first.
func (s *TicketService) Timeline(ctx context.Context, ticketID string) ([]domain.ActivityEntry, error) {
	entries, err := s.activity.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// AddComment posts a comment. Requesters may only post public comments on
// their own tickets; staff may also post internal notes.
func (s *TicketService) AddComment(ctx context.Context, author *domain.User, ticketID, body string, visibility domain.CommentVisibility) (*domain.TicketComment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.NewValidationError("comment body required", nil)
	}
	if visibility == "" {
		visibility = domain.CommentVisibilityPublic
	}

	ticket, err := s.get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if author.Role == domain.RoleEndUser {
		if ticket.RequesterID != author.ID {
			return nil, apperrors.NewForbidden("access denied")
		}
		if visibility != domain.CommentVisibilityPublic {
			return nil, apperrors.NewForbidden("requesters can only post public comments")
		}
	}

	comment := &domain.TicketComment{
		TicketID:   ticket.ID,
		AuthorID:   author.ID,
		Visibility: visibility,
		Body:       strings.TrimSpace(body),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	authorID := author.ID
	s.publish(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		ActorID:  &authorID,
		Payload: events.CommentAddedPayload{
			CommentID:  comment.ID,
			Visibility: comment.Visibility,
			AuthorID:   comment.AuthorID,
		},
	})
	return comment, nil
}

// ListComments returns a ticket's comments; internal notes are filtered out
// for requesters.
func (s *TicketService) ListComments(ctx context.Context, caller *domain.User, ticketID string) ([]domain.TicketComment, error) {
	ticket, err := s.get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if caller.Role == domain.RoleEndUser && ticket.RequesterID != caller.ID {
		return nil, apperrors.NewForbidden("access denied")
	}

	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if caller.Role != domain.RoleEndUser {
		return comments, nil
	}
	visible := make([]domain.TicketComment, 0, len(comments))
	for _, comment := range comments {
		if comment.Visibility == domain.CommentVisibilityPublic {
			visible = append(visible, comment)
		}
	}
	return visible, nil
}

func (s *TicketService) get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) list(ctx context.Context, input TicketListInput) ([]domain.Ticket, int64, error) {
	page := input.Page
	if page <= 0 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	filter := repository.TicketFilter{
		RequesterID:     input.RequesterID,
		DepartmentID:    input.DepartmentID,
		AssignedAgentID: input.AssignedAgentID,
		CategoryID:      input.CategoryID,
		Statuses:        input.Statuses,
		Priorities:      input.Priorities,
		SearchTerm:      input.SearchTerm,
		CreatedFrom:     input.CreatedFrom,
		CreatedTo:       input.CreatedTo,
		Limit:           pageSize,
		Offset:          (page - 1) * pageSize,
	}
	tickets, total, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return tickets, total, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// generateTicketNumber produces the human-facing key, SR-YYYYMMDD-XXXXXX.
func generateTicketNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("SR-%s-%s", time.Now().Format("20060102"), suffix)
}
