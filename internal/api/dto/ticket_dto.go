package dto

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// CreateTicketRequest is the body for opening a ticket.
type CreateTicketRequest struct {
	ServiceID   string `json:"service_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority,omitempty"`
}

// TransitionRequest is the body for generic status changes.
type TransitionRequest struct {
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`
	ResolutionNotes string `json:"resolution_notes,omitempty"`
}

// ApprovalRequest is the body for approve/reject decisions.
type ApprovalRequest struct {
	Notes  string `json:"notes,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// AssignDepartmentRequest is the body for routing a ticket.
type AssignDepartmentRequest struct {
	DepartmentID string `json:"department_id"`
	Notes        string `json:"notes,omitempty"`
}

// AssignAgentRequest is the body for handing a ticket to an agent.
type AssignAgentRequest struct {
	AgentID string `json:"agent_id"`
	Notes   string `json:"notes,omitempty"`
}

// EscalateRequest is the body for raising priority.
type EscalateRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes,omitempty"`
}

// ChangePriorityRequest is the body for an admin priority override.
type ChangePriorityRequest struct {
	Priority string `json:"priority"`
}

// NotesRequest is the body for cancel and close.
type NotesRequest struct {
	Notes string `json:"notes,omitempty"`
}

// AddCommentRequest is the body for posting a comment.
type AddCommentRequest struct {
	Body       string `json:"body"`
	Visibility string `json:"visibility,omitempty"`
}

// TicketResponse is the public shape of a ticket.
type TicketResponse struct {
	ID              string     `json:"id"`
	TicketNumber    string     `json:"ticket_number"`
	RequesterID     string     `json:"requester_id"`
	CategoryID      string     `json:"category_id"`
	ServiceID       string     `json:"service_id"`
	DepartmentID    *string    `json:"department_id,omitempty"`
	AssignedAgentID *string    `json:"assigned_agent_id,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	ResolutionNotes *string    `json:"resolution_notes,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	Version         int64      `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
}

// TicketListResponse wraps a paginated ticket listing.
type TicketListResponse struct {
	Items      []TicketResponse `json:"items"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
}

// ActivityEntryResponse is one timeline row.
type ActivityEntryResponse struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	OldValue    *string   `json:"old_value,omitempty"`
	NewValue    *string   `json:"new_value,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	PerformedBy *string   `json:"performed_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CommentResponse is the public shape of a comment.
type CommentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	AuthorID   string    `json:"author_id"`
	Visibility string    `json:"visibility"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// FromTicket maps the domain model.
func FromTicket(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:              t.ID,
		TicketNumber:    t.TicketNumber,
		RequesterID:     t.RequesterID,
		CategoryID:      t.CategoryID,
		ServiceID:       t.ServiceID,
		DepartmentID:    t.DepartmentID,
		AssignedAgentID: t.AssignedAgentID,
		Title:           t.Title,
		Description:     t.Description,
		Status:          string(t.Status),
		Priority:        string(t.Priority),
		ResolutionNotes: t.ResolutionNotes,
		RejectionReason: t.RejectionReason,
		Version:         t.Version,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		ResolvedAt:      t.ResolvedAt,
		ClosedAt:        t.ClosedAt,
	}
}

// FromTickets maps a slice of tickets.
func FromTickets(tickets []domain.Ticket) []TicketResponse {
	result := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, FromTicket(&tickets[i]))
	}
	return result
}

// FromActivityEntries maps the timeline.
func FromActivityEntries(entries []domain.ActivityEntry) []ActivityEntryResponse {
	result := make([]ActivityEntryResponse, 0, len(entries))
	for _, entry := range entries {
		result = append(result, ActivityEntryResponse{
			ID:          entry.ID,
			Action:      string(entry.Action),
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			Notes:       entry.Notes,
			PerformedBy: entry.PerformedBy,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return result
}

// FromComment maps a single comment.
func FromComment(c *domain.TicketComment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		TicketID:   c.TicketID,
		AuthorID:   c.AuthorID,
		Visibility: string(c.Visibility),
		Body:       c.Body,
		CreatedAt:  c.CreatedAt,
	}
}

// FromComments maps a comment slice.
func FromComments(comments []domain.TicketComment) []CommentResponse {
	result := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		result = append(result, FromComment(&comments[i]))
	}
	return result
}
