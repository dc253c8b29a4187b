package domain

import "time"

// ActivityAction captures what a timeline entry records.
type ActivityAction string

const (
	ActionCreated            ActivityAction = "CREATED"
	ActionStatusChanged      ActivityAction = "STATUS_CHANGED"
	ActionAssignedDepartment ActivityAction = "ASSIGNED_DEPARTMENT"
	ActionAssignedAgent      ActivityAction = "ASSIGNED_AGENT"
	ActionEscalated          ActivityAction = "ESCALATED"
	ActionPriorityChanged    ActivityAction = "PRIORITY_CHANGED"
)

// ActivityEntry is an immutable audit trail entry for a ticket.
// Entries are append-only and ordered by CreatedAt for timeline display.
type ActivityEntry struct {
	ID          string
	TicketID    string
	Action      ActivityAction
	OldValue    *string
	NewValue    *string
	Notes       *string
	PerformedBy *string
	CreatedAt   time.Time
}
