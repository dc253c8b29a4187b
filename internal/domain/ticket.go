package domain

import "time"

// TicketStatus enumerates lifecycle states for service requests.
type TicketStatus string

const (
	TicketStatusNew             TicketStatus = "NEW"
	TicketStatusPendingApproval TicketStatus = "PENDING_APPROVAL"
	TicketStatusApproved        TicketStatus = "APPROVED"
	TicketStatusRejected        TicketStatus = "REJECTED"
	TicketStatusAssigned        TicketStatus = "ASSIGNED"
	TicketStatusInProgress      TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingForUser  TicketStatus = "WAITING_FOR_USER"
	TicketStatusResolved        TicketStatus = "RESOLVED"
	TicketStatusClosed          TicketStatus = "CLOSED"
	TicketStatusCancelled       TicketStatus = "CANCELLED"
)

// IsTerminal reports whether a status admits no further transitions.
// RESOLVED is not terminal: the requester may still close.
func (s TicketStatus) IsTerminal() bool {
	switch s {
	case TicketStatusClosed, TicketStatusCancelled, TicketStatusRejected:
		return true
	}
	return false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

var priorityOrder = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityCritical,
}

// NextPriority returns the priority one level up, capped at CRITICAL.
func NextPriority(p TicketPriority) TicketPriority {
	for i, candidate := range priorityOrder {
		if candidate == p && i+1 < len(priorityOrder) {
			return priorityOrder[i+1]
		}
	}
	return TicketPriorityCritical
}

// ValidPriority reports whether p is a known priority value.
func ValidPriority(p TicketPriority) bool {
	for _, candidate := range priorityOrder {
		if candidate == p {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for service requests.
type Ticket struct {
	ID              string
	TicketNumber    string
	RequesterID     string
	CategoryID      string
	ServiceID       string
	DepartmentID    *string
	AssignedAgentID *string
	Title           string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	ResolutionNotes *string
	RejectionReason *string
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
}
