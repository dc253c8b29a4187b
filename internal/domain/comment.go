package domain

import "time"

// CommentVisibility differentiates requester-visible replies from internal notes.
type CommentVisibility string

const (
	CommentVisibilityPublic   CommentVisibility = "PUBLIC"
	CommentVisibilityInternal CommentVisibility = "INTERNAL"
)

// TicketComment captures communication on a ticket.
type TicketComment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Visibility CommentVisibility
	Body       string
	CreatedAt  time.Time
}
