package service

import (
	"context"
	"strings"

	"github.com/spec-kit/servicedesk/internal/domain"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

// ApprovalService gates tickets waiting in PENDING_APPROVAL. It is a thin
// wrapper over the workflow engine; the transition table does the enforcement.
type ApprovalService struct {
	workflow *WorkflowService
}

// NewApprovalService creates the service.
func NewApprovalService(workflow *WorkflowService) *ApprovalService {
	return &ApprovalService{workflow: workflow}
}

// Approve moves a pending ticket to APPROVED.
func (s *ApprovalService) Approve(ctx context.Context, actor Actor, ticketID, notes string) (*domain.Ticket, error) {
	return s.workflow.Transition(ctx, actor, ticketID, TransitionInput{
		To:    domain.TicketStatusApproved,
		Notes: notes,
	})
}

// Reject moves a pending ticket to REJECTED. A non-empty reason is mandatory.
func (s *ApprovalService) Reject(ctx context.Context, actor Actor, ticketID, reason string) (*domain.Ticket, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("rejection reason required", nil)
	}
	return s.workflow.Transition(ctx, actor, ticketID, TransitionInput{
		To:              domain.TicketStatusRejected,
		Notes:           reason,
		RejectionReason: reason,
	})
}
