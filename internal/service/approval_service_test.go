package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/domain"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

func newApprovalFixture() (*ApprovalService, *fakeTicketRepo) {
	repo := newFakeTicketRepo()
	workflow := NewWorkflowService(repo, newRecordingDispatcher(), zap.NewNop())
	return NewApprovalService(workflow), repo
}

func TestApprovalGate(t *testing.T) {
	ctx := context.Background()
	approver := Actor{ID: "approver-1", Role: domain.RoleApprover}

	t.Run("approve", func(t *testing.T) {
		svc, repo := newApprovalFixture()
		ticket := seedTicket(t, repo, domain.TicketStatusPendingApproval)

		updated, err := svc.Approve(ctx, approver, ticket.ID, "budget ok")
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusApproved, updated.Status)
	})

	t.Run("reject records the reason", func(t *testing.T) {
		svc, repo := newApprovalFixture()
		ticket := seedTicket(t, repo, domain.TicketStatusPendingApproval)

		updated, err := svc.Reject(ctx, approver, ticket.ID, "duplicate request")
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusRejected, updated.Status)
		assert.Equal(t, "duplicate request", *updated.RejectionReason)
	})

	t.Run("reject without reason fails before the workflow", func(t *testing.T) {
		svc, repo := newApprovalFixture()
		ticket := seedTicket(t, repo, domain.TicketStatusPendingApproval)

		_, err := svc.Reject(ctx, approver, ticket.ID, " ")
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
		assert.Empty(t, repo.entriesFor(ticket.ID))
	})

	t.Run("only pending tickets can be decided", func(t *testing.T) {
		svc, repo := newApprovalFixture()
		ticket := seedTicket(t, repo, domain.TicketStatusNew)

		_, err := svc.Approve(ctx, approver, ticket.ID, "")
		assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))
	})
}
