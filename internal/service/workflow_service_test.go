package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/repository"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

func seedTicket(t *testing.T, repo *fakeTicketRepo, status domain.TicketStatus) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		TicketNumber: "SR-20260831-ABC123",
		RequesterID:  "requester-1",
		CategoryID:   "cat-1",
		ServiceID:    "svc-1",
		Title:        "laptop request",
		Description:  "need a new laptop",
		Status:       status,
		Priority:     domain.TicketPriorityMedium,
	}
	require.NoError(t, repo.Create(context.Background(), ticket))
	return ticket
}

func newWorkflowFixture() (*WorkflowService, *fakeTicketRepo, *recordingDispatcher) {
	repo := newFakeTicketRepo()
	dispatcher := newRecordingDispatcher()
	return NewWorkflowService(repo, dispatcher, zap.NewNop()), repo, dispatcher
}

func TestWorkflowTransitions(t *testing.T) {
	ctx := context.Background()
	agent := Actor{ID: "agent-1", Role: domain.RoleAgent}
	approver := Actor{ID: "approver-1", Role: domain.RoleApprover}

	t.Run("assigned ticket starts work", func(t *testing.T) {
		wf, repo, dispatcher := newWorkflowFixture()
		ticket := seedTicket(t, repo, domain.TicketStatusAssigned)

		updated, err := wf.Transition(ctx, agent, ticket.ID, TransitionInput{To: domain.TicketStatusInProgress})
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusInProgress, updated.Status)

		entries := repo.entriesFor(ticket.ID)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.ActionStatusChanged, entries[0].Action)
		assert.Equal(t, "ASSIGNED", *entries[0].OldValue)
		assert.Equal(t, "IN_PROGRESS", *entries[0].NewValue)
		assert.Equal(t, "agent-1", *entries[0].PerformedBy)

		require.Len(t, dispatcher.eventsOf(events.EventTicketStatusChanged), 1)
	})

	t.Run("undefined transition rejected", func(t *testing.T) {
		wf, repo, _ := newWorkflowFixture()
		ticket := seedTicket(t, repo, domain.TicketStatusNew)

		_, err := wf.Transition(ctx, agent, ticket.ID, TransitionInput{To: domain.TicketStatusResolved})
		assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))

		stored, _ := repo.GetByID(ctx, ticket.ID)
		assert.Equal(t, domain.TicketStatusNew, stored.Status)
		assert.Empty(t, repo.entriesFor(ticket.ID))
	})

	t.Run("role without permission rejected", func(t *testing.T) {
		wf, repo, _ := newWorkflowFixture()
		ticket := seedTicket(t, repo, domain.TicketStatusPendingApproval)

		_, err := wf.Transition(ctx, agent, ticket.ID, TransitionInput{To: domain.TicketStatusApproved})
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN_TRANSITION"))
	})

	t.Run("approver approves and rejects", func(t *testing.T) {
		wf, repo, _ := newWorkflowFixture()
		ticket := seedTicket(t, repo, domain.TicketStatusPendingApproval)

		updated, err := wf.Transition(ctx, approver, ticket.ID, TransitionInput{To: domain.TicketStatusApproved})
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusApproved, updated.Status)

		other := seedTicket(t, repo, domain.TicketStatusPendingApproval)
		rejected, err := wf.Transition(ctx, approver, other.ID, TransitionInput{
			To:              domain.TicketStatusRejected,
			RejectionReason: "no budget",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusRejected, rejected.Status)
		assert.Equal(t, "no budget", *rejected.RejectionReason)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		wf, repo, _ := newWorkflowFixture()
		ticket := seedTicket(t, repo, domain.TicketStatusPendingApproval)

		_, err := wf.Transition(ctx, approver, ticket.ID, TransitionInput{To: domain.TicketStatusRejected})
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("resolve requires notes and stamps resolved_at", func(t *testing.T) {
		wf, repo, _ := newWorkflowFixture()
		ticket := seedTicket(t, repo, domain.TicketStatusInProgress)

		_, err := wf.Transition(ctx, agent, ticket.ID, TransitionInput{To: domain.TicketStatusResolved})
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

		resolved, err := wf.Transition(ctx, agent, ticket.ID, TransitionInput{
			To:              domain.TicketStatusResolved,
			ResolutionNotes: "replaced the battery",
		})
		require.NoError(t, err)
		assert.Equal(t, "replaced the battery", *resolved.ResolutionNotes)
		assert.NotNil(t, resolved.ResolvedAt)
	})

	t.Run("requester closes own resolved ticket", func(t *testing.T) {
		wf, repo, _ := newWorkflowFixture()
		ticket := seedTicket(t, repo, domain.TicketStatusResolved)

		closed, err := wf.Transition(ctx, Actor{ID: "requester-1", Role: domain.RoleEndUser}, ticket.ID,
			TransitionInput{To: domain.TicketStatusClosed})
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusClosed, closed.Status)
		assert.NotNil(t, closed.ClosedAt)
	})

	t.Run("stranger cannot close someone else's ticket", func(t *testing.T) {
		wf, repo, _ := newWorkflowFixture()
		ticket := seedTicket(t, repo, domain.TicketStatusResolved)

		_, err := wf.Transition(ctx, Actor{ID: "other-user", Role: domain.RoleEndUser}, ticket.ID,
			TransitionInput{To: domain.TicketStatusClosed})
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})

	t.Run("terminal states allow nothing", func(t *testing.T) {
		wf, repo, _ := newWorkflowFixture()
		for _, status := range []domain.TicketStatus{
			domain.TicketStatusClosed,
			domain.TicketStatusCancelled,
			domain.TicketStatusRejected,
		} {
			ticket := seedTicket(t, repo, status)
			_, err := wf.Transition(ctx, Actor{ID: "admin-1", Role: domain.RoleAdmin}, ticket.ID,
				TransitionInput{To: domain.TicketStatusInProgress})
			assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"), "from %s", status)
		}
	})

	t.Run("waiting for user resumes work", func(t *testing.T) {
		wf, repo, _ := newWorkflowFixture()
		ticket := seedTicket(t, repo, domain.TicketStatusWaitingForUser)

		updated, err := wf.Transition(ctx, agent, ticket.ID, TransitionInput{To: domain.TicketStatusInProgress})
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	})

	t.Run("version conflict surfaces as CONFLICT", func(t *testing.T) {
		wf, repo, _ := newWorkflowFixture()
		ticket := seedTicket(t, repo, domain.TicketStatusAssigned)
		repo.failNextUpdate = repository.ErrVersionConflict

		_, err := wf.Transition(ctx, agent, ticket.ID, TransitionInput{To: domain.TicketStatusInProgress})
		assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	})

	t.Run("missing ticket is NOT_FOUND", func(t *testing.T) {
		wf, _, _ := newWorkflowFixture()
		_, err := wf.Transition(ctx, agent, "no-such-ticket", TransitionInput{To: domain.TicketStatusInProgress})
		assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	})
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(domain.TicketStatusNew, domain.TicketStatusPendingApproval))
	assert.True(t, CanTransition(domain.TicketStatusResolved, domain.TicketStatusClosed))
	assert.False(t, CanTransition(domain.TicketStatusClosed, domain.TicketStatusInProgress))
	assert.False(t, CanTransition(domain.TicketStatusRejected, domain.TicketStatusApproved))
}
