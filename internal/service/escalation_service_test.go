package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	apperrors "github.com/spec-kit/servicedesk/pkg/util"
)

func TestEscalate(t *testing.T) {
	ctx := context.Background()
	agent := Actor{ID: "agent-1", Role: domain.RoleAgent}

	t.Run("bumps priority one level", func(t *testing.T) {
		repo := newFakeTicketRepo()
		dispatcher := newRecordingDispatcher()
		svc := NewEscalationService(repo, dispatcher)
		ticket := seedTicket(t, repo, domain.TicketStatusInProgress)

		updated, err := svc.Escalate(ctx, agent, ticket.ID, "SLA breach", "")
		require.NoError(t, err)
		assert.Equal(t, domain.TicketPriorityHigh, updated.Priority)
		assert.Equal(t, domain.TicketStatusInProgress, updated.Status)

		entries := repo.entriesFor(ticket.ID)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.ActionEscalated, entries[0].Action)
		assert.Equal(t, "MEDIUM", *entries[0].OldValue)
		assert.Equal(t, "HIGH", *entries[0].NewValue)
		assert.Contains(t, *entries[0].Notes, "SLA breach")

		require.Len(t, dispatcher.eventsOf(events.EventTicketEscalated), 1)
	})

	t.Run("critical stays critical but is still logged", func(t *testing.T) {
		repo := newFakeTicketRepo()
		svc := NewEscalationService(repo, newRecordingDispatcher())
		ticket := seedTicket(t, repo, domain.TicketStatusInProgress)
		repo.tickets[ticket.ID].Priority = domain.TicketPriorityCritical

		updated, err := svc.Escalate(ctx, agent, ticket.ID, "still broken", "")
		require.NoError(t, err)
		assert.Equal(t, domain.TicketPriorityCritical, updated.Priority)
		require.Len(t, repo.entriesFor(ticket.ID), 1)
	})

	t.Run("requires a reason", func(t *testing.T) {
		repo := newFakeTicketRepo()
		svc := NewEscalationService(repo, newRecordingDispatcher())
		ticket := seedTicket(t, repo, domain.TicketStatusInProgress)

		_, err := svc.Escalate(ctx, agent, ticket.ID, "  ", "")
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("rejects terminal tickets", func(t *testing.T) {
		repo := newFakeTicketRepo()
		svc := NewEscalationService(repo, newRecordingDispatcher())
		ticket := seedTicket(t, repo, domain.TicketStatusClosed)

		_, err := svc.Escalate(ctx, agent, ticket.ID, "too late", "")
		assert.True(t, apperrors.IsCode(err, "PRECHECK_FAILED"))
	})
}
