package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminal(t *testing.T) {
	assert.True(t, TicketStatusClosed.IsTerminal())
	assert.True(t, TicketStatusCancelled.IsTerminal())
	assert.True(t, TicketStatusRejected.IsTerminal())

	assert.False(t, TicketStatusResolved.IsTerminal())
	assert.False(t, TicketStatusNew.IsTerminal())
	assert.False(t, TicketStatusInProgress.IsTerminal())
}

func TestNextPriority(t *testing.T) {
	assert.Equal(t, TicketPriorityMedium, NextPriority(TicketPriorityLow))
	assert.Equal(t, TicketPriorityHigh, NextPriority(TicketPriorityMedium))
	assert.Equal(t, TicketPriorityCritical, NextPriority(TicketPriorityHigh))
	assert.Equal(t, TicketPriorityCritical, NextPriority(TicketPriorityCritical))
}

func TestValidPriority(t *testing.T) {
	assert.True(t, ValidPriority(TicketPriorityLow))
	assert.False(t, ValidPriority("URGENT"))
}

func TestIsStaff(t *testing.T) {
	staff := &User{Role: RoleAgent}
	assert.True(t, staff.IsStaff())

	endUser := &User{Role: RoleEndUser}
	assert.False(t, endUser.IsStaff())
}
