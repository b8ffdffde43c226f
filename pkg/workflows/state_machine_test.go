package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemTransitions(t *testing.T) {
	sm := NewItemStateMachine()

	assert.True(t, sm.CanTransition("LOST", "CLAIMED"))
	assert.True(t, sm.CanTransition("FOUND", "CLAIMED"))
	assert.True(t, sm.CanTransition("CLAIMED", "FOUND"))
	assert.True(t, sm.CanTransition("CLAIMED", "LOST"))
	assert.True(t, sm.CanTransition("CLAIMED", "RECOVERED"))

	assert.False(t, sm.CanTransition("LOST", "RECOVERED"))
	assert.False(t, sm.CanTransition("FOUND", "LOST"))
	assert.False(t, sm.CanTransition("RECOVERED", "CLAIMED"))
	assert.False(t, sm.CanTransition("RECOVERED", "FOUND"))
	assert.False(t, sm.CanTransition("UNKNOWN", "CLAIMED"))
}

func TestClaimTransitions(t *testing.T) {
	sm := NewClaimStateMachine()

	assert.True(t, sm.CanTransition("PENDING", "APPROVED"))
	assert.True(t, sm.CanTransition("PENDING", "REJECTED"))

	assert.False(t, sm.CanTransition("APPROVED", "REJECTED"))
	assert.False(t, sm.CanTransition("REJECTED", "PENDING"))
	assert.False(t, sm.CanTransition("APPROVED", "PENDING"))
}

func TestGetAllowedTransitions(t *testing.T) {
	sm := NewItemStateMachine()

	assert.ElementsMatch(t, []string{"LOST", "FOUND", "RECOVERED"}, sm.GetAllowedTransitions("CLAIMED"))
	assert.Empty(t, sm.GetAllowedTransitions("RECOVERED"))
	assert.Empty(t, sm.GetAllowedTransitions("BOGUS"))
}
