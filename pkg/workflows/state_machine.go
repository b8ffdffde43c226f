package workflows

// StateMachine enforces status transitions
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewItemStateMachine returns the legal item status transitions.
// CLAIMED can revert to either origin status when the last pending
// claim is rejected; RECOVERED is terminal.
func NewItemStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"LOST":      {"CLAIMED"},
			"FOUND":     {"CLAIMED"},
			"CLAIMED":   {"LOST", "FOUND", "RECOVERED"},
			"RECOVERED": {},
		},
	}
}

// NewClaimStateMachine returns the legal claim status transitions.
// APPROVED and REJECTED are both terminal.
func NewClaimStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"PENDING":  {"APPROVED", "REJECTED"},
			"APPROVED": {},
			"REJECTED": {},
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}
