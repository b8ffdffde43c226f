package claims

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"findit/campus-portal/lostfound-backend/internal/items"
	"findit/campus-portal/lostfound-backend/pkg/workflows"
)

// Drift is an item whose stored status disagrees with the claim history
// that should justify it.
type Drift struct {
	ItemID     uuid.UUID        `json:"item_id"`
	Stored     items.ItemStatus `json:"stored"`
	Expected   items.ItemStatus `json:"expected"`
	Repairable bool             `json:"repairable"`
}

// ConsistencyChecker recomputes each item's should-be status from its
// active claims and reports any mismatch with the stored value. Status is
// cached on the item for query performance; since only the lifecycle
// writes it, drift here means a bug, not normal operation.
type ConsistencyChecker struct {
	repo   Repository
	itemSM *workflows.StateMachine
	logger *zap.Logger
}

func NewConsistencyChecker(repo Repository, logger *zap.Logger) *ConsistencyChecker {
	return &ConsistencyChecker{
		repo:   repo,
		itemSM: workflows.NewItemStateMachine(),
		logger: logger,
	}
}

// Run sweeps every item once and returns the drifted ones.
func (c *ConsistencyChecker) Run(ctx context.Context) ([]Drift, error) {
	states, err := c.repo.SnapshotItemStates(ctx)
	if err != nil {
		return nil, err
	}

	var drifts []Drift
	for _, state := range states {
		expected, ok := expectedStatus(state)
		if ok {
			continue
		}

		drift := Drift{
			ItemID:     state.ItemID,
			Stored:     state.Status,
			Expected:   expected,
			Repairable: c.itemSM.CanTransition(string(state.Status), string(expected)),
		}
		drifts = append(drifts, drift)

		c.logger.Error("Item status drift detected",
			zap.String("item_id", state.ItemID.String()),
			zap.String("stored", string(state.Status)),
			zap.String("expected", string(expected)),
			zap.Bool("repairable", drift.Repairable))
	}

	if len(drifts) == 0 {
		c.logger.Info("Item status consistency sweep clean", zap.Int("items", len(states)))
	}

	return drifts, nil
}

// expectedStatus reports whether the stored status is consistent with the
// claim counts, and if not, what it should have been.
func expectedStatus(state ItemState) (items.ItemStatus, bool) {
	active := state.Pending + state.Approved

	switch state.Status {
	case items.StatusRecovered:
		// Terminal, but only reachable through an approved claim.
		if state.Approved >= 1 {
			return state.Status, true
		}
		return items.StatusFound, false
	case items.StatusClaimed:
		if active >= 1 {
			return state.Status, true
		}
		return items.StatusFound, false
	default:
		// LOST/FOUND must not carry an active claim.
		if active == 0 {
			return state.Status, true
		}
		return items.StatusClaimed, false
	}
}
