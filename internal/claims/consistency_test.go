package claims

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"findit/campus-portal/lostfound-backend/internal/items"
)

func TestConsistencySweepClean(t *testing.T) {
	repo := new(MockRepository)
	checker := NewConsistencyChecker(repo, zap.NewNop())

	repo.On("SnapshotItemStates", mock.Anything).Return([]ItemState{
		{ItemID: uuid.New(), Status: items.StatusLost, Pending: 0, Approved: 0},
		{ItemID: uuid.New(), Status: items.StatusClaimed, Pending: 1, Approved: 0},
		{ItemID: uuid.New(), Status: items.StatusClaimed, Pending: 0, Approved: 1},
		{ItemID: uuid.New(), Status: items.StatusRecovered, Pending: 0, Approved: 1},
	}, nil)

	drifts, err := checker.Run(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestConsistencyDetectsOrphanedClaimedStatus(t *testing.T) {
	repo := new(MockRepository)
	checker := NewConsistencyChecker(repo, zap.NewNop())

	itemID := uuid.New()
	repo.On("SnapshotItemStates", mock.Anything).Return([]ItemState{
		{ItemID: itemID, Status: items.StatusClaimed, Pending: 0, Approved: 0},
	}, nil)

	drifts, err := checker.Run(context.Background())

	assert.NoError(t, err)
	assert.Len(t, drifts, 1)
	assert.Equal(t, itemID, drifts[0].ItemID)
	assert.Equal(t, items.StatusClaimed, drifts[0].Stored)
	assert.Equal(t, items.StatusFound, drifts[0].Expected)
	assert.True(t, drifts[0].Repairable)
}

func TestConsistencyDetectsActiveClaimOnOpenItem(t *testing.T) {
	repo := new(MockRepository)
	checker := NewConsistencyChecker(repo, zap.NewNop())

	repo.On("SnapshotItemStates", mock.Anything).Return([]ItemState{
		{ItemID: uuid.New(), Status: items.StatusFound, Pending: 1, Approved: 0},
		{ItemID: uuid.New(), Status: items.StatusLost, Pending: 0, Approved: 1},
	}, nil)

	drifts, err := checker.Run(context.Background())

	assert.NoError(t, err)
	assert.Len(t, drifts, 2)
	for _, d := range drifts {
		assert.Equal(t, items.StatusClaimed, d.Expected)
		assert.True(t, d.Repairable)
	}
}

func TestConsistencyDetectsRecoveredWithoutApproval(t *testing.T) {
	repo := new(MockRepository)
	checker := NewConsistencyChecker(repo, zap.NewNop())

	repo.On("SnapshotItemStates", mock.Anything).Return([]ItemState{
		{ItemID: uuid.New(), Status: items.StatusRecovered, Pending: 0, Approved: 0},
	}, nil)

	drifts, err := checker.Run(context.Background())

	assert.NoError(t, err)
	assert.Len(t, drifts, 1)
	assert.Equal(t, items.StatusFound, drifts[0].Expected)
	// RECOVERED is terminal, so there is no legal repair transition.
	assert.False(t, drifts[0].Repairable)
}

func TestConsistencySnapshotError(t *testing.T) {
	repo := new(MockRepository)
	checker := NewConsistencyChecker(repo, zap.NewNop())

	repo.On("SnapshotItemStates", mock.Anything).Return(nil, errors.New("connection refused"))

	drifts, err := checker.Run(context.Background())

	assert.Error(t, err)
	assert.Nil(t, drifts)
}
