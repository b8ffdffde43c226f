package claims

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"findit/campus-portal/lostfound-backend/internal/items"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Claim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Claim), args.Error(1)
}

func (m *MockRepository) GetByItemAndClaimant(ctx context.Context, itemID, claimantID uuid.UUID) (*Claim, error) {
	args := m.Called(ctx, itemID, claimantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Claim), args.Error(1)
}

func (m *MockRepository) HasActiveClaim(ctx context.Context, itemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListByClaimant(ctx context.Context, claimantID uuid.UUID) ([]Claim, error) {
	args := m.Called(ctx, claimantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Claim), args.Error(1)
}

func (m *MockRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]Claim, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Claim), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, status *ClaimStatus, page, limit int) ([]Claim, int64, error) {
	args := m.Called(ctx, status, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Claim), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) CreateWithProofs(ctx context.Context, claim *Claim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

func (m *MockRepository) Approve(ctx context.Context, claimID uuid.UUID, comment string) (*Claim, error) {
	args := m.Called(ctx, claimID, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Claim), args.Error(1)
}

func (m *MockRepository) Reject(ctx context.Context, claimID uuid.UUID, reason string) (*Claim, error) {
	args := m.Called(ctx, claimID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Claim), args.Error(1)
}

func (m *MockRepository) MarkItemRecovered(ctx context.Context, itemID uuid.UUID) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockRepository) CountApprovedForItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CountApprovedAgainstReporter(ctx context.Context, claimantID, reporterID uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, claimantID, reporterID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) SnapshotItemStates(ctx context.Context) ([]ItemState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ItemState), args.Error(1)
}

// MockItemsRepository is a mock implementation of items.Repository
type MockItemsRepository struct {
	mock.Mock
}

func (m *MockItemsRepository) Create(ctx context.Context, item *items.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemsRepository) GetByID(ctx context.Context, id uuid.UUID) (*items.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*items.Item), args.Error(1)
}

func (m *MockItemsRepository) List(ctx context.Context, filter items.ItemFilter) ([]items.Item, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]items.Item), args.Get(1).(int64), args.Error(2)
}

func (m *MockItemsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRecorder is a mock audit Recorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, actorID uuid.UUID, action, entity, entityID string, metadata map[string]interface{}) error {
	args := m.Called(ctx, actorID, action, entity, entityID, metadata)
	return args.Error(0)
}

// MockCollusionChecker is a mock CollusionChecker
type MockCollusionChecker struct {
	mock.Mock
}

func (m *MockCollusionChecker) Check(ctx context.Context, claimantID, reporterID, actorID uuid.UUID) (int64, error) {
	args := m.Called(ctx, claimantID, reporterID, actorID)
	return args.Get(0).(int64), args.Error(1)
}

// fixedImageScorer returns a fixed score or error for every image proof
type fixedImageScorer struct {
	score float64
	err   error
}

func (s fixedImageScorer) ScoreImage(ctx context.Context, originalImageURL, claimImagePath string) (float64, error) {
	return s.score, s.err
}

// fixedTextScorer returns a fixed score or error for every text proof
type fixedTextScorer struct {
	score float64
	err   error
}

func (s fixedTextScorer) ScoreText(ctx context.Context, original, claim string) (float64, error) {
	return s.score, s.err
}
