package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"findit/campus-portal/lostfound-backend/internal/users"
	"findit/campus-portal/lostfound-backend/pkg/apperrors"
)

type MockUsersRepository struct {
	mock.Mock
}

func (m *MockUsersRepository) Create(ctx context.Context, user *users.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsersRepository) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *MockUsersRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *MockUsersRepository) Ban(ctx context.Context, id uuid.UUID, until time.Time) error {
	args := m.Called(ctx, id, until)
	return args.Error(0)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	args := m.Called(ctx, userID, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockSessionStore) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSessionStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newAuthService(repo *MockUsersRepository, sessions *MockSessionStore) *Service {
	tokens := NewTokenService("test-secret", 15*time.Minute)
	return NewService(repo, sessions, tokens, 7*24*time.Hour, zap.NewNop())
}

func hashPassword(t *testing.T, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestRegisterSuccess(t *testing.T) {
	repo := new(MockUsersRepository)
	sessions := new(MockSessionStore)
	service := newAuthService(repo, sessions)

	repo.On("GetByEmail", mock.Anything, "student@campus.edu").
		Return(nil, apperrors.NotFound("user not found"))
	repo.On("Create", mock.Anything, mock.AnythingOfType("*users.User")).
		Run(func(args mock.Arguments) {
			user := args.Get(1).(*users.User)
			user.ID = uuid.New()
			assert.Equal(t, users.RoleUser, user.Role)
			assert.NotEqual(t, "hunter22hunter22", user.PasswordHash)
		}).Return(nil)

	user, err := service.Register(context.Background(), " Student@Campus.edu ", "Sam Lee", "hunter22hunter22")

	assert.NoError(t, err)
	assert.Equal(t, "student@campus.edu", user.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := new(MockUsersRepository)
	service := newAuthService(repo, new(MockSessionStore))

	repo.On("GetByEmail", mock.Anything, "student@campus.edu").
		Return(&users.User{ID: uuid.New()}, nil)

	_, err := service.Register(context.Background(), "student@campus.edu", "Sam Lee", "hunter22hunter22")

	assert.True(t, apperrors.IsConflict(err))
	repo.AssertNotCalled(t, "Create")
}

func TestRegisterWeakPassword(t *testing.T) {
	service := newAuthService(new(MockUsersRepository), new(MockSessionStore))

	_, err := service.Register(context.Background(), "student@campus.edu", "Sam Lee", "short")

	appErr, ok := apperrors.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
}

func TestLoginSuccess(t *testing.T) {
	repo := new(MockUsersRepository)
	sessions := new(MockSessionStore)
	service := newAuthService(repo, sessions)

	user := &users.User{
		ID:           uuid.New(),
		Email:        "student@campus.edu",
		PasswordHash: hashPassword(t, "hunter22hunter22"),
		Role:         users.RoleUser,
	}
	repo.On("GetByEmail", mock.Anything, "student@campus.edu").Return(user, nil)
	sessions.On("Create", mock.Anything, user.ID, 7*24*time.Hour).Return("refresh-token", nil)

	pair, got, err := service.Login(context.Background(), "student@campus.edu", "hunter22hunter22")

	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, "refresh-token", pair.RefreshToken)
	assert.Equal(t, user.ID, got.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := new(MockUsersRepository)
	service := newAuthService(repo, new(MockSessionStore))

	repo.On("GetByEmail", mock.Anything, "student@campus.edu").Return(&users.User{
		PasswordHash: hashPassword(t, "hunter22hunter22"),
	}, nil)

	_, _, err := service.Login(context.Background(), "student@campus.edu", "wrong-password")

	appErr, ok := apperrors.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	repo := new(MockUsersRepository)
	service := newAuthService(repo, new(MockSessionStore))

	repo.On("GetByEmail", mock.Anything, "nobody@campus.edu").
		Return(nil, apperrors.NotFound("user not found"))

	_, _, err := service.Login(context.Background(), "nobody@campus.edu", "whatever-pass")

	// Unknown email and wrong password are indistinguishable.
	appErr, ok := apperrors.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
}

func TestLoginBannedUser(t *testing.T) {
	repo := new(MockUsersRepository)
	sessions := new(MockSessionStore)
	service := newAuthService(repo, sessions)
	service.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }

	until := time.Date(2026, 3, 17, 12, 0, 0, 0, time.UTC)
	repo.On("GetByEmail", mock.Anything, "banned@campus.edu").Return(&users.User{
		ID:           uuid.New(),
		PasswordHash: hashPassword(t, "hunter22hunter22"),
		BannedUntil:  &until,
	}, nil)

	_, _, err := service.Login(context.Background(), "banned@campus.edu", "hunter22hunter22")

	appErr, ok := apperrors.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
	assert.Contains(t, appErr.Message, "2026-03-17")
	sessions.AssertNotCalled(t, "Create")
}

func TestLoginExpiredBanAdmits(t *testing.T) {
	repo := new(MockUsersRepository)
	sessions := new(MockSessionStore)
	service := newAuthService(repo, sessions)
	service.now = func() time.Time { return time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC) }

	until := time.Date(2026, 3, 17, 12, 0, 0, 0, time.UTC)
	user := &users.User{
		ID:           uuid.New(),
		PasswordHash: hashPassword(t, "hunter22hunter22"),
		BannedUntil:  &until,
	}
	repo.On("GetByEmail", mock.Anything, "banned@campus.edu").Return(user, nil)
	sessions.On("Create", mock.Anything, user.ID, mock.Anything).Return("refresh-token", nil)

	pair, _, err := service.Login(context.Background(), "banned@campus.edu", "hunter22hunter22")

	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := new(MockUsersRepository)
	sessions := new(MockSessionStore)
	service := newAuthService(repo, sessions)

	user := &users.User{ID: uuid.New(), Role: users.RoleUser}
	sessions.On("Validate", mock.Anything, "old-token").Return(user.ID, nil)
	sessions.On("Revoke", mock.Anything, "old-token").Return(nil)
	repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	sessions.On("Create", mock.Anything, user.ID, mock.Anything).Return("new-token", nil)

	pair, err := service.Refresh(context.Background(), "old-token")

	assert.NoError(t, err)
	assert.Equal(t, "new-token", pair.RefreshToken)
	sessions.AssertExpectations(t)
}

func TestRefreshRevokedSession(t *testing.T) {
	repo := new(MockUsersRepository)
	sessions := new(MockSessionStore)
	service := newAuthService(repo, sessions)

	sessions.On("Validate", mock.Anything, "revoked-token").Return(uuid.Nil, ErrSessionNotFound)

	_, err := service.Refresh(context.Background(), "revoked-token")

	appErr, ok := apperrors.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
}

func TestRefreshBannedUserRejected(t *testing.T) {
	repo := new(MockUsersRepository)
	sessions := new(MockSessionStore)
	service := newAuthService(repo, sessions)
	service.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }

	until := time.Date(2026, 3, 17, 12, 0, 0, 0, time.UTC)
	user := &users.User{ID: uuid.New(), BannedUntil: &until}
	sessions.On("Validate", mock.Anything, "old-token").Return(user.ID, nil)
	sessions.On("Revoke", mock.Anything, "old-token").Return(nil)
	repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	_, err := service.Refresh(context.Background(), "old-token")

	appErr, ok := apperrors.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
	sessions.AssertNotCalled(t, "Create")
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("test-secret", 15*time.Minute)
	user := &users.User{ID: uuid.New(), Role: users.RoleAdmin}

	signed, err := tokens.IssueAccessToken(user, time.Now())
	assert.NoError(t, err)

	claims, err := tokens.ParseAccessToken(signed)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	tokens := NewTokenService("test-secret", 15*time.Minute)
	user := &users.User{ID: uuid.New(), Role: users.RoleUser}

	signed, err := tokens.IssueAccessToken(user, time.Now().Add(-time.Hour))
	assert.NoError(t, err)

	_, err = tokens.ParseAccessToken(signed)
	appErr, ok := apperrors.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
}
