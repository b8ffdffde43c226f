package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"findit/campus-portal/lostfound-backend/internal/users"
	"findit/campus-portal/lostfound-backend/pkg/apperrors"
)

const minPasswordLength = 8

// TokenPair is what login and refresh hand back to the client
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service implements registration, login and session rotation. Bans are
// enforced here at login and refresh; mid-session enforcement happens by
// revoking the user's sessions when the ban lands.
type Service struct {
	usersRepo  users.Repository
	sessions   SessionStore
	tokens     *TokenService
	refreshTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(
	usersRepo users.Repository,
	sessions SessionStore,
	tokens *TokenService,
	refreshTTL time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		usersRepo:  usersRepo,
		sessions:   sessions,
		tokens:     tokens,
		refreshTTL: refreshTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates a user account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, name, password string) (*users.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.Validation("a valid email is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.Validation("name is required")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.Validation("password must be at least 8 characters")
	}

	if existing, err := s.usersRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.Conflict("an account with this email already exists")
	} else if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &users.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Role:         users.RoleUser,
	}
	if err := s.usersRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login verifies the credentials and opens a session. Banned users are
// told when the ban lifts.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, *users.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.usersRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	if user.IsBanned(s.now()) {
		return nil, nil, apperrors.Forbidden(fmt.Sprintf(
			"your account is suspended until %s", user.BannedUntil.Format(time.RFC3339)))
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh rotates the refresh token and mints a fresh access token. The
// old refresh token is consumed whether or not rotation succeeds.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.sessions.Validate(ctx, refreshToken)
	if err != nil {
		if err == ErrSessionNotFound {
			return nil, apperrors.Unauthorized("invalid or expired session")
		}
		return nil, err
	}

	if err := s.sessions.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}

	user, err := s.usersRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.IsBanned(s.now()) {
		return nil, apperrors.Forbidden(fmt.Sprintf(
			"your account is suspended until %s", user.BannedUntil.Format(time.RFC3339)))
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes one session. Unknown tokens succeed silently.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.sessions.Revoke(ctx, refreshToken)
}

func (s *Service) issueTokens(ctx context.Context, user *users.User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(user, s.now())
	if err != nil {
		return nil, err
	}

	refresh, err := s.sessions.Create(ctx, user.ID, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
