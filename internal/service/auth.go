package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/TodoGo/internal/auth"
	"github.com/utafrali/TodoGo/internal/domain"
	"github.com/utafrali/TodoGo/internal/repository"
	apperrors "github.com/utafrali/TodoGo/pkg/errors"
)

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// Username length bounds.
const (
	minUsernameLength = 3
	maxUsernameLength = 50
)

// EventPublisher publishes auth domain events. Satisfied by *event.Producer.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishUserLoggedOut(ctx context.Context, userID string) error
}

// AuthService implements the business logic for signup, login, logout and
// token resolution.
type AuthService struct {
	userRepo      repository.UserRepository
	blacklistRepo repository.TokenBlacklistRepository
	tokens        *auth.TokenManager
	hasher        *auth.PasswordHasher
	events        EventPublisher
	logger        *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	blacklistRepo repository.TokenBlacklistRepository,
	tokens *auth.TokenManager,
	hasher *auth.PasswordHasher,
	events EventPublisher,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		blacklistRepo: blacklistRepo,
		tokens:        tokens,
		hasher:        hasher,
		events:        events,
		logger:        logger,
	}
}

// SignupInput holds the parameters for registering a new user.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Signup creates a new user account, hashes the password, and returns the
// created user with a freshly issued token.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.User, string, error) {
	if err := validateUsername(input.Username); err != nil {
		return nil, "", err
	}
	if input.Email == "" {
		return nil, "", apperrors.InvalidInput("email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, "", apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	if _, err := s.userRepo.GetByUsername(ctx, input.Username); err == nil {
		return nil, "", apperrors.Conflict("username already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", fmt.Errorf("check username: %w", err)
	}

	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, "", apperrors.Conflict("email already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.events.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, token, nil
}

// Authenticate verifies the username/password pair and issues a token. The
// same error message covers unknown usernames and wrong passwords so callers
// cannot probe which usernames exist.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, string, error) {
	if username == "" {
		return nil, "", apperrors.InvalidInput("username is required")
	}
	if password == "" {
		return nil, "", apperrors.InvalidInput("password is required")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", apperrors.Unauthorized("invalid username or password")
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", apperrors.Unauthorized("invalid username or password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, token, nil
}

// CurrentUser resolves a bearer token to the user it belongs to. The
// blacklist is consulted before signature validation so a revoked token is
// rejected even if the signing secret has changed since it was issued.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	revoked, err := s.blacklistRepo.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("check token blacklist: %w", err)
	}
	if revoked {
		return nil, apperrors.Unauthorized("token has been revoked")
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid authentication credentials")
	}
	if claims.Subject == "" {
		return nil, apperrors.Unauthorized("invalid authentication credentials")
	}

	user, err := s.userRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", claims.Subject)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// Logout blacklists the presented token until its natural expiry. The expiry
// is read without enforcing it, so an already-expired token can still be
// logged out. Revoking a token that is already blacklisted succeeds.
func (s *AuthService) Logout(ctx context.Context, token, userID string) error {
	expiresAt, err := s.tokens.PeekExpiry(token)
	if err != nil {
		return apperrors.Unauthorized("invalid token")
	}

	if err := s.blacklistRepo.Revoke(ctx, token, userID, expiresAt); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			return fmt.Errorf("revoke token: %w", err)
		}
	}

	// Publish logout event (non-blocking on failure).
	if err := s.events.PublishUserLoggedOut(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.logged_out event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user logged out",
		slog.String("user_id", userID),
	)

	return nil
}

// Profile returns the user with the given ID.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// validateUsername enforces the username length and character rules: ASCII
// letters, digits, underscores and hyphens only.
func validateUsername(username string) error {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return apperrors.InvalidInput(fmt.Sprintf("username must be between %d and %d characters", minUsernameLength, maxUsernameLength))
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return apperrors.InvalidInput("username may only contain letters, digits, underscores and hyphens")
		}
	}
	return nil
}
