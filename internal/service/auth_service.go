package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/bookingdesk/internal/domain"
	"github.com/yourorg/bookingdesk/internal/repository"
	"github.com/yourorg/bookingdesk/internal/security/auth"
)

var (
	// ErrInvalidLogin is returned for unknown users and wrong passwords
	// alike; callers get no distinguishing detail.
	ErrInvalidLogin = errors.New("incorrect username or password")
	// ErrLockedOut is returned while a username is temporarily locked after
	// repeated failed attempts.
	ErrLockedOut = errors.New("too many failed login attempts")
)

// LockoutStore tracks failed login attempts per username. Implementations
// should fail open: an unavailable store must not block logins.
type LockoutStore interface {
	Locked(ctx context.Context, username string) bool
	RecordFailure(ctx context.Context, username string)
	Clear(ctx context.Context, username string)
}

// LoginResult carries the issued bearer token
type LoginResult struct {
	Token     string    `json:"access_token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService authenticates users against the credential store and issues
// bearer tokens.
type AuthService struct {
	users   domain.UserRepository
	tokens  *auth.TokenManager
	lockout LockoutStore
	logger  *slog.Logger
}

// NewAuthService creates a new authentication service. lockout may be nil,
// in which case no attempt tracking happens.
func NewAuthService(users domain.UserRepository, tokens *auth.TokenManager, lockout LockoutStore, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:   users,
		tokens:  tokens,
		lockout: lockout,
		logger:  logger,
	}
}

// Login verifies the password and returns a signed bearer token. Unknown
// users and wrong passwords produce the same error. Whether the account is
// disabled is not consulted here: disabled accounts are rejected on every
// authenticated call by the bearer middleware.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidLogin
	}

	if s.lockout != nil && s.lockout.Locked(ctx, username) {
		s.logger.Warn("login attempt while locked out", slog.String("username", username))
		return nil, ErrLockedOut
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Info("login attempt for unknown user", slog.String("username", username))
			s.recordFailure(ctx, username)
			return nil, ErrInvalidLogin
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("username", username))
		s.recordFailure(ctx, username)
		return nil, ErrInvalidLogin
	}

	token, expiresAt, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		s.logger.Error("failed to issue token",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if s.lockout != nil {
		s.lockout.Clear(ctx, username)
	}

	s.logger.Info("user logged in",
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)),
	)

	return &LoginResult{
		Token:     token,
		TokenType: "bearer",
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if s.lockout != nil {
		s.lockout.RecordFailure(ctx, username)
	}
}
