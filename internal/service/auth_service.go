package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"domainsale/internal/auth"
	errs "domainsale/internal/errors"
	"domainsale/internal/model"
	"domainsale/internal/repository"
)

// LoginResult is what a successful login hands to the transport layer.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*model.User, error)
	ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	sessions   auth.SessionStoreInterface
	sessionTTL time.Duration
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, sessions auth.SessionStoreInterface, sessionTTL time.Duration) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// Login verifies credentials and opens a session.
func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, errs.ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.jwtService.GenerateSessionToken(session)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &LoginResult{Token: token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

// Logout ends the session behind token. Unknown or invalid tokens are ignored.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CurrentUser resolves the user bound to the session behind token.
func (s *authService) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, errs.ErrUnauthenticated
	}
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, errs.ErrUnauthenticated
	}

	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			return nil, errs.ErrUnauthenticated
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	// a token can only speak for the user its session was opened for
	if session.UserID.String() != claims.Subject {
		return nil, errs.ErrUnauthenticated
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrUnauthenticated
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the password of the session's user after re-checking the current one.
func (s *authService) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error {
	user, err := s.CurrentUser(ctx, token)
	if err != nil {
		return err
	}

	if !auth.VerifyPassword(user.PasswordHash, currentPassword) {
		return errs.ErrInvalidCredentials
	}

	if len(newPassword) < MinPasswordLength {
		return errs.NewValidationError("newPassword", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
