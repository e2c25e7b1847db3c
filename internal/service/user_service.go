package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"domainsale/internal/auth"
	errs "domainsale/internal/errors"
	"domainsale/internal/model"
	"domainsale/internal/repository"
)

// MinPasswordLength is the shortest password accepted anywhere.
const MinPasswordLength = 6

// UserService exposes admin account operations.
type UserService interface {
	CreateUser(ctx context.Context, username, password string) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	// EnsureAdmin creates the first account when no users exist yet.
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService with repository.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

type newUserFields struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

func (s *userService) CreateUser(ctx context.Context, username, password string) (*model.User, error) {
	fields := newUserFields{Username: strings.TrimSpace(username), Password: password}
	if err := validationError(validateStruct(fields)); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(fields.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New(),
		Username:     fields.Username,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, errs.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if _, err := s.CreateUser(ctx, username, password); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
