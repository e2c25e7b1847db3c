package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"domainsale/internal/model"
)

// Ensure memory repositories implement the interfaces
var (
	_ UserRepository       = (*MemoryUserRepository)(nil)
	_ SubmissionRepository = (*MemorySubmissionRepository)(nil)
	_ SiteConfigRepository = (*MemorySiteConfigRepository)(nil)
)

// MemoryUserRepository keeps users in process memory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
}

// NewMemoryUserRepository creates an empty user store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[uuid.UUID]model.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username {
			return ErrDuplicateUsername
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return nil
}

func (r *MemoryUserRepository) List(ctx context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (r *MemoryUserRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

// MemorySubmissionRepository keeps contact submissions in process memory.
type MemorySubmissionRepository struct {
	mu          sync.RWMutex
	submissions map[uuid.UUID]model.ContactSubmission
}

// NewMemorySubmissionRepository creates an empty submission store.
func NewMemorySubmissionRepository() *MemorySubmissionRepository {
	return &MemorySubmissionRepository{submissions: make(map[uuid.UUID]model.ContactSubmission)}
}

func (r *MemorySubmissionRepository) Create(ctx context.Context, submission *model.ContactSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if submission.ID == uuid.Nil {
		submission.ID = uuid.New()
	}
	stored := *submission
	if submission.Message != nil {
		msg := *submission.Message
		stored.Message = &msg
	}
	r.submissions[stored.ID] = stored
	return nil
}

func (r *MemorySubmissionRepository) List(ctx context.Context) ([]model.ContactSubmission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	submissions := make([]model.ContactSubmission, 0, len(r.submissions))
	for _, s := range r.submissions {
		submissions = append(submissions, s)
	}
	sort.Slice(submissions, func(i, j int) bool {
		return submissions[i].SubmittedAt.After(submissions[j].SubmittedAt)
	})
	return submissions, nil
}

// MemorySiteConfigRepository holds the singleton configuration in memory.
type MemorySiteConfigRepository struct {
	mu     sync.RWMutex
	config *model.SiteConfig
}

// NewMemorySiteConfigRepository creates a store with no configuration yet.
func NewMemorySiteConfigRepository() *MemorySiteConfigRepository {
	return &MemorySiteConfigRepository{}
}

func (r *MemorySiteConfigRepository) Get(ctx context.Context) (*model.SiteConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.config == nil {
		return nil, ErrNotFound
	}
	return cloneSiteConfig(r.config), nil
}

func (r *MemorySiteConfigRepository) Replace(ctx context.Context, config *model.SiteConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.config != nil:
		config.ID = r.config.ID
	case config.ID == uuid.Nil:
		config.ID = uuid.New()
	}
	r.config = cloneSiteConfig(config)
	return nil
}

func cloneSiteConfig(c *model.SiteConfig) *model.SiteConfig {
	out := *c
	if c.ResendAPIKey != nil {
		key := *c.ResendAPIKey
		out.ResendAPIKey = &key
	}
	return &out
}
