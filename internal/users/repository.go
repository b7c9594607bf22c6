package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for user storage
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	MarkVerified(ctx context.Context, id string) error
	SetVerificationCode(ctx context.Context, id, code string, expiresAt time.Time) error
	SetResetCode(ctx context.Context, id, code string, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id, hashedPassword string) error
	SoftDelete(ctx context.Context, id string) error
}

// InMemoryRepository is an in-memory Repository used in tests and local
// development without a database.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]*User)}
}

// Create stores a new user
func (r *InMemoryRepository) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email && existing.DeletedAt == nil {
			return ErrEmailTaken
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

// GetByID retrieves an active user by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetByEmail retrieves an active user by email
func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email && u.DeletedAt == nil {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

// MarkVerified records email verification and clears the pending code
func (r *InMemoryRepository) MarkVerified(ctx context.Context, id string) error {
	return r.update(id, func(u *User) {
		now := time.Now().UTC()
		u.EmailVerifiedAt = &now
		u.VerificationCode = nil
		u.VerificationCodeExpiresAt = nil
	})
}

// SetVerificationCode stores a pending email verification code
func (r *InMemoryRepository) SetVerificationCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	return r.update(id, func(u *User) {
		u.VerificationCode = &code
		u.VerificationCodeExpiresAt = &expiresAt
	})
}

// SetResetCode stores a pending password reset code
func (r *InMemoryRepository) SetResetCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	return r.update(id, func(u *User) {
		u.PasswordResetCode = &code
		u.PasswordResetCodeExpiresAt = &expiresAt
	})
}

// UpdatePassword replaces the password hash and clears any reset code
func (r *InMemoryRepository) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	return r.update(id, func(u *User) {
		u.HashedPassword = hashedPassword
		u.PasswordResetCode = nil
		u.PasswordResetCodeExpiresAt = nil
	})
}

// SoftDelete marks the user deleted without removing the row
func (r *InMemoryRepository) SoftDelete(ctx context.Context, id string) error {
	return r.update(id, func(u *User) {
		now := time.Now().UTC()
		u.DeletedAt = &now
	})
}

func (r *InMemoryRepository) update(id string, fn func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}
