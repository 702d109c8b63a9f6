// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/shopguard/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides access to shop accounts.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// List returns all users in storage order.
	List(ctx context.Context) ([]model.User, error)
	// SetLastLoginIP records the address of the latest successful login.
	SetLastLoginIP(ctx context.Context, id uuid.UUID, ip string) error
}
