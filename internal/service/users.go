package service

import (
	"context"

	"github.com/and161185/shopguard/internal/repository"
	"github.com/and161185/shopguard/internal/token"
)

// UserService exposes the administrative user listing.
type UserService interface {
	// ListUsers returns every user projected for external display.
	ListUsers(ctx context.Context) ([]Entry, error)
}

// Introspector verifies session tokens.
type Introspector interface {
	Introspect(tok string) token.Result
}

type UserServiceImpl struct {
	users  repository.UserRepository
	tokens token.Lookup
	in     Introspector
}

// NewUserService constructs UserService. tokens is only read.
func NewUserService(users repository.UserRepository, tokens token.Lookup, in Introspector) *UserServiceImpl {
	return &UserServiceImpl{users: users, tokens: tokens, in: in}
}

// ListUsers projects users in repository order. Repository errors are
// returned as is; token problems only degrade the affected entry.
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]Entry, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(users))
	for _, u := range users {
		tok, _ := s.tokens.TokenOf(u.ID)
		out = append(out, Project(u, s.in.Introspect(tok)))
	}
	return out, nil
}
