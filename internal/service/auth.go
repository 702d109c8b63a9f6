// Package service contains application services for the shop security API.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	pkgcrypto "github.com/and161185/shopguard/internal/crypto"
	"github.com/and161185/shopguard/internal/errs"
	"github.com/and161185/shopguard/internal/limiter"
	"github.com/and161185/shopguard/internal/model"
	"github.com/and161185/shopguard/internal/repository"
	"github.com/and161185/shopguard/internal/token"
	"github.com/gofrs/uuid/v5"
)

// AuthService defines registration and session operations.
type AuthService interface {
	// Register creates a new customer account.
	Register(ctx context.Context, email, password string) (model.User, error)
	// Login applies rate-limiting, authenticates the user and records the session token.
	Login(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error)
	// Logout forgets a session token.
	Logout(tok string)
	// Authenticate resolves a live, valid session token to its user.
	Authenticate(tok string) (uuid.UUID, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	tokens    *token.Registry
	in        *token.Introspector
	accessTTL time.Duration
	lim       limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens *token.Registry, in *token.Introspector, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, tokens: tokens, in: in, accessTTL: accessTTL, lim: lim}
}

// Register creates a customer with an Argon2id password hash.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password string) (model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.User{}, fmt.Errorf("%w: empty email/password", errs.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, fmt.Errorf("%w: bad email", errs.ErrValidation)
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return model.User{}, err
	}
	hash, err := pkgcrypto.EncodePassword(password)
	if err != nil {
		return model.User{}, err
	}

	u := model.User{
		ID:       uid,
		Email:    email,
		Password: &hash,
		Role:     model.RoleCustomer,
		IsActive: true,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Login authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) Login(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !passwordMatches(password, u) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return model.Tokens{}, model.User{}, err
		}
		// unknown email and wrong password look the same
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	_ = s.lim.Success(ctx, email, ipHash)

	access, exp, err := s.in.Issue(u.ID, s.accessTTL)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	s.tokens.Put(access, u.ID)
	if ip != "" {
		if err := s.users.SetLastLoginIP(ctx, u.ID, ip); err == nil {
			u.LastLoginIP = ip
		}
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

func passwordMatches(password string, u *model.User) bool {
	if u == nil || u.Password == nil {
		return false
	}
	ok, err := pkgcrypto.CheckPassword(password, *u.Password)
	return err == nil && ok
}

// Logout drops the token from the registry.
func (s *AuthServiceImpl) Logout(tok string) {
	s.tokens.Remove(tok)
}

// Authenticate accepts only tokens that verify and are still registered.
func (s *AuthServiceImpl) Authenticate(tok string) (uuid.UUID, error) {
	res := s.in.Introspect(tok)
	if res.Status != token.Valid {
		return uuid.Nil, errs.ErrUnauthorized
	}
	owner, ok := s.tokens.UserOf(tok)
	if !ok {
		return uuid.Nil, errs.ErrUnauthorized
	}
	if id, err := uuid.FromString(res.Subject); err != nil || id != owner {
		return uuid.Nil, errs.ErrUnauthorized
	}
	return owner, nil
}
