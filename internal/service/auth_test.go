package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/and161185/shopguard/internal/crypto"
	"github.com/and161185/shopguard/internal/errs"
	"github.com/and161185/shopguard/internal/limiter"
	"github.com/and161185/shopguard/internal/model"
	"github.com/and161185/shopguard/internal/token"
)

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

func newAuth(users *fakeUsers, lim limiter.Limiter, ttl time.Duration) (*AuthServiceImpl, *token.Registry) {
	reg := token.NewRegistry()
	return NewAuthService(users, reg, token.NewIntrospector([]byte("secret")), ttl, lim), reg
}

func seededUser(t *testing.T, email, password string) *model.User {
	t.Helper()
	enc, err := pkgcrypto.EncodePassword(password)
	if err != nil {
		t.Fatalf("EncodePassword: %v", err)
	}
	return &model.User{ID: uuid.Must(uuid.NewV4()), Email: email, Password: &enc, Role: model.RoleCustomer}
}

func TestAuth_Register_Basics(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{}
	s, _ := newAuth(users, &fakeLimiter{}, time.Minute)
	ctx := context.Background()

	if _, err := s.Register(ctx, "", ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error on empty email/password, got %v", err)
	}
	if _, err := s.Register(ctx, "not-an-email", "pwd"); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error on bad email, got %v", err)
	}

	u, err := s.Register(ctx, "alice@juice-sh.op", "pwd")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID == uuid.Nil || u.Role != model.RoleCustomer || u.Password == nil {
		t.Fatalf("bad user: %+v", u)
	}
	if ok, _ := pkgcrypto.CheckPassword("pwd", *u.Password); !ok {
		t.Fatalf("stored hash does not verify")
	}

	if _, err := s.Register(ctx, "alice@juice-sh.op", "pwd2"); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists on duplicate email, got %v", err)
	}

	users.createErr = errors.New("boom")
	if _, err := s.Register(ctx, "bob@juice-sh.op", "pwd"); err == nil {
		t.Fatalf("want propagated repo error")
	}
}

func TestAuth_Login_RateLimiterAndCreds(t *testing.T) {
	t.Parallel()

	u := seededUser(t, "alice@juice-sh.op", "correct")
	users := &fakeUsers{byEmail: map[string]*model.User{u.Email: u}}
	lim := &fakeLimiter{allowOK: true}
	s, reg := newAuth(users, lim, 2*time.Minute)
	ctx := context.Background()

	lim.allowErr = errors.New("lim-err")
	if _, _, err := s.Login(ctx, u.Email, "correct", "1.2.3.4"); err == nil {
		t.Fatalf("want limiter error propagate")
	}
	lim.allowErr = nil

	lim.allowOK = false
	if _, _, err := s.Login(ctx, u.Email, "correct", "1.2.3.4"); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
	lim.allowOK = true

	if _, _, err := s.Login(ctx, "nope@juice-sh.op", "x", ""); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized on missing user, got %v", err)
	}

	users.getErr = errors.New("db down")
	if _, _, err := s.Login(ctx, u.Email, "correct", ""); err == nil || errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want infrastructure error, got %v", err)
	}
	users.getErr = nil

	lim.failBlocked = true
	if _, _, err := s.Login(ctx, u.Email, "wrong", ""); !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited on blocked after failure, got %v", err)
	}
	lim.failBlocked = false

	if _, _, err := s.Login(ctx, u.Email, "wrong", ""); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized on wrong password, got %v", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("failed logins must not register tokens")
	}

	tok, got, err := s.Login(ctx, u.Email, "correct", "127.0.0.1")
	if err != nil {
		t.Fatalf("Login success: %v", err)
	}
	if tok.AccessToken == "" || tok.ExpiresAt.Before(time.Now()) {
		t.Fatalf("bad token: %+v", tok)
	}
	if got.ID != u.ID || got.LastLoginIP != "127.0.0.1" || users.lastIP != "127.0.0.1" {
		t.Fatalf("bad user returned: %+v", got)
	}
	if live, ok := reg.TokenOf(u.ID); !ok || live != tok.AccessToken {
		t.Fatalf("token not registered")
	}
	if lim.successCalls == 0 {
		t.Fatalf("expected Success() to be called")
	}
}

func TestAuth_Login_UserWithoutPassword(t *testing.T) {
	t.Parallel()

	u := &model.User{ID: uuid.Must(uuid.NewV4()), Email: "oauth@juice-sh.op"}
	s, _ := newAuth(&fakeUsers{byEmail: map[string]*model.User{u.Email: u}}, &fakeLimiter{allowOK: true}, time.Minute)

	if _, _, err := s.Login(context.Background(), u.Email, "", ""); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
}

func TestAuth_Login_ReplacesPreviousToken(t *testing.T) {
	t.Parallel()

	u := seededUser(t, "bob@juice-sh.op", "p")
	s, reg := newAuth(&fakeUsers{byEmail: map[string]*model.User{u.Email: u}}, limiter.Noop{}, time.Minute)
	ctx := context.Background()

	first, _, err := s.Login(ctx, u.Email, "p", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	time.Sleep(1100 * time.Millisecond) // iat has second resolution
	second, _, err := s.Login(ctx, u.Email, "p", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if first.AccessToken == second.AccessToken {
		t.Fatalf("expected distinct tokens")
	}
	if live, _ := reg.TokenOf(u.ID); live != second.AccessToken {
		t.Fatalf("registry must track the newest token")
	}
	if _, err := s.Authenticate(first.AccessToken); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("replaced token must not authenticate, got %v", err)
	}
}

func TestAuth_AuthenticateAndLogout(t *testing.T) {
	t.Parallel()

	u := seededUser(t, "carol@juice-sh.op", "p")
	s, _ := newAuth(&fakeUsers{byEmail: map[string]*model.User{u.Email: u}}, limiter.Noop{}, time.Minute)
	ctx := context.Background()

	if _, err := s.Authenticate(""); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("empty token must fail")
	}

	tok, _, err := s.Login(ctx, u.Email, "p", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	id, err := s.Authenticate(tok.AccessToken)
	if err != nil || id != u.ID {
		t.Fatalf("Authenticate: id=%s err=%v", id, err)
	}

	// signed correctly but never registered
	other, _, _ := token.NewIntrospector([]byte("secret")).Issue(u.ID, 2*time.Minute)
	if _, err := s.Authenticate(other); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("unregistered token must fail, got %v", err)
	}

	s.Logout(tok.AccessToken)
	if _, err := s.Authenticate(tok.AccessToken); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("logged out token must fail, got %v", err)
	}
}
